// Package cli defines the jpq commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jacoelho/jpq/internal/config"
	"github.com/jacoelho/jpq/internal/log"
)

// Streams are the process handles the commands read from and write to.
type Streams struct {
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Logger *zap.Logger
}

// NewRootCommand returns the jpq command tree.
func NewRootCommand(s Streams) *cobra.Command {
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}

	var level string
	root := &cobra.Command{
		Use:           "jpq",
		Short:         "Query large JSON documents without loading them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			log.SetLevel(level)
		},
	}
	root.SetIn(s.In)
	root.SetOut(s.Out)
	root.SetErr(s.Err)

	root.PersistentFlags().StringVar(&level, "log-level", log.LevelWarn, "Log level (debug, info, warn, error)")

	root.AddCommand(
		newQueryCommand(s),
		newSelectCommand(s),
		newEventsCommand(s),
	)
	return root
}

// open returns the reader for an input name; config.Stdin reads s.In.
func open(s Streams, name string) (io.Reader, func() error, error) {
	if name == config.Stdin {
		return s.In, func() error { return nil }, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening file %s: %w", name, err)
	}
	return f, f.Close, nil
}
