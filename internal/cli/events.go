package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/jacoelho/jpq/internal/config"
	"github.com/jacoelho/jpq/internal/output"
	"github.com/jacoelho/jpq/internal/producer"
	"github.com/jacoelho/jpq/internal/source"
)

func newEventsCommand(s Streams) *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "events [flags] [FILE|-]",
		Short: "Print the event sequence of the input, one per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg.SetInputs(args)
			if err := cfg.Validate(); err != nil {
				return err
			}

			r, closeFn, err := open(s, cfg.Inputs[0])
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			tok, err := source.New(cfg.Driver, r)
			if err != nil {
				return err
			}

			seq := producer.New(cmd.Context(), tok, cfg.ProducerOptions(s.Logger)...)
			defer seq.Close()

			w := output.NewWriter(s.Out)
			defer func() {
				if ferr := w.Flush(); err == nil {
					err = ferr
				}
			}()

			for {
				ev, err := seq.Next()
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				if err := w.WriteEvent(ev); err != nil {
					return err
				}
			}
		},
	}
	cfg.RegisterReaderFlags(cmd.Flags())
	return cmd
}
