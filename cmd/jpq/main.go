package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacoelho/jpq/internal/cli"
	"github.com/jacoelho/jpq/internal/exit"
	"github.com/jacoelho/jpq/internal/log"
)

func main() {
	exitCode := run()
	os.Exit(exitCode)
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	defer func() { _ = log.Default.Sync() }()

	cmd := cli.NewRootCommand(cli.Streams{
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
		Logger: log.Default,
	})

	if err := cmd.ExecuteContext(ctx); err != nil {
		result := exit.FromError(err)
		result.Print()
		return result.ExitCode
	}
	return exit.CodeSuccess
}
