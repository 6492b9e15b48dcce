package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jacoelho/jpq/internal/automaton"
	"github.com/jacoelho/jpq/internal/config"
	"github.com/jacoelho/jpq/internal/formatter/stdout"
	"github.com/jacoelho/jpq/internal/output"
	"github.com/jacoelho/jpq/internal/processor"
	"github.com/jacoelho/jpq/internal/results"
)

func newQueryCommand(s Streams) *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "query [flags] [FILE|-]...",
		Short: "Print nodes matching path patterns as JSON lines",
		Example: `  jpq query -p '$.store.book[*].author' store.json
  jpq query -p '$..price' --most-specific --limit 1 store.json
  jpq query --rules rules.yaml --summary a.json b.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.SetInputs(args)
			if err := cfg.ValidateQuery(); err != nil {
				return err
			}
			return runQuery(cmd.Context(), s, cfg)
		},
	}
	cfg.RegisterQueryFlags(cmd.Flags())
	return cmd
}

type query struct {
	s         Streams
	cfg       *config.Config
	p         *processor.Processor
	w         *output.Writer
	remaining int
}

func runQuery(ctx context.Context, s Streams, cfg *config.Config) (err error) {
	f, err := cfg.Rules()
	if err != nil {
		return err
	}

	w := output.NewWriter(s.Out)
	defer func() {
		if ferr := w.Flush(); err == nil {
			err = ferr
		}
	}()

	// Callbacks write directly unless a limit asks for pull-style matching.
	newCallback := w.Callback
	if cfg.Limit > 0 {
		newCallback = func(string) automaton.Callback { return nil }
	}

	opts := append(cfg.ProcessorOptions(s.Logger), processor.WithAutomatonOptions(cfg.AutomatonOptions(f)...))
	p, err := processor.New("query", f.Bind(newCallback), opts...)
	if err != nil {
		return err
	}

	q := &query{s: s, cfg: cfg, p: p, w: w, remaining: cfg.Limit}
	summary := results.NewSummary(len(cfg.Inputs))
	started := time.Now()

	for _, input := range cfg.Inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Add(q.input(ctx, input))
		if cfg.Limit > 0 && q.remaining == 0 {
			break
		}
	}
	summary.SetTotalDuration(time.Since(started))

	if cfg.Summary {
		if err := stdout.NewWithWriter(s.Err).Format(summary); err != nil {
			return err
		}
	}

	return summary.Err()
}

func (q *query) input(ctx context.Context, name string) *results.InputResultBuilder {
	b := results.NewInputResultBuilder(name)

	r, closeFn, err := open(q.s, name)
	if err != nil {
		return b.WithError(err)
	}
	defer func() { _ = closeFn() }()

	if q.cfg.Limit == 0 {
		stats, err := q.p.Run(ctx, r)
		return b.WithStats(stats).WithError(err)
	}

	started := time.Now()
	matches := 0
	for m, err := range q.p.Matches(ctx, r) {
		if err != nil {
			return b.WithMatches(matches).WithDuration(time.Since(started)).WithError(err)
		}
		if err := q.w.WriteMatch(m); err != nil {
			return b.WithMatches(matches).WithDuration(time.Since(started)).WithError(err)
		}
		matches++
		q.remaining--
		if q.remaining == 0 {
			q.s.Logger.Debug("match limit reached", zap.String("input", name), zap.Int("limit", q.cfg.Limit))
			break
		}
	}
	return b.WithMatches(matches).WithDuration(time.Since(started))
}
