// Package processor binds a compiled automaton to the full reading pipeline:
// tokenizer, producer, tree builder and walker.
package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jacoelho/jpq/internal/automaton"
	"github.com/jacoelho/jpq/internal/producer"
	"github.com/jacoelho/jpq/internal/source"
	"github.com/jacoelho/jpq/internal/tree"
	"github.com/jacoelho/jpq/internal/walker"
)

// Stats describes one run over an input.
type Stats struct {
	RunID     string
	Documents int
	Events    int
	Visited   int
	Fired     int
	Pruned    int
	Cut       int
	Duration  time.Duration
}

type options struct {
	driver        string
	threaded      bool
	queueSize     int
	rateLimit     float64
	logger        *zap.Logger
	automatonOpts []automaton.Option
}

// Option configures a Processor.
type Option func(*options)

// WithDriver selects the tokenizer driver by name.
func WithDriver(name string) Option {
	return func(o *options) { o.driver = name }
}

// WithThreaded selects the background producer. It is the default.
func WithThreaded(v bool) Option {
	return func(o *options) { o.threaded = v }
}

// WithQueueSize sets the producer queue capacity; producer.Unbounded disables
// backpressure.
func WithQueueSize(n int) Option {
	return func(o *options) { o.queueSize = n }
}

// WithRateLimit caps tokenization at eventsPerSecond. Zero disables it.
func WithRateLimit(eventsPerSecond float64) Option {
	return func(o *options) { o.rateLimit = eventsPerSecond }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithAutomatonOptions forwards firing options to the automaton.
func WithAutomatonOptions(opts ...automaton.Option) Option {
	return func(o *options) { o.automatonOpts = append(o.automatonOpts, opts...) }
}

// Processor is a named, reusable query. It is safe for concurrent use; each
// run owns its producer and tree.
type Processor struct {
	name string
	a    *automaton.Automaton
	opts options
}

// New compiles rules into a Processor.
func New(name string, rules []automaton.Rule, opts ...Option) (*Processor, error) {
	o := options{
		driver:    source.DriverJSON,
		threaded:  true,
		queueSize: producer.DefaultCapacity,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := source.CheckDriver(o.driver); err != nil {
		return nil, err
	}

	a, err := automaton.Build(rules, o.automatonOpts...)
	if err != nil {
		return nil, fmt.Errorf("processor %s: %w", name, err)
	}

	return &Processor{name: name, a: a, opts: o}, nil
}

// Name returns the processor name.
func (p *Processor) Name() string { return p.name }

// Automaton returns the compiled automaton.
func (p *Processor) Automaton() *automaton.Automaton { return p.a }

// Consume walks a single tree, invoking rule callbacks.
func (p *Processor) Consume(ctx context.Context, root *tree.Node) error {
	return walker.New(p.a, walker.WithLogger(p.opts.logger)).Consume(ctx, root)
}

type run struct {
	id      string
	started time.Time
	logger  *zap.Logger
	seq     producer.Producer
	builder *tree.Builder
	walker  *walker.Walker
}

func (p *Processor) start(ctx context.Context, r io.Reader) (*run, error) {
	id := uuid.NewString()
	logger := p.opts.logger.With(zap.String("processor", p.name), zap.String("run_id", id))

	tok, err := source.New(p.opts.driver, r)
	if err != nil {
		return nil, err
	}

	seq := producer.New(ctx, tok,
		producer.WithThreaded(p.opts.threaded),
		producer.WithCapacity(p.opts.queueSize),
		producer.WithRateLimit(p.opts.rateLimit, 1),
		producer.WithLogger(logger),
	)

	logger.Info("run started",
		zap.String("driver", p.opts.driver),
		zap.Bool("threaded", p.opts.threaded),
		zap.Int("queue", p.opts.queueSize),
	)

	return &run{
		id:      id,
		started: time.Now(),
		logger:  logger,
		seq:     seq,
		builder: tree.NewBuilder(seq),
		walker:  walker.New(p.a, walker.WithLogger(logger)),
	}, nil
}

func (r *run) finish(docs int, err error) Stats {
	r.seq.Close()

	ws := r.walker.Stats()
	stats := Stats{
		RunID:     r.id,
		Documents: docs,
		Events:    r.builder.Events(),
		Visited:   ws.Visited,
		Fired:     ws.Fired,
		Pruned:    ws.Pruned,
		Cut:       ws.Cut,
		Duration:  time.Since(r.started),
	}

	fields := []zap.Field{
		zap.Int("documents", stats.Documents),
		zap.Int("events", stats.Events),
		zap.Int("fired", stats.Fired),
		zap.Duration("duration", stats.Duration),
	}
	if err != nil {
		r.logger.Warn("run failed", append(fields, zap.Error(err))...)
	} else {
		r.logger.Info("run finished", fields...)
	}
	return stats
}

// Run walks every document in r, invoking rule callbacks. The first callback
// error stops the run and is returned unmodified.
func (p *Processor) Run(ctx context.Context, r io.Reader) (Stats, error) {
	rn, err := p.start(ctx, r)
	if err != nil {
		return Stats{}, err
	}

	docs := 0
	for {
		root, err := rn.builder.Next()
		if errors.Is(err, io.EOF) {
			return rn.finish(docs, nil), nil
		}
		if err != nil {
			return rn.finish(docs, err), err
		}
		docs++

		if err := rn.walker.Consume(ctx, root); err != nil {
			return rn.finish(docs, err), err
		}
	}
}

// Matches yields the firings of every document in r in order. Breaking out
// of the loop stops reading r. Rule callbacks are not invoked.
func (p *Processor) Matches(ctx context.Context, r io.Reader) iter.Seq2[walker.Match, error] {
	return func(yield func(walker.Match, error) bool) {
		rn, err := p.start(ctx, r)
		if err != nil {
			yield(walker.Match{}, err)
			return
		}

		docs := 0
		for {
			root, err := rn.builder.Next()
			if errors.Is(err, io.EOF) {
				rn.finish(docs, nil)
				return
			}
			if err != nil {
				rn.finish(docs, err)
				yield(walker.Match{}, err)
				return
			}
			docs++

			for m, err := range rn.walker.Matches(ctx, root) {
				if err != nil {
					rn.finish(docs, err)
					yield(walker.Match{}, err)
					return
				}
				if !yield(m, nil) {
					rn.finish(docs, nil)
					return
				}
			}
		}
	}
}
