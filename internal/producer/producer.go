// Package producer turns a tokenizer into a pull-based event sequence, either
// synchronously or from a background goroutine feeding a bounded queue.
package producer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jacoelho/jpq/internal/event"
	"github.com/jacoelho/jpq/internal/ratelimit"
	"github.com/jacoelho/jpq/internal/source"
)

// Producer is an event sequence that can be abandoned before it is exhausted.
type Producer interface {
	event.Sequence
	Close() error
}

// New returns a Stream or, with WithThreaded(false), a Sync producer.
func New(ctx context.Context, tok source.Tokenizer, opts ...Option) Producer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !o.threaded {
		return newSync(ctx, tok, o)
	}
	return start(ctx, tok, o)
}

// next pulls one token and maps it, applying the rate limit first.
func next(ctx context.Context, tok source.Tokenizer, limiter *ratelimit.Limiter) (event.Event, error) {
	if err := limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return event.Event{}, ctxErr
		}
		return event.Event{}, err
	}

	t, err := tok.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return event.Event{}, io.EOF
		}
		return event.Event{}, failure(err)
	}

	ev, err := event.FromToken(t)
	if err != nil {
		return event.Event{}, failure(err)
	}
	return ev, nil
}

func failure(err error) error {
	return fmt.Errorf("%w: %w", ErrProducerFailure, err)
}

// Sync pulls tokens on demand in the caller's goroutine.
type Sync struct {
	ctx     context.Context
	tok     source.Tokenizer
	limiter *ratelimit.Limiter
	err     error
	closed  bool
	events  int
}

// NewSync returns a synchronous producer over tok.
func NewSync(ctx context.Context, tok source.Tokenizer, opts ...Option) *Sync {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newSync(ctx, tok, o)
}

func newSync(ctx context.Context, tok source.Tokenizer, o options) *Sync {
	return &Sync{
		ctx:     ctx,
		tok:     tok,
		limiter: ratelimit.New(o.rateLimit, o.burst),
	}
}

func (s *Sync) Next() (event.Event, error) {
	if s.closed {
		return event.Event{}, ErrClosed
	}
	if s.err != nil {
		return event.Event{}, s.err
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return event.Event{}, err
	}

	ev, err := next(s.ctx, s.tok, s.limiter)
	if err != nil {
		s.err = err
		return event.Event{}, err
	}
	s.events++
	return ev, nil
}

// Close stops further reads from the tokenizer.
func (s *Sync) Close() error {
	s.closed = true
	return nil
}

// Events returns the number of events delivered.
func (s *Sync) Events() int { return s.events }
