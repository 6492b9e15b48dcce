package producer

import (
	"context"
	"errors"
	"io"
	"runtime"

	"go.uber.org/zap"

	"github.com/jacoelho/jpq/internal/event"
	"github.com/jacoelho/jpq/internal/ratelimit"
	"github.com/jacoelho/jpq/internal/source"
)

// Stream delivers events tokenized by a background goroutine.
//
// The goroutine stops at its next push once Close is called, once ctx is
// done, or once the Stream itself becomes unreachable.
type Stream struct {
	q      queue
	done   chan struct{}
	err    error
	ended  bool
	closed bool
	events int
}

// Start launches the background producer over tok.
func Start(ctx context.Context, tok source.Tokenizer, opts ...Option) *Stream {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return start(ctx, tok, o)
}

func start(ctx context.Context, tok source.Tokenizer, o options) *Stream {
	q := newQueue(o.capacity)
	done := make(chan struct{})

	go run(ctx, tok, q, ratelimit.New(o.rateLimit, o.burst), o.logger, done)

	s := &Stream{q: q, done: done}
	runtime.AddCleanup(s, func(q queue) { q.abandon() }, q)
	return s
}

func run(ctx context.Context, tok source.Tokenizer, q queue, limiter *ratelimit.Limiter, logger *zap.Logger, done chan<- struct{}) {
	defer close(done)

	logger.Debug("producer started")
	pushed := 0
	for {
		ev, err := next(ctx, tok, limiter)
		if errors.Is(err, io.EOF) {
			q.finish(nil)
			logger.Debug("producer finished", zap.Int("events", pushed))
			return
		}
		if err != nil {
			q.finish(err)
			logger.Debug("producer failed", zap.Int("events", pushed), zap.Error(err))
			return
		}

		if err := q.push(ctx, ev); err != nil {
			if errors.Is(err, errAbandoned) {
				q.finish(nil)
				logger.Debug("producer abandoned", zap.Int("events", pushed))
				return
			}
			q.finish(err)
			logger.Debug("producer cancelled", zap.Int("events", pushed), zap.Error(err))
			return
		}
		pushed++
	}
}

// Next returns the next event, io.EOF at the end of input, or the error that
// stopped the producer once every queued event was delivered.
func (s *Stream) Next() (event.Event, error) {
	if s.closed {
		return event.Event{}, ErrClosed
	}
	if s.ended {
		return event.Event{}, s.err
	}

	ev, ok := s.q.pop()
	if ok {
		s.events++
		return ev, nil
	}

	s.ended = true
	s.err = s.q.err()
	if s.err == nil {
		s.err = io.EOF
	}
	return event.Event{}, s.err
}

// Close abandons the stream. The producer goroutine stops at its next push.
func (s *Stream) Close() error {
	if !s.closed {
		s.closed = true
		s.q.abandon()
	}
	return nil
}

// Done is closed once the producer goroutine has exited.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Events returns the number of events delivered.
func (s *Stream) Events() int { return s.events }
