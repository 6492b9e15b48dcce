package producer

import (
	"go.uber.org/zap"
)

// Unbounded disables backpressure: the producer never blocks on push.
const Unbounded = -1

// DefaultCapacity is the queue size used when none is configured.
const DefaultCapacity = 64

type options struct {
	capacity  int
	threaded  bool
	rateLimit float64
	burst     int
	logger    *zap.Logger
}

func defaultOptions() options {
	return options{
		capacity: DefaultCapacity,
		threaded: true,
		burst:    1,
		logger:   zap.NewNop(),
	}
}

// Option configures a producer.
type Option func(*options)

// WithCapacity sets the queue size. Values below 1 other than Unbounded are
// raised to 1.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n != Unbounded && n < 1 {
			n = 1
		}
		o.capacity = n
	}
}

// WithThreaded selects between the background Stream and the synchronous
// Sync producer.
func WithThreaded(threaded bool) Option {
	return func(o *options) {
		o.threaded = threaded
	}
}

// WithRateLimit caps the number of events per second. Zero disables it.
func WithRateLimit(eventsPerSecond float64, burst int) Option {
	return func(o *options) {
		o.rateLimit = eventsPerSecond
		o.burst = burst
	}
}

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
