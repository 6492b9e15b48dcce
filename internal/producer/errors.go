package producer

import "errors"

var (
	// ErrProducerFailure wraps any error raised while tokenizing. It is joined
	// with the cause, so errors.Is matches both.
	ErrProducerFailure = errors.New("producer: tokenization failed")
	// ErrClosed is returned by Next after Close.
	ErrClosed = errors.New("producer: closed")

	// errAbandoned stops the background task once the consumer is gone.
	errAbandoned = errors.New("producer: consumer abandoned the stream")
)
