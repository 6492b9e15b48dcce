package source

import "errors"

var (
	// ErrUnknownDriver indicates New was called with an unregistered driver name.
	ErrUnknownDriver = errors.New("source: unknown tokenizer driver")

	// ErrSyntax indicates misplaced punctuation or an unexpected closing
	// bracket that the underlying decoder let through.
	ErrSyntax = errors.New("source: syntax error")

	// ErrMalformedToken indicates a decoder returned a token the tokenizer
	// cannot classify.
	ErrMalformedToken = errors.New("source: malformed token")
)
