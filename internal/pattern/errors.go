package pattern

import "errors"

var (
	// ErrSyntax indicates a malformed pattern expression.
	ErrSyntax = errors.New("pattern: syntax error")

	// ErrInvalid indicates a pattern that parses but cannot be matched, such as
	// one not anchored at the root.
	ErrInvalid = errors.New("pattern: invalid pattern")
)
