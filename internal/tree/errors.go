package tree

import "errors"

var (
	// ErrUnbalanced reports event nesting that does not close correctly.
	ErrUnbalanced = errors.New("tree: unbalanced structure")
	// ErrConsumed reports a read of a node whose events were already streamed
	// past.
	ErrConsumed = errors.New("tree: node already consumed")
)
