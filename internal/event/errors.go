package event

import "github.com/jacoelho/jpq/internal/source"

// ErrMalformedToken indicates a token that has no event mapping. It is the
// same sentinel the tokenizers return for decoder values they cannot classify.
var ErrMalformedToken = source.ErrMalformedToken
