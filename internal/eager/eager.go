// Package eager evaluates RFC 9535 JSONPath expressions over fully decoded
// documents. It is the baseline the streaming engine is compared against.
package eager

import (
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/theory/jsonpath"
)

// Compile parses a JSONPath expression.
func Compile(expr string) (*jsonpath.Path, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: JSONPath expression is empty", ErrInvalidInput)
	}

	p, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSONPath %s: %v", ErrInvalidInput, expr, err)
	}
	return p, nil
}

// Select decodes every document in r and returns the selected nodes in order.
func Select(expr string, r io.Reader) ([]any, error) {
	p, err := Compile(expr)
	if err != nil {
		return nil, err
	}

	var results []any
	dec := gojson.NewDecoder(r)
	for {
		var data any
		if err := dec.Decode(&data); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: failed to parse JSON data: %v", ErrInvalidInput, err)
		}
		results = append(results, p.Select(data)...)
	}

	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results, nil
}
