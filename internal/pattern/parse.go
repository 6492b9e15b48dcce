package pattern

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml/ast"
)

// Parse compiles a pattern expression.
//
// Supported forms: $ root, .name and ['name'] keys, [0] indexes, .* and [*]
// for one segment, .** and [**] for any subpath, and ..name as a shorthand for
// .**.name. A quoted ['*'] is a literal key.
func Parse(expr string) (Pattern, error) {
	if err := validateExpression(expr); err != nil {
		return nil, err
	}

	segs := Pattern{{Kind: Root}}
	i := 1 // after '$'
	for i < len(expr) {
		var err error
		switch expr[i] {
		case '.':
			segs, i, err = parseDotSegment(expr, i, segs)
		case '[':
			segs, i, err = parseBracketSegment(expr, i, segs)
		default:
			err = fmt.Errorf("%w: unexpected token '%c' at position %d, expected '.' or '['", ErrSyntax, expr[i], i)
		}
		if err != nil {
			return nil, err
		}
	}
	return segs, nil
}

func validateExpression(expr string) error {
	if expr == "" {
		return fmt.Errorf("%w: expression cannot be empty", ErrSyntax)
	}
	if expr[0] != '$' || (len(expr) > 1 && expr[1] != '.' && expr[1] != '[') {
		return fmt.Errorf("%w: expression must start with '$', '$.', or '$['", ErrSyntax)
	}
	return nil
}

func parseDotSegment(expr string, i int, segs Pattern) (Pattern, int, error) {
	if i+1 < len(expr) && expr[i+1] == '.' { // descendant '..'
		segs = append(segs, Segment{Kind: AnySubpath})
		i += 2
		if i >= len(expr) {
			return nil, i, fmt.Errorf("%w: path segment cannot end with '..'", ErrSyntax)
		}
		if expr[i] == '[' {
			return segs, i, nil
		}
	} else { // child '.'
		i++
		if i >= len(expr) {
			return nil, i, fmt.Errorf("%w: path segment cannot end with '.'", ErrSyntax)
		}
	}

	switch {
	case strings.HasPrefix(expr[i:], "**"):
		return append(segs, Segment{Kind: AnySubpath}), i + 2, nil
	case expr[i] == '*':
		return append(segs, Segment{Kind: AnyStep}), i + 1, nil
	}

	start := i
	for i < len(expr) && idRune(expr[i]) {
		i++
	}
	if start == i {
		return nil, i, fmt.Errorf("%w: name cannot be empty at position %d", ErrSyntax, start)
	}
	return append(segs, Segment{Kind: Key, Key: expr[start:i]}), i, nil
}

func parseBracketSegment(expr string, i int, segs Pattern) (Pattern, int, error) {
	i++ // consume '['
	i = skipSpaces(expr, i)
	if i >= len(expr) {
		return nil, i, fmt.Errorf("%w: unterminated bracket selector, missing ']'", ErrSyntax)
	}

	if expr[i] == '\'' || expr[i] == '"' {
		name, next, err := parseQuoted(expr, i)
		if err != nil {
			return nil, next, err
		}
		next = skipSpaces(expr, next)
		if next >= len(expr) || expr[next] != ']' {
			return nil, next, fmt.Errorf("%w: expected ']' after quoted name at position %d", ErrSyntax, next)
		}
		return append(segs, Segment{Kind: Key, Key: name}), next + 1, nil
	}

	end := strings.IndexByte(expr[i:], ']')
	if end == -1 {
		return nil, i, fmt.Errorf("%w: unterminated bracket selector, missing ']' for content starting at '%s'", ErrSyntax, expr[i:])
	}
	content := strings.TrimSpace(expr[i : i+end])
	next := i + end + 1

	switch {
	case content == "":
		return nil, next, fmt.Errorf("%w: empty bracket selector '[]'", ErrSyntax)
	case content == "*":
		return append(segs, Segment{Kind: AnyStep}), next, nil
	case content == "**":
		return append(segs, Segment{Kind: AnySubpath}), next, nil
	case strings.ContainsAny(content, ",:"):
		return nil, next, fmt.Errorf("%w: unions and slices are not supported in '[%s]'", ErrSyntax, content)
	}

	idx, err := strconv.Atoi(content)
	if err != nil {
		return nil, next, fmt.Errorf("%w: invalid content '%s' in bracket selector", ErrSyntax, content)
	}
	if idx < 0 {
		return nil, next, fmt.Errorf("%w: negative array index (%d)", ErrSyntax, idx)
	}
	return append(segs, Segment{Kind: Index, Index: idx}), next, nil
}

// parseQuoted reads a quoted name starting at the quote and returns the index
// after the closing quote.
func parseQuoted(expr string, i int) (string, int, error) {
	q := expr[i]
	var b strings.Builder
	for i++; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\\' && i+1 < len(expr):
			i++
			b.WriteByte(expr[i])
		case c == q:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", i, fmt.Errorf("%w: unterminated quoted name", ErrSyntax)
}

func skipSpaces(expr string, i int) int {
	for i < len(expr) && expr[i] == ' ' {
		i++
	}
	return i
}

// idRune checks if a byte is valid for unquoted names after '.'.
func idRune(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b == '-'
}

// FromValues builds a pattern from reference notation.
func FromValues(values []any) (Pattern, error) {
	p := make(Pattern, 0, len(values))
	for i, v := range values {
		seg, err := segmentOf(v)
		if err != nil {
			return nil, fmt.Errorf("%w: position %d: %v", ErrInvalid, i, err)
		}
		p = append(p, seg)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func segmentOf(v any) (Segment, error) {
	switch v := v.(type) {
	case string:
		switch v {
		case "$":
			return Segment{Kind: Root}, nil
		case "*":
			return Segment{Kind: AnyStep}, nil
		case "**":
			return Segment{Kind: AnySubpath}, nil
		default:
			return Segment{Kind: Key, Key: v}, nil
		}
	case int:
		return indexSegment(int64(v))
	case int64:
		return indexSegment(v)
	case uint64:
		if v > math.MaxInt32 {
			return Segment{}, fmt.Errorf("index %d out of range", v)
		}
		return indexSegment(int64(v))
	case float64:
		if v != math.Trunc(v) {
			return Segment{}, fmt.Errorf("index %v is not an integer", v)
		}
		return indexSegment(int64(v))
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return Segment{}, fmt.Errorf("index %s is not an integer", v)
		}
		return indexSegment(n)
	default:
		return Segment{}, fmt.Errorf("unsupported segment type %T", v)
	}
}

func indexSegment(n int64) (Segment, error) {
	if n < 0 || n > math.MaxInt32 {
		return Segment{}, fmt.Errorf("index %d out of range", n)
	}
	return Segment{Kind: Index, Index: int(n)}, nil
}

// UnmarshalYAML accepts either an expression string or a sequence in
// reference notation. Wildcards must be quoted in YAML sequences.
func (p *Pattern) UnmarshalYAML(node ast.Node) error {
	switch n := node.(type) {
	case *ast.StringNode:
		parsed, err := Parse(n.Value)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	case *ast.SequenceNode:
		values := make([]any, 0, len(n.Values))
		for i, item := range n.Values {
			v, err := nodeToValue(item)
			if err != nil {
				return fmt.Errorf("%w: position %d: %v", ErrInvalid, i, err)
			}
			values = append(values, v)
		}
		parsed, err := FromValues(values)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	default:
		return fmt.Errorf("%w: pattern must be a string or a sequence, got %s", ErrInvalid, node.Type())
	}
}

// nodeToValue extracts scalar values from AST nodes.
// integer node value is normalized to int64
func nodeToValue(node ast.Node) (any, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		switch v := n.Value.(type) {
		case int64:
			return v, nil
		case uint64:
			return v, nil
		default:
			return nil, fmt.Errorf("unexpected integer node value type: %T", n.Value)
		}
	case *ast.StringNode:
		return n.Value, nil
	default:
		return nil, fmt.Errorf("unsupported node type: %s", node.Type())
	}
}
