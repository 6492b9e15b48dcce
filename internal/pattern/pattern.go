// Package pattern describes sets of document paths using literal and wildcard
// segments.
//
// Patterns are written either as expressions such as $.store..price[0].* or
// as sequences in reference notation where "$" is the root, strings are keys,
// integers are indexes, "*" matches one segment and "**" matches any number
// of segments, including none.
package pattern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jacoelho/jpq/internal/path"
)

// Kind identifies a pattern segment.
type Kind uint8

const (
	Root Kind = iota
	Key
	Index
	AnyStep
	AnySubpath
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "Root"
	case Key:
		return "Key"
	case Index:
		return "Index"
	case AnyStep:
		return "AnyStep"
	case AnySubpath:
		return "AnySubpath"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Segment is one step of a Pattern.
type Segment struct {
	Kind  Kind
	Key   string
	Index int
}

// Matches reports whether s accepts the concrete segment p. AnySubpath and
// Root never match a single step.
func (s Segment) Matches(p path.Segment) bool {
	switch s.Kind {
	case AnyStep:
		return p.Kind != path.Root
	case Key:
		return p.Kind == path.Key && p.Key == s.Key
	case Index:
		return p.Kind == path.Index && p.Index == s.Index
	default:
		return false
	}
}

func (s Segment) String() string {
	switch s.Kind {
	case Root:
		return "$"
	case Index:
		return "[" + strconv.Itoa(s.Index) + "]"
	case AnyStep:
		return ".*"
	case AnySubpath:
		return ".**"
	default:
		return path.KeyOf(s.Key).String()
	}
}

// Pattern is a sequence of segments starting with Root.
type Pattern []Segment

func (p Pattern) String() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteString(s.String())
	}
	return b.String()
}

// Values returns the pattern in reference notation.
func (p Pattern) Values() []any {
	out := make([]any, len(p))
	for i, s := range p {
		switch s.Kind {
		case Root:
			out[i] = "$"
		case Key:
			out[i] = s.Key
		case Index:
			out[i] = s.Index
		case AnyStep:
			out[i] = "*"
		case AnySubpath:
			out[i] = "**"
		}
	}
	return out
}

// Validate checks that p starts with Root and holds no other Root.
func (p Pattern) Validate() error {
	if len(p) == 0 || p[0].Kind != Root {
		return fmt.Errorf("%w: pattern must start with the root marker", ErrInvalid)
	}
	for i, s := range p[1:] {
		switch s.Kind {
		case Root:
			return fmt.Errorf("%w: root marker at position %d", ErrInvalid, i+1)
		case Index:
			if s.Index < 0 {
				return fmt.Errorf("%w: negative index %d at position %d", ErrInvalid, s.Index, i+1)
			}
		case Key, AnyStep, AnySubpath:
		default:
			return fmt.Errorf("%w: unknown segment kind %v at position %d", ErrInvalid, s.Kind, i+1)
		}
	}
	return nil
}

// Count returns the number of distinct ways p matches the concrete path c.
// Each AnySubpath expansion counts separately, so [$, **, "a"] matches
// $.a.a once while [$, **, "a", **] matches it twice.
func (p Pattern) Count(c path.Path) int {
	if len(p) == 0 || len(c) == 0 || p[0].Kind != Root || c[0].Kind != path.Root {
		return 0
	}
	return count(p[1:], c[1:])
}

func count(segs []Segment, c path.Path) int {
	if len(segs) == 0 {
		if len(c) == 0 {
			return 1
		}
		return 0
	}

	s := segs[0]
	if s.Kind == AnySubpath {
		total := 0
		for k := 0; k <= len(c); k++ {
			total += count(segs[1:], c[k:])
		}
		return total
	}

	if len(c) == 0 || !s.Matches(c[0]) {
		return 0
	}
	return count(segs[1:], c[1:])
}

// MustParse is like Parse but panics on error.
func MustParse(expr string) Pattern {
	p, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return p
}
