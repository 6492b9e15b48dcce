// Package path tracks the concrete location of a node within a document.
package path

import (
	"strconv"
	"strings"

	"github.com/jacoelho/jpq/internal/stack"
)

// Kind identifies a path segment.
type Kind uint8

const (
	Root Kind = iota
	Key
	Index
)

// Segment is one step of a Path.
type Segment struct {
	Kind  Kind
	Key   string
	Index int
}

// KeyOf returns an object member segment.
func KeyOf(k string) Segment { return Segment{Kind: Key, Key: k} }

// IndexOf returns an array element segment.
func IndexOf(i int) Segment { return Segment{Kind: Index, Index: i} }

func (s Segment) String() string {
	switch s.Kind {
	case Root:
		return "$"
	case Index:
		return "[" + strconv.Itoa(s.Index) + "]"
	default:
		if isIdentifier(s.Key) {
			return "." + s.Key
		}
		return "[" + quote(s.Key) + "]"
	}
}

// Path is the walk from the document root to a node. It always starts with
// a Root segment.
type Path []Segment

// String renders the path in JSONPath normalized form, e.g. $.a[0]['b c'].
func (p Path) String() string {
	var b strings.Builder
	if len(p) == 0 || p[0].Kind != Root {
		b.WriteByte('$')
	}
	for _, s := range p {
		b.WriteString(s.String())
	}
	return b.String()
}

// Pointer renders the path as a JSON Pointer.
func (p Path) Pointer() string {
	var b strings.Builder
	for _, s := range p {
		switch s.Kind {
		case Root:
			continue
		case Index:
			b.WriteByte('/')
			b.WriteString(strconv.Itoa(s.Index))
		default:
			b.WriteByte('/')
			b.WriteString(pointerEscaper.Replace(s.Key))
		}
	}
	return b.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !idByte(s[i]) {
			return false
		}
	}
	return true
}

// idByte checks if a byte is valid for unquoted names after '.'.
func idByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b == '-'
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// Builder maintains the current path while a walker descends and ascends.
type Builder struct {
	segments *stack.Stack[Segment]
}

// NewBuilder returns a builder positioned at the root.
func NewBuilder() *Builder {
	b := &Builder{segments: stack.NewWithCapacity[Segment](16)}
	b.segments.Push(Segment{Kind: Root})
	return b
}

// Push descends one level.
func (b *Builder) Push(s Segment) { b.segments.Push(s) }

// Pop ascends one level. The root segment is never removed.
func (b *Builder) Pop() {
	if b.segments.Size() > 1 {
		b.segments.Pop()
	}
}

// Path returns a snapshot that later Push and Pop calls do not affect.
func (b *Builder) Path() Path {
	return Path(b.segments.ToSlice())
}
