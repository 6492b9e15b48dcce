package tree

import (
	"iter"

	"github.com/jacoelho/jpq/internal/event"
	"github.com/jacoelho/jpq/internal/value"
)

// Kind distinguishes the three node shapes.
type Kind uint8

const (
	Atom Kind = iota
	Object
	Array
)

func (k Kind) String() string {
	switch k {
	case Atom:
		return "Atom"
	case Object:
		return "Object"
	case Array:
		return "Array"
	default:
		return "Unknown"
	}
}

type state uint8

const (
	unread state = iota
	streaming
	done
	skipped
)

// Entry is one child of a compound node. Key is set for object members and
// Index counts entries from 0 for both kinds.
type Entry struct {
	Key   string
	Index int
	Node  *Node
}

// Node is a lazily read document value.
//
// Compound nodes stream their entries once, in document order. Calling Value
// materializes the whole span, after which Entries may be iterated again.
type Node struct {
	b     *Builder
	kind  Kind
	atom  any
	depth int
	state state

	materialized bool
	entries      []Entry
	value        any
}

// Kind returns the node shape.
func (n *Node) Kind() Kind { return n.kind }

// IsCompound reports whether n is an object or an array.
func (n *Node) IsCompound() bool { return n.kind != Atom }

// Atom returns the scalar of an Atom node.
func (n *Node) Atom() any { return n.atom }

// Entries yields the children of n. An Atom has none. Iterating a compound
// node a second time fails with ErrConsumed unless Value was called first.
func (n *Node) Entries() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		if n.kind == Atom {
			return
		}
		if n.materialized {
			for _, e := range n.entries {
				if !yield(e, nil) {
					return
				}
			}
			return
		}
		if n.state != unread {
			yield(Entry{}, ErrConsumed)
			return
		}
		n.state = streaming

		b := n.b
		for i := 0; ; i++ {
			e, ok, err := n.next(b, i)
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if !ok {
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// next reads entry i, leaving the builder positioned inside the child when
// the child is compound. It reports false at the closing event.
func (n *Node) next(b *Builder, i int) (Entry, bool, error) {
	// finish whatever the previous child left open
	if err := b.skipTo(n.depth); err != nil {
		return Entry{}, false, err
	}

	ev, err := b.readInside()
	if err != nil {
		return Entry{}, false, err
	}

	if ev.Kind.IsEnd() {
		if err := b.close(ev); err != nil {
			return Entry{}, false, err
		}
		n.state = done
		return Entry{}, false, nil
	}

	e := Entry{Index: i}
	if n.kind == Object {
		if ev.Kind != event.Key {
			return Entry{}, false, b.fail("%v inside object where a key was expected", ev.Kind)
		}
		e.Key = ev.Key
		if ev, err = b.readInside(); err != nil {
			return Entry{}, false, err
		}
	} else if ev.Kind == event.Key {
		return Entry{}, false, b.fail("key %q inside array", ev.Key)
	}

	child, err := b.node(ev)
	if err != nil {
		return Entry{}, false, err
	}
	e.Node = child
	return e, true, nil
}

// Value converts n into its plain representation: value.Object for objects,
// []any for arrays and the scalar for atoms. The result is cached, so calling
// Value again returns an equal value without reading further input.
func (n *Node) Value() (any, error) {
	switch {
	case n.kind == Atom:
		return n.atom, nil
	case n.materialized:
		return n.value, nil
	case n.state != unread:
		return nil, ErrConsumed
	}

	var entries []Entry
	for e, err := range n.Entries() {
		if err != nil {
			return nil, err
		}
		if _, err := e.Node.Value(); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if n.kind == Object {
		obj := make(value.Object, len(entries))
		for i, e := range entries {
			obj[i] = value.Member{Key: e.Key, Value: e.Node.cached()}
		}
		n.value = obj
	} else {
		arr := make([]any, len(entries))
		for i, e := range entries {
			arr[i] = e.Node.cached()
		}
		n.value = arr
	}
	n.entries = entries
	n.materialized = true
	return n.value, nil
}

func (n *Node) cached() any {
	if n.kind == Atom {
		return n.atom
	}
	return n.value
}
