// Package tree builds lazily evaluated document trees from event sequences.
//
// Nodes are produced one at a time. Reading a node pulls only the events
// inside its own span, and nodes that are passed over are drained without
// being constructed, so unread input is never tokenized ahead of demand.
package tree

import (
	"errors"
	"fmt"
	"io"

	"github.com/jacoelho/jpq/internal/event"
	"github.com/jacoelho/jpq/internal/stack"
)

type frame struct {
	kind event.Kind // StartObject or StartArray
	node *Node      // nil while draining a span nobody holds
}

// Builder turns an event sequence into successive top-level nodes.
type Builder struct {
	seq    event.Sequence
	frames *stack.Stack[frame]
	err    error
	events int
}

// NewBuilder returns a Builder reading from seq.
func NewBuilder(seq event.Sequence) *Builder {
	return &Builder{seq: seq, frames: stack.NewWithCapacity[frame](16)}
}

// Build returns the first document in seq. It returns io.EOF when seq holds
// no events.
func Build(seq event.Sequence) (*Node, error) {
	return NewBuilder(seq).Next()
}

// Next returns the next top-level document, draining whatever remains of the
// previous one. It returns io.EOF once the sequence is exhausted.
func (b *Builder) Next() (*Node, error) {
	if err := b.skipTo(0); err != nil {
		return nil, err
	}

	ev, err := b.read()
	if err != nil {
		return nil, err
	}
	return b.node(ev)
}

// Events returns the number of events pulled from the sequence.
func (b *Builder) Events() int { return b.events }

func (b *Builder) read() (event.Event, error) {
	if b.err != nil {
		return event.Event{}, b.err
	}
	ev, err := b.seq.Next()
	if err != nil {
		b.err = err
		return event.Event{}, err
	}
	b.events++
	return ev, nil
}

// readInside reads an event that must exist because a span is still open.
func (b *Builder) readInside() (event.Event, error) {
	ev, err := b.read()
	if errors.Is(err, io.EOF) {
		b.err = fmt.Errorf("%w: end of input with %d open container(s)", ErrUnbalanced, b.frames.Size())
		return event.Event{}, b.err
	}
	return ev, err
}

func (b *Builder) fail(format string, args ...any) error {
	b.err = fmt.Errorf("%w: %s", ErrUnbalanced, fmt.Sprintf(format, args...))
	return b.err
}

// node creates the node starting with ev.
func (b *Builder) node(ev event.Event) (*Node, error) {
	switch ev.Kind {
	case event.Atom:
		return &Node{kind: Atom, atom: ev.Value}, nil
	case event.StartObject, event.StartArray:
		n := &Node{b: b, kind: Object}
		if ev.Kind == event.StartArray {
			n.kind = Array
		}
		b.frames.Push(frame{kind: ev.Kind, node: n})
		n.depth = b.frames.Size()
		return n, nil
	case event.Key:
		return nil, b.fail("key %q where a value was expected", ev.Key)
	default:
		return nil, b.fail("%v where a value was expected", ev.Kind)
	}
}

// close pops the innermost frame for an end event.
func (b *Builder) close(ev event.Event) error {
	top, ok := b.frames.Peek()
	if !ok {
		return b.fail("%v without open container", ev.Kind)
	}
	if top.kind != ev.Kind.Closes() {
		return b.fail("%v closes %v", ev.Kind, top.kind)
	}
	b.frames.Pop()
	if top.node != nil && top.node.state != done {
		top.node.state = skipped
	}
	return nil
}

// skipTo drains events until only depth frames remain open.
func (b *Builder) skipTo(depth int) error {
	for b.frames.Size() > depth {
		ev, err := b.readInside()
		if err != nil {
			return err
		}
		switch {
		case ev.Kind.IsStart():
			b.frames.Push(frame{kind: ev.Kind})
		case ev.Kind.IsEnd():
			if err := b.close(ev); err != nil {
				return err
			}
		}
	}
	return b.err
}
