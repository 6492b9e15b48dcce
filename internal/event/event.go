// Package event defines the flat structural events that connect tokenization
// with tree construction.
package event

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jacoelho/jpq/internal/source"
)

// Kind represents the type of a structural event.
type Kind uint8

const (
	StartObject Kind = iota
	EndObject
	StartArray
	EndArray
	Key
	Atom
)

func (k Kind) String() string {
	switch k {
	case StartObject:
		return "StartObject"
	case EndObject:
		return "EndObject"
	case StartArray:
		return "StartArray"
	case EndArray:
		return "EndArray"
	case Key:
		return "Key"
	case Atom:
		return "Atom"
	default:
		return "Unknown"
	}
}

// IsStart reports whether k opens a compound value.
func (k Kind) IsStart() bool { return k == StartObject || k == StartArray }

// IsEnd reports whether k closes a compound value.
func (k Kind) IsEnd() bool { return k == EndObject || k == EndArray }

// Closes returns the start kind matched by an end kind.
func (k Kind) Closes() Kind {
	if k == EndArray {
		return StartArray
	}
	return StartObject
}

// Event is a single structural notification in document order.
// Key is set for Key events; Value holds the scalar of Atom events and is one
// of string, json.Number, bool or nil.
type Event struct {
	Kind  Kind
	Key   string
	Value any
}

func (e Event) String() string {
	switch e.Kind {
	case Key:
		return "Key(" + strconv.Quote(e.Key) + ")"
	case Atom:
		switch v := e.Value.(type) {
		case string:
			return "Atom(" + strconv.Quote(v) + ")"
		case nil:
			return "Atom(null)"
		default:
			return fmt.Sprintf("Atom(%v)", v)
		}
	default:
		return e.Kind.String()
	}
}

// Sequence is a pull-based stream of events. Next returns io.EOF after the
// last event.
type Sequence interface {
	Next() (Event, error)
}

// FromToken maps a tokenizer token to its event.
func FromToken(tok source.Token) (Event, error) {
	switch tok.Kind {
	case source.KindBeginObject:
		return Event{Kind: StartObject}, nil
	case source.KindEndObject:
		return Event{Kind: EndObject}, nil
	case source.KindBeginArray:
		return Event{Kind: StartArray}, nil
	case source.KindEndArray:
		return Event{Kind: EndArray}, nil
	case source.KindKey:
		return Event{Kind: Key, Key: tok.String}, nil
	case source.KindString:
		return Event{Kind: Atom, Value: tok.String}, nil
	case source.KindNumber:
		return Event{Kind: Atom, Value: json.Number(tok.Number)}, nil
	case source.KindBool:
		return Event{Kind: Atom, Value: tok.Bool}, nil
	case source.KindNull:
		return Event{Kind: Atom, Value: nil}, nil
	default:
		return Event{}, fmt.Errorf("%w: %v at offset %d", ErrMalformedToken, tok.Kind, tok.Offset)
	}
}

// Slice is a Sequence over an in-memory list of events.
type Slice struct {
	events []Event
	pos    int
}

// FromSlice returns a Sequence yielding events in order.
func FromSlice(events ...Event) *Slice {
	return &Slice{events: events}
}

func (s *Slice) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

// Consumed reports how many events have been pulled so far.
func (s *Slice) Consumed() int { return s.pos }
