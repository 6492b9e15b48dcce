// Package output writes matches and events as JSON lines.
package output

import (
	"bufio"
	"io"
	"sync"

	"github.com/jacoelho/jpq/internal/automaton"
	"github.com/jacoelho/jpq/internal/event"
	"github.com/jacoelho/jpq/internal/path"
	"github.com/jacoelho/jpq/internal/value"
	"github.com/jacoelho/jpq/internal/walker"
)

// Writer encodes one JSON document per line without HTML escaping. It is safe
// for concurrent use.
type Writer struct {
	mu    sync.Mutex
	buf   *bufio.Writer
	line  []byte
	count int
}

// NewWriter returns a Writer over w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(w)}
}

// Write encodes a match of rule at p as
// {"rule":..,"path":..,"pointer":..,"value":..}.
func (w *Writer) Write(rule string, p path.Path, v any) error {
	return w.encode(value.Object{
		{Key: "rule", Value: rule},
		{Key: "path", Value: p.String()},
		{Key: "pointer", Value: p.Pointer()},
		{Key: "value", Value: v},
	})
}

// WriteMatch encodes m.
func (w *Writer) WriteMatch(m walker.Match) error {
	name := ""
	if m.Rule != nil {
		name = m.Rule.Name
	}
	return w.Write(name, m.Path, m.Value)
}

// WriteEvent encodes ev as {"kind":..,"key":..} or {"kind":..,"value":..}.
func (w *Writer) WriteEvent(ev event.Event) error {
	line := map[string]any{"kind": ev.Kind.String()}
	switch ev.Kind {
	case event.Key:
		line["key"] = ev.Key
	case event.Atom:
		line["value"] = ev.Value
	}
	return w.encode(line)
}

// Callback returns a rule callback writing to w under rule.
func (w *Writer) Callback(rule string) automaton.Callback {
	return func(p path.Path, v any) error {
		return w.Write(rule, p, v)
	}
}

// Count returns the number of lines written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Flush writes buffered lines to the underlying writer.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Flush()
}

func (w *Writer) encode(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	line, err := value.Append(w.line[:0], v, false)
	if err != nil {
		return err
	}
	w.line = append(line, '\n')
	if _, err := w.buf.Write(w.line); err != nil {
		return err
	}
	w.count++
	return nil
}

// WriteValue encodes a bare value.
func (w *Writer) WriteValue(v any) error {
	return w.encode(v)
}
