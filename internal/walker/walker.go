// Package walker traverses lazy trees depth first and fires the automaton
// rules matching each visited node.
//
// Subtrees in which no rule can match are never entered, so their events are
// drained by the tree builder without being converted, and once a callback
// fails or the caller stops iterating nothing further is read.
package walker

import (
	"context"
	"errors"
	"iter"

	"go.uber.org/zap"

	"github.com/jacoelho/jpq/internal/automaton"
	"github.com/jacoelho/jpq/internal/path"
	"github.com/jacoelho/jpq/internal/tree"
)

// Match is a rule firing at a node.
type Match struct {
	Rule  *automaton.Rule
	Path  path.Path
	Value any
}

// Stats counts work done by a Walker across traversals.
type Stats struct {
	Visited int // nodes visited
	Fired   int // rule firings
	Pruned  int // children skipped because no rule can match below them
	Cut     int // subtrees skipped after a firing with cut-subtrees
}

// Walker matches trees against one automaton.
type Walker struct {
	a      *automaton.Automaton
	logger *zap.Logger
	stats  Stats
}

// Option configures a Walker.
type Option func(*Walker)

// WithLogger sets the logger used for skip decisions at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(w *Walker) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a Walker for a.
func New(a *automaton.Automaton, opts ...Option) *Walker {
	w := &Walker{a: a, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Stats returns the counters accumulated so far.
func (w *Walker) Stats() Stats { return w.stats }

// Consume walks root and invokes the callback of every firing rule. A
// callback error stops the traversal and is returned unmodified.
func (w *Walker) Consume(ctx context.Context, root *tree.Node) error {
	return w.walk(ctx, root, func(r *automaton.Rule, p path.Path, v any) error {
		if r.Callback == nil {
			return nil
		}
		return r.Callback(p, v)
	})
}

var errStop = errors.New("walker: stopped")

// Matches yields every firing in document order. Breaking out of the loop
// stops the traversal before anything else is read. Rule callbacks are not
// invoked.
func (w *Walker) Matches(ctx context.Context, root *tree.Node) iter.Seq2[Match, error] {
	return func(yield func(Match, error) bool) {
		err := w.walk(ctx, root, func(r *automaton.Rule, p path.Path, v any) error {
			if !yield(Match{Rule: r, Path: p, Value: v}, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield(Match{}, err)
		}
	}
}

// Consume walks root with a fresh Walker.
func Consume(ctx context.Context, a *automaton.Automaton, root *tree.Node) error {
	return New(a).Consume(ctx, root)
}

type emitFunc func(r *automaton.Rule, p path.Path, v any) error

func (w *Walker) walk(ctx context.Context, root *tree.Node, emit emitFunc) error {
	v := visitor{
		ctx:  ctx,
		w:    w,
		cut:  w.a.Options().CutSubtrees,
		path: path.NewBuilder(),
		emit: emit,
	}
	return v.visit(w.a.Start(), root)
}

type visitor struct {
	ctx  context.Context
	w    *Walker
	cut  bool
	path *path.Builder
	emit emitFunc
}

func (v *visitor) visit(state automaton.State, n *tree.Node) error {
	if err := v.ctx.Err(); err != nil {
		return err
	}
	v.w.stats.Visited++

	rules := v.w.a.Fire(state)
	if len(rules) > 0 {
		value, err := n.Value()
		if err != nil {
			return err
		}
		p := v.path.Path()
		for _, r := range rules {
			v.w.stats.Fired++
			if err := v.emit(r, p, value); err != nil {
				return err
			}
		}
	}

	if !n.IsCompound() {
		return nil
	}
	if len(rules) > 0 && v.cut {
		v.w.stats.Cut++
		if ce := v.w.logger.Check(zap.DebugLevel, "cut subtree"); ce != nil {
			ce.Write(zap.Stringer("path", v.path.Path()))
		}
		return nil
	}

	for e, err := range n.Entries() {
		if err != nil {
			return err
		}

		seg := path.KeyOf(e.Key)
		if n.Kind() == tree.Array {
			seg = path.IndexOf(e.Index)
		}

		next := v.w.a.Step(state, seg)
		if next.Dead() {
			v.w.stats.Pruned++
			if ce := v.w.logger.Check(zap.DebugLevel, "skip subtree"); ce != nil {
				v.path.Push(seg)
				ce.Write(zap.Stringer("path", v.path.Path()))
				v.path.Pop()
			}
			continue
		}

		v.path.Push(seg)
		err := v.visit(next, e.Node)
		v.path.Pop()
		if err != nil {
			return err
		}
	}
	return nil
}
