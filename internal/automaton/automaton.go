// Package automaton compiles path patterns into a trie and matches concrete
// paths against it one segment at a time.
//
// A position in the trie is a State: the ordered list of trie nodes reachable
// through the path taken so far. A node appears once per distinct way of
// reaching it, so a rule matched through two different any-subpath
// expansions fires twice.
package automaton

import (
	"fmt"

	"github.com/jacoelho/jpq/internal/path"
	"github.com/jacoelho/jpq/internal/pattern"
)

// Callback receives the concrete path of a matched node and its value.
type Callback func(p path.Path, v any) error

// Rule binds a pattern to a callback. Name is informational.
type Rule struct {
	Name     string
	Pattern  pattern.Pattern
	Callback Callback
}

type trieKey struct {
	kind  pattern.Kind
	key   string
	index int
}

var (
	stepKey    = trieKey{kind: pattern.AnyStep}
	subpathKey = trieKey{kind: pattern.AnySubpath}
)

func keyOf(s pattern.Segment) trieKey {
	switch s.Kind {
	case pattern.Key:
		return trieKey{kind: pattern.Key, key: s.Key}
	case pattern.Index:
		return trieKey{kind: pattern.Index, index: s.Index}
	default:
		return trieKey{kind: s.Kind}
	}
}

func literalKey(s path.Segment) trieKey {
	if s.Kind == path.Index {
		return trieKey{kind: pattern.Index, index: s.Index}
	}
	return trieKey{kind: pattern.Key, key: s.Key}
}

type node struct {
	via      pattern.Kind // kind of the edge leading here, Root for the root
	children map[trieKey]*node
	rules    []*Rule
}

func (n *node) child(k trieKey) *node {
	if n.children == nil {
		n.children = make(map[trieKey]*node)
	}
	c, ok := n.children[k]
	if !ok {
		c = &node{via: k.kind}
		n.children[k] = c
	}
	return c
}

// Automaton is immutable once built and safe for concurrent use.
type Automaton struct {
	root  *node
	rules []*Rule
	opts  Options
}

// Build compiles rules into an Automaton.
func Build(rules []Rule, opts ...Option) (*Automaton, error) {
	a := &Automaton{
		root: &node{via: pattern.Root},
		opts: DefaultOptions(),
	}
	for _, opt := range opts {
		opt(&a.opts)
	}

	for i := range rules {
		r := &rules[i]
		if err := r.Pattern.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.Name, err)
		}
		n := a.root
		for _, s := range r.Pattern[1:] {
			n = n.child(keyOf(s))
		}
		n.rules = append(n.rules, r)
		a.rules = append(a.rules, r)
	}
	return a, nil
}

// Options returns the firing options.
func (a *Automaton) Options() Options { return a.opts }

// Rules returns the compiled rules in registration order.
func (a *Automaton) Rules() []*Rule { return a.rules }

// State is a position in the automaton.
type State struct {
	nodes []*node
}

// Dead reports whether no rule can match at this position or below it.
func (s State) Dead() bool { return len(s.nodes) == 0 }

// Start returns the position for the document root.
func (a *Automaton) Start() State {
	return State{nodes: closure(nil, a.root)}
}

// Step advances s over one concrete segment.
func (a *Automaton) Step(s State, seg path.Segment) State {
	var next []*node
	for _, n := range s.nodes {
		if c, ok := n.children[literalKey(seg)]; ok {
			next = closure(next, c)
		}
		if c, ok := n.children[stepKey]; ok {
			next = closure(next, c)
		}
		// any-subpath absorbs one more segment
		if n.via == pattern.AnySubpath {
			next = closure(next, n)
		}
	}
	return State{nodes: next}
}

// closure appends n and every node reachable from it through any-subpath
// edges, which match zero segments.
func closure(out []*node, n *node) []*node {
	out = append(out, n)
	if c, ok := n.children[subpathKey]; ok {
		out = closure(out, c)
	}
	return out
}

// Fire returns the rules to invoke at s, honoring AllMatching. Rules reached
// through a literal edge come first, then any-step, then any-subpath.
func (a *Automaton) Fire(s State) []*Rule {
	var literal, step, subpath []*Rule
	for _, n := range s.nodes {
		if len(n.rules) == 0 {
			continue
		}
		switch n.via {
		case pattern.AnyStep:
			step = append(step, n.rules...)
		case pattern.AnySubpath:
			subpath = append(subpath, n.rules...)
		default:
			literal = append(literal, n.rules...)
		}
	}

	if !a.opts.AllMatching {
		switch {
		case len(literal) > 0:
			return literal
		case len(step) > 0:
			return step
		default:
			return subpath
		}
	}

	out := make([]*Rule, 0, len(literal)+len(step)+len(subpath))
	out = append(out, literal...)
	out = append(out, step...)
	return append(out, subpath...)
}
