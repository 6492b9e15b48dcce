package automaton

import (
	"errors"
	"fmt"
)

// Option keys recognized by OptionsFromMap.
const (
	KeyAllMatching = "all-matching"
	KeyCutSubtrees = "cut-subtrees"
)

// ErrOption indicates a recognized option with a value of the wrong type.
var ErrOption = errors.New("automaton: invalid option")

// Options controls callback firing.
type Options struct {
	// AllMatching fires every matching rule. When false only the rules of
	// the most specific branch fire: literal, then any-step, then any-subpath.
	AllMatching bool
	// CutSubtrees stops descending below a node once a rule fired there.
	CutSubtrees bool
}

// DefaultOptions returns AllMatching enabled and CutSubtrees disabled.
func DefaultOptions() Options {
	return Options{AllMatching: true}
}

// Option configures an Automaton.
type Option func(*Options)

func WithAllMatching(v bool) Option {
	return func(o *Options) { o.AllMatching = v }
}

func WithCutSubtrees(v bool) Option {
	return func(o *Options) { o.CutSubtrees = v }
}

// OptionsFromMap reads the recognized keys of m. Unknown keys are ignored.
func OptionsFromMap(m map[string]any) ([]Option, error) {
	var opts []Option
	for _, key := range []string{KeyAllMatching, KeyCutSubtrees} {
		raw, ok := m[key]
		if !ok {
			continue
		}
		v, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a boolean, got %T", ErrOption, key, raw)
		}
		switch key {
		case KeyAllMatching:
			opts = append(opts, WithAllMatching(v))
		case KeyCutSubtrees:
			opts = append(opts, WithCutSubtrees(v))
		}
	}
	return opts, nil
}
