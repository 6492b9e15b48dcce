// Package rules reads pattern rule files.
//
//	options:
//	  all-matching: false
//	rules:
//	  - name: authors
//	    pattern: "$.store.book[*].author"
//	  - name: deep
//	    pattern: ["$", "**", "bar"]
package rules

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	yaml "github.com/goccy/go-yaml"

	"github.com/jacoelho/jpq/internal/automaton"
	"github.com/jacoelho/jpq/internal/pattern"
)

// ErrRules is the sentinel error for all rule file failures.
var ErrRules = errors.New("rules error")

// Rule is one named pattern.
type Rule struct {
	Name    string          `yaml:"name"`
	Pattern pattern.Pattern `yaml:"pattern"`
}

// File is a decoded rule file. Options keeps every key; only the ones the
// automaton recognizes take effect.
type File struct {
	Options map[string]any `yaml:"options,omitempty"`
	Rules   []Rule         `yaml:"rules"`
}

// Parse decodes a rule file. Rules without a name are named after their
// position.
func Parse(r io.Reader) (*File, error) {
	var f File
	if err := yaml.NewDecoder(r, yaml.DisallowUnknownField()).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: failed to decode YAML: %v", ErrRules, err)
	}

	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("%w: no rules defined", ErrRules)
	}

	seen := make(map[string]int, len(f.Rules))
	for i := range f.Rules {
		rule := &f.Rules[i]
		if rule.Name == "" {
			rule.Name = "rule-" + strconv.Itoa(i)
		}
		if prev, dup := seen[rule.Name]; dup {
			return nil, fmt.Errorf("%w: rule %d reuses name %q of rule %d", ErrRules, i, rule.Name, prev)
		}
		seen[rule.Name] = i
		if len(rule.Pattern) == 0 {
			return nil, fmt.Errorf("%w: rule %q has no pattern", ErrRules, rule.Name)
		}
	}

	if _, err := automaton.OptionsFromMap(f.Options); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRules, err)
	}

	return &f, nil
}

// ParseFile reads and decodes the rule file at name.
func ParseFile(name string) (*File, error) {
	fh, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRules, err)
	}
	defer fh.Close()

	return Parse(fh)
}

// AutomatonOptions returns the recognized options.
func (f *File) AutomatonOptions() []automaton.Option {
	opts, _ := automaton.OptionsFromMap(f.Options) // validated by Parse
	return opts
}

// Bind attaches callbacks to the rules. newCallback is called once per rule.
func (f *File) Bind(newCallback func(name string) automaton.Callback) []automaton.Rule {
	out := make([]automaton.Rule, len(f.Rules))
	for i, r := range f.Rules {
		out[i] = automaton.Rule{
			Name:    r.Name,
			Pattern: r.Pattern,
		}
		if newCallback != nil {
			out[i].Callback = newCallback(r.Name)
		}
	}
	return out
}
