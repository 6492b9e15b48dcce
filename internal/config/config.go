package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jacoelho/jpq/internal/automaton"
	"github.com/jacoelho/jpq/internal/pattern"
	"github.com/jacoelho/jpq/internal/processor"
	"github.com/jacoelho/jpq/internal/producer"
	"github.com/jacoelho/jpq/internal/rules"
	"github.com/jacoelho/jpq/internal/source"
)

// Stdin is the input name that reads standard input.
const Stdin = "-"

var (
	ErrNoRules          = errors.New("no patterns or rules file specified")
	ErrInvalidQueueSize = errors.New("queue size must be positive or -1 for unbounded")
	ErrInvalidRateLimit = errors.New("rate limit cannot be negative")
	ErrInvalidLimit     = errors.New("limit cannot be negative")
	ErrRepeatedStdin    = errors.New("standard input can only be read once")
)

// Config represents the complete configuration of a query run.
type Config struct {
	Inputs []string

	// Rules
	RulesFile    string
	Patterns     []string
	MostSpecific bool
	CutSubtrees  bool

	// Reading pipeline
	Sync      bool
	QueueSize int
	RateLimit float64 // Events per second (0 = unlimited)
	Driver    string

	// Output
	Limit   int // Stop after this many matches (0 = no limit)
	Summary bool
}

// Default returns a Config with the pipeline defaults.
func Default() *Config {
	return &Config{
		QueueSize: producer.DefaultCapacity,
		Driver:    source.DriverJSON,
	}
}

// RegisterReaderFlags binds the flags shared by every command that reads input.
func (c *Config) RegisterReaderFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.Sync, "sync", c.Sync, "Tokenize on the calling goroutine instead of a background producer")
	fs.IntVar(&c.QueueSize, "queue", c.QueueSize, "Producer queue capacity (-1 for unbounded)")
	fs.Float64Var(&c.RateLimit, "rate-limit", c.RateLimit, "Tokenizer rate limit in events per second (0 for unlimited)")
	fs.StringVar(&c.Driver, "tokenizer", c.Driver, fmt.Sprintf("Tokenizer driver %v", source.Drivers()))
}

// RegisterQueryFlags binds the query flags.
func (c *Config) RegisterQueryFlags(fs *pflag.FlagSet) {
	c.RegisterReaderFlags(fs)
	fs.StringArrayVarP(&c.Patterns, "pattern", "p", c.Patterns, "Pattern expression (can be used multiple times)")
	fs.StringVarP(&c.RulesFile, "rules", "r", c.RulesFile, "Path to YAML rules file")
	fs.BoolVar(&c.MostSpecific, "most-specific", c.MostSpecific, "Fire only the most specific matching rules at each node")
	fs.BoolVar(&c.CutSubtrees, "cut-subtrees", c.CutSubtrees, "Do not descend below nodes where a rule fired")
	fs.IntVar(&c.Limit, "limit", c.Limit, "Stop after N matches (0 for no limit)")
	fs.BoolVar(&c.Summary, "summary", c.Summary, "Print a run summary to stderr")
}

// SetInputs records positional arguments, reading stdin when there are none.
func (c *Config) SetInputs(args []string) {
	if len(args) == 0 {
		c.Inputs = []string{Stdin}
		return
	}
	c.Inputs = args
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.QueueSize < 1 && c.QueueSize != producer.Unbounded {
		return fmt.Errorf("%w, got: %d", ErrInvalidQueueSize, c.QueueSize)
	}

	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}

	if c.Limit < 0 {
		return ErrInvalidLimit
	}

	if err := source.CheckDriver(c.Driver); err != nil {
		return err
	}

	stdin := 0
	for _, file := range c.Inputs {
		if file == Stdin {
			stdin++
			continue
		}
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("input file %s not found: %w", file, err)
		}
	}
	if stdin > 1 {
		return ErrRepeatedStdin
	}

	return nil
}

// ValidateQuery validates a query configuration.
func (c *Config) ValidateQuery() error {
	if len(c.Patterns) == 0 && c.RulesFile == "" {
		return ErrNoRules
	}

	if c.RulesFile != "" {
		if _, err := os.Stat(c.RulesFile); err != nil {
			return fmt.Errorf("rules file %s not found: %w", c.RulesFile, err)
		}
	}

	return c.Validate()
}

// Rules loads the rules file, if any, and appends one rule per inline
// pattern named after its expression.
func (c *Config) Rules() (*rules.File, error) {
	f := &rules.File{}
	if c.RulesFile != "" {
		var err error
		if f, err = rules.ParseFile(c.RulesFile); err != nil {
			return nil, err
		}
	}

	for _, expr := range c.Patterns {
		p, err := pattern.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", expr, err)
		}
		f.Rules = append(f.Rules, rules.Rule{Name: expr, Pattern: p})
	}

	if len(f.Rules) == 0 {
		return nil, ErrNoRules
	}

	return f, nil
}

// AutomatonOptions returns the rule file options overridden by the flags.
func (c *Config) AutomatonOptions(f *rules.File) []automaton.Option {
	var opts []automaton.Option
	if f != nil {
		opts = f.AutomatonOptions()
	}
	if c.MostSpecific {
		opts = append(opts, automaton.WithAllMatching(false))
	}
	if c.CutSubtrees {
		opts = append(opts, automaton.WithCutSubtrees(true))
	}
	return opts
}

// ProcessorOptions returns the pipeline settings for a processor.
func (c *Config) ProcessorOptions(logger *zap.Logger) []processor.Option {
	return []processor.Option{
		processor.WithDriver(c.Driver),
		processor.WithThreaded(!c.Sync),
		processor.WithQueueSize(c.QueueSize),
		processor.WithRateLimit(c.RateLimit),
		processor.WithLogger(logger),
	}
}

// ProducerOptions returns the pipeline settings for a bare producer.
func (c *Config) ProducerOptions(logger *zap.Logger) []producer.Option {
	return []producer.Option{
		producer.WithThreaded(!c.Sync),
		producer.WithCapacity(c.QueueSize),
		producer.WithRateLimit(c.RateLimit, 1),
		producer.WithLogger(logger),
	}
}
