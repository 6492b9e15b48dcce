// Package results collects per-input statistics of a query run.
package results

import (
	"time"

	"github.com/jacoelho/jpq/internal/processor"
)

type InputResult struct {
	Input     string
	RunID     string
	Documents int
	Events    int
	Matches   int
	Pruned    int
	Duration  time.Duration
	Error     error
}

type InputResultBuilder struct {
	result InputResult
}

func NewInputResultBuilder(input string) *InputResultBuilder {
	return &InputResultBuilder{result: InputResult{Input: input}}
}

// WithStats copies the processor counters. Matches counts rule firings.
func (b *InputResultBuilder) WithStats(stats processor.Stats) *InputResultBuilder {
	b.result.RunID = stats.RunID
	b.result.Documents = stats.Documents
	b.result.Events = stats.Events
	b.result.Matches = stats.Fired
	b.result.Pruned = stats.Pruned
	b.result.Duration = stats.Duration
	return b
}

// WithMatches overrides the match count, for runs cut short by a limit.
func (b *InputResultBuilder) WithMatches(count int) *InputResultBuilder {
	b.result.Matches = count
	return b
}

func (b *InputResultBuilder) WithDuration(duration time.Duration) *InputResultBuilder {
	b.result.Duration = duration
	return b
}

func (b *InputResultBuilder) WithError(err error) *InputResultBuilder {
	b.result.Error = err
	return b
}

func (b *InputResultBuilder) Build() InputResult {
	return b.result
}

type Summary struct {
	InputResults    []InputResult
	ProcessedInputs int
	Documents       int
	Events          int
	Matches         int
	SucceededInputs int
	FailedInputs    int
	TotalDuration   time.Duration
}

func NewSummary(expectedInputs int) *Summary {
	return &Summary{
		InputResults: make([]InputResult, 0, expectedInputs),
	}
}

func (s *Summary) Add(builder *InputResultBuilder) {
	result := builder.Build()

	s.InputResults = append(s.InputResults, result)
	s.ProcessedInputs++
	s.Documents += result.Documents
	s.Events += result.Events
	s.Matches += result.Matches

	if result.Error != nil {
		s.FailedInputs++
	} else {
		s.SucceededInputs++
	}
}

func (s *Summary) SetTotalDuration(duration time.Duration) {
	s.TotalDuration = duration
}

// Err returns the first input error.
func (s *Summary) Err() error {
	for _, r := range s.InputResults {
		if r.Error != nil {
			return r.Error
		}
	}
	return nil
}

func (s *Summary) EventsPerSecond() float64 {
	if s.TotalDuration == 0 {
		return 0
	}
	return float64(s.Events) / s.TotalDuration.Seconds()
}

func (s *Summary) SuccessPercentage() float64 {
	if s.ProcessedInputs == 0 {
		return 0
	}
	return (float64(s.SucceededInputs) / float64(s.ProcessedInputs)) * 100
}

func (s *Summary) FailurePercentage() float64 {
	if s.ProcessedInputs == 0 {
		return 0
	}
	return (float64(s.FailedInputs) / float64(s.ProcessedInputs)) * 100
}
