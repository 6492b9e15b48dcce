package stdout

import (
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/jpq/internal/formatter"
	"github.com/jacoelho/jpq/internal/results"
)

const rule = "--------------------------------------------------------------------------------"

// Formatter implements text summary output.
type Formatter struct {
	writer io.Writer
}

// New creates a new formatter that writes to stderr, leaving stdout to
// matches.
func New() formatter.Formatter {
	return &Formatter{
		writer: os.Stderr,
	}
}

// NewWithWriter creates a new formatter with a custom writer.
func NewWithWriter(writer io.Writer) formatter.Formatter {
	return &Formatter{
		writer: writer,
	}
}

// Format writes one line per input followed by the totals.
func (f *Formatter) Format(s *results.Summary) error {
	if s == nil {
		return nil
	}

	for _, r := range s.InputResults {
		status := "Success"
		if r.Error != nil {
			status = fmt.Sprintf("Failed: %v", r.Error)
		}
		_, err := fmt.Fprintf(f.writer, "%s: %s (%d document(s), %d match(es), %d event(s) in %d ms)\n",
			r.Input, status, r.Documents, r.Matches, r.Events, r.Duration.Milliseconds())
		if err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(f.writer, rule); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(f.writer, "Processed inputs: %d\n", s.ProcessedInputs); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Documents:        %d\n", s.Documents); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Events:           %d (%.2f/s)\n", s.Events, s.EventsPerSecond()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Matches:          %d\n", s.Matches); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Succeeded inputs: %d (%.1f%%)\n", s.SucceededInputs, s.SuccessPercentage()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Failed inputs:    %d (%.1f%%)\n", s.FailedInputs, s.FailurePercentage()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Duration:         %d ms\n", s.TotalDuration.Milliseconds()); err != nil {
		return err
	}

	return nil
}
