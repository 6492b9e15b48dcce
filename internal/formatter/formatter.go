package formatter

import (
	"github.com/jacoelho/jpq/internal/results"
)

// Formatter defines the interface for run summary output.
// Implementations are responsible for determining the output device.
type Formatter interface {
	Format(summary *results.Summary) error
}
