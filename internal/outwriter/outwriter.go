// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints an assessment using the configured output format.
func (ow *OutWriter) WriteReport(out *schema.AssessmentOutput, cfg *contract.Config, duration time.Duration) error {
	return PrintReportResults(out, cfg, duration)
}

// WriteHistory prints stored assessment runs using the configured output format.
func (ow *OutWriter) WriteHistory(runs []schema.AssessmentRunRecord, cfg *contract.Config) error {
	return PrintHistoryResults(runs, cfg)
}

// WriteRunDetail prints a single stored assessment run with its report payload.
func (ow *OutWriter) WriteRunDetail(run *schema.AssessmentRunRecord, cfg *contract.Config) error {
	return PrintRunDetail(run, cfg)
}

// WriteDimensions prints dimension definitions using the configured output format.
func (ow *OutWriter) WriteDimensions(weights map[schema.Dimension]float64, platforms []string, cfg *contract.Config) error {
	return PrintDimensionDefinitions(weights, platforms, cfg)
}

// GetMaxTableTextWidth calculates the maximum width for interpretation text
// in table output based on terminal width and table configuration.
func GetMaxTableTextWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for fixed columns with table formatting
	baseWidth := 60 // Dimension + Indicator + Value + Baseline + Conf with borders/padding

	// Reserve generous space for table borders, separators, and padding
	baseWidth += 20

	// Calculate available space for interpretation text
	available := termWidth - baseWidth
	if available < 15 {
		// Minimum reasonable text width
		return 15
	}
	if available > 70 {
		// Maximum text width to prevent overly long rows
		return 70
	}
	return available
}
