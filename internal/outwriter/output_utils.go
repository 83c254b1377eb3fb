package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeRawJSON re-indents a stored JSON payload and writes it.
func writeRawJSON(w io.Writer, payload []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		// Write the payload as stored when it does not re-indent
		if _, werr := w.Write(payload); werr != nil {
			return werr
		}
		return nil
	}
	buf.WriteByte('\n')
	_, err := io.WriteString(w, buf.String())
	return err
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// formatFloat renders a measurement value with reporting precision.
func formatFloat(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// formatBaseline renders an optional baseline, N/A when absent.
func formatBaseline(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.3f", *v)
}

// formatConfidence renders an optional confidence as a percentage, N/A when absent.
func formatConfidence(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.0f%%", *v*100)
}

// formatPercent renders a score in [0,1] as a whole percentage.
func formatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// riskIcon returns the traffic-light icon for a risk level.
func riskIcon(level schema.RiskLevel) string {
	switch level {
	case schema.LowRisk:
		return "🟢"
	case schema.ModerateRisk:
		return "🟡"
	case schema.HighRisk:
		return "🟠"
	case schema.SevereRisk:
		return "🔴"
	default:
		return "⚪"
	}
}

// riskLabel returns the risk level label, colored when enabled.
func riskLabel(level schema.RiskLevel, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(level)
	}
	return contract.GetPlainLabel(level)
}

// titlePatternID converts a snake_case pattern identifier into display casing.
func titlePatternID(id string) string {
	words := strings.Split(id, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}

// joinDimensions renders dimension codes as a comma-separated list.
func joinDimensions(dims []schema.Dimension) string {
	codes := make([]string, len(dims))
	for i, dim := range dims {
		codes[i] = string(dim)
	}
	return strings.Join(codes, ", ")
}

// sortedIndicatorNames returns a report's indicator names in stable order.
func sortedIndicatorNames(rep *schema.DimensionReport) []string {
	names := make([]string, 0, len(rep.Indicators))
	for name := range rep.Indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortedSummaryKeys returns input summary keys in stable order.
func sortedSummaryKeys(summary map[string]any) []string {
	keys := make([]string, 0, len(summary))
	for key := range summary {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
