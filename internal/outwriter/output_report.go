package outwriter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintReportResults outputs an assessment, dispatching based on the output format configured.
func PrintReportResults(out *schema.AssessmentOutput, cfg *contract.Config, duration time.Duration) error {
	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONReport(out.Report, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVReport(out.Report, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.MarkdownOut:
		if err := printMarkdownReport(out.Report, cfg); err != nil {
			return fmt.Errorf("error writing Markdown output: %w", err)
		}
	case schema.HTMLOut:
		if err := printHTMLReport(out, cfg); err != nil {
			return fmt.Errorf("error writing HTML output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTable(out.Report, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// printJSONReport handles opening the file and calling the JSON writer.
func printJSONReport(report *schema.EntrainReport, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONReport(w, report)
	}, "Wrote JSON report")
}

// printCSVReport handles opening the file and calling the CSV writer.
func printCSVReport(report *schema.EntrainReport, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVReport(w, report)
	}, "Wrote CSV report")
}

// printMarkdownReport handles opening the file and calling the Markdown writer.
func printMarkdownReport(report *schema.EntrainReport, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeMarkdownReport(w, report)
	}, "Wrote Markdown report")
}

// printHTMLReport handles opening the file and calling the chart page writer.
func printHTMLReport(out *schema.AssessmentOutput, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeHTMLReport(w, out)
	}, "Wrote HTML report")
}

// writeReportTable generates and writes the human-readable table.
func writeReportTable(report *schema.EntrainReport, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	header := "Entrain Assessment"
	if cfg.UseEmojis {
		header = "🧠 " + header
	}
	if _, err := fmt.Fprintf(writer, "%s v%s (generated %s)\n", header, report.Version, report.GeneratedAt.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	if len(report.InputSummary) > 0 {
		parts := make([]string, 0, len(report.InputSummary))
		for _, key := range sortedSummaryKeys(report.InputSummary) {
			parts = append(parts, fmt.Sprintf("%s=%v", key, report.InputSummary[key]))
		}
		if _, err := fmt.Fprintf(writer, "Input: %s\n", strings.Join(parts, " ")); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	table.Header([]string{"Dimension", "Indicator", "Value", "Baseline", "Conf", "Interpretation"})

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	maxText := GetMaxTableTextWidth(cfg)
	var data [][]string
	for _, dim := range report.SortedDimensions() {
		rep := report.Dimensions[dim]
		for _, name := range sortedIndicatorNames(rep) {
			ind := rep.Indicators[name]
			data = append(data, []string{
				string(dim),
				name,
				formatFloat(ind.Value),
				formatBaseline(ind.Baseline),
				formatConfidence(ind.Confidence),
				contract.TruncateText(ind.Interpretation, maxText),
			})
		}
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Per-dimension summaries below the table
	for _, dim := range report.SortedDimensions() {
		if _, err := fmt.Fprintf(writer, "%s: %s\n", dim, report.Dimensions[dim].Summary); err != nil {
			return err
		}
	}

	if cross := report.CrossDimensional; cross != nil {
		label := riskLabel(cross.RiskScore.Level, cfg)
		if cfg.UseEmojis {
			label = riskIcon(cross.RiskScore.Level) + " " + label
		}
		if _, err := fmt.Fprintf(writer, "Overall Risk: %s (%s)\n", label, formatPercent(cross.RiskScore.Score)); err != nil {
			return err
		}
		if len(cross.Patterns) > 0 {
			if _, err := fmt.Fprintf(writer, "Patterns detected: %d\n", len(cross.Patterns)); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintf(writer, "Analysis completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}
