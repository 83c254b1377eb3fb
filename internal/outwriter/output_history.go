package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintHistoryResults outputs stored assessment runs, dispatching based on the output format configured.
func PrintHistoryResults(runs []schema.AssessmentRunRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, runs)
		}, "Wrote JSON history")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVHistory(w, runs)
		}, "Wrote CSV history")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryTable(runs, cfg, w)
		}, "Wrote history table")
	}
}

// writeHistoryTable generates and writes the human-readable run table.
func writeHistoryTable(runs []schema.AssessmentRunRecord, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	table.Header([]string{"Run", "Started", "Duration", "Source", "Scope", "Convs", "Events", "Risk"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, run := range runs {
		data = append(data, []string{
			shortUUID(run.RunUUID),
			run.StartTime.Format("2006-01-02 15:04:05"),
			formatRunDuration(run.RunDurationMs),
			run.Source,
			string(run.Scope),
			strconv.Itoa(int(run.ConversationCount)),
			strconv.Itoa(int(run.EventCount)),
			formatRunRisk(&run, cfg),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Showing %d assessment run(s)\n", len(runs)); err != nil {
		return err
	}
	return nil
}

// PrintRunDetail outputs one stored run with its report payload.
func PrintRunDetail(run *schema.AssessmentRunRecord, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		// Emit the stored report payload when present, the run record otherwise
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if run.ReportJSON != nil && *run.ReportJSON != "" {
				return writeRawJSON(w, []byte(*run.ReportJSON))
			}
			return writeJSON(w, run)
		}, "Wrote JSON run detail")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeRunDetailText(w, run, cfg)
	}, "Wrote run detail")
}

// writeRunDetailText prints run metadata as a status block.
func writeRunDetailText(w io.Writer, run *schema.AssessmentRunRecord, cfg *contract.Config) error {
	lines := []string{
		fmt.Sprintf("Run UUID: %s", run.RunUUID),
		fmt.Sprintf("Assessment ID: %d", run.AssessmentID),
		fmt.Sprintf("Started: %s", run.StartTime.Format("2006-01-02 15:04:05")),
	}
	if run.EndTime != nil {
		lines = append(lines, fmt.Sprintf("Finished: %s", run.EndTime.Format("2006-01-02 15:04:05")))
	}
	lines = append(lines,
		fmt.Sprintf("Duration: %s", formatRunDuration(run.RunDurationMs)),
		fmt.Sprintf("Source: %s", run.Source),
		fmt.Sprintf("Scope: %s", run.Scope),
		fmt.Sprintf("Conversations: %d", run.ConversationCount),
		fmt.Sprintf("Events: %d", run.EventCount),
		fmt.Sprintf("Risk: %s", formatRunRisk(run, cfg)),
	)
	if run.ReportJSON != nil && *run.ReportJSON != "" {
		lines = append(lines, fmt.Sprintf("Report: stored (%d bytes); use --output json to print it", len(*run.ReportJSON)))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// shortUUID returns the first UUID group for compact display.
func shortUUID(runUUID string) string {
	if len(runUUID) > 8 {
		return runUUID[:8]
	}
	return runUUID
}

// formatRunDuration renders a stored duration, "-" for unfinished runs.
func formatRunDuration(ms *int32) string {
	if ms == nil {
		return "-"
	}
	return (time.Duration(*ms) * time.Millisecond).String()
}

// formatRunRisk renders the stored risk column, "-" before completion.
func formatRunRisk(run *schema.AssessmentRunRecord, cfg *contract.Config) string {
	if run.RiskLevel == nil || run.RiskScore == nil {
		return "-"
	}
	label := riskLabel(schema.RiskLevel(*run.RiskLevel), cfg)
	return fmt.Sprintf("%s (%s)", label, formatPercent(*run.RiskScore))
}
