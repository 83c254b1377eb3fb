package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"
)

// writeCSVHistory writes stored assessment runs in CSV format.
// Unfinished runs leave their end, duration and risk cells blank.
func writeCSVHistory(w io.Writer, runs []schema.AssessmentRunRecord) error {
	header := []string{
		"run_uuid",
		"start_time",
		"end_time",
		"duration_ms",
		"source",
		"scope",
		"conversations",
		"events",
		"risk_score",
		"risk_level",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, run := range runs {
			endTime := ""
			if run.EndTime != nil {
				endTime = run.EndTime.Format(contract.DateTimeFormat)
			}
			durationMs := ""
			if run.RunDurationMs != nil {
				durationMs = strconv.Itoa(int(*run.RunDurationMs))
			}
			riskScore := ""
			if run.RiskScore != nil {
				riskScore = formatFloat(*run.RiskScore)
			}
			riskLevel := ""
			if run.RiskLevel != nil {
				riskLevel = *run.RiskLevel
			}
			rec := []string{
				run.RunUUID,
				run.StartTime.Format(contract.DateTimeFormat),
				endTime,
				durationMs,
				run.Source,
				string(run.Scope),
				strconv.Itoa(int(run.ConversationCount)),
				strconv.Itoa(int(run.EventCount)),
				riskScore,
				riskLevel,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
