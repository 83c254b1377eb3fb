package outwriter

import (
	"encoding/csv"
	"io"

	"github.com/entrain-io/entrain/schema"
)

// writeJSONReport writes the full assessment report in JSON format.
func writeJSONReport(w io.Writer, report *schema.EntrainReport) error {
	return writeJSON(w, report)
}

// writeCSVReport writes the wide indicator summary, one row per indicator.
// Absent baselines and confidences leave their cells blank.
func writeCSVReport(w io.Writer, report *schema.EntrainReport) error {
	header := []string{
		"dimension",
		"dimension_name",
		"indicator",
		"value",
		"baseline",
		"unit",
		"confidence",
		"interpretation",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, dim := range report.SortedDimensions() {
			rep := report.Dimensions[dim]
			for _, name := range sortedIndicatorNames(rep) {
				ind := rep.Indicators[name]
				baseline := ""
				if ind.Baseline != nil {
					baseline = formatFloat(*ind.Baseline)
				}
				confidence := ""
				if ind.Confidence != nil {
					confidence = formatFloat(*ind.Confidence)
				}
				rec := []string{
					string(dim),
					schema.DimensionName(dim),
					name,
					formatFloat(ind.Value),
					baseline,
					ind.Unit,
					confidence,
					ind.Interpretation,
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
