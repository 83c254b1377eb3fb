package outwriter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/entrain-io/entrain/internal/contract"
	"github.com/entrain-io/entrain/schema"
)

// writeMarkdownReport writes the assessment as a structured Markdown
// document with per-dimension sections, methodology notes and an
// optional cross-dimensional section.
func writeMarkdownReport(w io.Writer, report *schema.EntrainReport) error {
	sections := []string{
		markdownHeader(report),
		markdownInputSummary(report),
	}
	for _, dim := range alphabeticalDimensions(report) {
		sections = append(sections, markdownDimensionSection(report.Dimensions[dim]))
	}
	if report.CrossDimensional != nil {
		sections = append(sections, markdownCrossSection(report.CrossDimensional))
	}
	sections = append(sections, markdownMethodology(report))

	_, err := io.WriteString(w, strings.Join(sections, "\n\n")+"\n")
	return err
}

// alphabeticalDimensions returns the report's dimension codes in
// alphabetical order.
func alphabeticalDimensions(report *schema.EntrainReport) []schema.Dimension {
	dims := make([]schema.Dimension, 0, len(report.Dimensions))
	for dim := range report.Dimensions {
		dims = append(dims, dim)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })
	return dims
}

func markdownHeader(report *schema.EntrainReport) string {
	return fmt.Sprintf("# Entrain Framework Assessment Report\n\n**Version:** %s\n**Generated:** %s\n\n---",
		report.Version, report.GeneratedAt.Format("2006-01-02 15:04:05"))
}

func markdownInputSummary(report *schema.EntrainReport) string {
	lines := []string{"## Input Summary", ""}
	for _, key := range sortedSummaryKeys(report.InputSummary) {
		lines = append(lines, fmt.Sprintf("- **%s**: %v", key, report.InputSummary[key]))
	}
	return strings.Join(lines, "\n")
}

func markdownDimensionSection(rep *schema.DimensionReport) string {
	lines := []string{
		fmt.Sprintf("## %s: %s", rep.Dimension, schema.DimensionName(rep.Dimension)),
		"",
		fmt.Sprintf("**Summary:** %s", rep.Summary),
		"",
		"### Indicators",
		"",
		"| Indicator | Value | Baseline | Unit | Confidence | Interpretation |",
		"|-----------|-------|----------|------|------------|----------------|",
	}
	for _, name := range sortedIndicatorNames(rep) {
		ind := rep.Indicators[name]
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s | %s | %s |",
			name,
			formatFloat(ind.Value),
			formatBaseline(ind.Baseline),
			ind.Unit,
			formatConfidence(ind.Confidence),
			contract.TruncateText(ind.Interpretation, 60)))
	}
	lines = append(lines, "", "### Methodology", "", rep.MethodologyNotes, "")
	if len(rep.Citations) > 0 {
		lines = append(lines, "### References", "")
		for _, citation := range rep.Citations {
			lines = append(lines, fmt.Sprintf("- %s", citation))
		}
	}
	return strings.Join(lines, "\n")
}

func markdownCrossSection(cross *schema.CrossDimensionalReport) string {
	risk := cross.RiskScore
	lines := []string{
		"## Cross-Dimensional Analysis",
		"",
		"### Overall Risk Assessment",
		"",
		fmt.Sprintf("**Risk Level:** %s **%s** (%s)", riskIcon(risk.Level), risk.Level, formatPercent(risk.Score)),
		"",
		risk.Interpretation,
		"",
	}
	if len(risk.TopContributors) > 0 {
		lines = append(lines, "**Primary Concerns:**")
		for _, dim := range risk.TopContributors {
			lines = append(lines, fmt.Sprintf("- %s (%s)", dim, schema.DimensionName(dim)))
		}
		lines = append(lines, "")
	}

	if len(cross.Patterns) > 0 {
		lines = append(lines, "### Detected Patterns", "")
		for _, pattern := range cross.Patterns {
			lines = append(lines,
				fmt.Sprintf("#### %s %s", riskIcon(pattern.Severity), titlePatternID(pattern.PatternID)),
				"",
				fmt.Sprintf("**Severity:** %s", pattern.Severity),
				"",
				fmt.Sprintf("**Description:** %s", pattern.Description),
				"",
				fmt.Sprintf("**Dimensions Involved:** %s", joinDimensions(pattern.DimensionsInvolved)),
				"",
				fmt.Sprintf("**Recommendation:** %s", pattern.Recommendation),
				"")
		}
	}

	if matrix := cross.CorrelationMatrix; matrix != nil && !matrix.InsufficientData {
		lines = append(lines, "### Correlation Matrix", "")
		strong := matrix.StrongCorrelations(schema.DefaultCorrelationThreshold)
		if len(strong) > 0 {
			lines = append(lines,
				"**Strong Correlations** (|r| > 0.7):",
				"",
				"| Dimension 1 | Dimension 2 | Correlation |",
				"|-------------|-------------|-------------|")
			for _, corr := range strong {
				lines = append(lines, fmt.Sprintf("| %s | %s | %+.3f |", corr.First, corr.Second, corr.Coefficient))
			}
			lines = append(lines, "")
		} else {
			lines = append(lines, "*No strong correlations detected (all |r| < 0.7)*", "")
		}
	}

	lines = append(lines, "### Summary", "", cross.Summary, "")
	return strings.Join(lines, "\n")
}

func markdownMethodology(report *schema.EntrainReport) string {
	return fmt.Sprintf("## Overall Methodology\n\n%s\n\n---\n\n*Report generated by Entrain Reference Library v%s*\n*Framework: [entrain.institute](https://entrain.institute)*",
		report.Methodology, report.Version)
}
