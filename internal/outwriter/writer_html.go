package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/entrain-io/entrain/schema"
)

// writeHTMLReport renders the assessment as a standalone chart page with
// a dimension score bar chart and, when the corpus carries more than one
// conversation, a per-conversation trend line chart.
func writeHTMLReport(w io.Writer, out *schema.AssessmentOutput) error {
	page := components.NewPage()
	page.AddCharts(buildScoreBarChart(out.Report))
	if line := buildTrendLineChart(out.Trend); line != nil {
		page.AddCharts(line)
	}
	return page.Render(w)
}

// buildScoreBarChart charts the mean indicator value per dimension.
func buildScoreBarChart(report *schema.EntrainReport) *charts.Bar {
	scores := report.DimensionScores()
	dims := report.SortedDimensions()

	x := make([]string, 0, len(dims))
	y := make([]opts.BarData, 0, len(dims))
	for _, dim := range dims {
		x = append(x, string(dim))
		y = append(y, opts.BarData{Value: scores[dim]})
	}

	subtitle := fmt.Sprintf("Generated %s", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	if cross := report.CrossDimensional; cross != nil {
		subtitle = fmt.Sprintf("%s. Overall risk %s (%s)", subtitle, cross.RiskScore.Level, formatPercent(cross.RiskScore.Score))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Entrain Assessment Report", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Dimension Scores", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("score", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// buildTrendLineChart charts per-conversation dimension scores across the
// corpus. Returns nil when fewer than two conversations carry scores.
func buildTrendLineChart(trend []schema.ConversationTrendPoint) *charts.Line {
	if len(trend) < 2 {
		return nil
	}

	x := make([]string, len(trend))
	series := make(map[schema.Dimension][]opts.LineData)
	for i, point := range trend {
		x[i] = strconv.Itoa(point.Index + 1)
		for _, dim := range schema.AllDimensions {
			score, ok := point.Scores[dim]
			if !ok {
				continue
			}
			series[dim] = append(series[dim], opts.LineData{Value: score})
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Dimension Trend", Subtitle: "Mean indicator value per conversation"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(x)
	for _, dim := range schema.AllDimensions {
		data, ok := series[dim]
		if !ok {
			continue
		}
		line.AddSeries(string(dim), data)
	}
	return line
}
