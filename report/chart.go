// Package report renders an HTML summary of a month's calculation.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/shopspring/decimal"

	"github.com/primeswim/tuition/tuition"
)

// Unassigned labels rows without a level.
const Unassigned = "(unassigned)"

// LevelTotal sums the rows of one level.
type LevelTotal struct {
	Level        string
	Participants int
	Sessions     int
	Tuition      decimal.Decimal
}

// LevelTotals groups rows by level, ordered by level name.
func LevelTotals(result *tuition.Result) []LevelTotal {
	byLevel := map[string]*LevelTotal{}
	for _, row := range result.Rows {
		name := row.Level
		if name == "" {
			name = Unassigned
		}
		lt, ok := byLevel[name]
		if !ok {
			lt = &LevelTotal{Level: name, Tuition: decimal.Zero}
			byLevel[name] = lt
		}
		lt.Participants++
		lt.Sessions += row.SessionCount
		lt.Tuition = lt.Tuition.Add(row.Tuition)
	}

	out := make([]LevelTotal, 0, len(byLevel))
	for _, lt := range byLevel {
		out = append(out, *lt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// RenderLevelChart writes a bar chart of tuition and sessions per level.
func RenderLevelChart(w io.Writer, result *tuition.Result) error {
	totals := LevelTotals(result)

	levels := make([]string, 0, len(totals))
	tuitionData := make([]opts.BarData, 0, len(totals))
	sessionData := make([]opts.BarData, 0, len(totals))
	for _, lt := range totals {
		levels = append(levels, lt.Level)
		amount, _ := lt.Tuition.Float64()
		tuitionData = append(tuitionData, opts.BarData{Name: lt.Level, Value: amount})
		sessionData = append(sessionData, opts.BarData{Name: lt.Level, Value: lt.Sessions})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Tuition " + result.Month,
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Tuition by level, " + result.Month,
			Subtitle: fmt.Sprintf("total %s over %d sessions, %d need config", result.Total.StringFixed(2), result.Sessions, result.NeedsConfigCount()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(levels).
		AddSeries("Tuition", tuitionData).
		AddSeries("Sessions", sessionData)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
