// Package analysis computes descriptive statistics over historical
// sub-periods and renders annotated PNG charts for the dashboard.
package analysis

import (
	"fmt"
	"math"

	"github.com/goliatone/go-macro-dashboard/components/dashboard"
)

// PeriodStats summarizes one column over one period.
type PeriodStats struct {
	Period      dashboard.Period `json:"period"`
	N           int              `json:"n"`
	Mean        float64          `json:"mean"`
	Min         float64          `json:"min"`
	Max         float64          `json:"max"`
	First       float64          `json:"first"`
	Last        float64          `json:"last"`
	FirstYear   int              `json:"first_year"`
	LastYear    int              `json:"last_year"`
	Growth      float64          `json:"growth_pct"`
	GrowthValid bool             `json:"growth_valid"`
	CAGR        float64          `json:"cagr_pct"`
	CAGRValid   bool             `json:"cagr_valid"`
}

// ComputePeriodStats returns stats for each period holding at least one
// non-null value of column. Periods keep their input order.
func ComputePeriodStats(ds *dashboard.Dataset, column string, periods []dashboard.Period) []PeriodStats {
	if ds == nil {
		return nil
	}
	years, values := ds.Series(column)
	out := make([]PeriodStats, 0, len(periods))
	for _, period := range periods {
		stats, ok := periodStats(period, years, values)
		if ok {
			out = append(out, stats)
		}
	}
	return out
}

func periodStats(period dashboard.Period, years []int, values []float64) (PeriodStats, bool) {
	stats := PeriodStats{Period: period, Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for i, year := range years {
		if !period.Contains(year) {
			continue
		}
		value := values[i]
		if stats.N == 0 {
			stats.First, stats.FirstYear = value, year
		}
		stats.Last, stats.LastYear = value, year
		stats.Min = math.Min(stats.Min, value)
		stats.Max = math.Max(stats.Max, value)
		sum += value
		stats.N++
	}
	if stats.N == 0 {
		return PeriodStats{}, false
	}
	stats.Mean = sum / float64(stats.N)
	if stats.First != 0 {
		stats.Growth = (stats.Last/stats.First - 1) * 100
		stats.GrowthValid = true
	}
	span := stats.LastYear - stats.FirstYear
	if stats.First > 0 && stats.Last > 0 && span >= 1 {
		stats.CAGR = (math.Pow(stats.Last/stats.First, 1/float64(span)) - 1) * 100
		stats.CAGRValid = true
	}
	return stats, true
}

// Label is the annotation text shown for the period on charts.
func (s PeriodStats) Label() string {
	cagr := "n/d"
	if s.CAGRValid {
		cagr = fmt.Sprintf("%.2f%%", s.CAGR)
	}
	return fmt.Sprintf("%s: media %.2f, TCAC %s", s.Period.Name, s.Mean, cagr)
}
