package core

import (
	"sort"
	"time"
)

const trendMonths = 6

type (
	// Summary holds the period-and-jar-filtered totals of a report.
	Summary struct {
		TotalSaved    float64 `json:"totalSaved"`
		TotalTarget   float64 `json:"totalTarget"`
		TotalDeposits float64 `json:"totalDeposits"`
		AvgProgress   float64 `json:"avgProgress"`
		JarCount      int     `json:"jarCount"`
		DepositCount  int     `json:"depositCount"`
	}

	// JarPerformance is one jar's standing in the ranked performance list.
	JarPerformance struct {
		ID        string  `json:"id"`
		Title     string  `json:"title"`
		Saved     float64 `json:"saved"`
		Target    float64 `json:"target"`
		Progress  float64 `json:"progress"`
		Remaining float64 `json:"remaining"`
	}

	// TrendPoint is one month's deposit total in the rolling trend window.
	TrendPoint struct {
		Month    string  `json:"month"`
		Amount   float64 `json:"amount"`
		Deposits int     `json:"deposits"`
	}

	// ReportData is the full derived report for one (period, jar) selection.
	ReportData struct {
		Summary        Summary          `json:"summary"`
		JarPerformance []JarPerformance `json:"jarPerformance"`
		MonthlyTrend   []TrendPoint     `json:"monthlyTrend"`
		Period         Period           `json:"period"`
		JarFilter      string           `json:"jarFilter"`
		GeneratedAt    time.Time        `json:"generatedAt"`
	}
)

// Progress returns saved/target as a percentage, defined as 0 when the
// target is 0 so a goalless jar never produces NaN or Inf.
func Progress(saved, target float64) float64 {
	if target > 0 {
		return saved / target * 100
	}
	return 0
}

// ComputeReport derives the report for the given snapshot and filters.
// It returns nil when jars is empty: "no data yet" is distinct from
// "filtered to empty", which yields zero-valued aggregates instead.
//
// now must be supplied by the caller so the output is reproducible; the
// monthly trend window always ends at the month containing now and ignores
// the jar filter, while summary and performance respect both filters.
// Inputs are never mutated.
func ComputeReport(jars []Jar, deposits []Deposit, period Period, jarFilter string, now time.Time) *ReportData {
	if len(jars) == 0 {
		return nil
	}

	start := period.Start(now)

	var filteredJars []Jar
	for _, jar := range jars {
		if MatchesJar(jarFilter, jar.ID) {
			filteredJars = append(filteredJars, jar)
		}
	}

	var filteredDeposits []Deposit
	for _, dep := range deposits {
		if period.Contains(dep.Date, start) && MatchesJar(jarFilter, dep.JarID) {
			filteredDeposits = append(filteredDeposits, dep)
		}
	}

	summary := Summary{
		JarCount:     len(filteredJars),
		DepositCount: len(filteredDeposits),
	}
	for _, jar := range filteredJars {
		summary.TotalSaved += jar.SavedAmount
		summary.TotalTarget += jar.TargetAmount
		summary.AvgProgress += Progress(jar.SavedAmount, jar.TargetAmount)
	}
	if len(filteredJars) > 0 {
		summary.AvgProgress /= float64(len(filteredJars))
	}
	for _, dep := range filteredDeposits {
		summary.TotalDeposits += dep.Amount
	}

	performance := make([]JarPerformance, 0, len(filteredJars))
	for _, jar := range filteredJars {
		remaining := jar.TargetAmount - jar.SavedAmount
		if remaining < 0 {
			remaining = 0
		}
		performance = append(performance, JarPerformance{
			ID:        jar.ID,
			Title:     jar.Title,
			Saved:     jar.SavedAmount,
			Target:    jar.TargetAmount,
			Progress:  Progress(jar.SavedAmount, jar.TargetAmount),
			Remaining: remaining,
		})
	}
	// Stable: ties keep input order, which decides the "top performer" flag.
	sort.SliceStable(performance, func(i, j int) bool {
		return performance[i].Progress > performance[j].Progress
	})

	return &ReportData{
		Summary:        summary,
		JarPerformance: performance,
		MonthlyTrend:   monthlyTrend(deposits, now),
		Period:         period,
		JarFilter:      jarFilter,
		GeneratedAt:    now,
	}
}

// monthlyTrend buckets all deposits into the six calendar months ending at
// the month containing now, oldest first. Buckets cover the whole calendar
// month, both boundaries included.
func monthlyTrend(deposits []Deposit, now time.Time) []TrendPoint {
	trend := make([]TrendPoint, 0, trendMonths)
	for i := trendMonths - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		nextStart := monthStart.AddDate(0, 1, 0)

		point := TrendPoint{Month: monthStart.Format("Jan 2006")}
		for _, dep := range deposits {
			if !dep.Date.Before(monthStart) && dep.Date.Before(nextStart) {
				point.Amount += dep.Amount
				point.Deposits++
			}
		}
		trend = append(trend, point)
	}
	return trend
}
