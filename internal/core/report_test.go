package core

import (
	"math"
	"reflect"
	"testing"
	"time"
)

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func depositAt(id, jarID string, amount float64, date time.Time) Deposit {
	return Deposit{ID: id, Amount: amount, Date: date, JarID: jarID}
}

func TestComputeReportNilWhenNoJars(t *testing.T) {
	if got := ComputeReport(nil, nil, PeriodAll, AllJarsFilter, testNow); got != nil {
		t.Fatalf("expected nil report for empty jar list, got %+v", got)
	}
}

func TestComputeReportSummaryAllPeriod(t *testing.T) {
	// Single jar, no deposits: totals come from the jar-level cached amounts.
	jars := []Jar{{ID: "1", Title: "Emergency", TargetAmount: 10000, SavedAmount: 3500}}

	report := ComputeReport(jars, nil, PeriodAll, AllJarsFilter, testNow)
	if report == nil {
		t.Fatal("expected a report")
	}

	want := Summary{
		TotalSaved:    3500,
		TotalTarget:   10000,
		TotalDeposits: 0,
		AvgProgress:   35,
		JarCount:      1,
		DepositCount:  0,
	}
	if report.Summary != want {
		t.Errorf("summary = %+v, want %+v", report.Summary, want)
	}
}

func TestComputeReportZeroTargetJar(t *testing.T) {
	// A goalless jar must never produce NaN or Inf.
	jars := []Jar{{ID: "1", Title: "Loose change", TargetAmount: 0, SavedAmount: 500}}

	report := ComputeReport(jars, nil, PeriodAll, AllJarsFilter, testNow)
	perf := report.JarPerformance[0]

	if perf.Progress != 0 {
		t.Errorf("progress = %v, want 0", perf.Progress)
	}
	if perf.Remaining != 0 {
		t.Errorf("remaining = %v, want 0", perf.Remaining)
	}
	if math.IsNaN(report.Summary.AvgProgress) || math.IsInf(report.Summary.AvgProgress, 0) {
		t.Errorf("avgProgress = %v, want finite", report.Summary.AvgProgress)
	}
}

func TestComputeReportRemainingNeverNegative(t *testing.T) {
	jars := []Jar{{ID: "1", Title: "Overfunded", TargetAmount: 100, SavedAmount: 250}}

	report := ComputeReport(jars, nil, PeriodAll, AllJarsFilter, testNow)
	if got := report.JarPerformance[0].Remaining; got != 0 {
		t.Errorf("remaining = %v, want 0 for an overfunded jar", got)
	}
}

func TestComputeReportTotalsAdditivity(t *testing.T) {
	jars := []Jar{
		{ID: "1", Title: "A", TargetAmount: 1000, SavedAmount: 100},
		{ID: "2", Title: "B", TargetAmount: 2000, SavedAmount: 900},
		{ID: "3", Title: "C", TargetAmount: 0, SavedAmount: 50},
	}

	report := ComputeReport(jars, nil, PeriodAll, AllJarsFilter, testNow)

	var sum float64
	for _, p := range report.JarPerformance {
		sum += p.Saved
	}
	if sum != report.Summary.TotalSaved {
		t.Errorf("sum of performance saved = %v, summary.TotalSaved = %v", sum, report.Summary.TotalSaved)
	}
}

func TestComputeReportStableSortOnTies(t *testing.T) {
	// Both jars sit at exactly 50%: input order must survive, because the
	// first entry is flagged as top performer downstream.
	jars := []Jar{
		{ID: "a", Title: "A", TargetAmount: 200, SavedAmount: 100},
		{ID: "b", Title: "B", TargetAmount: 1000, SavedAmount: 500},
	}

	report := ComputeReport(jars, nil, PeriodAll, AllJarsFilter, testNow)
	gotOrder := []string{report.JarPerformance[0].ID, report.JarPerformance[1].ID}
	if !reflect.DeepEqual(gotOrder, []string{"a", "b"}) {
		t.Errorf("tied jars reordered: got %v, want [a b]", gotOrder)
	}
}

func TestComputeReportPerformanceSortedDescending(t *testing.T) {
	jars := []Jar{
		{ID: "low", TargetAmount: 100, SavedAmount: 10},
		{ID: "high", TargetAmount: 100, SavedAmount: 90},
		{ID: "mid", TargetAmount: 100, SavedAmount: 50},
	}

	report := ComputeReport(jars, nil, PeriodAll, AllJarsFilter, testNow)
	for i := 1; i < len(report.JarPerformance); i++ {
		if report.JarPerformance[i-1].Progress < report.JarPerformance[i].Progress {
			t.Fatalf("performance not sorted descending: %+v", report.JarPerformance)
		}
	}
	if report.JarPerformance[0].ID != "high" {
		t.Errorf("top performer = %s, want high", report.JarPerformance[0].ID)
	}
}

func TestComputeReportTrendWindow(t *testing.T) {
	jars := []Jar{{ID: "1", TargetAmount: 100, SavedAmount: 0}}

	report := ComputeReport(jars, nil, PeriodAll, AllJarsFilter, testNow)
	trend := report.MonthlyTrend
	if len(trend) != 6 {
		t.Fatalf("trend has %d entries, want 6", len(trend))
	}

	// Oldest first, ending with the month containing now.
	wantMonths := []string{"Jan 2024", "Feb 2024", "Mar 2024", "Apr 2024", "May 2024", "Jun 2024"}
	for i, point := range trend {
		if point.Month != wantMonths[i] {
			t.Errorf("trend[%d].Month = %q, want %q", i, point.Month, wantMonths[i])
		}
		if point.Amount != 0 || point.Deposits != 0 {
			t.Errorf("trend[%d] = %+v, want zero bucket", i, point)
		}
	}
}

func TestComputeReportTrendMonthBoundaries(t *testing.T) {
	jars := []Jar{{ID: "1", TargetAmount: 100, SavedAmount: 0}}
	deposits := []Deposit{
		// Exactly at the March bucket's start: included in March.
		depositAt("d1", "1", 10, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)),
		// Last instant of March: still March.
		depositAt("d2", "1", 20, time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)),
		// First instant of April: April's bucket.
		depositAt("d3", "1", 40, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)),
	}

	report := ComputeReport(jars, deposits, PeriodAll, AllJarsFilter, testNow)
	byMonth := map[string]TrendPoint{}
	for _, point := range report.MonthlyTrend {
		byMonth[point.Month] = point
	}

	if march := byMonth["Mar 2024"]; march.Amount != 30 || march.Deposits != 2 {
		t.Errorf("March bucket = %+v, want amount 30 / 2 deposits", march)
	}
	if april := byMonth["Apr 2024"]; april.Amount != 40 || april.Deposits != 1 {
		t.Errorf("April bucket = %+v, want amount 40 / 1 deposit", april)
	}
}

func TestComputeReportTrendIgnoresJarFilter(t *testing.T) {
	// Jar filter narrows summary and performance, never the trend.
	jars := []Jar{
		{ID: "1", Title: "Kept", TargetAmount: 100, SavedAmount: 50},
		{ID: "2", Title: "Hidden", TargetAmount: 100, SavedAmount: 25},
	}
	deposits := []Deposit{
		depositAt("d1", "1", 50, testNow.AddDate(0, 0, -1)),
		depositAt("d2", "2", 25, testNow.AddDate(0, 0, -2)),
	}

	report := ComputeReport(jars, deposits, PeriodAll, "1", testNow)

	if report.Summary.JarCount != 1 {
		t.Errorf("jarCount = %d, want 1", report.Summary.JarCount)
	}
	if report.Summary.TotalDeposits != 50 {
		t.Errorf("totalDeposits = %v, want 50 (only jar 1's deposit)", report.Summary.TotalDeposits)
	}
	if len(report.JarPerformance) != 1 || report.JarPerformance[0].ID != "1" {
		t.Errorf("jarPerformance = %+v, want only jar 1", report.JarPerformance)
	}

	current := report.MonthlyTrend[len(report.MonthlyTrend)-1]
	if current.Amount != 75 || current.Deposits != 2 {
		t.Errorf("current trend bucket = %+v, want amount 75 from all jars", current)
	}
}

func TestComputeReportPeriodMonotonicity(t *testing.T) {
	// Narrower periods can only see a subset of deposits.
	jars := []Jar{{ID: "1", TargetAmount: 1000, SavedAmount: 500}}
	deposits := []Deposit{
		depositAt("d1", "1", 100, testNow.AddDate(-2, 0, 0)), // only "all"
		depositAt("d2", "1", 100, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)), // year
		depositAt("d3", "1", 100, time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC)),   // quarter
		depositAt("d4", "1", 100, time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)),     // month
	}

	totals := map[Period]float64{}
	for _, period := range []Period{PeriodAll, PeriodYear, PeriodQuarter, PeriodMonth} {
		totals[period] = ComputeReport(jars, deposits, period, AllJarsFilter, testNow).Summary.TotalDeposits
	}

	if !(totals[PeriodAll] >= totals[PeriodYear] && totals[PeriodYear] >= totals[PeriodQuarter] && totals[PeriodQuarter] >= totals[PeriodMonth]) {
		t.Errorf("period totals not monotone: %v", totals)
	}
	if totals[PeriodAll] != 400 || totals[PeriodYear] != 300 || totals[PeriodQuarter] != 200 || totals[PeriodMonth] != 100 {
		t.Errorf("period totals = %v, want 400/300/200/100", totals)
	}
}

func TestComputeReportIdempotent(t *testing.T) {
	jars := []Jar{
		{ID: "1", Title: "A", TargetAmount: 1000, SavedAmount: 250},
		{ID: "2", Title: "B", TargetAmount: 500, SavedAmount: 250},
	}
	deposits := []Deposit{
		depositAt("d1", "1", 250, testNow.AddDate(0, -1, 0)),
		depositAt("d2", "2", 250, testNow.AddDate(0, -2, 0)),
	}

	first := ComputeReport(jars, deposits, PeriodYear, AllJarsFilter, testNow)
	second := ComputeReport(jars, deposits, PeriodYear, AllJarsFilter, testNow)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different reports:\n%+v\n%+v", first, second)
	}
}

func TestComputeReportEmptyAfterFiltering(t *testing.T) {
	// A jar filter that matches nothing flows through as zero aggregates,
	// not an error and not nil.
	jars := []Jar{{ID: "1", TargetAmount: 100, SavedAmount: 50}}

	report := ComputeReport(jars, nil, PeriodAll, "does-not-exist", testNow)
	if report == nil {
		t.Fatal("filtered-to-empty must still return a report")
	}
	if report.Summary != (Summary{}) {
		t.Errorf("summary = %+v, want all zeros", report.Summary)
	}
	if len(report.JarPerformance) != 0 {
		t.Errorf("jarPerformance = %+v, want empty", report.JarPerformance)
	}
	if report.Summary.AvgProgress != 0 {
		t.Errorf("avgProgress = %v, want 0 for zero filtered jars", report.Summary.AvgProgress)
	}
}

func TestComputeReportNaNPropagates(t *testing.T) {
	// Malformed numerics are tolerated, never corrected or raised.
	jars := []Jar{{ID: "1", Title: "Broken", TargetAmount: 100, SavedAmount: math.NaN()}}

	report := ComputeReport(jars, nil, PeriodAll, AllJarsFilter, testNow)
	if !math.IsNaN(report.Summary.TotalSaved) {
		t.Errorf("totalSaved = %v, want NaN to propagate", report.Summary.TotalSaved)
	}
}
