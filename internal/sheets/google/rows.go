package google

import (
	"strconv"
	"time"

	"finjar/internal/core"
)

// reportRows flattens a report into spreadsheet rows: a summary block, the
// ranked jar performance table, then the monthly trend table.
func reportRows(report *core.ReportData) [][]any {
	rows := [][]any{
		{"FinJar Savings Report"},
		{"Generated", report.GeneratedAt.Format(time.RFC3339), "Period", string(report.Period), "Jar", report.JarFilter},
		{},
		{"Total Saved", report.Summary.TotalSaved},
		{"Total Target", report.Summary.TotalTarget},
		{"Period Deposits", report.Summary.TotalDeposits},
		{"Average Progress %", formatProgress(report.Summary.AvgProgress)},
		{"Jars", report.Summary.JarCount},
		{"Deposits", report.Summary.DepositCount},
		{},
		{"Jar Name", "Target Amount", "Saved Amount", "Progress %", "Remaining Amount"},
	}

	for _, p := range report.JarPerformance {
		rows = append(rows, []any{p.Title, p.Target, p.Saved, formatProgress(p.Progress), p.Remaining})
	}

	rows = append(rows, []any{}, []any{"Month", "Amount", "Deposits"})
	for _, point := range report.MonthlyTrend {
		rows = append(rows, []any{point.Month, point.Amount, point.Deposits})
	}

	return rows
}

func formatProgress(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
