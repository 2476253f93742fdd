package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// csvHeader matches the columns of the downloadable report, in export order.
var csvHeader = []string{"Jar Name", "Target Amount", "Saved Amount", "Progress %", "Remaining Amount"}

// WriteJarPerformanceCSV writes the ranked performance list as CSV, one row
// per jar in the slice's order (export order = display order). Progress is
// fixed at two decimals; the other numeric columns are emitted as-is with no
// currency symbol or grouping so the file stays machine-readable. Titles
// containing the delimiter are RFC 4180 quoted by the encoder.
func WriteJarPerformanceCSV(w io.Writer, performance []JarPerformance) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, jar := range performance {
		row := []string{
			jar.Title,
			formatAmount(jar.Target),
			formatAmount(jar.Saved),
			strconv.FormatFloat(jar.Progress, 'f', 2, 64),
			formatAmount(jar.Remaining),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReportFilename returns the download filename for a report exported at t,
// e.g. "finjar-report-2026-08-29.csv".
func ReportFilename(t time.Time) string {
	return "finjar-report-" + t.Format("2006-01-02") + ".csv"
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
