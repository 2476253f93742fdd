package core

import "time"

// Period is a selectable reporting window anchored at "now".
type Period string

const (
	PeriodAll     Period = "all"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// ParsePeriod validates a period string coming from query parameters or
// settings. The empty string defaults to PeriodAll.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodAll, nil
	case PeriodAll, PeriodMonth, PeriodQuarter, PeriodYear:
		return Period(s), nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Start returns the inclusive lower bound of the period containing now.
// PeriodAll starts at the Unix epoch; the quarter start is the first day of
// the 3-month block containing now. There is no upper bound: deposits are
// never future-dated by the backend.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PeriodQuarter:
		quarterStart := ((int(now.Month())-1)/3)*3 + 1
		return time.Date(now.Year(), time.Month(quarterStart), 1, 0, 0, 0, 0, now.Location())
	case PeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Unix(0, 0).UTC()
	}
}

// Contains reports whether a deposit dated at t falls inside the period
// starting at start. The lower bound is inclusive.
func (p Period) Contains(t, start time.Time) bool {
	return !t.Before(start)
}

// MatchesJar reports whether a jar (or deposit) with the given ID passes the
// jar selector. Filter state is always a string; "all" passes everything.
func MatchesJar(filter, jarID string) bool {
	return filter == AllJarsFilter || filter == "" || filter == jarID
}
