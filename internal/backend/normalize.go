package backend

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"finjar/internal/core"
)

// The backend has shipped several field-naming conventions over its life.
// Normalization resolves each concept through a fixed priority list of
// aliases; absent numeric fields default to 0 and absent strings to a
// literal fallback. A present but non-numeric amount becomes NaN and flows
// through the aggregates untouched.

type (
	// flexID accepts a JSON number or string and yields a string ID, since
	// the jar filter is string-typed.
	flexID string

	// flexNumber accepts a JSON number or a numeric string; a non-numeric
	// string decodes to NaN rather than failing.
	flexNumber float64

	rawJar struct {
		ID                 flexID      `json:"id"`
		Name               *string     `json:"name"`
		Title              *string     `json:"title"`
		Description        *string     `json:"description"`
		TargetAmount       *flexNumber `json:"targetAmount"`
		TargetAmountSnake  *flexNumber `json:"target_amount"`
		CurrentAmount      *flexNumber `json:"currentAmount"`
		SavedAmount        *flexNumber `json:"savedAmount"`
		SavedAmountSnake   *flexNumber `json:"saved_amount"`
		CurrentAmountSnake *flexNumber `json:"current_amount"`
		CreatedAt          *string     `json:"createdAt"`
		CreatedDate        *string     `json:"createdDate"`
		CreatedAtSnake     *string     `json:"created_at"`
	}

	rawDeposit struct {
		ID          flexID      `json:"id"`
		Amount      *flexNumber `json:"amount"`
		Description *string     `json:"description"`
		CreatedAt   *string     `json:"createdAt"`
		Date        *string     `json:"date"`
	}
)

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	// Not a string: keep the raw token (a JSON number) verbatim.
	*f = flexID(strings.TrimSpace(string(data)))
	return nil
}

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexNumber(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*f = flexNumber(math.NaN())
		return nil
	}
	*f = flexNumber(n)
	return nil
}

func normalizeJar(raw rawJar) core.Jar {
	return core.Jar{
		ID:           string(raw.ID),
		Title:        firstString(core.UnnamedJarTitle, raw.Name, raw.Title),
		Description:  firstString("", raw.Description),
		TargetAmount: firstNumber(raw.TargetAmount, raw.TargetAmountSnake),
		SavedAmount:  firstNumber(raw.CurrentAmount, raw.SavedAmount, raw.SavedAmountSnake, raw.CurrentAmountSnake),
		CreatedDate:  parseTimestamp(firstString("", raw.CreatedAt, raw.CreatedDate, raw.CreatedAtSnake), time.Time{}),
	}
}

func normalizeDeposit(raw rawDeposit, jarID, jarTitle string, fetchedAt time.Time) core.Deposit {
	return core.Deposit{
		ID:          string(raw.ID),
		Amount:      firstNumber(raw.Amount),
		Date:        parseTimestamp(firstString("", raw.CreatedAt, raw.Date), fetchedAt),
		Description: firstString("", raw.Description),
		JarID:       jarID,
		JarTitle:    jarTitle,
	}
}

// firstString returns the first present, non-empty alias, or the fallback.
func firstString(fallback string, aliases ...*string) string {
	for _, alias := range aliases {
		if alias != nil && strings.TrimSpace(*alias) != "" {
			return *alias
		}
	}
	return fallback
}

// firstNumber returns the first present alias, or 0. NaN counts as present:
// a malformed value was sent, and it must propagate rather than fall through
// to a later alias.
func firstNumber(aliases ...*flexNumber) float64 {
	for _, alias := range aliases {
		if alias != nil {
			return float64(*alias)
		}
	}
	return 0
}

// timestampLayouts covers the backend's serializations: RFC 3339 instants
// and the occasional zone-less LocalDateTime or bare date.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}
