// Package memory provides an in-memory ReportWriter for tests and local
// development runs where no spreadsheet is configured.
package memory

import (
	"context"
	"errors"
	"sync"

	"finjar/internal/core"
	ports "finjar/internal/sheets"
)

type Writer struct {
	mu      sync.Mutex
	reports []*core.ReportData
}

var _ ports.ReportWriter = (*Writer)(nil)

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteReport(ctx context.Context, report *core.ReportData) error {
	if report == nil {
		return errors.New("no report data to write")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports = append(w.reports, report)
	return nil
}

// Reports returns all written reports, oldest first.
func (w *Writer) Reports() []*core.ReportData {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*core.ReportData, len(w.reports))
	copy(out, w.reports)
	return out
}
