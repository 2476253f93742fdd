package sheets

import (
	"context"

	"finjar/internal/core"
)

// Ports for outbound report exporters.
type (
	// ReportWriter publishes a generated report to an external destination.
	ReportWriter interface {
		WriteReport(ctx context.Context, report *core.ReportData) error
	}
)
