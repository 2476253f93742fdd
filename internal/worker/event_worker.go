package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finjar/internal/amqp"
)

// ReportInvalidator is the slice of the report service the worker needs.
type ReportInvalidator interface {
	ApplyDepositDelta(jarID string, delta float64)
	Invalidate()
	Refresh(ctx context.Context) error
}

// EventWorker keeps the report snapshot in sync with jar events arriving
// over AMQP and drives the periodic background refresh.
type EventWorker struct {
	reports ReportInvalidator
}

func NewEventWorker(reports ReportInvalidator) *EventWorker {
	return &EventWorker{reports: reports}
}

// HandleJarEvent processes a single jar event message from AMQP.
//
// Deposit events carry an amount, so the snapshot is patched optimistically
// before the next refresh reconciles it against the backend. Jar-level events
// only mark the snapshot stale.
func (w *EventWorker) HandleJarEvent(ctx context.Context, msg *amqp.JarEventMessage) error {
	slog.InfoContext(ctx, "Processing jar event",
		"event", msg.Event,
		"jar_id", msg.JarID)

	switch msg.Event {
	case amqp.EventDepositCreated:
		w.reports.ApplyDepositDelta(msg.JarID, msg.Amount)
	case amqp.EventDepositDeleted:
		w.reports.ApplyDepositDelta(msg.JarID, -msg.Amount)
	case amqp.EventJarCreated, amqp.EventJarUpdated, amqp.EventJarDeleted:
		// No local patch is possible for structural changes.
	default:
		return fmt.Errorf("unknown jar event: %s", msg.Event)
	}

	w.reports.Invalidate()
	return nil
}

// StartupRefresh warms the snapshot once at worker startup so the first
// report request does not pay the fetch cost. A failure is logged but not
// fatal: the service refreshes lazily on the first request instead.
func (w *EventWorker) StartupRefresh(ctx context.Context) {
	if err := w.reports.Refresh(ctx); err != nil {
		slog.WarnContext(ctx, "Startup refresh failed, will retry on first request",
			"error", err)
		return
	}
	slog.InfoContext(ctx, "Startup refresh completed")
}

// RunPeriodicRefresh refreshes the snapshot on a fixed interval until the
// context is cancelled. An interval of zero disables the loop.
func (w *EventWorker) RunPeriodicRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		slog.InfoContext(ctx, "Periodic refresh disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Periodic refresh started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Periodic refresh stopped")
			return
		case <-ticker.C:
			if err := w.reports.Refresh(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic refresh failed", "error", err)
			}
		}
	}
}
