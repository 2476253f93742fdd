package worker

import (
	"context"
	"testing"

	"finjar/internal/amqp"
)

type fakeReports struct {
	deltas      []float64
	deltaJars   []string
	invalidated int
	refreshed   int
	refreshErr  error
}

func (f *fakeReports) ApplyDepositDelta(jarID string, delta float64) {
	f.deltaJars = append(f.deltaJars, jarID)
	f.deltas = append(f.deltas, delta)
}

func (f *fakeReports) Invalidate() { f.invalidated++ }

func (f *fakeReports) Refresh(ctx context.Context) error {
	f.refreshed++
	return f.refreshErr
}

func TestHandleJarEventDepositCreated(t *testing.T) {
	reports := &fakeReports{}
	w := NewEventWorker(reports)

	msg := &amqp.JarEventMessage{Event: amqp.EventDepositCreated, JarID: "3", Amount: 150}
	if err := w.HandleJarEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleJarEvent: %v", err)
	}

	if len(reports.deltas) != 1 || reports.deltas[0] != 150 {
		t.Errorf("deltas = %v, want [150]", reports.deltas)
	}
	if reports.deltaJars[0] != "3" {
		t.Errorf("delta jar = %s, want 3", reports.deltaJars[0])
	}
	if reports.invalidated != 1 {
		t.Errorf("invalidated = %d, want 1", reports.invalidated)
	}
}

func TestHandleJarEventDepositDeletedNegatesAmount(t *testing.T) {
	reports := &fakeReports{}
	w := NewEventWorker(reports)

	msg := &amqp.JarEventMessage{Event: amqp.EventDepositDeleted, JarID: "3", Amount: 150}
	if err := w.HandleJarEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleJarEvent: %v", err)
	}

	if len(reports.deltas) != 1 || reports.deltas[0] != -150 {
		t.Errorf("deltas = %v, want [-150]", reports.deltas)
	}
}

func TestHandleJarEventStructuralChangeOnlyInvalidates(t *testing.T) {
	for _, event := range []string{amqp.EventJarCreated, amqp.EventJarUpdated, amqp.EventJarDeleted} {
		t.Run(event, func(t *testing.T) {
			reports := &fakeReports{}
			w := NewEventWorker(reports)

			if err := w.HandleJarEvent(context.Background(), &amqp.JarEventMessage{Event: event, JarID: "1"}); err != nil {
				t.Fatalf("HandleJarEvent: %v", err)
			}
			if len(reports.deltas) != 0 {
				t.Errorf("unexpected deltas %v for %s", reports.deltas, event)
			}
			if reports.invalidated != 1 {
				t.Errorf("invalidated = %d, want 1", reports.invalidated)
			}
		})
	}
}

func TestHandleJarEventUnknownEvent(t *testing.T) {
	reports := &fakeReports{}
	w := NewEventWorker(reports)

	err := w.HandleJarEvent(context.Background(), &amqp.JarEventMessage{Event: "jar.renamed"})
	if err == nil {
		t.Fatal("expected error for unknown event")
	}
	if reports.invalidated != 0 {
		t.Errorf("invalidated = %d, want 0", reports.invalidated)
	}
}
