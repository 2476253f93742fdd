// Package services holds the report orchestration layer: it owns the
// in-memory jar/deposit snapshot, refreshes it from the FinJar backend, and
// serves derived reports out of a cache.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"finjar/internal/cache"
	"finjar/internal/core"
)

// depositFanout caps concurrent per-jar deposit fetches.
const depositFanout = 4

// BackendReader is the read surface the service needs from the FinJar API
// client.
type BackendReader interface {
	ListJars(ctx context.Context) ([]core.Jar, error)
	ListDeposits(ctx context.Context, jar core.Jar, fetchedAt time.Time) ([]core.Deposit, error)
}

// Snapshot is one immutable fetch result. ApplyDepositDelta and Refresh
// replace the whole snapshot instead of mutating it, so reports already
// being computed keep a consistent view.
type Snapshot struct {
	Jars      []core.Jar
	Deposits  []core.Deposit
	FetchedAt time.Time
}

// ReportService coordinates fetch, aggregation, and caching of reports.
type ReportService struct {
	backend BackendReader
	reports *cache.LRUCache[*core.ReportData]
	now     func() time.Time

	mu         sync.Mutex
	snapshot   *Snapshot
	version    uint64 // bumped whenever the snapshot changes; part of cache keys
	refreshSeq uint64 // latest started refresh; stale refreshes discard their result
	stale      bool
	lastErr    error
}

// NewReportService wires the service with its backend client and a derived
// report cache.
func NewReportService(backend BackendReader, reports *cache.LRUCache[*core.ReportData]) *ReportService {
	return &ReportService{
		backend: backend,
		reports: reports,
		now:     time.Now,
	}
}

// Refresh fetches jars and all their deposits, replacing the snapshot.
//
// Per-jar deposit fetches run concurrently and join before anything is
// installed; an individual failure degrades that jar to an empty deposit
// list (its cached savedAmount still counts in totals). A failed jar-list
// fetch records the error state and keeps the previous snapshot so stale
// data remains visible next to the error. If a newer Refresh started while
// this one was in flight, its result is discarded.
func (s *ReportService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.refreshSeq++
	seq := s.refreshSeq
	s.mu.Unlock()

	jars, err := s.backend.ListJars(ctx)
	if err != nil {
		s.mu.Lock()
		// A superseded refresh must not leave its error next to data a newer
		// refresh already installed.
		if seq == s.refreshSeq {
			s.lastErr = err
		}
		s.mu.Unlock()
		return fmt.Errorf("refresh report snapshot: %w", err)
	}

	fetchedAt := s.now()
	perJar := make([][]core.Deposit, len(jars))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(depositFanout)
	for i, jar := range jars {
		g.Go(func() error {
			deposits, err := s.backend.ListDeposits(gctx, jar, fetchedAt)
			if err != nil {
				// Degrade, don't fail the whole report.
				slog.WarnContext(gctx, "Deposit fetch failed, jar degrades to empty list",
					"jar_id", jar.ID, "jar_title", jar.Title, "error", err)
				return nil
			}
			perJar[i] = deposits
			return nil
		})
	}
	_ = g.Wait()

	// Flatten in jar order so output never depends on completion order.
	var deposits []core.Deposit
	for _, list := range perJar {
		deposits = append(deposits, list...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.refreshSeq {
		slog.DebugContext(ctx, "Discarding superseded refresh result", "seq", seq)
		return nil
	}
	// Install the new snapshot first, then clear the error flag, so a reader
	// never sees the old error paired with fresh data.
	s.snapshot = &Snapshot{Jars: jars, Deposits: deposits, FetchedAt: fetchedAt}
	s.version++
	s.stale = false
	s.lastErr = nil

	slog.InfoContext(ctx, "Report snapshot refreshed",
		"jars", len(jars), "deposits", len(deposits), "version", s.version)
	return nil
}

// Report returns the derived report for the given filters, computing it only
// when the snapshot, period, or jar selector changed since the last call.
// On first use (or after Invalidate) it fetches from the backend. A nil
// report with nil error means the backend holds no jars yet.
func (s *ReportService) Report(ctx context.Context, period core.Period, jarFilter string) (*core.ReportData, error) {
	s.mu.Lock()
	needsFetch := s.snapshot == nil || s.stale
	s.mu.Unlock()

	if needsFetch {
		if err := s.Refresh(ctx); err != nil {
			s.mu.Lock()
			snapshot := s.snapshot
			s.mu.Unlock()
			if snapshot == nil {
				return nil, err
			}
			// Keep serving the previous data; the error is available via
			// LastError for the presentation layer.
		}
	}

	s.mu.Lock()
	snapshot := s.snapshot
	version := s.version
	s.mu.Unlock()

	if snapshot == nil {
		return nil, nil
	}

	key := fmt.Sprintf("%d|%s|%s", version, period, jarFilter)
	if report, ok := s.reports.Get(key); ok {
		return report, nil
	}

	report := core.ComputeReport(snapshot.Jars, snapshot.Deposits, period, jarFilter, s.now())
	if report != nil {
		s.reports.Set(key, report)
	}
	return report, nil
}

// ApplyDepositDelta optimistically adjusts a jar's saved amount after a
// local deposit add (positive delta) or removal (negative), ahead of the
// backend round trip. The next successful Refresh replaces the adjustment
// with server truth; until then jar totals and the deposit list diverge by
// exactly this delta.
func (s *ReportService) ApplyDepositDelta(jarID string, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return
	}

	jars := make([]core.Jar, len(s.snapshot.Jars))
	copy(jars, s.snapshot.Jars)
	found := false
	for i := range jars {
		if jars[i].ID == jarID {
			jars[i].SavedAmount += delta
			found = true
			break
		}
	}
	if !found {
		return
	}

	s.snapshot = &Snapshot{Jars: jars, Deposits: s.snapshot.Deposits, FetchedAt: s.snapshot.FetchedAt}
	s.version++
}

// Invalidate marks the snapshot stale; the next Report call refetches.
// The change-event worker calls this when the backend announces a write.
func (s *ReportService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = true
}

// LastError returns the error state left by the most recent failed fetch,
// or nil. Error and data are not mutually exclusive: a failed refresh keeps
// the previous snapshot in place.
func (s *ReportService) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// HasData reports whether a snapshot has been installed yet.
func (s *ReportService) HasData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot != nil
}
