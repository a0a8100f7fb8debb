package wish

import (
	"context"
	"time"

	"wishbook/internal/logger"
)

// JobSet is the scheduler surface reconciliation needs.
type JobSet interface {
	Enroll(fireAt time.Time, wishID uint64) string
	Contains(wishID uint64) bool
}

// RebuildJobs re-enrolls pending records after a restart: everything due in
// the future plus everything overdue within the grace window. Records
// overdue beyond grace are left for the sweep.
func RebuildJobs(ctx context.Context, store *Store, jobs JobSet, grace time.Duration) (int, error) {
	pending, err := store.ListPending(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().Add(-grace)
	enrolled := 0
	for _, w := range pending {
		if w.DueAt.Before(cutoff) {
			continue
		}
		jobs.Enroll(w.DueAt, w.ID)
		enrolled++
	}

	logger.Info("scheduler jobs rebuilt", "pending", len(pending), "enrolled", enrolled)
	return enrolled, nil
}

// Sweeper re-enrolls pending records the grace window stranded. Each run
// picks up records overdue beyond grace with no live job and enrolls them to
// fire immediately.
type Sweeper struct {
	Store *Store
	Jobs  JobSet
	Grace time.Duration
}

func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	stranded, err := s.Store.ListOverduePending(ctx, now.Add(-s.Grace))
	if err != nil {
		return 0, err
	}

	enrolled := 0
	for _, w := range stranded {
		if s.Jobs.Contains(w.ID) {
			continue
		}
		s.Jobs.Enroll(now, w.ID)
		enrolled++
	}

	if enrolled > 0 {
		logger.Info("stranded pending wishes re-enrolled", "count", enrolled)
	}
	return enrolled, nil
}
