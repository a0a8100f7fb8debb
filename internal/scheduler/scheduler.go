package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"wishbook/internal/logger"
)

// Job is a one-shot (fire time, wish id) pair. Jobs live only in memory;
// the pending set is rebuilt at startup from pending wish records.
type Job struct {
	ID     string
	WishID uint64
	FireAt time.Time
}

// ProcessFunc runs a fired job. It must not return until generation,
// rendering, and delivery have completed or failed. A returned error means
// the callback already recorded the outcome; the scheduler only logs it.
type ProcessFunc func(ctx context.Context, wishID uint64) error

// FailFunc records a failure the callback could not record itself
// (a panic escaping the callback).
type FailFunc func(wishID uint64, reason string)

type Options struct {
	PollInterval time.Duration
	// GraceWindow bounds how far past its fire time a job may still fire.
	// Jobs overdue beyond the window are dropped, never fired.
	GraceWindow time.Duration
	Workers     int
}

type Stats struct {
	Running    bool
	ActiveJobs int
	NextFireAt *time.Time
}

type Scheduler struct {
	process   ProcessFunc
	onFailure FailFunc
	poll      time.Duration
	grace     time.Duration
	sem       chan struct{}

	mu       sync.Mutex
	jobs     map[string]Job
	inflight map[uint64]struct{}
	running  bool

	wg     sync.WaitGroup
	cancel context.CancelFunc
	loopWG sync.WaitGroup
}

func New(process ProcessFunc, onFailure FailFunc, opts Options) *Scheduler {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.GraceWindow <= 0 {
		opts.GraceWindow = 15 * time.Minute
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Scheduler{
		process:   process,
		onFailure: onFailure,
		poll:      opts.PollInterval,
		grace:     opts.GraceWindow,
		sem:       make(chan struct{}, opts.Workers),
		jobs:      make(map[string]Job),
		inflight:  make(map[uint64]struct{}),
	}
}

// Enroll registers a job to fire at or after fireAt and returns its job id.
func (s *Scheduler) Enroll(fireAt time.Time, wishID uint64) string {
	j := Job{ID: uuid.NewString(), WishID: wishID, FireAt: fireAt.UTC()}

	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()

	logger.Debug("job enrolled", "job_id", j.ID, "wish_id", wishID, "fire_at", j.FireAt)
	return j.ID
}

// Cancel removes every still-pending job for the given wish id. A job that
// has already begun executing cannot be stopped; the record-status guard in
// the callback makes a stale fire harmless.
func (s *Scheduler) Cancel(wishID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, j := range s.jobs {
		if j.WishID == wishID {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

func (s *Scheduler) Contains(wishID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if j.WishID == wishID {
			return true
		}
	}
	return false
}

// Pending returns enrolled jobs ordered by fire time.
func (s *Scheduler) Pending() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].FireAt.Before(out[k].FireAt) })
	return out
}

func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Running: s.running, ActiveJobs: len(s.jobs) + len(s.inflight)}
	for _, j := range s.jobs {
		if st.NextFireAt == nil || j.FireAt.Before(*st.NextFireAt) {
			t := j.FireAt
			st.NextFireAt = &t
		}
	}
	return st
}

// Start launches the polling loop. It returns immediately; request handlers
// enroll jobs and never block on their execution.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.loopWG.Add(1)
	go s.loop(ctx)
}

// Shutdown stops the loop and waits for in-flight jobs to finish.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.loopWG.Wait()
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.loopWG.Done()

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.dispatchDue(ctx, now.UTC())
		}
	}
}

// dispatchDue fires every due job onto the worker pool. A job stays enrolled
// when its wish is already executing or no worker slot is free, and is
// retried on the next tick. Jobs overdue beyond the grace window are
// dropped.
func (s *Scheduler) dispatchDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, j := range s.jobs {
		if j.FireAt.After(now) {
			continue
		}
		if now.Sub(j.FireAt) > s.grace {
			delete(s.jobs, id)
			logger.Error("job dropped, overdue beyond grace window",
				"job_id", j.ID, "wish_id", j.WishID, "fire_at", j.FireAt)
			continue
		}
		if _, busy := s.inflight[j.WishID]; busy {
			continue
		}
		select {
		case s.sem <- struct{}{}:
		default:
			continue
		}

		delete(s.jobs, id)
		s.inflight[j.WishID] = struct{}{}
		s.wg.Add(1)
		go s.run(ctx, j)
	}
}

func (s *Scheduler) run(ctx context.Context, j Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in job callback", "job_id", j.ID, "wish_id", j.WishID, "panic", r)
			if s.onFailure != nil {
				s.onFailure(j.WishID, fmt.Sprintf("internal error: %v", r))
			}
		}
		s.mu.Lock()
		delete(s.inflight, j.WishID)
		s.mu.Unlock()
		<-s.sem
		s.wg.Done()
	}()

	if err := s.process(ctx, j.WishID); err != nil {
		logger.Error("job failed", "job_id", j.ID, "wish_id", j.WishID, "error", err)
	}
}
