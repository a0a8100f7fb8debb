package wish

import (
	"context"
	"errors"
	"testing"
	"time"

	"wishbook/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return &Store{DB: testutil.OpenDB(t, &Wish{})}
}

func TestStoreCreateLoadUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := pendingBirthdayWish(time.Now().UTC(), RecurrenceNone)
	if err := s.Create(ctx, w); err != nil {
		t.Fatal(err)
	}
	if w.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := s.Load(ctx, w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.RecipientName != "Ana" || got.Status != StatusPending {
		t.Fatalf("unexpected record %+v", got)
	}

	got.Status = StatusSent
	got.GeneratedText = "text"
	if err := s.Update(ctx, got); err != nil {
		t.Fatal(err)
	}

	got, err = s.Load(ctx, w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusSent || got.GeneratedText != "text" {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestStoreLoadNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load(context.Background(), 12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreListByOwnerFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mk := func(userID uint64, status, platform string) {
		w := pendingBirthdayWish(time.Now().UTC(), RecurrenceNone)
		w.UserID = userID
		w.Status = status
		w.Platform = platform
		if err := s.Create(ctx, w); err != nil {
			t.Fatal(err)
		}
	}
	mk(1, StatusPending, PlatformEmail)
	mk(1, StatusSent, PlatformEmail)
	mk(1, StatusSent, PlatformTelegram)
	mk(2, StatusPending, PlatformEmail)

	all, err := s.ListByOwner(ctx, 1, ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records for owner 1, got %d", len(all))
	}

	sent, err := s.ListByOwner(ctx, 1, ListFilter{Status: StatusSent})
	if err != nil {
		t.Fatal(err)
	}
	if len(sent) != 2 {
		t.Fatalf("expected 2 sent records, got %d", len(sent))
	}

	tg, err := s.ListByOwner(ctx, 1, ListFilter{Status: StatusSent, Platform: PlatformTelegram})
	if err != nil {
		t.Fatal(err)
	}
	if len(tg) != 1 {
		t.Fatalf("expected 1 telegram record, got %d", len(tg))
	}
}

func TestStoreDeleteByOwnerChecksOwnership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := pendingBirthdayWish(time.Now().UTC(), RecurrenceNone)
	if err := s.Create(ctx, w); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteByOwner(ctx, 99, w.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if err := s.DeleteByOwner(ctx, 1, w.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, w.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("record should be gone")
	}
}

func TestStoreDeleteByContactCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	contactID := uint64(5)
	for i := 0; i < 2; i++ {
		w := pendingBirthdayWish(time.Now().UTC(), RecurrenceNone)
		w.ContactID = &contactID
		if err := s.Create(ctx, w); err != nil {
			t.Fatal(err)
		}
	}
	other := pendingBirthdayWish(time.Now().UTC(), RecurrenceNone)
	if err := s.Create(ctx, other); err != nil {
		t.Fatal(err)
	}

	ids, err := s.DeleteByContact(ctx, 1, contactID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 cascaded deletions, got %v", ids)
	}

	left, err := s.ListByOwner(ctx, 1, ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 1 || left[0].ID != other.ID {
		t.Fatalf("expected only the unrelated wish to survive, got %+v", left)
	}
}

func TestStorePendingQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	overdue := pendingBirthdayWish(now.Add(-time.Hour), RecurrenceNone)
	future := pendingBirthdayWish(now.Add(time.Hour), RecurrenceNone)
	done := pendingBirthdayWish(now.Add(-time.Hour), RecurrenceNone)
	done.Status = StatusSent
	for _, w := range []*Wish{overdue, future, done} {
		if err := s.Create(ctx, w); err != nil {
			t.Fatal(err)
		}
	}

	pending, err := s.ListPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].ID != overdue.ID {
		t.Fatal("expected oldest due first")
	}

	stranded, err := s.ListOverduePending(ctx, now.Add(-30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(stranded) != 1 || stranded[0].ID != overdue.ID {
		t.Fatalf("expected only the overdue pending wish, got %+v", stranded)
	}
}

func TestStoreAggregates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		w := pendingBirthdayWish(time.Now().UTC(), RecurrenceNone)
		w.UserID = 1
		if err := s.Create(ctx, w); err != nil {
			t.Fatal(err)
		}
	}
	w := pendingBirthdayWish(time.Now().UTC(), RecurrenceNone)
	w.UserID = 2
	w.Platform = PlatformTelegram
	if err := s.Create(ctx, w); err != nil {
		t.Fatal(err)
	}

	if n, err := s.CountAll(ctx); err != nil || n != 4 {
		t.Fatalf("CountAll = %d, %v", n, err)
	}
	if n, err := s.CountByPlatform(ctx, PlatformEmail); err != nil || n != 3 {
		t.Fatalf("CountByPlatform(email) = %d, %v", n, err)
	}

	top, err := s.TopSenders(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].UserID != 1 || top[0].Count != 3 {
		t.Fatalf("unexpected leaderboard %+v", top)
	}

	days, err := s.DailyCounts(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(days))
	}
	if days[6].Count != 4 {
		t.Fatalf("expected all 4 records in today's bucket, got %d", days[6].Count)
	}
}
