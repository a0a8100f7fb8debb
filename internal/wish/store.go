package wish

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("wish not found")

// Store is the only component that touches wish persistence. Updates are
// last-write-wins per record; callers guard read-modify-write with the
// status check in the processor.
type Store struct {
	DB *gorm.DB
}

type ListFilter struct {
	Status   string
	Platform string
}

func (s *Store) Create(ctx context.Context, w *Wish) error {
	return s.DB.WithContext(ctx).Create(w).Error
}

func (s *Store) Load(ctx context.Context, id uint64) (*Wish, error) {
	var w Wish
	if err := s.DB.WithContext(ctx).First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (s *Store) Update(ctx context.Context, w *Wish) error {
	return s.DB.WithContext(ctx).Save(w).Error
}

func (s *Store) ListByOwner(ctx context.Context, userID uint64, f ListFilter) ([]Wish, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Platform != "" {
		q = q.Where("platform = ?", f.Platform)
	}

	var out []Wish
	if err := q.Order("due_at asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListHistory(ctx context.Context, userID uint64) ([]Wish, error) {
	var out []Wish
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByOwner removes one record, verifying ownership. Reports ErrNotFound
// when the record does not exist or belongs to someone else.
func (s *Store) DeleteByOwner(ctx context.Context, userID, wishID uint64) error {
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", wishID, userID).Delete(&Wish{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByContact cascades a contact deletion to its wishes and returns the
// deleted ids so the caller can cancel their scheduler jobs.
func (s *Store) DeleteByContact(ctx context.Context, userID, contactID uint64) ([]uint64, error) {
	var ids []uint64
	err := s.DB.WithContext(ctx).Model(&Wish{}).
		Where("user_id = ? AND contact_id = ?", userID, contactID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := s.DB.WithContext(ctx).Delete(&Wish{}, ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListPending returns every pending record, oldest due first. Used to
// rebuild the scheduler's job set at startup.
func (s *Store) ListPending(ctx context.Context) ([]Wish, error) {
	var out []Wish
	err := s.DB.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("due_at asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListOverduePending returns pending records whose due time is before the
// cutoff. These are the records the misfire grace window stranded.
func (s *Store) ListOverduePending(ctx context.Context, cutoff time.Time) ([]Wish, error) {
	var out []Wish
	err := s.DB.WithContext(ctx).
		Where("status = ? AND due_at < ?", StatusPending, cutoff).
		Order("due_at asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountByOwnerSince(ctx context.Context, userID uint64, since time.Time) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&Wish{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&n).Error
	return n, err
}

func (s *Store) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&Wish{}).Count(&n).Error
	return n, err
}

func (s *Store) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&Wish{}).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}

func (s *Store) CountByPlatform(ctx context.Context, platform string) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&Wish{}).Where("platform = ?", platform).Count(&n).Error
	return n, err
}

type DailyCount struct {
	Date  time.Time
	Count int64
}

// DailyCounts returns per-day created counts for the last n days, oldest
// first, including today.
func (s *Store) DailyCounts(ctx context.Context, n int) ([]DailyCount, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	out := make([]DailyCount, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		var c int64
		err := s.DB.WithContext(ctx).Model(&Wish{}).
			Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1)).
			Count(&c).Error
		if err != nil {
			return nil, err
		}
		out = append(out, DailyCount{Date: day, Count: c})
	}
	return out, nil
}

type OwnerCount struct {
	UserID uint64
	Count  int64
}

func (s *Store) TopSenders(ctx context.Context, limit int) ([]OwnerCount, error) {
	var out []OwnerCount
	err := s.DB.WithContext(ctx).Model(&Wish{}).
		Select("user_id, count(*) as count").
		Group("user_id").
		Order("count desc").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
