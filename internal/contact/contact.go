package contact

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("contact not found")

type Contact struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`

	Name  string `gorm:"index;not null"`
	Email string `gorm:"index"`
	Phone string

	Relationship string     `gorm:"default:'Friend'"`
	Birthday     *time.Time `gorm:"type:timestamptz"`
	Anniversary  *time.Time `gorm:"type:timestamptz"`

	CustomOccasionName string
	CustomOccasionDate *time.Time `gorm:"type:timestamptz"`

	Notes string         `gorm:"type:text"`
	Tags  pq.StringArray `gorm:"type:text[]"`

	CreatedAt time.Time `gorm:"not null"`
}

type Store struct {
	DB *gorm.DB
}

func (s *Store) Create(ctx context.Context, c *Contact) error {
	return s.DB.WithContext(ctx).Create(c).Error
}

func (s *Store) ListByOwner(ctx context.Context, userID uint64) ([]Contact, error) {
	var out []Contact
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteByOwner(ctx context.Context, userID, contactID uint64) error {
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", contactID, userID).Delete(&Contact{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
