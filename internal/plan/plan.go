package plan

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Plan is a subscription tier. MessageLimit caps wishes created per
// calendar month; zero means unlimited.
type Plan struct {
	ID           uint64 `gorm:"primaryKey"`
	Name         string `gorm:"uniqueIndex;not null"`
	PriceCents   int    `gorm:"not null;default:0"`
	ContactLimit int    `gorm:"not null;default:0"`
	MessageLimit int    `gorm:"not null;default:0"`
	AILimit      int    `gorm:"not null;default:0"`
	IsActive     bool   `gorm:"not null;default:true"`
}

type Store struct {
	DB *gorm.DB
}

func (s *Store) ByName(ctx context.Context, name string) (*Plan, error) {
	if strings.TrimSpace(name) == "" {
		name = "free"
	}
	var p Plan
	err := s.DB.WithContext(ctx).
		Where("lower(name) = ?", strings.ToLower(name)).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Seed inserts the default tiers when the table is empty.
func Seed(db *gorm.DB) error {
	var n int64
	if err := db.Model(&Plan{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	defaults := []Plan{
		{Name: "free", PriceCents: 0, ContactLimit: 10, MessageLimit: 5, AILimit: 10, IsActive: true},
		{Name: "starter", PriceCents: 499, ContactLimit: 100, MessageLimit: 50, AILimit: 200, IsActive: true},
		{Name: "premium", PriceCents: 1499, ContactLimit: 0, MessageLimit: 0, AILimit: 0, IsActive: true},
	}
	return db.Create(&defaults).Error
}
