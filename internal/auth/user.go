package auth

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint64 `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	FullName         string `gorm:"type:text"`
	Role             string `gorm:"not null;default:'user'"`
	SubscriptionPlan string `gorm:"not null;default:'free'"`
	Timezone         string `gorm:"not null;default:'UTC'"`

	CreatedAt time.Time `gorm:"not null"`
}
