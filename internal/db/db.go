package db

import (
	"wishbook/internal/auth"
	"wishbook/internal/contact"
	"wishbook/internal/plan"
	"wishbook/internal/wish"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&auth.User{},
		&contact.Contact{},
		&plan.Plan{},
		&wish.Wish{},
	); err != nil {
		return err
	}

	// Composite indexes the scheduler's rebuild/sweep queries lean on.
	stmts := []string{
		`create index if not exists idx_wishes_status_due on wishes(status, due_at);`,
		`create index if not exists idx_wishes_user_created on wishes(user_id, created_at desc);`,
		`create index if not exists idx_wishes_user_contact on wishes(user_id, contact_id);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return err
		}
	}

	return plan.Seed(gdb)
}
