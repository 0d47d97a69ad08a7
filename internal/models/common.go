package models

import "time"

// AuditFields holds the audit timestamps persisted on mutable rows.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at" gorm:"column:created_at;not null"`
	LastUpdatedAt time.Time `db:"last_updated_at" gorm:"column:last_updated_at;not null"`
}

// All returns every persisted model, in dependency order, for schema migration.
func All() []any {
	return []any{&User{}, &Account{}, &Card{}, &Transaction{}, &SpendingLog{}, &Analysis{}}
}
