package models

import (
	"time"
)

// User is the persisted form of a wallet user.
type User struct {
	UserID       string `db:"user_id" gorm:"column:user_id;primaryKey"`
	FullName     string `db:"full_name" gorm:"column:full_name;not null"`
	Email        string `db:"email" gorm:"column:email;uniqueIndex;not null"`
	PhoneNumber  string `db:"phone_number" gorm:"column:phone_number;uniqueIndex;not null"`
	PasswordHash string `db:"password_hash" gorm:"column:password_hash;not null"`
	IsSuperuser  bool   `db:"is_superuser" gorm:"column:is_superuser;not null;default:false"`
	IsVerified   bool   `db:"is_verified" gorm:"column:is_verified;not null;default:false"`
	IsBlocked    bool   `db:"is_blocked" gorm:"column:is_blocked;not null;default:false"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at" gorm:"column:deleted_at"`
}

func (User) TableName() string { return "users" }
