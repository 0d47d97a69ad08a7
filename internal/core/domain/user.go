package domain

import "time"

// User represents an identity that owns (at most) one custodial account.
type User struct {
	UserID       string `json:"userID"` // Primary Key (UUID)
	FullName     string `json:"fullName"`
	Email        string `json:"email"` // Unique, stored lower-cased
	PhoneNumber  string `json:"phoneNumber"`
	PasswordHash string `json:"-"`
	IsSuperuser  bool   `json:"isSuperuser"` // Superusers never get an account
	IsVerified   bool   `json:"isVerified"`
	IsBlocked    bool   `json:"isBlocked"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// NeedsAccount reports whether account provisioning applies to the user.
func (u User) NeedsAccount() bool {
	return !u.IsSuperuser
}
