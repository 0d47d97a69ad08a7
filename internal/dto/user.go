package dto

import (
	"time"

	"github.com/SscSPs/ewallet_ledger/internal/core/domain"
)

// CreateUserRequest defines the data needed to register a user.
type CreateUserRequest struct {
	FullName    string `json:"fullName" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"required,max=20"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	// Never bound from requests; set by operators seeding administrative users.
	IsSuperuser bool `json:"-"`
}

// LoginRequest carries the credentials for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ScanIdentityRequest carries a scanned identity payload.
type ScanIdentityRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// UserResponse defines the data returned for the authenticated user.
type UserResponse struct {
	UserID      string    `json:"userID"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	IsVerified  bool      `json:"isVerified"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PublicUserResponse is what anyone scanning an identity payload may see.
type PublicUserResponse struct {
	UserID   string `json:"userID"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// ToUserResponse converts a domain.User to UserResponse DTO
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:      u.UserID,
		FullName:    u.FullName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
	}
}

// ToPublicUserResponse converts a domain.User to PublicUserResponse DTO
func ToPublicUserResponse(u *domain.User) PublicUserResponse {
	return PublicUserResponse{UserID: u.UserID, FullName: u.FullName, Email: u.Email}
}
