package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRolePartner UserRole = "partner"
)

type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusLocked UserStatus = "locked"
)

// User is an authenticated account: an admin or a partner-site operator.
// Partner users carry the ID of the partner whose leads they own.
type User struct {
	Base
	Email            string     `db:"email" json:"email"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	Name             string     `db:"name" json:"name"`
	Role             UserRole   `db:"role" json:"role"`
	PartnerID        *uuid.UUID `db:"partner_id" json:"partner_id,omitempty"`
	Status           UserStatus `db:"status" json:"status"`
	LoginAttempts    int        `db:"login_attempts" json:"-"`
	LastLoginAttempt time.Time  `db:"last_login_attempt" json:"-"`
	LastLoginAt      *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

// TokenClaims is the decoded identity attached to each request.
type TokenClaims struct {
	UserID    uuid.UUID  `json:"user_id"`
	Email     string     `json:"email"`
	Role      UserRole   `json:"role"`
	PartnerID *uuid.UUID `json:"partner_id,omitempty"`
}

// IsAdmin reports whether the caller may act across all partners.
func (c *TokenClaims) IsAdmin() bool {
	return c != nil && c.Role == UserRoleAdmin
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterRequest is self-serve site signup. Role and partner scope are
// never taken from the request: every registration creates a partner-role
// user bound to a new partner record. Admin accounts are provisioned
// operationally, not through this endpoint.
type RegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Organization string `json:"organization" binding:"omitempty,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
