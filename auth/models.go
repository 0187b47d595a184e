package auth

import (
	"time"

	"github.com/turisesng/village-link-app/lifecycle"
)

// Role aliases the lifecycle role enum so callers deal with one type.
type Role = lifecycle.Role

const (
	RoleResident        = lifecycle.RoleResident
	RoleStore           = lifecycle.RoleStore
	RoleServiceProvider = lifecycle.RoleServiceProvider
	RoleRider           = lifecycle.RoleRider
	RoleAdmin           = lifecycle.RoleAdmin
)

// User is the domain representation of an authenticated account.
// It mirrors the users table and should not include JSON annotations so it
// can be reused by different presentation layers.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterRequest contains account registration data supplied by callers.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
