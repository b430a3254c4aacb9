package domain

import "time"

// ============================================================
// Users & auth (POST /auth/login, POST /auth/register)
// ============================================================

// User is the authenticated identity. It is immutable for the session.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email"`
}

// DisplayName prefers name, then full name, then username.
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.FullName != "":
		return u.FullName
	default:
		return u.Username
	}
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// AuthResponse is returned by both login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UserRecord is a devbank user with its password hash.
type UserRecord struct {
	User
	PasswordHash string
	CreatedAt    time.Time
}
