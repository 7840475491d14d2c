// Copyright (c) 2026 Crescendo. All rights reserved.

// Package auth implements account registration, login, token lifecycle,
// and password recovery for the Crescendo platform.
//
// # Architecture
//
// The package follows the vertical-slice layout: entities here, storage
// contracts in store.go, the PostgreSQL and Redis implementations in their
// own files, business logic in service.go, and HTTP delivery in http.go.
package auth

import (
	"time"

	"github.com/crescendofm/crescendo/internal/platform/sec"
)

// User represents a registered member of the Crescendo platform.
//
// # Rules
//   - Username is unique and URL-safe.
//   - Email is unique and validated.
//   - PasswordHash is generated via Bcrypt exclusively by the auth service.
type User struct {
	ID                string       `json:"id"`
	Email             string       `json:"email"`
	Username          string       `json:"username"`
	PasswordHash      string       `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName       string       `json:"display_name"`
	Bio               string       `json:"bio,omitempty"`
	ProfilePictureURL string       `json:"profile_picture_url,omitempty"`
	Role              sec.UserRole `json:"role"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// ResetToken represents a single-use password recovery credential.
//
// # Security Concept
//
// Tokens are random 64-hex strings mailed out-of-band. A token is consumed
// (Used flips to true) the moment it successfully resets a password, so a
// leaked reset link cannot be replayed.
type ResetToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"-"` // Never serialized back to clients.
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token's validity window has passed.
func (t *ResetToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}
