// Copyright (c) 2026 Crescendo. All rights reserved.

package auth

import (
	"context"
	"time"
)

// UserRepository defines the data access contract for user accounts.
//
// # Review Process
//
// This interface is placed in a separate file from user.go so entity changes
// and storage-contract changes can be reviewed independently by the team.
//
// # Implementations
//
// The canonical implementation for Crescendo is PostgreSQL ([PostgresUserRepository]).
type UserRepository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given email.
	//
	// Returns [apperr.NotFound] if no user is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername returns the account with the given username.
	//
	// Returns [apperr.NotFound] if the username is available.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create persists a brand-new user account to storage.
	//
	// Returns [apperr.Conflict] if a unique constraint (email/username) fails.
	Create(ctx context.Context, user *User) error

	// Update persists changes to mutable profile fields (DisplayName, Bio,
	// ProfilePictureURL). Passwords must be updated via [UpdatePassword].
	Update(ctx context.Context, user *User) error

	// UpdatePassword replaces only the user's password hash.
	// This is separate from [Update] to prevent accidental overwrites
	// during unrelated profile updates.
	UpdatePassword(ctx context.Context, userID, newHash string) error
}

// ResetTokenRepository defines the contract for single-use password reset tokens.
//
// # Domain Ownership
//
// Reset tokens are kept alongside [UserRepository] because recovery is owned
// entirely by the account domain, despite serving authentication security.
type ResetTokenRepository interface {
	// Create persists a new reset token row.
	Create(ctx context.Context, token *ResetToken) error

	// FindByToken returns the reset token row matching the raw token string.
	//
	// Returns [apperr.NotFound] if no such token was ever issued.
	FindByToken(ctx context.Context, token string) (*ResetToken, error)

	// MarkUsed consumes a reset token so it can never be replayed.
	MarkUsed(ctx context.Context, tokenID string) error

	// InvalidateForUser consumes every outstanding token for the user.
	// Issuing a new token supersedes any previous recovery email.
	InvalidateForUser(ctx context.Context, userID string) error
}

// Blacklist defines the contract for revoked-access-token tracking.
//
// # Security Concept
//
// Access tokens are stateless JWTs and cannot be un-signed. Logout instead
// records the raw token in a shared deny list whose entries outlive the
// token itself, so a blacklisted token stays dead until it would have
// expired anyway.
type Blacklist interface {
	// Revoke records the raw token for the given duration.
	Revoke(ctx context.Context, token string, ttl time.Duration) error

	// IsRevoked reports whether the raw token has been blacklisted.
	//
	// Callers must treat a returned error as "assume revoked": the deny
	// list being unreachable is not a reason to let tokens through.
	IsRevoked(ctx context.Context, token string) (bool, error)
}
