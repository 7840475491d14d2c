// Copyright (c) 2026 Crescendo. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crescendofm/crescendo/internal/platform/apperr"
	"github.com/crescendofm/crescendo/internal/platform/constants"
	"github.com/crescendofm/crescendo/internal/platform/sec"
	"github.com/crescendofm/crescendo/pkg/uuidv7"
)

// Service implements the account and token lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// issuance, or the blacklist flow must be reviewed by the security team.
type Service struct {
	userRepository  UserRepository
	resetRepository ResetTokenRepository
	blacklist       Blacklist
	tokens          *sec.TokenService
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	resetRepo ResetTokenRepository,
	blacklist Blacklist,
	tokens *sec.TokenService,
) *Service {
	return &Service{
		userRepository:  userRepo,
		resetRepository: resetRepo,
		blacklist:       blacklist,
		tokens:          tokens,
	}
}

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email       string
	Username    string
	Password    string
	DisplayName string
}

// AuthSession bundles a user with a freshly issued token pair.
type AuthSession struct {
	User   *User
	Tokens sec.TokenPair
}

// Register validates, hashes, and persists a brand new user account,
// then signs the first token pair so the client is logged in immediately.
//
// # Parameters
//   - ctx: Context for the database operation.
//   - input: The user-provided registration details.
//
// # Returns
//   - An [*AuthSession] with the created [User] and their token pair.
//   - Returns [apperr.Conflict] if email or username already exists.
//
// # Business Rules
//   - Emails must be unique.
//   - Usernames must be unique.
//   - Default role is always 'user'.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*AuthSession, error) {
	// ── 1. Uniqueness Checks ──────────────────────────────────────────────

	// Verify email uniqueness. Return a client-safe Conflict error.
	_, err := service.userRepository.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict error.
	_, err = service.userRepository.FindByUsername(ctx, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// ── 2. Security ───────────────────────────────────────────────────────

	// Prevent storing plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 3. Entity Construction ────────────────────────────────────────────

	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.Username
	}

	user := &User{
		ID:           uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hashedPassword,
		DisplayName:  displayName,
		Role:         sec.RoleUser, // Rule: Default role is always User
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	// The unique indexes remain the source of truth: two concurrent
	// registrations race past the pre-checks, but only one insert wins
	// and the loser still surfaces as a Conflict.
	if err := service.userRepository.Create(ctx, user); err != nil {
		return nil, err
	}

	// ── 5. Token Issuance ─────────────────────────────────────────────────

	pair, err := service.tokens.IssuePair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_token_failed: %w", err)
	}

	return &AuthSession{User: user, Tokens: pair}, nil
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// Login validates user credentials and issues a fresh token pair.
//
// # Parameters
//   - ctx: Context for the database operation.
//   - input: Contains Email and plain-text Password.
//
// # Returns
//   - An [*AuthSession] containing the [User] and their token pair.
//   - Returns [apperr.Unauthorized] if credentials do not match.
//
// # Flow
//  1. Lookup user by email.
//  2. Verify password hash using Bcrypt.
//  3. Sign a new access/refresh pair.
func (service *Service) Login(ctx context.Context, input LoginInput) (*AuthSession, error) {
	// ── 1. Fetch User Profile ─────────────────────────────────────────────

	// Return the same generic unauthorized error for unknown-email and
	// wrong-password to prevent account enumeration.
	user, err := service.userRepository.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	// ── 2. Security Verification ──────────────────────────────────────────

	// Bcrypt comparison is constant-time, which also blunts timing attacks.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	pair, err := service.tokens.IssuePair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_token_failed: %w", err)
	}

	return &AuthSession{User: user, Tokens: pair}, nil
}

// Refresh exchanges a valid refresh token for a brand-new token pair.
//
// # Flow
//  1. Verify the refresh token's signature, expiry, and kind claim.
//  2. Re-read the user row. A 7-day-old token must never mint an access
//     token from stale claims: role changes and deletions take effect here.
//  3. Sign a new pair.
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*AuthSession, error) {
	// ── 1. Token Verification ─────────────────────────────────────────────

	claims, err := service.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, sec.ErrExpiredToken) {
			return nil, apperr.Unauthorized("Refresh token expired")
		}
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// ── 2. Re-read User ───────────────────────────────────────────────────

	user, err := service.userRepository.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	pair, err := service.tokens.IssuePair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return &AuthSession{User: user, Tokens: pair}, nil
}

// Logout revokes the presented access token for its remaining lifetime.
//
// The blacklist entry's TTL matches the token's own expiry (floored at one
// minute to absorb clock skew), so the deny list never grows beyond the
// set of tokens that are still live anyway.
func (service *Service) Logout(ctx context.Context, rawToken string, claims *sec.AccessClaims) error {
	ttl := sec.RemainingLifetime(claims)
	if ttl < constants.BlacklistMinTTL {
		ttl = constants.BlacklistMinTTL
	}

	if err := service.blacklist.Revoke(ctx, rawToken, ttl); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// RequestPasswordReset issues a single-use recovery token for the account
// registered under email.
//
// # Returns
//   - The raw token for out-of-band delivery, or "" when no account matches.
//   - Callers must respond identically in both cases so the endpoint cannot
//     be used to probe which emails are registered.
func (service *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := service.userRepository.FindByEmail(ctx, email)
	if err != nil {
		// Unknown email. Report success upstream regardless.
		return "", nil
	}

	// A new token supersedes any outstanding recovery email.
	if err := service.resetRepository.InvalidateForUser(ctx, user.ID); err != nil {
		return "", fmt.Errorf("auth_service_reset_invalidate_failed: %w", err)
	}

	rawToken, err := sec.GenerateSecureToken(constants.ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_reset_token_failed: %w", err)
	}

	resetToken := &ResetToken{
		ID:        uuidv7.New(),
		UserID:    user.ID,
		Token:     rawToken,
		ExpiresAt: time.Now().Add(constants.ResetTokenTTL),
	}

	if err := service.resetRepository.Create(ctx, resetToken); err != nil {
		return "", fmt.Errorf("auth_service_reset_create_failed: %w", err)
	}

	return rawToken, nil
}

// ResetPassword consumes a recovery token and replaces the account password.
//
// # Returns
//   - Returns a validation error for unknown, expired, or already-used
//     tokens. The three cases share one message on purpose.
func (service *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	// ── 1. Token Lookup ───────────────────────────────────────────────────

	row, err := service.resetRepository.FindByToken(ctx, token)
	if err != nil {
		return apperr.ValidationError("Invalid or expired reset token")
	}

	if row.Used || row.Expired() {
		return apperr.ValidationError("Invalid or expired reset token")
	}

	// ── 2. Password Replacement ───────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(ctx, row.UserID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}

	// ── 3. Consumption ────────────────────────────────────────────────────

	// Mark the token spent only after the password write lands, so a failed
	// update leaves the token usable on retry.
	if err := service.resetRepository.MarkUsed(ctx, row.ID); err != nil {
		return fmt.Errorf("auth_service_reset_consume_failed: %w", err)
	}

	return nil
}
