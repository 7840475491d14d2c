// Copyright (c) 2026 Crescendo. All rights reserved.

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendofm/crescendo/internal/auth"
	"github.com/crescendofm/crescendo/internal/platform/apperr"
	"github.com/crescendofm/crescendo/internal/platform/sec"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// ── Fakes ────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*auth.User // keyed by ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*auth.User{}}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return apperr.Conflict("Email or username is already registered")
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		user.PasswordHash = newHash
	}
	return nil
}

type fakeResetRepo struct {
	mu     sync.Mutex
	tokens map[string]*auth.ResetToken // keyed by raw token
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*auth.ResetToken{}}
}

func (r *fakeResetRepo) Create(_ context.Context, token *auth.ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeResetRepo) FindByToken(_ context.Context, token string) (*auth.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.tokens[token]; ok {
		return row, nil
	}
	return nil, apperr.NotFound("Reset token")
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.tokens {
		if row.ID == tokenID {
			row.Used = true
		}
	}
	return nil
}

func (r *fakeResetRepo) InvalidateForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.tokens {
		if row.UserID == userID {
			row.Used = true
		}
	}
	return nil
}

type fakeBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{revoked: map[string]time.Duration{}}
}

func (b *fakeBlacklist) Revoke(_ context.Context, token string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[token] = ttl
	return nil
}

func (b *fakeBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.revoked[token]
	return ok, nil
}

// ── Harness ──────────────────────────────────────────────────────────────────

type serviceHarness struct {
	service   *auth.Service
	users     *fakeUserRepo
	resets    *fakeResetRepo
	blacklist *fakeBlacklist
	tokens    *sec.TokenService
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()

	tokens, err := sec.NewTokenService(testSecret, "crescendo.fm", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	users := newFakeUserRepo()
	resets := newFakeResetRepo()
	blacklist := newFakeBlacklist()

	return &serviceHarness{
		service:   auth.NewService(users, resets, blacklist, tokens),
		users:     users,
		resets:    resets,
		blacklist: blacklist,
		tokens:    tokens,
	}
}

func (h *serviceHarness) register(t *testing.T, email, username string) *auth.AuthSession {
	t.Helper()

	session, err := h.service.Register(context.Background(), auth.RegisterInput{
		Email:    email,
		Username: username,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	return session
}

// ── Tests ────────────────────────────────────────────────────────────────────

/*
TestService_Register verifies enrollment, default role assignment, and
duplicate rejection.
*/
func TestService_Register(t *testing.T) {
	harness := newServiceHarness(t)

	session := harness.register(t, "ana@crescendo.fm", "ana")
	assert.Equal(t, sec.RoleUser, session.User.Role)
	assert.Equal(t, "ana", session.User.DisplayName) // Falls back to username.
	assert.NotEmpty(t, session.Tokens.AccessToken)
	assert.NotEmpty(t, session.Tokens.RefreshToken)

	// A fresh pair must immediately verify as an access token.
	claims, err := harness.tokens.VerifyAccess(session.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	tests := []struct {
		name     string
		email    string
		username string
	}{
		{"duplicate_email", "ana@crescendo.fm", "other"},
		{"duplicate_username", "other@crescendo.fm", "ana"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := harness.service.Register(context.Background(), auth.RegisterInput{
				Email:    tt.email,
				Username: tt.username,
				Password: "correct-horse-battery",
			})
			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "CONFLICT", ae.Code)
		})
	}
}

/*
TestService_Login verifies credential checks return one uniform error for
every failure mode.
*/
func TestService_Login(t *testing.T) {
	harness := newServiceHarness(t)
	harness.register(t, "ana@crescendo.fm", "ana")

	tests := []struct {
		name     string
		email    string
		password string
		wantOK   bool
	}{
		{"valid", "ana@crescendo.fm", "correct-horse-battery", true},
		{"wrong_password", "ana@crescendo.fm", "nope", false},
		{"unknown_email", "ghost@crescendo.fm", "correct-horse-battery", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := harness.service.Login(context.Background(), auth.LoginInput{
				Email:    tt.email,
				Password: tt.password,
			})

			if tt.wantOK {
				require.NoError(t, err)
				assert.NotEmpty(t, session.Tokens.AccessToken)
				return
			}

			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			// Same message for both failure modes. Enumeration resistance.
			assert.Equal(t, "Invalid credentials", ae.Message)
		})
	}
}

/*
TestService_Refresh verifies the exchange flow, kind-claim enforcement, and
that the fresh pair reflects the current user row rather than stale claims.
*/
func TestService_Refresh(t *testing.T) {
	harness := newServiceHarness(t)
	session := harness.register(t, "ana@crescendo.fm", "ana")

	t.Run("valid_refresh", func(t *testing.T) {
		renewed, err := harness.service.Refresh(context.Background(), session.Tokens.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, session.User.ID, renewed.User.ID)
		assert.NotEmpty(t, renewed.Tokens.AccessToken)
	})

	t.Run("access_token_rejected", func(t *testing.T) {
		// An access token carries knd=access and must never pass as refresh.
		_, err := harness.service.Refresh(context.Background(), session.Tokens.AccessToken)
		require.Error(t, err)
		assert.Equal(t, "Invalid refresh token", apperr.As(err).Message)
	})

	t.Run("picks_up_role_change", func(t *testing.T) {
		harness.users.users[session.User.ID].Role = sec.RoleAdmin

		renewed, err := harness.service.Refresh(context.Background(), session.Tokens.RefreshToken)
		require.NoError(t, err)

		claims, err := harness.tokens.VerifyAccess(renewed.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, string(sec.RoleAdmin), claims.Role)
	})

	t.Run("deleted_user_rejected", func(t *testing.T) {
		delete(harness.users.users, session.User.ID)

		_, err := harness.service.Refresh(context.Background(), session.Tokens.RefreshToken)
		require.Error(t, err)
		assert.Equal(t, apperr.As(err).HTTPStatus, 401)
	})
}

/*
TestService_Logout verifies revocation lands in the deny list with a TTL
bounded by the token lifetime and floored at one minute.
*/
func TestService_Logout(t *testing.T) {
	harness := newServiceHarness(t)
	session := harness.register(t, "ana@crescendo.fm", "ana")

	claims, err := harness.tokens.VerifyAccess(session.Tokens.AccessToken)
	require.NoError(t, err)

	err = harness.service.Logout(context.Background(), session.Tokens.AccessToken, claims)
	require.NoError(t, err)

	revoked, err := harness.blacklist.IsRevoked(context.Background(), session.Tokens.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl := harness.blacklist.revoked[session.Tokens.AccessToken]
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.LessOrEqual(t, ttl, 15*time.Minute)
}

/*
TestService_PasswordReset covers the full recovery loop: issuance, use,
single-use enforcement, and expiry.
*/
func TestService_PasswordReset(t *testing.T) {
	harness := newServiceHarness(t)
	harness.register(t, "ana@crescendo.fm", "ana")

	t.Run("unknown_email_silent", func(t *testing.T) {
		token, err := harness.service.RequestPasswordReset(context.Background(), "ghost@crescendo.fm")
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("single_use", func(t *testing.T) {
		token, err := harness.service.RequestPasswordReset(context.Background(), "ana@crescendo.fm")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		err = harness.service.ResetPassword(context.Background(), token, "new-secret-phrase")
		require.NoError(t, err)

		// The new password must immediately work.
		_, err = harness.service.Login(context.Background(), auth.LoginInput{
			Email:    "ana@crescendo.fm",
			Password: "new-secret-phrase",
		})
		require.NoError(t, err)

		// Replaying the same token must fail.
		err = harness.service.ResetPassword(context.Background(), token, "sneaky-third-value")
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("new_token_supersedes_old", func(t *testing.T) {
		first, err := harness.service.RequestPasswordReset(context.Background(), "ana@crescendo.fm")
		require.NoError(t, err)
		second, err := harness.service.RequestPasswordReset(context.Background(), "ana@crescendo.fm")
		require.NoError(t, err)

		err = harness.service.ResetPassword(context.Background(), first, "does-not-matter-1")
		require.Error(t, err)

		err = harness.service.ResetPassword(context.Background(), second, "does-matter-22")
		require.NoError(t, err)
	})

	t.Run("expired_token", func(t *testing.T) {
		token, err := harness.service.RequestPasswordReset(context.Background(), "ana@crescendo.fm")
		require.NoError(t, err)

		harness.resets.tokens[token].ExpiresAt = time.Now().Add(-time.Minute)

		err = harness.service.ResetPassword(context.Background(), token, "too-late-password")
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}
