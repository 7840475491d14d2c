// Copyright (c) 2026 Crescendo. All rights reserved.

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendofm/crescendo/internal/platform/sec"
)

const (
	testSecret  = "0123456789abcdef0123456789abcdef"
	otherSecret = "fedcba9876543210fedcba9876543210"
)

func newTokenService(t *testing.T, secret string, accessTTL time.Duration) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(secret, "crescendo.fm", accessTTL, 7*24*time.Hour)
	require.NoError(t, err)
	return service
}

/*
TestNewTokenService_SecretLength verifies short secrets are rejected at
construction time instead of producing weak signatures later.
*/
func TestNewTokenService_SecretLength(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"too_short", "short", true},
		{"31_bytes", "0123456789abcdef0123456789abcde", true},
		{"32_bytes", testSecret, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.NewTokenService(tt.secret, "crescendo.fm", time.Minute, time.Hour)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestTokenService_RoundTrip verifies a freshly issued pair verifies under the
same secret and carries the expected claims.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService(t, testSecret, 15*time.Minute)

	pair, err := service.IssuePair("user-1", "ana@crescendo.fm", "user")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	access, err := service.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", access.UserID)
	assert.Equal(t, "ana@crescendo.fm", access.Email)
	assert.Equal(t, "user", access.Role)
	assert.Equal(t, sec.TokenKindAccess, access.Kind)
	assert.Equal(t, "crescendo.fm", access.Issuer)

	refresh, err := service.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", refresh.UserID)
	assert.Equal(t, sec.TokenKindRefresh, refresh.Kind)
}

/*
TestTokenService_WrongSecret verifies a token minted under one secret never
verifies under another.
*/
func TestTokenService_WrongSecret(t *testing.T) {
	signer := newTokenService(t, testSecret, 15*time.Minute)
	verifier := newTokenService(t, otherSecret, 15*time.Minute)

	pair, err := signer.IssuePair("user-1", "ana@crescendo.fm", "user")
	require.NoError(t, err)

	_, err = verifier.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	_, err = verifier.VerifyRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestTokenService_KindEnforcement verifies the kind marker keeps the two token
roles strictly separated: a week-long refresh token must never pass the
access gate, and vice versa.
*/
func TestTokenService_KindEnforcement(t *testing.T) {
	service := newTokenService(t, testSecret, 15*time.Minute)

	pair, err := service.IssuePair("user-1", "ana@crescendo.fm", "user")
	require.NoError(t, err)

	_, err = service.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	_, err = service.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestTokenService_Expiry verifies lapsed lifetimes surface as the distinct
expired error, not the generic invalid one.
*/
func TestTokenService_Expiry(t *testing.T) {
	service := newTokenService(t, testSecret, -time.Minute) // Already expired at issue.

	pair, err := service.IssuePair("user-1", "ana@crescendo.fm", "user")
	require.NoError(t, err)

	_, err = service.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, sec.ErrExpiredToken)
}

/*
TestTokenService_Malformed verifies garbage input collapses to the invalid
error rather than panicking or leaking parser internals.
*/
func TestTokenService_Malformed(t *testing.T) {
	service := newTokenService(t, testSecret, 15*time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not_a_jwt", "hello world"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.VerifyAccess(tt.token)
			assert.ErrorIs(t, err, sec.ErrInvalidToken)
		})
	}
}

/*
TestRemainingLifetime checks the revocation-TTL helper against live, lapsed,
and malformed claims.
*/
func TestRemainingLifetime(t *testing.T) {
	service := newTokenService(t, testSecret, 15*time.Minute)

	pair, err := service.IssuePair("user-1", "ana@crescendo.fm", "user")
	require.NoError(t, err)

	claims, err := service.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)

	remaining := sec.RemainingLifetime(claims)
	assert.Greater(t, remaining, 14*time.Minute)
	assert.LessOrEqual(t, remaining, 15*time.Minute)

	assert.Equal(t, time.Duration(0), sec.RemainingLifetime(nil))
	assert.Equal(t, time.Duration(0), sec.RemainingLifetime(&sec.AccessClaims{}))
}
