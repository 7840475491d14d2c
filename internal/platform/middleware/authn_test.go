// Copyright (c) 2026 Crescendo. All rights reserved.

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendofm/crescendo/internal/platform/ctxutil"
	"github.com/crescendofm/crescendo/internal/platform/middleware"
	"github.com/crescendofm/crescendo/internal/platform/sec"
)

// stubVerifier maps raw token strings to canned verification outcomes.
type stubVerifier struct {
	claims map[string]*sec.AccessClaims
	errs   map[string]error
}

func (v *stubVerifier) VerifyAccess(token string) (*sec.AccessClaims, error) {
	if err, ok := v.errs[token]; ok {
		return nil, err
	}
	if claims, ok := v.claims[token]; ok {
		return claims, nil
	}
	return nil, sec.ErrInvalidToken
}

// stubBlacklist marks specific tokens revoked and can simulate an outage.
type stubBlacklist struct {
	revoked map[string]bool
	err     error
}

func (b *stubBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	if b.err != nil {
		return false, b.err
	}
	return b.revoked[token], nil
}

// echoClaims terminates the chain and reports whether claims were attached.
func echoClaims(t *testing.T, gotClaims **sec.AccessClaims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*gotClaims = ctxutil.GetAuthUser(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

func userClaims(role string) *sec.AccessClaims {
	return &sec.AccessClaims{UserID: "user-1", Email: "ana@crescendo.fm", Role: role, Kind: sec.TokenKindAccess}
}

/*
TestAuthenticate walks the middleware through each of its terminal states:
anonymous pass-through, malformed header, revoked token, expired token,
invalid token, and a valid token reaching the handler with claims attached.
*/
func TestAuthenticate(t *testing.T) {
	verifier := &stubVerifier{
		claims: map[string]*sec.AccessClaims{"good": userClaims("user")},
		errs: map[string]error{
			"stale": sec.ErrExpiredToken,
			"junk":  sec.ErrInvalidToken,
		},
	}

	tests := []struct {
		name       string
		header     string
		blacklist  *stubBlacklist
		wantStatus int
		wantClaims bool
		wantBody   string
	}{
		{
			name:       "anonymous_passes_through",
			header:     "",
			blacklist:  &stubBlacklist{},
			wantStatus: http.StatusOK,
			wantClaims: false,
		},
		{
			name:       "malformed_header",
			header:     "NotBearer",
			blacklist:  &stubBlacklist{},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Invalid authorization format",
		},
		{
			name:       "revoked_token",
			header:     "Bearer good",
			blacklist:  &stubBlacklist{revoked: map[string]bool{"good": true}},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Token has been invalidated",
		},
		{
			name:       "expired_token",
			header:     "Bearer stale",
			blacklist:  &stubBlacklist{},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Token expired",
		},
		{
			name:       "invalid_token",
			header:     "Bearer junk",
			blacklist:  &stubBlacklist{},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Invalid token",
		},
		{
			name:       "valid_token",
			header:     "Bearer good",
			blacklist:  &stubBlacklist{},
			wantStatus: http.StatusOK,
			wantClaims: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotClaims *sec.AccessClaims
			handler := middleware.Authenticate(verifier, tt.blacklist)(echoClaims(t, &gotClaims))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantBody != "" {
				assert.Contains(t, recorder.Body.String(), tt.wantBody)
			}
			if tt.wantClaims {
				require.NotNil(t, gotClaims)
				assert.Equal(t, "user-1", gotClaims.UserID)
			} else if tt.wantStatus == http.StatusOK {
				assert.Nil(t, gotClaims)
			}
		})
	}
}

/*
TestAuthenticate_FailsClosed verifies a blacklist outage rejects the request
instead of letting a possibly revoked token through.
*/
func TestAuthenticate_FailsClosed(t *testing.T) {
	verifier := &stubVerifier{claims: map[string]*sec.AccessClaims{"good": userClaims("user")}}
	blacklist := &stubBlacklist{err: errors.New("connection refused")}

	var gotClaims *sec.AccessClaims
	handler := middleware.Authenticate(verifier, blacklist)(echoClaims(t, &gotClaims))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer good")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Nil(t, gotClaims)
}

/*
TestAuthenticate_RevokedBeforeExpired pins the check order: a token that is
both revoked and expired must surface as invalidated, because the blacklist
lookup runs before signature verification.
*/
func TestAuthenticate_RevokedBeforeExpired(t *testing.T) {
	verifier := &stubVerifier{errs: map[string]error{"stale": sec.ErrExpiredToken}}
	blacklist := &stubBlacklist{revoked: map[string]bool{"stale": true}}

	var gotClaims *sec.AccessClaims
	handler := middleware.Authenticate(verifier, blacklist)(echoClaims(t, &gotClaims))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer stale")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Token has been invalidated")
}

/*
TestAuthenticateOptional verifies the lenient variant never rejects, even on
revoked or garbage tokens, but still attaches claims when the token is good.
*/
func TestAuthenticateOptional(t *testing.T) {
	verifier := &stubVerifier{claims: map[string]*sec.AccessClaims{"good": userClaims("user")}}

	tests := []struct {
		name       string
		header     string
		blacklist  *stubBlacklist
		wantClaims bool
	}{
		{"anonymous", "", &stubBlacklist{}, false},
		{"garbage_token", "Bearer junk", &stubBlacklist{}, false},
		{"revoked_token", "Bearer good", &stubBlacklist{revoked: map[string]bool{"good": true}}, false},
		{"blacklist_outage", "Bearer good", &stubBlacklist{err: errors.New("down")}, false},
		{"valid_token", "Bearer good", &stubBlacklist{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotClaims *sec.AccessClaims
			handler := middleware.AuthenticateOptional(verifier, tt.blacklist)(echoClaims(t, &gotClaims))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, tt.wantClaims, gotClaims != nil)
		})
	}
}

/*
TestRequireAuth verifies the gate used under protected route groups.
*/
func TestRequireAuth(t *testing.T) {
	var gotClaims *sec.AccessClaims
	handler := middleware.RequireAuth(echoClaims(t, &gotClaims))

	t.Run("anonymous_rejected", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("authenticated_passes", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := ctxutil.WithAuthUser(request.Context(), userClaims("user"))
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request.WithContext(ctx))
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

/*
TestRequireRole verifies the role hierarchy gate.
*/
func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		claims     *sec.AccessClaims
		required   sec.UserRole
		wantStatus int
	}{
		{"anonymous", nil, sec.RoleUser, http.StatusUnauthorized},
		{"user_needs_admin", userClaims("user"), sec.RoleAdmin, http.StatusForbidden},
		{"admin_passes_admin", userClaims("admin"), sec.RoleAdmin, http.StatusOK},
		{"admin_passes_user", userClaims("admin"), sec.RoleUser, http.StatusOK},
		{"unknown_role_rejected", userClaims("superstar"), sec.RoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotClaims *sec.AccessClaims
			handler := middleware.RequireRole(tt.required)(echoClaims(t, &gotClaims))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.claims != nil {
				request = request.WithContext(ctxutil.WithAuthUser(request.Context(), tt.claims))
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}
