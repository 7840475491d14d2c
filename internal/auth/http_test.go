// Copyright (c) 2026 Crescendo. All rights reserved.

package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendofm/crescendo/internal/auth"
	"github.com/crescendofm/crescendo/internal/platform/middleware"
)

// newAuthRouter mounts the auth routes behind the same authentication
// middleware the server uses, so handler tests see real header parsing.
func newAuthRouter(harness *serviceHarness) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Authenticate(harness.tokens, harness.blacklist))
	router.Mount("/", auth.NewHandler(harness.service).Routes())
	return router
}

/*
TestHandler_Logout_SchemeCaseInsensitive verifies that logout revokes the
exact signed token regardless of the Authorization scheme's casing. The
middleware accepts "bearer" as well as "Bearer", so revocation must key the
deny list identically for both, and the token must stop working afterwards.
*/
func TestHandler_Logout_SchemeCaseInsensitive(t *testing.T) {
	schemes := []struct {
		name   string
		scheme string
	}{
		{name: "canonical_scheme", scheme: "Bearer"},
		{name: "lowercase_scheme", scheme: "bearer"},
	}

	for _, tt := range schemes {
		t.Run(tt.name, func(t *testing.T) {
			harness := newServiceHarness(t)
			session := harness.register(t, "ana@crescendo.fm", "ana")
			router := newAuthRouter(harness)
			header := tt.scheme + " " + session.Tokens.AccessToken

			request := httptest.NewRequest(http.MethodPost, "/logout", nil)
			request.Header.Set("Authorization", header)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)
			require.Equal(t, http.StatusOK, recorder.Code)

			// The deny list must hold the raw token string, free of any
			// scheme prefix left over from header parsing.
			revoked, err := harness.blacklist.IsRevoked(request.Context(), session.Tokens.AccessToken)
			require.NoError(t, err)
			assert.True(t, revoked)

			request = httptest.NewRequest(http.MethodGet, "/me", nil)
			request.Header.Set("Authorization", header)
			recorder = httptest.NewRecorder()
			router.ServeHTTP(recorder, request)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}
}
