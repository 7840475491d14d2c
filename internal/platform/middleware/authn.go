// Copyright (c) 2026 Crescendo. All rights reserved.

// Authentication middleware: the per-request bearer-token gate.
//
// # Check Order
//
// For a presented token the checks run in a fixed order: revocation list,
// then signature, then expiry. The blacklist lookup comes first because it
// is cheaper than signature verification and because a token that is both
// revoked and expired must read as "invalidated", not "expired", in logs
// and responses.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/crescendofm/crescendo/internal/platform/apperr"
	"github.com/crescendofm/crescendo/internal/platform/ctxutil"
	"github.com/crescendofm/crescendo/internal/platform/respond"
	"github.com/crescendofm/crescendo/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// # Why an interface?
//
// Decoupling the middleware from [sec.TokenService] lets unit tests inject
// a stub verifier without minting real signatures.
type TokenVerifier interface {
	VerifyAccess(tokenString string) (*sec.AccessClaims, error)
}

// Blacklist answers whether an access token has been administratively revoked.
type Blacklist interface {
	// IsRevoked reports whether the raw token string is on the revocation list.
	// An error means the list could not be consulted at all.
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. No Authorization header: the request proceeds as anonymous. Protected
//     routes reject anonymous requests via [RequireAuth].
//  2. Malformed header: 401.
//  3. Token on the revocation list: 401 "invalidated". If the list cannot be
//     consulted, the request fails closed with 500 — accepting a possibly
//     revoked token is worse than a transient outage.
//  4. Bad signature: 401 "invalid"; valid signature past expiry: 401
//     "expired" (distinct message so clients know to attempt a refresh).
//  5. Valid: claims are attached to the request context.
func Authenticate(verifier TokenVerifier, blacklist Blacklist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			tokenString, err := bearerToken(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if tokenString == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Revocation Check (before signature, see package doc) ───────
			revoked, err := blacklist.IsRevoked(request.Context(), tokenString)
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}
			if revoked {
				respond.Error(writer, request, apperr.Unauthorized("Token has been invalidated"))
				return
			}

			// ── 3. Signature & Expiry ─────────────────────────────────────────
			claims, err := verifier.VerifyAccess(tokenString)
			if err != nil {
				if errors.Is(err, sec.ErrExpiredToken) {
					respond.Error(writer, request, apperr.Unauthorized("Token expired"))
					return
				}
				respond.Error(writer, request, apperr.Unauthorized("Invalid token"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			ctx = ctxutil.WithAuthToken(ctx, tokenString)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// AuthenticateOptional runs the same checks as [Authenticate] but never
// rejects: on any failure the request simply proceeds without claims.
//
// Used on public surfaces (catalog search) where a logged-in user gets
// personalization but an anonymous one still gets results.
func AuthenticateOptional(verifier TokenVerifier, blacklist Blacklist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			tokenString, err := bearerToken(request)
			if err != nil || tokenString == "" {
				next.ServeHTTP(writer, request)
				return
			}

			if revoked, err := blacklist.IsRevoked(request.Context(), tokenString); err != nil || revoked {
				next.ServeHTTP(writer, request)
				return
			}

			claims, err := verifier.VerifyAccess(tokenString)
			if err != nil {
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			ctx = ctxutil.WithAuthToken(ctx, tokenString)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetAuthUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("No token provided"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the authenticated user doesn't hold at least
// the required role. It implies [RequireAuth].
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("No token provided"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !sec.UserRole(claims.Role).AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// bearerToken extracts the raw token from an "Authorization: Bearer <token>"
// header. It returns ("", nil) when the header is absent and an error when
// the header is present but malformed.
func bearerToken(request *http.Request) (string, error) {
	authHeader := request.Header.Get("Authorization")
	if authHeader == "" {
		return "", nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", apperr.Unauthorized("Invalid authorization format")
	}

	return parts[1], nil
}
