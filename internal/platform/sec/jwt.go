// Copyright (c) 2026 Crescendo. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kind markers embedded in the 'knd' claim. Each verifier enforces its
// own kind, so a long-lived refresh token can never pass the access gate.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// minSecretLength rejects secrets too short to resist brute force of HS256.
const minSecretLength = 32

var (
	// ErrExpiredToken marks a token whose signature is valid but whose
	// lifetime has lapsed. Clients may attempt a refresh on this error.
	ErrExpiredToken = errors.New("sec: token expired")

	// ErrInvalidToken covers every other verification failure: bad signature,
	// malformed payload, wrong kind marker, wrong algorithm.
	ErrInvalidToken = errors.New("sec: invalid token")
)

// AccessClaims represents the payload embedded inside a JWT access token.
//
// # Why custom claims?
//
// By embedding the UserID, Email, and Role directly inside the JWT, the
// authentication middleware can reconstruct the active user context WITHOUT
// querying the database on every single API request.
type AccessClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID string `json:"uid"`
	Email  string `json:"eml"`
	Role   string `json:"rol"`
	Kind   string `json:"knd"`
}

// RefreshClaims is the deliberately minimal payload of a refresh token.
//
// It carries no email or role: those are re-read from the database at refresh
// time, because a week-old snapshot of a user's role must never be trusted.
type RefreshClaims struct {
	jwt.RegisteredClaims

	UserID string `json:"uid"`
	Kind   string `json:"knd"`
}

// TokenPair bundles the two tokens issued on login, registration, and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService issues and verifies JWT token pairs using HS256 with a single
// server secret.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a new TokenService.
//
// It fails fast on a secret shorter than 32 bytes rather than signing weakly.
func NewTokenService(secret, issuer string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("sec: JWT secret must be at least %d bytes", minSecretLength)
	}

	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssuePair signs a fresh access/refresh token pair for the given user.
//
// # Purity
//
// IssuePair is a pure function of its inputs, the server secret, and the
// clock. It performs no I/O and has no side effects.
func (service *TokenService) IssuePair(userID, email, role string) (TokenPair, error) {
	currentTime := time.Now()

	accessClaims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.accessTTL)),
		},
		UserID: userID,
		Email:  email,
		Role:   role,
		Kind:   TokenKindAccess,
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(service.secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sec: failed to sign access token: %w", err)
	}

	refreshClaims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.refreshTTL)),
		},
		UserID: userID,
		Kind:   TokenKindRefresh,
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(service.secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sec: failed to sign refresh token: %w", err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess checks signature, expiry, and the kind marker of an access token.
//
// # Returns
//   - [*AccessClaims] on success.
//   - [ErrExpiredToken] if only the lifetime has lapsed.
//   - [ErrInvalidToken] for any other failure, including a refresh token
//     presented in place of an access token.
func (service *TokenService) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := service.parse(tokenString, claims); err != nil {
		return nil, err
	}

	if claims.Kind != TokenKindAccess {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// VerifyRefresh checks signature, expiry, and the kind marker of a refresh token.
//
// Callers must independently re-fetch the user's current role and email from
// the store before issuing new tokens.
func (service *TokenService) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := service.parse(tokenString, claims); err != nil {
		return nil, err
	}

	if claims.Kind != TokenKindRefresh {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// parse runs the shared signature and registered-claims validation.
func (service *TokenService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		// Expired tokens are surfaced distinctly so clients know a refresh
		// attempt is worthwhile. Everything else collapses to invalid.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}

	if !token.Valid {
		return ErrInvalidToken
	}

	return nil
}

// RemainingLifetime returns how long the given claims stay valid from now.
//
// It is used to bound the revocation-list TTL at logout: a blacklist entry
// never needs to outlive the token it guards. Returns zero for claims
// without an expiry or already past it.
func RemainingLifetime(claims *AccessClaims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}
