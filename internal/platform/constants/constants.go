// Copyright (c) 2026 Crescendo. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, token lifetimes, cache TTLs, and cross-cutting keys
that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: Token lifetimes and Redis key taxonomy.
  - Catalog: External music catalog cache TTLs and expiry margins.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "crescendo-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "crescendo.fm"

	// AccessTokenTTL bounds the blast radius of a leaked access token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the lifetime of a refresh token.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// ResetTokenTTL is the lifetime of a password reset token.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random reset token (hex-encoded on the wire).
	ResetTokenLength = 32

	// BlacklistMinTTL floors the revocation-entry TTL to absorb clock skew
	// between the API servers and Redis.
	BlacklistMinTTL = 1 * time.Minute
)

// # External Catalog

const (
	// CatalogTokenExpiryMargin is subtracted from the provider-reported token
	// lifetime everywhere it is checked or cached, so a token is refreshed
	// before it can expire mid-request.
	CatalogTokenExpiryMargin = 60 * time.Second

	// CatalogSearchTTL is how long search responses stay cached. Searches go
	// stale faster than a specific entity's metadata.
	CatalogSearchTTL = 1 * time.Hour

	// CatalogLookupTTL is how long direct entity lookups stay cached.
	CatalogLookupTTL = 24 * time.Hour

	// CatalogRequestTimeout bounds every outbound catalog HTTP call.
	CatalogRequestTimeout = 10 * time.Second
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixBlacklist marks revoked access tokens. The raw token string
	// is the key suffix; the entry's TTL matches the token's remaining lifetime.
	RedisPrefixBlacklist = "auth:blacklist:"

	// RedisKeyCatalogToken holds the shared client-credentials grant so that
	// multiple server processes reuse one provider token.
	RedisKeyCatalogToken = "catalog:access_token"

	// RedisPrefixCatalogSearch namespaces cached catalog search responses.
	RedisPrefixCatalogSearch = "catalog:search:"

	// RedisPrefixCatalogEntity namespaces cached catalog entity lookups.
	RedisPrefixCatalogEntity = "catalog:"
)
