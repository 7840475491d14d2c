// Copyright (c) 2026 Crescendo. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/crescendofm/crescendo/internal/platform/apperr"
	"github.com/crescendofm/crescendo/internal/platform/cache"
	"github.com/crescendofm/crescendo/internal/platform/constants"
)

// Client talks to the external music catalog.
//
// # Token Lifecycle
//
// The provider requires a service-level bearer token obtained through a
// client-credentials grant. The current grant is held in process memory and
// mirrored into the shared cache, so any number of server processes reuse a
// single grant. Both copies are treated as stale inside a 60-second margin
// of their expiry.
//
// # Response Caching
//
// Search responses are cached for one hour (search traffic is heavy and the
// result set drifts slowly); direct entity lookups for 24 hours (catalog
// metadata is effectively immutable).
type Client struct {
	httpClient   *http.Client
	store        cache.Store
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string

	mu    sync.Mutex
	token serviceToken
}

// NewClient constructs a catalog [Client].
//
// # Parameters
//   - baseURL: Root of the provider's REST API.
//   - tokenURL: The client-credentials grant endpoint.
//   - clientID, clientSecret: Service credentials for the grant.
//   - store: Shared cache for responses and the mirrored grant.
func NewClient(baseURL, tokenURL, clientID, clientSecret string, store cache.Store) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: constants.CatalogRequestTimeout},
		store:        store,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// SearchTracks runs a track search against the catalog.
//
// # Parameters
//   - ctx: Context for HTTP and cache operations.
//   - query: Free-text search string, passed through to the provider.
//   - limit, offset: Provider-side pagination window.
func (client *Client) SearchTracks(ctx context.Context, query string, limit, offset int) ([]Track, error) {
	if _, err := client.ensureServiceToken(ctx); err != nil {
		return nil, err
	}

	cacheKey := searchKey("songs", query, limit, offset)

	var tracks []Track
	if hit := client.readCached(ctx, cacheKey, &tracks); hit {
		return tracks, nil
	}

	var response wireSearchResponse
	if err := client.getJSON(ctx, client.searchURL("track", query, limit, offset), &response); err != nil {
		return nil, err
	}

	tracks = make([]Track, 0)
	if response.Tracks != nil {
		for _, item := range response.Tracks.Items {
			tracks = append(tracks, normalizeTrack(item))
		}
	}

	client.writeCached(ctx, cacheKey, tracks, constants.CatalogSearchTTL)
	return tracks, nil
}

// SearchAlbums runs an album search against the catalog.
func (client *Client) SearchAlbums(ctx context.Context, query string, limit, offset int) ([]Album, error) {
	if _, err := client.ensureServiceToken(ctx); err != nil {
		return nil, err
	}

	cacheKey := searchKey("albums", query, limit, offset)

	var albums []Album
	if hit := client.readCached(ctx, cacheKey, &albums); hit {
		return albums, nil
	}

	var response wireSearchResponse
	if err := client.getJSON(ctx, client.searchURL("album", query, limit, offset), &response); err != nil {
		return nil, err
	}

	albums = make([]Album, 0)
	if response.Albums != nil {
		for _, item := range response.Albums.Items {
			albums = append(albums, normalizeAlbum(item))
		}
	}

	client.writeCached(ctx, cacheKey, albums, constants.CatalogSearchTTL)
	return albums, nil
}

// GetTrack fetches a single track by its catalog ID.
func (client *Client) GetTrack(ctx context.Context, externalID string) (*Track, error) {
	if _, err := client.ensureServiceToken(ctx); err != nil {
		return nil, err
	}

	cacheKey := constants.RedisPrefixCatalogEntity + "track:" + externalID

	track := &Track{}
	if hit := client.readCached(ctx, cacheKey, track); hit {
		return track, nil
	}

	var wire wireTrack
	if err := client.getJSON(ctx, client.baseURL+"/tracks/"+url.PathEscape(externalID), &wire); err != nil {
		return nil, err
	}

	normalized := normalizeTrack(wire)
	client.writeCached(ctx, cacheKey, normalized, constants.CatalogLookupTTL)
	return &normalized, nil
}

// GetAlbum fetches a single album (with nested tracks and genres) by its
// catalog ID.
func (client *Client) GetAlbum(ctx context.Context, externalID string) (*AlbumDetail, error) {
	if _, err := client.ensureServiceToken(ctx); err != nil {
		return nil, err
	}

	cacheKey := constants.RedisPrefixCatalogEntity + "album:" + externalID

	album := &AlbumDetail{}
	if hit := client.readCached(ctx, cacheKey, album); hit {
		return album, nil
	}

	var wire wireAlbum
	if err := client.getJSON(ctx, client.baseURL+"/albums/"+url.PathEscape(externalID), &wire); err != nil {
		return nil, err
	}

	normalized := normalizeAlbumDetail(wire)
	client.writeCached(ctx, cacheKey, normalized, constants.CatalogLookupTTL)
	return &normalized, nil
}

// GetArtist fetches a single artist by its catalog ID.
func (client *Client) GetArtist(ctx context.Context, externalID string) (*Artist, error) {
	if _, err := client.ensureServiceToken(ctx); err != nil {
		return nil, err
	}

	cacheKey := constants.RedisPrefixCatalogEntity + "artist:" + externalID

	artist := &Artist{}
	if hit := client.readCached(ctx, cacheKey, artist); hit {
		return artist, nil
	}

	var wire wireArtist
	if err := client.getJSON(ctx, client.baseURL+"/artists/"+url.PathEscape(externalID), &wire); err != nil {
		return nil, err
	}

	normalized := normalizeArtist(wire)
	client.writeCached(ctx, cacheKey, normalized, constants.CatalogLookupTTL)
	return &normalized, nil
}

// ── Service Token ────────────────────────────────────────────────────────────

// ensureServiceToken returns a bearer token that is valid for at least the
// safety margin.
//
// # Flow
//  1. The in-memory copy, if still outside the margin, wins without I/O.
//  2. Otherwise adopt the cache-mirrored grant from a sibling process.
//  3. Otherwise run a fresh client-credentials grant and mirror it.
//
// Two processes racing step 3 both succeed; the provider tolerates
// concurrent grants and the last mirror write wins harmlessly.
func (client *Client) ensureServiceToken(ctx context.Context) (string, error) {
	client.mu.Lock()
	defer client.mu.Unlock()

	// ── 1. Memory ─────────────────────────────────────────────────────────
	if !client.token.expiresWithin(constants.CatalogTokenExpiryMargin) {
		return client.token.Token, nil
	}

	// ── 2. Shared Cache ───────────────────────────────────────────────────
	if cached, err := client.store.Get(ctx, constants.RedisKeyCatalogToken); err == nil {
		var mirrored serviceToken
		if json.Unmarshal([]byte(cached), &mirrored) == nil &&
			!mirrored.expiresWithin(constants.CatalogTokenExpiryMargin) {
			client.token = mirrored
			return mirrored.Token, nil
		}
	}

	// ── 3. Fresh Grant ────────────────────────────────────────────────────
	grant, err := client.clientCredentialsGrant(ctx)
	if err != nil {
		return "", err
	}

	client.token = serviceToken{
		Token:  grant.AccessToken,
		Expiry: time.Now().UnixMilli() + int64(grant.ExpiresIn)*1000,
	}

	// Mirror is best effort: a cache outage costs extra grants, not requests.
	if payload, err := json.Marshal(client.token); err == nil {
		mirrorTTL := time.Duration(grant.ExpiresIn)*time.Second - constants.CatalogTokenExpiryMargin
		if mirrorTTL > 0 {
			_ = client.store.Set(ctx, constants.RedisKeyCatalogToken, string(payload), mirrorTTL)
		}
	}

	return client.token.Token, nil
}

// clientCredentialsGrant performs the OAuth client-credentials exchange.
func (client *Client) clientCredentialsGrant(ctx context.Context) (*wireGrantResponse, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperr.CatalogUnavailable(err)
	}
	request.SetBasicAuth(client.clientID, client.clientSecret)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, apperr.CatalogUnavailable(err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return nil, apperr.CatalogUnavailable(
			fmt.Errorf("catalog: grant returned %d: %s", response.StatusCode, body))
	}

	grant := &wireGrantResponse{}
	if err := json.NewDecoder(response.Body).Decode(grant); err != nil {
		return nil, apperr.CatalogUnavailable(fmt.Errorf("catalog: malformed grant response: %w", err))
	}
	if grant.AccessToken == "" {
		return nil, apperr.CatalogUnavailable(errors.New("catalog: grant response missing access_token"))
	}

	return grant, nil
}

// ── HTTP & Cache Plumbing ────────────────────────────────────────────────────

// getJSON performs an authenticated GET and decodes the body into target.
// Every failure mode, including the 10-second client timeout, surfaces as
// CATALOG_UNAVAILABLE.
func (client *Client) getJSON(ctx context.Context, requestURL string, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return apperr.CatalogUnavailable(err)
	}

	client.mu.Lock()
	token := client.token.Token
	client.mu.Unlock()
	request.Header.Set("Authorization", "Bearer "+token)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return apperr.CatalogUnavailable(err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return apperr.CatalogUnavailable(
			fmt.Errorf("catalog: provider returned %d: %s", response.StatusCode, body))
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return apperr.CatalogUnavailable(fmt.Errorf("catalog: malformed provider response: %w", err))
	}

	return nil
}

// readCached returns true and fills target on a cache hit. Misses and cache
// failures both read as "not cached": the provider is the fallback either way.
func (client *Client) readCached(ctx context.Context, key string, target any) bool {
	cached, err := client.store.Get(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(cached), target) == nil
}

// writeCached stores the normalized value. Best effort.
func (client *Client) writeCached(ctx context.Context, key string, value any, ttl time.Duration) {
	if payload, err := json.Marshal(value); err == nil {
		_ = client.store.Set(ctx, key, string(payload), ttl)
	}
}

// searchURL builds the provider search endpoint URL.
func (client *Client) searchURL(kind, query string, limit, offset int) string {
	values := url.Values{
		"q":      {query},
		"type":   {kind},
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	return client.baseURL + "/search?" + values.Encode()
}

// searchKey builds the cache key for a search response.
func searchKey(kind, query string, limit, offset int) string {
	return constants.RedisPrefixCatalogSearch + kind + ":" + query + ":" +
		strconv.Itoa(limit) + ":" + strconv.Itoa(offset)
}
