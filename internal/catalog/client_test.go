// Copyright (c) 2026 Crescendo. All rights reserved.

package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendofm/crescendo/internal/catalog"
	"github.com/crescendofm/crescendo/internal/platform/apperr"
	"github.com/crescendofm/crescendo/internal/platform/cache"
)

// stubProvider is a fake catalog provider with hit counters.
type stubProvider struct {
	server     *httptest.Server
	grantCount atomic.Int64
	apiCount   atomic.Int64
	failAPI    atomic.Bool
}

func newStubProvider(t *testing.T) *stubProvider {
	t.Helper()
	provider := &stubProvider{}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(writer http.ResponseWriter, request *http.Request) {
		provider.grantCount.Add(1)

		username, password, ok := request.BasicAuth()
		if !ok || username != "client-id" || password != "client-secret" {
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		require.NoError(t, request.ParseForm())
		require.Equal(t, "client_credentials", request.PostForm.Get("grant_type"))

		json.NewEncoder(writer).Encode(map[string]any{
			"access_token": "service-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		provider.apiCount.Add(1)

		if provider.failAPI.Load() {
			writer.WriteHeader(http.StatusBadGateway)
			return
		}
		if request.Header.Get("Authorization") != "Bearer service-token" {
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch request.URL.Path {
		case "/search":
			switch request.URL.Query().Get("type") {
			case "track":
				writer.Write([]byte(`{"tracks":{"items":[
					{"id":"trk-1","name":"Nightswim","duration_ms":201000,"popularity":61,
					 "artists":[{"id":"art-1","name":"Lumen"},{"id":"art-2","name":"Second Billing"}],
					 "album":{"id":"alb-1","name":"Undertow","images":[],"release_date":"2024-03-01"}}
				]}}`))
			case "album":
				writer.Write([]byte(`{"albums":{"items":[
					{"id":"alb-1","name":"Undertow","total_tracks":11,"release_date":"2024-03-01",
					 "images":[{"url":"https://img.example/a.jpg"},{"url":"https://img.example/b.jpg"}],
					 "artists":[{"id":"art-1","name":"Lumen"}]}
				]}}`))
			}
		case "/tracks/trk-1":
			writer.Write([]byte(`{"id":"trk-1","name":"Nightswim","duration_ms":201000,
				"preview_url":"https://cdn.example/p.mp3","popularity":61,
				"artists":[{"id":"art-1","name":"Lumen"}],
				"album":{"id":"alb-1","name":"Undertow","images":[{"url":"https://img.example/a.jpg"}],"release_date":"2024-03-01"}}`))
		case "/tracks/trk-2":
			// No preview URL and no images anywhere: the null-shape edge case.
			writer.Write([]byte(`{"id":"trk-2","name":"Silent Demo","duration_ms":95000,"popularity":3,
				"artists":[{"id":"art-1","name":"Lumen"}],
				"album":{"id":"alb-1","name":"Undertow","images":[],"release_date":"2024-03-01"}}`))
		case "/albums/alb-1":
			writer.Write([]byte(`{"id":"alb-1","name":"Undertow","total_tracks":2,"release_date":"2024-03-01",
				"images":[{"url":"https://img.example/a.jpg"}],
				"artists":[{"id":"art-1","name":"Lumen"}],
				"genres":["shoegaze","dream pop"],
				"tracks":{"items":[
					{"id":"trk-1","name":"Nightswim","duration_ms":201000,"track_number":1},
					{"id":"trk-2","name":"Silent Demo","duration_ms":95000,"track_number":2}
				]}}`))
		case "/artists/art-1":
			writer.Write([]byte(`{"id":"art-1","name":"Lumen","popularity":55,
				"images":[{"url":"https://img.example/artist.jpg"}],"genres":["shoegaze"]}`))
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	})

	provider.server = httptest.NewServer(mux)
	t.Cleanup(provider.server.Close)
	return provider
}

func newTestClient(provider *stubProvider, store cache.Store) *catalog.Client {
	return catalog.NewClient(
		provider.server.URL,
		provider.server.URL+"/token",
		"client-id",
		"client-secret",
		store,
	)
}

/*
TestClient_ServiceTokenReuse verifies a single grant serves multiple API
calls, and that a sibling process adopts the mirrored grant from the shared
cache instead of re-granting.
*/
func TestClient_ServiceTokenReuse(t *testing.T) {
	provider := newStubProvider(t)
	store := cache.NewMemoryStore()
	client := newTestClient(provider, store)
	ctx := context.Background()

	_, err := client.GetTrack(ctx, "trk-1")
	require.NoError(t, err)
	_, err = client.GetArtist(ctx, "art-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), provider.grantCount.Load(), "two operations must share one grant")

	// A second client sharing the cache inherits the mirrored grant.
	sibling := newTestClient(provider, store)
	_, err = sibling.GetAlbum(ctx, "alb-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), provider.grantCount.Load(), "sibling must adopt the mirrored grant")
}

/*
TestClient_SearchCaching verifies a repeated search is served from cache with
identical results, and that distinct pagination windows get distinct entries.
*/
func TestClient_SearchCaching(t *testing.T) {
	provider := newStubProvider(t)
	client := newTestClient(provider, cache.NewMemoryStore())
	ctx := context.Background()

	first, err := client.SearchTracks(ctx, "nightswim", 20, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)

	callsAfterMiss := provider.apiCount.Load()

	second, err := client.SearchTracks(ctx, "nightswim", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterMiss, provider.apiCount.Load(), "second search must not reach the provider")

	// A different offset is a different cache entry.
	_, err = client.SearchTracks(ctx, "nightswim", 20, 20)
	require.NoError(t, err)
	assert.Greater(t, provider.apiCount.Load(), callsAfterMiss)
}

/*
TestClient_Normalization pins the interop-critical shape rules: explicit
null preview URL, first-image-or-null, first-artist-only.
*/
func TestClient_Normalization(t *testing.T) {
	provider := newStubProvider(t)
	client := newTestClient(provider, cache.NewMemoryStore())
	ctx := context.Background()

	t.Run("track_with_everything", func(t *testing.T) {
		track, err := client.GetTrack(ctx, "trk-1")
		require.NoError(t, err)

		assert.Equal(t, "trk-1", track.ExternalID)
		require.NotNil(t, track.PreviewURL)
		assert.Equal(t, "https://cdn.example/p.mp3", *track.PreviewURL)
		// Only the first artist survives normalization.
		assert.Equal(t, "art-1", track.Artist.ExternalID)
		require.NotNil(t, track.Album)
		require.NotNil(t, track.Album.ImageURL)
		assert.Equal(t, "https://img.example/a.jpg", *track.Album.ImageURL)
	})

	t.Run("track_with_nothing_optional", func(t *testing.T) {
		track, err := client.GetTrack(ctx, "trk-2")
		require.NoError(t, err)

		assert.Nil(t, track.PreviewURL)
		require.NotNil(t, track.Album)
		assert.Nil(t, track.Album.ImageURL)

		// The null must be an explicit key on the wire, never omitted.
		payload, err := json.Marshal(track)
		require.NoError(t, err)
		assert.Contains(t, string(payload), `"preview_url":null`)
	})

	t.Run("search_first_artist_only", func(t *testing.T) {
		tracks, err := client.SearchTracks(ctx, "nightswim", 20, 0)
		require.NoError(t, err)
		require.Len(t, tracks, 1)
		assert.Equal(t, "Lumen", tracks[0].Artist.Name)
	})

	t.Run("album_detail_carries_tracks_and_genres", func(t *testing.T) {
		album, err := client.GetAlbum(ctx, "alb-1")
		require.NoError(t, err)

		assert.Equal(t, []string{"shoegaze", "dream pop"}, album.Genres)
		require.Len(t, album.Tracks, 2)
		assert.Equal(t, 1, album.Tracks[0].TrackNumber)
		require.NotNil(t, album.ImageURL)
		assert.Equal(t, "https://img.example/a.jpg", *album.ImageURL)
	})
}

/*
TestClient_ProviderFailure verifies every provider failure mode surfaces as
the catalog-unavailable error, and that cached entries keep serving through
an outage.
*/
func TestClient_ProviderFailure(t *testing.T) {
	provider := newStubProvider(t)
	client := newTestClient(provider, cache.NewMemoryStore())
	ctx := context.Background()

	// Warm one entry, then break the provider.
	_, err := client.GetTrack(ctx, "trk-1")
	require.NoError(t, err)

	provider.failAPI.Store(true)

	_, err = client.GetTrack(ctx, "trk-2")
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CATALOG_UNAVAILABLE", ae.Code)
	assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)

	// The warmed entry still serves from cache during the outage.
	track, err := client.GetTrack(ctx, "trk-1")
	require.NoError(t, err)
	assert.Equal(t, "Nightswim", track.Name)
}
