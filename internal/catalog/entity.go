// Copyright (c) 2026 Crescendo. All rights reserved.

// Package catalog wraps the external music catalog HTTP API.
//
// # Architecture
//
// The client manages its own service-level bearer token (client-credentials
// grant, independent of any end user) and caches every provider response in
// the shared [cache.Store]. Downstream packages only ever see the normalized
// shapes defined in this file, never the provider's wire format.
package catalog

import "time"

// Track is the normalized shape of a catalog track.
//
// # Normalization Rules
//
// These rules are load-bearing for client interop and must not drift:
//   - A missing preview URL becomes an explicit null, never an omitted key.
//   - The first image in the provider's image list is THE image; empty list
//     means null.
//   - The first listed artist is THE artist. Multi-artist tracks are not
//     modeled.
type Track struct {
	ExternalID string  `json:"external_id"`
	Name       string  `json:"name"`
	DurationMS int     `json:"duration_ms"`
	PreviewURL *string `json:"preview_url"`
	Popularity int     `json:"popularity"`

	Artist ArtistRef `json:"artist"`
	Album  *AlbumRef `json:"album"`
}

// ArtistRef is the minimal artist reference embedded in tracks and albums.
type ArtistRef struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
}

// AlbumRef is the minimal album reference embedded in tracks.
type AlbumRef struct {
	ExternalID  string  `json:"external_id"`
	Name        string  `json:"name"`
	ImageURL    *string `json:"image_url"`
	ReleaseDate string  `json:"release_date"`
}

// Album is the normalized shape of a catalog album in search results.
type Album struct {
	ExternalID  string    `json:"external_id"`
	Name        string    `json:"name"`
	ImageURL    *string   `json:"image_url"`
	ReleaseDate string    `json:"release_date"`
	TotalTracks int       `json:"total_tracks"`
	Artist      ArtistRef `json:"artist"`
}

// AlbumDetail extends [Album] with the nested track list and genres returned
// by a direct album lookup. Only the album-level fields are ever persisted;
// tracks and genres ride along for presentation.
type AlbumDetail struct {
	Album

	Tracks []AlbumTrack `json:"tracks"`
	Genres []string     `json:"genres"`
}

// AlbumTrack is the reduced track shape nested inside an album detail.
type AlbumTrack struct {
	ExternalID  string `json:"external_id"`
	Name        string `json:"name"`
	DurationMS  int    `json:"duration_ms"`
	TrackNumber int    `json:"track_number"`
}

// Artist is the normalized shape of a direct artist lookup.
type Artist struct {
	ExternalID string   `json:"external_id"`
	Name       string   `json:"name"`
	ImageURL   *string  `json:"image_url"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

// serviceToken is the client-credentials grant as mirrored into the shared
// cache, so multiple server processes reuse one grant.
type serviceToken struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // absolute, epoch milliseconds
}

// expiresWithin reports whether the token is absent or inside the safety
// margin of its expiry.
func (t serviceToken) expiresWithin(margin time.Duration) bool {
	if t.Token == "" {
		return true
	}
	return time.Now().UnixMilli() >= t.Expiry-margin.Milliseconds()
}

// ── Provider Wire Format ─────────────────────────────────────────────────────

// The provider speaks a conventional music-catalog JSON dialect. These types
// exist only for decoding; normalization strips them immediately.

type wireImage struct {
	URL string `json:"url"`
}

type wireArtist struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Images     []wireImage `json:"images"`
	Genres     []string    `json:"genres"`
	Popularity int         `json:"popularity"`
}

type wireAlbum struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Images      []wireImage  `json:"images"`
	ReleaseDate string       `json:"release_date"`
	TotalTracks int          `json:"total_tracks"`
	Artists     []wireArtist `json:"artists"`
	Genres      []string     `json:"genres"`
	Tracks      struct {
		Items []wireTrack `json:"items"`
	} `json:"tracks"`
}

type wireTrack struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	DurationMS  int          `json:"duration_ms"`
	PreviewURL  *string      `json:"preview_url"`
	Popularity  int          `json:"popularity"`
	TrackNumber int          `json:"track_number"`
	Artists     []wireArtist `json:"artists"`
	Album       *wireAlbum   `json:"album"`
}

type wireSearchResponse struct {
	Tracks *struct {
		Items []wireTrack `json:"items"`
	} `json:"tracks"`
	Albums *struct {
		Items []wireAlbum `json:"items"`
	} `json:"albums"`
}

type wireGrantResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// ── Normalization ────────────────────────────────────────────────────────────

// firstImage applies the first-image-or-null rule.
func firstImage(images []wireImage) *string {
	if len(images) == 0 {
		return nil
	}
	url := images[0].URL
	return &url
}

// firstArtist applies the first-artist-is-the-artist rule.
func firstArtist(artists []wireArtist) ArtistRef {
	if len(artists) == 0 {
		return ArtistRef{}
	}
	return ArtistRef{ExternalID: artists[0].ID, Name: artists[0].Name}
}

func normalizeTrack(track wireTrack) Track {
	normalized := Track{
		ExternalID: track.ID,
		Name:       track.Name,
		DurationMS: track.DurationMS,
		PreviewURL: track.PreviewURL,
		Popularity: track.Popularity,
		Artist:     firstArtist(track.Artists),
	}

	if track.Album != nil {
		normalized.Album = &AlbumRef{
			ExternalID:  track.Album.ID,
			Name:        track.Album.Name,
			ImageURL:    firstImage(track.Album.Images),
			ReleaseDate: track.Album.ReleaseDate,
		}
	}

	return normalized
}

func normalizeAlbum(album wireAlbum) Album {
	return Album{
		ExternalID:  album.ID,
		Name:        album.Name,
		ImageURL:    firstImage(album.Images),
		ReleaseDate: album.ReleaseDate,
		TotalTracks: album.TotalTracks,
		Artist:      firstArtist(album.Artists),
	}
}

func normalizeAlbumDetail(album wireAlbum) AlbumDetail {
	detail := AlbumDetail{
		Album:  normalizeAlbum(album),
		Tracks: make([]AlbumTrack, 0, len(album.Tracks.Items)),
		Genres: album.Genres,
	}

	for _, track := range album.Tracks.Items {
		detail.Tracks = append(detail.Tracks, AlbumTrack{
			ExternalID:  track.ID,
			Name:        track.Name,
			DurationMS:  track.DurationMS,
			TrackNumber: track.TrackNumber,
		})
	}

	return detail
}

func normalizeArtist(artist wireArtist) Artist {
	return Artist{
		ExternalID: artist.ID,
		Name:       artist.Name,
		ImageURL:   firstImage(artist.Images),
		Genres:     artist.Genres,
		Popularity: artist.Popularity,
	}
}
