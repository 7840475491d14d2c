// Copyright (c) 2026 Crescendo. All rights reserved.

// Package music owns the locally materialized catalog entities (artists,
// albums, songs) and every user interaction with them (ratings, favorites,
// comments).
//
// # Materialization
//
// Local rows are created lazily: the first request referencing an external
// catalog ID fetches the entity from the catalog and inserts it, parents
// first (artist before album, artist and album before song). The external
// ID's unique constraint is the sole concurrency-correctness mechanism —
// see [Service.EnsureSong].
package music

import (
	"time"
)

// Artist is a locally materialized catalog artist.
type Artist struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	ImageURL   *string   `json:"image_url"`
	Genres     []string  `json:"genres"`
	CreatedAt  time.Time `json:"created_at"`
}

// Album is a locally materialized catalog album.
//
/// ReleaseDate stays a string: the catalog reports varying precision
// ("2024", "2024-03", "2024-03-01") and we never do date arithmetic on it.
type Album struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"external_id"`
	Name        string    `json:"name"`
	ArtistID    string    `json:"artist_id"`
	ReleaseDate string    `json:"release_date"`
	ImageURL    *string   `json:"image_url"`
	TotalTracks int       `json:"total_tracks"`
	CreatedAt   time.Time `json:"created_at"`
}

// Song is a locally materialized catalog track.
type Song struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	ArtistID   string    `json:"artist_id"`
	AlbumID    *string   `json:"album_id"`
	DurationMS int       `json:"duration_ms"`
	PreviewURL *string   `json:"preview_url"`
	Popularity int       `json:"popularity"`
	CreatedAt  time.Time `json:"created_at"`
}

// SongView is a song joined with its artist and album display fields.
type SongView struct {
	Song

	ArtistName  string  `json:"artist_name"`
	ArtistImage *string `json:"artist_image"`
	AlbumName   *string `json:"album_name"`
	AlbumImage  *string `json:"album_image"`
}

// RatingStats aggregates community ratings for a song or album.
//
// AvgRating is nil, not zero, when nobody has rated yet.
type RatingStats struct {
	AvgRating    *float64 `json:"avg_rating"`
	TotalRatings int      `json:"total_ratings"`
}

// Comment is a user's single comment on a song.
type Comment struct {
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SongInteraction is the requesting user's relationship to one song.
type SongInteraction struct {
	Rating    *float64 `json:"rating"`
	Favorited bool     `json:"favorited"`
	Comment   *Comment `json:"comment"`
}

// AlbumInteraction is the requesting user's relationship to one album.
// Albums have no comments.
type AlbumInteraction struct {
	Rating    *float64 `json:"rating"`
	Favorited bool     `json:"favorited"`
}
