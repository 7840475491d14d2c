// Copyright (c) 2026 Crescendo. All rights reserved.

package music

import (
	"context"
)

// LibraryRepository is the data access contract for materialized catalog rows.
//
// # Concurrency Contract
//
// Every CreateOrGet method must be safe to call concurrently for the same
// external ID from multiple requests: the insert tolerates a unique-index
// conflict and falls back to re-reading the winner's row. Callers always
// receive exactly one canonical row per external ID.
type LibraryRepository interface {
	// FindArtistByExternalID returns the artist row for the catalog ID.
	//
	// Returns [apperr.NotFound] if the artist has not been materialized.
	FindArtistByExternalID(ctx context.Context, externalID string) (*Artist, error)

	// CreateOrGetArtist inserts the artist or, on an external-ID conflict,
	// returns the already-persisted row.
	CreateOrGetArtist(ctx context.Context, artist *Artist) (*Artist, error)

	// FindAlbumByExternalID returns the album row for the catalog ID.
	FindAlbumByExternalID(ctx context.Context, externalID string) (*Album, error)

	// CreateOrGetAlbum inserts the album or returns the existing row.
	CreateOrGetAlbum(ctx context.Context, album *Album) (*Album, error)

	// FindSongByExternalID returns the song row for the catalog ID.
	FindSongByExternalID(ctx context.Context, externalID string) (*Song, error)

	// CreateOrGetSong inserts the song or returns the existing row.
	CreateOrGetSong(ctx context.Context, song *Song) (*Song, error)

	// FindSongView returns the song joined with artist and album display
	// fields, by local song ID.
	FindSongView(ctx context.Context, songID string) (*SongView, error)
}

// InteractionRepository is the data access contract for ratings, favorites,
// and comments.
//
// All writes key on (user, entity) pairs with unique constraints, so
// "upsert" operations are single round-trip ON CONFLICT statements.
type InteractionRepository interface {
	// UpsertSongRating creates or replaces the user's rating for a song.
	UpsertSongRating(ctx context.Context, userID, songID string, rating float64) error

	// DeleteSongRating removes the user's rating. Removing an absent rating
	// is not an error.
	DeleteSongRating(ctx context.Context, userID, songID string) error

	// ToggleSongFavorite flips the favorite flag and returns the new state.
	ToggleSongFavorite(ctx context.Context, userID, songID string) (bool, error)

	// UpsertSongComment creates or replaces the user's single comment.
	UpsertSongComment(ctx context.Context, userID, songID, content string) (*Comment, error)

	// DeleteSongComment removes the user's comment.
	DeleteSongComment(ctx context.Context, userID, songID string) error

	// SongStats aggregates all ratings for a song.
	SongStats(ctx context.Context, songID string) (*RatingStats, error)

	// SongInteraction loads the user's rating, favorite, and comment in one go.
	SongInteraction(ctx context.Context, userID, songID string) (*SongInteraction, error)

	// UpsertAlbumRating creates or replaces the user's rating for an album.
	UpsertAlbumRating(ctx context.Context, userID, albumID string, rating float64) error

	// DeleteAlbumRating removes the user's album rating.
	DeleteAlbumRating(ctx context.Context, userID, albumID string) error

	// ToggleAlbumFavorite flips the favorite flag and returns the new state.
	ToggleAlbumFavorite(ctx context.Context, userID, albumID string) (bool, error)

	// AlbumStats aggregates all ratings for an album.
	AlbumStats(ctx context.Context, albumID string) (*RatingStats, error)

	// AlbumInteraction loads the user's rating and favorite state.
	AlbumInteraction(ctx context.Context, userID, albumID string) (*AlbumInteraction, error)
}
