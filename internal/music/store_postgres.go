// Copyright (c) 2026 Crescendo. All rights reserved.

package music

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crescendofm/crescendo/internal/platform/apperr"
)

// PostgresLibraryRepository implements [LibraryRepository] using pgx.
//
// # Conflict Strategy
//
// Every insert is ON CONFLICT (external_id) DO NOTHING followed by a
// reselect. When two requests race to materialize the same entity, one
// insert silently loses and both requests read the winner's row. A plain
// check-then-insert would instead surface a unique violation to one caller.
type PostgresLibraryRepository struct {
	pool *pgxpool.Pool
}

// NewLibraryRepository creates a new PostgreSQL implementation of [LibraryRepository].
func NewLibraryRepository(pool *pgxpool.Pool) *PostgresLibraryRepository {
	return &PostgresLibraryRepository{pool: pool}
}

// ── Artists ──────────────────────────────────────────────────────────────────

const artistColumns = `id, external_id, name, image_url, genres, created_at`

func scanArtist(row pgx.Row) (*Artist, error) {
	artist := &Artist{}
	err := row.Scan(
		&artist.ID,
		&artist.ExternalID,
		&artist.Name,
		&artist.ImageURL,
		&artist.Genres,
		&artist.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return artist, nil
}

// FindArtistByExternalID retrieves an artist row by its catalog ID.
func (repository *PostgresLibraryRepository) FindArtistByExternalID(ctx context.Context, externalID string) (*Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE external_id = $1`

	artist, err := scanArtist(repository.pool.QueryRow(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Artist")
		}
		return nil, fmt.Errorf("postgres_library_repo_find_artist_failed: %w", err)
	}

	return artist, nil
}

// CreateOrGetArtist inserts the artist, tolerating a concurrent winner.
func (repository *PostgresLibraryRepository) CreateOrGetArtist(ctx context.Context, artist *Artist) (*Artist, error) {
	const insert = `
		INSERT INTO artists (id, external_id, name, image_url, genres, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (external_id) DO NOTHING`

	if artist.CreatedAt.IsZero() {
		artist.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(ctx, insert,
		artist.ID,
		artist.ExternalID,
		artist.Name,
		artist.ImageURL,
		artist.Genres,
		artist.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres_library_repo_insert_artist_failed: %w", err)
	}

	// Reselect regardless of which insert won: the row is canonical now.
	return repository.FindArtistByExternalID(ctx, artist.ExternalID)
}

// ── Albums ───────────────────────────────────────────────────────────────────

const albumColumns = `id, external_id, name, artist_id, release_date, image_url, total_tracks, created_at`

func scanAlbum(row pgx.Row) (*Album, error) {
	album := &Album{}
	err := row.Scan(
		&album.ID,
		&album.ExternalID,
		&album.Name,
		&album.ArtistID,
		&album.ReleaseDate,
		&album.ImageURL,
		&album.TotalTracks,
		&album.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return album, nil
}

// FindAlbumByExternalID retrieves an album row by its catalog ID.
func (repository *PostgresLibraryRepository) FindAlbumByExternalID(ctx context.Context, externalID string) (*Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums WHERE external_id = $1`

	album, err := scanAlbum(repository.pool.QueryRow(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Album")
		}
		return nil, fmt.Errorf("postgres_library_repo_find_album_failed: %w", err)
	}

	return album, nil
}

// CreateOrGetAlbum inserts the album, tolerating a concurrent winner.
func (repository *PostgresLibraryRepository) CreateOrGetAlbum(ctx context.Context, album *Album) (*Album, error) {
	const insert = `
		INSERT INTO albums (id, external_id, name, artist_id, release_date, image_url, total_tracks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) DO NOTHING`

	if album.CreatedAt.IsZero() {
		album.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(ctx, insert,
		album.ID,
		album.ExternalID,
		album.Name,
		album.ArtistID,
		album.ReleaseDate,
		album.ImageURL,
		album.TotalTracks,
		album.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres_library_repo_insert_album_failed: %w", err)
	}

	return repository.FindAlbumByExternalID(ctx, album.ExternalID)
}

// ── Songs ────────────────────────────────────────────────────────────────────

const songColumns = `id, external_id, name, artist_id, album_id, duration_ms, preview_url, popularity, created_at`

func scanSong(row pgx.Row) (*Song, error) {
	song := &Song{}
	err := row.Scan(
		&song.ID,
		&song.ExternalID,
		&song.Name,
		&song.ArtistID,
		&song.AlbumID,
		&song.DurationMS,
		&song.PreviewURL,
		&song.Popularity,
		&song.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return song, nil
}

// FindSongByExternalID retrieves a song row by its catalog ID.
func (repository *PostgresLibraryRepository) FindSongByExternalID(ctx context.Context, externalID string) (*Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE external_id = $1`

	song, err := scanSong(repository.pool.QueryRow(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Song")
		}
		return nil, fmt.Errorf("postgres_library_repo_find_song_failed: %w", err)
	}

	return song, nil
}

// CreateOrGetSong inserts the song, tolerating a concurrent winner.
func (repository *PostgresLibraryRepository) CreateOrGetSong(ctx context.Context, song *Song) (*Song, error) {
	const insert = `
		INSERT INTO songs (id, external_id, name, artist_id, album_id, duration_ms, preview_url, popularity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (external_id) DO NOTHING`

	if song.CreatedAt.IsZero() {
		song.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(ctx, insert,
		song.ID,
		song.ExternalID,
		song.Name,
		song.ArtistID,
		song.AlbumID,
		song.DurationMS,
		song.PreviewURL,
		song.Popularity,
		song.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres_library_repo_insert_song_failed: %w", err)
	}

	return repository.FindSongByExternalID(ctx, song.ExternalID)
}

// FindSongView joins the song with its artist and album display fields.
func (repository *PostgresLibraryRepository) FindSongView(ctx context.Context, songID string) (*SongView, error) {
	const query = `
		SELECT s.id, s.external_id, s.name, s.artist_id, s.album_id,
		       s.duration_ms, s.preview_url, s.popularity, s.created_at,
		       a.name AS artist_name, a.image_url AS artist_image,
		       al.name AS album_name, al.image_url AS album_image
		FROM songs s
		JOIN artists a ON s.artist_id = a.id
		LEFT JOIN albums al ON s.album_id = al.id
		WHERE s.id = $1`

	view := &SongView{}
	err := repository.pool.QueryRow(ctx, query, songID).Scan(
		&view.ID,
		&view.ExternalID,
		&view.Name,
		&view.ArtistID,
		&view.AlbumID,
		&view.DurationMS,
		&view.PreviewURL,
		&view.Popularity,
		&view.CreatedAt,
		&view.ArtistName,
		&view.ArtistImage,
		&view.AlbumName,
		&view.AlbumImage,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Song")
		}
		return nil, fmt.Errorf("postgres_library_repo_find_song_view_failed: %w", err)
	}

	return view, nil
}

// ── Interactions ─────────────────────────────────────────────────────────────

// PostgresInteractionRepository implements [InteractionRepository] using pgx.
type PostgresInteractionRepository struct {
	pool *pgxpool.Pool
}

// NewInteractionRepository creates a new PostgreSQL implementation of [InteractionRepository].
func NewInteractionRepository(pool *pgxpool.Pool) *PostgresInteractionRepository {
	return &PostgresInteractionRepository{pool: pool}
}

// UpsertSongRating creates or replaces the user's rating for a song.
func (repository *PostgresInteractionRepository) UpsertSongRating(ctx context.Context, userID, songID string, rating float64) error {
	const query = `
		INSERT INTO song_ratings (user_id, song_id, rating, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id, song_id)
		DO UPDATE SET rating = $3, updated_at = NOW()`

	if _, err := repository.pool.Exec(ctx, query, userID, songID, rating); err != nil {
		return fmt.Errorf("postgres_interaction_repo_rate_song_failed: %w", err)
	}
	return nil
}

// DeleteSongRating removes the user's rating for a song.
func (repository *PostgresInteractionRepository) DeleteSongRating(ctx context.Context, userID, songID string) error {
	const query = `DELETE FROM song_ratings WHERE user_id = $1 AND song_id = $2`
	if _, err := repository.pool.Exec(ctx, query, userID, songID); err != nil {
		return fmt.Errorf("postgres_interaction_repo_unrate_song_failed: %w", err)
	}
	return nil
}

// ToggleSongFavorite flips the favorite flag in a single statement.
//
// The delete-first-then-insert pair runs inside one transaction so two rapid
// toggles cannot interleave into a double insert.
func (repository *PostgresInteractionRepository) ToggleSongFavorite(ctx context.Context, userID, songID string) (bool, error) {
	return repository.toggleFavorite(ctx, "song_favorites", "song_id", userID, songID)
}

// UpsertSongComment creates or replaces the user's single comment on a song.
func (repository *PostgresInteractionRepository) UpsertSongComment(ctx context.Context, userID, songID, content string) (*Comment, error) {
	const query = `
		INSERT INTO song_comments (user_id, song_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id, song_id)
		DO UPDATE SET content = $3, updated_at = NOW()
		RETURNING content, updated_at`

	comment := &Comment{}
	err := repository.pool.QueryRow(ctx, query, userID, songID, content).Scan(&comment.Content, &comment.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("postgres_interaction_repo_comment_failed: %w", err)
	}
	return comment, nil
}

// DeleteSongComment removes the user's comment on a song.
func (repository *PostgresInteractionRepository) DeleteSongComment(ctx context.Context, userID, songID string) error {
	const query = `DELETE FROM song_comments WHERE user_id = $1 AND song_id = $2`
	if _, err := repository.pool.Exec(ctx, query, userID, songID); err != nil {
		return fmt.Errorf("postgres_interaction_repo_uncomment_failed: %w", err)
	}
	return nil
}

// SongStats aggregates all ratings for a song.
func (repository *PostgresInteractionRepository) SongStats(ctx context.Context, songID string) (*RatingStats, error) {
	const query = `
		SELECT AVG(rating)::NUMERIC(2,1), COUNT(*)
		FROM song_ratings WHERE song_id = $1`

	stats := &RatingStats{}
	if err := repository.pool.QueryRow(ctx, query, songID).Scan(&stats.AvgRating, &stats.TotalRatings); err != nil {
		return nil, fmt.Errorf("postgres_interaction_repo_song_stats_failed: %w", err)
	}
	return stats, nil
}

// SongInteraction loads the user's rating, favorite flag, and comment.
func (repository *PostgresInteractionRepository) SongInteraction(ctx context.Context, userID, songID string) (*SongInteraction, error) {
	interaction := &SongInteraction{}

	const ratingQuery = `SELECT rating FROM song_ratings WHERE user_id = $1 AND song_id = $2`
	err := repository.pool.QueryRow(ctx, ratingQuery, userID, songID).Scan(&interaction.Rating)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres_interaction_repo_song_interaction_failed: %w", err)
	}

	const favoriteQuery = `SELECT EXISTS (SELECT 1 FROM song_favorites WHERE user_id = $1 AND song_id = $2)`
	if err := repository.pool.QueryRow(ctx, favoriteQuery, userID, songID).Scan(&interaction.Favorited); err != nil {
		return nil, fmt.Errorf("postgres_interaction_repo_song_interaction_failed: %w", err)
	}

	const commentQuery = `SELECT content, updated_at FROM song_comments WHERE user_id = $1 AND song_id = $2`
	comment := &Comment{}
	err = repository.pool.QueryRow(ctx, commentQuery, userID, songID).Scan(&comment.Content, &comment.UpdatedAt)
	switch {
	case err == nil:
		interaction.Comment = comment
	case errors.Is(err, pgx.ErrNoRows):
		// No comment yet.
	default:
		return nil, fmt.Errorf("postgres_interaction_repo_song_interaction_failed: %w", err)
	}

	return interaction, nil
}

// UpsertAlbumRating creates or replaces the user's rating for an album.
func (repository *PostgresInteractionRepository) UpsertAlbumRating(ctx context.Context, userID, albumID string, rating float64) error {
	const query = `
		INSERT INTO album_ratings (user_id, album_id, rating, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id, album_id)
		DO UPDATE SET rating = $3, updated_at = NOW()`

	if _, err := repository.pool.Exec(ctx, query, userID, albumID, rating); err != nil {
		return fmt.Errorf("postgres_interaction_repo_rate_album_failed: %w", err)
	}
	return nil
}

// DeleteAlbumRating removes the user's rating for an album.
func (repository *PostgresInteractionRepository) DeleteAlbumRating(ctx context.Context, userID, albumID string) error {
	const query = `DELETE FROM album_ratings WHERE user_id = $1 AND album_id = $2`
	if _, err := repository.pool.Exec(ctx, query, userID, albumID); err != nil {
		return fmt.Errorf("postgres_interaction_repo_unrate_album_failed: %w", err)
	}
	return nil
}

// ToggleAlbumFavorite flips the favorite flag and returns the new state.
func (repository *PostgresInteractionRepository) ToggleAlbumFavorite(ctx context.Context, userID, albumID string) (bool, error) {
	return repository.toggleFavorite(ctx, "album_favorites", "album_id", userID, albumID)
}

// AlbumStats aggregates all ratings for an album.
func (repository *PostgresInteractionRepository) AlbumStats(ctx context.Context, albumID string) (*RatingStats, error) {
	const query = `
		SELECT AVG(rating)::NUMERIC(2,1), COUNT(*)
		FROM album_ratings WHERE album_id = $1`

	stats := &RatingStats{}
	if err := repository.pool.QueryRow(ctx, query, albumID).Scan(&stats.AvgRating, &stats.TotalRatings); err != nil {
		return nil, fmt.Errorf("postgres_interaction_repo_album_stats_failed: %w", err)
	}
	return stats, nil
}

// AlbumInteraction loads the user's rating and favorite flag for an album.
func (repository *PostgresInteractionRepository) AlbumInteraction(ctx context.Context, userID, albumID string) (*AlbumInteraction, error) {
	interaction := &AlbumInteraction{}

	const ratingQuery = `SELECT rating FROM album_ratings WHERE user_id = $1 AND album_id = $2`
	err := repository.pool.QueryRow(ctx, ratingQuery, userID, albumID).Scan(&interaction.Rating)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres_interaction_repo_album_interaction_failed: %w", err)
	}

	const favoriteQuery = `SELECT EXISTS (SELECT 1 FROM album_favorites WHERE user_id = $1 AND album_id = $2)`
	if err := repository.pool.QueryRow(ctx, favoriteQuery, userID, albumID).Scan(&interaction.Favorited); err != nil {
		return nil, fmt.Errorf("postgres_interaction_repo_album_interaction_failed: %w", err)
	}

	return interaction, nil
}

// toggleFavorite implements the shared delete-or-insert toggle inside one
// transaction.
func (repository *PostgresInteractionRepository) toggleFavorite(ctx context.Context, table, entityColumn, userID, entityID string) (bool, error) {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("postgres_interaction_repo_toggle_failed: %w", err)
	}
	defer transaction.Rollback(ctx)

	deleteQuery := `DELETE FROM ` + table + ` WHERE user_id = $1 AND ` + entityColumn + ` = $2`
	tag, err := transaction.Exec(ctx, deleteQuery, userID, entityID)
	if err != nil {
		return false, fmt.Errorf("postgres_interaction_repo_toggle_failed: %w", err)
	}

	favorited := false
	if tag.RowsAffected() == 0 {
		insertQuery := `
			INSERT INTO ` + table + ` (user_id, ` + entityColumn + `, created_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (user_id, ` + entityColumn + `) DO NOTHING`
		if _, err := transaction.Exec(ctx, insertQuery, userID, entityID); err != nil {
			return false, fmt.Errorf("postgres_interaction_repo_toggle_failed: %w", err)
		}
		favorited = true
	}

	if err := transaction.Commit(ctx); err != nil {
		return false, fmt.Errorf("postgres_interaction_repo_toggle_failed: %w", err)
	}

	return favorited, nil
}
