// Copyright (c) 2026 Crescendo. All rights reserved.

package account

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crescendofm/crescendo/internal/platform/apperr"
)

// PostgresProfileRepository implements [ProfileRepository] using pgx.
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new PostgreSQL implementation of [ProfileRepository].
func NewProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

const profileColumns = `id, email, username, display_name, bio, profile_picture_url, created_at`

func scanProfileUser(row pgx.Row) (*ProfileUser, error) {
	user := &ProfileUser{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.DisplayName,
		&user.Bio,
		&user.ProfilePictureURL,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindUser retrieves the profile fields of a user.
func (repository *PostgresProfileRepository) FindUser(ctx context.Context, userID string) (*ProfileUser, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE id = $1`

	user, err := scanProfileUser(repository.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_profile_repo_find_user_failed: %w", err)
	}

	return user, nil
}

// UpdateProfile applies the non-nil fields of the update and returns the
// fresh row. The SET clause is assembled from a fixed column list, never
// from caller input.
func (repository *PostgresProfileRepository) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*ProfileUser, error) {
	assignments := []string{}
	arguments := []any{}

	appendField := func(column string, value any) {
		arguments = append(arguments, value)
		assignments = append(assignments, column+" = $"+strconv.Itoa(len(arguments)))
	}

	if update.DisplayName != nil {
		appendField("display_name", *update.DisplayName)
	}
	if update.Bio != nil {
		appendField("bio", *update.Bio)
	}
	if update.ProfilePictureURL != nil {
		appendField("profile_picture_url", update.ProfilePictureURL)
	}

	arguments = append(arguments, userID)
	query := `
		UPDATE users
		SET ` + strings.Join(assignments, ", ") + `, updated_at = NOW()
		WHERE id = $` + strconv.Itoa(len(arguments)) + `
		RETURNING ` + profileColumns

	user, err := scanProfileUser(repository.pool.QueryRow(ctx, query, arguments...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_profile_repo_update_failed: %w", err)
	}

	return user, nil
}

// Stats aggregates the user's interaction counts in a single round trip.
func (repository *PostgresProfileRepository) Stats(ctx context.Context, userID string) (*ProfileStats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM song_ratings WHERE user_id = $1),
			(SELECT AVG(rating)::NUMERIC(2,1) FROM song_ratings WHERE user_id = $1),
			(SELECT COUNT(*) FROM song_favorites WHERE user_id = $1),
			(SELECT COUNT(*) FROM song_comments WHERE user_id = $1)`

	stats := &ProfileStats{}
	err := repository.pool.QueryRow(ctx, query, userID).Scan(
		&stats.TotalRatings,
		&stats.AvgRating,
		&stats.TotalFavorites,
		&stats.TotalComments,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres_profile_repo_stats_failed: %w", err)
	}

	return stats, nil
}

// TopSongs returns the user's highest rated songs, rating then recency.
func (repository *PostgresProfileRepository) TopSongs(ctx context.Context, userID string, limit int) ([]TopSong, error) {
	const query = `
		SELECT s.id, s.external_id, s.name, a.name AS artist_name,
		       al.image_url AS album_image, sr.rating
		FROM song_ratings sr
		JOIN songs s ON sr.song_id = s.id
		LEFT JOIN artists a ON s.artist_id = a.id
		LEFT JOIN albums al ON s.album_id = al.id
		WHERE sr.user_id = $1
		ORDER BY sr.rating DESC, sr.updated_at DESC
		LIMIT $2`

	rows, err := repository.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres_profile_repo_top_songs_failed: %w", err)
	}
	defer rows.Close()

	songs := []TopSong{}
	for rows.Next() {
		var song TopSong
		err := rows.Scan(
			&song.ID,
			&song.ExternalID,
			&song.Name,
			&song.ArtistName,
			&song.AlbumImage,
			&song.Rating,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_profile_repo_scan_top_song_failed: %w", err)
		}
		songs = append(songs, song)
	}

	return songs, rows.Err()
}

// TopGenres counts genres across the artists of the user's rated songs.
func (repository *PostgresProfileRepository) TopGenres(ctx context.Context, userID string, limit int) ([]GenreCount, error) {
	const query = `
		SELECT UNNEST(a.genres) AS genre, COUNT(*) AS count
		FROM song_ratings sr
		JOIN songs s ON sr.song_id = s.id
		JOIN artists a ON s.artist_id = a.id
		WHERE sr.user_id = $1 AND a.genres IS NOT NULL
		GROUP BY genre
		ORDER BY count DESC
		LIMIT $2`

	rows, err := repository.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres_profile_repo_top_genres_failed: %w", err)
	}
	defer rows.Close()

	genres := []GenreCount{}
	for rows.Next() {
		var genre GenreCount
		if err := rows.Scan(&genre.Genre, &genre.Count); err != nil {
			return nil, fmt.Errorf("postgres_profile_repo_scan_genre_failed: %w", err)
		}
		genres = append(genres, genre)
	}

	return genres, rows.Err()
}

// catalogFilterClause maps a validated filter to its SQL predicate. The
// filter value is whitelisted by the service, never interpolated from input.
func catalogFilterClause(filter string) string {
	switch filter {
	case FilterRated:
		return "AND sr.id IS NOT NULL"
	case FilterFavorited:
		return "AND sf.id IS NOT NULL"
	case FilterCommented:
		return "AND sc.id IS NOT NULL"
	default:
		return ""
	}
}

func catalogSortColumn(sort string) string {
	switch sort {
	case SortRating:
		return "MAX(sr.rating)"
	case SortName:
		return "MIN(s.name)"
	default:
		return "MAX(GREATEST(sr.updated_at, sf.created_at, sc.updated_at))"
	}
}

// CatalogEntries returns one page of the user's interacted songs plus the
// total matching count.
func (repository *PostgresProfileRepository) CatalogEntries(ctx context.Context, userID string, query CatalogQuery) ([]CatalogEntry, int, error) {
	direction := "DESC"
	if !query.Descending {
		direction = "ASC"
	}
	filterClause := catalogFilterClause(query.Filter)

	page := `
		SELECT s.id, s.external_id, s.name, a.name AS artist_name,
		       al.name AS album_name, al.image_url AS album_image,
		       MAX(sr.rating) AS rating,
		       BOOL_OR(sf.id IS NOT NULL) AS favorited,
		       MIN(sc.content) AS comment,
		       MAX(GREATEST(sr.updated_at, sf.created_at, sc.updated_at)) AS last_interaction
		FROM songs s
		LEFT JOIN artists a ON s.artist_id = a.id
		LEFT JOIN albums al ON s.album_id = al.id
		LEFT JOIN song_ratings sr ON s.id = sr.song_id AND sr.user_id = $1
		LEFT JOIN song_favorites sf ON s.id = sf.song_id AND sf.user_id = $1
		LEFT JOIN song_comments sc ON s.id = sc.song_id AND sc.user_id = $1
		WHERE (sr.id IS NOT NULL OR sf.id IS NOT NULL OR sc.id IS NOT NULL)
		` + filterClause + `
		GROUP BY s.id, s.external_id, s.name, a.name, al.name, al.image_url
		ORDER BY ` + catalogSortColumn(query.Sort) + ` ` + direction + `
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(ctx, page, userID, query.Limit, query.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_repo_catalog_failed: %w", err)
	}
	defer rows.Close()

	entries := []CatalogEntry{}
	for rows.Next() {
		var entry CatalogEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ExternalID,
			&entry.Name,
			&entry.ArtistName,
			&entry.AlbumName,
			&entry.AlbumImage,
			&entry.Rating,
			&entry.Favorited,
			&entry.Comment,
			&entry.LastInteraction,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_profile_repo_scan_catalog_failed: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	count := `
		SELECT COUNT(DISTINCT s.id)
		FROM songs s
		LEFT JOIN song_ratings sr ON s.id = sr.song_id AND sr.user_id = $1
		LEFT JOIN song_favorites sf ON s.id = sf.song_id AND sf.user_id = $1
		LEFT JOIN song_comments sc ON s.id = sc.song_id AND sc.user_id = $1
		WHERE (sr.id IS NOT NULL OR sf.id IS NOT NULL OR sc.id IS NOT NULL)
		` + filterClause

	var total int
	if err := repository.pool.QueryRow(ctx, count, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_repo_catalog_count_failed: %w", err)
	}

	return entries, total, nil
}
