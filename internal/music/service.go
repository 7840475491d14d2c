// Copyright (c) 2026 Crescendo. All rights reserved.

package music

import (
	"context"
	"strings"

	"github.com/crescendofm/crescendo/internal/catalog"
	"github.com/crescendofm/crescendo/internal/platform/apperr"
	"github.com/crescendofm/crescendo/pkg/uuidv7"
)

// CatalogClient is the slice of the catalog API this service depends on.
//
// # Why an interface?
//
// Materialization tests stub the catalog; nothing in this package may reach
// the network directly.
type CatalogClient interface {
	SearchTracks(ctx context.Context, query string, limit, offset int) ([]catalog.Track, error)
	SearchAlbums(ctx context.Context, query string, limit, offset int) ([]catalog.Album, error)
	GetTrack(ctx context.Context, externalID string) (*catalog.Track, error)
	GetAlbum(ctx context.Context, externalID string) (*catalog.AlbumDetail, error)
	GetArtist(ctx context.Context, externalID string) (*catalog.Artist, error)
}

// Service implements catalog search, lazy materialization, and interactions.
type Service struct {
	library      LibraryRepository
	interactions InteractionRepository
	catalog      CatalogClient
}

// NewService constructs a new music [Service].
func NewService(library LibraryRepository, interactions InteractionRepository, catalogClient CatalogClient) *Service {
	return &Service{
		library:      library,
		interactions: interactions,
		catalog:      catalogClient,
	}
}

// ── Search ───────────────────────────────────────────────────────────────────

// SearchSongs proxies a track search to the catalog. Results are normalized
// catalog shapes, not local rows: nothing is materialized by searching.
func (service *Service) SearchSongs(ctx context.Context, query string, limit, offset int) ([]catalog.Track, error) {
	return service.catalog.SearchTracks(ctx, query, limit, offset)
}

// SearchAlbums proxies an album search to the catalog.
func (service *Service) SearchAlbums(ctx context.Context, query string, limit, offset int) ([]catalog.Album, error) {
	return service.catalog.SearchAlbums(ctx, query, limit, offset)
}

// ── Materialization ──────────────────────────────────────────────────────────

// EnsureArtist guarantees a local row exists for the catalog artist.
//
// # Flow
//  1. Local lookup by external ID. Hit: done, no catalog call.
//  2. Miss: fetch from the catalog, then conflict-tolerant insert.
//
// Safe to call concurrently for the same ID: whichever insert loses the
// race re-reads the winner's row.
func (service *Service) EnsureArtist(ctx context.Context, externalID string) (*Artist, error) {
	if existing, err := service.library.FindArtistByExternalID(ctx, externalID); err == nil {
		return existing, nil
	} else if !isNotFound(err) {
		return nil, err
	}

	remote, err := service.catalog.GetArtist(ctx, externalID)
	if err != nil {
		return nil, err
	}

	return service.library.CreateOrGetArtist(ctx, &Artist{
		ID:         uuidv7.New(),
		ExternalID: remote.ExternalID,
		Name:       remote.Name,
		ImageURL:   remote.ImageURL,
		Genres:     remote.Genres,
	})
}

// EnsureAlbum guarantees a local row exists for the catalog album.
//
// The caller supplies the already-materialized artist's local ID; the album
// detail's own track list and genres are not persisted here (tracks
// materialize individually on first reference).
func (service *Service) EnsureAlbum(ctx context.Context, externalID, artistID string) (*Album, error) {
	if existing, err := service.library.FindAlbumByExternalID(ctx, externalID); err == nil {
		return existing, nil
	} else if !isNotFound(err) {
		return nil, err
	}

	remote, err := service.catalog.GetAlbum(ctx, externalID)
	if err != nil {
		return nil, err
	}

	return service.library.CreateOrGetAlbum(ctx, &Album{
		ID:          uuidv7.New(),
		ExternalID:  remote.ExternalID,
		Name:        remote.Name,
		ArtistID:    artistID,
		ReleaseDate: remote.ReleaseDate,
		ImageURL:    remote.ImageURL,
		TotalTracks: remote.TotalTracks,
	})
}

// EnsureSong guarantees a local row exists for the catalog track, parents
// first.
//
// # Ordering
//
// Artist, then album (if the track has one), then the song row referencing
// both. A catalog failure anywhere aborts the chain with no partial song
// row; already-materialized parents simply remain, and re-running the chain
// is always safe.
func (service *Service) EnsureSong(ctx context.Context, externalID string) (*Song, error) {
	if existing, err := service.library.FindSongByExternalID(ctx, externalID); err == nil {
		return existing, nil
	} else if !isNotFound(err) {
		return nil, err
	}

	track, err := service.catalog.GetTrack(ctx, externalID)
	if err != nil {
		return nil, err
	}

	artist, err := service.EnsureArtist(ctx, track.Artist.ExternalID)
	if err != nil {
		return nil, err
	}

	var albumID *string
	if track.Album != nil {
		album, err := service.EnsureAlbum(ctx, track.Album.ExternalID, artist.ID)
		if err != nil {
			return nil, err
		}
		albumID = &album.ID
	}

	return service.library.CreateOrGetSong(ctx, &Song{
		ID:         uuidv7.New(),
		ExternalID: track.ExternalID,
		Name:       track.Name,
		ArtistID:   artist.ID,
		AlbumID:    albumID,
		DurationMS: track.DurationMS,
		PreviewURL: track.PreviewURL,
		Popularity: track.Popularity,
	})
}

// ── Song Details & Interactions ──────────────────────────────────────────────

// SongDetail is the full response for a song lookup.
type SongDetail struct {
	Song            *SongView        `json:"song"`
	Stats           *RatingStats     `json:"stats"`
	UserInteraction *SongInteraction `json:"user_interaction"`
}

// GetSongDetail materializes the song if needed and assembles its community
// stats plus the requesting user's interaction state.
func (service *Service) GetSongDetail(ctx context.Context, userID, externalID string) (*SongDetail, error) {
	song, err := service.EnsureSong(ctx, externalID)
	if err != nil {
		return nil, err
	}

	view, err := service.library.FindSongView(ctx, song.ID)
	if err != nil {
		return nil, err
	}

	stats, err := service.interactions.SongStats(ctx, song.ID)
	if err != nil {
		return nil, err
	}

	interaction, err := service.interactions.SongInteraction(ctx, userID, song.ID)
	if err != nil {
		return nil, err
	}

	return &SongDetail{Song: view, Stats: stats, UserInteraction: interaction}, nil
}

// RateSong records the user's rating, materializing the song on first touch.
// Rating bounds are enforced at the HTTP boundary.
func (service *Service) RateSong(ctx context.Context, userID, externalID string, rating float64) error {
	song, err := service.EnsureSong(ctx, externalID)
	if err != nil {
		return err
	}
	return service.interactions.UpsertSongRating(ctx, userID, song.ID, rating)
}

// RemoveSongRating deletes the user's rating. Unlike the write path, this
// never materializes: an unknown song is a 404.
func (service *Service) RemoveSongRating(ctx context.Context, userID, externalID string) error {
	song, err := service.library.FindSongByExternalID(ctx, externalID)
	if err != nil {
		return err
	}
	return service.interactions.DeleteSongRating(ctx, userID, song.ID)
}

// ToggleSongFavorite flips the favorite flag and returns the new state,
// materializing the song on first touch.
func (service *Service) ToggleSongFavorite(ctx context.Context, userID, externalID string) (bool, error) {
	song, err := service.EnsureSong(ctx, externalID)
	if err != nil {
		return false, err
	}
	return service.interactions.ToggleSongFavorite(ctx, userID, song.ID)
}

// CommentSong creates or replaces the user's single comment on a song.
func (service *Service) CommentSong(ctx context.Context, userID, externalID, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.ValidationError("Comment content required")
	}

	song, err := service.EnsureSong(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return service.interactions.UpsertSongComment(ctx, userID, song.ID, content)
}

// RemoveSongComment deletes the user's comment. Unknown song is a 404.
func (service *Service) RemoveSongComment(ctx context.Context, userID, externalID string) error {
	song, err := service.library.FindSongByExternalID(ctx, externalID)
	if err != nil {
		return err
	}
	return service.interactions.DeleteSongComment(ctx, userID, song.ID)
}

// ── Album Details & Interactions ─────────────────────────────────────────────

// AlbumDetailView is the full response for an album lookup. Tracks and
// genres come straight from the catalog; only album-level fields live in
// the local row.
type AlbumDetailView struct {
	Album           *Album               `json:"album"`
	Artist          *Artist              `json:"artist"`
	Tracks          []catalog.AlbumTrack `json:"tracks"`
	Genres          []string             `json:"genres"`
	Stats           *RatingStats         `json:"stats"`
	UserInteraction *AlbumInteraction    `json:"user_interaction"`
}

// GetAlbumDetail materializes the album (artist first) and assembles stats
// plus the user's interaction state.
func (service *Service) GetAlbumDetail(ctx context.Context, userID, externalID string) (*AlbumDetailView, error) {
	// The detail fetch happens before materialization so the nested track
	// list rides along even when the album row already exists.
	remote, err := service.catalog.GetAlbum(ctx, externalID)
	if err != nil {
		return nil, err
	}

	artist, err := service.EnsureArtist(ctx, remote.Artist.ExternalID)
	if err != nil {
		return nil, err
	}

	album, err := service.EnsureAlbum(ctx, externalID, artist.ID)
	if err != nil {
		return nil, err
	}

	stats, err := service.interactions.AlbumStats(ctx, album.ID)
	if err != nil {
		return nil, err
	}

	interaction, err := service.interactions.AlbumInteraction(ctx, userID, album.ID)
	if err != nil {
		return nil, err
	}

	return &AlbumDetailView{
		Album:           album,
		Artist:          artist,
		Tracks:          remote.Tracks,
		Genres:          remote.Genres,
		Stats:           stats,
		UserInteraction: interaction,
	}, nil
}

// RateAlbum records the user's rating for an already-materialized album.
// Albums only materialize through their detail endpoint; rating an unknown
// album is a 404, not a materialization trigger.
func (service *Service) RateAlbum(ctx context.Context, userID, externalID string, rating float64) error {
	album, err := service.library.FindAlbumByExternalID(ctx, externalID)
	if err != nil {
		return err
	}
	return service.interactions.UpsertAlbumRating(ctx, userID, album.ID, rating)
}

// RemoveAlbumRating deletes the user's album rating.
func (service *Service) RemoveAlbumRating(ctx context.Context, userID, externalID string) error {
	album, err := service.library.FindAlbumByExternalID(ctx, externalID)
	if err != nil {
		return err
	}
	return service.interactions.DeleteAlbumRating(ctx, userID, album.ID)
}

// ToggleAlbumFavorite flips the favorite flag for a materialized album.
func (service *Service) ToggleAlbumFavorite(ctx context.Context, userID, externalID string) (bool, error) {
	album, err := service.library.FindAlbumByExternalID(ctx, externalID)
	if err != nil {
		return false, err
	}
	return service.interactions.ToggleAlbumFavorite(ctx, userID, album.ID)
}

// isNotFound distinguishes "no row yet" from real storage failures.
func isNotFound(err error) bool {
	ae := apperr.As(err)
	return ae != nil && ae.Code == "NOT_FOUND"
}
