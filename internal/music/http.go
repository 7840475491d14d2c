// Copyright (c) 2026 Crescendo. All rights reserved.

package music

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/crescendofm/crescendo/internal/platform/middleware"
	requestutil "github.com/crescendofm/crescendo/internal/platform/request"
	"github.com/crescendofm/crescendo/internal/platform/respond"
	"github.com/crescendofm/crescendo/internal/platform/validate"
)

// Handler implements the song and album HTTP endpoints.
//
// # Scope
//
// Search endpoints are public (anonymous allowed); everything touching the
// local store requires authentication because interactions and
// materialization are always on behalf of a user.
type Handler struct {
	musicService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{musicService: service}
}

// SongRoutes returns the authenticated song route group.
//
// # Endpoints
//   - GET    /{externalID}          : Song detail (triggers materialization).
//   - PUT    /{externalID}/rating   : Upsert the user's rating.
//   - DELETE /{externalID}/rating   : Remove the user's rating.
//   - PUT    /{externalID}/favorite : Toggle favorite.
//   - PUT    /{externalID}/comment  : Upsert the user's comment.
//   - DELETE /{externalID}/comment  : Remove the user's comment.
func (handler *Handler) SongRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/{externalID}", handler.getSong)
	router.Put("/{externalID}/rating", handler.rateSong)
	router.Delete("/{externalID}/rating", handler.unrateSong)
	router.Put("/{externalID}/favorite", handler.favoriteSong)
	router.Put("/{externalID}/comment", handler.commentSong)
	router.Delete("/{externalID}/comment", handler.uncommentSong)

	return router
}

// AlbumRoutes returns the authenticated album route group.
func (handler *Handler) AlbumRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/{externalID}", handler.getAlbum)
	router.Put("/{externalID}/rating", handler.rateAlbum)
	router.Delete("/{externalID}/rating", handler.unrateAlbum)
	router.Put("/{externalID}/favorite", handler.favoriteAlbum)

	return router
}

// ── Search (public) ──────────────────────────────────────────────────────────

// SearchSongs handles GET /api/v1/songs/search. Mounted outside the
// authenticated group so anonymous visitors can search.
func (handler *Handler) SearchSongs(writer http.ResponseWriter, request *http.Request) {
	query, limit, offset, err := searchParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	songs, err := handler.musicService.SearchSongs(request.Context(), query, limit, offset)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"songs":  songs,
		"query":  query,
		"limit":  limit,
		"offset": offset,
	})
}

// SearchAlbums handles GET /api/v1/albums/search.
func (handler *Handler) SearchAlbums(writer http.ResponseWriter, request *http.Request) {
	query, limit, offset, err := searchParams(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	albums, err := handler.musicService.SearchAlbums(request.Context(), query, limit, offset)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"albums": albums,
		"query":  query,
		"limit":  limit,
		"offset": offset,
	})
}

// ── Songs ────────────────────────────────────────────────────────────────────

// getSong handles GET /api/v1/songs/{externalID}.
func (handler *Handler) getSong(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.musicService.GetSongDetail(request.Context(), userID, requestutil.ID(request, "externalID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, detail)
}

// ratingRequest carries a half-step rating value.
type ratingRequest struct {
	Rating float64 `json:"rating"`
}

// rateSong handles PUT /api/v1/songs/{externalID}/rating.
func (handler *Handler) rateSong(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ratingRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Rating("rating", input.Rating).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.musicService.RateSong(request.Context(), userID, requestutil.ID(request, "externalID"), input.Rating); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"rating": input.Rating})
}

// unrateSong handles DELETE /api/v1/songs/{externalID}/rating.
func (handler *Handler) unrateSong(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.musicService.RemoveSongRating(request.Context(), userID, requestutil.ID(request, "externalID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"message": "Rating removed"})
}

// favoriteSong handles PUT /api/v1/songs/{externalID}/favorite.
func (handler *Handler) favoriteSong(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	favorited, err := handler.musicService.ToggleSongFavorite(request.Context(), userID, requestutil.ID(request, "externalID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"favorited": favorited})
}

// commentRequest carries a song comment body.
type commentRequest struct {
	Content string `json:"content"`
}

// commentSong handles PUT /api/v1/songs/{externalID}/comment.
func (handler *Handler) commentSong(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input commentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.musicService.CommentSong(request.Context(), userID, requestutil.ID(request, "externalID"), input.Content)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"comment": comment})
}

// uncommentSong handles DELETE /api/v1/songs/{externalID}/comment.
func (handler *Handler) uncommentSong(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.musicService.RemoveSongComment(request.Context(), userID, requestutil.ID(request, "externalID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"message": "Comment deleted"})
}

// ── Albums ───────────────────────────────────────────────────────────────────

// getAlbum handles GET /api/v1/albums/{externalID}.
func (handler *Handler) getAlbum(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.musicService.GetAlbumDetail(request.Context(), userID, requestutil.ID(request, "externalID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, detail)
}

// rateAlbum handles PUT /api/v1/albums/{externalID}/rating.
func (handler *Handler) rateAlbum(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ratingRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Rating("rating", input.Rating).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.musicService.RateAlbum(request.Context(), userID, requestutil.ID(request, "externalID"), input.Rating); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"rating": input.Rating})
}

// unrateAlbum handles DELETE /api/v1/albums/{externalID}/rating.
func (handler *Handler) unrateAlbum(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.musicService.RemoveAlbumRating(request.Context(), userID, requestutil.ID(request, "externalID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"message": "Rating removed"})
}

// favoriteAlbum handles PUT /api/v1/albums/{externalID}/favorite.
func (handler *Handler) favoriteAlbum(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	favorited, err := handler.musicService.ToggleAlbumFavorite(request.Context(), userID, requestutil.ID(request, "externalID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"favorited": favorited})
}

// searchParams parses and bounds the shared search query parameters.
func searchParams(request *http.Request) (query string, limit, offset int, err error) {
	query = request.URL.Query().Get("q")
	if query == "" {
		return "", 0, 0, validate.RequiredError("q", "is required")
	}

	limit = 20
	if raw := request.URL.Query().Get("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	offset = 0
	if raw := request.URL.Query().Get("offset"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return query, limit, offset, nil
}
