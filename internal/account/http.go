// Copyright (c) 2026 Crescendo. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crescendofm/crescendo/internal/platform/middleware"
	requestutil "github.com/crescendofm/crescendo/internal/platform/request"
	"github.com/crescendofm/crescendo/internal/platform/respond"
	"github.com/crescendofm/crescendo/pkg/pagination"
)

// Handler implements the profile and catalog HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns the authenticated user route group.
//
// # Endpoints
//   - GET   /me/profile       : Own profile with stats and top songs.
//   - PATCH /me/profile       : Partial profile edit.
//   - GET   /me/catalog       : Paginated interaction catalog.
//   - GET   /{userID}/profile : Another user's profile, friend-gated detail.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/me/profile", handler.getOwnProfile)
	router.Patch("/me/profile", handler.updateProfile)
	router.Get("/me/catalog", handler.getCatalog)
	router.Get("/{userID}/profile", handler.getPublicProfile)

	return router
}

// getOwnProfile handles GET /api/v1/users/me/profile.
func (handler *Handler) getOwnProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetOwnProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// updateProfile handles PATCH /api/v1/users/me/profile.
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var update ProfileUpdate
	if err := requestutil.DecodeJSON(request, &update); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, update)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"user": user})
}

// getCatalog handles GET /api/v1/users/me/catalog.
func (handler *Handler) getCatalog(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	query := CatalogQuery{
		Sort:       request.URL.Query().Get("sort"),
		Filter:     request.URL.Query().Get("filter"),
		Descending: request.URL.Query().Get("order") != "asc",
		Limit:      params.Limit,
		Offset:     params.Offset(),
	}

	entries, total, err := handler.accountService.GetCatalog(request.Context(), userID, query)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, map[string]any{"songs": entries}, pagination.NewMeta(params.Page, params.Limit, total))
}

// getPublicProfile handles GET /api/v1/users/{userID}/profile.
func (handler *Handler) getPublicProfile(writer http.ResponseWriter, request *http.Request) {
	viewerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetPublicProfile(request.Context(), viewerID, requestutil.ID(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}
