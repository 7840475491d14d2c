// Copyright (c) 2026 Crescendo. All rights reserved.

package social

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crescendofm/crescendo/internal/platform/middleware"
	requestutil "github.com/crescendofm/crescendo/internal/platform/request"
	"github.com/crescendofm/crescendo/internal/platform/respond"
)

// Handler implements the friendship HTTP endpoints.
type Handler struct {
	socialService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{socialService: service}
}

// Routes returns the authenticated friendship route group.
//
// # Endpoints
//   - GET    /                          : Accepted friends.
//   - GET    /requests                  : Received pending requests.
//   - GET    /requests/sent             : Sent pending requests.
//   - GET    /search?q=                 : Find users to befriend.
//   - POST   /requests/{userID}         : Send a request.
//   - POST   /requests/{userID}/accept  : Accept a received request.
//   - POST   /requests/{userID}/reject  : Reject a received request.
//   - DELETE /{userID}                  : Unfriend.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listFriends)
	router.Get("/requests", handler.listReceived)
	router.Get("/requests/sent", handler.listSent)
	router.Get("/search", handler.searchUsers)
	router.Post("/requests/{userID}", handler.sendRequest)
	router.Post("/requests/{userID}/accept", handler.acceptRequest)
	router.Post("/requests/{userID}/reject", handler.rejectRequest)
	router.Delete("/{userID}", handler.removeFriend)

	return router
}

// listFriends handles GET /api/v1/friends.
func (handler *Handler) listFriends(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	friends, err := handler.socialService.ListFriends(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"friends": friends})
}

// listReceived handles GET /api/v1/friends/requests.
func (handler *Handler) listReceived(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	requests, err := handler.socialService.ListReceivedRequests(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"requests": requests})
}

// listSent handles GET /api/v1/friends/requests/sent.
func (handler *Handler) listSent(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	requests, err := handler.socialService.ListSentRequests(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"requests": requests})
}

// searchUsers handles GET /api/v1/friends/search.
func (handler *Handler) searchUsers(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	matches, err := handler.socialService.SearchUsers(request.Context(), userID, request.URL.Query().Get("q"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"users": matches})
}

// sendRequest handles POST /api/v1/friends/requests/{userID}.
func (handler *Handler) sendRequest(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	friendship, err := handler.socialService.SendRequest(request.Context(), userID, requestutil.ID(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{"request": friendship})
}

// acceptRequest handles POST /api/v1/friends/requests/{userID}/accept.
func (handler *Handler) acceptRequest(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	friendship, err := handler.socialService.AcceptRequest(request.Context(), userID, requestutil.ID(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"friendship": friendship})
}

// rejectRequest handles POST /api/v1/friends/requests/{userID}/reject.
func (handler *Handler) rejectRequest(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.socialService.RejectRequest(request.Context(), userID, requestutil.ID(request, "userID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"message": "Request rejected"})
}

// removeFriend handles DELETE /api/v1/friends/{userID}.
func (handler *Handler) removeFriend(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.socialService.RemoveFriend(request.Context(), userID, requestutil.ID(request, "userID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"message": "Friend removed"})
}
