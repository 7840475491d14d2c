// Copyright (c) 2026 Crescendo. All rights reserved.

package social

import (
	"context"
	"strings"

	"github.com/crescendofm/crescendo/internal/platform/apperr"
	"github.com/crescendofm/crescendo/pkg/uuidv7"
)

// SearchLimit caps user search results.
const SearchLimit = 20

// Service implements the friendship workflows.
type Service struct {
	friendships FriendshipRepository
}

// NewService creates a new social Service.
func NewService(friendships FriendshipRepository) *Service {
	return &Service{friendships: friendships}
}

// ListFriends returns the user's accepted friends.
func (service *Service) ListFriends(ctx context.Context, userID string) ([]Friend, error) {
	return service.friendships.ListFriends(ctx, userID)
}

// ListReceivedRequests returns pending requests addressed to the user.
func (service *Service) ListReceivedRequests(ctx context.Context, userID string) ([]FriendRequest, error) {
	return service.friendships.ListReceivedRequests(ctx, userID)
}

// ListSentRequests returns the user's outgoing pending requests.
func (service *Service) ListSentRequests(ctx context.Context, userID string) ([]FriendRequest, error) {
	return service.friendships.ListSentRequests(ctx, userID)
}

// SendRequest creates a pending friendship from userID to targetID.
//
// A rejected prior request does not block a new one; the stale row is
// superseded rather than resurrected.
func (service *Service) SendRequest(ctx context.Context, userID, targetID string) (*Friendship, error) {
	if userID == targetID {
		return nil, apperr.ValidationError("Cannot send a friend request to yourself")
	}

	exists, err := service.friendships.UserExists(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("User")
	}

	existing, err := service.friendships.FindBetween(ctx, userID, targetID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case StatusAccepted:
			return nil, apperr.Conflict("Already friends")
		case StatusPending:
			return nil, apperr.Conflict("Friend request already pending")
		case StatusRejected:
			if err := service.friendships.DeleteBetween(ctx, userID, targetID); err != nil {
				return nil, err
			}
		}
	}

	friendship := &Friendship{
		ID:       uuidv7.New(),
		UserID:   userID,
		FriendID: targetID,
		Status:   StatusPending,
	}
	if err := service.friendships.Create(ctx, friendship); err != nil {
		return nil, err
	}

	return friendship, nil
}

// AcceptRequest accepts the pending request sent by requesterID to userID.
func (service *Service) AcceptRequest(ctx context.Context, userID, requesterID string) (*Friendship, error) {
	return service.friendships.Accept(ctx, requesterID, userID)
}

// RejectRequest rejects the pending request sent by requesterID to userID.
func (service *Service) RejectRequest(ctx context.Context, userID, requesterID string) (*Friendship, error) {
	return service.friendships.Reject(ctx, requesterID, userID)
}

// RemoveFriend deletes the accepted friendship between the two users.
func (service *Service) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return service.friendships.DeleteAccepted(ctx, userID, friendID)
}

// AreFriends reports whether the two users share an accepted friendship.
func (service *Service) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	friendship, err := service.friendships.FindBetween(ctx, userID, otherID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}

	return friendship.Status == StatusAccepted, nil
}

// SearchUsers finds candidate friends by username or display name.
func (service *Service) SearchUsers(ctx context.Context, userID, query string) ([]UserMatch, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, apperr.ValidationError("Search query must be at least 2 characters")
	}

	return service.friendships.SearchUsers(ctx, userID, query, SearchLimit)
}

func isNotFound(err error) bool {
	appError := apperr.As(err)
	return appError != nil && appError.Code == "NOT_FOUND"
}
