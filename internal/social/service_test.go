// Copyright (c) 2026 Crescendo. All rights reserved.

package social_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescendofm/crescendo/internal/platform/apperr"
	"github.com/crescendofm/crescendo/internal/social"
)

// fakeFriendshipRepo keeps friendship rows in memory, honoring the
// one-row-per-pair contract of the real table.
type fakeFriendshipRepo struct {
	mu    sync.Mutex
	rows  map[string]*social.Friendship // key: ordered pair
	users map[string]string             // id -> username
}

func newFakeFriendshipRepo(userIDs ...string) *fakeFriendshipRepo {
	repo := &fakeFriendshipRepo{
		rows:  map[string]*social.Friendship{},
		users: map[string]string{},
	}
	for _, id := range userIDs {
		repo.users[id] = "user-" + id
	}
	return repo
}

func pairKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

func (r *fakeFriendshipRepo) ListFriends(_ context.Context, userID string) ([]social.Friend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	friends := []social.Friend{}
	for _, row := range r.rows {
		if row.Status != social.StatusAccepted {
			continue
		}
		other := ""
		switch userID {
		case row.UserID:
			other = row.FriendID
		case row.FriendID:
			other = row.UserID
		default:
			continue
		}
		friends = append(friends, social.Friend{ID: other, Username: r.users[other], FriendsSince: row.CreatedAt})
	}
	return friends, nil
}

func (r *fakeFriendshipRepo) ListReceivedRequests(_ context.Context, userID string) ([]social.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	requests := []social.FriendRequest{}
	for _, row := range r.rows {
		if row.Status == social.StatusPending && row.FriendID == userID {
			requests = append(requests, social.FriendRequest{RequestID: row.ID, UserID: row.UserID})
		}
	}
	return requests, nil
}

func (r *fakeFriendshipRepo) ListSentRequests(_ context.Context, userID string) ([]social.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	requests := []social.FriendRequest{}
	for _, row := range r.rows {
		if row.Status == social.StatusPending && row.UserID == userID {
			requests = append(requests, social.FriendRequest{RequestID: row.ID, UserID: row.FriendID})
		}
	}
	return requests, nil
}

func (r *fakeFriendshipRepo) FindBetween(_ context.Context, userID, otherID string) (*social.Friendship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[pairKey(userID, otherID)]; ok {
		return row, nil
	}
	return nil, apperr.NotFound("Friendship")
}

func (r *fakeFriendshipRepo) Create(_ context.Context, friendship *social.Friendship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	friendship.CreatedAt = time.Now()
	friendship.UpdatedAt = friendship.CreatedAt
	r.rows[pairKey(friendship.UserID, friendship.FriendID)] = friendship
	return nil
}

func (r *fakeFriendshipRepo) Accept(_ context.Context, requesterID, recipientID string) (*social.Friendship, error) {
	return r.transition(requesterID, recipientID, social.StatusAccepted)
}

func (r *fakeFriendshipRepo) Reject(_ context.Context, requesterID, recipientID string) (*social.Friendship, error) {
	return r.transition(requesterID, recipientID, social.StatusRejected)
}

func (r *fakeFriendshipRepo) transition(requesterID, recipientID string, status social.FriendshipStatus) (*social.Friendship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[pairKey(requesterID, recipientID)]
	if !ok || row.Status != social.StatusPending || row.UserID != requesterID {
		return nil, apperr.NotFound("Friend request")
	}
	row.Status = status
	row.UpdatedAt = time.Now()
	return row, nil
}

func (r *fakeFriendshipRepo) DeleteAccepted(_ context.Context, userID, otherID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(userID, otherID)
	if row, ok := r.rows[key]; ok && row.Status == social.StatusAccepted {
		delete(r.rows, key)
		return nil
	}
	return apperr.NotFound("Friendship")
}

func (r *fakeFriendshipRepo) DeleteBetween(_ context.Context, userID, otherID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, pairKey(userID, otherID))
	return nil
}

func (r *fakeFriendshipRepo) UserExists(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[userID]
	return ok, nil
}

func (r *fakeFriendshipRepo) SearchUsers(_ context.Context, _, _ string, _ int) ([]social.UserMatch, error) {
	return []social.UserMatch{}, nil
}

/*
TestService_SendRequest covers the guard rails: self-requests, unknown
targets, and duplicate requests in both directions.
*/
func TestService_SendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_pending_request", func(t *testing.T) {
		service := social.NewService(newFakeFriendshipRepo("ana", "ben"))

		friendship, err := service.SendRequest(ctx, "ana", "ben")
		require.NoError(t, err)
		assert.Equal(t, social.StatusPending, friendship.Status)
		assert.Equal(t, "ana", friendship.UserID)
		assert.Equal(t, "ben", friendship.FriendID)
		assert.NotEmpty(t, friendship.ID)
	})

	t.Run("rejects_self_request", func(t *testing.T) {
		service := social.NewService(newFakeFriendshipRepo("ana"))

		_, err := service.SendRequest(ctx, "ana", "ana")
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("unknown_target_is_404", func(t *testing.T) {
		service := social.NewService(newFakeFriendshipRepo("ana"))

		_, err := service.SendRequest(ctx, "ana", "ghost")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("duplicate_pending_conflicts", func(t *testing.T) {
		service := social.NewService(newFakeFriendshipRepo("ana", "ben"))

		_, err := service.SendRequest(ctx, "ana", "ben")
		require.NoError(t, err)

		_, err = service.SendRequest(ctx, "ana", "ben")
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)

		// The reverse direction collides with the same row.
		_, err = service.SendRequest(ctx, "ben", "ana")
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	t.Run("rejected_row_is_superseded", func(t *testing.T) {
		repo := newFakeFriendshipRepo("ana", "ben")
		service := social.NewService(repo)

		_, err := service.SendRequest(ctx, "ana", "ben")
		require.NoError(t, err)
		_, err = service.RejectRequest(ctx, "ben", "ana")
		require.NoError(t, err)

		friendship, err := service.SendRequest(ctx, "ana", "ben")
		require.NoError(t, err)
		assert.Equal(t, social.StatusPending, friendship.Status)
	})
}

/*
TestService_AcceptFlow walks request -> accept -> friends list -> unfriend.
*/
func TestService_AcceptFlow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeFriendshipRepo("ana", "ben")
	service := social.NewService(repo)

	_, err := service.SendRequest(ctx, "ana", "ben")
	require.NoError(t, err)

	// Only the recipient can accept: ana accepting her own request is a 404.
	_, err = service.AcceptRequest(ctx, "ana", "ben")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	friendship, err := service.AcceptRequest(ctx, "ben", "ana")
	require.NoError(t, err)
	assert.Equal(t, social.StatusAccepted, friendship.Status)

	friends, err := service.ListFriends(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "ben", friends[0].ID)

	areFriends, err := service.AreFriends(ctx, "ben", "ana")
	require.NoError(t, err)
	assert.True(t, areFriends)

	require.NoError(t, service.RemoveFriend(ctx, "ana", "ben"))

	areFriends, err = service.AreFriends(ctx, "ben", "ana")
	require.NoError(t, err)
	assert.False(t, areFriends)

	// Removing again is a 404.
	err = service.RemoveFriend(ctx, "ana", "ben")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_AcceptRequest_NoPendingRow verifies accept and reject both 404
when nothing is pending.
*/
func TestService_AcceptRequest_NoPendingRow(t *testing.T) {
	ctx := context.Background()
	service := social.NewService(newFakeFriendshipRepo("ana", "ben"))

	_, err := service.AcceptRequest(ctx, "ben", "ana")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	_, err = service.RejectRequest(ctx, "ben", "ana")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_SearchUsers_QueryTooShort verifies the two-character minimum.
*/
func TestService_SearchUsers_QueryTooShort(t *testing.T) {
	service := social.NewService(newFakeFriendshipRepo("ana"))

	_, err := service.SearchUsers(context.Background(), "ana", " a ")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
