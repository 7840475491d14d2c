// Copyright (c) 2026 Crescendo. All rights reserved.

package social

import "context"

// FriendshipRepository is the persistence boundary for friendships.
//
// Pair-scoped operations (FindBetween, DeleteAccepted) treat the pair as
// unordered; request-scoped operations (Accept, Reject) are directional,
// keyed by who sent the request.
type FriendshipRepository interface {
	ListFriends(ctx context.Context, userID string) ([]Friend, error)
	ListReceivedRequests(ctx context.Context, userID string) ([]FriendRequest, error)
	ListSentRequests(ctx context.Context, userID string) ([]FriendRequest, error)

	// FindBetween returns the friendship row linking the two users in
	// either direction, or apperr.NotFound when none exists.
	FindBetween(ctx context.Context, userID, otherID string) (*Friendship, error)

	Create(ctx context.Context, friendship *Friendship) error

	// Accept flips the pending request sent by requesterID to recipientID
	// to accepted. Returns apperr.NotFound when no such pending row exists.
	Accept(ctx context.Context, requesterID, recipientID string) (*Friendship, error)

	// Reject marks the pending request as rejected, same keying as Accept.
	Reject(ctx context.Context, requesterID, recipientID string) (*Friendship, error)

	// DeleteAccepted removes the accepted friendship between the two users.
	// Returns apperr.NotFound when they are not friends.
	DeleteAccepted(ctx context.Context, userID, otherID string) error

	// DeleteBetween removes the friendship row linking the two users
	// regardless of status. Deleting a missing row is not an error.
	DeleteBetween(ctx context.Context, userID, otherID string) error

	// UserExists reports whether a user row exists for the given ID.
	UserExists(ctx context.Context, userID string) (bool, error)

	// SearchUsers matches other users by username or display name and
	// annotates each hit with its friendship state relative to userID.
	SearchUsers(ctx context.Context, userID, query string, limit int) ([]UserMatch, error)
}
