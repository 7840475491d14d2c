// Copyright (c) 2026 Crescendo. All rights reserved.

// Package social implements friendships: requests, accept/reject, the
// friends list, and user search scoped by friendship state.
package social

import "time"

// FriendshipStatus is the lifecycle state of a friendship row.
type FriendshipStatus string

const (
	StatusPending  FriendshipStatus = "pending"
	StatusAccepted FriendshipStatus = "accepted"
	StatusRejected FriendshipStatus = "rejected"
)

// Friendship is a directed row: UserID sent the request to FriendID.
// Acceptance flips nothing; both directions are checked on read.
type Friendship struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	FriendID  string           `json:"friend_id"`
	Status    FriendshipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Friend is an accepted friend as shown in the friends list.
type Friend struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	DisplayName       string    `json:"display_name"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	FriendsSince      time.Time `json:"friends_since"`
}

// FriendRequest is a pending request joined with the counterparty's
// public fields. For received requests the counterparty is the sender;
// for sent requests it is the recipient.
type FriendRequest struct {
	RequestID         string    `json:"request_id"`
	UserID            string    `json:"user_id"`
	Username          string    `json:"username"`
	DisplayName       string    `json:"display_name"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at"`
}

// RelationToViewer labels a searched user's friendship state relative to
// the searching user.
type RelationToViewer string

const (
	RelationFriend          RelationToViewer = "friend"
	RelationRequestSent     RelationToViewer = "request_sent"
	RelationRequestReceived RelationToViewer = "request_received"
	RelationNone            RelationToViewer = "none"
)

// UserMatch is a user search hit annotated with the viewer's relation.
type UserMatch struct {
	ID                string           `json:"id"`
	Username          string           `json:"username"`
	DisplayName       string           `json:"display_name"`
	ProfilePictureURL *string          `json:"profile_picture_url"`
	FriendshipStatus  RelationToViewer `json:"friendship_status"`
}
