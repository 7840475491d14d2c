// Copyright (c) 2026 Crescendo. All rights reserved.

package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crescendofm/crescendo/internal/platform/apperr"
)

// PostgresFriendshipRepository implements [FriendshipRepository] using pgx.
type PostgresFriendshipRepository struct {
	pool *pgxpool.Pool
}

// NewFriendshipRepository creates a new PostgreSQL implementation of [FriendshipRepository].
func NewFriendshipRepository(pool *pgxpool.Pool) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{pool: pool}
}

const friendshipColumns = `id, user_id, friend_id, status, created_at, updated_at`

func scanFriendship(row pgx.Row) (*Friendship, error) {
	friendship := &Friendship{}
	err := row.Scan(
		&friendship.ID,
		&friendship.UserID,
		&friendship.FriendID,
		&friendship.Status,
		&friendship.CreatedAt,
		&friendship.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return friendship, nil
}

// ListFriends returns the accepted friendships joined with the counterparty,
// ordered by username.
func (repository *PostgresFriendshipRepository) ListFriends(ctx context.Context, userID string) ([]Friend, error) {
	const query = `
		SELECT u.id, u.username, u.display_name, u.profile_picture_url,
		       f.created_at AS friends_since
		FROM friendships f
		JOIN users u ON (
			CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		) = u.id
		WHERE (f.user_id = $1 OR f.friend_id = $1)
		AND f.status = 'accepted'
		ORDER BY u.username`

	rows, err := repository.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_friendship_repo_list_friends_failed: %w", err)
	}
	defer rows.Close()

	friends := []Friend{}
	for rows.Next() {
		var friend Friend
		err := rows.Scan(
			&friend.ID,
			&friend.Username,
			&friend.DisplayName,
			&friend.ProfilePictureURL,
			&friend.FriendsSince,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_friendship_repo_scan_friend_failed: %w", err)
		}
		friends = append(friends, friend)
	}

	return friends, rows.Err()
}

func (repository *PostgresFriendshipRepository) listRequests(ctx context.Context, query, userID string) ([]FriendRequest, error) {
	rows, err := repository.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_friendship_repo_list_requests_failed: %w", err)
	}
	defer rows.Close()

	requests := []FriendRequest{}
	for rows.Next() {
		var request FriendRequest
		err := rows.Scan(
			&request.RequestID,
			&request.UserID,
			&request.Username,
			&request.DisplayName,
			&request.ProfilePictureURL,
			&request.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_friendship_repo_scan_request_failed: %w", err)
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}

// ListReceivedRequests returns pending requests addressed to the user,
// newest first, joined with the sender.
func (repository *PostgresFriendshipRepository) ListReceivedRequests(ctx context.Context, userID string) ([]FriendRequest, error) {
	const query = `
		SELECT f.id AS request_id, u.id, u.username, u.display_name,
		       u.profile_picture_url, f.created_at
		FROM friendships f
		JOIN users u ON f.user_id = u.id
		WHERE f.friend_id = $1 AND f.status = 'pending'
		ORDER BY f.created_at DESC`

	return repository.listRequests(ctx, query, userID)
}

// ListSentRequests returns the user's outgoing pending requests, newest
// first, joined with the recipient.
func (repository *PostgresFriendshipRepository) ListSentRequests(ctx context.Context, userID string) ([]FriendRequest, error) {
	const query = `
		SELECT f.id AS request_id, u.id, u.username, u.display_name,
		       u.profile_picture_url, f.created_at
		FROM friendships f
		JOIN users u ON f.friend_id = u.id
		WHERE f.user_id = $1 AND f.status = 'pending'
		ORDER BY f.created_at DESC`

	return repository.listRequests(ctx, query, userID)
}

// FindBetween retrieves the friendship row linking two users in either direction.
func (repository *PostgresFriendshipRepository) FindBetween(ctx context.Context, userID, otherID string) (*Friendship, error) {
	query := `
		SELECT ` + friendshipColumns + `
		FROM friendships
		WHERE (user_id = $1 AND friend_id = $2)
		OR (user_id = $2 AND friend_id = $1)`

	friendship, err := scanFriendship(repository.pool.QueryRow(ctx, query, userID, otherID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Friendship")
		}
		return nil, fmt.Errorf("postgres_friendship_repo_find_between_failed: %w", err)
	}

	return friendship, nil
}

// Create inserts a new friendship row.
func (repository *PostgresFriendshipRepository) Create(ctx context.Context, friendship *Friendship) error {
	const insert = `
		INSERT INTO friendships (id, user_id, friend_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	now := time.Now()
	if friendship.CreatedAt.IsZero() {
		friendship.CreatedAt = now
	}
	friendship.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, insert,
		friendship.ID,
		friendship.UserID,
		friendship.FriendID,
		friendship.Status,
		friendship.CreatedAt,
		friendship.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_friendship_repo_create_failed: %w", err)
	}

	return nil
}

func (repository *PostgresFriendshipRepository) transition(ctx context.Context, requesterID, recipientID string, status FriendshipStatus) (*Friendship, error) {
	query := `
		UPDATE friendships
		SET status = $3, updated_at = NOW()
		WHERE user_id = $1 AND friend_id = $2 AND status = 'pending'
		RETURNING ` + friendshipColumns

	friendship, err := scanFriendship(repository.pool.QueryRow(ctx, query, requesterID, recipientID, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Friend request")
		}
		return nil, fmt.Errorf("postgres_friendship_repo_transition_failed: %w", err)
	}

	return friendship, nil
}

// Accept flips a pending request to accepted.
func (repository *PostgresFriendshipRepository) Accept(ctx context.Context, requesterID, recipientID string) (*Friendship, error) {
	return repository.transition(ctx, requesterID, recipientID, StatusAccepted)
}

// Reject marks a pending request as rejected.
func (repository *PostgresFriendshipRepository) Reject(ctx context.Context, requesterID, recipientID string) (*Friendship, error) {
	return repository.transition(ctx, requesterID, recipientID, StatusRejected)
}

// DeleteAccepted removes the accepted friendship between two users.
func (repository *PostgresFriendshipRepository) DeleteAccepted(ctx context.Context, userID, otherID string) error {
	const query = `
		DELETE FROM friendships
		WHERE ((user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1))
		AND status = 'accepted'`

	tag, err := repository.pool.Exec(ctx, query, userID, otherID)
	if err != nil {
		return fmt.Errorf("postgres_friendship_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Friendship")
	}

	return nil
}

// DeleteBetween removes the friendship row between two users regardless of
// status. Used to clear a stale rejected row before a fresh request.
func (repository *PostgresFriendshipRepository) DeleteBetween(ctx context.Context, userID, otherID string) error {
	const query = `
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)`

	if _, err := repository.pool.Exec(ctx, query, userID, otherID); err != nil {
		return fmt.Errorf("postgres_friendship_repo_delete_between_failed: %w", err)
	}

	return nil
}

// UserExists reports whether a user row exists.
func (repository *PostgresFriendshipRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_friendship_repo_user_exists_failed: %w", err)
	}

	return exists, nil
}

// SearchUsers matches other users by username or display name and labels
// each hit with the viewer's friendship state.
func (repository *PostgresFriendshipRepository) SearchUsers(ctx context.Context, userID, query string, limit int) ([]UserMatch, error) {
	const search = `
		SELECT u.id, u.username, u.display_name, u.profile_picture_url,
		       CASE
		         WHEN f.status = 'accepted' THEN 'friend'
		         WHEN f.user_id = $1 AND f.status = 'pending' THEN 'request_sent'
		         WHEN f.friend_id = $1 AND f.status = 'pending' THEN 'request_received'
		         ELSE 'none'
		       END AS friendship_status
		FROM users u
		LEFT JOIN friendships f ON (
			(f.user_id = $1 AND f.friend_id = u.id) OR
			(f.friend_id = $1 AND f.user_id = u.id)
		)
		WHERE u.id <> $1
		AND (u.username ILIKE $2 OR u.display_name ILIKE $2)
		ORDER BY u.username
		LIMIT $3`

	rows, err := repository.pool.Query(ctx, search, userID, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("postgres_friendship_repo_search_users_failed: %w", err)
	}
	defer rows.Close()

	matches := []UserMatch{}
	for rows.Next() {
		var match UserMatch
		err := rows.Scan(
			&match.ID,
			&match.Username,
			&match.DisplayName,
			&match.ProfilePictureURL,
			&match.FriendshipStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_friendship_repo_scan_match_failed: %w", err)
		}
		matches = append(matches, match)
	}

	return matches, rows.Err()
}
