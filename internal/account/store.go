// Copyright (c) 2026 Crescendo. All rights reserved.

package account

import "context"

// ProfileRepository is the read-mostly persistence boundary for profiles
// and the interaction catalog.
type ProfileRepository interface {
	// FindUser returns the profile fields for a user, including email.
	// Callers strip email for non-owner views.
	FindUser(ctx context.Context, userID string) (*ProfileUser, error)

	// UpdateProfile applies the non-nil fields and returns the updated row.
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*ProfileUser, error)

	Stats(ctx context.Context, userID string) (*ProfileStats, error)
	TopSongs(ctx context.Context, userID string, limit int) ([]TopSong, error)
	TopGenres(ctx context.Context, userID string, limit int) ([]GenreCount, error)

	// CatalogEntries returns one page of the user's interacted songs plus
	// the total count of distinct interacted songs under the same filter.
	CatalogEntries(ctx context.Context, userID string, query CatalogQuery) ([]CatalogEntry, int, error)
}
