// Copyright (c) 2026 Crescendo. All rights reserved.

package account

import (
	"context"

	"github.com/crescendofm/crescendo/internal/platform/apperr"
)

const (
	topSongsLimit  = 10
	topGenresLimit = 5
)

// FriendChecker reports whether two users share an accepted friendship.
// Implemented by the social service.
type FriendChecker interface {
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
}

// Service assembles profile views and the interaction catalog.
type Service struct {
	profiles ProfileRepository
	friends  FriendChecker
}

// NewService creates a new account Service.
func NewService(profiles ProfileRepository, friends FriendChecker) *Service {
	return &Service{profiles: profiles, friends: friends}
}

// GetOwnProfile assembles the owner's profile with stats, top songs, and
// top genres.
func (service *Service) GetOwnProfile(ctx context.Context, userID string) (*OwnProfile, error) {
	user, err := service.profiles.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := service.profiles.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	topSongs, err := service.profiles.TopSongs(ctx, userID, topSongsLimit)
	if err != nil {
		return nil, err
	}

	topGenres, err := service.profiles.TopGenres(ctx, userID, topGenresLimit)
	if err != nil {
		return nil, err
	}

	return &OwnProfile{
		User:      user,
		Stats:     stats,
		TopSongs:  topSongs,
		TopGenres: topGenres,
	}, nil
}

// UpdateProfile applies a partial profile edit.
func (service *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*ProfileUser, error) {
	if update.Empty() {
		return nil, apperr.ValidationError("No fields to update")
	}

	return service.profiles.UpdateProfile(ctx, userID, update)
}

// GetPublicProfile returns another user's profile. Stats and top songs are
// included only when the viewer is a friend of the subject.
func (service *Service) GetPublicProfile(ctx context.Context, viewerID, subjectID string) (*PublicProfile, error) {
	user, err := service.profiles.FindUser(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	user.Email = "" // public view never exposes email

	profile := &PublicProfile{User: user}

	if viewerID != subjectID {
		isFriend, err := service.friends.AreFriends(ctx, viewerID, subjectID)
		if err != nil {
			return nil, err
		}
		profile.IsFriend = isFriend
	}

	if !profile.IsFriend {
		return profile, nil
	}

	stats, err := service.profiles.Stats(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	profile.Stats = stats

	topSongs, err := service.profiles.TopSongs(ctx, subjectID, topSongsLimit)
	if err != nil {
		return nil, err
	}
	profile.TopSongs = topSongs

	return profile, nil
}

// GetCatalog returns one page of the user's interacted songs.
//
// Sort and filter values are normalized here so the repository only ever
// sees whitelisted tokens.
func (service *Service) GetCatalog(ctx context.Context, userID string, query CatalogQuery) ([]CatalogEntry, int, error) {
	switch query.Sort {
	case SortRecent, SortRating, SortName:
	default:
		query.Sort = SortRecent
	}

	switch query.Filter {
	case FilterAll, FilterRated, FilterFavorited, FilterCommented:
	default:
		query.Filter = FilterAll
	}

	return service.profiles.CatalogEntries(ctx, userID, query)
}
