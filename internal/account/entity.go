// Copyright (c) 2026 Crescendo. All rights reserved.

// Package account implements user-facing profile views: the owner's
// profile with listening stats, friend-gated public profiles, profile
// edits, and the paginated catalog of a user's song interactions.
package account

import "time"

// ProfileUser is the user row as shown on profiles. Email is only
// populated on the owner's own profile.
type ProfileUser struct {
	ID                string    `json:"id"`
	Email             string    `json:"email,omitempty"`
	Username          string    `json:"username"`
	DisplayName       string    `json:"display_name"`
	Bio               string    `json:"bio"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at"`
}

// ProfileStats aggregates a user's interaction counts.
type ProfileStats struct {
	TotalRatings   int      `json:"total_ratings"`
	AvgRating      *float64 `json:"avg_rating"`
	TotalFavorites int      `json:"total_favorites"`
	TotalComments  int      `json:"total_comments"`
}

// TopSong is a highly rated song on a profile.
type TopSong struct {
	ID         string  `json:"id"`
	ExternalID string  `json:"external_id"`
	Name       string  `json:"name"`
	ArtistName *string `json:"artist_name"`
	AlbumImage *string `json:"album_image"`
	Rating     float64 `json:"rating"`
}

// GenreCount is a genre with the number of rated songs carrying it.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// OwnProfile is the owner's full profile view.
type OwnProfile struct {
	User      *ProfileUser  `json:"user"`
	Stats     *ProfileStats `json:"stats"`
	TopSongs  []TopSong     `json:"top_songs"`
	TopGenres []GenreCount  `json:"top_genres"`
}

// PublicProfile is another user's profile. Stats and TopSongs are only
// populated when the viewer and the subject are friends.
type PublicProfile struct {
	User     *ProfileUser  `json:"user"`
	IsFriend bool          `json:"is_friend"`
	Stats    *ProfileStats `json:"stats,omitempty"`
	TopSongs []TopSong     `json:"top_songs,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Nil means "leave
// unchanged"; at least one field must be set.
type ProfileUpdate struct {
	DisplayName       *string `json:"display_name"`
	Bio               *string `json:"bio"`
	ProfilePictureURL *string `json:"profile_picture_url"`
}

// Empty reports whether the update carries no fields.
func (u ProfileUpdate) Empty() bool {
	return u.DisplayName == nil && u.Bio == nil && u.ProfilePictureURL == nil
}

// CatalogEntry is one song in a user's interaction catalog with whatever
// interaction state exists for it.
type CatalogEntry struct {
	ID              string     `json:"id"`
	ExternalID      string     `json:"external_id"`
	Name            string     `json:"name"`
	ArtistName      *string    `json:"artist_name"`
	AlbumName       *string    `json:"album_name"`
	AlbumImage      *string    `json:"album_image"`
	Rating          *float64   `json:"rating"`
	Favorited       bool       `json:"favorited"`
	Comment         *string    `json:"comment"`
	LastInteraction *time.Time `json:"last_interaction"`
}

// Catalog sort keys.
const (
	SortRecent = "recent"
	SortRating = "rating"
	SortName   = "name"
)

// Catalog filters.
const (
	FilterAll       = "all"
	FilterRated     = "rated"
	FilterFavorited = "favorited"
	FilterCommented = "commented"
)

// CatalogQuery is the parsed query for the interaction catalog.
type CatalogQuery struct {
	Sort       string
	Filter     string
	Descending bool
	Limit      int
	Offset     int
}
