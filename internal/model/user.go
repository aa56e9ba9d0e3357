// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// We use Auth0 as the identity provider, so the primary external identifier
// is the Auth0 subject claim (e.g. "auth0|5f7c8ec7c33c6c004bbafe82"). We still
// generate our own internal string ID (xid) so our primary keys aren't tied
// to a third-party's identifier scheme.
//
// Followers and Following are semantically sets (a user appears at most once)
// but are exposed as slices in insertion order, which is what the profile
// page displays.
type User struct {
	ID             string    `json:"id"`
	Auth0ID        string    `json:"-"` // external subject, never exposed
	Username       string    `json:"username" validate:"required,min=3"`
	Email          string    `json:"email" validate:"required,email"`
	ProfilePicture string    `json:"profilePicture"`
	Bio            string    `json:"bio"`
	TotalCatches   int       `json:"totalCatches"` // stored but not maintained by any operation yet
	FavoriteSpots  []Spot    `json:"favoriteSpots"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// Populated by profile queries only; nil on bare lookups.
	Followers []UserSummary `json:"followers,omitempty"`
	Following []UserSummary `json:"following,omitempty"`
}

// Spot is a named favorite location on a user's profile.
type Spot struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
}

// Coordinates is a latitude/longitude pair, shared by spots and session
// locations.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UserSummary is the projection used wherever a user is referenced from
// another record (followers, likes, comment authors, session owners).
type UserSummary struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

// ProfileUpdate carries a partial profile edit. Nil fields are left
// unchanged; only these three fields are editable.
type ProfileUpdate struct {
	Username       *string `json:"username"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profilePicture"`
}
