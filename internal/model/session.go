package model

import "time"

// Session represents one logged spearfishing outing: where, in what
// conditions, and what was caught.
//
// The owning user is fixed at creation and never reassigned. Likes are a set
// with toggle semantics (present means "liked"); comments are append-only and
// never edited or removed. Both are returned in insertion order.
type Session struct {
	ID         string        `json:"id"`
	UserID     string        `json:"userId"`
	User       *UserSummary  `json:"user,omitempty"` // owner projection, populated by queries
	Date       time.Time     `json:"date" validate:"required"`
	Location   Location      `json:"location"`
	Catches    []Catch       `json:"catches" validate:"dive"`
	Conditions Conditions    `json:"conditions"`
	Notes      string        `json:"notes"`
	Likes      []UserSummary `json:"likes"`
	Comments   []Comment     `json:"comments"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// Location is where the session took place.
type Location struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
}

// Catch is one recorded capture within a session.
type Catch struct {
	Species string  `json:"species" validate:"required"`
	Size    float64 `json:"size"`   // cm
	Weight  float64 `json:"weight"` // kg
	Photo   string  `json:"photo"`
}

// Conditions describes the water and weather during the session.
// Visibility is a 1-5 scale; zero means not recorded.
type Conditions struct {
	Visibility int     `json:"visibility" validate:"omitempty,min=1,max=5"`
	WaterTemp  float64 `json:"waterTemp"` // °C
	Tide       string  `json:"tide" validate:"omitempty,oneof=low rising high falling"`
	Weather    string  `json:"weather"`
}

// Comment is one entry in a session's comment thread. CreatedAt is the
// server time at append.
type Comment struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	User      *UserSummary `json:"user,omitempty"` // author projection
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"createdAt"`
}

// SessionInput is the client payload for creating a session. The owner is
// never taken from the payload — it always comes from the authenticated
// caller.
type SessionInput struct {
	Date       time.Time  `json:"date" validate:"required"`
	Location   Location   `json:"location"`
	Catches    []Catch    `json:"catches" validate:"dive"`
	Conditions Conditions `json:"conditions"`
	Notes      string     `json:"notes"`
}
