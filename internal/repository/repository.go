// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage provides the real implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/spearo/internal/model"
)

// FeedLimit is the fixed cap on feed size. There is no cursor; repeated
// calls return the same top entries until new sessions are logged.
const FeedLimit = 20

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByAuth0ID(ctx context.Context, auth0ID string) (*model.User, error)

	// GetProfile returns the user with followers and following expanded to
	// summaries, in insertion order.
	GetProfile(ctx context.Context, id string) (*model.User, error)

	// UpdateProfile applies a partial edit (nil fields untouched).
	UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error)

	// Follow inserts the actor→target edge. IsFollowing reports whether the
	// edge exists; Unfollow removes it and is a no-op if absent.
	Follow(ctx context.Context, actorID, targetID string) error
	Unfollow(ctx context.Context, actorID, targetID string) error
	IsFollowing(ctx context.Context, actorID, targetID string) (bool, error)
	Following(ctx context.Context, userID string) ([]string, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error

	// GetByID returns the session with owner, likes, and comment authors
	// expanded to summaries.
	GetByID(ctx context.Context, id string) (*model.Session, error)

	// ListByUser returns all sessions owned by userID, newest date first,
	// with the owner expanded.
	ListByUser(ctx context.Context, userID string) ([]model.Session, error)

	// Feed returns sessions authored by any of authorIDs, newest date
	// first, capped at limit, with owners expanded.
	Feed(ctx context.Context, authorIDs []string, limit int) ([]model.Session, error)

	// ToggleLike flips actorID's membership in the session's like set and
	// reports whether the session is now liked by that user.
	ToggleLike(ctx context.Context, sessionID, actorID string) (bool, error)

	// AddComment appends a comment; CreatedAt and ID are filled in.
	AddComment(ctx context.Context, sessionID string, comment *model.Comment) error
}
