package service

import (
	"context"
	"log/slog"

	"github.com/sakif/spearo/internal/model"
	"github.com/sakif/spearo/internal/repository"
)

// FeedService composes the home feed from the follow graph and session
// history. It is read-only: it owns no state and writes nothing.
type FeedService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	logger   *slog.Logger
}

func NewFeedService(users repository.UserRepository, sessions repository.SessionRepository, logger *slog.Logger) *FeedService {
	return &FeedService{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// GetFeed returns the sessions authored by the actor's followees plus the
// actor themselves, newest date first, capped at the fixed feed limit.
// There is no cursor: calling again returns the same top entries until new
// sessions are logged.
func (s *FeedService) GetFeed(ctx context.Context, actorID string) ([]model.Session, error) {
	// Confirms the actor exists before composing.
	if _, err := s.users.GetByID(ctx, actorID); err != nil {
		return nil, err
	}

	following, err := s.users.Following(ctx, actorID)
	if err != nil {
		return nil, err
	}

	authors := append(following, actorID)
	return s.sessions.Feed(ctx, authors, repository.FeedLimit)
}
