package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/spearo/internal/apperror"
	"github.com/sakif/spearo/internal/model"
	"github.com/sakif/spearo/internal/repository"
)

// MinUsernameLength matches the schema constraint on stored usernames.
const MinUsernameLength = 3

// UserService handles profiles and the follow graph.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// GetProfile returns the user with followers and following expanded to
// summaries.
func (s *UserService) GetProfile(ctx context.Context, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetProfile(ctx, id)
}

// UpdateProfile applies a partial edit of username, bio, and profile
// picture. Nil fields stay untouched; a provided username is trimmed and
// re-validated against the minimum length, and uniqueness is enforced by
// the store. On any failure the stored profile is unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	if update.Username != nil {
		trimmed := strings.TrimSpace(*update.Username)
		if len(trimmed) < MinUsernameLength {
			return nil, apperror.ValidationFailed("username", "username must be at least 3 characters")
		}
		update.Username = &trimmed
	}

	user, err := s.users.UpdateProfile(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userID", id))
	return user, nil
}

// Follow adds target to actor's following (and actor to target's
// followers). Both users must exist; a duplicate follow fails with
// ErrAlreadyFollowing and leaves the graph unchanged.
func (s *UserService) Follow(ctx context.Context, actorID, targetID string) error {
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, actorID); err != nil {
		return err
	}

	following, err := s.users.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if following {
		return apperror.AlreadyFollowing(targetID)
	}

	if err := s.users.Follow(ctx, actorID, targetID); err != nil {
		return err
	}

	s.logger.Info("user followed",
		slog.String("actorID", actorID),
		slog.String("targetID", targetID),
	)
	return nil
}

// Unfollow removes target from actor's following. Both users must exist,
// but removing an absent edge is a silent no-op — unlike Follow's strict
// duplicate check, repeating an unfollow is not an error.
func (s *UserService) Unfollow(ctx context.Context, actorID, targetID string) error {
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, actorID); err != nil {
		return err
	}

	if err := s.users.Unfollow(ctx, actorID, targetID); err != nil {
		return err
	}

	s.logger.Info("user unfollowed",
		slog.String("actorID", actorID),
		slog.String("targetID", targetID),
	)
	return nil
}
