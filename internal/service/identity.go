// Package service contains the business logic layer.
//
// Handlers parse HTTP and write responses; services enforce the rules and
// orchestrate; repositories read and write the store. Services accept
// primitives and return domain errors (apperror), never HTTP types — the
// handler layer translates both ways. Every service takes its repository as
// an interface so tests can substitute in-memory mocks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/spearo/internal/apperror"
	"github.com/sakif/spearo/internal/model"
	"github.com/sakif/spearo/internal/repository"
)

// IdentityService maps verified external identities to local users, creating
// one on first sight.
type IdentityService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewIdentityService(users repository.UserRepository, logger *slog.Logger) *IdentityService {
	return &IdentityService{
		users:  users,
		logger: logger,
	}
}

// Resolve returns the local user for the given external identity, lazily
// provisioning one if none exists.
//
// The derived username is the nickname when present, otherwise the local
// part of the email (the substring before '@'). A username or email that
// collides with an existing, different user propagates as a validation
// error — there is no automatic de-duplication policy; the calling layer
// decides how to resolve it.
//
// The unique index on the external ID guarantees at most one user is ever
// created per identity, even under concurrent first logins: the loser of
// the race falls back to the lookup.
func (s *IdentityService) Resolve(ctx context.Context, externalID, email, nickname string) (*model.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperror.ValidationFailed("externalId", "external identity is required")
	}

	user, err := s.users.GetByAuth0ID(ctx, externalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/identity: looking up %s: %w", externalID, err)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	username := strings.TrimSpace(nickname)
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	if len(username) < 3 {
		return nil, apperror.ValidationFailed("username", "username must be at least 3 characters")
	}

	user = &model.User{
		Auth0ID:       externalID,
		Username:      username,
		Email:         email,
		FavoriteSpots: []model.Spot{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a concurrent first-login race on the same identity: the
		// other request created the row, use it.
		if errors.Is(err, apperror.ErrValidation) {
			if existing, lookupErr := s.users.GetByAuth0ID(ctx, externalID); lookupErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}

	s.logger.Info("user provisioned",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}
