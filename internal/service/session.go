package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sakif/spearo/internal/apperror"
	"github.com/sakif/spearo/internal/model"
	"github.com/sakif/spearo/internal/repository"
)

// SessionService handles session logging, likes, and comments.
type SessionService struct {
	sessions repository.SessionRepository
	validate *validator.Validate
	logger   *slog.Logger
}

func NewSessionService(sessions repository.SessionRepository, logger *slog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		validate: validator.New(),
		logger:   logger,
	}
}

// Create validates and stores a new session. The owner is always the
// authenticated caller — any user value in the payload is ignored, so a
// client cannot log a session as someone else.
func (s *SessionService) Create(ctx context.Context, ownerID string, input model.SessionInput) (*model.Session, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, apperror.ValidationFailed("user", "session owner is required")
	}

	if err := s.validate.Struct(input); err != nil {
		return nil, translateValidation(err)
	}

	session := &model.Session{
		UserID:     ownerID,
		Date:       input.Date,
		Location:   input.Location,
		Catches:    input.Catches,
		Conditions: input.Conditions,
		Notes:      input.Notes,
	}
	if session.Catches == nil {
		session.Catches = []model.Catch{}
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		s.logger.Error("failed to create session",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Info("session created",
		slog.String("id", session.ID),
		slog.String("ownerID", ownerID),
		slog.Int("catches", len(session.Catches)),
	)
	return session, nil
}

// Get returns the session with owner, likes, and comment authors expanded.
func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "session ID is required")
	}
	return s.sessions.GetByID(ctx, id)
}

// ListByUser returns all sessions owned by userID, newest date first.
func (s *SessionService) ListByUser(ctx context.Context, userID string) ([]model.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}
	return s.sessions.ListByUser(ctx, userID)
}

// ToggleLike flips the actor's like on the session: one call likes, the
// next unlikes. Returns the updated session.
func (s *SessionService) ToggleLike(ctx context.Context, sessionID, actorID string) (*model.Session, error) {
	liked, err := s.sessions.ToggleLike(ctx, sessionID, actorID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("like toggled",
		slog.String("sessionID", sessionID),
		slog.String("actorID", actorID),
		slog.Bool("liked", liked),
	)
	return s.sessions.GetByID(ctx, sessionID)
}

// AddComment appends a comment to the session's thread and returns the
// session with comment authors expanded. The text is stored verbatim —
// no length cap, no filtering.
func (s *SessionService) AddComment(ctx context.Context, sessionID, actorID, text string) (*model.Session, error) {
	comment := &model.Comment{
		UserID: actorID,
		Text:   text,
	}
	if err := s.sessions.AddComment(ctx, sessionID, comment); err != nil {
		return nil, err
	}

	s.logger.Info("comment added",
		slog.String("sessionID", sessionID),
		slog.String("actorID", actorID),
	)
	return s.sessions.GetByID(ctx, sessionID)
}

// translateValidation converts a validator error into the domain's
// validation error, keeping the first failing field for the response.
func translateValidation(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.ValidationFailed(fe.Field(),
			fmt.Sprintf("field '%s' failed validation on '%s'", fe.Field(), fe.Tag()))
	}
	return apperror.ValidationFailed("", err.Error())
}
