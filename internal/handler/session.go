package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/spearo/internal/auth"
	"github.com/sakif/spearo/internal/model"
	"github.com/sakif/spearo/internal/service"
)

// SessionHandler serves session logging, likes, comments, and the feed.
//
// Routes (all behind RequireAuth):
//
//	POST /api/sessions               → log a new session
//	GET  /api/sessions/feed          → home feed (followees + self, newest 20)
//	GET  /api/sessions/{id}          → one session, references expanded
//	GET  /api/sessions/user/{userId} → a user's sessions, newest first
//	POST /api/sessions/{id}/like     → toggle the caller's like
//	POST /api/sessions/{id}/comment  → append a comment
type SessionHandler struct {
	sessions *service.SessionService
	feed     *service.FeedService
	logger   *slog.Logger
}

func NewSessionHandler(sessions *service.SessionService, feed *service.FeedService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		feed:     feed,
		logger:   logger,
	}
}

// HandleCreate logs a new session owned by the authenticated caller. The
// payload cannot set the owner.
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	var input model.SessionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid session JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	session, err := h.sessions.Create(r.Context(), actorID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListByUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *SessionHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	sessions, err := h.feed.GetFeed(r.Context(), actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// HandleToggleLike flips the caller's like on the session and returns the
// updated session.
func (h *SessionHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	session, err := h.sessions.ToggleLike(r.Context(), r.PathValue("id"), actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type commentRequest struct {
	Text string `json:"text"`
}

func (h *SessionHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid comment JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	session, err := h.sessions.AddComment(r.Context(), r.PathValue("id"), actorID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
