package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/spearo/internal/auth"
	"github.com/sakif/spearo/internal/model"
	"github.com/sakif/spearo/internal/service"
)

// UserHandler serves profiles and the follow graph.
//
// Routes (all behind RequireAuth):
//
//	GET  /api/users/profile/{id}   → profile with followers/following expanded
//	PUT  /api/users/profile/{id}   → partial profile update
//	POST /api/users/follow/{id}    → follow {id} as the authenticated user
//	POST /api/users/unfollow/{id}  → unfollow {id} (idempotent)
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateProfile applies a partial edit. Fields absent from the JSON
// body stay nil on ProfileUpdate and are left unchanged.
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update model.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("invalid profile update JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), r.PathValue("id"), update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	if err := h.users.Follow(r.Context(), actorID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully followed user"})
}

func (h *UserHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())

	if err := h.users.Unfollow(r.Context(), actorID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully unfollowed user"})
}
