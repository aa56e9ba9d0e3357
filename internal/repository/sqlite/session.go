package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/spearo/internal/apperror"
	"github.com/sakif/spearo/internal/model"
	"github.com/sakif/spearo/internal/repository"
)

// compile-time check that *DB implements repository.SessionRepository
var _ repository.SessionRepository = (*SessionDB)(nil)

// Create inserts a session and its catches in one transaction. The caller
// (the service layer) has already forced UserID to the authenticated owner
// and validated the payload.
func (r *SessionDB) Create(ctx context.Context, session *model.Session) error {
	session.ID = xid.New().String()
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning session insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, date, location_name, location_lat, location_lng,
		                       visibility, water_temp, tide, weather, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.Date,
		session.Location.Name,
		session.Location.Coordinates.Lat,
		session.Location.Coordinates.Lng,
		session.Conditions.Visibility,
		session.Conditions.WaterTemp,
		session.Conditions.Tide,
		session.Conditions.Weather,
		session.Notes,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting session: %w", err)
	}

	for _, c := range session.Catches {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO catches (session_id, species, size_cm, weight_kg, photo)
			 VALUES (?, ?, ?, ?, ?)`,
			session.ID, c.Species, c.Size, c.Weight, c.Photo,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting catch for session %s: %w", session.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing session insert: %w", err)
	}

	if session.Likes == nil {
		session.Likes = []model.UserSummary{}
	}
	if session.Comments == nil {
		session.Comments = []model.Comment{}
	}
	return nil
}

// GetByID returns the session with its owner, likes, and comment authors
// expanded to {id, username, profilePicture} summaries.
func (r *SessionDB) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var (
		s     model.Session
		owner model.UserSummary
	)
	err := r.conn.QueryRowContext(ctx,
		`SELECT s.id, s.user_id, s.date, s.location_name, s.location_lat, s.location_lng,
		        s.visibility, s.water_temp, s.tide, s.weather, s.notes, s.created_at, s.updated_at,
		        u.username, u.profile_picture
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.id = ?`,
		id,
	).Scan(
		&s.ID, &s.UserID, &s.Date,
		&s.Location.Name, &s.Location.Coordinates.Lat, &s.Location.Coordinates.Lng,
		&s.Conditions.Visibility, &s.Conditions.WaterTemp, &s.Conditions.Tide, &s.Conditions.Weather,
		&s.Notes, &s.CreatedAt, &s.UpdatedAt,
		&owner.Username, &owner.ProfilePicture,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", id, err)
	}
	owner.ID = s.UserID
	s.User = &owner

	if s.Catches, err = r.sessionCatches(ctx, s.ID); err != nil {
		return nil, err
	}
	if s.Likes, err = r.sessionLikes(ctx, s.ID); err != nil {
		return nil, err
	}
	if s.Comments, err = r.sessionComments(ctx, s.ID); err != nil {
		return nil, err
	}

	return &s, nil
}

// ListByUser returns all sessions owned by userID, newest date first, with
// the owner expanded. Likes and comments come back as membership lists, same
// as GetByID.
func (r *SessionDB) ListByUser(ctx context.Context, userID string) ([]model.Session, error) {
	return r.querySessions(ctx,
		`SELECT s.id, s.user_id, s.date, s.location_name, s.location_lat, s.location_lng,
		        s.visibility, s.water_temp, s.tide, s.weather, s.notes, s.created_at, s.updated_at,
		        u.username, u.profile_picture
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.user_id = ?
		 ORDER BY s.date DESC`,
		userID,
	)
}

// Feed returns sessions authored by any of authorIDs, newest date first,
// capped at limit.
func (r *SessionDB) Feed(ctx context.Context, authorIDs []string, limit int) ([]model.Session, error) {
	if len(authorIDs) == 0 {
		return []model.Session{}, nil
	}
	if limit <= 0 {
		limit = repository.FeedLimit
	}

	placeholders := strings.Repeat("?,", len(authorIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(authorIDs)+1)
	for _, id := range authorIDs {
		args = append(args, id)
	}
	args = append(args, limit)

	return r.querySessions(ctx,
		`SELECT s.id, s.user_id, s.date, s.location_name, s.location_lat, s.location_lng,
		        s.visibility, s.water_temp, s.tide, s.weather, s.notes, s.created_at, s.updated_at,
		        u.username, u.profile_picture
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.user_id IN (`+placeholders+`)
		 ORDER BY s.date DESC
		 LIMIT ?`,
		args...,
	)
}

func (r *SessionDB) querySessions(ctx context.Context, query string, args ...any) ([]model.Session, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying sessions: %w", err)
	}
	defer rows.Close()

	sessions := []model.Session{}
	for rows.Next() {
		var (
			s     model.Session
			owner model.UserSummary
		)
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Date,
			&s.Location.Name, &s.Location.Coordinates.Lat, &s.Location.Coordinates.Lng,
			&s.Conditions.Visibility, &s.Conditions.WaterTemp, &s.Conditions.Tide, &s.Conditions.Weather,
			&s.Notes, &s.CreatedAt, &s.UpdatedAt,
			&owner.Username, &owner.ProfilePicture,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning session row: %w", err)
		}
		owner.ID = s.UserID
		s.User = &owner
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating sessions: %w", err)
	}

	// Child rows fetched per session. Feed and per-user lists are capped
	// small, so the extra round trips stay bounded.
	for i := range sessions {
		if sessions[i].Catches, err = r.sessionCatches(ctx, sessions[i].ID); err != nil {
			return nil, err
		}
		if sessions[i].Likes, err = r.sessionLikes(ctx, sessions[i].ID); err != nil {
			return nil, err
		}
		if sessions[i].Comments, err = r.sessionComments(ctx, sessions[i].ID); err != nil {
			return nil, err
		}
	}

	return sessions, nil
}

func (r *SessionDB) sessionCatches(ctx context.Context, sessionID string) ([]model.Catch, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT species, size_cm, weight_kg, photo FROM catches WHERE session_id = ? ORDER BY rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing catches for %s: %w", sessionID, err)
	}
	defer rows.Close()

	catches := []model.Catch{}
	for rows.Next() {
		var c model.Catch
		if err := rows.Scan(&c.Species, &c.Size, &c.Weight, &c.Photo); err != nil {
			return nil, fmt.Errorf("sqlite: scanning catch: %w", err)
		}
		catches = append(catches, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating catches: %w", err)
	}
	return catches, nil
}

func (r *SessionDB) sessionLikes(ctx context.Context, sessionID string) ([]model.UserSummary, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT u.id, u.username, u.profile_picture
		 FROM likes l JOIN users u ON u.id = l.user_id
		 WHERE l.session_id = ? ORDER BY l.rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing likes for %s: %w", sessionID, err)
	}
	defer rows.Close()

	likes := []model.UserSummary{}
	for rows.Next() {
		var s model.UserSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.ProfilePicture); err != nil {
			return nil, fmt.Errorf("sqlite: scanning like: %w", err)
		}
		likes = append(likes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating likes: %w", err)
	}
	return likes, nil
}

func (r *SessionDB) sessionComments(ctx context.Context, sessionID string) ([]model.Comment, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT c.id, c.user_id, c.text, c.created_at, u.username, u.profile_picture
		 FROM comments c JOIN users u ON u.id = c.user_id
		 WHERE c.session_id = ? ORDER BY c.rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for %s: %w", sessionID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var (
			c      model.Comment
			author model.UserSummary
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Text, &c.CreatedAt, &author.Username, &author.ProfilePicture); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		author.ID = c.UserID
		c.User = &author
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

// ToggleLike flips actorID's membership in the session's like set inside one
// transaction and reports the resulting state. Two toggles in sequence
// restore the starting membership.
func (r *SessionDB) ToggleLike(ctx context.Context, sessionID, actorID string) (bool, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning like toggle: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("sqlite: checking session %s: %w", sessionID, err)
	}
	if exists == 0 {
		return false, apperror.NotFound("session", sessionID)
	}

	var liked int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE session_id = ? AND user_id = ?`,
		sessionID, actorID,
	).Scan(&liked); err != nil {
		return false, fmt.Errorf("sqlite: checking like membership: %w", err)
	}

	nowLiked := liked == 0
	if nowLiked {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO likes (session_id, user_id, created_at) VALUES (?, ?, ?)`,
			sessionID, actorID, time.Now(),
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM likes WHERE session_id = ? AND user_id = ?`,
			sessionID, actorID,
		)
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: toggling like on %s: %w", sessionID, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ? WHERE id = ?`, time.Now(), sessionID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: touching session %s: %w", sessionID, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: committing like toggle: %w", err)
	}
	return nowLiked, nil
}

// AddComment appends a comment to the session's thread. Comments are
// append-only: nothing ever updates or deletes a row in the comments table.
func (r *SessionDB) AddComment(ctx context.Context, sessionID string, comment *model.Comment) error {
	var exists int
	if err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("sqlite: checking session %s: %w", sessionID, err)
	}
	if exists == 0 {
		return apperror.NotFound("session", sessionID)
	}

	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO comments (id, session_id, user_id, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		comment.ID, sessionID, comment.UserID, comment.Text, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment on %s: %w", sessionID, err)
	}

	_, err = r.conn.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ? WHERE id = ?`, comment.CreatedAt, sessionID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: touching session %s: %w", sessionID, err)
	}
	return nil
}
