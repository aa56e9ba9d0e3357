package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/spearo/internal/apperror"
	"github.com/sakif/spearo/internal/model"
	"github.com/sakif/spearo/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// Create inserts a new user, generating the internal ID and timestamps.
// Username, email, and auth0_id uniqueness violations come back as
// validation errors naming the field.
func (r *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (id, auth0_id, username, email, profile_picture, bio, total_catches, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Auth0ID,
		user.Username,
		user.Email,
		user.ProfilePicture,
		user.Bio,
		user.TotalCatches,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if uniqueErr := translateUnique(err); uniqueErr != nil {
			return uniqueErr
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	for _, spot := range user.FavoriteSpots {
		_, err = r.conn.ExecContext(ctx,
			`INSERT INTO favorite_spots (user_id, name, lat, lng) VALUES (?, ?, ?, ?)`,
			user.ID, spot.Name, spot.Coordinates.Lat, spot.Coordinates.Lng,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting favorite spot for user %s: %w", user.ID, err)
		}
	}

	return nil
}

// GetByID retrieves a user by internal ID, with favorite spots but without
// the follow lists (see GetProfile for the expanded form).
func (r *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, `WHERE id = ?`, id)
}

// GetByAuth0ID retrieves a user by external identity. This is the identity
// resolver's lookup path.
func (r *UserDB) GetByAuth0ID(ctx context.Context, auth0ID string) (*model.User, error) {
	return r.getUser(ctx, `WHERE auth0_id = ?`, auth0ID)
}

func (r *UserDB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, auth0_id, username, email, profile_picture, bio, total_catches, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Auth0ID,
		&u.Username,
		&u.Email,
		&u.ProfilePicture,
		&u.Bio,
		&u.TotalCatches,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	spots, err := r.favoriteSpots(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.FavoriteSpots = spots

	return &u, nil
}

func (r *UserDB) favoriteSpots(ctx context.Context, userID string) ([]model.Spot, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT name, lat, lng FROM favorite_spots WHERE user_id = ? ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorite spots for %s: %w", userID, err)
	}
	defer rows.Close()

	spots := []model.Spot{}
	for rows.Next() {
		var s model.Spot
		if err := rows.Scan(&s.Name, &s.Coordinates.Lat, &s.Coordinates.Lng); err != nil {
			return nil, fmt.Errorf("sqlite: scanning favorite spot: %w", err)
		}
		spots = append(spots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favorite spots: %w", err)
	}
	return spots, nil
}

// GetProfile returns the user with followers and following expanded to
// {id, username, profilePicture} summaries, in the order the edges were
// created.
func (r *UserDB) GetProfile(ctx context.Context, id string) (*model.User, error) {
	u, err := r.getUser(ctx, `WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}

	u.Followers, err = r.followSummaries(ctx,
		`SELECT u.id, u.username, u.profile_picture
		 FROM follows f JOIN users u ON u.id = f.follower_id
		 WHERE f.followee_id = ? ORDER BY f.rowid`, id)
	if err != nil {
		return nil, err
	}

	u.Following, err = r.followSummaries(ctx,
		`SELECT u.id, u.username, u.profile_picture
		 FROM follows f JOIN users u ON u.id = f.followee_id
		 WHERE f.follower_id = ? ORDER BY f.rowid`, id)
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (r *UserDB) followSummaries(ctx context.Context, query, userID string) ([]model.UserSummary, error) {
	rows, err := r.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying follow edges for %s: %w", userID, err)
	}
	defer rows.Close()

	summaries := []model.UserSummary{}
	for rows.Next() {
		var s model.UserSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.ProfilePicture); err != nil {
			return nil, fmt.Errorf("sqlite: scanning follow summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating follow edges: %w", err)
	}
	return summaries, nil
}

// UpdateProfile applies a partial edit of username, bio, and profile picture.
// Nil fields are left unchanged. Returns the updated profile with follow
// lists expanded.
func (r *UserDB) UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		existing.Username = *update.Username
	}
	if update.Bio != nil {
		existing.Bio = *update.Bio
	}
	if update.ProfilePicture != nil {
		existing.ProfilePicture = *update.ProfilePicture
	}

	_, err = r.conn.ExecContext(ctx,
		`UPDATE users SET username = ?, bio = ?, profile_picture = ?, updated_at = ? WHERE id = ?`,
		existing.Username,
		existing.Bio,
		existing.ProfilePicture,
		time.Now(),
		id,
	)
	if err != nil {
		if uniqueErr := translateUnique(err); uniqueErr != nil {
			return nil, uniqueErr
		}
		return nil, fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}

	return r.GetProfile(ctx, id)
}

// Follow inserts the actor→target edge. A duplicate insert violates the
// composite primary key and surfaces as ErrAlreadyFollowing; callers that
// want an explicit pre-check use IsFollowing first.
func (r *UserDB) Follow(ctx context.Context, actorID, targetID string) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, ?)`,
		actorID, targetID, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyFollowing(targetID)
		}
		return fmt.Errorf("sqlite: following %s -> %s: %w", actorID, targetID, err)
	}
	return nil
}

// Unfollow removes the actor→target edge. Removing an absent edge is a
// no-op, not an error.
func (r *UserDB) Unfollow(ctx context.Context, actorID, targetID string) error {
	_, err := r.conn.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`,
		actorID, targetID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: unfollowing %s -> %s: %w", actorID, targetID, err)
	}
	return nil
}

// IsFollowing reports whether actorID currently follows targetID.
func (r *UserDB) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	var n int
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followee_id = ?`,
		actorID, targetID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking follow edge: %w", err)
	}
	return n > 0, nil
}

// Following returns the IDs of everyone userID follows, in edge-creation
// order. The feed composer unions this with the user's own ID.
func (r *UserDB) Following(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT followee_id FROM follows WHERE follower_id = ? ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing following for %s: %w", userID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning followee id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating following: %w", err)
	}
	return ids, nil
}
