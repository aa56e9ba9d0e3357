// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// SQLite is embedded — no separate database server — which keeps single-node
// deployments simple and lets tests run against ":memory:". We use
// modernc.org/sqlite (a pure Go translation of SQLite) so builds need no C
// compiler and cross-compile cleanly.
//
// The embedded collections of the domain model (catches, likes, comments,
// followers) are stored as child tables. Insertion order is the rowid order,
// which is what the API returns for likes, followers, and spots.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/sakif/spearo/internal/apperror"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// It is constructed once at startup, injected into the services, and closed
// on shutdown — there is no ambient global connection.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Surface a bad path or permissions problem now rather than on the
	// first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress — the request
	// handlers all share this pool.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite. The child tables (catches,
	// likes, comments, follows) rely on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers should defer this right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// UserDB and SessionDB expose the two repositories over the shared pool.
// Splitting them keeps each interface's method set on its own type while a
// single handle owns the connection lifecycle.
type UserDB struct {
	conn *sql.DB
}

type SessionDB struct {
	conn *sql.DB
}

// Users returns the user repository view of this handle.
func (db *DB) Users() *UserDB {
	return &UserDB{conn: db.conn}
}

// Sessions returns the session repository view of this handle.
func (db *DB) Sessions() *SessionDB {
	return &SessionDB{conn: db.conn}
}

func (db *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id              TEXT PRIMARY KEY,
			auth0_id        TEXT NOT NULL UNIQUE,
			username        TEXT NOT NULL UNIQUE,
			email           TEXT NOT NULL UNIQUE,
			profile_picture TEXT NOT NULL DEFAULT '',
			bio             TEXT NOT NULL DEFAULT '',
			total_catches   INTEGER NOT NULL DEFAULT 0,
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS favorite_spots (
			user_id TEXT NOT NULL REFERENCES users(id),
			name    TEXT NOT NULL DEFAULT '',
			lat     REAL NOT NULL DEFAULT 0,
			lng     REAL NOT NULL DEFAULT 0
		)`,
		// One row per edge: follower follows followee. The composite primary
		// key enforces set semantics, and a single row backs both the
		// "followers of A" and "following of B" views, so the graph cannot
		// go asymmetric.
		`CREATE TABLE IF NOT EXISTS follows (
			follower_id TEXT NOT NULL REFERENCES users(id),
			followee_id TEXT NOT NULL REFERENCES users(id),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (follower_id, followee_id)
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL REFERENCES users(id),
			date          DATETIME NOT NULL,
			location_name TEXT NOT NULL DEFAULT '',
			location_lat  REAL NOT NULL DEFAULT 0,
			location_lng  REAL NOT NULL DEFAULT 0,
			visibility    INTEGER NOT NULL DEFAULT 0,
			water_temp    REAL NOT NULL DEFAULT 0,
			tide          TEXT NOT NULL DEFAULT '',
			weather       TEXT NOT NULL DEFAULT '',
			notes         TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_date ON sessions(user_id, date)`,
		`CREATE TABLE IF NOT EXISTS catches (
			session_id TEXT NOT NULL REFERENCES sessions(id),
			species    TEXT NOT NULL,
			size_cm    REAL NOT NULL DEFAULT 0,
			weight_kg  REAL NOT NULL DEFAULT 0,
			photo      TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS likes (
			session_id TEXT NOT NULL REFERENCES sessions(id),
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (session_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id),
			user_id    TEXT NOT NULL REFERENCES users(id),
			text       TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_session ON comments(session_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite doesn't export a typed constraint error, so we match
// the driver's message, which embeds the SQLite error text verbatim.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translateUnique maps a UNIQUE constraint failure on the users table to a
// validation error naming the offending field. Username and email uniqueness
// are schema constraints, so the translation happens here, at the layer that
// sees the driver error.
func translateUnique(err error) error {
	if !isUniqueViolation(err) {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.username"):
		return apperror.ValidationFailed("username", "username is already taken")
	case strings.Contains(msg, "users.email"):
		return apperror.ValidationFailed("email", "email is already registered")
	case strings.Contains(msg, "users.auth0_id"):
		return apperror.ValidationFailed("auth0Id", "account already exists")
	}
	return apperror.ValidationFailed("", "duplicate value violates a unique constraint")
}
