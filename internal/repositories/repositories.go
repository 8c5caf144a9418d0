// package repositories provides the persistence layer for playlists, library
// entries and playlist memberships.
//
// A single [Store] owns the database handle. Every operation runs the
// default-playlist bootstrap first: the protected Favorites playlist is
// inserted lazily on first use and can never be deleted.
package repositories

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/shared"
)

// FavoritesPlaylistID is the well-known id of the system-managed Favorites playlist.
const FavoritesPlaylistID = "liked-songs-default"

// Store implements CRUD over playlists, library songs and playlist songs.
type Store struct {
	db     *sql.DB
	logger *log.Logger

	mu     sync.Mutex
	seeded bool
}

// NewStore creates a Store with the given database connection.
func NewStore(db *sql.DB, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{db: db, logger: logger}
}

// ensureDefaultPlaylist inserts the Favorites playlist row if and only if it
// is absent. Success is remembered in-process so subsequent calls
// short-circuit. Insert failures are logged and swallowed: the system
// continues without a guaranteed Favorites playlist rather than failing the
// caller's request.
func (s *Store) ensureDefaultPlaylist(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM playlists WHERE id = ?)", FavoritesPlaylistID,
	).Scan(&exists)
	if err != nil {
		s.logger.Warn("failed to check for default playlist", "error", err)
		return
	}

	if !exists {
		now := time.Now().UTC()
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO playlists (id, name, description, cover_url, is_favorite, created_at, updated_at)
			VALUES (?, ?, ?, NULL, 1, ?, ?)
		`, FavoritesPlaylistID, "Favorite", "Your favorite songs", now, now)
		if err != nil {
			s.logger.Warn("failed to create default playlist", "error", err)
			return
		}
	}

	s.seeded = true
}

// nullable converts an optional string field to its SQL representation.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
