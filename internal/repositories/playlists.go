package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// PlaylistUpdate carries the mutable playlist fields for a partial update.
// Nil pointers leave the stored value untouched.
type PlaylistUpdate struct {
	Name        *string
	Description *string
	CoverURL    *string
	IsFavorite  *bool
}

// GetPlaylists retrieves all playlists ordered by creation time descending.
func (s *Store) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	s.ensureDefaultPlaylist(ctx)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, cover_url, is_favorite, created_at, updated_at
		FROM playlists
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []models.Playlist{}
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// GetPlaylist retrieves a playlist by id.
func (s *Store) GetPlaylist(ctx context.Context, id string) (models.Playlist, error) {
	s.ensureDefaultPlaylist(ctx)

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, cover_url, is_favorite, created_at, updated_at
		FROM playlists
		WHERE id = ?
	`, id)

	playlist, err := scanPlaylist(row)
	if err == sql.ErrNoRows {
		return models.Playlist{}, shared.ErrPlaylistNotFound
	}
	if err != nil {
		return models.Playlist{}, err
	}

	return playlist, nil
}

// CreatePlaylist inserts a new playlist with a generated id and timestamps.
func (s *Store) CreatePlaylist(ctx context.Context, playlist models.Playlist) (models.Playlist, error) {
	s.ensureDefaultPlaylist(ctx)

	if playlist.Name == "" {
		return models.Playlist{}, fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}

	playlist.ID = shared.GenerateID()
	now := time.Now().UTC()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, name, description, cover_url, is_favorite, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		playlist.ID,
		playlist.Name,
		nullable(playlist.Description),
		nullable(playlist.CoverURL),
		playlist.IsFavorite,
		playlist.CreatedAt,
		playlist.UpdatedAt,
	)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("failed to insert playlist: %w", err)
	}

	return playlist, nil
}

// UpdatePlaylist applies a partial update and returns the stored playlist.
func (s *Store) UpdatePlaylist(ctx context.Context, id string, update PlaylistUpdate) (models.Playlist, error) {
	s.ensureDefaultPlaylist(ctx)

	current, err := s.GetPlaylist(ctx, id)
	if err != nil {
		return models.Playlist{}, err
	}

	if update.Name != nil {
		current.Name = *update.Name
	}
	if update.Description != nil {
		current.Description = *update.Description
	}
	if update.CoverURL != nil {
		current.CoverURL = *update.CoverURL
	}
	if update.IsFavorite != nil {
		current.IsFavorite = *update.IsFavorite
	}
	current.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE playlists
		SET name = ?, description = ?, cover_url = ?, is_favorite = ?, updated_at = ?
		WHERE id = ?
	`,
		current.Name,
		nullable(current.Description),
		nullable(current.CoverURL),
		current.IsFavorite,
		current.UpdatedAt,
		id,
	)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("failed to update playlist: %w", err)
	}

	return current, nil
}

// DeletePlaylist removes a playlist and, via the schema's cascade, all of its
// memberships. Deleting the Favorites playlist is forbidden.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	s.ensureDefaultPlaylist(ctx)

	if id == FavoritesPlaylistID {
		return shared.ErrProtectedPlaylist
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return shared.ErrPlaylistNotFound
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row scanner) (models.Playlist, error) {
	var (
		playlist    models.Playlist
		description sql.NullString
		coverURL    sql.NullString
	)

	err := row.Scan(
		&playlist.ID,
		&playlist.Name,
		&description,
		&coverURL,
		&playlist.IsFavorite,
		&playlist.CreatedAt,
		&playlist.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Playlist{}, err
	}
	if err != nil {
		return models.Playlist{}, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist.Description = description.String
	playlist.CoverURL = coverURL.String

	return playlist, nil
}
