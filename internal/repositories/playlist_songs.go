package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// GetPlaylistSongs retrieves a playlist's memberships ordered by addition time descending.
func (s *Store) GetPlaylistSongs(ctx context.Context, playlistID string) ([]models.PlaylistSong, error) {
	s.ensureDefaultPlaylist(ctx)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, playlist_id, song_id, title, artist, album, cover_url, preview_url, duration, added_at
		FROM playlist_songs
		WHERE playlist_id = ?
		ORDER BY added_at DESC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	songs := []models.PlaylistSong{}
	for rows.Next() {
		song, err := scanPlaylistSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// AddSongToPlaylist inserts a membership row.
//
// The (playlistId, songId) uniqueness invariant is checked explicitly before
// the insert so duplicates fail with [shared.ErrDuplicateSong] rather than a
// driver-specific constraint error; the schema's UNIQUE constraint remains as
// a backstop.
func (s *Store) AddSongToPlaylist(ctx context.Context, song models.PlaylistSong) (models.PlaylistSong, error) {
	s.ensureDefaultPlaylist(ctx)

	if song.PlaylistID == "" || song.SongID == "" || song.Title == "" || song.Artist == "" {
		return models.PlaylistSong{}, fmt.Errorf("%w: playlistId, songId, title and artist are required", shared.ErrInvalidInput)
	}

	if _, err := s.GetPlaylist(ctx, song.PlaylistID); err != nil {
		return models.PlaylistSong{}, err
	}

	exists, err := s.IsSongInPlaylist(ctx, song.PlaylistID, song.SongID)
	if err != nil {
		return models.PlaylistSong{}, err
	}
	if exists {
		return models.PlaylistSong{}, shared.ErrDuplicateSong
	}

	song.ID = shared.GenerateID()
	song.AddedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO playlist_songs (id, playlist_id, song_id, title, artist, album, cover_url, preview_url, duration, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		song.ID,
		song.PlaylistID,
		song.SongID,
		song.Title,
		song.Artist,
		nullable(song.Album),
		song.CoverURL,
		nullable(song.PreviewURL),
		nullable(song.Duration),
		song.AddedAt,
	)
	if err != nil {
		return models.PlaylistSong{}, fmt.Errorf("failed to insert playlist song: %w", err)
	}

	return song, nil
}

// RemoveSongFromPlaylist deletes a membership by its row id.
func (s *Store) RemoveSongFromPlaylist(ctx context.Context, id string) error {
	s.ensureDefaultPlaylist(ctx)

	if _, err := s.db.ExecContext(ctx, "DELETE FROM playlist_songs WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist song: %w", err)
	}

	return nil
}

// IsSongInPlaylist reports whether a catalog track is already in the playlist.
func (s *Store) IsSongInPlaylist(ctx context.Context, playlistID, songID string) (bool, error) {
	s.ensureDefaultPlaylist(ctx)

	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM playlist_songs WHERE playlist_id = ? AND song_id = ?)",
		playlistID, songID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check playlist song: %w", err)
	}

	return exists, nil
}

func scanPlaylistSong(row scanner) (models.PlaylistSong, error) {
	var (
		song       models.PlaylistSong
		album      sql.NullString
		previewURL sql.NullString
		duration   sql.NullString
	)

	err := row.Scan(
		&song.ID,
		&song.PlaylistID,
		&song.SongID,
		&song.Title,
		&song.Artist,
		&album,
		&song.CoverURL,
		&previewURL,
		&duration,
		&song.AddedAt,
	)
	if err != nil {
		return models.PlaylistSong{}, fmt.Errorf("failed to scan playlist song: %w", err)
	}

	song.Album = album.String
	song.PreviewURL = previewURL.String
	song.Duration = duration.String

	return song, nil
}
