package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// GetLibrarySongs retrieves all library entries ordered by addition time descending.
func (s *Store) GetLibrarySongs(ctx context.Context) ([]models.LibraryEntry, error) {
	s.ensureDefaultPlaylist(ctx)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, song_id, title, artist, album, cover_url, preview_url, duration, added_at
		FROM library_songs
		ORDER BY added_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query library songs: %w", err)
	}
	defer rows.Close()

	entries := []models.LibraryEntry{}
	for rows.Next() {
		entry, err := scanLibraryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// AddSongToLibrary inserts a denormalized track copy into the library.
//
// The store enforces no duplicate invariant here; duplicate checks happen at
// the query layer before insert.
func (s *Store) AddSongToLibrary(ctx context.Context, entry models.LibraryEntry) (models.LibraryEntry, error) {
	s.ensureDefaultPlaylist(ctx)

	if entry.SongID == "" || entry.Title == "" || entry.Artist == "" {
		return models.LibraryEntry{}, fmt.Errorf("%w: songId, title and artist are required", shared.ErrInvalidInput)
	}

	entry.ID = shared.GenerateID()
	entry.AddedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO library_songs (id, song_id, title, artist, album, cover_url, preview_url, duration, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.SongID,
		entry.Title,
		entry.Artist,
		nullable(entry.Album),
		entry.CoverURL,
		nullable(entry.PreviewURL),
		nullable(entry.Duration),
		entry.AddedAt,
	)
	if err != nil {
		return models.LibraryEntry{}, fmt.Errorf("failed to insert library song: %w", err)
	}

	return entry, nil
}

// RemoveSongFromLibrary deletes a library entry by its row id.
func (s *Store) RemoveSongFromLibrary(ctx context.Context, id string) error {
	s.ensureDefaultPlaylist(ctx)

	if _, err := s.db.ExecContext(ctx, "DELETE FROM library_songs WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete library song: %w", err)
	}

	return nil
}

// IsSongInLibrary reports whether a catalog track is already saved to the library.
func (s *Store) IsSongInLibrary(ctx context.Context, songID string) (bool, error) {
	s.ensureDefaultPlaylist(ctx)

	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM library_songs WHERE song_id = ?)", songID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check library song: %w", err)
	}

	return exists, nil
}

func scanLibraryEntry(row scanner) (models.LibraryEntry, error) {
	var (
		entry      models.LibraryEntry
		album      sql.NullString
		previewURL sql.NullString
		duration   sql.NullString
	)

	err := row.Scan(
		&entry.ID,
		&entry.SongID,
		&entry.Title,
		&entry.Artist,
		&album,
		&entry.CoverURL,
		&previewURL,
		&duration,
		&entry.AddedAt,
	)
	if err != nil {
		return models.LibraryEntry{}, fmt.Errorf("failed to scan library song: %w", err)
	}

	entry.Album = album.String
	entry.PreviewURL = previewURL.String
	entry.Duration = duration.String

	return entry, nil
}
