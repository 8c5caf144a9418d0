package repositories

import (
	"context"
	"fmt"
	"sort"

	"github.com/desertthunder/mixtape/internal/models"
)

// GetSongs merges library and playlist-membership rows into the unified feed.
//
// When a single source is queried, filtering and pagination happen in SQL.
// When both sources are unified, each source is fetched unpaginated, the
// combined set is sorted globally by addedAt descending, and pagination is
// applied once to the merged sequence — paginating per source first would
// produce incorrect global slices.
func (s *Store) GetSongs(ctx context.Context, query models.SongQuery) ([]models.SongDetails, error) {
	s.ensureDefaultPlaylist(ctx)

	merged := query.Source == models.SourceAll
	results := []models.SongDetails{}

	if query.Source == models.SourceLibrary || merged {
		rows, err := s.queryLibraryDetails(ctx, query, !merged)
		if err != nil {
			return nil, err
		}
		results = append(results, rows...)
	}

	if query.Source == models.SourcePlaylist || merged {
		rows, err := s.queryPlaylistDetails(ctx, query, !merged)
		if err != nil {
			return nil, err
		}
		results = append(results, rows...)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AddedAt.After(results[j].AddedAt)
	})

	if merged {
		start := query.Offset
		if start > len(results) {
			start = len(results)
		}
		end := start + query.Limit
		if end > len(results) {
			end = len(results)
		}
		results = results[start:end]
	}

	return results, nil
}

func (s *Store) queryLibraryDetails(ctx context.Context, query models.SongQuery, paginate bool) ([]models.SongDetails, error) {
	sqlQuery := `
		SELECT id, song_id, title, artist, album, cover_url, preview_url, duration, added_at
		FROM library_songs
	`
	args := []any{}

	if query.Search != "" {
		sqlQuery += " WHERE (title LIKE ? OR artist LIKE ? OR album LIKE ?)"
		pattern := "%" + query.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	sqlQuery += " ORDER BY added_at DESC"

	if paginate {
		sqlQuery += " LIMIT ? OFFSET ?"
		args = append(args, query.Limit, query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query library songs: %w", err)
	}
	defer rows.Close()

	details := []models.SongDetails{}
	for rows.Next() {
		entry, err := scanLibraryEntry(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, models.SongDetails{
			ID:         entry.ID,
			SongID:     entry.SongID,
			Title:      entry.Title,
			Artist:     entry.Artist,
			Album:      entry.Album,
			CoverURL:   entry.CoverURL,
			PreviewURL: entry.PreviewURL,
			Duration:   entry.Duration,
			AddedAt:    entry.AddedAt,
			Source:     models.SourceLibrary,
		})
	}

	return details, rows.Err()
}

func (s *Store) queryPlaylistDetails(ctx context.Context, query models.SongQuery, paginate bool) ([]models.SongDetails, error) {
	sqlQuery := `
		SELECT id, playlist_id, song_id, title, artist, album, cover_url, preview_url, duration, added_at
		FROM playlist_songs
	`
	conditions := []string{}
	args := []any{}

	if query.PlaylistID != "" {
		conditions = append(conditions, "playlist_id = ?")
		args = append(args, query.PlaylistID)
	}
	if query.Search != "" {
		conditions = append(conditions, "(title LIKE ? OR artist LIKE ? OR album LIKE ?)")
		pattern := "%" + query.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	for i, cond := range conditions {
		if i == 0 {
			sqlQuery += " WHERE " + cond
		} else {
			sqlQuery += " AND " + cond
		}
	}

	sqlQuery += " ORDER BY added_at DESC"

	if paginate {
		sqlQuery += " LIMIT ? OFFSET ?"
		args = append(args, query.Limit, query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	details := []models.SongDetails{}
	for rows.Next() {
		song, err := scanPlaylistSong(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, models.SongDetails{
			ID:         song.ID,
			SongID:     song.SongID,
			Title:      song.Title,
			Artist:     song.Artist,
			Album:      song.Album,
			CoverURL:   song.CoverURL,
			PreviewURL: song.PreviewURL,
			Duration:   song.Duration,
			AddedAt:    song.AddedAt,
			Source:     models.SourcePlaylist,
			PlaylistID: song.PlaylistID,
		})
	}

	return details, rows.Err()
}
