package models

import (
	"fmt"
	"time"
)

// Track represents a playable song record from the external catalog.
//
// Immutable once fetched. An empty PreviewURL marks the track unplayable.
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	CoverURL   string `json:"coverUrl"`
	Duration   string `json:"duration,omitempty"` // display string "m:ss"
	PreviewURL string `json:"previewUrl,omitempty"`
}

// Playable reports whether the track has a preview clip to stream.
func (t Track) Playable() bool {
	return t.PreviewURL != ""
}

// Playlist represents a user-owned (or the protected Favorites) playlist.
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	IsFavorite  bool      `json:"isFavorite"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LibraryEntry is a denormalized copy of a track saved to the user's library.
type LibraryEntry struct {
	ID         string    `json:"id"`
	SongID     string    `json:"songId"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album,omitempty"`
	CoverURL   string    `json:"coverUrl"`
	PreviewURL string    `json:"previewUrl,omitempty"`
	Duration   string    `json:"duration,omitempty"`
	AddedAt    time.Time `json:"addedAt"`
}

// PlaylistSong is a track's membership in a specific playlist.
//
// A given (PlaylistID, SongID) pair is unique per playlist.
type PlaylistSong struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlistId"`
	SongID     string    `json:"songId"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album,omitempty"`
	CoverURL   string    `json:"coverUrl"`
	PreviewURL string    `json:"previewUrl,omitempty"`
	Duration   string    `json:"duration,omitempty"`
	AddedAt    time.Time `json:"addedAt"`
}

// Track converts a library entry back into the canonical track value.
func (e LibraryEntry) Track() Track {
	return Track{
		ID:         e.SongID,
		Title:      e.Title,
		Artist:     e.Artist,
		Album:      e.Album,
		CoverURL:   e.CoverURL,
		Duration:   e.Duration,
		PreviewURL: e.PreviewURL,
	}
}

// Track converts a playlist membership back into the canonical track value.
func (p PlaylistSong) Track() Track {
	return Track{
		ID:         p.SongID,
		Title:      p.Title,
		Artist:     p.Artist,
		Album:      p.Album,
		CoverURL:   p.CoverURL,
		Duration:   p.Duration,
		PreviewURL: p.PreviewURL,
	}
}

// NewLibraryEntry copies the track fields the library persists.
func NewLibraryEntry(t Track) LibraryEntry {
	return LibraryEntry{
		SongID:     t.ID,
		Title:      t.Title,
		Artist:     t.Artist,
		Album:      t.Album,
		CoverURL:   t.CoverURL,
		PreviewURL: t.PreviewURL,
		Duration:   t.Duration,
	}
}

// NewPlaylistSong copies the track fields a playlist membership persists.
func NewPlaylistSong(playlistID string, t Track) PlaylistSong {
	return PlaylistSong{
		PlaylistID: playlistID,
		SongID:     t.ID,
		Title:      t.Title,
		Artist:     t.Artist,
		Album:      t.Album,
		CoverURL:   t.CoverURL,
		PreviewURL: t.PreviewURL,
		Duration:   t.Duration,
	}
}

// Source identifies which collection a unified feed row came from.
type Source string

const (
	SourceLibrary  Source = "library"
	SourcePlaylist Source = "playlist"
	SourceAll      Source = "all"
)

// SongDetails is a row of the unified song feed across library and playlists.
type SongDetails struct {
	ID         string    `json:"id"`
	SongID     string    `json:"songId"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album,omitempty"`
	CoverURL   string    `json:"coverUrl"`
	PreviewURL string    `json:"previewUrl,omitempty"`
	Duration   string    `json:"duration,omitempty"`
	AddedAt    time.Time `json:"addedAt"`
	Source     Source    `json:"source"`
	PlaylistID string    `json:"playlistId,omitempty"`
}

const (
	DefaultSongLimit = 50
	MaxSongLimit     = 100
)

// SongQuery holds the validated parameters of a unified feed query.
type SongQuery struct {
	Source     Source
	PlaylistID string
	Search     string
	Limit      int
	Offset     int
}

// FieldError describes a single invalid query parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate normalizes defaults and returns the per-field problems, if any.
func (q *SongQuery) Validate() []FieldError {
	var errs []FieldError

	switch q.Source {
	case "":
		q.Source = SourceAll
	case SourceLibrary, SourcePlaylist, SourceAll:
	default:
		errs = append(errs, FieldError{Field: "source", Message: "must be one of library, playlist, all"})
	}

	if q.Limit == 0 {
		q.Limit = DefaultSongLimit
	}
	if q.Limit < 1 || q.Limit > MaxSongLimit {
		errs = append(errs, FieldError{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", MaxSongLimit)})
	}

	if q.Offset < 0 {
		errs = append(errs, FieldError{Field: "offset", Message: "must not be negative"})
	}

	return errs
}
