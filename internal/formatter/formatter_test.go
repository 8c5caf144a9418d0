package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
)

func testBackup() (models.Playlist, []models.PlaylistSong) {
	playlist := models.Playlist{
		ID:          "pl1",
		Name:        "Road Trip",
		Description: "Songs for the highway",
	}
	songs := []models.PlaylistSong{
		{
			ID:       "m1",
			SongID:   "101",
			Title:    "Song One",
			Artist:   "Artist One",
			Album:    "Album One",
			Duration: "3:05",
			AddedAt:  time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:      "m2",
			SongID:  "102",
			Title:   "Song Two",
			Artist:  "Artist Two",
			AddedAt: time.Date(2026, 1, 16, 10, 0, 0, 0, time.UTC),
		},
	}
	return playlist, songs
}

func TestFormatters(t *testing.T) {
	t.Run("PlaylistToCSV", func(t *testing.T) {
		playlist, songs := testBackup()

		data, err := PlaylistToCSV(playlist, songs)
		if err != nil {
			t.Fatalf("PlaylistToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "SongID,Title,Artist,Album,Duration,AddedAt") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "101,Song One,Artist One,Album One,3:05,2026-01-15T10:00:00Z") {
			t.Errorf("CSV missing first song row, got: %s", output)
		}
		if !strings.Contains(output, "102,Song Two,Artist Two") {
			t.Errorf("CSV missing second song row, got: %s", output)
		}
	})

	t.Run("PlaylistToMarkdown", func(t *testing.T) {
		playlist, songs := testBackup()

		output := string(PlaylistToMarkdown(playlist, songs, "cover.jpg"))

		if !strings.Contains(output, "# Road Trip") {
			t.Errorf("Markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "![Cover](cover.jpg)") {
			t.Errorf("Markdown missing cover image reference")
		}
		if !strings.Contains(output, "**Description**: Songs for the highway") {
			t.Errorf("Markdown missing description")
		}
		if !strings.Contains(output, "**Songs**: 2") {
			t.Errorf("Markdown missing song count")
		}
		if !strings.Contains(output, "1. Artist One - Song One (Album One) [3:05]") {
			t.Errorf("Markdown missing full song line, got: %s", output)
		}
		if !strings.Contains(output, "2. Artist Two - Song Two\n") {
			t.Errorf("Markdown should omit empty album and duration, got: %s", output)
		}
	})

	t.Run("PlaylistToMarkdown without image", func(t *testing.T) {
		playlist, songs := testBackup()

		output := string(PlaylistToMarkdown(playlist, songs, ""))

		if strings.Contains(output, "![Cover]") {
			t.Errorf("Markdown should omit cover image reference, got: %s", output)
		}
	})

	t.Run("PlaylistToText", func(t *testing.T) {
		playlist, songs := testBackup()

		output := string(PlaylistToText(playlist, songs))

		if !strings.Contains(output, "Playlist: Road Trip") {
			t.Errorf("text missing playlist name, got: %s", output)
		}
		if !strings.Contains(output, "Songs: 2") {
			t.Errorf("text missing song count")
		}
		if !strings.Contains(output, "1. Artist One - Song One") {
			t.Errorf("text missing song line, got: %s", output)
		}
	})
}
