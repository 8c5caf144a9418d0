// package formatter renders playlist backups in human-readable formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
)

// PlaylistToCSV renders a playlist's songs as CSV with columns: SongID, Title, Artist, Album, Duration, AddedAt
func PlaylistToCSV(playlist models.Playlist, songs []models.PlaylistSong) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"SongID", "Title", "Artist", "Album", "Duration", "AddedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		record := []string{
			song.SongID,
			song.Title,
			song.Artist,
			song.Album,
			song.Duration,
			song.AddedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PlaylistToMarkdown renders a playlist and its songs as a Markdown document
// with an optional cover image reference.
func PlaylistToMarkdown(playlist models.Playlist, songs []models.PlaylistSong, imageFilename string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", playlist.Name))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", playlist.Description))
	}

	buf.WriteString(fmt.Sprintf("**Songs**: %d\n\n", len(songs)))

	buf.WriteString("## Songs\n\n")
	for i, song := range songs {
		albumPart := ""
		if song.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", song.Album)
		}
		durationPart := ""
		if song.Duration != "" {
			durationPart = fmt.Sprintf(" [%s]", song.Duration)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s%s\n", i+1, song.Artist, song.Title, albumPart, durationPart))
	}

	return buf.Bytes()
}

// PlaylistToText renders a playlist and its songs as plain text.
func PlaylistToText(playlist models.Playlist, songs []models.PlaylistSong) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", playlist.Name))
	if playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", playlist.Description))
	}
	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", len(songs)))

	for i, song := range songs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, song.Artist, song.Title))
	}

	return buf.Bytes()
}
