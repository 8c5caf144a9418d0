// package tasks implements long-running maintenance operations over the
// user's collections.
//
// The core abstraction is ExportEngine, which dumps playlists and the library
// to JSON backup files. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylists Phase = iota
	FetchLibrary
	ExportPlaylist
	RefreshArtwork
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchLibrary:
		return "fetch_library"
	case ExportPlaylist:
		return "export_playlist"
	case RefreshArtwork:
		return "refresh_artwork"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// ArtworkSource resolves a track's current catalog record, used to refresh
// stale cover URLs during export.
type ArtworkSource interface {
	Lookup(ctx context.Context, trackID string) *models.Track
}

// ExportEngine dumps the persisted collections to backup files.
type ExportEngine struct {
	store   *repositories.Store
	artwork ArtworkSource
	logger  *log.Logger
}

// NewExportEngine creates an ExportEngine. artwork may be nil, in which case
// cover URLs are exported as stored.
func NewExportEngine(store *repositories.Store, artwork ArtworkSource, logger *log.Logger) *ExportEngine {
	return &ExportEngine{store: store, artwork: artwork, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchPlaylistsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    step,
		Total:   total,
		Message: "Fetching playlists...",
	}
}

func fetchLibraryUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    step,
		Total:   total,
		Message: "Fetching library...",
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest: %s", path),
	}
}
