package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/mixtape/internal/formatter"
	"github.com/desertthunder/mixtape/internal/models"
)

// Supported playlist backup formats. The library and manifest are always JSON.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// ExportOpts contains configuration for a collection backup.
type ExportOpts struct {
	OutputDir      string  // Base output directory (default: mixtape_backup_{epoch})
	NumWorkers     int     // Concurrent playlist workers (default: 5, max 10)
	RateLimit      float64 // Artwork lookups per second (default: 5)
	RefreshArtwork bool    // Re-resolve cover URLs through the catalog
	Format         string  // Playlist file format (default: json)
}

// PlaylistExportResult records the outcome of a single playlist export.
type PlaylistExportResult struct {
	PlaylistID   string `json:"playlistId"`
	PlaylistName string `json:"playlistName"`
	Success      bool   `json:"success"`
	File         string `json:"file,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ExportResult summarizes a full backup run.
type ExportResult struct {
	TotalPlaylists    int                    `json:"totalPlaylists"`
	SuccessfulExports int                    `json:"successfulExports"`
	FailedExports     int                    `json:"failedExports"`
	LibrarySongs      int                    `json:"librarySongs"`
	OutputDirectory   string                 `json:"outputDirectory"`
	LibraryFile       string                 `json:"libraryFile"`
	ManifestPath      string                 `json:"manifestPath,omitempty"`
	Results           []PlaylistExportResult `json:"results"`
}

// playlistBackup is the on-disk shape of a single playlist export.
type playlistBackup struct {
	Playlist models.Playlist       `json:"playlist"`
	Songs    []models.PlaylistSong `json:"songs"`
}

type playlistExportJob struct {
	Playlist models.Playlist
	Songs    []models.PlaylistSong
}

// Export dumps every playlist (with its memberships) and the library to JSON
// files under opts.OutputDir, then writes a manifest summarizing the run.
//
// Playlists are written by a small worker pool. When artwork refresh is on,
// catalog lookups go through a rate limiter so a large collection cannot
// hammer the upstream API.
func (e *ExportEngine) Export(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("mixtape_backup_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	switch opts.Format {
	case "":
		opts.Format = FormatJSON
	case FormatJSON, FormatCSV, FormatMarkdown, FormatText:
	default:
		return nil, fmt.Errorf("unsupported export format: %s", opts.Format)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	e.sendProgress(prog, fetchPlaylistsUpdate(1, 2))
	playlists, err := e.store.GetPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}

	e.sendProgress(prog, fetchLibraryUpdate(2, 2))
	library, err := e.store.GetLibrarySongs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch library: %w", err)
	}

	result := &ExportResult{
		TotalPlaylists:  len(playlists),
		LibrarySongs:    len(library),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(playlists)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan playlistExportJob, len(playlists))
	results := make(chan PlaylistExportResult, len(playlists))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts, limiter)
	}

	go func() {
		defer close(jobs)
		for i, playlist := range playlists {
			select {
			case <-ctx.Done():
				return
			default:
			}

			songs, err := e.store.GetPlaylistSongs(ctx, playlist.ID)
			if err != nil {
				results <- PlaylistExportResult{
					PlaylistID:   playlist.ID,
					PlaylistName: playlist.Name,
					Error:        fmt.Sprintf("failed to fetch songs: %v", err),
				}
				continue
			}

			jobs <- playlistExportJob{Playlist: playlist, Songs: songs}
			e.sendProgress(prog, exportingPlaylistUpdate(i+1, len(playlists), playlist.Name))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(playlists), res.PlaylistName))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(playlists), res.PlaylistName, fmt.Errorf("%s", res.Error)))
		}
	}

	libraryPath := filepath.Join(opts.OutputDir, "library.json")
	if err := writeJSONFile(libraryPath, library); err != nil {
		return result, fmt.Errorf("failed to write library backup: %w", err)
	}
	result.LibraryFile = libraryPath

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	e.sendProgress(prog, manifestUpdate(manifestPath))
	if err := writeJSONFile(manifestPath, result); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	return result, nil
}

// exportWorker writes playlist backups from the jobs channel.
func (e *ExportEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan playlistExportJob,
	results chan<- PlaylistExportResult,
	opts ExportOpts,
	limiter *rate.Limiter,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportSinglePlaylist(ctx, job, opts, limiter)
	}
}

// exportSinglePlaylist writes one playlist's backup file, optionally
// refreshing each song's cover URL from the catalog.
func (e *ExportEngine) exportSinglePlaylist(
	ctx context.Context,
	job playlistExportJob,
	opts ExportOpts,
	limiter *rate.Limiter,
) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:   job.Playlist.ID,
		PlaylistName: job.Playlist.Name,
	}

	if opts.RefreshArtwork && e.artwork != nil {
		for i := range job.Songs {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
			if track := e.artwork.Lookup(ctx, job.Songs[i].SongID); track != nil && track.CoverURL != "" {
				job.Songs[i].CoverURL = track.CoverURL
			}
		}
	}

	data, ext, err := encodeBackup(opts.Format, job.Playlist, job.Songs)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	path := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.%s", job.Playlist.ID, ext))
	if err := os.WriteFile(path, data, 0644); err != nil {
		result.Error = fmt.Sprintf("failed to write backup file: %v", err)
		return result
	}

	result.File = path
	result.Success = true
	return result
}

// encodeBackup renders a playlist backup in the requested format and returns
// the data along with the file extension to use.
func encodeBackup(format string, playlist models.Playlist, songs []models.PlaylistSong) ([]byte, string, error) {
	switch format {
	case FormatCSV:
		data, err := formatter.PlaylistToCSV(playlist, songs)
		return data, "csv", err
	case FormatMarkdown:
		return formatter.PlaylistToMarkdown(playlist, songs, ""), "md", nil
	case FormatText:
		return formatter.PlaylistToText(playlist, songs), "txt", nil
	default:
		data, err := json.MarshalIndent(playlistBackup{Playlist: playlist, Songs: songs}, "", "  ")
		return data, "json", err
	}
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("JSON write failed: %w", err)
	}
	return nil
}
