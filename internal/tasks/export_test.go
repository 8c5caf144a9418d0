package tasks

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/shared"
)

type fakeArtwork struct {
	coverURL string
	calls    int
}

func (f *fakeArtwork) Lookup(_ context.Context, trackID string) *models.Track {
	f.calls++
	return &models.Track{ID: trackID, CoverURL: f.coverURL}
}

func setupStore(t *testing.T) *repositories.Store {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return repositories.NewStore(db, shared.NewLogger(io.Discard))
}

func seedCollections(t *testing.T, store *repositories.Store) models.Playlist {
	t.Helper()
	ctx := context.Background()

	playlist, err := store.CreatePlaylist(ctx, models.Playlist{Name: "Road Trip"})
	if err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}

	track := models.Track{
		ID:         "101",
		Title:      "Highway",
		Artist:     "Driver",
		CoverURL:   "https://img/101/100x100bb.jpg",
		PreviewURL: "https://cdn/101.m4a",
	}
	if _, err := store.AddSongToPlaylist(ctx, models.NewPlaylistSong(playlist.ID, track)); err != nil {
		t.Fatalf("failed to add playlist song: %v", err)
	}
	if _, err := store.AddSongToLibrary(ctx, models.NewLibraryEntry(track)); err != nil {
		t.Fatalf("failed to add library song: %v", err)
	}

	return playlist
}

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("writes playlist, library and manifest files", func(t *testing.T) {
		store := setupStore(t)
		playlist := seedCollections(t, store)

		engine := NewExportEngine(store, nil, shared.NewLogger(io.Discard))
		outputDir := t.TempDir()

		result, err := engine.Export(ctx, nil, ExportOpts{OutputDir: outputDir})
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}

		// favorites + the seeded playlist
		if result.TotalPlaylists != 2 {
			t.Errorf("expected 2 playlists, got %d", result.TotalPlaylists)
		}
		if result.SuccessfulExports != 2 || result.FailedExports != 0 {
			t.Errorf("expected 2 successes, got %+v", result)
		}
		if result.LibrarySongs != 1 {
			t.Errorf("expected 1 library song, got %d", result.LibrarySongs)
		}

		data, err := os.ReadFile(filepath.Join(outputDir, playlist.ID+".json"))
		if err != nil {
			t.Fatalf("missing playlist backup: %v", err)
		}

		var backup struct {
			Playlist models.Playlist       `json:"playlist"`
			Songs    []models.PlaylistSong `json:"songs"`
		}
		if err := json.Unmarshal(data, &backup); err != nil {
			t.Fatalf("failed to decode backup: %v", err)
		}
		if backup.Playlist.Name != "Road Trip" || len(backup.Songs) != 1 {
			t.Errorf("unexpected backup contents: %+v", backup)
		}

		if _, err := os.Stat(filepath.Join(outputDir, "library.json")); err != nil {
			t.Error("missing library backup")
		}
		if _, err := os.Stat(filepath.Join(outputDir, "export_manifest.json")); err != nil {
			t.Error("missing manifest")
		}
	})

	t.Run("refreshes artwork through the catalog", func(t *testing.T) {
		store := setupStore(t)
		playlist := seedCollections(t, store)

		artwork := &fakeArtwork{coverURL: "https://img/101/600x600bb.jpg"}
		engine := NewExportEngine(store, artwork, shared.NewLogger(io.Discard))
		outputDir := t.TempDir()

		_, err := engine.Export(ctx, nil, ExportOpts{
			OutputDir:      outputDir,
			RefreshArtwork: true,
			RateLimit:      1000,
		})
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if artwork.calls != 1 {
			t.Errorf("expected 1 artwork lookup, got %d", artwork.calls)
		}

		data, _ := os.ReadFile(filepath.Join(outputDir, playlist.ID+".json"))
		var backup struct {
			Songs []models.PlaylistSong `json:"songs"`
		}
		if err := json.Unmarshal(data, &backup); err != nil {
			t.Fatalf("failed to decode backup: %v", err)
		}
		if backup.Songs[0].CoverURL != artwork.coverURL {
			t.Errorf("expected refreshed artwork, got %s", backup.Songs[0].CoverURL)
		}
	})

	t.Run("writes CSV backups when requested", func(t *testing.T) {
		store := setupStore(t)
		playlist := seedCollections(t, store)

		engine := NewExportEngine(store, nil, shared.NewLogger(io.Discard))
		outputDir := t.TempDir()

		result, err := engine.Export(ctx, nil, ExportOpts{OutputDir: outputDir, Format: FormatCSV})
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if result.SuccessfulExports != 2 {
			t.Errorf("expected 2 successes, got %+v", result)
		}

		data, err := os.ReadFile(filepath.Join(outputDir, playlist.ID+".csv"))
		if err != nil {
			t.Fatalf("missing CSV backup: %v", err)
		}
		output := string(data)
		if !strings.Contains(output, "SongID,Title,Artist") || !strings.Contains(output, "Highway") {
			t.Errorf("unexpected CSV contents: %s", output)
		}

		// library and manifest stay JSON regardless of playlist format
		if _, err := os.Stat(filepath.Join(outputDir, "library.json")); err != nil {
			t.Error("missing library backup")
		}
	})

	t.Run("rejects an unknown format", func(t *testing.T) {
		store := setupStore(t)
		engine := NewExportEngine(store, nil, shared.NewLogger(io.Discard))

		if _, err := engine.Export(ctx, nil, ExportOpts{OutputDir: t.TempDir(), Format: "yaml"}); err == nil {
			t.Fatal("expected an error for an unsupported format")
		}
	})

	t.Run("reports progress without blocking", func(t *testing.T) {
		store := setupStore(t)
		seedCollections(t, store)

		engine := NewExportEngine(store, nil, shared.NewLogger(io.Discard))

		// unbuffered and never drained: sendProgress must drop, not block
		progress := make(chan ProgressUpdate)

		if _, err := engine.Export(ctx, progress, ExportOpts{OutputDir: t.TempDir()}); err != nil {
			t.Fatalf("export failed: %v", err)
		}
	})
}
