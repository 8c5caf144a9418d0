package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
)

// LibraryHandler serves the user's saved-song library.
type LibraryHandler struct {
	store  *repositories.Store
	logger *log.Logger
}

// Routes implements [Handler].
func (h *LibraryHandler) Routes() []string {
	return []string{
		"GET /api/library/songs",
		"POST /api/library/songs",
		"DELETE /api/library/songs/{id}",
		"GET /api/library/songs/check/{songId}",
	}
}

func (h *LibraryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case "GET /api/library/songs":
		h.list(w, r)
	case "POST /api/library/songs":
		h.add(w, r)
	case "DELETE /api/library/songs/{id}":
		h.remove(w, r)
	case "GET /api/library/songs/check/{songId}":
		h.check(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *LibraryHandler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.GetLibrarySongs(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *LibraryHandler) add(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SongID     string `json:"songId"`
		Title      string `json:"title"`
		Artist     string `json:"artist"`
		Album      string `json:"album"`
		CoverURL   string `json:"coverUrl"`
		PreviewURL string `json:"previewUrl"`
		Duration   string `json:"duration"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	entry, err := h.store.AddSongToLibrary(r.Context(), models.LibraryEntry{
		SongID:     body.SongID,
		Title:      body.Title,
		Artist:     body.Artist,
		Album:      body.Album,
		CoverURL:   body.CoverURL,
		PreviewURL: body.PreviewURL,
		Duration:   body.Duration,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *LibraryHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveSongFromLibrary(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) check(w http.ResponseWriter, r *http.Request) {
	in, err := h.store.IsSongInLibrary(r.Context(), r.PathValue("songId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"inLibrary": in})
}
