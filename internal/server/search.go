package server

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/models"
)

// defaultSearchLimit matches the catalog client's own batch size.
const defaultSearchLimit = 25

// SearchHandler serves pass-through catalog queries. Upstream failures are
// absorbed by the catalog client, so these endpoints return empty result sets
// rather than errors.
type SearchHandler struct {
	catalog Catalog
	logger  *log.Logger
}

// Routes implements [Handler].
func (h *SearchHandler) Routes() []string {
	return []string{
		"GET /api/search",
		"GET /api/itunes/search",
		"GET /api/itunes/lookup/{id}",
		"GET /api/itunes/artist/{artist}",
		"GET /api/itunes/genre/{genre}",
	}
}

func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case "GET /api/search":
		h.search(w, r, r.URL.Query().Get("q"))
	case "GET /api/itunes/search":
		h.search(w, r, r.URL.Query().Get("term"))
	case "GET /api/itunes/lookup/{id}":
		h.lookup(w, r)
	case "GET /api/itunes/artist/{artist}":
		tracks := h.catalog.SearchByArtist(r.Context(), r.PathValue("artist"), parseLimit(r))
		writeJSON(w, http.StatusOK, tracks)
	case "GET /api/itunes/genre/{genre}":
		tracks := h.catalog.SearchByGenre(r.Context(), r.PathValue("genre"), parseLimit(r))
		writeJSON(w, http.StatusOK, tracks)
	default:
		http.NotFound(w, r)
	}
}

func (h *SearchHandler) search(w http.ResponseWriter, r *http.Request, term string) {
	if term == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Search query is required"})
		return
	}

	tracks := h.catalog.Search(r.Context(), term, parseLimit(r))
	writeJSON(w, http.StatusOK, tracks)
}

func (h *SearchHandler) lookup(w http.ResponseWriter, r *http.Request) {
	track := h.catalog.Lookup(r.Context(), r.PathValue("id"))
	if track == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Track not found"})
		return
	}
	writeJSON(w, http.StatusOK, track)
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultSearchLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > models.MaxSongLimit {
		return defaultSearchLimit
	}
	return limit
}
