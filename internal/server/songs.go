package server

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
)

// SongsHandler serves the unified song feed across library and playlists.
type SongsHandler struct {
	store  *repositories.Store
	logger *log.Logger
}

// Routes implements [Handler].
func (h *SongsHandler) Routes() []string {
	return []string{"GET /api/songs"}
}

func (h *SongsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query, fieldErrs := parseSongQuery(r)
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid query parameters",
			Details: fieldErrs,
		})
		return
	}

	songs, err := h.store.GetSongs(r.Context(), query)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, songs)
}

// parseSongQuery reads and validates the feed parameters, collecting every
// problem rather than stopping at the first.
func parseSongQuery(r *http.Request) (models.SongQuery, []models.FieldError) {
	params := r.URL.Query()

	query := models.SongQuery{
		Source:     models.Source(params.Get("source")),
		PlaylistID: params.Get("playlistId"),
		Search:     params.Get("search"),
	}

	var errs []models.FieldError

	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, models.FieldError{Field: "limit", Message: "must be an integer"})
		} else {
			query.Limit = limit
		}
	}

	if raw := params.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, models.FieldError{Field: "offset", Message: "must be an integer"})
		} else {
			query.Offset = offset
		}
	}

	errs = append(errs, query.Validate()...)
	return query, errs
}
