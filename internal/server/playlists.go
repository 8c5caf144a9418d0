package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
)

// PlaylistsHandler serves playlist CRUD and playlist-song memberships.
type PlaylistsHandler struct {
	store  *repositories.Store
	logger *log.Logger
}

// Routes implements [Handler].
func (h *PlaylistsHandler) Routes() []string {
	return []string{
		"GET /api/playlists",
		"POST /api/playlists",
		"GET /api/playlists/{id}",
		"PATCH /api/playlists/{id}",
		"DELETE /api/playlists/{id}",
		"GET /api/playlists/{id}/songs",
		"POST /api/playlists/{id}/songs",
		"GET /api/playlists/{id}/songs/check/{songId}",
		"DELETE /api/playlist-songs/{id}",
	}
}

func (h *PlaylistsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case "GET /api/playlists":
		h.list(w, r)
	case "POST /api/playlists":
		h.create(w, r)
	case "GET /api/playlists/{id}":
		h.get(w, r)
	case "PATCH /api/playlists/{id}":
		h.update(w, r)
	case "DELETE /api/playlists/{id}":
		h.delete(w, r)
	case "GET /api/playlists/{id}/songs":
		h.listSongs(w, r)
	case "POST /api/playlists/{id}/songs":
		h.addSong(w, r)
	case "GET /api/playlists/{id}/songs/check/{songId}":
		h.checkSong(w, r)
	case "DELETE /api/playlist-songs/{id}":
		h.removeSong(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *PlaylistsHandler) list(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.store.GetPlaylists(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (h *PlaylistsHandler) get(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.store.GetPlaylist(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (h *PlaylistsHandler) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		CoverURL    string `json:"coverUrl"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	playlist, err := h.store.CreatePlaylist(r.Context(), models.Playlist{
		Name:        body.Name,
		Description: body.Description,
		CoverURL:    body.CoverURL,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, playlist)
}

func (h *PlaylistsHandler) update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		CoverURL    *string `json:"coverUrl"`
		IsFavorite  *bool   `json:"isFavorite"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, h.logger, err)
		return
	}

	playlist, err := h.store.UpdatePlaylist(r.Context(), r.PathValue("id"), repositories.PlaylistUpdate{
		Name:        body.Name,
		Description: body.Description,
		CoverURL:    body.CoverURL,
		IsFavorite:  body.IsFavorite,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, playlist)
}

func (h *PlaylistsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePlaylist(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlaylistsHandler) listSongs(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.GetPlaylist(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	songs, err := h.store.GetPlaylistSongs(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func (h *PlaylistsHandler) addSong(w http.ResponseWriter, r *http.Request) {
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

	song, err := h.store.AddSongToPlaylist(r.Context(), models.PlaylistSong{
		PlaylistID: r.PathValue("id"),
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

	writeJSON(w, http.StatusCreated, song)
}

func (h *PlaylistsHandler) checkSong(w http.ResponseWriter, r *http.Request) {
	in, err := h.store.IsSongInPlaylist(r.Context(), r.PathValue("id"), r.PathValue("songId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"inPlaylist": in})
}

func (h *PlaylistsHandler) removeSong(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveSongFromPlaylist(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
