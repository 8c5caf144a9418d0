package shared

import "fmt"

var (
	// Persistence errors
	ErrPlaylistNotFound  = fmt.Errorf("playlist not found")
	ErrSongNotFound      = fmt.Errorf("song not found")
	ErrDuplicateSong     = fmt.Errorf("song already exists in this playlist")
	ErrProtectedPlaylist = fmt.Errorf("cannot delete the default Favorites playlist")

	// Catalog errors are absorbed at the client boundary and only surface in logs
	ErrUpstream = fmt.Errorf("catalog request failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
