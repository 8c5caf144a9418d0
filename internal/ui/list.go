package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/mixtape/internal/models"
)

var (
	_ list.Item = trackItem{}
)

// trackItem wraps [models.Track] to implement list.Item.
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }

func (i trackItem) Title() string {
	if !i.track.Playable() {
		return fmt.Sprintf("%s (unavailable)", i.track.Title)
	}
	return i.track.Title
}

func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	if i.track.Duration != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Duration)
	}
	return desc
}

// newTrackList builds a list component over tracks with the given title.
func newTrackList(title string, tracks []models.Track, width, height int) list.Model {
	items := make([]list.Item, len(tracks))
	for i, track := range tracks {
		items[i] = trackItem{track: track}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetShowHelp(false)
	return l
}
