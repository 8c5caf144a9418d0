package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/player"
	"github.com/desertthunder/mixtape/internal/repositories"
)

// searchResultLimit caps catalog searches issued from the TUI.
const searchResultLimit = 25

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	LibraryView
	NowPlayingView
)

// Catalog is the slice of the catalog client the search view uses.
type Catalog interface {
	Search(ctx context.Context, term string, limit int) []models.Track
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	catalog    Catalog
	store      *repositories.Store
	controller *player.Controller
	notices    <-chan player.Notice

	width  int
	height int

	searchInput   textinput.Model
	searching     bool
	resultList    list.Model
	results       []models.Track
	libraryList   list.Model
	library       []models.Track
	queueList     list.Model
	status        string
	statusExpires time.Time

	help help.Model
	keys keyMap
}

type searchResultsMsg struct {
	tracks []models.Track
}

type libraryFetchedMsg struct {
	tracks []models.Track
	err    error
}

type savedToLibraryMsg struct {
	track models.Track
	err   error
}

type noticeMsg player.Notice

type tickMsg time.Time

// NewModel creates a new TUI model with the provided dependencies. notices
// carries transient playback signals out of the controller; pass the channel
// the controller's Notifier writes to.
func NewModel(ctx context.Context, catalog Catalog, store *repositories.Store, controller *player.Controller, notices <-chan player.Notice) *Model {
	searchInput := textinput.New()
	searchInput.Placeholder = "Search songs, artists, albums..."
	searchInput.CharLimit = 120

	return &Model{
		ctx:         ctx,
		view:        SearchView,
		catalog:     catalog,
		store:       store,
		controller:  controller,
		notices:     notices,
		searchInput: searchInput,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init loads the library and starts the notice and progress loops.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchLibrary(), m.waitForNotice(), m.tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case searchResultsMsg:
		m.searching = false
		m.results = msg.tracks
		m.resultList = newTrackList("Results", msg.tracks, m.width-4, m.listHeight())
		return m, nil

	case libraryFetchedMsg:
		if msg.err != nil {
			return m, m.setStatus(styles.err.Render(fmt.Sprintf("Library error: %v", msg.err)))
		}
		m.library = msg.tracks
		m.libraryList = newTrackList("Library", msg.tracks, m.width-4, m.listHeight())
		return m, nil

	case savedToLibraryMsg:
		if msg.err != nil {
			return m, tea.Batch(
				m.setStatus(styles.err.Render(fmt.Sprintf("Save failed: %v", msg.err))),
				m.fetchLibrary(),
			)
		}
		return m, tea.Batch(
			m.setStatus(styles.ok.Render(fmt.Sprintf("Saved '%s' to library", msg.track.Title))),
			m.fetchLibrary(),
		)

	case noticeMsg:
		var rendered string
		switch msg.Kind {
		case player.NoticeUnavailable:
			rendered = styles.warn.Render(msg.Message)
		default:
			rendered = styles.ok.Render(msg.Message)
		}
		return m, tea.Batch(m.setStatus(rendered), m.waitForNotice())

	case tickMsg:
		if time.Now().After(m.statusExpires) {
			m.status = ""
		}
		if m.view == NowPlayingView {
			m.refreshQueue()
		}
		return m, m.tick()
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case SearchView:
		body = m.renderSearch()
	case LibraryView:
		body = m.renderLibrary()
	case NowPlayingView:
		body = m.renderNowPlaying()
	}

	footer := m.renderStatusBar()
	return fmt.Sprintf("%s\n%s", body, footer)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// the search input swallows every key while focused
	if m.view == SearchView && m.searchInput.Focused() {
		switch msg.String() {
		case "enter":
			m.searchInput.Blur()
			term := m.searchInput.Value()
			if term == "" {
				return m, nil
			}
			m.searching = true
			return m, m.search(term)
		case "esc":
			m.searchInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.view = (m.view + 1) % 3
		if m.view == NowPlayingView {
			m.refreshQueue()
		}
		return m, nil
	case "/":
		m.view = SearchView
		m.searchInput.Focus()
		return m, textinput.Blink
	case " ":
		m.controller.TogglePlay()
		return m, nil
	case "right", ">":
		m.controller.PlayNext()
		return m, nil
	case "left", "<":
		m.controller.PlayPrevious()
		return m, nil
	case "+", "=":
		m.controller.SetVolume(m.controller.Volume() + 0.1)
		return m, nil
	case "-":
		m.controller.SetVolume(m.controller.Volume() - 0.1)
		return m, nil
	case "enter":
		if track, context, ok := m.selectedTrack(); ok {
			m.controller.Play(track, context)
		}
		return m, nil
	case "n":
		if track, _, ok := m.selectedTrack(); ok {
			m.controller.AddToQueueNext(track)
		}
		return m, nil
	case "l":
		if track, _, ok := m.selectedTrack(); ok {
			m.controller.AddToQueueLater(track)
		}
		return m, nil
	case "s":
		if track, _, ok := m.selectedTrack(); ok {
			return m, m.saveToLibrary(track)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// selectedTrack resolves the highlighted track and its surrounding list,
// which becomes the playback context.
func (m *Model) selectedTrack() (models.Track, []models.Track, bool) {
	var selected list.Item
	var context []models.Track

	switch m.view {
	case SearchView:
		selected = m.resultList.SelectedItem()
		context = m.results
	case LibraryView:
		selected = m.libraryList.SelectedItem()
		context = m.library
	default:
		return models.Track{}, nil, false
	}

	if selected == nil {
		return models.Track{}, nil, false
	}
	item, ok := selected.(trackItem)
	if !ok {
		return models.Track{}, nil, false
	}
	return item.track, context, true
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.resultList, cmd = m.resultList.Update(msg)
	case LibraryView:
		m.libraryList, cmd = m.libraryList.Update(msg)
	case NowPlayingView:
		m.queueList, cmd = m.queueList.Update(msg)
	}
	return m, cmd
}

func (m *Model) search(term string) tea.Cmd {
	return func() tea.Msg {
		return searchResultsMsg{tracks: m.catalog.Search(m.ctx, term, searchResultLimit)}
	}
}

func (m *Model) fetchLibrary() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.store.GetLibrarySongs(m.ctx)
		if err != nil {
			return libraryFetchedMsg{err: err}
		}

		tracks := make([]models.Track, len(entries))
		for i, entry := range entries {
			tracks[i] = entry.Track()
		}
		return libraryFetchedMsg{tracks: tracks}
	}
}

func (m *Model) saveToLibrary(track models.Track) tea.Cmd {
	return func() tea.Msg {
		_, err := m.store.AddSongToLibrary(m.ctx, models.NewLibraryEntry(track))
		return savedToLibraryMsg{track: track, err: err}
	}
}

func (m *Model) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		notice, ok := <-m.notices
		if !ok {
			return nil
		}
		return noticeMsg(notice)
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) setStatus(s string) tea.Cmd {
	m.status = s
	m.statusExpires = time.Now().Add(3 * time.Second)
	return nil
}

func (m *Model) refreshQueue() {
	queue := m.controller.Queue()
	m.queueList = newTrackList("Up Next", queue, m.width-4, m.listHeight())
}

func (m *Model) resizeLists() {
	height := m.listHeight()
	m.resultList.SetSize(m.width-4, height)
	m.libraryList.SetSize(m.width-4, height)
	m.queueList.SetSize(m.width-4, height)
}

func (m *Model) listHeight() int {
	h := m.height - 10
	if h < 5 {
		h = 5
	}
	return h
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Search")
	if m.searching {
		return fmt.Sprintf("%s\n%s\n\nSearching...", title, m.searchInput.View())
	}
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.searchInput.View(), m.resultList.View())
}

func (m *Model) renderLibrary() string {
	title := styles.title.Render("Library")
	return fmt.Sprintf("%s\n%s", title, m.libraryList.View())
}

func (m *Model) renderNowPlaying() string {
	title := styles.title.Render("Now Playing")

	current := m.controller.Current()
	if current == nil {
		return fmt.Sprintf("%s\nNothing playing\n\n%s", title, m.queueList.View())
	}

	position, duration := m.controller.Progress()
	state := "⏸"
	if m.controller.IsPlaying() {
		state = "▶"
	}

	info := fmt.Sprintf(
		"%s %s — %s\n%s / %s  vol %.0f%%",
		state,
		current.Title,
		current.Artist,
		formatSeconds(position),
		formatSeconds(duration),
		m.controller.Volume()*100,
	)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, m.queueList.View())
}

func (m *Model) renderStatusBar() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.status != "" {
		return fmt.Sprintf("%s\n%s", m.status, helpView)
	}
	return helpView
}

func formatSeconds(s float64) string {
	total := int(s)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
