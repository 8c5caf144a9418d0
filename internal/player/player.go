// package player implements the playback controller: transport state, the
// explicit play-next queue, context navigation and the autoplay fallback.
package player

import (
	"context"
	"math/rand"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// fallbackFetchLimit is the batch size requested when autoplay runs out of
// queue and context and has to pull fresh tracks from the catalog.
const fallbackFetchLimit = 25

// forwardTopics seeds the fallback fetch when navigation advances past the
// end of the active context.
var forwardTopics = []string{
	"Arijit Singh",
	"Neha Kakkar",
	"Badshah",
	"Dua Lipa",
	"Punjabi songs",
	"Tamil songs",
	"Telugu songs",
	"Marathi songs",
	"Sidhu Moose Wala",
	"Honey Singh",
}

// backwardTopics seeds the fallback fetch when navigation underflows the
// start of the active context.
var backwardTopics = []string{
	"AR Rahman",
	"Shreya Ghoshal",
	"Devi Sri Prasad",
	"Anirudh",
	"Indian classical",
	"Bollywood songs",
	"Kannada music",
	"Malayalam music",
	"Rana Daggubati",
	"Vishal Bhardwaj",
}

// Sink is the audio output the controller drives. Implementations must be
// safe to call from the controller's goroutine and from their own end-of-track
// callback delivery.
type Sink interface {
	Load(url string) error
	Play()
	Pause()
	Stop()
	Seek(seconds float64) error
	SetVolume(v float64)
	SetOnEnded(fn func())
	Position() float64
	Duration() float64
}

// Searcher is the slice of the catalog client the fallback fetch needs.
type Searcher interface {
	Search(ctx context.Context, term string, limit int) []models.Track
}

// NoticeKind classifies transient user-visible notices.
type NoticeKind string

const (
	NoticeUnavailable NoticeKind = "unavailable"
	NoticeQueued      NoticeKind = "queued"
)

// Notice is a transient, non-fatal signal surfaced to the user.
type Notice struct {
	Kind    NoticeKind
	Track   models.Track
	Message string
}

// Notifier receives transient notices. Implementations must not call back
// into the controller.
type Notifier interface {
	Notify(notice Notice)
}

// NotifierFunc adapts a function to the [Notifier] interface.
type NotifierFunc func(Notice)

// Notify implements [Notifier].
func (f NotifierFunc) Notify(notice Notice) { f(notice) }

// Controller owns all playback state. Every transition runs under a single
// mutex, so callbacks and user actions serialize; the fallback fetch is the
// only asynchronous step and its continuation re-validates a generation
// counter before touching state.
type Controller struct {
	mu sync.Mutex

	sink     Sink
	searcher Searcher
	notifier Notifier
	logger   *log.Logger

	current  *models.Track
	playing  bool
	progress float64
	duration float64
	volume   float64
	queue    []models.Track
	context  []models.Track
	index    int

	// generation tags in-flight fallback fetches; a continuation whose tag
	// is stale by the time it resolves is discarded.
	generation uint64
}

// NewController wires the controller to its sink and registers the
// end-of-track callback. The callback goes through PlayNext, which reads
// queue and context at call time rather than capturing them here.
func NewController(sink Sink, searcher Searcher, notifier Notifier, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	c := &Controller{
		sink:     sink,
		searcher: searcher,
		notifier: notifier,
		logger:   logger,
		volume:   1.0,
		index:    -1,
	}
	sink.SetOnEnded(c.PlayNext)
	return c
}

// Play starts playback of track. When newContext is given it replaces the
// active context; otherwise the current context is kept. Tracks without a
// preview URL are refused with an unavailable notice and no state change.
func (c *Controller) Play(track models.Track, newContext ...[]models.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++

	if len(newContext) > 0 {
		c.play(track, newContext[0], true)
	} else {
		c.play(track, nil, false)
	}
}

// play is the locked transition shared by every path that starts a track.
func (c *Controller) play(track models.Track, newContext []models.Track, replaceContext bool) {
	if !track.Playable() {
		c.notify(Notice{Kind: NoticeUnavailable, Track: track, Message: "This song is unavailable"})
		return
	}

	if replaceContext {
		c.context = newContext
	}

	// Position the cursor at the track's place in the context; when the
	// track isn't part of the context the cursor is left where it was.
	for i, t := range c.context {
		if t.ID == track.ID {
			c.index = i
			break
		}
	}

	if c.current != nil && c.current.ID == track.ID {
		c.sink.Play()
		c.playing = true
		return
	}

	c.sink.Stop()
	c.progress = 0

	if err := c.sink.Load(track.PreviewURL); err != nil {
		c.logger.Error("failed to load track", "track", track.ID, "error", err)
		c.notify(Notice{Kind: NoticeUnavailable, Track: track, Message: "This song is unavailable"})
		return
	}

	copied := track
	c.current = &copied
	c.duration = c.sink.Duration()
	c.sink.Play()
	c.playing = true
}

// Pause suspends playback without discarding position.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sink.Pause()
	c.playing = false
}

// TogglePlay flips between playing and paused. Without a current track it is
// a no-op.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return
	}

	if c.playing {
		c.sink.Pause()
		c.playing = false
	} else {
		c.sink.Play()
		c.playing = true
	}
}

// Seek relocates playback. Progress updates immediately regardless of
// whether the sink accepts the seek.
func (c *Controller) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.progress = seconds
	if err := c.sink.Seek(seconds); err != nil {
		c.logger.Debug("sink seek failed", "seconds", seconds, "error", err)
	}
}

// SetVolume clamps v to [0,1] and applies it.
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}

	c.volume = v
	c.sink.SetVolume(v)
}

// PlayNext advances playback. The queue is consumed first, discarding
// unplayable entries permanently; then the context cursor moves forward,
// skipping unplayable tracks; when both are exhausted a fresh batch is
// fetched from the catalog.
func (c *Controller) PlayNext() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++

	if len(c.queue) > 0 {
		for len(c.queue) > 0 {
			next := c.queue[0]
			c.queue = c.queue[1:]
			if next.Playable() {
				c.play(next, nil, false)
				return
			}
		}
		// the queue was drained without a playable entry; nothing plays
		return
	}

	if len(c.context) > 0 {
		for i := c.index + 1; i < len(c.context); i++ {
			if c.context[i].Playable() {
				c.index = i
				c.play(c.context[i], nil, false)
				return
			}
		}
		c.fetchAndPlay(forwardTopics, startOfBatch)
		return
	}

	c.fetchAndPlay(forwardTopics, secondOfBatch)
}

// PlayPrevious moves the context cursor backwards, skipping unplayable
// tracks; on underflow it fetches a fresh batch and resumes from its
// second-to-last track.
func (c *Controller) PlayPrevious() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++

	if len(c.context) > 0 {
		for i := c.index - 1; i >= 0; i-- {
			if c.context[i].Playable() {
				c.index = i
				c.play(c.context[i], nil, false)
				return
			}
		}
	}

	c.fetchAndPlay(backwardTopics, secondToLastOfBatch)
}

// batchStart selects the resume point within a freshly fetched batch.
type batchStart int

const (
	startOfBatch batchStart = iota
	secondOfBatch
	secondToLastOfBatch
)

func (s batchStart) index(n int) int {
	var i int
	switch s {
	case secondOfBatch:
		i = 1
	case secondToLastOfBatch:
		i = n - 2
	}
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	return i
}

// fetchAndPlay launches the asynchronous fallback fetch. Callers hold the
// lock; the continuation re-acquires it and bails out if any newer action
// has bumped the generation in the meantime.
func (c *Controller) fetchAndPlay(topics []string, start batchStart) {
	topic := topics[rand.Intn(len(topics))]
	generation := c.generation

	go func() {
		tracks := c.searcher.Search(context.Background(), topic, fallbackFetchLimit)

		playable := make([]models.Track, 0, len(tracks))
		for _, t := range tracks {
			if t.Playable() {
				playable = append(playable, t)
			}
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.generation != generation {
			c.logger.Debug("discarding stale fallback fetch", "topic", topic)
			return
		}
		if len(playable) == 0 {
			c.logger.Debug("fallback fetch yielded no playable tracks", "topic", topic)
			return
		}

		c.context = playable
		c.index = start.index(len(playable))
		c.play(playable[c.index], nil, false)
	}()
}

// AddToQueueNext pushes track to the front of the queue.
func (c *Controller) AddToQueueNext(track models.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue = append([]models.Track{track}, c.queue...)
	c.notify(Notice{Kind: NoticeQueued, Track: track, Message: "Playing next"})
}

// AddToQueueLater appends track to the back of the queue.
func (c *Controller) AddToQueueLater(track models.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue = append(c.queue, track)
	c.notify(Notice{Kind: NoticeQueued, Track: track, Message: "Added to queue"})
}

// RemoveFromQueue drops the queue entry at index; out-of-range indexes are
// ignored.
func (c *Controller) RemoveFromQueue(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.queue) {
		return
	}

	c.queue = append(c.queue[:index], c.queue[index+1:]...)
}

// Current returns a copy of the current track, or nil when idle.
func (c *Controller) Current() *models.Track {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}
	copied := *c.current
	return &copied
}

// IsPlaying reports whether playback is active.
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.playing
}

// Queue returns a copy of the pending queue.
func (c *Controller) Queue() []models.Track {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := make([]models.Track, len(c.queue))
	copy(queue, c.queue)
	return queue
}

// Context returns a copy of the active context and the cursor position.
func (c *Controller) Context() ([]models.Track, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tracks := make([]models.Track, len(c.context))
	copy(tracks, c.context)
	return tracks, c.index
}

// Volume returns the current volume.
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.volume
}

// Progress returns the playback position and duration in seconds. Position
// comes from the sink when a track is loaded.
func (c *Controller) Progress() (position, duration float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.progress = c.sink.Position()
	}
	return c.progress, c.duration
}

func (c *Controller) notify(notice Notice) {
	if c.notifier != nil {
		c.notifier.Notify(notice)
	}
}
