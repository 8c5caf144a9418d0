package player

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// fakeSink records transport commands without producing audio.
type fakeSink struct {
	mu      sync.Mutex
	loads   []string
	plays   int
	pauses  int
	stops   int
	seeks   []float64
	volumes []float64
	onEnded func()
	loadErr error
}

func (f *fakeSink) Load(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loads = append(f.loads, url)
	return nil
}

func (f *fakeSink) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
}

func (f *fakeSink) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
}

func (f *fakeSink) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeSink) Seek(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	return nil
}

func (f *fakeSink) SetVolume(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumes = append(f.volumes, v)
}

func (f *fakeSink) SetOnEnded(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onEnded = fn
}

func (f *fakeSink) Position() float64 { return 0 }
func (f *fakeSink) Duration() float64 { return 30 }

func (f *fakeSink) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.loads)
}

func (f *fakeSink) lastLoad() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.loads) == 0 {
		return ""
	}
	return f.loads[len(f.loads)-1]
}

// fakeSearcher serves canned fallback batches and records the terms asked.
type fakeSearcher struct {
	mu      sync.Mutex
	terms   []string
	results []models.Track
	gate    chan struct{}
}

func (f *fakeSearcher) Search(_ context.Context, term string, _ int) []models.Track {
	f.mu.Lock()
	f.terms = append(f.terms, term)
	gate := f.gate
	results := f.results
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return results
}

func (f *fakeSearcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.terms)
}

func (f *fakeSearcher) lastTerm() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.terms) == 0 {
		return ""
	}
	return f.terms[len(f.terms)-1]
}

// noticeRecorder collects notices emitted by the controller.
type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Notify(notice Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

func (r *noticeRecorder) last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

func setupController(t *testing.T) (*Controller, *fakeSink, *fakeSearcher, *noticeRecorder) {
	t.Helper()

	sink := &fakeSink{}
	searcher := &fakeSearcher{}
	recorder := &noticeRecorder{}
	controller := NewController(sink, searcher, recorder, shared.NewLogger(io.Discard))

	return controller, sink, searcher, recorder
}

func playable(id string) models.Track {
	return models.Track{ID: id, Title: "Song " + id, Artist: "Artist", PreviewURL: "https://cdn/" + id + ".m4a"}
}

func unplayable(id string) models.Track {
	return models.Track{ID: id, Title: "Song " + id, Artist: "Artist"}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestPlay(t *testing.T) {
	t.Run("refuses tracks without a preview", func(t *testing.T) {
		controller, sink, _, recorder := setupController(t)

		controller.Play(unplayable("1"))

		if controller.Current() != nil {
			t.Error("expected no current track")
		}
		if controller.IsPlaying() {
			t.Error("expected playback not to start")
		}
		if sink.loadCount() != 0 {
			t.Error("expected sink untouched")
		}
		if notice, ok := recorder.last(); !ok || notice.Kind != NoticeUnavailable {
			t.Errorf("expected unavailable notice, got %+v", notice)
		}
	})

	t.Run("loads and plays a playable track", func(t *testing.T) {
		controller, sink, _, _ := setupController(t)

		track := playable("1")
		controller.Play(track)

		current := controller.Current()
		if current == nil || current.ID != "1" {
			t.Fatalf("expected current track 1, got %+v", current)
		}
		if !controller.IsPlaying() {
			t.Error("expected playing state")
		}
		if sink.lastLoad() != track.PreviewURL {
			t.Errorf("expected sink loaded with preview url, got %s", sink.lastLoad())
		}
	})

	t.Run("replaces context and positions the cursor", func(t *testing.T) {
		controller, _, _, _ := setupController(t)

		tracks := []models.Track{playable("a"), playable("b"), playable("c")}
		controller.Play(tracks[1], tracks)

		contextTracks, index := controller.Context()
		if len(contextTracks) != 3 {
			t.Fatalf("expected 3 context tracks, got %d", len(contextTracks))
		}
		if index != 1 {
			t.Errorf("expected cursor at 1, got %d", index)
		}
	})

	t.Run("keeps the cursor when track is outside the context", func(t *testing.T) {
		controller, _, _, _ := setupController(t)

		tracks := []models.Track{playable("a"), playable("b")}
		controller.Play(tracks[1], tracks)
		controller.Play(playable("outsider"))

		_, index := controller.Context()
		if index != 1 {
			t.Errorf("expected cursor unchanged at 1, got %d", index)
		}
	})

	t.Run("resumes instead of reloading the same track", func(t *testing.T) {
		controller, sink, _, _ := setupController(t)

		track := playable("1")
		controller.Play(track)
		controller.Pause()
		controller.Play(track)

		if sink.loadCount() != 1 {
			t.Errorf("expected a single load, got %d", sink.loadCount())
		}
		if !controller.IsPlaying() {
			t.Error("expected playback resumed")
		}
	})

	t.Run("track change stops the previous stream first", func(t *testing.T) {
		controller, sink, _, _ := setupController(t)

		controller.Play(playable("1"))
		controller.Play(playable("2"))

		if sink.stops < 2 {
			t.Errorf("expected stop before each load, got %d stops", sink.stops)
		}
		if sink.loadCount() != 2 {
			t.Errorf("expected 2 loads, got %d", sink.loadCount())
		}
	})
}

func TestTransportControls(t *testing.T) {
	t.Run("toggle without a track is a no-op", func(t *testing.T) {
		controller, sink, _, _ := setupController(t)

		controller.TogglePlay()

		if sink.plays != 0 || sink.pauses != 0 {
			t.Error("expected no sink commands")
		}
	})

	t.Run("toggle flips playing state", func(t *testing.T) {
		controller, _, _, _ := setupController(t)

		controller.Play(playable("1"))
		controller.TogglePlay()
		if controller.IsPlaying() {
			t.Error("expected paused after toggle")
		}
		controller.TogglePlay()
		if !controller.IsPlaying() {
			t.Error("expected playing after second toggle")
		}
	})

	t.Run("seek updates progress optimistically", func(t *testing.T) {
		controller, _, _, _ := setupController(t)

		controller.Seek(12.5)

		position, _ := controller.Progress()
		if position != 12.5 {
			t.Errorf("expected progress 12.5, got %f", position)
		}
	})

	t.Run("volume clamps to the unit interval", func(t *testing.T) {
		controller, sink, _, _ := setupController(t)

		controller.SetVolume(1.5)
		if controller.Volume() != 1.0 {
			t.Errorf("expected volume clamped to 1, got %f", controller.Volume())
		}

		controller.SetVolume(-0.2)
		if controller.Volume() != 0.0 {
			t.Errorf("expected volume clamped to 0, got %f", controller.Volume())
		}

		if len(sink.volumes) != 2 || sink.volumes[0] != 1.0 || sink.volumes[1] != 0.0 {
			t.Errorf("expected clamped values applied to sink, got %v", sink.volumes)
		}
	})
}

func TestQueue(t *testing.T) {
	t.Run("play next discards unplayable queue entries", func(t *testing.T) {
		controller, _, _, _ := setupController(t)

		controller.AddToQueueLater(unplayable("a"))
		controller.AddToQueueLater(playable("b"))
		controller.AddToQueueLater(playable("c"))

		controller.PlayNext()

		current := controller.Current()
		if current == nil || current.ID != "b" {
			t.Fatalf("expected current track b, got %+v", current)
		}

		queue := controller.Queue()
		if len(queue) != 1 || queue[0].ID != "c" {
			t.Errorf("expected queue [c], got %v", queue)
		}
	})

	t.Run("queue next goes to the front", func(t *testing.T) {
		controller, _, _, recorder := setupController(t)

		controller.AddToQueueLater(playable("later"))
		controller.AddToQueueNext(playable("next"))

		queue := controller.Queue()
		if len(queue) != 2 || queue[0].ID != "next" || queue[1].ID != "later" {
			t.Errorf("expected [next later], got %v", queue)
		}
		if notice, ok := recorder.last(); !ok || notice.Kind != NoticeQueued {
			t.Errorf("expected queued notice, got %+v", notice)
		}
	})

	t.Run("queue takes precedence over context", func(t *testing.T) {
		controller, _, _, _ := setupController(t)

		tracks := []models.Track{playable("a"), playable("b")}
		controller.Play(tracks[0], tracks)
		controller.AddToQueueNext(playable("queued"))

		controller.PlayNext()

		current := controller.Current()
		if current == nil || current.ID != "queued" {
			t.Fatalf("expected queued track, got %+v", current)
		}

		// cursor untouched so the context resumes afterwards
		_, index := controller.Context()
		if index != 0 {
			t.Errorf("expected cursor still at 0, got %d", index)
		}
	})

	t.Run("remove ignores out-of-range indexes", func(t *testing.T) {
		controller, _, _, _ := setupController(t)

		controller.AddToQueueLater(playable("a"))
		controller.RemoveFromQueue(5)
		controller.RemoveFromQueue(-1)

		if len(controller.Queue()) != 1 {
			t.Error("expected queue untouched")
		}

		controller.RemoveFromQueue(0)
		if len(controller.Queue()) != 0 {
			t.Error("expected queue emptied")
		}
	})
}

func TestPlayNext(t *testing.T) {
	t.Run("advances through the context", func(t *testing.T) {
		controller, _, _, _ := setupController(t)

		tracks := []models.Track{playable("a"), playable("b")}
		controller.Play(tracks[0], tracks)

		controller.PlayNext()

		current := controller.Current()
		if current == nil || current.ID != "b" {
			t.Fatalf("expected track b, got %+v", current)
		}
	})

	t.Run("skips unplayable context tracks", func(t *testing.T) {
		controller, _, _, _ := setupController(t)

		tracks := []models.Track{playable("a"), unplayable("x"), unplayable("y"), playable("d")}
		controller.Play(tracks[0], tracks)

		controller.PlayNext()

		current := controller.Current()
		if current == nil || current.ID != "d" {
			t.Fatalf("expected track d, got %+v", current)
		}
		_, index := controller.Context()
		if index != 3 {
			t.Errorf("expected cursor at 3, got %d", index)
		}
	})

	t.Run("context exhaustion triggers a fallback fetch", func(t *testing.T) {
		controller, _, searcher, _ := setupController(t)
		searcher.results = []models.Track{playable("f0"), playable("f1"), playable("f2")}

		tracks := []models.Track{playable("a")}
		controller.Play(tracks[0], tracks)

		controller.PlayNext()

		waitFor(t, func() bool {
			current := controller.Current()
			return current != nil && current.ID == "f0"
		}, "expected fallback batch to start at its first track")

		contextTracks, index := controller.Context()
		if len(contextTracks) != 3 || index != 0 {
			t.Errorf("expected new context of 3 at cursor 0, got %d at %d", len(contextTracks), index)
		}
	})

	t.Run("fallback with no playable tracks leaves state unchanged", func(t *testing.T) {
		controller, _, searcher, _ := setupController(t)
		searcher.results = []models.Track{unplayable("x")}

		tracks := []models.Track{playable("a")}
		controller.Play(tracks[0], tracks)

		controller.PlayNext()

		waitFor(t, func() bool { return searcher.calls() == 1 }, "expected fallback fetch")

		// give the continuation a beat to (incorrectly) mutate state
		time.Sleep(20 * time.Millisecond)

		current := controller.Current()
		if current == nil || current.ID != "a" {
			t.Errorf("expected current track unchanged, got %+v", current)
		}
		_, index := controller.Context()
		if index != 0 {
			t.Errorf("expected cursor unchanged at 0, got %d", index)
		}
	})

	t.Run("no queue and no context starts at the second fallback track", func(t *testing.T) {
		controller, _, searcher, _ := setupController(t)
		searcher.results = []models.Track{playable("f0"), playable("f1"), playable("f2")}

		controller.PlayNext()

		waitFor(t, func() bool {
			current := controller.Current()
			return current != nil && current.ID == "f1"
		}, "expected playback to start at the second fallback track")
	})

	t.Run("fallback filters unplayable tracks before choosing", func(t *testing.T) {
		controller, _, searcher, _ := setupController(t)
		searcher.results = []models.Track{unplayable("x"), playable("f0"), playable("f1")}

		controller.PlayNext()

		waitFor(t, func() bool {
			current := controller.Current()
			return current != nil && current.ID == "f1"
		}, "expected second playable track of the filtered batch")
	})
}

func TestPlayPrevious(t *testing.T) {
	t.Run("steps back through the context", func(t *testing.T) {
		controller, _, _, _ := setupController(t)

		tracks := []models.Track{playable("a"), playable("b")}
		controller.Play(tracks[1], tracks)

		controller.PlayPrevious()

		current := controller.Current()
		if current == nil || current.ID != "a" {
			t.Fatalf("expected track a, got %+v", current)
		}
	})

	t.Run("skips unplayable tracks going backwards", func(t *testing.T) {
		controller, _, _, _ := setupController(t)

		tracks := []models.Track{playable("a"), unplayable("x"), playable("c")}
		controller.Play(tracks[2], tracks)

		controller.PlayPrevious()

		current := controller.Current()
		if current == nil || current.ID != "a" {
			t.Fatalf("expected track a, got %+v", current)
		}
	})

	t.Run("underflow fetches and resumes at the second-to-last track", func(t *testing.T) {
		controller, _, searcher, _ := setupController(t)
		searcher.results = []models.Track{playable("f0"), playable("f1"), playable("f2"), playable("f3")}

		tracks := []models.Track{playable("a")}
		controller.Play(tracks[0], tracks)

		controller.PlayPrevious()

		waitFor(t, func() bool {
			current := controller.Current()
			return current != nil && current.ID == "f2"
		}, "expected playback at second-to-last fallback track")

		term := searcher.lastTerm()
		found := false
		for _, topic := range backwardTopics {
			if term == topic {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected a backward fallback topic, got %q", term)
		}
	})
}

func TestTrackEnd(t *testing.T) {
	t.Run("end-of-track advances using live state", func(t *testing.T) {
		controller, sink, _, _ := setupController(t)

		tracks := []models.Track{playable("a"), playable("b")}
		controller.Play(tracks[0], tracks)

		// queue mutated after the sink callback was registered
		controller.AddToQueueNext(playable("queued"))

		sink.onEnded()

		current := controller.Current()
		if current == nil || current.ID != "queued" {
			t.Fatalf("expected end-of-track to consume the current queue, got %+v", current)
		}
	})
}

func TestStaleFetchDiscard(t *testing.T) {
	controller, _, searcher, _ := setupController(t)
	searcher.results = []models.Track{playable("stale0"), playable("stale1")}
	searcher.gate = make(chan struct{})

	controller.PlayNext()

	waitFor(t, func() bool { return searcher.calls() == 1 }, "expected fallback fetch to start")

	// user action lands while the fetch is in flight
	userTrack := playable("user")
	controller.Play(userTrack)

	close(searcher.gate)
	time.Sleep(20 * time.Millisecond)

	current := controller.Current()
	if current == nil || current.ID != "user" {
		t.Fatalf("expected user's track to win over the stale fetch, got %+v", current)
	}
	contextTracks, _ := controller.Context()
	if len(contextTracks) != 0 {
		t.Errorf("expected stale batch discarded, got %d context tracks", len(contextTracks))
	}
}
