package player

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// speakerBufferLength keeps the output latency low enough for responsive
// transport controls while avoiding underruns on slow machines.
const speakerBufferLength = 100 * time.Millisecond

// BeepSink plays preview clips through the system speaker. Each Load fetches
// the clip fully into memory before decoding so seeking works on the
// in-memory stream; preview clips are ~30s so this stays small.
type BeepSink struct {
	mu sync.Mutex

	httpClient *http.Client

	sampleRate beep.SampleRate
	inited     bool

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	started  bool

	level float64

	// onEnded has its own lock: the callback fires on the speaker's
	// goroutine while the speaker lock is held, and taking s.mu there
	// could deadlock against a transport call waiting for that lock.
	cbMu    sync.Mutex
	onEnded func()
}

var _ Sink = (*BeepSink)(nil)

// NewBeepSink creates a sink fetching clips with httpClient, which defaults
// to [http.DefaultClient].
func NewBeepSink(httpClient *http.Client) *BeepSink {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &BeepSink{httpClient: httpClient, level: 1.0}
}

// Load fetches and decodes the clip at url, replacing any loaded stream.
// Playback does not start until [BeepSink.Play] is called.
func (s *BeepSink) Load(url string) error {
	resp, err := s.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch audio: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}

	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("failed to decode audio: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()

	if !s.inited {
		s.sampleRate = format.SampleRate
		if err := speaker.Init(s.sampleRate, s.sampleRate.N(speakerBufferLength)); err != nil {
			streamer.Close()
			return fmt.Errorf("failed to init speaker: %w", err)
		}
		s.inited = true
	}

	var stream beep.Streamer = streamer
	if format.SampleRate != s.sampleRate {
		stream = beep.Resample(4, format.SampleRate, s.sampleRate, streamer)
	}

	s.streamer = streamer
	s.format = format
	s.ctrl = &beep.Ctrl{
		Streamer: beep.Seq(stream, beep.Callback(s.handleEnded)),
		Paused:   true,
	}
	s.volume = &effects.Volume{Streamer: s.ctrl, Base: 2}
	s.applyLevelLocked()
	s.started = false

	return nil
}

// Play starts or resumes the loaded stream.
func (s *BeepSink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl == nil {
		return
	}

	if !s.started {
		s.ctrl.Paused = false
		speaker.Play(s.volume)
		s.started = true
		return
	}

	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
}

// Pause suspends the stream, keeping its position.
func (s *BeepSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl == nil || !s.started {
		return
	}

	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
}

// Stop silences the speaker and discards the loaded stream.
func (s *BeepSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
}

// Seek relocates the stream to the given position in seconds.
func (s *BeepSink) Seek(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streamer == nil {
		return nil
	}

	pos := s.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if pos < 0 {
		pos = 0
	}
	if length := s.streamer.Len(); pos > length {
		pos = length
	}

	speaker.Lock()
	err := s.streamer.Seek(pos)
	speaker.Unlock()

	if err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return nil
}

// SetVolume maps v in [0,1] onto the exponential volume scale; zero mutes.
func (s *BeepSink) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.level = v
	if s.volume == nil {
		return
	}

	speaker.Lock()
	s.applyLevelLocked()
	speaker.Unlock()
}

// SetOnEnded registers the end-of-track callback. It is invoked on its own
// goroutine once per loaded stream.
func (s *BeepSink) SetOnEnded(fn func()) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()

	s.onEnded = fn
}

// Position returns the playback position in seconds.
func (s *BeepSink) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streamer == nil {
		return 0
	}

	speaker.Lock()
	pos := s.streamer.Position()
	speaker.Unlock()

	return s.format.SampleRate.D(pos).Seconds()
}

// Duration returns the loaded stream's length in seconds.
func (s *BeepSink) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streamer == nil {
		return 0
	}
	return s.format.SampleRate.D(s.streamer.Len()).Seconds()
}

func (s *BeepSink) handleEnded() {
	s.cbMu.Lock()
	fn := s.onEnded
	s.cbMu.Unlock()

	// The handler must not run inline on the speaker goroutine or its
	// transport calls deadlock against the speaker lock.
	if fn != nil {
		go fn()
	}
}

// applyLevelLocked expects both s.mu and, when the stream is live, the
// speaker lock to be held by the caller.
func (s *BeepSink) applyLevelLocked() {
	if s.level <= 0 {
		s.volume.Silent = true
		return
	}
	s.volume.Silent = false
	s.volume.Volume = math.Log2(s.level)
}

func (s *BeepSink) clearLocked() {
	if s.streamer == nil {
		return
	}

	if s.inited {
		speaker.Clear()
	}
	s.streamer.Close()
	s.streamer = nil
	s.ctrl = nil
	s.volume = nil
	s.started = false
}
