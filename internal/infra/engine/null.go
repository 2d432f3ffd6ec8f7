package engine

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// ErrNoMedia is returned for playback operations without loaded media.
var ErrNoMedia = errors.New("no media loaded")

// Null is an engine that tracks playback state without touching any
// audio device. It backs the daemon when no real engine is wired in and
// the tests that need a live engine.
type Null struct {
	mu sync.Mutex

	state    State
	mrl      string
	prepared map[string]bool
	timeMs   int64
	position float64
	volume   int
	muted    bool
	looping  bool
	channel  string
	output   string
	device   string
	preset   string
	delay    time.Duration

	events    chan Event
	closed    bool
	closeOnce sync.Once
}

// NewNull creates a stopped null engine.
func NewNull() *Null {
	return &Null{
		state:    StateStopped,
		prepared: make(map[string]bool),
		volume:   100,
		channel:  "stereo",
		events:   make(chan Event, 32),
	}
}

// Play implements Engine.
func (n *Null) Play(mrl string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mrl = mrl
	n.timeMs = 0
	n.position = 0
	n.emit(Event{Name: EventMediaChanged, Data: mrl})
	n.setState(StatePlaying)
	return nil
}

// Prepare implements Engine.
func (n *Null) Prepare(mrl string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prepared[mrl] = true
	return nil
}

// ReleaseMedia implements Engine.
func (n *Null) ReleaseMedia(mrl string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.prepared, mrl)
}

// Reset implements Engine.
func (n *Null) Reset() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mrl = ""
	n.setState(StateStopped)
	return nil
}

// Resume implements Engine.
func (n *Null) Resume() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.mrl == "" {
		return ErrNoMedia
	}
	n.setState(StatePlaying)
	return nil
}

// Pause implements Engine.
func (n *Null) Pause() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.mrl == "" {
		return ErrNoMedia
	}
	if n.state == StatePaused {
		n.setState(StatePlaying)
	} else {
		n.setState(StatePaused)
	}
	return nil
}

// Stop implements Engine.
func (n *Null) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.timeMs = 0
	n.position = 0
	n.setState(StateStopped)
	return nil
}

// SeekTime implements Engine.
func (n *Null) SeekTime(offset time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.mrl == "" {
		return ErrNoMedia
	}
	n.timeMs += offset.Milliseconds()
	if n.timeMs < 0 {
		n.timeMs = 0
	}
	n.emit(Event{Name: EventTimeChanged, Data: n.timeMs})
	return nil
}

// SeekPosition implements Engine.
func (n *Null) SeekPosition(offset float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.mrl == "" {
		return ErrNoMedia
	}
	n.position = clampPos(n.position + offset)
	n.emit(Event{Name: EventPositionChanged, Data: n.position})
	return nil
}

// SetTime implements Engine.
func (n *Null) SetTime(t time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.mrl == "" {
		return ErrNoMedia
	}
	n.timeMs = t.Milliseconds()
	n.emit(Event{Name: EventTimeChanged, Data: n.timeMs})
	return nil
}

// SetPosition implements Engine.
func (n *Null) SetPosition(pos float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.mrl == "" {
		return ErrNoMedia
	}
	n.position = clampPos(pos)
	n.emit(Event{Name: EventPositionChanged, Data: n.position})
	return nil
}

// SetLoop implements Engine.
func (n *Null) SetLoop(loop bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.looping = loop
	return nil
}

// ToggleMute implements Engine.
func (n *Null) ToggleMute() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.muted = !n.muted
	return nil
}

// SetMute implements Engine.
func (n *Null) SetMute(mute bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.muted = mute
	return nil
}

// SetVolume implements Engine.
func (n *Null) SetVolume(volume int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.volume = volume
	return nil
}

// SetChannel implements Engine.
func (n *Null) SetChannel(channel string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.channel = channel
	return nil
}

// SetDelay implements Engine.
func (n *Null) SetDelay(delay time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delay = delay
	return nil
}

// SetEqualizer implements Engine.
func (n *Null) SetEqualizer(preset string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.preset = preset
	return nil
}

// SetOutput implements Engine.
func (n *Null) SetOutput(output string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.output = output
	return nil
}

// SetOutputDevice implements Engine.
func (n *Null) SetOutputDevice(device string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.device = device
	return nil
}

// State implements Engine.
func (n *Null) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Events implements Engine.
func (n *Null) Events() <-chan Event {
	return n.events
}

// Close implements Engine.
func (n *Null) Close() error {
	n.closeOnce.Do(func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.prepared = make(map[string]bool)
		n.closed = true
		close(n.events)
	})
	return nil
}

// CurrentMRL returns the loaded media locator. Test hook.
func (n *Null) CurrentMRL() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mrl
}

// Prepared reports whether the MRL holds prepared resources. Test hook.
func (n *Null) Prepared(mrl string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.prepared[mrl]
}

// Volume returns the software volume. Test hook.
func (n *Null) Volume() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.volume
}

// FinishTrack simulates the loaded media playing to its end. Test hook.
func (n *Null) FinishTrack() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != StatePlaying {
		return
	}
	n.setState(StateEnded)
	n.emit(Event{Name: EventEndReached, Data: n.mrl})
}

// setState transitions the state and emits a state-changed event.
// Callers hold the mutex.
func (n *Null) setState(s State) {
	if n.state == s {
		return
	}
	change := StateChange{Before: n.state, After: s}
	n.state = s
	n.emit(Event{Name: EventStateChanged, Data: change})
}

// emit sends without blocking; a full channel drops the event.
func (n *Null) emit(e Event) {
	if n.closed {
		return
	}
	select {
	case n.events <- e:
	default:
		zlog.Warn().Msgf("engine: event channel full, dropping %q", e.Name)
	}
}

func clampPos(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
