// Package engine defines the native playback engine surface the
// controller drives. The engine owns decoding and device I/O; callers
// must never invoke it from more than one goroutine at a time, which the
// command bus guarantees by marshaling every call onto one serialized
// execution context.
package engine

import "time"

// State is the engine playback state.
type State int

const (
	StateStopped State = iota // No media loaded or playback stopped
	StateOpening              // Media is being opened
	StatePlaying              // Media is playing
	StatePaused               // Playback is paused
	StateEnded                // Media played to the end
	StateError                // Engine hit an unrecoverable media error
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateOpening:
		return "opening"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is safe for releasing the engine.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateEnded || s == StateError
}

// Engine event names.
const (
	EventStateChanged    = "engine/state-changed"
	EventMediaChanged    = "engine/media-changed"
	EventTimeChanged     = "engine/time-changed"
	EventPositionChanged = "engine/position-changed"
	EventEndReached      = "engine/end-reached"
	EventError           = "engine/error"
)

// Event is an engine-emitted event.
type Event struct {
	Name string
	Data any
}

// StateChange is the payload of EventStateChanged.
type StateChange struct {
	Before State
	After  State
}

// Engine is the native playback engine.
type Engine interface {
	// Play loads the media behind the MRL and starts playback.
	Play(mrl string) error
	// Prepare preloads engine-side resources for the MRL.
	Prepare(mrl string) error
	// ReleaseMedia drops engine-side resources tied to the MRL.
	ReleaseMedia(mrl string)
	// Reset unloads the current media.
	Reset() error

	Resume() error
	Pause() error
	Stop() error

	SeekTime(offset time.Duration) error
	SeekPosition(offset float64) error
	SetTime(t time.Duration) error
	SetPosition(pos float64) error
	SetLoop(loop bool) error

	ToggleMute() error
	SetMute(mute bool) error
	SetVolume(volume int) error
	SetChannel(channel string) error
	SetDelay(delay time.Duration) error
	SetEqualizer(preset string) error
	SetOutput(output string) error
	SetOutputDevice(device string) error

	// State reports the current playback state.
	State() State
	// Events is the engine's push-based event stream. It is the only
	// input source of the event bus and closes when the engine closes.
	Events() <-chan Event
	// Close releases native resources. Closing twice is a no-op.
	Close() error
}
