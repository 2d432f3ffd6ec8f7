package player

import (
	"github.com/osa030/playbackd/internal/domain/queue"
	"github.com/osa030/playbackd/internal/domain/track"
)

// Domain event names. Payloads carry before/after pairs so subscribers
// can diff without querying the player.
const (
	EventQueueChanged        = "queue-changed"
	EventCurrentTrackChanged = "current-track-changed"
	EventRepeatChanged       = "repeat-changed"
	EventShuffleChanged      = "shuffle-changed"
)

// QueueChange is the payload of EventQueueChanged.
type QueueChange struct {
	Before queue.Snapshot
	After  queue.Snapshot
}

// TrackChange is the payload of EventCurrentTrackChanged. Nil means no
// current track on that side of the transition.
type TrackChange struct {
	Before *track.Track
	After  *track.Track
}

// RepeatChange is the payload of EventRepeatChanged.
type RepeatChange struct {
	Before queue.RepeatMode
	After  queue.RepeatMode
}

// ShuffleChange is the payload of EventShuffleChanged.
type ShuffleChange struct {
	Before bool
	After  bool
}
