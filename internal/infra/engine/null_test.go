package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainEvents(n *Null) []Event {
	var out []Event
	for {
		select {
		case e := <-n.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestNull_PlayPauseStop(t *testing.T) {
	n := NewNull()
	defer n.Close()

	assert.Equal(t, StateStopped, n.State())

	require.NoError(t, n.Play("file:///a.flac"))
	assert.Equal(t, StatePlaying, n.State())
	assert.Equal(t, "file:///a.flac", n.CurrentMRL())

	require.NoError(t, n.Pause())
	assert.Equal(t, StatePaused, n.State())

	// Pause toggles.
	require.NoError(t, n.Pause())
	assert.Equal(t, StatePlaying, n.State())

	require.NoError(t, n.Stop())
	assert.Equal(t, StateStopped, n.State())
}

func TestNull_EmitsStateAndMediaEvents(t *testing.T) {
	n := NewNull()
	defer n.Close()

	require.NoError(t, n.Play("file:///a.flac"))

	events := drainEvents(n)
	require.Len(t, events, 2)
	assert.Equal(t, EventMediaChanged, events[0].Name)
	assert.Equal(t, "file:///a.flac", events[0].Data)

	assert.Equal(t, EventStateChanged, events[1].Name)
	change := events[1].Data.(StateChange)
	assert.Equal(t, StateStopped, change.Before)
	assert.Equal(t, StatePlaying, change.After)
}

func TestNull_OperationsWithoutMediaFail(t *testing.T) {
	n := NewNull()
	defer n.Close()

	assert.ErrorIs(t, n.Resume(), ErrNoMedia)
	assert.ErrorIs(t, n.Pause(), ErrNoMedia)
	assert.ErrorIs(t, n.SetTime(time.Second), ErrNoMedia)
	assert.ErrorIs(t, n.SetPosition(0.5), ErrNoMedia)
}

func TestNull_PrepareAndRelease(t *testing.T) {
	n := NewNull()
	defer n.Close()

	require.NoError(t, n.Prepare("file:///a.flac"))
	assert.True(t, n.Prepared("file:///a.flac"))

	n.ReleaseMedia("file:///a.flac")
	assert.False(t, n.Prepared("file:///a.flac"))
}

func TestNull_FinishTrack(t *testing.T) {
	n := NewNull()
	defer n.Close()

	n.FinishTrack()
	assert.Equal(t, StateStopped, n.State(), "finishing without playback is a no-op")

	require.NoError(t, n.Play("file:///a.flac"))
	drainEvents(n)

	n.FinishTrack()
	assert.Equal(t, StateEnded, n.State())

	events := drainEvents(n)
	require.Len(t, events, 2)
	assert.Equal(t, EventStateChanged, events[0].Name)
	assert.Equal(t, EventEndReached, events[1].Name)
}

func TestNull_SeekClampsPosition(t *testing.T) {
	n := NewNull()
	defer n.Close()

	require.NoError(t, n.Play("file:///a.flac"))
	require.NoError(t, n.SeekPosition(1.5))

	drained := drainEvents(n)
	last := drained[len(drained)-1]
	assert.Equal(t, EventPositionChanged, last.Name)
	assert.Equal(t, 1.0, last.Data)
}

func TestNull_CloseIsIdempotent(t *testing.T) {
	n := NewNull()
	require.NotPanics(t, func() {
		require.NoError(t, n.Close())
		require.NoError(t, n.Close())
	})

	_, open := <-n.Events()
	assert.False(t, open, "event stream closes with the engine")
}

func TestState_Terminal(t *testing.T) {
	assert.True(t, StateStopped.Terminal())
	assert.True(t, StateEnded.Terminal())
	assert.True(t, StateError.Terminal())
	assert.False(t, StatePlaying.Terminal())
	assert.False(t, StatePaused.Terminal())
	assert.False(t, StateOpening.Terminal())
}
