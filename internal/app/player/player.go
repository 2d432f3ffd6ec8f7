// Package player glues the playback queue to the command and event
// buses and drives the native engine on current-track transitions.
package player

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playbackd/internal/app/command"
	"github.com/osa030/playbackd/internal/app/event"
	"github.com/osa030/playbackd/internal/domain/queue"
	"github.com/osa030/playbackd/internal/domain/track"
	"github.com/osa030/playbackd/internal/infra/engine"
	"github.com/osa030/playbackd/internal/infra/resolver"
)

// ErrReleased is returned for any operation on a released player.
var ErrReleased = command.ErrReleased

// Options tunes a player instance. The zero value picks defaults.
type Options struct {
	CommandCapacity int           // Command channel bound (default 32)
	EventCapacity   int           // Event channel bound (default 32)
	ResolveTimeout  time.Duration // Budget for resolving MRLs (default 10s)
	ReleaseAttempts int           // Stop retries during release (default 10)
	ReleaseInterval time.Duration // Delay between stop retries (default 100ms)
}

func (o Options) withDefaults() Options {
	if o.ResolveTimeout <= 0 {
		o.ResolveTimeout = 10 * time.Second
	}
	if o.ReleaseAttempts <= 0 {
		o.ReleaseAttempts = 10
	}
	if o.ReleaseInterval <= 0 {
		o.ReleaseInterval = 100 * time.Millisecond
	}
	return o
}

// Player owns the live queue for one engine instance. All queue
// mutations go through the command bus; reads are direct. The queue
// value is swapped atomically, yielding a consistent before/after pair
// for diffing without locks.
type Player struct {
	opts     Options
	engine   engine.Engine
	resolver resolver.Resolver

	commands *command.Bus
	events   *event.Bus

	q        atomic.Pointer[queue.Queue]
	released atomic.Bool

	closing     chan struct{}
	pumpDone    chan struct{}
	releaseOnce sync.Once
}

// New creates a player around the engine and starts both bus loops.
func New(eng engine.Engine, res resolver.Resolver, opts Options) *Player {
	opts = opts.withDefaults()
	p := &Player{
		opts:     opts,
		engine:   eng,
		resolver: res,
		commands: command.NewBus(opts.CommandCapacity),
		events:   event.NewBus(opts.EventCapacity),
		closing:  make(chan struct{}),
		pumpDone: make(chan struct{}),
	}

	q := queue.New(p.cleanupTrack)
	p.q.Store(&q)

	p.registerNativeHandlers()
	p.registerPorcelainHandlers()

	p.commands.Start()
	p.events.Start()
	go p.pumpEngineEvents()

	// A finished track moves the queue forward on its own.
	p.events.Subscribe(event.Exact(engine.EventEndReached), func(event.Event) {
		p.onEndReached()
	})

	return p
}

// Submit validates and dispatches a command, returning its future.
func (p *Player) Submit(cmd command.Command) *command.Future {
	return p.commands.Submit(cmd)
}

// Do is shorthand for submitting a command by name.
func (p *Player) Do(name string, payload map[string]any) *command.Future {
	return p.Submit(command.Command{Name: name, Payload: payload})
}

// Subscribe registers an event subscriber and returns its id.
func (p *Player) Subscribe(m event.Matcher, fn func(event.Event)) string {
	return p.events.Subscribe(m, fn)
}

// Unsubscribe removes an event subscriber.
func (p *Player) Unsubscribe(id string) {
	p.events.Unsubscribe(id)
}

// Queue returns a snapshot of the live queue. Queries bypass the bus.
func (p *Player) Queue() queue.Snapshot {
	return p.q.Load().List()
}

// Current returns the current track, if any.
func (p *Player) Current() (track.Track, bool) {
	return p.q.Load().Current()
}

// State reports the engine playback state.
func (p *Player) State() engine.State {
	return p.engine.State()
}

// Released reports whether the player has been released.
func (p *Player) Released() bool {
	return p.released.Load()
}

// Release shuts the player down: no further commands are accepted, both
// loops stop, every resident track is cleaned up, and the engine is
// stopped (with bounded retries) before its resources are released.
// Calling Release twice is a no-op.
func (p *Player) Release() {
	p.releaseOnce.Do(func() {
		p.released.Store(true)
		close(p.closing)

		p.commands.Close()
		p.events.Close()
		<-p.pumpDone

		// Loops are down: cleanup callbacks now reach the engine
		// directly without racing the native context.
		cleared := p.q.Load().ClearAll()
		p.q.Store(&cleared)

		for attempt := 0; attempt < p.opts.ReleaseAttempts; attempt++ {
			if p.engine.State().Terminal() {
				break
			}
			if err := p.engine.Stop(); err != nil {
				zlog.Warn().Msgf("player: stop during release failed: %v", err)
			}
			time.Sleep(p.opts.ReleaseInterval)
		}
		if !p.engine.State().Terminal() {
			zlog.Error().Msgf("player: engine did not reach a terminal state, releasing anyway")
		}
		if err := p.engine.Close(); err != nil {
			zlog.Error().Msgf("player: engine close failed: %v", err)
		}
	})
}

// pumpEngineEvents feeds the engine's event stream into the event bus.
func (p *Player) pumpEngineEvents() {
	defer close(p.pumpDone)
	for {
		select {
		case <-p.closing:
			return
		case e, ok := <-p.engine.Events():
			if !ok {
				return
			}
			p.events.Publish(event.Event{Name: e.Name, Data: e.Data})
		}
	}
}

// cleanupTrack releases engine-side resources for a track leaving the
// queue. While the bus runs, the release is marshaled onto the native
// context; during shutdown it goes straight to the engine.
func (p *Player) cleanupTrack(t track.Track) {
	mrl := t.MRL
	if p.released.Load() {
		p.engine.ReleaseMedia(mrl)
		return
	}
	p.commands.Exec(func() error {
		p.engine.ReleaseMedia(mrl)
		return nil
	})
}

func (p *Player) registerNativeHandlers() {
	b := p.commands
	eng := p.engine

	b.Handle("play-media", func(cmd command.Command) error {
		pl, err := command.Payload[command.MediaPayload](cmd)
		if err != nil {
			return err
		}
		return eng.Play(pl.MRL)
	})
	b.Handle("prepare-media", func(cmd command.Command) error {
		pl, err := command.Payload[command.MediaPayload](cmd)
		if err != nil {
			return err
		}
		return eng.Prepare(pl.MRL)
	})
	b.Handle("reset-media", func(command.Command) error { return eng.Reset() })
	b.Handle("stop-media", func(command.Command) error { return eng.Stop() })
	b.Handle("pause", func(command.Command) error { return eng.Pause() })
	b.Handle("seek-time", func(cmd command.Command) error {
		pl, err := command.Payload[command.SeekTimePayload](cmd)
		if err != nil {
			return err
		}
		return eng.SeekTime(time.Duration(*pl.OffsetMs) * time.Millisecond)
	})
	b.Handle("seek-position", func(cmd command.Command) error {
		pl, err := command.Payload[command.SeekPositionPayload](cmd)
		if err != nil {
			return err
		}
		return eng.SeekPosition(*pl.Offset)
	})
	b.Handle("set-time", func(cmd command.Command) error {
		pl, err := command.Payload[command.SetTimePayload](cmd)
		if err != nil {
			return err
		}
		return eng.SetTime(time.Duration(*pl.TimeMs) * time.Millisecond)
	})
	b.Handle("set-position", func(cmd command.Command) error {
		pl, err := command.Payload[command.SetPositionPayload](cmd)
		if err != nil {
			return err
		}
		return eng.SetPosition(*pl.Position)
	})
	b.Handle("set-loop", func(cmd command.Command) error {
		pl, err := command.Payload[command.SetLoopPayload](cmd)
		if err != nil {
			return err
		}
		return eng.SetLoop(*pl.Loop)
	})
	b.Handle("mute", func(command.Command) error { return eng.ToggleMute() })
	b.Handle("set-mute", func(cmd command.Command) error {
		pl, err := command.Payload[command.SetMutePayload](cmd)
		if err != nil {
			return err
		}
		return eng.SetMute(*pl.Mute)
	})
	b.Handle("set-volume", func(cmd command.Command) error {
		pl, err := command.Payload[command.SetVolumePayload](cmd)
		if err != nil {
			return err
		}
		return eng.SetVolume(*pl.Volume)
	})
	b.Handle("set-channel", func(cmd command.Command) error {
		pl, err := command.Payload[command.SetChannelPayload](cmd)
		if err != nil {
			return err
		}
		return eng.SetChannel(pl.Channel)
	})
	b.Handle("set-delay", func(cmd command.Command) error {
		pl, err := command.Payload[command.SetDelayPayload](cmd)
		if err != nil {
			return err
		}
		return eng.SetDelay(time.Duration(*pl.DelayMs) * time.Millisecond)
	})
	b.Handle("set-equalizer", func(cmd command.Command) error {
		pl, err := command.Payload[command.SetEqualizerPayload](cmd)
		if err != nil {
			return err
		}
		return eng.SetEqualizer(pl.Preset)
	})
	b.Handle("set-output", func(cmd command.Command) error {
		pl, err := command.Payload[command.SetOutputPayload](cmd)
		if err != nil {
			return err
		}
		return eng.SetOutput(pl.Output)
	})
	b.Handle("set-output-device", func(cmd command.Command) error {
		pl, err := command.Payload[command.SetOutputDevicePayload](cmd)
		if err != nil {
			return err
		}
		return eng.SetOutputDevice(pl.Device)
	})
}

func (p *Player) registerPorcelainHandlers() {
	b := p.commands

	b.Handle("play", func(command.Command) error { return p.handlePlay() })
	b.Handle("stop", func(command.Command) error {
		p.commands.Exec(p.engine.Stop)
		return nil
	})
	b.Handle("advance", func(command.Command) error {
		p.applyQueue(queue.Queue.Advance)
		return nil
	})
	b.Handle("next", func(command.Command) error {
		p.applyQueue(queue.Queue.NextTrack)
		return nil
	})
	b.Handle("previous", func(command.Command) error {
		p.applyQueue(queue.Queue.PrevTrack)
		return nil
	})
	b.Handle("append", func(cmd command.Command) error {
		return p.handleInsert(cmd, func(q queue.Queue, ts []track.Track) queue.Queue {
			return q.Append(ts...)
		})
	})
	b.Handle("add-next", func(cmd command.Command) error {
		return p.handleInsert(cmd, func(q queue.Queue, ts []track.Track) queue.Queue {
			return q.AddNext(ts...)
		})
	})
	b.Handle("insert-at", func(cmd command.Command) error {
		pl, err := command.Payload[command.IndexedMRLsPayload](cmd)
		if err != nil {
			return err
		}
		ts, err := p.resolve(pl.MRLs)
		if err != nil {
			return err
		}
		p.applyQueue(func(q queue.Queue) queue.Queue {
			return q.InsertAt(*pl.Index, ts...)
		})
		return nil
	})
	b.Handle("replace-at", func(cmd command.Command) error {
		pl, err := command.Payload[command.IndexedMRLsPayload](cmd)
		if err != nil {
			return err
		}
		ts, err := p.resolve(pl.MRLs)
		if err != nil {
			return err
		}
		p.applyQueue(func(q queue.Queue) queue.Queue {
			return q.ReplaceAt(*pl.Index, ts...)
		})
		return nil
	})
	b.Handle("remove-at", func(cmd command.Command) error {
		pl, err := command.Payload[command.IndicesPayload](cmd)
		if err != nil {
			return err
		}
		p.applyQueue(func(q queue.Queue) queue.Queue {
			return q.RemoveAt(pl.Indices...)
		})
		return nil
	})
	b.Handle("move", func(cmd command.Command) error {
		pl, err := command.Payload[command.MovePayload](cmd)
		if err != nil {
			return err
		}
		p.applyQueue(func(q queue.Queue) queue.Queue {
			return q.Move(*pl.From, *pl.To)
		})
		return nil
	})
	b.Handle("play-from", func(cmd command.Command) error {
		pl, err := command.Payload[command.IndexPayload](cmd)
		if err != nil {
			return err
		}
		p.applyQueue(func(q queue.Queue) queue.Queue {
			return q.PlayFrom(*pl.Index)
		})
		return nil
	})
	b.Handle("set-shuffle", func(cmd command.Command) error {
		pl, err := command.Payload[command.SetShufflePayload](cmd)
		if err != nil {
			return err
		}
		p.applyQueue(func(q queue.Queue) queue.Queue {
			return q.SetShuffle(*pl.Shuffle)
		})
		return nil
	})
	b.Handle("set-repeat", func(cmd command.Command) error {
		pl, err := command.Payload[command.SetRepeatPayload](cmd)
		if err != nil {
			return err
		}
		mode, _ := queue.ParseRepeatMode(pl.Mode)
		p.applyQueue(func(q queue.Queue) queue.Queue {
			return q.SetRepeat(mode)
		})
		return nil
	})
	b.Handle("clear-upcoming", func(command.Command) error {
		p.applyQueue(queue.Queue.ClearUpcoming)
		return nil
	})
	b.Handle("clear-all", func(command.Command) error {
		p.applyQueue(queue.Queue.ClearAll)
		return nil
	})
}

// handlePlay implements the porcelain play semantics: resume when
// paused, restart the current track when stopped, otherwise advance if
// the queue has somewhere to go.
func (p *Player) handlePlay() error {
	cur, hasCurrent := p.q.Load().Current()
	state := p.engine.State()

	switch {
	case hasCurrent && state == engine.StatePaused:
		p.commands.Exec(p.engine.Resume)
	case hasCurrent && state != engine.StatePlaying:
		p.playTrack(cur)
	case !hasCurrent && p.q.Load().CanAdvance():
		p.applyQueue(queue.Queue.Advance)
	}
	return nil
}

func (p *Player) handleInsert(cmd command.Command, apply func(queue.Queue, []track.Track) queue.Queue) error {
	pl, err := command.Payload[command.MRLsPayload](cmd)
	if err != nil {
		return err
	}
	ts, err := p.resolve(pl.MRLs)
	if err != nil {
		return err
	}
	p.applyQueue(func(q queue.Queue) queue.Queue {
		return apply(q, ts)
	})
	return nil
}

// resolve turns MRLs into tracks and preloads their engine resources.
func (p *Player) resolve(mrls []string) ([]track.Track, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.opts.ResolveTimeout)
	defer cancel()

	ts, err := p.resolver.Resolve(ctx, mrls)
	if err != nil {
		return nil, errors.Wrap(err, "media resolution failed")
	}
	for _, t := range ts {
		p.Submit(command.Command{
			Name:    "prepare-media",
			Payload: map[string]any{"mrl": t.MRL},
		})
	}
	return ts, nil
}

// applyQueue swaps the queue through mutate and emits change events by
// diffing the before/after snapshots.
func (p *Player) applyQueue(mutate func(queue.Queue) queue.Queue) {
	for {
		old := p.q.Load()
		next := mutate(*old)
		if p.q.CompareAndSwap(old, &next) {
			p.emitDiff(old.List(), next.List())
			return
		}
	}
}

// emitDiff publishes one event per field that actually changed, then
// drives the engine on current-track transitions. That transition is the
// only point where queue state causes native side effects.
func (p *Player) emitDiff(before, after queue.Snapshot) {
	currentChanged := !sameTrackRef(before.Current, after.Current)
	listChanged := currentChanged ||
		!sameTracks(before.History, after.History) ||
		!sameTracks(before.Upcoming, after.Upcoming)

	if listChanged {
		p.events.Publish(event.Event{
			Name: EventQueueChanged,
			Data: QueueChange{Before: before, After: after},
		})
	}
	if currentChanged {
		p.events.Publish(event.Event{
			Name: EventCurrentTrackChanged,
			Data: TrackChange{Before: before.Current, After: after.Current},
		})
		if after.Current != nil {
			p.playTrack(*after.Current)
		} else {
			p.commands.Exec(p.engine.Stop)
		}
	}
	if before.Repeat != after.Repeat {
		p.events.Publish(event.Event{
			Name: EventRepeatChanged,
			Data: RepeatChange{Before: before.Repeat, After: after.Repeat},
		})
	}
	if before.Shuffle != after.Shuffle {
		p.events.Publish(event.Event{
			Name: EventShuffleChanged,
			Data: ShuffleChange{Before: before.Shuffle, After: after.Shuffle},
		})
	}
}

// playTrack re-dispatches a native play for the track.
func (p *Player) playTrack(t track.Track) {
	p.Submit(command.Command{
		Name:    "play-media",
		Payload: map[string]any{"mrl": t.MRL},
	})
}

// onEndReached moves the queue forward when the engine reports the end
// of the current media. Repeat-track replays the same track instead.
func (p *Player) onEndReached() {
	q := p.q.Load()
	if cur, ok := q.Current(); ok && q.Repeat() == queue.RepeatTrack {
		p.playTrack(cur)
		return
	}
	p.Do("advance", nil)
}

func sameTrackRef(a, b *track.Track) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || a.Equal(*b)
}

func sameTracks(a, b []track.Track) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
