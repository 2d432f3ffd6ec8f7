package command

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// DefaultCapacity is the default bound for the command channel.
const DefaultCapacity = 32

// Handler executes a command. Porcelain handlers run inline on the
// control loop; native handlers run on the serialized native execution
// context.
type Handler func(Command) error

type submission struct {
	cmd    Command
	future *Future
}

type nativeJob struct {
	cmd     Command
	future  *Future
	handler Handler
}

// Bus accepts commands, validates them, and executes them in submission
// order on a single control loop. Native commands are marshaled onto one
// serialized execution context so the engine never observes concurrent
// calls; the control loop only blocks long enough to hand the work over,
// never for native completion.
//
// The command channel is bounded. Under overflow the oldest unconsumed
// command is dropped and its future resolves with ErrDropped: submission
// is best-effort under load, callers are never blocked.
type Bus struct {
	commands chan submission
	native   chan nativeJob
	closing  chan struct{}
	released atomic.Bool

	handlers map[string]Handler

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewBus creates a command bus with the given channel capacity.
// Capacity values below 1 fall back to DefaultCapacity.
func NewBus(capacity int) *Bus {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Bus{
		commands: make(chan submission, capacity),
		native:   make(chan nativeJob, capacity),
		closing:  make(chan struct{}),
		handlers: make(map[string]Handler),
	}
}

// Handle registers the handler for a canonical command name. All
// registrations must happen before Start.
func (b *Bus) Handle(name string, h Handler) {
	b.handlers[name] = h
}

// Start launches the control loop and the native execution context.
func (b *Bus) Start() {
	b.wg.Add(2)
	go b.controlLoop()
	go b.nativeLoop()
}

// Submit enqueues a command and returns its future. A released bus
// rejects the command immediately with ErrReleased.
func (b *Bus) Submit(cmd Command) *Future {
	if b.released.Load() {
		return resolved(errors.Wrapf(ErrReleased, "command %q", cmd.Name))
	}
	s := submission{cmd: cmd, future: newFuture()}
	for {
		select {
		case b.commands <- s:
			return s.future
		default:
		}
		// Full: evict the oldest unconsumed command and retry.
		select {
		case old := <-b.commands:
			zlog.Warn().Msgf("command: channel full, dropping oldest command %q", old.cmd.Name)
			old.future.resolve(errors.Wrapf(ErrDropped, "command %q", old.cmd.Name))
		default:
		}
	}
}

// Exec schedules fn on the native execution context without waiting for
// it. It is the internal path for engine calls that have no public
// command name (resume, stop on track transitions, media release).
func (b *Bus) Exec(fn func() error) {
	job := nativeJob{
		cmd:     Command{Name: "internal"},
		future:  newFuture(),
		handler: func(Command) error { return fn() },
	}
	select {
	case b.native <- job:
	case <-b.closing:
	}
}

// Close stops both loops and rejects all further submissions. Closing
// twice is a no-op.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.released.Store(true)
		close(b.closing)
		b.wg.Wait()
		b.drain()
	})
}

// drain resolves every command still sitting in the channels after the
// loops have stopped.
func (b *Bus) drain() {
	for {
		select {
		case s := <-b.commands:
			s.future.resolve(errors.Wrapf(ErrReleased, "command %q", s.cmd.Name))
		case j := <-b.native:
			j.future.resolve(errors.Wrapf(ErrReleased, "command %q", j.cmd.Name))
		default:
			return
		}
	}
}

func (b *Bus) controlLoop() {
	defer b.wg.Done()
	for {
		select {
		case <-b.closing:
			return
		case s := <-b.commands:
			b.dispatch(s)
		}
	}
}

// dispatch validates and executes a single command. Validation and
// unknown-command failures resolve the triggering future; they never
// stop the loop.
func (b *Bus) dispatch(s submission) {
	if err := Validate(s.cmd); err != nil {
		zlog.Debug().Msgf("command: rejected %q: %v", s.cmd.Name, err)
		s.future.resolve(err)
		return
	}

	name := ResolveAlias(s.cmd.Name)
	sp, _ := Lookup(name)
	handler, ok := b.handlers[name]
	if !ok {
		err := errors.Wrapf(ErrUnknownCommand, "no handler registered for %q", name)
		zlog.Error().Msgf("command: %v", err)
		s.future.resolve(err)
		return
	}

	canonical := Command{Name: name, Payload: s.cmd.Payload}
	if sp.Kind == KindNative {
		select {
		case b.native <- nativeJob{cmd: canonical, future: s.future, handler: handler}:
		case <-b.closing:
			s.future.resolve(errors.Wrapf(ErrReleased, "command %q", name))
		}
		return
	}
	s.future.resolve(handler(canonical))
}

func (b *Bus) nativeLoop() {
	defer b.wg.Done()
	for {
		select {
		case <-b.closing:
			return
		case j := <-b.native:
			// Release may have happened while the command was in flight.
			if b.released.Load() {
				j.future.resolve(errors.Wrapf(ErrReleased, "command %q", j.cmd.Name))
				continue
			}
			b.runNative(j)
		}
	}
}

// runNative executes one native job. Failures are logged and resolve the
// triggering future; the loop keeps processing subsequent commands.
func (b *Bus) runNative(j nativeJob) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.Newf("native command %q panicked: %v", j.cmd.Name, r)
			zlog.Error().Msgf("command: %v", err)
			j.future.resolve(err)
		}
	}()
	err := j.handler(j.cmd)
	if err != nil {
		zlog.Error().Msgf("command: native command %q failed: %v", j.cmd.Name, err)
	}
	j.future.resolve(err)
}
