package event

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// DefaultCapacity is the default bound for the event channel.
const DefaultCapacity = 32

type subscription struct {
	id      string
	matcher Matcher
	fn      func(Event)
}

// Bus consumes published events on a single loop and fans each one out
// to all subscribers whose matcher accepts it. Every subscriber
// invocation runs on its own goroutine, so a slow or panicking
// subscriber never blocks the loop or other subscribers.
//
// The event channel is bounded with a drop-oldest overflow policy: a
// saturated bus silently discards the oldest unconsumed event rather
// than blocking the publisher.
type Bus struct {
	events  chan Event
	closing chan struct{}

	mu   sync.RWMutex
	subs map[string]*subscription

	started   atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewBus creates an event bus with the given channel capacity. Capacity
// values below 1 fall back to DefaultCapacity.
func NewBus(capacity int) *Bus {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Bus{
		events:  make(chan Event, capacity),
		closing: make(chan struct{}),
		subs:    make(map[string]*subscription),
		done:    make(chan struct{}),
	}
}

// Start launches the event loop. Starting twice is a no-op.
func (b *Bus) Start() {
	if b.started.CompareAndSwap(false, true) {
		go b.loop()
	}
}

// Publish enqueues an event for fan-out. Never blocks: under overflow
// the oldest unconsumed event is dropped.
func (b *Bus) Publish(e Event) {
	for {
		select {
		case <-b.closing:
			return
		case b.events <- e:
			return
		default:
		}
		select {
		case old := <-b.events:
			zlog.Warn().Msgf("event: channel full, dropping oldest event %q", old.Name)
		default:
		}
	}
}

// Subscribe registers a callback for events accepted by the matcher and
// returns the subscription id.
func (b *Bus) Subscribe(m Matcher, fn func(Event)) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	b.subs[id] = &subscription{id: id, matcher: m, fn: fn}
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close stops the event loop and drops all subscriptions. Closing twice
// is a no-op.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.closing)
		if b.started.Load() {
			<-b.done
		}

		b.mu.Lock()
		b.subs = make(map[string]*subscription)
		b.mu.Unlock()
	})
}

func (b *Bus) loop() {
	defer close(b.done)
	for {
		select {
		case <-b.closing:
			return
		case e := <-b.events:
			b.fanOut(e)
		}
	}
}

func (b *Bus) fanOut(e Event) {
	b.mu.RLock()
	matched := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.matcher.Matches(e) {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range matched {
		go deliver(sub, e)
	}
}

// deliver invokes one subscriber. Panics are contained and logged, never
// propagated to the loop or other subscribers.
func deliver(sub *subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("event: subscriber %s panicked on %q: %v", sub.id, e.Name, r)
		}
	}()
	sub.fn(e)
}
