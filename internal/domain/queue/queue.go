// Package queue provides the playback queue as a pure value type.
//
// A Queue is made of four ordered segments: history (already played,
// oldest first), an optional current track, a priority segment ("play
// next" insertions, FIFO) and the normal tail segment. All positions are
// addressed through a single signed index: 0 is the current track,
// negative indices walk back through history (-1 is the most recently
// played track) and positive indices walk forward through priority then
// normal. Every operation returns a new Queue value; segments are never
// mutated in place.
package queue

import (
	"math/rand/v2"

	"github.com/osa030/playbackd/internal/domain/track"
)

// RepeatMode controls what happens when the queue advances.
type RepeatMode int

const (
	RepeatNone  RepeatMode = iota // Stop at the end of the queue
	RepeatTrack                   // Repeat the current track
	RepeatList                    // Cycle through the whole list
)

// String returns the string representation of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatNone:
		return "none"
	case RepeatTrack:
		return "track"
	case RepeatList:
		return "list"
	default:
		return "unknown"
	}
}

// ParseRepeatMode parses a repeat mode name.
func ParseRepeatMode(s string) (RepeatMode, bool) {
	switch s {
	case "none":
		return RepeatNone, true
	case "track":
		return RepeatTrack, true
	case "list":
		return RepeatList, true
	default:
		return RepeatNone, false
	}
}

// CleanupFunc is invoked exactly once for every track that leaves the
// queue, in any segment. It models releasing engine-side resources tied
// to the track. Relocating a track inside the queue does not count as
// leaving it.
type CleanupFunc func(track.Track)

// Queue is an immutable playback queue. The zero value is an empty queue
// with no cleanup callback.
type Queue struct {
	history  []track.Track
	current  *track.Track
	priority []track.Track
	normal   []track.Track
	shuffle  bool
	repeat   RepeatMode
	cleanup  CleanupFunc
}

// Snapshot is a point-in-time copy of the observable queue state.
type Snapshot struct {
	History  []track.Track
	Current  *track.Track
	Upcoming []track.Track // priority followed by normal
	Repeat   RepeatMode
	Shuffle  bool
}

// New creates an empty queue with the given cleanup callback (may be nil).
// The callback is threaded through every queue derived from this one.
func New(cleanup CleanupFunc) Queue {
	return Queue{cleanup: cleanup}
}

// Repeat returns the repeat mode.
func (q Queue) Repeat() RepeatMode { return q.repeat }

// Shuffle returns the shuffle flag.
func (q Queue) Shuffle() bool { return q.shuffle }

// Current returns the current track, if any.
func (q Queue) Current() (track.Track, bool) {
	if q.current == nil {
		return track.Track{}, false
	}
	return *q.current, true
}

// Len returns the total number of tracks across all segments.
func (q Queue) Len() int {
	n := len(q.history) + len(q.priority) + len(q.normal)
	if q.current != nil {
		n++
	}
	return n
}

// At resolves a unified index to a track. It is total: any index outside
// the queue resolves to absent rather than an error. Index 0 is the
// current track (absent when nothing is selected), negative indices
// address history from its tail, positive indices address priority first,
// then normal.
func (q Queue) At(i int) (track.Track, bool) {
	switch {
	case i == 0:
		return q.Current()
	case i < 0:
		pos := len(q.history) + i
		if pos < 0 {
			return track.Track{}, false
		}
		return q.history[pos], true
	default:
		pos := i - 1
		if pos < len(q.priority) {
			return q.priority[pos], true
		}
		pos -= len(q.priority)
		if pos < len(q.normal) {
			return q.normal[pos], true
		}
		return track.Track{}, false
	}
}

// Slice returns the tracks resolved by the half-open index range
// [start, end), skipping indices that do not resolve.
func (q Queue) Slice(start, end int) []track.Track {
	var out []track.Track
	for i := start; i < end; i++ {
		if t, ok := q.At(i); ok {
			out = append(out, t)
		}
	}
	return out
}

// List returns a snapshot of the queue. The returned slices are copies
// and safe to hold across further queue operations.
func (q Queue) List() Snapshot {
	s := Snapshot{
		History:  copySeg(q.history),
		Upcoming: concatSeg(q.priority, q.normal),
		Repeat:   q.repeat,
		Shuffle:  q.shuffle,
	}
	if q.current != nil {
		c := *q.current
		s.Current = &c
	}
	return s
}

// Append pushes tracks onto the tail of the normal segment.
func (q Queue) Append(ts ...track.Track) Queue {
	if len(ts) == 0 {
		return q
	}
	q.normal = concatSeg(q.normal, ts)
	return q
}

// AddNext pushes tracks onto the tail of the priority segment. Successive
// calls queue after earlier ones, so priority insertion is FIFO.
func (q Queue) AddNext(ts ...track.Track) Queue {
	if len(ts) == 0 {
		return q
	}
	q.priority = concatSeg(q.priority, ts)
	return q
}

// InsertAt splices tracks at the unified position. Inserting at index 0
// replaces the current track, demoting the old current to the front of
// the priority segment. Out-of-range positions clamp to the nearest valid
// splice point.
func (q Queue) InsertAt(i int, ts ...track.Track) Queue {
	if len(ts) == 0 {
		return q
	}
	switch {
	case i == 0:
		head := ts[0]
		rest := ts[1:]
		if q.current != nil {
			rest = concatSeg(rest, []track.Track{*q.current})
		}
		q.priority = concatSeg(rest, q.priority)
		q.current = &head
	case i < 0:
		pos := clamp(len(q.history)+i, 0, len(q.history))
		q.history = spliceSeg(q.history, pos, ts)
	default:
		pos := i - 1
		if pos <= len(q.priority) {
			q.priority = spliceSeg(q.priority, pos, ts)
		} else {
			pos = clamp(pos-len(q.priority), 0, len(q.normal))
			q.normal = spliceSeg(q.normal, pos, ts)
		}
	}
	return q
}

// Advance moves the queue to the next track:
//
//  1. no current: the head of priority, then normal, becomes current
//  2. repeat track: no-op
//  3. priority non-empty: current moves to history, head of priority
//     becomes current
//  4. normal non-empty: same, pulling from normal
//  5. repeat list with everything else exhausted: the full list wraps
//     around, history resets and the remainder lands in normal
//  6. otherwise no-op (end of queue)
func (q Queue) Advance() Queue {
	if q.current == nil {
		return q.pullNext()
	}
	if q.repeat == RepeatTrack {
		return q
	}
	switch {
	case len(q.priority) > 0:
		q.history = concatSeg(q.history, []track.Track{*q.current})
		head := q.priority[0]
		q.current = &head
		q.priority = q.priority[1:]
	case len(q.normal) > 0:
		q.history = concatSeg(q.history, []track.Track{*q.current})
		head := q.normal[0]
		q.current = &head
		q.normal = q.normal[1:]
	case q.repeat == RepeatList:
		// Wrap around: history oldest first, then the old current.
		all := concatSeg(q.history, []track.Track{*q.current})
		if len(all) < 2 {
			return q
		}
		head := all[0]
		q.current = &head
		q.normal = all[1:]
		q.history = nil
	}
	return q
}

// pullNext fills an absent current from priority, then normal. No history
// entry is recorded.
func (q Queue) pullNext() Queue {
	switch {
	case len(q.priority) > 0:
		head := q.priority[0]
		q.current = &head
		q.priority = q.priority[1:]
	case len(q.normal) > 0:
		head := q.normal[0]
		q.current = &head
		q.normal = q.normal[1:]
	}
	return q
}

// NextTrack advances with repeat temporarily forced to none, so a manual
// skip never loops on the current track or the list.
func (q Queue) NextTrack() Queue {
	saved := q.repeat
	q.repeat = RepeatNone
	q = q.Advance()
	q.repeat = saved
	return q
}

// PrevTrack moves the most recent history entry back into current,
// pushing the old current onto the front of the priority segment. No-op
// when history is empty.
func (q Queue) PrevTrack() Queue {
	if len(q.history) == 0 {
		return q
	}
	last := q.history[len(q.history)-1]
	q.history = q.history[:len(q.history)-1]
	if q.current != nil {
		q.priority = concatSeg([]track.Track{*q.current}, q.priority)
	}
	q.current = &last
	return q
}

// PlayFrom jumps to the track at the given unified index by replaying the
// minimal number of skip or rewind steps. No-op when the index does not
// resolve.
func (q Queue) PlayFrom(i int) Queue {
	if _, ok := q.At(i); !ok {
		return q
	}
	for ; i > 0; i-- {
		q = q.NextTrack()
	}
	for ; i < 0; i++ {
		q = q.PrevTrack()
	}
	return q
}

// CanAdvance reports whether advancing would yield a playable track.
func (q Queue) CanAdvance() bool {
	upcoming := len(q.priority)+len(q.normal) > 0
	if q.current == nil {
		return upcoming
	}
	if q.repeat == RepeatTrack || upcoming {
		return true
	}
	return q.repeat == RepeatList && q.Len() >= 2
}

// CanRewind reports whether there is history to rewind into.
func (q Queue) CanRewind() bool {
	return len(q.history) > 0
}

// SetShuffle enables or disables shuffle. Enabling merges priority and
// normal into normal in randomized order and clears priority. Disabling
// only flips the flag; the already-shuffled order is kept.
func (q Queue) SetShuffle(on bool) Queue {
	if on && !q.shuffle {
		merged := concatSeg(q.priority, q.normal)
		rand.Shuffle(len(merged), func(i, j int) {
			merged[i], merged[j] = merged[j], merged[i]
		})
		q.normal = merged
		q.priority = nil
	}
	q.shuffle = on
	return q
}

// SetRepeat sets the repeat mode.
func (q Queue) SetRepeat(mode RepeatMode) Queue {
	q.repeat = mode
	return q
}

// RemoveAt removes the tracks at the given unified indices. The cleanup
// callback runs exactly once per resolved index; duplicate and unresolved
// indices are ignored. Removing the current track auto-advances by
// pulling from priority, then normal, with no history entry for the
// removed track.
func (q Queue) RemoveAt(indices ...int) Queue {
	histDel := map[int]bool{}
	priDel := map[int]bool{}
	normDel := map[int]bool{}
	removeCur := false
	seen := map[int]bool{}

	for _, i := range indices {
		if seen[i] {
			continue
		}
		seen[i] = true
		t, ok := q.At(i)
		if !ok {
			continue
		}
		q.runCleanup(t)
		switch {
		case i == 0:
			removeCur = true
		case i < 0:
			histDel[len(q.history)+i] = true
		default:
			pos := i - 1
			if pos < len(q.priority) {
				priDel[pos] = true
			} else {
				normDel[pos-len(q.priority)] = true
			}
		}
	}

	q.history = dropSeg(q.history, histDel)
	q.priority = dropSeg(q.priority, priDel)
	q.normal = dropSeg(q.normal, normDel)
	if removeCur {
		q.current = nil
		q = q.pullNext()
	}
	return q
}

// ReplaceAt replaces the track at the given unified index with the
// provided tracks, invoking cleanup once on the replaced track. No-op
// when the index does not resolve. An empty replacement degenerates to
// RemoveAt.
func (q Queue) ReplaceAt(i int, ts ...track.Track) Queue {
	old, ok := q.At(i)
	if !ok {
		return q
	}
	if len(ts) == 0 {
		return q.RemoveAt(i)
	}
	q.runCleanup(old)
	switch {
	case i == 0:
		head := ts[0]
		q.current = &head
		q.priority = concatSeg(ts[1:], q.priority)
	case i < 0:
		pos := len(q.history) + i
		q.history = spliceSeg(dropSeg(q.history, map[int]bool{pos: true}), pos, ts)
	default:
		pos := i - 1
		if pos < len(q.priority) {
			q.priority = spliceSeg(dropSeg(q.priority, map[int]bool{pos: true}), pos, ts)
		} else {
			pos -= len(q.priority)
			q.normal = spliceSeg(dropSeg(q.normal, map[int]bool{pos: true}), pos, ts)
		}
	}
	return q
}

// Move relocates the track at index from to index to. The cleanup
// callback is suppressed for the relocated track: it never leaves the
// queue, it only changes position. The destination index is interpreted
// against the queue after removal.
func (q Queue) Move(from, to int) Queue {
	t, ok := q.At(from)
	if !ok {
		return q
	}
	cb := q.cleanup
	q.cleanup = nil
	q = q.RemoveAt(from)
	q = q.InsertAt(to, t)
	q.cleanup = cb
	return q
}

// ClearUpcoming removes every track from priority and normal, invoking
// cleanup on each. Current and history are untouched.
func (q Queue) ClearUpcoming() Queue {
	for _, t := range q.priority {
		q.runCleanup(t)
	}
	for _, t := range q.normal {
		q.runCleanup(t)
	}
	q.priority = nil
	q.normal = nil
	return q
}

// ClearAll removes every track from the queue, invoking cleanup on each,
// and returns a fresh empty queue with the same cleanup callback.
func (q Queue) ClearAll() Queue {
	for _, t := range q.history {
		q.runCleanup(t)
	}
	if q.current != nil {
		q.runCleanup(*q.current)
	}
	for _, t := range q.priority {
		q.runCleanup(t)
	}
	for _, t := range q.normal {
		q.runCleanup(t)
	}
	return New(q.cleanup)
}

func (q Queue) runCleanup(t track.Track) {
	if q.cleanup != nil {
		q.cleanup(t)
	}
}

// Segment helpers always allocate, so derived queues never share a
// backing array that a later operation could write into.

func copySeg(seg []track.Track) []track.Track {
	if len(seg) == 0 {
		return nil
	}
	out := make([]track.Track, len(seg))
	copy(out, seg)
	return out
}

func concatSeg(a, b []track.Track) []track.Track {
	if len(a)+len(b) == 0 {
		return nil
	}
	out := make([]track.Track, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func spliceSeg(seg []track.Track, pos int, ts []track.Track) []track.Track {
	out := make([]track.Track, 0, len(seg)+len(ts))
	out = append(out, seg[:pos]...)
	out = append(out, ts...)
	return append(out, seg[pos:]...)
}

func dropSeg(seg []track.Track, del map[int]bool) []track.Track {
	if len(del) == 0 {
		return seg
	}
	out := make([]track.Track, 0, len(seg)-len(del))
	for i, t := range seg {
		if !del[i] {
			out = append(out, t)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
