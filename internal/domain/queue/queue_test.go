package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playbackd/internal/domain/track"
)

func tr(id string) track.Track {
	return track.Track{ID: id, MRL: "file:///music/" + id + ".flac"}
}

func ids(ts []track.Track) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

// build constructs a queue from segment contents without going through
// the public operations.
func build(history, priority, normal []string, current string) Queue {
	q := Queue{}
	for _, id := range history {
		q.history = append(q.history, tr(id))
	}
	for _, id := range priority {
		q.priority = append(q.priority, tr(id))
	}
	for _, id := range normal {
		q.normal = append(q.normal, tr(id))
	}
	if current != "" {
		c := tr(current)
		q.current = &c
	}
	return q
}

func assertState(t *testing.T, q Queue, history, priority, normal []string, current string) {
	t.Helper()
	assert.Equal(t, history, append([]string{}, ids(q.history)...), "history mismatch")
	assert.Equal(t, priority, append([]string{}, ids(q.priority)...), "priority mismatch")
	assert.Equal(t, normal, append([]string{}, ids(q.normal)...), "normal mismatch")
	if current == "" {
		assert.Nil(t, q.current, "expected no current track")
	} else {
		require.NotNil(t, q.current, "expected current track %s", current)
		assert.Equal(t, current, q.current.ID)
	}
}

func TestQueue_At(t *testing.T) {
	q := build([]string{"h1", "h2"}, []string{"p1", "p2"}, []string{"n1"}, "c")

	tests := []struct {
		name   string
		index  int
		wantID string
		wantOK bool
	}{
		{"current", 0, "c", true},
		{"last played", -1, "h2", true},
		{"oldest history", -2, "h1", true},
		{"before history", -3, "", false},
		{"first priority", 1, "p1", true},
		{"second priority", 2, "p2", true},
		{"first normal", 3, "n1", true},
		{"past the end", 4, "", false},
		{"far out of range", 100, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := q.At(tt.index)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}
}

func TestQueue_At_NoCurrent(t *testing.T) {
	q := build(nil, []string{"p1"}, []string{"n1"}, "")

	_, ok := q.At(0)
	assert.False(t, ok, "index 0 must be absent without a current track")

	got, ok := q.At(1)
	require.True(t, ok)
	assert.Equal(t, "p1", got.ID)

	got, ok = q.At(2)
	require.True(t, ok)
	assert.Equal(t, "n1", got.ID)
}

func TestQueue_At_IsTotal(t *testing.T) {
	queues := []Queue{
		{},
		build([]string{"h"}, nil, nil, ""),
		build(nil, []string{"p"}, []string{"n"}, "c"),
	}
	for _, q := range queues {
		for i := -10; i <= 10; i++ {
			assert.NotPanics(t, func() { q.At(i) })
		}
	}
}

func TestQueue_Slice(t *testing.T) {
	q := build([]string{"h1", "h2"}, []string{"p1"}, []string{"n1"}, "c")

	got := q.Slice(-3, 3)
	assert.Equal(t, []string{"h1", "h2", "c", "p1", "n1"}, ids(got),
		"unresolved indices are skipped")

	assert.Empty(t, q.Slice(5, 10))
	assert.Empty(t, q.Slice(2, 2))
}

func TestQueue_List(t *testing.T) {
	q := build([]string{"h1"}, []string{"p1"}, []string{"n1", "n2"}, "c")
	s := q.List()

	assert.Equal(t, []string{"h1"}, ids(s.History))
	require.NotNil(t, s.Current)
	assert.Equal(t, "c", s.Current.ID)
	assert.Equal(t, []string{"p1", "n1", "n2"}, ids(s.Upcoming))
}

func TestQueue_Append(t *testing.T) {
	q := New(nil)
	q = q.Append(tr("a"), tr("b"))
	q = q.Append(tr("c"))
	assertState(t, q, []string{}, []string{}, []string{"a", "b", "c"}, "")
}

func TestQueue_AddNext_FIFO(t *testing.T) {
	q := build(nil, nil, nil, "a")
	q = q.AddNext(tr("x"))
	q = q.AddNext(tr("y"))
	assertState(t, q, []string{}, []string{"x", "y"}, []string{}, "a")
}

func TestQueue_InsertAt(t *testing.T) {
	tests := []struct {
		name         string
		start        Queue
		index        int
		insert       []string
		wantHistory  []string
		wantPriority []string
		wantNormal   []string
		wantCurrent  string
	}{
		{
			name:         "at zero demotes current to front of priority",
			start:        build(nil, []string{"p1"}, nil, "c"),
			index:        0,
			insert:       []string{"x"},
			wantHistory:  []string{},
			wantPriority: []string{"c", "p1"},
			wantNormal:   []string{},
			wantCurrent:  "x",
		},
		{
			name:         "at zero with multiple tracks keeps splice order",
			start:        build(nil, nil, nil, "c"),
			index:        0,
			insert:       []string{"x", "y"},
			wantHistory:  []string{},
			wantPriority: []string{"y", "c"},
			wantNormal:   []string{},
			wantCurrent:  "x",
		},
		{
			name:         "at zero with no current",
			start:        build(nil, []string{"p1"}, nil, ""),
			index:        0,
			insert:       []string{"x"},
			wantHistory:  []string{},
			wantPriority: []string{"p1"},
			wantNormal:   []string{},
			wantCurrent:  "x",
		},
		{
			name:         "inside priority",
			start:        build(nil, []string{"p1", "p2"}, nil, "c"),
			index:        2,
			insert:       []string{"x"},
			wantHistory:  []string{},
			wantPriority: []string{"p1", "x", "p2"},
			wantNormal:   []string{},
			wantCurrent:  "c",
		},
		{
			name:         "just past priority goes to its tail",
			start:        build(nil, []string{"p1"}, []string{"n1"}, "c"),
			index:        2,
			insert:       []string{"x"},
			wantHistory:  []string{},
			wantPriority: []string{"p1", "x"},
			wantNormal:   []string{"n1"},
			wantCurrent:  "c",
		},
		{
			name:         "inside normal",
			start:        build(nil, []string{"p1"}, []string{"n1", "n2"}, "c"),
			index:        3,
			insert:       []string{"x"},
			wantHistory:  []string{},
			wantPriority: []string{"p1"},
			wantNormal:   []string{"n1", "x", "n2"},
			wantCurrent:  "c",
		},
		{
			name:         "into history",
			start:        build([]string{"h1", "h2"}, nil, nil, "c"),
			index:        -1,
			insert:       []string{"x"},
			wantHistory:  []string{"h1", "x", "h2"},
			wantPriority: []string{},
			wantNormal:   []string{},
			wantCurrent:  "c",
		},
		{
			name:         "past the end clamps to the tail",
			start:        build(nil, nil, []string{"n1"}, "c"),
			index:        50,
			insert:       []string{"x"},
			wantHistory:  []string{},
			wantPriority: []string{},
			wantNormal:   []string{"n1", "x"},
			wantCurrent:  "c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := make([]track.Track, len(tt.insert))
			for i, id := range tt.insert {
				ts[i] = tr(id)
			}
			got := tt.start.InsertAt(tt.index, ts...)
			assertState(t, got, tt.wantHistory, tt.wantPriority, tt.wantNormal, tt.wantCurrent)
		})
	}
}

func TestQueue_Advance(t *testing.T) {
	tests := []struct {
		name         string
		start        Queue
		repeat       RepeatMode
		wantHistory  []string
		wantPriority []string
		wantNormal   []string
		wantCurrent  string
	}{
		{
			name:         "priority before normal",
			start:        build(nil, []string{"c2"}, []string{"c3"}, "c1"),
			wantHistory:  []string{"c1"},
			wantPriority: []string{},
			wantNormal:   []string{"c3"},
			wantCurrent:  "c2",
		},
		{
			name:         "from normal when priority empty",
			start:        build(nil, nil, []string{"n1", "n2"}, "c"),
			wantHistory:  []string{"c"},
			wantPriority: []string{},
			wantNormal:   []string{"n2"},
			wantCurrent:  "n1",
		},
		{
			name:         "no current pulls without history entry",
			start:        build(nil, nil, []string{"a", "b"}, ""),
			wantHistory:  []string{},
			wantPriority: []string{},
			wantNormal:   []string{"b"},
			wantCurrent:  "a",
		},
		{
			name:         "empty queue is a no-op",
			start:        build(nil, nil, nil, ""),
			wantHistory:  []string{},
			wantPriority: []string{},
			wantNormal:   []string{},
			wantCurrent:  "",
		},
		{
			name:         "end of queue with repeat none is a no-op",
			start:        build([]string{"h"}, nil, nil, "c"),
			wantHistory:  []string{"h"},
			wantPriority: []string{},
			wantNormal:   []string{},
			wantCurrent:  "c",
		},
		{
			name:         "repeat track keeps current",
			start:        build(nil, []string{"p"}, nil, "c"),
			repeat:       RepeatTrack,
			wantHistory:  []string{},
			wantPriority: []string{"p"},
			wantNormal:   []string{},
			wantCurrent:  "c",
		},
		{
			name:         "repeat list wraps and resets history",
			start:        build([]string{"a", "b"}, nil, nil, "c"),
			repeat:       RepeatList,
			wantHistory:  []string{},
			wantPriority: []string{},
			wantNormal:   []string{"b", "c"},
			wantCurrent:  "a",
		},
		{
			name:         "repeat list with a single track is a no-op",
			start:        build(nil, nil, nil, "c"),
			repeat:       RepeatList,
			wantHistory:  []string{},
			wantPriority: []string{},
			wantNormal:   []string{},
			wantCurrent:  "c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start.SetRepeat(tt.repeat).Advance()
			assertState(t, got, tt.wantHistory, tt.wantPriority, tt.wantNormal, tt.wantCurrent)
		})
	}
}

func TestQueue_Advance_RepeatTrackIdempotent(t *testing.T) {
	q := build(nil, []string{"p"}, []string{"n"}, "c").SetRepeat(RepeatTrack)
	q1 := q.Advance()
	q2 := q1.Advance()

	cur1, _ := q1.Current()
	cur2, _ := q2.Current()
	assert.Equal(t, "c", cur1.ID)
	assert.Equal(t, "c", cur2.ID)
}

func TestQueue_Advance_RepeatListFullCycle(t *testing.T) {
	q := build(nil, nil, []string{"b", "c"}, "a").SetRepeat(RepeatList)

	var order []string
	cur, _ := q.Current()
	order = append(order, cur.ID)

	// Two full cycles: the relative order must repeat exactly.
	for i := 0; i < 5; i++ {
		q = q.Advance()
		cur, ok := q.Current()
		require.True(t, ok)
		order = append(order, cur.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, order)

	// History resets at each wrap point.
	assert.True(t, q.CanAdvance())
}

func TestQueue_NextTrack_IgnoresRepeat(t *testing.T) {
	q := build(nil, nil, []string{"b"}, "a").SetRepeat(RepeatTrack)
	q = q.NextTrack()

	cur, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "b", cur.ID, "skip must not loop on the current track")
	assert.Equal(t, RepeatTrack, q.Repeat(), "repeat mode is restored after skip")
}

func TestQueue_PrevTrack(t *testing.T) {
	q := build([]string{"h1", "h2"}, []string{"p"}, nil, "c")
	q = q.PrevTrack()
	assertState(t, q, []string{"h1"}, []string{"c", "p"}, []string{}, "h2")

	empty := build(nil, nil, nil, "c")
	assertState(t, empty.PrevTrack(), []string{}, []string{}, []string{}, "c")
}

func TestQueue_AdvanceThenPrevTrackRoundTrip(t *testing.T) {
	q := build([]string{"h"}, nil, []string{"n"}, "c")
	back := q.Advance().PrevTrack()

	cur, ok := back.Current()
	require.True(t, ok)
	assert.Equal(t, "c", cur.ID)
	assert.Equal(t, []string{"h"}, ids(back.history))
}

func TestQueue_PlayFrom(t *testing.T) {
	tests := []struct {
		name        string
		index       int
		wantCurrent string
		wantHistory []string
	}{
		{"forward into normal", 2, "n1", []string{"h1", "c", "p1"}},
		{"forward one", 1, "p1", []string{"h1", "c"}},
		{"backward", -1, "h1", nil},
		{"zero is a no-op", 0, "c", []string{"h1"}},
		{"unresolved is a no-op", 9, "c", []string{"h1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := build([]string{"h1"}, []string{"p1"}, []string{"n1"}, "c")
			got := q.PlayFrom(tt.index)
			cur, ok := got.Current()
			require.True(t, ok)
			assert.Equal(t, tt.wantCurrent, cur.ID)
			if tt.wantHistory != nil {
				assert.Equal(t, tt.wantHistory, ids(got.history))
			}
		})
	}
}

func TestQueue_PlayFrom_IgnoresRepeatTrack(t *testing.T) {
	q := build(nil, nil, []string{"b", "c"}, "a").SetRepeat(RepeatTrack)
	got := q.PlayFrom(2)
	cur, ok := got.Current()
	require.True(t, ok)
	assert.Equal(t, "c", cur.ID)
}

func TestQueue_CanAdvance(t *testing.T) {
	tests := []struct {
		name string
		q    Queue
		want bool
	}{
		{"empty", Queue{}, false},
		{"no current with upcoming", build(nil, nil, []string{"n"}, ""), true},
		{"current with upcoming", build(nil, []string{"p"}, nil, "c"), true},
		{"end of queue repeat none", build([]string{"h"}, nil, nil, "c"), false},
		{"end of queue repeat track", build(nil, nil, nil, "c").SetRepeat(RepeatTrack), true},
		{"end of queue repeat list with history", build([]string{"h"}, nil, nil, "c").SetRepeat(RepeatList), true},
		{"single track repeat list", build(nil, nil, nil, "c").SetRepeat(RepeatList), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.CanAdvance())
		})
	}
}

func TestQueue_CanRewind(t *testing.T) {
	assert.False(t, build(nil, nil, []string{"n"}, "c").CanRewind())
	assert.True(t, build([]string{"h"}, nil, nil, "").CanRewind())
}

func TestQueue_SetShuffle(t *testing.T) {
	q := build(nil, []string{"p1", "p2"}, []string{"n1", "n2", "n3"}, "c")
	shuffled := q.SetShuffle(true)

	assert.True(t, shuffled.Shuffle())
	assert.Empty(t, shuffled.priority, "priority merges into normal")

	// Multiset is preserved: nothing lost, nothing duplicated.
	assert.ElementsMatch(t,
		[]string{"p1", "p2", "n1", "n2", "n3"},
		ids(shuffled.normal))

	cur, ok := shuffled.Current()
	require.True(t, ok)
	assert.Equal(t, "c", cur.ID, "current is untouched by shuffle")

	// Disabling only flips the flag.
	off := shuffled.SetShuffle(false)
	assert.False(t, off.Shuffle())
	assert.Equal(t, ids(shuffled.normal), ids(off.normal))
}

func TestQueue_RemoveAt(t *testing.T) {
	var cleaned []string
	cleanup := func(t track.Track) { cleaned = append(cleaned, t.ID) }

	q := build([]string{"h1"}, []string{"p1", "p2"}, []string{"n1"}, "c")
	q.cleanup = cleanup

	got := q.RemoveAt(1, 3, -1)
	assertState(t, got, []string{}, []string{"p2"}, []string{}, "c")
	assert.ElementsMatch(t, []string{"p1", "n1", "h1"}, cleaned,
		"cleanup runs once per removed track")
}

func TestQueue_RemoveAt_CurrentAutoAdvances(t *testing.T) {
	var cleaned []string
	q := build(nil, []string{"p1"}, []string{"n1"}, "c")
	q.cleanup = func(t track.Track) { cleaned = append(cleaned, t.ID) }

	got := q.RemoveAt(0)
	assertState(t, got, []string{}, []string{}, []string{"n1"}, "p1")
	assert.Equal(t, []string{"c"}, cleaned)

	// With nothing upcoming, current simply becomes absent.
	solo := build(nil, nil, nil, "c")
	got = solo.RemoveAt(0)
	assertState(t, got, []string{}, []string{}, []string{}, "")
}

func TestQueue_RemoveAt_DuplicateAndUnresolvedIndices(t *testing.T) {
	var count int
	q := build(nil, []string{"p1"}, nil, "c")
	q.cleanup = func(track.Track) { count++ }

	got := q.RemoveAt(1, 1, 7, -5)
	assertState(t, got, []string{}, []string{}, []string{}, "c")
	assert.Equal(t, 1, count, "duplicate and unresolved indices trigger no extra cleanup")
}

func TestQueue_ReplaceAt(t *testing.T) {
	var cleaned []string
	q := build(nil, []string{"p1", "p2"}, []string{"n1"}, "c")
	q.cleanup = func(t track.Track) { cleaned = append(cleaned, t.ID) }

	got := q.ReplaceAt(2, tr("x"), tr("y"))
	assertState(t, got, []string{}, []string{"p1", "x", "y"}, []string{"n1"}, "c")
	assert.Equal(t, []string{"p2"}, cleaned)
}

func TestQueue_ReplaceAt_Current(t *testing.T) {
	var cleaned []string
	q := build(nil, []string{"p1"}, nil, "c")
	q.cleanup = func(t track.Track) { cleaned = append(cleaned, t.ID) }

	got := q.ReplaceAt(0, tr("x"))
	assertState(t, got, []string{}, []string{"p1"}, []string{}, "x")
	assert.Equal(t, []string{"c"}, cleaned, "the replaced current is cleaned up, not demoted")
}

func TestQueue_Move(t *testing.T) {
	q := build(nil, []string{"b", "c", "d"}, nil, "a")
	got := q.Move(1, 3)
	assertState(t, got, []string{}, []string{"c", "d", "b"}, []string{}, "a")
}

func TestQueue_Move_SuppressesCleanup(t *testing.T) {
	var cleaned []string
	q := build(nil, []string{"b", "c", "d"}, nil, "a")
	q.cleanup = func(t track.Track) { cleaned = append(cleaned, t.ID) }

	got := q.Move(1, 3)
	assert.Empty(t, cleaned, "relocation must not release the moved track")

	// The callback is still live for real removals afterwards.
	got.RemoveAt(1)
	assert.Equal(t, []string{"c"}, cleaned)
}

func TestQueue_ClearUpcoming(t *testing.T) {
	var cleaned []string
	q := build([]string{"h1"}, []string{"p1"}, []string{"n1", "n2"}, "c")
	q.cleanup = func(t track.Track) { cleaned = append(cleaned, t.ID) }

	got := q.ClearUpcoming()
	assertState(t, got, []string{"h1"}, []string{}, []string{}, "c")
	assert.ElementsMatch(t, []string{"p1", "n1", "n2"}, cleaned)
}

func TestQueue_ClearAll(t *testing.T) {
	var cleaned []string
	cleanup := func(t track.Track) { cleaned = append(cleaned, t.ID) }

	q := build([]string{"h1"}, []string{"p1"}, []string{"n1"}, "c")
	q.cleanup = cleanup
	q = q.SetRepeat(RepeatList).SetShuffle(false)

	got := q.ClearAll()
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, RepeatNone, got.Repeat())
	assert.ElementsMatch(t, []string{"h1", "p1", "n1", "c"}, cleaned)

	// The cleanup callback survives the reset.
	got = got.Append(tr("x")).RemoveAt(1)
	assert.Contains(t, cleaned, "x")
}

func TestQueue_ValueSemantics(t *testing.T) {
	q := build([]string{"h1"}, []string{"p1"}, []string{"n1"}, "c")

	derived := q.Advance().PrevTrack().Append(tr("z")).RemoveAt(1)
	_ = derived

	// The original queue is untouched by any derived operation.
	assertState(t, q, []string{"h1"}, []string{"p1"}, []string{"n1"}, "c")
}

func TestQueue_AppendThenAdvanceFromEmpty(t *testing.T) {
	q := New(nil).Append(tr("a"), tr("b")).Advance()
	assertState(t, q, []string{}, []string{}, []string{"b"}, "a")
}

func TestRepeatMode_String(t *testing.T) {
	assert.Equal(t, "none", RepeatNone.String())
	assert.Equal(t, "track", RepeatTrack.String())
	assert.Equal(t, "list", RepeatList.String())

	m, ok := ParseRepeatMode("list")
	assert.True(t, ok)
	assert.Equal(t, RepeatList, m)

	_, ok = ParseRepeatMode("bogus")
	assert.False(t, ok)
}
