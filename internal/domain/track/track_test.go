package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrack_Title(t *testing.T) {
	tests := []struct {
		name     string
		track    Track
		expected string
	}{
		{
			name:     "uses metadata title",
			track:    Track{MRL: "file:///a.flac", Meta: &Metadata{Title: "Blue in Green"}},
			expected: "Blue in Green",
		},
		{
			name:     "falls back to MRL without metadata",
			track:    Track{MRL: "file:///a.flac"},
			expected: "file:///a.flac",
		},
		{
			name:     "falls back to MRL with empty title",
			track:    Track{MRL: "file:///a.flac", Meta: &Metadata{Artist: "Miles Davis"}},
			expected: "file:///a.flac",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.track.Title())
		})
	}
}

func TestTrack_Equal(t *testing.T) {
	base := Track{ID: "t1", MRL: "file:///a.flac", Duration: 3 * time.Minute}

	tests := []struct {
		name  string
		a, b  Track
		equal bool
	}{
		{"identical values", base, base, true},
		{"different id", base, Track{ID: "t2", MRL: base.MRL, Duration: base.Duration}, false},
		{"different duration", base, Track{ID: "t1", MRL: base.MRL, Duration: time.Minute}, false},
		{
			"equal metadata compared by value",
			Track{ID: "t1", Meta: &Metadata{Title: "A"}},
			Track{ID: "t1", Meta: &Metadata{Title: "A"}},
			true,
		},
		{
			"different metadata",
			Track{ID: "t1", Meta: &Metadata{Title: "A"}},
			Track{ID: "t1", Meta: &Metadata{Title: "B"}},
			false,
		},
		{
			"one side missing metadata",
			Track{ID: "t1", Meta: &Metadata{Title: "A"}},
			Track{ID: "t1"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
		})
	}
}
