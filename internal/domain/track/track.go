// Package track provides the Track domain entity.
package track

import "time"

// Metadata holds optional descriptive information about a track.
type Metadata struct {
	Title  string // Track title
	Artist string // Primary artist
	Album  string // Album name
	Genre  string // Genre
}

// Track represents a single playable item. Tracks are immutable values:
// two tracks with the same fields are the same track.
type Track struct {
	ID       string        // Stable identifier
	MRL      string        // Media Resource Locator
	Meta     *Metadata     // Optional metadata (nil if unresolved)
	Duration time.Duration // Optional duration (0 if unknown)
}

// Title returns the best human-readable name for the track.
// Falls back to the MRL when no metadata is available.
func (t Track) Title() string {
	if t.Meta != nil && t.Meta.Title != "" {
		return t.Meta.Title
	}
	return t.MRL
}

// Equal reports whether two tracks are the same value.
func (t Track) Equal(other Track) bool {
	if t.ID != other.ID || t.MRL != other.MRL || t.Duration != other.Duration {
		return false
	}
	if (t.Meta == nil) != (other.Meta == nil) {
		return false
	}
	if t.Meta != nil && *t.Meta != *other.Meta {
		return false
	}
	return true
}
