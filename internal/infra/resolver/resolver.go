// Package resolver turns media locators into Track values before they
// reach the queue.
package resolver

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playbackd/internal/domain/track"
)

// Resolver resolves a batch of MRLs into tracks. Implementations must
// honor context cancellation; a single unresolvable locator fails the
// whole batch.
type Resolver interface {
	Resolve(ctx context.Context, mrls []string) ([]track.Track, error)
}

// Files resolves local-file MRLs (plain paths or file:// URLs), probing
// embedded metadata where the container format supports it.
type Files struct{}

// NewFiles creates a local-file resolver.
func NewFiles() *Files {
	return &Files{}
}

// Resolve implements Resolver.
func (f *Files) Resolve(ctx context.Context, mrls []string) ([]track.Track, error) {
	out := make([]track.Track, 0, len(mrls))
	for _, mrl := range mrls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := f.resolveOne(mrl)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve %q", mrl)
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *Files) resolveOne(mrl string) (track.Track, error) {
	path := strings.TrimPrefix(mrl, "file://")

	file, err := os.Open(path)
	if err != nil {
		return track.Track{}, err
	}
	defer file.Close()

	t := track.Track{ID: uuid.New().String(), MRL: mrl}

	// Unreadable tags are not an error: the track plays fine without
	// metadata.
	meta, err := tag.ReadFrom(file)
	if err != nil {
		zlog.Debug().Msgf("resolver: no readable tags in %q: %v", mrl, err)
		return t, nil
	}

	t.Meta = &track.Metadata{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
		Genre:  meta.Genre(),
	}
	return t, nil
}

// Static resolves MRLs from a fixed table. Unknown MRLs resolve to bare
// tracks carrying only the locator. Intended for tests and for engines
// that probe media themselves.
type Static struct {
	Tracks map[string]track.Track
}

// Resolve implements Resolver.
func (s *Static) Resolve(ctx context.Context, mrls []string) ([]track.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]track.Track, 0, len(mrls))
	for _, mrl := range mrls {
		if t, ok := s.Tracks[mrl]; ok {
			out = append(out, t)
			continue
		}
		out = append(out, track.Track{ID: uuid.New().String(), MRL: mrl})
	}
	return out, nil
}
