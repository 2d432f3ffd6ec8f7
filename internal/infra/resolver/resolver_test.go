package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playbackd/internal/domain/track"
)

func TestFiles_ResolveUntaggedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noise.bin")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0644))

	r := NewFiles()
	ts, err := r.Resolve(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, ts, 1)

	assert.Equal(t, path, ts[0].MRL)
	assert.NotEmpty(t, ts[0].ID)
	assert.Nil(t, ts[0].Meta, "unreadable tags leave metadata empty")
}

func TestFiles_ResolveStripsFileScheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	r := NewFiles()
	ts, err := r.Resolve(context.Background(), []string{"file://" + path})
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, "file://"+path, ts[0].MRL, "the MRL is preserved verbatim")
}

func TestFiles_MissingFileFailsBatch(t *testing.T) {
	r := NewFiles()
	_, err := r.Resolve(context.Background(), []string{"/no/such/file.flac"})
	assert.Error(t, err)
}

func TestFiles_HonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewFiles()
	_, err := r.Resolve(ctx, []string{"/irrelevant.flac"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatic_Resolve(t *testing.T) {
	known := track.Track{ID: "t1", MRL: "file:///a.flac", Meta: &track.Metadata{Title: "A"}}
	r := &Static{Tracks: map[string]track.Track{"file:///a.flac": known}}

	ts, err := r.Resolve(context.Background(), []string{"file:///a.flac", "file:///b.flac"})
	require.NoError(t, err)
	require.Len(t, ts, 2)

	assert.Equal(t, known, ts[0])
	assert.Equal(t, "file:///b.flac", ts[1].MRL)
	assert.NotEmpty(t, ts[1].ID, "unknown MRLs resolve to bare tracks")
}
