package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/parsaforughi/pixxel-uv-effect/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommand_NoDirectory(t *testing.T) {
	_, err := executeCommand(t, "run")
	require.Error(t, err)
}

func TestNewDirSource_MissingDir(t *testing.T) {
	_, err := newDirSource("/nonexistent/frames")
	require.Error(t, err)
}

func TestNewDirSource_EmptyDir(t *testing.T) {
	_, err := newDirSource(t.TempDir())
	require.Error(t, err)
}

func TestDirSource_LexicalOrderAndEOF(t *testing.T) {
	dir := t.TempDir()
	// written out of order on purpose
	for _, name := range []string{"frame_00002.png", "frame_00000.png", "frame_00001.png"} {
		require.NoError(t, testutil.SolidFrame(4, 4, 10, 20, 30).Save(filepath.Join(dir, name)))
	}

	src, err := newDirSource(dir)
	require.NoError(t, err)
	require.Len(t, src.paths, 3)
	assert.Equal(t, filepath.Join(dir, "frame_00000.png"), src.paths[0])
	assert.Equal(t, filepath.Join(dir, "frame_00002.png"), src.paths[2])

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		buf, err := src.NextFrame(ctx)
		require.NoError(t, err)
		require.NotNil(t, buf)
	}
	_, err = src.NextFrame(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestDirSource_SkipsNonImageFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, testutil.SolidFrame(4, 4, 1, 2, 3).Save(filepath.Join(dir, "a.png")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a frame"), 0o600))

	src, err := newDirSource(dir)
	require.NoError(t, err)
	assert.Len(t, src.paths, 1)
}

func TestDirSink_WritesNumberedSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink, err := newDirSink(dir, "png")
	require.NoError(t, err)

	ctx := context.Background()
	buf := testutil.GradientFrame(8, 8)
	require.NoError(t, sink.WriteFrame(ctx, buf))
	require.NoError(t, sink.WriteFrame(ctx, buf))
	assert.Equal(t, 2, sink.written)

	assert.FileExists(t, filepath.Join(dir, "frame_00000.png"))
	assert.FileExists(t, filepath.Join(dir, "frame_00001.png"))
}
