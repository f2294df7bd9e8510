package sink

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

func TestWriteAndFlushToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.raw")

	w, err := Open(path, CompressionNone)
	require.NoError(t, err)

	_, err = w.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))
}

func TestParseCompression(t *testing.T) {
	cases := map[string]Compression{
		"":     CompressionNone,
		"none": CompressionNone,
		"zstd": CompressionZstd,
		"lz4":  CompressionLz4,
	}
	for in, want := range cases {
		got, err := ParseCompression(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseCompression("gzip")
	require.Error(t, err)
}

func TestLz4RoundTripsThroughFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.lz4")

	w, err := Open(path, CompressionLz4)
	require.NoError(t, err)
	payload := []byte("the quick brown fox jumps over the lazy dog, repeated: " +
		"the quick brown fox jumps over the lazy dog")
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(4)) // at minimum the lz4 frame magic

	compressed, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := io.ReadAll(lz4.NewReader(bytes.NewReader(compressed)))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}
