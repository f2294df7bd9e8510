// Package sink implements the Output Pipeline: sink selection (file or
// stdout), optional compression (Zstd or Lz4), and a buffered, flushable
// io.Writer the acquisition driver streams bytes into.
package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/DataDog/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/memdump/emd/internal/emderr"
)

// Compression selects the codec wrapping the base sink.
type Compression int

const (
	// CompressionNone writes bytes through unmodified.
	CompressionNone Compression = iota
	// CompressionZstd wraps the sink in a Zstd encoder at level 3.
	CompressionZstd
	// CompressionLz4 wraps the sink in an Lz4 frame encoder.
	CompressionLz4
)

const zstdLevel = 3

// Writer is a buffered, flushable sink: the composed
// base-sink/compressor/buffer stack the driver writes dumped bytes into.
type Writer struct {
	buf      *bufio.Writer
	closer   io.Closer // the compressor, if any, which must be closed to finalize its frame
	baseFile *os.File  // non-nil only when writing to a file, for final sync
}

// Open selects the base sink (path, or stdout if path is empty) and wraps
// it with the requested compressor and a buffered writer.
func Open(path string, compression Compression) (*Writer, error) {
	base, baseFile, err := selectOutput(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", emderr.ErrSink, err)
	}

	var w io.Writer = base
	var closer io.Closer

	switch compression {
	case CompressionNone:
		// no wrapping
	case CompressionZstd:
		zw := zstd.NewWriterLevel(base, zstdLevel)
		w = zw
		closer = zw
	case CompressionLz4:
		lw := lz4.NewWriter(base)
		w = lw
		closer = lw
	default:
		return nil, fmt.Errorf("%w: unknown compression mode %d", emderr.ErrSink, compression)
	}

	return &Writer{
		buf:      bufio.NewWriter(w),
		closer:   closer,
		baseFile: baseFile,
	}, nil
}

func selectOutput(path string) (io.Writer, *os.File, error) {
	if path == "" {
		return os.Stdout, nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f, nil
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.buf.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: %s", emderr.ErrSink, err)
	}
	return n, nil
}

// Flush flushes the buffer, then finalizes the compressor's frame (if
// any), then syncs the underlying file (if any) — the guaranteed final
// flush on the success path.
func (w *Writer) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("%w: flush buffer: %s", emderr.ErrSink, err)
	}
	if w.closer != nil {
		if err := w.closer.Close(); err != nil {
			return fmt.Errorf("%w: finalize compressor: %s", emderr.ErrSink, err)
		}
	}
	if w.baseFile != nil {
		if err := w.baseFile.Sync(); err != nil {
			return fmt.Errorf("%w: sync output file: %s", emderr.ErrSink, err)
		}
		if err := w.baseFile.Close(); err != nil {
			return fmt.Errorf("%w: close output file: %s", emderr.ErrSink, err)
		}
	}
	return nil
}

// ParseCompression maps the --compress CLI value to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLz4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}
