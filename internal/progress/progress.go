// Package progress renders a terse, single-line byte-progress indicator
// on stderr. No progress-bar library appears anywhere in the retrieval
// pack (see DESIGN.md), so this stays a small stdlib writer in the
// teacher's terse-stderr-line idiom rather than pulling in an unrelated
// dependency.
package progress

import (
	"fmt"
	"io"
)

// Bar tracks bytes written against a known total and rewrites a single
// status line.
type Bar struct {
	out     io.Writer
	total   uint64
	written uint64
	enabled bool
}

// New returns a Bar. If enabled is false, Add is a no-op — this lets
// callers unconditionally call Add without branching on --progress-bar.
func New(out io.Writer, total uint64, enabled bool) *Bar {
	return &Bar{out: out, total: total, enabled: enabled}
}

// Add advances the bar by n bytes and redraws.
func (b *Bar) Add(n uint64) {
	if !b.enabled {
		return
	}
	b.written += n
	pct := 0.0
	if b.total > 0 {
		pct = float64(b.written) / float64(b.total) * 100
	}
	fmt.Fprintf(b.out, "\rdumping: %s / %s (%.1f%%)", humanizeBytes(b.written), humanizeBytes(b.total), pct)
}

// Done finalizes the line with a trailing newline.
func (b *Bar) Done() {
	if !b.enabled {
		return
	}
	fmt.Fprintln(b.out)
}

// humanizeBytes renders n using binary (KiB/MiB/...) units, matching the
// original tool's bytes_as_hrb helper (original_source/emd/src/traits.rs).
func humanizeBytes(n uint64) string {
	const unit = 1024.0
	units := []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	size := float64(n)
	i := 0
	for size >= unit && i < len(units)-1 {
		size /= unit
		i++
	}
	return fmt.Sprintf("%.2f%s", size, units[i])
}
