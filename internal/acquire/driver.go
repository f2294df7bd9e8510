// Package acquire implements the Acquisition Driver: it walks the physical
// ranges from the discovery plan, issues trampoline calls sized to the
// queue's capacity, drains the queue in lockstep with each call, and
// forwards the reconstructed bytes through the output pipeline.
package acquire

import (
	"fmt"
	"io"

	"github.com/memdump/emd/internal/discovery"
	"github.com/memdump/emd/internal/emderr"
	"github.com/memdump/emd/internal/emdlog"
	"github.com/memdump/emd/internal/layout"
	"github.com/memdump/emd/internal/lime"
)

// Framing selects whether a LiME header precedes each dumped segment.
type Framing int

const (
	// FramingRaw emits no header, only the raw bytes of each segment.
	FramingRaw Framing = iota
	// FramingLiME emits one 32-byte LiME header per call-descriptor
	// segment, immediately before that segment's first chunk.
	FramingLiME
)

// Queue is the minimal interface the driver needs from the shared chunk
// queue: pop the next chunk the probe produced, or report it isn't there.
// The real implementation is backed by the probe's eBPF queue map; tests
// use an in-memory fake.
type Queue interface {
	// Pop removes and returns the next chunk. ok is false if the probe
	// did not produce a chunk for this position (queue empty).
	Pop() (chunk [layout.BufferSize]byte, ok bool)
}

// Trampoline invokes the in-kernel probe with a Call Descriptor and
// returns once the probe has finished producing (or failing to produce)
// the requested chunks.
type Trampoline func(srcVA uint64, dumpSize uintptr)

// Driver walks a discovery Plan and streams physical memory to a sink.
type Driver struct {
	Queue      Queue
	Trampoline Trampoline
	Framing    Framing
}

// Gap records a chunk the driver could not obtain from the probe.
type Gap struct {
	SegmentOffset uint64
	ChunkIndex    int
}

// Run dumps every range in plan.Ranges, translated through plan.DirectMapBase,
// to sink. It returns the list of gaps encountered (for callers that want
// more than the logged warnings) and the first fatal sink error, if any.
func (d *Driver) Run(plan discovery.Plan, sink io.Writer) ([]Gap, error) {
	var allGaps []Gap

	for _, r := range plan.Ranges {
		emdlog.Infof("dumping 0x%x - 0x%x", r.Start, r.End)
		gaps, err := d.dumpRange(r, plan.DirectMapBase, sink)
		allGaps = append(allGaps, gaps...)
		if err != nil {
			return allGaps, err
		}
	}

	if f, ok := sink.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return allGaps, fmt.Errorf("%w: flush sink: %s", emderr.ErrSink, err)
		}
	}

	return allGaps, nil
}

func (d *Driver) dumpRange(r discovery.Range, base uint64, sink io.Writer) ([]Gap, error) {
	var gaps []Gap
	rangeLen := r.Len()

	for offset := r.Start; offset < r.End; offset += layout.MaxQueueSize {
		remaining := rangeLen - (offset - r.Start)
		dumpSize := uint64(layout.MaxQueueSize)
		if remaining < dumpSize {
			dumpSize = remaining
		}

		d.Trampoline(base+offset, uintptr(dumpSize))

		n := layout.CalcQueueElements(int(dumpSize))
		segmentGaps, err := d.drainSegment(offset, int(dumpSize), n, sink)
		gaps = append(gaps, segmentGaps...)
		if err != nil {
			return gaps, err
		}

		for _, g := range segmentGaps {
			start := g.SegmentOffset + uint64(g.ChunkIndex*layout.BufferSize)
			end := start + uint64(layout.ChunkSize(int(dumpSize), g.ChunkIndex, n))
			emdlog.Warnf("could not read 0x%x - 0x%x; writing zeros", start, end)
		}
	}

	return gaps, nil
}

// drainSegment pops n chunks for one call descriptor's worth of output,
// writing each (with an optional framing header before the first chunk)
// to sink. It returns the gaps recorded for this segment.
func (d *Driver) drainSegment(offset uint64, dumpSize, n int, sink io.Writer) (gaps []Gap, err error) {
	headerWritten := false

	for i := 0; i < n; i++ {
		chunkSize := layout.ChunkSize(dumpSize, i, n)

		chunk, ok := d.Queue.Pop()
		if !ok {
			gaps = append(gaps, Gap{SegmentOffset: offset, ChunkIndex: i})
			chunk = [layout.BufferSize]byte{}
		}

		if d.Framing == FramingLiME && !headerWritten {
			h := lime.Header{StartAddress: offset, EndAddress: offset + uint64(dumpSize)}
			b := h.Bytes()
			if _, err := sink.Write(b[:]); err != nil {
				return gaps, fmt.Errorf("%w: write LiME header: %s", emderr.ErrSink, err)
			}
			headerWritten = true
		}

		if _, err := sink.Write(chunk[:chunkSize]); err != nil {
			return gaps, fmt.Errorf("%w: write chunk: %s", emderr.ErrSink, err)
		}
	}

	return gaps, nil
}
