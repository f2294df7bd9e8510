package acquire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/memdump/emd/internal/discovery"
	"github.com/memdump/emd/internal/layout"
)

// fakeKernel simulates kernel virtual memory as a flat byte slice indexed
// by address, and fakeQueue simulates the probe pushing chunks for the
// most recent trampoline call.
type fakeKernel struct {
	mem []byte
}

func (k *fakeKernel) read(addr uint64, size int) []byte {
	b := make([]byte, size)
	for i := range b {
		if int(addr)+i < len(k.mem) {
			b[i] = k.mem[int(addr)+i]
		}
	}
	return b
}

type fakeQueue struct {
	chunks [][layout.BufferSize]byte
	faulty map[int]bool // chunk index (within current call) to force-fail
	pos    int
}

func (q *fakeQueue) Pop() ([layout.BufferSize]byte, bool) {
	idx := q.pos
	q.pos++
	if q.faulty != nil && q.faulty[idx] {
		return [layout.BufferSize]byte{}, false
	}
	if idx >= len(q.chunks) {
		return [layout.BufferSize]byte{}, false
	}
	return q.chunks[idx], true
}

func fillPattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func buildTrampoline(k *fakeKernel, q *fakeQueue) Trampoline {
	return func(srcVA uint64, dumpSize uintptr) {
		data := k.read(srcVA, int(dumpSize))
		n := layout.CalcQueueElements(int(dumpSize))
		q.chunks = nil
		q.pos = 0
		for i := 0; i < n; i++ {
			cs := layout.ChunkSize(int(dumpSize), i, n)
			var c [layout.BufferSize]byte
			copy(c[:], data[i*layout.BufferSize:i*layout.BufferSize+cs])
			q.chunks = append(q.chunks, c)
		}
	}
}

func TestS7EndToEndOrdering(t *testing.T) {
	mem := make([]byte, 0x3000)
	copy(mem, fillPattern(len(mem)))
	k := &fakeKernel{mem: mem}
	q := &fakeQueue{}

	plan := discovery.Plan{
		Ranges: []discovery.Range{
			{Start: 0x1000, End: 0x1800},
			{Start: 0x2000, End: 0x2400},
		},
		DirectMapBase: 0,
	}

	var out bytes.Buffer
	d := &Driver{Queue: q, Trampoline: buildTrampoline(k, q), Framing: FramingRaw}
	gaps, err := d.Run(plan, &out)
	require.NoError(t, err)
	require.Empty(t, gaps)
	require.Equal(t, 3072, out.Len())

	want := append(append([]byte{}, mem[0x1000:0x1800]...), mem[0x2000:0x2400]...)
	require.Equal(t, want, out.Bytes())
}

func TestGapTolerance(t *testing.T) {
	mem := make([]byte, 0x1000)
	copy(mem, fillPattern(len(mem)))
	k := &fakeKernel{mem: mem}

	runOnce := func(faulty map[int]bool) []byte {
		q := &fakeQueue{faulty: faulty}
		trampoline := func(srcVA uint64, dumpSize uintptr) {
			data := k.read(srcVA, int(dumpSize))
			n := layout.CalcQueueElements(int(dumpSize))
			q.chunks = nil
			q.pos = 0
			for i := 0; i < n; i++ {
				cs := layout.ChunkSize(int(dumpSize), i, n)
				var c [layout.BufferSize]byte
				copy(c[:], data[i*layout.BufferSize:i*layout.BufferSize+cs])
				q.chunks = append(q.chunks, c)
			}
		}

		plan := discovery.Plan{Ranges: []discovery.Range{{Start: 0, End: 0x1000}}}
		var out bytes.Buffer
		d := &Driver{Queue: q, Trampoline: trampoline, Framing: FramingRaw}
		gaps, err := d.Run(plan, &out)
		require.NoError(t, err)
		if faulty != nil {
			require.NotEmpty(t, gaps)
		} else {
			require.Empty(t, gaps)
		}
		return out.Bytes()
	}

	goodRun := runOnce(nil)
	k2 := 3 // fail chunk index 3 (0-indexed), i.e. the 4th chunk
	faultyRun := runOnce(map[int]bool{k2: true})

	require.Len(t, faultyRun, len(goodRun))
	for i := 0; i < layout.BufferSize; i++ {
		require.Zero(t, faultyRun[k2*layout.BufferSize+i], "byte %d should be zeroed", k2*layout.BufferSize+i)
	}
	// everything outside the faulted chunk must be identical to the
	// non-faulted run.
	require.Equal(t, goodRun[:k2*layout.BufferSize], faultyRun[:k2*layout.BufferSize])
	require.Equal(t, goodRun[(k2+1)*layout.BufferSize:], faultyRun[(k2+1)*layout.BufferSize:])
}

func TestLiMEFramingOneHeaderPerSegment(t *testing.T) {
	mem := make([]byte, layout.MaxQueueSize+512)
	k := &fakeKernel{mem: mem}
	q := &fakeQueue{}

	// Two call-descriptor segments: range bigger than MaxQueueSize forces
	// a second iteration of the offset-stepping loop in dumpRange.
	plan := discovery.Plan{
		Ranges: []discovery.Range{{Start: 0, End: uint64(layout.MaxQueueSize) + 256}},
	}

	var out bytes.Buffer
	d := &Driver{Queue: q, Trampoline: buildTrampoline(k, q), Framing: FramingLiME}
	_, err := d.Run(plan, &out)
	require.NoError(t, err)

	// Expected length: 2 headers (32 bytes each) + MaxQueueSize + 256 data bytes.
	require.Equal(t, 2*32+layout.MaxQueueSize+256, out.Len())

	// First header magic at offset 0.
	require.Equal(t, byte(0x45), out.Bytes()[0])
}
