// Package probe is the Probe Runtime Bridge: it loads the embedded eBPF
// object, attaches it as a uprobe on the trampoline, and hands the
// acquisition driver a live queue map handle.
package probe

import (
	"bytes"
	"fmt"
	"os"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/ringbuf"
	"github.com/cilium/ebpf/rlimit"

	"github.com/memdump/emd/internal/emdlog"
	"github.com/memdump/emd/internal/emderr"
	"github.com/memdump/emd/internal/probe/bpf"
	"github.com/memdump/emd/internal/selflocate"
	"github.com/memdump/emd/internal/trampoline"
)

const (
	programName  = "read_kernel_memory"
	queueMapName = "BUFFER_QUEUE"
	logMapName   = "LOG_EVENTS"
)

// Bridge owns the lifetime of the loaded eBPF collection, the uprobe link,
// and the queue map handle borrowed by the acquisition driver.
type Bridge struct {
	coll     *ebpf.Collection
	uprobe   link.Link
	queue    *ebpf.Map
	logRd    *ringbuf.Reader
	selfPath string
}

// Load installs the embedded probe: parses the object, attaches it as a
// uprobe at the trampoline's computed file offset on the current
// executable, and opens the shared queue map. The best-effort in-kernel
// log receiver is attempted last; its failure is logged, not fatal.
func Load() (*Bridge, error) {
	if err := rlimit.RemoveMemlock(); err != nil {
		emdlog.Warnf("raising memlock rlimit for eBPF maps failed: %s", err)
	}

	spec, err := ebpf.LoadCollectionSpecFromReader(bytes.NewReader(bpf.Object))
	if err != nil {
		return nil, fmt.Errorf("%w: parse embedded object: %s", emderr.ErrLoader, err)
	}

	coll, err := ebpf.NewCollection(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: load collection: %s", emderr.ErrLoader, err)
	}

	b := &Bridge{coll: coll}

	prog := coll.Programs[programName]
	if prog == nil {
		b.Close()
		return nil, fmt.Errorf("%w: embedded object has no program named %q", emderr.ErrLoader, programName)
	}

	selfPath, err := os.Readlink("/proc/self/exe")
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("%w: resolve /proc/self/exe: %s", emderr.ErrLoader, err)
	}
	b.selfPath = selfPath

	loadBase, err := selflocate.LoadBase()
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("%w: locate load base: %s", emderr.ErrLoader, err)
	}
	offset := selflocate.Offset(uint64(trampoline.Addr()), loadBase)

	ex, err := link.OpenExecutable(selfPath)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("%w: open executable %s: %s", emderr.ErrLoader, selfPath, err)
	}

	up, err := ex.Uprobe(trampoline.Symbol, prog, &link.UprobeOptions{Address: offset})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("%w: attach uprobe at offset %#x: %s", emderr.ErrLoader, offset, err)
	}
	b.uprobe = up

	queue := coll.Maps[queueMapName]
	if queue == nil {
		b.Close()
		return nil, fmt.Errorf("%w: embedded object has no map named %q", emderr.ErrLoader, queueMapName)
	}
	b.queue = queue

	b.initLogBridge()

	return b, nil
}

// initLogBridge is best-effort: a missing LOG_EVENTS map (e.g. the probe
// was built without log support) is logged and otherwise ignored.
func (b *Bridge) initLogBridge() {
	logMap := b.coll.Maps[logMapName]
	if logMap == nil {
		emdlog.Debugf("no %s map present, skipping in-kernel log bridge", logMapName)
		return
	}
	rd, err := ringbuf.NewReader(logMap)
	if err != nil {
		emdlog.Warnf("failed to initialize eBPF log bridge: %s", err)
		return
	}
	b.logRd = rd
	go b.pumpLogs()
}

func (b *Bridge) pumpLogs() {
	for {
		rec, err := b.logRd.Read()
		if err != nil {
			return
		}
		emdlog.Debugf("probe: %s", string(rec.RawSample))
	}
}

// Queue returns the shared BUFFER_QUEUE map handle, for the acquisition
// driver to pop chunks from.
func (b *Bridge) Queue() *ebpf.Map { return b.queue }

// Close detaches the uprobe and releases all eBPF resources.
func (b *Bridge) Close() error {
	var firstErr error
	if b.logRd != nil {
		if err := b.logRd.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if b.uprobe != nil {
		if err := b.uprobe.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if b.coll != nil {
		b.coll.Close()
	}
	return firstErr
}
