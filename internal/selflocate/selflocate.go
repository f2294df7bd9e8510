// Package selflocate computes the in-memory load base of the running
// executable, from which the uprobe's file-relative attach offset is
// derived: offset = &trampoline - load_base.
package selflocate

import (
	"fmt"

	"github.com/prometheus/procfs"
)

// LoadBase returns the load base of the calling process's own executable
// image: the first read+execute+private mapping's start address minus its
// file offset. Every subsequent text-segment mapping shares this base, so
// a file offset computed against it is valid for any symbol in the binary.
func LoadBase() (uint64, error) {
	proc, err := procfs.Self()
	if err != nil {
		return 0, fmt.Errorf("open /proc/self: %w", err)
	}

	maps, err := proc.ProcMaps()
	if err != nil {
		return 0, fmt.Errorf("read /proc/self/maps: %w", err)
	}

	for _, m := range maps {
		if m.Perms == nil {
			continue
		}
		if m.Perms.Read && m.Perms.Execute && m.Perms.Private {
			return uint64(m.StartAddr) - uint64(m.Offset), nil
		}
	}

	return 0, fmt.Errorf("no read+execute+private mapping found in /proc/self/maps")
}

// Offset returns the file-relative offset of fnAddr (typically obtained
// from an opaque read of a function pointer) given the executable's load
// base, as returned by LoadBase.
func Offset(fnAddr, loadBase uint64) uint64 {
	return fnAddr - loadBase
}
