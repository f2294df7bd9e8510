// Package preflight implements the Capability / Resource Preflight: it
// verifies the process holds CAP_SYS_ADMIN before any kernel interaction,
// then best-effort raises the locked-memory rlimit for eBPF map
// allocation on older kernels.
package preflight

import (
	"fmt"

	"github.com/syndtr/gocapability/capability"
	"golang.org/x/sys/unix"

	"github.com/memdump/emd/internal/emderr"
	"github.com/memdump/emd/internal/emdlog"
)

// CheckCapabilities verifies the running process's effective capability
// set contains CAP_SYS_ADMIN, the privilege required to read
// /proc/iomem and load eBPF programs. It is fatal if absent.
func CheckCapabilities() error {
	caps, err := capability.NewPid2(0)
	if err != nil {
		return fmt.Errorf("%w: load process capabilities: %s", emderr.ErrPrivilege, err)
	}
	if err := caps.Load(); err != nil {
		return fmt.Errorf("%w: read process capabilities: %s", emderr.ErrPrivilege, err)
	}
	if !caps.Get(capability.EFFECTIVE, capability.CAP_SYS_ADMIN) {
		return fmt.Errorf("%w: CAP_SYS_ADMIN is required to read /proc/iomem and load eBPF programs", emderr.ErrPrivilege)
	}
	return nil
}

// RaiseMemlockLimit raises RLIMIT_MEMLOCK to infinity, needed for eBPF map
// allocation on kernels without memcg-based accounting. Failure here is a
// warning, not fatal: it is logged and the function returns normally.
func RaiseMemlockLimit() {
	rlim := unix.Rlimit{Cur: unix.RLIM_INFINITY, Max: unix.RLIM_INFINITY}
	if err := unix.Setrlimit(unix.RLIMIT_MEMLOCK, &rlim); err != nil {
		emdlog.Warnf("raising RLIMIT_MEMLOCK failed (continuing): %s", err)
	}
}
