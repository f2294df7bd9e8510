package discovery

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ProcKptrRestrict is the default path to the kptr_restrict toggle.
const ProcKptrRestrict = "/proc/sys/kernel/kptr_restrict"

// KptrRestrictPolicy governs whether kallsyms exposes symbol addresses to
// the caller, or whether the on-disk System.map must be consulted instead.
type KptrRestrictPolicy int

const (
	// KptrNone means no restriction: kallsyms addresses are visible.
	KptrNone KptrRestrictPolicy = 0
	// KptrPartial restricts addresses to privileged users; we assume we
	// run privileged (preflight already checked CAP_SYS_ADMIN) so
	// kallsyms is still usable.
	KptrPartial KptrRestrictPolicy = 1
	// KptrFull hides addresses from everyone, including root; the
	// on-disk System.map must be used instead.
	KptrFull KptrRestrictPolicy = 2
)

// ReadKptrRestrict reads and parses the integer in path (normally
// /proc/sys/kernel/kptr_restrict).
func ReadKptrRestrict(path string) (KptrRestrictPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	switch KptrRestrictPolicy(v) {
	case KptrNone, KptrPartial, KptrFull:
		return KptrRestrictPolicy(v), nil
	default:
		return 0, fmt.Errorf("unrecognized kptr_restrict value %d", v)
	}
}
