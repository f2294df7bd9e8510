package discovery

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ProcKallsyms and ProcOSRelease are the default procfs paths consulted
// alongside the on-disk System.map.
const (
	ProcKallsyms   = "/proc/kallsyms"
	ProcOSRelease  = "/proc/sys/kernel/osrelease"
	pageOffsetBase = "page_offset_base"
)

// PageOffsetBase determines the direct-map base B by reading whichever
// symbol table the given policy selects:
//
//   - KptrFull: the on-disk System.map for the running kernel release.
//   - KptrNone or KptrPartial: /proc/kallsyms.
//
// If no page_offset_base entry is found, it returns (0, false, nil):
// B=0 is the "KASLR believed disabled" convention from the data model.
func PageOffsetBase(policy KptrRestrictPolicy, osReleasePath, kallsymsPath string) (base uint64, found bool, err error) {
	switch policy {
	case KptrFull:
		release, err := readOSRelease(osReleasePath)
		if err != nil {
			return 0, false, err
		}
		path := "/boot/System.map-" + release
		return scanSymbolFile(path)
	case KptrNone, KptrPartial:
		return scanSymbolFile(kallsymsPath)
	default:
		return 0, false, fmt.Errorf("unsupported kptr_restrict policy %d", policy)
	}
}

func readOSRelease(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	return strings.TrimRight(string(raw), " \t\r\n"), nil
}

// scanSymbolFile scans a kallsyms-formatted file ("HEXADDR TYPE NAME
// [MODULE]") for page_offset_base and returns its address.
func scanSymbolFile(path string) (base uint64, found bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		if fields[2] != pageOffsetBase {
			continue
		}
		addr, err := strconv.ParseUint(fields[0], 16, 64)
		if err != nil {
			continue
		}
		return addr, true, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, false, fmt.Errorf("read %s: %w", path, err)
	}
	return 0, false, nil
}
