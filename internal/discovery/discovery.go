// Package discovery implements the three procfs/sysfs lookups that produce
// the acquisition plan: physical RAM ranges, the kernel direct-map base,
// and the kptr_restrict policy gating how the latter is found.
package discovery

import "fmt"

// Paths bundles the procfs/sysfs locations discovery reads from, so tests
// can point at fixtures instead of the real host.
type Paths struct {
	Iomem        string
	KptrRestrict string
	Kallsyms     string
	OSRelease    string
	SystemRAMTag string
}

// DefaultPaths returns the real host paths listed in the external
// interfaces section.
func DefaultPaths() Paths {
	return Paths{
		Iomem:        ProcIomem,
		KptrRestrict: ProcKptrRestrict,
		Kallsyms:     ProcKallsyms,
		OSRelease:    ProcOSRelease,
		SystemRAMTag: systemRAMTag,
	}
}

// Plan is the output of discovery: everything the acquisition driver needs
// to walk physical memory.
type Plan struct {
	Ranges               []Range
	DirectMapBase        uint64
	KASLRAssumedDisabled bool
	TotalBytes           uint64
}

// Discover runs all three lookups and assembles a Plan.
func Discover(p Paths) (Plan, error) {
	ranges, err := SystemRAMRanges(p.Iomem, p.SystemRAMTag)
	if err != nil {
		return Plan{}, fmt.Errorf("system RAM ranges: %w", err)
	}

	policy, err := ReadKptrRestrict(p.KptrRestrict)
	if err != nil {
		return Plan{}, fmt.Errorf("kptr_restrict: %w", err)
	}

	base, found, err := PageOffsetBase(policy, p.OSRelease, p.Kallsyms)
	if err != nil {
		return Plan{}, fmt.Errorf("page_offset_base: %w", err)
	}

	return Plan{
		Ranges:               ranges,
		DirectMapBase:        base,
		KASLRAssumedDisabled: !found,
		TotalBytes:           TotalSize(ranges),
	}, nil
}
