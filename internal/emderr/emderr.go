// Package emderr defines the error-kind taxonomy from the acquisition
// pipeline's error handling design: sentinels the command layer switches on
// with errors.Is to pick an exit code, rather than ad-hoc string matching.
package emderr

import "errors"

// Kind sentinels. Wrap one of these with fmt.Errorf("...: %w", ErrX) so
// errors.Is still finds it after context is added.
var (
	// ErrPrivilege marks a missing-capability failure (fatal).
	ErrPrivilege = errors.New("insufficient privilege")
	// ErrDiscovery marks an unreadable or malformed procfs/sysfs input
	// that prevented building the acquisition plan (fatal).
	ErrDiscovery = errors.New("discovery failed")
	// ErrLoader marks an eBPF load/verify/attach failure (fatal).
	ErrLoader = errors.New("probe load failed")
	// ErrSink marks a write failure against the output pipeline (fatal).
	ErrSink = errors.New("sink write failed")
	// ErrProgrammer marks an impossible internal state (fatal, should
	// never be reachable in correct code).
	ErrProgrammer = errors.New("internal invariant violated")
)

// ExitCode maps an error produced by the pipeline to a process exit code.
// Unrecognized errors (nil Kind) get a generic non-zero code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrPrivilege):
		return 1
	case errors.Is(err, ErrDiscovery), errors.Is(err, ErrLoader), errors.Is(err, ErrProgrammer):
		return 2
	case errors.Is(err, ErrSink):
		return 3
	default:
		return 2
	}
}
