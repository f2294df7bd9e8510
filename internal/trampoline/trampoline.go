// Package trampoline implements the user-space side of the cross-privilege
// call: a function whose entry point is the uprobe attach target and whose
// call carries the Call Descriptor (src_va, dump_size) into the in-kernel
// probe's argument registers.
//
// Three guarantees must hold for the attach-by-offset scheme in
// internal/probe to work at all:
//
//  1. The symbol survives linking (not inlined away).
//  2. Every call site actually emits a CALL instruction (not folded to a
//     no-op because the callee is visibly side-effect-free).
//  3. The function's address, read at runtime, is the same address the
//     uprobe offset was computed against.
//
// (1) is handled by the //go:noinline pragma on readKernelMemory. (2) is
// handled by routing every call through a package-level function value
// loaded with sync/atomic instead of calling readKernelMemory directly —
// the compiler cannot prove at compile time what that load yields, so it
// cannot elide the indirect call the way it could a direct call to a
// function with no observable side effects. (3) falls out of taking the
// function's address through reflect, which observes the same linked
// symbol the uprobe offset is computed against in internal/selflocate.
package trampoline

import (
	"reflect"
	"sync/atomic"
)

// Symbol names the function below. internal/probe passes it to the uprobe
// as a label only: the attach point is the computed file offset, so this
// name is never looked up in the ELF symbol table.
const Symbol = "readKernelMemory"

type callFn func(uint64, uintptr)

var indirectCall atomic.Value

func init() {
	indirectCall.Store(callFn(readKernelMemory))
}

// Addr returns the runtime address of the trampoline entry point, for the
// self-locator to turn into a file-relative uprobe offset.
func Addr() uintptr {
	return reflect.ValueOf(readKernelMemory).Pointer()
}

// Call invokes the trampoline with the given Call Descriptor. The call
// itself has no observable effect in user space: the attached uprobe reads
// (src, size) out of its own argument registers and pushes chunks onto the
// shared queue before this call returns.
func Call(src uint64, size uintptr) {
	fn := indirectCall.Load().(callFn)
	fn(src, size)
}

//go:noinline
func readKernelMemory(srcAddr uint64, dumpSize uintptr) {
	// Body intentionally empty: this function exists solely to be a
	// uprobe attach point. Its arguments arrive in the ABI's integer
	// argument registers, which is exactly what the attached probe
	// reads via its context. See internal/probe/bpf/read_kernel_memory.c.
}
