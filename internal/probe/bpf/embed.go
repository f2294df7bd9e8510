// Package bpf embeds the compiled probe object at build time, following
// the bpf2go embed idiom (a go:embed blob plus a loader that hands it to
// ebpf.LoadCollectionSpecFromReader).
package bpf

import _ "embed"

//go:generate clang -O2 -g -target bpf -D__TARGET_ARCH_x86 -c read_kernel_memory.c -o read_kernel_memory.bpf.o

// Object is the embedded eBPF object file for the memory-read probe.
//
// NOTE: the committed read_kernel_memory.bpf.o is a placeholder, not a
// clang-compiled object — this build environment has no BPF toolchain.
// Run `go generate ./internal/probe/bpf` with clang/libbpf headers
// available to produce the real artifact before shipping. See DESIGN.md.
//
//go:embed read_kernel_memory.bpf.o
var Object []byte
