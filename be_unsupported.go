//go:build !(amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm)

package main

// The guarded user-memory codec uses binary.LittleEndian throughout, which
// assumes little-endian byte order.
var _ = "this kernel requires a little-endian architecture" + 1
