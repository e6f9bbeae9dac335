// types.go - shared identifiers and fixed-capacity constants for the kernel
// state machine.
//
// These are deliberately simple newtypes: the kernel core avoids pointers
// and heap allocation in its hot state so that the whole reachable state
// space stays easy to reason about (and, eventually, to verify).

package main

import "fmt"

// TaskId is an opaque, unique-for-lifetime identifier. It is never reused
// and is distinct from a task's index into the fixed task table.
type TaskId uint64

func (t TaskId) String() string {
	return fmt.Sprintf("task#%d", uint64(t))
}

// EndpointId addresses one of the fixed IPC endpoints.
type EndpointId uint32

func (e EndpointId) String() string {
	return fmt.Sprintf("ep#%d", uint32(e))
}

const (
	// MaxTasks bounds the fixed task table and every per-endpoint queue.
	MaxTasks = 8

	// MaxEndpoints bounds the fixed endpoint table.
	MaxEndpoints = 4

	// MaxMappings bounds the per-task logical address space.
	MaxMappings = 64

	// DefaultTimeSlice is the cooperative scheduler's round-robin quantum,
	// expressed in ticks.
	DefaultTimeSlice = 4

	// IPCErrDeadPartner is the sentinel last_reply value delivered to a
	// task whose IPC partner died before replying. Part of the public
	// syscall ABI, not an internal implementation detail.
	IPCErrDeadPartner uint64 = 0xDEAD_DEAD_DEAD_DEAD

	// UnknownSyscallResult is returned in the ret slot for an
	// unrecognized syscall number.
	UnknownSyscallResult uint64 = 0xFFFF_FFFF_FFFF_FFFF
)
