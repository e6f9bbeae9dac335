// trace.go - low-cost, selectively-enabled syscall and IPC-path tracing.
//
// The ipc_trace_syscall / ipc_trace_paths toggles are plain runtime
// booleans rather than build tags; the cost difference only matters on
// bare metal, and this kernel's tracing is a few comparisons per syscall
// either way.

package main

import "fmt"

// TraceFlags selects which low-level trace lines kernel_state.go emits in
// addition to the structured EventLog (which is always recorded).
type TraceFlags struct {
	Syscalls bool // syscall-boundary entry/exit (ipc_trace_syscall)
	IPCPaths bool // fast/slow/delivered/no-waiter path tracing (ipc_trace_paths)
}

// Names reports the enabled flags as their feature-flag names, for the
// startup banner.
func (f TraceFlags) Names() []string {
	var names []string
	if f.Syscalls {
		names = append(names, "ipc_trace_syscall")
	}
	if f.IPCPaths {
		names = append(names, "ipc_trace_paths")
	}
	return names
}

// Sink is where trace and diagnostic lines go. On real hardware this is
// the serial/VGA logging sink (§6, "Event dump"); here it is anything that
// accepts a line of text, normally os.Stdout via fmt.Println.
type Sink func(string)

func stdoutSink(line string) { fmt.Println(line) }

// tracef writes one line to sink if enabled is true, a no-op otherwise.
func tracef(sink Sink, enabled bool, format string, args ...any) {
	if !enabled || sink == nil {
		return
	}
	sink(fmt.Sprintf(format, args...))
}
