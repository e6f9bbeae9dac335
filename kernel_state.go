// kernel_state.go - the kernel state machine itself: the fixed task table,
// endpoint table, and the wiring between the scheduler, IPC, and syscall
// dispatcher. One struct assembles the pieces (tasks, endpoints, paging,
// event log) and exposes bootstrap/tick/dump to the arch-side entry
// point.

package main

import "fmt"

// KernelState is the entire reachable kernel state: the fixed task table,
// the fixed endpoint table, and the collaborators (paging shim, event
// log) the core mutates through. There is exactly one instance per
// running kernel (§5).
type KernelState struct {
	tasks        [MaxTasks]Task
	numTasks     int
	endpoints    [MaxEndpoints]Endpoint
	numEndpoints int

	currentTask int
	tickCount   uint64
	halted      bool

	paging *PagingShim
	log    *EventLog
	trace  TraceFlags
	sink   Sink

	demo demoState
}

// NewKernelState builds an empty kernel with no tasks or endpoints yet;
// call CreateTask/CreateEndpoint to populate it, then Bootstrap.
func NewKernelState(paging *PagingShim, logCapacity int) *KernelState {
	ks := &KernelState{
		paging: paging,
		log:    NewEventLog(logCapacity),
		sink:   stdoutSink,
	}
	for i := range ks.endpoints {
		ks.endpoints[i] = NewEndpoint(EndpointId(i))
	}
	ks.numEndpoints = MaxEndpoints
	return ks
}

// CreateTask adds a new Ready task with a fresh TaskId and returns its
// table index. Tasks are only ever created at boot (§3, "Non-goals: no
// dynamic task creation"); there is no corresponding destroy.
func (k *KernelState) CreateTask(id TaskId) int {
	idx := k.numTasks
	k.tasks[idx] = NewTask(id)
	// Each task owns a concrete page-table root from birth, the frame a
	// real kernel would point CR3 at when switching to this task.
	if frame, ok := k.paging.AllocateFrame(); ok {
		k.tasks[idx].AddressSpace.SetRootFrame(frame)
	}
	k.numTasks++
	return idx
}

// pushEvent appends ev to the structured trace ring. Always recorded,
// independent of the TraceFlags runtime toggles (those gate only the
// extra free-text trace lines).
func (k *KernelState) pushEvent(ev LogEvent) {
	k.log.Push(ev)
}

// logError reports an internal invariant violation at error severity and
// abandons the current operation without mutating state (§4.3, §7: "Any
// invariant violation ... causes the operation to be abandoned with a
// logged error; the state is not mutated. Panicking is forbidden.").
func (k *KernelState) logError(format string, args ...any) {
	tracef(k.sink, true, "kernel: error: "+format, args...)
}

// ShouldHalt reports whether the kernel has reached a quiescent state (no
// runnable task) and the host loop should stop ticking.
func (k *KernelState) ShouldHalt() bool {
	return k.halted
}

// DumpEvents writes the full retained event log to the configured sink,
// the "Event dump" from §6, produced on halt.
func (k *KernelState) DumpEvents() {
	if dropped := k.log.Dropped(); dropped > 0 {
		k.sink(fmt.Sprintf("event log: %d earlier events overwritten", dropped))
	}
	k.log.Dump(k.sink)
}
