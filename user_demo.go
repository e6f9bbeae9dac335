// user_demo.go - the fixed embedded demo workload.
//
// Boots a small fixed set of user tasks rather than loading an ELF, so
// that the scheduler and IPC paths have something concrete to drive in
// the absence of a real user-mode program loader. Three tasks: an idle
// task, a client that sends one message and waits for a reply, and a
// server that echoes it back incremented by one.
//
// Each "user step" here plays the role of user-mode code executing
// `int 0x80`: it writes its syscall frame into its own mapped stack page
// through the same guarded accessors the kernel itself uses, then calls
// the interrupt shim. There is no real instruction stream; the step
// functions below are the fixed program each task runs.

package main

const (
	demoStackPage = 0x1000
	demoEchoBump  = 1
)

// demoState carries the per-task program counter for the fixed demo
// workload plus the bookkeeping needed to read a completed syscall's
// result back out of guarded user memory.
type demoState struct {
	step     [MaxTasks]int
	mapped   [MaxTasks]bool
	stackTop [MaxTasks]VirtAddr
	retAddr  [MaxTasks]VirtAddr
}

// demoEndpoint is the one endpoint the fixed workload exercises.
const demoEndpoint EndpointId = 0

// BootstrapDemo populates an otherwise-empty KernelState with the fixed
// three-task workload and makes task 0 Running (§4.1, initial
// selection). Returns the three task indices for callers (monitor.go,
// main.go) that want to address them directly.
func (k *KernelState) BootstrapDemo() (idleIdx, clientIdx, serverIdx int) {
	idleIdx = k.CreateTask(TaskId(0))
	clientIdx = k.CreateTask(TaskId(1))
	serverIdx = k.CreateTask(TaskId(2))

	k.tasks[idleIdx].State = TaskRunning
	k.currentTask = idleIdx
	return
}

// userStepIssueSyscall runs one step of idx's fixed program, if it is
// not already waiting on a previously issued syscall. Called once per
// tick from scheduler.go's Tick for whichever task is Running.
func (k *KernelState) userStepIssueSyscall(idx int) {
	t := &k.tasks[idx]
	if t.PendingSyscall != nil || t.PendingRetValid {
		return // still in flight; nothing to do until it completes
	}
	if t.LastSyscallUnread {
		// The previous non-IPC syscall's result is consumed here, at the
		// task's first step after it was written (§4.2).
		t.LastSyscallUnread = false
	}

	switch idx {
	case 1:
		k.demoClientStep(idx)
	case 2:
		k.demoServerStep(idx)
	default:
		// idle task: no workload
	}
}

func (k *KernelState) demoClientStep(idx int) {
	switch k.demo.step[idx] {
	case 0:
		k.issueDemoSyscall(idx, SysIpcSend, uint64(demoEndpoint), 0xC0FFEE, 0)
		k.demo.step[idx] = 1
	case 1:
		reply, ok := k.paging.GuardedRead64(&k.tasks[idx].AddressSpace, k.demo.retAddr[idx])
		if ok {
			tracef(k.sink, k.trace.Syscalls, "demo: client %s got reply %#x", k.tasks[idx].Id, reply)
		}
		k.demo.step[idx] = 2
	default:
		// one-shot client, done
	}
}

func (k *KernelState) demoServerStep(idx int) {
	switch k.demo.step[idx] {
	case 0:
		k.issueDemoSyscall(idx, SysIpcRecv, uint64(demoEndpoint), 0, 0)
		k.demo.step[idx] = 1
	case 1:
		msg, ok := k.paging.GuardedRead64(&k.tasks[idx].AddressSpace, k.demo.retAddr[idx])
		if !ok {
			return
		}
		k.issueDemoSyscall(idx, SysIpcReply, uint64(demoEndpoint), msg+demoEchoBump, 0)
		k.demo.step[idx] = 2
	default:
		// replies once, then idles; a real server would loop back to 0
	}
}

// issueDemoSyscall ensures idx has a mapped stack page, writes the
// syscall frame into it exactly the way real user-mode code would, and
// traps into HandleInterrupt.
func (k *KernelState) issueDemoSyscall(idx int, sysno, a0, a1, a2 uint64) {
	k.ensureDemoStackMapped(idx)

	t := &k.tasks[idx]
	rsp := k.demo.stackTop[idx]
	as := &t.AddressSpace

	k.paging.GuardedWrite64(as, rsp-sysnoOffset, sysno)
	k.paging.GuardedWrite64(as, rsp-a0Offset, a0)
	k.paging.GuardedWrite64(as, rsp-a1Offset, a1)
	k.paging.GuardedWrite64(as, rsp-a2Offset, a2)

	k.demo.retAddr[idx] = rsp - retOffset
	k.HandleInterrupt(idx, rsp)
}

// ensureDemoStackMapped maps one page of stack for idx the first time it
// is needed, the way a real loader would map the initial user stack
// before transferring control.
func (k *KernelState) ensureDemoStackMapped(idx int) {
	if k.demo.mapped[idx] {
		return
	}
	t := &k.tasks[idx]
	base := VirtAddr(demoStackPage * (idx + 1))
	frame, ok := k.paging.AllocateFrame()
	if !ok {
		k.logError("task %s: no frame available for demo stack", t.Id)
		return
	}
	err := t.AddressSpace.Apply(MemAction{
		Kind:  MemActionMap,
		Page:  base.Page(),
		Frame: frame,
		Flags: FlagPresent | FlagWritable | FlagUser,
	})
	if err != nil {
		k.logError("task %s: demo stack map failed: %s", t.Id, err)
		return
	}
	// RSP sits at the top of the mapped page; the syscall frame's slots
	// all land below it, inside the page.
	k.demo.stackTop[idx] = base + VirtAddr(PageSize)
	k.demo.mapped[idx] = true
}
