// interrupt_shim.go - the simulated syscall gate (§6).
//
// Reads the fixed argument layout off the user stack, never trusting the
// pointer, and writes the result back the same guarded way. There is no
// real IDT or CPU trap in this hosted simulation; HandleInterrupt is
// called directly wherever a task would otherwise have executed `int
// 0x80`, with the guarded reads/writes standing in for the fault-tolerant
// access a real gate gets from the page-fault fixup.

package main

// Stack slot offsets below the user RSP at the moment of the trap (§6,
// "Syscall ABI"): sysno, a0, a1, a2, then the ret slot. The user side
// reserves these slots beneath its stack pointer, so every slot address
// is userRSP minus its offset.
const (
	sysnoOffset VirtAddr = 16
	a0Offset    VirtAddr = 24
	a1Offset    VirtAddr = 32
	a2Offset    VirtAddr = 40
	retOffset   VirtAddr = 48
)

// SyscallErrUserFault is written to the ret slot when one of the four
// argument slots cannot be read. The task is not killed: a malformed
// syscall frame is the user task's own bug, and the kernel's contract is
// to report it, not to die or to guess (§7).
const SyscallErrUserFault uint64 = 0xFA17_FA17_FA17_FA17

// HandleInterrupt reads the four argument slots below userRSP out of
// idx's user memory, guarded, and either parks a SyscallRequest on the
// task for the scheduler to dispatch or reports a user-memory fault back
// into the ret slot without touching any other kernel state.
func (k *KernelState) HandleInterrupt(idx int, userRSP VirtAddr) {
	t := &k.tasks[idx]
	as := &t.AddressSpace

	sysno, ok := k.paging.GuardedRead64(as, userRSP-sysnoOffset)
	if !ok {
		k.reportUserFault(idx, userRSP)
		return
	}
	a0, ok := k.paging.GuardedRead64(as, userRSP-a0Offset)
	if !ok {
		k.reportUserFault(idx, userRSP)
		return
	}
	a1, ok := k.paging.GuardedRead64(as, userRSP-a1Offset)
	if !ok {
		k.reportUserFault(idx, userRSP)
		return
	}
	a2, ok := k.paging.GuardedRead64(as, userRSP-a2Offset)
	if !ok {
		k.reportUserFault(idx, userRSP)
		return
	}

	req := SyscallRequest{SysNo: sysno, A0: a0, A1: a1, A2: a2}
	t.PendingSyscall = &req
	t.PendingRetAddr = userRSP - retOffset
	t.PendingRetValid = true
	// Dispatch decides whether this request defers its result; until
	// then the slot must not be completed against a stale kind.
	t.PendingRetKind = BlockedNone

	k.pushEvent(LogEvent{Kind: EvSyscallIssued, Task: t.Id})
}

// reportUserFault writes SyscallErrUserFault to the ret slot if that
// slot itself happens to be reachable; if it is not, the fault is merely
// logged, since there is nothing left that can be safely written.
func (k *KernelState) reportUserFault(idx int, userRSP VirtAddr) {
	t := &k.tasks[idx]
	if !k.paging.GuardedWrite64(&t.AddressSpace, userRSP-retOffset, SyscallErrUserFault) {
		k.logError("task %s: unreadable syscall frame at %s and unwritable ret slot", t.Id, userRSP)
	}
}
