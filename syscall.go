// syscall.go - the syscall dispatch table (§6).
//
// Mem-op results (PAGE_MAP, PAGE_UNMAP, ECHO) are written to ret
// synchronously through last_syscall_ret/last_syscall_unread; IPC
// results are written to ret only once the issuing task is next Running,
// via LastMsg/LastReply, since ipc_recv/ipc_send can block arbitrarily
// long first.

package main

// Syscall numbers, part of the public ABI (§6).
const (
	SysIpcRecv   uint64 = 1
	SysIpcSend   uint64 = 2
	SysIpcReply  uint64 = 3
	SysPageMap   uint64 = 4
	SysPageUnmap uint64 = 5
	SysEcho      uint64 = 31
)

// Mem-op result codes returned in ret for PAGE_MAP/PAGE_UNMAP, distinct
// from a bare 0-for-success/nonzero-for-error convention so the specific
// AddressSpaceError survives into the ret slot.
const (
	MemOk                  uint64 = 0
	MemErrAlreadyMapped    uint64 = 1
	MemErrNotMapped        uint64 = 2
	MemErrCapacityExceeded uint64 = 3
	MemErrNoFrame          uint64 = 4
)

// SyscallErrBadArg is returned in ret when a syscall argument is out of
// range (an endpoint id past the endpoint table). Distinct from the
// unknown-sysno sentinel: the number was recognized, the argument was not.
const SyscallErrBadArg uint64 = 6

func memErrorCode(err error) uint64 {
	switch err {
	case nil:
		return MemOk
	case ErrAlreadyMapped:
		return MemErrAlreadyMapped
	case ErrNotMapped:
		return MemErrNotMapped
	case ErrCapacityExceeded:
		return MemErrCapacityExceeded
	default:
		return MemErrCapacityExceeded
	}
}

// handlePendingSyscallIfAny dispatches the running task's parked
// SyscallRequest, if it has one, and clears it. Called once per tick
// from scheduler.go before the task is allowed to run further.
func (k *KernelState) handlePendingSyscallIfAny() {
	idx := k.currentTask
	t := &k.tasks[idx]
	if t.PendingSyscall == nil {
		return
	}
	req := *t.PendingSyscall
	t.PendingSyscall = nil
	tracef(k.sink, k.trace.Syscalls, "syscall: task %s sysno=%d a0=%#x a1=%#x a2=%#x", t.Id, req.SysNo, req.A0, req.A1, req.A2)
	k.dispatchSyscall(idx, req)
}

// dispatchSyscall routes req to the matching kernel operation. An
// unrecognized SysNo is answered with UnknownSyscallResult rather than
// killing the task (§6): the ABI is closed but a bad sysno is still just
// data, not a reason to crash.
func (k *KernelState) dispatchSyscall(idx int, req SyscallRequest) {
	t := &k.tasks[idx]

	switch req.SysNo {
	case SysIpcRecv, SysIpcSend, SysIpcReply:
		if req.A0 >= MaxEndpoints {
			k.writeRetNow(idx, SyscallErrBadArg)
			break
		}
		switch req.SysNo {
		case SysIpcRecv:
			t.PendingRetKind = BlockedIpcRecv
			k.IpcRecv(idx, EndpointId(req.A0))
		case SysIpcSend:
			t.PendingRetKind = BlockedIpcReply
			k.IpcSend(idx, EndpointId(req.A0), req.A1)
		case SysIpcReply:
			k.IpcReply(idx, EndpointId(req.A0), req.A1)
			k.writeRetNow(idx, MemOk)
		}

	case SysPageMap:
		k.dispatchPageMap(idx, req)

	case SysPageUnmap:
		err := t.AddressSpace.Apply(MemAction{Kind: MemActionUnmap, Page: VirtPage{Number: req.A0}})
		if err == nil {
			k.paging.RemoveMapping(VirtPage{Number: req.A0})
		}
		k.syscallReturn(idx, memErrorCode(err))

	case SysEcho:
		k.syscallReturn(idx, req.A0)

	default:
		k.syscallReturn(idx, UnknownSyscallResult)
	}

	k.pushEvent(LogEvent{Kind: EvSyscallHandled, Task: t.Id})
}

// dispatchPageMap applies the caller's Map{page=a0, frame=a1, flags=a2}
// (§4.2, §6) to the task's logical address space and forwards the
// concrete mapping to the paging shim, rolling the logical map back if
// the shim cannot install it (§4.4: a failed Map leaves the map
// unchanged).
func (k *KernelState) dispatchPageMap(idx int, req SyscallRequest) {
	t := &k.tasks[idx]
	action := MemAction{Kind: MemActionMap, Page: VirtPage{Number: req.A0}, Frame: PhysFrame{Number: req.A1}, Flags: PageFlags(req.A2)}
	err := t.AddressSpace.Apply(action)
	if err != nil {
		k.syscallReturn(idx, memErrorCode(err))
		return
	}
	if err := k.paging.InstallMapping(Mapping{Page: action.Page, Frame: action.Frame, Flags: action.Flags}); err != nil {
		t.AddressSpace.Apply(MemAction{Kind: MemActionUnmap, Page: action.Page})
		k.syscallReturn(idx, MemErrNoFrame)
		return
	}
	k.syscallReturn(idx, MemOk)
}

// syscallReturn records a non-IPC syscall's result in last_syscall_ret
// with the unread flag raised (§4.2) and writes the same value to the
// ret slot. The unread flag is lowered by the task's next user step;
// IPC results go through LastMsg/LastReply and never pass through here,
// so mem-op returns and IPC replies cannot shadow each other.
func (k *KernelState) syscallReturn(idx int, v uint64) {
	t := &k.tasks[idx]
	t.LastSyscallRet = v
	t.LastSyscallUnread = true
	k.writeRetNow(idx, v)
}

// writeRetNow writes v to the task's pending ret slot immediately, for
// syscalls that never block. A guard failure here is logged and
// abandoned (§7): the task simply does not see its result this time.
func (k *KernelState) writeRetNow(idx int, v uint64) {
	t := &k.tasks[idx]
	if !t.PendingRetValid {
		return
	}
	if !k.paging.GuardedWrite64(&t.AddressSpace, t.PendingRetAddr, v) {
		k.logError("task %s: ret slot at %s became unwritable", t.Id, t.PendingRetAddr)
	}
	t.PendingRetValid = false
}

// completeDeferredSyscall writes the ret slot for a task that just
// resumed Running after an IPC_RECV or IPC_SEND that had to block,
// using whichever of LastMsg/LastReply the blocking reason implies.
// Called from scheduler.go right before a resumed task is allowed to
// step, so the value is always available by the time it is read.
func (k *KernelState) completeDeferredSyscall(idx int) {
	t := &k.tasks[idx]
	if !t.PendingRetValid {
		return
	}

	var v uint64
	switch t.PendingRetKind {
	case BlockedIpcRecv:
		if t.LastMsg == nil {
			return
		}
		v = *t.LastMsg
		t.LastMsg = nil
	case BlockedIpcReply:
		if t.LastReply == nil {
			return
		}
		v = *t.LastReply
		t.LastReply = nil
	default:
		return
	}

	k.writeRetNow(idx, v)
}
