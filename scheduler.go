// scheduler.go - the cooperative, single-threaded round-robin scheduler
// (§4.1).
//
// A single currentTask index over the fixed task table; the named
// operations are Tick, blockCurrent, wakeToReady, and Kill.

package main

// Tick advances the kernel one scheduling step: dispatch any pending
// syscall on the running task, let the user-level step function decide
// what that task does next, then rotate if the slice is exhausted or the
// task blocked itself.
func (k *KernelState) Tick() {
	if k.halted {
		return
	}

	k.tickCount++

	if k.numTasks == 0 {
		k.halted = true
		return
	}

	if k.tasks[k.currentTask].State != TaskRunning {
		if !k.scheduleNext() {
			k.halted = true
			return
		}
	}

	k.completeDeferredSyscall(k.currentTask)
	k.handlePendingSyscallIfAny()

	if k.tasks[k.currentTask].State != TaskRunning {
		// The syscall blocked the running task; scheduleNext already ran
		// as part of the IPC operation. Nothing further to do this tick.
		return
	}

	k.userStepIssueSyscall(k.currentTask)

	k.tasks[k.currentTask].TimeSliceUsed++
	if k.tasks[k.currentTask].TimeSliceUsed >= DefaultTimeSlice {
		k.tasks[k.currentTask].TimeSliceUsed = 0
		k.tasks[k.currentTask].State = TaskReady
		k.scheduleNext()
	}
}

// scheduleNext scans task indices from current+1 (mod N) for the first
// Ready task and makes it Running (§4.1, "Selection"). Returns false if no
// task is runnable, meaning the kernel is quiescent.
func (k *KernelState) scheduleNext() bool {
	prevIdx := k.currentTask
	hasPrev := k.numTasks > 0 && k.tasks[prevIdx].State != TaskDead
	var prevId TaskId
	if hasPrev {
		prevId = k.tasks[prevIdx].Id
	}

	for step := 1; step <= k.numTasks; step++ {
		idx := (k.currentTask + step) % k.numTasks
		if k.tasks[idx].State == TaskReady {
			k.tasks[idx].State = TaskRunning
			k.currentTask = idx

			ev := LogEvent{Kind: EvScheduled, HasPrev: hasPrev, Prev: prevId, HasNext: true, Next: k.tasks[idx].Id}
			k.pushEvent(ev)
			return true
		}
	}
	return false
}

// blockCurrent marks idx Blocked with reason, zeroes its slice, and
// selects the next runnable task if idx was the one Running (§4.1).
// Despite the name, callers name idx explicitly (ipc.go always passes
// the task that issued the call, which is k.currentTask in the syscall
// path but need not be in a scripted/test context).
func (k *KernelState) blockCurrent(idx int, reason BlockedReason) {
	wasRunning := k.tasks[idx].State == TaskRunning
	k.tasks[idx].State = TaskBlocked
	k.tasks[idx].BlockedReason = reason
	k.tasks[idx].TimeSliceUsed = 0
	if wasRunning {
		k.scheduleNext()
	}
}

// wakeToReady transitions idx from Blocked to Ready, clearing its
// blocked reason and any endpoint-queue membership (§4.1). Queue cleanup
// is the caller's responsibility where the reason names a specific queue
// (ipc.go does this explicitly as part of delivery); this helper only
// touches task state.
func (k *KernelState) wakeToReady(idx int) {
	if idx < 0 || idx >= k.numTasks {
		k.logError("wakeToReady: index %d out of range", idx)
		return
	}
	if k.tasks[idx].State != TaskBlocked {
		k.logError("wakeToReady: task %s not Blocked (state=%s)", k.tasks[idx].Id, k.tasks[idx].State)
		return
	}
	k.tasks[idx].State = TaskReady
	k.tasks[idx].BlockedReason = noBlockedReason()
}

// Kill transitions idx to Dead and performs dead-partner rescue (§4.3):
// every other task waiting on idx's reply is woken with the dead-partner
// sentinel, and idx is purged from every endpoint queue. Dead is
// terminal (§3 invariant 6); killing an already-Dead task is a no-op.
func (k *KernelState) Kill(idx int, reason KillReason) {
	if idx < 0 || idx >= k.numTasks {
		k.logError("Kill: index %d out of range", idx)
		return
	}
	if k.tasks[idx].State == TaskDead {
		return
	}

	id := k.tasks[idx].Id
	wasRunning := k.tasks[idx].State == TaskRunning

	k.tasks[idx].State = TaskDead
	k.tasks[idx].BlockedReason = noBlockedReason()
	k.tasks[idx].PendingSyscall = nil
	k.tasks[idx].PendingSendMsg = nil

	for e := range k.endpoints {
		k.endpoints[e].removeFromAllQueues(idx)
	}

	for u := range k.tasks[:k.numTasks] {
		if u == idx || k.tasks[u].State != TaskBlocked {
			continue
		}
		br := k.tasks[u].BlockedReason
		if br.Kind == BlockedIpcReply && br.Partner == id {
			k.endpoints[br.Ep].removeReplyWaiter(u)
			sentinel := IPCErrDeadPartner
			k.tasks[u].LastReply = &sentinel
			k.wakeToReady(u)
		}
	}

	k.pushEvent(LogEvent{Kind: EvTaskKilled, Task: id, Reason: reason})

	if wasRunning {
		k.scheduleNext()
	}
}
