// ipc.go - synchronous rendezvous IPC (§4.3).
//
// Each operation has a fast path when the other side is already waiting
// and a slow path that parks the caller on the endpoint's queue
// otherwise; replies are routed back by task identity rather than by
// endpoint queue order.

package main

// epInRange reports whether ep addresses a real endpoint, logging the
// failure if not. Every IPC entry point checks this before touching the
// endpoint table so that a bad endpoint from a script or a stale table
// entry is abandoned, never indexed.
func (k *KernelState) epInRange(op string, ep EndpointId) bool {
	if int(ep) >= k.numEndpoints {
		k.logError("%s: endpoint %d out of range", op, uint32(ep))
		return false
	}
	return true
}

// IpcSend delivers msg from task senderIdx to ep. If a task is already
// parked in recv() on ep, delivery is immediate (fast path) and senderIdx
// blocks only on the reply. Otherwise senderIdx parks on the send queue
// (slow path) until a receiver arrives.
func (k *KernelState) IpcSend(senderIdx int, ep EndpointId, msg uint64) {
	if !k.epInRange("IpcSend", ep) {
		return
	}
	sender := &k.tasks[senderIdx]
	k.pushEvent(LogEvent{Kind: EvIpcSendCalled, Task: sender.Id, Ep: ep, Msg: msg})

	e := &k.endpoints[ep]
	if e.hasRecvWaiter {
		recvIdx := e.RecvWaiter
		if !k.tasks[recvIdx].IsBlockedOn(BlockedReason{Kind: BlockedIpcRecv, Ep: ep}) {
			k.logError("IpcSend: recv_waiter %s on %s is not Blocked{IpcRecv}", k.tasks[recvIdx].Id, ep)
			return
		}
		e.hasRecvWaiter = false
		e.RecvWaiter = 0
		tracef(k.sink, k.trace.IPCPaths, "ipc: send fast path, %s -> %s on %s", sender.Id, k.tasks[recvIdx].Id, ep)
		k.deliverAndParkForReply(senderIdx, recvIdx, ep, msg)
		return
	}

	tracef(k.sink, k.trace.IPCPaths, "ipc: send slow path, %s parks on %s", sender.Id, ep)
	m := msg
	sender.PendingSendMsg = &m
	e.enqueueSender(senderIdx)
	k.pushEvent(LogEvent{Kind: EvIpcSendBlocked, Task: sender.Id, Ep: ep, Msg: msg})
	k.blockCurrent(senderIdx, BlockedReason{Kind: BlockedIpcSend, Ep: ep})
}

// IpcRecv blocks recvIdx until a sender is available on ep, or completes
// immediately if one is already queued.
func (k *KernelState) IpcRecv(recvIdx int, ep EndpointId) {
	if !k.epInRange("IpcRecv", ep) {
		return
	}
	recv := &k.tasks[recvIdx]
	k.pushEvent(LogEvent{Kind: EvIpcRecvCalled, Task: recv.Id, Ep: ep})

	e := &k.endpoints[ep]
	if senderIdx, ok := e.peekSender(); ok {
		s := &k.tasks[senderIdx]
		if !s.IsBlockedOn(BlockedReason{Kind: BlockedIpcSend, Ep: ep}) || s.PendingSendMsg == nil {
			k.logError("IpcRecv: send_queue entry %s on %s has no pending send", s.Id, ep)
			return
		}
		e.dequeueSender()
		msg := *s.PendingSendMsg
		s.PendingSendMsg = nil
		tracef(k.sink, k.trace.IPCPaths, "ipc: recv fast path, %s <- %s on %s", recv.Id, k.tasks[senderIdx].Id, ep)
		k.deliverAndParkForReply(senderIdx, recvIdx, ep, msg)
		return
	}

	tracef(k.sink, k.trace.IPCPaths, "ipc: recv slow path, %s parks on %s", recv.Id, ep)
	e.RecvWaiter = recvIdx
	e.hasRecvWaiter = true
	k.pushEvent(LogEvent{Kind: EvIpcRecvBlocked, Task: recv.Id, Ep: ep})
	k.blockCurrent(recvIdx, BlockedReason{Kind: BlockedIpcRecv, Ep: ep})
}

// deliverAndParkForReply hands msg to recvIdx with LastMsg set and parks
// senderIdx Blocked on BlockedIpcReply, keyed to recvIdx's TaskId so
// IpcReply can find it by identity even if the table slot numbering
// were ever to change. recvIdx is woken to Ready only if it was
// actually Blocked{IpcRecv} (the send-side fast path); when recvIdx is
// the task currently calling recv() itself (the recv-side fast path) it
// is already Running and §4.3 says it "stays Running".
func (k *KernelState) deliverAndParkForReply(senderIdx, recvIdx int, ep EndpointId, msg uint64) {
	sender := &k.tasks[senderIdx]
	recv := &k.tasks[recvIdx]

	m := msg
	recv.LastMsg = &m
	recv.LastMsgFrom = sender.Id
	if recv.State == TaskBlocked {
		k.wakeToReady(recvIdx)
	}

	k.pushEvent(LogEvent{Kind: EvIpcDelivered, From: sender.Id, To: recv.Id, Ep: ep, Msg: msg})

	e := &k.endpoints[ep]
	e.enqueueReplyWaiter(senderIdx)

	k.blockCurrent(senderIdx, BlockedReason{Kind: BlockedIpcReply, Ep: ep, Partner: recv.Id})
}

// IpcReply sends msg from serverIdx back to whichever task is parked in
// ep's reply queue awaiting a reply from serverIdx specifically
// (blocked_reason.partner == serverIdx's own TaskId), and wakes that task
// to Ready. Per §4.2's dispatch table the syscall ABI for IPC_REPLY takes
// only an endpoint and a payload; the partner is never named by the
// caller, only recovered from the queue. A reply before any matching
// request (or one with no one actually waiting) is a normal no-op, not an
// error (§4.3).
func (k *KernelState) IpcReply(serverIdx int, ep EndpointId, msg uint64) {
	if !k.epInRange("IpcReply", ep) {
		return
	}
	server := &k.tasks[serverIdx]

	e := &k.endpoints[ep]
	partnerIdx := -1
	for _, idx := range e.replyQueue {
		if k.tasks[idx].State == TaskDead {
			k.logError("IpcReply: reply_queue entry %s on %s is Dead", k.tasks[idx].Id, ep)
			return
		}
		if k.tasks[idx].BlockedReason.Kind == BlockedIpcReply && k.tasks[idx].BlockedReason.Partner == server.Id {
			partnerIdx = idx
			break
		}
	}
	if partnerIdx == -1 {
		k.pushEvent(LogEvent{Kind: EvIpcReplyCalled, Task: server.Id, Ep: ep, To: server.Id})
		return
	}

	partner := k.tasks[partnerIdx].Id
	k.pushEvent(LogEvent{Kind: EvIpcReplyCalled, Task: server.Id, Ep: ep, To: partner})
	e.removeReplyWaiter(partnerIdx)

	m := msg
	k.tasks[partnerIdx].LastReply = &m
	k.wakeToReady(partnerIdx)

	k.pushEvent(LogEvent{Kind: EvIpcReplyDelivered, From: server.Id, To: partner, Ep: ep})
}
