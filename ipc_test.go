package main

import "testing"

// TestIpcRecvThenSendFastPath covers the scenario where a receiver is
// already parked on the endpoint when the sender arrives: delivery must
// be immediate and the sender must move straight to BlockedIpcReply.
func TestIpcRecvThenSendFastPath(t *testing.T) {
	k := newTestKernel(2)
	k.tasks[1].State = TaskBlocked // start both out of the running slot

	k.IpcRecv(1, 0)
	if k.tasks[1].State != TaskBlocked || k.tasks[1].BlockedReason.Kind != BlockedIpcRecv {
		t.Fatalf("receiver should be parked on IpcRecv, got state=%s reason=%v", k.tasks[1].State, k.tasks[1].BlockedReason)
	}

	k.IpcSend(0, 0, 0x1234)

	if k.tasks[1].State == TaskBlocked {
		t.Fatalf("receiver should have been woken out of Blocked, still %s", k.tasks[1].State)
	}
	if k.tasks[1].LastMsg == nil || *k.tasks[1].LastMsg != 0x1234 {
		t.Fatalf("receiver LastMsg = %v, want 0x1234", k.tasks[1].LastMsg)
	}
	if k.tasks[1].LastMsgFrom != TaskId(0) {
		t.Fatalf("receiver LastMsgFrom = %v, want task#0", k.tasks[1].LastMsgFrom)
	}
	if k.tasks[0].BlockedReason.Kind != BlockedIpcReply || k.tasks[0].BlockedReason.Partner != TaskId(1) {
		t.Fatalf("sender should be parked awaiting reply from task#1, got %v", k.tasks[0].BlockedReason)
	}
}

// TestIpcSendThenRecvSlowPath covers the opposite arrival order: the
// sender parks first, and recv() later drains it from the send queue.
// Per §4.3, the receiver issuing a recv() that immediately finds a
// queued sender "stays Running": it never blocks at all.
func TestIpcSendThenRecvSlowPath(t *testing.T) {
	k := newTestKernel(2)
	k.currentTask = 0
	k.tasks[0].State = TaskRunning
	k.tasks[1].State = TaskBlocked

	k.IpcSend(0, 0, 0xAAAA)
	if k.tasks[0].State != TaskBlocked || k.tasks[0].BlockedReason.Kind != BlockedIpcSend {
		t.Fatalf("sender should be parked on IpcSend, got %v", k.tasks[0])
	}

	k.tasks[1].State = TaskRunning // B is the task actively calling recv()
	k.IpcRecv(1, 0)
	if k.tasks[1].LastMsg == nil || *k.tasks[1].LastMsg != 0xAAAA {
		t.Fatalf("receiver did not get the queued message")
	}
	if k.tasks[1].State != TaskRunning {
		t.Fatalf("receiver should stay Running on the recv fast path, got %s", k.tasks[1].State)
	}
	if k.tasks[0].BlockedReason.Kind != BlockedIpcReply {
		t.Fatalf("sender should now be parked awaiting reply, got %v", k.tasks[0].BlockedReason)
	}
}

// TestIpcReplyCompletesRendezvous checks that a reply wakes exactly the
// named partner with the reply value in LastReply.
func TestIpcReplyCompletesRendezvous(t *testing.T) {
	k := newTestKernel(2)
	k.tasks[1].State = TaskBlocked
	k.IpcRecv(1, 0)
	k.IpcSend(0, 0, 0x1)

	k.IpcReply(1, 0, 0x99)

	if k.tasks[0].State != TaskReady {
		t.Fatalf("sender should be Ready after reply, got %s", k.tasks[0].State)
	}
	if k.tasks[0].LastReply == nil || *k.tasks[0].LastReply != 0x99 {
		t.Fatalf("sender LastReply = %v, want 0x99", k.tasks[0].LastReply)
	}
}

// TestDeadPartnerRescue verifies that killing a task a sender is waiting
// to hear back from wakes the sender with the dead-partner sentinel
// instead of leaving it parked forever.
func TestDeadPartnerRescue(t *testing.T) {
	k := newTestKernel(2)
	k.tasks[1].State = TaskBlocked
	k.IpcRecv(1, 0)
	k.IpcSend(0, 0, 0x1)

	if k.tasks[0].BlockedReason.Partner != TaskId(1) {
		t.Fatalf("setup invariant broken: sender not parked on task#1")
	}

	k.Kill(1, KillTestInjected)

	if k.tasks[0].State == TaskBlocked {
		t.Fatalf("sender should have been rescued out of Blocked, still %s", k.tasks[0].State)
	}
	if k.tasks[0].BlockedReason.Kind != BlockedNone {
		t.Fatalf("rescued sender should have its blocked reason cleared, got %v", k.tasks[0].BlockedReason)
	}
	if k.tasks[0].LastReply == nil || *k.tasks[0].LastReply != IPCErrDeadPartner {
		t.Fatalf("sender LastReply = %v, want dead-partner sentinel", k.tasks[0].LastReply)
	}
}

// TestIpcReplyFromUninvolvedTaskIsNoop checks that calling reply() from a
// task nobody is actually waiting to hear back from (no reply_queue entry
// with blocked_reason.partner == the replier's own id) leaves every other
// task's block undisturbed, per §4.3's "if none: no-op" rule.
func TestIpcReplyFromUninvolvedTaskIsNoop(t *testing.T) {
	k := newTestKernel(3)
	k.tasks[1].State = TaskBlocked
	k.IpcRecv(1, 0)
	k.IpcSend(0, 0, 0x1)

	k.IpcReply(2, 0, 0x99) // task#2 never received anything on ep0

	if k.tasks[0].State != TaskBlocked {
		t.Fatalf("uninvolved reply() must not disturb the real partner's block")
	}
}

// TestIpcSendAbandonsOnCorruptRecvWaiter forces the state drift §4.3's
// fail-safe rule names (a recv_waiter whose blocked_reason is not
// IpcRecv) and checks the send is abandoned with nothing mutated.
func TestIpcSendAbandonsOnCorruptRecvWaiter(t *testing.T) {
	k := newTestKernel(2)
	k.tasks[1].State = TaskBlocked
	k.IpcRecv(1, 0)
	k.tasks[1].BlockedReason = BlockedReason{Kind: BlockedIpcSend, Ep: 0} // corrupt it

	k.IpcSend(0, 0, 0x7)

	if !k.endpoints[0].hasRecvWaiter {
		t.Fatalf("abandoned send must not consume the recv waiter slot")
	}
	if k.tasks[0].State != TaskRunning {
		t.Fatalf("abandoned send must leave the sender untouched, got %s", k.tasks[0].State)
	}
	if k.tasks[1].LastMsg != nil {
		t.Fatalf("abandoned send must not deliver")
	}
}

// TestIpcRecvAbandonsOnSenderWithoutPendingMsg corrupts a queued
// sender's pending_send_msg and checks recv() abandons rather than
// dereferencing it.
func TestIpcRecvAbandonsOnSenderWithoutPendingMsg(t *testing.T) {
	k := newTestKernel(2)
	k.IpcSend(0, 0, 0xAA)
	k.tasks[0].PendingSendMsg = nil // corrupt it

	k.tasks[1].State = TaskRunning
	k.IpcRecv(1, 0)

	if k.tasks[1].LastMsg != nil {
		t.Fatalf("abandoned recv must not deliver")
	}
	if len(k.endpoints[0].sendQueue) != 1 {
		t.Fatalf("abandoned recv must leave the send queue untouched")
	}
}

// TestIpcReplyAbandonsOnDeadQueueEntry plants a Dead task directly in a
// reply queue (bypassing Kill's cleanup) and checks reply() abandons.
func TestIpcReplyAbandonsOnDeadQueueEntry(t *testing.T) {
	k := newTestKernel(3)
	k.tasks[1].State = TaskBlocked
	k.IpcRecv(1, 0)
	k.IpcSend(0, 0, 0x1)
	k.tasks[0].State = TaskDead // corrupt: dead but still queued

	k.IpcReply(1, 0, 0x99)

	if k.tasks[0].LastReply != nil {
		t.Fatalf("abandoned reply must not deliver to a dead task")
	}
	if len(k.endpoints[0].replyQueue) != 1 {
		t.Fatalf("abandoned reply must leave the queue untouched")
	}
}
