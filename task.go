// task.go - the fixed-size task record (§3).
//
// No heap: every task lives in KernelState.tasks, indexed by its table
// slot (the "task index"), which is distinct from its immutable TaskId.

package main

// TaskState is one of the four lifecycle states from §3.
type TaskState int

const (
	TaskReady TaskState = iota
	TaskRunning
	TaskBlocked
	TaskDead
)

func (s TaskState) String() string {
	switch s {
	case TaskReady:
		return "Ready"
	case TaskRunning:
		return "Running"
	case TaskBlocked:
		return "Blocked"
	case TaskDead:
		return "Dead"
	default:
		return "TaskState(?)"
	}
}

// BlockedReasonKind distinguishes the three ways a task can be blocked.
type BlockedReasonKind int

const (
	BlockedNone BlockedReasonKind = iota
	BlockedIpcRecv
	BlockedIpcSend
	BlockedIpcReply
)

// BlockedReason names why a Blocked task is blocked. Partner/Ep are only
// meaningful for BlockedIpcReply; Ep alone for BlockedIpcRecv/BlockedIpcSend.
type BlockedReason struct {
	Kind    BlockedReasonKind
	Ep      EndpointId
	Partner TaskId
}

func noBlockedReason() BlockedReason { return BlockedReason{Kind: BlockedNone} }

// KillReason records why a task was killed, for the event log.
type KillReason int

const (
	KillFault KillReason = iota
	KillTestInjected
)

func (r KillReason) String() string {
	switch r {
	case KillFault:
		return "fault"
	case KillTestInjected:
		return "test-injected"
	default:
		return "KillReason(?)"
	}
}

// SyscallRequest is a pending, not-yet-dispatched syscall parked on a task
// by the interrupt shim (§2 data flow) until the scheduler's tick() picks
// it up.
type SyscallRequest struct {
	SysNo uint64
	A0    uint64
	A1    uint64
	A2    uint64
}

// Task is the fixed-size per-task record described in §3. There is no
// dynamic task creation: every Task lives in KernelState.tasks for the
// life of the system.
type Task struct {
	Id    TaskId
	State TaskState

	BlockedReason BlockedReason

	PendingSyscall    *SyscallRequest
	PendingSendMsg    *uint64
	LastMsg           *uint64
	LastMsgFrom       TaskId
	LastReply         *uint64
	LastSyscallRet    uint64
	LastSyscallUnread bool

	TimeSliceUsed int

	AddressSpace AddressSpace

	// PendingRetAddr/PendingRetValid/PendingRetKind track a syscall whose
	// ret slot cannot be written until the task later resumes Running
	// (an in-flight IPC_RECV or IPC_SEND awaiting reply). Set by the
	// interrupt shim, consumed by completeDeferredSyscall in scheduler.go.
	PendingRetAddr  VirtAddr
	PendingRetValid bool
	PendingRetKind  BlockedReasonKind
}

// NewTask creates a Ready task with a fresh, empty address space.
func NewTask(id TaskId) Task {
	return Task{
		Id:            id,
		State:         TaskReady,
		BlockedReason: noBlockedReason(),
		AddressSpace:  NewAddressSpace(),
	}
}

// IsBlockedOn reports whether the task is blocked with exactly this reason.
func (t *Task) IsBlockedOn(reason BlockedReason) bool {
	return t.State == TaskBlocked && t.BlockedReason == reason
}
