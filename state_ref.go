// state_ref.go - the single-borrow handle to KernelState used by arch-side
// callers (§5, "Shared resources").
//
// A process-wide registration slot so that interrupt-context code can
// reach the one KernelState instance without a constructor-injected
// reference threaded through every arch entry point. On bare metal this
// would be a raw pointer behind an atomic with the single-core,
// single-borrow discipline documented in a safety comment; here the same
// discipline is enforced mechanically with a mutex.

package main

import "sync"

// KernelStateSlot is the "single well-known address" the interrupt shim
// borrows the kernel state from. Borrowing is mutually exclusive by
// construction: the cooperative core loop and the syscall entry path
// never run concurrently (§5), so the mutex never actually contends; it
// exists to make that invariant a runtime guarantee rather than a
// convention.
type KernelStateSlot struct {
	mu    sync.Mutex
	state *KernelState
}

// Register installs the kernel state to be reachable from arch-side code.
// Called once at boot.
func (s *KernelStateSlot) Register(ks *KernelState) {
	s.mu.Lock()
	s.state = ks
	s.mu.Unlock()
}

// Unregister clears the slot. Not used in normal operation; present for
// symmetry and for tests that want a clean slot between cases.
func (s *KernelStateSlot) Unregister() {
	s.mu.Lock()
	s.state = nil
	s.mu.Unlock()
}

// WithKernelState borrows the registered KernelState for the duration of
// f and runs f against it. Returns false if nothing is registered yet.
func (s *KernelStateSlot) WithKernelState(f func(*KernelState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return false
	}
	f(s.state)
	return true
}
