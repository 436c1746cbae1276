// Package session provides the per-session audio feed queue and the
// streaming bridge to an external speech recognizer.
package session

import (
	"fmt"
	"sync"
)

// State is the lifecycle state of a streaming session.
type State int

const (
	// StateInit - session constructed, handshake not yet started.
	StateInit State = iota
	// StateHandshaking - provider connection being established.
	StateHandshaking
	// StateStreaming - audio flowing out, events flowing in.
	StateStreaming
	// StateDraining - caller ended audio; inbound events still flowing.
	StateDraining
	// StateClosed - provider stream ended, session torn down.
	StateClosed
	// StateFailed - unrecoverable provider error. Terminal.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateHandshaking:
		return "HANDSHAKING"
	case StateStreaming:
		return "STREAMING"
	case StateDraining:
		return "DRAINING"
	case StateClosed:
		return "CLOSED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// IsTerminal returns true if the state is terminal (CLOSED or FAILED).
func (s State) IsTerminal() bool {
	return s == StateClosed || s == StateFailed
}

// lifecycle is the session state machine. Thread-safe.
//
// Transitions:
//
//	INIT → HANDSHAKING → STREAMING → DRAINING → CLOSED
//	  └────────┴────────────┴───────────┴──→ FAILED
type lifecycle struct {
	mu    sync.RWMutex
	state State
}

func newLifecycle() *lifecycle {
	return &lifecycle{state: StateInit}
}

func (l *lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// advance moves to next if the edge is legal. Re-entering the current
// state is a no-op success so drain/close paths stay idempotent.
func (l *lifecycle) advance(next State) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == next {
		return true
	}
	if l.state.IsTerminal() {
		return false
	}
	switch next {
	case StateHandshaking:
		return l.set(next, l.state == StateInit)
	case StateStreaming:
		return l.set(next, l.state == StateHandshaking)
	case StateDraining:
		return l.set(next, l.state == StateStreaming)
	case StateClosed:
		return l.set(next, l.state == StateDraining)
	default:
		return false
	}
}

func (l *lifecycle) set(next State, ok bool) bool {
	if ok {
		l.state = next
	}
	return ok
}

// forceClose moves to CLOSED from any non-terminal state. Used by
// explicit teardown, where skipping intermediate states is fine.
func (l *lifecycle) forceClose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.state.IsTerminal() {
		l.state = StateClosed
	}
}

// fail transitions to FAILED from any non-terminal state. Returns
// false if the session already terminated.
func (l *lifecycle) fail() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.IsTerminal() {
		return false
	}
	l.state = StateFailed
	return true
}
