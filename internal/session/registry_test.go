package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinical-dictation-service/internal/recognizer/mock"
)

func TestRegistry_StartAndGet(t *testing.T) {
	r := NewRegistry(mock.New())
	sink := &eventSink{}

	s, err := r.Start(context.Background(), Config{SessionID: "a", PollInterval: time.Millisecond}, sink.callbacks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.StopAll()

	got, err := r.Get("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != s {
		t.Error("Get returned a different session")
	}
	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_RejectsDuplicateLiveID(t *testing.T) {
	r := NewRegistry(mock.New())
	sink := &eventSink{}
	defer r.StopAll()

	if _, err := r.Start(context.Background(), Config{SessionID: "dup", PollInterval: time.Millisecond}, sink.callbacks()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Start(context.Background(), Config{SessionID: "dup", PollInterval: time.Millisecond}, sink.callbacks()); err == nil {
		t.Fatal("expected duplicate session id to be rejected")
	}
}

func TestRegistry_AllowsReuseAfterTerminal(t *testing.T) {
	r := NewRegistry(mock.New())
	sink := &eventSink{}
	defer r.StopAll()

	s, err := r.Start(context.Background(), Config{SessionID: "reuse", PollInterval: time.Millisecond}, sink.callbacks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.EndAudio()
	waitDone(t, s)

	if _, err := r.Start(context.Background(), Config{SessionID: "reuse", PollInterval: time.Millisecond}, sink.callbacks()); err != nil {
		t.Errorf("terminal session id must be reusable: %v", err)
	}
}

func TestRegistry_StopRemovesEntry(t *testing.T) {
	r := NewRegistry(mock.New())
	sink := &eventSink{}

	s, err := r.Start(context.Background(), Config{SessionID: "b", PollInterval: time.Millisecond}, sink.callbacks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Stop("b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Get("b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected entry removed, got %v", err)
	}
	if err := r.Stop("b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second stop must report not found, got %v", err)
	}
	waitDone(t, s)
}

func TestRegistry_IndependentFailure(t *testing.T) {
	// One provider fails its handshake; a healthy session in the same
	// registry is unaffected.
	failing := mock.New()
	failing.FailWith = errors.New("no backend")
	rFail := NewRegistry(failing)
	rOK := NewRegistry(mock.New())
	sink := &eventSink{}

	bad, err := rFail.Start(context.Background(), Config{SessionID: "bad", PollInterval: time.Millisecond}, sink.callbacks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	good, err := rOK.Start(context.Background(), Config{SessionID: "good", PollInterval: time.Millisecond}, sink.callbacks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitDone(t, bad)
	good.EndAudio()
	waitDone(t, good)

	if bad.State() != StateFailed {
		t.Errorf("expected FAILED, got %s", bad.State())
	}
	if good.State() != StateClosed {
		t.Errorf("expected CLOSED, got %s", good.State())
	}
	if _, ok := good.Result(); !ok {
		t.Error("healthy session must still produce a result")
	}
}

func TestRegistry_ActiveCount(t *testing.T) {
	r := NewRegistry(mock.New())
	sink := &eventSink{}
	defer r.StopAll()

	s1, _ := r.Start(context.Background(), Config{SessionID: "c1", PollInterval: time.Millisecond}, sink.callbacks())
	r.Start(context.Background(), Config{SessionID: "c2", PollInterval: time.Millisecond}, sink.callbacks())

	s1.EndAudio()
	waitDone(t, s1)

	if n := r.ActiveCount(); n != 1 {
		t.Errorf("expected 1 active session, got %d", n)
	}
}
