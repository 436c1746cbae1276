package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFeedQueue_FIFO(t *testing.T) {
	q := NewFeedQueue(time.Millisecond, nil)
	frames := [][]byte{{0x01}, {0x02}, {0x03}}
	for _, f := range frames {
		if !q.Push(f) {
			t.Fatalf("push rejected before close")
		}
	}
	if q.Len() != 3 {
		t.Errorf("expected depth 3, got %d", q.Len())
	}

	ctx := context.Background()
	for i, want := range frames {
		got, err := q.Next(ctx)
		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", i, err)
		}
		if got[0] != want[0] {
			t.Errorf("frame %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestFeedQueue_DrainsAfterClose(t *testing.T) {
	q := NewFeedQueue(time.Millisecond, nil)
	q.Push([]byte{0x01})
	q.Close()

	if _, err := q.Next(context.Background()); err != nil {
		t.Fatalf("buffered frame must drain after close: %v", err)
	}
	if _, err := q.Next(context.Background()); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed once drained, got %v", err)
	}
}

func TestFeedQueue_PushAfterCloseDropped(t *testing.T) {
	q := NewFeedQueue(time.Millisecond, nil)
	q.Close()
	q.Close() // idempotent

	if q.Push([]byte{0x01}) {
		t.Error("push after close must report the frame dropped")
	}
	if q.Len() != 0 {
		t.Errorf("dropped frame must not buffer, depth %d", q.Len())
	}
	if !q.Closed() {
		t.Error("expected Closed() true")
	}
}

func TestFeedQueue_NextObservesCancellation(t *testing.T) {
	q := NewFeedQueue(time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Next(ctx)
		errCh <- err
	}()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not observe cancellation")
	}
}

func TestFeedQueue_NextObservesLateClose(t *testing.T) {
	q := NewFeedQueue(time.Millisecond, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Next(context.Background())
		errCh <- err
	}()
	time.Sleep(5 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrQueueClosed) {
			t.Errorf("expected ErrQueueClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not observe close")
	}
}
