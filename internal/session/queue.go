package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"clinical-dictation-service/internal/audiostats"
	"clinical-dictation-service/internal/observability/metrics"
)

// ErrQueueClosed is returned by Next once the queue is closed and
// fully drained.
var ErrQueueClosed = errors.New("audio feed queue closed")

// defaultPollInterval bounds how long closure can go unobserved by an
// idle consumer.
const defaultPollInterval = 20 * time.Millisecond

// FeedQueue is a per-session FIFO of raw audio frames, decoupling the
// caller pushing audio as it arrives from the network stream consuming
// at service pace. Unbounded but monitored: depth is visible through
// metrics, and pushes after Close are dropped rather than buffered.
type FeedQueue struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool

	pollInterval time.Duration
	stats        *audiostats.Collector
	metrics      *metrics.Metrics
}

// NewFeedQueue creates a queue. stats may be nil to disable the
// diagnostic sink.
func NewFeedQueue(pollInterval time.Duration, stats *audiostats.Collector) *FeedQueue {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &FeedQueue{
		pollInterval: pollInterval,
		stats:        stats,
		metrics:      metrics.DefaultMetrics,
	}
}

// Push appends a frame. Frames pushed after Close are dropped, to
// avoid unbounded growth after end-of-stream; Push reports whether the
// frame was accepted.
func (q *FeedQueue) Push(frame []byte) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.metrics.RecordFrameDropped()
		return false
	}
	q.frames = append(q.frames, frame)
	q.mu.Unlock()

	q.metrics.RecordFrameQueued(len(frame))
	q.observe(frame)
	return true
}

// observe submits the frame to the diagnostic statistics sink.
// Best-effort: a panic in the sink is swallowed and logged, never
// escalated.
func (q *FeedQueue) observe(frame []byte) {
	if q.stats == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("audio stats sink failed")
		}
	}()
	fs := q.stats.Observe(frame)
	q.metrics.RecordFrameStats(fs.RMS, fs.ClippedPct > 0)
}

// Close marks the queue closed. Idempotent. Buffered frames remain
// drainable.
func (q *FeedQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Next returns the next buffered frame. When the queue is empty it
// polls at a short interval rather than blocking indefinitely, so
// closure is observed promptly. Returns ErrQueueClosed once closed and
// drained, or ctx.Err on cancellation.
func (q *FeedQueue) Next(ctx context.Context) ([]byte, error) {
	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()
	for {
		q.mu.Lock()
		if len(q.frames) > 0 {
			frame := q.frames[0]
			q.frames = q.frames[1:]
			q.mu.Unlock()
			return frame, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return nil, ErrQueueClosed
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Len returns the current queue depth.
func (q *FeedQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// Closed reports whether Close has been called.
func (q *FeedQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
