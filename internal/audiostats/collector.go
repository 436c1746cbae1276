// Package audiostats computes diagnostic amplitude statistics over raw
// PCM16 audio frames. Observation is best-effort: a failure here must
// never affect the feed queue.
package audiostats

import (
	"encoding/binary"
	"math"
	"sync"
)

// clipThreshold marks samples at or beyond 16-bit full scale.
const clipThreshold = 32600

// FrameStats holds amplitude statistics for one frame.
type FrameStats struct {
	Samples    int
	RMS        float64
	Peak       int16
	ClippedPct float64
}

// Collector aggregates frame statistics for one session.
type Collector struct {
	mu           sync.Mutex
	frames       int
	totalSamples int64
	clippedTotal int64
	sumSquares   float64
	peak         int16
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Observe analyzes one PCM16 little-endian frame and folds it into the
// session aggregate. Odd trailing bytes are ignored.
func (c *Collector) Observe(frame []byte) FrameStats {
	n := len(frame) / 2
	if n == 0 {
		return FrameStats{}
	}

	var sumSq float64
	var peak int16
	var clipped int
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(frame[2*i:]))
		abs := s
		if abs < 0 {
			if abs == math.MinInt16 {
				abs = math.MaxInt16
			} else {
				abs = -abs
			}
		}
		if abs > peak {
			peak = abs
		}
		if abs >= clipThreshold {
			clipped++
		}
		sumSq += float64(s) * float64(s)
	}

	c.mu.Lock()
	c.frames++
	c.totalSamples += int64(n)
	c.clippedTotal += int64(clipped)
	c.sumSquares += sumSq
	if peak > c.peak {
		c.peak = peak
	}
	c.mu.Unlock()

	return FrameStats{
		Samples:    n,
		RMS:        math.Sqrt(sumSq / float64(n)),
		Peak:       peak,
		ClippedPct: 100 * float64(clipped) / float64(n),
	}
}

// SessionStats is the aggregate over all observed frames.
type SessionStats struct {
	Frames     int
	Samples    int64
	RMS        float64
	Peak       int16
	ClippedPct float64
}

// Summary returns the session-level aggregate.
func (c *Collector) Summary() SessionStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := SessionStats{
		Frames:  c.frames,
		Samples: c.totalSamples,
		Peak:    c.peak,
	}
	if c.totalSamples > 0 {
		out.RMS = math.Sqrt(c.sumSquares / float64(c.totalSamples))
		out.ClippedPct = 100 * float64(c.clippedTotal) / float64(c.totalSamples)
	}
	return out
}
