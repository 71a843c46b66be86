package monitor

import (
	"time"

	"github.com/rileyhilliard/hostdeck/internal/resource"
)

// DefaultHistorySize is used when the configured size is not positive.
const DefaultHistorySize = 60

// Series names one tracked metric.
type Series int

const (
	SeriesCPU Series = iota
	SeriesMemory
	SeriesDisk
	SeriesNetIn  // bytes/s received
	SeriesNetOut // bytes/s sent
	numSeries
)

// History keeps the last N values of each Series. Network series hold
// rates derived from consecutive cumulative counters, so they start one
// sample later than the others.
type History struct {
	size   int
	series [numSeries]*ringBuffer

	prevNet resource.NetworkStats
	prevAt  time.Time
	hasPrev bool
	rxRate  float64
	txRate  float64
}

// NewHistory creates a History holding size samples per series.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	h := &History{size: size}
	for i := range h.series {
		h.series[i] = newRingBuffer(size)
	}
	return h
}

// Size is the per-series capacity.
func (h *History) Size() int {
	return h.size
}

// Push records snapshot s received at at.
func (h *History) Push(s resource.SystemStats, at time.Time) {
	h.series[SeriesCPU].push(s.CPU.UsagePercent)
	h.series[SeriesMemory].push(s.Memory.UsagePercent)
	h.series[SeriesDisk].push(s.Disk.UsagePercent)

	if h.hasPrev {
		if dt := at.Sub(h.prevAt).Seconds(); dt > 0 {
			h.rxRate = counterRate(h.prevNet.BytesReceived, s.Network.BytesReceived, dt)
			h.txRate = counterRate(h.prevNet.BytesSent, s.Network.BytesSent, dt)
			h.series[SeriesNetIn].push(h.rxRate)
			h.series[SeriesNetOut].push(h.txRate)
		}
	}
	h.prevNet = s.Network
	h.prevAt = at
	h.hasPrev = true
}

// counterRate is the per-second growth of a cumulative counter. A counter
// that went backwards was reset on the host and yields zero.
func counterRate(prev, cur uint64, seconds float64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur-prev) / seconds
}

// Last returns up to count values of series, oldest first.
func (h *History) Last(series Series, count int) []float64 {
	return h.series[series].getLast(count)
}

// Len is the number of samples held for series.
func (h *History) Len(series Series) int {
	return h.series[series].count
}

// Rates returns the most recent network rates in bytes/s.
func (h *History) Rates() (rx, tx float64) {
	return h.rxRate, h.txRate
}

// Clear drops all samples.
func (h *History) Clear() {
	for i := range h.series {
		h.series[i] = newRingBuffer(h.size)
	}
	h.hasPrev = false
	h.rxRate, h.txRate = 0, 0
}

// ringBuffer is a fixed-capacity FIFO of float64.
type ringBuffer struct {
	data  []float64
	head  int // next write position
	count int
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{data: make([]float64, size)}
}

func (r *ringBuffer) push(v float64) {
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// getLast returns the newest count values in chronological order.
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	count = min(count, r.count)
	out := make([]float64, count)
	start := (r.head - count + len(r.data)) % len(r.data)
	for i := range out {
		out[i] = r.data[(start+i)%len(r.data)]
	}
	return out
}
