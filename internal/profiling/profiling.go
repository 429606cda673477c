package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Per-frame CPU timers.

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("scene.DrawAll")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	mu.Unlock()
}

// Snapshot returns a copy of current per-frame totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v
	}
	return out
}

// SumWithPrefix totals every timer whose name starts with prefix
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var total time.Duration
	for k, v := range frameTotals {
		if strings.HasPrefix(k, prefix) {
			total += v
		}
	}
	return total
}

// TopN formats top N durations from the current frame totals.
// Example: "scene.DrawAll:4.2ms, scene.syncLights:0.1ms"
func TopN(n int) string {
	ss := Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur == list[j].dur {
			return list[i].name < list[j].name
		}
		return list[i].dur > list[j].dur
	})
	n = min(n, len(list))
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, list[i].name+":"+formatMs(list[i].dur))
	}
	return strings.Join(parts, ", ")
}

func formatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("%.1f", ms)
	return strings.TrimSuffix(s, ".0") + "ms"
}

// HistorySize is the number of frames the metrics window averages over
const HistorySize = 90

// FrameHistory is a ring of recent frame times
type FrameHistory struct {
	samples [HistorySize]float32
	next    int
	count   int
}

// Push records one frame time in seconds
func (h *FrameHistory) Push(seconds float32) {
	h.samples[h.next] = seconds
	h.next = (h.next + 1) % HistorySize
	if h.count < HistorySize {
		h.count++
	}
}

// Len returns the number of samples held
func (h *FrameHistory) Len() int {
	return h.count
}

// Average returns the mean frame time in seconds
func (h *FrameHistory) Average() float32 {
	if h.count == 0 {
		return 0
	}
	var sum float32
	for i := 0; i < h.count; i++ {
		sum += h.samples[i]
	}
	return sum / float32(h.count)
}

// AverageFPS returns frames per second over the held samples
func (h *FrameHistory) AverageFPS() float32 {
	avg := h.Average()
	if avg <= 0 {
		return 0
	}
	return 1 / avg
}

// Samples returns the held samples oldest first
func (h *FrameHistory) Samples() []float32 {
	out := make([]float32, 0, h.count)
	start := (h.next - h.count + HistorySize) % HistorySize
	for i := 0; i < h.count; i++ {
		out = append(out, h.samples[(start+i)%HistorySize])
	}
	return out
}
