package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(name string, d time.Duration) {
	mu.Lock()
	frameTotals[name] += d
	mu.Unlock()
}

func TestFrameTotals(t *testing.T) {
	ResetFrame()
	t.Cleanup(ResetFrame)

	record("scene.DrawAll", 3*time.Millisecond)
	record("scene.syncLights", 500*time.Microsecond)
	record("editor.Update", time.Millisecond)

	assert.Equal(t, 3500*time.Microsecond, SumWithPrefix("scene."))
	assert.Equal(t, "scene.DrawAll:3ms, editor.Update:1ms", TopN(2))
	assert.Equal(t, "scene.DrawAll:3ms, editor.Update:1ms, scene.syncLights:0.5ms", TopN(10))

	ResetFrame()
	assert.Empty(t, Snapshot())
	assert.Zero(t, SumWithPrefix(""))
}

func TestTrack(t *testing.T) {
	ResetFrame()
	t.Cleanup(ResetFrame)

	stop := Track("x")
	stop()
	_, ok := Snapshot()["x"]
	assert.True(t, ok)
}

func TestFrameHistory(t *testing.T) {
	var h FrameHistory
	assert.Zero(t, h.AverageFPS())

	h.Push(0.01)
	h.Push(0.03)
	assert.InDelta(t, 0.02, h.Average(), 1e-6)
	assert.InDelta(t, 50, h.AverageFPS(), 1e-3)

	for i := 0; i < HistorySize; i++ {
		h.Push(float32(i) / 1000)
	}
	require.Equal(t, HistorySize, h.Len())
	s := h.Samples()
	assert.Equal(t, float32(0), s[0], "oldest samples were overwritten")
	assert.Equal(t, float32(HistorySize-1)/1000, s[len(s)-1])
}
