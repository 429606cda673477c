package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFPSLimiterUnlimitedReturnsImmediately(t *testing.T) {
	f := &FPSLimiter{limit: func() int { return 0 }}
	start := time.Now()
	for range 100 {
		f.Wait(false)
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.True(t, f.next.IsZero())
}

func TestFPSLimiterPacesFrames(t *testing.T) {
	f := &FPSLimiter{limit: func() int { return 100 }}
	start := time.Now()
	for range 5 {
		f.Wait(false)
	}
	// five frames at 100 fps take at least 50ms
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
}

func TestFPSLimiterIdleCap(t *testing.T) {
	f := &FPSLimiter{limit: func() int { return 0 }}
	start := time.Now()
	f.Wait(true)
	f.Wait(true)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}
