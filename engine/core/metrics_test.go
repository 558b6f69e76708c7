package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsAverage(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.016)
	}
	assert.InDelta(t, 16.0, m.FrameTime(), 0.001)
	assert.Equal(t, uint8(0), m.FrameAVGCounter)
}

func TestMetricsFPS(t *testing.T) {
	m := NewMetrics()
	// 125ms frames: the ninth frame pushes accumulated time past one second.
	for i := 0; i < 9; i++ {
		m.Update(0.125)
	}
	fps, _ := m.Frame()
	assert.Equal(t, float64(8), fps)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("nonsense"))
}
