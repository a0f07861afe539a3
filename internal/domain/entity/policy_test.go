package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.Equal(t, 200, p.CompareSide)
	require.Equal(t, 0.5, p.StaticPercent)
	require.Equal(t, uint8(20), p.PixelCutoff)
	require.Equal(t, 5, p.BlurKernel)
	require.Equal(t, 3, p.DilateIterations)
	require.Equal(t, 500, p.MinMovingPixels)
	require.Equal(t, 10*time.Millisecond, p.PollDelay)
	require.InDelta(t, 1.1, p.BlurSigma(), 1e-9)
}

func TestPolicy_ClassifyDifference(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name       string
		percentage float64
		movement   bool
		label      string
	}{
		{"zero", 0, false, LabelNoBreathingDetected},
		{"just below", 0.4999, false, LabelNoBreathingDetected},
		{"exactly at threshold", 0.5, true, LabelBreathingDetected},
		{"full", 100, true, LabelBreathingDetected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.ClassifyDifference(tt.percentage)
			require.Equal(t, tt.movement, res.Movement)
			require.Equal(t, tt.label, res.Label)
			require.Equal(t, tt.percentage, res.Percentage)
			require.Equal(t, -1, res.HashDistance)
		})
	}
}

func TestPolicy_ClassifyMovement(t *testing.T) {
	p := DefaultPolicy()

	res := p.ClassifyMovement(0)
	require.False(t, res.Breathing)
	require.Equal(t, LabelNoBreathing, res.Label)

	res = p.ClassifyMovement(499)
	require.False(t, res.Breathing)

	res = p.ClassifyMovement(500)
	require.True(t, res.Breathing)
	require.Equal(t, LabelBreathing, res.Label)

	p.MinMovingPixels = 10
	require.True(t, p.ClassifyMovement(10).Breathing)
}

func TestResultText(t *testing.T) {
	p := DefaultPolicy()
	require.Equal(t, "Difference: 0.0000%\nNo breathing detected ⚠️", p.ClassifyDifference(0).Text())
	require.Equal(t, "Difference: 100.0000%\nBreathing detected ✅", p.ClassifyDifference(100).Text())
	require.Equal(t, "Movement: 12\nNo breathing ⚠️", p.ClassifyMovement(12).Text())
	require.Equal(t, "Movement: 900\nBreathing ✅", p.ClassifyMovement(900).Text())
}
