package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"breath-monitor/internal/domain/entity"
)

func TestPixelDiffer_Score(t *testing.T) {
	policy := entity.DefaultPolicy()
	d := NewPixelDiffer(policy)

	t.Run("IdenticalFrames", func(t *testing.T) {
		frame := createTestImage(120, 90, color.RGBA{R: 90, G: 60, B: 30, A: 255})

		score, err := d.Score(frame, frame)
		require.NoError(t, err)
		require.Equal(t, 0, score)
		require.Equal(t, entity.LabelNoBreathing, policy.ClassifyMovement(score).Label)
	})

	t.Run("LargeChange", func(t *testing.T) {
		prev := createTestImage(100, 100, color.Black)
		cur := createTestImage(100, 100, color.Black)
		fillRect(cur, image.Rect(30, 30, 70, 70), color.White)

		score, err := d.Score(prev, cur)
		require.NoError(t, err)
		require.GreaterOrEqual(t, score, 40*40)
		require.True(t, policy.ClassifyMovement(score).Breathing)
	})

	t.Run("SmallChange", func(t *testing.T) {
		prev := createTestImage(100, 100, color.Black)
		cur := createTestImage(100, 100, color.Black)
		fillRect(cur, image.Rect(50, 50, 55, 55), color.White)

		score, err := d.Score(prev, cur)
		require.NoError(t, err)
		require.Greater(t, score, 25)
		require.Less(t, score, policy.MinMovingPixels)
		require.False(t, policy.ClassifyMovement(score).Breathing)
	})

	t.Run("ChangeBelowCutoff", func(t *testing.T) {
		prev := createTestImage(60, 60, color.RGBA{R: 100, G: 100, B: 100, A: 255})
		cur := createTestImage(60, 60, color.RGBA{R: 110, G: 110, B: 110, A: 255})

		score, err := d.Score(prev, cur)
		require.NoError(t, err)
		require.Equal(t, 0, score)
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		_, err := d.Score(createTestImage(10, 10, color.Black), createTestImage(20, 10, color.Black))
		require.ErrorIs(t, err, entity.ErrIncompatibleImages)
	})

	t.Run("NilFrame", func(t *testing.T) {
		_, err := d.Score(nil, createTestImage(10, 10, color.Black))
		require.ErrorIs(t, err, entity.ErrLoad)
	})
}

func TestPixelDiffer_NoBlurNoDilate(t *testing.T) {
	policy := entity.DefaultPolicy()
	policy.BlurKernel = 1
	policy.DilateIterations = 0
	d := NewPixelDiffer(policy)

	prev := createTestImage(50, 50, color.Black)
	cur := createTestImage(50, 50, color.Black)
	fillRect(cur, image.Rect(0, 0, 10, 7), color.White)

	score, err := d.Score(prev, cur)
	require.NoError(t, err)
	require.Equal(t, 70, score)
}

func TestPixelDiffer_DilationGrowsMask(t *testing.T) {
	policy := entity.DefaultPolicy()
	policy.BlurKernel = 1
	policy.DilateIterations = 1
	d := NewPixelDiffer(policy)

	prev := createTestImage(20, 20, color.Black)
	cur := createTestImage(20, 20, color.Black)
	cur.Set(10, 10, color.White)

	score, err := d.Score(prev, cur)
	require.NoError(t, err)
	require.Equal(t, 9, score)
}

func TestPixelDiffer_FiveByFiveBlur(t *testing.T) {
	policy := entity.DefaultPolicy()
	policy.DilateIterations = 0

	prev := createTestImage(30, 30, color.Black)
	cur := createTestImage(30, 30, color.Black)
	cur.Set(15, 15, color.RGBA{R: 225, G: 225, B: 225, A: 255})

	// После ядра [1 4 6 4 1]/16 порог 20 проходят центр и четыре соседа по кресту.
	score, err := NewPixelDiffer(policy).Score(prev, cur)
	require.NoError(t, err)
	require.Equal(t, 5, score)

	policy.DilateIterations = 3
	score, err = NewPixelDiffer(policy).Score(prev, cur)
	require.NoError(t, err)
	require.Equal(t, 77, score)
}

func TestGaussianKernel(t *testing.T) {
	k := gaussianKernel(5, entity.DefaultPolicy().BlurSigma())
	require.Len(t, k, 25)
	require.InDelta(t, 0.375*0.375, k[12], 1e-7)
	require.InDelta(t, 0.0625*0.0625, k[0], 1e-7)

	sum := float32(0)
	for _, v := range gaussianKernel(9, 0.3*((9-1)*0.5-1)+0.8) {
		sum += v
	}
	require.InDelta(t, 1.0, sum, 1e-5)
}
