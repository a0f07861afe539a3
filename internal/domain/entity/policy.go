package entity

import "time"

// Policy задаёт пороги обоих путей детекции.
type Policy struct {
	CompareSide      int           // сторона квадрата, к которому приводятся изображения
	StaticPercent    float64       // порог средней разницы в процентах
	PixelCutoff      uint8         // порог бинаризации разницы кадров
	BlurKernel       int           // размер ядра размытия (нечётный)
	DilateIterations int           // число проходов расширения маски
	MinMovingPixels  int           // минимум изменившихся пикселей для "дыхания"
	PollDelay        time.Duration // пауза между итерациями живого цикла
}

// DefaultPolicy возвращает стандартные пороги.
func DefaultPolicy() Policy {
	return Policy{
		CompareSide:      200,
		StaticPercent:    0.5,
		PixelCutoff:      20,
		BlurKernel:       5,
		DilateIterations: 3,
		MinMovingPixels:  500,
		PollDelay:        10 * time.Millisecond,
	}
}

// BlurSigma вычисляет сигму гауссова ядра по его размеру, как это делает OpenCV при sigma=0.
func (p Policy) BlurSigma() float64 {
	return 0.3*(float64(p.BlurKernel-1)*0.5-1) + 0.8
}

// ClassifyDifference классифицирует процент разницы двух изображений.
func (p Policy) ClassifyDifference(percentage float64) DifferenceResult {
	res := DifferenceResult{Percentage: percentage, HashDistance: -1}
	if percentage < p.StaticPercent {
		res.Label = LabelNoBreathingDetected
		return res
	}
	res.Movement = true
	res.Label = LabelBreathingDetected
	return res
}

// ClassifyMovement классифицирует число изменившихся пикселей между кадрами.
func (p Policy) ClassifyMovement(pixels int) MovementScore {
	if pixels < p.MinMovingPixels {
		return MovementScore{Pixels: pixels, Label: LabelNoBreathing}
	}
	return MovementScore{Pixels: pixels, Breathing: true, Label: LabelBreathing}
}
