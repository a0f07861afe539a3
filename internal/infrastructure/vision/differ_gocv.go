//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
)

// MatDiffer считает движение между кадрами средствами OpenCV.
type MatDiffer struct {
	policy entity.Policy
}

// NewFrameDiffer с тегом gocv возвращает реализацию на OpenCV.
func NewFrameDiffer(policy entity.Policy) port.FrameDiffer {
	return &MatDiffer{policy: policy}
}

// Score повторяет конвейер absdiff -> gray -> blur -> threshold -> dilate -> countNonZero.
func (d *MatDiffer) Score(prev, cur image.Image) (int, error) {
	if prev == nil || cur == nil {
		return 0, fmt.Errorf("%w: empty frame", entity.ErrLoad)
	}
	if !prev.Bounds().Size().Eq(cur.Bounds().Size()) {
		return 0, fmt.Errorf("%w: frame size changed from %v to %v",
			entity.ErrIncompatibleImages, prev.Bounds().Size(), cur.Bounds().Size())
	}

	prevMat, err := gocv.ImageToMatRGB(prev)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", entity.ErrLoad, err)
	}
	defer prevMat.Close()

	curMat, err := gocv.ImageToMatRGB(cur)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", entity.ErrLoad, err)
	}
	defer curMat.Close()

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(prevMat, curMat, &diff)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(diff, &gray, gocv.ColorBGRToGray)

	// Подавляем шум матрицы перед порогом.
	blur := gocv.NewMat()
	defer blur.Close()
	if k := d.policy.BlurKernel; k > 1 {
		gocv.GaussianBlur(gray, &blur, image.Pt(k, k), 0, 0, gocv.BorderDefault)
	} else {
		gray.CopyTo(&blur)
	}

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(blur, &thresh, float32(d.policy.PixelCutoff), 255, gocv.ThresholdBinary)

	// Сливаем соседние области изменений.
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	for i := 0; i < d.policy.DilateIterations; i++ {
		gocv.Dilate(thresh, &thresh, kernel)
	}

	return gocv.CountNonZero(thresh), nil
}
