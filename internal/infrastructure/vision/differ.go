package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/gift"

	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
)

// PixelDiffer считает движение между кадрами на чистом Go.
type PixelDiffer struct {
	policy entity.Policy
	blur   *gift.GIFT
	dilate *gift.GIFT
}

// NewPixelDiffer создаёт счётчик движения с размытием и расширением маски по политике.
func NewPixelDiffer(policy entity.Policy) *PixelDiffer {
	blur := gift.New()
	if policy.BlurKernel > 1 {
		blur.Add(gift.Convolution(gaussianKernel(policy.BlurKernel, policy.BlurSigma()), false, false, false, 0))
	}

	// Расширение квадратом 3x3, по одному фильтру на итерацию.
	dilate := gift.New()
	for i := 0; i < policy.DilateIterations; i++ {
		dilate.Add(gift.Maximum(3, false))
	}

	return &PixelDiffer{policy: policy, blur: blur, dilate: dilate}
}

// Score возвращает число ненулевых пикселей маски движения.
func (d *PixelDiffer) Score(prev, cur image.Image) (int, error) {
	if prev == nil || cur == nil {
		return 0, fmt.Errorf("%w: empty frame", entity.ErrLoad)
	}
	if !prev.Bounds().Size().Eq(cur.Bounds().Size()) {
		return 0, fmt.Errorf("%w: frame size changed from %v to %v",
			entity.ErrIncompatibleImages, prev.Bounds().Size(), cur.Bounds().Size())
	}

	diff := absDiffGray(prev, cur)

	mask := diff
	if len(d.blur.Filters) > 0 {
		mask = image.NewGray(d.blur.Bounds(diff.Bounds()))
		d.blur.Draw(mask, diff)
	}

	binarize(mask, d.policy.PixelCutoff)

	if len(d.dilate.Filters) > 0 {
		dilated := image.NewGray(d.dilate.Bounds(mask.Bounds()))
		d.dilate.Draw(dilated, mask)
		mask = dilated
	}

	return countNonZero(mask), nil
}

// Фиксированные ядра OpenCV для k <= 7 при sigma=0.
var smallGaussianKernels = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// gaussianKernel строит квадратное ядро k x k как внешнее произведение одномерного ядра.
func gaussianKernel(k int, sigma float64) []float32 {
	row, ok := smallGaussianKernels[k]
	if !ok {
		row = make([]float64, k)
		sum := 0.0
		for i := range row {
			x := float64(i - (k-1)/2)
			row[i] = math.Exp(-x * x / (2 * sigma * sigma))
			sum += row[i]
		}
		for i := range row {
			row[i] /= sum
		}
	}

	kernel := make([]float32, 0, k*k)
	for _, ry := range row {
		for _, rx := range row {
			kernel = append(kernel, float32(ry*rx))
		}
	}
	return kernel
}

// absDiffGray считает модуль разности по каналам и переводит его в яркость.
func absDiffGray(a, b image.Image) *image.Gray {
	ba, bb := a.Bounds(), b.Bounds()
	out := image.NewGray(image.Rect(0, 0, ba.Dx(), ba.Dy()))
	for y := 0; y < ba.Dy(); y++ {
		for x := 0; x < ba.Dx(); x++ {
			r1, g1, b1, _ := a.At(ba.Min.X+x, ba.Min.Y+y).RGBA()
			r2, g2, b2, _ := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			r := absDiff(uint8(r1>>8), uint8(r2>>8))
			g := absDiff(uint8(g1>>8), uint8(g2>>8))
			bl := absDiff(uint8(b1>>8), uint8(b2>>8))
			// Коэффициенты BT.601, как в color.GrayModel.
			lum := (19595*r + 38470*g + 7471*bl + 1<<15) >> 16
			out.Pix[y*out.Stride+x] = uint8(lum)
		}
	}
	return out
}

// binarize оставляет 255 там, где значение строго больше порога.
func binarize(img *image.Gray, cutoff uint8) {
	for i, v := range img.Pix {
		if v > cutoff {
			img.Pix[i] = 255
		} else {
			img.Pix[i] = 0
		}
	}
}

func countNonZero(img *image.Gray) int {
	b := img.Bounds()
	n := 0
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()]
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

var _ port.FrameDiffer = (*PixelDiffer)(nil)
