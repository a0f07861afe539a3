package vision

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/corona10/goimagehash"
	"github.com/nfnt/resize"

	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
)

// Comparator сравнивает два статичных изображения попиксельно.
type Comparator struct {
	policy entity.Policy
}

// NewComparator создаёт компаратор с заданными порогами.
func NewComparator(policy entity.Policy) *Comparator {
	return &Comparator{policy: policy}
}

// Compare декодирует изображения, приводит их к квадрату CompareSide и считает среднюю разницу каналов.
func (c *Comparator) Compare(ctx context.Context, a, b []byte) (*entity.DifferenceResult, error) {
	_ = ctx

	imgA, err := decodeImage(a)
	if err != nil {
		return nil, fmt.Errorf("first image: %w", err)
	}
	imgB, err := decodeImage(b)
	if err != nil {
		return nil, fmt.Errorf("second image: %w", err)
	}

	// Режим берём до ресайза: resize может сменить тип буфера.
	modeA, modeB := colorModeOf(imgA), colorModeOf(imgB)
	imgA = c.normalize(imgA)
	imgB = c.normalize(imgB)

	sizeA, sizeB := imgA.Bounds().Size(), imgB.Bounds().Size()
	if modeA != modeB || !sizeA.Eq(sizeB) {
		return nil, fmt.Errorf("%w: %s %v vs %s %v", entity.ErrIncompatibleImages, modeA, sizeA, modeB, sizeB)
	}

	sum := channelDiffSum(imgA, imgB, modeA)
	// Делитель всегда w*h*3, в том числе для серых изображений.
	total := float64(sizeA.X * sizeA.Y * 3)
	percentage := (float64(sum) / 255.0 * 100) / total

	res := c.policy.ClassifyDifference(percentage)
	res.Mode = modeA
	res.HashDistance = hashDistance(imgA, imgB)
	return &res, nil
}

// normalize приводит изображение к квадрату CompareSide x CompareSide.
func (c *Comparator) normalize(img image.Image) image.Image {
	side := c.policy.CompareSide
	size := img.Bounds().Size()
	if size.X == side && size.Y == side {
		return img
	}
	return resize.Resize(uint(side), uint(side), img, resize.Bicubic)
}

// channelDiffSum суммирует модули разностей по всем каналам режима.
func channelDiffSum(a, b image.Image, mode entity.ColorMode) uint64 {
	ba, bb := a.Bounds(), b.Bounds()
	var sum uint64
	for y := 0; y < ba.Dy(); y++ {
		for x := 0; x < ba.Dx(); x++ {
			pa := a.At(ba.Min.X+x, ba.Min.Y+y)
			pb := b.At(bb.Min.X+x, bb.Min.Y+y)
			if mode == entity.ModeGray {
				ga := color.GrayModel.Convert(pa).(color.Gray)
				gb := color.GrayModel.Convert(pb).(color.Gray)
				sum += absDiff(ga.Y, gb.Y)
				continue
			}
			na := color.NRGBAModel.Convert(pa).(color.NRGBA)
			nb := color.NRGBAModel.Convert(pb).(color.NRGBA)
			sum += absDiff(na.R, nb.R) + absDiff(na.G, nb.G) + absDiff(na.B, nb.B)
		}
	}
	return sum
}

func absDiff(a, b uint8) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}

// hashDistance считает расстояние Хэмминга dHash двух изображений, -1 при ошибке.
func hashDistance(a, b image.Image) int {
	ha, err := goimagehash.DifferenceHash(a)
	if err != nil {
		log.Printf("Error hashing first image: %v", err)
		return -1
	}
	hb, err := goimagehash.DifferenceHash(b)
	if err != nil {
		log.Printf("Error hashing second image: %v", err)
		return -1
	}
	dist, err := ha.Distance(hb)
	if err != nil {
		log.Printf("Error comparing hashes: %v", err)
		return -1
	}
	return dist
}

// Проверка реализации интерфейса
var _ port.ImageComparator = (*Comparator)(nil)
