package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"breath-monitor/internal/domain/entity"
)

// decodeImage превращает байты файла в image.Image.
func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", entity.ErrLoad)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrLoad, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", entity.ErrLoad)
	}
	return img, nil
}

// colorModeOf определяет цветовой режим по типу декодированного изображения.
func colorModeOf(img image.Image) entity.ColorMode {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return entity.ModeGray
	default:
		return entity.ModeRGB
	}
}
