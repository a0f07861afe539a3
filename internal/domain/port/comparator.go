package port

import (
	"context"

	"breath-monitor/internal/domain/entity"
)

// ImageComparator интерфейс сравнения двух изображений
type ImageComparator interface {
	// Compare декодирует оба изображения, приводит к общему размеру и считает разницу
	Compare(ctx context.Context, a, b []byte) (*entity.DifferenceResult, error)
}
