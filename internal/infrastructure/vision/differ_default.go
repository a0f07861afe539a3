//go:build !gocv
// +build !gocv

package vision

import (
	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
)

// NewFrameDiffer без тега gocv возвращает реализацию на чистом Go.
func NewFrameDiffer(policy entity.Policy) port.FrameDiffer {
	return NewPixelDiffer(policy)
}
