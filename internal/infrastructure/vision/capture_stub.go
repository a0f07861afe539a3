//go:build !gocv
// +build !gocv

package vision

import (
	"fmt"
	"log"
	"time"

	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
)

// openDevice возвращает ошибку, если сборка без тега gocv.
func openDevice(index int) (port.FrameSource, error) {
	return nil, fmt.Errorf("%w: device %d: gocv build tag is not enabled", entity.ErrDeviceUnavailable, index)
}

// openVideoFile возвращает ошибку, если сборка без тега gocv.
func openVideoFile(path string) (port.FrameSource, error) {
	return nil, fmt.Errorf("%w: %s: gocv build tag is not enabled", entity.ErrDeviceUnavailable, path)
}

// NewWindow без тега gocv окна не открывает.
func NewWindow(title string, pollDelay time.Duration) port.FrameDisplay {
	_ = pollDelay
	log.Printf("Preview window %q is not available without gocv build tag", title)
	return nil
}
