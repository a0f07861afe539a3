package vision

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
)

// DefaultSource индекс камеры по умолчанию.
const DefaultSource = "0"

// OpenSource открывает источник кадров по строке: номер камеры, папка с изображениями или видеофайл.
func OpenSource(spec string) (port.FrameSource, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultSource
	}

	if index, err := strconv.Atoi(spec); err == nil {
		if index < 0 {
			return nil, fmt.Errorf("%w: negative device index %d", entity.ErrDeviceUnavailable, index)
		}
		return openDevice(index)
	}

	info, err := os.Stat(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrDeviceUnavailable, err)
	}
	if info.IsDir() {
		return NewSequenceSource(spec)
	}
	return openVideoFile(spec)
}
