package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// SequenceSource отдаёт изображения из папки как кадры, по порядку имён файлов.
type SequenceSource struct {
	files  []string
	next   int
	closed bool
}

// NewSequenceSource собирает список изображений в папке dir.
func NewSequenceSource(dir string) (*SequenceSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrDeviceUnavailable, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no images in %s", entity.ErrDeviceUnavailable, dir)
	}
	sort.Strings(files)

	return &SequenceSource{files: files}, nil
}

// Len возвращает число кадров в последовательности.
func (s *SequenceSource) Len() int {
	return len(s.files)
}

// Read декодирует следующий файл; после последнего возвращает io.EOF.
func (s *SequenceSource) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed {
		return nil, errors.New("sequence source is closed")
	}
	if s.next >= len(s.files) {
		return nil, io.EOF
	}

	path := s.files[s.next]
	s.next++

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrLoad, err)
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Close помечает источник закрытым.
func (s *SequenceSource) Close() error {
	s.closed = true
	return nil
}

var _ port.FrameSource = (*SequenceSource)(nil)
