//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"gocv.io/x/gocv"

	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
)

// captureSource читает кадры с камеры или из видеофайла.
type captureSource struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
	name    string
	file    bool
}

func openDevice(index int) (port.FrameSource, error) {
	capture, err := gocv.VideoCaptureDevice(index)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", entity.ErrDeviceUnavailable, index, err)
	}
	return newCaptureSource(capture, fmt.Sprintf("device %d", index), false)
}

func openVideoFile(path string) (port.FrameSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrDeviceUnavailable, path, err)
	}
	return newCaptureSource(capture, path, true)
}

func newCaptureSource(capture *gocv.VideoCapture, name string, file bool) (port.FrameSource, error) {
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s is not opened", entity.ErrDeviceUnavailable, name)
	}
	return &captureSource{capture: capture, frame: gocv.NewMat(), name: name, file: file}, nil
}

// Read захватывает следующий кадр.
func (s *captureSource) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.capture.IsOpened() {
		return nil, io.EOF
	}
	if ok := s.capture.Read(&s.frame); !ok || s.frame.Empty() {
		// У видеофайла это конец записи, у камеры сбой захвата.
		if s.file {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: frame capture failed on %s", entity.ErrLoad, s.name)
	}

	img, err := s.frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrLoad, err)
	}
	return img, nil
}

// Close освобождает устройство захвата.
func (s *captureSource) Close() error {
	s.frame.Close()
	return s.capture.Close()
}

// window окно предпросмотра; клавиша q просит остановку.
type window struct {
	w       *gocv.Window
	delayMs int
	stop    bool
}

// NewWindow открывает окно предпросмотра живого наблюдения.
func NewWindow(title string, pollDelay time.Duration) port.FrameDisplay {
	delay := int(pollDelay / time.Millisecond)
	if delay < 1 {
		delay = 1
	}
	return &window{w: gocv.NewWindow(title), delayMs: delay}
}

// Show выводит кадр и ждёт нажатия клавиши не дольше задержки опроса.
func (w *window) Show(frame image.Image) {
	mat, err := gocv.ImageToMatRGB(frame)
	if err == nil {
		w.w.IMShow(mat)
		mat.Close()
	}
	if key := w.w.WaitKey(w.delayMs); key >= 0 && key&0xFF == 'q' {
		w.stop = true
	}
}

// StopRequested сообщает, нажата ли q или закрыто окно.
func (w *window) StopRequested() bool {
	return w.stop || !w.w.IsOpen()
}

// Close закрывает окно.
func (w *window) Close() error {
	return w.w.Close()
}
