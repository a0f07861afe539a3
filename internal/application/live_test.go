package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
	"breath-monitor/internal/infrastructure/vision"
)

type fakeSource struct {
	frames []image.Image
	err    error // возвращается после последнего кадра, по умолчанию io.EOF
	loop   bool  // бесконечно повторять последний кадр
	next   int
	closes atomic.Int32
}

func (s *fakeSource) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next < len(s.frames) {
		f := s.frames[s.next]
		s.next++
		return f, nil
	}
	if s.loop && len(s.frames) > 0 {
		return s.frames[len(s.frames)-1], nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, io.EOF
}

func (s *fakeSource) Close() error {
	s.closes.Add(1)
	return nil
}

type fakeDisplay struct {
	shows  int
	stopAt int
	closes int
	showed []image.Image
}

func (d *fakeDisplay) Show(frame image.Image) {
	d.shows++
	d.showed = append(d.showed, frame)
}

func (d *fakeDisplay) StopRequested() bool { return d.stopAt > 0 && d.shows >= d.stopAt }

func (d *fakeDisplay) Close() error {
	d.closes++
	return nil
}

func frame(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func newLiveService() *LiveService {
	policy := entity.DefaultPolicy()
	policy.PollDelay = time.Millisecond
	return NewLiveService(vision.NewPixelDiffer(policy), policy)
}

func collect(results *[]entity.MovementScore) func(entity.MovementScore) {
	return func(s entity.MovementScore) { *results = append(*results, s) }
}

func TestLiveService_IdenticalFramesUntilEndOfStream(t *testing.T) {
	svc := newLiveService()
	src := &fakeSource{frames: []image.Image{frame(color.Black), frame(color.Black), frame(color.Black)}}

	var results []entity.MovementScore
	err := svc.Run(context.Background(), src, nil, collect(&results), nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for i, r := range results {
		require.Equal(t, i+1, r.Frame)
		require.Equal(t, 0, r.Pixels)
		require.Equal(t, entity.LabelNoBreathing, r.Label)
	}
	require.Equal(t, int32(1), src.closes.Load())
}

func TestLiveService_DifferentFramesAreBreathing(t *testing.T) {
	svc := newLiveService()
	src := &fakeSource{frames: []image.Image{frame(color.Black), frame(color.White)}}

	var results []entity.MovementScore
	require.NoError(t, svc.Run(context.Background(), src, nil, collect(&results), nil))
	require.Len(t, results, 1)
	require.Equal(t, 64*64, results[0].Pixels)
	require.True(t, results[0].Breathing)
	require.Equal(t, entity.LabelBreathing, results[0].Label)
}

func TestLiveService_StopsOnSignal(t *testing.T) {
	svc := newLiveService()
	src := &fakeSource{frames: []image.Image{frame(color.Black)}, loop: true}

	var results []entity.MovementScore
	calls := 0
	stop := func() bool {
		calls++
		return calls >= 3
	}
	require.NoError(t, svc.Run(context.Background(), src, nil, collect(&results), stop))
	require.Len(t, results, 3)
	require.Equal(t, int32(1), src.closes.Load())
}

func TestLiveService_CaptureFailure(t *testing.T) {
	svc := newLiveService()
	boom := errors.New("camera unplugged")
	src := &fakeSource{frames: []image.Image{frame(color.Black), frame(color.Black)}, err: boom}

	var results []entity.MovementScore
	err := svc.Run(context.Background(), src, nil, collect(&results), nil)
	require.ErrorIs(t, err, entity.ErrLoad)
	require.Len(t, results, 1)
	require.Equal(t, int32(1), src.closes.Load())
}

func TestLiveService_FailureBeforeFirstDifference(t *testing.T) {
	svc := newLiveService()
	src := &fakeSource{frames: []image.Image{frame(color.Black)}, err: errors.New("no signal")}

	var results []entity.MovementScore
	err := svc.Run(context.Background(), src, nil, collect(&results), nil)
	require.ErrorIs(t, err, entity.ErrLoad)
	require.Empty(t, results)
	require.Equal(t, int32(1), src.closes.Load())
}

func TestLiveService_ContextCancelled(t *testing.T) {
	svc := newLiveService()
	src := &fakeSource{frames: []image.Image{frame(color.Black)}, loop: true}
	ctx, cancel := context.WithCancel(context.Background())

	var results []entity.MovementScore
	onResult := func(s entity.MovementScore) {
		results = append(results, s)
		if len(results) == 2 {
			cancel()
		}
	}
	require.NoError(t, svc.Run(ctx, src, nil, onResult, nil))
	require.Len(t, results, 2)
	require.Equal(t, int32(1), src.closes.Load())
}

func TestLiveService_DisplayShowsPreviousFrame(t *testing.T) {
	svc := newLiveService()
	first, second := frame(color.Black), frame(color.White)
	src := &fakeSource{frames: []image.Image{first, second}, loop: true}
	display := &fakeDisplay{stopAt: 2}

	require.NoError(t, svc.Run(context.Background(), src, display, nil, nil))
	require.Equal(t, 2, display.shows)
	require.Same(t, first, display.showed[0])
	require.Same(t, second, display.showed[1])
	require.Equal(t, 1, display.closes)
	require.Equal(t, int32(1), src.closes.Load())
}

func TestLiveService_StartStop(t *testing.T) {
	svc := newLiveService()
	src := &fakeSource{frames: []image.Image{frame(color.Black)}, loop: true}
	ctx := context.Background()

	var mu sync.Mutex
	got := 0
	onResult := func(entity.MovementScore) {
		mu.Lock()
		got++
		mu.Unlock()
	}
	done := make(chan error, 1)
	onDone := func(err error) { done <- err }

	require.ErrorIs(t, svc.Stop(), entity.ErrNoSession)

	open := func() (port.FrameSource, error) { return src, nil }
	require.NoError(t, svc.Start(ctx, open, onResult, onDone))
	require.True(t, svc.Active())

	opened := false
	err := svc.Start(ctx, func() (port.FrameSource, error) {
		opened = true
		return src, nil
	}, onResult, onDone)
	require.ErrorIs(t, err, entity.ErrSessionActive)
	require.False(t, opened)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got > 0
	}, time.Second, time.Millisecond)

	require.NoError(t, svc.Stop())
	require.False(t, svc.Active())
	require.NoError(t, <-done)
	require.Equal(t, int32(1), src.closes.Load())
	require.ErrorIs(t, svc.Stop(), entity.ErrNoSession)
}

func TestLiveService_StartOpenFailure(t *testing.T) {
	svc := newLiveService()

	err := svc.Start(context.Background(), func() (port.FrameSource, error) {
		return nil, entity.ErrDeviceUnavailable
	}, nil, nil)
	require.ErrorIs(t, err, entity.ErrDeviceUnavailable)
	require.False(t, svc.Active())
}

func TestLiveService_StopWaitsForOnDone(t *testing.T) {
	svc := newLiveService()
	src := &fakeSource{frames: []image.Image{frame(color.Black)}, loop: true}

	var finished atomic.Bool
	onDone := func(error) {
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	}
	open := func() (port.FrameSource, error) { return src, nil }
	require.NoError(t, svc.Start(context.Background(), open, nil, onDone))

	require.NoError(t, svc.Stop())
	require.True(t, finished.Load())
	require.False(t, svc.Active())
}
