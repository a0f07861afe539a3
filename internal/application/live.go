package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
)

// LiveService ведёт живое наблюдение за движением по кадрам.
type LiveService struct {
	differ port.FrameDiffer
	policy entity.Policy

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLiveService создаёт сервис живого наблюдения.
func NewLiveService(differ port.FrameDiffer, policy entity.Policy) *LiveService {
	return &LiveService{differ: differ, policy: policy}
}

// Run блокирует вызывающего, пока источник не закончится, не сломается или не попросят остановку.
// Источник и окно закрываются на любом пути выхода.
func (s *LiveService) Run(ctx context.Context, source port.FrameSource, display port.FrameDisplay, onResult func(entity.MovementScore), shouldStop func() bool) error {
	defer func() {
		if err := source.Close(); err != nil {
			log.Printf("Error closing video source: %v", err)
		}
		if display != nil {
			if err := display.Close(); err != nil {
				log.Printf("Error closing preview window: %v", err)
			}
		}
	}()

	if s.differ == nil {
		return errors.New("frame differ is not configured")
	}

	// Для первой разницы нужны два кадра.
	prev, err := source.Read(ctx)
	if err != nil {
		return finishRead(err)
	}
	cur, err := source.Read(ctx)
	if err != nil {
		return finishRead(err)
	}

	for frame := 1; ; frame++ {
		pixels, err := s.differ.Score(prev, cur)
		if err != nil {
			return err
		}

		if display != nil {
			display.Show(prev)
		}

		res := s.policy.ClassifyMovement(pixels)
		res.Frame = frame
		if onResult != nil {
			onResult(res)
		}

		if s.stopRequested(ctx, display, shouldStop) {
			log.Printf("Live detection stopped after %d frames", frame)
			return nil
		}

		prev = cur
		cur, err = source.Read(ctx)
		if err != nil {
			return finishRead(err)
		}
	}
}

// stopRequested выдерживает паузу опроса и проверяет сигналы остановки.
func (s *LiveService) stopRequested(ctx context.Context, display port.FrameDisplay, shouldStop func() bool) bool {
	if display == nil {
		// Окно само ждёт задержку в Show, без окна ждём здесь.
		timer := time.NewTimer(s.policy.PollDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return true
		case <-timer.C:
		}
	} else {
		if ctx.Err() != nil || display.StopRequested() {
			return true
		}
	}
	return shouldStop != nil && shouldStop()
}

// finishRead превращает ошибку чтения кадра в результат цикла.
func finishRead(err error) error {
	switch {
	case errors.Is(err, io.EOF):
		log.Printf("Video source closed")
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil
	case errors.Is(err, entity.ErrLoad):
		return err
	default:
		return fmt.Errorf("%w: %v", entity.ErrLoad, err)
	}
}

// Start запускает наблюдение в фоне. Одновременно работает не больше одной сессии.
// open вызывается только если слот свободен; onDone получает итог цикла.
func (s *LiveService) Start(ctx context.Context, open func() (port.FrameSource, error), onResult func(entity.MovementScore), onDone func(error)) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return entity.ErrSessionActive
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	source, err := open()
	if err != nil {
		cancel()
		s.release(done)
		return err
	}

	// onDone отрабатывает до освобождения слота, чтобы Stop вернулся после него.
	go func() {
		err := s.Run(runCtx, source, nil, onResult, nil)
		cancel()
		if onDone != nil {
			onDone(err)
		}
		s.release(done)
	}()

	return nil
}

// Stop отменяет текущую сессию и ждёт освобождения источника и завершения onDone.
func (s *LiveService) Stop() error {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return entity.ErrNoSession
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Active сообщает, идёт ли сейчас сессия.
func (s *LiveService) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *LiveService) release(done chan struct{}) {
	s.mu.Lock()
	if s.done == done {
		s.cancel, s.done = nil, nil
	}
	s.mu.Unlock()
	close(done)
}
