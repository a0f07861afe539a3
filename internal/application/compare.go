package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
)

// CompareService управляет сравнением двух изображений.
type CompareService struct {
	users      *UserService
	comparator port.ImageComparator
	pending    port.PendingImageStore
}

// CompareOutput содержит результат шага диалога сравнения.
type CompareOutput struct {
	User   *entity.User
	Result *entity.DifferenceResult // nil, пока не получено второе изображение
}

// NewCompareService создаёт сервис сравнения изображений.
func NewCompareService(users *UserService, comparator port.ImageComparator, pending port.PendingImageStore) *CompareService {
	return &CompareService{
		users:      users,
		comparator: comparator,
		pending:    pending,
	}
}

// CompareFiles читает два файла и сравнивает их.
func (s *CompareService) CompareFiles(ctx context.Context, pathA, pathB string) (*entity.DifferenceResult, error) {
	if pathA == "" || pathB == "" {
		return nil, entity.ErrSelectionCancelled
	}

	a, err := os.ReadFile(pathA)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrLoad, err)
	}
	b, err := os.ReadFile(pathB)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrLoad, err)
	}

	return s.Compare(ctx, a, b)
}

// Compare сравнивает два изображения в памяти.
func (s *CompareService) Compare(ctx context.Context, a, b []byte) (*entity.DifferenceResult, error) {
	if s.comparator == nil {
		return nil, errors.New("comparator is not configured")
	}

	res, err := s.comparator.Compare(ctx, a, b)
	if err != nil {
		return nil, err
	}

	log.Printf("Compared images: difference=%.4f%% movement=%t hash_distance=%d", res.Percentage, res.Movement, res.HashDistance)
	return res, nil
}

// AcceptFirstImage запоминает первое изображение и ждёт второе.
func (s *CompareService) AcceptFirstImage(ctx context.Context, userID, chatID int64, image []byte) (*CompareOutput, error) {
	if err := s.pending.Put(ctx, userID, image); err != nil {
		return nil, err
	}
	user, err := s.users.SetState(ctx, userID, chatID, entity.StateAwaitingSecondImage)
	if err != nil {
		return nil, err
	}
	return &CompareOutput{User: user}, nil
}

// AcceptSecondImage сравнивает второе изображение с первым и возвращает пользователя в главное меню.
func (s *CompareService) AcceptSecondImage(ctx context.Context, userID, chatID int64, image []byte) (*CompareOutput, error) {
	first, ok, err := s.pending.Take(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Диалог завершается при любом исходе.
	user, stateErr := s.users.SetState(ctx, userID, chatID, entity.StateMainMenu)
	if stateErr != nil {
		return nil, stateErr
	}
	if !ok {
		return &CompareOutput{User: user}, entity.ErrSelectionCancelled
	}

	res, err := s.Compare(ctx, first, image)
	if err != nil {
		return &CompareOutput{User: user}, err
	}
	return &CompareOutput{User: user, Result: res}, nil
}

// Cancel прерывает диалог выбора изображений.
func (s *CompareService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	if err := s.pending.Drop(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.Cancel(ctx, userID, chatID)
}
