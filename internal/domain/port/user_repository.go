package port

import (
	"context"

	"breath-monitor/internal/domain/entity"
)

// UserRepository интерфейс хранилища пользователей
type UserRepository interface {
	// Get возвращает пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние пользователя
	Save(ctx context.Context, user *entity.User) error

	// UpdateState обновляет состояние пользователя
	UpdateState(ctx context.Context, userID int64, state entity.UserState) error
}

// PendingImageStore хранит первое изображение, пока пользователь выбирает второе
type PendingImageStore interface {
	Put(ctx context.Context, userID int64, data []byte) error
	Take(ctx context.Context, userID int64) ([]byte, bool, error)
	Drop(ctx context.Context, userID int64) error
}
