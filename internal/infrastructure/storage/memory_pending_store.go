package storage

import (
	"context"
	"sync"

	"breath-monitor/internal/domain/port"
)

// MemoryPendingStore держит первое изображение диалога сравнения в памяти
type MemoryPendingStore struct {
	mu     sync.Mutex
	images map[int64][]byte
}

// NewMemoryPendingStore создаёт пустое хранилище
func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{images: make(map[int64][]byte)}
}

// Put запоминает изображение пользователя, заменяя предыдущее
func (s *MemoryPendingStore) Put(ctx context.Context, userID int64, data []byte) error {
	s.mu.Lock()
	s.images[userID] = data
	s.mu.Unlock()
	return nil
}

// Take возвращает и удаляет изображение пользователя
func (s *MemoryPendingStore) Take(ctx context.Context, userID int64) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.images[userID]
	delete(s.images, userID)
	return data, ok && len(data) > 0, nil
}

// Drop забывает изображение пользователя
func (s *MemoryPendingStore) Drop(ctx context.Context, userID int64) error {
	s.mu.Lock()
	delete(s.images, userID)
	s.mu.Unlock()
	return nil
}

var _ port.PendingImageStore = (*MemoryPendingStore)(nil)
