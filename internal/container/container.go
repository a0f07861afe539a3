package container

import (
	app "breath-monitor/internal/application"
	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
	"breath-monitor/internal/infrastructure/storage"
	"breath-monitor/internal/infrastructure/vision"
)

type Container struct {
	Policy         entity.Policy
	UserService    *app.UserService
	CompareService *app.CompareService
	LiveService    *app.LiveService
}

func New(policy entity.Policy, userRepo port.UserRepository, comparator port.ImageComparator, differ port.FrameDiffer) *Container {
	userService := app.NewUserService(userRepo)
	compareService := app.NewCompareService(userService, comparator, storage.NewMemoryPendingStore())
	liveService := app.NewLiveService(differ, policy)

	return &Container{
		Policy:         policy,
		UserService:    userService,
		CompareService: compareService,
		LiveService:    liveService,
	}
}

// NewDefault собирает контейнер с in-memory хранилищем и детекторами из пакета vision.
func NewDefault(policy entity.Policy) *Container {
	return New(policy, storage.NewMemoryUserRepository(), vision.NewComparator(policy), vision.NewFrameDiffer(policy))
}
