package entity

import "errors"

// Ошибки сценариев сравнения и живого наблюдения.
var (
	ErrSelectionCancelled = errors.New("image selection cancelled")
	ErrLoad               = errors.New("failed to load image")
	ErrIncompatibleImages = errors.New("images must have same size and mode")
	ErrDeviceUnavailable  = errors.New("video source is unavailable")
	ErrSessionActive      = errors.New("live session is already running")
	ErrNoSession          = errors.New("live session is not running")
)
