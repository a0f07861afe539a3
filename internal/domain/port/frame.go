package port

import (
	"context"
	"image"
)

// FrameSource источник кадров: камера, видеофайл или папка с изображениями
type FrameSource interface {
	// Read возвращает следующий кадр; io.EOF означает конец потока
	Read(ctx context.Context) (image.Image, error)

	// Close освобождает устройство
	Close() error
}

// FrameDiffer считает оценку движения между двумя кадрами
type FrameDiffer interface {
	// Score возвращает число изменившихся пикселей после порога и расширения
	Score(prev, cur image.Image) (int, error)
}

// FrameDisplay окно предпросмотра живого наблюдения
type FrameDisplay interface {
	// Show выводит кадр и ждёт не дольше задержки опроса
	Show(frame image.Image)

	// StopRequested сообщает, попросил ли пользователь остановку
	StopRequested() bool

	// Close закрывает окно
	Close() error
}
