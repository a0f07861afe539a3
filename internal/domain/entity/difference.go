package entity

import "fmt"

const (
	LabelNoBreathingDetected = "No breathing detected"
	LabelBreathingDetected   = "Breathing detected"
	LabelNoBreathing         = "No breathing"
	LabelBreathing           = "Breathing"
)

// ColorMode цветовой режим изображения после декодирования.
type ColorMode string

const (
	ModeGray ColorMode = "gray" // один канал
	ModeRGB  ColorMode = "rgb"  // три канала, альфа игнорируется
)

// Channels возвращает число каналов режима.
func (m ColorMode) Channels() int {
	if m == ModeGray {
		return 1
	}
	return 3
}

// DifferenceResult итог сравнения двух изображений.
type DifferenceResult struct {
	Percentage   float64   // средняя разница в процентах
	Movement     bool      // разница не ниже порога
	Label        string    // текст классификации
	Mode         ColorMode // общий цветовой режим изображений
	HashDistance int       // расстояние Хэмминга перцептивных хэшей, -1 если не посчитано
}

// Text форматирует результат для вывода пользователю.
func (r DifferenceResult) Text() string {
	mark := "⚠️"
	if r.Movement {
		mark = "✅"
	}
	return fmt.Sprintf("Difference: %.4f%%\n%s %s", r.Percentage, r.Label, mark)
}

// MovementScore итог одной итерации живого наблюдения.
type MovementScore struct {
	Frame     int    // номер итерации, начиная с 1
	Pixels    int    // число изменившихся пикселей
	Breathing bool   // движение не ниже порога
	Label     string // текст классификации
}

// Text форматирует оценку для вывода пользователю.
func (s MovementScore) Text() string {
	mark := "⚠️"
	if s.Breathing {
		mark = "✅"
	}
	return fmt.Sprintf("Movement: %d\n%s %s", s.Pixels, s.Label, mark)
}
