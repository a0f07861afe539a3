package telegram

import (
	"log"
	"time"

	"breath-monitor/internal/domain/entity"
)

// liveReporter ограничивает частоту правок статусного сообщения живого наблюдения.
// Смена метки отправляется сразу, остальное не чаще interval.
type liveReporter struct {
	interval time.Duration
	send     func(text string) error
	now      func() time.Time

	lastLabel string
	lastText  string
	lastSent  time.Time
}

func newLiveReporter(interval time.Duration, send func(text string) error) *liveReporter {
	return &liveReporter{interval: interval, send: send, now: time.Now}
}

// Report вызывается из цикла наблюдения на каждой итерации.
func (r *liveReporter) Report(score entity.MovementScore) {
	text := score.Text()
	if text == r.lastText {
		return
	}

	now := r.now()
	if score.Label == r.lastLabel && now.Sub(r.lastSent) < r.interval {
		return
	}

	if err := r.send(text); err != nil {
		log.Printf("Error updating live status: %v", err)
		return
	}
	r.lastLabel, r.lastText, r.lastSent = score.Label, text, now
}
