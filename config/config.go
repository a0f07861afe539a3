package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"breath-monitor/internal/domain/entity"
)

type Config struct {
	TelegramToken      string
	VideoSource        string
	ShowWindow         bool
	LiveReportInterval time.Duration
	Policy             entity.Policy
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	def := entity.DefaultPolicy()
	cutoff := getEnvInt("PIXEL_DIFF_CUTOFF", int(def.PixelCutoff))
	if cutoff < 0 || cutoff > 255 {
		return nil, errors.New("PIXEL_DIFF_CUTOFF must be in range 0..255")
	}

	cfg := &Config{
		TelegramToken:      os.Getenv("TELEGRAM_TOKEN"),
		VideoSource:        getEnv("VIDEO_SOURCE", "0"),
		ShowWindow:         getEnvBool("SHOW_WINDOW", true),
		LiveReportInterval: getEnvMillis("LIVE_REPORT_INTERVAL_MS", 2*time.Second),
		Policy: entity.Policy{
			CompareSide:      getEnvInt("COMPARE_SIDE", def.CompareSide),
			StaticPercent:    getEnvFloat("STATIC_THRESHOLD_PERCENT", def.StaticPercent),
			PixelCutoff:      uint8(cutoff),
			BlurKernel:       getEnvInt("BLUR_KERNEL", def.BlurKernel),
			DilateIterations: getEnvInt("DILATE_ITERATIONS", def.DilateIterations),
			MinMovingPixels:  getEnvInt("MIN_MOVING_PIXELS", def.MinMovingPixels),
			PollDelay:        getEnvMillis("POLL_DELAY_MS", def.PollDelay),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет пороги, которые нельзя молча исправить.
func (c *Config) Validate() error {
	p := c.Policy
	switch {
	case p.CompareSide <= 0:
		return errors.New("COMPARE_SIDE must be positive")
	case p.StaticPercent < 0:
		return errors.New("STATIC_THRESHOLD_PERCENT must not be negative")
	case p.BlurKernel <= 0 || p.BlurKernel%2 == 0:
		return errors.New("BLUR_KERNEL must be a positive odd number")
	case p.DilateIterations < 0:
		return errors.New("DILATE_ITERATIONS must not be negative")
	case p.MinMovingPixels < 0:
		return errors.New("MIN_MOVING_PIXELS must not be negative")
	case p.PollDelay < 0:
		return errors.New("POLL_DELAY_MS must not be negative")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

func getEnvMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}
