package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"breath-monitor/internal/container"
	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
)

const (
	msgStart = `👋 Привет! Я слежу за дыханием по изображениям и камере.

📋 Команды:
/compare — сравнить два изображения
/live — запустить наблюдение с камеры
/stop — остановить наблюдение
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ /compare и два фото подряд — бот сравнит их и скажет, есть ли движение
2️⃣ /live — бот начнёт читать кадры с камеры и обновлять статус в одном сообщении
3️⃣ /stop — остановить наблюдение

💡 Рекомендации:
• Снимайте с одной точки
• Не меняйте освещение между кадрами
• Для серых изображений присылайте оба серыми (файлом)`

	msgAwaitingFirst      = "📸 Отправьте первое изображение."
	msgAwaitingSecond     = "📸 Теперь отправьте второе изображение."
	msgSendCompare        = "📸 Отправьте /compare, чтобы сравнить два изображения."
	msgSelectionCancelled = "❌ Выбор изображений отменён."
	msgCancelled          = "❌ Операция отменена."
	msgUnknownCommand     = "❓ Неизвестная команда. Используйте /help для справки."
	msgLiveStarting       = "🎥 Запускаю наблюдение..."
	msgLiveBusy           = "⏳ Наблюдение уже запущено. Остановите его командой /stop."
	msgLiveStopped        = "⏹ Наблюдение остановлено."
	msgLiveNotRunning     = "ℹ️ Наблюдение не запущено."
	msgLoadError          = "⚠️ Не удалось открыть изображение или кадр."
	msgIncompatible       = "⚠️ Изображения должны иметь одинаковый размер и режим (цветное/серое)."
	msgDeviceUnavailable  = "⚠️ Камера недоступна."
	msgProcessingError    = "⚠️ Не удалось обработать изображение."
)

// Bot представляет Telegram-бота
type Bot struct {
	api            *tgbotapi.BotAPI
	app            *container.Container
	openSource     func() (port.FrameSource, error)
	reportInterval time.Duration
}

// NewBot создаёт нового бота
func NewBot(token string, app *container.Container, openSource func() (port.FrameSource, error), reportInterval time.Duration) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:            api,
		app:            app,
		openSource:     openSource,
		reportInterval: reportInterval,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	// Камеру освобождаем при любом выходе.
	defer func() {
		if err := b.app.LiveService.Stop(); err == nil {
			log.Println("Live session stopped on shutdown")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.app.UserService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка изображений: сжатое фото или файл
	if fileID, ok := imageFileID(msg); ok {
		b.handleImage(ctx, msg, user, fileID)
		return
	}

	switch user.State {
	case entity.StateAwaitingFirstImage:
		b.sendMessage(msg.Chat.ID, msgAwaitingFirst)
	case entity.StateAwaitingSecondImage:
		b.sendMessage(msg.Chat.ID, msgAwaitingSecond)
	default:
		b.sendMessage(msg.Chat.ID, msgSendCompare)
	}
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	switch msg.Command() {
	case "start":
		b.dropDialog(ctx, user)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "compare":
		b.dropDialog(ctx, user)
		if _, err := b.app.UserService.BeginCompare(ctx, user.ID, user.ChatID); err != nil {
			log.Printf("Error starting comparison: %v", err)
			return
		}
		b.sendMessage(msg.Chat.ID, msgAwaitingFirst)

	case "cancel":
		if user.InDialog() {
			b.dropDialog(ctx, user)
			b.sendMessage(msg.Chat.ID, userMessage(entity.ErrSelectionCancelled))
			return
		}
		if user.State == entity.StateLive {
			b.stopLive(ctx, msg.Chat.ID, user)
			return
		}
		b.sendMessage(msg.Chat.ID, msgCancelled)

	case "live":
		b.startLive(ctx, msg.Chat.ID, user)

	case "stop":
		b.stopLive(ctx, msg.Chat.ID, user)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// handleImage принимает очередное изображение диалога сравнения
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, user *entity.User, fileID string) {
	if !user.InDialog() {
		b.sendMessage(msg.Chat.ID, msgSendCompare)
		return
	}

	imageData, err := b.downloadFile(fileID)
	if err != nil {
		log.Printf("Error downloading image: %v", err)
		b.dropDialog(ctx, user)
		b.sendMessage(msg.Chat.ID, userMessage(fmt.Errorf("%w: %v", entity.ErrLoad, err)))
		return
	}

	if user.State == entity.StateAwaitingFirstImage {
		if _, err := b.app.CompareService.AcceptFirstImage(ctx, user.ID, user.ChatID, imageData); err != nil {
			log.Printf("Error storing first image: %v", err)
			b.sendMessage(msg.Chat.ID, msgProcessingError)
			return
		}
		b.sendMessage(msg.Chat.ID, msgAwaitingSecond)
		return
	}

	out, err := b.app.CompareService.AcceptSecondImage(ctx, user.ID, user.ChatID, imageData)
	if err != nil {
		log.Printf("Error comparing images: %v", err)
		b.sendMessage(msg.Chat.ID, userMessage(err))
		return
	}
	b.sendMessage(msg.Chat.ID, out.Result.Text())
}

// startLive запускает наблюдение и заводит статусное сообщение
func (b *Bot) startLive(ctx context.Context, chatID int64, user *entity.User) {
	if b.app.LiveService.Active() {
		b.sendMessage(chatID, msgLiveBusy)
		return
	}
	b.dropDialog(ctx, user)

	status, err := b.api.Send(tgbotapi.NewMessage(chatID, msgLiveStarting))
	if err != nil {
		log.Printf("Error sending message: %v", err)
		return
	}

	reporter := newLiveReporter(b.reportInterval, func(text string) error {
		_, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, status.MessageID, text))
		return err
	})

	onFinish := func(err error) {
		if err != nil {
			log.Printf("Live detection failed: %v", err)
			b.sendMessage(chatID, userMessage(err))
			return
		}
		b.sendMessage(chatID, msgLiveStopped)
	}

	if err := b.launchLive(ctx, user.ID, user.ChatID, reporter.Report, onFinish); err != nil {
		log.Printf("Error starting live detection: %v", err)
		b.sendMessage(chatID, userMessage(err))
	}
}

// launchLive переводит пользователя в режим наблюдения и запускает сессию.
// Состояние выставляется до старта: короткая сессия может завершиться раньше, чем Start вернёт управление.
func (b *Bot) launchLive(ctx context.Context, userID, chatID int64, onResult func(entity.MovementScore), onFinish func(error)) error {
	if _, err := b.app.UserService.BeginLive(ctx, userID, chatID); err != nil {
		return err
	}

	// Сессия живёт дольше обработчика сообщения, поэтому берём фоновый контекст.
	onDone := func(err error) {
		if _, stateErr := b.app.UserService.Cancel(context.Background(), userID, chatID); stateErr != nil {
			log.Printf("Error resetting user state: %v", stateErr)
		}
		if onFinish != nil {
			onFinish(err)
		}
	}

	if err := b.app.LiveService.Start(context.Background(), b.openSource, onResult, onDone); err != nil {
		if _, stateErr := b.app.UserService.Cancel(ctx, userID, chatID); stateErr != nil {
			log.Printf("Error resetting user state: %v", stateErr)
		}
		return err
	}
	return nil
}

// stopLive останавливает наблюдение; итог отправит onDone
func (b *Bot) stopLive(ctx context.Context, chatID int64, user *entity.User) {
	if err := b.app.LiveService.Stop(); err != nil {
		b.sendMessage(chatID, userMessage(err))
		if _, err := b.app.UserService.Cancel(ctx, user.ID, user.ChatID); err != nil {
			log.Printf("Error resetting user state: %v", err)
		}
	}
}

// dropDialog сбрасывает незавершённый диалог сравнения
func (b *Bot) dropDialog(ctx context.Context, user *entity.User) {
	if _, err := b.app.CompareService.Cancel(ctx, user.ID, user.ChatID); err != nil {
		log.Printf("Error resetting dialog: %v", err)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// imageFileID возвращает файл изображения из сообщения: самое крупное фото или документ-картинку
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// userMessage переводит ошибку сценария в текст для пользователя
func userMessage(err error) string {
	switch {
	case errors.Is(err, entity.ErrSelectionCancelled):
		return msgSelectionCancelled
	case errors.Is(err, entity.ErrIncompatibleImages):
		return msgIncompatible
	case errors.Is(err, entity.ErrLoad):
		return msgLoadError
	case errors.Is(err, entity.ErrDeviceUnavailable):
		return msgDeviceUnavailable
	case errors.Is(err, entity.ErrSessionActive):
		return msgLiveBusy
	case errors.Is(err, entity.ErrNoSession):
		return msgLiveNotRunning
	default:
		return msgProcessingError
	}
}
