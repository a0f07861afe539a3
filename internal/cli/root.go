package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"breath-monitor/config"
	telegram "breath-monitor/internal/api"
	"breath-monitor/internal/container"
	"breath-monitor/internal/domain/entity"
	"breath-monitor/internal/domain/port"
	"breath-monitor/internal/infrastructure/vision"
)

const windowTitle = "Live Breath Detection"

// NewRootCmd собирает дерево команд: compare, live и bot.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "breath-monitor",
		Short:         "Breathing movement detection",
		Long:          `Compares two images or successive camera frames and reports whether pixel-level change exceeds a threshold.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newCompareCmd(), newLiveCmd(), newBotCmd())
	return root
}

// Execute запускает CLI и завершает процесс с кодом 1 при ошибке.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		stop()
		os.Exit(1)
	}
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <first-image> <second-image>",
		Short: "Compare two images",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			app := container.NewDefault(cfg.Policy)

			res, err := app.CompareService.CompareFiles(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text())
			return nil
		},
	}
}

func newLiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "live [source]",
		Short: "Run live detection on a camera, video file or image directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			sourceSpec := cfg.VideoSource
			if len(args) == 1 {
				sourceSpec = args[0]
			}

			source, err := vision.OpenSource(sourceSpec)
			if err != nil {
				return err
			}

			var display port.FrameDisplay
			if cfg.ShowWindow {
				display = vision.NewWindow(windowTitle, cfg.Policy.PollDelay)
			}

			app := container.NewDefault(cfg.Policy)
			log.Printf("Live detection on %q, press 'q' in the window or Ctrl+C to quit", sourceSpec)
			return app.LiveService.Run(cmd.Context(), source, display, printChanges(cmd.OutOrStdout()), nil)
		},
	}
}

func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.TelegramToken == "" {
				return errors.New("TELEGRAM_TOKEN is required")
			}

			app := container.NewDefault(cfg.Policy)
			openSource := func() (port.FrameSource, error) {
				return vision.OpenSource(cfg.VideoSource)
			}

			bot, err := telegram.NewBot(cfg.TelegramToken, app, openSource, cfg.LiveReportInterval)
			if err != nil {
				return fmt.Errorf("failed to create bot: %w", err)
			}

			log.Println("Bot is running...")
			return bot.Run(cmd.Context())
		},
	}
}

// printChanges печатает оценку, только когда меняется метка.
func printChanges(w io.Writer) func(entity.MovementScore) {
	last := ""
	return func(s entity.MovementScore) {
		if s.Label == last {
			return
		}
		last = s.Label
		fmt.Fprintf(w, "[frame %d] %s\n", s.Frame, s.Text())
	}
}

// describe переводит ошибку сценария в сообщение для терминала.
func describe(err error) string {
	switch {
	case errors.Is(err, entity.ErrSelectionCancelled):
		return "Image selection cancelled."
	case errors.Is(err, entity.ErrIncompatibleImages):
		return fmt.Sprintf("Images must have same size and mode: %v", err)
	case errors.Is(err, entity.ErrLoad):
		return fmt.Sprintf("Failed to open images: %v", err)
	case errors.Is(err, entity.ErrDeviceUnavailable):
		return fmt.Sprintf("Video source is unavailable: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
