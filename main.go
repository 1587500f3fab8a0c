package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/lipgloss"
	"github.com/vadiminshakov/bittrex-dca-bot/config"
	"github.com/vadiminshakov/bittrex-dca-bot/internal"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/clients"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/services/journal"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/services/notifier"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/setup"
	"go.uber.org/zap"
)

const journalDir = "./journal"

var (
	filledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}).
			Bold(true)
	timedOutStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D08700", Dark: "#F5C542"}).
			Bold(true)
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Get()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.Setup {
		if err := setup.Run(cfg.SettingsPath); err != nil {
			logger.Fatal("settings wizard failed", zap.Error(err))
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exchange := clients.NewBittrex(cfg.Settings.Exchange.BaseURL, cfg.Settings.BittrexKey, cfg.Settings.BittrexSecret)

	publisher, err := notifier.NewSNSPublisher(ctx, cfg.Settings.SNSTopic, cfg.Settings.AWSAccessKeyID, cfg.Settings.AWSSecretAccessKey)
	if err != nil {
		logger.Fatal("failed to create notification publisher", zap.Error(err))
	}

	jrnl, err := journal.New(journalDir, logger)
	if err != nil {
		logger.Fatal("failed to open order journal", zap.Error(err))
	}

	bot := internal.NewTradingBot(cfg, exchange, publisher, jrnl, clock.New(), logger)

	result, err := bot.Run(ctx)
	if err != nil {
		jrnl.Close()
		logger.Fatal("trade failed", zap.Error(err))
	}
	if err := jrnl.Close(); err != nil {
		logger.Warn("failed to close order journal", zap.Error(err))
	}

	switch result.Outcome {
	case internal.OutcomeTimedOut:
		fmt.Println(timedOutStyle.Render(result.Subject))
	default:
		fmt.Println(filledStyle.Render(result.Subject))
		fmt.Println(result.Report)
	}
}
