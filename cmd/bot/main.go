package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/rpregul/aiflowers/internal/bot"
	"github.com/rpregul/aiflowers/internal/config"
	"github.com/rpregul/aiflowers/internal/gateway"
	"github.com/rpregul/aiflowers/internal/storage"
	"github.com/rpregul/aiflowers/internal/workflow"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Загрузка конфигурации из переменных окружения
	log.Info("Загрузка конфигурации...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}
	if cfg.LogLevel != "" {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			log.Fatalf("Неверный LOG_LEVEL: %v", err)
		}
		log.SetLevel(level)
	}

	// Хранилище описаний живёт в памяти процесса.
	store := storage.New()

	gw := gateway.New(gateway.DefaultCandidates(gateway.Keys{
		OpenRouter: cfg.OpenRouterAPIKey,
		Gemini:     cfg.GeminiAPIKey,
	}), log.WithField("component", "gateway"))

	wf := workflow.New(gw, store, log.WithField("component", "workflow"))

	log.Info("Создание бота...")
	b, err := bot.New(cfg.TelegramBotToken, wf, log.WithField("component", "bot"))
	if err != nil {
		log.Fatalf("Не удалось создать бота: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Бот запущен")
	if err := b.Start(ctx); err != nil {
		log.Fatalf("Ошибка работы бота: %v", err)
	}
	log.Info("Бот остановлен")
}
