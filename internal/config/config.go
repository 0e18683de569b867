package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramBotToken string
	OpenRouterAPIKey string
	GeminiAPIKey     string
	LogLevel         string
}

// Load читает конфигурацию из окружения. Файл .env подхватывается,
// если он есть; в проде переменные задаются окружением напрямую.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_TOKEN"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
	}

	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("не задана переменная TELEGRAM_TOKEN")
	}
	if cfg.OpenRouterAPIKey == "" && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("нужен хотя бы один ключ нейросети: OPENROUTER_API_KEY или GEMINI_API_KEY")
	}

	return cfg, nil
}
