package gateway

import (
	"fmt"
	"time"

	"github.com/rpregul/aiflowers/pkg/models"
)

// Shape — формат API кандидата.
type Shape string

const (
	// ShapeOpenAI — chat/completions: {choices:[{message:{content, images}}]}.
	ShapeOpenAI Shape = "openai"
	// ShapeGemini — generateContent: {candidates:[{content:{parts:[...]}}]}.
	ShapeGemini Shape = "gemini"
)

const (
	// Текстовые операции укладываются в полминуты, генерация картинки
	// может идти заметно дольше.
	textTimeout   = 30 * time.Second
	renderTimeout = 120 * time.Second

	openRouterChatURL = "https://openrouter.ai/api/v1/chat/completions"
	geminiBaseURL     = "https://generativelanguage.googleapis.com/v1beta/models"
)

// Candidate — одна пара «эндпоинт + модель», которую шлюз может
// попробовать для операции.
type Candidate struct {
	Name     string // для логов
	Endpoint string
	Model    string // пустой для Gemini: модель зашита в эндпоинт
	APIKey   string
	Shape    Shape
	Timeout  time.Duration
}

// Keys — API-ключи провайдеров. Пустой ключ исключает кандидатов
// провайдера из списков.
type Keys struct {
	OpenRouter string
	Gemini     string
}

func geminiEndpoint(model string) string {
	return fmt.Sprintf("%s/%s:generateContent", geminiBaseURL, model)
}

// DefaultCandidates собирает списки кандидатов для всех операций.
// Порядок в списке — это порядок перебора: имена моделей у провайдеров
// нестабильны, поэтому запас прочности важнее скорости первой попытки.
func DefaultCandidates(keys Keys) map[models.Operation][]Candidate {
	var vision, text, render []Candidate

	if keys.OpenRouter != "" {
		vision = append(vision, Candidate{
			Name:     "openrouter/gemini-flash",
			Endpoint: openRouterChatURL,
			Model:    "google/gemini-2.0-flash-001",
			APIKey:   keys.OpenRouter,
			Shape:    ShapeOpenAI,
			Timeout:  textTimeout,
		})
		text = append(text, Candidate{
			Name:     "openrouter/gemini-flash",
			Endpoint: openRouterChatURL,
			Model:    "google/gemini-2.0-flash-001",
			APIKey:   keys.OpenRouter,
			Shape:    ShapeOpenAI,
			Timeout:  textTimeout,
		})
		render = append(render, Candidate{
			Name:     "openrouter/gemini-image",
			Endpoint: openRouterChatURL,
			Model:    "google/gemini-2.5-flash-image-preview",
			APIKey:   keys.OpenRouter,
			Shape:    ShapeOpenAI,
			Timeout:  renderTimeout,
		})
	}

	if keys.Gemini != "" {
		vision = append(vision, Candidate{
			Name:     "gemini/1.5-pro",
			Endpoint: geminiEndpoint("gemini-1.5-pro"),
			APIKey:   keys.Gemini,
			Shape:    ShapeGemini,
			Timeout:  textTimeout,
		})
		text = append(text, Candidate{
			Name:     "gemini/1.5-flash",
			Endpoint: geminiEndpoint("gemini-1.5-flash"),
			APIKey:   keys.Gemini,
			Shape:    ShapeGemini,
			Timeout:  textTimeout,
		})
		render = append(render, Candidate{
			Name:     "gemini/flash-image",
			Endpoint: geminiEndpoint("gemini-2.5-flash-image-preview"),
			APIKey:   keys.Gemini,
			Shape:    ShapeGemini,
			Timeout:  renderTimeout,
		})
	}

	if keys.OpenRouter != "" {
		// Замыкающий запасной вариант для анализа: другой вендор,
		// чтобы недоступность семейства Gemini не валила весь анализ.
		vision = append(vision, Candidate{
			Name:     "openrouter/gpt-4o-mini",
			Endpoint: openRouterChatURL,
			Model:    "openai/gpt-4o-mini",
			APIKey:   keys.OpenRouter,
			Shape:    ShapeOpenAI,
			Timeout:  textTimeout,
		})
	}

	return map[models.Operation][]Candidate{
		models.OpAnalyze:       vision,
		models.OpRefineSmaller: text,
		models.OpRefineLarger:  text,
		models.OpRender:        render,
	}
}
