// Package gateway отправляет запросы к нейросетям. Для каждой операции
// задан упорядоченный список кандидатов (эндпоинт + модель); шлюз
// пробует их по очереди и возвращает первый пригодный ответ.
package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/rpregul/aiflowers/pkg/models"
)

// Request — один запрос к модели. Собирается заново на каждый вызов.
type Request struct {
	Op     models.Operation
	Prompt string
	Image  []byte // нормализованный JPEG, может отсутствовать
}

// Result — единая внутренняя форма ответа модели: текст и/или картинки.
// Воркфлоу никогда не видит сырые ответы конкретных провайдеров.
type Result struct {
	Text   string
	Images [][]byte
}

// Client — шлюз к нейросетям. Не держит изменяемого состояния кроме
// конфигурации, поэтому безопасен для конкурентных вызовов.
type Client struct {
	httpClient *http.Client
	candidates map[models.Operation][]Candidate
	log        *logrus.Entry
}

// New создаёт шлюз с готовыми списками кандидатов.
func New(candidates map[models.Operation][]Candidate, log *logrus.Entry) *Client {
	return &Client{
		// Таймауты задаются на уровне кандидата через контекст.
		httpClient: &http.Client{},
		candidates: candidates,
		log:        log,
	}
}

// Invoke перебирает кандидатов операции по порядку. Ошибка транспорта,
// не-2xx статус или ответ без ожидаемых полей переводят к следующему
// кандидату; первый извлекаемый текст или картинка возвращаются сразу,
// оставшиеся кандидаты не вызываются. Повторных попыток к одному
// кандидату нет: это запасные ресурсы, а не ретраи.
func (c *Client) Invoke(ctx context.Context, req Request) (*Result, error) {
	cands := c.candidates[req.Op]
	if len(cands) == 0 {
		return nil, fmt.Errorf("нет кандидатов для операции %q", req.Op)
	}

	var lastErr error
	for _, cand := range cands {
		res, err := c.tryCandidate(ctx, cand, req)
		if err != nil {
			c.log.WithError(err).WithFields(logrus.Fields{
				"op":        req.Op,
				"candidate": cand.Name,
			}).Warn("Кандидат не ответил, пробую следующий")
			lastErr = err
			continue
		}

		c.log.WithFields(logrus.Fields{
			"op":        req.Op,
			"candidate": cand.Name,
			"text_len":  len(res.Text),
			"images":    len(res.Images),
		}).Info("Получен ответ модели")
		return res, nil
	}

	return nil, &AllCandidatesFailedError{Op: req.Op, Last: lastErr}
}

// tryCandidate делает один сетевой вызов к кандидату с его таймаутом.
func (c *Client) tryCandidate(ctx context.Context, cand Candidate, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, cand.Timeout)
	defer cancel()

	switch cand.Shape {
	case ShapeOpenAI:
		return c.callOpenAI(ctx, cand, req)
	case ShapeGemini:
		return c.callGemini(ctx, cand, req)
	default:
		return nil, fmt.Errorf("неизвестный формат API %q", cand.Shape)
	}
}
