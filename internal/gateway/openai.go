package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rpregul/aiflowers/pkg/models"
)

// Формат chat/completions (OpenRouter и совместимые провайдеры).

type oaRequest struct {
	Model      string      `json:"model"`
	Messages   []oaMessage `json:"messages"`
	Modalities []string    `json:"modalities,omitempty"`
}

type oaMessage struct {
	Role    string   `json:"role"`
	Content []oaPart `json:"content"`
}

type oaPart struct {
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	ImageURL *oaImageURL `json:"image_url,omitempty"`
}

type oaImageURL struct {
	URL string `json:"url"`
}

type oaResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			// Некоторые провайдеры кладут картинки в message.images,
			// а не в content.
			Images []struct {
				ImageURL oaImageURL `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) callOpenAI(ctx context.Context, cand Candidate, req Request) (*Result, error) {
	parts := []oaPart{{Type: "text", Text: req.Prompt}}
	if len(req.Image) > 0 {
		parts = append(parts, oaPart{
			Type:     "image_url",
			ImageURL: &oaImageURL{URL: encodeDataURI(req.Image)},
		})
	}

	body := oaRequest{
		Model:    cand.Model,
		Messages: []oaMessage{{Role: "user", Content: parts}},
	}
	if req.Op == models.OpRender {
		body.Modalities = []string{"image", "text"}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("сериализация запроса: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cand.Endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cand.APIKey)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	respBody, err := c.doJSON(httpReq)
	if err != nil {
		return nil, err
	}

	var payload oaResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("неверный JSON в ответе: %w", err)
	}
	if payload.Error != nil && payload.Error.Message != "" {
		return nil, fmt.Errorf("модель вернула ошибку: %s", payload.Error.Message)
	}
	if len(payload.Choices) == 0 {
		return nil, fmt.Errorf("в ответе нет choices")
	}

	msg := payload.Choices[0].Message
	res := &Result{Text: msg.Content}
	for _, img := range msg.Images {
		if b, ok := decodeDataURI(img.ImageURL.URL); ok {
			res.Images = append(res.Images, b)
		}
	}

	if res.Text == "" && len(res.Images) == 0 {
		return nil, fmt.Errorf("в ответе нет ни текста, ни картинки")
	}
	return res, nil
}

// doJSON выполняет запрос и возвращает тело успешного ответа.
// Не-2xx статус — это отказ кандидата.
func (c *Client) doJSON(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка HTTP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("статус %d: %s", resp.StatusCode, string(snippet))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("чтение тела ответа: %w", err)
	}
	return body, nil
}

func encodeDataURI(jpegBytes []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegBytes)
}

// decodeDataURI извлекает байты картинки из data-URI. Голый base64 без
// префикса тоже принимается: так отвечают некоторые провайдеры.
func decodeDataURI(uri string) ([]byte, bool) {
	s := uri
	if strings.HasPrefix(s, "data:") {
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return nil, false
		}
		s = s[i+1:]
	}
	return decodeBase64(s)
}

// decodeBase64 пробует варианты кодировки по очереди: часть провайдеров
// отдаёт base64 без паддинга или в URL-safe алфавите.
func decodeBase64(s string) ([]byte, bool) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		if b, err := enc.DecodeString(s); err == nil && len(b) > 0 {
			return b, true
		}
	}
	return nil, false
}
