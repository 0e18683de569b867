package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/rpregul/aiflowers/pkg/models"
)

// Нативный формат generateContent (Google Generative Language API).

type gmRequest struct {
	Contents         []gmContent `json:"contents"`
	GenerationConfig *gmGenCfg   `json:"generationConfig,omitempty"`
}

type gmContent struct {
	Role  string   `json:"role"`
	Parts []gmPart `json:"parts"`
}

type gmPart struct {
	Text       string        `json:"text,omitempty"`
	InlineData *gmInlineData `json:"inline_data,omitempty"`
}

type gmInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type gmGenCfg struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type gmResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text       string `json:"text"`
				InlineData *struct {
					Data string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) callGemini(ctx context.Context, cand Candidate, req Request) (*Result, error) {
	parts := []gmPart{{Text: req.Prompt}}
	if len(req.Image) > 0 {
		parts = append(parts, gmPart{InlineData: &gmInlineData{
			MIMEType: "image/jpeg",
			Data:     base64.StdEncoding.EncodeToString(req.Image),
		}})
	}

	body := gmRequest{
		Contents: []gmContent{{Role: "user", Parts: parts}},
	}
	if req.Op == models.OpRender {
		body.GenerationConfig = &gmGenCfg{ResponseModalities: []string{"IMAGE", "TEXT"}}
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
	httpReq.Header.Set("x-goog-api-key", cand.APIKey)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	respBody, err := c.doJSON(httpReq)
	if err != nil {
		return nil, err
	}

	var payload gmResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("неверный JSON в ответе: %w", err)
	}
	if len(payload.Candidates) == 0 {
		return nil, fmt.Errorf("в ответе нет candidates")
	}

	res := &Result{}
	for _, part := range payload.Candidates[0].Content.Parts {
		if part.Text != "" {
			if res.Text != "" {
				res.Text += "\n"
			}
			res.Text += part.Text
		}
		if part.InlineData != nil && part.InlineData.Data != "" {
			if b, ok := decodeBase64(part.InlineData.Data); ok {
				res.Images = append(res.Images, b)
			}
		}
	}

	if res.Text == "" && len(res.Images) == 0 {
		return nil, fmt.Errorf("в ответе нет ни текста, ни картинки")
	}
	return res, nil
}
