package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

type GeminiAdapter struct {
	cfg     domain.ModelConfig
	baseURL string
	client  *http.Client
}

func NewGeminiAdapter(cfg domain.ModelConfig) *GeminiAdapter {
	return &GeminiAdapter{
		cfg:     cfg,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Invoke 映射到 generateContent。
// assistant 对应 Gemini 的 model 角色；system prompt 走 system_instruction；
// 图片转 inline_data，取图失败时降级为文字提示。
func (a *GeminiAdapter) Invoke(ctx context.Context, messages []domain.Message, systemPrompt string) domain.TurnResult {
	start := time.Now()

	contents := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == domain.RoleAssistant {
			role = "model"
		}

		var parts []geminiPart
		text := m.Content
		if m.ImageURL != "" {
			if text == "" {
				text = "Analyze this image."
			}
			mimeType, data, err := fetchImageAsBase64(ctx, a.client, m.ImageURL)
			if err != nil {
				text += noVisionNotice
			} else {
				parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: mimeType, Data: data}})
			}
		}
		parts = append(parts, geminiPart{Text: text})
		contents = append(contents, geminiContent{Role: role, Parts: parts})
	}

	reqBody := geminiRequest{Contents: contents}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return errResult(start, err.Error())
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.baseURL, a.cfg.ModelID, a.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return errResult(start, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return errResult(start, err.Error())
	}
	defer resp.Body.Close()

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		UsageMetadata *struct {
			PromptTokenCount     int `json:"promptTokenCount"`
			CandidatesTokenCount int `json:"candidatesTokenCount"`
		} `json:"usageMetadata"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errResult(start, fmt.Sprintf("gemini: malformed response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != nil && result.Error.Message != "" {
			return errResult(start, result.Error.Message)
		}
		return errResult(start, fmt.Sprintf("gemini error: %d", resp.StatusCode))
	}
	if len(result.Candidates) == 0 {
		return errResult(start, "gemini: no response")
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	var tokens *int
	if result.UsageMetadata != nil {
		total := result.UsageMetadata.PromptTokenCount + result.UsageMetadata.CandidatesTokenCount
		tokens = &total
	}
	return okResult(start, sb.String(), tokens)
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}
