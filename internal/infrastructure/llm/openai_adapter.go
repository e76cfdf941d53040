package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

type OpenAIAdapter struct {
	cfg     domain.ModelConfig
	baseURL string
	client  *http.Client
}

func NewOpenAIAdapter(cfg domain.ModelConfig) *OpenAIAdapter {
	return &OpenAIAdapter{
		cfg:     cfg,
		baseURL: "https://api.openai.com/v1",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Invoke 把归一化历史映射为 chat/completions 请求。
// system prompt 走独立的 system 角色消息；带图的 user 消息转为多段 content。
func (a *OpenAIAdapter) Invoke(ctx context.Context, messages []domain.Message, systemPrompt string) domain.TurnResult {
	start := time.Now()

	apiMsgs := make([]openAIChatMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		apiMsgs = append(apiMsgs, openAIChatMessage{Role: "system", Content: systemPrompt})
	}
	for _, m := range messages {
		if m.Role == domain.RoleAssistant {
			apiMsgs = append(apiMsgs, openAIChatMessage{Role: "assistant", Content: m.Content})
			continue
		}
		if m.ImageURL != "" {
			text := m.Content
			if text == "" {
				text = "Analyze this image."
			}
			apiMsgs = append(apiMsgs, openAIChatMessage{Role: "user", Content: []openAIContentPart{
				{Type: "text", Text: text},
				{Type: "image_url", ImageURL: &openAIImageURL{URL: m.ImageURL, Detail: "high"}},
			}})
		} else {
			apiMsgs = append(apiMsgs, openAIChatMessage{Role: "user", Content: m.Content})
		}
	}

	reqBody := openAIChatRequest{Model: a.cfg.ModelID, MaxTokens: 4000, Messages: apiMsgs}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return errResult(start, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return errResult(start, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return errResult(start, err.Error())
	}
	defer resp.Body.Close()

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage *struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errResult(start, fmt.Sprintf("openai: malformed response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != nil && result.Error.Message != "" {
			return errResult(start, result.Error.Message)
		}
		return errResult(start, fmt.Sprintf("openai error: %d", resp.StatusCode))
	}
	if len(result.Choices) == 0 {
		return errResult(start, "openai: no response")
	}

	var tokens *int
	if result.Usage != nil {
		tokens = &result.Usage.TotalTokens
	}
	return okResult(start, result.Choices[0].Message.Content, tokens)
}

type openAIChatRequest struct {
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens"`
	Messages  []openAIChatMessage `json:"messages"`
}

// Content 为 string 或 []openAIContentPart（带图消息）
type openAIChatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}
