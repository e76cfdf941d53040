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

type AnthropicAdapter struct {
	cfg     domain.ModelConfig
	baseURL string
	client  *http.Client
}

func NewAnthropicAdapter(cfg domain.ModelConfig) *AnthropicAdapter {
	return &AnthropicAdapter{
		cfg:     cfg,
		baseURL: "https://api.anthropic.com/v1",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Invoke 映射到 messages 接口。
// system prompt 走独立的 system 字段；图片必须 base64 内联，
// 取图失败时降级为文字提示而不是让整个调用失败。
func (a *AnthropicAdapter) Invoke(ctx context.Context, messages []domain.Message, systemPrompt string) domain.TurnResult {
	start := time.Now()

	apiMsgs := make([]anthropicMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == domain.RoleAssistant {
			apiMsgs = append(apiMsgs, anthropicMessage{Role: "assistant", Content: m.Content})
			continue
		}
		if m.ImageURL != "" {
			text := m.Content
			if text == "" {
				text = "Analyze this image."
			}
			mediaType, data, err := fetchImageAsBase64(ctx, a.client, m.ImageURL)
			if err != nil {
				apiMsgs = append(apiMsgs, anthropicMessage{Role: "user", Content: text + noVisionNotice})
				continue
			}
			apiMsgs = append(apiMsgs, anthropicMessage{Role: "user", Content: []anthropicContentBlock{
				{Type: "image", Source: &anthropicImageSource{Type: "base64", MediaType: mediaType, Data: data}},
				{Type: "text", Text: text},
			}})
		} else {
			apiMsgs = append(apiMsgs, anthropicMessage{Role: "user", Content: m.Content})
		}
	}

	reqBody := anthropicChatRequest{
		Model:     a.cfg.ModelID,
		MaxTokens: 4000,
		System:    systemPrompt,
		Messages:  apiMsgs,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return errResult(start, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return errResult(start, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(req)
	if err != nil {
		return errResult(start, err.Error())
	}
	defer resp.Body.Close()

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage *struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errResult(start, fmt.Sprintf("anthropic: malformed response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != nil && result.Error.Message != "" {
			return errResult(start, result.Error.Message)
		}
		return errResult(start, fmt.Sprintf("anthropic error: %d", resp.StatusCode))
	}

	// 取第一个 text 块
	var content string
	for _, c := range result.Content {
		if c.Type == "text" {
			content = c.Text
			break
		}
	}

	var tokens *int
	if result.Usage != nil {
		total := result.Usage.InputTokens + result.Usage.OutputTokens
		tokens = &total
	}
	return okResult(start, content, tokens)
}

type anthropicChatRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

// Content 为 string 或 []anthropicContentBlock（带图消息）
type anthropicMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type anthropicContentBlock struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}
