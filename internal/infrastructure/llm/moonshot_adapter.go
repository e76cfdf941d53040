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

// MoonshotAdapter 走 Kimi 的 OpenAI 兼容接口，但采样参数固定。
type MoonshotAdapter struct {
	cfg     domain.ModelConfig
	baseURL string
	client  *http.Client
}

func NewMoonshotAdapter(cfg domain.ModelConfig) *MoonshotAdapter {
	return &MoonshotAdapter{
		cfg:     cfg,
		baseURL: "https://api.moonshot.ai/v1",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (a *MoonshotAdapter) Invoke(ctx context.Context, messages []domain.Message, systemPrompt string) domain.TurnResult {
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
				{Type: "image_url", ImageURL: &openAIImageURL{URL: m.ImageURL}},
			}})
		} else {
			apiMsgs = append(apiMsgs, openAIChatMessage{Role: "user", Content: m.Content})
		}
	}

	reqBody := moonshotChatRequest{
		Model:       a.cfg.ModelID,
		Messages:    apiMsgs,
		MaxTokens:   4000,
		Temperature: 1.0,
		TopP:        0.95,
	}
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
		return errResult(start, fmt.Sprintf("moonshot: malformed response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != nil && result.Error.Message != "" {
			return errResult(start, result.Error.Message)
		}
		return errResult(start, "Kimi API error")
	}
	if len(result.Choices) == 0 {
		return errResult(start, "moonshot: no response")
	}

	var tokens *int
	if result.Usage != nil {
		tokens = &result.Usage.TotalTokens
	}
	return okResult(start, result.Choices[0].Message.Content, tokens)
}

type moonshotChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature"`
	TopP        float64             `json:"top_p"`
}
