package domain

import (
	"time"
)

// Message 角色定义
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Provider 是模型提供商的闭集标签
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderMoonshot  Provider = "moonshot"
	ProviderGemini    Provider = "gemini"
)

// Message 代表归一化后的单条对话消息
// ImageURL 可以是 http(s) 地址或 data URI；切片顺序即对话顺序
type Message struct {
	Role     string `json:"role"` // user, assistant
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// TurnResult 是一次模型调用的归一化结果。
// Content 与 Error 不会同时有意义：出错时 Content 为空。
// TokensUsed 在厂商未返回用量时整体省略，而不是填 0。
type TurnResult struct {
	Content      string `json:"content"`
	TokensUsed   *int   `json:"tokensUsed,omitempty"`
	ResponseTime int64  `json:"responseTime"` // 毫秒，无论成败都会填
	Error        string `json:"error,omitempty"`
}

// ModelConfig 定义注册表中一个可选模型的静态配置
// Name 全局唯一；Provider 必须是已注册 adapter 之一
type ModelConfig struct {
	Name            string   `json:"name"`
	Provider        Provider `json:"provider"`
	ModelID         string   `json:"modelId"`
	APIKey          string   `json:"-"`
	SupportsVision  bool     `json:"supportsVision"`
	HasSystemPrompt bool     `json:"hasSystemPrompt"`
}

// Conversation 对应外部存储中的会话记录
type Conversation struct {
	ID              string    `json:"id"`
	ModelName       string    `json:"modelName"`
	Provider        Provider  `json:"provider"`
	HasSystemPrompt bool      `json:"hasSystemPrompt"` // Guided 模式标志
	SystemPrompt    string    `json:"systemPrompt,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ConversationSummary 用于历史列表展示的简略信息
type ConversationSummary struct {
	ID              string    `json:"id"`
	ModelName       string    `json:"modelName"`
	Provider        Provider  `json:"provider"`
	HasSystemPrompt bool      `json:"hasSystemPrompt"`
	MessageCount    int       `json:"messageCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// StoredMessage 是会话内持久化的一条消息
// TokensUsed / ResponseTime 只在 assistant 回合上有值
type StoredMessage struct {
	ID           string    `json:"id"`
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	TokensUsed   *int      `json:"tokensUsed,omitempty"`
	ResponseTime *int64    `json:"responseTime,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DebateMessage 是辩论中产出的一条发言，按发言模型打标
type DebateMessage struct {
	ID           string    `json:"id"`
	ModelName    string    `json:"modelName"`
	Content      string    `json:"content"`
	TokensUsed   *int      `json:"tokensUsed,omitempty"`
	ResponseTime int64     `json:"responseTime"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
