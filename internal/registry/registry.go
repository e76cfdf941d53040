package registry

import (
	"fmt"
	"os"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

// Registry 是进程级静态模型注册表，加载后不可变。
// 8 个模型：GPT / Claude / Kimi / Gemini，各有 Guided 与 Custom 两种模式。
type Registry struct {
	models []domain.ModelConfig
	byName map[string]*domain.ModelConfig
}

// Load 从环境变量读取各厂商凭证并构建注册表。
func Load() (*Registry, error) {
	models := []domain.ModelConfig{
		// GPT-5.2
		{
			Name:            "GPT-5.2 Thinking (Guided)",
			Provider:        domain.ProviderOpenAI,
			ModelID:         "gpt-4o",
			APIKey:          os.Getenv("OPENAI_API_KEY"),
			SupportsVision:  true,
			HasSystemPrompt: true,
		},
		{
			Name:            "GPT-5.2 Thinking (Custom)",
			Provider:        domain.ProviderOpenAI,
			ModelID:         "gpt-4o",
			APIKey:          os.Getenv("OPENAI_API_KEY"),
			SupportsVision:  true,
			HasSystemPrompt: false,
		},

		// Claude Opus 4.6
		{
			Name:            "Claude Opus 4.6 (Guided)",
			Provider:        domain.ProviderAnthropic,
			ModelID:         "claude-sonnet-4-20250514",
			APIKey:          os.Getenv("ANTHROPIC_API_KEY"),
			SupportsVision:  true,
			HasSystemPrompt: true,
		},
		{
			Name:            "Claude Opus 4.6 (Custom)",
			Provider:        domain.ProviderAnthropic,
			ModelID:         "claude-sonnet-4-20250514",
			APIKey:          os.Getenv("ANTHROPIC_API_KEY"),
			SupportsVision:  true,
			HasSystemPrompt: false,
		},

		// Kimi K2.5
		{
			Name:            "Kimi K2.5 (Guided)",
			Provider:        domain.ProviderMoonshot,
			ModelID:         "kimi-k2.5",
			APIKey:          os.Getenv("MOONSHOT_API_KEY"),
			SupportsVision:  true,
			HasSystemPrompt: true,
		},
		{
			Name:            "Kimi K2.5 (Custom)",
			Provider:        domain.ProviderMoonshot,
			ModelID:         "kimi-k2.5",
			APIKey:          os.Getenv("MOONSHOT_API_KEY"),
			SupportsVision:  true,
			HasSystemPrompt: false,
		},

		// Gemini 2.0 Flash
		{
			Name:            "Gemini 2.0 Flash (Guided)",
			Provider:        domain.ProviderGemini,
			ModelID:         "gemini-2.0-flash",
			APIKey:          os.Getenv("GEMINI_API_KEY"),
			SupportsVision:  true,
			HasSystemPrompt: true,
		},
		{
			Name:            "Gemini 2.0 Flash (Custom)",
			Provider:        domain.ProviderGemini,
			ModelID:         "gemini-2.0-flash",
			APIKey:          os.Getenv("GEMINI_API_KEY"),
			SupportsVision:  true,
			HasSystemPrompt: false,
		},
	}
	return New(models)
}

// New 从给定配置构建注册表，校验 Name 全局唯一。
func New(models []domain.ModelConfig) (*Registry, error) {
	byName := make(map[string]*domain.ModelConfig, len(models))
	for i := range models {
		m := &models[i]
		if _, dup := byName[m.Name]; dup {
			return nil, fmt.Errorf("duplicate model name: %s", m.Name)
		}
		byName[m.Name] = m
	}
	return &Registry{models: models, byName: byName}, nil
}

// Find 按展示名查找模型配置，未注册时返回 nil。
func (r *Registry) Find(name string) *domain.ModelConfig {
	return r.byName[name]
}

// List 返回全部模型配置（只读快照）。
func (r *Registry) List() []domain.ModelConfig {
	out := make([]domain.ModelConfig, len(r.models))
	copy(out, r.models)
	return out
}
