package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

// ErrUnknownProvider 表示 provider 标签没有对应的 adapter。
// 这是配置/编程错误，必须响亮失败，不允许静默兜底。
var ErrUnknownProvider = errors.New("unknown provider")

// NewProvider 按闭集标签构造对应 adapter。
// 新增厂商 = 新增一个标签和一个 adapter，这里只多一个 case。
func NewProvider(cfg domain.ModelConfig) (domain.LLMProvider, error) {
	switch cfg.Provider {
	case domain.ProviderOpenAI:
		return NewOpenAIAdapter(cfg), nil
	case domain.ProviderAnthropic:
		return NewAnthropicAdapter(cfg), nil
	case domain.ProviderMoonshot:
		return NewMoonshotAdapter(cfg), nil
	case domain.ProviderGemini:
		return NewGeminiAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

// Dispatch 路由并调用一次模型。
// 厂商层面的失败都包在 TurnResult 里；error 只用于未注册标签。
func Dispatch(ctx context.Context, cfg domain.ModelConfig, messages []domain.Message, systemPrompt string) (domain.TurnResult, error) {
	p, err := NewProvider(cfg)
	if err != nil {
		return domain.TurnResult{}, err
	}
	return p.Invoke(ctx, messages, systemPrompt), nil
}
