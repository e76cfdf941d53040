package llm

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

// MockProvider 测试用 adapter：按脚本回话并记录调用次数。
type MockProvider struct {
	Reply string
	Err   string
	calls atomic.Int64
}

func NewMockProvider(reply string) *MockProvider {
	return &MockProvider{Reply: reply}
}

func (m *MockProvider) Invoke(ctx context.Context, messages []domain.Message, systemPrompt string) domain.TurnResult {
	start := time.Now()
	m.calls.Add(1)
	if m.Err != "" {
		return errResult(start, m.Err)
	}
	tokens := len(m.Reply) / 4
	return okResult(start, m.Reply, &tokens)
}

// Calls 返回 Invoke 被调用的次数。
func (m *MockProvider) Calls() int {
	return int(m.calls.Load())
}
