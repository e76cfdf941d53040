package chat

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

// Tokenizer 在厂商不返回用量时做本地估算，保证持久化元数据不缺。
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

func NewTokenizer() (*Tokenizer, error) {
	// 默认使用 cl100k_base (GPT-4 系常用编码)
	tkm, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &Tokenizer{encoding: tkm}, nil
}

// CountTokens 计算单条文本的 Token 数
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// EstimateTurn 估算一次调用的总 Token 数 (请求历史 + 回复，含角色开销)
func (t *Tokenizer) EstimateTurn(messages []domain.Message, reply string) int {
	tokens := 0
	for _, m := range messages {
		// 每条消息的基础开销 (角色、分隔符等) 约 4 tokens
		tokens += 4
		tokens += t.CountTokens(m.Content)
		tokens += t.CountTokens(m.Role)
	}
	tokens += 4
	tokens += t.CountTokens(reply)
	// 整个对话最后还有约 3 tokens 的结束符开销
	tokens += 3
	return tokens
}
