package llm

import (
	"time"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

// errResult 构造失败结果：内容为空，耗时照常填。
func errResult(start time.Time, msg string) domain.TurnResult {
	return domain.TurnResult{
		ResponseTime: time.Since(start).Milliseconds(),
		Error:        msg,
	}
}

// okResult 构造成功结果。tokens 为 nil 表示厂商未返回用量。
func okResult(start time.Time, content string, tokens *int) domain.TurnResult {
	return domain.TurnResult{
		Content:      content,
		TokensUsed:   tokens,
		ResponseTime: time.Since(start).Milliseconds(),
	}
}
