package export

import (
	"fmt"
	"strings"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

const (
	// 每页固定行容量，对应原导出版式的页高
	pageLineCapacity = 60
	wrapWidth        = 90
	maxContentLines  = 30
	truncatedMarker  = "... [truncated]"

	headerTitle    = "AI Research Judgment Platform"
	headerSubtitle = "PAPA ATTANASI"
)

// Document 分页后的纯文本导出结果
type Document struct {
	Filename string
	Pages    [][]string
}

// Text 以换页符拼接所有页
func (d *Document) Text() string {
	rendered := make([]string, len(d.Pages))
	for i, page := range d.Pages {
		rendered[i] = strings.Join(page, "\n")
	}
	return strings.Join(rendered, "\n\f\n")
}

// Render 把一个会话及其消息排版成分页文档。
// 每条消息一个块：[ROLE] 时间戳、正文（超过 30 行截断）、token/耗时脚注。
func Render(conv *domain.Conversation, messages []domain.StoredMessage) *Document {
	doc := &Document{Filename: filename(conv)}
	p := &paginator{doc: doc}

	mode := "Custom Prompt"
	if conv.HasSystemPrompt {
		mode = "Guided"
	}
	p.add(headerTitle)
	p.add(headerSubtitle)
	p.add("")
	p.add("Model: " + conv.ModelName)
	p.add("Provider: " + string(conv.Provider))
	p.add("Type: " + mode)
	p.add("Date: " + conv.CreatedAt.Format("2006-01-02 15:04:05"))
	p.add(fmt.Sprintf("Messages: %d", len(messages)))
	p.add("")

	for _, msg := range messages {
		// 消息块不从页尾开始，至少给头部和一行正文留位置
		p.breakIfNearlyFull(4)

		p.add(fmt.Sprintf("[%s] %s", strings.ToUpper(msg.Role), msg.CreatedAt.Format("15:04:05")))

		if msg.Content != "" {
			lines := wrapText(msg.Content, wrapWidth)
			if len(lines) > maxContentLines {
				lines = append(lines[:maxContentLines], truncatedMarker)
			}
			for _, line := range lines {
				p.add(line)
			}
		}

		if msg.TokensUsed != nil || msg.ResponseTime != nil {
			tokens := "N/A"
			if msg.TokensUsed != nil {
				tokens = fmt.Sprintf("%d", *msg.TokensUsed)
			}
			elapsed := "N/A"
			if msg.ResponseTime != nil {
				elapsed = fmt.Sprintf("%.2fs", float64(*msg.ResponseTime)/1000)
			}
			p.add(fmt.Sprintf("Tokens: %s | Time: %s", tokens, elapsed))
		}

		p.add("")
	}

	p.flush()
	return doc
}

func filename(conv *domain.Conversation) string {
	model := strings.Join(strings.Fields(conv.ModelName), "_")
	id := conv.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("chat_%s_%s.txt", model, id)
}

type paginator struct {
	doc  *Document
	page []string
}

func (p *paginator) add(line string) {
	if len(p.page) >= pageLineCapacity {
		p.flush()
	}
	p.page = append(p.page, line)
}

func (p *paginator) breakIfNearlyFull(needed int) {
	if len(p.page) > 0 && len(p.page)+needed > pageLineCapacity {
		p.flush()
	}
}

func (p *paginator) flush() {
	if len(p.page) == 0 {
		return
	}
	p.doc.Pages = append(p.doc.Pages, p.page)
	p.page = nil
}

// wrapText 按词折行，保留原有换行
func wrapText(s string, width int) []string {
	var out []string
	for _, raw := range strings.Split(s, "\n") {
		if raw == "" {
			out = append(out, "")
			continue
		}
		var line strings.Builder
		for _, word := range strings.Fields(raw) {
			if line.Len() == 0 {
				line.WriteString(word)
				continue
			}
			if line.Len()+1+len(word) > width {
				out = append(out, line.String())
				line.Reset()
				line.WriteString(word)
				continue
			}
			line.WriteByte(' ')
			line.WriteString(word)
		}
		if line.Len() > 0 || len(strings.Fields(raw)) == 0 {
			out = append(out, line.String())
		}
	}
	return out
}
