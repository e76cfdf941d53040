package domain

import (
	"context"
	"errors"
)

// ErrConversationNotFound 会话不存在
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository 存储层契约。
// 同一会话内的消息追加顺序必须保持；删除会话时级联删除消息。
type ConversationRepository interface {
	CreateConversation(ctx context.Context, conv *Conversation) error
	// TouchConversation 更新会话的 updated_at
	TouchConversation(ctx context.Context, id string) error
	AppendMessage(ctx context.Context, conversationID string, msg *StoredMessage) error
	GetConversation(ctx context.Context, id string) (*Conversation, []StoredMessage, error)
	// ListConversations 按最近更新倒序
	ListConversations(ctx context.Context) ([]*ConversationSummary, error)
	DeleteConversation(ctx context.Context, id string) error
}

// LLMProvider 基础设施层契约：一次完整的模型调用。
// 实现必须在内部捕获所有失败（网络、厂商报错、响应畸形），
// 只通过 TurnResult.Error 暴露，绝不向外抛出。
type LLMProvider interface {
	Invoke(ctx context.Context, messages []Message, systemPrompt string) TurnResult
}
