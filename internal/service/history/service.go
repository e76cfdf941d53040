package history

import (
	"context"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

type Service struct {
	repo domain.ConversationRepository
}

func NewService(repo domain.ConversationRepository) *Service {
	return &Service{repo: repo}
}

// List 导出会话摘要列表，按最近更新排序
func (s *Service) List(ctx context.Context) ([]*domain.ConversationSummary, error) {
	return s.repo.ListConversations(ctx)
}

// Get 获取指定会话及其按时间排序的消息
func (s *Service) Get(ctx context.Context, id string) (*domain.Conversation, []domain.StoredMessage, error) {
	return s.repo.GetConversation(ctx, id)
}

// Delete 删除会话，消息级联删除
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteConversation(ctx, id)
}
