package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
	"github.com/papaattanasi-debug/papaattanasi/internal/registry"
)

// DispatchFunc 路由并调用一次模型。测试时可注入桩实现。
type DispatchFunc func(ctx context.Context, cfg domain.ModelConfig, messages []domain.Message, systemPrompt string) (domain.TurnResult, error)

// UnknownModelError 请求校验错误：模型名不在注册表里。
type UnknownModelError struct {
	Name string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("Unknown model: %s", e.Name)
}

// TurnRequest 一次聊天回合的输入
type TurnRequest struct {
	ModelName      string
	Messages       []domain.Message
	SystemPrompt   string
	ConversationID string
}

// Service 聊天回合服务：解析模型配置、决定生效的系统提示词、
// 分发到对应 adapter，并尽力持久化（失败只记日志，不影响回合结果）。
type Service struct {
	registry  *registry.Registry
	repo      domain.ConversationRepository
	dispatch  DispatchFunc
	tokenizer *Tokenizer
	log       *logrus.Logger
}

func NewService(reg *registry.Registry, repo domain.ConversationRepository, dispatch DispatchFunc, log *logrus.Logger) *Service {
	// 编码表加载失败时退化为不估算
	tokenizer, err := NewTokenizer()
	if err != nil {
		log.WithError(err).Warn("tokenizer unavailable, token backfill disabled")
	}
	return &Service{
		registry:  reg,
		repo:      repo,
		dispatch:  dispatch,
		tokenizer: tokenizer,
		log:       log,
	}
}

// SendTurn 执行一次聊天回合。
// 返回的 error 只可能是校验错误（未知模型）或配置错误（未注册 provider）；
// 厂商层面的失败包在 TurnResult 里，调用方视为"回合已尝试"。
func (s *Service) SendTurn(ctx context.Context, req TurnRequest) (domain.TurnResult, string, error) {
	model := s.registry.Find(req.ModelName)
	if model == nil {
		return domain.TurnResult{}, "", &UnknownModelError{Name: req.ModelName}
	}

	systemPrompt := effectiveSystemPrompt(model, req.SystemPrompt)

	result, err := s.dispatch(ctx, *model, req.Messages, systemPrompt)
	if err != nil {
		return domain.TurnResult{}, "", err
	}

	conversationID := s.persistTurn(ctx, req, model, systemPrompt, result)
	return result, conversationID, nil
}

// DebateTurn 执行一次辩论回合：同样的解析与分发，但不持久化、
// 也不注入默认系统提示词（辩论发言不做引导）。
func (s *Service) DebateTurn(ctx context.Context, modelName string, messages []domain.Message) (domain.TurnResult, error) {
	model := s.registry.Find(modelName)
	if model == nil {
		return domain.TurnResult{}, &UnknownModelError{Name: modelName}
	}
	return s.dispatch(ctx, *model, messages, "")
}

// effectiveSystemPrompt 决定生效的系统提示词。
// 优先级：显式非空 > Guided 默认（按视觉能力选版本）> 无。
func effectiveSystemPrompt(model *domain.ModelConfig, explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	if model.HasSystemPrompt {
		if model.SupportsVision {
			return ProfessionalAnalysisPrompt
		}
		return ProfessionalAnalysisPromptTextOnly
	}
	return ""
}

// persistTurn 尽力持久化本回合：最新的 user 消息总是落库，
// assistant 回复只在成功时落库。任何存储失败都吞掉，只记日志。
func (s *Service) persistTurn(ctx context.Context, req TurnRequest, model *domain.ModelConfig, systemPrompt string, result domain.TurnResult) string {
	conversationID := req.ConversationID
	if conversationID == "" {
		conv := &domain.Conversation{
			ModelName:       model.Name,
			Provider:        model.Provider,
			HasSystemPrompt: model.HasSystemPrompt,
			SystemPrompt:    systemPrompt,
		}
		if err := s.repo.CreateConversation(ctx, conv); err != nil {
			s.log.WithError(err).Error("failed to create conversation")
			return ""
		}
		conversationID = conv.ID
	} else {
		if err := s.repo.TouchConversation(ctx, conversationID); err != nil {
			s.log.WithError(err).WithField("conversation", conversationID).Error("failed to touch conversation")
		}
	}

	if len(req.Messages) > 0 {
		last := req.Messages[len(req.Messages)-1]
		userMsg := &domain.StoredMessage{
			Role:     domain.RoleUser,
			Content:  last.Content,
			ImageURL: last.ImageURL,
		}
		if err := s.repo.AppendMessage(ctx, conversationID, userMsg); err != nil {
			s.log.WithError(err).WithField("conversation", conversationID).Error("failed to save user message")
		}
	}

	if result.Content != "" && result.Error == "" {
		tokens := result.TokensUsed
		if tokens == nil && s.tokenizer != nil {
			est := s.tokenizer.EstimateTurn(req.Messages, result.Content)
			tokens = &est
		}
		responseTime := result.ResponseTime
		assistantMsg := &domain.StoredMessage{
			Role:         domain.RoleAssistant,
			Content:      result.Content,
			TokensUsed:   tokens,
			ResponseTime: &responseTime,
		}
		if err := s.repo.AppendMessage(ctx, conversationID, assistantMsg); err != nil {
			s.log.WithError(err).WithField("conversation", conversationID).Error("failed to save assistant message")
		}
	}

	return conversationID
}
