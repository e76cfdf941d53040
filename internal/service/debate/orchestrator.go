package debate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

// State 辩论会话状态
type State string

const (
	StateIdle      State = "idle"
	StateSetup     State = "setup"
	StateRunning   State = "running"
	StateStopped   State = "stopped"
	StateCompleted State = "completed"
)

// continueStub 在对手尚未回应时补位的占位消息
const continueStub = "Continue."

var (
	ErrSameModel     = errors.New("debate requires two distinct models")
	ErrBlankTopic    = errors.New("debate topic must not be blank")
	ErrInvalidTurns  = errors.New("max turns must be positive")
	ErrNotConfigured = errors.New("debate session is not configured")
	ErrNotResumable  = errors.New("debate session is not resumable")
)

// TurnFunc 执行一次辩论回合调用。错误只来自服务层（如模型不存在），
// 厂商失败体现在 TurnResult.Error 上。
type TurnFunc func(ctx context.Context, modelName string, messages []domain.Message) (domain.TurnResult, error)

// Config 一场辩论的启动参数
type Config struct {
	ModelA   string `json:"modelA"`
	ModelB   string `json:"modelB"`
	Topic    string `json:"topic"`
	ImageURL string `json:"imageUrl,omitempty"`
	MaxTurns int    `json:"maxTurns"`
}

// Snapshot 对外暴露的会话视图
type Snapshot struct {
	ID          string                 `json:"id"`
	State       State                  `json:"state"`
	ModelA      string                 `json:"modelA"`
	ModelB      string                 `json:"modelB"`
	Topic       string                 `json:"topic"`
	MaxTurns    int                    `json:"maxTurns"`
	TurnCount   int                    `json:"turnCount"`
	CurrentTurn string                 `json:"currentTurn"`
	Running     bool                   `json:"running"`
	Messages    []domain.DebateMessage `json:"messages"`
}

// Session 驱动两个模型交替发言的辩论循环。
// 回合严格串行：每一回合的输入包含上一回合的产出。
type Session struct {
	id   string
	turn TurnFunc
	log  *logrus.Logger

	mu        sync.Mutex
	state     State
	cfg       Config
	messages  []domain.DebateMessage
	turnCount int
	current   string
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewSession(id string, turn TurnFunc, log *logrus.Logger) *Session {
	return &Session{
		id:    id,
		turn:  turn,
		log:   log,
		state: StateIdle,
		done:  closedChan(),
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Setup 校验并记录辩论参数，进入 setup 态
func (s *Session) Setup(cfg Config) error {
	if strings.TrimSpace(cfg.ModelA) == "" || strings.TrimSpace(cfg.ModelB) == "" || cfg.ModelA == cfg.ModelB {
		return ErrSameModel
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return ErrBlankTopic
	}
	if cfg.MaxTurns <= 0 {
		return ErrInvalidTurns
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrNotResumable
	}
	s.cfg = cfg
	s.state = StateSetup
	s.messages = nil
	s.turnCount = 0
	s.current = cfg.ModelA
	return nil
}

// Start 从 setup 态启动循环。循环在后台运行，用 Wait 等待结束。
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateSetup {
		s.mu.Unlock()
		return ErrNotConfigured
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StateRunning
	s.running = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run(runCtx)
	return nil
}

// Continue 从 stopped 态恢复循环。下一个发言者由最后一条消息的作者推得，
// 这样错误中断后的续跑顺序不会产生歧义。
func (s *Session) Continue(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateStopped {
		s.mu.Unlock()
		return ErrNotResumable
	}
	if n := len(s.messages); n > 0 {
		s.current = s.opponent(s.messages[n-1].ModelName)
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StateRunning
	s.running = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run(runCtx)
	return nil
}

// Stop 请求协作式取消：循环边界检查标志，在途回合的结果在返回时被丢弃
func (s *Session) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		s.state = StateStopped
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()
}

// Reset 回到 setup 态，清空消息与计数
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrNotResumable
	}
	if s.state == StateIdle {
		return ErrNotConfigured
	}
	s.messages = nil
	s.turnCount = 0
	s.current = s.cfg.ModelA
	s.state = StateSetup
	return nil
}

// Wait 阻塞到当前一轮循环结束
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]domain.DebateMessage, len(s.messages))
	copy(msgs, s.messages)
	return Snapshot{
		ID:          s.id,
		State:       s.state,
		ModelA:      s.cfg.ModelA,
		ModelB:      s.cfg.ModelB,
		Topic:       s.cfg.Topic,
		MaxTurns:    s.cfg.MaxTurns,
		TurnCount:   s.turnCount,
		CurrentTurn: s.current,
		Running:     s.running,
		Messages:    msgs,
	}
}

func (s *Session) opponent(model string) string {
	if model == s.cfg.ModelA {
		return s.cfg.ModelB
	}
	return s.cfg.ModelA
}

func (s *Session) run(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		close(s.done)
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			return
		}
		if s.turnCount >= s.cfg.MaxTurns {
			s.state = StateCompleted
			s.running = false
			s.mu.Unlock()
			return
		}
		actor := s.current
		view := s.buildView(actor)
		s.mu.Unlock()

		if ctx.Err() != nil {
			s.markStopped()
			return
		}

		result, err := s.turn(ctx, actor, view)

		// 在途回合期间发生取消：丢弃结果，不追加
		if ctx.Err() != nil {
			s.markStopped()
			return
		}
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"session": s.id, "model": actor}).Error("debate turn dispatch failed")
			s.markStopped()
			return
		}

		s.mu.Lock()
		s.messages = append(s.messages, domain.DebateMessage{
			ID:           uuid.NewString(),
			ModelName:    actor,
			Content:      result.Content,
			TokensUsed:   result.TokensUsed,
			ResponseTime: result.ResponseTime,
			Error:        result.Error,
			CreatedAt:    time.Now(),
		})
		s.turnCount++
		s.current = s.opponent(actor)
		if result.Error != "" {
			// 出错立即停，不再让对手接话
			s.state = StateStopped
			s.running = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}
}

func (s *Session) markStopped() {
	s.mu.Lock()
	if s.state == StateRunning {
		s.state = StateStopped
	}
	s.running = false
	s.mu.Unlock()
}

func (s *Session) buildView(actor string) []domain.Message {
	return BuildView(actor, s.cfg.Topic, s.cfg.ImageURL, s.messages)
}

// BuildView 构造发言模型视角的历史：自己的发言映射为 assistant，
// 对手的发言映射为 user。首回合由议题合成开场消息（图片仅首回合附带）。
func BuildView(actor, topic, imageURL string, messages []domain.DebateMessage) []domain.Message {
	if len(messages) == 0 {
		return []domain.Message{{
			Role:     domain.RoleUser,
			Content:  topic,
			ImageURL: imageURL,
		}}
	}

	view := make([]domain.Message, 0, len(messages)+1)
	for _, m := range messages {
		role := domain.RoleUser
		if m.ModelName == actor {
			role = domain.RoleAssistant
		}
		view = append(view, domain.Message{Role: role, Content: m.Content})
	}
	// 对手还没接话时补一个续写占位
	if view[len(view)-1].Role == domain.RoleAssistant {
		view = append(view, domain.Message{Role: domain.RoleUser, Content: continueStub})
	}
	return view
}
