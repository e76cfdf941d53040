package debate

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrSessionNotFound = errors.New("debate session not found")

// Manager 并发安全的会话注册表。不同会话完全独立，
// 同一会话内的回合仍严格串行。
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	turn     TurnFunc
	log      *logrus.Logger
}

func NewManager(turn TurnFunc, log *logrus.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		turn:     turn,
		log:      log,
	}
}

// Create 新建一个会话并完成参数配置
func (m *Manager) Create(cfg Config) (*Session, error) {
	sess := NewSession(uuid.NewString(), m.turn, m.log)
	if err := sess.Setup(cfg); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[sess.id] = sess
	m.mu.Unlock()
	return sess, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Remove 停掉并移除一个会话
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.Stop()
	return nil
}
