package debate

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// scriptedTurn 按调用顺序回放结果，并记录每次收到的视图
type scriptedTurn struct {
	mu      sync.Mutex
	results []domain.TurnResult
	calls   []struct {
		model string
		view  []domain.Message
	}
}

func (s *scriptedTurn) fn(ctx context.Context, modelName string, messages []domain.Message) (domain.TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := make([]domain.Message, len(messages))
	copy(view, messages)
	s.calls = append(s.calls, struct {
		model string
		view  []domain.Message
	}{modelName, view})
	idx := len(s.calls) - 1
	if idx < len(s.results) {
		return s.results[idx], nil
	}
	return domain.TurnResult{Content: fmt.Sprintf("turn-%d", idx+1)}, nil
}

func validConfig() Config {
	return Config{
		ModelA:   "GPT-5.2 Thinking (Guided)",
		ModelB:   "Claude Opus 4.6 (Guided)",
		Topic:    "Is recursion more elegant than iteration?",
		MaxTurns: 4,
	}
}

func TestSetupValidation(t *testing.T) {
	sess := NewSession("s1", (&scriptedTurn{}).fn, quietLogger())

	cfg := validConfig()
	cfg.ModelB = cfg.ModelA
	assert.ErrorIs(t, sess.Setup(cfg), ErrSameModel)

	cfg = validConfig()
	cfg.Topic = "   "
	assert.ErrorIs(t, sess.Setup(cfg), ErrBlankTopic)

	cfg = validConfig()
	cfg.MaxTurns = 0
	assert.ErrorIs(t, sess.Setup(cfg), ErrInvalidTurns)

	require.NoError(t, sess.Setup(validConfig()))
	assert.Equal(t, StateSetup, sess.Snapshot().State)
}

func TestStartRequiresSetup(t *testing.T) {
	sess := NewSession("s1", (&scriptedTurn{}).fn, quietLogger())
	assert.ErrorIs(t, sess.Start(context.Background()), ErrNotConfigured)
}

func TestFullDebateAlternatesAndCompletes(t *testing.T) {
	turns := &scriptedTurn{}
	sess := NewSession("s1", turns.fn, quietLogger())
	require.NoError(t, sess.Setup(validConfig()))
	require.NoError(t, sess.Start(context.Background()))
	sess.Wait()

	snap := sess.Snapshot()
	assert.Equal(t, StateCompleted, snap.State)
	assert.False(t, snap.Running)
	assert.Equal(t, 4, snap.TurnCount)
	require.Len(t, snap.Messages, 4)
	assert.Equal(t, "GPT-5.2 Thinking (Guided)", snap.Messages[0].ModelName)
	assert.Equal(t, "Claude Opus 4.6 (Guided)", snap.Messages[1].ModelName)
	assert.Equal(t, "GPT-5.2 Thinking (Guided)", snap.Messages[2].ModelName)
	assert.Equal(t, "Claude Opus 4.6 (Guided)", snap.Messages[3].ModelName)
	// 四回合后指示器回到 A
	assert.Equal(t, "GPT-5.2 Thinking (Guided)", snap.CurrentTurn)
}

func TestFirstTurnViewIsTopic(t *testing.T) {
	turns := &scriptedTurn{}
	sess := NewSession("s1", turns.fn, quietLogger())
	cfg := validConfig()
	cfg.ImageURL = "https://example.com/chart.png"
	require.NoError(t, sess.Setup(cfg))
	require.NoError(t, sess.Start(context.Background()))
	sess.Wait()

	require.GreaterOrEqual(t, len(turns.calls), 2)
	first := turns.calls[0].view
	require.Len(t, first, 1)
	assert.Equal(t, domain.RoleUser, first[0].Role)
	assert.Equal(t, cfg.Topic, first[0].Content)
	assert.Equal(t, cfg.ImageURL, first[0].ImageURL)

	// 图片只出现在首回合
	for _, call := range turns.calls[1:] {
		for _, msg := range call.view {
			assert.Empty(t, msg.ImageURL)
		}
	}
}

func TestRoleMappingPerActor(t *testing.T) {
	turns := &scriptedTurn{results: []domain.TurnResult{
		{Content: "a"}, {Content: "b"},
	}}
	sess := NewSession("s1", turns.fn, quietLogger())
	cfg := validConfig()
	cfg.MaxTurns = 3
	require.NoError(t, sess.Setup(cfg))
	require.NoError(t, sess.Start(context.Background()))
	sess.Wait()

	require.Len(t, turns.calls, 3)

	// B 的视角：A 的发言是 user
	bView := turns.calls[1].view
	require.Len(t, bView, 1)
	assert.Equal(t, domain.RoleUser, bView[0].Role)
	assert.Equal(t, "a", bView[0].Content)

	// A 的第二次视角：自己是 assistant，对手是 user
	aView := turns.calls[2].view
	require.Len(t, aView, 2)
	assert.Equal(t, domain.RoleAssistant, aView[0].Role)
	assert.Equal(t, "a", aView[0].Content)
	assert.Equal(t, domain.RoleUser, aView[1].Role)
	assert.Equal(t, "b", aView[1].Content)
}

func TestContinueStubWhenViewEndsSelfAuthored(t *testing.T) {
	// 只有自己发过言时，视图末尾补 "Continue."
	sess := NewSession("s1", (&scriptedTurn{}).fn, quietLogger())
	require.NoError(t, sess.Setup(validConfig()))
	sess.messages = []domain.DebateMessage{{ModelName: sess.cfg.ModelA, Content: "opening"}}

	view := sess.buildView(sess.cfg.ModelA)
	require.Len(t, view, 2)
	assert.Equal(t, domain.RoleAssistant, view[0].Role)
	assert.Equal(t, domain.RoleUser, view[1].Role)
	assert.Equal(t, continueStub, view[1].Content)
}

func TestErrorHaltsDebate(t *testing.T) {
	turns := &scriptedTurn{results: []domain.TurnResult{
		{Content: "a"},
		{Error: "rate limited"},
	}}
	sess := NewSession("s1", turns.fn, quietLogger())
	require.NoError(t, sess.Setup(validConfig()))
	require.NoError(t, sess.Start(context.Background()))
	sess.Wait()

	snap := sess.Snapshot()
	assert.Equal(t, StateStopped, snap.State)
	assert.False(t, snap.Running)
	// 出错回合已记录，但不再尝试对手的回复
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, "rate limited", snap.Messages[1].Error)
	assert.Len(t, turns.calls, 2)
}

func TestContinueAfterErrorDerivesNextActor(t *testing.T) {
	turns := &scriptedTurn{results: []domain.TurnResult{
		{Content: "a"},
		{Error: "rate limited"},
	}}
	sess := NewSession("s1", turns.fn, quietLogger())
	require.NoError(t, sess.Setup(validConfig()))
	require.NoError(t, sess.Start(context.Background()))
	sess.Wait()
	require.Equal(t, StateStopped, sess.Snapshot().State)

	// 最后发言的是 B（出错回合），续跑应从 A 开始
	require.NoError(t, sess.Continue(context.Background()))
	sess.Wait()

	snap := sess.Snapshot()
	assert.Equal(t, StateCompleted, snap.State)
	assert.Equal(t, 4, snap.TurnCount)
	assert.Equal(t, "GPT-5.2 Thinking (Guided)", snap.Messages[2].ModelName)
	assert.Equal(t, "Claude Opus 4.6 (Guided)", snap.Messages[3].ModelName)
}

func TestStopDiscardsInFlightResult(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	blocking := func(ctx context.Context, modelName string, messages []domain.Message) (domain.TurnResult, error) {
		close(entered)
		<-release
		return domain.TurnResult{Content: "late"}, nil
	}

	sess := NewSession("s1", blocking, quietLogger())
	require.NoError(t, sess.Setup(validConfig()))
	require.NoError(t, sess.Start(context.Background()))

	<-entered
	sess.Stop()
	close(release)
	sess.Wait()

	snap := sess.Snapshot()
	assert.Equal(t, StateStopped, snap.State)
	assert.False(t, snap.Running)
	// 在途回合的结果被丢弃
	assert.Empty(t, snap.Messages)
	assert.Equal(t, 0, snap.TurnCount)
}

func TestResetReturnsToSetup(t *testing.T) {
	turns := &scriptedTurn{}
	sess := NewSession("s1", turns.fn, quietLogger())
	require.NoError(t, sess.Setup(validConfig()))
	require.NoError(t, sess.Start(context.Background()))
	sess.Wait()
	require.Equal(t, StateCompleted, sess.Snapshot().State)

	require.NoError(t, sess.Reset())
	snap := sess.Snapshot()
	assert.Equal(t, StateSetup, snap.State)
	assert.Empty(t, snap.Messages)
	assert.Equal(t, 0, snap.TurnCount)
	assert.Equal(t, "GPT-5.2 Thinking (Guided)", snap.CurrentTurn)

	// 重置后可以重新开跑
	require.NoError(t, sess.Start(context.Background()))
	sess.Wait()
	assert.Equal(t, StateCompleted, sess.Snapshot().State)
}

func TestManagerLifecycle(t *testing.T) {
	mgr := NewManager((&scriptedTurn{}).fn, quietLogger())

	sess, err := mgr.Create(validConfig())
	require.NoError(t, err)
	id := sess.Snapshot().ID
	require.NotEmpty(t, id)

	got, err := mgr.Get(id)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = mgr.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, mgr.Remove(id))
	_, err = mgr.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, mgr.Remove(id), ErrSessionNotFound)
}

func TestSessionsRunIndependently(t *testing.T) {
	mgr := NewManager(func(ctx context.Context, modelName string, messages []domain.Message) (domain.TurnResult, error) {
		time.Sleep(time.Millisecond)
		return domain.TurnResult{Content: "ok"}, nil
	}, quietLogger())

	a, err := mgr.Create(validConfig())
	require.NoError(t, err)
	cfg := validConfig()
	cfg.Topic = "Tabs or spaces?"
	b, err := mgr.Create(cfg)
	require.NoError(t, err)

	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))
	a.Wait()
	b.Wait()

	assert.Equal(t, StateCompleted, a.Snapshot().State)
	assert.Equal(t, StateCompleted, b.Snapshot().State)
}
