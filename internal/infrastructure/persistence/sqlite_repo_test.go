package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

func newTestRepo(t *testing.T) *SQLiteConversationRepository {
	t.Helper()
	repo, err := NewSQLiteConversationRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateAndGetConversation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	conv := &domain.Conversation{
		ModelName:       "GPT-5.2 Thinking (Guided)",
		Provider:        domain.ProviderOpenAI,
		HasSystemPrompt: true,
		SystemPrompt:    "You are an expert analyst.",
	}
	require.NoError(t, repo.CreateConversation(ctx, conv))
	require.NotEmpty(t, conv.ID)

	tokens := 42
	latency := int64(1200)
	require.NoError(t, repo.AppendMessage(ctx, conv.ID, &domain.StoredMessage{
		Role: domain.RoleUser, Content: "hello",
	}))
	require.NoError(t, repo.AppendMessage(ctx, conv.ID, &domain.StoredMessage{
		Role: domain.RoleAssistant, Content: "hi there",
		TokensUsed: &tokens, ResponseTime: &latency,
	}))

	got, msgs, err := repo.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ModelName, got.ModelName)
	assert.Equal(t, domain.ProviderOpenAI, got.Provider)
	assert.True(t, got.HasSystemPrompt)
	assert.Equal(t, "You are an expert analyst.", got.SystemPrompt)

	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Nil(t, msgs[0].TokensUsed)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	require.NotNil(t, msgs[1].TokensUsed)
	assert.Equal(t, 42, *msgs[1].TokensUsed)
	require.NotNil(t, msgs[1].ResponseTime)
	assert.Equal(t, int64(1200), *msgs[1].ResponseTime)
}

func TestGetConversationNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, _, err := repo.GetConversation(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestMessageOrderPreserved(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	conv := &domain.Conversation{ModelName: "m", Provider: domain.ProviderGemini}
	require.NoError(t, repo.CreateConversation(ctx, conv))

	// 同一时刻的多条消息也要保持追加顺序
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.AppendMessage(ctx, conv.ID, &domain.StoredMessage{
			ID:        string(rune('a' + i)),
			Role:      domain.RoleUser,
			Content:   string(rune('0' + i)),
			CreatedAt: now,
		}))
	}

	_, msgs, err := repo.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	for i, m := range msgs {
		assert.Equal(t, string(rune('0'+i)), m.Content)
	}
}

func TestListConversationsOrderedByUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := &domain.Conversation{ModelName: "a", Provider: domain.ProviderOpenAI}
	second := &domain.Conversation{ModelName: "b", Provider: domain.ProviderAnthropic}
	require.NoError(t, repo.CreateConversation(ctx, first))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.CreateConversation(ctx, second))

	require.NoError(t, repo.AppendMessage(ctx, first.ID, &domain.StoredMessage{Role: domain.RoleUser, Content: "x"}))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.TouchConversation(ctx, first.ID))

	list, err := repo.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// first 被 touch 过，应排在最前
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, 1, list[0].MessageCount)
	assert.Equal(t, 0, list[1].MessageCount)
}

func TestDeleteConversationCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	conv := &domain.Conversation{ModelName: "m", Provider: domain.ProviderMoonshot}
	require.NoError(t, repo.CreateConversation(ctx, conv))
	require.NoError(t, repo.AppendMessage(ctx, conv.ID, &domain.StoredMessage{Role: domain.RoleUser, Content: "x"}))

	require.NoError(t, repo.DeleteConversation(ctx, conv.ID))

	_, _, err := repo.GetConversation(ctx, conv.ID)
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	assert.ErrorIs(t, repo.DeleteConversation(ctx, conv.ID), domain.ErrConversationNotFound)
}

func TestTouchMissingConversation(t *testing.T) {
	repo := newTestRepo(t)
	assert.ErrorIs(t, repo.TouchConversation(context.Background(), "missing"), domain.ErrConversationNotFound)
}
