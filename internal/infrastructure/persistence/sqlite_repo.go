package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // 纯 Go SQLite 驱动

	"github.com/papaattanasi-debug/papaattanasi/internal/domain"
)

const timeLayout = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id                TEXT PRIMARY KEY,
	model_name        TEXT NOT NULL,
	provider          TEXT NOT NULL,
	has_system_prompt INTEGER NOT NULL DEFAULT 0,
	system_prompt     TEXT,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	image_url       TEXT,
	tokens_used     INTEGER,
	response_time   INTEGER,
	created_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_conversation
	ON chat_messages(conversation_id, created_at);
`

// SQLiteConversationRepository 基于 SQLite 的会话存储。
// 连接池限制为单连接，写入再加全局锁，保证同会话内消息追加顺序。
type SQLiteConversationRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteConversationRepository(path string) (*SQLiteConversationRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return &SQLiteConversationRepository{db: db}, nil
}

func (r *SQLiteConversationRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteConversationRepository) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	conv.UpdatedAt = now

	var sysPrompt interface{}
	if conv.SystemPrompt != "" {
		sysPrompt = conv.SystemPrompt
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversations (id, model_name, provider, has_system_prompt, system_prompt, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		conv.ID, conv.ModelName, string(conv.Provider), boolToInt(conv.HasSystemPrompt), sysPrompt,
		conv.CreatedAt.Format(timeLayout), conv.UpdatedAt.Format(timeLayout))
	return err
}

func (r *SQLiteConversationRepository) TouchConversation(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func (r *SQLiteConversationRepository) AppendMessage(ctx context.Context, conversationID string, msg *domain.StoredMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	var imageURL, tokens, respTime interface{}
	if msg.ImageURL != "" {
		imageURL = msg.ImageURL
	}
	if msg.TokensUsed != nil {
		tokens = *msg.TokensUsed
	}
	if msg.ResponseTime != nil {
		respTime = *msg.ResponseTime
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, conversation_id, role, content, image_url, tokens_used, response_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, conversationID, msg.Role, msg.Content, imageURL, tokens, respTime,
		msg.CreatedAt.Format(timeLayout))
	return err
}

func (r *SQLiteConversationRepository) GetConversation(ctx context.Context, id string) (*domain.Conversation, []domain.StoredMessage, error) {
	var (
		conv       domain.Conversation
		hasSys     int
		sysPrompt  sql.NullString
		createdAt  string
		updatedAt  string
		providerTg string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, model_name, provider, has_system_prompt, system_prompt, created_at, updated_at
		FROM conversations WHERE id = ?`, id).
		Scan(&conv.ID, &conv.ModelName, &providerTg, &hasSys, &sysPrompt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, domain.ErrConversationNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	conv.Provider = domain.Provider(providerTg)
	conv.HasSystemPrompt = hasSys != 0
	conv.SystemPrompt = sysPrompt.String
	conv.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	conv.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, role, content, image_url, tokens_used, response_time, created_at
		FROM chat_messages WHERE conversation_id = ? ORDER BY created_at ASC, id ASC`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var messages []domain.StoredMessage
	for rows.Next() {
		var (
			m        domain.StoredMessage
			imageURL sql.NullString
			tokens   sql.NullInt64
			respTime sql.NullInt64
			created  string
		)
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &imageURL, &tokens, &respTime, &created); err != nil {
			return nil, nil, err
		}
		m.ImageURL = imageURL.String
		if tokens.Valid {
			v := int(tokens.Int64)
			m.TokensUsed = &v
		}
		if respTime.Valid {
			v := respTime.Int64
			m.ResponseTime = &v
		}
		m.CreatedAt, _ = time.Parse(timeLayout, created)
		messages = append(messages, m)
	}
	return &conv, messages, rows.Err()
}

func (r *SQLiteConversationRepository) ListConversations(ctx context.Context) ([]*domain.ConversationSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.model_name, c.provider, c.has_system_prompt,
		       COUNT(m.id) AS msg_count, c.created_at, c.updated_at
		FROM conversations c
		LEFT JOIN chat_messages m ON m.conversation_id = c.id
		GROUP BY c.id
		ORDER BY c.updated_at DESC
		LIMIT 100`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*domain.ConversationSummary
	for rows.Next() {
		var (
			s        domain.ConversationSummary
			hasSys   int
			provider string
			created  string
			updated  string
		)
		if err := rows.Scan(&s.ID, &s.ModelName, &provider, &hasSys, &s.MessageCount, &created, &updated); err != nil {
			return nil, err
		}
		s.Provider = domain.Provider(provider)
		s.HasSystemPrompt = hasSys != 0
		s.CreatedAt, _ = time.Parse(timeLayout, created)
		s.UpdatedAt, _ = time.Parse(timeLayout, updated)
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

func (r *SQLiteConversationRepository) DeleteConversation(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
