package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/isdelr/ender-chat-be/internal/database"
	"github.com/isdelr/ender-chat-be/internal/models"
)

const (
	// MaxRecentLimit caps how many messages Recent returns.
	MaxRecentLimit = 100

	// AssistantName is shown as the author of assistant replies.
	AssistantName = "AI Assistant"
)

const selectMessage = `
	SELECT m.id, m.content, m.user_id, COALESCE(u.username, '` + AssistantName + `'),
	       m.is_ai, m.ai_model, m.created_at
	FROM messages m
	LEFT JOIN users u ON m.user_id = u.id`

// MessageServiceProvider defines the interface for message services.
type MessageServiceProvider interface {
	AppendUserMessage(ctx context.Context, content string, userID int64) (models.Message, error)
	AppendAIMessage(ctx context.Context, content, model string) (models.Message, error)
	Recent(ctx context.Context, limit int) ([]models.Message, error)
	CountMessages(ctx context.Context) (int, error)
}

// MessageService owns the messages table.
type MessageService struct {
	db  *sql.DB
	now func() time.Time
}

// NewMessageService creates a new MessageService.
func NewMessageService(db *sql.DB) *MessageService {
	return &MessageService{db: db, now: time.Now}
}

// AppendUserMessage stores a message written by userID and returns it with
// the author's username.
func (s *MessageService) AppendUserMessage(ctx context.Context, content string, userID int64) (models.Message, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (content, user_id, is_ai, created_at) VALUES (?, ?, FALSE, ?)",
		content, userID, database.FormatTime(s.now()))
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}
	return s.getInserted(ctx, res)
}

// AppendAIMessage stores an assistant reply produced by model.
func (s *MessageService) AppendAIMessage(ctx context.Context, content, model string) (models.Message, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (content, user_id, is_ai, ai_model, created_at) VALUES (?, NULL, TRUE, ?, ?)",
		content, model, database.FormatTime(s.now()))
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to insert ai message: %w", err)
	}
	return s.getInserted(ctx, res)
}

// Recent returns up to min(limit, MaxRecentLimit) of the newest messages,
// oldest first. A non-positive limit yields an empty list.
func (s *MessageService) Recent(ctx context.Context, limit int) ([]models.Message, error) {
	limit = ClampLimit(limit)
	messages := make([]models.Message, 0, limit)
	if limit == 0 {
		return messages, nil
	}

	rows, err := s.db.QueryContext(ctx,
		selectMessage+" ORDER BY m.created_at DESC, m.id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	// Fetched newest first; present oldest first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// CountMessages returns the total number of stored messages.
func (s *MessageService) CountMessages(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

// ClampLimit bounds a requested page size to [0, MaxRecentLimit].
func ClampLimit(limit int) int {
	switch {
	case limit < 0:
		return 0
	case limit > MaxRecentLimit:
		return MaxRecentLimit
	default:
		return limit
	}
}

func (s *MessageService) getInserted(ctx context.Context, res sql.Result) (models.Message, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to read message id: %w", err)
	}
	msg, err := scanMessage(s.db.QueryRowContext(ctx, selectMessage+" WHERE m.id = ?", id))
	if err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (models.Message, error) {
	var msg models.Message
	err := row.Scan(&msg.ID, &msg.Content, &msg.UserID, &msg.Username, &msg.IsAI, &msg.AIModel, &msg.CreatedAt)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to scan message: %w", err)
	}
	return msg, nil
}
