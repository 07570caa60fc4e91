package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMessageService(t *testing.T) (*MessageService, int64) {
	t.Helper()
	db := setupTestDB(t)

	user, err := newTestUserService(db).CreateUser(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	s := NewMessageService(db)
	clock := &stepClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), step: time.Millisecond}
	s.now = clock.now
	return s, user.ID
}

func TestMessageService_AppendUserMessage(t *testing.T) {
	ctx := context.Background()
	s, userID := setupMessageService(t)

	msg, err := s.AppendUserMessage(ctx, "hi", userID)
	require.NoError(t, err)

	assert.Positive(t, msg.ID)
	assert.Equal(t, "hi", msg.Content)
	assert.Equal(t, "alice", msg.Username)
	assert.False(t, msg.IsAI)
	assert.Nil(t, msg.AIModel)
	require.NotNil(t, msg.UserID)
	assert.Equal(t, userID, *msg.UserID)
	want := time.Date(2026, 1, 1, 12, 0, 0, int(time.Millisecond), time.UTC)
	assert.True(t, want.Equal(msg.CreatedAt), "created_at = %v, want %v", msg.CreatedAt, want)
}

func TestMessageService_AppendAIMessage(t *testing.T) {
	ctx := context.Background()
	s, _ := setupMessageService(t)

	msg, err := s.AppendAIMessage(ctx, "🤖 hello", "gemini-1.5-flash")
	require.NoError(t, err)

	assert.True(t, msg.IsAI)
	assert.Nil(t, msg.UserID)
	assert.Equal(t, AssistantName, msg.Username)
	require.NotNil(t, msg.AIModel)
	assert.Equal(t, "gemini-1.5-flash", *msg.AIModel)
}

func TestMessageService_Recent(t *testing.T) {
	ctx := context.Background()
	s, userID := setupMessageService(t)

	for i := 1; i <= 5; i++ {
		_, err := s.AppendUserMessage(ctx, fmt.Sprintf("msg %d", i), userID)
		require.NoError(t, err)
	}

	tests := []struct {
		name     string
		limit    int
		wantFrom int
		wantLen  int
	}{
		{name: "limit above count", limit: 50, wantFrom: 1, wantLen: 5},
		{name: "limit below count keeps newest", limit: 3, wantFrom: 3, wantLen: 3},
		{name: "zero limit", limit: 0, wantLen: 0},
		{name: "negative limit", limit: -7, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages, err := s.Recent(ctx, tt.limit)
			require.NoError(t, err)
			require.NotNil(t, messages)
			require.Len(t, messages, tt.wantLen)

			for i, msg := range messages {
				assert.Equal(t, fmt.Sprintf("msg %d", tt.wantFrom+i), msg.Content)
				if i > 0 {
					assert.False(t, msg.CreatedAt.Before(messages[i-1].CreatedAt))
				}
			}
		})
	}
}

func TestMessageService_Recent_CapsAtMaximum(t *testing.T) {
	ctx := context.Background()
	s, userID := setupMessageService(t)

	for i := 0; i < MaxRecentLimit+20; i++ {
		_, err := s.AppendUserMessage(ctx, fmt.Sprintf("msg %d", i), userID)
		require.NoError(t, err)
	}

	messages, err := s.Recent(ctx, 500)
	require.NoError(t, err)
	require.Len(t, messages, MaxRecentLimit)
	assert.Equal(t, "msg 20", messages[0].Content)
	assert.Equal(t, fmt.Sprintf("msg %d", MaxRecentLimit+19), messages[len(messages)-1].Content)

	n, err := s.CountMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, MaxRecentLimit+20, n)
}

func TestMessageService_Recent_TiesOrderedByID(t *testing.T) {
	ctx := context.Background()
	s, userID := setupMessageService(t)
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	first, err := s.AppendUserMessage(ctx, "@ai hello", userID)
	require.NoError(t, err)
	second, err := s.AppendAIMessage(ctx, "🤖 hi", "gemini-1.5-flash")
	require.NoError(t, err)

	messages, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, first.ID, messages[0].ID)
	assert.Equal(t, second.ID, messages[1].ID)
	assert.Equal(t, "alice", messages[0].Username)
	assert.Equal(t, AssistantName, messages[1].Username)
}

func TestMessageService_Recent_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT m\\.id").WithArgs(10).WillReturnError(errors.New("disk I/O error"))

	s := NewMessageService(db)
	messages, err := s.Recent(context.Background(), 10)
	assert.Error(t, err)
	assert.Nil(t, messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 0, ClampLimit(-1))
	assert.Equal(t, 0, ClampLimit(0))
	assert.Equal(t, 42, ClampLimit(42))
	assert.Equal(t, MaxRecentLimit, ClampLimit(MaxRecentLimit))
	assert.Equal(t, MaxRecentLimit, ClampLimit(MaxRecentLimit+1))
}
