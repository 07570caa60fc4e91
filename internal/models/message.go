package models

import "time"

// Message is a single entry in the shared chat room, written either by a
// user or by the assistant. UserID is nil exactly when IsAI is true.
type Message struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	UserID    *int64    `json:"-"`
	Username  string    `json:"username"`
	IsAI      bool      `json:"is_ai"`
	AIModel   *string   `json:"ai_model"` // Set only on assistant replies
	CreatedAt time.Time `json:"created_at"`
}
