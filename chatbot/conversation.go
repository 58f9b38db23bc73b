package chatbot

import (
	"context"
	"errors"
	"time"

	"github.com/masingita/countrybot/constants"
)

var ErrConversationNotFound = errors.New("conversation not found")

// Message is a single chat message of a conversation
type Message struct {
	Role      constants.MessageRole `json:"role"`
	Content   string                `json:"content"`
	Timestamp time.Time             `json:"timestamp"`
}

// Conversation is the complete chat session of one browser session
type Conversation struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	UserAgent   string    `json:"user_agent,omitempty"`
	IPAddress   string    `json:"ip_address,omitempty"`
	Messages    []Message `json:"messages"`
	Context     Context   `json:"context"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// AddMessage appends a message stamped with now
func (c *Conversation) AddMessage(role constants.MessageRole, content string, now time.Time) {
	c.Messages = append(c.Messages, Message{Role: role, Content: content, Timestamp: now})
}

// Store persists conversations. Lookups of a single conversation return
// ErrConversationNotFound when there is none.
type Store interface {
	// Kind names the backing storage, e.g. "postgres" or "memory"
	Kind() string
	BySession(ctx context.Context, sessionID string) (*Conversation, error)
	LatestByUser(ctx context.Context, userID string) (*Conversation, error)
	// ByUser lists a user's conversations, most recently updated first
	ByUser(ctx context.Context, userID string) ([]Conversation, error)
	BySelectedCountry(ctx context.Context, country string) ([]Conversation, error)
	UpdatedBetween(ctx context.Context, from, to time.Time) ([]Conversation, error)
	// DeleteUpdatedBefore removes conversations last updated before cutoff
	// and returns how many were removed
	DeleteUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// Save creates or updates the conversation identified by its session id.
	// Messages are append only: stored messages are never rewritten.
	Save(ctx context.Context, c *Conversation) error
}
