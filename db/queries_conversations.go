package db

import (
	"context"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v5"
	"github.com/masingita/countrybot/chatbot"
	"github.com/masingita/countrybot/constants"
	"github.com/rs/zerolog/log"
)

const conversationColumns = "id, session_id, user_id, user_agent, ip_address, context, created_at, last_updated"

type conversationRow struct {
	ID          string          `db:"id"`
	SessionID   string          `db:"session_id"`
	UserID      string          `db:"user_id"`
	UserAgent   string          `db:"user_agent"`
	IPAddress   string          `db:"ip_address"`
	Context     chatbot.Context `db:"context"`
	CreatedAt   time.Time       `db:"created_at"`
	LastUpdated time.Time       `db:"last_updated"`
}

type messageRow struct {
	ConversationID string                `db:"conversation_id"`
	Role           constants.MessageRole `db:"role"`
	Content        string                `db:"content"`
	Timestamp      time.Time             `db:"timestamp"`
}

// ConversationStore is the postgres backed chatbot.Store. Init must have
// been called before use.
type ConversationStore struct{}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{}
}

func (s *ConversationStore) Kind() string {
	return "postgres"
}

func (s *ConversationStore) BySession(ctx context.Context, sessionID string) (*chatbot.Conversation, error) {
	conversations, err := queryConversations(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE session_id = $1", sessionID)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("session_id", sessionID).Msg("Failed to get conversation by session")
		return nil, err
	}
	if len(conversations) == 0 {
		return nil, chatbot.ErrConversationNotFound
	}
	return &conversations[0], nil
}

func (s *ConversationStore) LatestByUser(ctx context.Context, userID string) (*chatbot.Conversation, error) {
	conversations, err := queryConversations(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE user_id = $1 ORDER BY last_updated DESC LIMIT 1", userID)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("user_id", userID).Msg("Failed to get latest conversation")
		return nil, err
	}
	if len(conversations) == 0 {
		return nil, chatbot.ErrConversationNotFound
	}
	return &conversations[0], nil
}

func (s *ConversationStore) ByUser(ctx context.Context, userID string) ([]chatbot.Conversation, error) {
	conversations, err := queryConversations(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE user_id = $1 ORDER BY last_updated DESC", userID)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("user_id", userID).Msg("Failed to get conversations by user")
	}
	return conversations, err
}

func (s *ConversationStore) BySelectedCountry(ctx context.Context, country string) ([]chatbot.Conversation, error) {
	conversations, err := queryConversations(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE lower(context->>'selected_country') = lower($1) ORDER BY last_updated DESC", country)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("country", country).Msg("Failed to get conversations by country")
	}
	return conversations, err
}

func (s *ConversationStore) UpdatedBetween(ctx context.Context, from, to time.Time) ([]chatbot.Conversation, error) {
	conversations, err := queryConversations(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE last_updated BETWEEN $1 AND $2 ORDER BY last_updated DESC", from, to)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Time("from", from).Time("to", to).Msg("Failed to get conversations in range")
	}
	return conversations, err
}

func (s *ConversationStore) DeleteUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if pool == nil {
		return 0, ErrNotConfigured
	}
	tag, err := pool.Exec(ctx, "DELETE FROM conversations WHERE last_updated < $1", cutoff)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Time("cutoff_time", cutoff).Msg("Failed to delete old conversations")
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Save upserts the conversation row and appends the messages not stored yet,
// in one transaction. The upsert locks the row so concurrent saves of the
// same session append in order.
func (s *ConversationStore) Save(ctx context.Context, c *chatbot.Conversation) error {
	if pool == nil {
		return ErrNotConfigured
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("session_id", c.SessionID).Msg("Failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO conversations (`+conversationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			user_agent = EXCLUDED.user_agent,
			ip_address = EXCLUDED.ip_address,
			context = EXCLUDED.context,
			last_updated = EXCLUDED.last_updated
		RETURNING id`,
		c.ID, c.SessionID, c.UserID, c.UserAgent, c.IPAddress, c.Context, c.CreatedAt, c.LastUpdated).Scan(&id)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("session_id", c.SessionID).Msg("Failed to upsert conversation")
		return fmt.Errorf("failed to upsert conversation: %w", err)
	}
	c.ID = id

	var stored int
	err = tx.QueryRow(ctx, "SELECT COUNT(*) FROM conversation_messages WHERE conversation_id = $1", id).Scan(&stored)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("conversation_id", id).Msg("Failed to count stored messages")
		return fmt.Errorf("failed to count stored messages: %w", err)
	}

	if pending := unsavedMessages(c.Messages, stored); len(pending) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"conversation_messages"},
			[]string{"conversation_id", "role", "content", "timestamp"},
			pgx.CopyFromSlice(len(pending), func(i int) ([]any, error) {
				m := pending[i]
				return []any{id, string(m.Role), m.Content, m.Timestamp}, nil
			}))
		if err != nil {
			log.Error().Ctx(ctx).Err(err).Str("conversation_id", id).Int("count", len(pending)).Msg("Failed to insert messages")
			return fmt.Errorf("failed to insert messages: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		log.Error().Ctx(ctx).Err(err).Str("conversation_id", id).Msg("Failed to commit conversation")
		return fmt.Errorf("failed to commit conversation: %w", err)
	}
	return nil
}

// unsavedMessages returns the messages past the stored count
func unsavedMessages(messages []chatbot.Message, stored int) []chatbot.Message {
	if stored >= len(messages) {
		return nil
	}
	if stored < 0 {
		stored = 0
	}
	return messages[stored:]
}

// queryConversations loads conversation rows and their messages
func queryConversations(ctx context.Context, sql string, args ...any) ([]chatbot.Conversation, error) {
	if pool == nil {
		return nil, ErrNotConfigured
	}

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	conversations, err := pgx.CollectRows(rows, pgx.RowToStructByName[conversationRow])
	if err != nil {
		return nil, err
	}
	if len(conversations) == 0 {
		return []chatbot.Conversation{}, nil
	}

	ids := make([]string, len(conversations))
	for i, c := range conversations {
		ids[i] = c.ID
	}
	rows, err = pool.Query(ctx,
		"SELECT conversation_id, role, content, timestamp FROM conversation_messages WHERE conversation_id = ANY($1) ORDER BY id", ids)
	if err != nil {
		return nil, err
	}
	messages, err := pgx.CollectRows(rows, pgx.RowToStructByName[messageRow])
	if err != nil {
		return nil, err
	}

	return assembleConversations(conversations, messages), nil
}

// assembleConversations attaches messages to their conversations, keeping
// both orders
func assembleConversations(rows []conversationRow, messages []messageRow) []chatbot.Conversation {
	byID := make(map[string][]chatbot.Message, len(rows))
	for _, m := range messages {
		byID[m.ConversationID] = append(byID[m.ConversationID], chatbot.Message{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}

	out := make([]chatbot.Conversation, len(rows))
	for i, r := range rows {
		msgs := byID[r.ID]
		if msgs == nil {
			msgs = []chatbot.Message{}
		}
		out[i] = chatbot.Conversation{
			ID:          r.ID,
			SessionID:   r.SessionID,
			UserID:      r.UserID,
			UserAgent:   r.UserAgent,
			IPAddress:   r.IPAddress,
			Messages:    msgs,
			Context:     r.Context,
			CreatedAt:   r.CreatedAt,
			LastUpdated: r.LastUpdated,
		}
	}
	return out
}
