package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/masingita/countrybot/constants"
	"github.com/masingita/countrybot/metrics"
	"github.com/masingita/countrybot/render"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrInvalidRange = errors.New("from must not be after to")
)

// Request is one incoming chat message
type Request struct {
	SessionID string
	UserID    string
	UserAgent string
	IPAddress string
	Message   string
}

// Reply is the bot's answer to a Request
type Reply struct {
	Text    string
	HTML    string
	Context Context
}

// Service runs conversations on top of the rule engine and a Store
type Service struct {
	store  Store
	engine *Engine
	now    func() time.Time
}

func NewService(store Store, countries CountryService) *Service {
	return &Service{
		store:  store,
		engine: NewEngine(countries),
		now:    time.Now,
	}
}

// StoreKind names the storage backing the service
func (s *Service) StoreKind() string {
	return s.store.Kind()
}

// Respond processes a message in the conversation of req.SessionID, creating
// the conversation on its first message, and persists both sides of the
// exchange
func (s *Service) Respond(ctx context.Context, req Request) (*Reply, error) {
	start := s.now()

	message := render.SanitizeInput(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	conversation, err := s.store.BySession(ctx, req.SessionID)
	if errors.Is(err, ErrConversationNotFound) {
		conversation, err = s.newConversation(req, start)
	}
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("session_id", req.SessionID).Msg("Failed to load conversation")
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if req.UserID != "" {
		conversation.UserID = req.UserID
	}
	if req.UserAgent != "" {
		conversation.UserAgent = req.UserAgent
	}
	if req.IPAddress != "" {
		conversation.IPAddress = req.IPAddress
	}

	text := s.engine.Process(ctx, message, &conversation.Context)

	now := s.now()
	conversation.AddMessage(constants.RoleUser, message, now)
	conversation.AddMessage(constants.RoleBot, text, now)
	conversation.LastUpdated = now

	err = s.store.Save(ctx, conversation)
	metrics.RecordConversationSaved(err == nil)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("session_id", req.SessionID).Msg("Failed to save conversation")
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	metrics.RecordChatResponseLatency(s.now().Sub(start).Seconds())
	log.Debug().Ctx(ctx).
		Str("step", string(conversation.Context.CurrentStep)).
		Str("selected_country", conversation.Context.SelectedCountry).
		Int("interaction", conversation.Context.InteractionCount).
		Msg("Chat message handled")

	return &Reply{
		Text:    text,
		HTML:    render.MarkdownToHTML(text),
		Context: conversation.Context,
	}, nil
}

func (s *Service) newConversation(req Request, now time.Time) (*Conversation, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate conversation id: %w", err)
	}
	return &Conversation{
		ID:          id.String(),
		SessionID:   req.SessionID,
		UserID:      req.UserID,
		Messages:    []Message{},
		CreatedAt:   now,
		LastUpdated: now,
	}, nil
}

// History returns the conversation of a session
func (s *Service) History(ctx context.Context, sessionID string) (*Conversation, error) {
	return s.store.BySession(ctx, sessionID)
}

// Latest returns the most recently updated conversation of a user
func (s *Service) Latest(ctx context.Context, userID string) (*Conversation, error) {
	return s.store.LatestByUser(ctx, userID)
}

func (s *Service) ByUser(ctx context.Context, userID string) ([]Conversation, error) {
	return s.store.ByUser(ctx, userID)
}

func (s *Service) BySelectedCountry(ctx context.Context, country string) ([]Conversation, error) {
	return s.store.BySelectedCountry(ctx, strings.ToLower(strings.TrimSpace(country)))
}

func (s *Service) UpdatedBetween(ctx context.Context, from, to time.Time) ([]Conversation, error) {
	if from.After(to) {
		return nil, ErrInvalidRange
	}
	return s.store.UpdatedBetween(ctx, from, to)
}

// DeleteOlderThan removes conversations not updated within maxAge
func (s *Service) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	return deleteOlderThan(ctx, s.store, maxAge, s.now())
}

func deleteOlderThan(ctx context.Context, store Store, maxAge time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-maxAge)
	count, err := store.DeleteUpdatedBefore(ctx, cutoff)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Time("cutoff_time", cutoff).Msg("Failed to delete old conversations")
		return 0, err
	}
	metrics.RecordConversationsDeleted(count)
	return count, nil
}
