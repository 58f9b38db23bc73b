package chatbot

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps conversations in process memory. Conversations are
// copied on the way in and out so callers never share state with the store.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{conversations: map[string]*Conversation{}}
}

func (m *MemoryStore) Kind() string {
	return "memory"
}

func (m *MemoryStore) BySession(ctx context.Context, sessionID string) (*Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.conversations[sessionID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return c.clone(), nil
}

func (m *MemoryStore) LatestByUser(ctx context.Context, userID string) (*Conversation, error) {
	conversations, err := m.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(conversations) == 0 {
		return nil, ErrConversationNotFound
	}
	return &conversations[0], nil
}

func (m *MemoryStore) ByUser(ctx context.Context, userID string) ([]Conversation, error) {
	return m.filter(func(c *Conversation) bool { return c.UserID == userID }), nil
}

func (m *MemoryStore) BySelectedCountry(ctx context.Context, country string) ([]Conversation, error) {
	return m.filter(func(c *Conversation) bool { return strings.EqualFold(c.Context.SelectedCountry, country) }), nil
}

// UpdatedBetween includes both bounds
func (m *MemoryStore) UpdatedBetween(ctx context.Context, from, to time.Time) ([]Conversation, error) {
	return m.filter(func(c *Conversation) bool {
		return !c.LastUpdated.Before(from) && !c.LastUpdated.After(to)
	}), nil
}

func (m *MemoryStore) DeleteUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for sessionID, c := range m.conversations {
		if c.LastUpdated.Before(cutoff) {
			delete(m.conversations, sessionID)
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) Save(ctx context.Context, c *Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.conversations[c.SessionID] = c.clone()
	return nil
}

// filter returns copies of matching conversations, most recently updated first
func (m *MemoryStore) filter(match func(*Conversation) bool) []Conversation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Conversation{}
	for _, c := range m.conversations {
		if match(c) {
			out = append(out, *c.clone())
		}
	}
	slices.SortFunc(out, func(a, b Conversation) int {
		return b.LastUpdated.Compare(a.LastUpdated)
	})
	return out
}

func (c *Conversation) clone() *Conversation {
	out := *c
	out.Messages = slices.Clone(c.Messages)
	out.Context.PreviousCountries = slices.Clone(c.Context.PreviousCountries)
	return &out
}
