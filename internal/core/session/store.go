package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"calorie-chat/internal/core/calorie"

	"github.com/google/uuid"
)

// ErrNotFound signals an unknown or expired session id
var ErrNotFound = errors.New("session not found")

// Message is one conversation turn kept in the session history
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the per-conversation context. LastResult is a snapshot of the
// previous turn's calorie result, used by the modification flow.
type Session struct {
	ID                  string                 `json:"id"`
	Country             string                 `json:"country"`
	LastDish            string                 `json:"last_dish"`
	LastResult          *calorie.CalorieResult `json:"last_result,omitempty"`
	AwaitingIngredients bool                   `json:"awaiting_ingredients"`
	History             []Message              `json:"history"`
	CreatedAt           time.Time              `json:"created_at"`
}

// AddMessage appends one turn to the history
func (s *Session) AddMessage(role, content string) {
	s.History = append(s.History, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
}

// clone returns a deep copy: callers must never share the history slice or
// the result snapshot with the stored session
func (s *Session) clone() *Session {
	c := *s
	c.History = append([]Message(nil), s.History...)
	if s.LastResult != nil {
		r := *s.LastResult
		r.Ingredients = append([]calorie.Ingredient(nil), s.LastResult.Ingredients...)
		r.Modifications = append([]string(nil), s.LastResult.Modifications...)
		c.LastResult = &r
	}
	return &c
}

// Store is the session context collaborator: a keyed store with
// create/get/update operations, owned by the service layer.
type Store interface {
	Create(ctx context.Context, country string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, s *Session) error
}

// MemoryStore keeps sessions in process memory. Also serves as the test
// double for the Redis-backed store. Get and Update exchange deep copies,
// matching the snapshot semantics of the Redis store's JSON round-trip, so
// concurrent turns on one session never mutate shared state.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session for country and returns it
func (m *MemoryStore) Create(ctx context.Context, country string) (*Session, error) {
	s := &Session{
		ID:        uuid.NewString(),
		Country:   country,
		History:   []Message{},
		CreatedAt: time.Now().UTC(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s.clone()
	m.mu.Unlock()
	return s, nil
}

// Get returns a snapshot of the session for id or ErrNotFound
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.clone(), nil
}

// Update stores a snapshot of the session state
func (m *MemoryStore) Update(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session has no id")
	}
	m.mu.Lock()
	m.sessions[s.ID] = s.clone()
	m.mu.Unlock()
	return nil
}
