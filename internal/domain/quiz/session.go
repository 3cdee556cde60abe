package quiz

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultCandidateName = "Candidate"

var ErrSessionNotFound = errors.New("quiz session expired or not started")

// Session is one generated quiz waiting for a submission.
type Session struct {
	ID            string         `json:"session_id"`
	CandidateName string         `json:"candidate_name"`
	Job           map[string]any `json:"job"`
	Questions     []Question     `json:"questions"`
	CreatedAt     time.Time      `json:"created_at"`
	ExpiresAt     time.Time      `json:"expires_at"`
}

// NewSession stamps a fresh id and expiry. A zero ttl never expires.
func NewSession(candidateName string, job map[string]any, questions []Question, ttl time.Duration) Session {
	now := time.Now()
	s := Session{
		ID:            uuid.NewString(),
		CandidateName: CandidateOrDefault(candidateName),
		Job:           job,
		Questions:     questions,
		CreatedAt:     now,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	return s
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

func CandidateOrDefault(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return DefaultCandidateName
}

// Store keeps quiz sessions between generation and submission.
type Store interface {
	Save(ctx context.Context, s Session) error
	Load(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	CleanupExpired(ctx context.Context) (int, error)
}

// MemoryStore is a process-local Store. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Save replaces any session stored under the same id.
func (m *MemoryStore) Save(_ context.Context, s Session) error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("session id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok || s.Expired(m.now()) {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) CleanupExpired(_ context.Context) (int, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
