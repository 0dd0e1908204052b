package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"counsel/internal/config"
	"counsel/internal/dialogue"
	"counsel/internal/embedding"
	"counsel/internal/entry"
	"counsel/internal/llm"
	"counsel/internal/profile"
)

// memSessionStore mimics the Redis-backed store, including its copy
// semantics: Load always returns a decoded copy, never a shared pointer.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*dialogue.ConversationSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*dialogue.ConversationSession)}
}

func memKey(userID uint, kind dialogue.Kind) string {
	return fmt.Sprintf("%d:%s", userID, kind)
}

func (m *memSessionStore) Load(_ context.Context, userID uint, kind dialogue.Kind) (*dialogue.ConversationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[memKey(userID, kind)]
	if !ok {
		return dialogue.NewSession(kind), nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var cp dialogue.ConversationSession
	if err := json.Unmarshal(b, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (m *memSessionStore) Save(_ context.Context, userID uint, s *dialogue.ConversationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[memKey(userID, s.Kind)] = s
	return nil
}

func (m *memSessionStore) Clear(_ context.Context, userID uint, kind dialogue.Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, memKey(userID, kind))
	return nil
}

// clearFailingStore simulates a Redis delete outage: Clear always fails
// while Load and Save keep working.
type clearFailingStore struct {
	*memSessionStore
}

func (s *clearFailingStore) Clear(context.Context, uint, dialogue.Kind) error {
	return errors.New("delete failed")
}

type fakeEmbedder struct {
	vec []float64
	err error
}

func (f fakeEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return f.vec, f.err
}

func overrideComplete(t *testing.T, fn func(messages []llm.Message) (string, error)) {
	t.Helper()
	orig := llm.Complete
	llm.Complete = func(_ context.Context, _ *llm.Client, _ config.ChatModelConfig, messages []llm.Message) (string, error) {
		return fn(messages)
	}
	t.Cleanup(func() { llm.Complete = orig })
}

func newTestServices(t *testing.T) *Services {
	t.Helper()
	dbConn := setupTestDB(t)
	resetTables(t)
	store := entry.NewStore(dbConn)
	engine := dialogue.NewEngine(nil, nil, config.ChatModelConfig{Model: "test-model"})
	return &Services{
		Engine:     engine,
		Sessions:   newMemSessionStore(),
		Guard:      dialogue.NewTurnGuard(),
		Embeddings: embedding.NewService(fakeEmbedder{vec: []float64{1, 0, 0}}),
		Entries:    store,
		Profiles:   profile.NewSynthesizer(dbConn, store, engine),
	}
}
