package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"counsel/internal/config"
)

func newTestManager() *Manager {
	cfg := DefaultConfig()
	cfg.CriticalTimeout = 2 * time.Second
	cfg.BackgroundTimeout = 2 * time.Second
	return NewManager(cfg)
}

func TestClientCall_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer testkey" {
			t.Errorf("missing bearer header")
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	m := newTestManager()
	defer m.Stop()
	c := NewClient(m, PriorityCritical, 2*time.Second)

	body, err := c.Call(context.Background(), srv.URL, "testkey", map[string]interface{}{"x": 1})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestClientCall_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := newTestManager()
	defer m.Stop()
	c := NewClient(m, PriorityCritical, 2*time.Second)

	if _, err := c.Call(context.Background(), srv.URL, "", nil); err == nil {
		t.Errorf("expected error for non-200 status")
	}
}

func TestClientCall_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	m := newTestManager()
	defer m.Stop()
	c := NewClient(m, PriorityBackground, 2*time.Second)

	_, err := c.Call(context.Background(), srv.URL, "", nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestClientCall_NetworkError(t *testing.T) {
	m := newTestManager()
	defer m.Stop()
	c := NewClient(m, PriorityCritical, 500*time.Millisecond)

	if _, err := c.Call(context.Background(), "http://127.0.0.1:1", "", nil); err == nil {
		t.Errorf("expected error for unreachable endpoint")
	}
}

func TestComplete_ParsesAssistantText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`))
	}))
	defer srv.Close()

	m := newTestManager()
	defer m.Stop()
	c := NewClient(m, PriorityCritical, 2*time.Second)

	model := config.ChatModelConfig{URL: srv.URL, Model: "test-model"}
	reply, err := Complete(context.Background(), c, model, []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if reply != "hello there" {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	m := newTestManager()
	defer m.Stop()
	c := NewClient(m, PriorityCritical, 2*time.Second)

	model := config.ChatModelConfig{URL: srv.URL, Model: "test-model"}
	if _, err := Complete(context.Background(), c, model, nil); err == nil {
		t.Errorf("expected error for empty choices")
	}
}

func TestManager_Metrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	m := newTestManager()
	defer m.Stop()
	c := NewClient(m, PriorityCritical, 2*time.Second)
	if _, err := c.Call(context.Background(), srv.URL, "", nil); err != nil {
		t.Fatalf("call failed: %v", err)
	}

	// The processed counter is bumped after the response is delivered.
	time.Sleep(50 * time.Millisecond)
	metrics := m.GetMetrics()
	if metrics.CriticalEnqueued != 1 {
		t.Errorf("expected one critical enqueue, got %d", metrics.CriticalEnqueued)
	}
	if metrics.CriticalProcessed != 1 {
		t.Errorf("expected one critical processed, got %d", metrics.CriticalProcessed)
	}
}
