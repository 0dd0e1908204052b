package embedding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"counsel/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(config.EmbeddingConfig{URL: url}, 2*time.Second)
}

func TestEmbed_BareVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[0.1, 0.2, 0.3]`))
	}))
	defer srv.Close()

	vec, err := newTestClient(srv.URL).Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Errorf("unexpected vector: %v", vec)
	}
}

func TestEmbed_BatchVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[1.0, 0.0]]`))
	}))
	defer srv.Close()

	vec, err := newTestClient(srv.URL).Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 2 || vec[0] != 1.0 {
		t.Errorf("unexpected vector: %v", vec)
	}
}

func TestEmbed_OpenAIEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"embedding":[0.5, 0.5]}]}`))
	}))
	defer srv.Close()

	vec, err := newTestClient(srv.URL).Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.5 {
		t.Errorf("unexpected vector: %v", vec)
	}
}

func TestEmbed_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Embed(context.Background(), "hello"); err == nil {
		t.Errorf("expected error for non-200 status")
	}
}

func TestEmbed_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Embed(context.Background(), "hello"); err == nil {
		t.Errorf("expected error for payload without embedding")
	}
}

type fakeProvider struct {
	vec []float64
	err error
}

func (f *fakeProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	return f.vec, f.err
}

func TestEmbedOrNil_SwallowsFailure(t *testing.T) {
	svc := NewService(&fakeProvider{err: errors.New("network error")})
	if vec := svc.EmbedOrNil(context.Background(), "text"); vec != nil {
		t.Errorf("failure should yield nil, got %v", vec)
	}
}

func TestEmbedOrNil_Success(t *testing.T) {
	svc := NewService(&fakeProvider{vec: []float64{1, 2}})
	vec := svc.EmbedOrNil(context.Background(), "text")
	if len(vec) != 2 {
		t.Errorf("unexpected vector: %v", vec)
	}
}

func TestEmbedOrNil_EmptyText(t *testing.T) {
	svc := NewService(&fakeProvider{vec: []float64{1}})
	if vec := svc.EmbedOrNil(context.Background(), ""); vec != nil {
		t.Errorf("empty text should not be embedded")
	}
}
