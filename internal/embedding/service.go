package embedding

import (
	"context"
	"log"
)

// Service wraps a Provider with the commit-path policy: embedding failure is
// never an error for callers, entries simply persist without a vector.
type Service struct {
	provider Provider
}

func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// EmbedOrNil returns the text's vector, or nil on any failure. The cause is
// logged, not raised.
func (s *Service) EmbedOrNil(ctx context.Context, text string) []float64 {
	if text == "" {
		return nil
	}
	vec, err := s.provider.Embed(ctx, text)
	if err != nil {
		log.Printf("[Embedding] failed to embed text (%d chars): %v", len(text), err)
		return nil
	}
	return vec
}
