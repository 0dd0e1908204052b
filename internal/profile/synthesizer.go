package profile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"counsel/internal/dialogue"
	"counsel/internal/entry"
)

// PlaceholderDescription is persisted when a brand-new user's first profile
// generation fails, so callers always have something to render.
const PlaceholderDescription = "Start your growth journey by adding directions and references. " +
	"Your profile will be automatically generated as you share more about your aspirations and inspirations."

// Synthesizer derives free-text profiles from a user's accumulated entries.
type Synthesizer struct {
	db      *gorm.DB
	entries *entry.Store
	engine  *dialogue.Engine
}

func NewSynthesizer(db *gorm.DB, entries *entry.Store, engine *dialogue.Engine) *Synthesizer {
	return &Synthesizer{db: db, entries: entries, engine: engine}
}

// Latest returns the user's current profile, or nil when none exists.
func (s *Synthesizer) Latest(userID uint) (*UserProfile, error) {
	var p UserProfile
	err := s.db.Where("user_id = ?", userID).Order("created_at desc").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ShouldUpdate reports whether the profile is stale: missing entirely, or
// older than the user's newest entry.
func (s *Synthesizer) ShouldUpdate(userID uint) (bool, error) {
	latest, err := s.Latest(userID)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return true, nil
	}
	newest, err := s.entries.NewestForOwner(userID)
	if err != nil {
		return false, err
	}
	if newest == nil {
		return false, nil
	}
	return newest.CreatedAt.After(latest.CreatedAt), nil
}

// Generate synthesizes and persists a new profile. Any generation failure
// falls back to the prior profile when one exists; a brand-new user gets the
// fixed placeholder instead. Rate limits are handled like any other failure.
func (s *Synthesizer) Generate(ctx context.Context, userID uint) (*UserProfile, error) {
	prior, err := s.Latest(userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.LatestForOwner(userID, "")
	if err != nil {
		if prior != nil {
			return prior, nil
		}
		return s.insert(userID, PlaceholderDescription)
	}

	description, err := s.engine.Single(ctx, dialogue.KindProfile, buildPrompt(entries))
	if err != nil || strings.TrimSpace(description) == "" {
		log.Printf("[Profile] generation failed for user %d: %v", userID, err)
		if prior != nil {
			return prior, nil
		}
		return s.insert(userID, PlaceholderDescription)
	}

	return s.insert(userID, description)
}

// RefreshIfStale is the best-effort hook run after an entry commit. Failures
// are logged and never surfaced to the commit path.
func (s *Synthesizer) RefreshIfStale(ctx context.Context, userID uint) {
	stale, err := s.ShouldUpdate(userID)
	if err != nil {
		log.Printf("[Profile] staleness check failed for user %d: %v", userID, err)
		return
	}
	if !stale {
		return
	}
	if _, err := s.Generate(ctx, userID); err != nil {
		log.Printf("[Profile] refresh failed for user %d: %v", userID, err)
	}
}

func (s *Synthesizer) insert(userID uint, description string) (*UserProfile, error) {
	p := &UserProfile{
		UserID:      userID,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.db.Create(p).Error; err != nil {
		return nil, fmt.Errorf("persist profile: %w", err)
	}
	return p, nil
}

func buildPrompt(entries []entry.Entry) string {
	var b strings.Builder
	b.WriteString("Create a concise profile summary for a person based on their growth directions and references. Here's their data:\n\n")

	var directions, references []entry.Entry
	for _, e := range entries {
		if e.Kind == entry.KindDirection {
			directions = append(directions, e)
		} else {
			references = append(references, e)
		}
	}

	if len(directions) > 0 {
		b.WriteString("Growth Directions:\n")
		for _, d := range directions {
			fmt.Fprintf(&b, "- %s: %s\n", d.Title, d.Description)
		}
	}
	if len(references) > 0 {
		b.WriteString("\nReferences:\n")
		for _, r := range references {
			fmt.Fprintf(&b, "- %s: %s\n", r.Title, r.Description)
		}
	}

	b.WriteString("\nBased on this information, provide a concise profile summary that captures:")
	b.WriteString("\n1. Their main areas of growth and interest")
	b.WriteString("\n2. Key patterns or themes in their journey")
	b.WriteString("\n3. What seems to motivate or inspire them")
	b.WriteString("\nMake it personal and encouraging, but keep it under 200 words.")
	return b.String()
}
