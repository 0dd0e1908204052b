package dialogue

import (
	"github.com/google/uuid"

	"counsel/internal/llm"
)

// PendingCompletion holds a detected completion awaiting user confirmation.
type PendingCompletion struct {
	FullText    string `json:"full_text"`
	ShortLabel  string `json:"short_label"`
	RawResponse string `json:"raw_response"`
}

// ConversationSession is the transient per-user, per-kind dialogue state.
// The web layer loads it before a turn and stores it afterwards; the core
// never touches ambient session storage itself.
type ConversationSession struct {
	Kind    Kind          `json:"kind"`
	History []llm.Message `json:"history"`
	Pending *PendingCompletion `json:"pending,omitempty"`

	// TurnID changes on every accepted turn and on reset. A provider
	// response is only applied when the TurnID it was issued under still
	// matches, so a reset mid-call discards the late reply.
	TurnID string `json:"turn_id"`
}

// NewSession starts an empty session for a kind.
func NewSession(kind Kind) *ConversationSession {
	return &ConversationSession{
		Kind:   kind,
		TurnID: uuid.NewString(),
	}
}

// AppendTurn records a completed exchange and advances the turn identity.
func (s *ConversationSession) AppendTurn(userMessage, assistantReply string) {
	s.History = append(s.History,
		llm.Message{Role: llm.RoleUser, Content: userMessage},
		llm.Message{Role: llm.RoleAssistant, Content: assistantReply},
	)
	s.TurnID = uuid.NewString()
}

// Reset clears history and any pending completion, invalidating in-flight
// turns.
func (s *ConversationSession) Reset() {
	s.History = nil
	s.Pending = nil
	s.TurnID = uuid.NewString()
}
