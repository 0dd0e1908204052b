package dialogue

import "fmt"

// Kind selects which counseling purpose a conversation serves. Each kind is
// a fixed configuration record, not user-editable.
type Kind string

const (
	KindDirection Kind = "direction"
	KindReference Kind = "reference"
	KindProfile   Kind = "profile"
)

const (
	DirectionToken = "[DIRCOMP]"
	ReferenceToken = "[REFCOMP]"
)

// KindConfig is the closed per-kind configuration driving the engine.
type KindConfig struct {
	SystemPrompt    string
	CompletionToken string
	FallbackLabel   string
}

var kindConfigs = map[Kind]KindConfig{
	KindDirection: {
		SystemPrompt: "You are a growth counselor helping users identify and articulate their growth directions. " +
			"Your goal is to have a conversation that helps users clarify their growth aspirations. " +
			"Ask relevant follow-up questions to understand their goals better. " +
			"When you feel you have a clear understanding, respond with a message starting with the specific token '" + DirectionToken + "' " +
			"followed by a concise summary of their growth direction.",
		CompletionToken: DirectionToken,
		FallbackLabel:   "New direction",
	},
	KindReference: {
		SystemPrompt: "You are a growth counselor helping users identify the people they look up to as references or idols. " +
			"Your goal is to have a conversation that helps users articulate who inspires them and why. " +
			"Ask relevant follow-up questions to understand what qualities they admire. " +
			"When you feel you have a clear understanding, respond with a message starting with the specific token '" + ReferenceToken + "' " +
			"followed by a concise summary of the reference and what the user admires about them.",
		CompletionToken: ReferenceToken,
		FallbackLabel:   "New reference",
	},
	// Profile synthesis is single-shot: the whole reply is the result, no
	// completion token is involved.
	KindProfile: {
		SystemPrompt: "You are a growth counselor summarizing a person from their growth directions and references. " +
			"Write a concise, personal and encouraging profile under 200 words.",
	},
}

// Config returns the kind's configuration record.
func (k Kind) Config() KindConfig {
	return kindConfigs[k]
}

// Valid reports whether k is a known dialogue kind.
func (k Kind) Valid() bool {
	_, ok := kindConfigs[k]
	return ok
}

// Conversational reports whether k runs the multi-turn elicitation loop.
func (k Kind) Conversational() bool {
	return k == KindDirection || k == KindReference
}

// ParseKind maps a URL parameter to a conversational kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() || !k.Conversational() {
		return "", fmt.Errorf("unknown dialogue kind %q", s)
	}
	return k, nil
}
