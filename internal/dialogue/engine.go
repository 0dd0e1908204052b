package dialogue

import (
	"context"
	"fmt"
	"log"
	"strings"

	"counsel/internal/config"
	"counsel/internal/llm"
)

// ApologyReply is returned for any provider failure during a turn. The
// failed turn is never appended to history, so the user can simply resend.
const ApologyReply = "I apologize, but I could not reach the counselor right now. Please try again."

const labelSystemPrompt = "You compress growth statements into short titles. " +
	"Reply with only the title, at most 5 words, no quotes."

// StepResult is the outcome of one dialogue turn.
type StepResult struct {
	Reply      string // continuation question, or the completion payload
	Complete   bool
	Failed     bool // provider failure; the turn must not be recorded
	Transcript string // human-readable record of the completing exchange
	Label      string // short title, only set when Complete
}

// Engine drives turn-by-turn conversations against the chat provider. It is
// stateless: session state travels in and out of every call.
type Engine struct {
	critical   *llm.Client
	background *llm.Client
	model      config.ChatModelConfig
}

// NewEngine wires the engine to its two queue clients: interactive turns go
// through critical, auxiliary single-shot calls through background.
func NewEngine(critical, background *llm.Client, model config.ChatModelConfig) *Engine {
	return &Engine{critical: critical, background: background, model: model}
}

// Step runs one conversational turn. History is read, never mutated; the
// caller appends the exchange on success.
func (e *Engine) Step(ctx context.Context, kind Kind, userMessage string, history []llm.Message) StepResult {
	cfg := kind.Config()

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: cfg.SystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})

	raw, err := llm.Complete(ctx, e.critical, e.model, messages)
	if err != nil {
		log.Printf("[Dialogue] %s turn failed: %v", kind, err)
		return StepResult{Reply: ApologyReply, Failed: true}
	}

	complete, payload := Detect(raw, cfg.CompletionToken)
	if !complete {
		return StepResult{Reply: raw}
	}

	label := e.shortLabel(ctx, payload)
	if label == "" {
		label = cfg.FallbackLabel
	}
	return StepResult{
		Reply:      payload,
		Complete:   true,
		Transcript: renderTranscript(userMessage, raw, label),
		Label:      label,
	}
}

// Single runs the non-interactive single-shot mode (profile synthesis).
func (e *Engine) Single(ctx context.Context, kind Kind, prompt string) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: kind.Config().SystemPrompt},
		{Role: llm.RoleUser, Content: prompt},
	}
	return llm.Complete(ctx, e.background, e.model, messages)
}

// shortLabel compresses a completion payload to a title via an independent
// single-shot call. Failure yields "" and the caller substitutes the kind's
// fallback, a bad label must not fail the whole turn.
func (e *Engine) shortLabel(ctx context.Context, payload string) string {
	if strings.TrimSpace(payload) == "" {
		return ""
	}
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: labelSystemPrompt},
		{Role: llm.RoleUser, Content: payload},
	}
	label, err := llm.Complete(ctx, e.background, e.model, messages)
	if err != nil {
		log.Printf("[Dialogue] label compression failed: %v", err)
		return ""
	}
	return strings.Trim(strings.TrimSpace(label), "\"'")
}

func renderTranscript(userMessage, rawResponse, label string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "USER: %s\n", userMessage)
	fmt.Fprintf(&b, "ASSISTANT: %s\n", rawResponse)
	fmt.Fprintf(&b, "LABEL: %s\n", label)
	return b.String()
}
