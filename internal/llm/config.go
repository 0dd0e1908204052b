package llm

import "time"

// Config controls queue behavior
type Config struct {
	// Concurrency control
	MaxConcurrent int // Total concurrent provider requests

	// Queue sizes
	CriticalQueueSize   int // Interactive turns (small, rarely queues)
	BackgroundQueueSize int // Background tasks (larger buffer)

	// Timeouts
	CriticalTimeout   time.Duration // Conversational calls
	BackgroundTimeout time.Duration // Single-shot background calls
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrent:       2,
		CriticalQueueSize:   20,
		BackgroundQueueSize: 100,
		CriticalTimeout:     30 * time.Second,
		BackgroundTimeout:   60 * time.Second,
	}
}
