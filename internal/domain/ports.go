package domain

import "context"

// Embedder converts free text into a numeric vector representation.
// Dimension reports the vector length once it is known; it may return 0
// before the first successful Embed for remote implementations.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// CompletionOptions tune a single completion request. Zero values defer to
// the provider's configured defaults.
type CompletionOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Completer generates text from a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// SessionStore persists conversation sessions by id.
// Get returns ErrSessionNotFound for an unknown id.
type SessionStore interface {
	Get(id string) (*Session, error)
	Save(session *Session) error
}
