package assembler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docchat/internal/domain"
)

// Retriever is the subset of the retrieval service the assembler needs.
type Retriever interface {
	SearchRelevantChunks(ctx context.Context, query string, limit int) ([]domain.RetrievedChunk, error)
}

// Options tune context assembly.
type Options struct {
	MaxChunks      int    // retrieved chunk cap (default 5)
	PromptOverride string // non-empty skips template augmentation entirely
}

const baseTemplate = `You are a helpful assistant that answers questions about the user's documents. Ground every answer in the knowledge base context when it is present.`

// Assemble merges a session's conversation history, retrieved chunks and a
// system prompt into one generation context. A missing session or a nil
// store yields empty history; a nil retriever yields no chunks.
func Assemble(ctx context.Context, sessionID, query string, sessions domain.SessionStore, retr Retriever, opts Options) (domain.QueryContext, error) {
	var qc domain.QueryContext

	if sessionID != "" && sessions != nil {
		session, err := sessions.Get(sessionID)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			// no history
		case err != nil:
			return domain.QueryContext{}, fmt.Errorf("loading session %s: %w", sessionID, err)
		default:
			qc.History = session.Messages
		}
	}

	if retr != nil {
		maxChunks := opts.MaxChunks
		if maxChunks <= 0 {
			maxChunks = 5
		}
		chunks, err := retr.SearchRelevantChunks(ctx, query, maxChunks)
		if err != nil {
			return domain.QueryContext{}, err
		}
		qc.Chunks = chunks
	}

	if opts.PromptOverride != "" {
		qc.SystemPrompt = opts.PromptOverride
		return qc, nil
	}
	qc.SystemPrompt = systemPrompt(qc.Chunks)
	return qc, nil
}

// systemPrompt appends a knowledge base context section to the base
// template, or returns the template unchanged when nothing was retrieved.
func systemPrompt(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return baseTemplate
	}
	var b strings.Builder
	b.WriteString(baseTemplate)
	b.WriteString("\n\nKnowledge base context:\n\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "[Source %d: %s]\n%s\n\n", i+1, chunk.DocumentName, chunk.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
