package local

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"docchat/internal/domain"
)

// Embedder is a deterministic, stateless bag-of-words embedder for offline
// runs and tests: tokens hash into a fixed number of buckets and the result
// is L2-normalized. Similar texts share buckets and score high on cosine
// similarity; it carries no semantic knowledge.
type Embedder struct {
	dim          int
	tokenPattern *regexp.Regexp
}

func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &Embedder{
		dim:          dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
	}
}

func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	vector := make([]float64, e.dim)
	tokens := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	for _, tok := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vector[int(h.Sum32())%e.dim]++
	}
	norm := 0.0
	for _, v := range vector {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vector {
			vector[i] /= norm
		}
	}
	return vector, nil
}

func (e *Embedder) Dimension() int { return e.dim }

// Completer is an offline stand-in that quotes the prompt's context block
// instead of calling a language model. Useful for smoke-testing the
// pipeline without credentials.
type Completer struct{}

func (Completer) Complete(_ context.Context, prompt string, _ domain.CompletionOptions) (string, error) {
	const marker = "Context:\n\n"
	const limit = 600
	body := prompt
	if i := strings.Index(prompt, marker); i >= 0 {
		body = prompt[i+len(marker):]
	}
	if i := strings.Index(body, "\nuser:"); i >= 0 {
		body = body[:i]
	}
	body = strings.TrimSpace(body)
	if len(body) > limit {
		body = strings.TrimSpace(body[:limit]) + "..."
	}
	return "(offline mode, no language model) Most relevant documentation found:\n\n" + body, nil
}
