package retriever

import (
	"fmt"
	"strings"

	"docchat/internal/domain"
)

const systemInstructions = `You are a documentation assistant. Follow these rules strictly:
1. Answer using only the information in the context below.
2. If the context does not contain the answer, say "I don't have information about that topic in the available documents." Do not guess or fill gaps from general knowledge.
3. Never substitute information about a different topic for the one the user asked about.
4. The conversation history is provided for conversational flow only; never treat it as a factual source for a new topic.
5. Name the source document for the facts you use.
6. Put any code inside fenced code blocks.`

const noContextBlock = `No documentation matched this question. Tell the user you don't have information about it in the available documents; do not answer from general knowledge.`

const uncertaintyNotice = `Note: I found limited supporting documentation for this answer. Please verify it with a human expert before relying on it.`

// buildPrompt renders the deterministic generation prompt: system rules,
// retrieved context (or an explicit no-context block), a bounded slice of
// conversation history and the current query.
func buildPrompt(query string, chunks []domain.RetrievedChunk, history []domain.Message, historyWindow int) string {
	var b strings.Builder
	b.WriteString(systemInstructions)
	b.WriteString("\n\nContext:\n\n")

	if len(chunks) == 0 {
		b.WriteString(noContextBlock)
		b.WriteString("\n\n")
	} else {
		for _, chunk := range chunks {
			if chunk.Section != "" {
				fmt.Fprintf(&b, "[%s - %s]\n", chunk.DocumentName, chunk.Section)
			} else {
				fmt.Fprintf(&b, "[%s]\n", chunk.DocumentName)
			}
			b.WriteString(chunk.Content)
			b.WriteString("\n\n")
		}
	}

	if len(history) > 0 {
		recent := history
		if len(recent) > historyWindow {
			recent = recent[len(recent)-historyWindow:]
		}
		b.WriteString("Conversation so far (flow context only, not a factual source):\n")
		for _, msg := range recent {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "user: %s\nassistant:", query)
	return b.String()
}
