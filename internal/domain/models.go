package domain

import "time"

// Document is a source document registered for indexing.
// Type selects the format adapter used to extract its text.
type Document struct {
	ID   string
	Name string
	Type string // "markdown", "text" or "pdf"
	Raw  []byte
}

// Chunk is a contiguous, trimmed slice of a document's extracted text.
type Chunk struct {
	Content string
	Index   int
	Section string
}

// Section marks the first occurrence of a section header in extracted text.
type Section struct {
	Title  string
	Offset int
}

// IndexEntry is one embedded chunk. Once inserted it is owned by the
// similarity index and lives until its document is deleted or re-indexed.
type IndexEntry struct {
	ID           string
	DocumentID   string
	DocumentName string
	ChunkIndex   int
	Content      string
	Section      string
	Embedding    []float64
}

// SearchResult pairs an index entry with its cosine similarity to the query.
type SearchResult struct {
	Entry IndexEntry
	Score float64
}

// RetrievedChunk is a chunk with provenance metadata as returned by retrieval.
type RetrievedChunk struct {
	DocumentID   string
	DocumentName string
	Section      string
	Content      string
	Score        float64
}

// Source attributes part of a generated answer to a document.
type Source struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	Excerpt      string `json:"excerpt"`
}

// RetrievalResponse is a generated answer with attribution and a heuristic
// confidence score in (0,1).
type RetrievalResponse struct {
	Content    string   `json:"content"`
	Sources    []Source `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Session is an ordered conversation transcript.
type Session struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QueryContext merges conversation history, retrieved chunks and a system
// prompt into a single generation context.
type QueryContext struct {
	History      []Message
	Chunks       []RetrievedChunk
	SystemPrompt string
}
