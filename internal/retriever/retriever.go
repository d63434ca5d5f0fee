package retriever

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"docchat/internal/domain"
	"docchat/internal/extract"
	"docchat/internal/index"
	"docchat/internal/segmenter"
	"docchat/internal/topic"
)

// Options tune retrieval behaviour. Zero values fall back to defaults.
type Options struct {
	TopK                int     // search result count (default 5)
	SimilarityThreshold float64 // minimum cosine score (default 0.35)
	ConfidenceThreshold float64 // below this the answer gets a verification notice (default 0.5)
	ExcerptLength       int     // source excerpt length in characters (default 100)
	HistoryWindow       int     // prompt history message count (default 6)
	DisableTopicGuard   bool    // switch off topic-based relevance filtering
	Completion          domain.CompletionOptions
}

// DocumentStatus tracks a document through the ingestion state machine.
type DocumentStatus string

const (
	StatusPending DocumentStatus = "pending"
	StatusIndexed DocumentStatus = "indexed"
	StatusError   DocumentStatus = "error"
)

// IndexResult reports the outcome of an asynchronous ingestion.
type IndexResult struct {
	DocumentID string
	Chunks     int
	Err        error
}

// Service coordinates ingestion (parse, segment, embed, index) and
// query-time retrieval, prompt assembly, confidence scoring and source
// attribution.
type Service struct {
	segmenter *segmenter.Segmenter
	embedder  domain.Embedder
	completer domain.Completer
	store     index.Store
	topics    topic.Extractor
	opts      Options

	mu     sync.Mutex
	status map[string]DocumentStatus
}

func NewService(seg *segmenter.Segmenter, embedder domain.Embedder, completer domain.Completer, store index.Store, topics topic.Extractor, opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.SimilarityThreshold == 0 {
		opts.SimilarityThreshold = 0.35
	}
	if opts.ConfidenceThreshold == 0 {
		opts.ConfidenceThreshold = 0.5
	}
	if opts.ExcerptLength <= 0 {
		opts.ExcerptLength = 100
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 6
	}
	if topics == nil {
		topics = topic.NewKeywordExtractor()
	}
	return &Service{
		segmenter: seg,
		embedder:  embedder,
		completer: completer,
		store:     store,
		topics:    topics,
		opts:      opts,
		status:    make(map[string]DocumentStatus),
	}
}

// IndexDocument purges any previous entries for the document, extracts and
// segments its text, embeds each chunk and inserts the result. Returns the
// number of chunks produced; 0 is a valid outcome for an empty document.
//
// The purge and the re-insert are not atomic: a search running mid-reindex
// may briefly see no entries for this document.
func (s *Service) IndexDocument(ctx context.Context, doc domain.Document) (int, error) {
	s.setStatus(doc.ID, StatusPending)
	n, err := s.indexDocument(ctx, doc)
	if err != nil {
		s.setStatus(doc.ID, StatusError)
		return 0, err
	}
	s.setStatus(doc.ID, StatusIndexed)
	return n, nil
}

func (s *Service) indexDocument(ctx context.Context, doc domain.Document) (int, error) {
	// A failed purge aborts ingestion; inserting anyway would leave stale
	// chunks next to fresh ones.
	if _, err := s.store.DeleteByDocument(doc.ID); err != nil {
		return 0, fmt.Errorf("purging %s: %w", doc.Name, err)
	}

	extractor, err := extract.ForType(doc.Type)
	if err != nil {
		return 0, err
	}
	extracted, err := extractor.Extract(doc.Raw)
	if err != nil {
		return 0, fmt.Errorf("extracting %s: %w", doc.Name, err)
	}

	chunks := s.segmenter.SegmentWithSections(extracted.Text, extracted.Sections)
	if len(chunks) == 0 {
		return 0, nil
	}

	entries := make([]domain.IndexEntry, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := s.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return 0, fmt.Errorf("embedding chunk %d of %s: %w", chunk.Index, doc.Name, err)
		}
		entries = append(entries, domain.IndexEntry{
			ID:           uuid.NewString(),
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			ChunkIndex:   chunk.Index,
			Content:      chunk.Content,
			Section:      chunk.Section,
			Embedding:    vector,
		})
	}
	if err := s.store.InsertMany(entries); err != nil {
		return 0, fmt.Errorf("indexing %s: %w", doc.Name, err)
	}
	return len(chunks), nil
}

// IndexDocumentAsync runs IndexDocument in the background and delivers the
// outcome on the returned channel, so ingestion errors are always
// observable. The channel is buffered; the result is never dropped.
func (s *Service) IndexDocumentAsync(ctx context.Context, doc domain.Document) <-chan IndexResult {
	out := make(chan IndexResult, 1)
	go func() {
		defer close(out)
		n, err := s.IndexDocument(ctx, doc)
		out <- IndexResult{DocumentID: doc.ID, Chunks: n, Err: err}
	}()
	return out
}

// RemoveDocument deletes every index entry for the document and returns the
// number removed. The caller decides whether 0 means "never indexed".
func (s *Service) RemoveDocument(documentID string) (int, error) {
	s.mu.Lock()
	delete(s.status, documentID)
	s.mu.Unlock()
	return s.store.DeleteByDocument(documentID)
}

// Status reports where a document sits in the ingestion state machine.
func (s *Service) Status(documentID string) (DocumentStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.status[documentID]
	return st, ok
}

func (s *Service) setStatus(documentID string, st DocumentStatus) {
	s.mu.Lock()
	s.status[documentID] = st
	s.mu.Unlock()
}

// SearchRelevantChunks embeds the query, searches the index, drops results
// below the similarity threshold and applies the topic guard: when the
// query yields topic tokens, only results mentioning at least one token in
// their document name or content survive. If tokens exist but nothing
// survives, the result is empty rather than falling back to unrelated
// documents.
func (s *Service) SearchRelevantChunks(ctx context.Context, query string, limit int) ([]domain.RetrievedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = s.opts.TopK
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	results, err := s.store.Search(vector, limit)
	if err != nil {
		return nil, err
	}

	filtered := results[:0]
	for _, r := range results {
		if r.Score >= s.opts.SimilarityThreshold {
			filtered = append(filtered, r)
		}
	}
	results = filtered

	if !s.opts.DisableTopicGuard {
		if tokens := s.topics.Extract(query); len(tokens) > 0 {
			results = filterByTopic(results, tokens)
		}
	}

	chunks := make([]domain.RetrievedChunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, domain.RetrievedChunk{
			DocumentID:   r.Entry.DocumentID,
			DocumentName: r.Entry.DocumentName,
			Section:      r.Entry.Section,
			Content:      r.Entry.Content,
			Score:        r.Score,
		})
	}
	return chunks, nil
}

func filterByTopic(results []domain.SearchResult, tokens []string) []domain.SearchResult {
	kept := results[:0]
	for _, r := range results {
		name := strings.ToLower(r.Entry.DocumentName)
		content := strings.ToLower(r.Entry.Content)
		for _, tok := range tokens {
			if strings.Contains(name, tok) || strings.Contains(content, tok) {
				kept = append(kept, r)
				break
			}
		}
	}
	return kept
}

// GenerateResponse retrieves relevant chunks, builds the generation prompt,
// calls the completion provider and attaches confidence and source
// attributions to the answer.
func (s *Service) GenerateResponse(ctx context.Context, query string, history []domain.Message) (domain.RetrievalResponse, error) {
	if strings.TrimSpace(query) == "" {
		return domain.RetrievalResponse{}, domain.ErrEmptyQuery
	}
	chunks, err := s.SearchRelevantChunks(ctx, query, s.opts.TopK)
	if err != nil {
		return domain.RetrievalResponse{}, err
	}

	prompt := buildPrompt(query, chunks, history, s.opts.HistoryWindow)
	content, err := s.completer.Complete(ctx, prompt, s.opts.Completion)
	if err != nil {
		return domain.RetrievalResponse{}, fmt.Errorf("generating response: %w", err)
	}

	confidence := s.confidence(len(chunks))
	if confidence < s.opts.ConfidenceThreshold {
		content += "\n\n" + uncertaintyNotice
	}

	return domain.RetrievalResponse{
		Content:    content,
		Sources:    s.sources(chunks),
		Confidence: confidence,
	}, nil
}

// confidence is 0.1 with no retrieved chunks, otherwise climbs from 0.4
// toward the 0.9 cap as the retrieved count approaches TopK.
func (s *Service) confidence(chunkCount int) float64 {
	if chunkCount == 0 {
		return 0.1
	}
	ratio := float64(chunkCount) / float64(s.opts.TopK)
	if ratio > 1 {
		ratio = 1
	}
	return 0.4 + ratio*0.5
}

// sources builds one attribution per distinct document in first-seen order.
func (s *Service) sources(chunks []domain.RetrievedChunk) []domain.Source {
	var out []domain.Source
	seen := make(map[string]struct{}, len(chunks))
	for _, chunk := range chunks {
		if _, ok := seen[chunk.DocumentID]; ok {
			continue
		}
		seen[chunk.DocumentID] = struct{}{}
		out = append(out, domain.Source{
			DocumentID:   chunk.DocumentID,
			DocumentName: chunk.DocumentName,
			Excerpt:      excerpt(chunk.Content, s.opts.ExcerptLength),
		})
	}
	return out
}

// excerpt truncates on a rune boundary so multi-byte content stays valid.
func excerpt(content string, maxLen int) string {
	if len(content) <= maxLen {
		return content
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return strings.TrimSpace(content[:cut]) + "..."
}
