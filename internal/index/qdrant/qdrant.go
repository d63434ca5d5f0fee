package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"docchat/internal/domain"
)

// Index is a minimal REST client to Qdrant implementing the index.Store
// port. It assumes cosine distance and creates the collection on first
// insert if missing. The in-memory index remains the default backend; this
// one is selected through configuration.
//
// The mutex guards the lazily established dimension; concurrent ingestion
// shares one Index.
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client

	mu        sync.Mutex
	dimension int
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func New(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (ix *Index) Insert(entry domain.IndexEntry) error {
	return ix.InsertMany([]domain.IndexEntry{entry})
}

func (ix *Index) InsertMany(entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	dim, err := ix.ensureCollection(len(entries[0].Embedding))
	if err != nil {
		return err
	}
	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		if len(e.Embedding) != dim {
			return fmt.Errorf("%w: got %d, collection holds %d", domain.ErrDimensionMismatch, len(e.Embedding), dim)
		}
		points[i] = map[string]any{
			"id":     e.ID,
			"vector": e.Embedding,
			"payload": map[string]any{
				"document_id":   e.DocumentID,
				"document_name": e.DocumentName,
				"chunk_index":   e.ChunkIndex,
				"section":       e.Section,
				"content":       e.Content,
			},
		}
	}
	body := map[string]any{"points": points}
	return ix.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", ix.url, ix.collection), body)
}

func (ix *Index) Search(vector []float64, k int) ([]domain.SearchResult, error) {
	ix.mu.Lock()
	dim := ix.dimension
	ix.mu.Unlock()
	if dim != 0 && len(vector) != dim {
		return nil, fmt.Errorf("%w: query has %d, collection holds %d", domain.ErrDimensionMismatch, len(vector), dim)
	}
	if k <= 0 {
		k = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      string         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := ix.postJSON(fmt.Sprintf("%s/collections/%s/points/search", ix.url, ix.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		entry := domain.IndexEntry{ID: r.ID}
		if v, ok := r.Payload["document_id"].(string); ok {
			entry.DocumentID = v
		}
		if v, ok := r.Payload["document_name"].(string); ok {
			entry.DocumentName = v
		}
		if v, ok := r.Payload["chunk_index"].(float64); ok {
			entry.ChunkIndex = int(v)
		}
		if v, ok := r.Payload["section"].(string); ok {
			entry.Section = v
		}
		if v, ok := r.Payload["content"].(string); ok {
			entry.Content = v
		}
		results = append(results, domain.SearchResult{Entry: entry, Score: r.Score})
	}
	return results, nil
}

// DeleteByDocument removes every point whose payload carries the document id.
// The count is taken before deletion; Qdrant's delete response does not
// report one. A failed request is an error, not an absent document.
func (ix *Index) DeleteByDocument(documentID string) (int, error) {
	filter := map[string]any{
		"must": []map[string]any{
			{"key": "document_id", "match": map[string]any{"value": documentID}},
		},
	}
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	countReq := map[string]any{"filter": filter, "exact": true}
	if err := ix.postJSON(fmt.Sprintf("%s/collections/%s/points/count", ix.url, ix.collection), countReq, &countResp); err != nil {
		return 0, fmt.Errorf("counting points for %s: %w", documentID, err)
	}
	if countResp.Result.Count == 0 {
		return 0, nil
	}
	delReq := map[string]any{"filter": filter}
	if err := ix.postJSON(fmt.Sprintf("%s/collections/%s/points/delete?wait=true", ix.url, ix.collection), delReq, nil); err != nil {
		return 0, fmt.Errorf("deleting points for %s: %w", documentID, err)
	}
	return countResp.Result.Count, nil
}

// Clear drops the collection. Best effort.
func (ix *Index) Clear() {
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", ix.url, ix.collection), nil)
	if ix.apiKey != "" {
		req.Header.Set("api-key", ix.apiKey)
	}
	resp, err := ix.client.Do(req)
	if err == nil {
		_ = resp.Body.Close()
	}
	ix.mu.Lock()
	ix.dimension = 0
	ix.mu.Unlock()
}

// ensureCollection creates the collection on first use and returns the
// established dimension. Holding the lock across the PUT serializes creation.
func (ix *Index) ensureCollection(dimension int) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.dimension != 0 {
		return ix.dimension, nil
	}
	if dimension <= 0 {
		return 0, errors.New("invalid dimension")
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 when the collection already exists with the same
	// schema; a schema conflict propagates as an error.
	if err := ix.putJSON(fmt.Sprintf("%s/collections/%s", ix.url, ix.collection), body); err != nil {
		return 0, err
	}
	ix.dimension = dimension
	return dimension, nil
}

func (ix *Index) putJSON(url string, body any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if ix.apiKey != "" {
		req.Header.Set("api-key", ix.apiKey)
	}
	resp, err := ix.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: qdrant PUT %s: %v", domain.ErrProviderUnavailable, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (ix *Index) postJSON(url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if ix.apiKey != "" {
		req.Header.Set("api-key", ix.apiKey)
	}
	resp, err := ix.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: qdrant POST %s: %v", domain.ErrProviderUnavailable, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
