package memory

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"docchat/internal/domain"
)

// Index is an in-memory vector index using exact brute-force cosine search.
// A primary map keys entries by id; a secondary set-valued map groups entry
// ids by document id so a document's entries can be purged in one call.
// One lock guards both maps; the raw maps never leave this struct.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   map[string]domain.IndexEntry
	byDoc     map[string]map[string]struct{}
}

func New() *Index {
	return &Index{
		entries: make(map[string]domain.IndexEntry),
		byDoc:   make(map[string]map[string]struct{}),
	}
}

// Insert stores one entry. The first inserted entry fixes the index
// dimensionality; later entries with a different vector length are rejected.
func (ix *Index) Insert(entry domain.IndexEntry) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.insertLocked(entry)
}

// InsertMany stores entries in order, stopping at the first failure.
func (ix *Index) InsertMany(entries []domain.IndexEntry) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for i := range entries {
		if err := ix.insertLocked(entries[i]); err != nil {
			return err
		}
	}
	return nil
}

func (ix *Index) insertLocked(entry domain.IndexEntry) error {
	if len(entry.Embedding) == 0 {
		return fmt.Errorf("%w: empty vector", domain.ErrDimensionMismatch)
	}
	if ix.dimension == 0 {
		ix.dimension = len(entry.Embedding)
	} else if len(entry.Embedding) != ix.dimension {
		return fmt.Errorf("%w: got %d, index holds %d", domain.ErrDimensionMismatch, len(entry.Embedding), ix.dimension)
	}
	ix.entries[entry.ID] = entry
	ids, ok := ix.byDoc[entry.DocumentID]
	if !ok {
		ids = make(map[string]struct{})
		ix.byDoc[entry.DocumentID] = ids
	}
	ids[entry.ID] = struct{}{}
	return nil
}

// Search scores the query vector against every stored entry and returns the
// top k by descending cosine similarity. Ties fall in iteration order.
func (ix *Index) Search(vector []float64, k int) ([]domain.SearchResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.dimension != 0 && len(vector) != ix.dimension {
		return nil, fmt.Errorf("%w: query has %d, index holds %d", domain.ErrDimensionMismatch, len(vector), ix.dimension)
	}
	if k <= 0 {
		k = 5
	}
	results := make([]domain.SearchResult, 0, len(ix.entries))
	for _, entry := range ix.entries {
		results = append(results, domain.SearchResult{
			Entry: entry,
			Score: Cosine(vector, entry.Embedding),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// DeleteByID removes one entry, pruning its document's id set when the set
// becomes empty. Reports whether an entry was removed.
func (ix *Index) DeleteByID(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	entry, ok := ix.entries[id]
	if !ok {
		return false
	}
	delete(ix.entries, id)
	if ids, ok := ix.byDoc[entry.DocumentID]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(ix.byDoc, entry.DocumentID)
		}
	}
	return true
}

// DeleteByDocument removes every entry belonging to the document and returns
// the number removed. Absent documents yield 0.
func (ix *Index) DeleteByDocument(documentID string) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ids, ok := ix.byDoc[documentID]
	if !ok {
		return 0, nil
	}
	for id := range ids {
		delete(ix.entries, id)
	}
	delete(ix.byDoc, documentID)
	return len(ids), nil
}

func (ix *Index) GetByID(id string) (domain.IndexEntry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	entry, ok := ix.entries[id]
	return entry, ok
}

// GetByDocument returns copies of the document's entries in chunk order.
func (ix *Index) GetByDocument(documentID string) []domain.IndexEntry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ids, ok := ix.byDoc[documentID]
	if !ok {
		return nil
	}
	entries := make([]domain.IndexEntry, 0, len(ids))
	for id := range ids {
		entries = append(entries, ix.entries[id])
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ChunkIndex < entries[j].ChunkIndex })
	return entries
}

func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Clear drops every entry and resets the dimensionality.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = make(map[string]domain.IndexEntry)
	ix.byDoc = make(map[string]map[string]struct{})
	ix.dimension = 0
}

// Cosine returns dot(a,b) / (|a|*|b|), or 0 when either vector has zero
// magnitude. Callers guarantee equal lengths.
func Cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
