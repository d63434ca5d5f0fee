package index

import "docchat/internal/domain"

// Store is the index port the retriever depends on. The in-memory
// implementation is the default; the qdrant adapter is config-selected.
type Store interface {
	Insert(entry domain.IndexEntry) error
	InsertMany(entries []domain.IndexEntry) error
	Search(vector []float64, k int) ([]domain.SearchResult, error)
	DeleteByDocument(documentID string) (int, error)
	Clear()
}
