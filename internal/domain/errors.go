package domain

import "errors"

var (
	// ErrProviderUnavailable wraps embedding/completion backend failures,
	// including timeouts. Callers surface it; nothing retries internally.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrDimensionMismatch reports a vector whose length disagrees with the
	// vectors already stored in an index. Fatal for the operation.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrParse wraps malformed or unsupported source documents.
	ErrParse = errors.New("parse failure")

	// ErrEmptyQuery rejects empty or whitespace-only queries before they
	// reach retrieval.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrSessionNotFound is returned by SessionStore.Get for unknown ids.
	ErrSessionNotFound = errors.New("session not found")
)
