package assembler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

type fakeSessions struct {
	sessions map[string]*domain.Session
	err      error
}

func (f *fakeSessions) Get(id string) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) Save(*domain.Session) error { return nil }

type fakeRetriever struct {
	chunks []domain.RetrievedChunk
	err    error
	limit  int
}

func (f *fakeRetriever) SearchRelevantChunks(_ context.Context, _ string, limit int) ([]domain.RetrievedChunk, error) {
	f.limit = limit
	return f.chunks, f.err
}

func TestAssembleMergesHistoryAndChunks(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]*domain.Session{
		"s1": {ID: "s1", Messages: []domain.Message{
			{Role: "user", Content: "earlier question"},
			{Role: "assistant", Content: "earlier answer"},
		}},
	}}
	retr := &fakeRetriever{chunks: []domain.RetrievedChunk{
		{DocumentID: "d1", DocumentName: "setup.md", Content: "install the binary", Score: 0.8},
		{DocumentID: "d2", DocumentName: "faq.md", Content: "common pitfalls", Score: 0.6},
	}}

	qc, err := Assemble(context.Background(), "s1", "how do I install", sessions, retr, Options{})
	require.NoError(t, err)

	require.Len(t, qc.History, 2)
	assert.Equal(t, "earlier question", qc.History[0].Content)
	require.Len(t, qc.Chunks, 2)

	assert.True(t, strings.HasPrefix(qc.SystemPrompt, "You are a helpful assistant"))
	assert.Contains(t, qc.SystemPrompt, "Knowledge base context:")
	assert.Contains(t, qc.SystemPrompt, "[Source 1: setup.md]\ninstall the binary")
	assert.Contains(t, qc.SystemPrompt, "[Source 2: faq.md]\ncommon pitfalls")
}

func TestAssembleMissingSessionYieldsEmptyHistory(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]*domain.Session{}}

	qc, err := Assemble(context.Background(), "absent", "query", sessions, &fakeRetriever{}, Options{})
	require.NoError(t, err)
	assert.Empty(t, qc.History)
}

func TestAssembleSessionStoreFailurePropagates(t *testing.T) {
	sessions := &fakeSessions{err: errors.New("disk on fire")}

	_, err := Assemble(context.Background(), "s1", "query", sessions, nil, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestAssembleNoSessionStore(t *testing.T) {
	qc, err := Assemble(context.Background(), "", "query", nil, &fakeRetriever{}, Options{})
	require.NoError(t, err)
	assert.Empty(t, qc.History)
}

func TestAssembleNilRetriever(t *testing.T) {
	qc, err := Assemble(context.Background(), "", "query", nil, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, qc.Chunks)
	assert.Equal(t, baseTemplate, qc.SystemPrompt, "no context section without retrieved chunks")
}

func TestAssembleRetrieverFailurePropagates(t *testing.T) {
	retr := &fakeRetriever{err: domain.ErrEmptyQuery}
	_, err := Assemble(context.Background(), "", "", nil, retr, Options{})
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestAssembleMaxChunksDefault(t *testing.T) {
	retr := &fakeRetriever{}
	_, err := Assemble(context.Background(), "", "query", nil, retr, Options{})
	require.NoError(t, err)
	assert.Equal(t, 5, retr.limit)

	_, err = Assemble(context.Background(), "", "query", nil, retr, Options{MaxChunks: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, retr.limit)
}

func TestAssemblePromptOverride(t *testing.T) {
	retr := &fakeRetriever{chunks: []domain.RetrievedChunk{
		{DocumentID: "d1", DocumentName: "setup.md", Content: "install the binary"},
	}}

	qc, err := Assemble(context.Background(), "", "query", nil, retr, Options{PromptOverride: "be terse"})
	require.NoError(t, err)
	assert.Equal(t, "be terse", qc.SystemPrompt)
	assert.Len(t, qc.Chunks, 1, "override replaces the prompt, not the retrieval")
}
