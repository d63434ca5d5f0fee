package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractStripsQuestionPhrasing(t *testing.T) {
	e := NewKeywordExtractor()

	assert.Equal(t, []string{"configure", "webhooks"}, e.Extract("How do I configure webhooks?"))
	assert.Equal(t, []string{"billing"}, e.Extract("what is billing"))
	assert.Equal(t, []string{"deployment", "pipeline"}, e.Extract("Tell me about the deployment pipeline"))
}

func TestExtractStacksPhrasePatterns(t *testing.T) {
	e := NewKeywordExtractor()
	// polite prefix plus a question phrase, stripped in turn
	assert.Equal(t, []string{"authentication"}, e.Extract("Please explain authentication"))
}

func TestExtractDropsStopwordsAndShortTokens(t *testing.T) {
	e := NewKeywordExtractor()
	tokens := e.Extract("is it in the db")
	// "db" is below the length cutoff, the rest are stopwords
	assert.Empty(t, tokens)
}

func TestExtractEmptyForPurePhrasing(t *testing.T) {
	e := NewKeywordExtractor()
	assert.Empty(t, e.Extract("How do you do it?"))
	assert.Empty(t, e.Extract(""))
	assert.Empty(t, e.Extract("   "))
}

func TestExtractLowercasesAndDeduplicates(t *testing.T) {
	e := NewKeywordExtractor()
	assert.Equal(t, []string{"kafka"}, e.Extract("Kafka KAFKA kafka"))
}

func TestExtractKeepsFirstSeenOrder(t *testing.T) {
	e := NewKeywordExtractor()
	assert.Equal(t, []string{"upgrade", "postgres", "cluster"}, e.Extract("how do I upgrade the postgres cluster"))
}
