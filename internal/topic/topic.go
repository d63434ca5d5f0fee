package topic

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Extractor derives candidate topic tokens from a raw user query. It is a
// narrow seam on purpose: the keyword heuristic below is language-specific
// and can be swapped for a classifier without touching retrieval logic.
type Extractor interface {
	Extract(query string) []string
}

// KeywordExtractor strips interrogative/instructional phrasing and stopwords
// from a query and keeps the remaining tokens as topic candidates.
type KeywordExtractor struct {
	phrasePatterns []*regexp.Regexp
	tokenPattern   *regexp.Regexp
	stopwords      map[string]struct{}
}

func NewKeywordExtractor() *KeywordExtractor {
	phrases := []string{
		`^(how\s+(do|can|does|should|would)\s+(i|you|we|one)\b|how\s+to\b)`,
		`^(what\s+(is|are|was|were)\b|what's\b|whats\b)`,
		`^(where\s+(is|are|can|do)\b|when\s+(is|are|do|does)\b|why\s+(is|are|do|does)\b)`,
		`^(tell\s+me\s+(about|more\s+about)\b|explain\b|describe\b|summarize\b)`,
		`^(can|could|would|will)\s+you\b`,
		`^(show|give|find)\s+me\b`,
		`^(please|pls)\b`,
		`^(i\s+(want|need|would\s+like)\s+to\s+know\b)`,
	}
	patterns := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		patterns[i] = regexp.MustCompile(p)
	}
	return &KeywordExtractor{
		phrasePatterns: patterns,
		tokenPattern:   regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:      defaultStopwords(),
	}
}

// Extract returns the distinct topic tokens of the query in first-seen
// order: lowercased, longer than two characters, with leading question
// phrasing and stopwords removed. An empty result means the query carries
// no usable topic signal.
func (e *KeywordExtractor) Extract(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	for changed := true; changed; {
		changed = false
		for _, re := range e.phrasePatterns {
			if stripped := strings.TrimSpace(re.ReplaceAllString(q, "")); stripped != q {
				q = stripped
				changed = true
			}
		}
	}
	tokens := e.tokenPattern.FindAllString(q, -1)
	seen := make(map[string]struct{}, len(tokens))
	var out []string
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) <= 2 {
			continue
		}
		if _, isStop := e.stopwords[tok]; isStop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"you", "your", "yours", "me", "my", "mine", "i", "we", "our", "do", "does", "did", "have", "has", "had", "what", "which", "who", "whom", "how", "when", "where", "why", "would", "could", "there", "here", "any", "some", "all", "not", "use", "using", "get", "know", "need", "want", "tell", "please",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
