package extract

import (
	"fmt"
	"strings"

	"docchat/internal/domain"
)

// Result is the outcome of extracting text from a raw document.
type Result struct {
	Text     string
	Title    string
	Sections []domain.Section // ordered by offset into Text
	Pages    int              // PDF only
}

// Extractor converts raw document bytes into plain text plus metadata.
type Extractor interface {
	Extract(raw []byte) (Result, error)
}

// ForType returns the adapter for a document type. Unknown types are a
// parse failure, not a crash.
func ForType(docType string) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(docType)) {
	case "markdown", "md":
		return Markdown{}, nil
	case "text", "txt", "plain", "":
		return PlainText{}, nil
	case "pdf":
		return PDF{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported document type %q", domain.ErrParse, docType)
	}
}

// TypeForName guesses the document type from a file name extension.
func TypeForName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".md"), strings.HasSuffix(lower, ".markdown"):
		return "markdown"
	case strings.HasSuffix(lower, ".pdf"):
		return "pdf"
	default:
		return "text"
	}
}
