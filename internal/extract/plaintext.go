package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"docchat/internal/domain"
)

// PlainText normalizes line endings and collapses runs of blank lines. The
// first non-blank line doubles as a title guess.
type PlainText struct{}

func (PlainText) Extract(raw []byte) (Result, error) {
	text := collapseBlankLines(normalizeLineEndings(string(raw)))
	res := Result{Text: text}
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			res.Title = titleGuess(trimmed)
			break
		}
	}
	return res, nil
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func collapseBlankLines(s string) string {
	return blankRunRe.ReplaceAllString(s, "\n\n")
}

func titleGuess(line string) string {
	const maxTitle = 80
	if len(line) <= maxTitle {
		return line
	}
	cut := maxTitle
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return strings.TrimSpace(line[:cut])
}

func sectionAt(title string, offset int) domain.Section {
	return domain.Section{Title: title, Offset: offset}
}
