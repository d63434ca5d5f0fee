package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"docchat/internal/domain"
)

// PDF extracts plain text from PDF bytes. Corrupt, encrypted or image-only
// input surfaces a descriptive parse failure instead of crashing the
// ingestion pipeline.
type PDF struct{}

func (PDF) Extract(raw []byte) (res Result, err error) {
	if len(raw) == 0 {
		return Result{}, fmt.Errorf("%w: empty pdf input", domain.ErrParse)
	}
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = fmt.Errorf("%w: malformed pdf: %v", domain.ErrParse, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading pdf: %v", domain.ErrParse, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return Result{}, fmt.Errorf("%w: extracting pdf text: %v", domain.ErrParse, err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading pdf text: %v", domain.ErrParse, err)
	}
	text := collapseBlankLines(normalizeLineEndings(string(out)))
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("%w: pdf contains no extractable text (image-only or encrypted)", domain.ErrParse)
	}
	res = Result{Text: text, Pages: reader.NumPage()}
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			res.Title = titleGuess(trimmed)
			break
		}
	}
	return res, nil
}
