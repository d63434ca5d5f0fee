package extract

import (
	"regexp"
	"strings"

	"docchat/internal/domain"
)

// Markdown strips non-semantic markup (embedded images, horizontal rules)
// while preserving headings and code fences. Headings double as section
// anchors; their offsets point into the extracted text.
type Markdown struct{}

var (
	imageRe   = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	ruleRe    = regexp.MustCompile(`^\s*(-(\s*-){2,}|\*(\s*\*){2,}|_(\s*_){2,})\s*$`)
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
)

func (Markdown) Extract(raw []byte) (Result, error) {
	text := normalizeLineEndings(string(raw))
	var res Result
	var b strings.Builder
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			b.WriteString(line)
			b.WriteString("\n")
			continue
		}
		if !inFence {
			if ruleRe.MatchString(line) {
				continue
			}
			line = imageRe.ReplaceAllString(line, "")
			if m := headingRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				title := strings.TrimSpace(m[2])
				offset := b.Len() + strings.Index(line, title)
				res.Sections = append(res.Sections, sectionAt(title, offset))
				if res.Title == "" {
					res.Title = title
				}
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	res.Text = collapseTrackingSections(b.String(), res.Sections)
	return res, nil
}

// collapseTrackingSections collapses blank-line runs and shifts each section
// offset by the characters removed before it. Heading offsets never fall
// inside a run, so the shift is exact.
func collapseTrackingSections(s string, sections []domain.Section) string {
	runs := blankRunRe.FindAllStringIndex(s, -1)
	removed := 0
	run := 0
	for i := range sections {
		for run < len(runs) && runs[run][1] <= sections[i].Offset {
			removed += (runs[run][1] - runs[run][0]) - 2
			run++
		}
		sections[i].Offset -= removed
	}
	return blankRunRe.ReplaceAllString(s, "\n\n")
}
