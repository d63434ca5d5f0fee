package segmenter

import (
	"regexp"
	"strings"

	"docchat/internal/domain"
)

// Config controls window sizing. Zero values fall back to defaults.
type Config struct {
	TargetSize int // window size in characters (default 1000)
	Overlap    int // characters shared between adjacent chunks (default 200)
	MinSize    int // chunks shorter than this are discarded (default 100)
}

// Segmenter splits extracted document text into overlapping chunks whose
// right edges snap to natural boundaries: paragraph breaks first, then
// sentence ends, then whitespace.
type Segmenter struct {
	target  int
	overlap int
	minSize int
}

// sentence terminator followed by the start of a new sentence
var sentenceEndRe = regexp.MustCompile(`[.!?]\s+\p{Lu}`)

func New(cfg Config) *Segmenter {
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = 1000
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap == 0 {
		cfg.Overlap = 200
	}
	if cfg.Overlap >= cfg.TargetSize {
		cfg.Overlap = cfg.TargetSize / 2
	}
	if cfg.MinSize <= 0 {
		cfg.MinSize = 100
	}
	return &Segmenter{target: cfg.TargetSize, overlap: cfg.Overlap, minSize: cfg.MinSize}
}

// Segment splits text into chunks without section tagging.
func (s *Segmenter) Segment(text string) []domain.Chunk {
	return s.SegmentWithSections(text, nil)
}

// SegmentWithSections splits text into chunks and tags each chunk with the
// latest section whose offset precedes the chunk's position in text.
// Chunks before the first section stay untagged.
func (s *Segmenter) SegmentWithSections(text string, sections []domain.Section) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	// Short documents never get split, even below MinSize.
	if len(text) <= s.target {
		return []domain.Chunk{{
			Content: strings.TrimSpace(text),
			Index:   0,
			Section: sectionAt(sections, 0),
		}}
	}

	var chunks []domain.Chunk
	pos := 0
	idx := 0
	for pos < len(text) {
		end := pos + s.target
		if end >= len(text) {
			end = len(text)
		} else {
			end = s.snap(text, pos, end)
		}

		piece := strings.TrimSpace(text[pos:end])
		if len(piece) >= s.minSize {
			chunks = append(chunks, domain.Chunk{
				Content: piece,
				Index:   idx,
				Section: sectionAt(sections, pos),
			})
			idx++
		}
		// Too-short pieces are dropped; the overlap folds their content
		// into the next window.

		if end == len(text) {
			break
		}
		step := (end - pos) - s.overlap
		if step < 1 {
			// Snapping shrank the window below the overlap. Jump to the
			// snapped edge instead of crawling one character at a time,
			// otherwise the same content lands in more than two chunks.
			step = end - pos
			if step < 1 {
				step = 1
			}
		}
		pos += step
	}
	return chunks
}

// snap moves the window's right edge to the best boundary in the trailing
// half of the window. Boundary preference: paragraph break, sentence end,
// whitespace. Falls back to the raw edge.
func (s *Segmenter) snap(text string, start, end int) int {
	half := start + (end-start)/2
	window := text[half:end]

	if i := strings.LastIndex(window, "\n\n"); i >= 0 {
		return half + i + 2
	}
	if locs := sentenceEndRe.FindAllStringIndex(window, -1); len(locs) > 0 {
		// cut right after the terminator of the last full sentence
		return half + locs[len(locs)-1][0] + 1
	}
	if i := strings.LastIndexAny(window, " \t\n"); i >= 0 {
		return half + i + 1
	}
	return end
}

func sectionAt(sections []domain.Section, offset int) string {
	title := ""
	for _, sec := range sections {
		if sec.Offset > offset {
			break
		}
		title = sec.Title
	}
	return title
}
