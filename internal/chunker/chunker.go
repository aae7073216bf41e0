package chunker

import "strings"

// Config controls chunking behavior. Sizes are in characters.
type Config struct {
	ChunkSize    int // Maximum chunk size.
	ChunkOverlap int // Characters carried over between consecutive chunks.
}

// Separator priority for choosing split points: paragraph break first,
// then line break, then word boundary, then a raw character cut.
var separators = []string{"\n\n", "\n", " "}

// Split breaks text into chunks of at most ChunkSize characters. The cut
// point is the last occurrence of the highest-priority separator inside
// the size budget; when no separator qualifies the text is cut at the
// budget itself. Consecutive chunks share ChunkOverlap characters of
// carried-over context. Empty text yields no chunks; text that fits the
// budget yields exactly one.
func Split(text string, cfg Config) []string {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 10
	}

	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= cfg.ChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + cfg.ChunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		cut := start + splitPoint(runes[start:end], cfg.ChunkOverlap)
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - cfg.ChunkOverlap
	}
	return chunks
}

// splitPoint finds the cut position within a full-size window. Cuts at or
// before minPos are rejected so every non-final chunk is long enough to
// carry the configured overlap into its successor.
func splitPoint(window []rune, minPos int) int {
	for _, sep := range separators {
		if i := lastIndex(window, []rune(sep)); i > minPos {
			return i
		}
	}
	return len(window)
}

func lastIndex(window, sep []rune) int {
	for i := len(window) - len(sep); i >= 0; i-- {
		if matchAt(window, i, sep) {
			return i
		}
	}
	return -1
}

func matchAt(window []rune, pos int, sep []rune) bool {
	for j, r := range sep {
		if window[pos+j] != r {
			return false
		}
	}
	return true
}

// CleanText normalizes extracted text before chunking: CRLF to LF,
// common PDF ligatures expanded, horizontal whitespace collapsed, and
// runs of blank lines reduced to a single paragraph break. Paragraph
// structure is preserved so the separator priority stays meaningful.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "ﬁ", "fi")
	text = strings.ReplaceAll(text, "ﬂ", "fl")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	text = strings.Join(lines, "\n")

	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}
