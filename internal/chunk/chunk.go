// Package chunk splits oversized text into overlapping windows that end on
// sentence boundaries where possible.
package chunk

import "strings"

// Default sizing used when callers have no configuration of their own.
const (
	DefaultMaxSize = 5000
	DefaultOverlap = 200
)

// Chunk is a window of the original content. Start and End are rune offsets
// into the content, End exclusive.
type Chunk struct {
	Start int
	End   int
	Text  string
}

// Len returns the chunk length in runes.
func (c Chunk) Len() int {
	return c.End - c.Start
}

// Split breaks content into windows of at most maxSize runes, each
// overlapping the previous one by overlap runes. A window that would cut the
// content mid-text is shortened to end just after the last ". ", "! " or "? "
// found past the window midpoint.
//
// Content that fits in one window is returned as a single chunk, so the
// result is never empty. A non-positive maxSize disables splitting.
func Split(content string, maxSize, overlap int) []Chunk {
	runes := []rune(content)
	n := len(runes)

	if maxSize <= 0 || n <= maxSize {
		return []Chunk{{Start: 0, End: n, Text: content}}
	}
	if overlap < 0 {
		overlap = 0
	}

	var chunks []Chunk
	start := 0
	for start < n {
		end := start + maxSize
		if end > n {
			end = n
		}

		if end < n {
			if b := lastBoundary(runes, start, end, maxSize); b > 0 {
				end = b
			}
		}

		chunks = append(chunks, Chunk{Start: start, End: end, Text: string(runes[start:end])})

		if end == n {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// lastBoundary returns the offset just past the right-most sentence
// terminator inside [start, end) that begins after the window midpoint,
// or 0 when there is none.
func lastBoundary(runes []rune, start, end, maxSize int) int {
	for i := end - 2; i >= start; i-- {
		if 2*(i-start) <= maxSize {
			return 0
		}
		if isTerminator(runes[i]) && runes[i+1] == ' ' {
			return i + 2
		}
	}
	return 0
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Reassemble rebuilds the original content from chunks produced by Split,
// dropping the overlapping prefix of every chunk after the first.
func Reassemble(chunks []Chunk) string {
	var b strings.Builder
	covered := 0
	for i, c := range chunks {
		text := []rune(c.Text)
		if i > 0 {
			skip := covered - c.Start
			if skip < 0 {
				skip = 0
			}
			if skip > len(text) {
				skip = len(text)
			}
			text = text[skip:]
		}
		b.WriteString(string(text))
		if c.End > covered {
			covered = c.End
		}
	}
	return b.String()
}

// Texts returns the text of each chunk in order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
