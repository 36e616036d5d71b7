package extract

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// WordsPerMinute is the reading speed used for reading time estimates.
const WordsPerMinute = 225

const maxKeywords = 10

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "a": {}, "to": {}, "of": {}, "in": {}, "is": {}, "that": {},
	"it": {}, "with": {}, "for": {}, "as": {}, "on": {}, "was": {}, "be": {}, "at": {},
	"this": {}, "from": {}, "have": {}, "were": {}, "they": {}, "their": {}, "there": {},
	"which": {}, "will": {}, "would": {}, "been": {}, "about": {}, "into": {},
}

// Metadata describes text that is about to be summarized.
type Metadata struct {
	WordCount          int      `json:"word_count"`
	ReadingTimeMinutes int      `json:"estimated_reading_time"`
	Keywords           []string `json:"keywords"`
}

// Analyze counts words, estimates reading time (at least one minute) and
// picks the most frequent words longer than three letters as keywords.
// Ties keep first-occurrence order.
func Analyze(text string) Metadata {
	words := wordPattern.FindAllString(text, -1)

	freq := make(map[string]int)
	var order []string
	for _, w := range words {
		w = strings.ToLower(w)
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}

	minutes := int(math.RoundToEven(float64(len(words)) / WordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}

	keywords := order
	if keywords == nil {
		keywords = []string{}
	}

	return Metadata{
		WordCount:          len(words),
		ReadingTimeMinutes: minutes,
		Keywords:           keywords,
	}
}
