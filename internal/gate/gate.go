// Package gate decides whether content may be summarized by matching it
// against keyword lists, and assigns a coarse topic categorization.
//
// Only the "inappropriate" list can block content. Hits on any other list are
// reported as advisory warnings.
package gate

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// Names of the filter lists with special meaning.
const (
	FilterInappropriate = "inappropriate"
)

// Fallback categories assigned to short or unclassifiable content.
const (
	CategoryGeneral       = "general"
	CategoryInformational = "informational"
)

// DefaultThreshold is the number of distinct inappropriate keywords that
// causes rejection outside strict mode.
const DefaultThreshold = 3

// minCategorizedWords is the word count below which the fallback
// categories are always mixed in.
const minCategorizedWords = 20

// Config holds the gate policy.
type Config struct {
	Lists Lists

	// Threshold is the inappropriate-keyword count that rejects content.
	// Zero or negative selects DefaultThreshold.
	Threshold int

	// StrictDefault forces strict mode for every evaluation.
	StrictDefault bool
}

// Warning is an advisory finding that never blocks content.
type Warning struct {
	Type     string   `json:"type"`
	Message  string   `json:"message"`
	Keywords []string `json:"keywords"`
}

// Categorization is the topic assignment for a piece of content.
type Categorization struct {
	Primary    string `json:"primary_category"`
	Secondary  string `json:"secondary_category"`
	Confidence int    `json:"confidence"`
}

// Verdict is the outcome of evaluating content.
type Verdict struct {
	Allowed    bool                `json:"allowed"`
	Reason     string              `json:"reason,omitempty"`
	Warning    bool                `json:"warning"`
	Hits       map[string][]string `json:"detected_keywords"`
	Warnings   []Warning           `json:"warnings"`
	Categories Categorization      `json:"categories"`
}

type keywordMatcher struct {
	keyword string
	pattern *regexp.Regexp
}

// Gate evaluates content against keyword lists. It is immutable after
// construction and safe for concurrent use.
type Gate struct {
	filters       map[string][]keywordMatcher
	filterNames   []string
	categories    []categoryIndex
	threshold     int
	strictDefault bool
	logger        *slog.Logger
}

type categoryIndex struct {
	name  string
	words map[string]struct{}
}

var wordPattern = regexp.MustCompile(`\w+`)

// New compiles the keyword lists into a Gate.
func New(cfg Config, logger *slog.Logger) (*Gate, error) {
	if logger == nil {
		logger = slog.Default()
	}

	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	g := &Gate{
		filters:       make(map[string][]keywordMatcher, len(cfg.Lists.Filters)),
		threshold:     threshold,
		strictDefault: cfg.StrictDefault,
		logger:        logger.With("component", "content_gate"),
	}

	for name, keywords := range cfg.Lists.Filters {
		matchers := make([]keywordMatcher, 0, len(keywords))
		for _, kw := range keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("%w: keyword %q in %s: %v", ErrInvalidLists, kw, name, err)
			}
			matchers = append(matchers, keywordMatcher{keyword: kw, pattern: re})
		}
		g.filters[name] = matchers
		g.filterNames = append(g.filterNames, name)
	}
	sort.Strings(g.filterNames)

	for _, c := range cfg.Lists.Categories {
		idx := categoryIndex{name: c.Name, words: make(map[string]struct{}, len(c.Keywords))}
		for _, kw := range c.Keywords {
			idx.words[strings.ToLower(kw)] = struct{}{}
		}
		g.categories = append(g.categories, idx)
	}

	return g, nil
}

// Threshold returns the non-strict rejection threshold.
func (g *Gate) Threshold() int {
	return g.threshold
}

// DetectKeywords returns the keywords found in content per filter list. With
// no names it checks every list. Lists without matches are omitted.
func (g *Gate) DetectKeywords(content string, names ...string) map[string][]string {
	if len(names) == 0 {
		names = g.filterNames
	}

	detected := make(map[string][]string)
	for _, name := range names {
		var matches []string
		for _, m := range g.filters[name] {
			if m.pattern.MatchString(content) {
				matches = append(matches, m.keyword)
			}
		}
		if len(matches) > 0 {
			detected[name] = matches
		}
	}
	return detected
}

// Evaluate applies the appropriateness policy to content. Strict mode, or a
// gate configured with StrictDefault, rejects on the first inappropriate hit.
func (g *Gate) Evaluate(content string, strict bool) Verdict {
	hits := g.DetectKeywords(content)
	inappropriate := hits[FilterInappropriate]

	v := Verdict{
		Allowed:    true,
		Hits:       hits,
		Warnings:   []Warning{},
		Categories: g.Categorize(content),
	}

	threshold := g.threshold
	if strict || g.strictDefault {
		threshold = 1
	}

	switch {
	case len(inappropriate) == 0:
	case len(inappropriate) >= threshold:
		v.Allowed = false
		if threshold == 1 {
			v.Reason = "Content contains inappropriate keywords"
		} else {
			v.Reason = "Content contains multiple inappropriate keywords"
		}
	default:
		v.Warning = true
		v.Reason = "Content contains some potentially inappropriate keywords"
		v.Warnings = append(v.Warnings, Warning{
			Type:     FilterInappropriate,
			Message:  v.Reason,
			Keywords: inappropriate,
		})
	}

	for _, name := range g.filterNames {
		if name == FilterInappropriate {
			continue
		}
		keywords, ok := hits[name]
		if !ok {
			continue
		}
		v.Warnings = append(v.Warnings, Warning{
			Type:     name,
			Message:  fmt.Sprintf("Content contains %s keywords: %s", name, strings.Join(keywords, ", ")),
			Keywords: keywords,
		})
	}

	if !v.Allowed {
		g.logger.Info("content rejected by gate",
			"inappropriate_hits", len(inappropriate),
			"threshold", threshold)
	}

	return v
}

type scored struct {
	name  string
	score float64
}

// Categorize scores each category by the number of content words in its
// keyword set. Primary and secondary are the two highest scores; confidence
// is the primary share of the total, as a percentage.
func (g *Gate) Categorize(content string) Categorization {
	words := wordPattern.FindAllString(strings.ToLower(content), -1)

	var scores []scored
	for _, c := range g.categories {
		n := 0
		for _, w := range words {
			if _, ok := c.words[w]; ok {
				n++
			}
		}
		if n > 0 {
			scores = append(scores, scored{name: c.name, score: float64(n)})
		}
	}

	if len(scores) == 0 || len(words) < minCategorizedWords {
		if !hasCategory(scores, CategoryGeneral) {
			scores = append(scores, scored{name: CategoryGeneral, score: 1})
		}
		if len(scores) == 1 {
			scores = append(scores, scored{name: CategoryInformational, score: 0.5})
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	var total float64
	for _, s := range scores {
		total += s.score
	}

	result := Categorization{
		Primary:   scores[0].name,
		Secondary: CategoryGeneral,
	}
	if len(scores) > 1 {
		result.Secondary = scores[1].name
	}
	if total > 0 {
		result.Confidence = int(scores[0].score / total * 100)
	}
	return result
}

func hasCategory(scores []scored, name string) bool {
	for _, s := range scores {
		if s.name == name {
			return true
		}
	}
	return false
}
