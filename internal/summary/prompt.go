package summary

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/phrazzld/summarizer-api/internal/gate"
	"github.com/phrazzld/summarizer-api/internal/generation"
)

// Generation settings for the structured (final) prompt and the per-chunk
// prompt.
var (
	finalOptions = generation.Options{Temperature: 0.7, MaxOutputTokens: 1500}
	chunkOptions = generation.Options{Temperature: 0.5, MaxOutputTokens: 800}
)

// Confidence assigned to categories read from a model response, and to the
// fallback pair used when the response has none.
const (
	modelCategoryConfidence   = 90
	defaultCategoryConfidence = 50
)

// ModelCategories are the categories the model is asked to choose from.
var ModelCategories = []string{
	"technology", "business", "news", "health", "science",
	"politics", "entertainment", "sports", "general",
}

const formatInstructions = `Also create a compelling headline in the {{.Tone}} tone that captures the essence of the content.

Additionally, identify the primary and secondary categories that best describe this content.
Choose from these categories: {{.Categories}}.

Format your response exactly like this:
HEADLINE: [Your headline here]

CATEGORIES: [Primary Category], [Secondary Category]

SUMMARY:
[Your summary here]
`

var (
	directTemplate = template.Must(template.New("direct").Parse(
		`You are an AI assistant that creates {{.Tone}} summaries with headlines and categories.
Create a summary that is approximately {{.Length}}% of the original length.
Maintain the key points while adjusting the length and tone as specified.

` + formatInstructions + `
Please summarize the following text:

{{.Content}}`))

	combineTemplate = template.Must(template.New("combine").Parse(
		`You are an AI assistant that creates {{.Tone}} summaries with headlines and categories.
The following text contains summaries of different sections of a larger document.
Create a cohesive final summary in a {{.Tone}} tone that is approximately {{.Length}}% of the original length.

` + formatInstructions + `
Here are the section summaries to combine:

{{.Content}}`))

	chunkTemplate = template.Must(template.New("chunk").Parse(
		`You are an AI assistant that creates concise summaries.
Summarize the following text in a {{.Tone}} tone, capturing the key points:

{{.Content}}`))
)

type promptData struct {
	Tone       string
	Length     int
	Categories string
	Content    string
}

func renderPrompt(tmpl *template.Template, content string, settings Settings) (string, error) {
	data := promptData{
		Tone:       settings.Tone,
		Length:     settings.Length,
		Categories: strings.Join(ModelCategories, ", "),
		Content:    content,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s prompt template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// Response labels recognized by ParseResponse.
const (
	labelHeadline   = "HEADLINE:"
	labelCategories = "CATEGORIES:"
	labelSummary    = "SUMMARY:"
)

// Parsed is the structured content of a model response.
type Parsed struct {
	Headline   string
	Summary    string
	Categories gate.Categorization
}

// DefaultCategories is used when a response names no categories.
func DefaultCategories() gate.Categorization {
	return gate.Categorization{
		Primary:    gate.CategoryGeneral,
		Secondary:  gate.CategoryInformational,
		Confidence: defaultCategoryConfidence,
	}
}

// ParseResponse extracts the headline, categories and summary body from a
// response laid out as blank-line separated HEADLINE:, CATEGORIES: and
// SUMMARY: sections. Without a HEADLINE: label the whole response is the
// body and the default categories apply.
func ParseResponse(text string) Parsed {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n")
	p := Parsed{Summary: text, Categories: DefaultCategories()}

	if !strings.Contains(text, labelHeadline) {
		return p
	}

	var (
		body          []string
		summaryFound  bool
		categoriesSet bool
	)

	for _, section := range strings.Split(text, "\n\n") {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		switch {
		case summaryFound:
			body = append(body, section)
		case strings.HasPrefix(section, labelHeadline):
			p.Headline = strings.TrimSpace(strings.TrimPrefix(section, labelHeadline))
		case strings.HasPrefix(section, labelCategories):
			if c, ok := parseCategories(strings.TrimPrefix(section, labelCategories)); ok {
				p.Categories = c
				categoriesSet = true
			}
		case strings.HasPrefix(section, labelSummary):
			summaryFound = true
			body = []string{}
			if rest := strings.TrimSpace(strings.TrimPrefix(section, labelSummary)); rest != "" {
				body = append(body, rest)
			}
		default:
			body = append(body, section)
		}
	}

	if len(body) > 0 {
		p.Summary = strings.Join(body, "\n\n")
	}
	if !categoriesSet {
		p.Categories = DefaultCategories()
	}
	return p
}

func parseCategories(line string) (gate.Categorization, bool) {
	var names []string
	for _, part := range strings.Split(line, ",") {
		name := strings.ToLower(strings.Trim(strings.TrimSpace(part), "[]"))
		if name != "" {
			names = append(names, name)
		}
	}

	switch len(names) {
	case 0:
		return gate.Categorization{}, false
	case 1:
		return gate.Categorization{
			Primary:    names[0],
			Secondary:  gate.CategoryGeneral,
			Confidence: modelCategoryConfidence,
		}, true
	default:
		return gate.Categorization{
			Primary:    names[0],
			Secondary:  names[1],
			Confidence: modelCategoryConfidence,
		}, true
	}
}
