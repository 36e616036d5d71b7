package summary

import (
	"strings"
	"testing"

	"github.com/phrazzld/summarizer-api/internal/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Parsed
	}{
		{
			name: "fully labeled response",
			response: "HEADLINE: Markets Rally On Earnings\n\n" +
				"CATEGORIES: Business, News\n\n" +
				"SUMMARY:\nStocks rose sharply.",
			want: Parsed{
				Headline:   "Markets Rally On Earnings",
				Summary:    "Stocks rose sharply.",
				Categories: gate.Categorization{Primary: "business", Secondary: "news", Confidence: 90},
			},
		},
		{
			name:     "unlabeled response becomes the body",
			response: "Just a plain summary without any labels.",
			want: Parsed{
				Summary:    "Just a plain summary without any labels.",
				Categories: gate.Categorization{Primary: "general", Secondary: "informational", Confidence: 50},
			},
		},
		{
			name: "single category gets general as secondary",
			response: "HEADLINE: Title\n\n" +
				"CATEGORIES: [Science]\n\n" +
				"SUMMARY:\nBody.",
			want: Parsed{
				Headline:   "Title",
				Summary:    "Body.",
				Categories: gate.Categorization{Primary: "science", Secondary: "general", Confidence: 90},
			},
		},
		{
			name: "missing categories fall back to defaults",
			response: "HEADLINE: Title\n\n" +
				"SUMMARY:\nBody.",
			want: Parsed{
				Headline:   "Title",
				Summary:    "Body.",
				Categories: gate.Categorization{Primary: "general", Secondary: "informational", Confidence: 50},
			},
		},
		{
			name: "multi paragraph summary is kept whole",
			response: "HEADLINE: Title\n\n" +
				"CATEGORIES: Health, Science\n\n" +
				"SUMMARY:\nFirst paragraph.\n\nSecond paragraph.",
			want: Parsed{
				Headline:   "Title",
				Summary:    "First paragraph.\n\nSecond paragraph.",
				Categories: gate.Categorization{Primary: "health", Secondary: "science", Confidence: 90},
			},
		},
		{
			name: "summary label on its own section",
			response: "HEADLINE: Title\r\n\r\n" +
				"CATEGORIES: Sports, Entertainment\r\n\r\n" +
				"SUMMARY:\r\n\r\nBody text.",
			want: Parsed{
				Headline:   "Title",
				Summary:    "Body text.",
				Categories: gate.Categorization{Primary: "sports", Secondary: "entertainment", Confidence: 90},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseResponse(tc.response))
		})
	}
}

func TestRenderPrompt(t *testing.T) {
	settings := Settings{Length: 30, Tone: "casual"}

	prompt, err := renderPrompt(directTemplate, "Content <b>with</b> & markup", settings)
	require.NoError(t, err)

	assert.Contains(t, prompt, "casual summaries")
	assert.Contains(t, prompt, "approximately 30% of the original length")
	assert.Contains(t, prompt, strings.Join(ModelCategories, ", "))
	assert.Contains(t, prompt, "HEADLINE:")
	assert.Contains(t, prompt, "CATEGORIES:")
	assert.Contains(t, prompt, "SUMMARY:")
	assert.True(t, strings.HasSuffix(prompt, "Content <b>with</b> & markup"), "content must not be escaped")

	chunkPrompt, err := renderPrompt(chunkTemplate, "piece of text", settings)
	require.NoError(t, err)
	assert.Contains(t, chunkPrompt, "casual tone")
	assert.NotContains(t, chunkPrompt, "HEADLINE:")

	combinePrompt, err := renderPrompt(combineTemplate, "part one\n\npart two", settings)
	require.NoError(t, err)
	assert.Contains(t, combinePrompt, "section summaries")
	assert.Contains(t, combinePrompt, "part one\n\npart two")
}
