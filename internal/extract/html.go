package extract

import (
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// minReadableLength is the shortest readability output trusted over the
// plain container fallback.
const minReadableLength = 200

// noiseSelectors are removed before the main content is located.
const noiseSelectors = "head, script, style, noscript, iframe, embed, object, " +
	"nav, footer, header, aside, .ads, .comments, .sidebar"

// contentContainers are tried in order when readability finds too little.
var contentContainers = []string{
	"article", "main", `div[role="main"]`, ".content", "#content", ".post", ".article", "body",
}

// htmlToText sanitizes user-supplied HTML and renders it as markdown-flavored
// text, keeping headings and list structure readable for the model.
func (e *Extractor) htmlToText(raw string) (string, error) {
	safe := e.sanitizer.Sanitize(raw)
	text, err := e.converter.ConvertString(safe)
	if err != nil {
		return "", err
	}
	return text, nil
}

// pageTitle returns the document title, preferring og:title.
func pageTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// mainText extracts the readable body of a fetched page. It strips noise
// elements, runs readability on what remains and falls back to the first
// matching content container when readability yields too little.
func mainText(doc *goquery.Document, pageURL *url.URL) string {
	doc.Find(noiseSelectors).Remove()

	cleaned, err := doc.Html()
	if err == nil && cleaned != "" {
		article, err := readability.FromReader(strings.NewReader(cleaned), pageURL)
		if err == nil {
			var buf strings.Builder
			if err := article.RenderText(&buf); err == nil {
				text := strings.TrimSpace(buf.String())
				if len(text) >= minReadableLength {
					return text
				}
			}
		}
	}

	for _, sel := range contentContainers {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			if text := strings.TrimSpace(s.Text()); text != "" {
				return text
			}
		}
	}

	return strings.TrimSpace(doc.Text())
}

func newConverter() *md.Converter {
	return md.NewConverter("", true, nil)
}
