// Package extract turns summarization input (plain text, inline HTML or a
// URL to fetch) into normalized plain text plus descriptive metadata.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Common errors returned by the extractor
var (
	ErrNoInput     = errors.New("no content or URL provided")
	ErrInvalidURL  = errors.New("invalid URL format")
	ErrFetchFailed = errors.New("failed to fetch URL")
	ErrParseFailed = errors.New("failed to process content")
)

// maxBodyBytes bounds how much of a fetched page is read.
const maxBodyBytes = 5 << 20

// DefaultUserAgent is sent when fetching pages.
const DefaultUserAgent = "Mozilla/5.0 (compatible; summarizer-api/1.0)"

// Source is the raw input to extract from. URL takes precedence.
type Source struct {
	Content string
	URL     string
	IsHTML  bool
}

// Document is normalized text ready for summarization.
type Document struct {
	Text     string
	Title    string
	URL      string
	Domain   string
	Metadata Metadata
}

// Config holds extractor settings.
type Config struct {
	FetchTimeout time.Duration
	UserAgent    string
}

// Extractor resolves Sources into Documents. It is safe for concurrent use.
type Extractor struct {
	client    *http.Client
	userAgent string
	sanitizer *bluemonday.Policy
	converter *md.Converter
	logger    *slog.Logger
}

// New creates an Extractor.
func New(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Extractor{
		client:    &http.Client{Timeout: cfg.FetchTimeout},
		userAgent: cfg.UserAgent,
		sanitizer: bluemonday.UGCPolicy(),
		converter: newConverter(),
		logger:    logger.With("component", "extractor"),
	}
}

// Extract resolves src into a Document. Empty extracted text is not an
// error here; length policy belongs to the caller.
func (e *Extractor) Extract(ctx context.Context, src Source) (*Document, error) {
	switch {
	case strings.TrimSpace(src.URL) != "":
		return e.fromURL(ctx, strings.TrimSpace(src.URL))
	case strings.TrimSpace(src.Content) != "":
		return e.fromContent(src.Content, src.IsHTML)
	default:
		return nil, ErrNoInput
	}
}

func (e *Extractor) fromContent(content string, isHTML bool) (*Document, error) {
	if isHTML {
		text, err := e.htmlToText(content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
		}
		content = text
	}

	text := Normalize(content)
	return &Document{Text: text, Metadata: Analyze(text)}, nil
}

func (e *Extractor) fromURL(ctx context.Context, rawURL string) (*Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	e.logger.InfoContext(ctx, "fetching URL", "url", u.String())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	title := pageTitle(doc)
	text := Normalize(mainText(doc, u))

	e.logger.InfoContext(ctx, "URL extracted",
		"url", u.String(),
		"title", title,
		"content_length", len(text))

	return &Document{
		Text:     text,
		Title:    title,
		URL:      u.String(),
		Domain:   u.Host,
		Metadata: Analyze(text),
	}, nil
}
