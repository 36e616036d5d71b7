package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/phrazzld/summarizer-api/internal/cache"
	"github.com/phrazzld/summarizer-api/internal/chunk"
	"github.com/phrazzld/summarizer-api/internal/extract"
	"github.com/phrazzld/summarizer-api/internal/gate"
	"github.com/phrazzld/summarizer-api/internal/generation"
	"github.com/phrazzld/summarizer-api/internal/task"
)

// Request paths reported to the Recorder.
const (
	PathSync     = "sync"
	PathAsync    = "async"
	PathChunked  = "chunked"
	PathCached   = "cached"
	PathRejected = "rejected"
)

// Extractor turns a request's input into normalized text.
type Extractor interface {
	Extract(ctx context.Context, src extract.Source) (*extract.Document, error)
}

// TaskRunner runs work in the background and reports its status.
type TaskRunner interface {
	Submit(work task.Work, timeout time.Duration) (string, error)
	Status(id string) task.Status
}

// Recorder observes which path each request took.
type Recorder interface {
	SummaryRequest(path string)
}

type nopRecorder struct{}

func (nopRecorder) SummaryRequest(string) {}

// Config holds the size thresholds and budgets of the pipeline.
type Config struct {
	// MinChars is the shortest text accepted for summarization.
	MinChars int

	// AsyncThreshold moves longer text onto a background task.
	AsyncThreshold int

	// CompressThreshold compresses longer text while it waits in the queue.
	CompressThreshold int

	// ChunkThreshold splits longer text and summarizes it piecewise.
	ChunkThreshold int

	ChunkMaxSize int
	ChunkOverlap int

	TaskTimeout  time.Duration
	ChunkTimeout time.Duration

	// CacheTTL is passed to the cache on every store; zero uses the
	// cache's default.
	CacheTTL time.Duration
}

// DefaultConfig returns the thresholds used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MinChars:          50,
		AsyncThreshold:    5000,
		CompressThreshold: 10000,
		ChunkThreshold:    20000,
		ChunkMaxSize:      chunk.DefaultMaxSize,
		ChunkOverlap:      chunk.DefaultOverlap,
		TaskTimeout:       60 * time.Second,
		ChunkTimeout:      300 * time.Second,
	}
}

// Deps are the collaborators of a Service.
type Deps struct {
	Extractor Extractor
	Gate      *gate.Gate
	Cache     *cache.Store
	Generator generation.Generator
	Tasks     TaskRunner
}

// Service orchestrates extraction, gating, caching, generation and
// background execution of summarization requests.
type Service struct {
	config    Config
	extractor Extractor
	gate      *gate.Gate
	cache     *cache.Store
	generator generation.Generator
	tasks     TaskRunner
	recorder  Recorder
	logger    *slog.Logger
}

// NewService creates a Service. Every dependency except Cache is required;
// a nil Cache disables caching.
func NewService(config Config, deps Deps, logger *slog.Logger) (*Service, error) {
	if deps.Extractor == nil {
		return nil, errors.New("extractor cannot be nil")
	}
	if deps.Gate == nil {
		return nil, errors.New("gate cannot be nil")
	}
	if deps.Generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if deps.Tasks == nil {
		return nil, errors.New("task runner cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultConfig()
	if config.MinChars <= 0 {
		config.MinChars = defaults.MinChars
	}
	if config.ChunkMaxSize <= 0 {
		config.ChunkMaxSize = defaults.ChunkMaxSize
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkMaxSize {
		config.ChunkOverlap = 0
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = defaults.TaskTimeout
	}
	if config.ChunkTimeout <= 0 {
		config.ChunkTimeout = defaults.ChunkTimeout
	}

	store := deps.Cache
	if store == nil {
		store = cache.NewStore(nil, 0, logger)
	}

	return &Service{
		config:    config,
		extractor: deps.Extractor,
		gate:      deps.Gate,
		cache:     store,
		generator: deps.Generator,
		tasks:     deps.Tasks,
		recorder:  nopRecorder{},
		logger:    logger.With("component", "summary_service"),
	}, nil
}

// SetRecorder installs a path recorder.
func (s *Service) SetRecorder(r Recorder) {
	if r != nil {
		s.recorder = r
	}
}

// Summarize runs a request through the pipeline. Short content is
// summarized synchronously and returned as a Result. Long content, batch
// requests and oversized content are handed to the task runner and returned
// as a Handle to poll with TaskStatus.
func (s *Service) Summarize(ctx context.Context, req Request) (*Outcome, error) {
	req = req.normalize()
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	doc, err := s.extractor.Extract(ctx, extract.Source{
		Content: req.Content,
		URL:     req.URL,
		IsHTML:  req.IsHTML,
	})
	if err != nil {
		return nil, s.extractionError(err)
	}

	size := utf8.RuneCountInString(doc.Text)
	if size < s.config.MinChars {
		return nil, &ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("content too short to summarize (minimum %d characters)", s.config.MinChars),
		}
	}

	settings := Settings{Length: req.Length, Tone: req.Tone}
	meta := documentMetadata(doc)
	log := s.logger.With("content_length", size, "length", req.Length, "tone", req.Tone)

	if s.config.ChunkThreshold > 0 && size > s.config.ChunkThreshold {
		return s.submitChunked(ctx, doc.Text, req, settings, meta, log)
	}

	compress := s.config.CompressThreshold > 0 && size > s.config.CompressThreshold
	if compress {
		meta.Compressed = true
		meta.OriginalSize = size
	}

	verdict := s.gate.Evaluate(doc.Text, req.Strict)
	if !verdict.Allowed {
		s.recorder.SummaryRequest(PathRejected)
		log.InfoContext(ctx, "summarization request rejected by content gate", "reason", verdict.Reason)
		return nil, &PolicyError{Verdict: verdict}
	}
	categories := verdict.Categories
	meta.ContentCategories = &categories
	warnings := verdict.Warnings

	if req.Batch || (s.config.AsyncThreshold > 0 && size > s.config.AsyncThreshold) {
		payload := doc.Text
		if compress {
			if encoded, err := Compress(doc.Text); err != nil {
				log.WarnContext(ctx, "failed to compress content, queueing uncompressed", "error", err)
				meta.Compressed = false
				meta.OriginalSize = 0
				compress = false
			} else {
				payload = encoded
			}
		}

		work := s.singleShotWork(payload, compress, settings, meta, warnings)
		id, err := s.submit(work, s.config.TaskTimeout)
		if err != nil {
			return nil, err
		}

		s.recorder.SummaryRequest(PathAsync)
		log.InfoContext(ctx, "summarization queued", "task_id", id, "batch", req.Batch, "compressed", compress)
		return &Outcome{Handle: &Handle{
			TaskID:  id,
			Status:  HandleStatus,
			Message: "Summarization task submitted successfully",
		}}, nil
	}

	result, cached, err := s.generateResult(ctx, doc.Text, settings, meta, warnings)
	if err != nil {
		return nil, err
	}
	if cached {
		s.recorder.SummaryRequest(PathCached)
	} else {
		s.recorder.SummaryRequest(PathSync)
	}
	return &Outcome{Result: result}, nil
}

// TaskStatus reports the state of background work submitted by Summarize.
func (s *Service) TaskStatus(id string) StatusView {
	st := s.tasks.Status(id)
	view := StatusView{
		TaskID: id,
		Status: string(st.State),
		Error:  st.Error,
	}
	if !st.CreatedAt.IsZero() {
		created := st.CreatedAt
		view.CreatedAt = &created
	}
	if !st.FinishedAt.IsZero() {
		finished := st.FinishedAt
		view.FinishedAt = &finished
	}
	if r, ok := st.Result.(*Result); ok {
		view.Result = r
	}
	return view
}

// singleShotWork generates one summary in the background. A compressed
// payload is expanded before generation.
func (s *Service) singleShotWork(payload string, compressed bool, settings Settings, meta Metadata, warnings []gate.Warning) task.Work {
	return func(ctx context.Context) (any, error) {
		text := payload
		if compressed {
			var err error
			text, err = Decompress(payload)
			if err != nil {
				return nil, fmt.Errorf("failed to restore queued content: %w", err)
			}
		}

		result, _, err := s.generateResult(ctx, text, settings, meta, warnings)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

// generateResult answers from the cache when possible and otherwise calls
// the generator and caches the parsed result. The cache is always keyed on
// the plain text. The bool reports a cache hit.
func (s *Service) generateResult(ctx context.Context, text string, settings Settings, meta Metadata, warnings []gate.Warning) (*Result, bool, error) {
	var cached Result
	if s.cache.Get(ctx, text, settings.Length, settings.Tone, &cached) {
		cached.Cached = true
		cached.Metadata = meta
		cached.Warnings = nonNilWarnings(warnings)
		return &cached, true, nil
	}

	prompt, err := renderPrompt(directTemplate, text, settings)
	if err != nil {
		return nil, false, err
	}

	start := time.Now()
	response, err := s.generator.Generate(ctx, prompt, finalOptions)
	if err != nil {
		s.logger.ErrorContext(ctx, "summary generation failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return nil, false, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	parsed := ParseResponse(response)
	result := &Result{
		Headline:   parsed.Headline,
		Summary:    parsed.Summary,
		Categories: parsed.Categories,
		Settings:   settings,
		Metadata:   meta,
		Warnings:   nonNilWarnings(warnings),
	}

	s.cache.Put(ctx, text, settings.Length, settings.Tone, result, s.config.CacheTTL)

	s.logger.DebugContext(ctx, "summary generated",
		"duration_ms", time.Since(start).Milliseconds(),
		"summary_length", len(result.Summary))
	return result, false, nil
}

// submit hands work to the task runner, reporting a full queue as a
// retryable backend outage.
func (s *Service) submit(work task.Work, timeout time.Duration) (string, error) {
	id, err := s.tasks.Submit(work, timeout)
	if err == nil {
		return id, nil
	}
	if errors.Is(err, task.ErrQueueFull) || errors.Is(err, task.ErrProcessorStopped) || errors.Is(err, task.ErrQueueClosed) {
		s.logger.Warn("task submission refused", "error", err)
		return "", fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	return "", fmt.Errorf("failed to submit summarization task: %w", err)
}

func (s *Service) extractionError(err error) error {
	switch {
	case errors.Is(err, extract.ErrNoInput):
		return &ValidationError{Field: "content", Message: "no content or URL provided"}
	case errors.Is(err, extract.ErrInvalidURL):
		return &ValidationError{Field: "url", Message: "must be a valid http or https URL"}
	case errors.Is(err, extract.ErrFetchFailed), errors.Is(err, extract.ErrParseFailed):
		s.logger.Warn("content extraction failed", "error", err)
		return &ValidationError{Field: "url", Message: "could not extract content from URL"}
	default:
		return fmt.Errorf("failed to extract content: %w", err)
	}
}

func documentMetadata(doc *extract.Document) Metadata {
	keywords := doc.Metadata.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return Metadata{
		WordCount:          doc.Metadata.WordCount,
		ReadingTimeMinutes: doc.Metadata.ReadingTimeMinutes,
		Keywords:           keywords,
		Title:              doc.Title,
		URL:                doc.URL,
		Domain:             doc.Domain,
	}
}

func nonNilWarnings(w []gate.Warning) []gate.Warning {
	if w == nil {
		return []gate.Warning{}
	}
	return w
}
