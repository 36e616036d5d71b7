package summary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/summarizer-api/internal/cache"
	"github.com/phrazzld/summarizer-api/internal/extract"
	"github.com/phrazzld/summarizer-api/internal/gate"
	"github.com/phrazzld/summarizer-api/internal/generation"
	"github.com/phrazzld/summarizer-api/internal/mocks"
	"github.com/phrazzld/summarizer-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const structuredResponse = "HEADLINE: Foxes Keep Jumping\n\n" +
	"CATEGORIES: Science, News\n\n" +
	"SUMMARY:\nA fox jumps over a dog, repeatedly."

// filler is neutral prose: it matches no filter keyword.
const filler = "The quick brown fox jumps over the lazy dog. "

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig uses small thresholds so every path is reachable with short
// strings.
func testConfig() Config {
	return Config{
		MinChars:          50,
		AsyncThreshold:    500,
		CompressThreshold: 1000,
		ChunkThreshold:    2000,
		ChunkMaxSize:      800,
		ChunkOverlap:      50,
		TaskTimeout:       5 * time.Second,
		ChunkTimeout:      10 * time.Second,
		CacheTTL:          time.Minute,
	}
}

type fixture struct {
	service   *Service
	generator *mocks.MockGenerator
	backend   *cache.MemoryBackend
	recorder  *pathRecorder
}

func newFixture(t *testing.T, gen *mocks.MockGenerator) *fixture {
	t.Helper()
	logger := testLogger()

	g, err := gate.New(gate.Config{Lists: gate.DefaultLists()}, logger)
	require.NoError(t, err)

	backend, err := cache.NewMemoryBackend(64)
	require.NoError(t, err)

	processor := task.NewProcessor(task.ProcessorConfig{
		WorkerCount:    2,
		QueueSize:      10,
		DefaultTimeout: 5 * time.Second,
	}, logger)
	require.NoError(t, processor.Start())
	t.Cleanup(processor.Stop)

	svc, err := NewService(testConfig(), Deps{
		Extractor: extract.New(extract.Config{FetchTimeout: time.Second}, logger),
		Gate:      g,
		Cache:     cache.NewStore(backend, time.Hour, logger),
		Generator: gen,
		Tasks:     processor,
	}, logger)
	require.NoError(t, err)

	rec := &pathRecorder{}
	svc.SetRecorder(rec)

	return &fixture{service: svc, generator: gen, backend: backend, recorder: rec}
}

type pathRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *pathRecorder) SummaryRequest(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *pathRecorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// repeatTo repeats s until the result is at least n characters long.
func repeatTo(s string, n int) string {
	return strings.Repeat(s, n/len(s)+1)
}

func waitForTerminal(t *testing.T, svc *Service, id string) StatusView {
	t.Helper()
	var view StatusView
	require.Eventually(t, func() bool {
		view = svc.TaskStatus(id)
		return task.State(view.Status).IsTerminal()
	}, 5*time.Second, 10*time.Millisecond, "task %s never finished", id)
	return view
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(testConfig(), Deps{}, testLogger())
	assert.Error(t, err)
}

func TestSummarizeShortContentIsRejectedWithoutGeneration(t *testing.T) {
	f := newFixture(t, mocks.NewMockGeneratorWithResponse(structuredResponse))

	for _, content := range []string{"tiny", "A sentence that is still too short.", strings.Repeat("a", 49)} {
		_, err := f.service.Summarize(context.Background(), Request{Content: content})

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation), "content %q", content)
		assert.False(t, errors.Is(err, ErrPolicyRejected))
		assert.False(t, errors.Is(err, ErrBackendUnavailable))
	}

	assert.Zero(t, f.generator.CallCount())
}

func TestSummarizeInvalidParameters(t *testing.T) {
	f := newFixture(t, mocks.NewMockGeneratorWithResponse(structuredResponse))
	content := repeatTo(filler, 100)

	tests := []struct {
		name string
		req  Request
	}{
		{name: "no input", req: Request{}},
		{name: "length below range", req: Request{Content: content, Length: 5}},
		{name: "length above range", req: Request{Content: content, Length: 95}},
		{name: "unknown tone", req: Request{Content: content, Tone: "angry"}},
		{name: "unsupported url scheme", req: Request{URL: "ftp://example.com/file.txt"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Summarize(context.Background(), tc.req)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}

	assert.Zero(t, f.generator.CallCount())
}

func TestSummarizeSynchronousAndCached(t *testing.T) {
	f := newFixture(t, mocks.NewMockGeneratorWithResponse(structuredResponse))
	content := repeatTo(filler, 200)
	req := Request{Content: content, Length: 30, Tone: "Casual"}

	outcome, err := f.service.Summarize(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, outcome.Result)
	assert.Nil(t, outcome.Handle)

	result := outcome.Result
	assert.Equal(t, "Foxes Keep Jumping", result.Headline)
	assert.Equal(t, "A fox jumps over a dog, repeatedly.", result.Summary)
	assert.Equal(t, gate.Categorization{Primary: "science", Secondary: "news", Confidence: 90}, result.Categories)
	assert.Equal(t, Settings{Length: 30, Tone: "casual"}, result.Settings)
	assert.False(t, result.Cached)
	assert.Positive(t, result.Metadata.WordCount)
	assert.Equal(t, 1, result.Metadata.ReadingTimeMinutes)
	assert.NotNil(t, result.Metadata.ContentCategories)
	assert.NotNil(t, result.Warnings)

	require.Equal(t, 1, f.generator.CallCount())
	opts := f.generator.RecordedOptions()[0]
	assert.Equal(t, generation.Options{Temperature: 0.7, MaxOutputTokens: 1500}, opts)
	assert.Contains(t, f.generator.Prompts()[0], "approximately 30%")

	again, err := f.service.Summarize(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, again.Result)
	assert.True(t, again.Result.Cached)
	assert.Equal(t, result.Summary, again.Result.Summary)
	assert.Equal(t, result.Metadata, again.Result.Metadata)
	assert.Equal(t, 1, f.generator.CallCount(), "cache hit must not call the generator")

	// A different tone is a different cache entry.
	req.Tone = "academic"
	other, err := f.service.Summarize(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, other.Result.Cached)
	assert.Equal(t, 2, f.generator.CallCount())

	assert.Equal(t, []string{PathSync, PathCached, PathSync}, f.recorder.Paths())
}

func TestSummarizePolicyRejection(t *testing.T) {
	f := newFixture(t, mocks.NewMockGeneratorWithResponse(structuredResponse))

	t.Run("three inappropriate keywords", func(t *testing.T) {
		content := "This text has obscenity, profanity and explicit language. " + repeatTo(filler, 200)

		_, err := f.service.Summarize(context.Background(), Request{Content: content})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrPolicyRejected))

		var perr *PolicyError
		require.True(t, errors.As(err, &perr))
		assert.False(t, perr.Verdict.Allowed)
		assert.Len(t, perr.Verdict.Hits[gate.FilterInappropriate], 3)
	})

	t.Run("strict mode rejects a single keyword", func(t *testing.T) {
		content := "This text has explicit language. " + repeatTo(filler, 200)

		_, err := f.service.Summarize(context.Background(), Request{Content: content, Strict: true})
		assert.True(t, errors.Is(err, ErrPolicyRejected))

		outcome, err := f.service.Summarize(context.Background(), Request{Content: content})
		require.NoError(t, err, "a single keyword only warns outside strict mode")
		require.NotNil(t, outcome.Result)
	})

	assert.Equal(t, 1, f.generator.CallCount())
}

func TestSummarizeSurfacesWarnings(t *testing.T) {
	f := newFixture(t, mocks.NewMockGeneratorWithResponse(structuredResponse))
	content := "This confidential memo is secret. " + repeatTo(filler, 200)

	outcome, err := f.service.Summarize(context.Background(), Request{Content: content})
	require.NoError(t, err)
	require.Len(t, outcome.Result.Warnings, 1)
	assert.Equal(t, "sensitive", outcome.Result.Warnings[0].Type)
	assert.ElementsMatch(t, []string{"confidential", "secret"}, outcome.Result.Warnings[0].Keywords)
}

func TestSummarizeSurfacesInappropriateWarning(t *testing.T) {
	f := newFixture(t, mocks.NewMockGeneratorWithResponse(structuredResponse))
	content := "The review mentions profanity once. " + repeatTo(filler, 200)

	outcome, err := f.service.Summarize(context.Background(), Request{Content: content})
	require.NoError(t, err)
	require.NotNil(t, outcome.Result)
	require.Len(t, outcome.Result.Warnings, 1)
	assert.Equal(t, gate.FilterInappropriate, outcome.Result.Warnings[0].Type)
	assert.Equal(t, []string{"profanity"}, outcome.Result.Warnings[0].Keywords)
}

func TestSummarizeGeneratorFailureIsBackendUnavailable(t *testing.T) {
	f := newFixture(t, mocks.MockGeneratorWithTransientFailure())

	_, err := f.service.Summarize(context.Background(), Request{Content: repeatTo(filler, 200)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
	assert.True(t, errors.Is(err, generation.ErrTransientFailure))
	assert.False(t, errors.Is(err, ErrValidation))

	assert.Zero(t, f.backend.Len(), "failures must not be cached")
}

func TestSummarizeAsyncAboveThreshold(t *testing.T) {
	f := newFixture(t, mocks.NewMockGeneratorWithResponse(structuredResponse))
	content := repeatTo(filler, 700)

	outcome, err := f.service.Summarize(context.Background(), Request{Content: content})
	require.NoError(t, err)
	require.NotNil(t, outcome.Handle)
	assert.Nil(t, outcome.Result)
	assert.Equal(t, HandleStatus, outcome.Handle.Status)
	assert.NotEmpty(t, outcome.Handle.TaskID)

	view := waitForTerminal(t, f.service, outcome.Handle.TaskID)
	assert.Equal(t, string(task.StateCompleted), view.Status)
	require.NotNil(t, view.Result)
	assert.Equal(t, "Foxes Keep Jumping", view.Result.Headline)
	assert.False(t, view.Result.Metadata.Compressed)
	assert.NotNil(t, view.CreatedAt)
	assert.NotNil(t, view.FinishedAt)

	again := f.service.TaskStatus(outcome.Handle.TaskID)
	assert.Equal(t, view, again, "terminal status is stable")

	assert.Equal(t, []string{PathAsync}, f.recorder.Paths())
}

func TestSummarizeBatchFlagForcesAsync(t *testing.T) {
	f := newFixture(t, mocks.NewMockGeneratorWithResponse(structuredResponse))

	outcome, err := f.service.Summarize(context.Background(), Request{Content: repeatTo(filler, 100), Batch: true})
	require.NoError(t, err)
	require.NotNil(t, outcome.Handle)

	view := waitForTerminal(t, f.service, outcome.Handle.TaskID)
	assert.Equal(t, string(task.StateCompleted), view.Status)
}

func TestSummarizeCompressedContent(t *testing.T) {
	f := newFixture(t, mocks.NewMockGeneratorWithResponse(structuredResponse))
	content := "Opening marker sentence for the document. " + repeatTo(filler, 1500)
	size := len(content)

	outcome, err := f.service.Summarize(context.Background(), Request{Content: content})
	require.NoError(t, err)
	require.NotNil(t, outcome.Handle)

	view := waitForTerminal(t, f.service, outcome.Handle.TaskID)
	require.Equal(t, string(task.StateCompleted), view.Status, view.Error)
	assert.True(t, view.Result.Metadata.Compressed)
	assert.Equal(t, size-1, view.Result.Metadata.OriginalSize, "trailing space is trimmed")

	require.Equal(t, 1, f.generator.CallCount())
	assert.Contains(t, f.generator.Prompts()[0], "Opening marker sentence for the document.")

	// Large content is cached on its plain text.
	assert.Equal(t, 1, f.backend.Len())
}

func TestSummarizeChunkedContent(t *testing.T) {
	gen := &mocks.MockGenerator{
		GenerateFn: func(_ context.Context, prompt string, opts generation.Options) (string, error) {
			if opts.MaxOutputTokens == chunkOptions.MaxOutputTokens {
				return "partial summary", nil
			}
			return structuredResponse, nil
		},
	}
	f := newFixture(t, gen)
	content := repeatTo(filler, 3000)

	outcome, err := f.service.Summarize(context.Background(), Request{Content: content})
	require.NoError(t, err)
	require.NotNil(t, outcome.Handle)
	chunks := outcome.Handle.ChunkCount
	assert.GreaterOrEqual(t, chunks, 4)
	assert.Contains(t, outcome.Handle.Message, fmt.Sprintf("%d chunks", chunks))

	view := waitForTerminal(t, f.service, outcome.Handle.TaskID)
	require.Equal(t, string(task.StateCompleted), view.Status, view.Error)
	assert.Equal(t, "Foxes Keep Jumping", view.Result.Headline)
	assert.True(t, view.Result.Metadata.Chunked)
	assert.Equal(t, chunks, view.Result.Metadata.ChunkCount)

	require.Equal(t, chunks+1, gen.CallCount())
	options := gen.RecordedOptions()
	for i := 0; i < chunks; i++ {
		assert.Equal(t, chunkOptions, options[i])
	}
	assert.Equal(t, finalOptions, options[chunks])

	prompts := gen.Prompts()
	final := prompts[len(prompts)-1]
	assert.Contains(t, final, strings.TrimSuffix(strings.Repeat("partial summary\n\n", chunks), "\n\n"))

	assert.Equal(t, []string{PathChunked}, f.recorder.Paths())
}

func TestSummarizeChunkedSkipsFailedChunks(t *testing.T) {
	var calls int
	var mu sync.Mutex
	gen := &mocks.MockGenerator{
		GenerateFn: func(_ context.Context, _ string, opts generation.Options) (string, error) {
			if opts.MaxOutputTokens != chunkOptions.MaxOutputTokens {
				return structuredResponse, nil
			}
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls == 1 {
				return "", generation.ErrTransientFailure
			}
			return fmt.Sprintf("summary %d", calls), nil
		},
	}
	f := newFixture(t, gen)

	outcome, err := f.service.Summarize(context.Background(), Request{Content: repeatTo(filler, 3000)})
	require.NoError(t, err)

	view := waitForTerminal(t, f.service, outcome.Handle.TaskID)
	require.Equal(t, string(task.StateCompleted), view.Status, view.Error)

	prompts := gen.Prompts()
	final := prompts[len(prompts)-1]
	assert.Contains(t, final, "summary 2\n\nsummary 3")
}

func TestSummarizeChunkedFailures(t *testing.T) {
	t.Run("every chunk rejected", func(t *testing.T) {
		f := newFixture(t, mocks.NewMockGeneratorWithResponse(structuredResponse))
		content := repeatTo("This explicit sentence repeats throughout. ", 3000)

		outcome, err := f.service.Summarize(context.Background(), Request{Content: content, Strict: true})
		require.NoError(t, err, "oversized content is gated per chunk inside the task")
		require.NotNil(t, outcome.Handle)

		view := waitForTerminal(t, f.service, outcome.Handle.TaskID)
		assert.Equal(t, string(task.StateError), view.Status)
		assert.Contains(t, view.Error, "rejected")
		assert.Nil(t, view.Result)
		assert.Zero(t, f.generator.CallCount())
	})

	t.Run("every chunk call fails", func(t *testing.T) {
		f := newFixture(t, mocks.MockGeneratorWithTransientFailure())

		outcome, err := f.service.Summarize(context.Background(), Request{Content: repeatTo(filler, 3000)})
		require.NoError(t, err)

		view := waitForTerminal(t, f.service, outcome.Handle.TaskID)
		assert.Equal(t, string(task.StateError), view.Status)
		assert.Contains(t, view.Error, "no chunk could be summarized")
	})

	t.Run("final call fails", func(t *testing.T) {
		gen := &mocks.MockGenerator{
			GenerateFn: func(_ context.Context, _ string, opts generation.Options) (string, error) {
				if opts.MaxOutputTokens == chunkOptions.MaxOutputTokens {
					return "partial", nil
				}
				return "", generation.ErrTransientFailure
			},
		}
		f := newFixture(t, gen)

		outcome, err := f.service.Summarize(context.Background(), Request{Content: repeatTo(filler, 3000)})
		require.NoError(t, err)

		view := waitForTerminal(t, f.service, outcome.Handle.TaskID)
		assert.Equal(t, string(task.StateError), view.Status)
		assert.Contains(t, view.Error, "final summary generation failed")
	})
}

// refusingRunner rejects every submission as the processor does when full.
type refusingRunner struct{ err error }

func (r refusingRunner) Submit(task.Work, time.Duration) (string, error) { return "", r.err }
func (r refusingRunner) Status(id string) task.Status {
	return task.Status{ID: id, State: task.StateUnknown}
}

func TestSummarizeQueueFullIsBackendUnavailable(t *testing.T) {
	logger := testLogger()
	g, err := gate.New(gate.Config{Lists: gate.DefaultLists()}, logger)
	require.NoError(t, err)

	gen := mocks.NewMockGeneratorWithResponse(structuredResponse)
	svc, err := NewService(testConfig(), Deps{
		Extractor: extract.New(extract.Config{}, logger),
		Gate:      g,
		Generator: gen,
		Tasks:     refusingRunner{err: fmt.Errorf("%w: capacity 2", task.ErrQueueFull)},
	}, logger)
	require.NoError(t, err)

	_, err = svc.Summarize(context.Background(), Request{Content: repeatTo(filler, 700)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
	assert.True(t, errors.Is(err, task.ErrQueueFull))
	assert.Zero(t, gen.CallCount())
}

func TestTaskStatusUnknownID(t *testing.T) {
	f := newFixture(t, mocks.NewMockGeneratorWithResponse(structuredResponse))

	view := f.service.TaskStatus("does-not-exist")
	assert.Equal(t, "unknown", view.Status)
	assert.Nil(t, view.Result)
	assert.Nil(t, view.CreatedAt)
}

func TestSummarizeSurvivesCacheOutage(t *testing.T) {
	logger := testLogger()
	g, err := gate.New(gate.Config{Lists: gate.DefaultLists()}, logger)
	require.NoError(t, err)

	outage := errors.New("dial tcp: connection refused")
	backend := &mocks.MockCacheBackend{GetErr: outage, SetErr: outage, PingErr: outage}
	gen := mocks.NewMockGeneratorWithResponse(structuredResponse)

	svc, err := NewService(testConfig(), Deps{
		Extractor: extract.New(extract.Config{}, logger),
		Gate:      g,
		Cache:     cache.NewStore(backend, time.Hour, logger),
		Generator: gen,
		Tasks:     refusingRunner{err: task.ErrQueueFull},
	}, logger)
	require.NoError(t, err)

	req := Request{Content: repeatTo(filler, 200)}
	for i := 0; i < 2; i++ {
		outcome, err := svc.Summarize(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, outcome.Result)
		assert.False(t, outcome.Result.Cached)
	}

	assert.Equal(t, 2, gen.CallCount())
	gets, sets := backend.Calls()
	assert.Equal(t, 2, gets)
	assert.Equal(t, 2, sets)
	assert.Equal(t, time.Minute, backend.LastTTL(), "configured ttl is passed through")
}
