package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/phrazzld/summarizer-api/internal/cache"
	"github.com/phrazzld/summarizer-api/internal/config"
	"github.com/phrazzld/summarizer-api/internal/extract"
	"github.com/phrazzld/summarizer-api/internal/gate"
	"github.com/phrazzld/summarizer-api/internal/platform/gemini"
	"github.com/phrazzld/summarizer-api/internal/platform/logger"
	"github.com/phrazzld/summarizer-api/internal/summary"
	"github.com/phrazzld/summarizer-api/internal/task"
	"github.com/spf13/cobra"
)

// pollInterval is how often a queued summarization is checked.
const pollInterval = 250 * time.Millisecond

type summarizeOptions struct {
	url      string
	file     string
	html     bool
	length   int
	tone     string
	strict   bool
	asJSON   bool
	logLevel string
}

// summarizer is the part of summary.Service the command uses.
type summarizer interface {
	Summarize(ctx context.Context, req summary.Request) (*summary.Outcome, error)
	TaskStatus(id string) summary.StatusView
}

func newSummarizeCmd() *cobra.Command {
	opts := &summarizeOptions{}

	cmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Summarize a file, a URL, or standard input",
		Example: `  summarizer summarize article.txt
  summarizer summarize --url https://example.com/post --tone casual --length 30
  cat notes.md | summarizer summarize --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.file = args[0]
			}

			req, err := buildRequest(opts, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			svc, shutdown, err := newLocalService(cmd.Context(), cfg, opts.logLevel)
			if err != nil {
				return err
			}
			defer shutdown()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Task.ChunkTimeout+cfg.Task.DefaultTimeout)
			defer cancel()

			result, err := summarize(ctx, svc, req, pollInterval)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result, opts.asJSON)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "Summarize the page at this URL")
	cmd.Flags().StringVar(&opts.file, "file", "", "Read content from this file")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Treat file or stdin content as HTML")
	cmd.Flags().IntVar(&opts.length, "length", summary.DefaultLength, "Target length as a percentage of the original (10-90)")
	cmd.Flags().StringVar(&opts.tone, "tone", summary.DefaultTone, "Tone: "+strings.Join(summary.Tones, ", "))
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Reject content with any inappropriate keyword")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the full result as JSON")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "error", "Log level for diagnostics on stderr")

	return cmd
}

// buildRequest reads the input selected by opts. Without a URL or file the
// content comes from stdin.
func buildRequest(opts *summarizeOptions, stdin io.Reader) (summary.Request, error) {
	req := summary.Request{
		URL:    opts.url,
		IsHTML: opts.html,
		Length: opts.length,
		Tone:   opts.tone,
		Strict: opts.strict,
	}
	if opts.url != "" {
		return req, nil
	}

	var data []byte
	var err error
	if opts.file != "" {
		data, err = os.ReadFile(opts.file)
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return req, fmt.Errorf("failed to read content: %w", err)
	}

	req.Content = string(data)
	if opts.file != "" && !opts.html {
		lower := strings.ToLower(opts.file)
		req.IsHTML = strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
	}
	return req, nil
}

// newLocalService wires the pipeline in-process with a memory cache.
func newLocalService(ctx context.Context, cfg *config.Config, logLevel string) (*summary.Service, func(), error) {
	log := logger.SetupWithWriter(os.Stderr, logLevel)

	generator, err := gemini.NewGeminiGenerator(ctx, log, cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}

	g, err := gate.NewFromConfig(cfg.Gate, log)
	if err != nil {
		return nil, nil, err
	}

	backend, err := cache.NewMemoryBackend(64)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cache: %w", err)
	}

	processor := task.NewProcessor(task.ProcessorConfig{
		WorkerCount:    cfg.Task.WorkerCount,
		QueueSize:      cfg.Task.QueueSize,
		DefaultTimeout: cfg.Task.DefaultTimeout,
	}, log)
	if err := processor.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to start task processor: %w", err)
	}

	svc, err := summary.NewService(summary.Config{
		MinChars:          cfg.Summarize.MinChars,
		AsyncThreshold:    cfg.Summarize.AsyncThreshold,
		CompressThreshold: cfg.Summarize.CompressThreshold,
		ChunkThreshold:    cfg.Summarize.ChunkThreshold,
		ChunkMaxSize:      cfg.Chunk.MaxSize,
		ChunkOverlap:      cfg.Chunk.Overlap,
		TaskTimeout:       cfg.Task.DefaultTimeout,
		ChunkTimeout:      cfg.Task.ChunkTimeout,
		CacheTTL:          cfg.Cache.TTL,
	}, summary.Deps{
		Extractor: extract.New(extract.Config{FetchTimeout: cfg.Extract.FetchTimeout, UserAgent: cfg.Extract.UserAgent}, log),
		Gate:      g,
		Cache:     cache.NewStore(backend, cfg.Cache.TTL, log),
		Generator: generator,
		Tasks:     processor,
	}, log)
	if err != nil {
		processor.Stop()
		return nil, nil, fmt.Errorf("failed to create summary service: %w", err)
	}

	return svc, processor.Stop, nil
}

// summarize runs req and, when the pipeline queues it, polls until the task
// finishes or ctx ends.
func summarize(ctx context.Context, svc summarizer, req summary.Request, every time.Duration) (*summary.Result, error) {
	outcome, err := svc.Summarize(ctx, req)
	if err != nil {
		return nil, describeError(err)
	}
	if outcome.Result != nil {
		return outcome.Result, nil
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		view := svc.TaskStatus(outcome.Handle.TaskID)
		switch task.State(view.Status) {
		case task.StateCompleted:
			if view.Result == nil {
				return nil, errors.New("task completed without a result")
			}
			return view.Result, nil
		case task.StateError, task.StateTimeout, task.StateUnknown:
			return nil, fmt.Errorf("summarization %s: %s", view.Status, view.Error)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for task %s: %w", outcome.Handle.TaskID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func describeError(err error) error {
	var perr *summary.PolicyError
	if errors.As(err, &perr) {
		return fmt.Errorf("content rejected: %s", perr.Verdict.Reason)
	}
	return err
}

func printResult(w io.Writer, result *summary.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	var b strings.Builder
	if result.Headline != "" {
		fmt.Fprintf(&b, "%s\n\n", result.Headline)
	}
	fmt.Fprintf(&b, "%s\n\n", result.Summary)
	fmt.Fprintf(&b, "Categories: %s, %s\n", result.Categories.Primary, result.Categories.Secondary)
	for _, warning := range result.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", warning.Message)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
