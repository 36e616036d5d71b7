package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/summarizer-api/internal/chunk"
	"github.com/phrazzld/summarizer-api/internal/gate"
	"github.com/phrazzld/summarizer-api/internal/task"
)

// Errors reported by chunked summarization tasks.
var (
	ErrAllChunksRejected = errors.New("all content chunks were rejected by the content gate")
	ErrNoChunkSummaries  = errors.New("no chunk could be summarized")
)

func (s *Service) submitChunked(ctx context.Context, text string, req Request, settings Settings, meta Metadata, log *slog.Logger) (*Outcome, error) {
	chunks := chunk.Split(text, s.config.ChunkMaxSize, s.config.ChunkOverlap)
	meta.Chunked = true
	meta.ChunkCount = len(chunks)

	work := s.chunkedWork(chunk.Texts(chunks), req.Strict, settings, meta)
	id, err := s.submit(work, s.config.ChunkTimeout)
	if err != nil {
		return nil, err
	}

	s.recorder.SummaryRequest(PathChunked)
	log.InfoContext(ctx, "chunked summarization queued", "task_id", id, "chunk_count", len(chunks))
	return &Outcome{Handle: &Handle{
		TaskID:     id,
		Status:     HandleStatus,
		Message:    fmt.Sprintf("Content split into %d chunks for processing", len(chunks)),
		ChunkCount: len(chunks),
	}}, nil
}

// chunkedWork summarizes each chunk in order, skipping chunks the gate
// rejects and chunks whose generation fails, then combines the partial
// summaries with one structured call.
func (s *Service) chunkedWork(chunks []string, strict bool, settings Settings, meta Metadata) task.Work {
	return func(ctx context.Context) (any, error) {
		log := s.logger.With("chunk_count", len(chunks))

		var (
			summaries []string
			warnings  []gate.Warning
			rejected  int
		)

		for i, text := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			verdict := s.gate.Evaluate(text, strict)
			if !verdict.Allowed {
				rejected++
				log.InfoContext(ctx, "skipping chunk rejected by content gate", "chunk", i, "reason", verdict.Reason)
				continue
			}
			warnings = mergeWarnings(warnings, verdict.Warnings)

			prompt, err := renderPrompt(chunkTemplate, text, settings)
			if err != nil {
				return nil, err
			}
			summary, err := s.generator.Generate(ctx, prompt, chunkOptions)
			if err != nil {
				log.WarnContext(ctx, "skipping chunk after generation failure", "chunk", i, "error", err)
				continue
			}
			if summary = strings.TrimSpace(summary); summary != "" {
				summaries = append(summaries, summary)
			}
		}

		if rejected == len(chunks) {
			return nil, ErrAllChunksRejected
		}
		if len(summaries) == 0 {
			return nil, fmt.Errorf("%w: %d of %d chunks failed", ErrNoChunkSummaries, len(chunks)-rejected, len(chunks))
		}

		combined := strings.Join(summaries, "\n\n")
		prompt, err := renderPrompt(combineTemplate, combined, settings)
		if err != nil {
			return nil, err
		}
		response, err := s.generator.Generate(ctx, prompt, finalOptions)
		if err != nil {
			return nil, fmt.Errorf("%w: final summary generation failed: %w", ErrBackendUnavailable, err)
		}

		parsed := ParseResponse(response)
		log.InfoContext(ctx, "chunked summarization completed",
			"summarized_chunks", len(summaries),
			"rejected_chunks", rejected)

		return &Result{
			Headline:   parsed.Headline,
			Summary:    parsed.Summary,
			Categories: parsed.Categories,
			Settings:   settings,
			Metadata:   meta,
			Warnings:   nonNilWarnings(warnings),
		}, nil
	}
}

// mergeWarnings folds the keywords of next into acc, one Warning per type.
func mergeWarnings(acc, next []gate.Warning) []gate.Warning {
	for _, w := range next {
		idx := -1
		for i := range acc {
			if acc[i].Type == w.Type {
				idx = i
				break
			}
		}
		if idx < 0 {
			acc = append(acc, gate.Warning{
				Type:     w.Type,
				Message:  w.Message,
				Keywords: append([]string(nil), w.Keywords...),
			})
			continue
		}
		for _, kw := range w.Keywords {
			if !containsString(acc[idx].Keywords, kw) {
				acc[idx].Keywords = append(acc[idx].Keywords, kw)
			}
		}
		acc[idx].Message = fmt.Sprintf("Content contains %s keywords: %s", w.Type, strings.Join(acc[idx].Keywords, ", "))
	}
	return acc
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
