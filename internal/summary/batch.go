package summary

import (
	"context"
	"errors"
)

// MaxBatchItems bounds the number of items in one batch request.
const MaxBatchItems = 20

// ErrEmptyBatch is returned for a batch without items.
var ErrEmptyBatch = errors.New("batch contains no items")

// BatchItemRequest is one entry of a batch. Zero fields inherit the batch
// defaults.
type BatchItemRequest struct {
	Content string `json:"content"`
	URL     string `json:"url"`
	IsHTML  bool   `json:"is_html"`
	Length  int    `json:"length"`
	Tone    string `json:"tone"`
}

// BatchRequest submits several summaries at once.
type BatchRequest struct {
	Items  []BatchItemRequest `json:"items"`
	Length int                `json:"length"`
	Tone   string             `json:"tone"`
	Strict bool               `json:"strict_filtering"`
}

// BatchItem reports what happened to one batch entry.
type BatchItem struct {
	Index   int     `json:"index"`
	Handle  *Handle `json:"handle,omitempty"`
	Error   string  `json:"error,omitempty"`
	Kind    string  `json:"error_type,omitempty"`
	wrapped error
}

// Err returns the error the item failed with, if any.
func (b BatchItem) Err() error {
	return b.wrapped
}

// Batch item error kinds.
const (
	KindValidation  = "validation"
	KindPolicy      = "policy"
	KindUnavailable = "unavailable"
	KindInternal    = "internal"
)

// SummarizeBatch queues every item on the background path. Each item gets
// its own task handle or error; one failing item does not affect the rest.
func (s *Service) SummarizeBatch(ctx context.Context, batch BatchRequest) ([]BatchItem, error) {
	if len(batch.Items) == 0 {
		return nil, &ValidationError{Field: "items", Message: ErrEmptyBatch.Error()}
	}
	if len(batch.Items) > MaxBatchItems {
		return nil, &ValidationError{Field: "items", Message: "too many items in batch"}
	}

	items := make([]BatchItem, 0, len(batch.Items))
	for i, in := range batch.Items {
		req := Request{
			Content: in.Content,
			URL:     in.URL,
			IsHTML:  in.IsHTML,
			Length:  in.Length,
			Tone:    in.Tone,
			Batch:   true,
			Strict:  batch.Strict,
		}
		if req.Length == 0 {
			req.Length = batch.Length
		}
		if req.Tone == "" {
			req.Tone = batch.Tone
		}

		item := BatchItem{Index: i}
		outcome, err := s.Summarize(ctx, req)
		switch {
		case err != nil:
			item.wrapped = err
			item.Error = err.Error()
			item.Kind = ErrorKind(err)
		case outcome.Handle != nil:
			item.Handle = outcome.Handle
		default:
			// Batch requests never complete synchronously.
			item.Error = "unexpected synchronous result"
			item.Kind = KindInternal
		}
		items = append(items, item)
	}

	s.logger.InfoContext(ctx, "batch summarization submitted", "items", len(items))
	return items, nil
}

// ErrorKind classifies an error returned by the service.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrPolicyRejected):
		return KindPolicy
	case errors.Is(err, ErrBackendUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}
