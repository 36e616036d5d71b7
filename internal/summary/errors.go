package summary

import (
	"errors"
	"fmt"

	"github.com/phrazzld/summarizer-api/internal/gate"
)

// Error categories returned by the service
var (
	// ErrValidation marks bad input: empty or short content, bad length or tone
	ErrValidation = errors.New("invalid summarization request")

	// ErrPolicyRejected marks content declined by the content gate
	ErrPolicyRejected = errors.New("content rejected by content policy")

	// ErrBackendUnavailable marks model or task-capacity outages; the whole
	// request may be retried later
	ErrBackendUnavailable = errors.New("summarization backend unavailable")
)

// ValidationError describes which input was rejected and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports ErrValidation so callers can match the category.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PolicyError carries the gate verdict that rejected the content.
type PolicyError struct {
	Verdict gate.Verdict
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPolicyRejected, e.Verdict.Reason)
}

// Is reports ErrPolicyRejected so callers can match the category.
func (e *PolicyError) Is(target error) bool {
	return target == ErrPolicyRejected
}
