package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/summarizer-api/internal/api/shared"
	"github.com/phrazzld/summarizer-api/internal/summary"
	"github.com/phrazzld/summarizer-api/internal/task"
)

// ErrInvalidTaskID is returned for a malformed task id path parameter.
var ErrInvalidTaskID = errors.New("invalid task id")

// RetryAfterSeconds is advertised on 503 responses.
const RetryAfterSeconds = 30

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, summary.ErrValidation),
		errors.Is(err, ErrInvalidTaskID),
		errors.Is(err, shared.ErrMalformedBody):
		return http.StatusBadRequest

	case errors.Is(err, shared.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge

	// Content policy rejections
	case errors.Is(err, summary.ErrPolicyRejected):
		return http.StatusUnprocessableEntity

	// Retryable outages
	case errors.Is(err, summary.ErrBackendUnavailable),
		errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrProcessorStopped):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *summary.ValidationError
	var perr *summary.PolicyError

	switch {
	case errors.As(err, &verr):
		// Validation messages are built from fixed strings.
		return verr.Error()

	case errors.Is(err, shared.ErrMalformedBody):
		return "Invalid request format"

	case errors.Is(err, shared.ErrBodyTooLarge):
		return "Request body too large"

	case errors.Is(err, summary.ErrValidation), errors.Is(err, ErrInvalidTaskID):
		return "Invalid request"

	case errors.As(err, &perr):
		if perr.Verdict.Reason != "" {
			return perr.Verdict.Reason
		}
		return "Content rejected by content policy"

	case errors.Is(err, summary.ErrPolicyRejected):
		return "Content rejected by content policy"

	case errors.Is(err, summary.ErrBackendUnavailable),
		errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrProcessorStopped):
		return "Summarization service temporarily unavailable, please retry later"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. A non-empty message
// replaces the default safe message. Policy rejections carry the gate
// verdict as details.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}

	var opts []shared.ResponseOption
	var perr *summary.PolicyError
	if errors.As(err, &perr) {
		opts = append(opts, shared.WithDetails(perr.Verdict))
	}
	if status == http.StatusServiceUnavailable {
		opts = append(opts, shared.WithRetryAfter(RetryAfterSeconds))
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
