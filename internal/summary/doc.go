// Package summary orchestrates summarization requests.
//
// Service.Summarize resolves the input to plain text and then picks one of
// three execution paths by size:
//
//   - short content is gated, looked up in the cache and generated inline;
//   - content over the async threshold (or any batch item) is gated and then
//     generated by a background task, returning a pollable handle;
//   - content over the chunk threshold is split into overlapping chunks and
//     summarized by a map-reduce task that gates each chunk individually.
//
// Callers tell validation failures, policy rejections and backend outages
// apart with errors.Is against ErrValidation, ErrPolicyRejected and
// ErrBackendUnavailable.
package summary
