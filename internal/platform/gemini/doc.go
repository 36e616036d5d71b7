// Package gemini provides an implementation of the generation.Generator
// interface backed by Google's Gemini API.
//
// The adapter sends a single user-role prompt, applies the per-call
// temperature and output-token limit, and translates API outcomes into the
// generation package's sentinel errors:
//
//   - transport and API failures wrap generation.ErrTransientFailure
//   - safety blocks wrap generation.ErrContentBlocked
//   - empty or candidate-less responses wrap generation.ErrInvalidResponse
//
// It never retries. Retrying is left to callers.
package gemini
