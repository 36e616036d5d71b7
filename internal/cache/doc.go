// Package cache stores generated summaries keyed by a fingerprint of the
// content and the generation settings.
//
// Every operation is best-effort. Backend failures are logged and reported
// as a miss (Get) or as false (Put, IsAvailable), never as errors, so callers
// can treat an unreachable cache as absent.
package cache
