// Package generation defines the boundary between the summarization pipeline
// and external AI/LLM services. The Generator interface takes a fully built
// prompt and returns the model's text; the Gemini adapter in
// internal/platform/gemini is the production implementation.
package generation
