package summary

import (
	"time"

	"github.com/phrazzld/summarizer-api/internal/gate"
)

// Settings echoes the generation parameters of a result.
type Settings struct {
	Length int    `json:"length"`
	Tone   string `json:"tone"`
}

// Metadata describes the summarized content and how it was processed.
type Metadata struct {
	WordCount          int      `json:"word_count"`
	ReadingTimeMinutes int      `json:"estimated_reading_time"`
	Keywords           []string `json:"keywords"`

	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`
	Domain string `json:"domain,omitempty"`

	// ContentCategories is the keyword-based categorization from the gate.
	ContentCategories *gate.Categorization `json:"content_categories,omitempty"`

	Compressed   bool `json:"compressed,omitempty"`
	OriginalSize int  `json:"original_size,omitempty"`
	Chunked      bool `json:"chunked,omitempty"`
	ChunkCount   int  `json:"chunk_count,omitempty"`
}

// Result is a generated summary.
type Result struct {
	Headline   string              `json:"headline"`
	Summary    string              `json:"summary"`
	Categories gate.Categorization `json:"categories"`
	Settings   Settings            `json:"settings"`
	Metadata   Metadata            `json:"metadata"`
	Warnings   []gate.Warning      `json:"warnings"`
	Cached     bool                `json:"cached"`
}

// HandleStatus is the status reported for freshly submitted work.
const HandleStatus = "processing"

// Handle identifies background work that will produce a Result.
type Handle struct {
	TaskID     string `json:"task_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	ChunkCount int    `json:"chunk_count,omitempty"`
}

// Outcome is either an immediate Result or a Handle to poll.
type Outcome struct {
	Result *Result
	Handle *Handle
}

// StatusView is the pollable state of a background summarization.
type StatusView struct {
	TaskID     string    `json:"task_id"`
	Status     string    `json:"status"`
	Result     *Result   `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
