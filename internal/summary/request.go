package summary

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Length bounds, as a percentage of the original text.
const (
	MinLength     = 10
	MaxLength     = 90
	DefaultLength = 50
)

// DefaultTone is used when a request names no tone.
const DefaultTone = "professional"

// Tones lists the accepted tone values.
var Tones = []string{"professional", "casual", "academic", "friendly", "promotional", "informative"}

// Request asks for a summary of Content, or of the page at URL.
type Request struct {
	Content string `json:"content" validate:"required_without=URL"`
	URL     string `json:"url" validate:"omitempty,url"`
	IsHTML  bool   `json:"is_html"`

	// Length is the target size as a percentage of the original.
	// Zero selects DefaultLength.
	Length int    `json:"length" validate:"min=10,max=90"`
	Tone   string `json:"tone" validate:"oneof=professional casual academic friendly promotional informative"`

	// Batch forces the asynchronous path.
	Batch bool `json:"is_batch"`

	// Strict makes a single inappropriate keyword reject the content.
	Strict bool `json:"strict_filtering"`
}

var validate = validator.New()

// normalize fills defaults and lower-cases the tone.
func (r Request) normalize() Request {
	if r.Length == 0 {
		r.Length = DefaultLength
	}
	r.Tone = strings.ToLower(strings.TrimSpace(r.Tone))
	if r.Tone == "" {
		r.Tone = DefaultTone
	}
	r.Content = strings.TrimSpace(r.Content)
	r.URL = strings.TrimSpace(r.URL)
	return r
}

// Validate checks the request after defaults are applied.
func (r Request) Validate() error {
	return validateRequest(r.normalize())
}

func validateRequest(r Request) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Content":
		return &ValidationError{Field: "content", Message: "no content or URL provided"}
	case "URL":
		return &ValidationError{Field: "url", Message: "must be a valid URL"}
	case "Length":
		return &ValidationError{Field: "length", Message: "must be between 10 and 90 percent"}
	case "Tone":
		return &ValidationError{Field: "tone", Message: "must be one of: " + strings.Join(Tones, ", ")}
	default:
		return &ValidationError{Field: strings.ToLower(fe.Field()), Message: "is invalid"}
	}
}
