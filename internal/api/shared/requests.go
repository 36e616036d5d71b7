package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes bounds the size of a decoded request body. Article text is
// the bulk of it, so this also caps what a single request can summarize.
const MaxBodyBytes = 10 << 20

var (
	// ErrMalformedBody is returned when the body is empty or not valid JSON.
	ErrMalformedBody = errors.New("malformed request body")

	// ErrBodyTooLarge is returned when the body exceeds MaxBodyBytes.
	ErrBodyTooLarge = errors.New("request body too large")
)

// DecodeJSON decodes the request body into v. Unknown fields are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: empty body", ErrMalformedBody)
		default:
			return fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
	}
	return nil
}
