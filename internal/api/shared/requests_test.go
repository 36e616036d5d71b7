package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type summarizeBody struct {
	Content string `json:"content"`
	Length  int    `json:"length"`
	Tone    string `json:"tone"`
	IsBatch bool   `json:"is_batch"`
}

func decode(t *testing.T, body string) (summarizeBody, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(body))
	w := httptest.NewRecorder()

	var v summarizeBody
	err := DecodeJSON(w, req, &v)
	return v, err
}

func TestDecodeJSON(t *testing.T) {
	t.Run("summarize request", func(t *testing.T) {
		v, err := decode(t, `{"content": "Article text.", "length": 30, "tone": "casual", "is_batch": true}`)

		require.NoError(t, err)
		assert.Equal(t, summarizeBody{Content: "Article text.", Length: 30, Tone: "casual", IsBatch: true}, v)
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		v, err := decode(t, `{"content": "text", "client_version": "2.1"}`)

		require.NoError(t, err)
		assert.Equal(t, "text", v.Content)
	})

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "empty body", body: "", wantErr: ErrMalformedBody},
		{name: "truncated json", body: `{"content": "te`, wantErr: ErrMalformedBody},
		{name: "wrong type", body: `{"length": "fifty"}`, wantErr: ErrMalformedBody},
		{
			name:    "oversized body",
			body:    `{"content": "` + strings.Repeat("a", MaxBodyBytes) + `"}`,
			wantErr: ErrBodyTooLarge,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decode(t, tc.body)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDecodeJSONAtLimit(t *testing.T) {
	content := strings.Repeat("a", MaxBodyBytes-len(`{"content": ""}`))

	v, err := decode(t, `{"content": "`+content+`"}`)

	require.NoError(t, err)
	assert.Len(t, v.Content, len(content))
}
