package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa-be/pkg/llm"
	"docqa-be/pkg/retry"
)

func TestChatProvider_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"The sky is blue."}}]}`))
	}))
	defer srv.Close()

	p := NewGroqProvider("secret", srv.URL, "")
	answer, err := p.Generate(context.Background(), "What color is the sky?", llm.WithMaxTokens(64))
	require.NoError(t, err)

	assert.Equal(t, "The sky is blue.", answer)
	assert.Equal(t, "llama3-8b-8192", got.Model)
	assert.Equal(t, 64, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestChatProvider_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		transient bool
	}{
		{name: "server error", status: http.StatusBadGateway, body: "bad gateway", transient: true},
		{name: "rate limited", status: http.StatusTooManyRequests, body: "slow down", transient: true},
		{name: "unauthorized", status: http.StatusUnauthorized, body: "no key", transient: false},
		{name: "empty choices", status: http.StatusOK, body: `{"choices":[]}`, transient: false},
		{name: "api error", status: http.StatusOK, body: `{"error":{"message":"model not found"}}`, transient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenAIProvider("", srv.URL, "").Generate(context.Background(), "q")
			require.Error(t, err)
			assert.Equal(t, tt.transient, retry.IsTransient(err))
		})
	}
}
