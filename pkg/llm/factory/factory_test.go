package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	for _, name := range []string{"ollama", "huggingface", "groq", "openai"} {
		p, err := NewLLMProvider(name, "", "", "")
		require.NoError(t, err, name)
		assert.NotNil(t, p)
	}

	_, err := NewLLMProvider("anthropic-v0", "", "", "")
	assert.EqualError(t, err, "unsupported LLM provider: anthropic-v0")
}
