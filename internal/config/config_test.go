package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"RAG_CHUNK_SIZE", "RAG_TOP_K", "RAG_PROVIDER_TIMEOUT", "BILLING_QUESTIONS_PER_CHARGE", "LLM_PROVIDER"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 1000, cfg.Rag.ChunkSize)
	assert.Equal(t, 200, cfg.Rag.ChunkOverlap)
	assert.Equal(t, 4, cfg.Rag.TopK)
	assert.Equal(t, 30*time.Second, cfg.Rag.ProviderTimeout)
	assert.Equal(t, 5, cfg.Billing.QuestionsPerCharge)
	assert.Equal(t, int64(10*1024*1024), cfg.App.MaxFileSize)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RAG_CHUNK_SIZE", "512")
	t.Setenv("RAG_PROVIDER_TIMEOUT", "5")
	t.Setenv("RAG_RETRY_BACKOFF", "250ms")
	t.Setenv("RAG_PROVIDER_RPS", "2.5")
	t.Setenv("MIDTRANS_IS_PRODUCTION", "true")
	t.Setenv("BILLING_CURRENCY", "idr")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := Load()

	assert.Equal(t, 512, cfg.Rag.ChunkSize)
	assert.Equal(t, 5*time.Second, cfg.Rag.ProviderTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Rag.RetryBackoff)
	assert.Equal(t, 2.5, cfg.Rag.ProviderRPS)
	assert.True(t, cfg.Billing.MidtransIsProduction)
	assert.Equal(t, "IDR", cfg.Billing.Currency)
	assert.Equal(t, "sk-test", cfg.LLMAPIKey())
}

func TestGetEnvAsDuration_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_TIMEOUT", time.Minute))
}
