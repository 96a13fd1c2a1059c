package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
	Billing  BillingConfig
	Otel     OtelConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	TraceLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	UploadFolder       string
	MaxFileSize        int64
	JwtSecret          string
	TokenTTL           time.Duration
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

// Enabled reports whether receipts can be mailed.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Email != ""
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
	HuggingFace  string
	Groq         string
	OpenAI       string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama", "gemini", "jina" or "local"
	EmbeddingModel    string
	OllamaBaseURL     string
	LLMProvider       string // "ollama", "huggingface", "groq" or "openai"
	LLMModel          string
	LLMBaseURL        string
}

// LLMAPIKey returns the key matching the configured LLM provider.
func (c *Config) LLMAPIKey() string {
	switch c.Ai.LLMProvider {
	case "huggingface":
		return c.Keys.HuggingFace
	case "groq":
		return c.Keys.Groq
	case "openai":
		return c.Keys.OpenAI
	default:
		return ""
	}
}

type RagConfig struct {
	ChunkSize         int
	ChunkOverlap      int
	TopK              int
	ContextBudget     int
	ProviderTimeout   time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	ProviderRPS       float64
	EmbeddingCacheTTL time.Duration
	SnapshotTopic     string
}

type BillingConfig struct {
	MidtransServerKey    string
	MidtransIsProduction bool
	PricePerCharge       int64
	Currency             string
	QuestionsPerCharge   int
	DailyQuota           int
	FinishURL            string
}

type OtelConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			TraceLogFilePath:   getEnv("RAG_TRACE_LOG_FILE_PATH", "rag_trace.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			UploadFolder:       getEnv("UPLOAD_FOLDER", "uploads"),
			MaxFileSize:        int64(getEnvAsInt("MAX_FILE_SIZE", 10*1024*1024)),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			TokenTTL:           getEnvAsDuration("JWT_TTL", 30*24*time.Hour),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "DocQA"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			Groq:         getEnv("GROQ_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "local"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:       getEnv("LLM_PROVIDER", "groq"),
			LLMModel:          getEnv("LLM_MODEL", "llama3-8b-8192"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
		},
		Rag: RagConfig{
			ChunkSize:         getEnvAsInt("RAG_CHUNK_SIZE", 1000),
			ChunkOverlap:      getEnvAsInt("RAG_CHUNK_OVERLAP", 200),
			TopK:              getEnvAsInt("RAG_TOP_K", 4),
			ContextBudget:     getEnvAsInt("RAG_CONTEXT_BUDGET", 6000),
			ProviderTimeout:   getEnvAsDuration("RAG_PROVIDER_TIMEOUT", 30*time.Second),
			MaxRetries:        getEnvAsInt("RAG_MAX_RETRIES", 3),
			RetryBackoff:      getEnvAsDuration("RAG_RETRY_BACKOFF", 500*time.Millisecond),
			ProviderRPS:       getEnvAsFloat("RAG_PROVIDER_RPS", 0),
			EmbeddingCacheTTL: getEnvAsDuration("RAG_EMBEDDING_CACHE_TTL", time.Hour),
			SnapshotTopic:     getEnv("RAG_SNAPSHOT_TOPIC", "INDEX_SNAPSHOT_PERSIST"),
		},
		Billing: BillingConfig{
			MidtransServerKey:    getEnv("MIDTRANS_SERVER_KEY", ""),
			MidtransIsProduction: getEnvAsBool("MIDTRANS_IS_PRODUCTION", false),
			PricePerCharge:       int64(getEnvAsInt("BILLING_PRICE_PER_CHARGE", 100)),
			Currency:             strings.ToUpper(getEnv("BILLING_CURRENCY", "USD")),
			QuestionsPerCharge:   getEnvAsInt("BILLING_QUESTIONS_PER_CHARGE", 5),
			DailyQuota:           getEnvAsInt("BILLING_DAILY_QUOTA", 0),
			FinishURL:            getEnv("BILLING_FINISH_URL", ""),
		},
		Otel: OtelConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
