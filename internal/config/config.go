package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is built once at process start and passed into constructors.
// Components never read the environment after Load returns.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Pipeline PipelineConfig
	Channels ChannelsConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

// AIConfig holds both provider backends. The gateway backend is chosen
// at bootstrap when GatewayBaseURL is set; OpenAI otherwise.
type AIConfig struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string

	GatewayBaseURL      string
	GatewayTokenURL     string
	GatewayGrantType    string // "password" or "client_credentials"
	GatewayClientID     string
	GatewayClientSecret string
	GatewayUsername     string
	GatewayPassword     string

	EmbeddingModel     string
	EmbeddingDimension int
	GenerationModel    string
	MaxTokens          int
	Temperature        float64
}

type PipelineConfig struct {
	MaxPromptDocTokens int
	MaxPromptDocs      int
	MaxDocumentTokens  int // ingestion ceiling
	JobTimeoutSeconds  int
	ResyncSuccessDelay int // seconds until next resync sweep after success
	ResyncFailureDelay int // seconds until retry after failure
}

type ChannelsConfig struct {
	SlackSigningSecret string
	SlackBotToken      string
	SlackBotUserID     string

	PagerDutyAPIKey    string
	PagerDutyFromEmail string
	PagerDutyTagline   string

	ConfluenceBaseURL  string
	ConfluenceUser     string
	ConfluenceApiToken string

	QuipBaseURL  string
	QuipApiToken string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com"),

			GatewayBaseURL:      getEnv("AI_GATEWAY_BASE_URL", ""),
			GatewayTokenURL:     getEnv("AI_GATEWAY_TOKEN_URL", ""),
			GatewayGrantType:    getEnv("AI_GATEWAY_GRANT_TYPE", "client_credentials"),
			GatewayClientID:     getEnv("AI_GATEWAY_CLIENT_ID", ""),
			GatewayClientSecret: getEnv("AI_GATEWAY_CLIENT_SECRET", ""),
			GatewayUsername:     getEnv("AI_GATEWAY_USERNAME", ""),
			GatewayPassword:     getEnv("AI_GATEWAY_PASSWORD", ""),

			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 1536),
			GenerationModel:    getEnv("GENERATION_MODEL", "gpt-4"),
			MaxTokens:          getEnvAsInt("GENERATION_MAX_TOKENS", 1000),
			Temperature:        getEnvAsFloat("GENERATION_TEMPERATURE", 0.2),
		},
		Pipeline: PipelineConfig{
			MaxPromptDocTokens: getEnvAsInt("MAX_PROMPT_DOC_TOKENS", 3000),
			MaxPromptDocs:      getEnvAsInt("MAX_PROMPT_DOCS", 10),
			MaxDocumentTokens:  getEnvAsInt("MAX_DOCUMENT_TOKENS", 8000),
			JobTimeoutSeconds:  getEnvAsInt("JOB_TIMEOUT_SECONDS", 120),
			ResyncSuccessDelay: getEnvAsInt("RESYNC_SUCCESS_DELAY_SECONDS", 3600),
			ResyncFailureDelay: getEnvAsInt("RESYNC_FAILURE_DELAY_SECONDS", 300),
		},
		Channels: ChannelsConfig{
			SlackSigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
			SlackBotToken:      getEnv("SLACK_BOT_TOKEN", ""),
			SlackBotUserID:     getEnv("SLACK_BOT_USER_ID", ""),

			PagerDutyAPIKey:    getEnv("PAGERDUTY_API_KEY", ""),
			PagerDutyFromEmail: getEnv("PAGERDUTY_FROM_EMAIL", ""),
			PagerDutyTagline:   getEnv("PAGERDUTY_TAGLINE", ""),

			ConfluenceBaseURL:  getEnv("CONFLUENCE_BASE_URL", ""),
			ConfluenceUser:     getEnv("CONFLUENCE_USER", ""),
			ConfluenceApiToken: getEnv("CONFLUENCE_API_TOKEN", ""),

			QuipBaseURL:  getEnv("QUIP_BASE_URL", "https://platform.quip.com"),
			QuipApiToken: getEnv("QUIP_API_TOKEN", ""),
		},
	}
}

// UseGateway reports whether the enterprise gateway backends should be
// wired instead of the direct vendor backends.
func (c *AIConfig) UseGateway() bool {
	return c.GatewayBaseURL != ""
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
