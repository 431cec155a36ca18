package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type LiquidAppConfig struct {
	Port         string
	LogDir       string
	AIProvider   string
	SignedURLTTL time.Duration
	PostgresCfg  PostgresConfig
	RabbitMQCfg  RabbitMQConfig
	RedisCfg     RedisConfig
	MinioCfg     MinioConfig
	GroqCfg      GroqConfig
	GeminiAPICfg GeminiAPIConfig
	WorkerCfg    WorkerConfig
	ReconcileCfg ReconcileConfig
	ClientCache  ClientCacheConfig
}

type MinioConfig struct {
	MinioURL       string
	MinioAccessKey string
	MinioSecretKey string
	MinioLocation  string
	MinioSecure    string
	EvidenceBucket string
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// GroqConfig targets any OpenAI-compatible chat completions endpoint.
type GroqConfig struct {
	APIKey          string
	BaseURL         string
	VisionModel     string
	ReportModel     string
	VisionMaxTokens int
	ReportMaxTokens int
}

type GeminiAPIConfig struct {
	APIKeys   []string
	FlashName string
	ProName   string
}

type WorkerConfig struct {
	AnalysisWorkers int
	QueueSize       int
	JobTimeout      time.Duration
}

type ReconcileConfig struct {
	Interval    time.Duration
	GracePeriod time.Duration
}

type ClientCacheConfig struct {
	Size int
	TTL  time.Duration
}

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

func New() *LiquidAppConfig {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	return &LiquidAppConfig{
		Port:         getEnvOrDefault("PORT", "8080"),
		LogDir:       getEnvOrDefault("LOG_DIR", "./log/liquidapp"),
		AIProvider:   strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderGroq)),
		SignedURLTTL: getDurationOrDefault("SIGNED_URL_TTL", time.Hour),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "liquidapp"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
		},
		MinioCfg: MinioConfig{
			MinioURL:       getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9000"),
			MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:  getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:    getEnvOrDefault("MINIO_SECURE", "false"),
			EvidenceBucket: getEnvOrDefault("MINIO_EVIDENCE_BUCKET", "evidencias-siniestros"),
		},
		GroqCfg: GroqConfig{
			APIKey:          getEnvOrDefault("GROQ_API_KEY", ""),
			BaseURL:         getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			VisionModel:     getEnvOrDefault("GROQ_VISION_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
			ReportModel:     getEnvOrDefault("GROQ_REPORT_MODEL", "llama-3.3-70b-versatile"),
			VisionMaxTokens: getIntOrDefault("GROQ_VISION_MAX_TOKENS", 1500),
			ReportMaxTokens: getIntOrDefault("GROQ_REPORT_MAX_TOKENS", 3000),
		},
		GeminiAPICfg: GeminiAPIConfig{
			APIKeys:   splitList(getEnvOrDefault("GEMINI_KEYS", "")),
			FlashName: getEnvOrDefault("GEMINI_FLASH_MODEL", "gemini-2.5-flash"),
			ProName:   getEnvOrDefault("GEMINI_PRO_MODEL", "gemini-2.5-pro"),
		},
		WorkerCfg: WorkerConfig{
			AnalysisWorkers: getIntOrDefault("ANALYSIS_WORKERS", 4),
			QueueSize:       getIntOrDefault("ANALYSIS_QUEUE_SIZE", 64),
			JobTimeout:      getDurationOrDefault("ANALYSIS_JOB_TIMEOUT", 3*time.Minute),
		},
		ReconcileCfg: ReconcileConfig{
			Interval:    getDurationOrDefault("RECONCILE_INTERVAL", time.Hour),
			GracePeriod: getDurationOrDefault("RECONCILE_GRACE_PERIOD", 24*time.Hour),
		},
		ClientCache: ClientCacheConfig{
			Size: getIntOrDefault("CLIENT_CACHE_SIZE", 512),
			TTL:  getDurationOrDefault("CLIENT_CACHE_TTL", 5*time.Minute),
		},
	}
}

// AIConfigured reports whether the selected provider has credentials.
func (c *LiquidAppConfig) AIConfigured() bool {
	switch c.AIProvider {
	case ProviderGemini:
		return len(c.GeminiAPICfg.APIKeys) > 0
	default:
		return c.GroqCfg.APIKey != ""
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
