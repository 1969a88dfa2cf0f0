package app

import (
	"strings"
	"time"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/clients/anthropic"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/clients/openai"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/clients/redis"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/data/db"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/observability"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/pkg/logger"
	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/utils"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port        string
	CORSOrigins []string

	DB db.Config

	LLMProvider       string
	OpenAI            openai.Config
	Anthropic         anthropic.Config
	LLMMaxConcurrency int64
	AgentTimeout      time.Duration
	HistoryLimit      int

	Redis          redis.Config
	RedisChannel   string
	SessionLockTTL time.Duration

	MetricsEnabled bool
	Otel           observability.OtelConfig

	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        utils.GetEnv("PORT", "8080", log),
		CORSOrigins: utils.GetEnvAsList("CORS_ALLOWED_ORIGINS", log),

		DB: db.Config{
			Driver:           utils.GetEnv("DB_DRIVER", db.DriverPostgres, log),
			PostgresHost:     utils.GetEnv("POSTGRES_HOST", "localhost", log),
			PostgresPort:     utils.GetEnv("POSTGRES_PORT", "5432", log),
			PostgresUser:     utils.GetEnv("POSTGRES_USER", "postgres", log),
			PostgresPassword: utils.GetEnv("POSTGRES_PASSWORD", "", log),
			PostgresName:     utils.GetEnv("POSTGRES_NAME", "self_analysis", log),
			PostgresSSLMode:  utils.GetEnv("POSTGRES_SSLMODE", "disable", log),
			SQLitePath:       utils.GetEnv("SQLITE_PATH", "self_analysis.db", log),
			MaxOpenConns:     utils.GetEnvAsInt("DB_MAX_OPEN_CONNS", 20, log),
		},

		LLMProvider: strings.ToLower(utils.GetEnv("LLM_PROVIDER", ProviderOpenAI, log)),
		OpenAI: openai.Config{
			APIKey:      utils.GetEnv("OPENAI_API_KEY", "", nil),
			BaseURL:     utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com", log),
			Model:       utils.GetEnv("OPENAI_MODEL", "gpt-4o-mini", log),
			Temperature: utils.GetEnvAsFloat("OPENAI_TEMPERATURE", 0.4, log),
			Timeout:     utils.GetEnvAsSeconds("OPENAI_TIMEOUT_SECONDS", 60*time.Second, log),
			MaxRetries:  utils.GetEnvAsInt("OPENAI_MAX_RETRIES", 0, log),
		},
		Anthropic: anthropic.Config{
			APIKey:     utils.GetEnv("ANTHROPIC_API_KEY", "", nil),
			BaseURL:    utils.GetEnv("ANTHROPIC_BASE_URL", "", log),
			Model:      utils.GetEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5", log),
			MaxTokens:  int64(utils.GetEnvAsInt("ANTHROPIC_MAX_TOKENS", 2048, log)),
			Timeout:    utils.GetEnvAsSeconds("ANTHROPIC_TIMEOUT_SECONDS", 60*time.Second, log),
			MaxRetries: utils.GetEnvAsInt("ANTHROPIC_MAX_RETRIES", 0, log),
		},
		LLMMaxConcurrency: int64(utils.GetEnvAsInt("LLM_MAX_CONCURRENCY", 4, log)),
		AgentTimeout:      utils.GetEnvAsSeconds("AGENT_TIMEOUT_SECONDS", 90*time.Second, log),
		HistoryLimit:      utils.GetEnvAsInt("AGENT_HISTORY_LIMIT", 12, log),

		Redis: redis.Config{
			Addr:     utils.GetEnv("REDIS_ADDR", "", log),
			Password: utils.GetEnv("REDIS_PASSWORD", "", nil),
			DB:       utils.GetEnvAsInt("REDIS_DB", 0, log),
		},
		RedisChannel:   utils.GetEnv("REDIS_CHANNEL", "self_analysis_events", log),
		SessionLockTTL: utils.GetEnvAsSeconds("SESSION_LOCK_TTL_SECONDS", 5*time.Minute, log),

		MetricsEnabled: utils.GetEnvAsBool("METRICS_ENABLED", true, log),
		Otel: observability.OtelConfig{
			Enabled:     utils.GetEnvAsBool("OTEL_ENABLED", false, log),
			ServiceName: utils.GetEnv("OTEL_SERVICE_NAME", "self-analysis", log),
			Environment: utils.GetEnv("APP_ENV", "development", log),
			Version:     utils.GetEnv("APP_VERSION", "dev", log),
			Endpoint:    utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseOTLPHeaders(utils.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", nil)),
			Insecure:    utils.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: utils.GetEnvAsFloat("OTEL_SAMPLER_RATIO", 0.1, log),
		},

		ShutdownTimeout: utils.GetEnvAsSeconds("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second, log),
	}

	// A turn makes at most three agent calls under the session lock.
	if floor := minSessionLockTTL(cfg.AgentTimeout); cfg.SessionLockTTL < floor {
		if log != nil {
			log.Warn("SESSION_LOCK_TTL_SECONDS below turn budget, raising", "configured", cfg.SessionLockTTL, "using", floor)
		}
		cfg.SessionLockTTL = floor
	}
	return cfg
}

func minSessionLockTTL(agentTimeout time.Duration) time.Duration {
	return 3*agentTimeout + 30*time.Second
}
