package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"edugame-platform"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres  Postgres
	Redis     Redis
	Security  Security
	Session   Session
	Generator Generator
	Ranking   Ranking
	CORS      CORS
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds cache + ranking configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing host control tokens.
type Security struct {
	HostTokenSecret string        `env:"HOST_TOKEN_SECRET,notEmpty"`
	HostTokenTTL    time.Duration `env:"HOST_TOKEN_TTL" envDefault:"4h"`
}

// Session groups gameplay and lifecycle defaults.
type Session struct {
	JoinCodeLength   int           `env:"SESSION_JOIN_CODE_LENGTH" envDefault:"6"`
	SweepInterval    time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"30s"`
	LobbyTimeout     time.Duration `env:"SESSION_LOBBY_TIMEOUT" envDefault:"15m"`
	AbandonTimeout   time.Duration `env:"SESSION_ABANDON_TIMEOUT" envDefault:"1h"`
	SnapshotTTL      time.Duration `env:"SESSION_SNAPSHOT_TTL" envDefault:"2h"`
	PerQuestionLimit time.Duration `env:"SESSION_PER_QUESTION_SECONDS" envDefault:"30s"`
}

// Generator configures the external question-bank generator service.
type Generator struct {
	URL         string        `env:"GENERATOR_URL"`
	APIKey      string        `env:"GENERATOR_API_KEY"`
	HTTPTimeout time.Duration `env:"GENERATOR_HTTP_TIMEOUT" envDefault:"6s"`
	CacheTTL    time.Duration `env:"GENERATOR_CACHE_TTL" envDefault:"10m"`
}

// Ranking governs live ranking reads and retention.
type Ranking struct {
	TopN     int           `env:"RANKING_TOP" envDefault:"10"`
	EntryTTL time.Duration `env:"RANKING_ENTRY_TTL" envDefault:"2h"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
