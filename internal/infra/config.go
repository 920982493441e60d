package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// State backend: "postgres" or "memory"
	StateBackend string `env:"STATE_BACKEND" envDefault:"postgres"`

	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"puzzlequest"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"puzzlequest"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"puzzlequest"`
	PGMaxConns  int32  `env:"PG_MAX_CONNS" envDefault:"8"`

	// Redis (leaderboard sorted set + balance projections). Empty disables both.
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"puzzlequest:"`

	// Leaderboard collaborator
	LeaderboardKey          string        `env:"LEADERBOARD_KEY" envDefault:"leaderboard:score"`
	LeaderboardFailures     int           `env:"LEADERBOARD_BREAKER_FAILURES" envDefault:"5"`
	LeaderboardResetTimeout time.Duration `env:"LEADERBOARD_BREAKER_RESET" envDefault:"30s"`

	// JWT
	JWTSecret         string `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTPlayerExpiry   string `env:"JWT_PLAYER_EXPIRY" envDefault:"24h"`
	JWTAdminExpiry    string `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`
	JWTVerifierExpiry string `env:"JWT_VERIFIER_EXPIRY" envDefault:"720h"`

	// Server
	APIPort        int           `env:"API_PORT" envDefault:"3100"`
	RateLimit      int           `env:"RATE_LIMIT" envDefault:"120"`
	RateWindow     time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaTopic   string `env:"KAFKA_TOPIC" envDefault:"puzzlequest.events"`

	// Outbox relay
	OutboxInterval  time.Duration `env:"OUTBOX_INTERVAL" envDefault:"2s"`
	OutboxBatchSize int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	// Run the relay inside the API process (required for the memory backend)
	OutboxInProcess bool `env:"OUTBOX_IN_PROCESS" envDefault:"false"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadDotEnv loads .env files into the process environment without overriding
// variables that are already set. Missing files are not an error.
func LoadDotEnv(logger *slog.Logger, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no env file", "file", f)
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
		logger.Info("loaded env file", "file", f)
	}
	return nil
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass (local dev only).
func (c *Config) Validate() error {
	if c.StateBackend != "postgres" && c.StateBackend != "memory" {
		return fmt.Errorf("STATE_BACKEND must be postgres or memory, got %q", c.StateBackend)
	}
	if c.PGMaxConns <= 0 {
		return fmt.Errorf("PG_MAX_CONNS must be positive")
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive")
	}
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	if c.StateBackend == "memory" {
		return fmt.Errorf("STATE_BACKEND=memory loses all balances on restart; set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// Expiries parses the JWT lifetimes.
func (c *Config) Expiries() (player, admin, verifier time.Duration, err error) {
	if player, err = time.ParseDuration(c.JWTPlayerExpiry); err != nil {
		return 0, 0, 0, fmt.Errorf("JWT_PLAYER_EXPIRY: %w", err)
	}
	if admin, err = time.ParseDuration(c.JWTAdminExpiry); err != nil {
		return 0, 0, 0, fmt.Errorf("JWT_ADMIN_EXPIRY: %w", err)
	}
	if verifier, err = time.ParseDuration(c.JWTVerifierExpiry); err != nil {
		return 0, 0, 0, fmt.Errorf("JWT_VERIFIER_EXPIRY: %w", err)
	}
	return player, admin, verifier, nil
}

// DefaultPolicies returns the Initialize options used when the admin sends none.
func (c *Config) DefaultPolicies() domain.InitOptions {
	opts := domain.DefaultInitOptions()
	opts.LeaderboardEnabled = c.RedisURL != ""
	return opts
}
