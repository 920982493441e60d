//go:build integration

package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/attaboy/puzzlequest/internal/app"
	"github.com/attaboy/puzzlequest/internal/auth"
	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/guard"
	"github.com/attaboy/puzzlequest/internal/infra"
	"github.com/attaboy/puzzlequest/internal/leaderboard"
	"github.com/attaboy/puzzlequest/internal/projection"
	"github.com/attaboy/puzzlequest/internal/service"
	"github.com/attaboy/puzzlequest/internal/state"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

const (
	TestJWTSecret = "integration-test-secret"
	TestDBHost    = "localhost"
	TestDBPort    = 5435
	TestDBUser    = "puzzlequest"
	TestDBPass    = "puzzlequest"
	TestDBName    = "puzzlequest_test"
	TestRedisURL  = "redis://localhost:6380/15"
	TestKeyPrefix = "pq-test:"

	// StartUnix is the fake ledger time every environment starts at.
	StartUnix = 1500
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server   *httptest.Server
	Pool     *pgxpool.Pool
	Store    *state.PgStore
	Redis    *redis.Client
	Platform *service.Platform
	JWTMgr   *auth.JWTManager
	Clock    *clockwork.FakeClock
	t        *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

func testDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, TestDBName)
}

func bootstrapDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, "puzzlequest")
}

func ensureTestDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to the main database to create the test database
	bPool, err := pgxpool.New(ctx, bootstrapDSN())
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", TestDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}

	if !exists {
		_, err = bPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", TestDBName))
		if err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}

	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SharedPool returns the migrated pool shared by every test in the run.
func SharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		if err := ensureTestDB(); err != nil {
			poolErr = err
			return
		}
		if _, err := infra.RunMigrations(testDSN(), quietLogger()); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolCfg, err := pgxpool.ParseConfig(testDSN())
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// RedisClient connects to the test Redis, skipping the test when it is unreachable.
func RedisClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		url = TestRedisURL
	}
	client, err := infra.NewRedisClient(context.Background(), &infra.Config{RedisURL: url})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() {
		flushPrefix(client)
		_ = client.Close()
	})
	flushPrefix(client)
	return client
}

// Option customizes NewTestEnv.
type Option func(*service.Deps)

// WithLeaderboard replaces the leaderboard collaborator.
func WithLeaderboard(s leaderboard.Submitter) Option {
	return func(d *service.Deps) { d.Leaderboard = s }
}

// WithRedis routes the leaderboard and balance projections through Redis.
func WithRedis(client *redis.Client) Option {
	return func(d *service.Deps) {
		d.Leaderboard = leaderboard.NewRedisSubmitter(client, TestKeyPrefix+leaderboard.DefaultKey)
		d.Cache = projection.NewRedisStore(client, TestKeyPrefix)
	}
}

// NewTestEnv creates a test environment with an httptest.Server backed by the real router
// and a Postgres state store.
func NewTestEnv(t *testing.T, opts ...Option) *TestEnv {
	t.Helper()

	pool := SharedPool(t)
	store := state.NewPgStore(pool)
	fake := clockwork.NewFakeClockAt(time.Unix(StartUnix, 0))
	logger := quietLogger()

	deps := service.Deps{
		Store:   store,
		Clock:   infra.NewLedgerClock(fake),
		Breaker: guard.NewCircuitBreaker(3, time.Minute, fake),
		Logger:  logger,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	platform := service.NewPlatform(deps)

	jwtMgr := auth.NewJWTManager(TestJWTSecret, 24*time.Hour, 8*time.Hour, 12*time.Hour).WithClock(fake)
	router := app.NewRouter(app.RouterDeps{
		Platform:     platform,
		JWTMgr:       jwtMgr,
		Logger:       logger,
		RateLimiter:  guard.NewRateLimiter(10000, time.Minute, fake),
		Idempotency:  guard.NewIdempotencyGuard(time.Hour, fake),
		CORSOrigins:  "*",
		InitDefaults: domain.DefaultInitOptions(),
	})

	server := httptest.NewServer(router)

	env := &TestEnv{
		Server:   server,
		Pool:     pool,
		Store:    store,
		Platform: platform,
		JWTMgr:   jwtMgr,
		Clock:    fake,
		t:        t,
	}

	t.Cleanup(func() {
		server.Close()
		env.CleanAll()
	})

	// Clean before test to ensure isolation
	env.CleanAll()

	return env
}
