package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/freshbasket/storefront/internal/db"
)

var (
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// TestMain spins up throwaway Postgres and Redis containers for the whole
// package. Set INTEGRATION=1 to run; CI without Docker skips cleanly.
func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION") == "" {
		fmt.Println("integration tests skipped; set INTEGRATION=1 to run")
		os.Exit(0)
	}

	ctx := context.Background()

	pgC, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("freshbasket"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "start postgres:", err)
		os.Exit(1)
	}

	redisC, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		fmt.Fprintln(os.Stderr, "start redis:", err)
		os.Exit(1)
	}

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintln(os.Stderr, "postgres url:", err)
		os.Exit(1)
	}
	pool, err = db.Connect(ctx, pgURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect postgres:", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}

	redisURL, err := redisC.ConnectionString(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "redis url:", err)
		os.Exit(1)
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse redis url:", err)
		os.Exit(1)
	}
	rdb = redis.NewClient(opts)

	code := m.Run()

	pool.Close()
	_ = rdb.Close()
	_ = testcontainers.TerminateContainer(pgC)
	_ = testcontainers.TerminateContainer(redisC)
	os.Exit(code)
}

// resetTables clears all state between tests.
func resetTables(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := pool.Exec(ctx, `TRUNCATE outbox, order_lines, orders, cart_lines, products, users`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if err := rdb.FlushAll(ctx).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
}
