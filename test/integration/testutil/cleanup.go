//go:build integration

package testutil

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// CleanAll wipes the state table.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = env.Pool.Exec(ctx, "TRUNCATE TABLE kv_state")
}

// flushPrefix deletes every test key from Redis.
func flushPrefix(client *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	iter := client.Scan(ctx, 0, TestKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		_ = client.Del(ctx, iter.Val()).Err()
	}
}
