//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/leaderboard"
	"github.com/attaboy/puzzlequest/internal/projection"
	"github.com/attaboy/puzzlequest/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Redis Leaderboard Tests ───────────────────────────────────────────────

func TestLeaderboard_RedisRanksEventScores(t *testing.T) {
	rdb := testutil.RedisClient(t)
	env := testutil.NewTestEnv(t, testutil.WithRedis(rdb))
	admin := env.Bootstrap("ops", &domain.InitOptions{
		LeaderboardEnabled: true,
		LeaderboardPolicy:  domain.LeaderboardStrict,
		CooldownPolicy:     domain.CooldownReject,
	})
	oracle := env.VerifierToken("oracle")

	resp := env.POST("/admin/events", map[string]interface{}{
		"name": "Ladder", "start_time": 1000, "end_time": 2000,
		"reward_amount": "10", "puzzle_ids": []int{1, 2},
	}, admin)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()
	resp = env.POST("/admin/verifiers/oracle", nil, admin)
	resp.Body.Close()

	record := func(user string, puzzle int, score string) {
		t.Helper()
		resp := env.POST("/events/1/completions", map[string]interface{}{
			"user": user, "puzzle_id": puzzle, "score": score,
		}, oracle)
		testutil.AssertStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}
	record("alice", 1, "5")
	record("bob", 1, "8")
	record("alice", 2, "6")

	board := leaderboard.NewRedisSubmitter(rdb, testutil.TestKeyPrefix+leaderboard.DefaultKey)
	top, err := board.Top(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, domain.Address("alice"), top[0].User)
	assert.Equal(t, 11.0, top[0].Score)
	assert.Equal(t, domain.Address("bob"), top[1].User)

	rank, err := board.Rank(context.Background(), "carol")
	require.NoError(t, err)
	assert.Zero(t, rank)
}

// ─── Redis Projection Tests ────────────────────────────────────────────────

func TestProjection_BalanceCachedInRedis(t *testing.T) {
	rdb := testutil.RedisClient(t)
	env := testutil.NewTestEnv(t, testutil.WithRedis(rdb))
	admin := env.Bootstrap("ops", nil)

	resp := env.POST("/admin/rewards", map[string]interface{}{"to": "erin", "amount": "40"}, admin)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	cache := projection.NewRedisStore(rdb, testutil.TestKeyPrefix)
	p, err := projection.GetBalance(context.Background(), cache, "erin")
	require.NoError(t, err)
	assert.Equal(t, "40", p.Balance.String())

	testutil.AssertBalance(t, env, "erin", "40")
}

func TestProjection_RedisRejectsOlderVersion(t *testing.T) {
	rdb := testutil.RedisClient(t)
	testutil.NewTestEnv(t, testutil.WithRedis(rdb))
	cache := projection.NewRedisStore(rdb, testutil.TestKeyPrefix)
	ctx := context.Background()

	ok, err := cache.SetIfNewer(ctx, "v", []byte("new"), 7, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, cache.Delete(ctx, "v"))
	ok, err = cache.SetIfNewer(ctx, "v", []byte("old"), 6, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "version survives delete")

	_, err = cache.Get(ctx, "v")
	assert.ErrorIs(t, err, projection.ErrMiss)

	ok, err = cache.SetIfNewer(ctx, "v", []byte("newer"), 8, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err := cache.Get(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, []byte("newer"), got)
}
