//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/infra"
	"github.com/attaboy/puzzlequest/internal/state"
	"github.com/attaboy/puzzlequest/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu       sync.Mutex
	messages []map[string]interface{}
	failAt   int
}

func (c *capturePublisher) Publish(_ context.Context, _ string, _, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAt > 0 && len(c.messages)+1 == c.failAt {
		return errors.New("broker down")
	}
	var m map[string]interface{}
	if err := json.Unmarshal(value, &m); err != nil {
		return err
	}
	c.messages = append(c.messages, m)
	return nil
}

// ─── Outbox Relay Tests ────────────────────────────────────────────────────

func TestOutbox_RelayDrainsInOrder(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.Bootstrap("ops", nil)
	ctx := context.Background()

	for _, to := range []string{"a", "b", "c"} {
		resp := env.POST("/admin/rewards", map[string]interface{}{"to": to, "amount": "1"}, admin)
		testutil.AssertStatus(t, resp, http.StatusCreated)
		resp.Body.Close()
	}

	staged, err := env.Store.Scan(ctx, state.OutboxPrefix, 0)
	require.NoError(t, err)
	require.Len(t, staged, 3)

	pub := &capturePublisher{failAt: 3}
	relay := infra.NewOutboxRelay(env.Store, pub, "test", 10, slog.New(slog.NewTextHandler(io.Discard, nil)))

	n, err := relay.RelayOnce(ctx)
	require.Error(t, err, "publish failure stops the batch")
	assert.Equal(t, 2, n)

	left, err := env.Store.Scan(ctx, state.OutboxPrefix, 0)
	require.NoError(t, err)
	assert.Len(t, left, 1, "unpublished entry stays staged")

	pub.failAt = 0
	n, err = relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, pub.messages, 3)
	for _, m := range pub.messages {
		assert.Equal(t, string(domain.EventTokensCredited), m["event_type"])
	}
}
