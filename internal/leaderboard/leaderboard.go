package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Submitter is the port to the external leaderboard's submit_score.
type Submitter interface {
	SubmitScore(ctx context.Context, user domain.Address, score domain.Amount) error
}

// Entry is one ranked leaderboard row.
type Entry struct {
	User  domain.Address `json:"user"`
	Score float64        `json:"score"`
	Rank  int64          `json:"rank"`
}

// DefaultKey is the sorted set holding event scores.
const DefaultKey = "leaderboard:score"

// RedisSubmitter keeps the leaderboard in a Redis sorted set.
type RedisSubmitter struct {
	client redis.UniversalClient
	key    string
}

// NewRedisSubmitter creates a submitter writing to the given sorted set key.
func NewRedisSubmitter(client redis.UniversalClient, key string) *RedisSubmitter {
	if key == "" {
		key = DefaultKey
	}
	return &RedisSubmitter{client: client, key: key}
}

// SubmitScore sets the user's score in the sorted set.
func (r *RedisSubmitter) SubmitScore(ctx context.Context, user domain.Address, score domain.Amount) error {
	err := r.client.ZAdd(ctx, r.key, redis.Z{
		Score:  score.Float64(),
		Member: string(user),
	}).Err()
	if err != nil {
		return fmt.Errorf("leaderboard zadd: %w", err)
	}
	return nil
}

// Top returns the highest n scores, rank 1 first.
func (r *RedisSubmitter) Top(ctx context.Context, n int64) ([]Entry, error) {
	results, err := r.client.ZRevRangeWithScores(ctx, r.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard top: %w", err)
	}
	entries := make([]Entry, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		entries[i] = Entry{User: domain.Address(member), Score: z.Score, Rank: int64(i) + 1}
	}
	return entries, nil
}

// Rank returns the 1-indexed rank of user, or 0 if absent.
func (r *RedisSubmitter) Rank(ctx context.Context, user domain.Address) (int64, error) {
	rank, err := r.client.ZRevRank(ctx, r.key, string(user)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("leaderboard rank: %w", err)
	}
	return rank + 1, nil
}

// Noop discards every submission.
type Noop struct{}

func (Noop) SubmitScore(context.Context, domain.Address, domain.Amount) error { return nil }

// Submission is one call captured by Recording.
type Submission struct {
	User  domain.Address
	Score domain.Amount
}

// Recording captures submissions and can be told to fail.
type Recording struct {
	mu    sync.Mutex
	calls []Submission
	Err   error
}

// SubmitScore records the call, then returns Err.
func (r *Recording) SubmitScore(_ context.Context, user domain.Address, score domain.Amount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Submission{User: user, Score: score})
	return r.Err
}

// Calls returns a copy of the recorded submissions.
func (r *Recording) Calls() []Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Submission, len(r.calls))
	copy(out, r.calls)
	return out
}

// SetErr changes the error returned by subsequent calls.
func (r *Recording) SetErr(err error) {
	r.mu.Lock()
	r.Err = err
	r.mu.Unlock()
}
