package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/event"
	"github.com/attaboy/puzzlequest/internal/guard"
	"github.com/attaboy/puzzlequest/internal/infra"
	"github.com/attaboy/puzzlequest/internal/leaderboard"
	"github.com/attaboy/puzzlequest/internal/projection"
	"github.com/attaboy/puzzlequest/internal/state"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	admin    domain.Address = "admin"
	verifier domain.Address = "oracle"
	alice    domain.Address = "alice"
	bob      domain.Address = "bob"
)

type fixture struct {
	p     *Platform
	store *state.MemStore
	clock *clockwork.FakeClock
	board *leaderboard.Recording
	cache *projection.InMemoryStore
}

func newFixture(t *testing.T, opts domain.InitOptions) *fixture {
	t.Helper()
	fake := clockwork.NewFakeClockAt(time.Unix(1000, 0))
	f := &fixture{
		store: state.NewMemStore(),
		clock: fake,
		board: &leaderboard.Recording{},
		cache: projection.NewInMemoryStore(),
	}
	f.p = NewPlatform(Deps{
		Store:       f.store,
		Clock:       infra.NewLedgerClock(fake),
		Leaderboard: f.board,
		Breaker:     guard.NewCircuitBreaker(3, time.Minute, fake),
		Cache:       f.cache,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	_, err := f.p.Initialize(context.Background(), f.p.Invocation(admin), admin, opts)
	require.NoError(t, err)
	return f
}

// at moves the fake clock to the given Unix second.
func (f *fixture) at(unix int64) {
	f.clock.Advance(time.Unix(unix, 0).Sub(f.clock.Now()))
}

func (f *fixture) puzzle(t *testing.T, id uint32, solution string, reward int64) {
	t.Helper()
	_, err := f.p.UpsertPuzzle(context.Background(), f.p.Invocation(admin), id, solution, "", domain.MustAmount(reward))
	require.NoError(t, err)
}

// scenarioEvent is {start=1000, end=2000, reward=500, bonus=15000, puzzles=[1,2]}.
func (f *fixture) scenarioEvent(t *testing.T) *domain.Event {
	t.Helper()
	e, err := f.p.CreateEvent(context.Background(), f.p.Invocation(admin), event.CreateParams{
		Name:               "Winter Hunt",
		StartTime:          1000,
		EndTime:            2000,
		RewardAmount:       domain.MustAmount(500),
		BonusMultiplierBps: 15000,
		NftMetadata:        "ipfs://winter",
		PuzzleIDs:          []uint32{1, 2},
	})
	require.NoError(t, err)
	return e
}

func (f *fixture) balance(t *testing.T, account domain.Address) string {
	t.Helper()
	bal, err := f.p.Balance(context.Background(), account)
	require.NoError(t, err)
	return bal.String()
}

// --- Initialization Tests ---

func TestInitialize_Once(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	cfg, err := f.p.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), cfg.Version)
	assert.Equal(t, domain.LeaderboardBestEffort, cfg.LeaderboardPolicy)
	assert.Equal(t, domain.CooldownReject, cfg.CooldownPolicy)

	_, err = f.p.Initialize(context.Background(), f.p.Invocation(admin), admin, domain.InitOptions{})
	assert.True(t, domain.HasCode(err, domain.CodeAlreadyInitialized))
}

func TestInitialize_RequiresSignature(t *testing.T) {
	p := NewPlatform(Deps{Store: state.NewMemStore(), Clock: infra.NewLedgerClock(clockwork.NewFakeClock())})
	_, err := p.Initialize(context.Background(), p.Invocation(bob), admin, domain.InitOptions{})
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))
}

func TestOperations_RequireInitialization(t *testing.T) {
	p := NewPlatform(Deps{Store: state.NewMemStore(), Clock: infra.NewLedgerClock(clockwork.NewFakeClock())})
	_, err := p.SubmitSolution(context.Background(), p.Invocation(alice), alice, 1, "42")
	assert.True(t, domain.HasCode(err, domain.CodeNotInitialized))

	_, err = p.DistributeReward(context.Background(), p.Invocation(admin), alice, domain.MustAmount(1))
	assert.True(t, domain.HasCode(err, domain.CodeNotInitialized))
}

func TestAdmin_ConfigVersionBumps(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()

	cfg, err := f.p.SetCooldown(ctx, f.p.Invocation(admin), 60, domain.CooldownCount)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), cfg.Version)

	cfg, err = f.p.SetLeaderboard(ctx, f.p.Invocation(admin), true, domain.LeaderboardStrict)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), cfg.Version)

	_, err = f.p.SetPaused(ctx, f.p.Invocation(bob), true)
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))

	_, err = f.p.SetCooldown(ctx, f.p.Invocation(admin), 1, "sometimes")
	assert.True(t, domain.HasCode(err, domain.CodeValidation))
}

func TestAdmin_Verifiers(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()

	ok, err := f.p.IsVerifier(ctx, verifier)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.p.AddVerifier(ctx, f.p.Invocation(admin), verifier))
	ok, _ = f.p.IsVerifier(ctx, verifier)
	assert.True(t, ok)

	require.NoError(t, f.p.RemoveVerifier(ctx, f.p.Invocation(admin), verifier))
	ok, _ = f.p.IsVerifier(ctx, verifier)
	assert.False(t, ok)

	ok, _ = f.p.IsVerifier(ctx, admin)
	assert.True(t, ok)
}

func TestUpsertPuzzle_SolutionOrFingerprint(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()

	_, err := f.p.UpsertPuzzle(ctx, f.p.Invocation(admin), 1, "", "", domain.MustAmount(10))
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	_, err = f.p.UpsertPuzzle(ctx, f.p.Invocation(alice), 1, "42", "", domain.MustAmount(10))
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))

	f.puzzle(t, 1, "42", 10)
	pz, err := f.p.GetPuzzle(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, pz.SolutionFingerprint, 64)
	assert.NotContains(t, pz.SolutionFingerprint, "42")
}

// --- Wallet Tests ---

func TestDistributeAndSpend(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()

	_, err := f.p.DistributeReward(ctx, f.p.Invocation(alice), alice, domain.MustAmount(100))
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))

	_, err = f.p.DistributeReward(ctx, f.p.Invocation(admin), alice, domain.MustAmount(100))
	require.NoError(t, err)
	assert.Equal(t, "100", f.balance(t, alice))

	_, err = f.p.SpendTokens(ctx, f.p.Invocation(alice), alice, domain.MustAmount(30), "hint")
	require.NoError(t, err)
	assert.Equal(t, "70", f.balance(t, alice))

	_, err = f.p.SpendTokens(ctx, f.p.Invocation(alice), alice, domain.MustAmount(71), "hint")
	assert.True(t, domain.HasCode(err, domain.CodeInsufficientBalance))
	assert.Equal(t, "70", f.balance(t, alice))

	_, err = f.p.SpendTokens(ctx, f.p.Invocation(bob), alice, domain.MustAmount(1), "hint")
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))

	res, err := f.p.Audit(ctx, alice)
	require.NoError(t, err)
	assert.True(t, res.AllPassed)
	assert.Equal(t, 2, res.EntryCount)
}

func TestBalance_ProjectionRefreshedAfterCommit(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()

	_, err := f.p.DistributeReward(ctx, f.p.Invocation(admin), alice, domain.MustAmount(5))
	require.NoError(t, err)

	cached, err := projection.GetBalance(ctx, f.cache, alice)
	require.NoError(t, err)
	assert.Equal(t, "5", cached.Balance.String())
}

// interleavingCache runs hook once, right before the first versioned write lands.
type interleavingCache struct {
	*projection.InMemoryStore
	hook  func()
	fired bool
}

func (c *interleavingCache) SetIfNewer(ctx context.Context, key string, value []byte, version uint64, ttl time.Duration) (bool, error) {
	if !c.fired && c.hook != nil {
		c.fired = true
		c.hook()
	}
	return c.InMemoryStore.SetIfNewer(ctx, key, value, version, ttl)
}

func TestBalance_ReadThroughDoesNotOverwriteNewerCommit(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Unix(1000, 0))
	cache := &interleavingCache{InMemoryStore: projection.NewInMemoryStore(), fired: true}
	p := NewPlatform(Deps{
		Store:  state.NewMemStore(),
		Clock:  infra.NewLedgerClock(fake),
		Cache:  cache,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx := context.Background()
	_, err := p.Initialize(ctx, p.Invocation(admin), admin, domain.InitOptions{})
	require.NoError(t, err)

	// The reward commits after the read-through has read the store but before
	// it writes the cache.
	cache.fired = false
	cache.hook = func() {
		_, err := p.DistributeReward(ctx, p.Invocation(admin), alice, domain.MustAmount(5))
		require.NoError(t, err)
	}

	first, err := p.Balance(ctx, alice)
	require.NoError(t, err)
	assert.True(t, first.IsZero(), "read-through answers with what it read")

	again, err := p.Balance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "5", again.String())

	cached, err := projection.GetBalance(ctx, cache, alice)
	require.NoError(t, err)
	assert.Equal(t, "5", cached.Balance.String())
	assert.NotZero(t, cached.Seq)
}

func TestPause_BlocksPlayerOperations(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()
	f.puzzle(t, 1, "42", 10)
	f.scenarioEvent(t)
	f.at(1500)

	_, err := f.p.SetPaused(ctx, f.p.Invocation(admin), true)
	require.NoError(t, err)

	_, err = f.p.SubmitSolution(ctx, f.p.Invocation(alice), alice, 1, "42")
	assert.True(t, domain.HasCode(err, domain.CodeEventPaused))

	ok, err := f.p.CanAccessEventContent(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	// admin operations keep working
	_, err = f.p.DistributeReward(ctx, f.p.Invocation(admin), alice, domain.MustAmount(1))
	require.NoError(t, err)

	_, err = f.p.SetPaused(ctx, f.p.Invocation(admin), false)
	require.NoError(t, err)
	ok, _ = f.p.CanAccessEventContent(ctx, 1)
	assert.True(t, ok)
}

// --- Puzzle Tests ---

func TestPuzzleScenario_NoRegression(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()
	f.puzzle(t, 7, "42", 10)

	res, err := f.p.SubmitSolution(ctx, f.p.Invocation(alice), alice, 7, "42")
	require.NoError(t, err)
	assert.True(t, res.Verified)

	st, err := f.p.GetPuzzleStatus(ctx, alice, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.PuzzleVerified, st.State)

	res, err = f.p.SubmitSolution(ctx, f.p.Invocation(alice), alice, 7, "41")
	require.NoError(t, err)
	assert.False(t, res.Verified)

	st, _ = f.p.GetPuzzleStatus(ctx, alice, 7)
	assert.Equal(t, domain.PuzzleVerified, st.State)
}

func TestVerifyAndReward_Idempotent(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()
	f.puzzle(t, 1, "42", 25)

	_, err := f.p.VerifyAndReward(ctx, f.p.Invocation(alice), alice, 1)
	assert.True(t, domain.HasCode(err, domain.CodeNotVerified))

	_, err = f.p.SubmitSolution(ctx, f.p.Invocation(alice), alice, 1, "42")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		ok, err := f.p.VerifyAndReward(ctx, f.p.Invocation(alice), alice, 1)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, "25", f.balance(t, alice))
}

func TestSubmit_CooldownReject(t *testing.T) {
	f := newFixture(t, domain.InitOptions{AttemptCooldownSecs: 30})
	ctx := context.Background()
	f.puzzle(t, 1, "42", 10)

	_, err := f.p.SubmitSolution(ctx, f.p.Invocation(alice), alice, 1, "1")
	require.NoError(t, err)

	f.at(1010)
	_, err = f.p.SubmitSolution(ctx, f.p.Invocation(alice), alice, 1, "42")
	assert.True(t, domain.HasCode(err, domain.CodeRateLimited))

	st, _ := f.p.GetPuzzleStatus(ctx, alice, 1)
	assert.Equal(t, uint32(1), st.AttemptCount)
	assert.Equal(t, domain.PuzzleSubmitted, st.State)

	f.at(1030)
	res, err := f.p.SubmitSolution(ctx, f.p.Invocation(alice), alice, 1, "42")
	require.NoError(t, err)
	assert.True(t, res.Verified)
}

func TestSubmit_CooldownCount(t *testing.T) {
	f := newFixture(t, domain.InitOptions{AttemptCooldownSecs: 30, CooldownPolicy: domain.CooldownCount})
	ctx := context.Background()
	f.puzzle(t, 1, "42", 10)

	_, err := f.p.SubmitSolution(ctx, f.p.Invocation(alice), alice, 1, "1")
	require.NoError(t, err)

	f.at(1010)
	res, err := f.p.SubmitSolution(ctx, f.p.Invocation(alice), alice, 1, "42")
	require.NoError(t, err)
	assert.True(t, res.RateLimited)
	assert.False(t, res.Verified)
	assert.Equal(t, uint64(20), res.RetryAfter)

	st, _ := f.p.GetPuzzleStatus(ctx, alice, 1)
	assert.Equal(t, uint32(2), st.AttemptCount)
	assert.Equal(t, uint64(1000), st.LastAttemptTime)
}

// --- Achievement Tests ---

func TestAchievement_MintTransferBurn(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()
	f.puzzle(t, 1, "42", 10)

	_, err := f.p.MintAchievement(ctx, f.p.Invocation(alice), alice, 1, "ipfs://one")
	assert.True(t, domain.HasCode(err, domain.CodeNotVerified))

	_, err = f.p.SubmitSolution(ctx, f.p.Invocation(alice), alice, 1, "42")
	require.NoError(t, err)
	_, err = f.p.VerifyAndReward(ctx, f.p.Invocation(alice), alice, 1)
	require.NoError(t, err)

	a, err := f.p.MintAchievement(ctx, f.p.Invocation(alice), alice, 1, "ipfs://one")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), a.TokenID)

	_, err = f.p.MintAchievement(ctx, f.p.Invocation(alice), alice, 1, "ipfs://one")
	assert.True(t, domain.HasCode(err, domain.CodeAlreadyMinted))

	_, err = f.p.TransferAchievement(ctx, f.p.Invocation(bob), alice, bob, a.TokenID)
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))

	_, err = f.p.TransferAchievement(ctx, f.p.Invocation(alice), alice, bob, a.TokenID)
	require.NoError(t, err)
	owner, err := f.p.OwnerOf(ctx, a.TokenID)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)

	coll, err := f.p.Collection(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, coll, 1)

	require.NoError(t, f.p.BurnAchievement(ctx, f.p.Invocation(bob), bob, a.TokenID))
	supply, err := f.p.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Zero(t, supply)

	_, err = f.p.GetAchievement(ctx, a.TokenID)
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}

// --- Event Tests ---

func TestEventScenario(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()
	e := f.scenarioEvent(t)
	require.NoError(t, f.p.AddVerifier(ctx, f.p.Invocation(admin), verifier))

	f.at(1500)
	ok, err := f.p.CanAccessEventContent(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.p.MintEventNft(ctx, f.p.Invocation(alice), e.ID, alice)
	assert.Error(t, err)

	_, err = f.p.RecordPuzzleCompletion(ctx, f.p.Invocation(verifier), verifier, e.ID, alice, 1, domain.MustAmount(10))
	require.NoError(t, err)

	reward, err := f.p.ClaimEventReward(ctx, f.p.Invocation(alice), e.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "750", reward.String())
	assert.Equal(t, "750", f.balance(t, alice))

	_, err = f.p.ClaimEventReward(ctx, f.p.Invocation(alice), e.ID, alice)
	assert.True(t, domain.HasCode(err, domain.CodeAlreadyClaimed))

	nft, err := f.p.MintEventNft(ctx, f.p.Invocation(alice), e.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://winter", nft.Metadata)

	claim, err := f.p.GetClaim(ctx, e.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimNftMinted, claim.State)
}

func TestEventClaim_OutsideWindow(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()
	e := f.scenarioEvent(t)

	f.at(1200)
	_, err := f.p.RecordPuzzleCompletion(ctx, f.p.Invocation(admin), admin, e.ID, alice, 2, domain.MustAmount(3))
	require.NoError(t, err)

	f.at(2001)
	_, err = f.p.ClaimEventReward(ctx, f.p.Invocation(alice), e.ID, alice)
	assert.True(t, domain.HasCode(err, domain.CodeEventInactive))
	active, _ := f.p.IsEventActive(ctx, e.ID)
	assert.False(t, active)
}

func TestRecordCompletion_UnregisteredVerifier(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()
	e := f.scenarioEvent(t)
	f.at(1500)

	_, err := f.p.RecordPuzzleCompletion(ctx, f.p.Invocation(bob), bob, e.ID, alice, 1, domain.MustAmount(1))
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))
}

// --- Leaderboard Tests ---

func TestLeaderboard_BestEffortSurvivesFailure(t *testing.T) {
	f := newFixture(t, domain.InitOptions{LeaderboardEnabled: true})
	ctx := context.Background()
	e := f.scenarioEvent(t)
	f.at(1500)
	f.board.SetErr(errors.New("leaderboard down"))

	_, err := f.p.RecordPuzzleCompletion(ctx, f.p.Invocation(admin), admin, e.ID, alice, 1, domain.MustAmount(4))
	require.NoError(t, err)
	_, err = f.p.RecordPuzzleCompletion(ctx, f.p.Invocation(admin), admin, e.ID, alice, 2, domain.MustAmount(6))
	require.NoError(t, err)

	score, err := f.p.GetEventScore(ctx, e.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "10", score.String())

	calls := f.board.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "10", calls[1].Score.String())
}

func TestLeaderboard_StrictAbortsTransaction(t *testing.T) {
	f := newFixture(t, domain.InitOptions{LeaderboardEnabled: true, LeaderboardPolicy: domain.LeaderboardStrict})
	ctx := context.Background()
	e := f.scenarioEvent(t)
	f.at(1500)
	f.board.SetErr(errors.New("leaderboard down"))

	_, err := f.p.RecordPuzzleCompletion(ctx, f.p.Invocation(admin), admin, e.ID, alice, 1, domain.MustAmount(4))
	assert.True(t, domain.HasCode(err, domain.CodeLeaderboard))

	done, err := f.p.HasCompletedPuzzle(ctx, e.ID, alice, 1)
	require.NoError(t, err)
	assert.False(t, done)

	f.board.SetErr(nil)
	_, err = f.p.RecordPuzzleCompletion(ctx, f.p.Invocation(admin), admin, e.ID, alice, 1, domain.MustAmount(4))
	require.NoError(t, err)
	done, _ = f.p.HasCompletedPuzzle(ctx, e.ID, alice, 1)
	assert.True(t, done)
}

func TestLeaderboard_Disabled(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()
	e := f.scenarioEvent(t)
	f.at(1500)

	_, err := f.p.RecordPuzzleCompletion(ctx, f.p.Invocation(admin), admin, e.ID, alice, 1, domain.MustAmount(4))
	require.NoError(t, err)
	assert.Empty(t, f.board.Calls())
}

// --- CompletePuzzle Tests ---

func TestCompletePuzzle_FullFlow(t *testing.T) {
	f := newFixture(t, domain.InitOptions{LeaderboardEnabled: true})
	ctx := context.Background()
	f.puzzle(t, 1, "42", 10)
	e := f.scenarioEvent(t)
	f.at(1500)

	res, err := f.p.CompletePuzzle(ctx, f.p.Invocation(alice), alice, 1, "42", CompleteOptions{
		Mint:     true,
		Metadata: "ipfs://one",
		EventID:  e.ID,
		Score:    domain.MustAmount(9),
	})
	require.NoError(t, err)
	assert.True(t, res.Submit.Verified)
	assert.True(t, res.Rewarded)
	require.NotNil(t, res.Achievement)
	require.NotNil(t, res.EventClaim)
	assert.Equal(t, "9", res.EventClaim.TotalScore.String())
	assert.Equal(t, "10", f.balance(t, alice))
	assert.Len(t, f.board.Calls(), 1)
}

func TestCompletePuzzle_WrongAnswerStopsEarly(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()
	f.puzzle(t, 1, "42", 10)

	res, err := f.p.CompletePuzzle(ctx, f.p.Invocation(alice), alice, 1, "41", CompleteOptions{Mint: true})
	require.NoError(t, err)
	assert.False(t, res.Submit.Verified)
	assert.Nil(t, res.Achievement)
	assert.Equal(t, "0", f.balance(t, alice))
}

func TestCompletePuzzle_LaterFailureRollsBack(t *testing.T) {
	f := newFixture(t, domain.InitOptions{})
	ctx := context.Background()
	f.puzzle(t, 1, "42", 10)
	e := f.scenarioEvent(t)
	f.at(2500)

	_, err := f.p.CompletePuzzle(ctx, f.p.Invocation(alice), alice, 1, "42", CompleteOptions{EventID: e.ID})
	assert.True(t, domain.HasCode(err, domain.CodeEventInactive))

	st, _ := f.p.GetPuzzleStatus(ctx, alice, 1)
	assert.Equal(t, domain.PuzzleUnsubmitted, st.State)
	assert.Equal(t, "0", f.balance(t, alice))
}
