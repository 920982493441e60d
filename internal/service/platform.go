package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/attaboy/puzzlequest/internal/achievement"
	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/event"
	"github.com/attaboy/puzzlequest/internal/guard"
	"github.com/attaboy/puzzlequest/internal/leaderboard"
	"github.com/attaboy/puzzlequest/internal/ledger"
	"github.com/attaboy/puzzlequest/internal/projection"
	"github.com/attaboy/puzzlequest/internal/puzzle"
	"github.com/attaboy/puzzlequest/internal/state"
)

// leaderboardCircuit is the breaker key of the leaderboard collaborator.
const leaderboardCircuit = "leaderboard"

// Clock supplies the ledger timestamp in Unix seconds.
type Clock interface {
	Now() uint64
}

// Deps holds the collaborators of the platform service. Leaderboard, Breaker and
// Cache may be nil.
type Deps struct {
	Store       state.Store
	Clock       Clock
	Leaderboard leaderboard.Submitter
	Breaker     *guard.CircuitBreaker
	Cache       projection.Store
	Logger      *slog.Logger
}

// Platform is the orchestrator. Every public operation runs as one atomic
// transaction against the state store.
type Platform struct {
	store         state.Store
	clock         Clock
	ledger        *ledger.Engine
	auditor       *ledger.Auditor
	puzzles       *puzzle.Registry
	progress      *puzzle.Tracker
	achievements  *achievement.Registry
	events        *event.Registry
	eventProgress *event.Tracker
	board         leaderboard.Submitter
	breaker       *guard.CircuitBreaker
	cache         projection.Store
	logger        *slog.Logger
}

// NewPlatform wires the components over one store.
func NewPlatform(deps Deps) *Platform {
	engine := ledger.NewEngine()
	puzzles := puzzle.NewRegistry()
	progress := puzzle.NewTracker(puzzles, engine)
	achievements := achievement.NewRegistry(progress)
	events := event.NewRegistry(verifierSet{})

	board := deps.Leaderboard
	if board == nil {
		board = leaderboard.Noop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Platform{
		store:         deps.Store,
		clock:         deps.Clock,
		ledger:        engine,
		auditor:       ledger.NewAuditor(deps.Store),
		puzzles:       puzzles,
		progress:      progress,
		achievements:  achievements,
		events:        events,
		eventProgress: event.NewTracker(events, engine, achievements),
		board:         board,
		breaker:       deps.Breaker,
		cache:         deps.Cache,
		logger:        logger,
	}
}

// Invocation reads the ledger clock once and binds it to the given signers.
func (p *Platform) Invocation(signers ...domain.Address) domain.Invocation {
	return domain.NewInvocation(p.clock.Now(), signers...)
}

// Ping checks the state backend.
func (p *Platform) Ping(ctx context.Context) error {
	return p.store.Ping(ctx)
}

// scope carries per-transaction context and the work deferred until commit.
type scope struct {
	tx      state.Tx
	cfg     domain.PlatformConfig
	touched map[domain.Address]struct{}
	scores  []leaderboard.Submission
}

func (sc *scope) touch(accounts ...domain.Address) {
	for _, a := range accounts {
		sc.touched[a] = struct{}{}
	}
}

// update runs fn in one transaction with the platform config loaded, then performs
// post-commit work: cache refresh and best-effort leaderboard forwarding.
func (p *Platform) update(ctx context.Context, fn func(sc *scope) error) error {
	var sc *scope
	err := p.store.Update(ctx, func(tx state.Tx) error {
		cfg, err := loadConfig(ctx, tx)
		if err != nil {
			return err
		}
		sc = &scope{tx: tx, cfg: cfg, touched: make(map[domain.Address]struct{})}
		return fn(sc)
	})
	if err != nil {
		return err
	}
	p.afterCommit(ctx, sc)
	return nil
}

// view runs fn in a read-only transaction. The config may be absent.
func (p *Platform) view(ctx context.Context, fn func(tx state.Tx) error) error {
	return p.store.View(ctx, fn)
}

// requireActivePlatform rejects player operations while the platform is paused.
func requireActivePlatform(cfg domain.PlatformConfig) error {
	if cfg.Paused {
		return domain.ErrEventPaused("platform is paused")
	}
	return nil
}

func (p *Platform) afterCommit(ctx context.Context, sc *scope) {
	for account := range sc.touched {
		p.refreshBalance(ctx, account)
	}
	for _, s := range sc.scores {
		if err := p.forwardScore(ctx, s.User, s.Score); err != nil {
			p.logger.Warn("leaderboard submission dropped",
				"user", s.User, "score", s.Score.String(), "error", err)
		}
	}
}

// forwardScore calls the leaderboard through the circuit breaker.
func (p *Platform) forwardScore(ctx context.Context, user domain.Address, score domain.Amount) error {
	if p.breaker != nil {
		if res := p.breaker.Check(ctx, leaderboardCircuit); !res.Allowed {
			return errors.New(res.Reason)
		}
	}
	err := p.board.SubmitScore(ctx, user, score)
	if p.breaker != nil {
		if err != nil {
			p.breaker.RecordFailure(leaderboardCircuit)
		} else {
			p.breaker.RecordSuccess(leaderboardCircuit)
		}
	}
	return err
}

// submitScore applies the configured leaderboard policy inside a transaction.
func (p *Platform) submitScore(ctx context.Context, sc *scope, user domain.Address, total domain.Amount) error {
	if !sc.cfg.LeaderboardEnabled {
		return nil
	}
	if sc.cfg.LeaderboardPolicy == domain.LeaderboardStrict {
		if err := p.forwardScore(ctx, user, total); err != nil {
			return domain.ErrLeaderboardUnavailable(err)
		}
		return nil
	}
	sc.scores = append(sc.scores, leaderboard.Submission{User: user, Score: total})
	return nil
}

func (p *Platform) refreshBalance(ctx context.Context, account domain.Address) {
	if p.cache == nil {
		return
	}
	var bal domain.Amount
	var seq uint64
	err := p.view(ctx, func(tx state.Tx) error {
		var err error
		bal, seq, err = p.ledger.Snapshot(ctx, tx, account)
		return err
	})
	if err == nil {
		err = projection.UpdateBalance(ctx, p.cache, projection.BalanceProjection{Account: account, Balance: bal, Seq: seq})
	}
	if err != nil {
		p.logger.Warn("balance projection refresh failed", "account", account, "error", err)
		_ = projection.InvalidateBalance(ctx, p.cache, account)
	}
}

// verifierSet authorizes the configured admin and registered verifiers.
type verifierSet struct{}

func (verifierSet) Authorized(ctx context.Context, tx state.Tx, addr domain.Address) (bool, error) {
	cfg, found, err := state.GetJSON[domain.PlatformConfig](ctx, tx, state.ConfigKey)
	if err != nil {
		return false, err
	}
	if found && cfg.Admin == addr {
		return true, nil
	}
	return state.Has(ctx, tx, state.VerifierKey(addr))
}

func loadConfig(ctx context.Context, tx state.Tx) (domain.PlatformConfig, error) {
	cfg, found, err := state.GetJSON[domain.PlatformConfig](ctx, tx, state.ConfigKey)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if !found {
		return cfg, domain.ErrNotInitialized()
	}
	return cfg, nil
}
