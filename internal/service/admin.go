package service

import (
	"context"
	"fmt"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/event"
	"github.com/attaboy/puzzlequest/internal/puzzle"
	"github.com/attaboy/puzzlequest/internal/state"
)

// Initialize writes the platform config once. The admin must sign the call.
func (p *Platform) Initialize(ctx context.Context, inv domain.Invocation, admin domain.Address, opts domain.InitOptions) (*domain.PlatformConfig, error) {
	if err := domain.ValidateAddress(admin); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := inv.RequireAuth(admin); err != nil {
		return nil, err
	}
	opts = withInitDefaults(opts)
	if !opts.LeaderboardPolicy.Valid() {
		return nil, domain.ErrValidation(fmt.Sprintf("unknown leaderboard policy %q", opts.LeaderboardPolicy))
	}
	if !opts.CooldownPolicy.Valid() {
		return nil, domain.ErrValidation(fmt.Sprintf("unknown cooldown policy %q", opts.CooldownPolicy))
	}

	var cfg domain.PlatformConfig
	err := p.store.Update(ctx, func(tx state.Tx) error {
		exists, err := state.Has(ctx, tx, state.ConfigKey)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyInitialized()
		}
		cfg = domain.PlatformConfig{
			Version:             1,
			Admin:               admin,
			LeaderboardEnabled:  opts.LeaderboardEnabled,
			LeaderboardPolicy:   opts.LeaderboardPolicy,
			AttemptCooldownSecs: opts.AttemptCooldownSecs,
			CooldownPolicy:      opts.CooldownPolicy,
			InitializedAt:       inv.Now(),
			UpdatedAt:           inv.Now(),
		}
		return state.PutJSON(ctx, tx, state.ConfigKey, cfg)
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("platform initialized", "admin", admin, "leaderboard", cfg.LeaderboardEnabled,
		"leaderboard_policy", cfg.LeaderboardPolicy, "cooldown_secs", cfg.AttemptCooldownSecs)
	return &cfg, nil
}

func withInitDefaults(opts domain.InitOptions) domain.InitOptions {
	def := domain.DefaultInitOptions()
	if opts.LeaderboardPolicy == "" {
		opts.LeaderboardPolicy = def.LeaderboardPolicy
	}
	if opts.CooldownPolicy == "" {
		opts.CooldownPolicy = def.CooldownPolicy
	}
	return opts
}

// Config returns the current platform config.
func (p *Platform) Config(ctx context.Context) (*domain.PlatformConfig, error) {
	var cfg domain.PlatformConfig
	err := p.view(ctx, func(tx state.Tx) error {
		var err error
		cfg, err = loadConfig(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// requireAdmin checks that the configured admin signed inv.
func requireAdmin(inv domain.Invocation, cfg domain.PlatformConfig) error {
	if !inv.Signed(cfg.Admin) {
		return domain.ErrUnauthorized("admin authorization required")
	}
	return nil
}

// updateConfig applies mutate to the config under admin authorization and bumps
// its version.
func (p *Platform) updateConfig(ctx context.Context, inv domain.Invocation, mutate func(cfg *domain.PlatformConfig) error) (*domain.PlatformConfig, error) {
	var out domain.PlatformConfig
	err := p.adminUpdate(ctx, inv, func(sc *scope) error {
		cfg := sc.cfg
		if err := mutate(&cfg); err != nil {
			return err
		}
		cfg.Version++
		cfg.UpdatedAt = inv.Now()
		out = cfg
		return state.PutJSON(ctx, sc.tx, state.ConfigKey, cfg)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetPaused toggles the global pause flag.
func (p *Platform) SetPaused(ctx context.Context, inv domain.Invocation, paused bool) (*domain.PlatformConfig, error) {
	cfg, err := p.updateConfig(ctx, inv, func(cfg *domain.PlatformConfig) error {
		cfg.Paused = paused
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("platform pause changed", "paused", paused, "version", cfg.Version)
	return cfg, nil
}

// SetLeaderboard configures leaderboard forwarding.
func (p *Platform) SetLeaderboard(ctx context.Context, inv domain.Invocation, enabled bool, policy domain.LeaderboardPolicy) (*domain.PlatformConfig, error) {
	if policy == "" {
		policy = domain.LeaderboardBestEffort
	}
	if !policy.Valid() {
		return nil, domain.ErrValidation(fmt.Sprintf("unknown leaderboard policy %q", policy))
	}
	return p.updateConfig(ctx, inv, func(cfg *domain.PlatformConfig) error {
		cfg.LeaderboardEnabled = enabled
		cfg.LeaderboardPolicy = policy
		return nil
	})
}

// SetCooldown configures the attempt cooldown and its counting policy.
func (p *Platform) SetCooldown(ctx context.Context, inv domain.Invocation, secs uint64, policy domain.CooldownPolicy) (*domain.PlatformConfig, error) {
	if policy == "" {
		policy = domain.CooldownReject
	}
	if !policy.Valid() {
		return nil, domain.ErrValidation(fmt.Sprintf("unknown cooldown policy %q", policy))
	}
	return p.updateConfig(ctx, inv, func(cfg *domain.PlatformConfig) error {
		cfg.AttemptCooldownSecs = secs
		cfg.CooldownPolicy = policy
		return nil
	})
}

// AddVerifier registers addr as an event verifier.
func (p *Platform) AddVerifier(ctx context.Context, inv domain.Invocation, addr domain.Address) error {
	return p.setVerifier(ctx, inv, addr, true)
}

// RemoveVerifier revokes addr. Removing an unknown verifier is a no-op.
func (p *Platform) RemoveVerifier(ctx context.Context, inv domain.Invocation, addr domain.Address) error {
	return p.setVerifier(ctx, inv, addr, false)
}

func (p *Platform) setVerifier(ctx context.Context, inv domain.Invocation, addr domain.Address, enabled bool) error {
	if err := domain.ValidateAddress(addr); err != nil {
		return domain.ErrValidation(err.Error())
	}
	err := p.adminUpdate(ctx, inv, func(sc *scope) error {
		if enabled {
			return state.PutJSON(ctx, sc.tx, state.VerifierKey(addr), true)
		}
		return sc.tx.Delete(ctx, state.VerifierKey(addr))
	})
	if err != nil {
		return err
	}
	p.logger.Info("verifier set changed", "verifier", addr, "enabled", enabled)
	return nil
}

// IsVerifier reports whether addr may record event completions.
func (p *Platform) IsVerifier(ctx context.Context, addr domain.Address) (bool, error) {
	var ok bool
	err := p.view(ctx, func(tx state.Tx) error {
		var err error
		ok, err = verifierSet{}.Authorized(ctx, tx, addr)
		return err
	})
	return ok, err
}

// adminUpdate runs fn in a transaction signed by the configured admin.
func (p *Platform) adminUpdate(ctx context.Context, inv domain.Invocation, fn func(sc *scope) error) error {
	return p.update(ctx, func(sc *scope) error {
		if err := requireAdmin(inv, sc.cfg); err != nil {
			return err
		}
		return fn(sc)
	})
}

// UpsertPuzzle defines or replaces a puzzle. Exactly one of solution or
// fingerprint must be given; the plaintext solution is never stored.
func (p *Platform) UpsertPuzzle(ctx context.Context, inv domain.Invocation, id uint32, solution, fingerprint string, baseReward domain.Amount) (*domain.Puzzle, error) {
	switch {
	case solution != "" && fingerprint != "":
		return nil, domain.ErrValidation("provide either solution or fingerprint, not both")
	case solution != "":
		fingerprint = puzzle.Fingerprint(solution)
	case fingerprint == "":
		return nil, domain.ErrValidation("solution or fingerprint is required")
	}

	var out *domain.Puzzle
	err := p.adminUpdate(ctx, inv, func(sc *scope) error {
		var err error
		out, err = p.puzzles.Upsert(ctx, sc.tx, id, fingerprint, baseReward, inv.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("puzzle upserted", "puzzle_id", id, "base_reward", baseReward.String())
	return out, nil
}

// GetPuzzle returns a puzzle definition.
func (p *Platform) GetPuzzle(ctx context.Context, id uint32) (*domain.Puzzle, error) {
	var out *domain.Puzzle
	err := p.view(ctx, func(tx state.Tx) error {
		var err error
		out, err = p.puzzles.Get(ctx, tx, id)
		return err
	})
	return out, err
}

// DistributeReward credits tokens to a player. Admin only.
func (p *Platform) DistributeReward(ctx context.Context, inv domain.Invocation, to domain.Address, amount domain.Amount) (*domain.LedgerEntry, error) {
	if err := domain.ValidateAddress(to); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	var entry *domain.LedgerEntry
	err := p.adminUpdate(ctx, inv, func(sc *scope) error {
		var err error
		entry, err = p.ledger.Credit(ctx, sc.tx, to, amount, domain.ReasonDistribution, "", inv.Now())
		if err != nil {
			return err
		}
		sc.touch(to)
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("reward distributed", "to", to, "amount", amount.String(), "seq", entry.Seq)
	return entry, nil
}

// CreateEvent registers a new event. Admin only.
func (p *Platform) CreateEvent(ctx context.Context, inv domain.Invocation, params event.CreateParams) (*domain.Event, error) {
	var out *domain.Event
	err := p.adminUpdate(ctx, inv, func(sc *scope) error {
		var err error
		out, err = p.events.Create(ctx, sc.tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("event created", "event_id", out.ID, "name", out.Name,
		"start", out.StartTime, "end", out.EndTime, "puzzles", len(out.PuzzleIDs))
	return out, nil
}

// UpdateEventTimes moves an event window. Admin only.
func (p *Platform) UpdateEventTimes(ctx context.Context, inv domain.Invocation, id, start, end uint64) (*domain.Event, error) {
	return p.mutateEvent(ctx, inv, func(sc *scope) (*domain.Event, error) {
		return p.events.UpdateTimes(ctx, sc.tx, id, start, end)
	})
}

// UpdateEventRewards changes the reward amount and bonus multiplier. Admin only.
func (p *Platform) UpdateEventRewards(ctx context.Context, inv domain.Invocation, id uint64, amount domain.Amount, bps uint32) (*domain.Event, error) {
	return p.mutateEvent(ctx, inv, func(sc *scope) (*domain.Event, error) {
		return p.events.UpdateRewards(ctx, sc.tx, id, amount, bps)
	})
}

// UpdateEventPuzzles replaces the event's puzzle subset. Admin only.
func (p *Platform) UpdateEventPuzzles(ctx context.Context, inv domain.Invocation, id uint64, puzzleIDs []uint32) (*domain.Event, error) {
	return p.mutateEvent(ctx, inv, func(sc *scope) (*domain.Event, error) {
		return p.events.UpdatePuzzles(ctx, sc.tx, id, puzzleIDs)
	})
}

// SetEventPaused pauses or resumes a single event. Admin only.
func (p *Platform) SetEventPaused(ctx context.Context, inv domain.Invocation, id uint64, paused bool) (*domain.Event, error) {
	return p.mutateEvent(ctx, inv, func(sc *scope) (*domain.Event, error) {
		return p.events.SetPaused(ctx, sc.tx, id, paused)
	})
}

func (p *Platform) mutateEvent(ctx context.Context, inv domain.Invocation, fn func(sc *scope) (*domain.Event, error)) (*domain.Event, error) {
	var out *domain.Event
	err := p.adminUpdate(ctx, inv, func(sc *scope) error {
		var err error
		out, err = fn(sc)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("event updated", "event_id", out.ID, "paused", out.Paused)
	return out, nil
}
