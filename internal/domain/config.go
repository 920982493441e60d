package domain

// LeaderboardPolicy decides whether a failed leaderboard forward aborts the call.
type LeaderboardPolicy string

const (
	// LeaderboardBestEffort forwards after commit and ignores failures.
	LeaderboardBestEffort LeaderboardPolicy = "best_effort"
	// LeaderboardStrict forwards inside the transaction; a failure aborts it.
	LeaderboardStrict LeaderboardPolicy = "strict"
)

// Valid reports whether p is a known policy.
func (p LeaderboardPolicy) Valid() bool {
	return p == LeaderboardBestEffort || p == LeaderboardStrict
}

// PlatformConfig is the single versioned administrative record. It is written once by
// Initialize and afterwards only by explicit admin calls, each bumping Version.
type PlatformConfig struct {
	Version             uint32            `json:"version"`
	Admin               Address           `json:"admin"`
	Paused              bool              `json:"paused"`
	LeaderboardEnabled  bool              `json:"leaderboard_enabled"`
	LeaderboardPolicy   LeaderboardPolicy `json:"leaderboard_policy"`
	AttemptCooldownSecs uint64            `json:"attempt_cooldown_secs"`
	CooldownPolicy      CooldownPolicy    `json:"cooldown_policy"`
	InitializedAt       uint64            `json:"initialized_at"`
	UpdatedAt           uint64            `json:"updated_at"`
}

// InitOptions are the tunables accepted by Initialize.
type InitOptions struct {
	LeaderboardEnabled  bool              `json:"leaderboard_enabled"`
	LeaderboardPolicy   LeaderboardPolicy `json:"leaderboard_policy"`
	AttemptCooldownSecs uint64            `json:"attempt_cooldown_secs"`
	CooldownPolicy      CooldownPolicy    `json:"cooldown_policy"`
}

// DefaultInitOptions returns the defaults used when a field is left empty.
func DefaultInitOptions() InitOptions {
	return InitOptions{
		LeaderboardPolicy:   LeaderboardBestEffort,
		AttemptCooldownSecs: 30,
		CooldownPolicy:      CooldownReject,
	}
}
