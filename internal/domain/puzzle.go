package domain

// Puzzle is an admin-defined puzzle. The plaintext solution is never stored.
type Puzzle struct {
	ID                  uint32 `json:"id"`
	SolutionFingerprint string `json:"solution_fingerprint"`
	BaseReward          Amount `json:"base_reward"`
	UpdatedAt           uint64 `json:"updated_at"`
}

// PuzzleState is the verification state of one (player, puzzle) pair.
type PuzzleState string

const (
	PuzzleUnsubmitted PuzzleState = "unsubmitted"
	PuzzleSubmitted   PuzzleState = "submitted"
	PuzzleVerified    PuzzleState = "verified"
	PuzzleRewarded    PuzzleState = "rewarded"
)

// rank orders the states along the only legal direction of travel.
func (s PuzzleState) rank() int {
	switch s {
	case PuzzleSubmitted:
		return 1
	case PuzzleVerified:
		return 2
	case PuzzleRewarded:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether s has reached other.
func (s PuzzleState) AtLeast(other PuzzleState) bool { return s.rank() >= other.rank() }

// CanTransition reports whether s -> next is a legal move. Rewarded is terminal and
// nothing moves backwards.
func (s PuzzleState) CanTransition(next PuzzleState) bool {
	switch s {
	case PuzzleUnsubmitted, "":
		return next == PuzzleSubmitted || next == PuzzleVerified
	case PuzzleSubmitted:
		return next == PuzzleSubmitted || next == PuzzleVerified
	case PuzzleVerified:
		return next == PuzzleRewarded
	default:
		return false
	}
}

// PuzzleProgress is the per (player, puzzle) verification record.
type PuzzleProgress struct {
	Player           Address     `json:"player"`
	PuzzleID         uint32      `json:"puzzle_id"`
	State            PuzzleState `json:"state"`
	AttemptCount     uint32      `json:"attempt_count"`
	RateLimitedCount uint32      `json:"rate_limited_count"`
	LastAttemptTime  uint64      `json:"last_attempt_time"`
	VerifiedAt       uint64      `json:"verified_at,omitempty"`
	RewardedAt       uint64      `json:"rewarded_at,omitempty"`
}

// PuzzleStatus is the read-only projection returned by get_puzzle_status.
type PuzzleStatus struct {
	PuzzleID        uint32      `json:"puzzle_id"`
	State           PuzzleState `json:"state"`
	AttemptCount    uint32      `json:"attempt_count"`
	LastAttemptTime uint64      `json:"last_attempt_time"`
}

// Status projects the progress record.
func (p PuzzleProgress) Status() PuzzleStatus {
	state := p.State
	if state == "" {
		state = PuzzleUnsubmitted
	}
	return PuzzleStatus{
		PuzzleID:        p.PuzzleID,
		State:           state,
		AttemptCount:    p.AttemptCount,
		LastAttemptTime: p.LastAttemptTime,
	}
}

// CooldownPolicy decides what a submission rejected for cooldown does to the counters.
type CooldownPolicy string

const (
	// CooldownReject aborts the call; nothing is persisted.
	CooldownReject CooldownPolicy = "reject"
	// CooldownCount persists the attempt (attempt_count and rate_limited_count grow)
	// and reports RateLimited after commit.
	CooldownCount CooldownPolicy = "count"
)

// Valid reports whether p is a known policy.
func (p CooldownPolicy) Valid() bool { return p == CooldownReject || p == CooldownCount }
