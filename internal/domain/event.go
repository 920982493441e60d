package domain

// Event is an admin-created, time-boxed seasonal event.
type Event struct {
	ID                 uint64   `json:"id"`
	Name               string   `json:"name"`
	StartTime          uint64   `json:"start_time"`
	EndTime            uint64   `json:"end_time"`
	RewardAmount       Amount   `json:"reward_amount"`
	BonusMultiplierBps uint32   `json:"bonus_multiplier_bps"`
	NftMetadata        string   `json:"nft_metadata"`
	PuzzleIDs          []uint32 `json:"puzzle_ids"`
	Paused             bool     `json:"paused"`
}

// EventPhase is derived from timestamps on every call; it is never persisted.
type EventPhase string

const (
	EventScheduled EventPhase = "scheduled"
	EventActive    EventPhase = "active"
	EventEnded     EventPhase = "ended"
)

// PhaseAt returns the time-derived phase at now, ignoring pause flags.
func (e Event) PhaseAt(now uint64) EventPhase {
	switch {
	case now < e.StartTime:
		return EventScheduled
	case now > e.EndTime:
		return EventEnded
	default:
		return EventActive
	}
}

// ActiveAt reports whether the event admits claims and content access at now.
// The window is inclusive on both ends.
func (e Event) ActiveAt(now uint64) bool {
	return !e.Paused && e.PhaseAt(now) == EventActive
}

// HasPuzzle reports whether puzzleID belongs to the event.
func (e Event) HasPuzzle(puzzleID uint32) bool {
	for _, id := range e.PuzzleIDs {
		if id == puzzleID {
			return true
		}
	}
	return false
}

// Reward applies the bonus multiplier to the base reward.
func (e Event) Reward() (Amount, bool) {
	bps := e.BonusMultiplierBps
	if bps == 0 {
		bps = BpsBase
	}
	return e.RewardAmount.MulBps(bps)
}

// EventProgress is the per (event, player, puzzle) completion record.
type EventProgress struct {
	EventID    uint64  `json:"event_id"`
	Player     Address `json:"player"`
	PuzzleID   uint32  `json:"puzzle_id"`
	Score      Amount  `json:"score"`
	RecordedAt uint64  `json:"recorded_at"`
}

// ClaimState is the per (event, player) reward state. Claimed never reverts.
type ClaimState string

const (
	ClaimUnclaimed ClaimState = "unclaimed"
	ClaimClaimed   ClaimState = "claimed"
	ClaimNftMinted ClaimState = "nft_minted"
)

// EventClaim tracks participation, the running score and the claim lifecycle
// of one player in one event.
type EventClaim struct {
	EventID    uint64     `json:"event_id"`
	Player     Address    `json:"player"`
	State      ClaimState `json:"state"`
	TotalScore Amount     `json:"total_score"`
	Reward     Amount     `json:"reward"`
	ClaimedAt  uint64     `json:"claimed_at,omitempty"`
	TokenID    uint32     `json:"token_id,omitempty"`
}

// Claimed reports whether the reward has been paid out.
func (c EventClaim) Claimed() bool {
	return c.State == ClaimClaimed || c.State == ClaimNftMinted
}
