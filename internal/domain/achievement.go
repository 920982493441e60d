package domain

// Achievement is a uniquely owned, non-duplicable record of a completed milestone.
// EventID is zero for puzzle achievements.
type Achievement struct {
	TokenID  uint32  `json:"token_id"`
	Owner    Address `json:"owner"`
	PuzzleID uint32  `json:"puzzle_id,omitempty"`
	EventID  uint64  `json:"event_id,omitempty"`
	Metadata string  `json:"metadata"`
	MintedAt uint64  `json:"minted_at"`
}
