package domain

// EntryKind enumerates ledger movements.
type EntryKind string

const (
	EntryCredit EntryKind = "credit"
	EntryDebit  EntryKind = "debit"
)

// Reason tags why a credit happened.
const (
	ReasonDistribution = "distribution"
	ReasonPuzzleReward = "puzzle_reward"
	ReasonEventReward  = "event_reward"
	ReasonFeatureSpend = "feature_spend"
)

// LedgerEntry is an append-only journal row written with every balance movement.
type LedgerEntry struct {
	Seq          uint64    `json:"seq"`
	Account      Address   `json:"account"`
	Kind         EntryKind `json:"kind"`
	Amount       Amount    `json:"amount"`
	BalanceAfter Amount    `json:"balance_after"`
	Reason       string    `json:"reason"`
	Reference    string    `json:"reference,omitempty"`
	At           uint64    `json:"at"`
}
