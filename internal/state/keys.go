package state

import (
	"fmt"

	"github.com/attaboy/puzzlequest/internal/domain"
)

// Composite keys of the persisted layout.

const (
	ConfigKey    = "config"
	OutboxPrefix = "outbox:"
)

func BalanceKey(account domain.Address) string { return "balance:" + string(account) }

// BalanceSeqKey holds the journal sequence of the account's latest entry.
func BalanceSeqKey(account domain.Address) string { return "balanceseq:" + string(account) }

func JournalKey(seq uint64) string { return fmt.Sprintf("journal:%020d", seq) }

func PuzzleKey(id uint32) string { return fmt.Sprintf("puzzle:%d", id) }

func ProgressKey(player domain.Address, puzzleID uint32) string {
	return fmt.Sprintf("progress:%s:%d", player, puzzleID)
}

func AchievementKey(tokenID uint32) string { return fmt.Sprintf("achievement:%d", tokenID) }

func MintedKey(player domain.Address, puzzleID uint32) string {
	return fmt.Sprintf("minted:%s:%d", player, puzzleID)
}

func CollectionKey(owner domain.Address) string { return "collection:" + string(owner) }

func EventKey(id uint64) string { return fmt.Sprintf("event:%d", id) }

func EventProgressKey(eventID uint64, player domain.Address, puzzleID uint32) string {
	return fmt.Sprintf("eventprogress:%d:%s:%d", eventID, player, puzzleID)
}

func EventClaimKey(eventID uint64, player domain.Address) string {
	return fmt.Sprintf("eventclaim:%d:%s", eventID, player)
}

func VerifierKey(addr domain.Address) string { return "verifier:" + string(addr) }

func SeqKey(name string) string { return "seq:" + name }

func OutboxKey(seq uint64) string { return fmt.Sprintf("%s%020d", OutboxPrefix, seq) }

// SupplyKey holds the number of live achievements.
const SupplyKey = "supply:achievement"
