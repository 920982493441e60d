package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/attaboy/puzzlequest/internal/domain"
)

// BalanceProjection is the cached read model of an account balance.
type BalanceProjection struct {
	Account   domain.Address `json:"account"`
	Balance   domain.Amount  `json:"balance"`
	Seq       uint64         `json:"seq"`
	UpdatedAt string         `json:"updated_at"`
}

const balanceTTL = 5 * time.Minute

func balanceKey(account domain.Address) string {
	return "projection:balance:" + string(account)
}

// UpdateBalance caches an account balance tagged with the journal sequence it
// was read at. A write carrying an older sequence than the cached one is dropped.
func UpdateBalance(ctx context.Context, store Store, p BalanceProjection) error {
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal projection: %w", err)
	}
	if _, err := store.SetIfNewer(ctx, balanceKey(p.Account), data, p.Seq, balanceTTL); err != nil {
		return err
	}
	return nil
}

// GetBalance retrieves a cached balance projection.
func GetBalance(ctx context.Context, store Store, account domain.Address) (*BalanceProjection, error) {
	var p BalanceProjection
	if err := GetJSON(ctx, store, balanceKey(account), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// InvalidateBalance removes an account's cached balance.
func InvalidateBalance(ctx context.Context, store Store, account domain.Address) error {
	return store.Delete(ctx, balanceKey(account))
}
