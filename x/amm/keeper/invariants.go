package keeper

import (
	"context"
	"fmt"
	"math/big"

	"github.com/tmsdkeys/pairpool/x/amm/types"
)

// validateConstantProduct verifies that the reserve product did not decrease
// across a swap. The fee strictly grows the product except at the zero-fee
// boundary, so a shrinking product means precision loss or a calculation bug.
func validateConstantProduct(pool *types.Pool, oldK *big.Int) error {
	newK := new(big.Int).Mul(pool.ReserveA.BigInt(), pool.ReserveB.BigInt())
	if newK.Cmp(oldK) < 0 {
		return types.ErrInvariantViolation.Wrapf(
			"constant product decreased: old_k=%s, new_k=%s", oldK.String(), newK.String())
	}
	return nil
}

// CheckInvariants validates every pool the keeper manages:
//
//   - pool state: reserves and share supply are all zero or all positive,
//     nothing negative, locked shares within total supply
//   - share conservation: the sum of tracked positions plus the locked
//     supply equals the pool's total shares
//   - custody cover: the ledger holds at least the recorded reserves
//
// Intended for tests and end-of-session audits; operations keep the
// invariants individually.
func (k *Keeper) CheckInvariants(ctx context.Context) error {
	k.mu.RLock()
	defer k.mu.RUnlock()

	for id, pool := range k.pools {
		if err := pool.Validate(); err != nil {
			return fmt.Errorf("pool %d state: %w", id, err)
		}

		outstanding := pool.LockedShares
		for _, shares := range k.positions[id] {
			outstanding = outstanding.Add(shares)
		}
		if !outstanding.Equal(pool.TotalShares) {
			return types.ErrInvariantViolation.Wrapf(
				"pool %d share supply mismatch: positions+locked=%s, total=%s",
				id, outstanding, pool.TotalShares)
		}

		for _, asset := range []string{pool.AssetA, pool.AssetB} {
			reserve := pool.ReserveA
			if asset == pool.AssetB {
				reserve = pool.ReserveB
			}
			if balance := k.ledger.PoolBalance(ctx, asset); balance.LT(reserve) {
				return types.ErrInvariantViolation.Wrapf(
					"pool %d custody shortfall: ledger holds %s %s, reserves record %s",
					id, balance, asset, reserve)
			}
		}
	}
	return nil
}
