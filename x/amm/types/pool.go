package types

import (
	"cosmossdk.io/math"
)

// Pool is the reserve/supply record for one asset pair. Reserves track the
// custody-side balance attributed to the pool; TotalShares counts every
// outstanding liquidity share, including the permanently locked portion
// recorded in LockedShares.
type Pool struct {
	ID          uint64
	AssetA      string
	AssetB      string
	ReserveA    math.Int
	ReserveB    math.Int
	TotalShares math.Int

	// LockedShares is the slice of TotalShares held by the pool sink. It is
	// MinimumSharesLock after the first deposit and zero before it.
	LockedShares math.Int
}

// NewPool returns an empty pool for the given pair. Funding happens through
// the first AddLiquidity call.
func NewPool(id uint64, assetA, assetB string) *Pool {
	return &Pool{
		ID:           id,
		AssetA:       assetA,
		AssetB:       assetB,
		ReserveA:     math.ZeroInt(),
		ReserveB:     math.ZeroInt(),
		TotalShares:  math.ZeroInt(),
		LockedShares: math.ZeroInt(),
	}
}

// IsEmpty reports whether the pool has never been funded or has been drained
// back to zero. Reserves and supply move together: a pool is either fully
// funded or completely empty.
func (p *Pool) IsEmpty() bool {
	return p.ReserveA.IsZero() && p.ReserveB.IsZero() && p.TotalShares.IsZero()
}

// HasAsset reports whether asset is one of the pool's two assets.
func (p *Pool) HasAsset(asset string) bool {
	return asset == p.AssetA || asset == p.AssetB
}

// OtherAsset returns the counterpart of asset in the pair. The caller must
// have checked HasAsset first.
func (p *Pool) OtherAsset(asset string) string {
	if asset == p.AssetA {
		return p.AssetB
	}
	return p.AssetA
}

// Validate performs pool state validation: non-negative balances and the
// empty-or-funded coupling between reserves and share supply.
func (p *Pool) Validate() error {
	if p.AssetA == p.AssetB {
		return ErrInvalidPoolState.Wrapf("pool %d holds identical assets %s", p.ID, p.AssetA)
	}
	if p.ReserveA.IsNil() || p.ReserveA.IsNegative() {
		return ErrInvalidPoolState.Wrapf("negative reserve A: %s", p.ReserveA)
	}
	if p.ReserveB.IsNil() || p.ReserveB.IsNegative() {
		return ErrInvalidPoolState.Wrapf("negative reserve B: %s", p.ReserveB)
	}
	if p.TotalShares.IsNil() || p.TotalShares.IsNegative() {
		return ErrInvalidPoolState.Wrapf("negative total shares: %s", p.TotalShares)
	}
	if p.LockedShares.IsNil() || p.LockedShares.IsNegative() {
		return ErrInvalidPoolState.Wrapf("negative locked shares: %s", p.LockedShares)
	}
	if p.LockedShares.GT(p.TotalShares) {
		return ErrInvalidPoolState.Wrapf("locked shares %s exceed total shares %s", p.LockedShares, p.TotalShares)
	}

	// Reserves and shares are all zero or all positive.
	hasReserves := !p.ReserveA.IsZero() || !p.ReserveB.IsZero()
	if hasReserves && p.TotalShares.IsZero() {
		return ErrInvalidPoolState.Wrap("pool has reserves but no shares")
	}
	if !hasReserves && !p.TotalShares.IsZero() {
		return ErrInvalidPoolState.Wrap("pool has shares but zero reserves")
	}
	if hasReserves && (p.ReserveA.IsZero() || p.ReserveB.IsZero()) {
		return ErrInvalidPoolState.Wrap("pool has one-sided reserves")
	}
	return nil
}
