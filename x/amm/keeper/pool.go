package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/tmsdkeys/pairpool/x/amm/types"
)

// CreatePool registers a new, empty pool for the asset pair. Assets are
// ordered lexicographically so a pair maps to exactly one pool. Funding
// happens through the first AddLiquidity call.
func (k *Keeper) CreatePool(ctx context.Context, creator, assetA, assetB string) (types.Pool, error) {
	if assetA == "" || assetB == "" {
		return types.Pool{}, types.ErrZeroAddressAsset.Wrap("asset references cannot be empty")
	}
	if assetA == assetB {
		return types.Pool{}, types.ErrIdenticalAssets.Wrapf("cannot create pool for %s/%s", assetA, assetB)
	}
	if !k.ledger.HasAsset(assetA) {
		return types.Pool{}, types.ErrInvalidAsset.Wrapf("ledger cannot resolve asset %s", assetA)
	}
	if !k.ledger.HasAsset(assetB) {
		return types.Pool{}, types.ErrInvalidAsset.Wrapf("ledger cannot resolve asset %s", assetB)
	}

	// Consistent asset ordering
	if assetA > assetB {
		assetA, assetB = assetB, assetA
	}

	k.mu.Lock()
	if _, exists := k.poolByPair[pairKey(assetA, assetB)]; exists {
		k.mu.Unlock()
		return types.Pool{}, types.ErrPoolAlreadyExists.Wrapf("pool already exists for asset pair %s/%s", assetA, assetB)
	}

	poolID := k.nextPoolID
	k.nextPoolID++

	pool := types.NewPool(poolID, assetA, assetB)
	k.pools[poolID] = pool
	k.poolByPair[pairKey(assetA, assetB)] = poolID
	k.positions[poolID] = make(map[string]math.Int)
	k.mu.Unlock()

	k.logger.Info("pool created", "pool_id", poolID, "asset_a", assetA, "asset_b", assetB, "creator", creator)

	k.emitter.Emit(types.EventPoolCreated{
		PoolID:  poolID,
		Creator: creator,
		AssetA:  assetA,
		AssetB:  assetB,
	})

	if k.hooks != nil {
		if err := k.hooks.AfterPoolCreated(ctx, poolID, assetA, assetB, creator); err != nil {
			k.logger.Error("pool created hook failed", "pool_id", poolID, "error", err)
		}
	}

	if k.metrics != nil {
		k.metrics.PoolsTotal.Inc()
	}

	return *pool, nil
}

// GetPool returns a copy of the pool with the given ID.
// Returns ErrPoolNotFound if the pool does not exist.
func (k *Keeper) GetPool(poolID uint64) (types.Pool, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	pool, ok := k.pools[poolID]
	if !ok {
		return types.Pool{}, types.ErrPoolNotFound.Wrapf("pool %d not found", poolID)
	}
	return *pool, nil
}

// GetPoolByAssets returns the pool for the asset pair, order-independent.
func (k *Keeper) GetPoolByAssets(assetA, assetB string) (types.Pool, error) {
	if assetA > assetB {
		assetA, assetB = assetB, assetA
	}

	k.mu.RLock()
	poolID, ok := k.poolByPair[pairKey(assetA, assetB)]
	k.mu.RUnlock()
	if !ok {
		return types.Pool{}, types.ErrPoolNotFound.Wrapf("pool not found for asset pair %s/%s", assetA, assetB)
	}
	return k.GetPool(poolID)
}

// GetReserves returns the current reserves of the pool.
func (k *Keeper) GetReserves(poolID uint64) (reserveA, reserveB math.Int, err error) {
	pool, err := k.GetPool(poolID)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	return pool.ReserveA, pool.ReserveB, nil
}

// SharesOf returns owner's withdrawable share balance in the pool. The locked
// portion of the supply belongs to no owner and is never reported here.
func (k *Keeper) SharesOf(poolID uint64, owner string) math.Int {
	k.mu.RLock()
	defer k.mu.RUnlock()

	positions, ok := k.positions[poolID]
	if !ok {
		return math.ZeroInt()
	}
	shares, ok := positions[owner]
	if !ok {
		return math.ZeroInt()
	}
	return shares
}

// setShares records owner's share balance, dropping the entry at zero.
func (k *Keeper) setShares(poolID uint64, owner string, shares math.Int) {
	k.mu.Lock()
	defer k.mu.Unlock()

	positions, ok := k.positions[poolID]
	if !ok {
		positions = make(map[string]math.Int)
		k.positions[poolID] = positions
	}
	if shares.IsZero() {
		delete(positions, owner)
		return
	}
	positions[owner] = shares
}

func pairKey(assetA, assetB string) string {
	return assetA + "/" + assetB
}
