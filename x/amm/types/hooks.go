package types

import (
	"context"

	"cosmossdk.io/math"
)

// AmmHooks defines the interface for amm module callbacks. Hooks run after
// the pool state commit but before the pool lock is released, so they observe
// a consistent pool and must not call back into the keeper.
type AmmHooks interface {
	// AfterSwap is called after a successful swap operation.
	AfterSwap(ctx context.Context, poolID uint64, trader string, assetIn, assetOut string, amountIn, amountOut math.Int) error

	// AfterPoolCreated is called after a new liquidity pool is registered.
	AfterPoolCreated(ctx context.Context, poolID uint64, assetA, assetB string, creator string) error

	// AfterLiquidityChanged is called when liquidity is added or removed.
	AfterLiquidityChanged(ctx context.Context, poolID uint64, provider string, deltaA, deltaB math.Int, isAdd bool) error
}

// MultiAmmHooks combines multiple hooks into one that calls all of them.
type MultiAmmHooks []AmmHooks

// NewMultiAmmHooks creates a new MultiAmmHooks from a list of hooks.
func NewMultiAmmHooks(hooks ...AmmHooks) MultiAmmHooks {
	return hooks
}

// AfterSwap calls AfterSwap on all registered hooks.
func (h MultiAmmHooks) AfterSwap(ctx context.Context, poolID uint64, trader string, assetIn, assetOut string, amountIn, amountOut math.Int) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.AfterSwap(ctx, poolID, trader, assetIn, assetOut, amountIn, amountOut); err != nil {
			return err
		}
	}
	return nil
}

// AfterPoolCreated calls AfterPoolCreated on all registered hooks.
func (h MultiAmmHooks) AfterPoolCreated(ctx context.Context, poolID uint64, assetA, assetB string, creator string) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.AfterPoolCreated(ctx, poolID, assetA, assetB, creator); err != nil {
			return err
		}
	}
	return nil
}

// AfterLiquidityChanged calls AfterLiquidityChanged on all registered hooks.
func (h MultiAmmHooks) AfterLiquidityChanged(ctx context.Context, poolID uint64, provider string, deltaA, deltaB math.Int, isAdd bool) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.AfterLiquidityChanged(ctx, poolID, provider, deltaA, deltaB, isAdd); err != nil {
			return err
		}
	}
	return nil
}
