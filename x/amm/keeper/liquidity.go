package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/math"

	"github.com/tmsdkeys/pairpool/x/amm/poolmath"
	"github.com/tmsdkeys/pairpool/x/amm/types"
)

// CalcInitialShares returns the share supply minted by the first deposit:
// the geometric mean sqrt(amountA*amountB). The minimum lock is carved out of
// this supply by AddLiquidity, not here.
func CalcInitialShares(amountA, amountB math.Int) (math.Int, error) {
	product, err := poolmath.SafeMul(amountA, amountB)
	if err != nil {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("initial share product: %v", err)
	}
	return poolmath.Sqrt(product), nil
}

// CalcSharesForDeposit returns the shares minted by a proportional deposit
// into a funded pool: min(amountA*totalShares/reserveA, amountB*totalShares/reserveB).
// The binding constraint is whichever asset is scarcer relative to reserves.
func CalcSharesForDeposit(amountA, amountB, reserveA, reserveB, totalShares math.Int) (math.Int, error) {
	sharesFromA, err := poolmath.MulDiv(amountA, totalShares, reserveA)
	if err != nil {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("shares from A: %v", err)
	}
	sharesFromB, err := poolmath.MulDiv(amountB, totalShares, reserveB)
	if err != nil {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("shares from B: %v", err)
	}
	return poolmath.Min(sharesFromA, sharesFromB), nil
}

// CalcWithdrawalAmounts returns the pro-rata redemption for burning shares:
// floor(shares*reserve/totalShares) per asset. The withdrawer receives at
// most their exact proportional share; rounding dust stays with the pool.
func CalcWithdrawalAmounts(shares, reserveA, reserveB, totalShares math.Int) (amountA, amountB math.Int, err error) {
	amountA, err = poolmath.MulDiv(shares, reserveA, totalShares)
	if err != nil {
		return math.Int{}, math.Int{}, types.ErrOverflow.Wrapf("withdrawal amount A: %v", err)
	}
	amountB, err = poolmath.MulDiv(shares, reserveB, totalShares)
	if err != nil {
		return math.Int{}, math.Int{}, types.ErrOverflow.Wrapf("withdrawal amount B: %v", err)
	}
	return amountA, amountB, nil
}

// AddLiquidity deposits up to the desired amounts into the pool, preserving
// the reserve ratio, and mints shares to recipient. On the first deposit the
// desired amounts are taken as-is and MinimumSharesLock shares are retained
// by the pool itself; afterwards the deposit is trimmed to the ratio with an
// explicit tie-break: asset A's desired amount is tried first, and only if
// the matching B amount exceeds amountBDesired is the calculation redone
// against B. Returns the amounts actually deposited and the shares minted.
func (k *Keeper) AddLiquidity(ctx context.Context, provider string, poolID uint64, amountADesired, amountBDesired, amountAMin, amountBMin math.Int, recipient string) (amountA, amountB, sharesMinted math.Int, err error) {
	if amountADesired.IsNil() || amountBDesired.IsNil() || !amountADesired.IsPositive() || !amountBDesired.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientAmount.Wrap("liquidity amounts must be positive")
	}
	if amountAMin.IsNil() {
		amountAMin = math.ZeroInt()
	}
	if amountBMin.IsNil() {
		amountBMin = math.ZeroInt()
	}
	if recipient == "" {
		recipient = provider
	}

	err = k.withPool(ctx, poolID, func(pool *types.Pool) error {
		if err := pool.Validate(); err != nil {
			return err
		}

		var lockedMinted math.Int
		if pool.IsEmpty() {
			// First deposit: accept the desired amounts as-is.
			amountA, amountB = amountADesired, amountBDesired

			supply, err := CalcInitialShares(amountA, amountB)
			if err != nil {
				return err
			}
			if supply.LTE(k.params.MinimumSharesLock) {
				return types.ErrInsufficientLiquidityMinted.Wrapf(
					"initial shares %s do not exceed the minimum lock %s", supply, k.params.MinimumSharesLock)
			}
			sharesMinted = supply.Sub(k.params.MinimumSharesLock)
			lockedMinted = k.params.MinimumSharesLock
		} else {
			var err error
			amountA, amountB, err = calcOptimalAmounts(pool, amountADesired, amountBDesired, amountAMin, amountBMin)
			if err != nil {
				return err
			}

			sharesMinted, err = CalcSharesForDeposit(amountA, amountB, pool.ReserveA, pool.ReserveB, pool.TotalShares)
			if err != nil {
				return err
			}
			if sharesMinted.IsZero() {
				return types.ErrInsufficientLiquidityMinted.Wrap("liquidity contribution too small")
			}
			lockedMinted = math.ZeroInt()
		}

		// Transfers first; pool state is committed only after both succeed.
		if err := k.transferIn(ctx, poolID, provider, pool.AssetA, amountA); err != nil {
			return err
		}
		if err := k.transferIn(ctx, poolID, provider, pool.AssetB, amountB); err != nil {
			// Roll back the first leg so the operation has no effect.
			if revertErr := k.ledger.TransferOut(ctx, provider, pool.AssetA, amountA); revertErr != nil {
				k.logger.Error("failed to revert asset A transfer after asset B transfer failure",
					"pool_id", poolID,
					"provider", provider,
					"amount_a", amountA.String(),
					"original_error", err,
					"revert_error", revertErr,
				)
			}
			return err
		}

		newReserveA, err := poolmath.SafeAdd(pool.ReserveA, amountA)
		if err != nil {
			k.revertDeposit(ctx, poolID, provider, pool.AssetA, pool.AssetB, amountA, amountB)
			return types.ErrOverflow.Wrapf("adding to reserve A: %v", err)
		}
		newReserveB, err := poolmath.SafeAdd(pool.ReserveB, amountB)
		if err != nil {
			k.revertDeposit(ctx, poolID, provider, pool.AssetA, pool.AssetB, amountA, amountB)
			return types.ErrOverflow.Wrapf("adding to reserve B: %v", err)
		}
		minted, err := poolmath.SafeAdd(sharesMinted, lockedMinted)
		if err != nil {
			k.revertDeposit(ctx, poolID, provider, pool.AssetA, pool.AssetB, amountA, amountB)
			return types.ErrOverflow.Wrapf("minted shares: %v", err)
		}
		newTotalShares, err := poolmath.SafeAdd(pool.TotalShares, minted)
		if err != nil {
			k.revertDeposit(ctx, poolID, provider, pool.AssetA, pool.AssetB, amountA, amountB)
			return types.ErrOverflow.Wrapf("adding to total shares: %v", err)
		}

		pool.ReserveA = newReserveA
		pool.ReserveB = newReserveB
		pool.TotalShares = newTotalShares
		pool.LockedShares = pool.LockedShares.Add(lockedMinted)

		k.setShares(poolID, recipient, k.SharesOf(poolID, recipient).Add(sharesMinted))

		k.logger.Info("liquidity added",
			"pool_id", poolID,
			"provider", provider,
			"amount_a", amountA.String(),
			"amount_b", amountB.String(),
			"shares", sharesMinted.String(),
		)

		k.emitter.Emit(types.EventLiquidityAdded{
			PoolID:   poolID,
			Provider: provider,
			AmountA:  amountA,
			AmountB:  amountB,
			Shares:   sharesMinted,
		})

		if k.hooks != nil {
			if hookErr := k.hooks.AfterLiquidityChanged(ctx, poolID, provider, amountA, amountB, true); hookErr != nil {
				k.logger.Error("liquidity hook failed", "pool_id", poolID, "error", hookErr)
			}
		}

		k.recordLiquidity(poolID, pool, amountA, amountB, true)
		return nil
	})
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), math.ZeroInt(), err
	}
	return amountA, amountB, sharesMinted, nil
}

// calcOptimalAmounts trims a deposit to the pool's reserve ratio. The
// tie-break is deterministic and favors asset A: amountADesired is kept and
// the matching B amount computed; only when that exceeds amountBDesired is
// the symmetric calculation taken instead.
func calcOptimalAmounts(pool *types.Pool, amountADesired, amountBDesired, amountAMin, amountBMin math.Int) (math.Int, math.Int, error) {
	amountBOptimal, err := poolmath.MulDiv(amountADesired, pool.ReserveB, pool.ReserveA)
	if err != nil {
		return math.Int{}, math.Int{}, types.ErrOverflow.Wrapf("optimal amount B: %v", err)
	}
	if amountBOptimal.LTE(amountBDesired) {
		if amountBOptimal.LT(amountBMin) {
			return math.Int{}, math.Int{}, types.ErrInsufficientAmountB.Wrapf(
				"optimal amount B %s below minimum %s", amountBOptimal, amountBMin)
		}
		return amountADesired, amountBOptimal, nil
	}

	amountAOptimal, err := poolmath.MulDiv(amountBDesired, pool.ReserveA, pool.ReserveB)
	if err != nil {
		return math.Int{}, math.Int{}, types.ErrOverflow.Wrapf("optimal amount A: %v", err)
	}
	if amountAOptimal.LT(amountAMin) {
		return math.Int{}, math.Int{}, types.ErrInsufficientAmountA.Wrapf(
			"optimal amount A %s below minimum %s", amountAOptimal, amountAMin)
	}
	return amountAOptimal, amountBDesired, nil
}

// RemoveLiquidity burns sharesToBurn of provider's position and pays out the
// pro-rata redemption to recipient. Both amounts floor, so the withdrawer
// never receives more than their exact proportional share. The locked supply
// belongs to no position and cannot be burned.
func (k *Keeper) RemoveLiquidity(ctx context.Context, provider string, poolID uint64, sharesToBurn, amountAMin, amountBMin math.Int, recipient string) (amountA, amountB math.Int, err error) {
	if sharesToBurn.IsNil() || !sharesToBurn.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientLiquidity.Wrap("shares to burn must be positive")
	}
	if amountAMin.IsNil() {
		amountAMin = math.ZeroInt()
	}
	if amountBMin.IsNil() {
		amountBMin = math.ZeroInt()
	}
	if recipient == "" {
		recipient = provider
	}

	err = k.withPool(ctx, poolID, func(pool *types.Pool) error {
		if pool.TotalShares.IsZero() {
			return types.ErrInsufficientLiquidity.Wrap("pool has no liquidity")
		}
		if err := pool.Validate(); err != nil {
			return err
		}

		held := k.SharesOf(poolID, provider)
		if sharesToBurn.GT(held) {
			return types.ErrInsufficientShares.Wrapf("have %s, need %s", held, sharesToBurn)
		}

		var err error
		amountA, amountB, err = CalcWithdrawalAmounts(sharesToBurn, pool.ReserveA, pool.ReserveB, pool.TotalShares)
		if err != nil {
			return err
		}
		if amountA.LT(amountAMin) {
			return types.ErrBelowMinimumA.Wrapf("withdrawal amount A %s below minimum %s", amountA, amountAMin)
		}
		if amountB.LT(amountBMin) {
			return types.ErrBelowMinimumB.Wrapf("withdrawal amount B %s below minimum %s", amountB, amountBMin)
		}
		if amountA.IsZero() || amountB.IsZero() {
			return types.ErrInsufficientAmount.Wrap("withdrawal amounts too small")
		}

		// Transfers first; pool state is committed only after both succeed.
		if err := k.transferOut(ctx, poolID, recipient, pool.AssetA, amountA); err != nil {
			return err
		}
		if err := k.transferOut(ctx, poolID, recipient, pool.AssetB, amountB); err != nil {
			// Roll back the first leg so the operation has no effect.
			if revertErr := k.ledger.TransferIn(ctx, recipient, pool.AssetA, amountA); revertErr != nil {
				k.logger.Error("failed to revert asset A payout after asset B payout failure",
					"pool_id", poolID,
					"recipient", recipient,
					"amount_a", amountA.String(),
					"original_error", err,
					"revert_error", revertErr,
				)
			}
			return err
		}

		newReserveA, err := poolmath.SafeSub(pool.ReserveA, amountA)
		if err != nil {
			k.revertWithdrawal(ctx, poolID, recipient, pool.AssetA, pool.AssetB, amountA, amountB)
			return types.ErrInvariantViolation.Wrapf("reserve A underflow: %v", err)
		}
		newReserveB, err := poolmath.SafeSub(pool.ReserveB, amountB)
		if err != nil {
			k.revertWithdrawal(ctx, poolID, recipient, pool.AssetA, pool.AssetB, amountA, amountB)
			return types.ErrInvariantViolation.Wrapf("reserve B underflow: %v", err)
		}
		newTotalShares, err := poolmath.SafeSub(pool.TotalShares, sharesToBurn)
		if err != nil {
			k.revertWithdrawal(ctx, poolID, recipient, pool.AssetA, pool.AssetB, amountA, amountB)
			return types.ErrInvariantViolation.Wrapf("total shares underflow: %v", err)
		}

		pool.ReserveA = newReserveA
		pool.ReserveB = newReserveB
		pool.TotalShares = newTotalShares

		k.setShares(poolID, provider, held.Sub(sharesToBurn))

		k.logger.Info("liquidity removed",
			"pool_id", poolID,
			"provider", provider,
			"amount_a", amountA.String(),
			"amount_b", amountB.String(),
			"shares", sharesToBurn.String(),
		)

		k.emitter.Emit(types.EventLiquidityRemoved{
			PoolID:   poolID,
			Provider: provider,
			AmountA:  amountA,
			AmountB:  amountB,
			Shares:   sharesToBurn,
		})

		if k.hooks != nil {
			if hookErr := k.hooks.AfterLiquidityChanged(ctx, poolID, provider, amountA, amountB, false); hookErr != nil {
				k.logger.Error("liquidity hook failed", "pool_id", poolID, "error", hookErr)
			}
		}

		k.recordLiquidity(poolID, pool, amountA, amountB, false)
		return nil
	})
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	return amountA, amountB, nil
}

// revertDeposit returns both deposit legs to the provider after a failure
// past the transfer point, so a deposit either fully applies or has no
// effect. Revert failures are logged, not returned; the original error is
// what the caller should see.
func (k *Keeper) revertDeposit(ctx context.Context, poolID uint64, provider, assetA, assetB string, amountA, amountB math.Int) {
	if err := k.ledger.TransferOut(ctx, provider, assetA, amountA); err != nil {
		k.logger.Error("failed to revert asset A deposit after commit failure",
			"pool_id", poolID,
			"provider", provider,
			"amount_a", amountA.String(),
			"revert_error", err,
		)
	}
	if err := k.ledger.TransferOut(ctx, provider, assetB, amountB); err != nil {
		k.logger.Error("failed to revert asset B deposit after commit failure",
			"pool_id", poolID,
			"provider", provider,
			"amount_b", amountB.String(),
			"revert_error", err,
		)
	}
}

// revertWithdrawal reclaims both payout legs from the recipient after a
// failure past the transfer point.
func (k *Keeper) revertWithdrawal(ctx context.Context, poolID uint64, recipient, assetA, assetB string, amountA, amountB math.Int) {
	if err := k.ledger.TransferIn(ctx, recipient, assetA, amountA); err != nil {
		k.logger.Error("failed to revert asset A payout after commit failure",
			"pool_id", poolID,
			"recipient", recipient,
			"amount_a", amountA.String(),
			"revert_error", err,
		)
	}
	if err := k.ledger.TransferIn(ctx, recipient, assetB, amountB); err != nil {
		k.logger.Error("failed to revert asset B payout after commit failure",
			"pool_id", poolID,
			"recipient", recipient,
			"amount_b", amountB.String(),
			"revert_error", err,
		)
	}
}

func (k *Keeper) recordLiquidity(poolID uint64, pool *types.Pool, amountA, amountB math.Int, isAdd bool) {
	if k.metrics == nil {
		return
	}
	poolIDStr := strconv.FormatUint(poolID, 10)
	if isAdd {
		addCounterInt(k.metrics.LiquidityAdded.WithLabelValues(poolIDStr, pool.AssetA), amountA)
		addCounterInt(k.metrics.LiquidityAdded.WithLabelValues(poolIDStr, pool.AssetB), amountB)
	} else {
		addCounterInt(k.metrics.LiquidityRemoved.WithLabelValues(poolIDStr, pool.AssetA), amountA)
		addCounterInt(k.metrics.LiquidityRemoved.WithLabelValues(poolIDStr, pool.AssetB), amountB)
	}
	setGaugeInt(k.metrics.PoolReserves.WithLabelValues(poolIDStr, pool.AssetA), pool.ReserveA)
	setGaugeInt(k.metrics.PoolReserves.WithLabelValues(poolIDStr, pool.AssetB), pool.ReserveB)
	setGaugeInt(k.metrics.PoolShares.WithLabelValues(poolIDStr), pool.TotalShares)
}
