package keeper

import (
	"context"
	"math/big"
	"strconv"

	"cosmossdk.io/math"

	"github.com/tmsdkeys/pairpool/x/amm/poolmath"
	"github.com/tmsdkeys/pairpool/x/amm/types"
)

// rateScale is the fixed-point scale used when comparing spot and execution
// rates in CalculateSlippagePercent.
const rateScale = 1000

// percentScale turns a rate shortfall into percent times 100: a result of 150
// reads as 1.5%.
const percentScale = 10000

// GetAmountOut prices a swap under the constant-product formula with the fee
// taken on the input side:
//
//	amountInWithFee = amountIn * feeNumerator
//	amountOut       = amountInWithFee * reserveOut / (reserveIn * feeDenominator + amountInWithFee)
//
// Every division floors, so the pool keeps the rounding dust. The result is
// strictly below reserveOut whenever reserveOut is positive.
func GetAmountOut(amountIn, reserveIn, reserveOut math.Int, feeNumerator, feeDenominator uint64) (math.Int, error) {
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return math.ZeroInt(), types.ErrInsufficientInput.Wrap("input amount must be positive")
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.ZeroInt(), types.ErrInsufficientLiquidity.Wrap("pool reserves must be positive")
	}

	amountInWithFee, err := poolmath.SafeMul(amountIn, math.NewIntFromUint64(feeNumerator))
	if err != nil {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("scaling input by fee: %v", err)
	}
	scaledReserveIn, err := poolmath.SafeMul(reserveIn, math.NewIntFromUint64(feeDenominator))
	if err != nil {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("scaling reserve by fee: %v", err)
	}
	denominator, err := poolmath.SafeAdd(scaledReserveIn, amountInWithFee)
	if err != nil {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("swap denominator: %v", err)
	}

	amountOut, err := poolmath.MulDiv(amountInWithFee, reserveOut, denominator)
	if err != nil {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("swap numerator: %v", err)
	}
	return amountOut, nil
}

// Quote converts an amount of asset A into asset B at the current reserve
// ratio, with no fee: floor(amountA * reserveB / reserveA). Used for off-pool
// price estimation.
func Quote(amountA, reserveA, reserveB math.Int) (math.Int, error) {
	if amountA.IsNil() || !amountA.IsPositive() {
		return math.ZeroInt(), types.ErrInsufficientAmount.Wrap("amount must be positive")
	}
	if !reserveA.IsPositive() || !reserveB.IsPositive() {
		return math.ZeroInt(), types.ErrInsufficientLiquidity.Wrap("pool reserves must be positive")
	}

	amountB, err := poolmath.MulDiv(amountA, reserveB, reserveA)
	if err != nil {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("quote: %v", err)
	}
	return amountB, nil
}

// CalculateSlippagePercent reports the price impact of a trade as percent
// times 100 (150 means 1.5%). It compares the no-fee spot rate
// (reserveOut*1000/reserveIn) against the realized no-fee execution rate
// (amountOutNoFee*1000/amountIn) and returns the relative shortfall, clamped
// at zero when the execution rate meets or exceeds the spot rate. The fee is
// deliberately excluded from both sides: this measures trade-size impact, not
// the fixed fee.
func CalculateSlippagePercent(amountIn, reserveIn, reserveOut math.Int) (math.Int, error) {
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return math.ZeroInt(), types.ErrInsufficientInput.Wrap("input amount must be positive")
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.ZeroInt(), types.ErrInsufficientLiquidity.Wrap("pool reserves must be positive")
	}

	scale := math.NewInt(rateScale)

	spotRate, err := poolmath.MulDiv(reserveOut, scale, reserveIn)
	if err != nil {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("spot rate: %v", err)
	}
	if spotRate.IsZero() {
		// Spot rate below the scale's resolution; nothing to measure against.
		return math.ZeroInt(), nil
	}

	depth, err := poolmath.SafeAdd(reserveIn, amountIn)
	if err != nil {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("pool depth: %v", err)
	}
	amountOutNoFee, err := poolmath.MulDiv(amountIn, reserveOut, depth)
	if err != nil {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("no-fee output: %v", err)
	}
	execRate, err := poolmath.MulDiv(amountOutNoFee, scale, amountIn)
	if err != nil {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("execution rate: %v", err)
	}

	if execRate.GTE(spotRate) {
		return math.ZeroInt(), nil
	}

	shortfall := spotRate.Sub(execRate)
	slippage, err := poolmath.MulDiv(shortfall, math.NewInt(percentScale), spotRate)
	if err != nil {
		return math.ZeroInt(), types.ErrOverflow.Wrapf("slippage ratio: %v", err)
	}
	return slippage, nil
}

// Swap trades amountIn of assetIn against the pool, crediting the output to
// recipient. The input transfer, fee capture and reserve shift are committed
// only after both ledger transfers succeed; any failure leaves the pool
// untouched.
func (k *Keeper) Swap(ctx context.Context, trader string, poolID uint64, assetIn string, amountIn, minAmountOut math.Int, recipient string) (math.Int, error) {
	if amountIn.IsNil() || !amountIn.IsPositive() {
		k.countSwap(poolID, assetIn, "", "failed")
		return math.ZeroInt(), types.ErrInsufficientInput.Wrap("swap amount must be positive")
	}
	if minAmountOut.IsNil() {
		minAmountOut = math.ZeroInt()
	}
	if recipient == "" {
		recipient = trader
	}

	var amountOut math.Int
	err := k.withPool(ctx, poolID, func(pool *types.Pool) error {
		if !pool.HasAsset(assetIn) {
			return types.ErrInvalidAsset.Wrapf("asset %s is not part of pool %d (%s/%s)",
				assetIn, poolID, pool.AssetA, pool.AssetB)
		}
		assetOut := pool.OtherAsset(assetIn)

		reserveIn, reserveOut := pool.ReserveA, pool.ReserveB
		if assetIn == pool.AssetB {
			reserveIn, reserveOut = pool.ReserveB, pool.ReserveA
		}

		var err error
		amountOut, err = GetAmountOut(amountIn, reserveIn, reserveOut, k.params.FeeNumerator, k.params.FeeDenominator)
		if err != nil {
			return err
		}
		if amountOut.IsZero() {
			return types.ErrInsufficientLiquidity.Wrap("output amount too small")
		}
		if amountOut.LT(minAmountOut) {
			return types.ErrSlippageExceeded.Wrapf("expected at least %s, got %s", minAmountOut, amountOut)
		}

		// Transfers first; pool state is committed only after both succeed.
		if err := k.transferIn(ctx, poolID, trader, assetIn, amountIn); err != nil {
			return err
		}
		if err := k.transferOut(ctx, poolID, recipient, assetOut, amountOut); err != nil {
			// Roll back the input transfer so the operation has no effect.
			if revertErr := k.ledger.TransferOut(ctx, trader, assetIn, amountIn); revertErr != nil {
				k.logger.Error("failed to revert input transfer after output transfer failure",
					"pool_id", poolID,
					"trader", trader,
					"asset_in", assetIn,
					"amount_in", amountIn.String(),
					"original_error", err,
					"revert_error", revertErr,
				)
			}
			return err
		}

		oldK := new(big.Int).Mul(pool.ReserveA.BigInt(), pool.ReserveB.BigInt())

		// The whole input, fee included, stays in the pool.
		newReserveIn, err := poolmath.SafeAdd(reserveIn, amountIn)
		if err != nil {
			k.revertSwapTransfers(ctx, poolID, trader, recipient, assetIn, assetOut, amountIn, amountOut)
			return types.ErrOverflow.Wrapf("adding to input reserve: %v", err)
		}
		// amountOut < reserveOut by construction; a failure here is an
		// internal invariant violation, not a user error.
		newReserveOut, err := poolmath.SafeSub(reserveOut, amountOut)
		if err != nil {
			k.revertSwapTransfers(ctx, poolID, trader, recipient, assetIn, assetOut, amountIn, amountOut)
			return types.ErrInvariantViolation.Wrapf("output reserve underflow: %v", err)
		}

		if assetIn == pool.AssetA {
			pool.ReserveA, pool.ReserveB = newReserveIn, newReserveOut
		} else {
			pool.ReserveB, pool.ReserveA = newReserveIn, newReserveOut
		}

		if err := validateConstantProduct(pool, oldK); err != nil {
			k.revertSwapTransfers(ctx, poolID, trader, recipient, assetIn, assetOut, amountIn, amountOut)
			return err
		}

		k.logger.Info("swap executed",
			"pool_id", poolID,
			"trader", trader,
			"asset_in", assetIn,
			"asset_out", assetOut,
			"amount_in", amountIn.String(),
			"amount_out", amountOut.String(),
		)

		k.emitter.Emit(types.EventSwap{
			PoolID:    poolID,
			Trader:    trader,
			AssetIn:   assetIn,
			AssetOut:  assetOut,
			AmountIn:  amountIn,
			AmountOut: amountOut,
		})

		if k.hooks != nil {
			if hookErr := k.hooks.AfterSwap(ctx, poolID, trader, assetIn, assetOut, amountIn, amountOut); hookErr != nil {
				k.logger.Error("swap hook failed", "pool_id", poolID, "error", hookErr)
			}
		}

		k.recordSwap(poolID, assetIn, assetOut, amountIn, reserveIn, reserveOut)
		return nil
	})
	if err != nil {
		k.countSwap(poolID, assetIn, "", "failed")
		return math.ZeroInt(), err
	}
	return amountOut, nil
}

// revertSwapTransfers undoes both legs of a swap's ledger movement after a
// post-transfer commit failure. Revert failures are logged, not returned: the
// caller's original error stands and the custody audit catches any residue.
func (k *Keeper) revertSwapTransfers(ctx context.Context, poolID uint64, trader, recipient, assetIn, assetOut string, amountIn, amountOut math.Int) {
	if err := k.ledger.TransferOut(ctx, trader, assetIn, amountIn); err != nil {
		k.logger.Error("failed to revert input transfer after commit failure",
			"pool_id", poolID,
			"trader", trader,
			"asset_in", assetIn,
			"amount_in", amountIn.String(),
			"revert_error", err,
		)
	}
	if err := k.ledger.TransferIn(ctx, recipient, assetOut, amountOut); err != nil {
		k.logger.Error("failed to revert output transfer after commit failure",
			"pool_id", poolID,
			"recipient", recipient,
			"asset_out", assetOut,
			"amount_out", amountOut.String(),
			"revert_error", err,
		)
	}
}

// SimulateSwap prices a swap against the current reserves without executing it.
func (k *Keeper) SimulateSwap(poolID uint64, assetIn string, amountIn math.Int) (math.Int, error) {
	pool, err := k.GetPool(poolID)
	if err != nil {
		return math.ZeroInt(), err
	}
	if !pool.HasAsset(assetIn) {
		return math.ZeroInt(), types.ErrInvalidAsset.Wrapf("asset %s is not part of pool %d", assetIn, poolID)
	}

	reserveIn, reserveOut := pool.ReserveA, pool.ReserveB
	if assetIn == pool.AssetB {
		reserveIn, reserveOut = pool.ReserveB, pool.ReserveA
	}
	return GetAmountOut(amountIn, reserveIn, reserveOut, k.params.FeeNumerator, k.params.FeeDenominator)
}

// GetSpotPrice returns the marginal price of the pool's other asset in terms
// of assetIn, with no fee or depth effect.
func (k *Keeper) GetSpotPrice(poolID uint64, assetIn string) (math.LegacyDec, error) {
	pool, err := k.GetPool(poolID)
	if err != nil {
		return math.LegacyZeroDec(), err
	}
	if !pool.HasAsset(assetIn) {
		return math.LegacyZeroDec(), types.ErrInvalidAsset.Wrapf("asset %s is not part of pool %d", assetIn, poolID)
	}

	reserveIn, reserveOut := pool.ReserveA, pool.ReserveB
	if assetIn == pool.AssetB {
		reserveIn, reserveOut = pool.ReserveB, pool.ReserveA
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return math.LegacyZeroDec(), types.ErrInsufficientLiquidity.Wrap("pool reserves must be positive")
	}
	return math.LegacyNewDecFromInt(reserveOut).Quo(math.LegacyNewDecFromInt(reserveIn)), nil
}

func (k *Keeper) countSwap(poolID uint64, assetIn, assetOut, status string) {
	if k.metrics == nil {
		return
	}
	k.metrics.SwapsTotal.WithLabelValues(strconv.FormatUint(poolID, 10), assetIn, assetOut, status).Inc()
}

func (k *Keeper) recordSwap(poolID uint64, assetIn, assetOut string, amountIn, reserveIn, reserveOut math.Int) {
	if k.metrics == nil {
		return
	}
	poolIDStr := strconv.FormatUint(poolID, 10)
	k.metrics.SwapsTotal.WithLabelValues(poolIDStr, assetIn, assetOut, "success").Inc()
	addCounterInt(k.metrics.SwapVolume.WithLabelValues(poolIDStr, assetIn), amountIn)

	if slippage, err := CalculateSlippagePercent(amountIn, reserveIn, reserveOut); err == nil {
		k.metrics.SwapSlippage.Observe(float64(slippage.Int64()) / 100)
	}
}
