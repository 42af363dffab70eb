package keeper_test

import (
	"context"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/tmsdkeys/pairpool/ledger"
	keepertest "github.com/tmsdkeys/pairpool/testutil/keeper"
	"github.com/tmsdkeys/pairpool/x/amm/keeper"
	"github.com/tmsdkeys/pairpool/x/amm/types"
)

func TestNewKeeper_NilLedger(t *testing.T) {
	_, err := keeper.NewKeeper(nil, types.DefaultParams(), log.NewNopLogger())
	require.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestNewKeeper_InvalidParams(t *testing.T) {
	l := ledger.New(keepertest.PoolAccount, keepertest.AssetA, keepertest.AssetB)
	params := types.DefaultParams()
	params.FeeDenominator = 0

	_, err := keeper.NewKeeper(l, params, log.NewNopLogger())
	require.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestKeeper_Params(t *testing.T) {
	k, _ := keepertest.AmmKeeper(t)
	require.Equal(t, types.DefaultParams(), k.Params())
}

// countingHooks records every callback invocation.
type countingHooks struct {
	swaps     int
	pools     int
	liquidity int
}

func (h *countingHooks) AfterSwap(context.Context, uint64, string, string, string, math.Int, math.Int) error {
	h.swaps++
	return nil
}

func (h *countingHooks) AfterPoolCreated(context.Context, uint64, string, string, string) error {
	h.pools++
	return nil
}

func (h *countingHooks) AfterLiquidityChanged(context.Context, uint64, string, math.Int, math.Int, bool) error {
	h.liquidity++
	return nil
}

func TestKeeper_HooksFire(t *testing.T) {
	k, _ := keepertest.AmmKeeper(t, provider, trader)
	first := &countingHooks{}
	second := &countingHooks{}
	k.SetHooks(types.NewMultiAmmHooks(first, second))

	ctx := context.Background()
	pool, err := k.CreatePool(ctx, creator, keepertest.AssetA, keepertest.AssetB)
	require.NoError(t, err)

	_, _, _, err = k.AddLiquidity(ctx, provider, pool.ID,
		math.NewInt(10000), math.NewInt(10000), math.ZeroInt(), math.ZeroInt(), provider)
	require.NoError(t, err)

	_, err = k.Swap(ctx, trader, pool.ID, keepertest.AssetA, math.NewInt(100), math.ZeroInt(), trader)
	require.NoError(t, err)

	_, _, err = k.RemoveLiquidity(ctx, provider, pool.ID,
		math.NewInt(1000), math.ZeroInt(), math.ZeroInt(), provider)
	require.NoError(t, err)

	for _, hooks := range []*countingHooks{first, second} {
		require.Equal(t, 1, hooks.pools)
		require.Equal(t, 1, hooks.swaps)
		require.Equal(t, 2, hooks.liquidity)
	}
}

func TestKeeper_FailedOperationFiresNoHooks(t *testing.T) {
	k, _ := keepertest.AmmKeeper(t, provider)
	hooks := &countingHooks{}
	k.SetHooks(hooks)

	_, err := k.Swap(context.Background(), trader, 99999, keepertest.AssetA, math.NewInt(100), math.ZeroInt(), trader)
	require.Error(t, err)
	require.Zero(t, hooks.swaps)
}
