package keeper_test

import (
	"context"
	"testing"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	keepertest "github.com/tmsdkeys/pairpool/testutil/keeper"
	"github.com/tmsdkeys/pairpool/x/amm/keeper"
)

func TestMetrics_SwapCounters(t *testing.T) {
	k, _ := keepertest.AmmKeeper(t, provider, trader)
	reg := prometheus.NewRegistry()
	m := keeper.NewMetrics(reg)
	k.SetMetrics(m)

	poolID := setupFundedPool(t, k)
	ctx := context.Background()

	_, err := k.Swap(ctx, trader, poolID, keepertest.AssetA, math.NewInt(1000), math.ZeroInt(), trader)
	require.NoError(t, err)

	success := m.SwapsTotal.WithLabelValues("1", keepertest.AssetA, keepertest.AssetB, "success")
	require.Equal(t, float64(1), promtest.ToFloat64(success))

	volume := m.SwapVolume.WithLabelValues("1", keepertest.AssetA)
	require.Equal(t, float64(1000), promtest.ToFloat64(volume))
}

func TestMetrics_FailedSwapCounted(t *testing.T) {
	k, _ := keepertest.AmmKeeper(t, provider, trader)
	reg := prometheus.NewRegistry()
	m := keeper.NewMetrics(reg)
	k.SetMetrics(m)

	poolID := setupFundedPool(t, k)

	_, err := k.Swap(context.Background(), trader, poolID, keepertest.AssetA, math.ZeroInt(), math.ZeroInt(), trader)
	require.Error(t, err)

	failed := m.SwapsTotal.WithLabelValues("1", keepertest.AssetA, "", "failed")
	require.Equal(t, float64(1), promtest.ToFloat64(failed))
}

func TestMetrics_PoolGauges(t *testing.T) {
	k, _ := keepertest.AmmKeeper(t, provider)
	reg := prometheus.NewRegistry()
	m := keeper.NewMetrics(reg)
	k.SetMetrics(m)

	poolID := setupFundedPool(t, k)
	require.Equal(t, float64(1), promtest.ToFloat64(m.PoolsTotal))

	// Gauges track the post-deposit state.
	require.Equal(t, float64(10000), promtest.ToFloat64(m.PoolReserves.WithLabelValues("1", keepertest.AssetA)))
	require.Equal(t, float64(10000), promtest.ToFloat64(m.PoolShares.WithLabelValues("1")))

	_, _, err := k.RemoveLiquidity(context.Background(), provider, poolID,
		math.NewInt(4500), math.ZeroInt(), math.ZeroInt(), provider)
	require.NoError(t, err)
	require.Equal(t, float64(5500), promtest.ToFloat64(m.PoolReserves.WithLabelValues("1", keepertest.AssetA)))
	require.Equal(t, float64(5500), promtest.ToFloat64(m.PoolShares.WithLabelValues("1")))
}
