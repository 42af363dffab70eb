package keeper

import (
	"math/big"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus metrics for the amm module.
type Metrics struct {
	SwapsTotal   *prometheus.CounterVec
	SwapVolume   *prometheus.CounterVec
	SwapSlippage prometheus.Histogram

	LiquidityAdded   *prometheus.CounterVec
	LiquidityRemoved *prometheus.CounterVec
	PoolReserves     *prometheus.GaugeVec
	PoolShares       *prometheus.GaugeVec

	PoolsTotal prometheus.Gauge
}

// NewMetrics creates and registers amm metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SwapsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pairpool",
				Subsystem: "amm",
				Name:      "swaps_total",
				Help:      "Total number of swaps executed",
			},
			[]string{"pool_id", "asset_in", "asset_out", "status"},
		),
		SwapVolume: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pairpool",
				Subsystem: "amm",
				Name:      "swap_volume_total",
				Help:      "Total swap volume in base units",
			},
			[]string{"pool_id", "asset"},
		),
		SwapSlippage: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "pairpool",
				Subsystem: "amm",
				Name:      "swap_slippage_percent",
				Help:      "Swap price impact percentage",
				Buckets:   []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
		),
		LiquidityAdded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pairpool",
				Subsystem: "amm",
				Name:      "liquidity_added_total",
				Help:      "Total liquidity added to pools",
			},
			[]string{"pool_id", "asset"},
		),
		LiquidityRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pairpool",
				Subsystem: "amm",
				Name:      "liquidity_removed_total",
				Help:      "Total liquidity removed from pools",
			},
			[]string{"pool_id", "asset"},
		),
		PoolReserves: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "pairpool",
				Subsystem: "amm",
				Name:      "pool_reserves",
				Help:      "Current pool reserves in base units",
			},
			[]string{"pool_id", "asset"},
		),
		PoolShares: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "pairpool",
				Subsystem: "amm",
				Name:      "pool_shares_total",
				Help:      "Outstanding liquidity shares per pool",
			},
			[]string{"pool_id"},
		),
		PoolsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "pairpool",
				Subsystem: "amm",
				Name:      "pools_total",
				Help:      "Number of registered pools",
			},
		),
	}
}

func addCounterInt(c prometheus.Counter, v math.Int) {
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	c.Add(f)
}

func setGaugeInt(g prometheus.Gauge, v math.Int) {
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	g.Set(f)
}
