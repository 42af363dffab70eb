// Package cmd wires the ammsim command line interface.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tmsdkeys/pairpool/ledger"
	"github.com/tmsdkeys/pairpool/x/amm/keeper"
	"github.com/tmsdkeys/pairpool/x/amm/types"
)

const (
	poolAccount = "amm_pool"
	provider    = "alice"
	trader      = "bob"
)

type sessionFlags struct {
	assetA      string
	assetB      string
	depositA    int64
	depositB    int64
	swaps       int
	swapAmount  int64
	feeNum      uint64
	feeDen      uint64
	metricsAddr string
	verbose     bool
}

// NewRootCmd returns the ammsim root command. The command runs a scripted
// pool session against an in-memory ledger: create a pool, seed liquidity,
// execute a series of swaps in alternating directions, then withdraw half
// of the provider's shares.
func NewRootCmd() *cobra.Command {
	f := &sessionFlags{}

	rootCmd := &cobra.Command{
		Use:   "ammsim",
		Short: "Simulate a constant-product pool session",
		Long: `ammsim drives the amm keeper through a full pool lifecycle using an
in-memory token ledger. It prints reserves, prices and balances after each
step, which makes it handy for eyeballing fee and slippage behavior under
different parameters.

Example:
  $ ammsim --deposit-a 1000000 --deposit-b 1000000 --swaps 10 --swap-amount 5000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, f)
		},
	}

	rootCmd.Flags().StringVar(&f.assetA, "asset-a", "tokenA", "symbol of the first pool asset")
	rootCmd.Flags().StringVar(&f.assetB, "asset-b", "tokenB", "symbol of the second pool asset")
	rootCmd.Flags().Int64Var(&f.depositA, "deposit-a", 1_000_000, "initial deposit of asset A")
	rootCmd.Flags().Int64Var(&f.depositB, "deposit-b", 1_000_000, "initial deposit of asset B")
	rootCmd.Flags().IntVar(&f.swaps, "swaps", 10, "number of swaps to execute")
	rootCmd.Flags().Int64Var(&f.swapAmount, "swap-amount", 10_000, "input amount per swap")
	rootCmd.Flags().Uint64Var(&f.feeNum, "fee-numerator", types.DefaultParams().FeeNumerator, "swap fee numerator")
	rootCmd.Flags().Uint64Var(&f.feeDen, "fee-denominator", types.DefaultParams().FeeDenominator, "swap fee denominator")
	rootCmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (empty disables)")
	rootCmd.Flags().BoolVar(&f.verbose, "verbose", false, "log keeper internals")

	return rootCmd
}

func runSession(cmd *cobra.Command, f *sessionFlags) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	logger := log.NewNopLogger()
	if f.verbose {
		logger = log.NewLogger(os.Stderr)
	}

	l := ledger.New(poolAccount, f.assetA, f.assetB)
	funding := math.NewInt(f.depositA).Add(math.NewInt(f.depositB)).MulRaw(10)
	for _, account := range []string{provider, trader} {
		if err := l.Mint(f.assetA, account, funding); err != nil {
			return err
		}
		if err := l.Mint(f.assetB, account, funding); err != nil {
			return err
		}
	}

	params := types.DefaultParams()
	params.FeeNumerator = f.feeNum
	params.FeeDenominator = f.feeDen

	k, err := keeper.NewKeeper(l, params, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	k.SetMetrics(keeper.NewMetrics(reg))
	if f.metricsAddr != "" {
		startMetricsServer(f.metricsAddr, reg)
		fmt.Fprintf(out, "metrics: serving on %s/metrics\n", f.metricsAddr)
	}

	pool, err := k.CreatePool(ctx, provider, f.assetA, f.assetB)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created pool %d (%s / %s), fee %d/%d\n",
		pool.ID, pool.AssetA, pool.AssetB, params.FeeNumerator, params.FeeDenominator)

	depositA, depositB := math.NewInt(f.depositA), math.NewInt(f.depositB)
	amountA, amountB, shares, err := k.AddLiquidity(ctx, provider, pool.ID,
		depositA, depositB, math.ZeroInt(), math.ZeroInt(), provider)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "seeded liquidity: %s %s + %s %s for %s shares\n",
		amountA, pool.AssetA, amountB, pool.AssetB, shares)
	printReserves(out, k, pool)

	assetIn := pool.AssetA
	for i := 0; i < f.swaps; i++ {
		amountIn := math.NewInt(f.swapAmount)

		reserveA, reserveB, err := k.GetReserves(pool.ID)
		if err != nil {
			return err
		}
		reserveIn, reserveOut := reserveA, reserveB
		if assetIn == pool.AssetB {
			reserveIn, reserveOut = reserveB, reserveA
		}
		slippage, err := keeper.CalculateSlippagePercent(amountIn, reserveIn, reserveOut)
		if err != nil {
			return err
		}

		amountOut, err := k.Swap(ctx, trader, pool.ID, assetIn, amountIn, math.ZeroInt(), trader)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "swap %2d: %s %s -> %s, price impact %s bps\n",
			i+1, amountIn, assetIn, amountOut, slippage)

		// alternate direction every swap
		if assetIn == pool.AssetA {
			assetIn = pool.AssetB
		} else {
			assetIn = pool.AssetA
		}
	}
	printReserves(out, k, pool)

	held := k.SharesOf(pool.ID, provider)
	burn := held.QuoRaw(2)
	outA, outB, err := k.RemoveLiquidity(ctx, provider, pool.ID, burn, math.ZeroInt(), math.ZeroInt(), provider)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "burned %s of %s shares for %s %s + %s %s\n",
		burn, held, outA, pool.AssetA, outB, pool.AssetB)
	printReserves(out, k, pool)

	if err := k.CheckInvariants(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "invariants: ok")

	for _, account := range []string{provider, trader} {
		fmt.Fprintf(out, "balance %s: %s %s, %s %s\n", account,
			l.BalanceOf(account, pool.AssetA), pool.AssetA,
			l.BalanceOf(account, pool.AssetB), pool.AssetB)
	}
	return nil
}

func printReserves(out io.Writer, k *keeper.Keeper, pool types.Pool) {
	reserveA, reserveB, err := k.GetReserves(pool.ID)
	if err != nil {
		return
	}
	price, err := k.GetSpotPrice(pool.ID, pool.AssetA)
	if err != nil {
		return
	}
	fmt.Fprintf(out, "reserves: %s %s / %s %s, spot %s->%s = %s\n",
		reserveA, pool.AssetA, reserveB, pool.AssetB, pool.AssetA, pool.AssetB, price)
}
