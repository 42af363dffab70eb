package keeper_test

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/tmsdkeys/pairpool/ledger"
	keepertest "github.com/tmsdkeys/pairpool/testutil/keeper"
	"github.com/tmsdkeys/pairpool/x/amm/keeper"
	"github.com/tmsdkeys/pairpool/x/amm/types"
)

func TestReentrancyGuard_LockUnlock(t *testing.T) {
	guard := keeper.NewReentrancyGuard()

	require.NoError(t, guard.Lock("pool/1"))
	require.True(t, guard.Held("pool/1"))

	// Second acquisition of the same key fails.
	err := guard.Lock("pool/1")
	require.ErrorIs(t, err, types.ErrReentrancy)

	// A different key is independent.
	require.NoError(t, guard.Lock("pool/2"))
	guard.Unlock("pool/2")

	guard.Unlock("pool/1")
	require.False(t, guard.Held("pool/1"))
	require.NoError(t, guard.Lock("pool/1"))
}

// reentrantLedger wraps the in-memory ledger and calls back into the keeper
// from inside TransferIn, imitating a malicious token contract.
type reentrantLedger struct {
	*ledger.Ledger
	k      *keeper.Keeper
	poolID uint64

	reentered   bool
	nestedError error
}

func (r *reentrantLedger) TransferIn(ctx context.Context, from, asset string, amount math.Int) error {
	if !r.reentered && r.poolID != 0 {
		r.reentered = true
		_, r.nestedError = r.k.Swap(ctx, from, r.poolID, asset, amount, math.ZeroInt(), from)
	}
	return r.Ledger.TransferIn(ctx, from, asset, amount)
}

func TestSwap_ReentrantLedgerRejected(t *testing.T) {
	l := ledger.New(keepertest.PoolAccount, keepertest.AssetA, keepertest.AssetB)
	wrapped := &reentrantLedger{Ledger: l}

	k, err := keeper.NewKeeper(wrapped, types.DefaultParams(), log.NewNopLogger())
	require.NoError(t, err)
	wrapped.k = k

	ctx := context.Background()
	for _, account := range []string{provider, trader} {
		require.NoError(t, l.Mint(keepertest.AssetA, account, math.NewInt(1_000_000)))
		require.NoError(t, l.Mint(keepertest.AssetB, account, math.NewInt(1_000_000)))
	}

	pool, err := k.CreatePool(ctx, creator, keepertest.AssetA, keepertest.AssetB)
	require.NoError(t, err)
	_, _, _, err = k.AddLiquidity(ctx, provider, pool.ID,
		math.NewInt(10000), math.NewInt(10000), math.ZeroInt(), math.ZeroInt(), provider)
	require.NoError(t, err)

	// Arm the callback only now; the outer swap's input transfer triggers a
	// nested swap against the same pool.
	wrapped.poolID = pool.ID

	out, err := k.Swap(ctx, trader, pool.ID, keepertest.AssetA, math.NewInt(1000), math.ZeroInt(), trader)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(906), out)

	// The nested call was rejected, not deadlocked.
	require.True(t, wrapped.reentered)
	require.ErrorIs(t, wrapped.nestedError, types.ErrReentrancy)

	// Only the outer swap moved the reserves.
	reserveA, reserveB, err := k.GetReserves(pool.ID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(11000), reserveA)
	require.Equal(t, math.NewInt(9094), reserveB)
}

// slowLedger wraps the in-memory ledger and, once armed, parks the next
// TransferIn until released, holding the transfer window open.
type slowLedger struct {
	*ledger.Ledger

	armed   bool
	entered chan struct{}
	release chan struct{}
}

func (s *slowLedger) TransferIn(ctx context.Context, from, asset string, amount math.Int) error {
	if s.armed {
		s.armed = false
		close(s.entered)
		<-s.release
	}
	return s.Ledger.TransferIn(ctx, from, asset, amount)
}

func TestSwap_ConcurrentDuringTransferWindow(t *testing.T) {
	l := ledger.New(keepertest.PoolAccount, keepertest.AssetA, keepertest.AssetB)
	wrapped := &slowLedger{
		Ledger:  l,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	k, err := keeper.NewKeeper(wrapped, types.DefaultParams(), log.NewNopLogger())
	require.NoError(t, err)

	ctx := context.Background()
	for _, account := range []string{provider, trader} {
		require.NoError(t, l.Mint(keepertest.AssetA, account, math.NewInt(1_000_000)))
		require.NoError(t, l.Mint(keepertest.AssetB, account, math.NewInt(1_000_000)))
	}

	pool, err := k.CreatePool(ctx, creator, keepertest.AssetA, keepertest.AssetB)
	require.NoError(t, err)
	_, _, _, err = k.AddLiquidity(ctx, provider, pool.ID,
		math.NewInt(10000), math.NewInt(10000), math.ZeroInt(), math.ZeroInt(), provider)
	require.NoError(t, err)

	wrapped.armed = true

	type result struct {
		out math.Int
		err error
	}
	first := make(chan result, 1)
	second := make(chan result, 1)

	go func() {
		out, err := k.Swap(context.Background(), trader, pool.ID, keepertest.AssetA, math.NewInt(1000), math.ZeroInt(), trader)
		first <- result{out, err}
	}()

	// Wait until the first swap's input transfer is in flight, then start a
	// second trader. Its swap has to queue behind the pool lock and run after
	// the first completes; it is a separate operation, not a nested callback.
	<-wrapped.entered
	go func() {
		out, err := k.Swap(context.Background(), provider, pool.ID, keepertest.AssetA, math.NewInt(1000), math.ZeroInt(), provider)
		second <- result{out, err}
	}()
	time.Sleep(50 * time.Millisecond)
	close(wrapped.release)

	res := <-first
	require.NoError(t, res.err)
	require.Equal(t, math.NewInt(906), res.out)

	res = <-second
	require.NoError(t, res.err)
	require.Equal(t, math.NewInt(755), res.out)

	// Both swaps applied in order against the same pool.
	reserveA, reserveB, err := k.GetReserves(pool.ID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(12000), reserveA)
	require.Equal(t, math.NewInt(8339), reserveB)
}
