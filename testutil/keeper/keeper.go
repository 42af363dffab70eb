// Package keeper builds fully wired amm keepers for tests.
package keeper

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/tmsdkeys/pairpool/ledger"
	"github.com/tmsdkeys/pairpool/x/amm/keeper"
	"github.com/tmsdkeys/pairpool/x/amm/types"
)

// PoolAccount is the custody account the test ledger reserves for pools.
const PoolAccount = "amm_pool"

// Test assets and the balance each named account starts with.
const (
	AssetA = "tokenA"
	AssetB = "tokenB"
)

var initialBalance = math.NewInt(1_000_000_000)

// AmmKeeper creates a test keeper with default params, backed by an in-memory
// ledger that funds the given accounts with both assets.
func AmmKeeper(t testing.TB, accounts ...string) (*keeper.Keeper, *ledger.Ledger) {
	t.Helper()

	l := ledger.New(PoolAccount, AssetA, AssetB)
	for _, account := range accounts {
		require.NoError(t, l.Mint(AssetA, account, initialBalance))
		require.NoError(t, l.Mint(AssetB, account, initialBalance))
	}

	k, err := keeper.NewKeeper(l, types.DefaultParams(), log.NewNopLogger())
	require.NoError(t, err)
	return k, l
}

// RecordingEmitter captures every event for assertions.
type RecordingEmitter struct {
	Events []types.Event
}

// Emit implements types.EventEmitter.
func (e *RecordingEmitter) Emit(event types.Event) {
	e.Events = append(e.Events, event)
}

// Last returns the most recent event, or nil when nothing was emitted.
func (e *RecordingEmitter) Last() types.Event {
	if len(e.Events) == 0 {
		return nil
	}
	return e.Events[len(e.Events)-1]
}
