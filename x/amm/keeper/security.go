package keeper

import (
	"context"
	"sync"

	"cosmossdk.io/math"

	"github.com/tmsdkeys/pairpool/x/amm/types"
)

// transferTokenKey marks a context as originating from inside a ledger
// transfer. The value is the set of pool IDs with a transfer on the current
// call chain, so nesting is detected by provenance rather than by timing: an
// unrelated goroutine arriving during a transfer carries no token and simply
// queues on the pool mutex.
type transferTokenKey struct{}

func markTransfer(ctx context.Context, poolID uint64) context.Context {
	pools := map[uint64]struct{}{poolID: {}}
	if existing, ok := ctx.Value(transferTokenKey{}).(map[uint64]struct{}); ok {
		for id := range existing {
			pools[id] = struct{}{}
		}
	}
	return context.WithValue(ctx, transferTokenKey{}, pools)
}

func transferInFlight(ctx context.Context, poolID uint64) bool {
	pools, ok := ctx.Value(transferTokenKey{}).(map[uint64]struct{})
	if !ok {
		return false
	}
	_, held := pools[poolID]
	return held
}

// ReentrancyGuard provides lightweight in-memory named locks. The keeper arms
// one around every host-ledger transfer; a second acquisition of the same key
// means two transfers overlap on one pool, which the pool mutex should make
// impossible.
type ReentrancyGuard struct {
	mu    sync.Mutex
	locks map[string]struct{}
}

// NewReentrancyGuard creates a new guard instance.
func NewReentrancyGuard() *ReentrancyGuard {
	return &ReentrancyGuard{locks: make(map[string]struct{})}
}

// Lock acquires a named lock or returns an error if already held.
func (g *ReentrancyGuard) Lock(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.locks[key]; exists {
		return types.ErrReentrancy.Wrapf("reentrancy detected for %s", key)
	}

	g.locks[key] = struct{}{}
	return nil
}

// Unlock releases a named lock.
func (g *ReentrancyGuard) Unlock(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.locks, key)
}

// Held reports whether the named lock is currently held.
func (g *ReentrancyGuard) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, exists := g.locks[key]
	return exists
}

// transferIn moves amount of asset from the payer into pool custody. The
// context handed to the ledger carries the pool's transfer token so a
// callback into the keeper fails fast.
func (k *Keeper) transferIn(ctx context.Context, poolID uint64, from, asset string, amount math.Int) error {
	key := guardKey(poolID)
	if err := k.guard.Lock(key); err != nil {
		return err
	}
	defer k.guard.Unlock(key)

	if err := k.ledger.TransferIn(markTransfer(ctx, poolID), from, asset, amount); err != nil {
		return types.ErrTransferFailed.Wrapf("debit %s of %s %s: %v", from, amount, asset, err)
	}
	return nil
}

// transferOut moves amount of asset out of pool custody to the recipient,
// with the transfer token stamped as in transferIn.
func (k *Keeper) transferOut(ctx context.Context, poolID uint64, to, asset string, amount math.Int) error {
	key := guardKey(poolID)
	if err := k.guard.Lock(key); err != nil {
		return err
	}
	defer k.guard.Unlock(key)

	if err := k.ledger.TransferOut(markTransfer(ctx, poolID), to, asset, amount); err != nil {
		return types.ErrTransferFailed.Wrapf("credit %s with %s %s: %v", to, amount, asset, err)
	}
	return nil
}
