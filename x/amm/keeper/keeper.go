package keeper

import (
	"context"
	"fmt"
	"sync"

	"cosmossdk.io/log"
	"cosmossdk.io/math"

	"github.com/tmsdkeys/pairpool/x/amm/types"
)

// Keeper owns the pool records and runs every state transition over them.
// Each pool is logically single-threaded: a per-pool mutex serializes
// operations, and a context token stamped on ledger transfers rejects nested
// callbacks instead of deadlocking.
type Keeper struct {
	ledger  types.Ledger
	logger  log.Logger
	params  types.Params
	emitter types.EventEmitter
	hooks   types.AmmHooks
	metrics *Metrics

	mu         sync.RWMutex
	pools      map[uint64]*types.Pool
	poolByPair map[string]uint64
	positions  map[uint64]map[string]math.Int
	nextPoolID uint64

	lockMu    sync.Mutex
	poolLocks map[uint64]*sync.Mutex
	guard     *ReentrancyGuard
}

// NewKeeper creates a new amm Keeper instance. The ledger is the host custody
// layer; params must validate.
func NewKeeper(ledger types.Ledger, params types.Params, logger log.Logger) (*Keeper, error) {
	if ledger == nil {
		return nil, types.ErrInvalidInput.Wrap("ledger must not be nil")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	return &Keeper{
		ledger:     ledger,
		logger:     logger.With("module", types.ModuleName),
		params:     params,
		emitter:    types.NopEmitter{},
		pools:      make(map[uint64]*types.Pool),
		poolByPair: make(map[string]uint64),
		positions:  make(map[uint64]map[string]math.Int),
		nextPoolID: 1,
		poolLocks:  make(map[uint64]*sync.Mutex),
		guard:      NewReentrancyGuard(),
	}, nil
}

// SetEmitter installs the event emitter. Must be called before operations run.
func (k *Keeper) SetEmitter(emitter types.EventEmitter) {
	if emitter == nil {
		emitter = types.NopEmitter{}
	}
	k.emitter = emitter
}

// SetHooks installs the module callbacks. Must be called before operations run.
func (k *Keeper) SetHooks(hooks types.AmmHooks) {
	k.hooks = hooks
}

// SetMetrics installs the prometheus metrics. Must be called before operations run.
func (k *Keeper) SetMetrics(m *Metrics) {
	k.metrics = m
}

// Params returns the keeper's pricing parameters.
func (k *Keeper) Params() types.Params {
	return k.params
}

// Logger returns the keeper's logger.
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// poolLock returns the mutex serializing operations on poolID.
func (k *Keeper) poolLock(poolID uint64) *sync.Mutex {
	k.lockMu.Lock()
	defer k.lockMu.Unlock()

	mu, ok := k.poolLocks[poolID]
	if !ok {
		mu = &sync.Mutex{}
		k.poolLocks[poolID] = mu
	}
	return mu
}

func guardKey(poolID uint64) string {
	return fmt.Sprintf("pool/%d", poolID)
}

// withPool runs fn over the named pool under the pool's mutex. fn receives a
// working copy and returns the commit state; the copy replaces the stored
// pool only if fn succeeds, so a failing operation leaves the pool
// byte-identical to before the call.
//
// Concurrent operations on the same pool queue on the mutex. A nested call is
// different: a Ledger implementation calling back into the keeper from inside
// a transfer would deadlock on the mutex its own operation holds, so the
// transfer wrappers stamp the pool's token into the context they hand the
// ledger, and a context that already carries it fails fast with ErrReentrancy.
func (k *Keeper) withPool(ctx context.Context, poolID uint64, fn func(pool *types.Pool) error) error {
	if transferInFlight(ctx, poolID) {
		return types.ErrReentrancy.Wrapf("pool %d has a transfer in flight", poolID)
	}

	mu := k.poolLock(poolID)
	mu.Lock()
	defer mu.Unlock()

	k.mu.RLock()
	stored, ok := k.pools[poolID]
	k.mu.RUnlock()
	if !ok {
		return types.ErrPoolNotFound.Wrapf("pool %d not found", poolID)
	}

	working := *stored
	if err := fn(&working); err != nil {
		return err
	}

	k.mu.Lock()
	k.pools[poolID] = &working
	k.mu.Unlock()
	return nil
}
