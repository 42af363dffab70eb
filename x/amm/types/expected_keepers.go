package types

import (
	"context"

	"cosmossdk.io/math"
)

// Ledger is the host custody layer the pool core consumes. The core itself
// never moves value: before committing any reserve change it asks the ledger
// to perform the matching transfer, and commits only if the transfer fully
// succeeded. Each call is atomic on the ledger side: it either applies in
// full or has no effect.
//
// Implementations must not call back into the keeper from within a transfer,
// and must thread the context they receive into any keeper call they do make:
// the keeper stamps a transfer token on that context, and a nested call
// carrying it fails fast with ErrReentrancy instead of deadlocking.
type Ledger interface {
	// TransferIn debits from and credits the pool account.
	TransferIn(ctx context.Context, from string, asset string, amount math.Int) error

	// TransferOut debits the pool account and credits to.
	TransferOut(ctx context.Context, to string, asset string, amount math.Int) error

	// HasAsset reports whether the ledger can resolve the asset reference.
	HasAsset(asset string) bool

	// PoolBalance returns the custody-side balance the ledger holds for the
	// pool account in the given asset. Multiple pools may share an asset, so
	// callers compare with >=, never ==.
	PoolBalance(ctx context.Context, asset string) math.Int
}
