package types

import (
	"cosmossdk.io/math"
)

// Params holds the pricing parameters shared by every pool the keeper manages.
type Params struct {
	// FeeNumerator / FeeDenominator express the input-side swap fee as the
	// fraction of input that remains after the fee: 997/1000 means 0.3%.
	FeeNumerator   uint64
	FeeDenominator uint64

	// MinimumSharesLock is minted to the pool itself on first deposit and can
	// never be withdrawn. It deters share-price manipulation via a near-zero
	// first deposit.
	MinimumSharesLock math.Int
}

// Validate validates the set of params
func (p Params) Validate() error {
	if p.FeeDenominator == 0 {
		return ErrInvalidInput.Wrap("fee denominator cannot be zero")
	}
	if p.FeeNumerator > p.FeeDenominator {
		return ErrInvalidInput.Wrapf("fee numerator %d exceeds denominator %d", p.FeeNumerator, p.FeeDenominator)
	}
	if p.MinimumSharesLock.IsNil() || !p.MinimumSharesLock.IsPositive() {
		return ErrInvalidInput.Wrap("minimum shares lock must be positive")
	}
	return nil
}
