package types

import (
	"cosmossdk.io/math"
)

const (
	// ModuleName defines the module name
	ModuleName = "amm"
)

// DefaultParams returns default parameters for the amm module
func DefaultParams() Params {
	return Params{
		FeeNumerator:      997,              // 0.3% fee taken on the input side
		FeeDenominator:    1000,
		MinimumSharesLock: math.NewInt(1000), // shares permanently retained by the pool
	}
}
