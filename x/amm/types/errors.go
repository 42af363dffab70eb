package types

import (
	"cosmossdk.io/errors"
)

// AMM module sentinel errors
var (
	ErrPoolNotFound                = errors.Register(ModuleName, 1, "pool not found")
	ErrPoolAlreadyExists           = errors.Register(ModuleName, 2, "pool already exists")
	ErrIdenticalAssets             = errors.Register(ModuleName, 3, "identical assets")
	ErrZeroAddressAsset            = errors.Register(ModuleName, 4, "zero address asset")
	ErrInvalidAsset                = errors.Register(ModuleName, 5, "asset is not part of the pool")
	ErrInsufficientInput           = errors.Register(ModuleName, 6, "insufficient input amount")
	ErrInsufficientAmount          = errors.Register(ModuleName, 7, "insufficient amount")
	ErrInsufficientLiquidity       = errors.Register(ModuleName, 8, "insufficient liquidity in pool")
	ErrSlippageExceeded            = errors.Register(ModuleName, 9, "output amount less than minimum required")
	ErrInsufficientAmountA         = errors.Register(ModuleName, 10, "optimal amount A below minimum")
	ErrInsufficientAmountB         = errors.Register(ModuleName, 11, "optimal amount B below minimum")
	ErrInsufficientLiquidityMinted = errors.Register(ModuleName, 12, "insufficient liquidity shares minted")
	ErrBelowMinimumA               = errors.Register(ModuleName, 13, "withdrawal amount A below minimum")
	ErrBelowMinimumB               = errors.Register(ModuleName, 14, "withdrawal amount B below minimum")
	ErrInsufficientShares          = errors.Register(ModuleName, 15, "insufficient liquidity shares")
	ErrInvalidInput                = errors.Register(ModuleName, 16, "invalid input")
	ErrInvalidPoolState            = errors.Register(ModuleName, 17, "invalid pool state")
	ErrOverflow                    = errors.Register(ModuleName, 18, "arithmetic overflow")
	ErrReentrancy                  = errors.Register(ModuleName, 19, "reentrancy detected")
	ErrInvariantViolation          = errors.Register(ModuleName, 20, "pool invariant violation")
	ErrTransferFailed              = errors.Register(ModuleName, 21, "ledger transfer failed")
)
