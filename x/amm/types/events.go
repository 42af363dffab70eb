package types

import (
	"cosmossdk.io/math"
)

// Event type names for the amm module
const (
	EventTypePoolCreated      = "pool_created"
	EventTypeLiquidityAdded   = "liquidity_added"
	EventTypeLiquidityRemoved = "liquidity_removed"
	EventTypeSwap             = "swap"
)

// Event is a structured notification emitted after a successful operation.
// Failed operations emit nothing.
type Event interface {
	EventType() string
}

// EventEmitter receives events from the keeper. Implementations must not call
// back into the keeper; the emitting operation still holds the pool lock.
type EventEmitter interface {
	Emit(event Event)
}

// EventPoolCreated is emitted when a new pool is registered.
type EventPoolCreated struct {
	PoolID  uint64
	Creator string
	AssetA  string
	AssetB  string
}

func (EventPoolCreated) EventType() string { return EventTypePoolCreated }

// EventLiquidityAdded is emitted after a successful deposit.
type EventLiquidityAdded struct {
	PoolID   uint64
	Provider string
	AmountA  math.Int
	AmountB  math.Int
	Shares   math.Int
}

func (EventLiquidityAdded) EventType() string { return EventTypeLiquidityAdded }

// EventLiquidityRemoved is emitted after a successful withdrawal.
type EventLiquidityRemoved struct {
	PoolID   uint64
	Provider string
	AmountA  math.Int
	AmountB  math.Int
	Shares   math.Int
}

func (EventLiquidityRemoved) EventType() string { return EventTypeLiquidityRemoved }

// EventSwap is emitted after a successful swap.
type EventSwap struct {
	PoolID    uint64
	Trader    string
	AssetIn   string
	AssetOut  string
	AmountIn  math.Int
	AmountOut math.Int
}

func (EventSwap) EventType() string { return EventTypeSwap }

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) Emit(Event) {}
