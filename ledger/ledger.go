// Package ledger provides an in-memory host custody layer for pool cores:
// per-asset balance and allowance books with ERC20-style transfer semantics
// and a dedicated pool account. Every call either applies in full or has no
// effect.
package ledger

import (
	"context"
	"sync"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"

	"github.com/tmsdkeys/pairpool/x/amm/types"
)

const codespace = "ledger"

var (
	ErrUnknownAsset          = errors.Register(codespace, 1, "unknown asset")
	ErrInsufficientBalance   = errors.Register(codespace, 2, "insufficient balance")
	ErrInsufficientAllowance = errors.Register(codespace, 3, "insufficient allowance")
	ErrInvalidAmount         = errors.Register(codespace, 4, "invalid amount")
)

// Event type names emitted by the ledger
const (
	EventTypeTransfer = "transfer"
	EventTypeApproval = "approval"
)

// EventTransfer is emitted after every successful balance movement.
type EventTransfer struct {
	Asset string
	From  string
	To    string
	Value math.Int
}

func (EventTransfer) EventType() string { return EventTypeTransfer }

// EventApproval is emitted after every allowance change.
type EventApproval struct {
	Asset   string
	Owner   string
	Spender string
	Value   math.Int
}

func (EventApproval) EventType() string { return EventTypeApproval }

type assetBook struct {
	balances   map[string]math.Int
	allowances map[string]map[string]math.Int
	supply     math.Int
}

func newAssetBook() *assetBook {
	return &assetBook{
		balances:   make(map[string]math.Int),
		allowances: make(map[string]map[string]math.Int),
		supply:     math.ZeroInt(),
	}
}

// Ledger is an in-memory implementation of the custody collaborator a pool
// core consumes. It satisfies the amm module's types.Ledger interface.
type Ledger struct {
	mu          sync.Mutex
	assets      map[string]*assetBook
	poolAccount string
	emitter     types.EventEmitter
}

// New creates a ledger tracking the given assets, with poolAccount as the
// custody account pools draw on.
func New(poolAccount string, assets ...string) *Ledger {
	l := &Ledger{
		assets:      make(map[string]*assetBook),
		poolAccount: poolAccount,
		emitter:     types.NopEmitter{},
	}
	for _, asset := range assets {
		l.assets[asset] = newAssetBook()
	}
	return l
}

// SetEmitter installs the event emitter for Transfer/Approval notifications.
func (l *Ledger) SetEmitter(emitter types.EventEmitter) {
	if emitter == nil {
		emitter = types.NopEmitter{}
	}
	l.emitter = emitter
}

// PoolAccount returns the custody account name.
func (l *Ledger) PoolAccount() string {
	return l.poolAccount
}

// HasAsset reports whether the ledger tracks the asset.
func (l *Ledger) HasAsset(asset string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.assets[asset]
	return ok
}

// Mint credits newly issued units to an account. Test and genesis funding.
func (l *Ledger) Mint(asset, to string, amount math.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	book, err := l.book(asset)
	if err != nil {
		return err
	}
	if amount.IsNil() || amount.IsNegative() {
		return ErrInvalidAmount.Wrapf("cannot mint %s", amount)
	}
	book.balances[to] = l.balance(book, to).Add(amount)
	book.supply = book.supply.Add(amount)
	return nil
}

// TotalSupply returns the total units ever minted of the asset. Transfers
// move value between accounts and leave the supply unchanged.
func (l *Ledger) TotalSupply(asset string) math.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	book, err := l.book(asset)
	if err != nil {
		return math.ZeroInt()
	}
	return book.supply
}

// BalanceOf returns the account's balance in the asset.
func (l *Ledger) BalanceOf(account, asset string) math.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	book, err := l.book(asset)
	if err != nil {
		return math.ZeroInt()
	}
	return l.balance(book, account)
}

// PoolBalance returns the custody account's balance in the asset.
func (l *Ledger) PoolBalance(_ context.Context, asset string) math.Int {
	return l.BalanceOf(l.poolAccount, asset)
}

// Transfer moves value between two accounts, debit and credit as one step.
func (l *Ledger) Transfer(asset, from, to string, amount math.Int) error {
	l.mu.Lock()
	err := l.move(asset, from, to, amount)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	l.emitter.Emit(EventTransfer{Asset: asset, From: from, To: to, Value: amount})
	return nil
}

// Approve sets spender's allowance over owner's balance in the asset.
func (l *Ledger) Approve(asset, owner, spender string, amount math.Int) error {
	l.mu.Lock()
	book, err := l.book(asset)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	if amount.IsNil() || amount.IsNegative() {
		l.mu.Unlock()
		return ErrInvalidAmount.Wrapf("cannot approve %s", amount)
	}
	owned, ok := book.allowances[owner]
	if !ok {
		owned = make(map[string]math.Int)
		book.allowances[owner] = owned
	}
	owned[spender] = amount
	l.mu.Unlock()

	l.emitter.Emit(EventApproval{Asset: asset, Owner: owner, Spender: spender, Value: amount})
	return nil
}

// Allowance returns spender's remaining allowance over owner's balance.
func (l *Ledger) Allowance(asset, owner, spender string) math.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	book, err := l.book(asset)
	if err != nil {
		return math.ZeroInt()
	}
	owned, ok := book.allowances[owner]
	if !ok {
		return math.ZeroInt()
	}
	allowance, ok := owned[spender]
	if !ok {
		return math.ZeroInt()
	}
	return allowance
}

// TransferFrom moves value from owner to recipient on spender's authority,
// consuming allowance. Allowance and balance checks both pass before either
// book changes.
func (l *Ledger) TransferFrom(asset, spender, from, to string, amount math.Int) error {
	l.mu.Lock()
	book, err := l.book(asset)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	owned, ok := book.allowances[from]
	if !ok {
		owned = make(map[string]math.Int)
		book.allowances[from] = owned
	}
	allowance := math.ZeroInt()
	if a, ok := owned[spender]; ok {
		allowance = a
	}
	if allowance.LT(amount) {
		l.mu.Unlock()
		return ErrInsufficientAllowance.Wrapf("%s allowed %s of %s, need %s", spender, allowance, asset, amount)
	}
	if err := l.move(asset, from, to, amount); err != nil {
		l.mu.Unlock()
		return err
	}
	owned[spender] = allowance.Sub(amount)
	l.mu.Unlock()

	l.emitter.Emit(EventTransfer{Asset: asset, From: from, To: to, Value: amount})
	return nil
}

// TransferIn debits the payer and credits the pool account.
func (l *Ledger) TransferIn(_ context.Context, from string, asset string, amount math.Int) error {
	return l.Transfer(asset, from, l.poolAccount, amount)
}

// TransferOut debits the pool account and credits the recipient.
func (l *Ledger) TransferOut(_ context.Context, to string, asset string, amount math.Int) error {
	return l.Transfer(asset, l.poolAccount, to, amount)
}

// move performs the debit-credit pair. Callers hold l.mu.
func (l *Ledger) move(asset, from, to string, amount math.Int) error {
	book, err := l.book(asset)
	if err != nil {
		return err
	}
	if amount.IsNil() || amount.IsNegative() {
		return ErrInvalidAmount.Wrapf("cannot transfer %s", amount)
	}

	fromBalance := l.balance(book, from)
	if fromBalance.LT(amount) {
		return ErrInsufficientBalance.Wrapf("%s holds %s of %s, need %s", from, fromBalance, asset, amount)
	}
	book.balances[from] = fromBalance.Sub(amount)
	book.balances[to] = l.balance(book, to).Add(amount)
	return nil
}

// book resolves the asset's balance book. Callers hold l.mu.
func (l *Ledger) book(asset string) (*assetBook, error) {
	book, ok := l.assets[asset]
	if !ok {
		return nil, ErrUnknownAsset.Wrapf("asset %s is not tracked", asset)
	}
	return book, nil
}

// balance reads an account balance, defaulting to zero. Callers hold l.mu.
func (l *Ledger) balance(book *assetBook, account string) math.Int {
	balance, ok := book.balances[account]
	if !ok {
		return math.ZeroInt()
	}
	return balance
}
