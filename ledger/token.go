// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger implements the token book the bridge engine moves
// value through. Balances, allowances and total supply are persisted
// to the database on every mutation, so a reopened engine resumes with
// the same book.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	safemath "github.com/luxfi/math"
)

var (
	// ErrInsufficientBalance is returned when a debit exceeds the
	// account balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAllowance is returned when a delegated transfer
	// exceeds the approved allowance.
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	errZeroAccount = errors.New("zero account identity")

	balancePrefix   = []byte("balance")
	allowancePrefix = []byte("allowance")
	supplyKey       = []byte("supply")
)

// Token is a supply-tracked account book. All methods are atomic: a
// failed call leaves no partial state behind.
type Token struct {
	Name   string
	Symbol string

	mu          sync.RWMutex
	balances    database.Database
	allowances  database.Database
	meta        database.Database
	totalSupply uint64
	log         log.Logger
}

// New opens (or creates) a token book on db.
func New(name, symbol string, db database.Database, logger log.Logger) (*Token, error) {
	t := &Token{
		Name:       name,
		Symbol:     symbol,
		balances:   prefixdb.New(balancePrefix, db),
		allowances: prefixdb.New(allowancePrefix, db),
		meta:       db,
		log:        logger,
	}
	supply, err := database.GetUInt64(t.meta, supplyKey)
	switch {
	case err == nil:
		t.totalSupply = supply
	case errors.Is(err, database.ErrNotFound):
		// fresh book
	default:
		return nil, fmt.Errorf("reading supply: %w", err)
	}
	return t, nil
}

// TotalSupply returns the sum of all balances.
func (t *Token) TotalSupply() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalSupply
}

// BalanceOf returns the balance of account. Unknown accounts have a
// zero balance.
func (t *Token) BalanceOf(account ids.ShortID) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balance(account)
}

// Allowance returns how much spender may move out of owner's account.
func (t *Token) Allowance(owner, spender ids.ShortID) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	amount, err := database.GetUInt64(t.allowances, allowanceKey(owner, spender))
	if err != nil {
		return 0
	}
	return amount
}

// Mint creates amount new units in to's account.
func (t *Token) Mint(to ids.ShortID, amount uint64) error {
	if to == ids.ShortEmpty {
		return errZeroAccount
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	newBalance, err := safemath.Add(t.balance(to), amount)
	if err != nil {
		return fmt.Errorf("minting to %s: %w", to, err)
	}
	newSupply, err := safemath.Add(t.totalSupply, amount)
	if err != nil {
		return fmt.Errorf("minting %d: %w", amount, err)
	}
	if err := t.writeBalance(to, newBalance); err != nil {
		return err
	}
	if err := database.PutUInt64(t.meta, supplyKey, newSupply); err != nil {
		return fmt.Errorf("writing supply: %w", err)
	}
	t.totalSupply = newSupply
	t.log.Debug("minted",
		log.String("symbol", t.Symbol),
		log.Stringer("to", to),
		log.Uint64("amount", amount),
		log.Uint64("supply", newSupply),
	)
	return nil
}

// Burn destroys amount units from from's account.
func (t *Token) Burn(from ids.ShortID, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	balance := t.balance(from)
	if balance < amount {
		return fmt.Errorf("%w: %s holds %d, burning %d", ErrInsufficientBalance, from, balance, amount)
	}
	if err := t.writeBalance(from, balance-amount); err != nil {
		return err
	}
	newSupply := t.totalSupply - amount
	if err := database.PutUInt64(t.meta, supplyKey, newSupply); err != nil {
		return fmt.Errorf("writing supply: %w", err)
	}
	t.totalSupply = newSupply
	t.log.Debug("burned",
		log.String("symbol", t.Symbol),
		log.Stringer("from", from),
		log.Uint64("amount", amount),
		log.Uint64("supply", newSupply),
	)
	return nil
}

// Transfer moves amount from one account to another.
func (t *Token) Transfer(from, to ids.ShortID, amount uint64) error {
	if to == ids.ShortEmpty {
		return errZeroAccount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transfer(from, to, amount)
}

// Approve lets spender move up to amount out of owner's account via
// TransferFrom. A later call replaces the allowance outright.
func (t *Token) Approve(owner, spender ids.ShortID, amount uint64) error {
	if spender == ids.ShortEmpty {
		return errZeroAccount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := database.PutUInt64(t.allowances, allowanceKey(owner, spender), amount); err != nil {
		return fmt.Errorf("writing allowance: %w", err)
	}
	return nil
}

// TransferFrom moves amount from one account to another on the
// authority of spender's allowance, which it decrements.
func (t *Token) TransferFrom(spender, from, to ids.ShortID, amount uint64) error {
	if to == ids.ShortEmpty {
		return errZeroAccount
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	key := allowanceKey(from, spender)
	allowance, err := database.GetUInt64(t.allowances, key)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("reading allowance: %w", err)
	}
	if allowance < amount {
		return fmt.Errorf("%w: %s approved %d for %s, moving %d",
			ErrInsufficientAllowance, from, allowance, spender, amount)
	}
	if err := t.transfer(from, to, amount); err != nil {
		return err
	}
	if err := database.PutUInt64(t.allowances, key, allowance-amount); err != nil {
		return fmt.Errorf("writing allowance: %w", err)
	}
	return nil
}

func (t *Token) transfer(from, to ids.ShortID, amount uint64) error {
	fromBalance := t.balance(from)
	if fromBalance < amount {
		return fmt.Errorf("%w: %s holds %d, moving %d", ErrInsufficientBalance, from, fromBalance, amount)
	}
	if from == to {
		return nil
	}
	newToBalance, err := safemath.Add(t.balance(to), amount)
	if err != nil {
		return fmt.Errorf("crediting %s: %w", to, err)
	}
	if err := t.writeBalance(from, fromBalance-amount); err != nil {
		return err
	}
	return t.writeBalance(to, newToBalance)
}

func (t *Token) balance(account ids.ShortID) uint64 {
	amount, err := database.GetUInt64(t.balances, account.Bytes())
	if err != nil {
		return 0
	}
	return amount
}

func (t *Token) writeBalance(account ids.ShortID, amount uint64) error {
	if err := database.PutUInt64(t.balances, account.Bytes(), amount); err != nil {
		return fmt.Errorf("writing balance of %s: %w", account, err)
	}
	return nil
}

func allowanceKey(owner, spender ids.ShortID) []byte {
	key := make([]byte, 0, 2*ids.ShortIDLen)
	key = append(key, owner.Bytes()...)
	return append(key, spender.Bytes()...)
}
