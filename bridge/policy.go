// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/tokenbridge/ledger"
)

// Ledger is the value-movement policy behind a bridge deployment. The
// policy is fixed when the engine is constructed, never switched at
// runtime. Two implementations exist: MintLedger destroys value on the
// way out and creates it on the way in (the bridge is the token), and
// VaultLedger escrows value on the way out and releases it on the way
// in (the bridge holds custody of an external token).
type Ledger interface {
	// Debit removes amount from sender for an outbound transfer.
	Debit(sender ids.ShortID, amount uint64) error

	// CanCredit reports whether an inbound settlement of amount can
	// succeed, without changing state. It runs before the settlement
	// is recorded.
	CanCredit(amount uint64) error

	// Credit delivers amount to recipient for an inbound settlement.
	Credit(recipient ids.ShortID, amount uint64) error

	// Custody returns the balance currently held by the bridge
	// itself.
	Custody() uint64

	// Sweep moves the entire custodial balance to the given identity
	// and returns how much moved.
	Sweep(to ids.ShortID) (uint64, error)
}

// MintLedger is the burn-and-mint policy. Outbound transfers burn the
// sender's balance; inbound settlements mint new balance for the
// recipient. Custody is whatever balance sits on the bridge's own
// account (value can only end up there by explicit transfer).
type MintLedger struct {
	token   *ledger.Token
	account ids.ShortID
}

// NewMintLedger builds the burn-and-mint policy over token. account is
// the bridge's own account in the book.
func NewMintLedger(token *ledger.Token, account ids.ShortID) *MintLedger {
	return &MintLedger{token: token, account: account}
}

func (m *MintLedger) Debit(sender ids.ShortID, amount uint64) error {
	return m.token.Burn(sender, amount)
}

func (m *MintLedger) CanCredit(uint64) error {
	// Minting creates value; there is nothing to run out of.
	return nil
}

func (m *MintLedger) Credit(recipient ids.ShortID, amount uint64) error {
	return m.token.Mint(recipient, amount)
}

func (m *MintLedger) Custody() uint64 {
	return m.token.BalanceOf(m.account)
}

func (m *MintLedger) Sweep(to ids.ShortID) (uint64, error) {
	balance := m.token.BalanceOf(m.account)
	if err := m.token.Transfer(m.account, to, balance); err != nil {
		return 0, fmt.Errorf("sweeping %d: %w", balance, err)
	}
	return balance, nil
}

// VaultLedger is the lock-and-release policy. Outbound transfers pull
// the sender's balance into the vault account (requiring a prior
// allowance to the vault); inbound settlements pay out of the vault.
type VaultLedger struct {
	token *ledger.Token
	vault ids.ShortID
}

// NewVaultLedger builds the lock-and-release policy over token. vault
// is the custody account; senders must approve it before bridging out.
func NewVaultLedger(token *ledger.Token, vault ids.ShortID) *VaultLedger {
	return &VaultLedger{token: token, vault: vault}
}

func (v *VaultLedger) Debit(sender ids.ShortID, amount uint64) error {
	return v.token.TransferFrom(v.vault, sender, v.vault, amount)
}

func (v *VaultLedger) CanCredit(amount uint64) error {
	if custody := v.token.BalanceOf(v.vault); custody < amount {
		return fmt.Errorf("%w: vault holds %d, releasing %d", ErrInsufficientCustody, custody, amount)
	}
	return nil
}

func (v *VaultLedger) Credit(recipient ids.ShortID, amount uint64) error {
	return v.token.Transfer(v.vault, recipient, amount)
}

func (v *VaultLedger) Custody() uint64 {
	return v.token.BalanceOf(v.vault)
}

func (v *VaultLedger) Sweep(to ids.ShortID) (uint64, error) {
	balance := v.token.BalanceOf(v.vault)
	if err := v.token.Transfer(v.vault, to, balance); err != nil {
		return 0, fmt.Errorf("sweeping %d: %w", balance, err)
	}
	return balance, nil
}
