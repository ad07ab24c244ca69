// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import "errors"

// Every rejection the engine produces wraps one of these, so callers
// can classify failures with errors.Is. No call that returns one of
// them leaves any state change behind.
var (
	// Authorization failures.

	ErrNotAuthorized   = errors.New("caller is not a registered signer or the administrator")
	ErrNotSigner       = errors.New("caller is not a registered signer")
	ErrNotBridgeCaller = errors.New("caller is not the bridge caller")

	// State-machine violations.

	ErrUnknownOperation      = errors.New("operation does not exist")
	ErrAlreadyExecuted       = errors.New("operation already executed")
	ErrAlreadySigned         = errors.New("duplicate signature from this signer")
	ErrDeadlinePassed        = errors.New("operation deadline passed")
	ErrSignatureMismatch     = errors.New("signature does not recover to caller")
	ErrRemovedSignerApproval = errors.New("signer being replaced cannot approve")
	ErrUnknownOpType         = errors.New("unknown operation type")

	// UpdateSigner request validation.

	ErrOldSignerInvalid = errors.New("identity to remove is not a registered signer")
	ErrNewSignerInvalid = errors.New("replacement identity is invalid or already registered")
	ErrSelfRemoval      = errors.New("signer cannot request their own removal")

	// Ledger-policy violations.

	ErrZeroAmount          = errors.New("amount must be greater than zero")
	ErrZeroRecipient       = errors.New("recipient identity must be non-zero")
	ErrOverCap             = errors.New("amount exceeds per-transfer cap")
	ErrWrongChain          = errors.New("call is tagged for a different chain")
	ErrSameChain           = errors.New("destination chain matches source chain")
	ErrBridgeOutDisabled   = errors.New("outbound bridging is disabled")
	ErrBridgeInDisabled    = errors.New("inbound bridging is disabled")
	ErrCooldownActive      = errors.New("inbound settlement cooldown not met")
	ErrTransferProcessed   = errors.New("transfer identifier already processed")
	ErrInsufficientCustody = errors.New("insufficient custodial balance")

	// Lifecycle violations.

	ErrPaused    = errors.New("bridge is paused")
	ErrHalted    = errors.New("bridge is halted")
	ErrNoCustody = errors.New("no custodial balance to sweep")
)
