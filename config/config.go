// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds the deployment configuration for a token bridge
// engine. Every deployed bridge is parameterized by a chain ID, a fixed
// signer set, an administrator, and a table mapping operation types to
// the numeric codes used in operation fingerprints. The code tables
// differ across deployments so that an approval fingerprinted on one
// deployment can never be valid on another.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/ids"
)

const (
	// NumSigners is the fixed size of the signer registry.
	NumSigners = 4

	// QuorumThreshold is the number of distinct signer approvals
	// required to execute an operation.
	QuorumThreshold = 3

	// DefaultOperationDeadline is how long an operation accepts
	// signatures after it is requested.
	DefaultOperationDeadline = 72 * time.Hour

	// DefaultCooldown is the minimum spacing between any two
	// successful inbound settlements, system-wide.
	DefaultCooldown = time.Minute

	// DefaultReplayWindowSize is the number of settled transfer
	// identifiers remembered for replay protection. An identifier
	// older than this horizon becomes reusable; bounding the window
	// is a deliberate storage trade-off.
	DefaultReplayWindowSize = 100

	// DefaultMaxTransfer is the default per-transfer cap.
	DefaultMaxTransfer uint64 = 1_000_000 * 1_000_000_000
)

var (
	errNoChainID       = errors.New("chain ID must be non-zero")
	errZeroSigner      = errors.New("signer identity must be non-zero")
	errDuplicateSigner = errors.New("signer identities must be distinct")
	errNoAdmin         = errors.New("administrator identity must be non-zero")
	errNoBridgeCaller  = errors.New("bridge caller identity must be non-zero")
	errBadReplayWindow = errors.New("replay window size must be positive")
	errBadDeadline     = errors.New("operation deadline must be positive")
	errDuplicateOpCode = errors.New("operation codes must be distinct")
)

// OpCodeTable assigns the wire code for each operation type. The codes
// enter operation fingerprints, so two deployments with different
// tables (or different chain IDs) never produce colliding fingerprints.
type OpCodeTable struct {
	UpdateSigner    byte `json:"updateSigner"`
	SetBridgeLimits byte `json:"setBridgeLimits"`
	SetBridgeCaller byte `json:"setBridgeCaller"`
	ToggleBridge    byte `json:"toggleBridge"`
	Pause           byte `json:"pause"`
	Unpause         byte `json:"unpause"`
	Relinquish      byte `json:"relinquish"`
}

func (t OpCodeTable) codes() [7]byte {
	return [7]byte{
		t.UpdateSigner,
		t.SetBridgeLimits,
		t.SetBridgeCaller,
		t.ToggleBridge,
		t.Pause,
		t.Unpause,
		t.Relinquish,
	}
}

// Validate returns an error if two operation types share a wire code.
func (t OpCodeTable) Validate() error {
	seen := make(map[byte]bool, 7)
	for _, c := range t.codes() {
		if seen[c] {
			return fmt.Errorf("%w: code %d assigned twice", errDuplicateOpCode, c)
		}
		seen[c] = true
	}
	return nil
}

// PrimaryOpCodes is the code table used by the primary-chain deployment.
func PrimaryOpCodes() OpCodeTable {
	return OpCodeTable{
		UpdateSigner:    0,
		SetBridgeLimits: 1,
		SetBridgeCaller: 2,
		ToggleBridge:    3,
		Pause:           4,
		Unpause:         5,
		Relinquish:      6,
	}
}

// SecondaryOpCodes is the code table used by the secondary-chain
// deployment. The assignments deliberately differ from the primary
// table.
func SecondaryOpCodes() OpCodeTable {
	return OpCodeTable{
		Pause:           0,
		Unpause:         1,
		UpdateSigner:    2,
		SetBridgeLimits: 3,
		SetBridgeCaller: 4,
		ToggleBridge:    5,
		Relinquish:      6,
	}
}

// VaultOpCodes is the code table used by the lock-and-release vault
// deployment.
func VaultOpCodes() OpCodeTable {
	return OpCodeTable{
		UpdateSigner:    0,
		Pause:           1,
		Unpause:         2,
		Relinquish:      3,
		SetBridgeLimits: 4,
		SetBridgeCaller: 5,
		ToggleBridge:    6,
	}
}

// Config contains the parameters of a bridge deployment. ChainID,
// Signers, Admin and OpCodes are fixed for the lifetime of the engine;
// the remaining fields are initial values for state that quorum
// operations can later change.
type Config struct {
	// ChainID tags this deployment. Calls carrying a different chain
	// ID are rejected, and the ID is folded into every operation
	// fingerprint.
	ChainID uint32 `json:"chainID"`

	// Signers is the initial registry of exactly four distinct
	// authorized identities.
	Signers [NumSigners]ids.ShortID `json:"signers"`

	// Admin may request operations but holds no signing slot unless
	// it also appears in Signers. Set once, never changed.
	Admin ids.ShortID `json:"admin"`

	// BridgeCaller is the only identity allowed to settle inbound
	// transfers. Changeable by quorum operation.
	BridgeCaller ids.ShortID `json:"bridgeCaller"`

	// MaxTransfer caps the amount of a single outbound or inbound
	// transfer. Changeable by quorum operation, jointly with Cooldown.
	MaxTransfer uint64 `json:"maxTransfer"`

	// Cooldown is the minimum time between two successful inbound
	// settlements, across all senders.
	Cooldown time.Duration `json:"cooldown"`

	// OperationDeadline is how long a requested operation accepts
	// signatures.
	OperationDeadline time.Duration `json:"operationDeadline"`

	// ReplayWindowSize bounds the replay-protection registry.
	ReplayWindowSize int `json:"replayWindowSize"`

	// BridgeOutEnabled and BridgeInEnabled gate the two transfer
	// directions. Changeable by quorum operation.
	BridgeOutEnabled bool `json:"bridgeOutEnabled"`
	BridgeInEnabled  bool `json:"bridgeInEnabled"`

	// PauseExemptsInbound lets inbound settlements complete while the
	// bridge is paused, so that transfers already burned or escrowed
	// on the sibling chain are not stranded during an incident. This
	// is a per-deployment policy choice.
	PauseExemptsInbound bool `json:"pauseExemptsInbound"`

	// OpCodes is the deployment's operation code table.
	OpCodes OpCodeTable `json:"opCodes"`
}

// DefaultConfig returns a config with the primary-chain code table and
// default limits. Signers, Admin, BridgeCaller and ChainID must still
// be set by the caller.
func DefaultConfig() Config {
	return Config{
		MaxTransfer:       DefaultMaxTransfer,
		Cooldown:          DefaultCooldown,
		OperationDeadline: DefaultOperationDeadline,
		ReplayWindowSize:  DefaultReplayWindowSize,
		BridgeOutEnabled:  true,
		BridgeInEnabled:   true,
		OpCodes:           PrimaryOpCodes(),
	}
}

// Validate checks the structural invariants of the deployment.
func (c *Config) Validate() error {
	if c.ChainID == 0 {
		return errNoChainID
	}
	for i, s := range c.Signers {
		if s == ids.ShortEmpty {
			return fmt.Errorf("%w: slot %d", errZeroSigner, i)
		}
		for j := i + 1; j < NumSigners; j++ {
			if s == c.Signers[j] {
				return fmt.Errorf("%w: %s in slots %d and %d", errDuplicateSigner, s, i, j)
			}
		}
	}
	if c.Admin == ids.ShortEmpty {
		return errNoAdmin
	}
	if c.BridgeCaller == ids.ShortEmpty {
		return errNoBridgeCaller
	}
	if c.ReplayWindowSize <= 0 {
		return errBadReplayWindow
	}
	if c.OperationDeadline <= 0 {
		return errBadDeadline
	}
	return c.OpCodes.Validate()
}
