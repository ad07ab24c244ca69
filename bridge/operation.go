// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"fmt"

	"github.com/luxfi/codec/wrappers"
	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"

	"github.com/luxfi/tokenbridge/config"
)

// OpType enumerates the administrative operations that require quorum
// approval. The numeric values here are internal; the byte that enters
// an operation fingerprint comes from the deployment's OpCodeTable.
type OpType uint8

const (
	OpUpdateSigner OpType = iota + 1
	OpSetBridgeLimits
	OpSetBridgeCaller
	OpToggleBridge
	OpPause
	OpUnpause
	OpRelinquish
)

func (t OpType) String() string {
	switch t {
	case OpUpdateSigner:
		return "update_signer"
	case OpSetBridgeLimits:
		return "set_bridge_limits"
	case OpSetBridgeCaller:
		return "set_bridge_caller"
	case OpToggleBridge:
		return "toggle_bridge"
	case OpPause:
		return "pause"
	case OpUnpause:
		return "unpause"
	case OpRelinquish:
		return "relinquish"
	default:
		return fmt.Sprintf("optype(%d)", uint8(t))
	}
}

// wireCode maps t to the deployment-specific byte used in fingerprints.
func wireCode(table config.OpCodeTable, t OpType) (byte, error) {
	switch t {
	case OpUpdateSigner:
		return table.UpdateSigner, nil
	case OpSetBridgeLimits:
		return table.SetBridgeLimits, nil
	case OpSetBridgeCaller:
		return table.SetBridgeCaller, nil
	case OpToggleBridge:
		return table.ToggleBridge, nil
	case OpPause:
		return table.Pause, nil
	case OpUnpause:
		return table.Unpause, nil
	case OpRelinquish:
		return table.Relinquish, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownOpType, t)
	}
}

// Operation is an administrative state change pending quorum approval.
// Once created it is immutable except for signature accumulation and
// the executed flag, and it is never deleted: after execution or after
// its deadline it is permanently inert. Abandoned requests are kept
// forever on purpose; purging them would rewrite observable history.
type Operation struct {
	Sequence uint64        `serialize:"true" json:"sequence"`
	Type     OpType        `serialize:"true" json:"type"`
	Target   ids.ShortID   `serialize:"true" json:"target"`
	Value    uint64        `serialize:"true" json:"value"`
	Payload  []byte        `serialize:"true" json:"payload"`
	SignedBy []ids.ShortID `serialize:"true" json:"signedBy"`
	Executed bool          `serialize:"true" json:"executed"`
	// Deadline is a unix timestamp in seconds.
	Deadline int64 `serialize:"true" json:"deadline"`
}

func (o *Operation) hasSigned(identity ids.ShortID) bool {
	for _, s := range o.SignedBy {
		if s == identity {
			return true
		}
	}
	return false
}

// LimitsPayload is the payload of a SetBridgeLimits operation. The cap
// and the cooldown are tuned jointly by a single operation.
type LimitsPayload struct {
	MaxTransfer     uint64 `serialize:"true" json:"maxTransfer"`
	CooldownSeconds uint64 `serialize:"true" json:"cooldownSeconds"`
}

// TogglePayload is the payload of a ToggleBridge operation.
type TogglePayload struct {
	OutEnabled bool `serialize:"true" json:"outEnabled"`
	InEnabled  bool `serialize:"true" json:"inEnabled"`
}

// fingerprintPreimage is the deterministic byte layout hashed into an
// operation identifier: chain ID, sequence, deployment wire code,
// target, value, then the length-prefixed payload. Folding the chain
// ID in means an operation approved on one deployment can never carry
// a valid fingerprint on a sibling deployment.
func fingerprintPreimage(chainID uint32, seq uint64, code byte, target ids.ShortID, value uint64, payload []byte) []byte {
	p := wrappers.Packer{
		MaxSize: 4 + 8 + 1 + ids.ShortIDLen + 8 + 4 + len(payload),
	}
	p.PackInt(chainID)
	p.PackLong(seq)
	p.PackByte(code)
	p.PackFixedBytes(target.Bytes())
	p.PackLong(value)
	p.PackBytes(payload)
	return p.Bytes
}

func operationID(chainID uint32, seq uint64, code byte, target ids.ShortID, value uint64, payload []byte) ids.ID {
	return digestToID(hash.ComputeHash256(fingerprintPreimage(chainID, seq, code, target, value, payload)))
}

func digestToID(digest []byte) ids.ID {
	var id ids.ID
	copy(id[:], digest)
	return id
}

// signingPrefix is prepended to an operation identifier before hashing
// the digest signers actually sign, so a signature over an operation
// can never double as a signature over raw 32-byte data.
const signingPrefix = "\x19Lux Signed Operation:\n32"

// signingDigest returns the exact bytes a signer must sign for opID.
func signingDigest(opID ids.ID) ids.ID {
	preimage := make([]byte, 0, len(signingPrefix)+len(opID))
	preimage = append(preimage, signingPrefix...)
	preimage = append(preimage, opID[:]...)
	return digestToID(hash.ComputeHash256(preimage))
}
