// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/tokenbridge/config"
)

// Database layout: operations live under their own prefix keyed by
// fingerprint; everything else is a singleton key. Writes happen
// inside the entry-point lock after the in-memory mutation succeeded,
// batched so a settlement or execution lands atomically.
var (
	opsPrefix = []byte("ops")

	seqKey         = []byte("sequence")
	paramsKey      = []byte("params")
	replayKey      = []byte("replay")
	lifecycleKey   = []byte("lifecycle")
	lastInboundKey = []byte("lastInbound")
)

// paramState is the quorum-tunable half of the engine state.
type paramState struct {
	Signers         []ids.ShortID `serialize:"true"`
	BridgeCaller    ids.ShortID   `serialize:"true"`
	MaxTransfer     uint64        `serialize:"true"`
	CooldownSeconds uint64        `serialize:"true"`
	OutEnabled      bool          `serialize:"true"`
	InEnabled       bool          `serialize:"true"`
}

// replayState is the persisted form of the replay window.
type replayState struct {
	Slots  []ids.ID `serialize:"true"`
	Cursor uint64   `serialize:"true"`
}

const (
	lifecycleActive byte = iota
	lifecyclePaused
	lifecycleHalted
)

func (b *Bridge) storeOperation(batch database.Batch, opID ids.ID, op *Operation) error {
	bytes, err := Codec.Marshal(codecVersion, op)
	if err != nil {
		return fmt.Errorf("marshaling operation %s: %w", opID, err)
	}
	return batch.Put(opID[:], bytes)
}

func (b *Bridge) loadOperations() error {
	iter := b.opsDB.NewIterator()
	defer iter.Release()

	for iter.Next() {
		opID := digestToID(iter.Key())
		op := &Operation{}
		if _, err := Codec.Unmarshal(iter.Value(), op); err != nil {
			return fmt.Errorf("unmarshaling operation %s: %w", opID, err)
		}
		b.ops[opID] = op
		if op.Sequence > b.seq {
			b.seq = op.Sequence
		}
	}
	return iter.Error()
}

func (b *Bridge) storeParams(batch database.Batch) error {
	state := paramState{
		Signers:         b.signers.list(),
		BridgeCaller:    b.bridgeCaller,
		MaxTransfer:     b.maxTransfer,
		CooldownSeconds: uint64(b.cooldown.Seconds()),
		OutEnabled:      b.outEnabled,
		InEnabled:       b.inEnabled,
	}
	bytes, err := Codec.Marshal(codecVersion, &state)
	if err != nil {
		return fmt.Errorf("marshaling params: %w", err)
	}
	return batch.Put(paramsKey, bytes)
}

func (b *Bridge) loadParams() (bool, error) {
	bytes, err := b.stateDB.Get(paramsKey)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading params: %w", err)
	}
	state := paramState{}
	if _, err := Codec.Unmarshal(bytes, &state); err != nil {
		return false, fmt.Errorf("unmarshaling params: %w", err)
	}
	if len(state.Signers) != config.NumSigners {
		return false, fmt.Errorf("corrupt params: %d signers", len(state.Signers))
	}
	var slots [config.NumSigners]ids.ShortID
	copy(slots[:], state.Signers)
	b.signers = newSignerSet(slots)
	b.bridgeCaller = state.BridgeCaller
	b.maxTransfer = state.MaxTransfer
	b.cooldown = secondsToDuration(state.CooldownSeconds)
	b.outEnabled = state.OutEnabled
	b.inEnabled = state.InEnabled
	return true, nil
}

func (b *Bridge) storeReplay(batch database.Batch) error {
	state := b.replay.snapshot()
	bytes, err := Codec.Marshal(codecVersion, &state)
	if err != nil {
		return fmt.Errorf("marshaling replay window: %w", err)
	}
	return batch.Put(replayKey, bytes)
}

func (b *Bridge) loadReplay() error {
	bytes, err := b.stateDB.Get(replayKey)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading replay window: %w", err)
	}
	state := replayState{}
	if _, err := Codec.Unmarshal(bytes, &state); err != nil {
		return fmt.Errorf("unmarshaling replay window: %w", err)
	}
	if len(state.Slots) != len(b.replay.slots) {
		return fmt.Errorf("replay window size changed: stored %d, configured %d",
			len(state.Slots), len(b.replay.slots))
	}
	b.replay.restore(state)
	return nil
}

func (b *Bridge) storeLifecycle(batch database.Batch) error {
	state := lifecycleActive
	switch {
	case b.halted:
		state = lifecycleHalted
	case b.paused:
		state = lifecyclePaused
	}
	return batch.Put(lifecycleKey, []byte{state})
}

func (b *Bridge) loadLifecycle() error {
	bytes, err := b.stateDB.Get(lifecycleKey)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading lifecycle: %w", err)
	}
	if len(bytes) != 1 {
		return fmt.Errorf("corrupt lifecycle record: %d bytes", len(bytes))
	}
	switch bytes[0] {
	case lifecycleActive:
	case lifecyclePaused:
		b.paused = true
	case lifecycleHalted:
		b.halted = true
	default:
		return fmt.Errorf("corrupt lifecycle record: state %d", bytes[0])
	}
	return nil
}

func (b *Bridge) loadScalars() error {
	seq, err := database.GetUInt64(b.stateDB, seqKey)
	switch {
	case err == nil:
		if seq > b.seq {
			b.seq = seq
		}
	case !errors.Is(err, database.ErrNotFound):
		return fmt.Errorf("reading sequence: %w", err)
	}

	last, err := database.GetUInt64(b.stateDB, lastInboundKey)
	switch {
	case err == nil:
		b.lastInbound = unixToTime(int64(last))
	case !errors.Is(err, database.ErrNotFound):
		return fmt.Errorf("reading last inbound time: %w", err)
	}
	return nil
}
