// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge implements a multi-signature token bridge engine: a
// fixed 4-signer registry that authorizes administrative operations at
// a 3-of-4 threshold, a value ledger moving amounts between two chains
// under per-transfer caps and global inbound pacing, a bounded replay
// window over settled transfer identifiers, and a lifecycle controller
// with a reversible pause and an irreversible relinquish.
//
// The engine has no ambient caller: every entry point takes the
// calling identity explicitly, and signature submissions must recover
// to that identity. Each call is all-or-nothing; a rejection leaves no
// state change behind.
package bridge

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/tokenbridge/config"
	"github.com/luxfi/tokenbridge/utils/timer/mockable"
)

var statePrefix = []byte("state")

// Bridge is one deployed bridge engine. All entry points are
// serialized by a single non-reentrant lock: effects never call back
// into the engine, and accounting state is always written before any
// value moves, so a nested or repeated completion of the same
// operation or settlement is impossible.
type Bridge struct {
	cfg     config.Config
	ledger  Ledger
	logger  log.Logger
	metrics *bridgeMetrics
	clock   mockable.Clock

	opsDB   database.Database
	stateDB database.Database

	mu sync.Mutex

	signers      signerSet
	bridgeCaller ids.ShortID

	seq uint64
	ops map[ids.ID]*Operation

	maxTransfer uint64
	cooldown    time.Duration
	lastInbound time.Time
	outEnabled  bool
	inEnabled   bool

	replay *replayWindow

	paused bool
	halted bool

	events *eventLog
}

// New opens a bridge engine on db with the given value-movement
// policy. If db already holds engine state from an earlier run, the
// persisted signer set, limits, lifecycle, replay window and
// operations take precedence over the corresponding config fields.
func New(
	cfg config.Config,
	ldgr Ledger,
	db database.Database,
	logger log.Logger,
	registerer metric.Registerer,
) (*Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	metrics, err := newMetrics(registerer)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	b := &Bridge{
		cfg:          cfg,
		ledger:       ldgr,
		logger:       logger,
		metrics:      metrics,
		opsDB:        prefixdb.New(opsPrefix, db),
		stateDB:      prefixdb.New(statePrefix, db),
		signers:      newSignerSet(cfg.Signers),
		bridgeCaller: cfg.BridgeCaller,
		ops:          make(map[ids.ID]*Operation),
		maxTransfer:  cfg.MaxTransfer,
		cooldown:     cfg.Cooldown,
		outEnabled:   cfg.BridgeOutEnabled,
		inEnabled:    cfg.BridgeInEnabled,
		replay:       newReplayWindow(cfg.ReplayWindowSize),
		events:       newEventLog(),
	}

	if _, err := b.loadParams(); err != nil {
		return nil, err
	}
	if err := b.loadLifecycle(); err != nil {
		return nil, err
	}
	if err := b.loadReplay(); err != nil {
		return nil, err
	}
	if err := b.loadOperations(); err != nil {
		return nil, err
	}
	if err := b.loadScalars(); err != nil {
		return nil, err
	}

	b.metrics.custody.Set(float64(b.ledger.Custody()))
	b.logger.Info("bridge engine opened",
		log.Uint32("chainID", cfg.ChainID),
		log.Uint64("sequence", b.seq),
		log.Int("operations", len(b.ops)),
		log.Bool("paused", b.paused),
		log.Bool("halted", b.halted),
	)
	return b, nil
}

// ChainID returns the chain tag of this deployment.
func (b *Bridge) ChainID() uint32 {
	return b.cfg.ChainID
}

// IsSigner reports whether identity currently holds a signer slot.
func (b *Bridge) IsSigner(identity ids.ShortID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.signers.contains(identity)
}

// Signers returns the current signer registry in slot order.
func (b *Bridge) Signers() []ids.ShortID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.signers.list()
}

// Admin returns the administrator identity.
func (b *Bridge) Admin() ids.ShortID {
	return b.cfg.Admin
}

// BridgeCaller returns the identity allowed to settle inbound
// transfers.
func (b *Bridge) BridgeCaller() ids.ShortID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bridgeCaller
}

// Limits returns the current per-transfer cap and inbound cooldown.
func (b *Bridge) Limits() (uint64, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxTransfer, b.cooldown
}

// Paused reports whether the bridge is paused.
func (b *Bridge) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

// Halted reports whether the bridge has been relinquished.
func (b *Bridge) Halted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.halted
}

// VaultBalance returns the custodial balance held by the bridge.
func (b *Bridge) VaultBalance() uint64 {
	return b.ledger.Custody()
}

// Operation returns a copy of the stored operation record.
func (b *Bridge) Operation(opID ids.ID) (Operation, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	op, ok := b.ops[opID]
	if !ok {
		return Operation{}, false
	}
	out := *op
	out.SignedBy = append([]ids.ShortID(nil), op.SignedBy...)
	out.Payload = append([]byte(nil), op.Payload...)
	return out, true
}

// EventTail returns up to n most recent audit events, oldest first.
func (b *Bridge) EventTail(n int) []Event {
	return b.events.Tail(n)
}

// SubscribeEvents returns a channel receiving future audit events.
// Events are dropped, not queued, if the channel is full.
func (b *Bridge) SubscribeEvents(buffer int) <-chan Event {
	return b.events.Subscribe(buffer)
}

// RequestOperation creates a new administrative operation and returns
// its fingerprint. The caller must be a registered signer or the
// administrator. For UpdateSigner, target is the signer being removed
// and the payload is the 20-byte replacement identity; the caller may
// not request their own removal.
func (b *Bridge) RequestOperation(
	caller ids.ShortID,
	opType OpType,
	target ids.ShortID,
	value uint64,
	payload []byte,
) (ids.ID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.halted {
		return ids.Empty, ErrHalted
	}
	if !b.signers.contains(caller) && caller != b.cfg.Admin {
		return ids.Empty, fmt.Errorf("%w: %s", ErrNotAuthorized, caller)
	}
	code, err := wireCode(b.cfg.OpCodes, opType)
	if err != nil {
		return ids.Empty, err
	}
	if err := b.validateRequest(caller, opType, target, payload); err != nil {
		return ids.Empty, err
	}

	now := b.clock.Time()
	seq := b.seq + 1
	opID := operationID(b.cfg.ChainID, seq, code, target, value, payload)
	op := &Operation{
		Sequence: seq,
		Type:     opType,
		Target:   target,
		Value:    value,
		Payload:  append([]byte(nil), payload...),
		Deadline: now.Add(b.cfg.OperationDeadline).Unix(),
	}

	opsBatch := b.opsDB.NewBatch()
	if err := b.storeOperation(opsBatch, opID, op); err != nil {
		return ids.Empty, err
	}
	stateBatch := b.stateDB.NewBatch()
	if err := database.PutUInt64(stateBatch, seqKey, seq); err != nil {
		return ids.Empty, fmt.Errorf("writing sequence: %w", err)
	}
	if err := opsBatch.Write(); err != nil {
		return ids.Empty, fmt.Errorf("persisting operation: %w", err)
	}
	if err := stateBatch.Write(); err != nil {
		return ids.Empty, fmt.Errorf("persisting sequence: %w", err)
	}

	b.seq = seq
	b.ops[opID] = op
	b.metrics.opsRequested.Inc()
	b.events.emit(Event{
		Kind:      EventOperationRequested,
		Timestamp: now,
		OpID:      opID,
		OpType:    opType,
		Caller:    caller,
		Target:    target,
		Value:     value,
		Payload:   op.Payload,
	})
	b.logger.Info("operation requested",
		log.Stringer("opID", opID),
		log.Stringer("type", opType),
		log.Stringer("caller", caller),
		log.Stringer("target", target),
		log.Uint64("value", value),
		log.Uint64("sequence", seq),
	)
	return opID, nil
}

// validateRequest holds the request-time rules that depend on the
// operation type.
func (b *Bridge) validateRequest(caller ids.ShortID, opType OpType, target ids.ShortID, payload []byte) error {
	switch opType {
	case OpUpdateSigner:
		replacement, err := replacementFromPayload(payload)
		if err != nil {
			return err
		}
		if !b.signers.contains(target) {
			return fmt.Errorf("%w: %s", ErrOldSignerInvalid, target)
		}
		if b.signers.contains(replacement) {
			return fmt.Errorf("%w: %s is already registered", ErrNewSignerInvalid, replacement)
		}
		if caller == target {
			return ErrSelfRemoval
		}
	case OpSetBridgeLimits:
		limits := LimitsPayload{}
		if _, err := Codec.Unmarshal(payload, &limits); err != nil {
			return fmt.Errorf("%w: bad limits payload: %w", ErrUnknownOpType, err)
		}
	case OpToggleBridge:
		toggle := TogglePayload{}
		if _, err := Codec.Unmarshal(payload, &toggle); err != nil {
			return fmt.Errorf("%w: bad toggle payload: %w", ErrUnknownOpType, err)
		}
	case OpSetBridgeCaller:
		if target == ids.ShortEmpty {
			return fmt.Errorf("%w: zero bridge caller", ErrNewSignerInvalid)
		}
	case OpPause, OpUnpause, OpRelinquish:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOpType, opType)
	}
	return nil
}

func replacementFromPayload(payload []byte) (ids.ShortID, error) {
	replacement, err := ids.ToShortID(payload)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("%w: %w", ErrNewSignerInvalid, err)
	}
	if replacement == ids.ShortEmpty {
		return ids.ShortEmpty, fmt.Errorf("%w: zero identity", ErrNewSignerInvalid)
	}
	return replacement, nil
}

// OperationHash returns the digest a signer must sign to approve the
// operation. It is a pure function of the stored record and the
// deployment chain tag.
func (b *Bridge) OperationHash(opID ids.ID) (ids.ID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.ops[opID]; !ok {
		return ids.Empty, fmt.Errorf("%w: %s", ErrUnknownOperation, opID)
	}
	return signingDigest(opID), nil
}

// IsOperationExpired reports whether the operation's signing deadline
// has passed.
func (b *Bridge) IsOperationExpired(opID ids.ID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	op, ok := b.ops[opID]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownOperation, opID)
	}
	return b.clock.Time().Unix() > op.Deadline, nil
}

// SubmitSignature records caller's approval of an operation. The
// signature must be a 65-byte recoverable secp256k1 signature over
// OperationHash(opID), and it must recover to caller: a signer cannot
// submit a proof on behalf of another signer. The third distinct
// approval executes the operation synchronously within this call.
func (b *Bridge) SubmitSignature(caller ids.ShortID, opID ids.ID, sig []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.halted {
		return ErrHalted
	}
	op, ok := b.ops[opID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOperation, opID)
	}
	if !b.signers.contains(caller) {
		return fmt.Errorf("%w: %s", ErrNotSigner, caller)
	}
	if op.Executed {
		return fmt.Errorf("%w: %s", ErrAlreadyExecuted, opID)
	}
	now := b.clock.Time()
	if now.Unix() > op.Deadline {
		return fmt.Errorf("%w: %s", ErrDeadlinePassed, opID)
	}
	if op.hasSigned(caller) {
		return fmt.Errorf("%w: %s", ErrAlreadySigned, caller)
	}

	digest := signingDigest(opID)
	pub, err := secp256k1.RecoverPublicKeyFromHash(digest[:], sig)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSignatureMismatch, err)
	}
	if recovered := pub.Address(); recovered != caller {
		return fmt.Errorf("%w: recovered %s, caller %s", ErrSignatureMismatch, recovered, caller)
	}
	if op.Type == OpUpdateSigner && caller == op.Target {
		return fmt.Errorf("%w: %s", ErrRemovedSignerApproval, caller)
	}

	op.SignedBy = append(op.SignedBy, caller)

	var effectEvents []Event
	if len(op.SignedBy) == config.QuorumThreshold {
		// The executed flag is set before the effect runs so that no
		// second completion of the same operation can ever fire.
		op.Executed = true
		effectEvents, err = b.executeOperation(opID, op, now)
		if err != nil {
			op.Executed = false
			op.SignedBy = op.SignedBy[:len(op.SignedBy)-1]
			return err
		}
	}

	if err := b.persistSignature(opID, op, len(effectEvents) > 0); err != nil {
		return err
	}

	b.metrics.sigsAccepted.Inc()
	b.events.emit(Event{
		Kind:      EventSignatureAdded,
		Timestamp: now,
		OpID:      opID,
		OpType:    op.Type,
		Caller:    caller,
	})
	b.logger.Info("signature accepted",
		log.Stringer("opID", opID),
		log.Stringer("signer", caller),
		log.Int("signatures", len(op.SignedBy)),
	)

	if op.Executed {
		b.metrics.opsExecuted.Inc()
		b.events.emit(Event{
			Kind:      EventOperationExecuted,
			Timestamp: now,
			OpID:      opID,
			OpType:    op.Type,
			Caller:    caller,
		})
		for _, ev := range effectEvents {
			b.events.emit(ev)
		}
		b.logger.Info("operation executed",
			log.Stringer("opID", opID),
			log.Stringer("type", op.Type),
		)
	}
	return nil
}

// executeOperation applies the operation's effect in memory. It runs
// with the executed flag already set; on error the caller rolls the
// flag and the triggering signature back, leaving no trace.
func (b *Bridge) executeOperation(opID ids.ID, op *Operation, now time.Time) ([]Event, error) {
	switch op.Type {
	case OpUpdateSigner:
		replacement, err := replacementFromPayload(op.Payload)
		if err != nil {
			return nil, err
		}
		if err := b.signers.replace(op.Target, replacement); err != nil {
			return nil, err
		}
		b.logger.Info("signer replaced",
			log.Stringer("old", op.Target),
			log.Stringer("new", replacement),
		)
		return []Event{{
			Kind:        EventSignerUpdated,
			Timestamp:   now,
			OpID:        opID,
			Target:      op.Target,
			Replacement: replacement,
		}}, nil

	case OpSetBridgeLimits:
		limits := LimitsPayload{}
		if _, err := Codec.Unmarshal(op.Payload, &limits); err != nil {
			return nil, fmt.Errorf("%w: bad limits payload: %w", ErrUnknownOpType, err)
		}
		b.maxTransfer = limits.MaxTransfer
		b.cooldown = secondsToDuration(limits.CooldownSeconds)
		b.logger.Info("bridge limits updated",
			log.Uint64("maxTransfer", limits.MaxTransfer),
			log.Uint64("cooldownSeconds", limits.CooldownSeconds),
		)
		return []Event{{
			Kind:      EventLimitsUpdated,
			Timestamp: now,
			OpID:      opID,
			Amount:    limits.MaxTransfer,
			Value:     limits.CooldownSeconds,
		}}, nil

	case OpSetBridgeCaller:
		b.bridgeCaller = op.Target
		b.logger.Info("bridge caller updated", log.Stringer("caller", op.Target))
		return []Event{{
			Kind:      EventBridgeCallerUpdated,
			Timestamp: now,
			OpID:      opID,
			Target:    op.Target,
		}}, nil

	case OpToggleBridge:
		toggle := TogglePayload{}
		if _, err := Codec.Unmarshal(op.Payload, &toggle); err != nil {
			return nil, fmt.Errorf("%w: bad toggle payload: %w", ErrUnknownOpType, err)
		}
		b.outEnabled = toggle.OutEnabled
		b.inEnabled = toggle.InEnabled
		b.logger.Info("bridge directions toggled",
			log.Bool("outEnabled", toggle.OutEnabled),
			log.Bool("inEnabled", toggle.InEnabled),
		)
		return []Event{{
			Kind:      EventBridgeToggled,
			Timestamp: now,
			OpID:      opID,
			Payload:   op.Payload,
		}}, nil

	case OpPause:
		b.paused = true
		b.logger.Warn("bridge paused", log.Stringer("opID", opID))
		return []Event{{Kind: EventPaused, Timestamp: now, OpID: opID}}, nil

	case OpUnpause:
		b.paused = false
		b.logger.Info("bridge unpaused", log.Stringer("opID", opID))
		return []Event{{Kind: EventUnpaused, Timestamp: now, OpID: opID}}, nil

	case OpRelinquish:
		if b.ledger.Custody() == 0 {
			return nil, ErrNoCustody
		}
		swept, err := b.ledger.Sweep(b.cfg.Admin)
		if err != nil {
			return nil, err
		}
		b.halted = true
		b.metrics.custody.Set(0)
		b.logger.Warn("bridge relinquished",
			log.Stringer("opID", opID),
			log.Uint64("swept", swept),
			log.Stringer("to", b.cfg.Admin),
		)
		return []Event{
			{
				Kind:      EventCustodySwept,
				Timestamp: now,
				OpID:      opID,
				Amount:    swept,
				Recipient: b.cfg.Admin,
			},
			{Kind: EventHalted, Timestamp: now, OpID: opID},
		}, nil

	default:
		// Unreachable: unknown types are rejected at request time.
		return nil, fmt.Errorf("%w: %s", ErrUnknownOpType, op.Type)
	}
}

// persistSignature writes the mutated operation record plus, when an
// effect ran, the params and lifecycle state it may have touched.
func (b *Bridge) persistSignature(opID ids.ID, op *Operation, executed bool) error {
	opsBatch := b.opsDB.NewBatch()
	if err := b.storeOperation(opsBatch, opID, op); err != nil {
		return err
	}
	if err := opsBatch.Write(); err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	if !executed {
		return nil
	}
	stateBatch := b.stateDB.NewBatch()
	if err := b.storeParams(stateBatch); err != nil {
		return err
	}
	if err := b.storeLifecycle(stateBatch); err != nil {
		return err
	}
	if err := stateBatch.Write(); err != nil {
		return fmt.Errorf("persisting engine state: %w", err)
	}
	return nil
}

// BridgeOut moves amount out of the caller's account toward target on
// the destination chain: the mint variant burns it, the vault variant
// escrows it. chainID must match this deployment; destChainID, when
// non-zero, must not.
func (b *Bridge) BridgeOut(
	caller ids.ShortID,
	amount uint64,
	target ids.ShortID,
	chainID uint32,
	destChainID uint32,
) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.halted:
		return ErrHalted
	case b.paused:
		return ErrPaused
	case !b.outEnabled:
		return ErrBridgeOutDisabled
	case chainID != b.cfg.ChainID:
		return fmt.Errorf("%w: got %d, this deployment is %d", ErrWrongChain, chainID, b.cfg.ChainID)
	case destChainID != 0 && destChainID == b.cfg.ChainID:
		return fmt.Errorf("%w: %d", ErrSameChain, destChainID)
	case target == ids.ShortEmpty:
		return ErrZeroRecipient
	case amount == 0:
		return ErrZeroAmount
	case amount > b.maxTransfer:
		return fmt.Errorf("%w: %d > %d", ErrOverCap, amount, b.maxTransfer)
	}

	if err := b.ledger.Debit(caller, amount); err != nil {
		return err
	}

	now := b.clock.Time()
	b.metrics.transfersOut.Inc()
	b.metrics.custody.Set(float64(b.ledger.Custody()))
	b.events.emit(Event{
		Kind:        EventTransferOut,
		Timestamp:   now,
		Caller:      caller,
		Target:      target,
		Amount:      amount,
		ChainID:     chainID,
		DestChainID: destChainID,
	})
	b.logger.Info("transfer out",
		log.Stringer("from", caller),
		log.Stringer("target", target),
		log.Uint64("amount", amount),
		log.Uint32("chainID", chainID),
		log.Uint32("destChainID", destChainID),
	)
	return nil
}

// BridgeIn settles an inbound transfer: the mint variant creates
// amount for recipient, the vault variant releases it from custody.
// Only the configured bridge caller may settle. transferID is the
// globally unique identifier of the source-chain event; identifiers
// inside the replay window are rejected, and settlements are paced by
// the global cooldown. The identifier and settlement time are
// recorded before any value moves.
func (b *Bridge) BridgeIn(
	caller ids.ShortID,
	recipient ids.ShortID,
	amount uint64,
	chainID uint32,
	transferID ids.ID,
	sourceChainID uint32,
) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.bridgeCaller {
		return fmt.Errorf("%w: %s", ErrNotBridgeCaller, caller)
	}
	switch {
	case b.halted:
		return ErrHalted
	case b.paused && !b.cfg.PauseExemptsInbound:
		return ErrPaused
	case !b.inEnabled:
		return ErrBridgeInDisabled
	case chainID != b.cfg.ChainID:
		return fmt.Errorf("%w: got %d, this deployment is %d", ErrWrongChain, chainID, b.cfg.ChainID)
	case sourceChainID != 0 && sourceChainID == b.cfg.ChainID:
		return fmt.Errorf("%w: %d", ErrSameChain, sourceChainID)
	case recipient == ids.ShortEmpty:
		return ErrZeroRecipient
	case amount == 0:
		return ErrZeroAmount
	case amount > b.maxTransfer:
		return fmt.Errorf("%w: %d > %d", ErrOverCap, amount, b.maxTransfer)
	}

	if b.replay.Seen(transferID) {
		b.metrics.replayRejections.Inc()
		return fmt.Errorf("%w: %s", ErrTransferProcessed, transferID)
	}
	now := b.clock.Time()
	if !b.lastInbound.IsZero() {
		if elapsed := now.Sub(b.lastInbound); elapsed < b.cooldown {
			b.metrics.cooldownRejections.Inc()
			return fmt.Errorf("%w: %s since last settlement, cooldown %s",
				ErrCooldownActive, elapsed, b.cooldown)
		}
	}
	if err := b.ledger.CanCredit(amount); err != nil {
		return err
	}

	// Accounting state is recorded ahead of the credit so value
	// movement can never re-enter a half-settled transfer.
	snapshot := b.replay.snapshot()
	prevInbound := b.lastInbound
	b.replay.Record(transferID)
	b.lastInbound = now

	if err := b.persistSettlement(); err != nil {
		b.replay.restore(snapshot)
		b.lastInbound = prevInbound
		return err
	}
	if err := b.ledger.Credit(recipient, amount); err != nil {
		// Undo the recorded settlement on disk as well, or the
		// never-settled identifier would survive a restart.
		b.replay.restore(snapshot)
		b.lastInbound = prevInbound
		if perr := b.persistSettlement(); perr != nil {
			return errors.Join(err, perr)
		}
		return err
	}

	b.metrics.transfersIn.Inc()
	b.metrics.custody.Set(float64(b.ledger.Custody()))
	b.events.emit(Event{
		Kind:        EventTransferIn,
		Timestamp:   now,
		Caller:      caller,
		Recipient:   recipient,
		Amount:      amount,
		ChainID:     chainID,
		DestChainID: sourceChainID,
		TransferID:  transferID,
	})
	b.logger.Info("transfer in",
		log.Stringer("recipient", recipient),
		log.Uint64("amount", amount),
		log.Stringer("transferID", transferID),
		log.Uint32("sourceChainID", sourceChainID),
	)
	return nil
}

// persistSettlement writes the current in-memory replay window and
// last-inbound time, so it serves both the settle path and the rollback
// after a failed credit. A zero last-inbound time clears the key.
func (b *Bridge) persistSettlement() error {
	batch := b.stateDB.NewBatch()
	if err := b.storeReplay(batch); err != nil {
		return err
	}
	if b.lastInbound.IsZero() {
		if err := batch.Delete(lastInboundKey); err != nil {
			return fmt.Errorf("clearing last inbound time: %w", err)
		}
	} else if err := database.PutUInt64(batch, lastInboundKey, uint64(b.lastInbound.Unix())); err != nil {
		return fmt.Errorf("writing last inbound time: %w", err)
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("persisting settlement: %w", err)
	}
	return nil
}

func secondsToDuration(s uint64) time.Duration {
	return time.Duration(s) * time.Second
}

func unixToTime(s int64) time.Time {
	return time.Unix(s, 0)
}
