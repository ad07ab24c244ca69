// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"sync"
	"time"

	"github.com/luxfi/ids"
)

// EventKind identifies what a bridge event records.
type EventKind string

const (
	EventOperationRequested  EventKind = "operation_requested"
	EventSignatureAdded      EventKind = "signature_added"
	EventOperationExecuted   EventKind = "operation_executed"
	EventSignerUpdated       EventKind = "signer_updated"
	EventLimitsUpdated       EventKind = "limits_updated"
	EventBridgeCallerUpdated EventKind = "bridge_caller_updated"
	EventBridgeToggled       EventKind = "bridge_toggled"
	EventTransferOut         EventKind = "transfer_out"
	EventTransferIn          EventKind = "transfer_in"
	EventPaused              EventKind = "paused"
	EventUnpaused            EventKind = "unpaused"
	EventCustodySwept        EventKind = "custody_swept"
	EventHalted              EventKind = "halted"
)

// Event is the audit record emitted for every successful mutating
// call. It carries every input field of the call plus the engine
// timestamp; there is no other persisted log.
type Event struct {
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	OpID   ids.ID      `json:"opID,omitempty"`
	OpType OpType      `json:"opType,omitempty"`
	Caller ids.ShortID `json:"caller,omitempty"`
	Target ids.ShortID `json:"target,omitempty"`
	Value  uint64      `json:"value,omitempty"`

	Replacement ids.ShortID `json:"replacement,omitempty"`
	Amount      uint64      `json:"amount,omitempty"`
	Recipient   ids.ShortID `json:"recipient,omitempty"`
	ChainID     uint32      `json:"chainID,omitempty"`
	DestChainID uint32      `json:"destChainID,omitempty"`
	TransferID  ids.ID      `json:"transferID,omitempty"`

	Payload []byte `json:"payload,omitempty"`
}

// eventLog keeps a bounded tail of events and fans them out to
// subscribers. A subscriber that falls behind loses events rather than
// blocking the engine.
type eventLog struct {
	mu   sync.Mutex
	tail []Event
	max  int
	subs []chan Event
}

const defaultEventTail = 1024

func newEventLog() *eventLog {
	return &eventLog{max: defaultEventTail}
}

func (l *eventLog) emit(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tail = append(l.tail, ev)
	if len(l.tail) > l.max {
		l.tail = l.tail[len(l.tail)-l.max:]
	}
	for _, sub := range l.subs {
		select {
		case sub <- ev:
		default:
		}
	}
}

// Tail returns up to n most recent events, oldest first.
func (l *eventLog) Tail(n int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.tail) {
		n = len(l.tail)
	}
	out := make([]Event, n)
	copy(out, l.tail[len(l.tail)-n:])
	return out
}

// Subscribe returns a channel receiving future events. The channel is
// never closed.
func (l *eventLog) Subscribe(buffer int) <-chan Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Event, buffer)
	l.subs = append(l.subs, ch)
	return ch
}
