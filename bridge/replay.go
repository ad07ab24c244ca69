// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import "github.com/luxfi/ids"

// replayWindow remembers the most recent settled transfer identifiers
// in a fixed-size ring. Membership checks and inserts are O(1), and
// storage never exceeds the configured window size: the insert that
// overflows the window evicts the chronologically oldest identifier,
// re-opening it for reuse. The bounded horizon is a deliberate
// space/safety trade-off.
type replayWindow struct {
	slots  []ids.ID
	seen   map[ids.ID]struct{}
	cursor uint64
}

func newReplayWindow(size int) *replayWindow {
	return &replayWindow{
		slots: make([]ids.ID, size),
		seen:  make(map[ids.ID]struct{}, size),
	}
}

// Seen reports whether transferID is inside the current horizon.
func (w *replayWindow) Seen(transferID ids.ID) bool {
	_, ok := w.seen[transferID]
	return ok
}

// Record marks transferID as settled, evicting the oldest remembered
// identifier if the window is full.
func (w *replayWindow) Record(transferID ids.ID) {
	size := uint64(len(w.slots))
	pos := w.cursor % size
	if w.cursor >= size {
		delete(w.seen, w.slots[pos])
	}
	w.slots[pos] = transferID
	w.seen[transferID] = struct{}{}
	w.cursor++
}

func (w *replayWindow) snapshot() replayState {
	slots := make([]ids.ID, len(w.slots))
	copy(slots, w.slots)
	return replayState{
		Slots:  slots,
		Cursor: w.cursor,
	}
}

func (w *replayWindow) restore(state replayState) {
	copy(w.slots, state.Slots)
	w.cursor = state.Cursor
	clear(w.seen)
	size := uint64(len(w.slots))
	filled := min(w.cursor, size)
	for i := uint64(0); i < filled; i++ {
		// Walk backwards from the cursor so only live slots are
		// re-marked.
		pos := (w.cursor - 1 - i) % size
		w.seen[w.slots[pos]] = struct{}{}
	}
}
