// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/tokenbridge/config"
)

func transferID(n int) ids.ID {
	return ids.ID{byte(n >> 8), byte(n)}
}

func TestReplayWindowMembership(t *testing.T) {
	require := require.New(t)
	w := newReplayWindow(4)

	require.False(w.Seen(transferID(1)))
	w.Record(transferID(1))
	require.True(w.Seen(transferID(1)))
	require.False(w.Seen(transferID(2)))
}

func TestReplayWindowEvictsOldest(t *testing.T) {
	require := require.New(t)
	w := newReplayWindow(config.DefaultReplayWindowSize)

	for i := 0; i < config.DefaultReplayWindowSize; i++ {
		w.Record(transferID(i))
	}
	for i := 0; i < config.DefaultReplayWindowSize; i++ {
		require.True(w.Seen(transferID(i)))
	}

	// The insert that overflows the window re-opens exactly the
	// oldest identifier.
	w.Record(transferID(config.DefaultReplayWindowSize))
	require.False(w.Seen(transferID(0)))
	for i := 1; i <= config.DefaultReplayWindowSize; i++ {
		require.True(w.Seen(transferID(i)))
	}

	w.Record(transferID(config.DefaultReplayWindowSize + 1))
	require.False(w.Seen(transferID(1)))
	require.True(w.Seen(transferID(2)))
}

func TestReplayWindowSnapshotRestore(t *testing.T) {
	require := require.New(t)
	w := newReplayWindow(4)

	for i := 0; i < 6; i++ {
		w.Record(transferID(i))
	}
	snap := w.snapshot()

	w.Record(transferID(6))
	require.True(w.Seen(transferID(6)))
	require.False(w.Seen(transferID(2)))

	w.restore(snap)
	require.False(w.Seen(transferID(6)))
	require.False(w.Seen(transferID(0)))
	require.False(w.Seen(transferID(1)))
	for i := 2; i < 6; i++ {
		require.True(w.Seen(transferID(i)))
	}
}

func TestReplayWindowRestoreIntoFreshWindow(t *testing.T) {
	require := require.New(t)
	w := newReplayWindow(4)
	w.Record(transferID(1))
	w.Record(transferID(2))

	fresh := newReplayWindow(4)
	fresh.restore(w.snapshot())
	require.True(fresh.Seen(transferID(1)))
	require.True(fresh.Seen(transferID(2)))
	require.False(fresh.Seen(transferID(3)))

	// A partially filled snapshot must not mark the zero identifier.
	require.False(fresh.Seen(ids.Empty))
}
