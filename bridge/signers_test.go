// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/tokenbridge/config"
)

func testSlots() [config.NumSigners]ids.ShortID {
	return [config.NumSigners]ids.ShortID{
		{1}, {2}, {3}, {4},
	}
}

func TestSignerSetContains(t *testing.T) {
	require := require.New(t)
	s := newSignerSet(testSlots())

	require.True(s.contains(ids.ShortID{1}))
	require.True(s.contains(ids.ShortID{4}))
	require.False(s.contains(ids.ShortID{5}))
	require.False(s.contains(ids.ShortEmpty))
}

func TestSignerSetReplacePreservesSlot(t *testing.T) {
	require := require.New(t)
	s := newSignerSet(testSlots())

	require.NoError(s.replace(ids.ShortID{2}, ids.ShortID{9}))
	require.False(s.contains(ids.ShortID{2}))
	require.True(s.contains(ids.ShortID{9}))

	// The replacement takes exactly the removed signer's slot.
	require.Equal(
		[]ids.ShortID{{1}, {9}, {3}, {4}},
		s.list(),
	)
}

func TestSignerSetReplaceRejects(t *testing.T) {
	require := require.New(t)
	s := newSignerSet(testSlots())

	err := s.replace(ids.ShortID{7}, ids.ShortID{9})
	require.ErrorIs(err, ErrOldSignerInvalid)

	err = s.replace(ids.ShortID{1}, ids.ShortID{3})
	require.ErrorIs(err, ErrNewSignerInvalid)

	// Failed replacements leave the registry untouched.
	require.Equal([]ids.ShortID{{1}, {2}, {3}, {4}}, s.list())
}
