// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/tokenbridge/config"
)

// signerSet is the registry of authorized signer identities. It always
// holds exactly config.NumSigners distinct non-zero entries; slots are
// only ever mutated in place by an executed UpdateSigner operation.
// The linear scans are intentional at this cardinality.
type signerSet struct {
	slots [config.NumSigners]ids.ShortID
}

func newSignerSet(signers [config.NumSigners]ids.ShortID) signerSet {
	return signerSet{slots: signers}
}

func (s *signerSet) contains(identity ids.ShortID) bool {
	for _, slot := range s.slots {
		if slot == identity {
			return true
		}
	}
	return false
}

// replace swaps old for new in old's slot, preserving slot order.
func (s *signerSet) replace(old, new ids.ShortID) error {
	if s.contains(new) {
		return fmt.Errorf("%w: %s", ErrNewSignerInvalid, new)
	}
	for i, slot := range s.slots {
		if slot == old {
			s.slots[i] = new
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrOldSignerInvalid, old)
}

func (s *signerSet) list() []ids.ShortID {
	out := make([]ids.ShortID, config.NumSigners)
	copy(out, s.slots[:])
	return out
}
