// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/tokenbridge/config"
	"github.com/luxfi/tokenbridge/ledger"
)

// Variant selects how a deployment moves value.
type Variant uint8

const (
	// MintVariant burns on the way out and mints on the way in; the
	// bridge itself is the token's only issuer.
	MintVariant Variant = iota + 1
	// VaultVariant escrows deposits in a custodial vault account and
	// releases from it on settlement. Supply is conserved.
	VaultVariant
)

func (v Variant) String() string {
	switch v {
	case MintVariant:
		return "mint"
	case VaultVariant:
		return "vault"
	default:
		return fmt.Sprintf("variant(%d)", v)
	}
}

var tokenPrefix = []byte("token")

// Factory builds a bridge deployment: the token ledger, the
// variant-specific value policy, and the engine itself, all rooted on
// one database.
type Factory struct {
	config.Config

	Variant     Variant
	TokenName   string
	TokenSymbol string

	// VaultAccount is the custodial account identity. Required for
	// VaultVariant; MintVariant uses it only as the label on custody
	// queries and may leave it zero.
	VaultAccount ids.ShortID
}

// New opens the deployment on db.
func (f *Factory) New(
	db database.Database,
	logger log.Logger,
	registerer metric.Registerer,
) (*Bridge, *ledger.Token, error) {
	if err := f.Config.Validate(); err != nil {
		return nil, nil, err
	}

	token, err := ledger.New(f.TokenName, f.TokenSymbol, prefixdb.New(tokenPrefix, db), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening token ledger: %w", err)
	}

	var policy Ledger
	switch f.Variant {
	case MintVariant:
		policy = NewMintLedger(token, f.VaultAccount)
	case VaultVariant:
		if f.VaultAccount == ids.ShortEmpty {
			return nil, nil, fmt.Errorf("vault variant requires a vault account")
		}
		policy = NewVaultLedger(token, f.VaultAccount)
	default:
		return nil, nil, fmt.Errorf("unknown bridge variant %s", f.Variant)
	}

	engine, err := New(f.Config, policy, db, logger, registerer)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("bridge deployment created",
		log.String("variant", f.Variant.String()),
		log.String("token", f.TokenSymbol),
	)
	return engine, token, nil
}
