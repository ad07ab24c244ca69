// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"math"
	"testing"
	"time"

	"github.com/luxfi/crypto/secp256k1"
	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/tokenbridge/config"
	"github.com/luxfi/tokenbridge/ledger"
)

var (
	testKeys = secp256k1.TestKeys()

	testAdmin        = ids.ShortID{'a', 'd', 'm', 'i', 'n'}
	testBridgeCaller = ids.ShortID{'c', 'a', 'l', 'l', 'e', 'r'}
	testVault        = ids.ShortID{'v', 'a', 'u', 'l', 't'}
	testRecipient    = ids.ShortID{'r', 'c', 'p', 't'}

	testStart = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

const testChainID uint32 = 7

type testEnv struct {
	t      *testing.T
	bridge *Bridge
	token  *ledger.Token
	db     database.Database
	cfg    config.Config
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.ChainID = testChainID
	for i := 0; i < config.NumSigners; i++ {
		cfg.Signers[i] = testKeys[i].Address()
	}
	cfg.Admin = testAdmin
	cfg.BridgeCaller = testBridgeCaller
	cfg.MaxTransfer = 1_000
	return cfg
}

func newTestEnv(t *testing.T, variant Variant, cfg config.Config) *testEnv {
	t.Helper()
	require := require.New(t)

	db := memdb.New()
	factory := Factory{
		Config:       cfg,
		Variant:      variant,
		TokenName:    "Bridged Token",
		TokenSymbol:  "BTK",
		VaultAccount: testVault,
	}
	b, token, err := factory.New(db, log.NoLog{}, metric.NewRegistry())
	require.NoError(err)
	b.clock.Set(testStart)

	return &testEnv{
		t:      t,
		bridge: b,
		token:  token,
		db:     db,
		cfg:    cfg,
	}
}

func newMintEnv(t *testing.T) *testEnv {
	return newTestEnv(t, MintVariant, testConfig())
}

// submit signs the operation hash with key and submits the signature
// under key's own identity.
func (e *testEnv) submit(key *secp256k1.PrivateKey, opID ids.ID) error {
	e.t.Helper()
	digest, err := e.bridge.OperationHash(opID)
	require.NoError(e.t, err)
	sig, err := key.SignHash(digest[:])
	require.NoError(e.t, err)
	return e.bridge.SubmitSignature(key.Address(), opID, sig)
}

// approve submits signatures from each key in order, requiring each to
// be accepted.
func (e *testEnv) approve(opID ids.ID, keys ...*secp256k1.PrivateKey) {
	e.t.Helper()
	for _, key := range keys {
		require.NoError(e.t, e.submit(key, opID))
	}
}

func (e *testEnv) request(caller ids.ShortID, opType OpType, target ids.ShortID, value uint64, payload []byte) ids.ID {
	e.t.Helper()
	opID, err := e.bridge.RequestOperation(caller, opType, target, value, payload)
	require.NoError(e.t, err)
	return opID
}

func limitsPayload(t *testing.T, maxTransfer, cooldownSeconds uint64) []byte {
	t.Helper()
	bytes, err := Codec.Marshal(codecVersion, &LimitsPayload{
		MaxTransfer:     maxTransfer,
		CooldownSeconds: cooldownSeconds,
	})
	require.NoError(t, err)
	return bytes
}

func togglePayload(t *testing.T, out, in bool) []byte {
	t.Helper()
	bytes, err := Codec.Marshal(codecVersion, &TogglePayload{
		OutEnabled: out,
		InEnabled:  in,
	})
	require.NoError(t, err)
	return bytes
}

func TestRequestOperationAuthorization(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)

	_, err := env.bridge.RequestOperation(ids.ShortID{'x'}, OpPause, ids.ShortEmpty, 0, nil)
	require.ErrorIs(err, ErrNotAuthorized)

	// Both signers and the administrator may request.
	env.request(testKeys[0].Address(), OpPause, ids.ShortEmpty, 0, nil)
	env.request(testAdmin, OpPause, ids.ShortEmpty, 0, nil)
}

func TestRequestOperationRejectsUnknownType(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)

	_, err := env.bridge.RequestOperation(testAdmin, OpType(42), ids.ShortEmpty, 0, nil)
	require.ErrorIs(err, ErrUnknownOpType)
}

func TestQuorumExecutesOnThirdSignature(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)

	opID := env.request(testAdmin, OpPause, ids.ShortEmpty, 0, nil)
	env.approve(opID, testKeys[0], testKeys[1])

	// Two approvals are not a quorum.
	require.False(env.bridge.Paused())
	op, ok := env.bridge.Operation(opID)
	require.True(ok)
	require.False(op.Executed)
	require.Len(op.SignedBy, 2)

	env.approve(opID, testKeys[2])
	require.True(env.bridge.Paused())
	op, _ = env.bridge.Operation(opID)
	require.True(op.Executed)

	// The fourth signer is too late.
	err := env.submit(testKeys[3], opID)
	require.ErrorIs(err, ErrAlreadyExecuted)
}

func TestSubmitSignatureRejections(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)

	opID := env.request(testAdmin, OpPause, ids.ShortEmpty, 0, nil)

	// A well-formed signature over a nonexistent operation is
	// rejected before any recovery happens.
	bogus := signingDigest(ids.ID{1})
	bogusSig, err := testKeys[0].SignHash(bogus[:])
	require.NoError(err)
	err = env.bridge.SubmitSignature(testKeys[0].Address(), ids.ID{1}, bogusSig)
	require.ErrorIs(err, ErrUnknownOperation)

	// A non-signer cannot approve, even with a well-formed signature.
	digest, err := env.bridge.OperationHash(opID)
	require.NoError(err)
	sig, err := testKeys[0].SignHash(digest[:])
	require.NoError(err)
	err = env.bridge.SubmitSignature(testAdmin, opID, sig)
	require.ErrorIs(err, ErrNotSigner)

	// A signer cannot submit another signer's proof.
	err = env.bridge.SubmitSignature(testKeys[1].Address(), opID, sig)
	require.ErrorIs(err, ErrSignatureMismatch)

	// Garbage is rejected before recovery.
	err = env.bridge.SubmitSignature(testKeys[0].Address(), opID, []byte{1, 2, 3})
	require.ErrorIs(err, ErrSignatureMismatch)

	env.approve(opID, testKeys[0])
	err = env.submit(testKeys[0], opID)
	require.ErrorIs(err, ErrAlreadySigned)
}

func TestOperationDeadline(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)

	opID := env.request(testAdmin, OpPause, ids.ShortEmpty, 0, nil)
	env.approve(opID, testKeys[0], testKeys[1])

	expired, err := env.bridge.IsOperationExpired(opID)
	require.NoError(err)
	require.False(expired)

	env.bridge.clock.Advance(env.cfg.OperationDeadline + time.Second)

	expired, err = env.bridge.IsOperationExpired(opID)
	require.NoError(err)
	require.True(expired)

	// The would-be quorum signature arrives too late; the operation
	// stays inert forever.
	err = env.submit(testKeys[2], opID)
	require.ErrorIs(err, ErrDeadlinePassed)
	require.False(env.bridge.Paused())
}

func TestUpdateSignerRequestChecks(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)

	replacement, err := secp256k1.NewPrivateKey()
	require.NoError(err)
	payload := replacement.Address().Bytes()

	// Target must currently hold a slot.
	_, err = env.bridge.RequestOperation(testAdmin, OpUpdateSigner, ids.ShortID{'x'}, 0, payload)
	require.ErrorIs(err, ErrOldSignerInvalid)

	// The replacement must not already hold a slot.
	_, err = env.bridge.RequestOperation(testAdmin, OpUpdateSigner, testKeys[3].Address(), 0, testKeys[0].Address().Bytes())
	require.ErrorIs(err, ErrNewSignerInvalid)

	// Nor may it be the zero identity or a malformed payload.
	_, err = env.bridge.RequestOperation(testAdmin, OpUpdateSigner, testKeys[3].Address(), 0, ids.ShortEmpty.Bytes())
	require.ErrorIs(err, ErrNewSignerInvalid)
	_, err = env.bridge.RequestOperation(testAdmin, OpUpdateSigner, testKeys[3].Address(), 0, []byte{1})
	require.ErrorIs(err, ErrNewSignerInvalid)

	// A signer cannot request their own removal.
	_, err = env.bridge.RequestOperation(testKeys[3].Address(), OpUpdateSigner, testKeys[3].Address(), 0, payload)
	require.ErrorIs(err, ErrSelfRemoval)
}

func TestUpdateSignerReplacement(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)

	replacement, err := secp256k1.NewPrivateKey()
	require.NoError(err)

	opID := env.request(testAdmin, OpUpdateSigner, testKeys[3].Address(), 0, replacement.Address().Bytes())

	// The signer being replaced cannot approve their own removal.
	err = env.submit(testKeys[3], opID)
	require.ErrorIs(err, ErrRemovedSignerApproval)

	env.approve(opID, testKeys[0], testKeys[1], testKeys[2])

	require.False(env.bridge.IsSigner(testKeys[3].Address()))
	require.True(env.bridge.IsSigner(replacement.Address()))

	// The replacement can approve subsequent operations; the removed
	// signer cannot.
	pauseID := env.request(testAdmin, OpPause, ids.ShortEmpty, 0, nil)
	err = env.submit(testKeys[3], pauseID)
	require.ErrorIs(err, ErrNotSigner)
	env.approve(pauseID, testKeys[0], testKeys[1], replacement)
	require.True(env.bridge.Paused())
}

func TestSetBridgeLimits(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)
	require.NoError(env.token.Mint(testKeys[0].Address(), 10_000))

	opID := env.request(testAdmin, OpSetBridgeLimits, ids.ShortEmpty, 0, limitsPayload(t, 500, 120))
	env.approve(opID, testKeys[0], testKeys[1], testKeys[2])

	maxTransfer, cooldown := env.bridge.Limits()
	require.Equal(uint64(500), maxTransfer)
	require.Equal(2*time.Minute, cooldown)

	err := env.bridge.BridgeOut(testKeys[0].Address(), 501, testRecipient, testChainID, 0)
	require.ErrorIs(err, ErrOverCap)
	require.NoError(env.bridge.BridgeOut(testKeys[0].Address(), 500, testRecipient, testChainID, 0))
}

func TestSetBridgeCaller(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)

	newCaller := ids.ShortID{'n', 'e', 'w'}
	opID := env.request(testAdmin, OpSetBridgeCaller, newCaller, 0, nil)
	env.approve(opID, testKeys[0], testKeys[1], testKeys[2])
	require.Equal(newCaller, env.bridge.BridgeCaller())

	err := env.bridge.BridgeIn(testBridgeCaller, testRecipient, 1, testChainID, ids.ID{1}, 0)
	require.ErrorIs(err, ErrNotBridgeCaller)
	require.NoError(env.bridge.BridgeIn(newCaller, testRecipient, 1, testChainID, ids.ID{1}, 0))
}

func TestToggleBridge(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)
	require.NoError(env.token.Mint(testKeys[0].Address(), 100))

	opID := env.request(testAdmin, OpToggleBridge, ids.ShortEmpty, 0, togglePayload(t, false, false))
	env.approve(opID, testKeys[0], testKeys[1], testKeys[2])

	err := env.bridge.BridgeOut(testKeys[0].Address(), 1, testRecipient, testChainID, 0)
	require.ErrorIs(err, ErrBridgeOutDisabled)
	err = env.bridge.BridgeIn(testBridgeCaller, testRecipient, 1, testChainID, ids.ID{1}, 0)
	require.ErrorIs(err, ErrBridgeInDisabled)

	opID = env.request(testAdmin, OpToggleBridge, ids.ShortEmpty, 0, togglePayload(t, true, true))
	env.approve(opID, testKeys[0], testKeys[1], testKeys[2])
	require.NoError(env.bridge.BridgeOut(testKeys[0].Address(), 1, testRecipient, testChainID, 0))
}

func TestBridgeOutBurns(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)
	sender := testKeys[0].Address()
	require.NoError(env.token.Mint(sender, 100))

	require.NoError(env.bridge.BridgeOut(sender, 60, testRecipient, testChainID, 9))
	require.Equal(uint64(40), env.token.BalanceOf(sender))
	require.Equal(uint64(40), env.token.TotalSupply())
}

func TestBridgeOutRejections(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)
	sender := testKeys[0].Address()
	require.NoError(env.token.Mint(sender, 100))

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{
			name: "wrong chain tag",
			call: func() error {
				return env.bridge.BridgeOut(sender, 1, testRecipient, testChainID+1, 0)
			},
			want: ErrWrongChain,
		},
		{
			name: "destination is this chain",
			call: func() error {
				return env.bridge.BridgeOut(sender, 1, testRecipient, testChainID, testChainID)
			},
			want: ErrSameChain,
		},
		{
			name: "zero recipient",
			call: func() error {
				return env.bridge.BridgeOut(sender, 1, ids.ShortEmpty, testChainID, 0)
			},
			want: ErrZeroRecipient,
		},
		{
			name: "zero amount",
			call: func() error {
				return env.bridge.BridgeOut(sender, 0, testRecipient, testChainID, 0)
			},
			want: ErrZeroAmount,
		},
		{
			name: "over cap",
			call: func() error {
				return env.bridge.BridgeOut(sender, env.cfg.MaxTransfer+1, testRecipient, testChainID, 0)
			},
			want: ErrOverCap,
		},
		{
			name: "insufficient balance",
			call: func() error {
				return env.bridge.BridgeOut(sender, 101, testRecipient, testChainID, 0)
			},
			want: ledger.ErrInsufficientBalance,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(tt.call(), tt.want)
		})
	}

	// Nothing was burned by the rejected calls.
	require.Equal(uint64(100), env.token.BalanceOf(sender))
}

func TestBridgeInMints(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)

	require.NoError(env.bridge.BridgeIn(testBridgeCaller, testRecipient, 75, testChainID, ids.ID{1}, 3))
	require.Equal(uint64(75), env.token.BalanceOf(testRecipient))
	require.Equal(uint64(75), env.token.TotalSupply())
}

func TestBridgeInReplayProtection(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)
	transfer := ids.ID{1}

	require.NoError(env.bridge.BridgeIn(testBridgeCaller, testRecipient, 10, testChainID, transfer, 0))

	env.bridge.clock.Advance(env.cfg.Cooldown + time.Second)
	err := env.bridge.BridgeIn(testBridgeCaller, testRecipient, 10, testChainID, transfer, 0)
	require.ErrorIs(err, ErrTransferProcessed)
	require.Equal(uint64(10), env.token.BalanceOf(testRecipient))
}

func TestBridgeInReplayHorizon(t *testing.T) {
	require := require.New(t)
	cfg := testConfig()
	cfg.ReplayWindowSize = 3
	cfg.Cooldown = 0
	env := newTestEnv(t, MintVariant, cfg)

	for i := 1; i <= 4; i++ {
		require.NoError(env.bridge.BridgeIn(testBridgeCaller, testRecipient, 1, testChainID, ids.ID{byte(i)}, 0))
		env.bridge.clock.Advance(time.Second)
	}

	// The first identifier has fallen out of the window and settles
	// again; the bounded horizon is the accepted trade-off.
	require.NoError(env.bridge.BridgeIn(testBridgeCaller, testRecipient, 1, testChainID, ids.ID{1}, 0))

	err := env.bridge.BridgeIn(testBridgeCaller, testRecipient, 1, testChainID, ids.ID{4}, 0)
	require.ErrorIs(err, ErrTransferProcessed)
}

func TestBridgeInCooldown(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)

	require.NoError(env.bridge.BridgeIn(testBridgeCaller, testRecipient, 10, testChainID, ids.ID{1}, 0))

	// Any second settlement inside the cooldown is paced, regardless
	// of sender or identifier.
	err := env.bridge.BridgeIn(testBridgeCaller, testRecipient, 10, testChainID, ids.ID{2}, 0)
	require.ErrorIs(err, ErrCooldownActive)

	env.bridge.clock.Advance(env.cfg.Cooldown)
	require.NoError(env.bridge.BridgeIn(testBridgeCaller, testRecipient, 10, testChainID, ids.ID{2}, 0))

	// A rejected settlement must not have consumed its identifier.
	env.bridge.clock.Advance(env.cfg.Cooldown)
	require.NoError(env.bridge.BridgeIn(testBridgeCaller, testRecipient, 5, testChainID, ids.ID{3}, 0))
}

func TestBridgeInCreditFailureLeavesNoTrace(t *testing.T) {
	require := require.New(t)
	cfg := testConfig()
	env := newTestEnv(t, MintVariant, cfg)

	// A recipient balance at the ceiling makes the settlement mint
	// overflow after the identifier and cooldown have been recorded.
	require.NoError(env.token.Mint(testRecipient, math.MaxUint64-1))
	transfer := ids.ID{1}
	err := env.bridge.BridgeIn(testBridgeCaller, testRecipient, 2, testChainID, transfer, 0)
	require.Error(err)
	require.NotErrorIs(err, ErrTransferProcessed)

	// The rejection left no trace, in memory or on disk: after a
	// reopen the same identifier still settles, with no cooldown
	// pending from the failed attempt.
	factory := Factory{
		Config:       cfg,
		Variant:      MintVariant,
		TokenName:    "Bridged Token",
		TokenSymbol:  "BTK",
		VaultAccount: testVault,
	}
	reopened, token, err := factory.New(env.db, log.NoLog{}, metric.NewRegistry())
	require.NoError(err)
	reopened.clock.Set(testStart)

	other := ids.ShortID{'o', 't', 'h', 'r'}
	require.NoError(reopened.BridgeIn(testBridgeCaller, other, 2, testChainID, transfer, 0))
	require.Equal(uint64(2), token.BalanceOf(other))
}

func TestVaultEscrowAndRelease(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, VaultVariant, testConfig())
	sender := testKeys[0].Address()
	require.NoError(env.token.Mint(sender, 100))

	// Outbound escrow requires a prior allowance to the vault.
	err := env.bridge.BridgeOut(sender, 60, testRecipient, testChainID, 0)
	require.ErrorIs(err, ledger.ErrInsufficientAllowance)

	require.NoError(env.token.Approve(sender, testVault, 60))
	require.NoError(env.bridge.BridgeOut(sender, 60, testRecipient, testChainID, 0))
	require.Equal(uint64(40), env.token.BalanceOf(sender))
	require.Equal(uint64(60), env.bridge.VaultBalance())
	// Supply is conserved, not burned.
	require.Equal(uint64(100), env.token.TotalSupply())

	// Inbound release pays out of custody and cannot exceed it.
	err = env.bridge.BridgeIn(testBridgeCaller, testRecipient, 61, testChainID, ids.ID{1}, 0)
	require.ErrorIs(err, ErrInsufficientCustody)

	require.NoError(env.bridge.BridgeIn(testBridgeCaller, testRecipient, 60, testChainID, ids.ID{1}, 0))
	require.Equal(uint64(60), env.token.BalanceOf(testRecipient))
	require.Zero(env.bridge.VaultBalance())

	// The failed release did not consume its cooldown slot or its
	// identifier prematurely; the successful one did.
	err = env.bridge.BridgeIn(testBridgeCaller, testRecipient, 1, testChainID, ids.ID{1}, 0)
	require.ErrorIs(err, ErrTransferProcessed)
}

func TestPauseBlocksTransfers(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)
	sender := testKeys[0].Address()
	require.NoError(env.token.Mint(sender, 100))

	opID := env.request(testAdmin, OpPause, ids.ShortEmpty, 0, nil)
	env.approve(opID, testKeys[0], testKeys[1], testKeys[2])

	err := env.bridge.BridgeOut(sender, 1, testRecipient, testChainID, 0)
	require.ErrorIs(err, ErrPaused)
	err = env.bridge.BridgeIn(testBridgeCaller, testRecipient, 1, testChainID, ids.ID{1}, 0)
	require.ErrorIs(err, ErrPaused)

	// Operations still flow while paused: that is how the bridge gets
	// unpaused.
	opID = env.request(testAdmin, OpUnpause, ids.ShortEmpty, 0, nil)
	env.approve(opID, testKeys[0], testKeys[1], testKeys[2])
	require.False(env.bridge.Paused())
	require.NoError(env.bridge.BridgeOut(sender, 1, testRecipient, testChainID, 0))
}

func TestPauseExemptsInbound(t *testing.T) {
	require := require.New(t)
	cfg := testConfig()
	cfg.PauseExemptsInbound = true
	env := newTestEnv(t, MintVariant, cfg)

	opID := env.request(testAdmin, OpPause, ids.ShortEmpty, 0, nil)
	env.approve(opID, testKeys[0], testKeys[1], testKeys[2])

	// Transfers already burned on the sibling chain still settle.
	require.NoError(env.bridge.BridgeIn(testBridgeCaller, testRecipient, 10, testChainID, ids.ID{1}, 0))
	require.Equal(uint64(10), env.token.BalanceOf(testRecipient))
}

func TestRelinquishSweepsAndHalts(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, VaultVariant, testConfig())
	sender := testKeys[0].Address()
	require.NoError(env.token.Mint(sender, 100))
	require.NoError(env.token.Approve(sender, testVault, 100))
	require.NoError(env.bridge.BridgeOut(sender, 100, testRecipient, testChainID, 0))
	require.Equal(uint64(100), env.bridge.VaultBalance())

	opID := env.request(testAdmin, OpRelinquish, ids.ShortEmpty, 0, nil)
	env.approve(opID, testKeys[0], testKeys[1], testKeys[2])

	require.True(env.bridge.Halted())
	require.Zero(env.bridge.VaultBalance())
	require.Equal(uint64(100), env.token.BalanceOf(testAdmin))

	// Halt is terminal: every entry point refuses.
	_, err := env.bridge.RequestOperation(testAdmin, OpPause, ids.ShortEmpty, 0, nil)
	require.ErrorIs(err, ErrHalted)
	err = env.bridge.BridgeOut(sender, 1, testRecipient, testChainID, 0)
	require.ErrorIs(err, ErrHalted)
	err = env.bridge.BridgeIn(testBridgeCaller, testRecipient, 1, testChainID, ids.ID{9}, 0)
	require.ErrorIs(err, ErrHalted)

	// Even a fully signed pending operation can no longer execute.
	err = env.submit(testKeys[0], opID)
	require.ErrorIs(err, ErrHalted)
}

func TestRelinquishRequiresCustody(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, VaultVariant, testConfig())

	opID := env.request(testAdmin, OpRelinquish, ids.ShortEmpty, 0, nil)
	env.approve(opID, testKeys[0], testKeys[1])

	// The quorum signature arrives but the effect fails; the
	// signature is rolled back with it.
	err := env.submit(testKeys[2], opID)
	require.ErrorIs(err, ErrNoCustody)
	require.False(env.bridge.Halted())
	op, _ := env.bridge.Operation(opID)
	require.False(op.Executed)
	require.Len(op.SignedBy, 2)

	// Once custody exists the same signer completes the operation.
	require.NoError(env.token.Mint(testVault, 5))
	env.approve(opID, testKeys[2])
	require.True(env.bridge.Halted())
	require.Equal(uint64(5), env.token.BalanceOf(testAdmin))
}

func TestEventsRecorded(t *testing.T) {
	require := require.New(t)
	env := newMintEnv(t)

	sub := env.bridge.SubscribeEvents(16)

	opID := env.request(testAdmin, OpPause, ids.ShortEmpty, 0, nil)
	env.approve(opID, testKeys[0], testKeys[1], testKeys[2])

	kinds := make(map[EventKind]int)
	for _, ev := range env.bridge.EventTail(0) {
		kinds[ev.Kind]++
	}
	require.Equal(1, kinds[EventOperationRequested])
	require.Equal(3, kinds[EventSignatureAdded])
	require.Equal(1, kinds[EventOperationExecuted])
	require.Equal(1, kinds[EventPaused])

	// The subscriber saw the same stream.
	first := <-sub
	require.Equal(EventOperationRequested, first.Kind)
	require.Equal(opID, first.OpID)
}

func TestRestartResumesState(t *testing.T) {
	require := require.New(t)
	cfg := testConfig()
	env := newTestEnv(t, MintVariant, cfg)

	// Settle a transfer, replace a signer, pause and leave a pending
	// operation behind.
	require.NoError(env.bridge.BridgeIn(testBridgeCaller, testRecipient, 10, testChainID, ids.ID{1}, 0))

	replacement, err := secp256k1.NewPrivateKey()
	require.NoError(err)
	opID := env.request(testAdmin, OpUpdateSigner, testKeys[3].Address(), 0, replacement.Address().Bytes())
	env.approve(opID, testKeys[0], testKeys[1], testKeys[2])

	pauseID := env.request(testAdmin, OpPause, ids.ShortEmpty, 0, nil)
	env.approve(pauseID, testKeys[0], testKeys[1])

	// Reopen on the same database with the original config; persisted
	// state wins over config.
	factory := Factory{
		Config:       cfg,
		Variant:      MintVariant,
		TokenName:    "Bridged Token",
		TokenSymbol:  "BTK",
		VaultAccount: testVault,
	}
	reopened, token, err := factory.New(env.db, log.NoLog{}, metric.NewRegistry())
	require.NoError(err)
	reopened.clock.Set(testStart.Add(time.Hour))

	require.True(reopened.IsSigner(replacement.Address()))
	require.False(reopened.IsSigner(testKeys[3].Address()))
	require.Equal(uint64(10), token.BalanceOf(testRecipient))

	// The settled identifier is still remembered.
	err = reopened.BridgeIn(testBridgeCaller, testRecipient, 10, testChainID, ids.ID{1}, 0)
	require.ErrorIs(err, ErrTransferProcessed)

	// The pending operation picks up exactly where it stopped.
	op, ok := reopened.Operation(pauseID)
	require.True(ok)
	require.Len(op.SignedBy, 2)
	digest, err := reopened.OperationHash(pauseID)
	require.NoError(err)
	sig, err := testKeys[2].SignHash(digest[:])
	require.NoError(err)
	require.NoError(reopened.SubmitSignature(testKeys[2].Address(), pauseID, sig))
	require.True(reopened.Paused())

	// New operations continue the persisted sequence, so their
	// fingerprints cannot collide with pre-restart ones.
	newOp := reopened.ops[opID]
	require.NotNil(newOp)
	nextID, err := reopened.RequestOperation(testAdmin, OpUnpause, ids.ShortEmpty, 0, nil)
	require.NoError(err)
	require.Greater(reopened.ops[nextID].Sequence, newOp.Sequence)
}

func TestRoundTripAcrossTwoDeployments(t *testing.T) {
	require := require.New(t)

	cfgA := testConfig()
	cfgA.ChainID = 1
	cfgA.OpCodes = config.PrimaryOpCodes()
	chainA := newTestEnv(t, MintVariant, cfgA)

	cfgB := testConfig()
	cfgB.ChainID = 2
	cfgB.OpCodes = config.SecondaryOpCodes()
	chainB := newTestEnv(t, MintVariant, cfgB)

	sender := testKeys[0].Address()
	require.NoError(chainA.token.Mint(sender, 500))

	// Burn on A, then settle the matching mint on B under the
	// identifier of the A-side event.
	require.NoError(chainA.bridge.BridgeOut(sender, 200, testRecipient, 1, 2))
	require.Equal(uint64(300), chainA.token.TotalSupply())

	transfer := ids.ID{0xab}
	require.NoError(chainB.bridge.BridgeIn(testBridgeCaller, testRecipient, 200, 2, transfer, 1))
	require.Equal(uint64(200), chainB.token.BalanceOf(testRecipient))

	// The same A-side operation request produces different
	// fingerprints on the two deployments.
	opA, err := chainA.bridge.RequestOperation(testAdmin, OpPause, ids.ShortEmpty, 0, nil)
	require.NoError(err)
	opB, err := chainB.bridge.RequestOperation(testAdmin, OpPause, ids.ShortEmpty, 0, nil)
	require.NoError(err)
	require.NotEqual(opA, opB)

	// And a signature collected for A's operation is useless on B.
	digestA, err := chainA.bridge.OperationHash(opA)
	require.NoError(err)
	sig, err := testKeys[0].SignHash(digestA[:])
	require.NoError(err)
	err = chainB.bridge.SubmitSignature(testKeys[0].Address(), opB, sig)
	require.ErrorIs(err, ErrSignatureMismatch)
}
