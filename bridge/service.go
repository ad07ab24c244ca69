// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/rpc/v2"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/tokenbridge/utils/json"
)

// Service exposes the bridge engine over JSON-RPC. Mutating methods
// take the caller identity explicitly; the service performs no
// authentication of its own beyond what the engine enforces.
type Service struct {
	bridge *Bridge
}

// NewService returns the RPC service wrapping b.
func NewService(b *Bridge) *Service {
	return &Service{bridge: b}
}

// NewHTTPHandler returns an http.Handler serving the bridge service
// under the given namespace.
func NewHTTPHandler(b *Bridge, namespace string) (http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json.NewCodec(), "application/json")
	server.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	if err := server.RegisterService(NewService(b), namespace); err != nil {
		return nil, fmt.Errorf("registering bridge service: %w", err)
	}
	b.logger.Info("bridge RPC service registered", log.String("namespace", namespace))
	return server, nil
}

// GetChainIDReply is the reply for GetChainID.
type GetChainIDReply struct {
	ChainID json.Uint32 `json:"chainID"`
}

// GetChainID returns the chain tag of this deployment.
func (s *Service) GetChainID(_ *http.Request, _ *struct{}, reply *GetChainIDReply) error {
	reply.ChainID = json.Uint32(s.bridge.ChainID())
	return nil
}

// IsSignerArgs are the arguments for IsSigner.
type IsSignerArgs struct {
	Identity string `json:"identity"`
}

// IsSignerReply is the reply for IsSigner.
type IsSignerReply struct {
	IsSigner bool `json:"isSigner"`
}

// IsSigner reports whether the identity holds a signer slot.
func (s *Service) IsSigner(_ *http.Request, args *IsSignerArgs, reply *IsSignerReply) error {
	identity, err := ids.ShortFromString(args.Identity)
	if err != nil {
		return fmt.Errorf("invalid identity: %w", err)
	}
	reply.IsSigner = s.bridge.IsSigner(identity)
	return nil
}

// GetSignersReply is the reply for GetSigners.
type GetSignersReply struct {
	Signers []string `json:"signers"`
	Admin   string   `json:"admin"`
}

// GetSigners returns the signer registry and the administrator.
func (s *Service) GetSigners(_ *http.Request, _ *struct{}, reply *GetSignersReply) error {
	for _, signer := range s.bridge.Signers() {
		reply.Signers = append(reply.Signers, signer.String())
	}
	reply.Admin = s.bridge.Admin().String()
	return nil
}

// GetStatusReply is the reply for GetStatus.
type GetStatusReply struct {
	Paused       bool        `json:"paused"`
	Halted       bool        `json:"halted"`
	MaxTransfer  json.Uint64 `json:"maxTransfer"`
	CooldownSecs json.Uint64 `json:"cooldownSeconds"`
	VaultBalance json.Uint64 `json:"vaultBalance"`
	BridgeCaller string      `json:"bridgeCaller"`
}

// GetStatus returns the lifecycle flags, current limits and custodial
// balance.
func (s *Service) GetStatus(_ *http.Request, _ *struct{}, reply *GetStatusReply) error {
	maxTransfer, cooldown := s.bridge.Limits()
	reply.Paused = s.bridge.Paused()
	reply.Halted = s.bridge.Halted()
	reply.MaxTransfer = json.Uint64(maxTransfer)
	reply.CooldownSecs = json.Uint64(cooldown.Seconds())
	reply.VaultBalance = json.Uint64(s.bridge.VaultBalance())
	reply.BridgeCaller = s.bridge.BridgeCaller().String()
	return nil
}

// RequestOperationArgs are the arguments for RequestOperation. Payload
// is hex encoded; the layout depends on the operation type.
type RequestOperationArgs struct {
	Caller  string      `json:"caller"`
	OpType  string      `json:"opType"`
	Target  string      `json:"target"`
	Value   json.Uint64 `json:"value"`
	Payload string      `json:"payload"`
}

// RequestOperationReply is the reply for RequestOperation.
type RequestOperationReply struct {
	OpID ids.ID `json:"opID"`
}

// RequestOperation creates a new administrative operation.
func (s *Service) RequestOperation(_ *http.Request, args *RequestOperationArgs, reply *RequestOperationReply) error {
	caller, err := ids.ShortFromString(args.Caller)
	if err != nil {
		return fmt.Errorf("invalid caller: %w", err)
	}
	opType, err := opTypeFromString(args.OpType)
	if err != nil {
		return err
	}
	target := ids.ShortEmpty
	if args.Target != "" {
		if target, err = ids.ShortFromString(args.Target); err != nil {
			return fmt.Errorf("invalid target: %w", err)
		}
	}
	payload, err := decodeHex(args.Payload)
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	opID, err := s.bridge.RequestOperation(caller, opType, target, uint64(args.Value), payload)
	if err != nil {
		return err
	}
	reply.OpID = opID
	return nil
}

// GetOperationArgs are the arguments for GetOperation,
// GetOperationHash and IsOperationExpired.
type GetOperationArgs struct {
	OpID string `json:"opID"`
}

// GetOperationReply is the reply for GetOperation.
type GetOperationReply struct {
	Operation Operation `json:"operation"`
}

// GetOperation returns the stored operation record.
func (s *Service) GetOperation(_ *http.Request, args *GetOperationArgs, reply *GetOperationReply) error {
	opID, err := ids.FromString(args.OpID)
	if err != nil {
		return fmt.Errorf("invalid operation ID: %w", err)
	}
	op, ok := s.bridge.Operation(opID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOperation, opID)
	}
	reply.Operation = op
	return nil
}

// GetOperationHashReply is the reply for GetOperationHash.
type GetOperationHashReply struct {
	Hash ids.ID `json:"hash"`
}

// GetOperationHash returns the digest signers must sign to approve the
// operation.
func (s *Service) GetOperationHash(_ *http.Request, args *GetOperationArgs, reply *GetOperationHashReply) error {
	opID, err := ids.FromString(args.OpID)
	if err != nil {
		return fmt.Errorf("invalid operation ID: %w", err)
	}
	hash, err := s.bridge.OperationHash(opID)
	if err != nil {
		return err
	}
	reply.Hash = hash
	return nil
}

// IsOperationExpiredReply is the reply for IsOperationExpired.
type IsOperationExpiredReply struct {
	Expired bool `json:"expired"`
}

// IsOperationExpired reports whether the operation's signing deadline
// has passed.
func (s *Service) IsOperationExpired(_ *http.Request, args *GetOperationArgs, reply *IsOperationExpiredReply) error {
	opID, err := ids.FromString(args.OpID)
	if err != nil {
		return fmt.Errorf("invalid operation ID: %w", err)
	}
	expired, err := s.bridge.IsOperationExpired(opID)
	if err != nil {
		return err
	}
	reply.Expired = expired
	return nil
}

// SubmitSignatureArgs are the arguments for SubmitSignature.
// Signature is the hex-encoded 65-byte recoverable signature over the
// operation hash.
type SubmitSignatureArgs struct {
	Caller    string `json:"caller"`
	OpID      string `json:"opID"`
	Signature string `json:"signature"`
}

// SubmitSignatureReply is the reply for SubmitSignature.
type SubmitSignatureReply struct {
	Signatures int  `json:"signatures"`
	Executed   bool `json:"executed"`
}

// SubmitSignature records a signer's approval; the third approval
// executes the operation before this call returns.
func (s *Service) SubmitSignature(_ *http.Request, args *SubmitSignatureArgs, reply *SubmitSignatureReply) error {
	caller, err := ids.ShortFromString(args.Caller)
	if err != nil {
		return fmt.Errorf("invalid caller: %w", err)
	}
	opID, err := ids.FromString(args.OpID)
	if err != nil {
		return fmt.Errorf("invalid operation ID: %w", err)
	}
	sig, err := decodeHex(args.Signature)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}

	if err := s.bridge.SubmitSignature(caller, opID, sig); err != nil {
		return err
	}
	op, _ := s.bridge.Operation(opID)
	reply.Signatures = len(op.SignedBy)
	reply.Executed = op.Executed
	return nil
}

// BridgeOutArgs are the arguments for BridgeOut.
type BridgeOutArgs struct {
	Caller      string      `json:"caller"`
	Amount      json.Uint64 `json:"amount"`
	Target      string      `json:"target"`
	ChainID     json.Uint32 `json:"chainID"`
	DestChainID json.Uint32 `json:"destChainID"`
}

// BridgeOut moves value out of the caller's account toward the
// destination chain.
func (s *Service) BridgeOut(_ *http.Request, args *BridgeOutArgs, _ *struct{}) error {
	caller, err := ids.ShortFromString(args.Caller)
	if err != nil {
		return fmt.Errorf("invalid caller: %w", err)
	}
	target, err := ids.ShortFromString(args.Target)
	if err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}
	return s.bridge.BridgeOut(caller, uint64(args.Amount), target, uint32(args.ChainID), uint32(args.DestChainID))
}

// BridgeInArgs are the arguments for BridgeIn.
type BridgeInArgs struct {
	Caller        string      `json:"caller"`
	Recipient     string      `json:"recipient"`
	Amount        json.Uint64 `json:"amount"`
	ChainID       json.Uint32 `json:"chainID"`
	TransferID    string      `json:"transferID"`
	SourceChainID json.Uint32 `json:"sourceChainID"`
}

// BridgeIn settles an inbound transfer for the recipient.
func (s *Service) BridgeIn(_ *http.Request, args *BridgeInArgs, _ *struct{}) error {
	caller, err := ids.ShortFromString(args.Caller)
	if err != nil {
		return fmt.Errorf("invalid caller: %w", err)
	}
	recipient, err := ids.ShortFromString(args.Recipient)
	if err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	transferID, err := ids.FromString(args.TransferID)
	if err != nil {
		return fmt.Errorf("invalid transfer ID: %w", err)
	}
	return s.bridge.BridgeIn(caller, recipient, uint64(args.Amount), uint32(args.ChainID), transferID, uint32(args.SourceChainID))
}

// GetEventsArgs are the arguments for GetEvents.
type GetEventsArgs struct {
	Count int `json:"count"`
}

// GetEventsReply is the reply for GetEvents.
type GetEventsReply struct {
	Events []Event `json:"events"`
}

// GetEvents returns up to Count most recent audit events, oldest
// first.
func (s *Service) GetEvents(_ *http.Request, args *GetEventsArgs, reply *GetEventsReply) error {
	reply.Events = s.bridge.EventTail(args.Count)
	return nil
}

func opTypeFromString(s string) (OpType, error) {
	switch strings.ReplaceAll(strings.ToLower(s), "_", "") {
	case "updatesigner":
		return OpUpdateSigner, nil
	case "setbridgelimits":
		return OpSetBridgeLimits, nil
	case "setbridgecaller":
		return OpSetBridgeCaller, nil
	case "togglebridge":
		return OpToggleBridge, nil
	case "pause":
		return OpPause, nil
	case "unpause":
		return OpUnpause, nil
	case "relinquish":
		return OpRelinquish, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOpType, s)
	}
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}
