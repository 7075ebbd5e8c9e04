package types

import (
	"fmt"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Gateway module event types
const (
	EventTypeCallContract            = "call_contract"
	EventTypeMessageApproved         = "message_approved"
	EventTypeMessageExecuted         = "message_executed"
	EventTypeVerifierSetRotated      = "verifier_set_rotated"
	EventTypeOperatorshipTransferred = "operatorship_transferred"
	EventTypeSessionInitialized      = "verification_session_initialized"
	EventTypeSignatureVerified       = "signature_verified"
	EventTypeConfigUpdated           = "gateway_config_updated"
	EventTypeMessagePayloadCommitted = "message_payload_committed"
)

// Gateway module event attribute keys
const (
	AttributeKeySender             = "sender"
	AttributeKeyDestinationChain   = "destination_chain"
	AttributeKeyDestinationAddress = "destination_address"
	AttributeKeyPayload            = "payload"
	AttributeKeyPayloadHash        = "payload_hash"
	AttributeKeyCommandID          = "command_id"
	AttributeKeySourceChain        = "source_chain"
	AttributeKeyMessageID          = "message_id"
	AttributeKeySourceAddress      = "source_address"
	AttributeKeyPayloadRoot        = "payload_root"
	AttributeKeyLeafIndex          = "leaf_index"
	AttributeKeyVerifierSetHash    = "verifier_set_hash"
	AttributeKeySigningSetHash     = "signing_set_hash"
	AttributeKeyEpoch              = "epoch"
	AttributeKeyPreviousOperator   = "previous_operator"
	AttributeKeyNewOperator        = "new_operator"
	AttributeKeySignerPosition     = "signer_position"
	AttributeKeyAccumulatedWeight  = "accumulated_weight"
	AttributeKeyThreshold          = "threshold"
	AttributeKeyIsValid            = "is_valid"
	AttributeKeyRetention          = "previous_verifier_set_retention"
	AttributeKeyRotationDelay      = "minimum_rotation_delay"
	AttributeKeyPayer              = "payer"
)

// CallContractEvent is emitted for every outbound contract call.
type CallContractEvent struct {
	Sender             string
	DestinationChain   string
	DestinationAddress string
	Payload            []byte
	PayloadHash        common.Hash
}

// MessageApprovedEvent is emitted when a message is approved.
type MessageApprovedEvent struct {
	CommandID          common.Hash
	SourceChain        string
	MessageID          string
	SourceAddress      string
	DestinationAddress string
	PayloadHash        common.Hash
	PayloadRoot        common.Hash
	LeafIndex          uint32
}

// MessageExecutedEvent is emitted when a destination consumes an approval.
type MessageExecutedEvent struct {
	CommandID   common.Hash
	SourceChain string
	MessageID   string
}

// VerifierSetRotatedEvent is emitted when a new verifier set is installed.
type VerifierSetRotatedEvent struct {
	VerifierSetHash common.Hash
	Epoch           *uint256.Int
}

// OperatorshipTransferredEvent is emitted when the operator changes.
type OperatorshipTransferredEvent struct {
	PreviousOperator string
	NewOperator      string
}

func (e CallContractEvent) ToSDKEvent() sdk.Event {
	return sdk.NewEvent(
		EventTypeCallContract,
		sdk.NewAttribute(AttributeKeySender, e.Sender),
		sdk.NewAttribute(AttributeKeyDestinationChain, e.DestinationChain),
		sdk.NewAttribute(AttributeKeyDestinationAddress, e.DestinationAddress),
		sdk.NewAttribute(AttributeKeyPayload, hexutil.Encode(e.Payload)),
		sdk.NewAttribute(AttributeKeyPayloadHash, e.PayloadHash.Hex()),
	)
}

func (e MessageApprovedEvent) ToSDKEvent() sdk.Event {
	return sdk.NewEvent(
		EventTypeMessageApproved,
		sdk.NewAttribute(AttributeKeyCommandID, e.CommandID.Hex()),
		sdk.NewAttribute(AttributeKeySourceChain, e.SourceChain),
		sdk.NewAttribute(AttributeKeyMessageID, e.MessageID),
		sdk.NewAttribute(AttributeKeySourceAddress, e.SourceAddress),
		sdk.NewAttribute(AttributeKeyDestinationAddress, e.DestinationAddress),
		sdk.NewAttribute(AttributeKeyPayloadHash, e.PayloadHash.Hex()),
		sdk.NewAttribute(AttributeKeyPayloadRoot, e.PayloadRoot.Hex()),
		sdk.NewAttribute(AttributeKeyLeafIndex, strconv.FormatUint(uint64(e.LeafIndex), 10)),
	)
}

func (e MessageExecutedEvent) ToSDKEvent() sdk.Event {
	return sdk.NewEvent(
		EventTypeMessageExecuted,
		sdk.NewAttribute(AttributeKeyCommandID, e.CommandID.Hex()),
		sdk.NewAttribute(AttributeKeySourceChain, e.SourceChain),
		sdk.NewAttribute(AttributeKeyMessageID, e.MessageID),
	)
}

func (e VerifierSetRotatedEvent) ToSDKEvent() sdk.Event {
	return sdk.NewEvent(
		EventTypeVerifierSetRotated,
		sdk.NewAttribute(AttributeKeyVerifierSetHash, e.VerifierSetHash.Hex()),
		sdk.NewAttribute(AttributeKeyEpoch, e.Epoch.Dec()),
	)
}

func (e OperatorshipTransferredEvent) ToSDKEvent() sdk.Event {
	return sdk.NewEvent(
		EventTypeOperatorshipTransferred,
		sdk.NewAttribute(AttributeKeyPreviousOperator, e.PreviousOperator),
		sdk.NewAttribute(AttributeKeyNewOperator, e.NewOperator),
	)
}

type eventAttrs map[string]string

func attrsOf(ev abci.Event, want string) (eventAttrs, error) {
	if ev.Type != want {
		return nil, errorsmod.Wrapf(ErrInvalidEncoding, "event type %q, expected %q", ev.Type, want)
	}
	out := make(eventAttrs, len(ev.Attributes))
	for _, a := range ev.Attributes {
		out[a.Key] = a.Value
	}
	return out, nil
}

func (a eventAttrs) str(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", errorsmod.Wrapf(ErrInvalidEncoding, "missing attribute %q", key)
	}
	return v, nil
}

func (a eventAttrs) hash(key string) (common.Hash, error) {
	v, err := a.str(key)
	if err != nil {
		return common.Hash{}, err
	}
	b, err := hexutil.Decode(v)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, errorsmod.Wrapf(ErrInvalidEncoding, "attribute %q is not a 32-byte hex hash", key)
	}
	return common.BytesToHash(b), nil
}

// ParseCallContractEvent decodes an EventTypeCallContract event.
func ParseCallContractEvent(ev abci.Event) (CallContractEvent, error) {
	a, err := attrsOf(ev, EventTypeCallContract)
	if err != nil {
		return CallContractEvent{}, err
	}
	var out CallContractEvent
	if out.Sender, err = a.str(AttributeKeySender); err != nil {
		return out, err
	}
	if out.DestinationChain, err = a.str(AttributeKeyDestinationChain); err != nil {
		return out, err
	}
	if out.DestinationAddress, err = a.str(AttributeKeyDestinationAddress); err != nil {
		return out, err
	}
	payload, err := a.str(AttributeKeyPayload)
	if err != nil {
		return out, err
	}
	if out.Payload, err = hexutil.Decode(payload); err != nil {
		return out, errorsmod.Wrap(ErrInvalidEncoding, err.Error())
	}
	out.PayloadHash, err = a.hash(AttributeKeyPayloadHash)
	return out, err
}

// ParseMessageApprovedEvent decodes an EventTypeMessageApproved event.
func ParseMessageApprovedEvent(ev abci.Event) (MessageApprovedEvent, error) {
	a, err := attrsOf(ev, EventTypeMessageApproved)
	if err != nil {
		return MessageApprovedEvent{}, err
	}
	var out MessageApprovedEvent
	if out.CommandID, err = a.hash(AttributeKeyCommandID); err != nil {
		return out, err
	}
	if out.SourceChain, err = a.str(AttributeKeySourceChain); err != nil {
		return out, err
	}
	if out.MessageID, err = a.str(AttributeKeyMessageID); err != nil {
		return out, err
	}
	if out.SourceAddress, err = a.str(AttributeKeySourceAddress); err != nil {
		return out, err
	}
	if out.DestinationAddress, err = a.str(AttributeKeyDestinationAddress); err != nil {
		return out, err
	}
	if out.PayloadHash, err = a.hash(AttributeKeyPayloadHash); err != nil {
		return out, err
	}
	if out.PayloadRoot, err = a.hash(AttributeKeyPayloadRoot); err != nil {
		return out, err
	}
	idx, err := a.str(AttributeKeyLeafIndex)
	if err != nil {
		return out, err
	}
	n, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return out, errorsmod.Wrap(ErrInvalidEncoding, err.Error())
	}
	out.LeafIndex = uint32(n)
	return out, nil
}

// ParseMessageExecutedEvent decodes an EventTypeMessageExecuted event.
func ParseMessageExecutedEvent(ev abci.Event) (MessageExecutedEvent, error) {
	a, err := attrsOf(ev, EventTypeMessageExecuted)
	if err != nil {
		return MessageExecutedEvent{}, err
	}
	var out MessageExecutedEvent
	if out.CommandID, err = a.hash(AttributeKeyCommandID); err != nil {
		return out, err
	}
	if out.SourceChain, err = a.str(AttributeKeySourceChain); err != nil {
		return out, err
	}
	out.MessageID, err = a.str(AttributeKeyMessageID)
	return out, err
}

// ParseVerifierSetRotatedEvent decodes an EventTypeVerifierSetRotated event.
func ParseVerifierSetRotatedEvent(ev abci.Event) (VerifierSetRotatedEvent, error) {
	a, err := attrsOf(ev, EventTypeVerifierSetRotated)
	if err != nil {
		return VerifierSetRotatedEvent{}, err
	}
	var out VerifierSetRotatedEvent
	if out.VerifierSetHash, err = a.hash(AttributeKeyVerifierSetHash); err != nil {
		return out, err
	}
	epoch, err := a.str(AttributeKeyEpoch)
	if err != nil {
		return out, err
	}
	if out.Epoch, err = uint256.FromDecimal(epoch); err != nil {
		return out, errorsmod.Wrap(ErrInvalidEncoding, err.Error())
	}
	return out, nil
}

// ParseOperatorshipTransferredEvent decodes an EventTypeOperatorshipTransferred event.
func ParseOperatorshipTransferredEvent(ev abci.Event) (OperatorshipTransferredEvent, error) {
	a, err := attrsOf(ev, EventTypeOperatorshipTransferred)
	if err != nil {
		return OperatorshipTransferredEvent{}, err
	}
	var out OperatorshipTransferredEvent
	if out.PreviousOperator, err = a.str(AttributeKeyPreviousOperator); err != nil {
		return out, err
	}
	out.NewOperator, err = a.str(AttributeKeyNewOperator)
	return out, err
}

// FindEvent returns the first event of the given type.
func FindEvent(events []abci.Event, eventType string) (abci.Event, error) {
	for _, ev := range events {
		if ev.Type == eventType {
			return ev, nil
		}
	}
	return abci.Event{}, fmt.Errorf("no %s event", eventType)
}
