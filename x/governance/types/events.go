package types

import (
	"strconv"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Governance module event types
const (
	EventTypeProposalScheduled         = "proposal_scheduled"
	EventTypeProposalCancelled         = "proposal_cancelled"
	EventTypeProposalExecuted          = "proposal_executed"
	EventTypeOperatorProposalApproved  = "operator_proposal_approved"
	EventTypeOperatorProposalCancelled = "operator_proposal_cancelled"
	EventTypeOperatorProposalExecuted  = "operator_proposal_executed"
	EventTypeOperatorshipTransferred   = "governance_operatorship_transferred"
)

// Governance module event attribute keys
const (
	AttributeKeyProposalHash     = "proposal_hash"
	AttributeKeyTarget           = "target"
	AttributeKeyCallData         = "call_data"
	AttributeKeyNativeValue      = "native_value"
	AttributeKeyEta              = "eta"
	AttributeKeyPreviousOperator = "previous_operator"
	AttributeKeyNewOperator      = "new_operator"
)

// ProposalEvent carries the proposal fields shared by every timelock and
// operator approval event. Eta is zero for kinds that do not report it.
type ProposalEvent struct {
	Type         string
	ProposalHash common.Hash
	Target       common.Hash
	CallData     []byte
	NativeValue  *uint256.Int
	Eta          uint64
}

// NewProposalEvent builds a proposal event of the given kind.
func NewProposalEvent(eventType string, target common.Hash, callData []byte, nativeValue *uint256.Int, eta uint64) ProposalEvent {
	if nativeValue == nil {
		nativeValue = new(uint256.Int)
	}
	return ProposalEvent{
		Type:         eventType,
		ProposalHash: ProposalHash(target, callData, nativeValue),
		Target:       target,
		CallData:     callData,
		NativeValue:  nativeValue,
		Eta:          eta,
	}
}

func (e ProposalEvent) ToSDKEvent() sdk.Event {
	return sdk.NewEvent(
		e.Type,
		sdk.NewAttribute(AttributeKeyProposalHash, e.ProposalHash.Hex()),
		sdk.NewAttribute(AttributeKeyTarget, e.Target.Hex()),
		sdk.NewAttribute(AttributeKeyCallData, hexutil.Encode(e.CallData)),
		sdk.NewAttribute(AttributeKeyNativeValue, e.NativeValue.Dec()),
		sdk.NewAttribute(AttributeKeyEta, strconv.FormatUint(e.Eta, 10)),
	)
}

// OperatorshipTransferredEvent is emitted when the governance operator changes.
type OperatorshipTransferredEvent struct {
	PreviousOperator string
	NewOperator      string
}

func (e OperatorshipTransferredEvent) ToSDKEvent() sdk.Event {
	return sdk.NewEvent(
		EventTypeOperatorshipTransferred,
		sdk.NewAttribute(AttributeKeyPreviousOperator, e.PreviousOperator),
		sdk.NewAttribute(AttributeKeyNewOperator, e.NewOperator),
	)
}

func isProposalEvent(eventType string) bool {
	switch eventType {
	case EventTypeProposalScheduled, EventTypeProposalCancelled, EventTypeProposalExecuted,
		EventTypeOperatorProposalApproved, EventTypeOperatorProposalCancelled, EventTypeOperatorProposalExecuted:
		return true
	}
	return false
}

func attributes(ev abci.Event) map[string]string {
	out := make(map[string]string, len(ev.Attributes))
	for _, a := range ev.Attributes {
		out[a.Key] = a.Value
	}
	return out
}

// ParseProposalEvent decodes any of the six proposal event kinds.
func ParseProposalEvent(ev abci.Event) (ProposalEvent, error) {
	if !isProposalEvent(ev.Type) {
		return ProposalEvent{}, errorsmod.Wrapf(ErrInvalidEncoding, "%q is not a proposal event", ev.Type)
	}
	a := attributes(ev)
	out := ProposalEvent{Type: ev.Type}

	for key, dst := range map[string]*common.Hash{
		AttributeKeyProposalHash: &out.ProposalHash,
		AttributeKeyTarget:       &out.Target,
	} {
		b, err := hexutil.Decode(a[key])
		if err != nil || len(b) != common.HashLength {
			return ProposalEvent{}, errorsmod.Wrapf(ErrInvalidEncoding, "attribute %q is not a 32-byte hex hash", key)
		}
		*dst = common.BytesToHash(b)
	}

	var err error
	if out.CallData, err = hexutil.Decode(a[AttributeKeyCallData]); err != nil {
		return ProposalEvent{}, errorsmod.Wrapf(ErrInvalidEncoding, "call data: %s", err)
	}
	if out.NativeValue, err = uint256.FromDecimal(a[AttributeKeyNativeValue]); err != nil {
		return ProposalEvent{}, errorsmod.Wrapf(ErrInvalidEncoding, "native value: %s", err)
	}
	if out.Eta, err = strconv.ParseUint(a[AttributeKeyEta], 10, 64); err != nil {
		return ProposalEvent{}, errorsmod.Wrapf(ErrInvalidEncoding, "eta: %s", err)
	}
	return out, nil
}

// ParseOperatorshipTransferredEvent decodes an EventTypeOperatorshipTransferred event.
func ParseOperatorshipTransferredEvent(ev abci.Event) (OperatorshipTransferredEvent, error) {
	if ev.Type != EventTypeOperatorshipTransferred {
		return OperatorshipTransferredEvent{}, errorsmod.Wrapf(ErrInvalidEncoding, "event type %q, expected %q", ev.Type, EventTypeOperatorshipTransferred)
	}
	a := attributes(ev)
	return OperatorshipTransferredEvent{
		PreviousOperator: a[AttributeKeyPreviousOperator],
		NewOperator:      a[AttributeKeyNewOperator],
	}, nil
}
