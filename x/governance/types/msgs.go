package types

import (
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
)

const (
	TypeMsgProcessGMP           = "process_gmp"
	TypeMsgExecuteProposal      = "execute_proposal"
	TypeMsgTransferOperatorship = "transfer_operatorship"
)

var (
	_ sdk.Msg = &MsgProcessGMP{}
	_ sdk.Msg = &MsgExecuteProposal{}
	_ sdk.Msg = &MsgTransferOperatorship{}
)

func validateAddress(field, addr string) error {
	if addr == "" {
		return errorsmod.Wrapf(sdkerrors.ErrInvalidRequest, "%s cannot be empty", field)
	}
	if _, err := sdk.AccAddressFromBech32(addr); err != nil {
		return errorsmod.Wrapf(sdkerrors.ErrInvalidAddress, "invalid %s address: %s", field, err)
	}
	return nil
}

func mustSigner(addr string) []sdk.AccAddress {
	acc, err := sdk.AccAddressFromBech32(addr)
	if err != nil {
		panic(err)
	}
	return []sdk.AccAddress{acc}
}

func signBytes(msg interface{}) []byte {
	bz, err := json.Marshal(msg)
	if err != nil {
		panic(err)
	}
	return sdk.MustSortJSON(bz)
}

// MsgProcessGMP delivers an approved gateway message carrying a governance
// command. The payload is inline, or staged at the gateway by PayloadPayer.
type MsgProcessGMP struct {
	Relayer      string               `json:"relayer"`
	Message      gatewaytypes.Message `json:"message"`
	Payload      hexutil.Bytes        `json:"payload,omitempty"`
	PayloadPayer string               `json:"payload_payer,omitempty"`
}

func (msg *MsgProcessGMP) ProtoMessage() {}
func (msg *MsgProcessGMP) Reset()        { *msg = MsgProcessGMP{} }
func (msg *MsgProcessGMP) String() string {
	return fmt.Sprintf("MsgProcessGMP{Relayer: %s, Message: %s}", msg.Relayer, msg.Message)
}

func (msg MsgProcessGMP) Route() string                { return RouterKey }
func (msg MsgProcessGMP) Type() string                 { return TypeMsgProcessGMP }
func (msg MsgProcessGMP) GetSigners() []sdk.AccAddress { return mustSigner(msg.Relayer) }
func (msg MsgProcessGMP) GetSignBytes() []byte         { return signBytes(&msg) }

func (msg MsgProcessGMP) ValidateBasic() error {
	if err := validateAddress("relayer", msg.Relayer); err != nil {
		return err
	}
	if err := msg.Message.ValidateBasic(); err != nil {
		return err
	}
	switch {
	case len(msg.Payload) > 0 && msg.PayloadPayer != "":
		return errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "payload and payload payer are mutually exclusive")
	case len(msg.Payload) == 0 && msg.PayloadPayer == "":
		return errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "payload or payload payer is required")
	case msg.PayloadPayer != "":
		return validateAddress("payload payer", msg.PayloadPayer)
	}
	return nil
}

// MsgExecuteProposal runs a scheduled proposal once its eta has passed, or
// earlier when the operator executes an operator-approved proposal.
type MsgExecuteProposal struct {
	Caller      string        `json:"caller"`
	Target      common.Hash   `json:"target"`
	CallData    hexutil.Bytes `json:"call_data"`
	NativeValue *uint256.Int  `json:"native_value"`
}

func (msg *MsgExecuteProposal) ProtoMessage() {}
func (msg *MsgExecuteProposal) Reset()        { *msg = MsgExecuteProposal{} }
func (msg *MsgExecuteProposal) String() string {
	return fmt.Sprintf("MsgExecuteProposal{Caller: %s, Target: %s}", msg.Caller, msg.Target.Hex())
}

func (msg MsgExecuteProposal) Route() string                { return RouterKey }
func (msg MsgExecuteProposal) Type() string                 { return TypeMsgExecuteProposal }
func (msg MsgExecuteProposal) GetSigners() []sdk.AccAddress { return mustSigner(msg.Caller) }
func (msg MsgExecuteProposal) GetSignBytes() []byte         { return signBytes(&msg) }

// ProposalHash returns the hash of the proposal the message executes.
func (msg MsgExecuteProposal) ProposalHash() common.Hash {
	return ProposalHash(msg.Target, msg.CallData, msg.NativeValue)
}

func (msg MsgExecuteProposal) ValidateBasic() error {
	if err := validateAddress("caller", msg.Caller); err != nil {
		return err
	}
	if msg.Target == (common.Hash{}) {
		return errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "target cannot be empty")
	}
	return nil
}

// MsgTransferOperatorship hands the governance operator role to another account.
type MsgTransferOperatorship struct {
	Operator    string `json:"operator"`
	NewOperator string `json:"new_operator"`
}

func (msg *MsgTransferOperatorship) ProtoMessage() {}
func (msg *MsgTransferOperatorship) Reset()        { *msg = MsgTransferOperatorship{} }
func (msg *MsgTransferOperatorship) String() string {
	return fmt.Sprintf("MsgTransferOperatorship{Operator: %s, NewOperator: %s}", msg.Operator, msg.NewOperator)
}

func (msg MsgTransferOperatorship) Route() string                { return RouterKey }
func (msg MsgTransferOperatorship) Type() string                 { return TypeMsgTransferOperatorship }
func (msg MsgTransferOperatorship) GetSigners() []sdk.AccAddress { return mustSigner(msg.Operator) }
func (msg MsgTransferOperatorship) GetSignBytes() []byte         { return signBytes(&msg) }

func (msg MsgTransferOperatorship) ValidateBasic() error {
	if err := validateAddress("operator", msg.Operator); err != nil {
		return err
	}
	return validateAddress("new operator", msg.NewOperator)
}
