package types

import (
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	TypeMsgInitializeVerificationSession = "initialize_verification_session"
	TypeMsgVerifySignature               = "verify_signature"
	TypeMsgApproveMessages               = "approve_messages"
	TypeMsgRotateVerifierSet             = "rotate_verifier_set"
	TypeMsgValidateMessage               = "validate_message"
	TypeMsgCallContract                  = "call_contract"
	TypeMsgInitializeMessagePayload      = "initialize_message_payload"
	TypeMsgWriteMessagePayload           = "write_message_payload"
	TypeMsgCommitMessagePayload          = "commit_message_payload"
	TypeMsgCloseMessagePayload           = "close_message_payload"
	TypeMsgTransferOperatorship          = "transfer_operatorship"
	TypeMsgUpdateConfig                  = "update_config"
	TypeMsgSetExecutionInfo              = "set_execution_info"
)

var (
	_ sdk.Msg = &MsgInitializeVerificationSession{}
	_ sdk.Msg = &MsgVerifySignature{}
	_ sdk.Msg = &MsgApproveMessages{}
	_ sdk.Msg = &MsgRotateVerifierSet{}
	_ sdk.Msg = &MsgValidateMessage{}
	_ sdk.Msg = &MsgCallContract{}
	_ sdk.Msg = &MsgInitializeMessagePayload{}
	_ sdk.Msg = &MsgWriteMessagePayload{}
	_ sdk.Msg = &MsgCommitMessagePayload{}
	_ sdk.Msg = &MsgCloseMessagePayload{}
	_ sdk.Msg = &MsgTransferOperatorship{}
	_ sdk.Msg = &MsgUpdateConfig{}
	_ sdk.Msg = &MsgSetExecutionInfo{}
)

// MaxApprovalsPerMsg bounds the batch size of MsgApproveMessages.
const MaxApprovalsPerMsg = 64

func validateAddress(field, addr string) error {
	if addr == "" {
		return errorsmod.Wrapf(sdkerrors.ErrInvalidRequest, "%s cannot be empty", field)
	}
	if _, err := sdk.AccAddressFromBech32(addr); err != nil {
		return errorsmod.Wrapf(sdkerrors.ErrInvalidAddress, "invalid %s address: %s", field, err)
	}
	return nil
}

func mustSigners(addrs ...string) []sdk.AccAddress {
	out := make([]sdk.AccAddress, 0, len(addrs))
	for _, a := range addrs {
		acc, err := sdk.AccAddressFromBech32(a)
		if err != nil {
			panic(err)
		}
		out = append(out, acc)
	}
	return out
}

func signBytes(msg interface{}) []byte {
	bz, err := json.Marshal(msg)
	if err != nil {
		panic(err)
	}
	return sdk.MustSortJSON(bz)
}

func requireHash(field string, h common.Hash) error {
	if h == (common.Hash{}) {
		return errorsmod.Wrapf(sdkerrors.ErrInvalidRequest, "%s cannot be empty", field)
	}
	return nil
}

// MsgInitializeVerificationSession opens a signature session for a payload root.
type MsgInitializeVerificationSession struct {
	Relayer        string      `json:"relayer"`
	PayloadRoot    common.Hash `json:"payload_root"`
	SigningSetHash common.Hash `json:"signing_set_hash"`
}

func (msg *MsgInitializeVerificationSession) ProtoMessage() {}
func (msg *MsgInitializeVerificationSession) Reset()        { *msg = MsgInitializeVerificationSession{} }
func (msg *MsgInitializeVerificationSession) String() string {
	return fmt.Sprintf("MsgInitializeVerificationSession{Relayer: %s, PayloadRoot: %s}", msg.Relayer, msg.PayloadRoot.Hex())
}

func (msg MsgInitializeVerificationSession) Route() string { return RouterKey }
func (msg MsgInitializeVerificationSession) Type() string  { return TypeMsgInitializeVerificationSession }
func (msg MsgInitializeVerificationSession) GetSigners() []sdk.AccAddress {
	return mustSigners(msg.Relayer)
}
func (msg MsgInitializeVerificationSession) GetSignBytes() []byte { return signBytes(&msg) }

func (msg MsgInitializeVerificationSession) ValidateBasic() error {
	if err := validateAddress("relayer", msg.Relayer); err != nil {
		return err
	}
	if err := requireHash("payload root", msg.PayloadRoot); err != nil {
		return err
	}
	return requireHash("signing set hash", msg.SigningSetHash)
}

// MsgVerifySignature submits one signer's signature over a payload root
// together with the proof that the signer belongs to the signing set.
type MsgVerifySignature struct {
	Relayer     string        `json:"relayer"`
	PayloadRoot common.Hash   `json:"payload_root"`
	SignerLeaf  SignerLeaf    `json:"signer_leaf"`
	SignerProof MerkleProof   `json:"signer_proof"`
	Signature   hexutil.Bytes `json:"signature"`
}

func (msg *MsgVerifySignature) ProtoMessage() {}
func (msg *MsgVerifySignature) Reset()        { *msg = MsgVerifySignature{} }
func (msg *MsgVerifySignature) String() string {
	return fmt.Sprintf("MsgVerifySignature{Relayer: %s, PayloadRoot: %s, Position: %d}", msg.Relayer, msg.PayloadRoot.Hex(), msg.SignerLeaf.Position)
}

func (msg MsgVerifySignature) Route() string                { return RouterKey }
func (msg MsgVerifySignature) Type() string                 { return TypeMsgVerifySignature }
func (msg MsgVerifySignature) GetSigners() []sdk.AccAddress { return mustSigners(msg.Relayer) }
func (msg MsgVerifySignature) GetSignBytes() []byte         { return signBytes(&msg) }

func (msg MsgVerifySignature) ValidateBasic() error {
	if err := validateAddress("relayer", msg.Relayer); err != nil {
		return err
	}
	if err := requireHash("payload root", msg.PayloadRoot); err != nil {
		return err
	}
	if err := msg.SignerLeaf.Validate(); err != nil {
		return err
	}
	if len(msg.Signature) == 0 {
		return errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "signature cannot be empty")
	}
	return nil
}

// MessageApproval pairs a message with its inclusion proof in a payload.
type MessageApproval struct {
	Message Message     `json:"message"`
	Proof   MerkleProof `json:"proof"`
}

// MsgApproveMessages approves messages of a validated payload.
type MsgApproveMessages struct {
	Relayer     string            `json:"relayer"`
	PayloadRoot common.Hash       `json:"payload_root"`
	Approvals   []MessageApproval `json:"approvals"`
}

func (msg *MsgApproveMessages) ProtoMessage() {}
func (msg *MsgApproveMessages) Reset()        { *msg = MsgApproveMessages{} }
func (msg *MsgApproveMessages) String() string {
	return fmt.Sprintf("MsgApproveMessages{Relayer: %s, PayloadRoot: %s, Count: %d}", msg.Relayer, msg.PayloadRoot.Hex(), len(msg.Approvals))
}

func (msg MsgApproveMessages) Route() string                { return RouterKey }
func (msg MsgApproveMessages) Type() string                 { return TypeMsgApproveMessages }
func (msg MsgApproveMessages) GetSigners() []sdk.AccAddress { return mustSigners(msg.Relayer) }
func (msg MsgApproveMessages) GetSignBytes() []byte         { return signBytes(&msg) }

func (msg MsgApproveMessages) ValidateBasic() error {
	if err := validateAddress("relayer", msg.Relayer); err != nil {
		return err
	}
	if err := requireHash("payload root", msg.PayloadRoot); err != nil {
		return err
	}
	if len(msg.Approvals) == 0 {
		return errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "approvals cannot be empty")
	}
	if len(msg.Approvals) > MaxApprovalsPerMsg {
		return errorsmod.Wrapf(sdkerrors.ErrInvalidRequest, "at most %d approvals per message", MaxApprovalsPerMsg)
	}
	for i, a := range msg.Approvals {
		if err := a.Message.ValidateBasic(); err != nil {
			return errorsmod.Wrapf(err, "approval %d", i)
		}
	}
	return nil
}

// MsgRotateVerifierSet installs the verifier set committed by a validated
// rotation payload. Operator is an optional co-signer.
type MsgRotateVerifierSet struct {
	Relayer            string      `json:"relayer"`
	PayloadRoot        common.Hash `json:"payload_root"`
	NewVerifierSetHash common.Hash `json:"new_verifier_set_hash"`
	Operator           string      `json:"operator,omitempty"`
}

func (msg *MsgRotateVerifierSet) ProtoMessage() {}
func (msg *MsgRotateVerifierSet) Reset()        { *msg = MsgRotateVerifierSet{} }
func (msg *MsgRotateVerifierSet) String() string {
	return fmt.Sprintf("MsgRotateVerifierSet{Relayer: %s, NewVerifierSetHash: %s}", msg.Relayer, msg.NewVerifierSetHash.Hex())
}

func (msg MsgRotateVerifierSet) Route() string { return RouterKey }
func (msg MsgRotateVerifierSet) Type() string  { return TypeMsgRotateVerifierSet }
func (msg MsgRotateVerifierSet) GetSigners() []sdk.AccAddress {
	if msg.Operator != "" && msg.Operator != msg.Relayer {
		return mustSigners(msg.Relayer, msg.Operator)
	}
	return mustSigners(msg.Relayer)
}
func (msg MsgRotateVerifierSet) GetSignBytes() []byte { return signBytes(&msg) }

func (msg MsgRotateVerifierSet) ValidateBasic() error {
	if err := validateAddress("relayer", msg.Relayer); err != nil {
		return err
	}
	if msg.Operator != "" {
		if err := validateAddress("operator", msg.Operator); err != nil {
			return err
		}
	}
	if err := requireHash("payload root", msg.PayloadRoot); err != nil {
		return err
	}
	return requireHash("new verifier set hash", msg.NewVerifierSetHash)
}

// MsgValidateMessage consumes an approved message on behalf of its destination.
type MsgValidateMessage struct {
	Caller  string  `json:"caller"`
	Message Message `json:"message"`
}

func (msg *MsgValidateMessage) ProtoMessage() {}
func (msg *MsgValidateMessage) Reset()        { *msg = MsgValidateMessage{} }
func (msg *MsgValidateMessage) String() string {
	return fmt.Sprintf("MsgValidateMessage{Caller: %s, Message: %s}", msg.Caller, msg.Message)
}

func (msg MsgValidateMessage) Route() string                { return RouterKey }
func (msg MsgValidateMessage) Type() string                 { return TypeMsgValidateMessage }
func (msg MsgValidateMessage) GetSigners() []sdk.AccAddress { return mustSigners(msg.Caller) }
func (msg MsgValidateMessage) GetSignBytes() []byte         { return signBytes(&msg) }

func (msg MsgValidateMessage) ValidateBasic() error {
	if err := validateAddress("caller", msg.Caller); err != nil {
		return err
	}
	return msg.Message.ValidateBasic()
}

// MsgCallContract sends a message to a remote chain.
type MsgCallContract struct {
	Sender             string        `json:"sender"`
	DestinationChain   string        `json:"destination_chain"`
	DestinationAddress string        `json:"destination_address"`
	Payload            hexutil.Bytes `json:"payload"`
}

func (msg *MsgCallContract) ProtoMessage() {}
func (msg *MsgCallContract) Reset()        { *msg = MsgCallContract{} }
func (msg *MsgCallContract) String() string {
	return fmt.Sprintf("MsgCallContract{Sender: %s, Destination: %s:%s}", msg.Sender, msg.DestinationChain, msg.DestinationAddress)
}

func (msg MsgCallContract) Route() string                { return RouterKey }
func (msg MsgCallContract) Type() string                 { return TypeMsgCallContract }
func (msg MsgCallContract) GetSigners() []sdk.AccAddress { return mustSigners(msg.Sender) }
func (msg MsgCallContract) GetSignBytes() []byte         { return signBytes(&msg) }

func (msg MsgCallContract) ValidateBasic() error {
	if err := validateAddress("sender", msg.Sender); err != nil {
		return err
	}
	if msg.DestinationChain == "" {
		return errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "destination chain cannot be empty")
	}
	if msg.DestinationAddress == "" {
		return errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "destination address cannot be empty")
	}
	return nil
}

// MsgInitializeMessagePayload allocates a staging buffer for a large payload.
type MsgInitializeMessagePayload struct {
	Payer      string      `json:"payer"`
	CommandID  common.Hash `json:"command_id"`
	BufferSize uint64      `json:"buffer_size"`
}

func (msg *MsgInitializeMessagePayload) ProtoMessage() {}
func (msg *MsgInitializeMessagePayload) Reset()        { *msg = MsgInitializeMessagePayload{} }
func (msg *MsgInitializeMessagePayload) String() string {
	return fmt.Sprintf("MsgInitializeMessagePayload{Payer: %s, CommandID: %s, Size: %d}", msg.Payer, msg.CommandID.Hex(), msg.BufferSize)
}

func (msg MsgInitializeMessagePayload) Route() string                { return RouterKey }
func (msg MsgInitializeMessagePayload) Type() string                 { return TypeMsgInitializeMessagePayload }
func (msg MsgInitializeMessagePayload) GetSigners() []sdk.AccAddress { return mustSigners(msg.Payer) }
func (msg MsgInitializeMessagePayload) GetSignBytes() []byte         { return signBytes(&msg) }

func (msg MsgInitializeMessagePayload) ValidateBasic() error {
	if err := validateAddress("payer", msg.Payer); err != nil {
		return err
	}
	if err := requireHash("command id", msg.CommandID); err != nil {
		return err
	}
	if msg.BufferSize == 0 || msg.BufferSize > MaxMessagePayloadSize {
		return errorsmod.Wrapf(ErrMessagePayloadTooLarge, "buffer size must be in (0, %d]", MaxMessagePayloadSize)
	}
	return nil
}

// MsgWriteMessagePayload writes a chunk into a staging buffer.
type MsgWriteMessagePayload struct {
	Payer     string        `json:"payer"`
	CommandID common.Hash   `json:"command_id"`
	Offset    uint64        `json:"offset"`
	Bytes     hexutil.Bytes `json:"bytes"`
}

func (msg *MsgWriteMessagePayload) ProtoMessage() {}
func (msg *MsgWriteMessagePayload) Reset()        { *msg = MsgWriteMessagePayload{} }
func (msg *MsgWriteMessagePayload) String() string {
	return fmt.Sprintf("MsgWriteMessagePayload{Payer: %s, CommandID: %s, Offset: %d, Len: %d}", msg.Payer, msg.CommandID.Hex(), msg.Offset, len(msg.Bytes))
}

func (msg MsgWriteMessagePayload) Route() string                { return RouterKey }
func (msg MsgWriteMessagePayload) Type() string                 { return TypeMsgWriteMessagePayload }
func (msg MsgWriteMessagePayload) GetSigners() []sdk.AccAddress { return mustSigners(msg.Payer) }
func (msg MsgWriteMessagePayload) GetSignBytes() []byte         { return signBytes(&msg) }

func (msg MsgWriteMessagePayload) ValidateBasic() error {
	if err := validateAddress("payer", msg.Payer); err != nil {
		return err
	}
	if err := requireHash("command id", msg.CommandID); err != nil {
		return err
	}
	if len(msg.Bytes) == 0 {
		return errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "bytes cannot be empty")
	}
	return nil
}

// MsgCommitMessagePayload seals a staging buffer and records its hash.
type MsgCommitMessagePayload struct {
	Payer     string      `json:"payer"`
	CommandID common.Hash `json:"command_id"`
}

func (msg *MsgCommitMessagePayload) ProtoMessage() {}
func (msg *MsgCommitMessagePayload) Reset()        { *msg = MsgCommitMessagePayload{} }
func (msg *MsgCommitMessagePayload) String() string {
	return fmt.Sprintf("MsgCommitMessagePayload{Payer: %s, CommandID: %s}", msg.Payer, msg.CommandID.Hex())
}

func (msg MsgCommitMessagePayload) Route() string                { return RouterKey }
func (msg MsgCommitMessagePayload) Type() string                 { return TypeMsgCommitMessagePayload }
func (msg MsgCommitMessagePayload) GetSigners() []sdk.AccAddress { return mustSigners(msg.Payer) }
func (msg MsgCommitMessagePayload) GetSignBytes() []byte         { return signBytes(&msg) }

func (msg MsgCommitMessagePayload) ValidateBasic() error {
	if err := validateAddress("payer", msg.Payer); err != nil {
		return err
	}
	return requireHash("command id", msg.CommandID)
}

// MsgCloseMessagePayload deletes a staging buffer.
type MsgCloseMessagePayload struct {
	Payer     string      `json:"payer"`
	CommandID common.Hash `json:"command_id"`
}

func (msg *MsgCloseMessagePayload) ProtoMessage() {}
func (msg *MsgCloseMessagePayload) Reset()        { *msg = MsgCloseMessagePayload{} }
func (msg *MsgCloseMessagePayload) String() string {
	return fmt.Sprintf("MsgCloseMessagePayload{Payer: %s, CommandID: %s}", msg.Payer, msg.CommandID.Hex())
}

func (msg MsgCloseMessagePayload) Route() string                { return RouterKey }
func (msg MsgCloseMessagePayload) Type() string                 { return TypeMsgCloseMessagePayload }
func (msg MsgCloseMessagePayload) GetSigners() []sdk.AccAddress { return mustSigners(msg.Payer) }
func (msg MsgCloseMessagePayload) GetSignBytes() []byte         { return signBytes(&msg) }

func (msg MsgCloseMessagePayload) ValidateBasic() error {
	if err := validateAddress("payer", msg.Payer); err != nil {
		return err
	}
	return requireHash("command id", msg.CommandID)
}

// MsgTransferOperatorship replaces the gateway operator.
type MsgTransferOperatorship struct {
	Authority   string `json:"authority"`
	NewOperator string `json:"new_operator"`
}

func (msg *MsgTransferOperatorship) ProtoMessage() {}
func (msg *MsgTransferOperatorship) Reset()        { *msg = MsgTransferOperatorship{} }
func (msg *MsgTransferOperatorship) String() string {
	return fmt.Sprintf("MsgTransferOperatorship{Authority: %s, NewOperator: %s}", msg.Authority, msg.NewOperator)
}

func (msg MsgTransferOperatorship) Route() string                { return RouterKey }
func (msg MsgTransferOperatorship) Type() string                 { return TypeMsgTransferOperatorship }
func (msg MsgTransferOperatorship) GetSigners() []sdk.AccAddress { return mustSigners(msg.Authority) }
func (msg MsgTransferOperatorship) GetSignBytes() []byte         { return signBytes(&msg) }

func (msg MsgTransferOperatorship) ValidateBasic() error {
	if err := validateAddress("authority", msg.Authority); err != nil {
		return err
	}
	return validateAddress("new operator", msg.NewOperator)
}

// MsgUpdateConfig changes the rotation policy.
type MsgUpdateConfig struct {
	Authority                    string `json:"authority"`
	PreviousVerifierSetRetention uint64 `json:"previous_verifier_set_retention"`
	MinimumRotationDelay         uint64 `json:"minimum_rotation_delay"`
}

func (msg *MsgUpdateConfig) ProtoMessage() {}
func (msg *MsgUpdateConfig) Reset()        { *msg = MsgUpdateConfig{} }
func (msg *MsgUpdateConfig) String() string {
	return fmt.Sprintf("MsgUpdateConfig{Authority: %s, Retention: %d, RotationDelay: %d}", msg.Authority, msg.PreviousVerifierSetRetention, msg.MinimumRotationDelay)
}

func (msg MsgUpdateConfig) Route() string                { return RouterKey }
func (msg MsgUpdateConfig) Type() string                 { return TypeMsgUpdateConfig }
func (msg MsgUpdateConfig) GetSigners() []sdk.AccAddress { return mustSigners(msg.Authority) }
func (msg MsgUpdateConfig) GetSignBytes() []byte         { return signBytes(&msg) }

func (msg MsgUpdateConfig) ValidateBasic() error {
	return validateAddress("authority", msg.Authority)
}

// MsgSetExecutionInfo stores the relayer dispatch descriptor of a destination.
type MsgSetExecutionInfo struct {
	Destination string        `json:"destination"`
	Descriptor  hexutil.Bytes `json:"descriptor"`
}

func (msg *MsgSetExecutionInfo) ProtoMessage() {}
func (msg *MsgSetExecutionInfo) Reset()        { *msg = MsgSetExecutionInfo{} }
func (msg *MsgSetExecutionInfo) String() string {
	return fmt.Sprintf("MsgSetExecutionInfo{Destination: %s, Len: %d}", msg.Destination, len(msg.Descriptor))
}

func (msg MsgSetExecutionInfo) Route() string                { return RouterKey }
func (msg MsgSetExecutionInfo) Type() string                 { return TypeMsgSetExecutionInfo }
func (msg MsgSetExecutionInfo) GetSigners() []sdk.AccAddress { return mustSigners(msg.Destination) }
func (msg MsgSetExecutionInfo) GetSignBytes() []byte         { return signBytes(&msg) }

func (msg MsgSetExecutionInfo) ValidateBasic() error {
	if err := validateAddress("destination", msg.Destination); err != nil {
		return err
	}
	if len(msg.Descriptor) == 0 {
		return errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "descriptor cannot be empty")
	}
	if len(msg.Descriptor) > MaxMessagePayloadSize {
		return errorsmod.Wrapf(sdkerrors.ErrInvalidRequest, "descriptor exceeds %d bytes", MaxMessagePayloadSize)
	}
	return nil
}
