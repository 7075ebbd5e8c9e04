package types

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MsgInitializeVerificationSessionResponse defines the response for MsgInitializeVerificationSession
type MsgInitializeVerificationSessionResponse struct {
	SessionAddress []byte `json:"session_address"`
}

// MsgVerifySignatureResponse defines the response for MsgVerifySignature
type MsgVerifySignatureResponse struct {
	Duplicate         bool         `json:"duplicate"`
	AccumulatedWeight *uint256.Int `json:"accumulated_weight"`
	IsValid           bool         `json:"is_valid"`
}

// MsgApproveMessagesResponse defines the response for MsgApproveMessages
type MsgApproveMessagesResponse struct {
	CommandIDs []common.Hash `json:"command_ids"`
}

// MsgRotateVerifierSetResponse defines the response for MsgRotateVerifierSet
type MsgRotateVerifierSetResponse struct {
	Epoch *uint256.Int `json:"epoch"`
}

// MsgValidateMessageResponse defines the response for MsgValidateMessage
type MsgValidateMessageResponse struct {
	CommandID common.Hash `json:"command_id"`
}

// MsgCallContractResponse defines the response for MsgCallContract
type MsgCallContractResponse struct {
	PayloadHash common.Hash `json:"payload_hash"`
}

// MsgInitializeMessagePayloadResponse defines the response for MsgInitializeMessagePayload
type MsgInitializeMessagePayloadResponse struct{}

// MsgWriteMessagePayloadResponse defines the response for MsgWriteMessagePayload
type MsgWriteMessagePayloadResponse struct{}

// MsgCommitMessagePayloadResponse defines the response for MsgCommitMessagePayload
type MsgCommitMessagePayloadResponse struct {
	PayloadHash common.Hash `json:"payload_hash"`
}

// MsgCloseMessagePayloadResponse defines the response for MsgCloseMessagePayload
type MsgCloseMessagePayloadResponse struct{}

// MsgTransferOperatorshipResponse defines the response for MsgTransferOperatorship
type MsgTransferOperatorshipResponse struct{}

// MsgUpdateConfigResponse defines the response for MsgUpdateConfig
type MsgUpdateConfigResponse struct{}

// MsgSetExecutionInfoResponse defines the response for MsgSetExecutionInfo
type MsgSetExecutionInfoResponse struct{}

// MsgServer defines the msg service for the gateway module
type MsgServer interface {
	InitializeVerificationSession(ctx context.Context, msg *MsgInitializeVerificationSession) (*MsgInitializeVerificationSessionResponse, error)
	VerifySignature(ctx context.Context, msg *MsgVerifySignature) (*MsgVerifySignatureResponse, error)
	ApproveMessages(ctx context.Context, msg *MsgApproveMessages) (*MsgApproveMessagesResponse, error)
	RotateVerifierSet(ctx context.Context, msg *MsgRotateVerifierSet) (*MsgRotateVerifierSetResponse, error)
	ValidateMessage(ctx context.Context, msg *MsgValidateMessage) (*MsgValidateMessageResponse, error)
	CallContract(ctx context.Context, msg *MsgCallContract) (*MsgCallContractResponse, error)
	InitializeMessagePayload(ctx context.Context, msg *MsgInitializeMessagePayload) (*MsgInitializeMessagePayloadResponse, error)
	WriteMessagePayload(ctx context.Context, msg *MsgWriteMessagePayload) (*MsgWriteMessagePayloadResponse, error)
	CommitMessagePayload(ctx context.Context, msg *MsgCommitMessagePayload) (*MsgCommitMessagePayloadResponse, error)
	CloseMessagePayload(ctx context.Context, msg *MsgCloseMessagePayload) (*MsgCloseMessagePayloadResponse, error)
	TransferOperatorship(ctx context.Context, msg *MsgTransferOperatorship) (*MsgTransferOperatorshipResponse, error)
	UpdateConfig(ctx context.Context, msg *MsgUpdateConfig) (*MsgUpdateConfigResponse, error)
	SetExecutionInfo(ctx context.Context, msg *MsgSetExecutionInfo) (*MsgSetExecutionInfoResponse, error)
}

// RouteMsg dispatches msg to the matching MsgServer handler.
func RouteMsg(ctx context.Context, srv MsgServer, msg sdk.Msg) (interface{}, error) {
	switch m := msg.(type) {
	case *MsgInitializeVerificationSession:
		return srv.InitializeVerificationSession(ctx, m)
	case *MsgVerifySignature:
		return srv.VerifySignature(ctx, m)
	case *MsgApproveMessages:
		return srv.ApproveMessages(ctx, m)
	case *MsgRotateVerifierSet:
		return srv.RotateVerifierSet(ctx, m)
	case *MsgValidateMessage:
		return srv.ValidateMessage(ctx, m)
	case *MsgCallContract:
		return srv.CallContract(ctx, m)
	case *MsgInitializeMessagePayload:
		return srv.InitializeMessagePayload(ctx, m)
	case *MsgWriteMessagePayload:
		return srv.WriteMessagePayload(ctx, m)
	case *MsgCommitMessagePayload:
		return srv.CommitMessagePayload(ctx, m)
	case *MsgCloseMessagePayload:
		return srv.CloseMessagePayload(ctx, m)
	case *MsgTransferOperatorship:
		return srv.TransferOperatorship(ctx, m)
	case *MsgUpdateConfig:
		return srv.UpdateConfig(ctx, m)
	case *MsgSetExecutionInfo:
		return srv.SetExecutionInfo(ctx, m)
	default:
		return nil, errorsmod.Wrapf(sdkerrors.ErrUnknownRequest, "unrecognized %s message type: %T", ModuleName, msg)
	}
}
