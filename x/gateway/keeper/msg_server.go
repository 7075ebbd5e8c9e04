package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
)

type msgServer struct {
	Keeper
}

// NewMsgServerImpl returns an implementation of the MsgServer interface
// for the provided Keeper.
func NewMsgServerImpl(keeper Keeper) gatewaytypes.MsgServer {
	return &msgServer{Keeper: keeper}
}

var _ gatewaytypes.MsgServer = msgServer{}

// atomic runs fn on a cached context and commits its writes and events only
// when fn succeeds.
func atomic(goCtx context.Context, fn func(ctx sdk.Context) error) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	cacheCtx, write := ctx.CacheContext()
	if err := fn(cacheCtx); err != nil {
		return err
	}
	write()
	return nil
}

func accAddress(field, addr string) (sdk.AccAddress, error) {
	acc, err := sdk.AccAddressFromBech32(addr)
	if err != nil {
		return nil, errorsmod.Wrapf(sdkerrors.ErrInvalidAddress, "invalid %s address: %s", field, err)
	}
	return acc, nil
}

// InitializeVerificationSession handles MsgInitializeVerificationSession messages
func (k msgServer) InitializeVerificationSession(goCtx context.Context, msg *gatewaytypes.MsgInitializeVerificationSession) (*gatewaytypes.MsgInitializeVerificationSessionResponse, error) {
	var sessionAddress []byte
	err := atomic(goCtx, func(ctx sdk.Context) error {
		var err error
		sessionAddress, err = k.Keeper.InitializeSession(ctx, msg.PayloadRoot, msg.SigningSetHash)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &gatewaytypes.MsgInitializeVerificationSessionResponse{SessionAddress: sessionAddress}, nil
}

// VerifySignature handles MsgVerifySignature messages
func (k msgServer) VerifySignature(goCtx context.Context, msg *gatewaytypes.MsgVerifySignature) (*gatewaytypes.MsgVerifySignatureResponse, error) {
	resp := &gatewaytypes.MsgVerifySignatureResponse{}
	err := atomic(goCtx, func(ctx sdk.Context) error {
		session, duplicate, err := k.Keeper.VerifySignature(ctx, msg.PayloadRoot, msg.SignerLeaf, msg.SignerProof, msg.Signature)
		if err != nil {
			return err
		}
		resp.Duplicate = duplicate
		resp.AccumulatedWeight = session.AccumulatedWeight
		resp.IsValid = session.IsValid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ApproveMessages handles MsgApproveMessages messages
func (k msgServer) ApproveMessages(goCtx context.Context, msg *gatewaytypes.MsgApproveMessages) (*gatewaytypes.MsgApproveMessagesResponse, error) {
	resp := &gatewaytypes.MsgApproveMessagesResponse{}
	err := atomic(goCtx, func(ctx sdk.Context) error {
		var err error
		resp.CommandIDs, err = k.Keeper.ApproveMessages(ctx, msg.PayloadRoot, msg.Approvals)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RotateVerifierSet handles MsgRotateVerifierSet messages
func (k msgServer) RotateVerifierSet(goCtx context.Context, msg *gatewaytypes.MsgRotateVerifierSet) (*gatewaytypes.MsgRotateVerifierSetResponse, error) {
	resp := &gatewaytypes.MsgRotateVerifierSetResponse{}
	err := atomic(goCtx, func(ctx sdk.Context) error {
		cosigned := false
		if msg.Operator != "" {
			operator, err := accAddress("operator", msg.Operator)
			if err != nil {
				return err
			}
			if !k.Keeper.IsOperator(ctx, operator) {
				return errorsmod.Wrapf(gatewaytypes.ErrOperatorOnly, "%s is not the gateway operator", msg.Operator)
			}
			cosigned = true
		}
		var err error
		resp.Epoch, err = k.Keeper.RotateVerifierSet(ctx, msg.PayloadRoot, msg.NewVerifierSetHash, cosigned)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ValidateMessage handles MsgValidateMessage messages
func (k msgServer) ValidateMessage(goCtx context.Context, msg *gatewaytypes.MsgValidateMessage) (*gatewaytypes.MsgValidateMessageResponse, error) {
	resp := &gatewaytypes.MsgValidateMessageResponse{}
	err := atomic(goCtx, func(ctx sdk.Context) error {
		var err error
		resp.CommandID, err = k.Keeper.ValidateMessage(ctx, msg.Caller, msg.Message)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CallContract handles MsgCallContract messages
func (k msgServer) CallContract(goCtx context.Context, msg *gatewaytypes.MsgCallContract) (*gatewaytypes.MsgCallContractResponse, error) {
	sender, err := accAddress("sender", msg.Sender)
	if err != nil {
		return nil, err
	}
	resp := &gatewaytypes.MsgCallContractResponse{}
	err = atomic(goCtx, func(ctx sdk.Context) error {
		var err error
		resp.PayloadHash, err = k.Keeper.CallContract(ctx, sender, msg.DestinationChain, msg.DestinationAddress, msg.Payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// InitializeMessagePayload handles MsgInitializeMessagePayload messages
func (k msgServer) InitializeMessagePayload(goCtx context.Context, msg *gatewaytypes.MsgInitializeMessagePayload) (*gatewaytypes.MsgInitializeMessagePayloadResponse, error) {
	payer, err := accAddress("payer", msg.Payer)
	if err != nil {
		return nil, err
	}
	if err := k.Keeper.InitializeMessagePayload(sdk.UnwrapSDKContext(goCtx), payer, msg.CommandID, msg.BufferSize); err != nil {
		return nil, err
	}
	return &gatewaytypes.MsgInitializeMessagePayloadResponse{}, nil
}

// WriteMessagePayload handles MsgWriteMessagePayload messages
func (k msgServer) WriteMessagePayload(goCtx context.Context, msg *gatewaytypes.MsgWriteMessagePayload) (*gatewaytypes.MsgWriteMessagePayloadResponse, error) {
	payer, err := accAddress("payer", msg.Payer)
	if err != nil {
		return nil, err
	}
	if err := k.Keeper.WriteMessagePayload(sdk.UnwrapSDKContext(goCtx), payer, msg.CommandID, msg.Offset, msg.Bytes); err != nil {
		return nil, err
	}
	return &gatewaytypes.MsgWriteMessagePayloadResponse{}, nil
}

// CommitMessagePayload handles MsgCommitMessagePayload messages
func (k msgServer) CommitMessagePayload(goCtx context.Context, msg *gatewaytypes.MsgCommitMessagePayload) (*gatewaytypes.MsgCommitMessagePayloadResponse, error) {
	payer, err := accAddress("payer", msg.Payer)
	if err != nil {
		return nil, err
	}
	resp := &gatewaytypes.MsgCommitMessagePayloadResponse{}
	err = atomic(goCtx, func(ctx sdk.Context) error {
		var err error
		resp.PayloadHash, err = k.Keeper.CommitMessagePayload(ctx, payer, msg.CommandID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CloseMessagePayload handles MsgCloseMessagePayload messages
func (k msgServer) CloseMessagePayload(goCtx context.Context, msg *gatewaytypes.MsgCloseMessagePayload) (*gatewaytypes.MsgCloseMessagePayloadResponse, error) {
	payer, err := accAddress("payer", msg.Payer)
	if err != nil {
		return nil, err
	}
	if err := k.Keeper.CloseMessagePayload(sdk.UnwrapSDKContext(goCtx), payer, msg.CommandID); err != nil {
		return nil, err
	}
	return &gatewaytypes.MsgCloseMessagePayloadResponse{}, nil
}

// TransferOperatorship handles MsgTransferOperatorship messages
func (k msgServer) TransferOperatorship(goCtx context.Context, msg *gatewaytypes.MsgTransferOperatorship) (*gatewaytypes.MsgTransferOperatorshipResponse, error) {
	caller, err := accAddress("authority", msg.Authority)
	if err != nil {
		return nil, err
	}
	newOperator, err := accAddress("new operator", msg.NewOperator)
	if err != nil {
		return nil, err
	}
	if err := atomic(goCtx, func(ctx sdk.Context) error {
		return k.Keeper.TransferOperatorship(ctx, caller, newOperator)
	}); err != nil {
		return nil, err
	}
	return &gatewaytypes.MsgTransferOperatorshipResponse{}, nil
}

// UpdateConfig handles MsgUpdateConfig messages
func (k msgServer) UpdateConfig(goCtx context.Context, msg *gatewaytypes.MsgUpdateConfig) (*gatewaytypes.MsgUpdateConfigResponse, error) {
	caller, err := accAddress("authority", msg.Authority)
	if err != nil {
		return nil, err
	}
	if err := atomic(goCtx, func(ctx sdk.Context) error {
		return k.Keeper.UpdateConfig(ctx, caller, msg.PreviousVerifierSetRetention, msg.MinimumRotationDelay)
	}); err != nil {
		return nil, err
	}
	return &gatewaytypes.MsgUpdateConfigResponse{}, nil
}

// SetExecutionInfo handles MsgSetExecutionInfo messages
func (k msgServer) SetExecutionInfo(goCtx context.Context, msg *gatewaytypes.MsgSetExecutionInfo) (*gatewaytypes.MsgSetExecutionInfoResponse, error) {
	destination, err := accAddress("destination", msg.Destination)
	if err != nil {
		return nil, err
	}
	if err := k.Keeper.SetExecutionInfo(sdk.UnwrapSDKContext(goCtx), destination, msg.Descriptor); err != nil {
		return nil, err
	}
	return &gatewaytypes.MsgSetExecutionInfoResponse{}, nil
}
