package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
)

// Querier serves read-only gateway state.
type Querier struct {
	Keeper
}

// NewQuerier returns a Querier over keeper.
func NewQuerier(keeper Keeper) Querier {
	return Querier{Keeper: keeper}
}

func (q Querier) Config(goCtx context.Context, _ *gatewaytypes.QueryConfigRequest) (*gatewaytypes.QueryConfigResponse, error) {
	config, err := q.GetConfig(sdk.UnwrapSDKContext(goCtx))
	if err != nil {
		return nil, err
	}
	return &gatewaytypes.QueryConfigResponse{Config: config}, nil
}

func (q Querier) VerifierSetTracker(goCtx context.Context, req *gatewaytypes.QueryVerifierSetTrackerRequest) (*gatewaytypes.QueryVerifierSetTrackerResponse, error) {
	if req == nil {
		return nil, errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "empty request")
	}
	ctx := sdk.UnwrapSDKContext(goCtx)
	config, err := q.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	tracker, found := q.GetVerifierSetTracker(ctx, req.VerifierSetHash)
	if !found {
		return nil, errorsmod.Wrapf(gatewaytypes.ErrVerifierSetNotFound, "%s", req.VerifierSetHash.Hex())
	}
	return &gatewaytypes.QueryVerifierSetTrackerResponse{Tracker: tracker, IsLive: config.IsLive(tracker.Epoch)}, nil
}

func (q Querier) Session(goCtx context.Context, req *gatewaytypes.QuerySessionRequest) (*gatewaytypes.QuerySessionResponse, error) {
	if req == nil {
		return nil, errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "empty request")
	}
	session, err := q.GetSession(sdk.UnwrapSDKContext(goCtx), req.PayloadRoot)
	if err != nil {
		return nil, err
	}
	return &gatewaytypes.QuerySessionResponse{Session: session, Status: session.Status().String()}, nil
}

func (q Querier) Approval(goCtx context.Context, req *gatewaytypes.QueryApprovalRequest) (*gatewaytypes.QueryApprovalResponse, error) {
	if req == nil {
		return nil, errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "empty request")
	}
	entry, found := q.GetApproval(sdk.UnwrapSDKContext(goCtx), req.CommandID)
	if !found {
		return nil, errorsmod.Wrapf(gatewaytypes.ErrApprovalNotFound, "command %s", req.CommandID.Hex())
	}
	return &gatewaytypes.QueryApprovalResponse{Approval: entry, Status: entry.Status.String()}, nil
}

func (q Querier) MessagePayload(goCtx context.Context, req *gatewaytypes.QueryMessagePayloadRequest) (*gatewaytypes.QueryMessagePayloadResponse, error) {
	if req == nil {
		return nil, errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "empty request")
	}
	payer, err := accAddress("payer", req.Payer)
	if err != nil {
		return nil, err
	}
	payload, err := q.GetMessagePayload(sdk.UnwrapSDKContext(goCtx), payer, req.CommandID)
	if err != nil {
		return nil, err
	}
	return &gatewaytypes.QueryMessagePayloadResponse{
		Committed:   payload.Status == gatewaytypes.MessagePayloadStatusCommitted,
		PayloadHash: payload.PayloadHash,
		Raw:         payload.Raw,
	}, nil
}

func (q Querier) ExecutionInfo(goCtx context.Context, req *gatewaytypes.QueryExecutionInfoRequest) (*gatewaytypes.QueryExecutionInfoResponse, error) {
	if req == nil {
		return nil, errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "empty request")
	}
	destination, err := accAddress("destination", req.Destination)
	if err != nil {
		return nil, err
	}
	descriptor, found := q.GetExecutionInfo(sdk.UnwrapSDKContext(goCtx), destination)
	if !found {
		return nil, errorsmod.Wrapf(sdkerrors.ErrNotFound, "no execution info for %s", req.Destination)
	}
	return &gatewaytypes.QueryExecutionInfoResponse{Descriptor: descriptor}, nil
}
