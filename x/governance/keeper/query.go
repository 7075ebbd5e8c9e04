package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/gmp-gateway/cosmos/x/governance/types"
)

// Querier serves read-only governance state.
type Querier struct {
	Keeper
}

// NewQuerier returns a Querier over keeper.
func NewQuerier(keeper Keeper) Querier {
	return Querier{Keeper: keeper}
}

func (q Querier) Config(goCtx context.Context, _ *types.QueryConfigRequest) (*types.QueryConfigResponse, error) {
	config, err := q.GetConfig(sdk.UnwrapSDKContext(goCtx))
	if err != nil {
		return nil, err
	}
	return &types.QueryConfigResponse{Config: config}, nil
}

func (q Querier) Proposal(goCtx context.Context, req *types.QueryProposalRequest) (*types.QueryProposalResponse, error) {
	if req == nil {
		return nil, errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "empty request")
	}
	record, found := q.GetProposalRecord(sdk.UnwrapSDKContext(goCtx), req.ProposalHash)
	if !found {
		return nil, errorsmod.Wrapf(types.ErrProposalNotFound, "%s", req.ProposalHash.Hex())
	}
	return &types.QueryProposalResponse{Proposal: record}, nil
}

func (q Querier) Proposals(goCtx context.Context, _ *types.QueryProposalsRequest) (*types.QueryProposalsResponse, error) {
	return &types.QueryProposalsResponse{Proposals: q.GetAllProposals(sdk.UnwrapSDKContext(goCtx))}, nil
}
