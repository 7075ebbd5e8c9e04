package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/gmp-gateway/cosmos/x/governance/types"
)

type msgServer struct {
	Keeper
}

// NewMsgServerImpl returns an implementation of the MsgServer interface
// for the provided Keeper.
func NewMsgServerImpl(keeper Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

var _ types.MsgServer = msgServer{}

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

// ProcessGMP handles MsgProcessGMP messages
func (k msgServer) ProcessGMP(goCtx context.Context, msg *types.MsgProcessGMP) (*types.MsgProcessGMPResponse, error) {
	var payer sdk.AccAddress
	if msg.PayloadPayer != "" {
		var err error
		if payer, err = accAddress("payload payer", msg.PayloadPayer); err != nil {
			return nil, err
		}
	}

	resp := &types.MsgProcessGMPResponse{}
	err := atomic(goCtx, func(ctx sdk.Context) error {
		command, err := k.Keeper.ProcessGMP(ctx, msg.Message, msg.Payload, payer)
		if err != nil {
			return err
		}
		resp.Command = command.Command.String()
		resp.ProposalHash = command.ProposalHash()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ExecuteProposal handles MsgExecuteProposal messages
func (k msgServer) ExecuteProposal(goCtx context.Context, msg *types.MsgExecuteProposal) (*types.MsgExecuteProposalResponse, error) {
	caller, err := accAddress("caller", msg.Caller)
	if err != nil {
		return nil, err
	}

	resp := &types.MsgExecuteProposalResponse{}
	err = atomic(goCtx, func(ctx sdk.Context) error {
		var err error
		resp.ProposalHash, resp.OperatorBypass, err = k.Keeper.ExecuteProposal(ctx, caller, msg.Target, msg.CallData, msg.NativeValue)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// TransferOperatorship handles MsgTransferOperatorship messages
func (k msgServer) TransferOperatorship(goCtx context.Context, msg *types.MsgTransferOperatorship) (*types.MsgTransferOperatorshipResponse, error) {
	operator, err := accAddress("operator", msg.Operator)
	if err != nil {
		return nil, err
	}
	newOperator, err := accAddress("new operator", msg.NewOperator)
	if err != nil {
		return nil, err
	}

	err = atomic(goCtx, func(ctx sdk.Context) error {
		return k.Keeper.TransferOperatorship(ctx, operator, newOperator)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgTransferOperatorshipResponse{}, nil
}
