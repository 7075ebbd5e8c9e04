package keeper

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
	"github.com/gmp-gateway/cosmos/x/governance/types"
)

// ProposalTarget executes the call data of a proposal. Calls always run as
// the governance module account.
type ProposalTarget interface {
	ExecuteProposalCall(ctx sdk.Context, callData []byte) error
}

// RegisterTarget makes target reachable by proposals addressed to id.
func (k Keeper) RegisterTarget(id common.Hash, target ProposalTarget) error {
	if _, found := k.targets[id]; found {
		return errorsmod.Wrapf(types.ErrDuplicateTarget, "%s", id.Hex())
	}
	k.targets[id] = target
	return nil
}

// callTarget runs callData against the target registered under id. A
// proposal to an unregistered id may only move native value.
func (k Keeper) callTarget(ctx sdk.Context, id common.Hash, callData []byte) error {
	target, found := k.targets[id]
	if !found {
		if len(callData) == 0 {
			return nil
		}
		return errorsmod.Wrapf(types.ErrUnknownTarget, "%s", id.Hex())
	}
	return target.ExecuteProposalCall(ctx, callData)
}

type selfTarget struct {
	keeper *Keeper
}

func (t selfTarget) ExecuteProposalCall(ctx sdk.Context, callData []byte) error {
	call, err := types.DecodeSelfCall(callData)
	if err != nil {
		return err
	}
	switch call.Kind {
	case types.SelfCallTransferOperatorship:
		return t.keeper.TransferOperatorship(ctx, types.ModuleAddress(), call.Account)
	case types.SelfCallWithdrawTokens:
		return t.keeper.WithdrawTokens(ctx, call.Account, call.Amount)
	default:
		return errorsmod.Wrapf(types.ErrInvalidCall, "unhandled call %s", call.Kind)
	}
}

// GatewayTarget runs gateway instructions proposed through governance. The
// governance module account acts as the gateway authority.
type GatewayTarget struct {
	srv gatewaytypes.MsgServer
}

// NewGatewayTarget wraps the gateway Msg service.
func NewGatewayTarget(srv gatewaytypes.MsgServer) GatewayTarget {
	return GatewayTarget{srv: srv}
}

func (t GatewayTarget) ExecuteProposalCall(ctx sdk.Context, callData []byte) error {
	msg, err := gatewaytypes.DecodeInstruction(callData)
	if err != nil {
		return errorsmod.Wrap(types.ErrInvalidCall, err.Error())
	}

	self := types.ModuleAddress().String()
	switch m := msg.(type) {
	case *gatewaytypes.MsgTransferOperatorship:
		m.Authority = self
	case *gatewaytypes.MsgUpdateConfig:
		m.Authority = self
	case *gatewaytypes.MsgCallContract:
		m.Sender = self
	default:
		return errorsmod.Wrapf(types.ErrInvalidCall, "gateway instruction %T cannot be proposed", msg)
	}
	if v, ok := msg.(interface{ ValidateBasic() error }); ok {
		if err := v.ValidateBasic(); err != nil {
			return err
		}
	}

	_, err = gatewaytypes.RouteMsg(ctx, t.srv, msg)
	return err
}
