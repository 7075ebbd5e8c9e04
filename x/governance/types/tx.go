package types

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/ethereum/go-ethereum/common"
)

// MsgProcessGMPResponse defines the response for MsgProcessGMP
type MsgProcessGMPResponse struct {
	Command      string      `json:"command"`
	ProposalHash common.Hash `json:"proposal_hash"`
}

// MsgExecuteProposalResponse defines the response for MsgExecuteProposal
type MsgExecuteProposalResponse struct {
	ProposalHash   common.Hash `json:"proposal_hash"`
	OperatorBypass bool        `json:"operator_bypass"`
}

// MsgTransferOperatorshipResponse defines the response for MsgTransferOperatorship
type MsgTransferOperatorshipResponse struct{}

// MsgServer defines the msg service for the governance module
type MsgServer interface {
	ProcessGMP(ctx context.Context, msg *MsgProcessGMP) (*MsgProcessGMPResponse, error)
	ExecuteProposal(ctx context.Context, msg *MsgExecuteProposal) (*MsgExecuteProposalResponse, error)
	TransferOperatorship(ctx context.Context, msg *MsgTransferOperatorship) (*MsgTransferOperatorshipResponse, error)
}

// RouteMsg dispatches msg to the matching MsgServer handler.
func RouteMsg(ctx context.Context, srv MsgServer, msg sdk.Msg) (interface{}, error) {
	switch m := msg.(type) {
	case *MsgProcessGMP:
		return srv.ProcessGMP(ctx, m)
	case *MsgExecuteProposal:
		return srv.ExecuteProposal(ctx, m)
	case *MsgTransferOperatorship:
		return srv.TransferOperatorship(ctx, m)
	default:
		return nil, errorsmod.Wrapf(sdkerrors.ErrUnknownRequest, "unrecognized %s message type: %T", ModuleName, msg)
	}
}
