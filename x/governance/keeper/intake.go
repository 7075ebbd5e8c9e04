package keeper

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
	"github.com/gmp-gateway/cosmos/x/governance/types"
)

// ProcessGMP consumes an approved gateway message addressed to governance
// and applies the command in its payload. The payload is taken inline, or
// from the payer's committed staging record when payer is set. The gateway
// approval is marked executed before the command runs; callers must discard
// the context on error.
func (k Keeper) ProcessGMP(ctx sdk.Context, msg gatewaytypes.Message, payload []byte, payer sdk.AccAddress) (types.GovernanceCommand, error) {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return types.GovernanceCommand{}, err
	}
	if !config.IsTrustedSource(msg.CCID.Chain, msg.SourceAddress) {
		return types.GovernanceCommand{}, errorsmod.Wrapf(types.ErrUntrustedSource, "%s:%s", msg.CCID.Chain, msg.SourceAddress)
	}

	if len(payer) > 0 {
		var staged common.Hash
		if payload, staged, err = k.gatewayKeeper.GetCommittedMessagePayload(ctx, payer, msg.CommandID()); err != nil {
			return types.GovernanceCommand{}, err
		}
		if staged != msg.PayloadHash {
			return types.GovernanceCommand{}, errorsmod.Wrapf(types.ErrPayloadHashMismatch, "staged %s, message %s", staged.Hex(), msg.PayloadHash.Hex())
		}
	}
	if hash := crypto.Keccak256Hash(payload); hash != msg.PayloadHash {
		return types.GovernanceCommand{}, errorsmod.Wrapf(types.ErrPayloadHashMismatch, "payload %s, message %s", hash.Hex(), msg.PayloadHash.Hex())
	}

	if _, err := k.gatewayKeeper.ValidateMessage(ctx, types.ModuleAddress().String(), msg); err != nil {
		return types.GovernanceCommand{}, err
	}

	command, err := types.DecodeGovernanceCommand(payload)
	if err != nil {
		return types.GovernanceCommand{}, err
	}
	k.Logger(ctx).Info("governance command received",
		"command", command.Command.String(),
		"source_chain", msg.CCID.Chain,
		"message_id", msg.CCID.ID,
	)

	switch command.Command {
	case types.CommandScheduleTimeLockProposal:
		_, stored, err := k.ScheduleTimeLockProposal(ctx, command.Target, command.CallData, command.NativeValue, command.Eta)
		if err != nil {
			return types.GovernanceCommand{}, err
		}
		command.Eta.SetUint64(stored)
	case types.CommandCancelTimeLockProposal:
		k.CancelTimeLockProposal(ctx, command.Target, command.CallData, command.NativeValue)
	case types.CommandApproveOperatorProposal:
		if _, err := k.ApproveOperatorProposal(ctx, command.Target, command.CallData, command.NativeValue); err != nil {
			return types.GovernanceCommand{}, err
		}
	case types.CommandCancelOperatorApproval:
		k.CancelOperatorApproval(ctx, command.Target, command.CallData, command.NativeValue)
	default:
		return types.GovernanceCommand{}, errorsmod.Wrapf(types.ErrInvalidCommand, "unknown command %d", command.Command)
	}
	return command, nil
}
