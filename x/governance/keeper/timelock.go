package keeper

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/gmp-gateway/cosmos/x/governance/types"
)

// ScheduleTimeLockProposal stores a proposal that becomes executable at
// max(eta, now + minimum_proposal_eta_delay). It returns the proposal hash
// and the stored eta.
func (k Keeper) ScheduleTimeLockProposal(ctx sdk.Context, target common.Hash, callData []byte, nativeValue, eta *uint256.Int) (common.Hash, uint64, error) {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return common.Hash{}, 0, err
	}
	if eta == nil {
		eta = new(uint256.Int)
	}
	if !eta.IsUint64() {
		return common.Hash{}, 0, errorsmod.Wrapf(types.ErrInvalidCommand, "eta %s exceeds 64 bits", eta.Dec())
	}

	now := uint64(ctx.BlockTime().Unix())
	minimum, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(now), uint256.NewInt(config.MinimumProposalEtaDelay))
	if overflow || !minimum.IsUint64() {
		return common.Hash{}, 0, errorsmod.Wrap(types.ErrArithmeticOverflow, "minimum eta")
	}
	stored := eta.Uint64()
	if stored < minimum.Uint64() {
		stored = minimum.Uint64()
	}

	proposalHash := types.ProposalHash(target, callData, nativeValue)
	if _, found := k.GetProposal(ctx, proposalHash); found {
		return common.Hash{}, 0, errorsmod.Wrapf(types.ErrProposalAlreadyScheduled, "%s", proposalHash.Hex())
	}
	if err := k.setProposal(ctx, proposalHash, types.Proposal{Eta: stored}); err != nil {
		return common.Hash{}, 0, err
	}

	ctx.EventManager().EmitEvent(types.NewProposalEvent(types.EventTypeProposalScheduled, target, callData, nativeValue, stored).ToSDKEvent())
	telemetry.IncrCounter(1, types.ModuleName, "proposals_scheduled")
	k.Logger(ctx).Info("proposal scheduled",
		"proposal_hash", proposalHash.Hex(),
		"target", target.Hex(),
		"eta", stored,
	)
	return proposalHash, stored, nil
}

// CancelTimeLockProposal removes a scheduled proposal and its operator
// approval. Cancelling an unknown proposal is a no-op.
func (k Keeper) CancelTimeLockProposal(ctx sdk.Context, target common.Hash, callData []byte, nativeValue *uint256.Int) common.Hash {
	proposalHash := types.ProposalHash(target, callData, nativeValue)
	proposal, found := k.GetProposal(ctx, proposalHash)
	if !found {
		k.Logger(ctx).Debug("cancel of unscheduled proposal ignored", "proposal_hash", proposalHash.Hex())
		return proposalHash
	}
	k.deleteProposal(ctx, proposalHash)
	k.deleteOperatorApproval(ctx, proposalHash)

	ctx.EventManager().EmitEvent(types.NewProposalEvent(types.EventTypeProposalCancelled, target, callData, nativeValue, proposal.Eta).ToSDKEvent())
	telemetry.IncrCounter(1, types.ModuleName, "proposals_cancelled")
	k.Logger(ctx).Info("proposal cancelled", "proposal_hash", proposalHash.Hex())
	return proposalHash
}

// ApproveOperatorProposal lets the operator execute a scheduled proposal
// before its eta.
func (k Keeper) ApproveOperatorProposal(ctx sdk.Context, target common.Hash, callData []byte, nativeValue *uint256.Int) (common.Hash, error) {
	proposalHash := types.ProposalHash(target, callData, nativeValue)
	proposal, found := k.GetProposal(ctx, proposalHash)
	if !found {
		return common.Hash{}, errorsmod.Wrapf(types.ErrProposalNotFound, "%s", proposalHash.Hex())
	}
	if k.IsOperatorApproved(ctx, proposalHash) {
		return common.Hash{}, errorsmod.Wrapf(types.ErrOperatorApprovalExists, "%s", proposalHash.Hex())
	}
	k.setOperatorApproval(ctx, proposalHash)

	ctx.EventManager().EmitEvent(types.NewProposalEvent(types.EventTypeOperatorProposalApproved, target, callData, nativeValue, proposal.Eta).ToSDKEvent())
	k.Logger(ctx).Info("operator proposal approved", "proposal_hash", proposalHash.Hex())
	return proposalHash, nil
}

// CancelOperatorApproval withdraws an operator approval. The proposal itself
// stays scheduled. A missing approval is a no-op.
func (k Keeper) CancelOperatorApproval(ctx sdk.Context, target common.Hash, callData []byte, nativeValue *uint256.Int) common.Hash {
	proposalHash := types.ProposalHash(target, callData, nativeValue)
	if !k.IsOperatorApproved(ctx, proposalHash) {
		k.Logger(ctx).Debug("cancel of missing operator approval ignored", "proposal_hash", proposalHash.Hex())
		return proposalHash
	}
	k.deleteOperatorApproval(ctx, proposalHash)

	proposal, _ := k.GetProposal(ctx, proposalHash)
	ctx.EventManager().EmitEvent(types.NewProposalEvent(types.EventTypeOperatorProposalCancelled, target, callData, nativeValue, proposal.Eta).ToSDKEvent())
	k.Logger(ctx).Info("operator approval cancelled", "proposal_hash", proposalHash.Hex())
	return proposalHash
}

// ExecuteProposal runs a scheduled proposal. It succeeds once the eta has
// passed, or earlier when the operator executes an operator-approved
// proposal. The proposal and its approval are consumed, the native value is
// paid from the vault to the target account and the target is called.
// Callers must discard the context on error.
func (k Keeper) ExecuteProposal(ctx sdk.Context, caller sdk.AccAddress, target common.Hash, callData []byte, nativeValue *uint256.Int) (common.Hash, bool, error) {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return common.Hash{}, false, err
	}
	proposalHash := types.ProposalHash(target, callData, nativeValue)
	proposal, found := k.GetProposal(ctx, proposalHash)
	if !found {
		return common.Hash{}, false, errorsmod.Wrapf(types.ErrProposalNotFound, "%s", proposalHash.Hex())
	}

	now := uint64(ctx.BlockTime().Unix())
	managed := k.IsOperatorApproved(ctx, proposalHash)
	bypass := false
	if now < proposal.Eta {
		switch {
		case managed && len(config.Operator) > 0 && config.Operator.Equals(caller):
			bypass = true
		case managed:
			return common.Hash{}, false, errorsmod.Wrapf(types.ErrOperatorOnly, "%s may not execute before eta %d", caller, proposal.Eta)
		default:
			return common.Hash{}, false, errorsmod.Wrapf(types.ErrEtaNotReached, "eta %d, now %d", proposal.Eta, now)
		}
	}

	k.deleteProposal(ctx, proposalHash)
	k.deleteOperatorApproval(ctx, proposalHash)

	if nativeValue != nil && !nativeValue.IsZero() {
		if err := k.payFromVault(ctx, config, sdk.AccAddress(target.Bytes()), nativeValue); err != nil {
			return common.Hash{}, false, err
		}
	}
	if err := k.callTarget(ctx, target, callData); err != nil {
		return common.Hash{}, false, err
	}

	ctx.EventManager().EmitEvent(types.NewProposalEvent(types.EventTypeProposalExecuted, target, callData, nativeValue, proposal.Eta).ToSDKEvent())
	if bypass {
		ctx.EventManager().EmitEvent(types.NewProposalEvent(types.EventTypeOperatorProposalExecuted, target, callData, nativeValue, proposal.Eta).ToSDKEvent())
	}
	telemetry.IncrCounter(1, types.ModuleName, "proposals_executed")
	k.Logger(ctx).Info("proposal executed",
		"proposal_hash", proposalHash.Hex(),
		"target", target.Hex(),
		"operator_bypass", bypass,
	)
	return proposalHash, bypass, nil
}

// TransferOperatorship replaces the governance operator. The caller must be
// the current operator or the governance module itself.
func (k Keeper) TransferOperatorship(ctx sdk.Context, caller, newOperator sdk.AccAddress) error {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return err
	}
	isOperator := len(config.Operator) > 0 && config.Operator.Equals(caller)
	if !isOperator && !types.ModuleAddress().Equals(caller) {
		return errorsmod.Wrapf(types.ErrOperatorOnly, "%s is not the operator", caller)
	}

	previous := config.Operator
	config.Operator = newOperator
	if err := k.setConfig(ctx, config); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(types.OperatorshipTransferredEvent{
		PreviousOperator: previous.String(),
		NewOperator:      newOperator.String(),
	}.ToSDKEvent())
	k.Logger(ctx).Info("governance operatorship transferred", "previous", previous.String(), "new", newOperator.String())
	return nil
}

// WithdrawTokens pays amount of the native denom from the vault.
func (k Keeper) WithdrawTokens(ctx sdk.Context, receiver sdk.AccAddress, amount *uint256.Int) error {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return err
	}
	if err := k.payFromVault(ctx, config, receiver, amount); err != nil {
		return err
	}
	k.Logger(ctx).Info("tokens withdrawn", "receiver", receiver.String(), "amount", amount.Dec(), "denom", config.NativeDenom)
	return nil
}

func (k Keeper) payFromVault(ctx sdk.Context, config types.Config, to sdk.AccAddress, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	if k.bankKeeper == nil {
		return errorsmod.Wrap(types.ErrInvalidConfig, "no bank keeper to move native value")
	}
	coins := sdk.NewCoins(sdk.NewCoin(config.NativeDenom, sdkmath.NewIntFromBigInt(amount.ToBig())))
	return k.bankKeeper.SendCoins(ctx, types.VaultAddress(), to, coins)
}
