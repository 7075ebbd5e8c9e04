package keeper

import (
	"strconv"

	errorsmod "cosmossdk.io/errors"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
)

// RotateVerifierSet installs newSetHash at the next epoch. The payload root
// must be the rotation commitment for newSetHash and its session must be
// valid. Without the operator co-signing, only the latest set may rotate
// and the minimum rotation delay applies.
func (k Keeper) RotateVerifierSet(ctx sdk.Context, payloadRoot, newSetHash common.Hash, operatorCosigned bool) (*uint256.Int, error) {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if expected := gatewaytypes.RotationPayloadRoot(newSetHash); expected != payloadRoot {
		return nil, errorsmod.Wrapf(gatewaytypes.ErrNotRotationPayload,
			"payload root %s does not commit to verifier set %s", payloadRoot.Hex(), newSetHash.Hex())
	}

	session, err := k.requireValidSession(ctx, payloadRoot)
	if err != nil {
		return nil, err
	}
	signingTracker, err := k.requireLiveTracker(ctx, config, session.SigningSetHash)
	if err != nil {
		return nil, err
	}

	if !operatorCosigned {
		if !signingTracker.Epoch.Eq(uint256.NewInt(config.CurrentEpoch)) {
			return nil, errorsmod.Wrapf(gatewaytypes.ErrOperatorOnly,
				"signing set epoch %s is not the latest epoch %d", signingTracker.Epoch.Dec(), config.CurrentEpoch)
		}
		now := uint64(ctx.BlockTime().Unix())
		if now < config.LastRotationTimestamp || now-config.LastRotationTimestamp < config.MinimumRotationDelay {
			return nil, errorsmod.Wrapf(gatewaytypes.ErrRotationCooldown,
				"last rotation at %d, minimum delay %d, now %d", config.LastRotationTimestamp, config.MinimumRotationDelay, now)
		}
	}

	if k.HasVerifierSetTracker(ctx, newSetHash) {
		return nil, errorsmod.Wrapf(gatewaytypes.ErrVerifierSetExists, "%s", newSetHash.Hex())
	}

	epoch, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(config.CurrentEpoch), uint256.NewInt(1))
	if overflow || !epoch.IsUint64() {
		return nil, gatewaytypes.ErrArithmeticOverflow
	}
	k.setVerifierSetTracker(ctx, gatewaytypes.VerifierSetTracker{Epoch: epoch, VerifierSetHash: newSetHash})

	config.CurrentEpoch = epoch.Uint64()
	config.LastRotationTimestamp = uint64(ctx.BlockTime().Unix())
	if err := k.setConfig(ctx, config); err != nil {
		return nil, err
	}

	ctx.EventManager().EmitEvent(gatewaytypes.VerifierSetRotatedEvent{
		VerifierSetHash: newSetHash,
		Epoch:           epoch,
	}.ToSDKEvent())
	telemetry.IncrCounter(1, gatewaytypes.ModuleName, "verifier_set_rotations")
	k.Logger(ctx).Info("verifier set rotated",
		"verifier_set_hash", newSetHash.Hex(),
		"epoch", epoch.Dec(),
		"operator_cosigned", operatorCosigned,
	)
	return epoch, nil
}

// IsOperator reports whether addr is the configured operator.
func (k Keeper) IsOperator(ctx sdk.Context, addr sdk.AccAddress) bool {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return false
	}
	return len(config.Operator) > 0 && config.Operator.Equals(addr)
}

// TransferOperatorship replaces the operator. The caller must be the
// current operator or the module authority.
func (k Keeper) TransferOperatorship(ctx sdk.Context, caller, newOperator sdk.AccAddress) error {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return err
	}
	if err := k.requireOperatorOrAuthority(config, caller); err != nil {
		return err
	}

	previous := config.Operator
	config.Operator = newOperator
	if err := k.setConfig(ctx, config); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(gatewaytypes.OperatorshipTransferredEvent{
		PreviousOperator: previous.String(),
		NewOperator:      newOperator.String(),
	}.ToSDKEvent())
	k.Logger(ctx).Info("gateway operatorship transferred", "previous", previous.String(), "new", newOperator.String())
	return nil
}

// UpdateConfig changes the retention window and the minimum rotation delay.
func (k Keeper) UpdateConfig(ctx sdk.Context, caller sdk.AccAddress, retention, minimumRotationDelay uint64) error {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return err
	}
	if err := k.requireOperatorOrAuthority(config, caller); err != nil {
		return err
	}

	config.PreviousVerifierSetRetention = retention
	config.MinimumRotationDelay = minimumRotationDelay
	if err := k.setConfig(ctx, config); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			gatewaytypes.EventTypeConfigUpdated,
			sdk.NewAttribute(gatewaytypes.AttributeKeyRetention, strconv.FormatUint(retention, 10)),
			sdk.NewAttribute(gatewaytypes.AttributeKeyRotationDelay, strconv.FormatUint(minimumRotationDelay, 10)),
		),
	)
	return nil
}

func (k Keeper) requireOperatorOrAuthority(config gatewaytypes.Config, caller sdk.AccAddress) error {
	if len(config.Operator) > 0 && config.Operator.Equals(caller) {
		return nil
	}
	if k.authority != "" && caller.String() == k.authority {
		return nil
	}
	return errorsmod.Wrapf(sdkerrors.ErrUnauthorized, "%s is neither the operator nor the authority", caller.String())
}
