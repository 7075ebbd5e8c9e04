package keeper

import (
	errorsmod "cosmossdk.io/errors"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
)

// ApproveMessages marks each message of a validated payload as approved.
// Re-approving a message from the same payload is a no-op; approving it
// from a different payload fails.
func (k Keeper) ApproveMessages(ctx sdk.Context, payloadRoot common.Hash, approvals []gatewaytypes.MessageApproval) ([]common.Hash, error) {
	if _, err := k.requireValidSession(ctx, payloadRoot); err != nil {
		return nil, err
	}

	commandIDs := make([]common.Hash, 0, len(approvals))
	for i, approval := range approvals {
		msg := approval.Message
		if err := approval.Proof.VerifyLeafHash(payloadRoot, msg.LeafHash()); err != nil {
			return nil, errorsmod.Wrapf(err, "approval %d", i)
		}

		commandID := msg.CommandID()
		existing, found, err := k.getApproval(ctx, commandID)
		if err != nil {
			return nil, err
		}
		if found {
			if existing.PayloadRoot != payloadRoot {
				return nil, errorsmod.Wrapf(gatewaytypes.ErrDoubleApproval,
					"command %s already approved by payload %s", commandID.Hex(), existing.PayloadRoot.Hex())
			}
			commandIDs = append(commandIDs, commandID)
			continue
		}

		entry := gatewaytypes.ApprovalEntry{
			Status:          gatewaytypes.ApprovalStatusApproved,
			PayloadRoot:     payloadRoot,
			LeafIndex:       approval.Proof.LeafIndex,
			MessageHash:     msg.Hash(),
			PayloadHash:     msg.PayloadHash,
			DestinationHash: msg.DestinationHash(),
		}
		if err := k.setApproval(ctx, commandID, entry); err != nil {
			return nil, err
		}

		ctx.EventManager().EmitEvent(gatewaytypes.MessageApprovedEvent{
			CommandID:          commandID,
			SourceChain:        msg.CCID.Chain,
			MessageID:          msg.CCID.ID,
			SourceAddress:      msg.SourceAddress,
			DestinationAddress: msg.DestinationAddress,
			PayloadHash:        msg.PayloadHash,
			PayloadRoot:        payloadRoot,
			LeafIndex:          entry.LeafIndex,
		}.ToSDKEvent())
		telemetry.IncrCounter(1, gatewaytypes.ModuleName, "messages_approved")
		commandIDs = append(commandIDs, commandID)
	}
	return commandIDs, nil
}

// ValidateMessage consumes an approval on behalf of destination. The
// approval must match the full message and its destination, and moves to
// executed exactly once.
func (k Keeper) ValidateMessage(ctx sdk.Context, destination string, msg gatewaytypes.Message) (common.Hash, error) {
	commandID := msg.CommandID()
	entry, found, err := k.getApproval(ctx, commandID)
	if err != nil {
		return commandID, err
	}
	if !found {
		return commandID, errorsmod.Wrapf(gatewaytypes.ErrApprovalNotFound, "command %s", commandID.Hex())
	}

	switch entry.Status {
	case gatewaytypes.ApprovalStatusExecuted:
		return commandID, errorsmod.Wrapf(gatewaytypes.ErrAlreadyExecuted, "command %s", commandID.Hex())
	case gatewaytypes.ApprovalStatusApproved:
	default:
		return commandID, errorsmod.Wrapf(gatewaytypes.ErrApprovalNotFound, "command %s has status %s", commandID.Hex(), entry.Status)
	}

	if entry.MessageHash != msg.Hash() {
		return commandID, errorsmod.Wrapf(gatewaytypes.ErrPayloadHashMismatch, "message does not match approval of command %s", commandID.Hex())
	}
	if entry.DestinationHash != gatewaytypes.DestinationHashOf(destination) {
		return commandID, errorsmod.Wrapf(gatewaytypes.ErrDestinationMismatch, "caller %s is not the destination of command %s", destination, commandID.Hex())
	}

	entry.Status = gatewaytypes.ApprovalStatusExecuted
	if err := k.setApproval(ctx, commandID, entry); err != nil {
		return commandID, err
	}

	ctx.EventManager().EmitEvent(gatewaytypes.MessageExecutedEvent{
		CommandID:   commandID,
		SourceChain: msg.CCID.Chain,
		MessageID:   msg.CCID.ID,
	}.ToSDKEvent())
	telemetry.IncrCounter(1, gatewaytypes.ModuleName, "messages_executed")
	return commandID, nil
}

// GetApproval returns the approval entry of a command id.
func (k Keeper) GetApproval(ctx sdk.Context, commandID common.Hash) (gatewaytypes.ApprovalEntry, bool) {
	entry, found, err := k.getApproval(ctx, commandID)
	if err != nil {
		return gatewaytypes.ApprovalEntry{}, false
	}
	return entry, found
}

// ApprovalRecord pairs an approval with its command id for export.
type ApprovalRecord struct {
	CommandID common.Hash                `json:"command_id"`
	Entry     gatewaytypes.ApprovalEntry `json:"entry"`
}

// GetAllApprovals returns every approval in the store.
func (k Keeper) GetAllApprovals(ctx sdk.Context) []ApprovalRecord {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, gatewaytypes.ApprovalKeyPrefix)
	defer iterator.Close()

	records := make([]ApprovalRecord, 0)
	for ; iterator.Valid(); iterator.Next() {
		var entry gatewaytypes.ApprovalEntry
		if err := entry.UnmarshalBinary(iterator.Value()); err != nil {
			continue
		}
		records = append(records, ApprovalRecord{
			CommandID: common.BytesToHash(iterator.Key()[len(gatewaytypes.ApprovalKeyPrefix):]),
			Entry:     entry,
		})
	}
	return records
}

// SetApproval writes an approval entry directly. Used by genesis import.
func (k Keeper) SetApproval(ctx sdk.Context, commandID common.Hash, entry gatewaytypes.ApprovalEntry) error {
	return k.setApproval(ctx, commandID, entry)
}

func (k Keeper) getApproval(ctx sdk.Context, commandID common.Hash) (gatewaytypes.ApprovalEntry, bool, error) {
	var entry gatewaytypes.ApprovalEntry
	found, err := k.get(ctx, gatewaytypes.GetApprovalKey(commandID), &entry)
	return entry, found, err
}

func (k Keeper) setApproval(ctx sdk.Context, commandID common.Hash, entry gatewaytypes.ApprovalEntry) error {
	return k.set(ctx, gatewaytypes.GetApprovalKey(commandID), entry)
}
