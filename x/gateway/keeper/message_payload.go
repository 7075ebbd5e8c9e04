package keeper

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
)

// InitializeMessagePayload allocates a zeroed staging buffer owned by payer.
func (k Keeper) InitializeMessagePayload(ctx sdk.Context, payer sdk.AccAddress, commandID common.Hash, size uint64) error {
	if size == 0 || size > gatewaytypes.MaxMessagePayloadSize {
		return errorsmod.Wrapf(gatewaytypes.ErrMessagePayloadTooLarge, "buffer size %d not in (0, %d]", size, gatewaytypes.MaxMessagePayloadSize)
	}
	key := gatewaytypes.GetMessagePayloadKey(commandID, payer)
	if ctx.KVStore(k.storeKey).Has(key) {
		return errorsmod.Wrapf(gatewaytypes.ErrMessagePayloadExists, "command %s", commandID.Hex())
	}
	return k.set(ctx, key, gatewaytypes.MessagePayload{
		Status: gatewaytypes.MessagePayloadStatusOpen,
		Raw:    make([]byte, size),
	})
}

// WriteMessagePayload copies chunk into an open buffer at offset.
func (k Keeper) WriteMessagePayload(ctx sdk.Context, payer sdk.AccAddress, commandID common.Hash, offset uint64, chunk []byte) error {
	payload, err := k.GetMessagePayload(ctx, payer, commandID)
	if err != nil {
		return err
	}
	if payload.Status == gatewaytypes.MessagePayloadStatusCommitted {
		return errorsmod.Wrapf(gatewaytypes.ErrMessagePayloadCommitted, "command %s", commandID.Hex())
	}
	end := offset + uint64(len(chunk))
	if end < offset || end > uint64(len(payload.Raw)) {
		return errorsmod.Wrapf(gatewaytypes.ErrMessagePayloadOutOfBounds,
			"write [%d, %d) exceeds buffer of %d bytes", offset, offset+uint64(len(chunk)), len(payload.Raw))
	}
	copy(payload.Raw[offset:end], chunk)
	return k.set(ctx, gatewaytypes.GetMessagePayloadKey(commandID, payer), payload)
}

// CommitMessagePayload seals a buffer and records the Keccak-256 of its bytes.
func (k Keeper) CommitMessagePayload(ctx sdk.Context, payer sdk.AccAddress, commandID common.Hash) (common.Hash, error) {
	payload, err := k.GetMessagePayload(ctx, payer, commandID)
	if err != nil {
		return common.Hash{}, err
	}
	if payload.Status == gatewaytypes.MessagePayloadStatusCommitted {
		return common.Hash{}, errorsmod.Wrapf(gatewaytypes.ErrMessagePayloadCommitted, "command %s", commandID.Hex())
	}
	payload.Status = gatewaytypes.MessagePayloadStatusCommitted
	payload.PayloadHash = crypto.Keccak256Hash(payload.Raw)
	if err := k.set(ctx, gatewaytypes.GetMessagePayloadKey(commandID, payer), payload); err != nil {
		return common.Hash{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			gatewaytypes.EventTypeMessagePayloadCommitted,
			sdk.NewAttribute(gatewaytypes.AttributeKeyCommandID, commandID.Hex()),
			sdk.NewAttribute(gatewaytypes.AttributeKeyPayer, payer.String()),
			sdk.NewAttribute(gatewaytypes.AttributeKeyPayloadHash, payload.PayloadHash.Hex()),
		),
	)
	return payload.PayloadHash, nil
}

// CloseMessagePayload deletes a buffer in any state.
func (k Keeper) CloseMessagePayload(ctx sdk.Context, payer sdk.AccAddress, commandID common.Hash) error {
	key := gatewaytypes.GetMessagePayloadKey(commandID, payer)
	store := ctx.KVStore(k.storeKey)
	if !store.Has(key) {
		return errorsmod.Wrapf(gatewaytypes.ErrMessagePayloadNotFound, "command %s", commandID.Hex())
	}
	store.Delete(key)
	return nil
}

// GetMessagePayload returns the staging buffer of payer for commandID.
func (k Keeper) GetMessagePayload(ctx sdk.Context, payer sdk.AccAddress, commandID common.Hash) (gatewaytypes.MessagePayload, error) {
	var payload gatewaytypes.MessagePayload
	found, err := k.get(ctx, gatewaytypes.GetMessagePayloadKey(commandID, payer), &payload)
	if err != nil {
		return payload, err
	}
	if !found {
		return payload, errorsmod.Wrapf(gatewaytypes.ErrMessagePayloadNotFound, "command %s", commandID.Hex())
	}
	return payload, nil
}

// GetCommittedMessagePayload returns the bytes of a committed buffer.
func (k Keeper) GetCommittedMessagePayload(ctx sdk.Context, payer sdk.AccAddress, commandID common.Hash) ([]byte, common.Hash, error) {
	payload, err := k.GetMessagePayload(ctx, payer, commandID)
	if err != nil {
		return nil, common.Hash{}, err
	}
	if payload.Status != gatewaytypes.MessagePayloadStatusCommitted {
		return nil, common.Hash{}, errorsmod.Wrapf(gatewaytypes.ErrMessagePayloadNotCommitted, "command %s", commandID.Hex())
	}
	return payload.Raw, payload.PayloadHash, nil
}

// MessagePayloadRecord pairs a staged payload with its owner for export.
type MessagePayloadRecord struct {
	CommandID common.Hash                 `json:"command_id"`
	Payer     string                      `json:"payer"`
	Payload   gatewaytypes.MessagePayload `json:"payload"`
}

// GetAllMessagePayloads returns every staged payload in the store.
func (k Keeper) GetAllMessagePayloads(ctx sdk.Context) []MessagePayloadRecord {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, gatewaytypes.MessagePayloadKeyPrefix)
	defer iterator.Close()

	// key: prefix || gateway root || command id || payer
	idStart := len(gatewaytypes.MessagePayloadKeyPrefix) + len(gatewaytypes.GatewayRootAddress())
	records := make([]MessagePayloadRecord, 0)
	for ; iterator.Valid(); iterator.Next() {
		key := iterator.Key()
		if len(key) <= idStart+common.HashLength {
			continue
		}
		var payload gatewaytypes.MessagePayload
		if err := payload.UnmarshalBinary(iterator.Value()); err != nil {
			k.Logger(ctx).Error("skipping corrupt message payload", "key", fmt.Sprintf("%x", key), "error", err)
			continue
		}
		records = append(records, MessagePayloadRecord{
			CommandID: common.BytesToHash(key[idStart : idStart+common.HashLength]),
			Payer:     sdk.AccAddress(key[idStart+common.HashLength:]).String(),
			Payload:   payload,
		})
	}
	return records
}

// SetMessagePayload writes a staged payload directly. Used by genesis import.
func (k Keeper) SetMessagePayload(ctx sdk.Context, payer sdk.AccAddress, commandID common.Hash, payload gatewaytypes.MessagePayload) error {
	if err := payload.Validate(); err != nil {
		return err
	}
	return k.set(ctx, gatewaytypes.GetMessagePayloadKey(commandID, payer), payload)
}
