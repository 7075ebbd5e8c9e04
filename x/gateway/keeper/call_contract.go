package keeper

import (
	errorsmod "cosmossdk.io/errors"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
)

// CallContract emits an outbound contract call for relayers to pick up.
// Nothing is stored.
func (k Keeper) CallContract(ctx sdk.Context, sender sdk.AccAddress, destinationChain, destinationAddress string, payload []byte) (common.Hash, error) {
	if destinationChain == "" || destinationAddress == "" {
		return common.Hash{}, errorsmod.Wrap(sdkerrors.ErrInvalidRequest, "destination chain and address are required")
	}
	payloadHash := crypto.Keccak256Hash(payload)

	ctx.EventManager().EmitEvent(gatewaytypes.CallContractEvent{
		Sender:             sender.String(),
		DestinationChain:   destinationChain,
		DestinationAddress: destinationAddress,
		Payload:            payload,
		PayloadHash:        payloadHash,
	}.ToSDKEvent())
	telemetry.IncrCounter(1, gatewaytypes.ModuleName, "contract_calls")
	return payloadHash, nil
}

// SetExecutionInfo stores the dispatch descriptor relayers use to invoke destination.
func (k Keeper) SetExecutionInfo(ctx sdk.Context, destination sdk.AccAddress, descriptor []byte) error {
	if len(descriptor) == 0 || len(descriptor) > gatewaytypes.MaxMessagePayloadSize {
		return errorsmod.Wrapf(sdkerrors.ErrInvalidRequest, "descriptor length %d not in (0, %d]", len(descriptor), gatewaytypes.MaxMessagePayloadSize)
	}
	ctx.KVStore(k.storeKey).Set(gatewaytypes.GetExecutionInfoKey(destination), append([]byte(nil), descriptor...))
	return nil
}

// GetExecutionInfo returns the dispatch descriptor of destination.
func (k Keeper) GetExecutionInfo(ctx sdk.Context, destination sdk.AccAddress) ([]byte, bool) {
	bz := ctx.KVStore(k.storeKey).Get(gatewaytypes.GetExecutionInfoKey(destination))
	return bz, bz != nil
}

// ExecutionInfoRecord pairs a destination with its dispatch descriptor for export.
type ExecutionInfoRecord struct {
	Destination string        `json:"destination"`
	Descriptor  hexutil.Bytes `json:"descriptor"`
}

// GetAllExecutionInfos returns every registered dispatch descriptor.
func (k Keeper) GetAllExecutionInfos(ctx sdk.Context) []ExecutionInfoRecord {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, gatewaytypes.ExecutionInfoKeyPrefix)
	defer iterator.Close()

	records := make([]ExecutionInfoRecord, 0)
	for ; iterator.Valid(); iterator.Next() {
		records = append(records, ExecutionInfoRecord{
			Destination: sdk.AccAddress(iterator.Key()[len(gatewaytypes.ExecutionInfoKeyPrefix):]).String(),
			Descriptor:  append(hexutil.Bytes(nil), iterator.Value()...),
		})
	}
	return records
}
