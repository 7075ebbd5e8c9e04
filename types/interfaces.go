package types

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
)

// BankKeeper defines the expected interface for the bank module
type BankKeeper interface {
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// GatewayKeeper defines the gateway operations a GMP destination module uses
// to consume approved messages.
type GatewayKeeper interface {
	// ValidateMessage marks an approved message executed on behalf of
	// destination and returns its command id.
	ValidateMessage(ctx sdk.Context, destination string, msg gatewaytypes.Message) (common.Hash, error)
	// GetCommittedMessagePayload returns a staged payload and its hash once
	// the payer has committed it.
	GetCommittedMessagePayload(ctx sdk.Context, payer sdk.AccAddress, commandID common.Hash) ([]byte, common.Hash, error)
}
