package testutil

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// BankKeeper is a minimal store-backed bank. Balances live in the context
// store so cached contexts roll transfers back with everything else.
type BankKeeper struct {
	storeKey storetypes.StoreKey
}

// NewBankKeeper returns a bank over storeKey.
func NewBankKeeper(storeKey storetypes.StoreKey) *BankKeeper {
	return &BankKeeper{storeKey: storeKey}
}

func balanceKey(addr sdk.AccAddress, denom string) []byte {
	return append(append([]byte(denom), '/'), addr...)
}

// GetBalance returns the balance of addr in denom.
func (b BankKeeper) GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	bz := sdk.UnwrapSDKContext(ctx).KVStore(b.storeKey).Get(balanceKey(addr, denom))
	amount := sdkmath.ZeroInt()
	if bz != nil {
		if err := amount.Unmarshal(bz); err != nil {
			panic(err)
		}
	}
	return sdk.NewCoin(denom, amount)
}

// SendCoins moves amt from fromAddr to toAddr.
func (b BankKeeper) SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error {
	for _, coin := range amt {
		have := b.GetBalance(ctx, fromAddr, coin.Denom)
		if have.Amount.LT(coin.Amount) {
			return errorsmod.Wrapf(sdkerrors.ErrInsufficientFunds, "%s < %s", have, coin)
		}
		b.setBalance(ctx, fromAddr, have.Sub(coin))
		b.setBalance(ctx, toAddr, b.GetBalance(ctx, toAddr, coin.Denom).Add(coin))
	}
	return nil
}

// Fund credits addr with coins.
func (b BankKeeper) Fund(ctx context.Context, addr sdk.AccAddress, coins sdk.Coins) {
	for _, coin := range coins {
		b.setBalance(ctx, addr, b.GetBalance(ctx, addr, coin.Denom).Add(coin))
	}
}

func (b BankKeeper) setBalance(ctx context.Context, addr sdk.AccAddress, coin sdk.Coin) {
	bz, err := coin.Amount.Marshal()
	if err != nil {
		panic(err)
	}
	sdk.UnwrapSDKContext(ctx).KVStore(b.storeKey).Set(balanceKey(addr, coin.Denom), bz)
}
