package types

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/holiman/uint256"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
)

// SelfCallKind is the discriminator of call data for proposals that target
// the governance module itself.
type SelfCallKind uint8

const (
	SelfCallTransferOperatorship SelfCallKind = iota
	SelfCallWithdrawTokens
)

func (k SelfCallKind) String() string {
	switch k {
	case SelfCallTransferOperatorship:
		return "transfer_operatorship"
	case SelfCallWithdrawTokens:
		return "withdraw_tokens"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// SelfCall is decoded governance call data. Account is the new operator or
// the withdrawal receiver; Amount is set for withdrawals only.
type SelfCall struct {
	Kind    SelfCallKind
	Account sdk.AccAddress
	Amount  *uint256.Int
}

// Encode writes kind || account (u32 length prefixed) || amount (32 bytes
// big-endian, withdrawals only).
func (c SelfCall) Encode() []byte {
	var e gatewaytypes.Encoder
	e.Tag([]byte{byte(c.Kind)})
	e.Bytes(c.Account)
	if c.Kind == SelfCallWithdrawTokens {
		var amount [32]byte
		if c.Amount != nil {
			amount = c.Amount.Bytes32()
		}
		e.Tag(amount[:])
	}
	return e.Result()
}

// TransferOperatorshipCall returns call data that hands the operator role
// to newOperator.
func TransferOperatorshipCall(newOperator sdk.AccAddress) []byte {
	return SelfCall{Kind: SelfCallTransferOperatorship, Account: newOperator}.Encode()
}

// WithdrawTokensCall returns call data that pays amount of the native denom
// from the vault to receiver.
func WithdrawTokensCall(receiver sdk.AccAddress, amount *uint256.Int) []byte {
	return SelfCall{Kind: SelfCallWithdrawTokens, Account: receiver, Amount: amount}.Encode()
}

// DecodeSelfCall parses call data written by SelfCall.Encode.
func DecodeSelfCall(b []byte) (SelfCall, error) {
	d := gatewaytypes.NewDecoder(b)
	kind, err := d.U8()
	if err != nil {
		return SelfCall{}, errorsmod.Wrap(ErrInvalidCall, err.Error())
	}
	account, err := d.Bytes()
	if err != nil {
		return SelfCall{}, errorsmod.Wrap(ErrInvalidCall, err.Error())
	}
	if err := sdk.VerifyAddressFormat(account); err != nil {
		return SelfCall{}, errorsmod.Wrap(ErrInvalidCall, err.Error())
	}
	call := SelfCall{Kind: SelfCallKind(kind), Account: append(sdk.AccAddress(nil), account...)}

	switch call.Kind {
	case SelfCallTransferOperatorship:
	case SelfCallWithdrawTokens:
		amount, err := d.Fixed(32)
		if err != nil {
			return SelfCall{}, errorsmod.Wrap(ErrInvalidCall, err.Error())
		}
		call.Amount = new(uint256.Int).SetBytes32(amount)
	default:
		return SelfCall{}, errorsmod.Wrapf(ErrInvalidCall, "unknown call kind %d", kind)
	}
	if err := d.Done(); err != nil {
		return SelfCall{}, errorsmod.Wrap(ErrInvalidCall, err.Error())
	}
	return call, nil
}
