package types_test

import (
	"math/big"
	"strings"
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/gmp-gateway/cosmos/x/governance/types"
)

func TestGovernanceCommandRoundTrip(t *testing.T) {
	command := types.GovernanceCommand{
		Command:     types.CommandApproveOperatorProposal,
		Target:      common.HexToHash("0x1234"),
		CallData:    []byte("call data"),
		NativeValue: uint256.NewInt(1_000_000),
		Eta:         uint256.NewInt(1_700_000_500),
	}
	payload, err := command.Encode()
	require.NoError(t, err)

	decoded, err := types.DecodeGovernanceCommand(payload)
	require.NoError(t, err)
	require.Equal(t, command.Command, decoded.Command)
	require.Equal(t, command.Target, decoded.Target)
	require.Equal(t, command.CallData, decoded.CallData)
	require.True(t, command.NativeValue.Eq(decoded.NativeValue))
	require.True(t, command.Eta.Eq(decoded.Eta))
	require.Equal(t, command.ProposalHash(), decoded.ProposalHash())
}

func TestGovernanceCommandMatchesSolidityLayout(t *testing.T) {
	args := abi.Arguments{
		{Type: mustType(t, "uint8")},
		{Type: mustType(t, "bytes32")},
		{Type: mustType(t, "bytes")},
		{Type: mustType(t, "uint256")},
		{Type: mustType(t, "uint256")},
	}
	payload, err := args.Pack(uint8(0), [32]byte{0xaa}, []byte{1, 2, 3}, big.NewInt(7), big.NewInt(99))
	require.NoError(t, err)

	decoded, err := types.DecodeGovernanceCommand(payload)
	require.NoError(t, err)
	require.Equal(t, types.CommandScheduleTimeLockProposal, decoded.Command)
	require.Equal(t, common.Hash{0xaa}, decoded.Target)
	require.Equal(t, uint64(99), decoded.Eta.Uint64())
}

func mustType(t *testing.T, name string) abi.Type {
	typ, err := abi.NewType(name, "", nil)
	require.NoError(t, err)
	return typ
}

func TestDecodeGovernanceCommandRejects(t *testing.T) {
	_, err := types.DecodeGovernanceCommand([]byte("short"))
	require.ErrorIs(t, err, types.ErrInvalidCommand)

	payload, err := types.GovernanceCommand{Command: types.CommandType(4)}.Encode()
	require.NoError(t, err)
	_, err = types.DecodeGovernanceCommand(payload)
	require.ErrorIs(t, err, types.ErrInvalidCommand)
}

func TestProposalHash(t *testing.T) {
	target := common.HexToHash("0xbeef")
	callData := []byte{0xde, 0xad}
	value := uint256.NewInt(5)

	word := value.Bytes32()
	expected := crypto.Keccak256Hash(target[:], callData, word[:])
	require.Equal(t, expected, types.ProposalHash(target, callData, value))

	require.Equal(t, types.ProposalHash(target, nil, nil), types.ProposalHash(target, []byte{}, new(uint256.Int)))
	require.NotEqual(t, expected, types.ProposalHash(target, callData, uint256.NewInt(6)))
	require.NotEqual(t, expected, types.ProposalHash(common.HexToHash("0xbeee"), callData, value))
}

func TestCommandTypeString(t *testing.T) {
	require.Equal(t, "schedule_time_lock_proposal", types.CommandScheduleTimeLockProposal.String())
	require.Equal(t, "cancel_operator_approval", types.CommandCancelOperatorApproval.String())
	require.True(t, strings.HasPrefix(types.CommandType(9).String(), "unknown"))
}

func TestSelfCallCodec(t *testing.T) {
	account := sdk.AccAddress([]byte("self-call-account001"))

	call, err := types.DecodeSelfCall(types.TransferOperatorshipCall(account))
	require.NoError(t, err)
	require.Equal(t, types.SelfCallTransferOperatorship, call.Kind)
	require.Equal(t, account, call.Account)
	require.Nil(t, call.Amount)

	call, err = types.DecodeSelfCall(types.WithdrawTokensCall(account, uint256.NewInt(42)))
	require.NoError(t, err)
	require.Equal(t, types.SelfCallWithdrawTokens, call.Kind)
	require.Equal(t, uint64(42), call.Amount.Uint64())

	_, err = types.DecodeSelfCall(nil)
	require.ErrorIs(t, err, types.ErrInvalidCall)

	trailing := append(types.TransferOperatorshipCall(account), 0x00)
	_, err = types.DecodeSelfCall(trailing)
	require.ErrorIs(t, err, types.ErrInvalidCall)

	unknown := types.TransferOperatorshipCall(account)
	unknown[0] = 7
	_, err = types.DecodeSelfCall(unknown)
	require.ErrorIs(t, err, types.ErrInvalidCall)
}

func TestProposalEventParsing(t *testing.T) {
	target := common.HexToHash("0x77")
	ev := types.NewProposalEvent(types.EventTypeProposalScheduled, target, []byte{9}, uint256.NewInt(3), 1234)

	parsed, err := types.ParseProposalEvent(abci.Event(ev.ToSDKEvent()))
	require.NoError(t, err)
	require.Equal(t, ev.ProposalHash, parsed.ProposalHash)
	require.Equal(t, target, parsed.Target)
	require.Equal(t, []byte{9}, parsed.CallData)
	require.Equal(t, uint64(3), parsed.NativeValue.Uint64())
	require.Equal(t, uint64(1234), parsed.Eta)

	transferred := types.OperatorshipTransferredEvent{PreviousOperator: "a", NewOperator: "b"}
	_, err = types.ParseProposalEvent(abci.Event(transferred.ToSDKEvent()))
	require.ErrorIs(t, err, types.ErrInvalidEncoding)

	parsedTransfer, err := types.ParseOperatorshipTransferredEvent(abci.Event(transferred.ToSDKEvent()))
	require.NoError(t, err)
	require.Equal(t, transferred, parsedTransfer)
}
