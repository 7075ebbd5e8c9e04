package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
	governancetypes "github.com/gmp-gateway/cosmos/x/governance/types"
)

func runEncode(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewEncodeCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestEncodeGovernanceCommand(t *testing.T) {
	callData := governancetypes.TransferOperatorshipCall(sdk.AccAddress([]byte("encode-new-operator1")))
	out, err := runEncode(t, "governance-command",
		"--command", "schedule_time_lock_proposal",
		"--target-module", governancetypes.ModuleName,
		"--call-data", hexutil.Encode(callData),
		"--native-value", "7",
		"--eta", "1700000000",
	)
	require.NoError(t, err)

	var encoded EncodedCommand
	require.NoError(t, json.Unmarshal([]byte(out), &encoded))
	require.Equal(t, "schedule_time_lock_proposal", encoded.Command)
	require.Equal(t, crypto.Keccak256Hash(encoded.Payload), encoded.PayloadHash)

	decoded, err := governancetypes.DecodeGovernanceCommand(encoded.Payload)
	require.NoError(t, err)
	require.Equal(t, governancetypes.CommandScheduleTimeLockProposal, decoded.Command)
	require.Equal(t, governancetypes.TargetID(governancetypes.ModuleName), decoded.Target)
	require.Equal(t, callData, decoded.CallData)
	require.Equal(t, uint64(7), decoded.NativeValue.Uint64())
	require.Equal(t, uint64(1700000000), decoded.Eta.Uint64())
	require.Equal(t, decoded.ProposalHash(), encoded.ProposalHash)
}

func TestEncodeReadsEnvironment(t *testing.T) {
	target := common.Hash{0x01, 0x02}
	t.Setenv("GMPGW_TARGET", target.Hex())
	t.Setenv("GMPGW_NATIVE_VALUE", "0x10")

	out, err := runEncode(t, "proposal-hash")
	require.NoError(t, err)
	require.Equal(t, governancetypes.ProposalHash(target, nil, uint256.NewInt(16)).Hex(), out)
}

func TestEncodeRejectsBadInput(t *testing.T) {
	_, err := runEncode(t, "governance-command", "--command", "launch", "--target-module", "gateway")
	require.Error(t, err)

	_, err = runEncode(t, "proposal-hash", "--target", "0x1234")
	require.Error(t, err)

	_, err = runEncode(t, "self-call", "withdraw", "not-bech32", "1")
	require.Error(t, err)
}

func TestEncodeSelfCalls(t *testing.T) {
	receiver := sdk.AccAddress([]byte("encode-receiver00001"))

	out, err := runEncode(t, "self-call", "withdraw", receiver.String(), "250")
	require.NoError(t, err)
	raw, err := hexutil.Decode(out)
	require.NoError(t, err)
	call, err := governancetypes.DecodeSelfCall(raw)
	require.NoError(t, err)
	require.Equal(t, governancetypes.SelfCallWithdrawTokens, call.Kind)
	require.Equal(t, receiver, call.Account)
	require.Equal(t, uint64(250), call.Amount.Uint64())

	out, err = runEncode(t, "self-call", "transfer-operatorship", receiver.String())
	require.NoError(t, err)
	require.Equal(t, hexutil.Encode(governancetypes.TransferOperatorshipCall(receiver)), out)
}

func TestEncodeGatewayInstructions(t *testing.T) {
	operator := sdk.AccAddress([]byte("encode-gw-operator01"))

	out, err := runEncode(t, "gateway-instruction", "transfer-operatorship", operator.String())
	require.NoError(t, err)
	raw, err := hexutil.Decode(out)
	require.NoError(t, err)
	msg, err := gatewaytypes.DecodeInstruction(raw)
	require.NoError(t, err)
	transfer, ok := msg.(*gatewaytypes.MsgTransferOperatorship)
	require.True(t, ok)
	require.Equal(t, governancetypes.ModuleAddress().String(), transfer.Authority)
	require.Equal(t, operator.String(), transfer.NewOperator)

	out, err = runEncode(t, "gateway-instruction", "update-config",
		"--previous-verifier-set-retention", "4",
		"--minimum-rotation-delay", "90",
	)
	require.NoError(t, err)
	raw, err = hexutil.Decode(out)
	require.NoError(t, err)
	msg, err = gatewaytypes.DecodeInstruction(raw)
	require.NoError(t, err)
	update, ok := msg.(*gatewaytypes.MsgUpdateConfig)
	require.True(t, ok)
	require.Equal(t, uint64(4), update.PreviousVerifierSetRetention)
	require.Equal(t, uint64(90), update.MinimumRotationDelay)
}
