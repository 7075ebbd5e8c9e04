package types_test

import (
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/gmp-gateway/cosmos/testutil"
	"github.com/gmp-gateway/cosmos/x/gateway/types"
)

func TestInstructionRoundTrip(t *testing.T) {
	relayer := sdk.AccAddress([]byte("instruction-relayer1")).String()
	f, _ := testutil.NewSecp256k1Fixture(t, "instruction", []uint64{1, 1, 1}, 2, 1)
	root := crypto.Keccak256Hash([]byte("root"))
	leaf, proof, sig := f.SignedLeaf(t, 2, root)

	payload, err := types.NewMessagesPayload([]types.Message{sampleMessage()})
	require.NoError(t, err)
	msgProof, err := payload.MessageProof(0)
	require.NoError(t, err)

	msgs := []sdk.Msg{
		&types.MsgVerifySignature{
			Relayer:     relayer,
			PayloadRoot: root,
			SignerLeaf:  leaf,
			SignerProof: proof,
			Signature:   sig,
		},
		&types.MsgApproveMessages{
			Relayer:     relayer,
			PayloadRoot: payload.MerkleRoot,
			Approvals:   []types.MessageApproval{{Message: sampleMessage(), Proof: msgProof}},
		},
		&types.MsgRotateVerifierSet{
			Relayer:            relayer,
			PayloadRoot:        root,
			NewVerifierSetHash: f.Hash,
			Operator:           relayer,
		},
		&types.MsgRotateVerifierSet{
			Relayer:            relayer,
			PayloadRoot:        root,
			NewVerifierSetHash: f.Hash,
		},
		&types.MsgWriteMessagePayload{
			Payer:     relayer,
			CommandID: common.Hash{0x07},
			Offset:    12,
			Bytes:     []byte("chunk"),
		},
		&types.MsgUpdateConfig{
			Authority:                    relayer,
			PreviousVerifierSetRetention: 3,
			MinimumRotationDelay:         86400,
		},
	}

	for _, msg := range msgs {
		raw, err := types.EncodeInstruction(msg)
		require.NoError(t, err)

		decoded, err := types.DecodeInstruction(raw)
		require.NoError(t, err, "%T", msg)
		require.Equal(t, msg, decoded)

		_, err = types.DecodeInstruction(append(raw, 0xaa))
		require.ErrorIs(t, err, types.ErrInvalidInstruction, "%T with trailing bytes", msg)
	}
}

func TestDecodeInstructionRejectsGarbage(t *testing.T) {
	_, err := types.DecodeInstruction(nil)
	require.ErrorIs(t, err, types.ErrInvalidInstruction)

	_, err = types.DecodeInstruction([]byte{0xfe})
	require.ErrorIs(t, err, types.ErrInvalidInstruction)

	_, err = types.DecodeInstruction([]byte{types.InstructionCommitMessagePayload, 0x05})
	require.ErrorIs(t, err, types.ErrInvalidInstruction)
}

func TestEventsRoundTrip(t *testing.T) {
	approved := types.MessageApprovedEvent{
		CommandID:          common.Hash{0x01},
		SourceChain:        "ethereum",
		MessageID:          "id-1",
		SourceAddress:      "0xabc",
		DestinationAddress: "cosmos1dest",
		PayloadHash:        common.Hash{0x02},
		PayloadRoot:        common.Hash{0x03},
		LeafIndex:          4,
	}
	parsed, err := types.ParseMessageApprovedEvent(abci.Event(approved.ToSDKEvent()))
	require.NoError(t, err)
	require.Equal(t, approved, parsed)

	rotated := types.VerifierSetRotatedEvent{VerifierSetHash: common.Hash{0x09}, Epoch: uint256.NewInt(12)}
	parsedRotation, err := types.ParseVerifierSetRotatedEvent(abci.Event(rotated.ToSDKEvent()))
	require.NoError(t, err)
	require.Equal(t, rotated.VerifierSetHash, parsedRotation.VerifierSetHash)
	require.True(t, rotated.Epoch.Eq(parsedRotation.Epoch))

	call := types.CallContractEvent{
		Sender:             "cosmos1sender",
		DestinationChain:   "ethereum",
		DestinationAddress: "0xdef",
		Payload:            []byte{0xca, 0xfe},
		PayloadHash:        crypto.Keccak256Hash([]byte{0xca, 0xfe}),
	}
	parsedCall, err := types.ParseCallContractEvent(abci.Event(call.ToSDKEvent()))
	require.NoError(t, err)
	require.Equal(t, call, parsedCall)

	_, err = types.ParseCallContractEvent(abci.Event(rotated.ToSDKEvent()))
	require.ErrorIs(t, err, types.ErrInvalidEncoding)
}
