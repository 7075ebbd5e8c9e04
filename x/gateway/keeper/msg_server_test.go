package keeper_test

import (
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/gmp-gateway/cosmos/testutil"
	"github.com/gmp-gateway/cosmos/x/gateway/keeper"
	"github.com/gmp-gateway/cosmos/x/gateway/types"
)

type msgServerFixture struct {
	ctx      sdk.Context
	k        *keeper.Keeper
	srv      types.MsgServer
	set      testutil.SignerFixture
	relayer  sdk.AccAddress
	operator sdk.AccAddress
}

func newMsgServerFixture(t *testing.T) msgServerFixture {
	ctx, k, _ := testutil.GatewayKeeper(t)
	set, _ := testutil.NewSecp256k1Fixture(t, "msg-server", []uint64{1, 1}, 2, 1)
	operator := sdk.AccAddress([]byte("msg-server-operator1"))
	require.NoError(t, k.InitializeConfig(ctx, testutil.DefaultDomainSeparator, []common.Hash{set.Hash}, operator, 1, 3600))
	return msgServerFixture{
		ctx:      ctx,
		k:        k,
		srv:      keeper.NewMsgServerImpl(*k),
		set:      set,
		relayer:  sdk.AccAddress([]byte("msg-server-relayer01")),
		operator: operator,
	}
}

// validate opens a session over root and submits every signer of the set.
func (f msgServerFixture) validate(t *testing.T, root common.Hash) {
	_, err := f.srv.InitializeVerificationSession(f.ctx, &types.MsgInitializeVerificationSession{
		Relayer:        f.relayer.String(),
		PayloadRoot:    root,
		SigningSetHash: f.set.Hash,
	})
	require.NoError(t, err)

	for pos := range f.set.Signers {
		leaf, proof, sig := f.set.SignedLeaf(t, pos, root)
		resp, err := f.srv.VerifySignature(f.ctx, &types.MsgVerifySignature{
			Relayer:     f.relayer.String(),
			PayloadRoot: root,
			SignerLeaf:  leaf,
			SignerProof: proof,
			Signature:   sig,
		})
		require.NoError(t, err)
		require.False(t, resp.Duplicate)
		require.Equal(t, pos == len(f.set.Signers)-1, resp.IsValid)
	}
}

func testMessage(id string, dest sdk.AccAddress) types.Message {
	return types.Message{
		CCID:               types.CrossChainID{Chain: "ethereum", ID: id},
		SourceAddress:      "0xabc",
		DestinationChain:   "gmp-gateway",
		DestinationAddress: dest.String(),
		PayloadHash:        crypto.Keccak256Hash([]byte(id)),
	}
}

func TestMsgServerApproveMessagesIsAtomic(t *testing.T) {
	f := newMsgServerFixture(t)
	dest := sdk.AccAddress([]byte("msg-server-dest00001"))
	msgs := []types.Message{testMessage("m-0", dest), testMessage("m-1", dest)}
	payload, err := types.NewMessagesPayload(msgs)
	require.NoError(t, err)
	f.validate(t, payload.MerkleRoot)

	proof0, err := payload.MessageProof(0)
	require.NoError(t, err)
	proof1, err := payload.MessageProof(1)
	require.NoError(t, err)

	before := len(f.ctx.EventManager().Events())
	_, err = f.srv.ApproveMessages(f.ctx, &types.MsgApproveMessages{
		Relayer:     f.relayer.String(),
		PayloadRoot: payload.MerkleRoot,
		Approvals: []types.MessageApproval{
			{Message: msgs[0], Proof: proof0},
			{Message: msgs[1], Proof: proof0},
		},
	})
	require.ErrorIs(t, err, types.ErrInvalidProof)

	_, found := f.k.GetApproval(f.ctx, msgs[0].CommandID())
	require.False(t, found, "failed batch must not leave partial approvals")
	require.Len(t, f.ctx.EventManager().Events(), before)

	resp, err := f.srv.ApproveMessages(f.ctx, &types.MsgApproveMessages{
		Relayer:     f.relayer.String(),
		PayloadRoot: payload.MerkleRoot,
		Approvals: []types.MessageApproval{
			{Message: msgs[0], Proof: proof0},
			{Message: msgs[1], Proof: proof1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, []common.Hash{msgs[0].CommandID(), msgs[1].CommandID()}, resp.CommandIDs)

	ev, err := types.FindEvent(f.ctx.EventManager().ABCIEvents(), types.EventTypeMessageApproved)
	require.NoError(t, err)
	approved, err := types.ParseMessageApprovedEvent(ev)
	require.NoError(t, err)
	require.Equal(t, msgs[0].CommandID(), approved.CommandID)

	executed, err := f.srv.ValidateMessage(f.ctx, &types.MsgValidateMessage{Caller: dest.String(), Message: msgs[1]})
	require.NoError(t, err)
	require.Equal(t, msgs[1].CommandID(), executed.CommandID)
}

func TestMsgServerRotateVerifierSet(t *testing.T) {
	f := newMsgServerFixture(t)
	next, _ := testutil.NewSecp256k1Fixture(t, "msg-server-next", []uint64{1}, 1, 2)
	root := types.RotationPayloadRoot(next.Hash)
	f.validate(t, root)

	stranger := sdk.AccAddress([]byte("not-the-operator0001"))
	_, err := f.srv.RotateVerifierSet(f.ctx, &types.MsgRotateVerifierSet{
		Relayer:            f.relayer.String(),
		PayloadRoot:        root,
		NewVerifierSetHash: next.Hash,
		Operator:           stranger.String(),
	})
	require.ErrorIs(t, err, types.ErrOperatorOnly)
	require.False(t, f.k.HasVerifierSetTracker(f.ctx, next.Hash))

	// initialization starts the cooldown, so only the operator may rotate yet
	config, err := f.k.GetConfig(f.ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(testutil.GenesisTime.Unix()), config.LastRotationTimestamp)
	_, err = f.srv.RotateVerifierSet(f.ctx, &types.MsgRotateVerifierSet{
		Relayer:            f.relayer.String(),
		PayloadRoot:        root,
		NewVerifierSetHash: next.Hash,
	})
	require.ErrorIs(t, err, types.ErrRotationCooldown)

	resp, err := f.srv.RotateVerifierSet(f.ctx, &types.MsgRotateVerifierSet{
		Relayer:            f.relayer.String(),
		PayloadRoot:        root,
		NewVerifierSetHash: next.Hash,
		Operator:           f.operator.String(),
	})
	require.NoError(t, err)
	require.Equal(t, uint64(2), resp.Epoch.Uint64())

	ev, err := types.FindEvent(f.ctx.EventManager().ABCIEvents(), types.EventTypeVerifierSetRotated)
	require.NoError(t, err)
	rotated, err := types.ParseVerifierSetRotatedEvent(ev)
	require.NoError(t, err)
	require.Equal(t, next.Hash, rotated.VerifierSetHash)
}

func TestMsgServerGovernedOperations(t *testing.T) {
	f := newMsgServerFixture(t)
	authority := testutil.GovernanceAuthority()
	newOperator := sdk.AccAddress([]byte("msg-server-operator2"))

	_, err := f.srv.UpdateConfig(f.ctx, &types.MsgUpdateConfig{
		Authority:                    f.relayer.String(),
		PreviousVerifierSetRetention: 9,
	})
	require.Error(t, err)

	_, err = f.srv.UpdateConfig(f.ctx, &types.MsgUpdateConfig{
		Authority:                    authority.String(),
		PreviousVerifierSetRetention: 9,
		MinimumRotationDelay:         60,
	})
	require.NoError(t, err)
	config, err := f.k.GetConfig(f.ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(9), config.PreviousVerifierSetRetention)
	require.Equal(t, uint64(60), config.MinimumRotationDelay)

	_, err = f.srv.TransferOperatorship(f.ctx, &types.MsgTransferOperatorship{
		Authority:   f.operator.String(),
		NewOperator: newOperator.String(),
	})
	require.NoError(t, err)
	require.True(t, f.k.IsOperator(f.ctx, newOperator))
	require.False(t, f.k.IsOperator(f.ctx, f.operator))

	_, err = f.srv.TransferOperatorship(f.ctx, &types.MsgTransferOperatorship{
		Authority:   "not-bech32",
		NewOperator: newOperator.String(),
	})
	require.Error(t, err)
}

func TestRouteMsgDispatchesDecodedInstructions(t *testing.T) {
	f := newMsgServerFixture(t)
	sender := sdk.AccAddress([]byte("msg-server-sender001"))

	raw, err := types.EncodeInstruction(&types.MsgCallContract{
		Sender:             sender.String(),
		DestinationChain:   "ethereum",
		DestinationAddress: "0xdeadbeef",
		Payload:            []byte("hello"),
	})
	require.NoError(t, err)
	decoded, err := types.DecodeInstruction(raw)
	require.NoError(t, err)

	out, err := types.RouteMsg(f.ctx, f.srv, decoded)
	require.NoError(t, err)
	resp, ok := out.(*types.MsgCallContractResponse)
	require.True(t, ok)
	require.Equal(t, crypto.Keccak256Hash([]byte("hello")), resp.PayloadHash)

	ev, err := types.FindEvent(f.ctx.EventManager().ABCIEvents(), types.EventTypeCallContract)
	require.NoError(t, err)
	call, err := types.ParseCallContractEvent(ev)
	require.NoError(t, err)
	require.Equal(t, sender.String(), call.Sender)
	require.Equal(t, []byte("hello"), call.Payload)

	_, err = types.RouteMsg(f.ctx, f.srv, nil)
	require.Error(t, err)
}
