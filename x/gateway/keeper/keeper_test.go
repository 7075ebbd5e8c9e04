package keeper_test

import (
	"testing"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/gmp-gateway/cosmos/testutil"
	"github.com/gmp-gateway/cosmos/x/gateway/keeper"
	"github.com/gmp-gateway/cosmos/x/gateway/types"
)

type KeeperTestSuite struct {
	suite.Suite

	ctx      sdk.Context
	k        *keeper.Keeper
	v1       testutil.SignerFixture
	order    []int
	operator sdk.AccAddress
	dest     sdk.AccAddress
}

func TestKeeperTestSuite(t *testing.T) {
	suite.Run(t, new(KeeperTestSuite))
}

func (s *KeeperTestSuite) SetupTest() {
	s.ctx, s.k, _ = testutil.GatewayKeeper(s.T())
	s.v1, s.order = testutil.NewSecp256k1Fixture(s.T(), "v1", []uint64{1, 1, 1, 2, 3}, 5, 1)
	s.operator = sdk.AccAddress([]byte("gateway-operator-001"))
	s.dest = sdk.AccAddress([]byte("destination-program1"))

	s.Require().NoError(s.k.InitializeConfig(s.ctx, testutil.DefaultDomainSeparator, []common.Hash{s.v1.Hash}, s.operator, 2, 0))
}

// sign submits the signatures of the given input indices of fixture f.
func (s *KeeperTestSuite) sign(f testutil.SignerFixture, order []int, root common.Hash, inputs ...int) types.SignatureSession {
	var session types.SignatureSession
	for _, i := range inputs {
		leaf, proof, sig := f.SignedLeaf(s.T(), order[i], root)
		var err error
		session, _, err = s.k.VerifySignature(s.ctx, root, leaf, proof, sig)
		s.Require().NoError(err)
	}
	return session
}

func (s *KeeperTestSuite) message(id string) types.Message {
	return types.Message{
		CCID:               types.CrossChainID{Chain: "ethereum", ID: id},
		SourceAddress:      "0xSourceContract",
		DestinationChain:   "gmp-gateway",
		DestinationAddress: s.dest.String(),
		PayloadHash:        crypto.Keccak256Hash([]byte("payload-" + id)),
	}
}

// validatedPayload builds a payload of msgs, validates it with signers 3
// and 4 of v1 and returns it.
func (s *KeeperTestSuite) validatedPayload(msgs ...types.Message) types.Payload {
	payload, err := types.NewMessagesPayload(msgs)
	s.Require().NoError(err)
	_, err = s.k.InitializeSession(s.ctx, payload.MerkleRoot, s.v1.Hash)
	s.Require().NoError(err)
	session := s.sign(s.v1, s.order, payload.MerkleRoot, 3, 4)
	s.Require().True(session.IsValid)
	return payload
}

func (s *KeeperTestSuite) approvals(payload types.Payload) []types.MessageApproval {
	out := make([]types.MessageApproval, len(payload.Messages))
	for i, m := range payload.Messages {
		proof, err := payload.MessageProof(i)
		s.Require().NoError(err)
		out[i] = types.MessageApproval{Message: m, Proof: proof}
	}
	return out
}

func (s *KeeperTestSuite) rotate(f testutil.SignerFixture, order []int, newSetHash common.Hash, cosigned bool) error {
	root := types.RotationPayloadRoot(newSetHash)
	if _, err := s.k.GetSession(s.ctx, root); err != nil {
		_, err := s.k.InitializeSession(s.ctx, root, f.Hash)
		s.Require().NoError(err)
		s.sign(f, order, root, 3, 4)
	}
	_, err := s.k.RotateVerifierSet(s.ctx, root, newSetHash, cosigned)
	return err
}

func (s *KeeperTestSuite) TestInitializeConfig() {
	config, err := s.k.GetConfig(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(uint64(1), config.CurrentEpoch)
	s.Require().Equal(testutil.DefaultDomainSeparator, config.DomainSeparator)
	s.Require().True(config.Operator.Equals(s.operator))

	tracker, found := s.k.GetVerifierSetTracker(s.ctx, s.v1.Hash)
	s.Require().True(found)
	s.Require().Equal(uint64(1), tracker.Epoch.Uint64())

	err = s.k.InitializeConfig(s.ctx, testutil.DefaultDomainSeparator, []common.Hash{s.v1.Hash}, s.operator, 2, 0)
	s.Require().ErrorIs(err, types.ErrAlreadyInitialized)
}

func (s *KeeperTestSuite) TestInitializeConfigMultipleSets() {
	ctx, k, _ := testutil.GatewayKeeper(s.T())
	sets := []common.Hash{{0x01}, {0x02}, {0x03}}
	s.Require().NoError(k.InitializeConfig(ctx, testutil.DefaultDomainSeparator, sets, nil, 1, 0))

	config, err := k.GetConfig(ctx)
	s.Require().NoError(err)
	s.Require().Equal(uint64(3), config.CurrentEpoch)
	for i, h := range sets {
		tracker, found := k.GetVerifierSetTracker(ctx, h)
		s.Require().True(found)
		s.Require().Equal(uint64(i+1), tracker.Epoch.Uint64())
	}
	s.Require().Len(k.GetAllVerifierSetTrackers(ctx), 3)

	ctx2, k2, _ := testutil.GatewayKeeper(s.T())
	err = k2.InitializeConfig(ctx2, testutil.DefaultDomainSeparator, []common.Hash{{0x01}, {0x01}}, nil, 1, 0)
	s.Require().ErrorIs(err, types.ErrVerifierSetExists)
}

// Weights [1,1,1,2,3], threshold 5, signers {3,4} reach quorum.
func (s *KeeperTestSuite) TestHappyPathWeightedQuorum() {
	msg := s.message("s1")
	payload, err := types.NewMessagesPayload([]types.Message{msg})
	s.Require().NoError(err)
	root := payload.MerkleRoot

	_, err = s.k.InitializeSession(s.ctx, root, s.v1.Hash)
	s.Require().NoError(err)

	session := s.sign(s.v1, s.order, root, 3)
	s.Require().False(session.IsValid)
	s.Require().Equal(uint64(2), session.AccumulatedWeight.Uint64())
	s.Require().Equal(types.SessionStatusAccumulating, session.Status())

	session = s.sign(s.v1, s.order, root, 4)
	s.Require().True(session.IsValid)
	s.Require().Equal(uint64(5), session.AccumulatedWeight.Uint64())
	s.Require().Equal(uint64(5), session.Threshold.Uint64())
	s.Require().Equal(2, session.SignerCount())

	s.ctx = s.ctx.WithEventManager(sdk.NewEventManager())
	ids, err := s.k.ApproveMessages(s.ctx, root, s.approvals(payload))
	s.Require().NoError(err)
	s.Require().Equal([]common.Hash{msg.CommandID()}, ids)

	ev, err := types.FindEvent(s.ctx.EventManager().ABCIEvents(), types.EventTypeMessageApproved)
	s.Require().NoError(err)
	approved, err := types.ParseMessageApprovedEvent(ev)
	s.Require().NoError(err)
	s.Require().Equal(msg.CommandID(), approved.CommandID)
	s.Require().Equal("ethereum", approved.SourceChain)
	s.Require().Equal("s1", approved.MessageID)
	s.Require().Equal(msg.PayloadHash, approved.PayloadHash)
	s.Require().Equal(root, approved.PayloadRoot)

	entry, found := s.k.GetApproval(s.ctx, msg.CommandID())
	s.Require().True(found)
	s.Require().Equal(types.ApprovalStatusApproved, entry.Status)

	_, err = s.k.ValidateMessage(s.ctx, s.dest.String(), msg)
	s.Require().NoError(err)
	ev, err = types.FindEvent(s.ctx.EventManager().ABCIEvents(), types.EventTypeMessageExecuted)
	s.Require().NoError(err)
	executed, err := types.ParseMessageExecutedEvent(ev)
	s.Require().NoError(err)
	s.Require().Equal(msg.CommandID(), executed.CommandID)

	entry, _ = s.k.GetApproval(s.ctx, msg.CommandID())
	s.Require().Equal(types.ApprovalStatusExecuted, entry.Status)

	_, err = s.k.ValidateMessage(s.ctx, s.dest.String(), msg)
	s.Require().ErrorIs(err, types.ErrAlreadyExecuted)
}

// The same signer twice counts once.
func (s *KeeperTestSuite) TestDuplicateSignerIgnored() {
	root := common.HexToHash("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	_, err := s.k.InitializeSession(s.ctx, root, s.v1.Hash)
	s.Require().NoError(err)

	leaf, proof, sig := s.v1.SignedLeaf(s.T(), s.order[4], root)
	session, duplicate, err := s.k.VerifySignature(s.ctx, root, leaf, proof, sig)
	s.Require().NoError(err)
	s.Require().False(duplicate)
	s.Require().Equal(uint64(3), session.AccumulatedWeight.Uint64())

	session, duplicate, err = s.k.VerifySignature(s.ctx, root, leaf, proof, sig)
	s.Require().NoError(err)
	s.Require().True(duplicate)
	s.Require().Equal(uint64(3), session.AccumulatedWeight.Uint64())
	s.Require().False(session.IsValid)

	stored, err := s.k.GetSession(s.ctx, root)
	s.Require().NoError(err)
	s.Require().Equal(uint64(3), stored.AccumulatedWeight.Uint64())
}

// Rotation installs the next epoch and the old set keeps signing
// inside the retention window.
func (s *KeeperTestSuite) TestRotation() {
	v2, _ := testutil.NewSecp256k1Fixture(s.T(), "v2", []uint64{1, 1, 1}, 2, 2)

	s.ctx = s.ctx.WithEventManager(sdk.NewEventManager())
	s.Require().NoError(s.rotate(s.v1, s.order, v2.Hash, false))

	config, err := s.k.GetConfig(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(uint64(2), config.CurrentEpoch)
	tracker, found := s.k.GetVerifierSetTracker(s.ctx, v2.Hash)
	s.Require().True(found)
	s.Require().Equal(uint64(2), tracker.Epoch.Uint64())

	ev, err := types.FindEvent(s.ctx.EventManager().ABCIEvents(), types.EventTypeVerifierSetRotated)
	s.Require().NoError(err)
	rotated, err := types.ParseVerifierSetRotatedEvent(ev)
	s.Require().NoError(err)
	s.Require().Equal(v2.Hash, rotated.VerifierSetHash)
	s.Require().Equal(uint64(2), rotated.Epoch.Uint64())

	root := common.HexToHash("0xbb")
	_, err = s.k.InitializeSession(s.ctx, root, s.v1.Hash)
	s.Require().NoError(err)
	session := s.sign(s.v1, s.order, root, 3, 4)
	s.Require().True(session.IsValid)

	err = s.rotate(s.v1, s.order, v2.Hash, true)
	s.Require().ErrorIs(err, types.ErrVerifierSetExists)
}

// A set older than the retention window cannot open sessions or sign.
func (s *KeeperTestSuite) TestStaleSetRejected() {
	ctx, k, _ := testutil.GatewayKeeper(s.T())
	sets := []common.Hash{{0x01}, s.v1.Hash, {0x03}, {0x04}, {0x05}}
	s.Require().NoError(k.InitializeConfig(ctx, testutil.DefaultDomainSeparator, sets, nil, 2, 0))

	_, err := k.InitializeSession(ctx, common.HexToHash("0xcc"), s.v1.Hash)
	s.Require().ErrorIs(err, types.ErrSessionExpiredSet)

	// A session opened while the set was live fails once the set ages out.
	root := common.HexToHash("0xdd")
	_, err = s.k.InitializeSession(s.ctx, root, s.v1.Hash)
	s.Require().NoError(err)
	for i := 0; i < 3; i++ {
		next, _ := testutil.NewSecp256k1Fixture(s.T(), "aging", []uint64{1}, 1, uint64(i+2))
		s.Require().NoError(s.rotate(s.v1, s.order, next.Hash, true))
	}
	config, err := s.k.GetConfig(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(uint64(4), config.CurrentEpoch)

	leaf, proof, sig := s.v1.SignedLeaf(s.T(), 0, root)
	_, _, err = s.k.VerifySignature(s.ctx, root, leaf, proof, sig)
	s.Require().ErrorIs(err, types.ErrSessionExpiredSet)
}

func (s *KeeperTestSuite) TestSessionErrors() {
	root := common.HexToHash("0x01")

	_, err := s.k.InitializeSession(s.ctx, root, common.HexToHash("0xdead"))
	s.Require().ErrorIs(err, types.ErrVerifierSetNotFound)

	leaf, proof, sig := s.v1.SignedLeaf(s.T(), 0, root)
	_, _, err = s.k.VerifySignature(s.ctx, root, leaf, proof, sig)
	s.Require().ErrorIs(err, types.ErrSessionNotFound)

	_, err = s.k.InitializeSession(s.ctx, root, s.v1.Hash)
	s.Require().NoError(err)
	_, err = s.k.InitializeSession(s.ctx, root, s.v1.Hash)
	s.Require().ErrorIs(err, types.ErrSessionAlreadyExists)

	// signature over another root
	_, _, wrongSig := s.v1.SignedLeaf(s.T(), 0, common.HexToHash("0x02"))
	_, _, err = s.k.VerifySignature(s.ctx, root, leaf, proof, wrongSig)
	s.Require().ErrorIs(err, types.ErrInvalidSignature)

	// tampered weight no longer hashes into the set
	tampered := leaf
	tampered.Signer.Weight = leaf.Threshold.Clone()
	_, _, err = s.k.VerifySignature(s.ctx, root, tampered, proof, sig)
	s.Require().ErrorIs(err, types.ErrSignerNotInSet)

	// leaf of a set the session is not bound to
	other, _ := testutil.NewSecp256k1Fixture(s.T(), "other", []uint64{1, 1}, 1, 1)
	otherLeaf, otherProof, otherSig := other.SignedLeaf(s.T(), 0, root)
	_, _, err = s.k.VerifySignature(s.ctx, root, otherLeaf, otherProof, otherSig)
	s.Require().ErrorIs(err, types.ErrSignerNotInSet)

	// proof position disagreeing with the leaf
	shifted := proof
	shifted.LeafIndex = proof.LeafIndex + 1
	_, _, err = s.k.VerifySignature(s.ctx, root, leaf, shifted, sig)
	s.Require().ErrorIs(err, types.ErrSignerNotInSet)

	session, err := s.k.GetSession(s.ctx, root)
	s.Require().NoError(err)
	s.Require().True(session.AccumulatedWeight.IsZero())
	s.Require().Equal(types.SessionStatusInit, session.Status())
}

func (s *KeeperTestSuite) TestMixedKeyTypes() {
	ctx, k, _ := testutil.GatewayKeeper(s.T())
	signers := []testutil.TestSigner{
		testutil.NewEd25519Signer("mixed-0"),
		testutil.NewSecp256k1Signer("mixed-1"),
	}
	f, order := testutil.NewSignerFixture(s.T(), testutil.DefaultDomainSeparator, signers, []uint64{1, 1}, 2, 1)
	s.Require().NoError(k.InitializeConfig(ctx, testutil.DefaultDomainSeparator, []common.Hash{f.Hash}, nil, 0, 0))

	root := common.HexToHash("0x77")
	_, err := k.InitializeSession(ctx, root, f.Hash)
	s.Require().NoError(err)
	for _, i := range []int{0, 1} {
		leaf, proof, sig := f.SignedLeaf(s.T(), order[i], root)
		_, _, err := k.VerifySignature(ctx, root, leaf, proof, sig)
		s.Require().NoError(err)
	}
	session, err := k.GetSession(ctx, root)
	s.Require().NoError(err)
	s.Require().True(session.IsValid)
}

func (s *KeeperTestSuite) TestApproveRequiresValidSession() {
	msg := s.message("early")
	payload, err := types.NewMessagesPayload([]types.Message{msg})
	s.Require().NoError(err)
	_, err = s.k.InitializeSession(s.ctx, payload.MerkleRoot, s.v1.Hash)
	s.Require().NoError(err)
	s.sign(s.v1, s.order, payload.MerkleRoot, 4)

	_, err = s.k.ApproveMessages(s.ctx, payload.MerkleRoot, s.approvals(payload))
	s.Require().ErrorIs(err, types.ErrSessionNotValid)
}

func (s *KeeperTestSuite) TestApproveIdempotentAndDoubleApproval() {
	m1, m2, m3 := s.message("m1"), s.message("m2"), s.message("m3")
	p1 := s.validatedPayload(m1, m2)

	_, err := s.k.ApproveMessages(s.ctx, p1.MerkleRoot, s.approvals(p1))
	s.Require().NoError(err)

	s.ctx = s.ctx.WithEventManager(sdk.NewEventManager())
	_, err = s.k.ApproveMessages(s.ctx, p1.MerkleRoot, s.approvals(p1))
	s.Require().NoError(err)
	s.Require().Empty(s.ctx.EventManager().ABCIEvents())

	p2 := s.validatedPayload(m1, m3)
	_, err = s.k.ApproveMessages(s.ctx, p2.MerkleRoot, s.approvals(p2))
	s.Require().ErrorIs(err, types.ErrDoubleApproval)

	// an executed approval is not reset by a replay of its payload
	_, err = s.k.ValidateMessage(s.ctx, s.dest.String(), m2)
	s.Require().NoError(err)
	_, err = s.k.ApproveMessages(s.ctx, p1.MerkleRoot, s.approvals(p1))
	s.Require().NoError(err)
	entry, _ := s.k.GetApproval(s.ctx, m2.CommandID())
	s.Require().Equal(types.ApprovalStatusExecuted, entry.Status)
}

func (s *KeeperTestSuite) TestApproveRejectsBadProof() {
	m1, m2 := s.message("a"), s.message("b")
	payload := s.validatedPayload(m1, m2)
	approvals := s.approvals(payload)
	approvals[0].Proof = approvals[1].Proof

	_, err := s.k.ApproveMessages(s.ctx, payload.MerkleRoot, approvals)
	s.Require().ErrorIs(err, types.ErrInvalidProof)

	forged := s.message("forged")
	_, err = s.k.ApproveMessages(s.ctx, payload.MerkleRoot, []types.MessageApproval{{Message: forged, Proof: approvals[1].Proof}})
	s.Require().ErrorIs(err, types.ErrInvalidProof)
}

func (s *KeeperTestSuite) TestValidateMessageChecks() {
	msg := s.message("v")
	payload := s.validatedPayload(msg)

	_, err := s.k.ValidateMessage(s.ctx, s.dest.String(), msg)
	s.Require().ErrorIs(err, types.ErrApprovalNotFound)

	_, err = s.k.ApproveMessages(s.ctx, payload.MerkleRoot, s.approvals(payload))
	s.Require().NoError(err)

	altered := msg
	altered.PayloadHash = common.HexToHash("0x99")
	_, err = s.k.ValidateMessage(s.ctx, s.dest.String(), altered)
	s.Require().ErrorIs(err, types.ErrPayloadHashMismatch)

	_, err = s.k.ValidateMessage(s.ctx, s.operator.String(), msg)
	s.Require().ErrorIs(err, types.ErrDestinationMismatch)

	entry, _ := s.k.GetApproval(s.ctx, msg.CommandID())
	s.Require().Equal(types.ApprovalStatusApproved, entry.Status)
}

func (s *KeeperTestSuite) TestRotationRules() {
	v2, _ := testutil.NewSecp256k1Fixture(s.T(), "v2", []uint64{1, 1, 1, 1, 1}, 3, 2)
	v3, _ := testutil.NewSecp256k1Fixture(s.T(), "v3", []uint64{1}, 1, 3)

	// root that is not the rotation commitment
	bogus := common.HexToHash("0x1234")
	_, err := s.k.InitializeSession(s.ctx, bogus, s.v1.Hash)
	s.Require().NoError(err)
	s.sign(s.v1, s.order, bogus, 3, 4)
	_, err = s.k.RotateVerifierSet(s.ctx, bogus, v2.Hash, false)
	s.Require().ErrorIs(err, types.ErrNotRotationPayload)

	// session below threshold
	root := types.RotationPayloadRoot(v2.Hash)
	_, err = s.k.InitializeSession(s.ctx, root, s.v1.Hash)
	s.Require().NoError(err)
	s.sign(s.v1, s.order, root, 4)
	_, err = s.k.RotateVerifierSet(s.ctx, root, v2.Hash, false)
	s.Require().ErrorIs(err, types.ErrSessionNotValid)
	s.sign(s.v1, s.order, root, 3)

	// cooldown
	s.Require().NoError(s.k.UpdateConfig(s.ctx, s.operator, 2, 3600))
	_, err = s.k.RotateVerifierSet(s.ctx, root, v2.Hash, false)
	s.Require().ErrorIs(err, types.ErrRotationCooldown)
	s.ctx = s.ctx.WithBlockTime(testutil.GenesisTime.Add(time.Hour))
	_, err = s.k.RotateVerifierSet(s.ctx, root, v2.Hash, false)
	s.Require().NoError(err)

	// v1 is no longer the latest set
	s.ctx = s.ctx.WithBlockTime(testutil.GenesisTime.Add(3 * time.Hour))
	err = s.rotate(s.v1, s.order, v3.Hash, false)
	s.Require().ErrorIs(err, types.ErrOperatorOnly)
	err = s.rotate(s.v1, s.order, v3.Hash, true)
	s.Require().NoError(err)

	config, err := s.k.GetConfig(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(uint64(3), config.CurrentEpoch)
	s.Require().Equal(uint64(testutil.GenesisTime.Add(3*time.Hour).Unix()), config.LastRotationTimestamp)
}

func (s *KeeperTestSuite) TestOperatorship() {
	newOperator := sdk.AccAddress([]byte("gateway-operator-002"))
	stranger := sdk.AccAddress([]byte("not-the-operator-xyz"))

	err := s.k.TransferOperatorship(s.ctx, stranger, newOperator)
	s.Require().ErrorIs(err, sdkerrors.ErrUnauthorized)

	s.ctx = s.ctx.WithEventManager(sdk.NewEventManager())
	s.Require().NoError(s.k.TransferOperatorship(s.ctx, s.operator, newOperator))
	s.Require().True(s.k.IsOperator(s.ctx, newOperator))
	s.Require().False(s.k.IsOperator(s.ctx, s.operator))

	ev, err := types.FindEvent(s.ctx.EventManager().ABCIEvents(), types.EventTypeOperatorshipTransferred)
	s.Require().NoError(err)
	transferred, err := types.ParseOperatorshipTransferredEvent(ev)
	s.Require().NoError(err)
	s.Require().Equal(s.operator.String(), transferred.PreviousOperator)
	s.Require().Equal(newOperator.String(), transferred.NewOperator)

	// the authority may always act
	s.Require().NoError(s.k.TransferOperatorship(s.ctx, testutil.GovernanceAuthority(), s.operator))
	s.Require().NoError(s.k.UpdateConfig(s.ctx, testutil.GovernanceAuthority(), 7, 10))
	config, err := s.k.GetConfig(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(uint64(7), config.PreviousVerifierSetRetention)
	s.Require().Equal(uint64(10), config.MinimumRotationDelay)

	err = s.k.UpdateConfig(s.ctx, stranger, 1, 1)
	s.Require().ErrorIs(err, sdkerrors.ErrUnauthorized)
}

func (s *KeeperTestSuite) TestMessagePayloadStaging() {
	payer := sdk.AccAddress([]byte("payload-payer-000001"))
	id := common.HexToHash("0x0c")

	err := s.k.InitializeMessagePayload(s.ctx, payer, id, types.MaxMessagePayloadSize+1)
	s.Require().ErrorIs(err, types.ErrMessagePayloadTooLarge)

	s.Require().NoError(s.k.InitializeMessagePayload(s.ctx, payer, id, 8))
	err = s.k.InitializeMessagePayload(s.ctx, payer, id, 8)
	s.Require().ErrorIs(err, types.ErrMessagePayloadExists)

	err = s.k.WriteMessagePayload(s.ctx, payer, id, 6, []byte{1, 2, 3})
	s.Require().ErrorIs(err, types.ErrMessagePayloadOutOfBounds)
	err = s.k.WriteMessagePayload(s.ctx, payer, id, ^uint64(0), []byte{1})
	s.Require().ErrorIs(err, types.ErrMessagePayloadOutOfBounds)

	s.Require().NoError(s.k.WriteMessagePayload(s.ctx, payer, id, 0, []byte("gate")))
	s.Require().NoError(s.k.WriteMessagePayload(s.ctx, payer, id, 4, []byte("way!")))

	_, _, err = s.k.GetCommittedMessagePayload(s.ctx, payer, id)
	s.Require().ErrorIs(err, types.ErrMessagePayloadNotCommitted)

	hash, err := s.k.CommitMessagePayload(s.ctx, payer, id)
	s.Require().NoError(err)
	s.Require().Equal(crypto.Keccak256Hash([]byte("gateway!")), hash)

	raw, committedHash, err := s.k.GetCommittedMessagePayload(s.ctx, payer, id)
	s.Require().NoError(err)
	s.Require().Equal([]byte("gateway!"), raw)
	s.Require().Equal(hash, committedHash)

	err = s.k.WriteMessagePayload(s.ctx, payer, id, 0, []byte{0})
	s.Require().ErrorIs(err, types.ErrMessagePayloadCommitted)
	_, err = s.k.CommitMessagePayload(s.ctx, payer, id)
	s.Require().ErrorIs(err, types.ErrMessagePayloadCommitted)

	// buffers are scoped by payer
	other := sdk.AccAddress([]byte("payload-payer-000002"))
	_, err = s.k.GetMessagePayload(s.ctx, other, id)
	s.Require().ErrorIs(err, types.ErrMessagePayloadNotFound)

	s.Require().NoError(s.k.CloseMessagePayload(s.ctx, payer, id))
	_, err = s.k.GetMessagePayload(s.ctx, payer, id)
	s.Require().ErrorIs(err, types.ErrMessagePayloadNotFound)
	err = s.k.CloseMessagePayload(s.ctx, payer, id)
	s.Require().ErrorIs(err, types.ErrMessagePayloadNotFound)
}

func (s *KeeperTestSuite) TestCallContractAndExecutionInfo() {
	sender := sdk.AccAddress([]byte("outbound-sender-0001"))
	s.ctx = s.ctx.WithEventManager(sdk.NewEventManager())

	hash, err := s.k.CallContract(s.ctx, sender, "ethereum", "0xDestination", []byte{0xca, 0xfe})
	s.Require().NoError(err)
	s.Require().Equal(crypto.Keccak256Hash([]byte{0xca, 0xfe}), hash)

	ev, err := types.FindEvent(s.ctx.EventManager().ABCIEvents(), types.EventTypeCallContract)
	s.Require().NoError(err)
	call, err := types.ParseCallContractEvent(ev)
	s.Require().NoError(err)
	s.Require().Equal(sender.String(), call.Sender)
	s.Require().Equal("ethereum", call.DestinationChain)
	s.Require().Equal("0xDestination", call.DestinationAddress)
	s.Require().Equal([]byte{0xca, 0xfe}, call.Payload)
	s.Require().Equal(hash, call.PayloadHash)

	_, found := s.k.GetExecutionInfo(s.ctx, s.dest)
	s.Require().False(found)
	s.Require().NoError(s.k.SetExecutionInfo(s.ctx, s.dest, []byte("dispatch-v1")))
	descriptor, found := s.k.GetExecutionInfo(s.ctx, s.dest)
	s.Require().True(found)
	s.Require().Equal([]byte("dispatch-v1"), descriptor)
}

func TestUninitializedGateway(t *testing.T) {
	ctx, k, _ := testutil.GatewayKeeper(t)

	_, err := k.GetConfig(ctx)
	require.ErrorIs(t, err, types.ErrNotInitialized)
	_, err = k.InitializeSession(ctx, common.HexToHash("0x01"), common.HexToHash("0x02"))
	require.ErrorIs(t, err, types.ErrNotInitialized)
	err = k.InitializeConfig(ctx, testutil.DefaultDomainSeparator, nil, nil, 0, 0)
	require.ErrorIs(t, err, types.ErrInvalidVerifierSet)
}
