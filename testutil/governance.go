package testutil

import (
	"fmt"
	"testing"
	"time"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	gatewaykeeper "github.com/gmp-gateway/cosmos/x/gateway/keeper"
	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
	governancekeeper "github.com/gmp-gateway/cosmos/x/governance/keeper"
	governancetypes "github.com/gmp-gateway/cosmos/x/governance/types"
)

const (
	// GovernanceChain is the trusted source chain of fixture governance.
	GovernanceChain = "ethereum"
	// GovernanceSourceAddress is the trusted source address of fixture governance.
	GovernanceSourceAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	// NativeDenom is the denom fixture proposals attach.
	NativeDenom = "stake"
)

// GovernanceFixture is a governance keeper wired to a live gateway and a
// store-backed bank, the way the app wires them.
type GovernanceFixture struct {
	Ctx        sdk.Context
	Gateway    *gatewaykeeper.Keeper
	Governance *governancekeeper.Keeper
	Bank       *BankKeeper
	Signers    SignerFixture
	Operator   sdk.AccAddress

	sequence int
}

// NewGovernanceFixture initializes a gateway with a single-signer verifier
// set and a governance module with the given minimum eta delay.
func NewGovernanceFixture(t testing.TB, minimumEtaDelay uint64) *GovernanceFixture {
	gatewayKey := storetypes.NewKVStoreKey(gatewaytypes.StoreKey)
	governanceKey := storetypes.NewKVStoreKey(governancetypes.StoreKey)
	bankKey := storetypes.NewKVStoreKey("bank")
	ctx := NewContext(t, gatewayKey, governanceKey, bankKey)

	gw := NewGatewayKeeper(gatewayKey)
	signers, _ := NewSecp256k1Fixture(t, "governance-fixture", []uint64{1}, 1, 1)
	operator := sdk.AccAddress([]byte("governance-operator1"))
	require.NoError(t, gw.InitializeConfig(ctx, DefaultDomainSeparator, []common.Hash{signers.Hash}, nil, 1, 0))

	bank := NewBankKeeper(bankKey)
	gov := governancekeeper.NewKeeper(governanceKey, bank, gw)
	require.NoError(t, gov.RegisterTarget(
		governancetypes.TargetID(gatewaytypes.ModuleName),
		governancekeeper.NewGatewayTarget(gatewaykeeper.NewMsgServerImpl(*gw)),
	))
	require.NoError(t, gov.InitializeConfig(ctx, governancetypes.Config{
		TrustedChains:           []string{GovernanceChain},
		GovernanceAddress:       GovernanceSourceAddress,
		MinimumProposalEtaDelay: minimumEtaDelay,
		Operator:                operator,
		NativeDenom:             NativeDenom,
	}))

	return &GovernanceFixture{
		Ctx:        ctx,
		Gateway:    gw,
		Governance: gov,
		Bank:       bank,
		Signers:    signers,
		Operator:   operator,
	}
}

// CommandMessage returns a gateway message from the trusted governance
// source to the governance module carrying payload.
func (f *GovernanceFixture) CommandMessage(payload []byte) gatewaytypes.Message {
	f.sequence++
	return gatewaytypes.Message{
		CCID:               gatewaytypes.CrossChainID{Chain: GovernanceChain, ID: fmt.Sprintf("governance-%d", f.sequence)},
		SourceAddress:      GovernanceSourceAddress,
		DestinationChain:   "gmp-gateway",
		DestinationAddress: governancetypes.ModuleAddress().String(),
		PayloadHash:        crypto.Keccak256Hash(payload),
	}
}

// Approve runs msg through a signed gateway approval.
func (f *GovernanceFixture) Approve(t testing.TB, msg gatewaytypes.Message) {
	payload, err := gatewaytypes.NewMessagesPayload([]gatewaytypes.Message{msg})
	require.NoError(t, err)
	_, err = f.Gateway.InitializeSession(f.Ctx, payload.MerkleRoot, f.Signers.Hash)
	require.NoError(t, err)
	leaf, proof, sig := f.Signers.SignedLeaf(t, 0, payload.MerkleRoot)
	_, _, err = f.Gateway.VerifySignature(f.Ctx, payload.MerkleRoot, leaf, proof, sig)
	require.NoError(t, err)
	messageProof, err := payload.MessageProof(0)
	require.NoError(t, err)
	_, err = f.Gateway.ApproveMessages(f.Ctx, payload.MerkleRoot, []gatewaytypes.MessageApproval{{Message: msg, Proof: messageProof}})
	require.NoError(t, err)
}

// ApproveCommand encodes command, approves it at the gateway and returns
// the approved message and its payload.
func (f *GovernanceFixture) ApproveCommand(t testing.TB, command governancetypes.GovernanceCommand) (gatewaytypes.Message, []byte) {
	payload, err := command.Encode()
	require.NoError(t, err)
	msg := f.CommandMessage(payload)
	f.Approve(t, msg)
	return msg, payload
}

// Deliver approves command and processes it through governance.
func (f *GovernanceFixture) Deliver(t testing.TB, command governancetypes.GovernanceCommand) governancetypes.GovernanceCommand {
	msg, payload := f.ApproveCommand(t, command)
	applied, err := f.Governance.ProcessGMP(f.Ctx, msg, payload, nil)
	require.NoError(t, err)
	return applied
}

// AdvanceTime moves the fixture block time forward by seconds.
func (f *GovernanceFixture) AdvanceTime(seconds int64) {
	f.Ctx = f.Ctx.WithBlockTime(f.Ctx.BlockTime().Add(time.Duration(seconds)*time.Second))
}

// Now returns the fixture block time in unix seconds.
func (f *GovernanceFixture) Now() uint64 {
	return uint64(f.Ctx.BlockTime().Unix())
}
