package types_test

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/gmp-gateway/cosmos/testutil"
	"github.com/gmp-gateway/cosmos/x/gateway/types"
)

func sampleMessage() types.Message {
	return types.Message{
		CCID:               types.CrossChainID{Chain: "ethereum", ID: "0xabc-1"},
		SourceAddress:      "0x1111111111111111111111111111111111111111",
		DestinationChain:   "gmp-gateway",
		DestinationAddress: "cosmos1destination",
		PayloadHash:        crypto.Keccak256Hash([]byte("payload")),
	}
}

func TestMessageEncodingLayout(t *testing.T) {
	m := types.Message{
		CCID:               types.CrossChainID{Chain: "a", ID: "bc"},
		SourceAddress:      "",
		DestinationChain:   "d",
		DestinationAddress: "e",
	}
	enc := m.Encode()
	require.Equal(t, []byte{1, 0, 0, 0, 'a'}, enc[:5])
	require.Equal(t, []byte{2, 0, 0, 0, 'b', 'c'}, enc[5:11])
	require.Equal(t, []byte{0, 0, 0, 0}, enc[11:15])
	require.Len(t, enc, 15+5+5+32)
	require.Equal(t, crypto.Keccak256Hash(enc), m.Hash())
}

func TestMessageViewMatchesOwnedValue(t *testing.T) {
	m := sampleMessage()
	enc := m.Encode()

	view, err := types.ReadMessageView(types.NewDecoder(enc))
	require.NoError(t, err)
	require.Equal(t, m.Hash(), view.Hash())
	require.Equal(t, m, view.Message())

	decoded, err := types.DecodeMessage(enc)
	require.NoError(t, err)
	require.Equal(t, m, decoded)

	_, err = types.DecodeMessage(append(enc, 0))
	require.ErrorIs(t, err, types.ErrInvalidEncoding)
	_, err = types.DecodeMessage(enc[:len(enc)-1])
	require.ErrorIs(t, err, types.ErrInvalidEncoding)
}

func TestProperty_MessageViewHashEqualsOwnedHash(t *testing.T) {
	properties := testutil.NewPropertyTester(t)

	properties.Property("hashing a view and its owned copy agree", prop.ForAll(
		func(m types.Message) bool {
			view, err := types.ReadMessageView(types.NewDecoder(m.Encode()))
			if err != nil {
				return false
			}
			return view.Hash() == m.Hash() && view.Message() == m
		},
		testutil.GenMessage(),
	))

	properties.TestingRun(t)
}

func TestCommandID(t *testing.T) {
	m := sampleMessage()
	require.Equal(t, crypto.Keccak256Hash([]byte("ethereum-0xabc-1")), m.CommandID())
	require.Equal(t, types.CommandID("ethereum", "0xabc-1"), m.CommandID())
	require.Equal(t, crypto.Keccak256Hash([]byte("cosmos1destination")), m.DestinationHash())
}

func TestMessageValidateBasic(t *testing.T) {
	m := sampleMessage()
	require.NoError(t, m.ValidateBasic())

	m.SourceAddress = ""
	require.ErrorIs(t, m.ValidateBasic(), types.ErrInvalidEncoding)

	m = sampleMessage()
	m.CCID.ID = string([]byte{0xff, 0xfe})
	require.ErrorIs(t, m.ValidateBasic(), types.ErrInvalidEncoding)
}

func TestVerifierSetDescriptorRoundTrip(t *testing.T) {
	f, _ := testutil.NewSignerFixture(t, testutil.DefaultDomainSeparator,
		[]testutil.TestSigner{
			testutil.NewSecp256k1Signer("a"),
			testutil.NewEd25519Signer("b"),
			testutil.NewSecp256k1Signer("c"),
		},
		[]uint64{3, 2, 1}, 4, 7)

	enc := f.Set.Encode()
	view, err := types.ReadVerifierSetView(types.NewDecoder(enc), true)
	require.NoError(t, err)
	require.Equal(t, f.Set.DescriptorHash(), types.HashOf(view))

	decoded, err := types.DecodeVerifierSet(enc)
	require.NoError(t, err)
	require.Equal(t, f.Set.Encode(), decoded.Encode())
	require.Equal(t, uint64(7), decoded.CreatedAtEpoch)
	require.True(t, decoded.Threshold.Eq(uint256.NewInt(4)))

	hash, err := decoded.Hash(testutil.DefaultDomainSeparator)
	require.NoError(t, err)
	require.Equal(t, f.Hash, hash)

	other, err := decoded.Hash(common.Hash{0x01})
	require.NoError(t, err)
	require.NotEqual(t, f.Hash, other, "set hash must bind the domain separator")
}

func TestVerifierSetValidation(t *testing.T) {
	a := types.Signer{PubKey: testutil.NewSecp256k1Signer("a").PublicKey(), Weight: uint256.NewInt(1)}
	b := types.Signer{PubKey: testutil.NewSecp256k1Signer("b").PublicKey(), Weight: uint256.NewInt(2)}

	_, err := types.NewVerifierSet(nil, uint256.NewInt(1), 1)
	require.ErrorIs(t, err, types.ErrInvalidVerifierSet)

	_, err = types.NewVerifierSet([]types.Signer{a, b}, uint256.NewInt(4), 1)
	require.ErrorIs(t, err, types.ErrInvalidVerifierSet)

	_, err = types.NewVerifierSet([]types.Signer{a, b}, uint256.NewInt(0), 1)
	require.ErrorIs(t, err, types.ErrInvalidVerifierSet)

	_, err = types.NewVerifierSet([]types.Signer{a, a}, uint256.NewInt(1), 1)
	require.ErrorIs(t, err, types.ErrInvalidVerifierSet)

	zero := b
	zero.Weight = uint256.NewInt(0)
	_, err = types.NewVerifierSet([]types.Signer{a, zero}, uint256.NewInt(1), 1)
	require.ErrorIs(t, err, types.ErrInvalidVerifierSet)

	wide := b
	wide.Weight = new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	_, err = types.NewVerifierSet([]types.Signer{a, wide}, uint256.NewInt(1), 1)
	require.ErrorIs(t, err, types.ErrInvalidVerifierSet)

	vs, err := types.NewVerifierSet([]types.Signer{b, a}, uint256.NewInt(3), 1)
	require.NoError(t, err)
	total, err := vs.TotalWeight()
	require.NoError(t, err)
	require.Equal(t, uint64(3), total.Uint64())

	truncated := types.PublicKey{Type: types.KeyTypeSecp256k1, Key: make([]byte, 32)}
	require.ErrorIs(t, truncated.Validate(), types.ErrMalformedKey)
}

func TestSignerLeafDecode(t *testing.T) {
	f, _ := testutil.NewSecp256k1Fixture(t, "leaf", []uint64{1, 2, 3}, 3, 2)
	leaf, proof, err := f.Set.SignerProof(f.DomainSeparator, 1)
	require.NoError(t, err)
	require.NoError(t, proof.Verify(f.Hash, leaf.Encode()))

	d := types.NewDecoder(leaf.Encode())
	decoded, err := types.DecodeSignerLeaf(d)
	require.NoError(t, err)
	require.NoError(t, d.Done())
	require.Equal(t, leaf.Encode(), decoded.Encode())
	require.Equal(t, uint16(1), decoded.Position)
	require.Equal(t, uint16(3), decoded.SetSize)
	require.NoError(t, decoded.Validate())

	decoded.Position = 3
	require.ErrorIs(t, decoded.Validate(), types.ErrInvalidVerifierSet)

	_, _, err = f.Set.SignerProof(f.DomainSeparator, 3)
	require.ErrorIs(t, err, types.ErrSignerNotInSet)
}

func TestPublicKeyJSON(t *testing.T) {
	pk := testutil.NewEd25519Signer("json").PublicKey()
	bz, err := json.Marshal(pk)
	require.NoError(t, err)

	var back types.PublicKey
	require.NoError(t, json.Unmarshal(bz, &back))
	require.Equal(t, pk, back)

	require.Error(t, json.Unmarshal([]byte(`"0x0201"`), &back))
}
