package testutil

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"testing"

	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
)

// TestSigner is a deterministic verifier key usable in fixtures.
type TestSigner struct {
	secp *ecdsa.PrivateKey
	ed   ed25519.PrivKey
}

// NewSecp256k1Signer derives a secp256k1 signer from seed.
func NewSecp256k1Signer(seed string) TestSigner {
	priv, err := crypto.ToECDSA(crypto.Keccak256([]byte("secp256k1-signer:" + seed)))
	if err != nil {
		panic(err)
	}
	return TestSigner{secp: priv}
}

// NewEd25519Signer derives an Ed25519 signer from seed.
func NewEd25519Signer(seed string) TestSigner {
	return TestSigner{ed: ed25519.GenPrivKeyFromSecret([]byte("ed25519-signer:" + seed))}
}

// PublicKey returns the tagged public key of the signer.
func (s TestSigner) PublicKey() gatewaytypes.PublicKey {
	if s.secp != nil {
		return gatewaytypes.PublicKey{Type: gatewaytypes.KeyTypeSecp256k1, Key: crypto.CompressPubkey(&s.secp.PublicKey)}
	}
	return gatewaytypes.PublicKey{Type: gatewaytypes.KeyTypeEd25519, Key: s.ed.PubKey().Bytes()}
}

// Sign signs a 32-byte digest. Secp256k1 signatures carry v in {27, 28}.
func (s TestSigner) Sign(digest common.Hash) []byte {
	if s.secp != nil {
		sig, err := crypto.Sign(digest[:], s.secp)
		if err != nil {
			panic(err)
		}
		sig[64] += 27
		return sig
	}
	sig, err := s.ed.Sign(digest[:])
	if err != nil {
		panic(err)
	}
	return sig
}

// SignerFixture is a verifier set together with the keys that back it.
// Signers[i] is the key of position i in the sorted set.
type SignerFixture struct {
	DomainSeparator common.Hash
	Set             gatewaytypes.VerifierSet
	Signers         []TestSigner
	Hash            common.Hash
}

// NewSignerFixture builds a verifier set from signers and weights. The
// returned Order maps each input index to its position in the sorted set.
func NewSignerFixture(t testing.TB, ds common.Hash, signers []TestSigner, weights []uint64, threshold uint64, epoch uint64) (SignerFixture, []int) {
	if len(signers) != len(weights) {
		t.Fatalf("%d signers but %d weights", len(signers), len(weights))
	}
	entries := make([]gatewaytypes.Signer, len(signers))
	for i, s := range signers {
		entries[i] = gatewaytypes.Signer{PubKey: s.PublicKey(), Weight: uint256.NewInt(weights[i])}
	}
	set, err := gatewaytypes.NewVerifierSet(entries, uint256.NewInt(threshold), epoch)
	if err != nil {
		t.Fatalf("building verifier set: %v", err)
	}

	sorted := make([]TestSigner, len(set.Signers))
	order := make([]int, len(signers))
	for pos, entry := range set.Signers {
		for i, s := range signers {
			if bytes.Equal(s.PublicKey().Key, entry.PubKey.Key) {
				sorted[pos] = s
				order[i] = pos
			}
		}
	}

	hash, err := set.Hash(ds)
	if err != nil {
		t.Fatalf("hashing verifier set: %v", err)
	}
	return SignerFixture{DomainSeparator: ds, Set: set, Signers: sorted, Hash: hash}, order
}

// NewSecp256k1Fixture builds a fixture of len(weights) fresh secp256k1 signers.
func NewSecp256k1Fixture(t testing.TB, name string, weights []uint64, threshold uint64, epoch uint64) (SignerFixture, []int) {
	signers := make([]TestSigner, len(weights))
	for i := range weights {
		signers[i] = NewSecp256k1Signer(fmt.Sprintf("%s-%d", name, i))
	}
	return NewSignerFixture(t, DefaultDomainSeparator, signers, weights, threshold, epoch)
}

// SignedLeaf returns the leaf, proof and signature of the signer at
// position over payloadRoot.
func (f SignerFixture) SignedLeaf(t testing.TB, position int, payloadRoot common.Hash) (gatewaytypes.SignerLeaf, gatewaytypes.MerkleProof, []byte) {
	leaf, proof, err := f.Set.SignerProof(f.DomainSeparator, position)
	if err != nil {
		t.Fatalf("signer proof %d: %v", position, err)
	}
	digest := gatewaytypes.SigningDigest(f.DomainSeparator, f.Hash, payloadRoot)
	return leaf, proof, f.Signers[position].Sign(digest)
}
