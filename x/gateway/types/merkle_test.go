package types_test

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/gmp-gateway/cosmos/testutil"
	"github.com/gmp-gateway/cosmos/x/gateway/types"
)

func leavesOf(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte(fmt.Sprintf("leaf-%d", i))
	}
	return out
}

func TestMerkleRootSingleLeaf(t *testing.T) {
	root, err := types.MerkleRoot([][]byte{[]byte("only")})
	require.NoError(t, err)
	require.Equal(t, types.LeafHash([]byte("only")), root)

	proof, err := types.BuildMerkleProof([][]byte{[]byte("only")}, 0)
	require.NoError(t, err)
	require.Empty(t, proof.Path)
	require.NoError(t, proof.Verify(root, []byte("only")))
}

func TestMerkleRootOddLevelDuplicatesLastNode(t *testing.T) {
	leaves := leavesOf(3)
	h := make([]common.Hash, 3)
	for i, l := range leaves {
		h[i] = types.LeafHash(l)
	}
	expected := types.NodeHash(types.NodeHash(h[0], h[1]), types.NodeHash(h[2], h[2]))

	root, err := types.MerkleRoot(leaves)
	require.NoError(t, err)
	require.Equal(t, expected, root)

	_, err = types.MerkleRoot(nil)
	require.ErrorIs(t, err, types.ErrEmptyMerkleTree)
}

func TestLeafAndNodeHashesAreDomainSeparated(t *testing.T) {
	a, b := types.LeafHash([]byte("a")), types.LeafHash([]byte("b"))
	node := types.NodeHash(a, b)
	require.NotEqual(t, node, types.LeafHash(append(a.Bytes(), b.Bytes()...)))
}

func TestMerkleProofRejectsTampering(t *testing.T) {
	leaves := leavesOf(5)
	root, err := types.MerkleRoot(leaves)
	require.NoError(t, err)
	proof, err := types.BuildMerkleProof(leaves, 2)
	require.NoError(t, err)
	require.NoError(t, proof.Verify(root, leaves[2]))

	require.ErrorIs(t, proof.Verify(root, leaves[3]), types.ErrInvalidProof)

	moved := proof
	moved.LeafIndex = 3
	require.ErrorIs(t, moved.Verify(root, leaves[2]), types.ErrInvalidProof)

	short := proof
	short.Path = proof.Path[:len(proof.Path)-1]
	require.ErrorIs(t, short.Verify(root, leaves[2]), types.ErrInvalidProof)

	long := proof
	long.Path = append(append([]common.Hash(nil), proof.Path...), common.Hash{1})
	require.ErrorIs(t, long.Verify(root, leaves[2]), types.ErrInvalidProof)

	outOfRange := proof
	outOfRange.LeafIndex = 5
	require.ErrorIs(t, outOfRange.Verify(root, leaves[2]), types.ErrInvalidProof)

	_, err = types.BuildMerkleProof(leaves, 5)
	require.ErrorIs(t, err, types.ErrInvalidProof)
}

func TestMerkleProofBindsLastLeafToOneIndex(t *testing.T) {
	leaves := leavesOf(3)
	root, err := types.MerkleRoot(leaves)
	require.NoError(t, err)
	proof, err := types.BuildMerkleProof(leaves, 2)
	require.NoError(t, err)
	require.NoError(t, proof.Verify(root, leaves[2]))

	// the self-paired last leaf supplied as its own sibling in a four leaf tree
	last := types.LeafHash(leaves[2])
	for _, index := range []uint32{2, 3} {
		widened := types.MerkleProof{
			LeafIndex: index,
			LeafCount: 4,
			Path:      append([]common.Hash{last}, proof.Path...),
		}
		require.ErrorIs(t, widened.Verify(root, leaves[2]), types.ErrInvalidProof, "index %d", index)
	}
}

func TestMessagesPayloadRejectsDuplicateMessages(t *testing.T) {
	msg := types.Message{
		CCID:               types.CrossChainID{Chain: "ethereum", ID: "dup-1"},
		SourceAddress:      "0xabc",
		DestinationChain:   "gmp-gateway",
		DestinationAddress: "cosmos1dest",
		PayloadHash:        common.Hash{0x01},
	}
	_, err := types.NewMessagesPayload([]types.Message{msg, msg})
	require.ErrorIs(t, err, types.ErrInvalidEncoding)
}

func TestProperty_EveryLeafProvesAgainstRoot(t *testing.T) {
	properties := testutil.NewPropertyTester(t)

	properties.Property("proofs built for any leaf verify and fail for any other leaf", prop.ForAll(
		func(n int, pick int) bool {
			leaves := leavesOf(n)
			root, err := types.MerkleRoot(leaves)
			if err != nil {
				return false
			}
			i := pick % n
			proof, err := types.BuildMerkleProof(leaves, i)
			if err != nil || proof.Verify(root, leaves[i]) != nil {
				return false
			}
			if n > 1 && proof.Verify(root, leaves[(i+1)%n]) == nil {
				return false
			}
			computed, err := proof.ComputeRoot(types.LeafHash(leaves[i]))
			return err == nil && computed == root
		},
		gen.IntRange(1, 70),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
