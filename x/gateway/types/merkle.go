package types

import (
	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	leafPrefix byte = 0x00
	nodePrefix byte = 0x01
)

// MerkleProof proves that a leaf sits at LeafIndex of a tree with LeafCount
// leaves. Path lists sibling hashes bottom-up. A node that is the odd last
// node of its level is paired with itself and contributes no path element.
// Trees must not contain duplicate leaves.
type MerkleProof struct {
	LeafIndex uint32        `json:"leaf_index"`
	LeafCount uint32        `json:"leaf_count"`
	Path      []common.Hash `json:"path"`
}

// LeafHash returns H(0x00 || leaf).
func LeafHash(leaf []byte) common.Hash {
	return crypto.Keccak256Hash([]byte{leafPrefix}, leaf)
}

// NodeHash returns H(0x01 || left || right).
func NodeHash(left, right common.Hash) common.Hash {
	return crypto.Keccak256Hash([]byte{nodePrefix}, left[:], right[:])
}

// MerkleRoot returns the root over the given leaf bytes.
func MerkleRoot(leaves [][]byte) (common.Hash, error) {
	hashes := make([]common.Hash, len(leaves))
	for i, l := range leaves {
		hashes[i] = LeafHash(l)
	}
	return MerkleRootFromLeafHashes(hashes)
}

// MerkleRootFromLeafHashes returns the root over already hashed leaves.
func MerkleRootFromLeafHashes(level []common.Hash) (common.Hash, error) {
	if len(level) == 0 {
		return common.Hash{}, ErrEmptyMerkleTree
	}
	for len(level) > 1 {
		level = nextLevel(level)
	}
	return level[0], nil
}

func nextLevel(level []common.Hash) []common.Hash {
	next := make([]common.Hash, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		if i+1 < len(level) {
			next = append(next, NodeHash(level[i], level[i+1]))
		} else {
			next = append(next, NodeHash(level[i], level[i]))
		}
	}
	return next
}

// BuildMerkleProof returns the inclusion proof for leaves[index].
func BuildMerkleProof(leaves [][]byte, index int) (MerkleProof, error) {
	if len(leaves) == 0 {
		return MerkleProof{}, ErrEmptyMerkleTree
	}
	if index < 0 || index >= len(leaves) {
		return MerkleProof{}, errorsmod.Wrapf(ErrInvalidProof, "leaf index %d out of range %d", index, len(leaves))
	}

	level := make([]common.Hash, len(leaves))
	for i, l := range leaves {
		level[i] = LeafHash(l)
	}

	proof := MerkleProof{LeafIndex: uint32(index), LeafCount: uint32(len(leaves))}
	pos := index
	for len(level) > 1 {
		sibling := pos ^ 1
		if sibling < len(level) {
			proof.Path = append(proof.Path, level[sibling])
		}
		level = nextLevel(level)
		pos /= 2
	}
	return proof, nil
}

// ComputeRoot recomputes the root implied by leafHash and the proof.
func (p MerkleProof) ComputeRoot(leafHash common.Hash) (common.Hash, error) {
	if p.LeafCount == 0 || p.LeafIndex >= p.LeafCount {
		return common.Hash{}, errorsmod.Wrapf(ErrInvalidProof, "leaf index %d out of range %d", p.LeafIndex, p.LeafCount)
	}

	acc := leafHash
	pos := uint64(p.LeafIndex)
	width := uint64(p.LeafCount)
	used := 0
	for width > 1 {
		switch {
		case pos%2 == 1:
			sibling, err := p.sibling(used, acc)
			if err != nil {
				return common.Hash{}, err
			}
			acc = NodeHash(sibling, acc)
			used++
		case pos+1 < width:
			sibling, err := p.sibling(used, acc)
			if err != nil {
				return common.Hash{}, err
			}
			acc = NodeHash(acc, sibling)
			used++
		default:
			acc = NodeHash(acc, acc)
		}
		pos /= 2
		width = (width + 1) / 2
	}
	if used != len(p.Path) {
		return common.Hash{}, errorsmod.Wrapf(ErrInvalidProof, "%d unused path elements", len(p.Path)-used)
	}
	return acc, nil
}

// sibling returns path element i. A sibling equal to the node it pairs with
// would let a self-paired last node pass as an explicit pair under a larger
// leaf count, so it is rejected and each leaf has exactly one valid index.
func (p MerkleProof) sibling(i int, node common.Hash) (common.Hash, error) {
	if i >= len(p.Path) {
		return common.Hash{}, errorsmod.Wrap(ErrInvalidProof, "path too short")
	}
	if p.Path[i] == node {
		return common.Hash{}, errorsmod.Wrapf(ErrInvalidProof, "path element %d repeats its own node", i)
	}
	return p.Path[i], nil
}

// Verify checks that leaf is included under root.
func (p MerkleProof) Verify(root common.Hash, leaf []byte) error {
	return p.VerifyLeafHash(root, LeafHash(leaf))
}

// VerifyLeafHash checks that an already hashed leaf is included under root.
func (p MerkleProof) VerifyLeafHash(root common.Hash, leafHash common.Hash) error {
	got, err := p.ComputeRoot(leafHash)
	if err != nil {
		return err
	}
	if got != root {
		return errorsmod.Wrapf(ErrInvalidProof, "computed root %s, expected %s", got.Hex(), root.Hex())
	}
	return nil
}

// Visit writes the proof in canonical form.
func (p MerkleProof) Visit(v Visitor) {
	visitU32(v, p.LeafIndex)
	visitU32(v, p.LeafCount)
	visitU32(v, uint32(len(p.Path)))
	for _, h := range p.Path {
		v.Tag(h[:])
	}
}

// DecodeMerkleProof reads a proof written by Visit.
func DecodeMerkleProof(d *Decoder) (MerkleProof, error) {
	var p MerkleProof
	var err error
	if p.LeafIndex, err = d.U32(); err != nil {
		return p, err
	}
	if p.LeafCount, err = d.U32(); err != nil {
		return p, err
	}
	n, err := d.U32()
	if err != nil {
		return p, err
	}
	if int(n)*common.HashLength > d.Remaining() {
		return p, errorsmod.Wrapf(ErrInvalidEncoding, "proof path of %d elements exceeds input", n)
	}
	if n == 0 {
		return p, nil
	}
	p.Path = make([]common.Hash, n)
	for i := range p.Path {
		if p.Path[i], err = d.Hash(); err != nil {
			return p, err
		}
	}
	return p, nil
}
