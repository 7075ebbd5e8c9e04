package types

import (
	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PayloadKind is the leading tag of an encoded payload.
type PayloadKind uint8

const (
	PayloadKindMessages            PayloadKind = 0
	PayloadKindVerifierSetRotation PayloadKind = 1
)

// VerifierSetRotationPrefix domain-separates the rotation leaf.
var VerifierSetRotationPrefix = []byte("vs-rotation")

// Payload is a signed batch: either messages or a verifier set rotation.
type Payload struct {
	Kind               PayloadKind `json:"kind"`
	MerkleRoot         common.Hash `json:"merkle_root"`
	Messages           []Message   `json:"messages,omitempty"`
	NewVerifierSetHash common.Hash `json:"new_verifier_set_hash,omitempty"`
}

// NewMessagesPayload commits to the given messages.
func NewMessagesPayload(messages []Message) (Payload, error) {
	leaves := make([][]byte, len(messages))
	seen := make(map[common.Hash]bool, len(messages))
	for i, m := range messages {
		id := m.CommandID()
		if seen[id] {
			return Payload{}, errorsmod.Wrapf(ErrInvalidEncoding, "duplicate message %s in payload", id.Hex())
		}
		seen[id] = true
		leaves[i] = m.Encode()
	}
	root, err := MerkleRoot(leaves)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Kind: PayloadKindMessages, MerkleRoot: root, Messages: messages}, nil
}

// NewRotationPayload commits to a new verifier set hash.
func NewRotationPayload(newVerifierSetHash common.Hash) Payload {
	return Payload{
		Kind:               PayloadKindVerifierSetRotation,
		MerkleRoot:         RotationPayloadRoot(newVerifierSetHash),
		NewVerifierSetHash: newVerifierSetHash,
	}
}

// RotationLeaf returns the single leaf of a rotation payload.
func RotationLeaf(newVerifierSetHash common.Hash) []byte {
	return append(append([]byte(nil), VerifierSetRotationPrefix...), newVerifierSetHash[:]...)
}

// RotationPayloadRoot is the root of the one-leaf rotation tree.
func RotationPayloadRoot(newVerifierSetHash common.Hash) common.Hash {
	return LeafHash(RotationLeaf(newVerifierSetHash))
}

// ComputeRoot recomputes the merkle root from the payload contents.
func (p Payload) ComputeRoot() (common.Hash, error) {
	switch p.Kind {
	case PayloadKindMessages:
		leaves := make([][]byte, len(p.Messages))
		for i, m := range p.Messages {
			leaves[i] = m.Encode()
		}
		return MerkleRoot(leaves)
	case PayloadKindVerifierSetRotation:
		return RotationPayloadRoot(p.NewVerifierSetHash), nil
	default:
		return common.Hash{}, errorsmod.Wrapf(ErrInvalidEncoding, "unknown payload kind %d", p.Kind)
	}
}

// MessageProof returns the inclusion proof of message i.
func (p Payload) MessageProof(i int) (MerkleProof, error) {
	if p.Kind != PayloadKindMessages {
		return MerkleProof{}, errorsmod.Wrap(ErrInvalidEncoding, "not a messages payload")
	}
	leaves := make([][]byte, len(p.Messages))
	for j, m := range p.Messages {
		leaves[j] = m.Encode()
	}
	return BuildMerkleProof(leaves, i)
}

// Visit writes tag || root || body.
func (p Payload) Visit(v Visitor) {
	v.Tag([]byte{byte(p.Kind)})
	v.Tag(p.MerkleRoot[:])
	switch p.Kind {
	case PayloadKindMessages:
		visitU32(v, uint32(len(p.Messages)))
		for _, m := range p.Messages {
			m.Visit(v)
		}
	case PayloadKindVerifierSetRotation:
		v.Tag(p.NewVerifierSetHash[:])
	}
}

// Encode returns the canonical payload encoding.
func (p Payload) Encode() []byte { return Encode(p) }

// DecodePayload decodes a payload and checks that its root matches its body.
func DecodePayload(b []byte) (Payload, error) {
	d := NewDecoder(b)
	tag, err := d.U8()
	if err != nil {
		return Payload{}, err
	}
	p := Payload{Kind: PayloadKind(tag)}
	if p.MerkleRoot, err = d.Hash(); err != nil {
		return Payload{}, err
	}
	switch p.Kind {
	case PayloadKindMessages:
		n, err := d.U32()
		if err != nil {
			return Payload{}, err
		}
		if n == 0 {
			return Payload{}, ErrEmptyMerkleTree
		}
		for i := uint32(0); i < n; i++ {
			mv, err := ReadMessageView(d)
			if err != nil {
				return Payload{}, err
			}
			p.Messages = append(p.Messages, mv.Message())
		}
	case PayloadKindVerifierSetRotation:
		if p.NewVerifierSetHash, err = d.Hash(); err != nil {
			return Payload{}, err
		}
	default:
		return Payload{}, errorsmod.Wrapf(ErrInvalidEncoding, "unknown payload kind %d", tag)
	}
	if err := d.Done(); err != nil {
		return Payload{}, err
	}
	root, err := p.ComputeRoot()
	if err != nil {
		return Payload{}, err
	}
	if root != p.MerkleRoot {
		return Payload{}, errorsmod.Wrapf(ErrInvalidProof, "payload root %s does not commit to body %s", p.MerkleRoot.Hex(), root.Hex())
	}
	return p, nil
}

// SigningDigest returns Keccak256(domain_separator || signing_set_hash || payload_root).
func SigningDigest(domainSeparator, signingSetHash, payloadRoot common.Hash) common.Hash {
	return crypto.Keccak256Hash(domainSeparator[:], signingSetHash[:], payloadRoot[:])
}
