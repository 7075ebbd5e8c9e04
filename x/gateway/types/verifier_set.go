package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// MaxSignersPerSet bounds a verifier set by the session bitmap width.
const MaxSignersPerSet = 256

// KeyType is the leading tag byte of an encoded public key.
type KeyType uint8

const (
	KeyTypeSecp256k1 KeyType = 0
	KeyTypeEd25519   KeyType = 1
)

// Key lengths per type, without the tag.
const (
	Secp256k1KeyLength = 33
	Ed25519KeyLength   = 32
)

// KeyLength returns the raw key length for t, or 0 if unknown.
func (t KeyType) KeyLength() int {
	switch t {
	case KeyTypeSecp256k1:
		return Secp256k1KeyLength
	case KeyTypeEd25519:
		return Ed25519KeyLength
	default:
		return 0
	}
}

func (t KeyType) String() string {
	switch t {
	case KeyTypeSecp256k1:
		return "secp256k1"
	case KeyTypeEd25519:
		return "ed25519"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// PublicKey is a tagged signer key. JSON form is the hex of tag || key.
type PublicKey struct {
	Type KeyType
	Key  []byte
}

// Bytes returns tag || key.
func (pk PublicKey) Bytes() []byte {
	return append([]byte{byte(pk.Type)}, pk.Key...)
}

// Validate checks the key length for its type.
func (pk PublicKey) Validate() error {
	n := pk.Type.KeyLength()
	if n == 0 {
		return errorsmod.Wrapf(ErrMalformedKey, "unknown key type %d", pk.Type)
	}
	if len(pk.Key) != n {
		return errorsmod.Wrapf(ErrMalformedKey, "%s key must be %d bytes, got %d", pk.Type, n, len(pk.Key))
	}
	return nil
}

// ParsePublicKey decodes tag || key.
func ParsePublicKey(b []byte) (PublicKey, error) {
	if len(b) == 0 {
		return PublicKey{}, errorsmod.Wrap(ErrMalformedKey, "empty key")
	}
	pk := PublicKey{Type: KeyType(b[0]), Key: append([]byte(nil), b[1:]...)}
	return pk, pk.Validate()
}

func readPublicKey(d *Decoder) (PublicKey, error) {
	tag, err := d.U8()
	if err != nil {
		return PublicKey{}, err
	}
	t := KeyType(tag)
	n := t.KeyLength()
	if n == 0 {
		return PublicKey{}, errorsmod.Wrapf(ErrMalformedKey, "unknown key type %d", tag)
	}
	key, err := d.Fixed(n)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKey{Type: t, Key: key}, nil
}

func (pk PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Bytes(pk.Bytes()))
}

func (pk *PublicKey) UnmarshalJSON(b []byte) error {
	var raw hexutil.Bytes
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParsePublicKey(raw)
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// Signer is a weighted verifier key.
type Signer struct {
	PubKey PublicKey    `json:"pub_key"`
	Weight *uint256.Int `json:"weight"`
}

// VerifierSet is an ordered set of weighted signers with a quorum.
type VerifierSet struct {
	Signers        []Signer     `json:"signers"`
	Threshold      *uint256.Int `json:"threshold"`
	CreatedAtEpoch uint64       `json:"created_at_epoch"`
}

// NewVerifierSet sorts signers by key bytes and validates the result.
func NewVerifierSet(signers []Signer, threshold *uint256.Int, createdAtEpoch uint64) (VerifierSet, error) {
	sorted := append([]Signer(nil), signers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].PubKey.Key, sorted[j].PubKey.Key) < 0
	})
	vs := VerifierSet{Signers: sorted, Threshold: threshold, CreatedAtEpoch: createdAtEpoch}
	return vs, vs.Validate()
}

// TotalWeight returns the sum of signer weights.
func (vs VerifierSet) TotalWeight() (*uint256.Int, error) {
	total := new(uint256.Int)
	for _, s := range vs.Signers {
		if s.Weight == nil {
			return nil, errorsmod.Wrap(ErrInvalidVerifierSet, "nil weight")
		}
		if _, overflow := total.AddOverflow(total, s.Weight); overflow {
			return nil, ErrArithmeticOverflow
		}
	}
	return total, nil
}

// Validate enforces ordering, uniqueness, weight and threshold bounds.
func (vs VerifierSet) Validate() error {
	if len(vs.Signers) == 0 {
		return errorsmod.Wrap(ErrInvalidVerifierSet, "no signers")
	}
	if len(vs.Signers) > MaxSignersPerSet {
		return errorsmod.Wrapf(ErrInvalidVerifierSet, "%d signers exceeds maximum %d", len(vs.Signers), MaxSignersPerSet)
	}
	for i, s := range vs.Signers {
		if err := s.PubKey.Validate(); err != nil {
			return errorsmod.Wrapf(err, "signer %d", i)
		}
		if s.Weight == nil || s.Weight.IsZero() {
			return errorsmod.Wrapf(ErrInvalidVerifierSet, "signer %d: weight must be positive", i)
		}
		if !fitsU128(s.Weight) {
			return errorsmod.Wrapf(ErrInvalidVerifierSet, "signer %d: weight exceeds 128 bits", i)
		}
		if i > 0 && bytes.Compare(vs.Signers[i-1].PubKey.Key, s.PubKey.Key) >= 0 {
			return errorsmod.Wrapf(ErrInvalidVerifierSet, "signer %d: keys must be strictly ascending", i)
		}
	}
	if vs.Threshold == nil || vs.Threshold.IsZero() {
		return errorsmod.Wrap(ErrInvalidVerifierSet, "threshold must be positive")
	}
	if !fitsU128(vs.Threshold) {
		return errorsmod.Wrap(ErrInvalidVerifierSet, "threshold exceeds 128 bits")
	}
	total, err := vs.TotalWeight()
	if err != nil {
		return err
	}
	if vs.Threshold.Gt(total) {
		return errorsmod.Wrapf(ErrInvalidVerifierSet, "threshold %s exceeds total weight %s", vs.Threshold, total)
	}
	return nil
}

// Visit writes the set descriptor: u32 count, then per signer
// tag || key || weight u128, then threshold u128 and epoch u64.
func (vs VerifierSet) Visit(v Visitor) {
	visitU32(v, uint32(len(vs.Signers)))
	for _, s := range vs.Signers {
		v.Tag([]byte{byte(s.PubKey.Type)})
		v.Tag(s.PubKey.Key)
		visitU128(v, s.Weight)
	}
	visitU128(v, vs.Threshold)
	visitU64(v, vs.CreatedAtEpoch)
}

// Encode returns the canonical descriptor encoding.
func (vs VerifierSet) Encode() []byte { return Encode(vs) }

// DescriptorHash returns Keccak-256 of the descriptor encoding.
func (vs VerifierSet) DescriptorHash() common.Hash { return HashOf(vs) }

// SignerLeaves returns the merkle leaves committing to each signer under
// the given domain separator.
func (vs VerifierSet) SignerLeaves(domainSeparator common.Hash) []SignerLeaf {
	leaves := make([]SignerLeaf, len(vs.Signers))
	for i, s := range vs.Signers {
		leaves[i] = SignerLeaf{
			DomainSeparator: domainSeparator,
			Signer:          s,
			Threshold:       vs.Threshold,
			CreatedAtEpoch:  vs.CreatedAtEpoch,
			Position:        uint16(i),
			SetSize:         uint16(len(vs.Signers)),
		}
	}
	return leaves
}

func (vs VerifierSet) encodedLeaves(domainSeparator common.Hash) [][]byte {
	leaves := vs.SignerLeaves(domainSeparator)
	out := make([][]byte, len(leaves))
	for i, l := range leaves {
		out[i] = l.Encode()
	}
	return out
}

// Hash returns the verifier set hash: the merkle root over its signer leaves.
func (vs VerifierSet) Hash(domainSeparator common.Hash) (common.Hash, error) {
	return MerkleRoot(vs.encodedLeaves(domainSeparator))
}

// SignerProof returns the leaf and inclusion proof for signer i.
func (vs VerifierSet) SignerProof(domainSeparator common.Hash, i int) (SignerLeaf, MerkleProof, error) {
	if i < 0 || i >= len(vs.Signers) {
		return SignerLeaf{}, MerkleProof{}, errorsmod.Wrapf(ErrSignerNotInSet, "index %d", i)
	}
	proof, err := BuildMerkleProof(vs.encodedLeaves(domainSeparator), i)
	if err != nil {
		return SignerLeaf{}, MerkleProof{}, err
	}
	return vs.SignerLeaves(domainSeparator)[i], proof, nil
}

// DecodeVerifierSet decodes a descriptor written by Visit.
func DecodeVerifierSet(b []byte) (VerifierSet, error) {
	view, err := ReadVerifierSetView(NewDecoder(b), true)
	if err != nil {
		return VerifierSet{}, err
	}
	return view.VerifierSet(), nil
}

// SignerLeaf is the merkle leaf committing to one signer of a set.
type SignerLeaf struct {
	DomainSeparator common.Hash  `json:"domain_separator"`
	Signer          Signer       `json:"signer"`
	Threshold       *uint256.Int `json:"threshold"`
	CreatedAtEpoch  uint64       `json:"created_at_epoch"`
	Position        uint16       `json:"position"`
	SetSize         uint16       `json:"set_size"`
}

func (l SignerLeaf) Visit(v Visitor) {
	v.Tag(l.DomainSeparator[:])
	v.Tag([]byte{byte(l.Signer.PubKey.Type)})
	v.Tag(l.Signer.PubKey.Key)
	visitU128(v, l.Signer.Weight)
	visitU128(v, l.Threshold)
	visitU64(v, l.CreatedAtEpoch)
	visitU16(v, l.Position)
	visitU16(v, l.SetSize)
}

// Encode returns the leaf bytes that are hashed into the set's tree.
func (l SignerLeaf) Encode() []byte { return Encode(l) }

// Validate checks key, weight and position bounds.
func (l SignerLeaf) Validate() error {
	if err := l.Signer.PubKey.Validate(); err != nil {
		return err
	}
	if l.Signer.Weight == nil || l.Signer.Weight.IsZero() || !fitsU128(l.Signer.Weight) {
		return errorsmod.Wrap(ErrInvalidVerifierSet, "signer weight out of range")
	}
	if l.Threshold == nil || l.Threshold.IsZero() || !fitsU128(l.Threshold) {
		return errorsmod.Wrap(ErrInvalidVerifierSet, "threshold out of range")
	}
	if l.SetSize == 0 || l.Position >= l.SetSize {
		return errorsmod.Wrapf(ErrInvalidVerifierSet, "position %d out of set size %d", l.Position, l.SetSize)
	}
	return nil
}

// DecodeSignerLeaf decodes a leaf written by Visit.
func DecodeSignerLeaf(d *Decoder) (SignerLeaf, error) {
	var l SignerLeaf
	var err error
	if l.DomainSeparator, err = d.Hash(); err != nil {
		return l, err
	}
	pk, err := readPublicKey(d)
	if err != nil {
		return l, err
	}
	l.Signer.PubKey = PublicKey{Type: pk.Type, Key: append([]byte(nil), pk.Key...)}
	if l.Signer.Weight, err = d.U128(); err != nil {
		return l, err
	}
	if l.Threshold, err = d.U128(); err != nil {
		return l, err
	}
	if l.CreatedAtEpoch, err = d.U64(); err != nil {
		return l, err
	}
	if l.Position, err = d.U16(); err != nil {
		return l, err
	}
	if l.SetSize, err = d.U16(); err != nil {
		return l, err
	}
	return l, nil
}

// VerifierSetView is a zero-copy view over an encoded verifier set.
type VerifierSetView struct {
	signers   []signerView
	threshold []byte
	epoch     []byte
}

type signerView struct {
	tag    []byte
	key    []byte
	weight []byte
}

// ReadVerifierSetView reads a set descriptor from d. When exact is set the
// decoder must be fully consumed.
func ReadVerifierSetView(d *Decoder, exact bool) (VerifierSetView, error) {
	n, err := d.U32()
	if err != nil {
		return VerifierSetView{}, err
	}
	if n > MaxSignersPerSet {
		return VerifierSetView{}, errorsmod.Wrapf(ErrInvalidVerifierSet, "%d signers exceeds maximum %d", n, MaxSignersPerSet)
	}
	view := VerifierSetView{signers: make([]signerView, n)}
	for i := range view.signers {
		tag, err := d.Fixed(1)
		if err != nil {
			return VerifierSetView{}, err
		}
		keyLen := KeyType(tag[0]).KeyLength()
		if keyLen == 0 {
			return VerifierSetView{}, errorsmod.Wrapf(ErrMalformedKey, "unknown key type %d", tag[0])
		}
		key, err := d.Fixed(keyLen)
		if err != nil {
			return VerifierSetView{}, err
		}
		weight, err := d.Fixed(16)
		if err != nil {
			return VerifierSetView{}, err
		}
		view.signers[i] = signerView{tag: tag, key: key, weight: weight}
	}
	if view.threshold, err = d.Fixed(16); err != nil {
		return VerifierSetView{}, err
	}
	if view.epoch, err = d.Fixed(8); err != nil {
		return VerifierSetView{}, err
	}
	if exact {
		if err := d.Done(); err != nil {
			return VerifierSetView{}, err
		}
	}
	return view, nil
}

// Visit emits the same sequence as VerifierSet.Visit.
func (view VerifierSetView) Visit(v Visitor) {
	visitU32(v, uint32(len(view.signers)))
	for _, s := range view.signers {
		v.Tag(s.tag)
		v.Tag(s.key)
		v.Tag(s.weight)
	}
	v.Tag(view.threshold)
	v.Tag(view.epoch)
}

// VerifierSet copies the view into an owned value.
func (view VerifierSetView) VerifierSet() VerifierSet {
	vs := VerifierSet{
		Signers:   make([]Signer, len(view.signers)),
		Threshold: u128FromLE(view.threshold),
	}
	d := NewDecoder(view.epoch)
	vs.CreatedAtEpoch, _ = d.U64()
	for i, s := range view.signers {
		vs.Signers[i] = Signer{
			PubKey: PublicKey{Type: KeyType(s.tag[0]), Key: append([]byte(nil), s.key...)},
			Weight: u128FromLE(s.weight),
		}
	}
	return vs
}
