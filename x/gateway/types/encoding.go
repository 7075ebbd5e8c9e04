package types

import (
	"bytes"
	"encoding/binary"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Visitor receives the canonical field sequence of a domain object.
// Tag writes raw fixed-width bytes. Bytes writes a u32 LE length prefix
// followed by the bytes.
type Visitor interface {
	Tag(b []byte)
	Bytes(b []byte)
}

// Visitable is implemented by every value with a canonical encoding.
type Visitable interface {
	Visit(v Visitor)
}

// Encoder accumulates the canonical encoding into a buffer.
type Encoder struct {
	buf bytes.Buffer
}

func (e *Encoder) Tag(b []byte) { e.buf.Write(b) }

func (e *Encoder) Bytes(b []byte) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(b)))
	e.buf.Write(n[:])
	e.buf.Write(b)
}

// Result returns the encoded bytes.
func (e *Encoder) Result() []byte { return e.buf.Bytes() }

// Hasher feeds the canonical encoding straight into Keccak-256 without
// materialising it.
type Hasher struct {
	state crypto.KeccakState
}

// NewHasher returns a Hasher with an empty Keccak-256 state.
func NewHasher() *Hasher {
	return &Hasher{state: crypto.NewKeccakState()}
}

func (h *Hasher) Tag(b []byte) { h.state.Write(b) }

func (h *Hasher) Bytes(b []byte) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(b)))
	h.state.Write(n[:])
	h.state.Write(b)
}

// Sum returns the digest of everything visited so far.
func (h *Hasher) Sum() common.Hash {
	var out common.Hash
	h.state.Read(out[:])
	return out
}

// Encode returns the canonical encoding of x.
func Encode(x Visitable) []byte {
	var e Encoder
	x.Visit(&e)
	return e.Result()
}

// HashOf returns Keccak-256 of the canonical encoding of x.
func HashOf(x Visitable) common.Hash {
	h := NewHasher()
	x.Visit(h)
	return h.Sum()
}

func visitU16(v Visitor, x uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], x)
	v.Tag(b[:])
}

func visitU32(v Visitor, x uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], x)
	v.Tag(b[:])
}

func visitU64(v Visitor, x uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], x)
	v.Tag(b[:])
}

func visitU128(v Visitor, x *uint256.Int) {
	b := u128LE(x)
	v.Tag(b[:])
}

// u128LE renders the low 128 bits of x little-endian. Callers check the
// width with fitsU128 first.
func u128LE(x *uint256.Int) [16]byte {
	var out [16]byte
	if x == nil {
		return out
	}
	be := x.Bytes32()
	for i := 0; i < 16; i++ {
		out[i] = be[31-i]
	}
	return out
}

func u128FromLE(b []byte) *uint256.Int {
	var be [16]byte
	for i := 0; i < 16; i++ {
		be[i] = b[15-i]
	}
	return new(uint256.Int).SetBytes16(be[:])
}

func fitsU128(x *uint256.Int) bool {
	return x != nil && x.BitLen() <= 128
}

// Decoder reads a canonical encoding. Slices it returns alias the input.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder returns a decoder over b.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.off }

// Fixed reads n raw bytes.
func (d *Decoder) Fixed(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, errorsmod.Wrapf(ErrInvalidEncoding, "need %d bytes at offset %d, have %d", n, d.off, d.Remaining())
	}
	out := d.buf[d.off : d.off+n]
	d.off += n
	return out, nil
}

// Bytes reads a u32 LE length-prefixed byte string.
func (d *Decoder) Bytes() ([]byte, error) {
	n, err := d.U32()
	if err != nil {
		return nil, err
	}
	return d.Fixed(int(n))
}

func (d *Decoder) U8() (uint8, error) {
	b, err := d.Fixed(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) U16() (uint16, error) {
	b, err := d.Fixed(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) U32() (uint32, error) {
	b, err := d.Fixed(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) U64() (uint64, error) {
	b, err := d.Fixed(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) U128() (*uint256.Int, error) {
	b, err := d.Fixed(16)
	if err != nil {
		return nil, err
	}
	return u128FromLE(b), nil
}

func (d *Decoder) Hash() (common.Hash, error) {
	b, err := d.Fixed(common.HashLength)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(b), nil
}

// Done fails if unread bytes remain.
func (d *Decoder) Done() error {
	if d.Remaining() != 0 {
		return errorsmod.Wrapf(ErrInvalidEncoding, "%d trailing bytes", d.Remaining())
	}
	return nil
}
