package types

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Persisted records use fixed-width little-endian layouts, except the
// tracker epoch which is a 256-bit big-endian word.

// Config is the single gateway configuration record.
type Config struct {
	DomainSeparator              common.Hash    `json:"domain_separator"`
	CurrentEpoch                 uint64         `json:"current_epoch"`
	PreviousVerifierSetRetention uint64         `json:"previous_verifier_set_retention"`
	MinimumRotationDelay         uint64         `json:"minimum_rotation_delay"`
	LastRotationTimestamp        uint64         `json:"last_rotation_timestamp"`
	Operator                     sdk.AccAddress `json:"operator"`
}

// IsLive reports whether a set created at epoch may still sign.
func (c Config) IsLive(epoch *uint256.Int) bool {
	current := uint256.NewInt(c.CurrentEpoch)
	if epoch.Gt(current) {
		return false
	}
	age := new(uint256.Int).Sub(current, epoch)
	return !age.Gt(uint256.NewInt(c.PreviousVerifierSetRetention))
}

func (c Config) MarshalBinary() ([]byte, error) {
	if len(c.Operator) > 255 {
		return nil, errorsmod.Wrap(ErrInvalidEncoding, "operator address too long")
	}
	var e Encoder
	e.Tag(c.DomainSeparator[:])
	visitU64(&e, c.CurrentEpoch)
	visitU64(&e, c.PreviousVerifierSetRetention)
	visitU64(&e, c.MinimumRotationDelay)
	visitU64(&e, c.LastRotationTimestamp)
	e.Tag([]byte{byte(len(c.Operator))})
	e.Tag(c.Operator)
	return e.Result(), nil
}

func (c *Config) UnmarshalBinary(b []byte) error {
	d := NewDecoder(b)
	var err error
	if c.DomainSeparator, err = d.Hash(); err != nil {
		return err
	}
	for _, dst := range []*uint64{&c.CurrentEpoch, &c.PreviousVerifierSetRetention, &c.MinimumRotationDelay, &c.LastRotationTimestamp} {
		if *dst, err = d.U64(); err != nil {
			return err
		}
	}
	n, err := d.U8()
	if err != nil {
		return err
	}
	op, err := d.Fixed(int(n))
	if err != nil {
		return err
	}
	c.Operator = append(sdk.AccAddress(nil), op...)
	return d.Done()
}

// VerifierSetTracker records the epoch at which a verifier set was installed.
type VerifierSetTracker struct {
	Epoch           *uint256.Int `json:"epoch"`
	VerifierSetHash common.Hash  `json:"verifier_set_hash"`
}

func (t VerifierSetTracker) MarshalBinary() ([]byte, error) {
	if t.Epoch == nil {
		return nil, errorsmod.Wrap(ErrInvalidEncoding, "nil epoch")
	}
	epoch := t.Epoch.Bytes32()
	return append(epoch[:], t.VerifierSetHash[:]...), nil
}

func (t *VerifierSetTracker) UnmarshalBinary(b []byte) error {
	if len(b) != 64 {
		return errorsmod.Wrapf(ErrInvalidEncoding, "tracker record must be 64 bytes, got %d", len(b))
	}
	t.Epoch = new(uint256.Int).SetBytes32(b[:32])
	t.VerifierSetHash = common.BytesToHash(b[32:])
	return nil
}

// SessionStatus is the lifecycle stage of a signature verification session.
type SessionStatus uint8

const (
	SessionStatusInit SessionStatus = iota
	SessionStatusAccumulating
	SessionStatusValid
)

func (s SessionStatus) String() string {
	switch s {
	case SessionStatusInit:
		return "init"
	case SessionStatusAccumulating:
		return "accumulating"
	case SessionStatusValid:
		return "valid"
	default:
		return "unknown"
	}
}

// SignerBitmap has one bit per signer position.
type SignerBitmap [MaxSignersPerSet / 8]byte

func (b SignerBitmap) MarshalText() ([]byte, error) {
	return hexutil.Bytes(b[:]).MarshalText()
}

func (b *SignerBitmap) UnmarshalText(input []byte) error {
	var raw hexutil.Bytes
	if err := raw.UnmarshalText(input); err != nil {
		return err
	}
	if len(raw) != len(b) {
		return errorsmod.Wrapf(ErrInvalidEncoding, "signer bitmap must be %d bytes", len(b))
	}
	copy(b[:], raw)
	return nil
}

// SignatureSession accumulates verified signer weight for one payload root.
// Threshold is zero until the first signer leaf is verified.
type SignatureSession struct {
	PayloadRoot       common.Hash  `json:"payload_root"`
	SigningSetHash    common.Hash  `json:"signing_set_hash"`
	AccumulatedWeight *uint256.Int `json:"accumulated_weight"`
	Threshold         *uint256.Int `json:"threshold"`
	SignerBitmap      SignerBitmap `json:"signer_bitmap"`
	IsValid           bool         `json:"is_valid"`
	CreatedAtHeight   uint64       `json:"created_at_height"`
}

// NewSignatureSession returns an empty session for the given root and set.
func NewSignatureSession(payloadRoot, signingSetHash common.Hash, height uint64) SignatureSession {
	return SignatureSession{
		PayloadRoot:       payloadRoot,
		SigningSetHash:    signingSetHash,
		AccumulatedWeight: new(uint256.Int),
		Threshold:         new(uint256.Int),
		CreatedAtHeight:   height,
	}
}

func (s SignatureSession) Status() SessionStatus {
	switch {
	case s.IsValid:
		return SessionStatusValid
	case s.Threshold == nil || s.Threshold.IsZero():
		return SessionStatusInit
	default:
		return SessionStatusAccumulating
	}
}

// HasSigned reports whether the bitmap bit for position is set.
func (s SignatureSession) HasSigned(position uint16) bool {
	if int(position) >= MaxSignersPerSet {
		return false
	}
	return s.SignerBitmap[position/8]&(1<<(position%8)) != 0
}

// SignerCount returns the number of set bitmap bits.
func (s SignatureSession) SignerCount() int {
	n := 0
	for i := 0; i < MaxSignersPerSet; i++ {
		if s.HasSigned(uint16(i)) {
			n++
		}
	}
	return n
}

// AddSigner records an already verified signer. It pins the session
// threshold on first use and latches IsValid once the weight reaches it.
// A signer position that is already set leaves the session unchanged and
// returns false.
func (s *SignatureSession) AddSigner(position uint16, weight, threshold *uint256.Int) (bool, error) {
	if int(position) >= MaxSignersPerSet {
		return false, errorsmod.Wrapf(ErrSignerNotInSet, "position %d exceeds bitmap width", position)
	}
	if threshold == nil || threshold.IsZero() || !fitsU128(threshold) {
		return false, errorsmod.Wrap(ErrInvalidVerifierSet, "threshold out of range")
	}
	if weight == nil || !fitsU128(weight) {
		return false, errorsmod.Wrap(ErrInvalidVerifierSet, "weight out of range")
	}
	if s.Threshold == nil || s.Threshold.IsZero() {
		s.Threshold = threshold.Clone()
	} else if !s.Threshold.Eq(threshold) {
		return false, errorsmod.Wrapf(ErrThresholdMismatch, "session %s, leaf %s", s.Threshold, threshold)
	}
	if s.HasSigned(position) {
		return false, nil
	}
	if s.AccumulatedWeight == nil {
		s.AccumulatedWeight = new(uint256.Int)
	}

	sum, overflow := new(uint256.Int).AddOverflow(s.AccumulatedWeight, weight)
	if overflow || !fitsU128(sum) {
		return false, ErrArithmeticOverflow
	}
	s.AccumulatedWeight = sum
	s.SignerBitmap[position/8] |= 1 << (position % 8)
	if !s.IsValid && !s.AccumulatedWeight.Lt(s.Threshold) {
		s.IsValid = true
	}
	return true, nil
}

func (s SignatureSession) MarshalBinary() ([]byte, error) {
	if !fitsU128(s.AccumulatedWeight) || !fitsU128(s.Threshold) {
		return nil, errorsmod.Wrap(ErrInvalidEncoding, "session counters exceed 128 bits")
	}
	var e Encoder
	e.Tag(s.PayloadRoot[:])
	e.Tag(s.SigningSetHash[:])
	visitU128(&e, s.AccumulatedWeight)
	visitU128(&e, s.Threshold)
	e.Tag(s.SignerBitmap[:])
	e.Tag([]byte{boolByte(s.IsValid)})
	visitU64(&e, s.CreatedAtHeight)
	return e.Result(), nil
}

func (s *SignatureSession) UnmarshalBinary(b []byte) error {
	d := NewDecoder(b)
	var err error
	if s.PayloadRoot, err = d.Hash(); err != nil {
		return err
	}
	if s.SigningSetHash, err = d.Hash(); err != nil {
		return err
	}
	if s.AccumulatedWeight, err = d.U128(); err != nil {
		return err
	}
	if s.Threshold, err = d.U128(); err != nil {
		return err
	}
	bitmap, err := d.Fixed(len(s.SignerBitmap))
	if err != nil {
		return err
	}
	copy(s.SignerBitmap[:], bitmap)
	valid, err := d.U8()
	if err != nil {
		return err
	}
	s.IsValid = valid == 1
	if s.CreatedAtHeight, err = d.U64(); err != nil {
		return err
	}
	return d.Done()
}

// ApprovalStatus is the lifecycle of an incoming message.
type ApprovalStatus uint8

const (
	ApprovalStatusNone ApprovalStatus = iota
	ApprovalStatusApproved
	ApprovalStatusExecuted
)

func (s ApprovalStatus) String() string {
	switch s {
	case ApprovalStatusNone:
		return "none"
	case ApprovalStatusApproved:
		return "approved"
	case ApprovalStatusExecuted:
		return "executed"
	default:
		return "unknown"
	}
}

// ApprovalEntry pins an approved message to the payload that proved it.
type ApprovalEntry struct {
	Status          ApprovalStatus `json:"status"`
	PayloadRoot     common.Hash    `json:"payload_root"`
	LeafIndex       uint32         `json:"leaf_index"`
	MessageHash     common.Hash    `json:"message_hash"`
	PayloadHash     common.Hash    `json:"payload_hash"`
	DestinationHash common.Hash    `json:"destination_hash"`
}

const approvalEntryLength = 1 + 32 + 4 + 32 + 32 + 32

func (a ApprovalEntry) MarshalBinary() ([]byte, error) {
	var e Encoder
	e.Tag([]byte{byte(a.Status)})
	e.Tag(a.PayloadRoot[:])
	visitU32(&e, a.LeafIndex)
	e.Tag(a.MessageHash[:])
	e.Tag(a.PayloadHash[:])
	e.Tag(a.DestinationHash[:])
	return e.Result(), nil
}

func (a *ApprovalEntry) UnmarshalBinary(b []byte) error {
	if len(b) != approvalEntryLength {
		return errorsmod.Wrapf(ErrInvalidEncoding, "approval record must be %d bytes, got %d", approvalEntryLength, len(b))
	}
	d := NewDecoder(b)
	status, _ := d.U8()
	a.Status = ApprovalStatus(status)
	a.PayloadRoot, _ = d.Hash()
	a.LeafIndex, _ = d.U32()
	a.MessageHash, _ = d.Hash()
	a.PayloadHash, _ = d.Hash()
	a.DestinationHash, _ = d.Hash()
	return nil
}

// MessagePayloadStatus is the lifecycle of a staged payload buffer.
type MessagePayloadStatus uint8

const (
	MessagePayloadStatusOpen MessagePayloadStatus = iota
	MessagePayloadStatusCommitted
)

// MaxMessagePayloadSize bounds a staged payload buffer.
const MaxMessagePayloadSize = 10 * 1024

// MessagePayload is a staged raw payload written in chunks by its payer.
type MessagePayload struct {
	Status      MessagePayloadStatus `json:"status"`
	PayloadHash common.Hash          `json:"payload_hash"`
	Raw         []byte               `json:"raw"`
}

// Validate checks the buffer size and, once committed, the recorded hash.
func (p MessagePayload) Validate() error {
	if len(p.Raw) == 0 || len(p.Raw) > MaxMessagePayloadSize {
		return errorsmod.Wrapf(ErrMessagePayloadTooLarge, "buffer size %d not in (0, %d]", len(p.Raw), MaxMessagePayloadSize)
	}
	switch p.Status {
	case MessagePayloadStatusOpen:
		if p.PayloadHash != (common.Hash{}) {
			return errorsmod.Wrap(ErrInvalidEncoding, "open message payload carries a hash")
		}
	case MessagePayloadStatusCommitted:
		if p.PayloadHash != crypto.Keccak256Hash(p.Raw) {
			return errorsmod.Wrap(ErrPayloadHashMismatch, "committed message payload hash")
		}
	default:
		return errorsmod.Wrapf(ErrInvalidEncoding, "unknown message payload status %d", p.Status)
	}
	return nil
}

func (p MessagePayload) MarshalBinary() ([]byte, error) {
	var e Encoder
	e.Tag([]byte{byte(p.Status)})
	e.Tag(p.PayloadHash[:])
	e.Bytes(p.Raw)
	return e.Result(), nil
}

func (p *MessagePayload) UnmarshalBinary(b []byte) error {
	d := NewDecoder(b)
	status, err := d.U8()
	if err != nil {
		return err
	}
	p.Status = MessagePayloadStatus(status)
	if p.PayloadHash, err = d.Hash(); err != nil {
		return err
	}
	raw, err := d.Bytes()
	if err != nil {
		return err
	}
	p.Raw = append([]byte(nil), raw...)
	return d.Done()
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
