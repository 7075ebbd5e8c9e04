package types

import (
	"fmt"
	"unicode/utf8"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// CommandIDSeparator joins source chain and message id in a command id.
const CommandIDSeparator = '-'

// CrossChainID identifies a message on its source chain.
type CrossChainID struct {
	Chain string `json:"chain"`
	ID    string `json:"id"`
}

// Message is an incoming cross-chain message.
type Message struct {
	CCID               CrossChainID `json:"cc_id"`
	SourceAddress      string       `json:"source_address"`
	DestinationChain   string       `json:"destination_chain"`
	DestinationAddress string       `json:"destination_address"`
	PayloadHash        common.Hash  `json:"payload_hash"`
}

// Visit writes the canonical message encoding.
func (m Message) Visit(v Visitor) {
	v.Bytes([]byte(m.CCID.Chain))
	v.Bytes([]byte(m.CCID.ID))
	v.Bytes([]byte(m.SourceAddress))
	v.Bytes([]byte(m.DestinationChain))
	v.Bytes([]byte(m.DestinationAddress))
	v.Tag(m.PayloadHash[:])
}

// Encode returns the canonical encoding of the message.
func (m Message) Encode() []byte { return Encode(m) }

// Hash returns Keccak-256 of the canonical encoding.
func (m Message) Hash() common.Hash { return HashOf(m) }

// LeafHash returns the merkle leaf hash of the message.
func (m Message) LeafHash() common.Hash { return LeafHash(m.Encode()) }

// CommandID returns the identifier of the message's approval entry.
func (m Message) CommandID() common.Hash {
	return CommandID(m.CCID.Chain, m.CCID.ID)
}

// DestinationHash returns Keccak-256 of the destination address string.
func (m Message) DestinationHash() common.Hash {
	return DestinationHashOf(m.DestinationAddress)
}

// DestinationHashOf hashes a destination address string.
func DestinationHashOf(destination string) common.Hash {
	return crypto.Keccak256Hash([]byte(destination))
}

// ValidateBasic checks field presence and encoding.
func (m Message) ValidateBasic() error {
	fields := []struct {
		name, value string
	}{
		{"source chain", m.CCID.Chain},
		{"message id", m.CCID.ID},
		{"source address", m.SourceAddress},
		{"destination chain", m.DestinationChain},
		{"destination address", m.DestinationAddress},
	}
	for _, f := range fields {
		if f.value == "" {
			return errorsmod.Wrapf(ErrInvalidEncoding, "%s cannot be empty", f.name)
		}
		if !utf8.ValidString(f.value) {
			return errorsmod.Wrapf(ErrInvalidEncoding, "%s is not valid UTF-8", f.name)
		}
	}
	return nil
}

func (m Message) String() string {
	return fmt.Sprintf("Message{%s-%s -> %s:%s}", m.CCID.Chain, m.CCID.ID, m.DestinationChain, m.DestinationAddress)
}

// CommandID returns Keccak256(source_chain || '-' || message_id).
func CommandID(sourceChain, messageID string) common.Hash {
	return crypto.Keccak256Hash([]byte(sourceChain), []byte{CommandIDSeparator}, []byte(messageID))
}

// MessageView is a zero-copy view over an encoded message. Its fields
// alias the underlying buffer.
type MessageView struct {
	Chain              []byte
	ID                 []byte
	SourceAddress      []byte
	DestinationChain   []byte
	DestinationAddress []byte
	PayloadHash        []byte
}

// ReadMessageView reads one message from d without copying.
func ReadMessageView(d *Decoder) (MessageView, error) {
	var mv MessageView
	var err error
	for _, dst := range []*[]byte{&mv.Chain, &mv.ID, &mv.SourceAddress, &mv.DestinationChain, &mv.DestinationAddress} {
		if *dst, err = d.Bytes(); err != nil {
			return MessageView{}, err
		}
	}
	if mv.PayloadHash, err = d.Fixed(common.HashLength); err != nil {
		return MessageView{}, err
	}
	return mv, nil
}

// Visit emits the same field sequence as Message.Visit.
func (mv MessageView) Visit(v Visitor) {
	v.Bytes(mv.Chain)
	v.Bytes(mv.ID)
	v.Bytes(mv.SourceAddress)
	v.Bytes(mv.DestinationChain)
	v.Bytes(mv.DestinationAddress)
	v.Tag(mv.PayloadHash)
}

// Hash returns the same digest as Message.Hash for the owned value.
func (mv MessageView) Hash() common.Hash { return HashOf(mv) }

// Message copies the view into an owned value.
func (mv MessageView) Message() Message {
	return Message{
		CCID:               CrossChainID{Chain: string(mv.Chain), ID: string(mv.ID)},
		SourceAddress:      string(mv.SourceAddress),
		DestinationChain:   string(mv.DestinationChain),
		DestinationAddress: string(mv.DestinationAddress),
		PayloadHash:        common.BytesToHash(mv.PayloadHash),
	}
}

// DecodeMessage decodes a complete canonical message encoding.
func DecodeMessage(b []byte) (Message, error) {
	d := NewDecoder(b)
	mv, err := ReadMessageView(d)
	if err != nil {
		return Message{}, err
	}
	if err := d.Done(); err != nil {
		return Message{}, err
	}
	return mv.Message(), nil
}
