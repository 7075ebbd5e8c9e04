package types

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Instruction discriminators. The byte values are part of the wire format.
const (
	InstructionInitializeVerificationSession byte = iota
	InstructionVerifySignature
	InstructionApproveMessages
	InstructionRotateVerifierSet
	InstructionValidateMessage
	InstructionCallContract
	InstructionInitializeMessagePayload
	InstructionWriteMessagePayload
	InstructionCommitMessagePayload
	InstructionCloseMessagePayload
	InstructionTransferOperatorship
	InstructionUpdateConfig
	InstructionSetExecutionInfo
)

// EncodeInstruction renders a gateway msg as discriminator || body.
// Variable-length fields carry a u32 LE length prefix.
func EncodeInstruction(msg sdk.Msg) ([]byte, error) {
	var e Encoder
	switch m := msg.(type) {
	case *MsgInitializeVerificationSession:
		e.Tag([]byte{InstructionInitializeVerificationSession})
		e.Bytes([]byte(m.Relayer))
		e.Tag(m.PayloadRoot[:])
		e.Tag(m.SigningSetHash[:])
	case *MsgVerifySignature:
		e.Tag([]byte{InstructionVerifySignature})
		e.Bytes([]byte(m.Relayer))
		e.Tag(m.PayloadRoot[:])
		e.Bytes(m.SignerLeaf.Encode())
		m.SignerProof.Visit(&e)
		e.Bytes(m.Signature)
	case *MsgApproveMessages:
		e.Tag([]byte{InstructionApproveMessages})
		e.Bytes([]byte(m.Relayer))
		e.Tag(m.PayloadRoot[:])
		visitU32(&e, uint32(len(m.Approvals)))
		for _, a := range m.Approvals {
			a.Message.Visit(&e)
			a.Proof.Visit(&e)
		}
	case *MsgRotateVerifierSet:
		e.Tag([]byte{InstructionRotateVerifierSet})
		e.Bytes([]byte(m.Relayer))
		e.Tag(m.PayloadRoot[:])
		e.Tag(m.NewVerifierSetHash[:])
		visitOptionalString(&e, m.Operator)
	case *MsgValidateMessage:
		e.Tag([]byte{InstructionValidateMessage})
		e.Bytes([]byte(m.Caller))
		m.Message.Visit(&e)
	case *MsgCallContract:
		e.Tag([]byte{InstructionCallContract})
		e.Bytes([]byte(m.Sender))
		e.Bytes([]byte(m.DestinationChain))
		e.Bytes([]byte(m.DestinationAddress))
		e.Bytes(m.Payload)
	case *MsgInitializeMessagePayload:
		e.Tag([]byte{InstructionInitializeMessagePayload})
		e.Bytes([]byte(m.Payer))
		e.Tag(m.CommandID[:])
		visitU64(&e, m.BufferSize)
	case *MsgWriteMessagePayload:
		e.Tag([]byte{InstructionWriteMessagePayload})
		e.Bytes([]byte(m.Payer))
		e.Tag(m.CommandID[:])
		visitU64(&e, m.Offset)
		e.Bytes(m.Bytes)
	case *MsgCommitMessagePayload:
		e.Tag([]byte{InstructionCommitMessagePayload})
		e.Bytes([]byte(m.Payer))
		e.Tag(m.CommandID[:])
	case *MsgCloseMessagePayload:
		e.Tag([]byte{InstructionCloseMessagePayload})
		e.Bytes([]byte(m.Payer))
		e.Tag(m.CommandID[:])
	case *MsgTransferOperatorship:
		e.Tag([]byte{InstructionTransferOperatorship})
		e.Bytes([]byte(m.Authority))
		e.Bytes([]byte(m.NewOperator))
	case *MsgUpdateConfig:
		e.Tag([]byte{InstructionUpdateConfig})
		e.Bytes([]byte(m.Authority))
		visitU64(&e, m.PreviousVerifierSetRetention)
		visitU64(&e, m.MinimumRotationDelay)
	case *MsgSetExecutionInfo:
		e.Tag([]byte{InstructionSetExecutionInfo})
		e.Bytes([]byte(m.Destination))
		e.Bytes(m.Descriptor)
	default:
		return nil, errorsmod.Wrapf(ErrInvalidInstruction, "unsupported message type %T", msg)
	}
	return e.Result(), nil
}

func visitOptionalString(v Visitor, s string) {
	if s == "" {
		v.Tag([]byte{0})
		return
	}
	v.Tag([]byte{1})
	v.Bytes([]byte(s))
}

type instructionReader struct {
	*Decoder
	err error
}

func (r *instructionReader) str() string {
	if r.err != nil {
		return ""
	}
	b, err := r.Decoder.Bytes()
	r.err = err
	return string(b)
}

func (r *instructionReader) bytes() []byte {
	if r.err != nil {
		return nil
	}
	b, err := r.Decoder.Bytes()
	r.err = err
	return append([]byte(nil), b...)
}

func (r *instructionReader) hash(dst []byte) {
	if r.err != nil {
		return
	}
	b, err := r.Decoder.Fixed(len(dst))
	r.err = err
	copy(dst, b)
}

func (r *instructionReader) u64() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.Decoder.U64()
	r.err = err
	return v
}

func (r *instructionReader) optionalString() string {
	if r.err != nil {
		return ""
	}
	flag, err := r.Decoder.U8()
	if err != nil {
		r.err = err
		return ""
	}
	switch flag {
	case 0:
		return ""
	case 1:
		return r.str()
	default:
		r.err = errorsmod.Wrapf(ErrInvalidInstruction, "invalid option flag %d", flag)
		return ""
	}
}

func (r *instructionReader) message() Message {
	if r.err != nil {
		return Message{}
	}
	mv, err := ReadMessageView(r.Decoder)
	r.err = err
	return mv.Message()
}

func (r *instructionReader) proof() MerkleProof {
	if r.err != nil {
		return MerkleProof{}
	}
	p, err := DecodeMerkleProof(r.Decoder)
	r.err = err
	return p
}

// DecodeInstruction parses bytes written by EncodeInstruction.
func DecodeInstruction(b []byte) (sdk.Msg, error) {
	if len(b) == 0 {
		return nil, errorsmod.Wrap(ErrInvalidInstruction, "empty instruction")
	}
	r := &instructionReader{Decoder: NewDecoder(b[1:])}

	var msg sdk.Msg
	switch b[0] {
	case InstructionInitializeVerificationSession:
		m := &MsgInitializeVerificationSession{Relayer: r.str()}
		r.hash(m.PayloadRoot[:])
		r.hash(m.SigningSetHash[:])
		msg = m
	case InstructionVerifySignature:
		m := &MsgVerifySignature{Relayer: r.str()}
		r.hash(m.PayloadRoot[:])
		leaf := r.bytes()
		if r.err == nil {
			ld := NewDecoder(leaf)
			m.SignerLeaf, r.err = DecodeSignerLeaf(ld)
			if r.err == nil {
				r.err = ld.Done()
			}
		}
		m.SignerProof = r.proof()
		m.Signature = r.bytes()
		msg = m
	case InstructionApproveMessages:
		m := &MsgApproveMessages{Relayer: r.str()}
		r.hash(m.PayloadRoot[:])
		if r.err == nil {
			var n uint32
			n, r.err = r.Decoder.U32()
			if r.err == nil && n > MaxApprovalsPerMsg {
				r.err = errorsmod.Wrapf(ErrInvalidInstruction, "%d approvals exceeds maximum %d", n, MaxApprovalsPerMsg)
			}
			for i := uint32(0); r.err == nil && i < n; i++ {
				a := MessageApproval{Message: r.message()}
				a.Proof = r.proof()
				m.Approvals = append(m.Approvals, a)
			}
		}
		msg = m
	case InstructionRotateVerifierSet:
		m := &MsgRotateVerifierSet{Relayer: r.str()}
		r.hash(m.PayloadRoot[:])
		r.hash(m.NewVerifierSetHash[:])
		m.Operator = r.optionalString()
		msg = m
	case InstructionValidateMessage:
		m := &MsgValidateMessage{Caller: r.str()}
		m.Message = r.message()
		msg = m
	case InstructionCallContract:
		m := &MsgCallContract{Sender: r.str()}
		m.DestinationChain = r.str()
		m.DestinationAddress = r.str()
		m.Payload = r.bytes()
		msg = m
	case InstructionInitializeMessagePayload:
		m := &MsgInitializeMessagePayload{Payer: r.str()}
		r.hash(m.CommandID[:])
		m.BufferSize = r.u64()
		msg = m
	case InstructionWriteMessagePayload:
		m := &MsgWriteMessagePayload{Payer: r.str()}
		r.hash(m.CommandID[:])
		m.Offset = r.u64()
		m.Bytes = r.bytes()
		msg = m
	case InstructionCommitMessagePayload:
		m := &MsgCommitMessagePayload{Payer: r.str()}
		r.hash(m.CommandID[:])
		msg = m
	case InstructionCloseMessagePayload:
		m := &MsgCloseMessagePayload{Payer: r.str()}
		r.hash(m.CommandID[:])
		msg = m
	case InstructionTransferOperatorship:
		m := &MsgTransferOperatorship{Authority: r.str()}
		m.NewOperator = r.str()
		msg = m
	case InstructionUpdateConfig:
		m := &MsgUpdateConfig{Authority: r.str()}
		m.PreviousVerifierSetRetention = r.u64()
		m.MinimumRotationDelay = r.u64()
		msg = m
	case InstructionSetExecutionInfo:
		m := &MsgSetExecutionInfo{Destination: r.str()}
		m.Descriptor = r.bytes()
		msg = m
	default:
		return nil, errorsmod.Wrapf(ErrInvalidInstruction, "unknown discriminator %d", b[0])
	}

	if r.err != nil {
		return nil, errorsmod.Wrap(ErrInvalidInstruction, r.err.Error())
	}
	if err := r.Done(); err != nil {
		return nil, errorsmod.Wrap(ErrInvalidInstruction, err.Error())
	}
	return msg, nil
}
