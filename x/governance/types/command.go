package types

import (
	"fmt"
	"math/big"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// CommandABIJSON describes the payload of a governance GMP message:
// abi.encode(uint8 command, bytes32 target, bytes call_data,
// uint256 native_value, uint256 eta).
const CommandABIJSON = `[
	{
		"name": "governanceCommand",
		"type": "function",
		"stateMutability": "pure",
		"inputs": [
			{"name": "command", "type": "uint8"},
			{"name": "target", "type": "bytes32"},
			{"name": "call_data", "type": "bytes"},
			{"name": "native_value", "type": "uint256"},
			{"name": "eta", "type": "uint256"}
		],
		"outputs": []
	}
]`

var commandArguments abi.Arguments

func init() {
	parsed, err := abi.JSON(strings.NewReader(CommandABIJSON))
	if err != nil {
		panic(fmt.Sprintf("bad governance command ABI: %s", err))
	}
	commandArguments = parsed.Methods["governanceCommand"].Inputs
}

// CommandType selects the timelock operation carried by a GMP message.
type CommandType uint8

const (
	CommandScheduleTimeLockProposal CommandType = iota
	CommandCancelTimeLockProposal
	CommandApproveOperatorProposal
	CommandCancelOperatorApproval
)

func (c CommandType) String() string {
	switch c {
	case CommandScheduleTimeLockProposal:
		return "schedule_time_lock_proposal"
	case CommandCancelTimeLockProposal:
		return "cancel_time_lock_proposal"
	case CommandApproveOperatorProposal:
		return "approve_operator_proposal"
	case CommandCancelOperatorApproval:
		return "cancel_operator_approval"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// GovernanceCommand is a decoded governance GMP payload.
type GovernanceCommand struct {
	Command     CommandType  `json:"command"`
	Target      common.Hash  `json:"target"`
	CallData    []byte       `json:"call_data"`
	NativeValue *uint256.Int `json:"native_value"`
	Eta         *uint256.Int `json:"eta"`
}

// ProposalHash returns the content address of the proposal the command
// refers to.
func (c GovernanceCommand) ProposalHash() common.Hash {
	return ProposalHash(c.Target, c.CallData, c.NativeValue)
}

// Encode returns the ABI encoding of the command.
func (c GovernanceCommand) Encode() ([]byte, error) {
	nativeValue, eta := c.NativeValue, c.Eta
	if nativeValue == nil {
		nativeValue = new(uint256.Int)
	}
	if eta == nil {
		eta = new(uint256.Int)
	}
	return commandArguments.Pack(uint8(c.Command), [32]byte(c.Target), c.CallData, nativeValue.ToBig(), eta.ToBig())
}

// DecodeGovernanceCommand parses an ABI encoded command payload.
func DecodeGovernanceCommand(payload []byte) (GovernanceCommand, error) {
	values, err := commandArguments.Unpack(payload)
	if err != nil {
		return GovernanceCommand{}, errorsmod.Wrap(ErrInvalidCommand, err.Error())
	}
	if len(values) != 5 {
		return GovernanceCommand{}, errorsmod.Wrapf(ErrInvalidCommand, "expected 5 fields, got %d", len(values))
	}

	command, ok0 := values[0].(uint8)
	target, ok1 := values[1].([32]byte)
	callData, ok2 := values[2].([]byte)
	nativeValue, ok3 := values[3].(*big.Int)
	eta, ok4 := values[4].(*big.Int)
	if !(ok0 && ok1 && ok2 && ok3 && ok4) {
		return GovernanceCommand{}, errorsmod.Wrap(ErrInvalidCommand, "unexpected field types")
	}
	if CommandType(command) > CommandCancelOperatorApproval {
		return GovernanceCommand{}, errorsmod.Wrapf(ErrInvalidCommand, "unknown command %d", command)
	}

	out := GovernanceCommand{
		Command:  CommandType(command),
		Target:   common.Hash(target),
		CallData: callData,
	}
	var overflow bool
	if out.NativeValue, overflow = uint256.FromBig(nativeValue); overflow {
		return GovernanceCommand{}, errorsmod.Wrap(ErrArithmeticOverflow, "native value")
	}
	if out.Eta, overflow = uint256.FromBig(eta); overflow {
		return GovernanceCommand{}, errorsmod.Wrap(ErrArithmeticOverflow, "eta")
	}
	return out, nil
}

// ProposalHash returns Keccak256(target || call_data || native_value) with
// the native value as a 32-byte big-endian word.
func ProposalHash(target common.Hash, callData []byte, nativeValue *uint256.Int) common.Hash {
	var value [32]byte
	if nativeValue != nil {
		value = nativeValue.Bytes32()
	}
	return crypto.Keccak256Hash(target[:], callData, value[:])
}
