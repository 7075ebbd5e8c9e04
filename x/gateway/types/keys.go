package types

import (
	"github.com/cosmos/cosmos-sdk/types/address"
	"github.com/ethereum/go-ethereum/common"
)

const (
	// ModuleName defines the module name
	ModuleName = "gateway"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName
)

// Store key prefixes. Each record lives under a short ASCII seed so the
// keyspaces of different record kinds never overlap.
var (
	// ConfigKey holds the single gateway configuration record
	ConfigKey = []byte("gw-root")

	// VerifierSetTrackerKeyPrefix is the prefix for verifier set trackers
	VerifierSetTrackerKeyPrefix = []byte("vs-tracker")

	// SessionKeyPrefix is the prefix for signature verification sessions
	SessionKeyPrefix = []byte("sig-ver")

	// ApprovalKeyPrefix is the prefix for incoming message approvals
	ApprovalKeyPrefix = []byte("msg-appr")

	// MessagePayloadKeyPrefix is the prefix for staged message payloads
	MessagePayloadKeyPrefix = []byte("msg-pld")

	// ExecutionInfoKeyPrefix is the prefix for relayer execution descriptors
	ExecutionInfoKeyPrefix = []byte("relayer-exec")
)

// GetConfigKey returns the store key for the gateway config
func GetConfigKey() []byte {
	return ConfigKey
}

// GetVerifierSetTrackerKey returns the store key for a verifier set tracker
func GetVerifierSetTrackerKey(setHash common.Hash) []byte {
	return concat(VerifierSetTrackerKeyPrefix, setHash[:])
}

// GetSessionKey returns the store key for the session of a payload root
func GetSessionKey(payloadRoot common.Hash) []byte {
	return concat(SessionKeyPrefix, payloadRoot[:])
}

// GetApprovalKey returns the store key for an incoming message approval
func GetApprovalKey(commandID common.Hash) []byte {
	return concat(ApprovalKeyPrefix, commandID[:])
}

// GetMessagePayloadKey returns the store key for a staged payload. The
// gateway root address is part of the seed, as is the payer.
func GetMessagePayloadKey(commandID common.Hash, payer []byte) []byte {
	return concat(MessagePayloadKeyPrefix, GatewayRootAddress(), commandID[:], payer)
}

// GetExecutionInfoKey returns the store key for a destination's execution descriptor
func GetExecutionInfoKey(destination []byte) []byte {
	return concat(ExecutionInfoKeyPrefix, destination)
}

// GatewayRootAddress is the module-derived address of the config record.
func GatewayRootAddress() []byte {
	return address.Module(ModuleName, ConfigKey)
}

// DerivedAddress returns the module-derived address of any record key.
func DerivedAddress(key []byte) []byte {
	return address.Module(ModuleName, key)
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
