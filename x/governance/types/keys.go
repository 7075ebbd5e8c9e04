package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/ethereum/go-ethereum/common"
)

const (
	// ModuleName defines the module name
	ModuleName = "governance"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName
)

var (
	// ConfigKey holds the single governance configuration record
	ConfigKey = []byte("governance")

	// ProposalKeyPrefix is the prefix for scheduled timelock proposals
	ProposalKeyPrefix = []byte("proposal")

	// ManagedProposalKeyPrefix is the prefix for operator approval markers
	ManagedProposalKeyPrefix = []byte("managed")

	// vaultSeed derives the account that funds proposal native value
	vaultSeed = []byte("treasury")

	// targetSeed derives the 32-byte proposal target id of a module
	targetSeed = []byte("proposal-target")
)

// GetProposalKey returns the store key for a scheduled proposal
func GetProposalKey(proposalHash common.Hash) []byte {
	return append(append([]byte(nil), ProposalKeyPrefix...), proposalHash[:]...)
}

// GetManagedProposalKey returns the store key for an operator approval marker
func GetManagedProposalKey(proposalHash common.Hash) []byte {
	return append(append([]byte(nil), ManagedProposalKeyPrefix...), proposalHash[:]...)
}

// ModuleAddress is the account the timelock acts as when it calls targets.
// Gateway messages addressed to governance must name it as destination.
func ModuleAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(ModuleName)
}

// VaultAddress holds the native coins attached to executed proposals.
func VaultAddress() sdk.AccAddress {
	return address.Module(ModuleName, vaultSeed)
}

// TargetID returns the 32-byte proposal target id registered by a module.
func TargetID(moduleName string) common.Hash {
	return common.BytesToHash(address.Module(moduleName, targetSeed))
}
