package keeper

import (
	"encoding"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	expected "github.com/gmp-gateway/cosmos/types"
	"github.com/gmp-gateway/cosmos/x/governance/types"
)

// Keeper of the governance store
type Keeper struct {
	storeKey storetypes.StoreKey

	bankKeeper    expected.BankKeeper
	gatewayKeeper expected.GatewayKeeper

	// targets is shared by every copy of the keeper so that targets
	// registered after the msg server is built are still reachable.
	targets map[common.Hash]ProposalTarget
}

// NewKeeper creates a new governance Keeper instance. The keeper registers
// itself as the proposal target for the governance module.
func NewKeeper(
	storeKey storetypes.StoreKey,
	bankKeeper expected.BankKeeper,
	gatewayKeeper expected.GatewayKeeper,
) *Keeper {
	k := &Keeper{
		storeKey:      storeKey,
		bankKeeper:    bankKeeper,
		gatewayKeeper: gatewayKeeper,
		targets:       make(map[common.Hash]ProposalTarget),
	}
	k.targets[types.TargetID(types.ModuleName)] = selfTarget{keeper: k}
	return k
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// InitializeConfig stores the governance config. It may run once.
func (k Keeper) InitializeConfig(ctx sdk.Context, config types.Config) error {
	if ctx.KVStore(k.storeKey).Has(types.ConfigKey) {
		return types.ErrAlreadyInitialized
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if err := k.setConfig(ctx, config); err != nil {
		return err
	}
	k.Logger(ctx).Info("governance initialized",
		"trusted_chains", config.TrustedChains,
		"governance_address", config.GovernanceAddress,
		"minimum_proposal_eta_delay", config.MinimumProposalEtaDelay,
	)
	return nil
}

// GetConfig returns the governance config.
func (k Keeper) GetConfig(ctx sdk.Context) (types.Config, error) {
	var config types.Config
	found, err := k.get(ctx, types.ConfigKey, &config)
	if err != nil {
		return types.Config{}, err
	}
	if !found {
		return types.Config{}, types.ErrNotInitialized
	}
	return config, nil
}

// IsOperator reports whether addr is the governance operator.
func (k Keeper) IsOperator(ctx sdk.Context, addr sdk.AccAddress) bool {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return false
	}
	return len(config.Operator) > 0 && config.Operator.Equals(addr)
}

// GetProposal returns the scheduled proposal with the given hash.
func (k Keeper) GetProposal(ctx sdk.Context, proposalHash common.Hash) (types.Proposal, bool) {
	var proposal types.Proposal
	found, err := k.get(ctx, types.GetProposalKey(proposalHash), &proposal)
	if err != nil {
		panic(err)
	}
	return proposal, found
}

// IsOperatorApproved reports whether the operator may execute the proposal
// before its eta.
func (k Keeper) IsOperatorApproved(ctx sdk.Context, proposalHash common.Hash) bool {
	return ctx.KVStore(k.storeKey).Has(types.GetManagedProposalKey(proposalHash))
}

// GetProposalRecord returns a proposal with its operator approval flag.
func (k Keeper) GetProposalRecord(ctx sdk.Context, proposalHash common.Hash) (types.ProposalRecord, bool) {
	proposal, found := k.GetProposal(ctx, proposalHash)
	if !found {
		return types.ProposalRecord{}, false
	}
	return types.ProposalRecord{
		Hash:             proposalHash,
		Eta:              proposal.Eta,
		OperatorApproved: k.IsOperatorApproved(ctx, proposalHash),
	}, true
}

// GetAllProposals returns every scheduled proposal.
func (k Keeper) GetAllProposals(ctx sdk.Context) []types.ProposalRecord {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, types.ProposalKeyPrefix)
	defer iterator.Close()

	var records []types.ProposalRecord
	for ; iterator.Valid(); iterator.Next() {
		hash := common.BytesToHash(iterator.Key()[len(types.ProposalKeyPrefix):])
		var proposal types.Proposal
		if err := proposal.UnmarshalBinary(iterator.Value()); err != nil {
			panic(err)
		}
		records = append(records, types.ProposalRecord{
			Hash:             hash,
			Eta:              proposal.Eta,
			OperatorApproved: k.IsOperatorApproved(ctx, hash),
		})
	}
	return records
}

// ImportProposals restores exported proposals and operator approvals.
func (k Keeper) ImportProposals(ctx sdk.Context, records []types.ProposalRecord) error {
	for _, record := range records {
		if _, found := k.GetProposal(ctx, record.Hash); found {
			return errorsmod.Wrapf(types.ErrProposalAlreadyScheduled, "%s", record.Hash.Hex())
		}
		if err := k.setProposal(ctx, record.Hash, types.Proposal{Eta: record.Eta}); err != nil {
			return err
		}
		if record.OperatorApproved {
			k.setOperatorApproval(ctx, record.Hash)
		}
	}
	return nil
}

func (k Keeper) setConfig(ctx sdk.Context, config types.Config) error {
	return k.set(ctx, types.ConfigKey, config)
}

func (k Keeper) setProposal(ctx sdk.Context, proposalHash common.Hash, proposal types.Proposal) error {
	return k.set(ctx, types.GetProposalKey(proposalHash), proposal)
}

func (k Keeper) deleteProposal(ctx sdk.Context, proposalHash common.Hash) {
	ctx.KVStore(k.storeKey).Delete(types.GetProposalKey(proposalHash))
}

func (k Keeper) setOperatorApproval(ctx sdk.Context, proposalHash common.Hash) {
	ctx.KVStore(k.storeKey).Set(types.GetManagedProposalKey(proposalHash), []byte{1})
}

func (k Keeper) deleteOperatorApproval(ctx sdk.Context, proposalHash common.Hash) {
	ctx.KVStore(k.storeKey).Delete(types.GetManagedProposalKey(proposalHash))
}

func (k Keeper) set(ctx sdk.Context, key []byte, value encoding.BinaryMarshaler) error {
	bz, err := value.MarshalBinary()
	if err != nil {
		return err
	}
	ctx.KVStore(k.storeKey).Set(key, bz)
	return nil
}

func (k Keeper) get(ctx sdk.Context, key []byte, dst encoding.BinaryUnmarshaler) (bool, error) {
	bz := ctx.KVStore(k.storeKey).Get(key)
	if bz == nil {
		return false, nil
	}
	if err := dst.UnmarshalBinary(bz); err != nil {
		return true, errorsmod.Wrapf(err, "corrupt record at %x", key)
	}
	return true, nil
}
