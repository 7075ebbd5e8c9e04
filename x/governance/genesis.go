package governance

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	"github.com/gmp-gateway/cosmos/x/governance/keeper"
	"github.com/gmp-gateway/cosmos/x/governance/types"
)

// GenesisState defines the governance module's genesis state.
type GenesisState struct {
	Params    Params                 `json:"params"`
	Proposals []types.ProposalRecord `json:"proposals"`
}

// Params defines the governance configuration. Governance stays
// uninitialized while no trusted chain is configured.
type Params struct {
	TrustedChains           []string `json:"trusted_chains"`
	GovernanceAddress       string   `json:"governance_address"`
	MinimumProposalEtaDelay uint64   `json:"minimum_proposal_eta_delay"`
	Operator                string   `json:"operator"`
	NativeDenom             string   `json:"native_denom"`
}

// DefaultParams returns a default set of parameters
func DefaultParams() Params {
	return Params{
		TrustedChains:           []string{},
		MinimumProposalEtaDelay: 86400, // one day
		NativeDenom:             sdk.DefaultBondDenom,
	}
}

// DefaultGenesisState returns the default genesis state
func DefaultGenesisState() *GenesisState {
	return &GenesisState{
		Params:    DefaultParams(),
		Proposals: []types.ProposalRecord{},
	}
}

func (p Params) config() (types.Config, error) {
	config := types.Config{
		TrustedChains:           p.TrustedChains,
		GovernanceAddress:       p.GovernanceAddress,
		MinimumProposalEtaDelay: p.MinimumProposalEtaDelay,
		NativeDenom:             p.NativeDenom,
	}
	if p.Operator != "" {
		operator, err := sdk.AccAddressFromBech32(p.Operator)
		if err != nil {
			return types.Config{}, fmt.Errorf("invalid operator address: %w", err)
		}
		config.Operator = operator
	}
	return config, nil
}

// ValidateGenesis validates the governance genesis state
func ValidateGenesis(data *GenesisState) error {
	if len(data.Params.TrustedChains) == 0 {
		if len(data.Proposals) > 0 {
			return fmt.Errorf("proposals require a configured governance")
		}
		return nil
	}
	config, err := data.Params.config()
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	seen := make(map[common.Hash]bool, len(data.Proposals))
	for _, p := range data.Proposals {
		if seen[p.Hash] {
			return fmt.Errorf("duplicate proposal %s", p.Hash.Hex())
		}
		seen[p.Hash] = true
	}
	return nil
}

// InitGenesis initializes the governance module's state from a provided genesis state.
func InitGenesis(ctx sdk.Context, k keeper.Keeper, genState *GenesisState) error {
	if len(genState.Params.TrustedChains) == 0 {
		k.Logger(ctx).Info("governance genesis has no trusted chains; governance left uninitialized")
		return nil
	}
	config, err := genState.Params.config()
	if err != nil {
		return err
	}
	if err := k.InitializeConfig(ctx, config); err != nil {
		return err
	}
	return k.ImportProposals(ctx, genState.Proposals)
}

// ExportGenesis returns the governance module's exported genesis.
func ExportGenesis(ctx sdk.Context, k keeper.Keeper) *GenesisState {
	genesis := DefaultGenesisState()

	config, err := k.GetConfig(ctx)
	if err != nil {
		return genesis
	}
	genesis.Params = Params{
		TrustedChains:           config.TrustedChains,
		GovernanceAddress:       config.GovernanceAddress,
		MinimumProposalEtaDelay: config.MinimumProposalEtaDelay,
		NativeDenom:             config.NativeDenom,
	}
	if len(config.Operator) > 0 {
		genesis.Params.Operator = config.Operator.String()
	}
	if proposals := k.GetAllProposals(ctx); len(proposals) > 0 {
		genesis.Proposals = proposals
	}
	return genesis
}
