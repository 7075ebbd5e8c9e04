package gateway

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	"github.com/gmp-gateway/cosmos/x/gateway/keeper"
	"github.com/gmp-gateway/cosmos/x/gateway/types"
)

// GenesisState defines the gateway module's genesis state. Params bootstrap
// a fresh gateway; the remaining fields carry exported state.
type GenesisState struct {
	Params          Params                        `json:"params"`
	Config          *types.Config                 `json:"config,omitempty"`
	Trackers        []types.VerifierSetTracker    `json:"trackers"`
	Approvals       []keeper.ApprovalRecord       `json:"approvals"`
	Sessions        []types.SignatureSession      `json:"sessions"`
	MessagePayloads []keeper.MessagePayloadRecord `json:"message_payloads"`
	ExecutionInfos  []keeper.ExecutionInfoRecord  `json:"execution_infos"`
}

// Params defines the bootstrap parameters of the gateway.
type Params struct {
	DomainSeparator              common.Hash   `json:"domain_separator"`
	InitialVerifierSets          []common.Hash `json:"initial_verifier_sets"`
	Operator                     string        `json:"operator"`
	PreviousVerifierSetRetention uint64        `json:"previous_verifier_set_retention"`
	MinimumRotationDelay         uint64        `json:"minimum_rotation_delay"`
}

// DefaultParams returns a default set of parameters
func DefaultParams() Params {
	return Params{
		InitialVerifierSets:          []common.Hash{},
		PreviousVerifierSetRetention: 4,
		MinimumRotationDelay:         86400, // one day
	}
}

// DefaultGenesisState returns the default genesis state
func DefaultGenesisState() *GenesisState {
	return &GenesisState{
		Params:          DefaultParams(),
		Trackers:        []types.VerifierSetTracker{},
		Approvals:       []keeper.ApprovalRecord{},
		Sessions:        []types.SignatureSession{},
		MessagePayloads: []keeper.MessagePayloadRecord{},
		ExecutionInfos:  []keeper.ExecutionInfoRecord{},
	}
}

// ValidateGenesis validates the gateway genesis parameters
func ValidateGenesis(data *GenesisState) error {
	if data.Params.Operator != "" {
		if _, err := sdk.AccAddressFromBech32(data.Params.Operator); err != nil {
			return fmt.Errorf("invalid operator address: %w", err)
		}
	}

	seen := make(map[common.Hash]bool, len(data.Params.InitialVerifierSets))
	for i, h := range data.Params.InitialVerifierSets {
		if h == (common.Hash{}) {
			return fmt.Errorf("initial verifier set %d is empty", i)
		}
		if seen[h] {
			return fmt.Errorf("duplicate initial verifier set %s", h.Hex())
		}
		seen[h] = true
	}
	if len(data.Params.InitialVerifierSets) > 0 && data.Params.DomainSeparator == (common.Hash{}) {
		return fmt.Errorf("domain separator is required with initial verifier sets")
	}

	if err := validateMessagePayloads(data.MessagePayloads); err != nil {
		return err
	}
	if err := validateExecutionInfos(data.ExecutionInfos); err != nil {
		return err
	}

	if data.Config == nil {
		if len(data.Trackers) > 0 || len(data.Approvals) > 0 || len(data.Sessions) > 0 {
			return fmt.Errorf("trackers, approvals and sessions require an exported config")
		}
		return nil
	}
	if len(data.Params.InitialVerifierSets) > 0 {
		return fmt.Errorf("exported config and initial verifier sets are mutually exclusive")
	}
	trackers := make(map[common.Hash]bool, len(data.Trackers))
	for _, t := range data.Trackers {
		if t.Epoch == nil || !t.Epoch.IsUint64() || t.Epoch.Uint64() == 0 || t.Epoch.Uint64() > data.Config.CurrentEpoch {
			return fmt.Errorf("tracker %s has invalid epoch", t.VerifierSetHash.Hex())
		}
		trackers[t.VerifierSetHash] = true
	}
	return validateSessions(data.Sessions, trackers)
}

func validateSessions(sessions []types.SignatureSession, trackers map[common.Hash]bool) error {
	seen := make(map[common.Hash]bool, len(sessions))
	for _, session := range sessions {
		root := session.PayloadRoot
		if seen[root] {
			return fmt.Errorf("duplicate session for payload root %s", root.Hex())
		}
		seen[root] = true
		if !trackers[session.SigningSetHash] {
			return fmt.Errorf("session %s signs with unknown verifier set %s", root.Hex(), session.SigningSetHash.Hex())
		}
		if session.AccumulatedWeight == nil || session.Threshold == nil {
			return fmt.Errorf("session %s is missing its weight or threshold", root.Hex())
		}
		if session.IsValid != (!session.Threshold.IsZero() && !session.AccumulatedWeight.Lt(session.Threshold)) {
			return fmt.Errorf("session %s validity disagrees with its weight", root.Hex())
		}
	}
	return nil
}

func validateMessagePayloads(records []keeper.MessagePayloadRecord) error {
	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if _, err := sdk.AccAddressFromBech32(record.Payer); err != nil {
			return fmt.Errorf("message payload %s has invalid payer: %w", record.CommandID.Hex(), err)
		}
		id := record.Payer + "/" + record.CommandID.Hex()
		if seen[id] {
			return fmt.Errorf("duplicate message payload %s", id)
		}
		seen[id] = true
		if err := record.Payload.Validate(); err != nil {
			return fmt.Errorf("message payload %s: %w", id, err)
		}
	}
	return nil
}

func validateExecutionInfos(records []keeper.ExecutionInfoRecord) error {
	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if _, err := sdk.AccAddressFromBech32(record.Destination); err != nil {
			return fmt.Errorf("execution info has invalid destination: %w", err)
		}
		if seen[record.Destination] {
			return fmt.Errorf("duplicate execution info for %s", record.Destination)
		}
		seen[record.Destination] = true
		if len(record.Descriptor) == 0 || len(record.Descriptor) > types.MaxMessagePayloadSize {
			return fmt.Errorf("execution info for %s has descriptor length %d", record.Destination, len(record.Descriptor))
		}
	}
	return nil
}

// InitGenesis initializes the gateway module's state from a provided genesis state.
func InitGenesis(ctx sdk.Context, k keeper.Keeper, genState *GenesisState) error {
	if err := initConfig(ctx, k, genState); err != nil {
		return err
	}

	for _, record := range genState.MessagePayloads {
		payer, err := sdk.AccAddressFromBech32(record.Payer)
		if err != nil {
			return err
		}
		if err := k.SetMessagePayload(ctx, payer, record.CommandID, record.Payload); err != nil {
			return err
		}
	}
	for _, record := range genState.ExecutionInfos {
		destination, err := sdk.AccAddressFromBech32(record.Destination)
		if err != nil {
			return err
		}
		if err := k.SetExecutionInfo(ctx, destination, record.Descriptor); err != nil {
			return err
		}
	}
	return nil
}

func initConfig(ctx sdk.Context, k keeper.Keeper, genState *GenesisState) error {
	if genState.Config != nil {
		if err := k.ImportState(ctx, *genState.Config, genState.Trackers); err != nil {
			return err
		}
		for _, record := range genState.Approvals {
			if err := k.SetApproval(ctx, record.CommandID, record.Entry); err != nil {
				return err
			}
		}
		for _, session := range genState.Sessions {
			if err := k.SetSession(ctx, session); err != nil {
				return err
			}
		}
		return nil
	}

	if len(genState.Params.InitialVerifierSets) == 0 {
		k.Logger(ctx).Info("gateway genesis has no initial verifier sets; gateway left uninitialized")
		return nil
	}

	var operator sdk.AccAddress
	if genState.Params.Operator != "" {
		var err error
		if operator, err = sdk.AccAddressFromBech32(genState.Params.Operator); err != nil {
			return err
		}
	}
	return k.InitializeConfig(
		ctx,
		genState.Params.DomainSeparator,
		genState.Params.InitialVerifierSets,
		operator,
		genState.Params.PreviousVerifierSetRetention,
		genState.Params.MinimumRotationDelay,
	)
}

// ExportGenesis returns the gateway module's exported genesis.
func ExportGenesis(ctx sdk.Context, k keeper.Keeper) *GenesisState {
	genesis := DefaultGenesisState()
	genesis.MessagePayloads = k.GetAllMessagePayloads(ctx)
	genesis.ExecutionInfos = k.GetAllExecutionInfos(ctx)

	config, err := k.GetConfig(ctx)
	if err != nil {
		return genesis
	}
	genesis.Params.DomainSeparator = config.DomainSeparator
	genesis.Params.PreviousVerifierSetRetention = config.PreviousVerifierSetRetention
	genesis.Params.MinimumRotationDelay = config.MinimumRotationDelay
	genesis.Config = &config
	genesis.Trackers = k.GetAllVerifierSetTrackers(ctx)
	genesis.Approvals = k.GetAllApprovals(ctx)
	genesis.Sessions = k.GetAllSessions(ctx)
	return genesis
}
