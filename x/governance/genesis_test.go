package governance_test

import (
	"encoding/json"
	"testing"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/gmp-gateway/cosmos/testutil"
	"github.com/gmp-gateway/cosmos/x/governance"
	"github.com/gmp-gateway/cosmos/x/governance/keeper"
	"github.com/gmp-gateway/cosmos/x/governance/types"
)

func freshKeeper(t *testing.T) (sdk.Context, *keeper.Keeper) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	ctx := testutil.NewContext(t, storeKey)
	return ctx, keeper.NewKeeper(storeKey, nil, nil)
}

func TestValidateGenesis(t *testing.T) {
	require.NoError(t, governance.ValidateGenesis(governance.DefaultGenesisState()))

	gs := governance.DefaultGenesisState()
	gs.Proposals = []types.ProposalRecord{{Hash: common.Hash{0x01}, Eta: 1}}
	require.Error(t, governance.ValidateGenesis(gs), "proposals need a config")

	gs.Params.TrustedChains = []string{"ethereum"}
	gs.Params.GovernanceAddress = testutil.GovernanceSourceAddress
	require.NoError(t, governance.ValidateGenesis(gs))

	gs.Proposals = append(gs.Proposals, types.ProposalRecord{Hash: common.Hash{0x01}, Eta: 2})
	require.Error(t, governance.ValidateGenesis(gs))

	gs = governance.DefaultGenesisState()
	gs.Params.TrustedChains = []string{"ethereum"}
	require.Error(t, governance.ValidateGenesis(gs), "governance address required")

	gs.Params.GovernanceAddress = testutil.GovernanceSourceAddress
	gs.Params.Operator = "not-an-address"
	require.Error(t, governance.ValidateGenesis(gs))
}

func TestGenesisExportImport(t *testing.T) {
	f := testutil.NewGovernanceFixture(t, 100)
	target := common.HexToHash("0x5151")
	f.Deliver(t, types.GovernanceCommand{
		Command:     types.CommandScheduleTimeLockProposal,
		Target:      target,
		NativeValue: new(uint256.Int),
		Eta:         new(uint256.Int),
	})
	f.Deliver(t, types.GovernanceCommand{
		Command:     types.CommandApproveOperatorProposal,
		Target:      target,
		NativeValue: new(uint256.Int),
		Eta:         new(uint256.Int),
	})

	exported := governance.ExportGenesis(f.Ctx, *f.Governance)
	require.Len(t, exported.Proposals, 1)
	require.True(t, exported.Proposals[0].OperatorApproved)
	require.Equal(t, f.Operator.String(), exported.Params.Operator)

	bz, err := json.Marshal(exported)
	require.NoError(t, err)
	var imported governance.GenesisState
	require.NoError(t, json.Unmarshal(bz, &imported))
	require.NoError(t, governance.ValidateGenesis(&imported))

	ctx, k := freshKeeper(t)
	require.NoError(t, governance.InitGenesis(ctx, *k, &imported))

	hash := types.ProposalHash(target, nil, nil)
	record, found := k.GetProposalRecord(ctx, hash)
	require.True(t, found)
	require.Equal(t, f.Now()+100, record.Eta)
	require.True(t, record.OperatorApproved)
	require.True(t, k.IsOperator(ctx, f.Operator))
	require.Equal(t, exported, governance.ExportGenesis(ctx, *k))
}

func TestInitGenesisDefaultLeavesGovernanceUninitialized(t *testing.T) {
	ctx, k := freshKeeper(t)
	require.NoError(t, governance.InitGenesis(ctx, *k, governance.DefaultGenesisState()))

	_, err := k.GetConfig(ctx)
	require.ErrorIs(t, err, types.ErrNotInitialized)
	require.Empty(t, governance.ExportGenesis(ctx, *k).Proposals)
}
