package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/baseapp"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	addresscodec "github.com/cosmos/cosmos-sdk/codec/address"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	"github.com/cosmos/cosmos-sdk/server/api"
	"github.com/cosmos/cosmos-sdk/server/config"
	servertypes "github.com/cosmos/cosmos-sdk/server/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/cosmos/cosmos-sdk/version"
	"github.com/cosmos/cosmos-sdk/x/auth"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtx "github.com/cosmos/cosmos-sdk/x/auth/tx"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/cosmos/cosmos-sdk/x/bank"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	"github.com/cosmos/gogoproto/grpc"

	"github.com/gmp-gateway/cosmos/x/gateway"
	gatewaykeeper "github.com/gmp-gateway/cosmos/x/gateway/keeper"
	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
	"github.com/gmp-gateway/cosmos/x/governance"
	governancekeeper "github.com/gmp-gateway/cosmos/x/governance/keeper"
	governancetypes "github.com/gmp-gateway/cosmos/x/governance/types"
)

const (
	AccountAddressPrefix = "cosmos"
	Name                 = "gmp-gateway"
)

var (
	// DefaultNodeHome default home directories for the application daemon
	DefaultNodeHome string

	// ModuleBasics defines the module BasicManager is in charge of setting up basic,
	// non-dependant module elements, such as codec registration
	// and genesis verification.
	ModuleBasics = module.NewBasicManager(
		auth.AppModuleBasic{},
		bank.AppModuleBasic{},
		gateway.AppModuleBasic{},
		governance.AppModuleBasic{},
	)

	// module account permissions
	maccPerms = map[string][]string{
		authtypes.FeeCollectorName: nil,
		governancetypes.ModuleName: nil,
	}
)

func init() {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	DefaultNodeHome = filepath.Join(userHomeDir, "."+Name)
}

// App extends an ABCI application, but with most of its parameters exported.
// They are exported for convenience in creating helper functions, as object
// capabilities aren't needed for testing.
type App struct {
	*baseapp.BaseApp

	cdc               *codec.LegacyAmino
	appCodec          codec.Codec
	interfaceRegistry codectypes.InterfaceRegistry
	txConfig          client.TxConfig

	// keys to access the substores
	keys map[string]*storetypes.KVStoreKey

	// keepers
	AccountKeeper    authkeeper.AccountKeeper
	BankKeeper       bankkeeper.BaseKeeper
	GatewayKeeper    gatewaykeeper.Keeper
	GovernanceKeeper governancekeeper.Keeper

	// the module manager
	mm *module.Manager
}

// New returns a reference to an initialized blockchain app
func New(
	logger log.Logger,
	db dbm.DB,
	traceStore io.Writer,
	loadLatest bool,
	appOpts servertypes.AppOptions,
	baseAppOptions ...func(*baseapp.BaseApp),
) *App {
	interfaceRegistry := codectypes.NewInterfaceRegistry()
	appCodec := codec.NewProtoCodec(interfaceRegistry)
	legacyAmino := codec.NewLegacyAmino()
	txConfig := authtx.NewTxConfig(appCodec, authtx.DefaultSignModes)

	ModuleBasics.RegisterLegacyAminoCodec(legacyAmino)
	ModuleBasics.RegisterInterfaces(interfaceRegistry)

	bApp := baseapp.NewBaseApp(Name, logger, db, txConfig.TxDecoder(), baseAppOptions...)
	bApp.SetCommitMultiStoreTracer(traceStore)
	bApp.SetVersion(version.Version)
	bApp.SetInterfaceRegistry(interfaceRegistry)
	bApp.SetTxEncoder(txConfig.TxEncoder())

	keys := storetypes.NewKVStoreKeys(
		authtypes.StoreKey,
		banktypes.StoreKey,
		gatewaytypes.StoreKey,
		governancetypes.StoreKey,
	)

	app := &App{
		BaseApp:           bApp,
		cdc:               legacyAmino,
		appCodec:          appCodec,
		interfaceRegistry: interfaceRegistry,
		txConfig:          txConfig,
		keys:              keys,
	}

	// governance is the authority of every governed module
	authority := governancetypes.ModuleAddress().String()

	app.AccountKeeper = authkeeper.NewAccountKeeper(
		appCodec,
		runtime.NewKVStoreService(keys[authtypes.StoreKey]),
		authtypes.ProtoBaseAccount,
		maccPerms,
		addresscodec.NewBech32Codec(AccountAddressPrefix),
		AccountAddressPrefix,
		authority,
	)
	app.BankKeeper = bankkeeper.NewBaseKeeper(
		appCodec,
		runtime.NewKVStoreService(keys[banktypes.StoreKey]),
		app.AccountKeeper,
		app.BlockedModuleAccountAddrs(),
		authority,
		logger,
	)
	app.GatewayKeeper = *gatewaykeeper.NewKeeper(keys[gatewaytypes.StoreKey], authority)
	app.GovernanceKeeper = *governancekeeper.NewKeeper(
		keys[governancetypes.StoreKey],
		app.BankKeeper,
		app.GatewayKeeper,
	)
	if err := app.GovernanceKeeper.RegisterTarget(
		governancetypes.TargetID(gatewaytypes.ModuleName),
		governancekeeper.NewGatewayTarget(gatewaykeeper.NewMsgServerImpl(app.GatewayKeeper)),
	); err != nil {
		panic(err)
	}

	app.mm = module.NewManager(
		auth.NewAppModule(appCodec, app.AccountKeeper, nil, nil),
		bank.NewAppModule(appCodec, app.BankKeeper, app.AccountKeeper, nil),
		gateway.NewAppModule(appCodec, app.GatewayKeeper),
		governance.NewAppModule(appCodec, app.GovernanceKeeper),
	)
	// governance reads gateway approvals, so the gateway initializes first
	app.mm.SetOrderInitGenesis(
		authtypes.ModuleName,
		banktypes.ModuleName,
		gatewaytypes.ModuleName,
		governancetypes.ModuleName,
	)
	app.mm.SetOrderExportGenesis(
		authtypes.ModuleName,
		banktypes.ModuleName,
		gatewaytypes.ModuleName,
		governancetypes.ModuleName,
	)

	app.MountKVStores(keys)
	app.SetInitChainer(app.InitChainer)

	if loadLatest {
		if err := app.LoadLatestVersion(); err != nil {
			panic(fmt.Errorf("failed to load latest version: %w", err))
		}
	}
	return app
}

// InitChainer application update at chain initialization
func (app *App) InitChainer(ctx sdk.Context, req *abci.RequestInitChain) (*abci.ResponseInitChain, error) {
	var genesisState map[string]json.RawMessage
	if err := json.Unmarshal(req.AppStateBytes, &genesisState); err != nil {
		return nil, err
	}
	return app.mm.InitGenesis(ctx, app.appCodec, genesisState)
}

// ExportGenesis returns the exported genesis of every module.
func (app *App) ExportGenesis(ctx sdk.Context) (map[string]json.RawMessage, error) {
	return app.mm.ExportGenesis(ctx, app.appCodec)
}

// RouteMsg delivers a gateway or governance message to its module's Msg
// service. It is the only delivery path for these messages: neither module
// registers with the MsgServiceRouter.
func (app *App) RouteMsg(ctx sdk.Context, msg sdk.Msg) (interface{}, error) {
	routed, ok := msg.(interface{ Route() string })
	if !ok {
		return nil, errorsmod.Wrapf(sdkerrors.ErrUnknownRequest, "unroutable message type: %T", msg)
	}
	switch routed.Route() {
	case gatewaytypes.RouterKey:
		return gatewaytypes.RouteMsg(ctx, gatewaykeeper.NewMsgServerImpl(app.GatewayKeeper), msg)
	case governancetypes.RouterKey:
		return governancetypes.RouteMsg(ctx, governancekeeper.NewMsgServerImpl(app.GovernanceKeeper), msg)
	default:
		return nil, errorsmod.Wrapf(sdkerrors.ErrUnknownRequest, "no route %q for %T", routed.Route(), msg)
	}
}

// BlockedModuleAccountAddrs returns the module accounts that may not receive funds.
func (app *App) BlockedModuleAccountAddrs() map[string]bool {
	blocked := make(map[string]bool, len(maccPerms))
	for acc := range maccPerms {
		blocked[authtypes.NewModuleAddress(acc).String()] = true
	}
	return blocked
}

// Name returns the name of the App
func (app *App) Name() string { return app.BaseApp.Name() }

// LegacyAmino returns the app's amino codec.
func (app *App) LegacyAmino() *codec.LegacyAmino {
	return app.cdc
}

// AppCodec returns an app codec.
func (app *App) AppCodec() codec.Codec {
	return app.appCodec
}

// InterfaceRegistry returns an InterfaceRegistry
func (app *App) InterfaceRegistry() codectypes.InterfaceRegistry {
	return app.interfaceRegistry
}

// TxConfig returns the app's TxConfig
func (app *App) TxConfig() client.TxConfig {
	return app.txConfig
}

// DefaultGenesis returns a default genesis from the registered AppModuleBasic's.
func (app *App) DefaultGenesis() map[string]json.RawMessage {
	return ModuleBasics.DefaultGenesis(app.appCodec)
}

// GetKey returns the KVStoreKey for the provided store key.
func (app *App) GetKey(storeKey string) *storetypes.KVStoreKey {
	return app.keys[storeKey]
}

// RegisterAPIRoutes registers all application module routes with the provided API server.
func (app *App) RegisterAPIRoutes(apiSvr *api.Server, apiConfig config.APIConfig) {
	ModuleBasics.RegisterGRPCGatewayRoutes(apiSvr.ClientCtx, apiSvr.GRPCGatewayRouter)
}

// RegisterGRPCServer registers gRPC services directly with the gRPC server.
func (app *App) RegisterGRPCServer(server grpc.Server) {
	app.BaseApp.RegisterGRPCServer(server)
}

// RegisterTxService registers the gRPC Query service for tx.
func (app *App) RegisterTxService(clientCtx client.Context) {}

// RegisterTendermintService registers the gRPC Query service for CometBFT queries.
func (app *App) RegisterTendermintService(clientCtx client.Context) {}

// RegisterNodeService registers the node gRPC Query service.
func (app *App) RegisterNodeService(clientCtx client.Context, cfg config.Config) {}

// Close is called to gracefully cleanup resources.
func (app *App) Close() error {
	return app.BaseApp.Close()
}
