package cmd

import (
	"io"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/server"
	servertypes "github.com/cosmos/cosmos-sdk/server/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/gmp-gateway/cosmos/app"
)

// EnvPrefix is the environment variable prefix bound to every flag.
const EnvPrefix = "GMPGW"

// NewRootCmd creates a new root command for gmp-gatewayd. It is called once in the
// main function.
func NewRootCmd() *cobra.Command {
	// Set config for prefixes
	config := sdk.GetConfig()
	config.SetBech32PrefixForAccount(app.AccountAddressPrefix, app.AccountAddressPrefix+"pub")
	config.SetBech32PrefixForValidator(app.AccountAddressPrefix+"valoper", app.AccountAddressPrefix+"valoperpub")
	config.SetBech32PrefixForConsensusNode(app.AccountAddressPrefix+"valcons", app.AccountAddressPrefix+"valconspub")
	config.Seal()

	rootCmd := &cobra.Command{
		Use:   "gmp-gatewayd",
		Short: "GMP gateway daemon",
		Long: `gmp-gatewayd runs a chain that verifies cross-chain messages signed by a
weighted verifier set and executes timelocked governance proposals.`,
	}

	server.AddCommands(rootCmd, app.DefaultNodeHome, newApp, nil, addModuleInitFlags)
	rootCmd.AddCommand(NewEncodeCmd())

	return rootCmd
}

func addModuleInitFlags(startCmd *cobra.Command) {}

// newApp creates the application
func newApp(
	logger log.Logger,
	db dbm.DB,
	traceStore io.Writer,
	appOpts servertypes.AppOptions,
) servertypes.Application {
	return app.New(logger, db, traceStore, true, appOpts)
}
