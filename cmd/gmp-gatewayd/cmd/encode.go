package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
	governancetypes "github.com/gmp-gateway/cosmos/x/governance/types"
)

const (
	flagCommand      = "command"
	flagTarget       = "target"
	flagTargetModule = "target-module"
	flagCallData     = "call-data"
	flagNativeValue  = "native-value"
	flagEta          = "eta"
	flagRetention    = "previous-verifier-set-retention"
	flagRotation     = "minimum-rotation-delay"
)

// EncodedCommand is printed by the encode governance-command subcommand.
type EncodedCommand struct {
	Command      string        `json:"command"`
	Payload      hexutil.Bytes `json:"payload"`
	PayloadHash  common.Hash   `json:"payload_hash"`
	ProposalHash common.Hash   `json:"proposal_hash"`
}

// NewEncodeCmd returns the offline encoders for governance payloads, call
// data and gateway instructions. Every flag may also be set through the
// environment, e.g. GMPGW_NATIVE_VALUE.
func NewEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode governance commands, proposal call data and gateway instructions",
	}
	cmd.AddCommand(
		governanceCommandCmd(),
		proposalHashCmd(),
		selfCallCmd(),
		gatewayInstructionCmd(),
	)
	return cmd
}

// bindFlags returns a viper instance resolving flags first and GMPGW_*
// environment variables second.
func bindFlags(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	return v, nil
}

func addProposalFlags(flags *pflag.FlagSet) {
	flags.String(flagTarget, "", "Hex encoded 32-byte target identifier")
	flags.String(flagTargetModule, "", "Module whose proposal target is called (overrides --target)")
	flags.String(flagCallData, "0x", "Hex encoded call data")
	flags.String(flagNativeValue, "0", "Native value paid to the target, in base units")
}

func proposalFields(v *viper.Viper) (common.Hash, []byte, *uint256.Int, error) {
	var target common.Hash
	if module := v.GetString(flagTargetModule); module != "" {
		target = governancetypes.TargetID(module)
	} else {
		raw, err := hexutil.Decode(v.GetString(flagTarget))
		if err != nil {
			return common.Hash{}, nil, nil, fmt.Errorf("--%s: %w", flagTarget, err)
		}
		if len(raw) != common.HashLength {
			return common.Hash{}, nil, nil, fmt.Errorf("--%s: expected %d bytes, got %d", flagTarget, common.HashLength, len(raw))
		}
		target = common.BytesToHash(raw)
	}

	callData, err := hexutil.Decode(v.GetString(flagCallData))
	if err != nil {
		return common.Hash{}, nil, nil, fmt.Errorf("--%s: %w", flagCallData, err)
	}
	value, err := parseUint256(v.GetString(flagNativeValue))
	if err != nil {
		return common.Hash{}, nil, nil, fmt.Errorf("--%s: %w", flagNativeValue, err)
	}
	return target, callData, value, nil
}

func parseUint256(s string) (*uint256.Int, error) {
	if strings.HasPrefix(s, "0x") {
		return uint256.FromHex(s)
	}
	return uint256.FromDecimal(s)
}

func parseCommandType(s string) (governancetypes.CommandType, error) {
	for c := governancetypes.CommandScheduleTimeLockProposal; c <= governancetypes.CommandCancelOperatorApproval; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", s)
}

func printJSON(cmd *cobra.Command, out any) error {
	bz, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}

func governanceCommandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "governance-command",
		Short:   "ABI encode a governance GMP payload",
		Example: "gmp-gatewayd encode governance-command --command schedule_time_lock_proposal --target-module gateway --call-data 0x04... --eta 1700000000",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := bindFlags(cmd.Flags())
			if err != nil {
				return err
			}
			commandType, err := parseCommandType(v.GetString(flagCommand))
			if err != nil {
				return err
			}
			target, callData, value, err := proposalFields(v)
			if err != nil {
				return err
			}
			eta, err := parseUint256(v.GetString(flagEta))
			if err != nil {
				return fmt.Errorf("--%s: %w", flagEta, err)
			}

			command := governancetypes.GovernanceCommand{
				Command:     commandType,
				Target:      target,
				CallData:    callData,
				NativeValue: value,
				Eta:         eta,
			}
			payload, err := command.Encode()
			if err != nil {
				return err
			}
			return printJSON(cmd, EncodedCommand{
				Command:      commandType.String(),
				Payload:      payload,
				PayloadHash:  crypto.Keccak256Hash(payload),
				ProposalHash: command.ProposalHash(),
			})
		},
	}
	cmd.Flags().String(flagCommand, governancetypes.CommandScheduleTimeLockProposal.String(), "Governance command name")
	cmd.Flags().String(flagEta, "0", "Requested execution time in unix seconds")
	addProposalFlags(cmd.Flags())
	return cmd
}

func proposalHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal-hash",
		Short: "Print the hash a proposal is stored under",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := bindFlags(cmd.Flags())
			if err != nil {
				return err
			}
			target, callData, value, err := proposalFields(v)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), governancetypes.ProposalHash(target, callData, value).Hex())
			return err
		},
	}
	addProposalFlags(cmd.Flags())
	return cmd
}

func selfCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "self-call",
		Short: "Encode call data for proposals targeting the governance module",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "transfer-operatorship [new-operator]",
		Short: "Hand the governance operator role to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := sdk.AccAddressFromBech32(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(governancetypes.TransferOperatorshipCall(addr)))
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "withdraw [receiver] [amount]",
		Short: "Pay native tokens from the governance vault",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := sdk.AccAddressFromBech32(args[0])
			if err != nil {
				return err
			}
			amount, err := parseUint256(args[1])
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(governancetypes.WithdrawTokensCall(addr, amount)))
			return err
		},
	})
	return cmd
}

func gatewayInstructionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway-instruction",
		Short: "Encode gateway instructions usable as governance call data",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "transfer-operatorship [new-operator]",
		Short: "Hand the gateway operator role to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := sdk.AccAddressFromBech32(args[0]); err != nil {
				return err
			}
			return printInstruction(cmd, &gatewaytypes.MsgTransferOperatorship{
				Authority:   governancetypes.ModuleAddress().String(),
				NewOperator: args[0],
			})
		},
	})

	updateConfig := &cobra.Command{
		Use:   "update-config",
		Short: "Change the verifier set retention and rotation delay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := bindFlags(cmd.Flags())
			if err != nil {
				return err
			}
			return printInstruction(cmd, &gatewaytypes.MsgUpdateConfig{
				Authority:                    governancetypes.ModuleAddress().String(),
				PreviousVerifierSetRetention: v.GetUint64(flagRetention),
				MinimumRotationDelay:         v.GetUint64(flagRotation),
			})
		},
	}
	updateConfig.Flags().Uint64(flagRetention, 0, "Number of previous verifier sets that may still sign")
	updateConfig.Flags().Uint64(flagRotation, 0, "Seconds between rotations without an operator co-sign")
	cmd.AddCommand(updateConfig)
	return cmd
}

func printInstruction(cmd *cobra.Command, msg sdk.Msg) error {
	bz, err := gatewaytypes.EncodeInstruction(msg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(bz))
	return err
}
