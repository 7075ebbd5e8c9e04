package types

import (
	"github.com/cosmos/cosmos-sdk/codec"
)

// RegisterCodec registers the x/governance message types on the provided
// LegacyAmino codec.
func RegisterCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&MsgProcessGMP{}, "governance/MsgProcessGMP", nil)
	cdc.RegisterConcrete(&MsgExecuteProposal{}, "governance/MsgExecuteProposal", nil)
	cdc.RegisterConcrete(&MsgTransferOperatorship{}, "governance/MsgTransferOperatorship", nil)
}

var Amino = codec.NewLegacyAmino()

func init() {
	RegisterCodec(Amino)
	Amino.Seal()
}
