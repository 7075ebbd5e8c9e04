package types

import (
	"github.com/cosmos/cosmos-sdk/codec"
)

// RegisterCodec registers the x/gateway message types on the provided
// LegacyAmino codec.
func RegisterCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&MsgInitializeVerificationSession{}, "gateway/MsgInitializeVerificationSession", nil)
	cdc.RegisterConcrete(&MsgVerifySignature{}, "gateway/MsgVerifySignature", nil)
	cdc.RegisterConcrete(&MsgApproveMessages{}, "gateway/MsgApproveMessages", nil)
	cdc.RegisterConcrete(&MsgRotateVerifierSet{}, "gateway/MsgRotateVerifierSet", nil)
	cdc.RegisterConcrete(&MsgValidateMessage{}, "gateway/MsgValidateMessage", nil)
	cdc.RegisterConcrete(&MsgCallContract{}, "gateway/MsgCallContract", nil)
	cdc.RegisterConcrete(&MsgInitializeMessagePayload{}, "gateway/MsgInitializeMessagePayload", nil)
	cdc.RegisterConcrete(&MsgWriteMessagePayload{}, "gateway/MsgWriteMessagePayload", nil)
	cdc.RegisterConcrete(&MsgCommitMessagePayload{}, "gateway/MsgCommitMessagePayload", nil)
	cdc.RegisterConcrete(&MsgCloseMessagePayload{}, "gateway/MsgCloseMessagePayload", nil)
	cdc.RegisterConcrete(&MsgTransferOperatorship{}, "gateway/MsgTransferOperatorship", nil)
	cdc.RegisterConcrete(&MsgUpdateConfig{}, "gateway/MsgUpdateConfig", nil)
	cdc.RegisterConcrete(&MsgSetExecutionInfo{}, "gateway/MsgSetExecutionInfo", nil)
}

var Amino = codec.NewLegacyAmino()

func init() {
	RegisterCodec(Amino)
	Amino.Seal()
}
