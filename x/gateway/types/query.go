package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type QueryConfigRequest struct{}

type QueryConfigResponse struct {
	Config Config `json:"config"`
}

type QueryVerifierSetTrackerRequest struct {
	VerifierSetHash common.Hash `json:"verifier_set_hash"`
}

type QueryVerifierSetTrackerResponse struct {
	Tracker VerifierSetTracker `json:"tracker"`
	IsLive  bool               `json:"is_live"`
}

type QuerySessionRequest struct {
	PayloadRoot common.Hash `json:"payload_root"`
}

type QuerySessionResponse struct {
	Session SignatureSession `json:"session"`
	Status  string           `json:"status"`
}

type QueryApprovalRequest struct {
	CommandID common.Hash `json:"command_id"`
}

type QueryApprovalResponse struct {
	Approval ApprovalEntry `json:"approval"`
	Status   string        `json:"status"`
}

type QueryMessagePayloadRequest struct {
	Payer     string      `json:"payer"`
	CommandID common.Hash `json:"command_id"`
}

type QueryMessagePayloadResponse struct {
	Committed   bool          `json:"committed"`
	PayloadHash common.Hash   `json:"payload_hash"`
	Raw         hexutil.Bytes `json:"raw"`
}

type QueryExecutionInfoRequest struct {
	Destination string `json:"destination"`
}

type QueryExecutionInfoResponse struct {
	Descriptor hexutil.Bytes `json:"descriptor"`
}
