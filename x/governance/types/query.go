package types

import (
	"github.com/ethereum/go-ethereum/common"
)

type QueryConfigRequest struct{}

type QueryConfigResponse struct {
	Config Config `json:"config"`
}

type QueryProposalRequest struct {
	ProposalHash common.Hash `json:"proposal_hash"`
}

type QueryProposalResponse struct {
	Proposal ProposalRecord `json:"proposal"`
}

type QueryProposalsRequest struct{}

type QueryProposalsResponse struct {
	Proposals []ProposalRecord `json:"proposals"`
}
