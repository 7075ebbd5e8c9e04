package types

import (
	"encoding/binary"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
)

// Config is the single governance configuration record.
type Config struct {
	TrustedChains           []string       `json:"trusted_chains"`
	GovernanceAddress       string         `json:"governance_address"`
	MinimumProposalEtaDelay uint64         `json:"minimum_proposal_eta_delay"`
	Operator                sdk.AccAddress `json:"operator"`
	NativeDenom             string         `json:"native_denom"`
}

// IsTrustedSource reports whether a message from chain/address may carry
// governance commands.
func (c Config) IsTrustedSource(chain, address string) bool {
	if address != c.GovernanceAddress {
		return false
	}
	for _, trusted := range c.TrustedChains {
		if trusted == chain {
			return true
		}
	}
	return false
}

// Validate checks that the config names a source and a denom.
func (c Config) Validate() error {
	if len(c.TrustedChains) == 0 {
		return errorsmod.Wrap(ErrInvalidConfig, "at least one trusted chain is required")
	}
	seen := make(map[string]bool, len(c.TrustedChains))
	for _, chain := range c.TrustedChains {
		if chain == "" {
			return errorsmod.Wrap(ErrInvalidConfig, "trusted chain cannot be empty")
		}
		if seen[chain] {
			return errorsmod.Wrapf(ErrInvalidConfig, "duplicate trusted chain %s", chain)
		}
		seen[chain] = true
	}
	if c.GovernanceAddress == "" {
		return errorsmod.Wrap(ErrInvalidConfig, "governance address cannot be empty")
	}
	if err := sdk.ValidateDenom(c.NativeDenom); err != nil {
		return errorsmod.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

func (c Config) MarshalBinary() ([]byte, error) {
	var e gatewaytypes.Encoder
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(c.TrustedChains)))
	e.Tag(n[:])
	for _, chain := range c.TrustedChains {
		e.Bytes([]byte(chain))
	}
	e.Bytes([]byte(c.GovernanceAddress))
	var delay [8]byte
	binary.LittleEndian.PutUint64(delay[:], c.MinimumProposalEtaDelay)
	e.Tag(delay[:])
	e.Bytes(c.Operator)
	e.Bytes([]byte(c.NativeDenom))
	return e.Result(), nil
}

func (c *Config) UnmarshalBinary(b []byte) error {
	d := gatewaytypes.NewDecoder(b)
	n, err := d.U32()
	if err != nil {
		return err
	}
	c.TrustedChains = make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		chain, err := d.Bytes()
		if err != nil {
			return err
		}
		c.TrustedChains = append(c.TrustedChains, string(chain))
	}
	address, err := d.Bytes()
	if err != nil {
		return err
	}
	c.GovernanceAddress = string(address)
	if c.MinimumProposalEtaDelay, err = d.U64(); err != nil {
		return err
	}
	operator, err := d.Bytes()
	if err != nil {
		return err
	}
	c.Operator = nil
	if len(operator) > 0 {
		c.Operator = append(sdk.AccAddress(nil), operator...)
	}
	denom, err := d.Bytes()
	if err != nil {
		return err
	}
	c.NativeDenom = string(denom)
	return d.Done()
}

// Proposal is a scheduled timelock proposal. It is keyed by its hash and
// stores only the earliest execution time.
type Proposal struct {
	Eta uint64 `json:"eta"`
}

func (p Proposal) MarshalBinary() ([]byte, error) {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, p.Eta)
	return out, nil
}

func (p *Proposal) UnmarshalBinary(b []byte) error {
	if len(b) != 8 {
		return errorsmod.Wrapf(ErrInvalidEncoding, "proposal record must be 8 bytes, got %d", len(b))
	}
	p.Eta = binary.LittleEndian.Uint64(b)
	return nil
}

// ProposalRecord is a proposal together with its hash and operator
// approval flag, as exported and queried.
type ProposalRecord struct {
	Hash             common.Hash `json:"hash"`
	Eta              uint64      `json:"eta"`
	OperatorApproved bool        `json:"operator_approved"`
}
