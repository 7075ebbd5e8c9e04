package types

import (
	"cosmossdk.io/errors"
)

// x/governance module sentinel errors
var (
	ErrNotInitialized           = errors.Register(ModuleName, 2, "governance config not initialized")
	ErrAlreadyInitialized       = errors.Register(ModuleName, 3, "governance config already initialized")
	ErrProposalAlreadyScheduled = errors.Register(ModuleName, 4, "proposal already scheduled")
	ErrProposalNotFound         = errors.Register(ModuleName, 5, "proposal not found")
	ErrEtaNotReached            = errors.Register(ModuleName, 6, "proposal eta not reached")
	ErrOperatorOnly             = errors.Register(ModuleName, 7, "operation requires the governance operator")
	ErrUntrustedSource          = errors.Register(ModuleName, 8, "message source is not the trusted governance chain and address")
	ErrInvalidCommand           = errors.Register(ModuleName, 9, "invalid governance command payload")
	ErrPayloadHashMismatch      = errors.Register(ModuleName, 10, "payload does not match message payload hash")
	ErrUnknownTarget            = errors.Register(ModuleName, 11, "no handler registered for proposal target")
	ErrInvalidCall              = errors.Register(ModuleName, 12, "invalid proposal call data")
	ErrOperatorApprovalExists   = errors.Register(ModuleName, 13, "proposal already approved for the operator")
	ErrArithmeticOverflow       = errors.Register(ModuleName, 14, "arithmetic overflow")
	ErrInvalidConfig            = errors.Register(ModuleName, 15, "invalid governance config")
	ErrDuplicateTarget          = errors.Register(ModuleName, 16, "proposal target already registered")
	ErrInvalidEncoding          = errors.Register(ModuleName, 17, "invalid encoding")
)
