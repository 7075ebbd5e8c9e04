package types

import (
	"cosmossdk.io/errors"
)

// x/gateway module sentinel errors. Code 1 is reserved by the SDK.
var (
	ErrInvalidProof               = errors.Register(ModuleName, 2, "invalid merkle proof")
	ErrInvalidSignature           = errors.Register(ModuleName, 3, "invalid signature")
	ErrSignerNotInSet             = errors.Register(ModuleName, 4, "signer not in committed verifier set")
	ErrMalformedKey               = errors.Register(ModuleName, 5, "malformed public key")
	ErrSessionExpiredSet          = errors.Register(ModuleName, 6, "signing verifier set is outside the retention window")
	ErrSessionNotValid            = errors.Register(ModuleName, 7, "signature verification session has not reached threshold")
	ErrSessionNotFound            = errors.Register(ModuleName, 8, "signature verification session not found")
	ErrSessionAlreadyExists       = errors.Register(ModuleName, 9, "signature verification session already initialized")
	ErrDoubleApproval             = errors.Register(ModuleName, 10, "message already approved under a different payload")
	ErrAlreadyExecuted            = errors.Register(ModuleName, 11, "message already executed")
	ErrApprovalNotFound           = errors.Register(ModuleName, 12, "message approval not found")
	ErrPayloadHashMismatch        = errors.Register(ModuleName, 13, "payload hash does not match approval")
	ErrDestinationMismatch        = errors.Register(ModuleName, 14, "caller is not the message destination")
	ErrVerifierSetNotFound        = errors.Register(ModuleName, 15, "verifier set tracker not found")
	ErrVerifierSetExists          = errors.Register(ModuleName, 16, "verifier set tracker already exists")
	ErrAlreadyInitialized         = errors.Register(ModuleName, 17, "gateway config already initialized")
	ErrNotInitialized             = errors.Register(ModuleName, 18, "gateway config not initialized")
	ErrOperatorOnly               = errors.Register(ModuleName, 19, "operation requires the gateway operator")
	ErrRotationCooldown           = errors.Register(ModuleName, 20, "verifier set rotated too recently")
	ErrNotRotationPayload         = errors.Register(ModuleName, 21, "payload is not a verifier set rotation")
	ErrArithmeticOverflow         = errors.Register(ModuleName, 22, "arithmetic overflow")
	ErrInvalidVerifierSet         = errors.Register(ModuleName, 23, "invalid verifier set")
	ErrThresholdMismatch          = errors.Register(ModuleName, 24, "signer leaf threshold differs from session threshold")
	ErrInvalidEncoding            = errors.Register(ModuleName, 25, "invalid encoding")
	ErrMessagePayloadNotFound     = errors.Register(ModuleName, 26, "message payload not found")
	ErrMessagePayloadExists       = errors.Register(ModuleName, 27, "message payload already initialized")
	ErrMessagePayloadCommitted    = errors.Register(ModuleName, 28, "message payload already committed")
	ErrMessagePayloadNotCommitted = errors.Register(ModuleName, 29, "message payload not committed")
	ErrMessagePayloadOutOfBounds  = errors.Register(ModuleName, 30, "write exceeds message payload buffer")
	ErrMessagePayloadTooLarge     = errors.Register(ModuleName, 31, "message payload buffer too large")
	ErrSigningSetMismatch         = errors.Register(ModuleName, 32, "signer leaf belongs to a different verifier set")
	ErrInvalidInstruction         = errors.Register(ModuleName, 33, "invalid gateway instruction")
	ErrEmptyMerkleTree            = errors.Register(ModuleName, 34, "merkle tree has no leaves")
)
