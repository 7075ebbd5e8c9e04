package types

import (
	"bytes"

	errorsmod "cosmossdk.io/errors"
	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// Secp256k1SignatureLength is r || s || v.
	Secp256k1SignatureLength = 65
	Ed25519SignatureLength   = 64
)

// VerifySignature checks sig over digest under pk.
func VerifySignature(pk PublicKey, digest common.Hash, sig []byte) error {
	if err := pk.Validate(); err != nil {
		return err
	}
	switch pk.Type {
	case KeyTypeSecp256k1:
		return verifySecp256k1(pk.Key, digest, sig)
	case KeyTypeEd25519:
		if len(sig) != Ed25519SignatureLength {
			return errorsmod.Wrapf(ErrInvalidSignature, "ed25519 signature must be %d bytes, got %d", Ed25519SignatureLength, len(sig))
		}
		if !ed25519.PubKey(pk.Key).VerifySignature(digest[:], sig) {
			return errorsmod.Wrap(ErrInvalidSignature, "ed25519 verification failed")
		}
		return nil
	default:
		return errorsmod.Wrapf(ErrMalformedKey, "unknown key type %d", pk.Type)
	}
}

func verifySecp256k1(compressed []byte, digest common.Hash, sig []byte) error {
	if len(sig) != Secp256k1SignatureLength {
		return errorsmod.Wrapf(ErrInvalidSignature, "secp256k1 signature must be %d bytes, got %d", Secp256k1SignatureLength, len(sig))
	}
	expected, err := crypto.DecompressPubkey(compressed)
	if err != nil {
		return errorsmod.Wrap(ErrMalformedKey, err.Error())
	}

	normalized := make([]byte, Secp256k1SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	if normalized[64] > 1 {
		return errorsmod.Wrapf(ErrInvalidSignature, "invalid recovery id %d", sig[64])
	}

	recovered, err := crypto.Ecrecover(digest[:], normalized)
	if err != nil {
		return errorsmod.Wrap(ErrInvalidSignature, err.Error())
	}
	if !bytes.Equal(recovered, crypto.FromECDSAPub(expected)) {
		return errorsmod.Wrap(ErrInvalidSignature, "recovered key does not match signer")
	}
	return nil
}
