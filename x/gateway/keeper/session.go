package keeper

import (
	"fmt"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
)

// InitializeSession opens the signature session of a payload root. The
// signing set must be known and still inside the retention window.
func (k Keeper) InitializeSession(ctx sdk.Context, payloadRoot, signingSetHash common.Hash) ([]byte, error) {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := k.requireLiveTracker(ctx, config, signingSetHash); err != nil {
		return nil, err
	}

	key := gatewaytypes.GetSessionKey(payloadRoot)
	if ctx.KVStore(k.storeKey).Has(key) {
		return nil, errorsmod.Wrapf(gatewaytypes.ErrSessionAlreadyExists, "payload root %s", payloadRoot.Hex())
	}

	session := gatewaytypes.NewSignatureSession(payloadRoot, signingSetHash, uint64(ctx.BlockHeight()))
	if err := k.set(ctx, key, session); err != nil {
		return nil, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			gatewaytypes.EventTypeSessionInitialized,
			sdk.NewAttribute(gatewaytypes.AttributeKeyPayloadRoot, payloadRoot.Hex()),
			sdk.NewAttribute(gatewaytypes.AttributeKeySigningSetHash, signingSetHash.Hex()),
		),
	)
	return gatewaytypes.DerivedAddress(key), nil
}

// GetSession returns the signature session of a payload root.
func (k Keeper) GetSession(ctx sdk.Context, payloadRoot common.Hash) (gatewaytypes.SignatureSession, error) {
	var session gatewaytypes.SignatureSession
	found, err := k.get(ctx, gatewaytypes.GetSessionKey(payloadRoot), &session)
	if err != nil {
		return session, err
	}
	if !found {
		return session, errorsmod.Wrapf(gatewaytypes.ErrSessionNotFound, "payload root %s", payloadRoot.Hex())
	}
	return session, nil
}

// VerifySignature checks one signer's signature over the payload root and
// adds its weight to the session. Resubmitting a signer that already signed
// is a no-op and reports duplicate.
func (k Keeper) VerifySignature(
	ctx sdk.Context,
	payloadRoot common.Hash,
	leaf gatewaytypes.SignerLeaf,
	proof gatewaytypes.MerkleProof,
	signature []byte,
) (session gatewaytypes.SignatureSession, duplicate bool, err error) {
	config, err := k.GetConfig(ctx)
	if err != nil {
		return session, false, err
	}
	if session, err = k.GetSession(ctx, payloadRoot); err != nil {
		return session, false, err
	}
	if _, err = k.requireLiveTracker(ctx, config, session.SigningSetHash); err != nil {
		return session, false, err
	}

	if err = leaf.Validate(); err != nil {
		return session, false, err
	}
	if leaf.DomainSeparator != config.DomainSeparator {
		return session, false, errorsmod.Wrap(gatewaytypes.ErrSignerNotInSet, "leaf domain separator does not match gateway")
	}
	if uint32(leaf.Position) != proof.LeafIndex || uint32(leaf.SetSize) != proof.LeafCount {
		return session, false, errorsmod.Wrapf(gatewaytypes.ErrSignerNotInSet,
			"leaf position %d/%d disagrees with proof %d/%d", leaf.Position, leaf.SetSize, proof.LeafIndex, proof.LeafCount)
	}
	if err = proof.Verify(session.SigningSetHash, leaf.Encode()); err != nil {
		return session, false, errorsmod.Wrap(gatewaytypes.ErrSignerNotInSet, err.Error())
	}

	digest := gatewaytypes.SigningDigest(config.DomainSeparator, session.SigningSetHash, payloadRoot)
	if err = gatewaytypes.VerifySignature(leaf.Signer.PubKey, digest, signature); err != nil {
		return session, false, err
	}

	wasValid := session.IsValid
	// The first verified leaf latches the session threshold. Every later leaf
	// must carry the same threshold or AddSigner fails with ErrThresholdMismatch.
	added, err := session.AddSigner(leaf.Position, leaf.Signer.Weight, leaf.Threshold)
	if err != nil {
		return session, false, err
	}
	if !added {
		return session, true, nil
	}
	if err = k.set(ctx, gatewaytypes.GetSessionKey(payloadRoot), session); err != nil {
		return session, false, err
	}

	telemetry.IncrCounter(1, gatewaytypes.ModuleName, "signatures_verified")
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			gatewaytypes.EventTypeSignatureVerified,
			sdk.NewAttribute(gatewaytypes.AttributeKeyPayloadRoot, payloadRoot.Hex()),
			sdk.NewAttribute(gatewaytypes.AttributeKeySignerPosition, strconv.FormatUint(uint64(leaf.Position), 10)),
			sdk.NewAttribute(gatewaytypes.AttributeKeyAccumulatedWeight, session.AccumulatedWeight.Dec()),
			sdk.NewAttribute(gatewaytypes.AttributeKeyThreshold, session.Threshold.Dec()),
			sdk.NewAttribute(gatewaytypes.AttributeKeyIsValid, strconv.FormatBool(session.IsValid)),
		),
	)
	if session.IsValid && !wasValid {
		k.Logger(ctx).Info("signature session reached threshold",
			"payload_root", payloadRoot.Hex(),
			"signers", session.SignerCount(),
			"weight", session.AccumulatedWeight.Dec(),
		)
	}
	return session, false, nil
}

// requireValidSession loads a session that has reached its threshold.
func (k Keeper) requireValidSession(ctx sdk.Context, payloadRoot common.Hash) (gatewaytypes.SignatureSession, error) {
	session, err := k.GetSession(ctx, payloadRoot)
	if err != nil {
		return session, err
	}
	if !session.IsValid {
		return session, errorsmod.Wrapf(gatewaytypes.ErrSessionNotValid,
			"payload root %s has weight %s of %s", payloadRoot.Hex(), session.AccumulatedWeight.Dec(), session.Threshold.Dec())
	}
	return session, nil
}

// GetAllSessions returns every signature session in the store.
func (k Keeper) GetAllSessions(ctx sdk.Context) []gatewaytypes.SignatureSession {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, gatewaytypes.SessionKeyPrefix)
	defer iterator.Close()

	sessions := make([]gatewaytypes.SignatureSession, 0)
	for ; iterator.Valid(); iterator.Next() {
		var session gatewaytypes.SignatureSession
		if err := session.UnmarshalBinary(iterator.Value()); err != nil {
			k.Logger(ctx).Error("skipping corrupt signature session", "key", fmt.Sprintf("%x", iterator.Key()), "error", err)
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions
}

// SetSession writes a session directly. Used by genesis import.
func (k Keeper) SetSession(ctx sdk.Context, session gatewaytypes.SignatureSession) error {
	return k.set(ctx, gatewaytypes.GetSessionKey(session.PayloadRoot), session)
}
