package keeper

import (
	"encoding"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
)

// Keeper of the gateway store
type Keeper struct {
	storeKey storetypes.StoreKey

	// authority may update config and operatorship alongside the operator
	authority string
}

// NewKeeper creates a new gateway Keeper instance
func NewKeeper(storeKey storetypes.StoreKey, authority string) *Keeper {
	return &Keeper{
		storeKey:  storeKey,
		authority: authority,
	}
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", fmt.Sprintf("x/%s", gatewaytypes.ModuleName))
}

// GetAuthority returns the module authority address.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// InitializeConfig installs the gateway config and the initial verifier sets
// at epochs 1..n. It may run once. Initialization counts as a rotation, so a
// rotation within minimumRotationDelay of it needs the operator co-sign.
func (k Keeper) InitializeConfig(
	ctx sdk.Context,
	domainSeparator common.Hash,
	initialSets []common.Hash,
	operator sdk.AccAddress,
	retention, minimumRotationDelay uint64,
) error {
	if k.hasConfig(ctx) {
		return gatewaytypes.ErrAlreadyInitialized
	}
	if len(initialSets) == 0 {
		return errorsmod.Wrap(gatewaytypes.ErrInvalidVerifierSet, "at least one initial verifier set is required")
	}

	for i, setHash := range initialSets {
		if k.HasVerifierSetTracker(ctx, setHash) {
			return errorsmod.Wrapf(gatewaytypes.ErrVerifierSetExists, "initial set %d: %s", i, setHash.Hex())
		}
		k.setVerifierSetTracker(ctx, gatewaytypes.VerifierSetTracker{
			Epoch:           uint256.NewInt(uint64(i + 1)),
			VerifierSetHash: setHash,
		})
	}

	config := gatewaytypes.Config{
		DomainSeparator:              domainSeparator,
		CurrentEpoch:                 uint64(len(initialSets)),
		PreviousVerifierSetRetention: retention,
		MinimumRotationDelay:         minimumRotationDelay,
		LastRotationTimestamp:        uint64(ctx.BlockTime().Unix()),
		Operator:                     operator,
	}
	if err := k.setConfig(ctx, config); err != nil {
		return err
	}

	k.Logger(ctx).Info("gateway config initialized",
		"domain_separator", domainSeparator.Hex(),
		"current_epoch", config.CurrentEpoch,
		"retention", retention,
		"operator", operator.String(),
	)
	return nil
}

// GetConfig returns the gateway config.
func (k Keeper) GetConfig(ctx sdk.Context) (gatewaytypes.Config, error) {
	var config gatewaytypes.Config
	found, err := k.get(ctx, gatewaytypes.GetConfigKey(), &config)
	if err != nil {
		return config, err
	}
	if !found {
		return config, gatewaytypes.ErrNotInitialized
	}
	return config, nil
}

// GetVerifierSetTracker returns the tracker of a verifier set hash.
func (k Keeper) GetVerifierSetTracker(ctx sdk.Context, setHash common.Hash) (gatewaytypes.VerifierSetTracker, bool) {
	var tracker gatewaytypes.VerifierSetTracker
	found, err := k.get(ctx, gatewaytypes.GetVerifierSetTrackerKey(setHash), &tracker)
	if err != nil || !found {
		return gatewaytypes.VerifierSetTracker{}, false
	}
	return tracker, true
}

// HasVerifierSetTracker reports whether a tracker exists for setHash.
func (k Keeper) HasVerifierSetTracker(ctx sdk.Context, setHash common.Hash) bool {
	return ctx.KVStore(k.storeKey).Has(gatewaytypes.GetVerifierSetTrackerKey(setHash))
}

// GetAllVerifierSetTrackers returns every tracker in the store.
func (k Keeper) GetAllVerifierSetTrackers(ctx sdk.Context) []gatewaytypes.VerifierSetTracker {
	store := ctx.KVStore(k.storeKey)
	iterator := storetypes.KVStorePrefixIterator(store, gatewaytypes.VerifierSetTrackerKeyPrefix)
	defer iterator.Close()

	trackers := make([]gatewaytypes.VerifierSetTracker, 0)
	for ; iterator.Valid(); iterator.Next() {
		var tracker gatewaytypes.VerifierSetTracker
		if err := tracker.UnmarshalBinary(iterator.Value()); err != nil {
			k.Logger(ctx).Error("skipping corrupt verifier set tracker", "key", fmt.Sprintf("%x", iterator.Key()), "error", err)
			continue
		}
		trackers = append(trackers, tracker)
	}
	return trackers
}

// requireLiveTracker resolves setHash to a tracker inside the retention window.
func (k Keeper) requireLiveTracker(ctx sdk.Context, config gatewaytypes.Config, setHash common.Hash) (gatewaytypes.VerifierSetTracker, error) {
	tracker, found := k.GetVerifierSetTracker(ctx, setHash)
	if !found {
		return tracker, errorsmod.Wrapf(gatewaytypes.ErrVerifierSetNotFound, "%s", setHash.Hex())
	}
	if !config.IsLive(tracker.Epoch) {
		return tracker, errorsmod.Wrapf(gatewaytypes.ErrSessionExpiredSet,
			"set epoch %s, current epoch %d, retention %d", tracker.Epoch, config.CurrentEpoch, config.PreviousVerifierSetRetention)
	}
	return tracker, nil
}

// Private helper methods

func (k Keeper) hasConfig(ctx sdk.Context) bool {
	return ctx.KVStore(k.storeKey).Has(gatewaytypes.GetConfigKey())
}

func (k Keeper) setConfig(ctx sdk.Context, config gatewaytypes.Config) error {
	return k.set(ctx, gatewaytypes.GetConfigKey(), config)
}

func (k Keeper) setVerifierSetTracker(ctx sdk.Context, tracker gatewaytypes.VerifierSetTracker) {
	if err := k.set(ctx, gatewaytypes.GetVerifierSetTrackerKey(tracker.VerifierSetHash), tracker); err != nil {
		panic(err)
	}
}

func (k Keeper) set(ctx sdk.Context, key []byte, value encoding.BinaryMarshaler) error {
	bz, err := value.MarshalBinary()
	if err != nil {
		return err
	}
	ctx.KVStore(k.storeKey).Set(key, bz)
	return nil
}

func (k Keeper) get(ctx sdk.Context, key []byte, dst encoding.BinaryUnmarshaler) (bool, error) {
	bz := ctx.KVStore(k.storeKey).Get(key)
	if bz == nil {
		return false, nil
	}
	if err := dst.UnmarshalBinary(bz); err != nil {
		return true, errorsmod.Wrapf(err, "corrupt record at %x", key)
	}
	return true, nil
}

// ImportState restores an exported config and its trackers.
func (k Keeper) ImportState(ctx sdk.Context, config gatewaytypes.Config, trackers []gatewaytypes.VerifierSetTracker) error {
	if k.hasConfig(ctx) {
		return gatewaytypes.ErrAlreadyInitialized
	}
	for _, tracker := range trackers {
		if tracker.Epoch == nil || tracker.Epoch.IsZero() || !tracker.Epoch.IsUint64() || tracker.Epoch.Uint64() > config.CurrentEpoch {
			return errorsmod.Wrapf(gatewaytypes.ErrInvalidVerifierSet, "tracker %s has epoch %v beyond current epoch %d",
				tracker.VerifierSetHash.Hex(), tracker.Epoch, config.CurrentEpoch)
		}
		k.setVerifierSetTracker(ctx, tracker)
	}
	return k.setConfig(ctx, config)
}
