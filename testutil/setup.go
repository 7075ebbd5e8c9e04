package testutil

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	storetypes "cosmossdk.io/store/types"
	sdktestutil "github.com/cosmos/cosmos-sdk/testutil"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"

	gatewaykeeper "github.com/gmp-gateway/cosmos/x/gateway/keeper"
	gatewaytypes "github.com/gmp-gateway/cosmos/x/gateway/types"
	governancetypes "github.com/gmp-gateway/cosmos/x/governance/types"
)

// PropertyTestConfig holds configuration for property-based tests
type PropertyTestConfig struct {
	MinSuccessfulTests int
	MaxDiscardRatio    float64
	Workers            int
	Rng                *rand.Rand
}

// DefaultPropertyTestConfig returns default configuration for property tests
func DefaultPropertyTestConfig() *PropertyTestConfig {
	return &PropertyTestConfig{
		MinSuccessfulTests: 100,
		MaxDiscardRatio:    5.0,
		Workers:            1,
		Rng:                rand.New(gopter.NewLockedSource(time.Now().UnixNano())),
	}
}

// NewPropertyTester creates a new property tester with default configuration
func NewPropertyTester(t *testing.T) *gopter.Properties {
	config := DefaultPropertyTestConfig()
	parameters := &gopter.TestParameters{
		MinSuccessfulTests: config.MinSuccessfulTests,
		MaxDiscardRatio:    config.MaxDiscardRatio,
		Workers:            config.Workers,
		Rng:                config.Rng,
	}
	return gopter.NewProperties(parameters)
}

// GenesisTime is the block time of every fixture context.
var GenesisTime = time.Unix(1_700_000_000, 0).UTC()

// DefaultDomainSeparator is the domain separator of fixture gateways.
var DefaultDomainSeparator = common.HexToHash("0x6761746577617900000000000000000000000000000000000000000000000001")

// GovernanceAuthority is the gateway authority used by fixtures: the
// governance module account, as wired in the app.
func GovernanceAuthority() sdk.AccAddress {
	return governancetypes.ModuleAddress()
}

// NewContext returns a context backed by an in-memory store with the given keys mounted.
func NewContext(t testing.TB, keys ...storetypes.StoreKey) sdk.Context {
	if len(keys) == 0 {
		t.Fatal("at least one store key is required")
	}
	var kv []*storetypes.KVStoreKey
	for _, k := range keys {
		if key, ok := k.(*storetypes.KVStoreKey); ok {
			kv = append(kv, key)
		}
	}
	testCtx := sdktestutil.DefaultContextWithKeys(
		storeKeyMap(kv),
		map[string]*storetypes.TransientStoreKey{"transient_test": storetypes.NewTransientStoreKey("transient_test")},
		nil,
	)
	return testCtx.WithBlockTime(GenesisTime).WithBlockHeight(1)
}

func storeKeyMap(keys []*storetypes.KVStoreKey) map[string]*storetypes.KVStoreKey {
	out := make(map[string]*storetypes.KVStoreKey, len(keys))
	for _, k := range keys {
		out[k.Name()] = k
	}
	return out
}

// GatewayKeeper returns a gateway keeper over a fresh store.
func GatewayKeeper(t testing.TB) (sdk.Context, *gatewaykeeper.Keeper, *storetypes.KVStoreKey) {
	storeKey := storetypes.NewKVStoreKey(gatewaytypes.StoreKey)
	ctx := NewContext(t, storeKey)
	k := NewGatewayKeeper(storeKey)
	return ctx, k, storeKey
}

// NewGatewayKeeper builds a gateway keeper on storeKey with the fixture authority.
func NewGatewayKeeper(storeKey storetypes.StoreKey) *gatewaykeeper.Keeper {
	return gatewaykeeper.NewKeeper(storeKey, GovernanceAuthority().String())
}

// Generators for property-based testing

// GenValidAddress generates valid Cosmos addresses
func GenValidAddress() gopter.Gen {
	return gen.SliceOfN(20, gen.UInt8()).Map(func(bytes []byte) sdk.AccAddress {
		return sdk.AccAddress(bytes)
	})
}

// GenHash generates arbitrary 32-byte hashes
func GenHash() gopter.Gen {
	return gen.SliceOfN(32, gen.UInt8()).Map(func(b []byte) common.Hash {
		return common.BytesToHash(b)
	})
}

func genIdentifier() gopter.Gen {
	return gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 && len(s) <= 64 })
}

// GenMessage generates valid cross-chain messages
func GenMessage() gopter.Gen {
	return gopter.CombineGens(
		genIdentifier(),
		genIdentifier(),
		genIdentifier(),
		genIdentifier(),
		GenValidAddress(),
		GenHash(),
	).Map(func(values []interface{}) gatewaytypes.Message {
		return gatewaytypes.Message{
			CCID: gatewaytypes.CrossChainID{
				Chain: values[0].(string),
				ID:    values[1].(string),
			},
			SourceAddress:      values[2].(string),
			DestinationChain:   values[3].(string),
			DestinationAddress: values[4].(sdk.AccAddress).String(),
			PayloadHash:        values[5].(common.Hash),
		}
	})
}

// GenMessages generates between 1 and max messages with distinct command ids
func GenMessages(max int) gopter.Gen {
	return gen.IntRange(1, max).FlatMap(func(n interface{}) gopter.Gen {
		return gen.SliceOfN(n.(int), GenMessage())
	}, reflect.TypeOf([]gatewaytypes.Message{})).Map(func(msgs []gatewaytypes.Message) []gatewaytypes.Message {
		for i := range msgs {
			msgs[i].CCID.ID = msgs[i].CCID.ID + "-" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		}
		return msgs
	})
}

// GenWeights generates between 1 and max signer weights in [1, 100]
func GenWeights(max int) gopter.Gen {
	return gen.IntRange(1, max).FlatMap(func(n interface{}) gopter.Gen {
		return gen.SliceOfN(n.(int), gen.UInt64Range(1, 100))
	}, reflect.TypeOf([]uint64{}))
}
