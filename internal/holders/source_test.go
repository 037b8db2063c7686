package holders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/cache"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/constants"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/models"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/rpc"
)

const testMint = "So11111111111111111111111111111111111111112"

type fakeRPC struct {
	accounts    []rpc.TokenAccountBalance
	accountsErr error
	supply      *rpc.TokenAmount
	supplyErr   error
	calls       atomic.Int32
}

func (f *fakeRPC) GetTokenLargestAccounts(_ context.Context, _ string) ([]rpc.TokenAccountBalance, error) {
	f.calls.Add(1)
	return f.accounts, f.accountsErr
}

func (f *fakeRPC) GetTokenSupply(_ context.Context, _ string) (*rpc.TokenAmount, error) {
	if f.supplyErr != nil {
		return nil, f.supplyErr
	}
	return f.supply, nil
}

func balance(addr, amount string) rpc.TokenAccountBalance {
	return rpc.TokenAccountBalance{Address: addr, TokenAmount: rpc.TokenAmount{Amount: amount}}
}

func newTestSource(t *testing.T, r TokenReader) *Source {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	src, err := NewSource(SourceConfig{
		RPC:    r,
		Cache:  cache.NewMemoryStore[models.Outcome[models.HolderDistribution]](200, 2*time.Minute),
		Logger: logger,
	})
	require.NoError(t, err)
	return src
}

func TestSource_Distribution(t *testing.T) {
	raydium := constants.AMMAuthorities["Raydium"]
	fake := &fakeRPC{
		accounts: []rpc.TokenAccountBalance{
			balance(raydium, "400"),
			balance("Holder1", "150"),
			balance("Holder2", "50"),
		},
		supply: &rpc.TokenAmount{Amount: "1000"},
	}
	src := newTestSource(t, fake)

	dist, err := src.Distribution(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, 3, dist.TotalHoldersObserved)
	assert.Equal(t, 20.0, dist.Top10Percent)
	assert.Equal(t, 40.0, dist.LPLockedPercent)
	require.Len(t, dist.Holders, 3)
	assert.True(t, dist.Holders[0].IsLPOrLocked)
	assert.Equal(t, 1, dist.Holders[0].Rank)
	assert.Equal(t, uint64(150), dist.Holders[1].Amount)
	assert.Equal(t, 15.0, dist.Holders[1].Percent)
}

func TestSource_SupplyFallbackSumsAccounts(t *testing.T) {
	for name, fake := range map[string]*fakeRPC{
		"supply error": {supplyErr: errors.New("boom")},
		"zero supply":  {supply: &rpc.TokenAmount{Amount: "0"}},
	} {
		t.Run(name, func(t *testing.T) {
			fake.accounts = []rpc.TokenAccountBalance{balance("A", "300"), balance("B", "100")}
			dist, err := newTestSource(t, fake).Distribution(context.Background(), testMint)
			require.NoError(t, err)
			assert.Equal(t, 100.0, dist.Top10Percent)
			assert.Equal(t, 75.0, dist.Holders[0].Percent)
		})
	}
}

func TestSource_NoAccountsIsUnavailable(t *testing.T) {
	fake := &fakeRPC{}
	src := newTestSource(t, fake)

	out := src.Lookup(context.Background(), testMint)
	assert.False(t, out.OK)
	dist, err := src.Distribution(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultHolderDistribution(), dist)
	assert.Equal(t, int32(1), fake.calls.Load())
}

func TestSource_ZeroTotalIsUnavailable(t *testing.T) {
	fake := &fakeRPC{
		accounts: []rpc.TokenAccountBalance{balance("A", "0")},
		supply:   &rpc.TokenAmount{Amount: "0"},
	}
	out := newTestSource(t, fake).Lookup(context.Background(), testMint)
	assert.False(t, out.OK)
}

func TestSource_ErrorIsUnavailable(t *testing.T) {
	fake := &fakeRPC{accountsErr: rpc.ErrThrottled}
	dist, err := newTestSource(t, fake).Distribution(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, 50.0, dist.Top10Percent)
	assert.Equal(t, 0.0, dist.LPLockedPercent)
	assert.Empty(t, dist.Holders)
}

func TestSource_RejectedReadsAreNotCached(t *testing.T) {
	rejected := fmt.Errorf("getTokenLargestAccounts: %w", gobreaker.ErrOpenState)
	fake := &fakeRPC{accountsErr: rejected}
	src := newTestSource(t, fake)
	ctx := context.Background()

	assert.False(t, src.Lookup(ctx, testMint).OK)

	// Accounts readable but supply refused: answer from the accounts, keep it out of the cache.
	fake.accountsErr = nil
	fake.accounts = []rpc.TokenAccountBalance{balance("A", "300"), balance("B", "100")}
	fake.supplyErr = fmt.Errorf("getTokenSupply: %w", gobreaker.ErrTooManyRequests)
	out := src.Lookup(ctx, testMint)
	require.True(t, out.OK)
	assert.Equal(t, 100.0, out.Value.Top10Percent)

	fake.supplyErr = nil
	fake.supply = &rpc.TokenAmount{Amount: "800"}
	out = src.Lookup(ctx, testMint)
	require.True(t, out.OK)
	assert.Equal(t, 50.0, out.Value.Top10Percent)
	assert.Equal(t, int32(3), fake.calls.Load())

	src.Lookup(ctx, testMint)
	assert.Equal(t, int32(3), fake.calls.Load())
}

func TestCompute_OnlyTopTen(t *testing.T) {
	var accounts []rpc.TokenAccountBalance
	for i := 0; i < 15; i++ {
		accounts = append(accounts, balance("H", "10"))
	}

	dist := Compute(accounts, decimal.NewFromInt(150))
	assert.Equal(t, 15, dist.TotalHoldersObserved)
	assert.Len(t, dist.Holders, 10)
	assert.Equal(t, 66.67, dist.Top10Percent)
}

func TestCompute_LargeAmountsDoNotOverflow(t *testing.T) {
	accounts := []rpc.TokenAccountBalance{
		balance("A", "18446744073709551615"),
		balance("B", "18446744073709551615"),
	}
	total := decimal.RequireFromString("36893488147419103230")

	dist := Compute(accounts, total)
	assert.Equal(t, 100.0, dist.Top10Percent)
	assert.Equal(t, uint64(18446744073709551615), dist.Holders[0].Amount)
}

func TestIsLPOrLocked(t *testing.T) {
	assert.True(t, IsLPOrLocked("1nc1nerator11111111111111111111111111111111"))
	assert.True(t, IsLPOrLocked("11111111111111111111111111111111"))
	assert.True(t, IsLPOrLocked(constants.LPPrograms["OrcaWhirlpool"]))
	assert.True(t, IsLPOrLocked("prefix"+constants.AMMAuthorities["Orca"]))
	assert.False(t, IsLPOrLocked("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"))
	assert.False(t, IsLPOrLocked(""))
}
