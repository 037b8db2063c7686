package pipeline

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/dexscreener"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/models"
)

type fakeMint struct {
	states map[string]models.MintState
	calls  atomic.Int32

	// cancelOn ends the request while address is being read.
	cancelOn string
	cancel   context.CancelFunc
}

func (f *fakeMint) MintState(ctx context.Context, address string) (models.MintState, error) {
	f.calls.Add(1)
	if address == f.cancelOn && f.cancel != nil {
		f.cancel()
		return models.DefaultMintState(), ctx.Err()
	}
	if s, ok := f.states[address]; ok {
		return s, nil
	}
	return models.DefaultMintState(), nil
}

type fakeHolders struct {
	dists map[string]models.HolderDistribution
	calls atomic.Int32
}

func (f *fakeHolders) Distribution(_ context.Context, address string) (models.HolderDistribution, error) {
	f.calls.Add(1)
	if d, ok := f.dists[address]; ok {
		return d, nil
	}
	return models.DefaultHolderDistribution(), nil
}

type fakeMarket struct {
	mu     sync.Mutex
	batch  dexscreener.Batch
	err    error
	limits []int
}

func (f *fakeMarket) FetchCandidates(_ context.Context, limit int, _ float64) (dexscreener.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	return f.batch, f.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func snap(addr string, ageMinutes int) models.TokenSnapshot {
	return models.TokenSnapshot{ContractAddress: addr, Symbol: addr, AgeMinutes: ageMinutes}
}

// safeData gives addr revoked authorities, locked LP and a spread holder base.
func safeData(addr string, m *fakeMint, h *fakeHolders) {
	m.states[addr] = models.MintState{Decimals: 6}
	h.dists[addr] = models.HolderDistribution{Top10Percent: 10, LPLockedPercent: 95}
}

func newFixtures() (*fakeMint, *fakeHolders) {
	return &fakeMint{states: map[string]models.MintState{}},
		&fakeHolders{dists: map[string]models.HolderDistribution{}}
}

func newTestPipeline(t *testing.T, m MintReader, h HolderReader) *Pipeline {
	t.Helper()
	p, err := New(Config{Mint: m, Holders: h, Logger: quietLogger()})
	require.NoError(t, err)
	return p
}

func TestEnrich_SortsByScoreStable(t *testing.T) {
	m, h := newFixtures()
	safeData("B", m, h)
	safeData("D", m, h)
	p := newTestPipeline(t, m, h)

	out := p.Enrich(context.Background(), []models.TokenSnapshot{
		snap("A", 0), snap("B", 200*60), snap("C", 0), snap("D", 200*60),
	}, 10)

	require.Len(t, out, 4)
	assert.Equal(t, []string{"B", "D", "A", "C"}, addresses(out))
	assert.Equal(t, 100, out[0].TrustScore)
	assert.Equal(t, models.RiskSafe, out[0].RiskTier)
	assert.Equal(t, 200.0, out[0].Factors.AgeHours)

	// defaults: 0 + 0 + 0 + 40*20/100 + 0 = 8
	assert.Equal(t, 8, out[2].TrustScore)
	assert.Equal(t, models.RiskExtreme, out[2].RiskTier)
}

func TestEnrich_DedupesFirstSeen(t *testing.T) {
	m, h := newFixtures()
	p := newTestPipeline(t, m, h)

	first := snap("A", 10)
	first.Name = "first"
	dup := snap("A", 99999)
	dup.Name = "second"

	out := p.Enrich(context.Background(), []models.TokenSnapshot{first, snap("B", 0), dup}, 10)
	require.Len(t, out, 2)
	for _, tok := range out {
		if tok.ContractAddress == "A" {
			assert.Equal(t, "first", tok.Name)
		}
	}
	assert.Equal(t, int32(2), m.calls.Load())
	assert.Equal(t, int32(2), h.calls.Load())
}

func TestEnrich_StopsAtLimit(t *testing.T) {
	m, h := newFixtures()
	p := newTestPipeline(t, m, h)

	out := p.Enrich(context.Background(), []models.TokenSnapshot{snap("A", 0), snap("B", 0), snap("C", 0)}, 2)
	assert.Len(t, out, 2)
	assert.Equal(t, int32(2), m.calls.Load())

	assert.Empty(t, p.Enrich(context.Background(), []models.TokenSnapshot{snap("A", 0)}, 0))
	assert.Empty(t, p.Enrich(context.Background(), nil, 5))
}

func TestEnrich_CancelledContext(t *testing.T) {
	m, h := newFixtures()
	p := newTestPipeline(t, m, h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := p.Enrich(ctx, []models.TokenSnapshot{snap("A", 0)}, 5)
	assert.Empty(t, out)
	assert.Equal(t, int32(0), m.calls.Load())
}

func TestEnrich_CancelledMidTokenDropsIt(t *testing.T) {
	m, h := newFixtures()
	safeData("C", m, h)
	p := newTestPipeline(t, m, h)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.cancelOn = "B"
	m.cancel = cancel

	out := p.Enrich(ctx, []models.TokenSnapshot{snap("A", 0), snap("B", 0), snap("C", 200*60)}, 5)
	assert.Equal(t, []string{"A"}, addresses(out))
	assert.Equal(t, int32(2), m.calls.Load())
}

func TestDedupe(t *testing.T) {
	out := Dedupe([]models.TokenSnapshot{snap("A", 1), snap("B", 2), snap("A", 3), snap("C", 4), snap("B", 5)})
	assert.Equal(t, []string{"A", "B", "C"}, snapAddresses(out))
	assert.Equal(t, 1, out[0].AgeMinutes)
}

func TestDetector_RequestsDoubleAndTruncates(t *testing.T) {
	m, h := newFixtures()
	safeData("C", m, h)
	market := &fakeMarket{batch: dexscreener.Batch{Tokens: []models.TokenSnapshot{
		snap("A", 0), snap("B", 0), snap("C", 0), snap("D", 0),
	}}}

	d, err := NewDetector(DetectorConfig{Market: market, Pipeline: newTestPipeline(t, m, h), Logger: quietLogger()})
	require.NoError(t, err)

	res, err := d.Detect(context.Background(), 2, 1000)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, market.limits)
	assert.Equal(t, []string{"A", "B"}, addresses(res.Tokens))
	assert.False(t, res.Cached)
	assert.Nil(t, res.CacheAgeSeconds)
}

func TestDetector_CacheAge(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 42, 900_000_000, time.UTC)
	cachedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	m, h := newFixtures()
	market := &fakeMarket{batch: dexscreener.Batch{
		Tokens:    []models.TokenSnapshot{snap("A", 0)},
		FromCache: true,
		CachedAt:  &cachedAt,
	}}

	d, err := NewDetector(DetectorConfig{
		Market:   market,
		Pipeline: newTestPipeline(t, m, h),
		Now:      func() time.Time { return now },
		Logger:   quietLogger(),
	})
	require.NoError(t, err)

	res, err := d.Detect(context.Background(), 5, 0)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	require.NotNil(t, res.CacheAgeSeconds)
	assert.Equal(t, 42, *res.CacheAgeSeconds)
}

func TestDetector_MarketError(t *testing.T) {
	m, h := newFixtures()
	d, err := NewDetector(DetectorConfig{
		Market:   &fakeMarket{err: errors.New("upstream down")},
		Pipeline: newTestPipeline(t, m, h),
		Logger:   quietLogger(),
	})
	require.NoError(t, err)

	_, err = d.Detect(context.Background(), 5, 0)
	assert.Error(t, err)

	_, err = d.Detect(context.Background(), 0, 0)
	assert.Error(t, err)
}

func addresses(tokens []models.ScoredToken) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.ContractAddress)
	}
	return out
}

func snapAddresses(snaps []models.TokenSnapshot) []string {
	out := make([]string, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, s.ContractAddress)
	}
	return out
}
