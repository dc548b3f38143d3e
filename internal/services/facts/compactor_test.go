package facts

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"TrueSignal/internal/domain/models"
	"TrueSignal/internal/domain/repository"
	xlogger "TrueSignal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opt(v float64) models.OptFloat { return models.OptFloat{Value: v, Valid: true} }

func opts(xs []float64) []models.OptFloat {
	out := make([]models.OptFloat, len(xs))
	for i, x := range xs {
		out[i] = opt(x)
	}
	return out
}

// fixture: 30 daily bars closing 1..30, highs one above, lows one below.
func fixtureInputs() Inputs {
	closes := seq(1, 30)
	highs := make([]float64, len(closes))
	lows := make([]float64, len(closes))
	vols := make([]float64, len(closes))
	for i, c := range closes {
		highs[i] = c + 1
		lows[i] = c - 1
		vols[i] = 1000
	}
	vols[len(vols)-1] = 3000

	h := &models.History{}
	h.Indicators.Quote = []models.Candles{{
		High:   opts(highs),
		Low:    opts(lows),
		Close:  append(opts(closes[:10]), append([]models.OptFloat{{}}, opts(closes[10:])...)...),
		Volume: opts(vols),
	}}

	cal := &models.Calendar{}
	cal.Earnings.EarningsDate = "2024-07-25"

	return Inputs{
		Quote: &models.Quote{
			RegularMarketChange:        opt(1.234),
			RegularMarketChangePercent: opt(4.1666),
			RegularMarketTime:          opt(1700000000),
			Beta:                       opt(1.2345),
		},
		History:      h,
		Fundamentals: &models.Fundamentals{PERatio: opt(25), FreeCashFlowMargin: opt(0.12345)},
		Analyst:      &models.AnalystConsensus{Buy: opt(10), TargetMean: opt(36)},
		Calendar:     cal,
		News: []models.RawNewsItem{
			{Title: "Acme posts 12.5% revenue growth and beats estimates by $1,200 on strong demand"},
			{Title: "Second story"},
			{Title: "Third story"},
			{Title: "Fourth story is dropped"},
		},
	}
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestCompact(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := Compact("ACME", fixtureInputs(), now)

	assert.Equal(t, "ACME", f.Ticker)
	require.NotNil(t, f.Quote.P)
	assert.Equal(t, 30.0, *f.Quote.P)
	assert.Equal(t, 1.23, *f.Quote.Chg)
	assert.Equal(t, 4.17, *f.Quote.ChgPct)
	assert.Equal(t, 1.23, *f.Quote.Beta)

	assert.Equal(t, 15.5, *f.Price.Mean)
	assert.Equal(t, 1.0, *f.Price.Min)
	assert.Equal(t, 30.0, *f.Price.Max)
	assert.Equal(t, 2.0, *f.Price.ATR)
	assert.Equal(t, 20.0, *f.Price.R5d)
	assert.Equal(t, 200.0, *f.Price.R20d)
	assert.Equal(t, 100.0, f.Price.RSI)

	assert.Equal(t, 20.5, *f.Trend.SMA20)
	assert.Nil(t, f.Trend.SMA50)
	assert.Nil(t, f.Trend.Above50)
	assert.Nil(t, f.Trend.SMA200)

	require.NotNil(t, f.Volume.Z)
	assert.Equal(t, 4.36, *f.Volume.Z)
	assert.True(t, *f.Volume.Spike)

	assert.Equal(t, 31.0, *f.Range.Hi52)
	assert.Equal(t, 0.0, *f.Range.Lo52)
	assert.Equal(t, -3.23, *f.Range.PctFromHi)
	assert.Nil(t, f.Range.PctFromLo, "zero low has no distance")

	assert.Equal(t, []float64{14.5}, f.Levels.Sup)
	assert.Equal(t, []float64{31, 16.5}, f.Levels.Res)

	assert.Equal(t, 25.0, *f.Fundamentals.PE)
	assert.Equal(t, 0.12, *f.Fundamentals.FCFM)
	assert.Nil(t, f.Fundamentals.PS)
	assert.Equal(t, 20.0, *f.Analyst.ImpliedPct)

	assert.Equal(t, []models.FactCatalyst{{Type: "earnings", Date: "2024-07-25"}}, f.Catalysts)

	require.Len(t, f.News, 3)
	assert.Equal(t, "Acme posts 12.5% revenue growth and beats estimates…", f.News[0].T)
	assert.Equal(t, []string{"12.5%", "1200"}, f.News[0].Num)
	assert.Equal(t, "Second story", f.News[1].T)

	assert.Equal(t, "2023-11-14T22:13:20.000Z", f.Freshness.PriceAt)
	assert.Equal(t, "2024-05-01T12:00:00.000Z", f.Freshness.MetricsAsOf)
}

func TestCompact_EmptyInputsAreUnknownNotErrors(t *testing.T) {
	now := time.Unix(0, 0)
	f := Compact("NONE", Inputs{}, now)

	assert.Nil(t, f.Quote.P)
	assert.Nil(t, f.Price.Mean)
	assert.Nil(t, f.Price.ATR)
	assert.Equal(t, 50.0, f.Price.RSI)
	assert.Nil(t, f.Range.Hi52)
	assert.Equal(t, []float64{}, f.Levels.Sup)
	assert.Empty(t, f.Catalysts)
	assert.Empty(t, f.News)
	assert.Equal(t, "1970-01-01T00:00:00.000Z", f.Freshness.PriceAt)
}

func TestEnforceBudget_TrimsNewsFirst(t *testing.T) {
	f := Compact("ACME", fixtureInputs(), time.Now())
	long := strings.Repeat("x", 3000)
	for i := range f.News {
		f.News[i].T = long
	}
	require.Greater(t, Size(f), 8192)

	steps, size := EnforceBudget(f, 8192)
	assert.Equal(t, []string{StepNews}, steps)
	assert.LessOrEqual(t, size, 8192)
	assert.Equal(t, size, Size(f))
	assert.Len(t, f.News, 2)
	assert.NotNil(t, f.Price.Std, "std survives when news trimming was enough")
	assert.Len(t, f.Levels.Res, 2)
}

func TestEnforceBudget_FixedOrderAndIdempotent(t *testing.T) {
	f := Compact("ACME", fixtureInputs(), time.Now())

	steps, _ := EnforceBudget(f, 10)
	assert.Equal(t, []string{StepNews, StepStdDev, StepLevels}, steps)
	assert.Nil(t, f.Price.Std)
	assert.Len(t, f.Levels.Res, 1)
	assert.NotContains(t, string(mustJSON(t, f)), `"std"`)

	before := Size(f)
	steps, size := EnforceBudget(f, 10)
	assert.Empty(t, steps)
	assert.Equal(t, before, size)
}

func TestEnforceBudget_UnderBudgetIsNoop(t *testing.T) {
	f := Compact("ACME", fixtureInputs(), time.Now())
	before := Size(f)
	steps, size := EnforceBudget(f, 1<<20)
	assert.Empty(t, steps)
	assert.Equal(t, before, size)
	assert.Len(t, f.News, 3)
}

type fakeMarketData struct {
	in      Inputs
	failOn  string
	mu      sync.Mutex
	history []int
}

func (m *fakeMarketData) fail(what string) error {
	if m.failOn == what {
		return repository.ErrUpstream
	}
	return nil
}

func (m *fakeMarketData) Search(context.Context, string) ([]models.SymbolMatch, error) {
	return nil, nil
}

func (m *fakeMarketData) Quote(context.Context, string) (*models.Quote, error) {
	return m.in.Quote, m.fail("quote")
}

func (m *fakeMarketData) History(_ context.Context, _ string, _ repository.Timeframe, days int) (*models.History, error) {
	m.mu.Lock()
	m.history = append(m.history, days)
	m.mu.Unlock()
	return m.in.History, m.fail("history")
}

func (m *fakeMarketData) Fundamentals(context.Context, string) (*models.Fundamentals, error) {
	return m.in.Fundamentals, m.fail("fundamentals")
}

func (m *fakeMarketData) Analyst(context.Context, string) (*models.AnalystConsensus, error) {
	return m.in.Analyst, m.fail("analyst")
}

func (m *fakeMarketData) Calendar(context.Context, string) (*models.Calendar, error) {
	return m.in.Calendar, m.fail("calendar")
}

func (m *fakeMarketData) News(context.Context, string, int) ([]models.RawNewsItem, error) {
	return m.in.News, m.fail("news")
}

func (m *fakeMarketData) Profile(context.Context, string) (models.Profile, error) {
	return models.Profile(`{}`), nil
}

type nopMetrics struct{}

func (nopMetrics) RecordAnalysis(string) {}
func (nopMetrics) RecordAttempt(string) {}
func (nopMetrics) RecordError(string) {}
func (nopMetrics) RecordTokens(string, int64) {}
func (nopMetrics) RecordFactsBytes(int) {}
func (nopMetrics) RecordLatency(string, float64) {}

func TestBuild(t *testing.T) {
	md := &fakeMarketData{in: fixtureInputs()}
	c := NewCompactor(md, nopMetrics{}, xlogger.Nop(), Config{})

	f, err := c.Build(context.Background(), "ACME", repository.TF1d, 14, DetailLow)
	require.NoError(t, err)
	assert.Equal(t, "ACME", f.Ticker)
	assert.Equal(t, []int{60}, md.history, "history range is at least sixty days")

	_, err = c.Build(context.Background(), "ACME", repository.TF1d, 90, DetailStd)
	require.NoError(t, err)
	assert.Equal(t, []int{60, 90}, md.history)
}

func TestBuild_AnyFailedFetchFailsTheBuild(t *testing.T) {
	for _, what := range []string{"quote", "history", "fundamentals", "analyst", "calendar", "news"} {
		t.Run(what, func(t *testing.T) {
			md := &fakeMarketData{in: fixtureInputs(), failOn: what}
			c := NewCompactor(md, nopMetrics{}, xlogger.Nop(), Config{})

			f, err := c.Build(context.Background(), "ACME", repository.TF1d, 14, DetailLow)
			require.Error(t, err)
			assert.Nil(t, f)
			assert.True(t, errors.Is(err, repository.ErrUpstream))
			assert.Contains(t, err.Error(), what)
		})
	}
}

func TestBudget(t *testing.T) {
	c := NewCompactor(&fakeMarketData{}, nopMetrics{}, xlogger.Nop(), Config{})
	assert.Equal(t, 8192, c.Budget(DetailLow))
	assert.Equal(t, 12288, c.Budget(DetailStd))
}
