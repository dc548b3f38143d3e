// Package facts builds the compact market snapshot that grounds a generated analysis.
package facts

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"TrueSignal/internal/domain/models"
	"TrueSignal/internal/domain/repository"
	xlogger "TrueSignal/pkg/logger"
	"TrueSignal/pkg/util"

	"golang.org/x/sync/errgroup"
)

const (
	DetailLow = "low"
	DetailStd = "std"

	headlineWords = 8
	factNewsItems = 3
)

var headlineNums = regexp.MustCompile(`[\d,.]+%?`)

// Config bounds the compactor.
type Config struct {
	BudgetLowBytes int
	BudgetStdBytes int
	MinHistoryDays int
	NewsArticles   int
}

// Inputs are the raw upstream payloads for one ticker.
type Inputs struct {
	Quote        *models.Quote
	History      *models.History
	Fundamentals *models.Fundamentals
	Analyst      *models.AnalystConsensus
	Calendar     *models.Calendar
	News         []models.RawNewsItem
}

// Compactor fetches upstream data and reduces it to a budgeted Facts record.
type Compactor struct {
	md      repository.MarketData
	metrics repository.Metrics
	logger  *xlogger.Logger
	cfg     Config
	now     func() time.Time
}

func NewCompactor(md repository.MarketData, metrics repository.Metrics, logger *xlogger.Logger, cfg Config) *Compactor {
	if cfg.BudgetLowBytes <= 0 {
		cfg.BudgetLowBytes = 8 * 1024
	}
	if cfg.BudgetStdBytes <= 0 {
		cfg.BudgetStdBytes = 12 * 1024
	}
	if cfg.MinHistoryDays <= 0 {
		cfg.MinHistoryDays = 60
	}
	if cfg.NewsArticles <= 0 {
		cfg.NewsArticles = 12
	}
	return &Compactor{md: md, metrics: metrics, logger: logger, cfg: cfg, now: time.Now}
}

// Budget returns the byte limit for a detail level.
func (c *Compactor) Budget(detail string) int {
	if detail == DetailLow {
		return c.cfg.BudgetLowBytes
	}
	return c.cfg.BudgetStdBytes
}

// Build fetches all six datasets concurrently. Any failed fetch fails the build.
func (c *Compactor) Build(ctx context.Context, ticker string, tf repository.Timeframe, newsDays int, detail string) (*models.Facts, error) {
	start := time.Now()
	rangeDays := newsDays
	if rangeDays < c.cfg.MinHistoryDays {
		rangeDays = c.cfg.MinHistoryDays
	}

	var in Inputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.Quote, err = c.md.Quote(gctx, ticker)
		return wrap("quote", err)
	})
	g.Go(func() (err error) {
		in.History, err = c.md.History(gctx, ticker, tf, rangeDays)
		return wrap("history", err)
	})
	g.Go(func() (err error) {
		in.Fundamentals, err = c.md.Fundamentals(gctx, ticker)
		return wrap("fundamentals", err)
	})
	g.Go(func() (err error) {
		in.Analyst, err = c.md.Analyst(gctx, ticker)
		return wrap("analyst", err)
	})
	g.Go(func() (err error) {
		in.Calendar, err = c.md.Calendar(gctx, ticker)
		return wrap("calendar", err)
	})
	g.Go(func() (err error) {
		in.News, err = c.md.News(gctx, ticker, c.cfg.NewsArticles)
		return wrap("news", err)
	})
	if err := g.Wait(); err != nil {
		c.metrics.RecordError("facts_fetch")
		return nil, fmt.Errorf("build facts for %s: %w", ticker, err)
	}

	f := Compact(ticker, in, c.now())
	limit := c.Budget(detail)
	steps, size := EnforceBudget(f, limit)
	if len(steps) > 0 {
		c.logger.Debug("facts.budget_trim",
			xlogger.String("ticker", ticker),
			xlogger.Strings("steps", steps),
			xlogger.Int("bytes", size),
			xlogger.Int("limit", limit),
		)
	}
	c.metrics.RecordFactsBytes(size)
	c.metrics.RecordLatency("facts_build", time.Since(start).Seconds())
	c.logger.Debug("facts.ok", xlogger.String("ticker", ticker), xlogger.Int("bytes", size))
	return f, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}

// Compact reduces raw inputs to a Facts record. It does not enforce the budget.
func Compact(ticker string, in Inputs, now time.Time) *models.Facts {
	series := in.History.Series()
	closes := present(series.Close)
	highs := present(series.High)
	lows := present(series.Low)
	volumes := present(series.Volume)

	var last *float64
	if len(closes) > 0 {
		last = ptr(closes[len(closes)-1])
	}

	f := &models.Facts{
		Ticker:       ticker,
		Quote:        quoteFacts(last, in.Quote),
		Price:        priceStats(closes, highs, lows),
		Trend:        trendFacts(last, closes),
		Volume:       volumeFacts(volumes),
		Range:        rangeFacts(last, closes, highs, lows),
		Levels:       supportResistance(highs, lows),
		Fundamentals: skinnyFundamentals(in.Fundamentals),
		Analyst:      skinnyAnalyst(last, in.Analyst),
		Catalysts:    catalysts(in.Calendar),
		News:         compactNews(in.News),
		Freshness: models.Freshness{
			PriceAt:     util.FormatISO(now),
			MetricsAsOf: util.FormatISO(now),
		},
	}
	if in.Quote != nil && in.Quote.RegularMarketTime.Valid && in.Quote.RegularMarketTime.Value != 0 {
		ms := int64(in.Quote.RegularMarketTime.Value * 1000)
		f.Freshness.PriceAt = util.FormatISO(time.UnixMilli(ms))
	}
	return f
}

func present(xs []models.OptFloat) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if x.Valid {
			out = append(out, x.Value)
		}
	}
	return out
}

func quoteFacts(last *float64, q *models.Quote) models.QuoteFacts {
	qf := models.QuoteFacts{P: roundPtr(last, 2)}
	if q == nil {
		return qf
	}
	qf.Chg = roundPtr(q.RegularMarketChange.Ptr(), 2)
	qf.ChgPct = roundPtr(q.RegularMarketChangePercent.Ptr(), 2)
	qf.Beta = roundPtr(q.Beta.Ptr(), 2)
	return qf
}

func priceStats(closes, highs, lows []float64) models.PriceStats {
	px := models.PriceStats{
		Mean: roundPtr(Mean(closes), 2),
		Std:  roundPtr(StdDev(closes), 2),
		ATR:  ATR(highs, lows, closes),
		RSI:  RSI(closes),
	}
	n := len(closes)
	if n > 0 {
		px.Min = ptr(Round(minOf(closes), 2))
		px.Max = ptr(Round(maxOf(closes), 2))
	}
	if n >= 6 {
		px.R5d = roundPtr(PctChange(closes[n-1], closes[n-6]), 2)
	}
	if n >= 21 {
		px.R20d = roundPtr(PctChange(closes[n-1], closes[n-21]), 2)
	}
	return px
}

func trendFacts(last *float64, closes []float64) models.TrendFacts {
	sma20, sma50, sma200 := SMA(closes, 20), SMA(closes, 50), SMA(closes, 200)
	t := models.TrendFacts{
		SMA20:  roundPtr(sma20, 2),
		SMA50:  roundPtr(sma50, 2),
		SMA200: roundPtr(sma200, 2),
	}
	if last != nil && sma50 != nil {
		t.Above50 = ptr(*last > *sma50)
	}
	if last != nil && sma200 != nil {
		t.Above200 = ptr(*last > *sma200)
	}
	return t
}

func volumeFacts(volumes []float64) models.VolumeFacts {
	z := VolumeZ(volumes)
	v := models.VolumeFacts{Z: z}
	if z != nil {
		v.Spike = ptr(*z > spikeZ)
	}
	return v
}

func rangeFacts(last *float64, closes, highs, lows []float64) models.RangeFacts {
	w := len(closes)
	if w > window52w {
		w = window52w
	}
	if w == 0 {
		return models.RangeFacts{}
	}
	hi := maxOf(tail(closes, w), tail(highs, w))
	lo := minOf(tail(closes, w), tail(lows, w))
	r := models.RangeFacts{Hi52: ptr(Round(hi, 2)), Lo52: ptr(Round(lo, 2))}
	if last != nil && hi != 0 {
		r.PctFromHi = ptr(Round((*last-hi)/hi*100, 2))
	}
	if last != nil && lo != 0 {
		r.PctFromLo = ptr(Round((*last-lo)/lo*100, 2))
	}
	return r
}

func supportResistance(highs, lows []float64) models.Levels {
	lv := models.Levels{Sup: []float64{}, Res: []float64{}}
	if len(lows) > 0 {
		lv.Sup = levels(ptr(minOf(tail(lows, supportLong))), Mean(tail(lows, supportMean)))
	}
	if len(highs) > 0 {
		lv.Res = levels(ptr(maxOf(tail(highs, supportLong))), Mean(tail(highs, supportMean)))
	}
	return lv
}

func skinnyFundamentals(f *models.Fundamentals) models.SkinnyFundamentals {
	if f == nil {
		return models.SkinnyFundamentals{}
	}
	return models.SkinnyFundamentals{
		PE:     f.PERatio.Ptr(),
		PS:     f.PSRatio.Ptr(),
		PB:     f.PBRatio.Ptr(),
		FCFM:   roundPtr(f.FreeCashFlowMargin.Ptr(), 2),
		DebtEq: f.DebtToEquity.Ptr(),
		ROE:    f.ROE.Ptr(),
		RevYoy: f.RevenueGrowthYoy.Ptr(),
		EpsYoy: f.EpsGrowthYoy.Ptr(),
	}
}

func skinnyAnalyst(last *float64, a *models.AnalystConsensus) models.SkinnyAnalyst {
	if a == nil {
		return models.SkinnyAnalyst{}
	}
	an := models.SkinnyAnalyst{
		Buy:     a.Buy.Ptr(),
		Hold:    a.Hold.Ptr(),
		Sell:    a.Sell.Ptr(),
		TgtMean: a.TargetMean.Ptr(),
	}
	if last != nil && *last != 0 && a.TargetMean.Valid && a.TargetMean.Value != 0 {
		an.ImpliedPct = ptr(Round((a.TargetMean.Value-*last) / *last * 100, 2))
	}
	return an
}

func catalysts(cal *models.Calendar) []models.FactCatalyst {
	out := []models.FactCatalyst{}
	if cal == nil {
		return out
	}
	if d := string(cal.Earnings.EarningsDate); d != "" {
		out = append(out, models.FactCatalyst{Type: "earnings", Date: d})
	}
	if d := string(cal.Dividends.ExDividendDate); d != "" {
		out = append(out, models.FactCatalyst{Type: "dividend", Date: d})
	}
	return out
}

// compactNews keeps the first three headlines cut to eight words, plus the
// numeric tokens of the full title with thousands separators removed.
func compactNews(items []models.RawNewsItem) []models.FactNews {
	if len(items) > factNewsItems {
		items = items[:factNewsItems]
	}
	out := make([]models.FactNews, 0, len(items))
	for _, it := range items {
		title := strings.TrimSpace(string(it.Title))
		words := strings.Fields(title)
		short := strings.Join(words[:min(len(words), headlineWords)], " ")
		if len(words) > headlineWords {
			short += "…"
		}
		nums := headlineNums.FindAllString(title, 3)
		for i := range nums {
			nums[i] = strings.ReplaceAll(nums[i], ",", "")
		}
		if nums == nil {
			nums = []string{}
		}
		out = append(out, models.FactNews{T: short, Num: nums})
	}
	return out
}
