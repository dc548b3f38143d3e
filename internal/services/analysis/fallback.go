package analysis

import (
	"math"
	"strconv"
	"time"

	"TrueSignal/internal/domain/models"
	"TrueSignal/internal/services/facts"
	"TrueSignal/internal/services/news"
	"TrueSignal/pkg/util"
)

// Scenario probabilities; they sum to one.
const (
	probBase = 0.6
	probBull = 0.25
	probBear = 0.15
)

// DefaultScenarios derives Base, Bull and Bear targets from the last price and
// ATR. Every target is zero when the price is unknown.
func DefaultScenarios(f *models.Facts) []models.Scenario {
	last, atr := f.LastPrice(), f.ATR()
	var base, bull, bear float64
	if last != 0 {
		base = facts.Round(last+math.Max(atr, last*0.01), 2)
		bull = facts.Round(last+math.Max(2*atr, last*0.025), 2)
		bear = facts.Round(last-math.Max(atr, last*0.01), 2)
	}
	return scenarios(base, bull, bear)
}

func scenarios(base, bull, bear float64) []models.Scenario {
	return []models.Scenario{
		{Name: "Base", Prob: probBase, Target: base, Triggers: []string{"Maintain guidance"}},
		{Name: "Bull", Prob: probBull, Target: bull, Triggers: []string{"Beat & raise"}},
		{Name: "Bear", Prob: probBear, Target: bear, Triggers: []string{"Miss or macro shock"}},
	}
}

// Fallback builds a conservative, schema-valid analysis from facts alone.
// now stamps catalysts and freshness fields the facts do not carry.
func Fallback(f *models.Facts, now time.Time) *models.AnalysisResult {
	if f == nil {
		f = &models.Facts{}
	}
	nowISO := util.FormatISO(now)

	var last, tp1, tp2, stop float64
	if f.Quote.P != nil {
		last = *f.Quote.P
		tp1 = facts.Round(last*1.05, 2)
		tp2 = facts.Round(last*1.10, 2)
		stop = facts.Round(last*0.95, 2)
	}

	cats := make([]models.Catalyst, 0, len(f.Catalysts))
	for _, c := range f.Catalysts {
		cats = append(cats, models.Catalyst{
			Type:      orDefault(c.Type, "event"),
			Date:      orDefault(c.Date, nowISO),
			Direction: strPtr("neutral"),
			Note:      c.Note,
		})
	}

	headlines := make([]models.RawNewsItem, 0, len(f.News))
	for _, n := range f.News {
		headlines = append(headlines, models.RawNewsItem{
			Title: models.FlexString(n.T),
			Date:  models.FlexString(f.Freshness.PriceAt),
		})
	}

	trend := "Mixed"
	if f.Trend.Above200 != nil && *f.Trend.Above200 {
		trend = "Above 200SMA"
	}

	return &models.AnalysisResult{
		SchemaVersion: models.SchemaVersion,
		Ticker:        f.Ticker,
		Decision: models.Decision{
			RatingLabel: defaultRating,
			RatingScore: defaultScore,
			TimeHorizon: defaultHorizon,
			RiskReward:  defaultRiskReward,
		},
		EntryExit: models.EntryExit{
			LastPrice:       last,
			Entry:           last,
			Stop:            stop,
			TakeProfits:     []float64{tp1, tp2},
			PositionSizePct: defaultPositionPct,
		},
		Risk: models.Risk{RiskScore: defaultScore, Invalidation: []string{}},
		SignalsTop: []models.Signal{
			{Name: "Trend", Value: models.TextValue(trend), State: signalNeutral},
			{Name: "Momentum", Value: models.TextValue(numText(f.Price.R5d)), State: signalNeutral},
			{Name: "Volume", Value: models.TextValue(numText(f.Volume.Z)), State: signalNeutral},
		},
		Catalysts:   cats,
		Scenarios:   scenarios(tp1, tp2, stop),
		NextActions: []models.NextAction{},
		Rationale:   []string{},
		NewsDigest:  news.Summarize(headlines),
		DataFreshness: models.DataFreshness{
			PriceAt:     orDefault(f.Freshness.PriceAt, nowISO),
			NewsWindow:  &models.NewsWindow{},
			MetricsAsOf: orDefault(f.Freshness.MetricsAsOf, nowISO),
		},
		Legacy: &models.Legacy{
			SummaryText:     "Fallback summary.",
			NewsSummaryText: "Fallback news.",
		},
	}
}

func numText(v *float64) string {
	if v == nil {
		return signalNoValue
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
