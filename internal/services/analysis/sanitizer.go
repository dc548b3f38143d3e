package analysis

import (
	"strconv"
	"strings"

	"TrueSignal/internal/domain/models"
	"TrueSignal/internal/domain/repository"
)

const (
	maxSignalsTop = 3
	maxScenarios  = 3
	maxRationale  = 5
	maxNewsNums   = 3
	takeProfits   = 2

	defaultRating      = "Hold"
	defaultHorizon     = "12 months"
	defaultRiskReward  = "Balanced"
	defaultScore       = 50.0
	defaultPositionPct = 10.0
	defaultScenarioP   = 0.6
	signalPlaceholder  = "-"
	signalNoValue      = "N/A"
	signalNeutral      = "neutral"
)

var signalCategories = []string{"trend", "momentum", "volatility", "volume", "others"}

// Sanitize coerces any parsed JSON value into a structurally valid analysis.
// It never fails, and Sanitize(Sanitize(x)) equals Sanitize(x) once the first
// result is re-encoded. A non-object root is treated as an empty object.
// facts may be nil; ids supplies identifiers for checklist items that lack one.
func Sanitize(v Value, facts *models.Facts, ids repository.IDGenerator) *models.AnalysisResult {
	root := obj(v)
	r := &models.AnalysisResult{
		SchemaVersion: models.SchemaVersion,
		Ticker:        toStr(root.Get("ticker"), ""),
	}

	d := obj(root.Get("decision"))
	r.Decision = models.Decision{
		RatingLabel: toStr(d.Get("ratingLabel"), defaultRating),
		RatingScore: toNum(d.Get("ratingScore"), defaultScore),
		TimeHorizon: toStr(d.Get("timeHorizon"), defaultHorizon),
		RiskReward:  toStr(d.Get("riskReward"), defaultRiskReward),
	}

	r.EntryExit = sanitizeEntryExit(obj(root.Get("entryExit")), facts)

	rk := obj(root.Get("risk"))
	r.Risk = models.Risk{
		RiskScore:      toNum(rk.Get("riskScore"), defaultScore),
		Invalidation:   stringList(rk.Get("invalidation"), false),
		VolatilityNote: toStr(rk.Get("volatilityNote"), ""),
	}

	r.SignalsTop = signalList(root.Get("signalsTop"))
	if len(r.SignalsTop) > maxSignalsTop {
		r.SignalsTop = r.SignalsTop[:maxSignalsTop]
	}
	for len(r.SignalsTop) < maxSignalsTop {
		r.SignalsTop = append(r.SignalsTop, placeholderSignal(signalPlaceholder))
	}

	r.SignalsMore = sanitizeSignalsMore(obj(root.Get("signalsMore")))
	r.Catalysts = sanitizeCatalysts(root.Get("catalysts"))
	r.Scenarios = sanitizeScenarios(root.Get("scenarios"), r.EntryExit.TakeProfits[0], facts)
	r.NextActions = sanitizeNextActions(root.Get("nextActions"), ids)

	r.Rationale = stringList(root.Get("rationale"), true)
	if len(r.Rationale) > maxRationale {
		r.Rationale = r.Rationale[:maxRationale]
	}

	r.NewsDigest = sanitizeNews(root.Get("newsDigest"))
	r.DataFreshness = sanitizeFreshness(obj(root.Get("dataFreshness")))

	if root.Has("legacy") {
		l := obj(root.Get("legacy"))
		r.Legacy = &models.Legacy{
			SummaryText:     toStr(l.Get("summaryText"), ""),
			NewsSummaryText: toStr(l.Get("newsSummaryText"), ""),
		}
	}
	return r
}

func sanitizeEntryExit(ee *Object, facts *models.Facts) models.EntryExit {
	last := toNum(ee.Get("lastPrice"), facts.LastPrice())
	stopDefault := last
	if atr := facts.ATR(); atr != 0 {
		stopDefault = last - atr
	}

	tps := make([]float64, 0, takeProfits)
	for _, x := range ensureArray(ee.Get("takeProfits")) {
		if len(tps) == takeProfits {
			break
		}
		tps = append(tps, toNum(x, last))
	}
	switch len(tps) {
	case 0:
		tps = append(tps, last, last)
	case 1:
		tps = append(tps, tps[0])
	}

	dl := obj(ee.Get("deltasFromLast"))
	return models.EntryExit{
		LastPrice:       last,
		Entry:           toNum(ee.Get("entry"), last),
		Stop:            toNum(ee.Get("stop"), stopDefault),
		TakeProfits:     tps,
		PositionSizePct: toNum(ee.Get("positionSizePct"), defaultPositionPct),
		DeltasFromLast: models.Deltas{
			EntryPct: toNum(dl.Get("entryPct"), 0),
			StopPct:  toNum(dl.Get("stopPct"), 0),
			TP1Pct:   toNum(dl.Get("tp1Pct"), 0),
			TP2Pct:   toNum(dl.Get("tp2Pct"), 0),
		},
	}
}

func placeholderSignal(name string) models.Signal {
	return models.Signal{
		Name:    name,
		Value:   models.TextValue(signalNoValue),
		State:   signalNeutral,
		Comment: "",
	}
}

func normalizeSignal(v Value) models.Signal {
	if isScalar(v) {
		return placeholderSignal(toStr(v, signalPlaceholder))
	}
	o := obj(v)
	s := models.Signal{
		Name:    toStr(o.Get("name"), signalPlaceholder),
		Value:   signalValue(o.Get("value")),
		State:   toStr(o.Get("state"), signalNeutral),
		Comment: toStr(o.Get("comment"), ""),
	}
	if asOf := o.Get("asOf"); truthy(asOf) {
		s.AsOf = strPtr(toStr(asOf, ""))
	}
	return s
}

// signalValue keeps numbers numeric and renders everything else as text.
func signalValue(v Value) models.SignalValue {
	switch t := v.(type) {
	case nil, Null:
		return models.TextValue(signalNoValue)
	case Number:
		f, _ := strconv.ParseFloat(string(t), 64)
		return models.NumberValue(f)
	}
	return models.TextValue(toStr(v, signalNoValue))
}

func signalList(v Value) []models.Signal {
	items := ensureArray(v)
	out := make([]models.Signal, 0, len(items))
	for _, it := range items {
		out = append(out, normalizeSignal(it))
	}
	return out
}

// sanitizeSignalsMore touches only categories present in the input.
func sanitizeSignalsMore(sm *Object) models.SignalsMore {
	var out models.SignalsMore
	slots := map[string]**[]models.Signal{
		"trend":      &out.Trend,
		"momentum":   &out.Momentum,
		"volatility": &out.Volatility,
		"volume":     &out.Volume,
		"others":     &out.Others,
	}
	for _, k := range signalCategories {
		if !sm.Has(k) {
			continue
		}
		list := signalList(sm.Get(k))
		*slots[k] = &list
	}
	return out
}

// sanitizeCatalysts leaves direction unset when the input did not state one.
func sanitizeCatalysts(v Value) []models.Catalyst {
	items := ensureArray(v)
	out := make([]models.Catalyst, 0, len(items))
	for _, it := range items {
		if isScalar(it) {
			out = append(out, models.Catalyst{Type: toStr(it, "event")})
			continue
		}
		c := obj(it)
		cat := models.Catalyst{
			Type: toStr(c.Get("type"), "event"),
			Date: toStr(c.Get("date"), ""),
			Note: toStr(c.Get("note"), ""),
		}
		if c.Has("direction") {
			cat.Direction = strPtr(toStr(c.Get("direction"), ""))
		}
		out = append(out, cat)
	}
	return out
}

func sanitizeScenarios(v Value, defaultTarget float64, facts *models.Facts) []models.Scenario {
	items := ensureArray(v)
	out := make([]models.Scenario, 0, len(items))
	for _, it := range items {
		if isScalar(it) {
			out = append(out, models.Scenario{
				Name:     toStr(it, "Base"),
				Prob:     defaultScenarioP,
				Target:   defaultTarget,
				Triggers: []string{},
			})
			continue
		}
		s := obj(it)
		out = append(out, models.Scenario{
			Name:     toStr(s.Get("name"), "Base"),
			Prob:     toNum(s.Get("prob"), defaultScenarioP),
			Target:   toNum(s.Get("target"), defaultTarget),
			Triggers: stringList(s.Get("triggers"), false),
		})
	}
	if len(out) == 0 {
		return DefaultScenarios(facts)
	}
	if len(out) > maxScenarios {
		out = out[:maxScenarios]
	}
	return out
}

func sanitizeNextActions(v Value, ids repository.IDGenerator) []models.NextAction {
	items := ensureArray(v)
	out := make([]models.NextAction, 0, len(items))
	for _, it := range items {
		if isScalar(it) {
			out = append(out, models.NextAction{ID: ids.NewID(), Label: toStr(it, "")})
			continue
		}
		a := obj(it)
		id := ""
		if raw := a.Get("id"); truthy(raw) {
			id = toStr(raw, "")
		}
		if id == "" {
			id = ids.NewID()
		}
		out = append(out, models.NextAction{
			ID:      id,
			Label:   toStr(a.Get("label"), ""),
			Checked: truthy(a.Get("checked")),
		})
	}
	return out
}

// sanitizeNews drops untitled entries, maps unknown sentiments to neutral
// and keeps at most maxNewsNums numbers per entry.
func sanitizeNews(v Value) []models.NewsItem {
	items := ensureArray(v)
	out := make([]models.NewsItem, 0, len(items))
	for _, it := range items {
		var item models.NewsItem
		if isScalar(it) {
			item = models.NewsItem{Title: toStr(it, ""), Sentiment: models.SentimentNeutral, Nums: []string{}}
		} else {
			n := obj(it)
			item = models.NewsItem{
				Title:     toStr(n.Get("title"), ""),
				Date:      toStr(n.Get("date"), ""),
				Sentiment: sentimentOf(n.Get("sentiment")),
				Source:    toStr(n.Get("source"), ""),
				URL:       toStr(n.Get("url"), ""),
				Nums:      stringList(n.Get("nums"), false),
			}
		}
		if strings.TrimSpace(item.Title) == "" {
			continue
		}
		if len(item.Nums) > maxNewsNums {
			item.Nums = item.Nums[:maxNewsNums]
		}
		out = append(out, item)
	}
	return out
}

func sentimentOf(v Value) string {
	switch s := strings.ToLower(strings.TrimSpace(toStr(v, ""))); s {
	case models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral, models.SentimentMixed:
		return s
	}
	return models.SentimentNeutral
}

func sanitizeFreshness(df *Object) models.DataFreshness {
	out := models.DataFreshness{
		PriceAt:     toStr(df.Get("priceAt"), ""),
		MetricsAsOf: toStr(df.Get("metricsAsOf"), ""),
	}
	if df.Has("newsWindow") {
		nw := obj(df.Get("newsWindow"))
		out.NewsWindow = &models.NewsWindow{}
		if nw.Has("from") {
			out.NewsWindow.From = strPtr(toStr(nw.Get("from"), ""))
		}
		if nw.Has("to") {
			out.NewsWindow.To = strPtr(toStr(nw.Get("to"), ""))
		}
	}
	return out
}

func stringList(v Value, dropEmpty bool) []string {
	items := ensureArray(v)
	out := make([]string, 0, len(items))
	for _, it := range items {
		s := toStr(it, "")
		if dropEmpty && s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
