package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"TrueSignal/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func factsAt(price, atr float64) *models.Facts {
	return &models.Facts{
		Ticker: "ACME",
		Quote:  models.QuoteFacts{P: &price},
		Price:  models.PriceStats{ATR: &atr, RSI: 50},
	}
}

func mustParse(t *testing.T, s string) Value {
	t.Helper()
	v, err := Parse([]byte(s))
	require.NoError(t, err, s)
	return v
}

// resanitize encodes r, parses it back and sanitizes again.
func resanitize(t *testing.T, r *models.AnalysisResult, f *models.Facts, ids *seqIDs) *models.AnalysisResult {
	t.Helper()
	b, err := json.Marshal(r)
	require.NoError(t, err)
	return Sanitize(mustParse(t, string(b)), f, ids)
}

var edgeInputs = []string{
	`null`,
	`[]`,
	`{}`,
	`42`,
	`-0`,
	`"just text"`,
	`true`,
	`[[[[[[1]]]]]]`,
	`{"a":{"b":{"c":{"d":[1,[2,[3,{"e":null}]]]}}}}`,
	`{"schemaVersion":"9.9","decision":"buy","entryExit":[],"risk":7,"signalsTop":"hot","signalsMore":[1],
	  "catalysts":null,"scenarios":{},"nextActions":"call broker","rationale":"one","newsDigest":"headline",
	  "dataFreshness":5,"legacy":null,"ticker":12}`,
	`{"entryExit":{"lastPrice":"101.5 USD","entry":"abc","stop":null,"takeProfits":[1,2,3,4],
	  "positionSizePct":"12.5%","deltasFromLast":{"entryPct":"1e999","stopPct":[3],"tp1Pct":true}}}`,
	`{"entryExit":{"takeProfits":"110"}}`,
	`{"entryExit":{"takeProfits":[]}}`,
	`{"signalsTop":[null,1,"x",true,[],{"name":5,"value":null,"asOf":""},{"value":1e999},{"value":{"k":1}}]}`,
	`{"signalsMore":{"trend":null,"momentum":"up","volume":[{"name":"obv","value":3,"asOf":"2024-01-01"}],"bogus":[1]}}`,
	`{"catalysts":[null,"earnings",3,{"type":"fda","direction":null},{"direction":"up"},{}]}`,
	`{"scenarios":[null,"Bull",{"name":"Bear","prob":"15%","target":"n/a","triggers":"macro"},{},{}]}`,
	`{"scenarios":[]}`,
	`{"nextActions":[null,"watch",{"id":0,"label":"a"},{"id":7,"checked":"yes"},{"id":"keep","checked":0},[]]}`,
	`{"rationale":["a","",null,1,["x"],{"k":"v"},"b","c"]}`,
	`{"dataFreshness":{"priceAt":1700000000,"newsWindow":{"from":null}}}`,
	`{"dataFreshness":{"newsWindow":"last week"}}`,
	`{"legacy":{"summaryText":["multi","part"]}}`,
	`{"newsDigest":[{"title":"t","nums":["1%","2%","3%","4%"]},{"sentiment":"great"},7]}`,
	`{"key":"dup","key":"last wins","ticker":"A","ticker":"B"}`,
	`{"newsDigest":[{"title":"Acme beats","sentiment":"bullish","nums":["1","2","3","4","5"]}]}`,
	`{"newsDigest":[{"title":"","sentiment":"positive"},{"title":"  "},null,{"title":"ok","sentiment":" Mixed "}]}`,
	`{"nextActions":[{"id":"long","label":"` + strings.Repeat("x", 600) + `"}]}`,
}

func assertStructure(t *testing.T, r *models.AnalysisResult) {
	t.Helper()
	assert.Equal(t, "1.1.0", r.SchemaVersion)
	assert.Len(t, r.EntryExit.TakeProfits, 2)
	assert.Len(t, r.SignalsTop, 3)
	assert.GreaterOrEqual(t, len(r.Scenarios), 1)
	assert.LessOrEqual(t, len(r.Scenarios), 3)
	assert.LessOrEqual(t, len(r.Rationale), 5)
	for _, a := range r.NextActions {
		assert.NotEmpty(t, a.ID)
	}
}

func TestSanitize_StructuralGuarantees(t *testing.T) {
	f := factsAt(100, 2)
	for _, in := range edgeInputs {
		t.Run(in, func(t *testing.T) {
			var r *models.AnalysisResult
			require.NotPanics(t, func() { r = Sanitize(mustParse(t, in), f, &seqIDs{}) })
			assertStructure(t, r)
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	for _, f := range []*models.Facts{nil, {}, factsAt(100, 2), factsAt(0.5, 0)} {
		for _, in := range edgeInputs {
			ids := &seqIDs{}
			once := Sanitize(mustParse(t, in), f, ids)
			twice := resanitize(t, once, f, ids)
			assert.Equal(t, once, twice, in)
		}
	}
}

func TestSanitize_OutputAlwaysValidates(t *testing.T) {
	v := NewValidator()
	for _, in := range edgeInputs {
		r := Sanitize(mustParse(t, in), factsAt(100, 2), &seqIDs{})
		assert.Empty(t, v.Validate(context.Background(), r), in)
	}
}

func TestSanitize_NewsDigest(t *testing.T) {
	in := `{"newsDigest":[{"title":"Acme beats","sentiment":"bullish","nums":["1","2","3","4"]},` +
		`{"sentiment":"positive"},{"title":"Acme cuts","sentiment":" Negative "},"Plain headline",null]}`
	r := Sanitize(mustParse(t, in), nil, &seqIDs{})

	require.Len(t, r.NewsDigest, 3)
	assert.Equal(t, "Acme beats", r.NewsDigest[0].Title)
	assert.Equal(t, models.SentimentNeutral, r.NewsDigest[0].Sentiment)
	assert.Equal(t, []string{"1", "2", "3"}, r.NewsDigest[0].Nums)
	assert.Equal(t, models.SentimentNegative, r.NewsDigest[1].Sentiment)
	assert.Equal(t, "Plain headline", r.NewsDigest[2].Title)
}

// randomValue builds arbitrary JSON biased toward the keys the sanitizer reads.
func randomValue(r *rand.Rand, depth int) Value {
	keys := []string{
		"schemaVersion", "ticker", "decision", "ratingLabel", "ratingScore", "entryExit", "lastPrice",
		"entry", "stop", "takeProfits", "deltasFromLast", "entryPct", "risk", "invalidation",
		"signalsTop", "signalsMore", "trend", "volume", "name", "value", "state", "asOf",
		"catalysts", "type", "direction", "scenarios", "prob", "target", "triggers",
		"nextActions", "id", "label", "checked", "rationale", "newsDigest", "title", "sentiment",
		"nums", "dataFreshness", "newsWindow", "from", "to", "legacy", "summaryText", "zzz",
	}
	n := 7
	if depth <= 0 {
		n = 5
	}
	switch r.Intn(n) {
	case 0:
		return Null{}
	case 1:
		return Bool(r.Intn(2) == 0)
	case 2:
		nums := []string{"0", "-1", "3.14", "1e999", "-0", "100", "2.5e-3"}
		return Number(nums[r.Intn(len(nums))])
	case 3:
		strs := []string{"", "x", "12.5%", " 42abc", "N/A", "true", "1.1.0"}
		return String(strs[r.Intn(len(strs))])
	case 4:
		return String(fmt.Sprintf("s%d", r.Intn(100)))
	case 5:
		arr := Array{}
		for i := r.Intn(5); i > 0; i-- {
			arr = append(arr, randomValue(r, depth-1))
		}
		return arr
	default:
		o := NewObject()
		for i := r.Intn(8); i > 0; i-- {
			o.Set(keys[r.Intn(len(keys))], randomValue(r, depth-1))
		}
		return o
	}
}

func TestSanitize_RandomInputs(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	f := factsAt(250, 4)
	for i := 0; i < 500; i++ {
		in := randomValue(rnd, 5)
		ids := &seqIDs{}
		var once *models.AnalysisResult
		require.NotPanics(t, func() { once = Sanitize(in, f, ids) })
		assertStructure(t, once)
		assert.Equal(t, once, resanitize(t, once, f, ids))
	}
}

func TestSanitize_Defaults(t *testing.T) {
	r := Sanitize(mustParse(t, `{}`), factsAt(100, 2), &seqIDs{})

	assert.Equal(t, models.Decision{RatingLabel: "Hold", RatingScore: 50, TimeHorizon: "12 months", RiskReward: "Balanced"}, r.Decision)
	assert.Equal(t, 100.0, r.EntryExit.LastPrice)
	assert.Equal(t, 100.0, r.EntryExit.Entry)
	assert.Equal(t, 98.0, r.EntryExit.Stop, "stop is last minus ATR")
	assert.Equal(t, []float64{100, 100}, r.EntryExit.TakeProfits)
	assert.Equal(t, 10.0, r.EntryExit.PositionSizePct)
	assert.Equal(t, 50.0, r.Risk.RiskScore)
	assert.Equal(t, []string{}, r.Risk.Invalidation)
	for _, s := range r.SignalsTop {
		assert.Equal(t, "-", s.Name)
		assert.Equal(t, "N/A", s.Value.String())
		assert.Equal(t, "neutral", s.State)
	}
	assert.Equal(t, models.SignalsMore{}, r.SignalsMore)
	assert.Empty(t, r.Catalysts)
	assert.Equal(t, DefaultScenarios(factsAt(100, 2)), r.Scenarios)
	assert.Empty(t, r.NextActions)
	assert.Empty(t, r.Rationale)
	assert.Nil(t, r.DataFreshness.NewsWindow)
	assert.Nil(t, r.Legacy)
	assert.Equal(t, "", r.Ticker)
}

func TestSanitize_StopWithoutATR(t *testing.T) {
	r := Sanitize(mustParse(t, `{}`), factsAt(100, 0), &seqIDs{})
	assert.Equal(t, 100.0, r.EntryExit.Stop)

	r = Sanitize(mustParse(t, `{}`), nil, &seqIDs{})
	assert.Equal(t, 0.0, r.EntryExit.LastPrice)
	assert.Equal(t, []float64{0, 0}, r.EntryExit.TakeProfits)
	for _, s := range r.Scenarios {
		assert.Equal(t, 0.0, s.Target)
	}
}

func TestSanitize_EntryExitCoercion(t *testing.T) {
	r := Sanitize(mustParse(t, edgeInputs[10]), factsAt(100, 2), &seqIDs{})
	ee := r.EntryExit
	assert.Equal(t, 101.5, ee.LastPrice)
	assert.Equal(t, 101.5, ee.Entry, "unparseable entry falls back to last price")
	assert.Equal(t, 99.5, ee.Stop)
	assert.Equal(t, []float64{1, 2}, ee.TakeProfits)
	assert.Equal(t, 12.5, ee.PositionSizePct)
	assert.Equal(t, models.Deltas{EntryPct: 0, StopPct: 3, TP1Pct: 0, TP2Pct: 0}, ee.DeltasFromLast)

	r = Sanitize(mustParse(t, `{"entryExit":{"takeProfits":"110"}}`), factsAt(100, 2), &seqIDs{})
	assert.Equal(t, []float64{110, 110}, r.EntryExit.TakeProfits)
}

func TestSanitize_Signals(t *testing.T) {
	r := Sanitize(mustParse(t, edgeInputs[13]), nil, &seqIDs{})
	require.Len(t, r.SignalsTop, 3)
	assert.Equal(t, "-", r.SignalsTop[0].Name)
	assert.Equal(t, "1", r.SignalsTop[1].Name)
	assert.Equal(t, "x", r.SignalsTop[2].Name)

	r = Sanitize(mustParse(t, `{"signalsTop":[{"name":5,"value":null,"asOf":""},{"value":1e999},{"value":{"k":1},"asOf":"2024"}]}`), nil, &seqIDs{})
	assert.Equal(t, "5", r.SignalsTop[0].Name)
	assert.Equal(t, "N/A", r.SignalsTop[0].Value.String())
	assert.Nil(t, r.SignalsTop[0].AsOf)
	_, isNum := r.SignalsTop[1].Value.Number()
	assert.False(t, isNum, "infinite values degrade to text")
	assert.Equal(t, `{"k":1}`, r.SignalsTop[2].Value.String())
	require.NotNil(t, r.SignalsTop[2].AsOf)
	assert.Equal(t, "2024", *r.SignalsTop[2].AsOf)

	r = Sanitize(mustParse(t, `{"signalsTop":[{"name":"rsi","value":"55"},{"name":"sma","value":101.25}]}`), nil, &seqIDs{})
	_, isNum = r.SignalsTop[0].Value.Number()
	assert.False(t, isNum, "numeric strings stay strings")
	n, isNum := r.SignalsTop[1].Value.Number()
	assert.True(t, isNum)
	assert.Equal(t, 101.25, n)
}

func TestSanitize_SignalsMoreOnlyTouchesPresentCategories(t *testing.T) {
	r := Sanitize(mustParse(t, edgeInputs[14]), nil, &seqIDs{})
	sm := r.SignalsMore
	require.NotNil(t, sm.Trend)
	assert.Empty(t, *sm.Trend)
	require.NotNil(t, sm.Momentum)
	assert.Equal(t, "up", (*sm.Momentum)[0].Name)
	require.NotNil(t, sm.Volume)
	assert.Equal(t, "obv", (*sm.Volume)[0].Name)
	assert.Nil(t, sm.Volatility)
	assert.Nil(t, sm.Others)

	b, err := json.Marshal(sm)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "volatility")
	assert.NotContains(t, string(b), "bogus")
}

func TestSanitize_CatalystDirectionStaysAbsent(t *testing.T) {
	r := Sanitize(mustParse(t, edgeInputs[15]), nil, &seqIDs{})
	require.Len(t, r.Catalysts, 6)
	assert.Equal(t, models.Catalyst{Type: "event"}, r.Catalysts[0])
	assert.Equal(t, models.Catalyst{Type: "earnings"}, r.Catalysts[1])
	assert.Equal(t, "3", r.Catalysts[2].Type)

	assert.Equal(t, "fda", r.Catalysts[3].Type)
	require.NotNil(t, r.Catalysts[3].Direction, "explicit null is present")
	assert.Equal(t, "", *r.Catalysts[3].Direction)

	require.NotNil(t, r.Catalysts[4].Direction)
	assert.Equal(t, "up", *r.Catalysts[4].Direction)
	assert.Nil(t, r.Catalysts[5].Direction)

	b, err := json.Marshal(r.Catalysts[5])
	require.NoError(t, err)
	assert.NotContains(t, string(b), "direction")
}

func TestSanitize_Scenarios(t *testing.T) {
	r := Sanitize(mustParse(t, `{"entryExit":{"takeProfits":[120,130]},"scenarios":[null,"Bull",{"name":"Bear","prob":"15%","target":"n/a","triggers":"macro"},{}]}`), factsAt(100, 2), &seqIDs{})
	require.Len(t, r.Scenarios, 3, "clamped, not padded")
	assert.Equal(t, models.Scenario{Name: "Base", Prob: 0.6, Target: 120, Triggers: []string{}}, r.Scenarios[0])
	assert.Equal(t, "Bull", r.Scenarios[1].Name)
	assert.Equal(t, models.Scenario{Name: "Bear", Prob: 15, Target: 120, Triggers: []string{"macro"}}, r.Scenarios[2])

	r = Sanitize(mustParse(t, `{"scenarios":[{"name":"Only"}]}`), factsAt(100, 2), &seqIDs{})
	assert.Len(t, r.Scenarios, 1, "one scenario is valid")

	r = Sanitize(mustParse(t, `{"scenarios":[]}`), factsAt(100, 2), &seqIDs{})
	assert.Equal(t, DefaultScenarios(factsAt(100, 2)), r.Scenarios)
}

func TestSanitize_NextActions(t *testing.T) {
	r := Sanitize(mustParse(t, edgeInputs[18]), nil, &seqIDs{})
	require.Len(t, r.NextActions, 6)
	assert.Equal(t, models.NextAction{ID: "id-1", Label: ""}, r.NextActions[0])
	assert.Equal(t, models.NextAction{ID: "id-2", Label: "watch"}, r.NextActions[1])
	assert.Equal(t, models.NextAction{ID: "id-3", Label: "a"}, r.NextActions[2], "falsy id is replaced")
	assert.Equal(t, models.NextAction{ID: "7", Label: "", Checked: true}, r.NextActions[3])
	assert.Equal(t, models.NextAction{ID: "keep", Label: "", Checked: false}, r.NextActions[4])
	assert.Equal(t, "id-4", r.NextActions[5].ID)
}

func TestSanitize_Rationale(t *testing.T) {
	r := Sanitize(mustParse(t, edgeInputs[19]), nil, &seqIDs{})
	assert.Equal(t, []string{"a", "1", `["x"]`, `{"k":"v"}`, "b"}, r.Rationale)
}

func TestSanitize_Freshness(t *testing.T) {
	r := Sanitize(mustParse(t, edgeInputs[20]), nil, &seqIDs{})
	assert.Equal(t, "1700000000", r.DataFreshness.PriceAt)
	require.NotNil(t, r.DataFreshness.NewsWindow)
	require.NotNil(t, r.DataFreshness.NewsWindow.From)
	assert.Equal(t, "", *r.DataFreshness.NewsWindow.From)
	assert.Nil(t, r.DataFreshness.NewsWindow.To, "absent stays absent")

	r = Sanitize(mustParse(t, edgeInputs[21]), nil, &seqIDs{})
	assert.Equal(t, &models.NewsWindow{}, r.DataFreshness.NewsWindow)
}

func TestSanitize_Legacy(t *testing.T) {
	r := Sanitize(mustParse(t, `{"legacy":null}`), nil, &seqIDs{})
	assert.Equal(t, &models.Legacy{}, r.Legacy)

	r = Sanitize(mustParse(t, edgeInputs[22]), nil, &seqIDs{})
	assert.Equal(t, `["multi","part"]`, r.Legacy.SummaryText)
}

func TestSanitize_SchemaVersionOverwritten(t *testing.T) {
	for _, in := range []string{`{"schemaVersion":"2.0.0"}`, `{"schemaVersion":1.1}`, `{"schemaVersion":null}`} {
		assert.Equal(t, "1.1.0", Sanitize(mustParse(t, in), nil, &seqIDs{}).SchemaVersion)
	}
}

func TestSanitize_DuplicateKeysLastWins(t *testing.T) {
	r := Sanitize(mustParse(t, edgeInputs[24]), nil, &seqIDs{})
	assert.Equal(t, "B", r.Ticker)
}
