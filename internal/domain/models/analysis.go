package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// SchemaVersion is the wire contract of AnalysisResult. Consumers key off it.
const SchemaVersion = "1.1.0"

// AnalysisResult is the strict, validated analysis document.
type AnalysisResult struct {
	SchemaVersion string        `json:"schemaVersion" validate:"eq=1.1.0"`
	Ticker        string        `json:"ticker"`
	Decision      Decision      `json:"decision"`
	EntryExit     EntryExit     `json:"entryExit"`
	Risk          Risk          `json:"risk"`
	SignalsTop    []Signal      `json:"signalsTop" validate:"len=3,dive"`
	SignalsMore   SignalsMore   `json:"signalsMore"`
	Catalysts     []Catalyst    `json:"catalysts" validate:"dive"`
	Scenarios     []Scenario    `json:"scenarios" validate:"min=1,max=3,dive"`
	NextActions   []NextAction  `json:"nextActions" validate:"dive"`
	Rationale     []string      `json:"rationale" validate:"max=5"`
	NewsDigest    []NewsItem    `json:"newsDigest" validate:"dive"`
	DataFreshness DataFreshness `json:"dataFreshness"`
	Legacy        *Legacy       `json:"legacy,omitempty"`
}

type Decision struct {
	RatingLabel string  `json:"ratingLabel"`
	RatingScore float64 `json:"ratingScore" validate:"finite"`
	TimeHorizon string  `json:"timeHorizon"`
	RiskReward  string  `json:"riskReward"`
}

type EntryExit struct {
	LastPrice       float64   `json:"lastPrice" validate:"finite"`
	Entry           float64   `json:"entry" validate:"finite"`
	Stop            float64   `json:"stop" validate:"finite"`
	TakeProfits     []float64 `json:"takeProfits" validate:"len=2,dive,finite"`
	PositionSizePct float64   `json:"positionSizePct" validate:"finite"`
	DeltasFromLast  Deltas    `json:"deltasFromLast"`
}

type Deltas struct {
	EntryPct float64 `json:"entryPct" validate:"finite"`
	StopPct  float64 `json:"stopPct" validate:"finite"`
	TP1Pct   float64 `json:"tp1Pct" validate:"finite"`
	TP2Pct   float64 `json:"tp2Pct" validate:"finite"`
}

type Risk struct {
	RiskScore      float64  `json:"riskScore" validate:"finite"`
	Invalidation   []string `json:"invalidation"`
	VolatilityNote string   `json:"volatilityNote"`
}

type Signal struct {
	Name    string      `json:"name"`
	Value   SignalValue `json:"value"`
	State   string      `json:"state"`
	Comment string      `json:"comment"`
	AsOf    *string     `json:"asOf,omitempty"`
}

// SignalsMore categories are present only when the model supplied them.
type SignalsMore struct {
	Trend      *[]Signal `json:"trend,omitempty" validate:"omitempty,dive"`
	Momentum   *[]Signal `json:"momentum,omitempty" validate:"omitempty,dive"`
	Volatility *[]Signal `json:"volatility,omitempty" validate:"omitempty,dive"`
	Volume     *[]Signal `json:"volume,omitempty" validate:"omitempty,dive"`
	Others     *[]Signal `json:"others,omitempty" validate:"omitempty,dive"`
}

// Catalyst.Direction stays nil when the model did not state one; nil and ""
// mean different things to consumers.
type Catalyst struct {
	Type      string  `json:"type"`
	Date      string  `json:"date"`
	Direction *string `json:"direction,omitempty"`
	Note      string  `json:"note"`
}

type Scenario struct {
	Name     string   `json:"name"`
	Prob     float64  `json:"prob" validate:"finite"`
	Target   float64  `json:"target" validate:"finite"`
	Triggers []string `json:"triggers"`
}

type NextAction struct {
	ID      string `json:"id" validate:"required"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

type DataFreshness struct {
	PriceAt     string      `json:"priceAt"`
	NewsWindow  *NewsWindow `json:"newsWindow,omitempty"`
	MetricsAsOf string      `json:"metricsAsOf"`
}

// NewsWindow keys are optional; absent stays absent.
type NewsWindow struct {
	From *string `json:"from,omitempty"`
	To   *string `json:"to,omitempty"`
}

type Legacy struct {
	SummaryText     string `json:"summaryText"`
	NewsSummaryText string `json:"newsSummaryText"`
}

// SignalValue is either a finite number or a display string.
type SignalValue struct {
	num   float64
	isNum bool
	text  string
}

// TextValue builds a string signal value.
func TextValue(s string) SignalValue { return SignalValue{text: s} }

// NumberValue builds a numeric signal value. Non-finite input degrades to its text form.
func NumberValue(f float64) SignalValue {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return SignalValue{text: strconv.FormatFloat(f, 'g', -1, 64)}
	}
	return SignalValue{num: f, isNum: true}
}

// Number returns the numeric value and whether the value is numeric.
func (v SignalValue) Number() (float64, bool) { return v.num, v.isNum }

// String returns the display form.
func (v SignalValue) String() string {
	if v.isNum {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.text
}

func (v SignalValue) MarshalJSON() ([]byte, error) {
	if v.isNum {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.text)
}

func (v *SignalValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = TextValue("N/A")
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("signal value: %w", err)
		}
		*v = NumberValue(f)
	}
	return nil
}
