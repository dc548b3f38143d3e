package models

// Facts is the compact grounding record handed to the model. Keys are kept
// short on purpose: the serialized record must fit a small byte budget.
// Nil pointers encode as null and mean "unknown".
type Facts struct {
	Ticker       string             `json:"tkr"`
	Quote        QuoteFacts         `json:"qt"`
	Price        PriceStats         `json:"px"`
	Trend        TrendFacts         `json:"trend"`
	Volume       VolumeFacts        `json:"vol"`
	Range        RangeFacts         `json:"range"`
	Levels       Levels             `json:"sr"`
	Fundamentals SkinnyFundamentals `json:"f"`
	Analyst      SkinnyAnalyst      `json:"an"`
	Catalysts    []FactCatalyst     `json:"cat"`
	News         []FactNews         `json:"news"`
	Freshness    Freshness          `json:"freshness"`
}

type QuoteFacts struct {
	P      *float64 `json:"p"`
	Chg    *float64 `json:"chg"`
	ChgPct *float64 `json:"chgPct"`
	Beta   *float64 `json:"beta"`
}

// PriceStats summarises the close series. Std is dropped first when the
// record is over budget, so it is omitted rather than null once removed.
// RSI is never null: it falls back to 50.
type PriceStats struct {
	Mean *float64 `json:"mean"`
	Std  *float64 `json:"std,omitempty"`
	Min  *float64 `json:"min"`
	Max  *float64 `json:"max"`
	ATR  *float64 `json:"atr"`
	R5d  *float64 `json:"r5d"`
	R20d *float64 `json:"r20d"`
	RSI  float64  `json:"rsi"`
}

type TrendFacts struct {
	SMA20    *float64 `json:"sma20"`
	SMA50    *float64 `json:"sma50"`
	SMA200   *float64 `json:"sma200"`
	Above50  *bool    `json:"above50"`
	Above200 *bool    `json:"above200"`
}

type VolumeFacts struct {
	Z     *float64 `json:"z"`
	Spike *bool    `json:"spike"`
}

type RangeFacts struct {
	Hi52      *float64 `json:"hi52"`
	Lo52      *float64 `json:"lo52"`
	PctFromHi *float64 `json:"pctFromHi"`
	PctFromLo *float64 `json:"pctFromLo"`
}

// Levels holds at most two support and two resistance prices.
type Levels struct {
	Sup []float64 `json:"sup"`
	Res []float64 `json:"res"`
}

type SkinnyFundamentals struct {
	PE     *float64 `json:"pe"`
	PS     *float64 `json:"ps"`
	PB     *float64 `json:"pb"`
	FCFM   *float64 `json:"fcfM"`
	DebtEq *float64 `json:"debtEq"`
	ROE    *float64 `json:"roe"`
	RevYoy *float64 `json:"revYoy"`
	EpsYoy *float64 `json:"epsYoy"`
}

type SkinnyAnalyst struct {
	Buy        *float64 `json:"buy"`
	Hold       *float64 `json:"hold"`
	Sell       *float64 `json:"sell"`
	TgtMean    *float64 `json:"tgtMean"`
	ImpliedPct *float64 `json:"impliedPct"`
}

type FactCatalyst struct {
	Type string `json:"type"`
	Date string `json:"date"`
	Note string `json:"note"`
}

// FactNews is a headline cut to eight words plus the numeric tokens it mentions.
type FactNews struct {
	T   string   `json:"t"`
	Num []string `json:"num"`
}

type Freshness struct {
	PriceAt     string `json:"priceAt"`
	MetricsAsOf string `json:"metricsAsOf"`
}

// LastPrice returns the quote price or 0 when unknown.
func (f *Facts) LastPrice() float64 {
	if f == nil || f.Quote.P == nil {
		return 0
	}
	return *f.Quote.P
}

// ATR returns the average true range or 0 when unknown.
func (f *Facts) ATR() float64 {
	if f == nil || f.Price.ATR == nil {
		return 0
	}
	return *f.Price.ATR
}
