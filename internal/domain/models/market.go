package models

import "encoding/json"

// SymbolMatch is one search hit from the market-data service.
type SymbolMatch struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// SearchResult wraps the search endpoint payload.
type SearchResult struct {
	Results []SymbolMatch `json:"results"`
}

// Quote is the subset of a provider quote the compactor reads. Raw keeps the
// full provider payload for pass-through to clients.
type Quote struct {
	RegularMarketPrice         OptFloat        `json:"regularMarketPrice"`
	RegularMarketChange        OptFloat        `json:"regularMarketChange"`
	RegularMarketChangePercent OptFloat        `json:"regularMarketChangePercent"`
	RegularMarketTime          OptFloat        `json:"regularMarketTime"`
	Beta                       OptFloat        `json:"beta"`
	Raw                        json.RawMessage `json:"-"`
}

// History is the chart payload; only the first quote series is used.
type History struct {
	Indicators struct {
		Quote []Candles `json:"quote"`
	} `json:"indicators"`
}

// Candles holds parallel OHLCV series. Entries may be null.
type Candles struct {
	Open   []OptFloat `json:"open"`
	High   []OptFloat `json:"high"`
	Low    []OptFloat `json:"low"`
	Close  []OptFloat `json:"close"`
	Volume []OptFloat `json:"volume"`
}

// Series returns the first quote series or an empty one.
func (h *History) Series() Candles {
	if h == nil || len(h.Indicators.Quote) == 0 {
		return Candles{}
	}
	return h.Indicators.Quote[0]
}

type Fundamentals struct {
	PERatio            OptFloat        `json:"peRatio"`
	PSRatio            OptFloat        `json:"psRatio"`
	PBRatio            OptFloat        `json:"pbRatio"`
	FreeCashFlowMargin OptFloat        `json:"freeCashFlowMargin"`
	DebtToEquity       OptFloat        `json:"debtToEquity"`
	ROE                OptFloat        `json:"roe"`
	RevenueGrowthYoy   OptFloat        `json:"revenueGrowthYoy"`
	EpsGrowthYoy       OptFloat        `json:"epsGrowthYoy"`
	Raw                json.RawMessage `json:"-"`
}

type AnalystConsensus struct {
	Buy        OptFloat        `json:"buy"`
	Hold       OptFloat        `json:"hold"`
	Sell       OptFloat        `json:"sell"`
	TargetMean OptFloat        `json:"targetMean"`
	Raw        json.RawMessage `json:"-"`
}

// Calendar lists upcoming corporate events.
type Calendar struct {
	Earnings struct {
		EarningsDate FlexString `json:"earningsDate"`
	} `json:"earnings"`
	Dividends struct {
		ExDividendDate FlexString `json:"exDividendDate"`
	} `json:"dividends"`
}

// Profile is passed through to clients untouched.
type Profile = json.RawMessage
