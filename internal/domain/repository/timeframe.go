package repository

// Timeframe is a candle interval understood by the market-data service.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF2m  Timeframe = "2m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF30m Timeframe = "30m"
	TF60m Timeframe = "60m"
	TF90m Timeframe = "90m"
	TF1h  Timeframe = "1h"
	TF1d  Timeframe = "1d"
	TF5d  Timeframe = "5d"
	TF1wk Timeframe = "1wk"
	TF1mo Timeframe = "1mo"
	TF3mo Timeframe = "3mo"
)

// IsValidTimeframe returns true if tf is a supported interval.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1m, TF2m, TF5m, TF15m, TF30m, TF60m, TF90m, TF1h, TF1d, TF5d, TF1wk, TF1mo, TF3mo:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default interval.
func DefaultTimeframe() Timeframe { return TF1d }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}
