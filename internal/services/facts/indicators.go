package facts

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
)

const (
	atrPeriod   = 20
	volPeriod   = 20
	rsiPeriod   = 14
	window52w   = 252
	supportLong = 120
	supportMean = 60
	spikeZ      = 2.0
	neutralRSI  = 50.0
)

// Round rounds half away from zero to the given decimal places. Non-finite
// input is returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func roundPtr(v *float64, places int32) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v, places)
	return &r
}

func ptr[T any](v T) *T { return &v }

func tail(xs []float64, n int) []float64 {
	if n >= len(xs) {
		return xs
	}
	return xs[len(xs)-n:]
}

// Mean returns nil for an empty series.
func Mean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return ptr(sum / float64(len(xs)))
}

// StdDev is the population standard deviation, nil for an empty series.
func StdDev(xs []float64) *float64 {
	m := Mean(xs)
	if m == nil {
		return nil
	}
	var ss float64
	for _, x := range xs {
		d := x - *m
		ss += d * d
	}
	return ptr(math.Sqrt(ss / float64(len(xs))))
}

// SMA returns the simple moving average of the last period samples, or nil
// when fewer than period samples exist.
func SMA(xs []float64, period int) *float64 {
	if period <= 0 || len(xs) < period {
		return nil
	}
	out := talib.Sma(xs, period)
	return ptr(out[len(out)-1])
}

// ATR averages the true range over the last 20 bars. The first bar uses its
// own high as the previous close.
func ATR(highs, lows, closes []float64) *float64 {
	if len(highs) == 0 || len(lows) == 0 || len(closes) == 0 {
		return nil
	}
	n := len(highs)
	if len(lows) < n {
		n = len(lows)
	}
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		h, l := highs[i], lows[i]
		prev := h
		if i > 0 && i-1 < len(closes) {
			prev = closes[i-1]
		}
		tr[i] = math.Max(h-l, math.Max(math.Abs(h-prev), math.Abs(l-prev)))
	}
	return roundPtr(Mean(tail(tr, atrPeriod)), 2)
}

// RSI compares summed gains and losses over up to the last 14 close-to-close
// moves. It is 50 when there is no move to measure.
func RSI(closes []float64) float64 {
	start := len(closes) - rsiPeriod
	if start < 1 {
		start = 1
	}
	var gains, losses float64
	for i := start; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	if gains+losses == 0 {
		return neutralRSI
	}
	return Round(100*gains/(gains+losses), 1)
}

// VolumeZ is the z-score of the latest volume against the last 20.
func VolumeZ(volumes []float64) *float64 {
	if len(volumes) == 0 {
		return nil
	}
	recent := tail(volumes, volPeriod)
	s := StdDev(recent)
	avg := Mean(recent)
	if s == nil || *s == 0 || avg == nil || *avg == 0 {
		return nil
	}
	cur := volumes[len(volumes)-1]
	return ptr(Round((cur-*avg) / *s, 2))
}

// PctChange returns (num-den)/den*100, nil when den is zero.
func PctChange(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	return ptr((num - den) / den * 100)
}

func minOf(xs ...[]float64) float64 {
	m := math.Inf(1)
	for _, s := range xs {
		for _, x := range s {
			m = math.Min(m, x)
		}
	}
	return m
}

func maxOf(xs ...[]float64) float64 {
	m := math.Inf(-1)
	for _, s := range xs {
		for _, x := range s {
			m = math.Max(m, x)
		}
	}
	return m
}

// levels keeps up to two distinct non-zero rounded prices in order.
func levels(candidates ...*float64) []float64 {
	out := make([]float64, 0, 2)
	for _, c := range candidates {
		if c == nil {
			continue
		}
		v := Round(*c, 2)
		if v == 0 || math.IsNaN(v) {
			continue
		}
		dup := false
		for _, o := range out {
			if o == v {
				dup = true
				break
			}
		}
		if !dup && len(out) < 2 {
			out = append(out, v)
		}
	}
	return out
}
