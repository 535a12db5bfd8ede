// Package indicator provides period-based technical indicator computations
// over a full price series. Values inside the warm-up window are NaN so that
// strategies naturally treat them as "no signal" via failed comparisons.
package indicator

import "math"

// SMA returns the simple moving average with the given window. The first
// window-1 values are NaN.
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || window > len(values) {
		return out
	}

	var sum float64

	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}

		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}

	return out
}

// EMA returns the exponential moving average with alpha = 2/(span+1), seeded
// with the first value.
func EMA(values []float64, span int) []float64 {
	out := nanSlice(len(values))
	if span <= 0 || len(values) == 0 {
		return out
	}

	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]

	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}

	return out
}

// RollingStd returns the rolling sample standard deviation with the given
// window. The first window-1 values are NaN.
func RollingStd(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 1 || window > len(values) {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		win := values[i-window+1 : i+1]

		var sum float64
		for _, v := range win {
			sum += v
		}

		mean := sum / float64(window)

		var sq float64
		for _, v := range win {
			sq += (v - mean) * (v - mean)
		}

		out[i] = math.Sqrt(sq / float64(window-1))
	}

	return out
}

// RSI returns the relative strength index using rolling mean gain/loss over
// the given period. The first period values are NaN.
func RSI(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))

	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	for i := period; i < len(values); i++ {
		var gainSum, lossSum float64
		for j := i - period + 1; j <= i; j++ {
			gainSum += gains[j]
			lossSum += losses[j]
		}

		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)

		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}

	return out
}

// MACD returns the MACD line, signal line and histogram for the given fast,
// slow and signal spans.
func MACD(values []float64, fast, slow, signal int) (macd, signalLine, hist []float64) {
	emaFast := EMA(values, fast)
	emaSlow := EMA(values, slow)

	macd = make([]float64, len(values))
	for i := range values {
		macd[i] = emaFast[i] - emaSlow[i]
	}

	signalLine = EMA(macd, signal)

	hist = make([]float64, len(values))
	for i := range values {
		hist[i] = macd[i] - signalLine[i]
	}

	return macd, signalLine, hist
}

// Momentum returns the fractional change over the lookback period. The first
// lookback values are NaN.
func Momentum(values []float64, lookback int) []float64 {
	out := nanSlice(len(values))
	if lookback <= 0 || lookback >= len(values) {
		return out
	}

	for i := lookback; i < len(values); i++ {
		if values[i-lookback] == 0 {
			continue
		}

		out[i] = values[i]/values[i-lookback] - 1
	}

	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}
