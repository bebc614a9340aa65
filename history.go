package foresight

import (
	"math"
	"math/rand/v2"
)

// HistoricalSeries is an observed annual-rate series for bootstrap sampling.
type HistoricalSeries struct {
	Name      string
	StartYear int // year of Returns[0]
	Returns   []float64
}

// sample draws one year's rate, uniformly with replacement.
func (h HistoricalSeries) sample(rng *rand.Rand) (float64, bool) {
	if len(h.Returns) == 0 {
		return 0, false
	}
	return h.Returns[rng.IntN(len(h.Returns))], true
}

// sampleYears draws n independent years with replacement.
func (h HistoricalSeries) sampleYears(rng *rand.Rand, n int) ([]float64, bool) {
	if len(h.Returns) == 0 {
		return nil, false
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = h.Returns[rng.IntN(len(h.Returns))]
	}
	return out, true
}

// blockBootstrap draws contiguous blocks of the series to preserve
// autocorrelation. Blocks wrap around the end of the series.
func (h HistoricalSeries) blockBootstrap(rng *rand.Rand, n, blockSize int) ([]float64, bool) {
	if len(h.Returns) == 0 || blockSize <= 0 {
		return nil, false
	}
	out := make([]float64, 0, n)
	for len(out) < n {
		start := rng.IntN(len(h.Returns))
		for i := 0; i < blockSize && len(out) < n; i++ {
			out = append(out, h.Returns[(start+i)%len(h.Returns)])
		}
	}
	return out, true
}

// SeriesStatistics summarizes a historical series.
type SeriesStatistics struct {
	ArithmeticMean float64
	GeometricMean  float64
	StdDev         float64
	Min            float64
	Max            float64
	Years          int
}

// Statistics computes summary statistics of the series. The second return is
// false for an empty series.
func (h HistoricalSeries) Statistics() (SeriesStatistics, bool) {
	if len(h.Returns) == 0 {
		return SeriesStatistics{}, false
	}
	n := float64(len(h.Returns))
	var sum float64
	product := 1.0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range h.Returns {
		sum += r
		product *= 1 + r
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
	}
	mean := sum / n
	var variance float64
	for _, r := range h.Returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= n
	return SeriesStatistics{
		ArithmeticMean: mean,
		GeometricMean:  math.Pow(product, 1/n) - 1,
		StdDev:         math.Sqrt(variance),
		Min:            lo,
		Max:            hi,
		Years:          len(h.Returns),
	}, true
}

// SP500 returns the S&P 500 total-return series, 1927-2023 (97 years).
// Source: Robert Shiller, Yale University.
func SP500() HistoricalSeries {
	return HistoricalSeries{Name: "S&P 500", StartYear: 1927, Returns: sp500AnnualReturns}
}

// USCPI returns the US CPI inflation series (All Urban Consumers),
// 1948-2025 (78 years). Source: FRED (CPIAUCSL).
func USCPI() HistoricalSeries {
	return HistoricalSeries{Name: "US CPI", StartYear: 1948, Returns: usCPIAnnualRates}
}

var sp500AnnualReturns = []float64{
	0.1071, 0.3490, 0.4533, -0.0803, -0.1985, -0.3873, -0.0936, 0.5318, -0.0791, 0.5231,
	0.3292, -0.2964, 0.1507, 0.0431, -0.0719, -0.0786, 0.1817, 0.2250, 0.1815, 0.3760, -0.1054,
	0.0309, 0.1032, 0.1677, 0.3240, 0.1990, 0.1397, 0.0222, 0.4375, 0.2781, 0.0684, -0.0571,
	0.3839, 0.0780, 0.0587, 0.1897, -0.0266, 0.2045, 0.1562, 0.1168, -0.0634, 0.1558, 0.1052,
	-0.0765, 0.0667, 0.1332, 0.1763, -0.1457, -0.2023, 0.3722, 0.1162, -0.0793, 0.1570, 0.1623,
	0.2494, -0.0613, 0.2736, 0.1987, 0.0727, 0.2477, 0.3002, -0.0181, 0.1715, 0.2260, -0.0102,
	0.3080, 0.0737, 0.1147, 0.0084, 0.3421, 0.2645, 0.2720, 0.3087, 0.1532, -0.0498, -0.1304,
	-0.1972, 0.2807, 0.0606, 0.1004, 0.1316, -0.0085, -0.3455, 0.3176, 0.1609, 0.0348, 0.1586,
	0.2504, 0.1332, -0.0327, 0.2052, 0.2449, -0.0461, 0.2756, 0.1710, 0.2212, -0.1180,
}

var usCPIAnnualRates = []float64{
	0.0273, -0.0183, 0.0580, 0.0596, 0.0091, 0.0060, -0.0037, 0.0037, 0.0283, 0.0304, 0.0176,
	0.0152, 0.0136, 0.0067, 0.0123, 0.0165, 0.0120, 0.0192, 0.0336, 0.0328, 0.0471, 0.0590,
	0.0557, 0.0327, 0.0341, 0.0894, 0.1210, 0.0713, 0.0504, 0.0668, 0.0899, 0.1325, 0.1235,
	0.0891, 0.0383, 0.0379, 0.0404, 0.0379, 0.0119, 0.0433, 0.0441, 0.0464, 0.0625, 0.0298,
	0.0297, 0.0281, 0.0260, 0.0253, 0.0338, 0.0170, 0.0161, 0.0268, 0.0344, 0.0160, 0.0248,
	0.0204, 0.0334, 0.0334, 0.0252, 0.0411, -0.0002, 0.0281, 0.0144, 0.0306, 0.0176, 0.0151,
	0.0065, 0.0064, 0.0205, 0.0213, 0.0200, 0.0232, 0.0132, 0.0716, 0.0641, 0.0332, 0.0287,
	0.0265,
}
