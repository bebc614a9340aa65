package foresight

import (
	"math"
	"math/rand/v2"
	"sort"
)

// rate is one simulated year of a profile's table.
type rate struct {
	incremental float64 // this year's annual rate
	cumulative  float64 // growth factor accumulated before this year; index 0 holds 1.0
}

// AssetPricing binds an asset's starting price to the return profile that
// moves it.
type AssetPricing struct {
	Price   float64
	Profile ProfileID
}

// Market is the sampled economic scenario of one run: per-profile annual
// rate tables, the inflation table, and the pricing of every known asset.
// It is immutable once built, so every lookup during a run is a pure read.
type Market struct {
	inflation []rate
	returns   map[ProfileID][]rate
	assets    map[AssetID]AssetPricing
}

// pcgStream is the second seed word for the PCG generators; runs are keyed
// entirely by the first word.
const pcgStream = 0x9E3779B97F4A7C15

// NewMarket samples one scenario. Inflation is drawn first, then each return
// profile in sorted ID order, so identical (profiles, seed) inputs always
// produce identical tables regardless of map iteration order.
func NewMarket(seed uint64, years int, inflation ReturnProfile, profiles map[ProfileID]ReturnProfile, assets map[AssetID]AssetPricing) (*Market, error) {
	rng := rand.New(rand.NewPCG(seed, pcgStream))

	inflationValues, err := sampleReturnSequence(inflation, rng, years)
	if err != nil {
		return nil, err
	}

	ids := make([]ProfileID, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	returns := make(map[ProfileID][]float64, len(profiles))
	for _, id := range ids {
		values, err := sampleReturnSequence(profiles[id], rng, years)
		if err != nil {
			return nil, err
		}
		returns[id] = values
	}

	return newMarketFromRates(inflationValues, returns, assets), nil
}

// newMarketFromRates builds a market from explicit annual rates, bypassing
// sampling.
func newMarketFromRates(inflation []float64, returns map[ProfileID][]float64, assets map[AssetID]AssetPricing) *Market {
	m := &Market{
		inflation: cumulate(inflation),
		returns:   make(map[ProfileID][]rate, len(returns)),
		assets:    make(map[AssetID]AssetPricing, len(assets)),
	}
	for id, values := range returns {
		m.returns[id] = cumulate(values)
	}
	for id, pricing := range assets {
		m.assets[id] = pricing
	}
	return m
}

// cumulate turns annual rates into a rate table with running growth factors.
func cumulate(values []float64) []rate {
	rates := make([]rate, 0, len(values))
	cumulative := 1.0
	for _, r := range values {
		rates = append(rates, rate{incremental: r, cumulative: cumulative})
		cumulative *= 1 + r
	}
	return rates
}

// NDayRate converts a yearly rate to an n-day rate with compound interest.
func NDayRate(yearlyRate, nDays float64) float64 {
	return math.Pow(1+yearlyRate, nDays/365.0) - 1
}

// applyRates compounds an initial value from startDate to evalDate along a
// rate table. The second return is false when the date falls before the
// start or beyond the sampled window.
func applyRates(rates []rate, startDate, evalDate Date, initialValue float64) (float64, bool) {
	if evalDate.Before(startDate) {
		return 0, false
	}
	if evalDate == startDate {
		return initialValue, true
	}

	// Count complete years by comparing (month, day) against the start's
	// anniversary instead of walking year by year.
	yearDiff := evalDate.Year() - startDate.Year()
	completeYears := 0
	if yearDiff > 0 {
		sm, sd := startDate.Month(), startDate.Day()
		em, ed := evalDate.Month(), evalDate.Day()
		if em > sm || (em == sm && ed >= sd) {
			completeYears = yearDiff
		} else {
			completeYears = yearDiff - 1
		}
	}

	var value float64
	switch {
	case completeYears == 0:
		value = initialValue
	case completeYears < len(rates):
		value = initialValue * rates[completeYears].cumulative
	case completeYears == len(rates):
		// The table's final cumulative does not include the last year;
		// extend it by the last incremental rate for the boundary itself.
		last := len(rates) - 1
		value = initialValue * rates[last].cumulative * (1 + rates[last].incremental)
	default:
		return 0, false
	}

	if completeYears >= len(rates) {
		// No rate left for a partial year beyond the boundary.
		return value, completeYears == len(rates)
	}

	anniversary := startDate.AddYears(completeYears)
	if remaining := DaysBetween(anniversary, evalDate); remaining > 0 {
		value *= 1 + NDayRate(rates[completeYears].incremental, float64(remaining))
	}
	return value, true
}

// AssetValue prices an asset on evalDate given a simulation started at
// startDate. Unknown assets, unknown profiles and dates outside the sampled
// window all report false.
func (m *Market) AssetValue(startDate, evalDate Date, id AssetID) (float64, bool) {
	pricing, ok := m.assets[id]
	if !ok {
		return 0, false
	}
	rates, ok := m.returns[pricing.Profile]
	if !ok {
		return 0, false
	}
	return applyRates(rates, startDate, evalDate, pricing.Price)
}

// ReturnOnValue compounds an arbitrary amount along one profile's rates.
func (m *Market) ReturnOnValue(startDate, evalDate Date, initialValue float64, profile ProfileID) (float64, bool) {
	rates, ok := m.returns[profile]
	if !ok {
		return 0, false
	}
	return applyRates(rates, startDate, evalDate, initialValue)
}

// PeriodMultiplier is the factor cash grows by over a stretch of days inside
// one simulated year: 1 + NDayRate(rate[yearIndex], days). Non-positive day
// counts multiply by exactly 1.
func (m *Market) PeriodMultiplier(yearIndex, days int, profile ProfileID) (float64, error) {
	if days <= 0 {
		return 1, nil
	}
	rates, ok := m.returns[profile]
	if !ok {
		return 0, ErrProfileNotFound
	}
	if yearIndex >= len(rates) {
		return 0, ErrRateDataExhausted
	}
	return 1 + NDayRate(rates[yearIndex].incremental, float64(days)), nil
}

// InflationAdjustedValue is the nominal amount on evalDate with the same
// purchasing power the cash amount had at startDate.
func (m *Market) InflationAdjustedValue(startDate, evalDate Date, cashAmount float64) (float64, bool) {
	return applyRates(m.inflation, startDate, evalDate, cashAmount)
}

// CumulativeInflationFactors returns one factor per simulated year, leading
// with 1.0 for year zero. Dividing a nominal value by the factor of its year
// converts it to start-of-simulation dollars.
func (m *Market) CumulativeInflationFactors() []float64 {
	factors := make([]float64, 0, len(m.inflation)+1)
	factors = append(factors, 1.0)
	cumulative := 1.0
	for _, r := range m.inflation {
		cumulative *= 1 + r.incremental
		factors = append(factors, cumulative)
	}
	return factors
}

// Years reports how many simulated years the market covers.
func (m *Market) Years() int { return len(m.inflation) }
