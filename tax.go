package foresight

import "math"

// TaxBracket is one step of a progressive income tax schedule: income above
// Threshold, up to the next bracket's threshold, is taxed at Rate.
type TaxBracket struct {
	Threshold float64
	Rate      float64
}

// TaxConfig holds the tax rules applied during a simulation run. All rates
// are fractions (0.22 is 22%).
type TaxConfig struct {
	// FederalBrackets is the progressive schedule, sorted by ascending
	// Threshold, first threshold at 0.
	FederalBrackets []TaxBracket
	// StateRate is a flat rate applied to ordinary income and realized gains.
	StateRate float64
	// CapitalGainsRate is the flat preferential rate on long-term gains.
	CapitalGainsRate float64
	// EarlyWithdrawalPenaltyRate applies to tax-deferred withdrawals taken
	// below age 59½.
	EarlyWithdrawalPenaltyRate float64
}

// DefaultTaxConfig returns the 2024 US federal brackets for a single filer,
// a 5% flat state rate, a 15% long-term capital gains rate and the usual
// 10% early withdrawal penalty.
func DefaultTaxConfig() TaxConfig {
	return TaxConfig{
		FederalBrackets: []TaxBracket{
			{Threshold: 0, Rate: 0.10},
			{Threshold: 11_600, Rate: 0.12},
			{Threshold: 47_150, Rate: 0.22},
			{Threshold: 100_525, Rate: 0.24},
			{Threshold: 191_950, Rate: 0.32},
			{Threshold: 243_725, Rate: 0.35},
			{Threshold: 609_350, Rate: 0.37},
		},
		StateRate:                  0.05,
		CapitalGainsRate:           0.15,
		EarlyWithdrawalPenaltyRate: 0.10,
	}
}

// FederalTax computes the progressive federal tax owed on income.
func FederalTax(income float64, brackets []TaxBracket) float64 {
	if income <= 0 || len(brackets) == 0 {
		return 0
	}
	var tax, prev float64
	for i, b := range brackets {
		next := math.Inf(1)
		if i+1 < len(brackets) {
			next = brackets[i+1].Threshold
		}
		if income <= b.Threshold {
			break
		}
		taxable := max(0, min(income, next)-max(b.Threshold, prev))
		tax += taxable * b.Rate
		prev = b.Threshold
	}
	return tax
}

// FederalMarginalTax computes the federal tax owed on additional income
// stacked on top of ytdIncome.
func FederalMarginalTax(additional, ytdIncome float64, brackets []TaxBracket) float64 {
	return FederalTax(ytdIncome+additional, brackets) - FederalTax(ytdIncome, brackets)
}

// GrossFromNet computes the gross ordinary income that yields net after
// federal marginal tax stacked on ytdIncome plus flat state tax. It inverts
// FederalMarginalTax by walking brackets from the one ytdIncome falls in.
func GrossFromNet(net, ytdIncome float64, brackets []TaxBracket, stateRate float64) float64 {
	var idx int
	for i, b := range brackets {
		if ytdIncome >= b.Threshold {
			idx = i
		}
	}

	remaining, cursor := net, ytdIncome
	var gross float64
	for i := idx; i < len(brackets); i++ {
		next := math.MaxFloat64
		if i+1 < len(brackets) {
			next = brackets[i+1].Threshold
		}
		room := next - cursor
		netPerGross := 1 - (brackets[i].Rate + stateRate)
		maxNet := room * netPerGross
		if remaining <= maxNet {
			gross += remaining / netPerGross
			break
		}
		gross += room
		remaining -= maxNet
		cursor = next
	}
	return gross
}

// GainsTax breaks down the tax owed on realized capital gains.
type GainsTax struct {
	ShortTermFederal float64 // marginal ordinary tax on short-term gains
	LongTermFederal  float64 // flat capital-gains tax on long-term gains
	Federal          float64
	State            float64
	Total            float64
}

// RealizedGainsTax computes the tax owed on realized gains: short-term gains
// are stacked as ordinary income on top of ytdIncome, long-term gains pay the
// flat capital-gains rate, and the state rate applies to both. Losses are not
// deducted.
func RealizedGainsTax(shortTerm, longTerm float64, cfg TaxConfig, ytdIncome float64) GainsTax {
	var t GainsTax
	if shortTerm > 0 {
		t.ShortTermFederal = FederalMarginalTax(shortTerm, ytdIncome, cfg.FederalBrackets)
	}
	t.LongTermFederal = max(0, longTerm) * cfg.CapitalGainsRate
	t.Federal = t.ShortTermFederal + t.LongTermFederal
	t.State = (max(0, shortTerm) + max(0, longTerm)) * cfg.StateRate
	t.Total = t.Federal + t.State
	return t
}

// OrdinaryTax breaks down the tax owed on a withdrawal whose whole gross is
// ordinary income.
type OrdinaryTax struct {
	Federal float64
	State   float64
	Total   float64
	Net     float64 // gross minus total tax
}

// TaxDeferredWithdrawalTax computes the tax owed on a gross withdrawal from
// a tax-deferred account, stacked on top of ytdIncome. The early-withdrawal
// penalty is not part of this breakdown; the liquidation engine levies it
// separately.
func TaxDeferredWithdrawalTax(gross float64, cfg TaxConfig, ytdIncome float64) OrdinaryTax {
	var t OrdinaryTax
	t.Federal = FederalMarginalTax(gross, ytdIncome, cfg.FederalBrackets)
	t.State = gross * cfg.StateRate
	t.Total = t.Federal + t.State
	t.Net = gross - t.Total
	return t
}

// BelowEarlyWithdrawalAge reports whether someone born on birth is younger
// than 59½ on a given date, the threshold below which tax-deferred
// withdrawals incur a penalty.
func BelowEarlyWithdrawalAge(birth, on Date) bool {
	years, months := Age(birth, on)
	return years < 59 || (years == 59 && months < 6)
}

// TaxSummary aggregates one calendar year of taxable activity. The engine
// keeps a running summary for the current year and archives it at rollover.
type TaxSummary struct {
	Year                     int     `json:"year"`
	OrdinaryIncome           float64 `json:"ordinaryIncome"`
	CapitalGains             float64 `json:"capitalGains,omitempty"`
	TaxFreeWithdrawals       float64 `json:"taxFreeWithdrawals,omitempty"`
	FederalTax               float64 `json:"federalTax"`
	StateTax                 float64 `json:"stateTax"`
	EarlyWithdrawalPenalties float64 `json:"earlyWithdrawalPenalties,omitempty"`
}

// TotalTax returns federal plus state tax. Early-withdrawal penalties are
// reported separately.
func (t TaxSummary) TotalTax() float64 { return t.FederalTax + t.StateTax }

// hasActivity reports whether anything worth archiving happened in the year.
func (t TaxSummary) hasActivity() bool {
	return t.OrdinaryIncome > 0 || t.CapitalGains > 0 ||
		t.TaxFreeWithdrawals > 0 || t.EarlyWithdrawalPenalties > 0
}

func (t TaxSummary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("year", t.Year)
	w.Append("ordinaryIncome", t.OrdinaryIncome)
	w.Append("capitalGains", t.CapitalGains)
	w.Append("taxFreeWithdrawals", t.TaxFreeWithdrawals)
	w.Append("federalTax", t.FederalTax)
	w.Append("stateTax", t.StateTax)
	w.Append("totalTax", t.TotalTax())
	w.Append("earlyWithdrawalPenalties", t.EarlyWithdrawalPenalties)
	return w.MarshalJSON()
}
