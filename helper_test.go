package foresight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Shared test constructors. Each file keeps its scenario-specific fixtures;
// the ones below back tests across several files.

// testTaxConfig returns a four-bracket schedule with round thresholds so
// expected values stay hand-computable.
func testTaxConfig() TaxConfig {
	return TaxConfig{
		FederalBrackets: []TaxBracket{
			{Threshold: 0, Rate: 0.10},
			{Threshold: 10_000, Rate: 0.12},
			{Threshold: 40_000, Rate: 0.22},
			{Threshold: 90_000, Rate: 0.24},
		},
		StateRate:                  0.05,
		CapitalGainsRate:           0.15,
		EarlyWithdrawalPenaltyRate: 0.10,
	}
}

// twoLots is the canonical position for lot-consumption tests: an older lot
// bought cheap and a recent lot bought near the current $1 price, 100 units
// each.
func twoLots() []AssetLot {
	return []AssetLot{
		{Asset: "spy", PurchaseDate: NewDate(2024, time.January, 1), Units: 100, CostBasis: 80},
		{Asset: "spy", PurchaseDate: NewDate(2025, time.March, 1), Units: 100, CostBasis: 95},
	}
}

// testStateAt builds a small deterministic world on flat zero-return
// profiles, so every balance stays hand-computable: a checking account, a
// taxable brokerage holding twoLots, a big tax-deferred IRA, a Roth, a
// contribution-limited 401k and a mortgage.
func testStateAt(t *testing.T, birth Date, events ...Event) *SimulationState {
	t.Helper()
	config := SimulationConfig{
		ReturnProfiles: map[ProfileID]ReturnProfile{"flat": FixedReturn(0)},
		AssetReturns:   map[AssetID]ProfileID{"spy": "flat", "bonds": "flat"},
		AssetPrices:    map[AssetID]float64{"spy": 1, "bonds": 1},
		TaxConfig:      testTaxConfig(),
		StartDate:      NewDate(2025, time.June, 15),
		BirthDate:      birth,
		DurationYears:  10,
		Accounts: []Account{
			{ID: "checking", Kind: &Bank{Cash: Cash{Value: 5_000, Profile: "flat"}}},
			{ID: "broker", Kind: &Investment{TaxStatus: Taxable, Cash: Cash{Profile: "flat"}, Lots: twoLots()}},
			{ID: "ira", Kind: &Investment{TaxStatus: TaxDeferred, Cash: Cash{Profile: "flat"}, Lots: []AssetLot{
				{Asset: "spy", PurchaseDate: NewDate(2015, time.January, 1), Units: 10_000, CostBasis: 8_000},
			}}},
			{ID: "roth", Kind: &Investment{TaxStatus: TaxFree, Cash: Cash{Profile: "flat"}, Lots: []AssetLot{
				{Asset: "spy", PurchaseDate: NewDate(2015, time.January, 1), Units: 1_000, CostBasis: 1_000},
			}}},
			{ID: "401k", Kind: &Investment{
				TaxStatus: TaxDeferred,
				Cash:      Cash{Profile: "flat"},
				Limit:     &ContributionLimit{Amount: 6_000, Period: Yearly},
			}},
			{ID: "mortgage", Kind: &Liability{Principal: 100_000, Rate: 0.05}},
		},
		Events: events,
	}
	state, err := newSimulationState(config, 1)
	require.NoError(t, err)
	return state
}

// testState uses a birth date that reads (65, 0) on the start date.
func testState(t *testing.T, events ...Event) *SimulationState {
	t.Helper()
	return testStateAt(t, NewDate(1960, time.June, 15), events...)
}
