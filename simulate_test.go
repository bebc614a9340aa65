package foresight

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// simPlan is a minimal full-run plan: one checking account holding 10,000
// on a zero-return profile, so every expected number is hand-computable.
func simPlan(years int, events ...Event) SimulationConfig {
	return SimulationConfig{
		ReturnProfiles: map[ProfileID]ReturnProfile{"flat": FixedReturn(0)},
		TaxConfig:      testTaxConfig(),
		StartDate:      NewDate(2025, time.January, 1),
		BirthDate:      NewDate(1960, time.June, 15),
		DurationYears:  years,
		Accounts: []Account{
			{ID: "checking", Kind: &Bank{Cash: Cash{Value: 10_000, Profile: "flat"}}},
		},
		Events: events,
	}
}

func TestSimulateQuietPlan(t *testing.T) {
	result, err := Simulate(simPlan(2), 1)
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	require.InDelta(t, 10_000, result.FinalNetWorth(), 0.01)

	// Snapshots at the start, each Dec 31, and the end.
	require.Len(t, result.WealthSnapshots, 4)
	require.Equal(t, NewDate(2025, time.January, 1), result.WealthSnapshots[0].Date)
	require.Equal(t, NewDate(2025, time.December, 31), result.WealthSnapshots[1].Date)
	require.Equal(t, NewDate(2026, time.December, 31), result.WealthSnapshots[2].Date)
	require.Equal(t, NewDate(2027, time.January, 1), result.WealthSnapshots[3].Date)

	points := result.YearlyNetWorth()
	require.Len(t, points, 2)
	require.InDelta(t, 10_000, points[0].Value, 0.01)
	require.InDelta(t, 10_000, points[1].Value, 0.01)

	require.Equal(t, []float64{1, 1, 1}, result.CumulativeInflation)

	// The clock must cover the whole window in contiguous steps.
	var advances []TimeAdvance
	for _, entry := range result.Ledger.Entries() {
		if ta, ok := entry.Event.(TimeAdvance); ok {
			advances = append(advances, ta)
		}
	}
	require.NotEmpty(t, advances)
	require.Equal(t, NewDate(2025, time.January, 1), advances[0].From)
	require.Equal(t, NewDate(2027, time.January, 1), advances[len(advances)-1].To)
	days := 0
	for i, ta := range advances {
		if i > 0 {
			require.Equal(t, advances[i-1].To, ta.From)
		}
		days += ta.Days
	}
	require.Equal(t, 730, days)
}

func TestSimulateMonthlySalary(t *testing.T) {
	salary := Event{
		ID:      0,
		Name:    "salary",
		Trigger: Repeating{Interval: Monthly, Start: DateTrigger{On: NewDate(2025, time.January, 1)}},
		Effects: []Effect{Income{To: "checking", Amount: Fixed(1_000), Type: TaxFreeIncome}},
	}
	result, err := Simulate(simPlan(1, salary), 1)
	require.NoError(t, err)
	require.Empty(t, result.Warnings)

	// Fires on the first of every month, January through December.
	credits := 0
	for _, entry := range result.Ledger.Entries(ByFlowKind(FlowIncome)) {
		_ = entry
		credits++
	}
	require.Equal(t, 12, credits)
	require.InDelta(t, 22_000, result.FinalNetWorth(), 0.01)

	flows := result.YearlyCashFlows
	require.Len(t, flows, 2)
	require.Equal(t, 2025, flows[0].Year)
	require.InDelta(t, 12_000, flows[0].Income, 0.01)
	require.InDelta(t, 12_000, flows[0].Net(), 0.01)
}

func TestSimulateDateEventsLandExactly(t *testing.T) {
	bonus := Event{
		ID:      0,
		Once:    true,
		Trigger: DateTrigger{On: NewDate(2025, time.May, 17)},
		Effects: []Effect{Income{To: "checking", Amount: Fixed(500), Type: TaxFreeIncome}},
	}
	followup := Event{
		ID:      1,
		Once:    true,
		Trigger: RelativeToEvent{Event: 0, Offset: TriggerOffset{Months: 1}},
		Effects: []Effect{Income{To: "checking", Amount: Fixed(250), Type: TaxFreeIncome}},
	}
	result, err := Simulate(simPlan(1, bonus, followup), 1)
	require.NoError(t, err)

	// Both land on their exact dates, not on a later heartbeat.
	on, ok := result.EventTriggerDate(0)
	require.True(t, ok)
	require.Equal(t, NewDate(2025, time.May, 17), on)
	on, ok = result.EventTriggerDate(1)
	require.True(t, ok)
	require.Equal(t, NewDate(2025, time.June, 17), on)
	require.InDelta(t, 10_750, result.FinalNetWorth(), 0.01)
}

func TestSimulateNestedStartWaitsForHeartbeat(t *testing.T) {
	// The start condition sits inside the schedule, so it is not scanned
	// for checkpoints; the first firing waits for the April 1 heartbeat,
	// then the schedule runs on its own monthly dates.
	pension := Event{
		ID:      0,
		Trigger: Repeating{Interval: Monthly, Start: DateTrigger{On: NewDate(2025, time.February, 10)}},
		Effects: []Effect{Income{To: "checking", Amount: Fixed(100), Type: TaxFreeIncome}},
	}
	result, err := Simulate(simPlan(1, pension), 1)
	require.NoError(t, err)

	on, ok := result.EventTriggerDate(0)
	require.True(t, ok)
	require.Equal(t, NewDate(2025, time.April, 1), on)

	credits := 0
	for _, entry := range result.Ledger.Entries(ByFlowKind(FlowIncome)) {
		_ = entry
		credits++
	}
	require.Equal(t, 9, credits)
	require.InDelta(t, 10_900, result.FinalNetWorth(), 0.01)
}

func TestSimulateIterationLimit(t *testing.T) {
	// A balance trigger that is always true and never Once fires on every
	// round of every date.
	restless := Event{
		ID:      0,
		Trigger: AccountBalance{Account: "checking", Threshold: AtLeast(0)},
	}
	quiet := slog.New(slog.DiscardHandler)
	result, err := Simulate(simPlan(1, restless), 1, WithMaxSameDateIterations(5), WithLogger(quiet))
	require.NoError(t, err)

	// One warning per simulated date: start, three heartbeats, Dec 31.
	require.Len(t, result.Warnings, 5)
	for _, w := range result.Warnings {
		require.Equal(t, WarnIterationLimit, w.Kind)
		require.Equal(t, NoEvent, w.Event)
	}
	require.Equal(t, "iteration limit (5) reached, possible infinite loop", result.Warnings[0].Message)
	require.Equal(t, NewDate(2025, time.January, 1), result.Warnings[0].Date)
}

func TestSimulateWithoutLedger(t *testing.T) {
	salary := Event{
		ID:      0,
		Trigger: Repeating{Interval: Monthly, Start: DateTrigger{On: NewDate(2025, time.January, 1)}},
		Effects: []Effect{Income{To: "checking", Amount: Fixed(1_000), Type: TaxFreeIncome}},
	}
	result, err := Simulate(simPlan(1, salary), 1, WithoutLedger())
	require.NoError(t, err)

	require.Empty(t, result.Ledger)
	require.Empty(t, result.YearlyCashFlows)
	// The run itself is unchanged, only the entry stream is gone.
	require.Len(t, result.WealthSnapshots, 3)
	require.InDelta(t, 22_000, result.FinalNetWorth(), 0.01)
}

func TestSimulateCashInterest(t *testing.T) {
	config := simPlan(1)
	config.ReturnProfiles = map[ProfileID]ReturnProfile{"flat": FixedReturn(0.05)}

	result, err := Simulate(config, 1)
	require.NoError(t, err)

	// Interest compounds across checkpoints to exactly one year at 5%.
	require.InDelta(t, 10_500, result.FinalNetWorth(), 0.01)

	days := 0
	var appreciation float64
	for _, entry := range result.Ledger.Entries() {
		if ca, ok := entry.Event.(CashAppreciation); ok {
			days += ca.Days
			appreciation += ca.New - ca.Previous
		}
	}
	require.Equal(t, 365, days)
	require.InDelta(t, 500, appreciation, 0.01)
}

func TestSimulateLiabilityInterest(t *testing.T) {
	config := simPlan(1)
	config.Accounts = append(config.Accounts, Account{
		ID:   "mortgage",
		Kind: &Liability{Principal: 100_000, Rate: 0.06},
	})

	result, err := Simulate(config, 1)
	require.NoError(t, err)

	balance, ok := result.FinalAccountBalance("mortgage")
	require.True(t, ok)
	require.InDelta(t, -106_000, balance, 0.01)
	require.InDelta(t, -96_000, result.FinalNetWorth(), 0.01)

	accrued := false
	for _, entry := range result.Ledger.Entries() {
		if _, ok := entry.Event.(LiabilityInterest); ok {
			accrued = true
		}
	}
	require.True(t, accrued)
}

func TestSimulateYearRollover(t *testing.T) {
	raise := Event{
		ID:      0,
		Once:    true,
		Trigger: DateTrigger{On: NewDate(2025, time.March, 1)},
		Effects: []Effect{Income{To: "checking", Amount: Fixed(10_000), Mode: Gross}},
	}
	result, err := Simulate(simPlan(2, raise), 1)
	require.NoError(t, err)

	// 10,000 gross at 10% federal and 5% state leaves 8,500.
	require.InDelta(t, 18_500, result.FinalNetWorth(), 0.01)

	require.Len(t, result.YearlyTaxes, 1)
	y := result.YearlyTaxes[0]
	require.Equal(t, 2025, y.Year)
	require.InDelta(t, 10_000, y.OrdinaryIncome, 0.01)
	require.InDelta(t, 1_000, y.FederalTax, 0.01)
	require.InDelta(t, 500, y.StateTax, 0.01)

	// Closing a year is itself on the record, dated at the first simulated
	// day of the new year: the March heartbeat for 2026, the end date for
	// the final rollover into 2027.
	var closed []LedgerEntry
	for _, entry := range result.Ledger.Entries() {
		if _, ok := entry.Event.(YearClosed); ok {
			closed = append(closed, entry)
		}
	}
	require.Len(t, closed, 2)
	require.Equal(t, YearClosed{FromYear: 2025, ToYear: 2026}, closed[0].Event)
	require.Equal(t, NewDate(2026, time.March, 31), closed[0].Date)
	require.Equal(t, YearClosed{FromYear: 2026, ToYear: 2027}, closed[1].Event)
	require.Equal(t, NewDate(2027, time.January, 1), closed[1].Date)
}

func TestSimulateRmdSweep(t *testing.T) {
	config := SimulationConfig{
		ReturnProfiles: map[ProfileID]ReturnProfile{"flat": FixedReturn(0)},
		AssetReturns:   map[AssetID]ProfileID{"spy": "flat"},
		AssetPrices:    map[AssetID]float64{"spy": 1},
		TaxConfig:      testTaxConfig(),
		StartDate:      NewDate(2025, time.January, 1),
		BirthDate:      NewDate(1950, time.June, 15),
		DurationYears:  2,
		Accounts: []Account{
			{ID: "checking", Kind: &Bank{Cash: Cash{Value: 10_000, Profile: "flat"}}},
			{ID: "ira", Kind: &Investment{TaxStatus: TaxDeferred, Cash: Cash{Profile: "flat"}, Lots: []AssetLot{
				{Asset: "spy", PurchaseDate: NewDate(2010, time.January, 1), Units: 24_600, CostBasis: 24_600},
			}}},
		},
		Events: []Event{{
			ID:      0,
			Once:    true,
			Trigger: DateTrigger{On: NewDate(2026, time.April, 1)},
			Effects: []Effect{ApplyRmd{To: "checking"}},
		}},
	}
	result, err := Simulate(config, 1)
	require.NoError(t, err)

	// The Dec 31 2025 balance of 24,600 at divisor 24.6 requires 1,000;
	// withdrawal tax takes 150, so 850 reaches checking.
	var dists []RmdWithdrawal
	for entry := range result.Ledger.Distributions() {
		dists = append(dists, entry.Event.(RmdWithdrawal))
	}
	require.Len(t, dists, 1)
	d := dists[0]
	require.Equal(t, AccountID("ira"), d.Account)
	require.Equal(t, 75, d.Age)
	require.InDelta(t, 24_600, d.PriorYearBalance, 0.01)
	require.InDelta(t, 24.6, d.Divisor, 0.001)
	require.InDelta(t, 1_000, d.Required, 0.01)
	require.InDelta(t, 850, d.Actual, 0.01)

	checking, ok := result.FinalAccountBalance("checking")
	require.True(t, ok)
	require.InDelta(t, 10_850, checking, 0.01)
	ira, ok := result.FinalAccountBalance("ira")
	require.True(t, ok)
	require.InDelta(t, 23_600, ira, 0.01)

	require.Len(t, result.YearlyTaxes, 1)
	y := result.YearlyTaxes[0]
	require.Equal(t, 2026, y.Year)
	require.InDelta(t, 1_000, y.OrdinaryIncome, 0.01)
	require.InDelta(t, 100, y.FederalTax, 0.01)
	require.InDelta(t, 50, y.StateTax, 0.01)
}

func TestSimulatePauseAndResume(t *testing.T) {
	salary := Event{
		ID:      0,
		Trigger: Repeating{Interval: Monthly, Start: DateTrigger{On: NewDate(2025, time.January, 1)}},
		Effects: []Effect{Income{To: "checking", Amount: Fixed(1_000), Type: TaxFreeIncome}},
	}
	pause := Event{
		ID:      1,
		Once:    true,
		Trigger: DateTrigger{On: NewDate(2025, time.June, 1)},
		Effects: []Effect{PauseEvent{Event: 0}},
	}
	resume := Event{
		ID:      2,
		Once:    true,
		Trigger: DateTrigger{On: NewDate(2025, time.September, 1)},
		Effects: []Effect{ResumeEvent{Event: 0}},
	}
	result, err := Simulate(simPlan(1, salary, pause, resume), 1)
	require.NoError(t, err)

	// January through June fire, July and August are paused, the resume
	// re-arms for September 1 and the schedule runs through December.
	credits := 0
	for _, entry := range result.Ledger.Entries(ByFlowKind(FlowIncome)) {
		_ = entry
		credits++
	}
	require.Equal(t, 10, credits)
	require.InDelta(t, 20_000, result.FinalNetWorth(), 0.01)
}

func TestSimulateSeedDeterminism(t *testing.T) {
	config := SimulationConfig{
		ReturnProfiles: map[ProfileID]ReturnProfile{"stocks": NormalReturn{Mean: 0.06, StdDev: 0.15}},
		AssetReturns:   map[AssetID]ProfileID{"spy": "stocks"},
		AssetPrices:    map[AssetID]float64{"spy": 100},
		TaxConfig:      testTaxConfig(),
		StartDate:      NewDate(2025, time.January, 1),
		BirthDate:      NewDate(1960, time.June, 15),
		DurationYears:  5,
		Accounts: []Account{
			{ID: "checking", Kind: &Bank{Cash: Cash{Value: 10_000, Profile: "stocks"}}},
			{ID: "broker", Kind: &Investment{TaxStatus: Taxable, Cash: Cash{Profile: "stocks"}, Lots: []AssetLot{
				{Asset: "spy", PurchaseDate: NewDate(2020, time.January, 1), Units: 100, CostBasis: 8_000},
			}}},
		},
	}

	first, err := Simulate(config, 42)
	require.NoError(t, err)
	second, err := Simulate(config, 42)
	require.NoError(t, err)
	require.Equal(t, first, second)

	other, err := Simulate(config, 43)
	require.NoError(t, err)
	require.NotEqual(t, first.FinalNetWorth(), other.FinalNetWorth())
}
