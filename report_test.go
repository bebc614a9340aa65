package foresight

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSummaryReport(t *testing.T) {
	result := &SimulationResult{
		WealthSnapshots: []WealthSnapshot{
			{
				Date: NewDate(2025, time.January, 1),
				Accounts: []AccountSnapshot{
					{Account: "checking", Kind: "bank", Cash: 10_000, Value: 10_000},
				},
			},
			{
				Date: NewDate(2027, time.January, 1),
				Accounts: []AccountSnapshot{
					{Account: "checking", Kind: "bank", Cash: 25_000, Value: 25_000},
					{Account: "mortgage", Kind: "liability", Value: -5_000},
				},
			},
		},
		YearlyTaxes: []TaxSummary{
			{Year: 2025, OrdinaryIncome: 10_000, FederalTax: 1_000, StateTax: 500, EarlyWithdrawalPenalties: 100},
		},
		CumulativeInflation: []float64{1, 1.03, 1.0609},
	}

	r, err := NewSummaryReport(result, "USD")
	require.NoError(t, err)

	require.Equal(t, NewDate(2025, time.January, 1), r.Start)
	require.Equal(t, NewDate(2027, time.January, 1), r.End)
	require.True(t, r.StartingNetWorth.Equal(M(10_000, "USD")))
	require.True(t, r.FinalNetWorth.Equal(M(20_000, "USD")))
	require.True(t, r.RealFinalNetWorth.Equal(M(20_000/1.0609, "USD")))

	require.InDelta(t, 1.0, float64(r.TotalGrowth), 1e-12)
	years := 730.0 / 365.25
	require.InDelta(t, math.Pow(2, 1/years)-1, float64(r.AnnualizedGrowth), 1e-12)

	// Literals stay float64 so both sides build decimals through the same
	// constructor and compare structurally.
	require.Equal(t, []AccountLine{
		{Account: "checking", Kind: "bank", Value: M(25_000.0, "USD"), Share: Percent(1.25)},
		{Account: "mortgage", Kind: "liability", Value: M(-5_000.0, "USD"), Share: Percent(-0.25)},
	}, r.Accounts)

	require.Equal(t, []TaxLine{
		{
			Year:           2025,
			OrdinaryIncome: M(10_000.0, "USD"),
			CapitalGains:   M(0.0, "USD"),
			FederalTax:     M(1_000.0, "USD"),
			StateTax:       M(500.0, "USD"),
			TotalTax:       M(1_500.0, "USD"),
			Penalties:      M(100.0, "USD"),
		},
	}, r.Taxes)
	require.True(t, r.TotalTax.Equal(M(1_500, "USD")))
	require.True(t, r.TotalPenalties.Equal(M(100, "USD")))

	_, err = NewSummaryReport(result, "")
	require.Error(t, err)

	_, err = NewSummaryReport(&SimulationResult{}, "USD")
	require.Error(t, err)
}

func TestNewSummaryReportZeroBase(t *testing.T) {
	result := &SimulationResult{
		WealthSnapshots: []WealthSnapshot{
			{Date: NewDate(2025, time.January, 1)},
			{Date: NewDate(2026, time.January, 1), Accounts: []AccountSnapshot{
				{Account: "checking", Kind: "bank", Value: 5_000},
			}},
		},
	}
	r, err := NewSummaryReport(result, "USD")
	require.NoError(t, err)
	require.Equal(t, Percent(0), r.TotalGrowth)
	require.Equal(t, Percent(0), r.AnnualizedGrowth)
	require.True(t, r.RealFinalNetWorth.Equal(M(5_000, "USD")))
}

func TestNewCashFlowReport(t *testing.T) {
	result := &SimulationResult{
		YearlyCashFlows: []YearlyCashFlow{
			{Year: 2025, Income: 60_000, Expenses: 40_000, Contributions: 10_000, Appreciation: 2_000},
			{Year: 2026, Income: 62_000, Expenses: 41_000, Withdrawals: 5_000, Appreciation: -500},
		},
	}

	r, err := NewCashFlowReport(result, "USD")
	require.NoError(t, err)
	require.Len(t, r.Years, 2)
	require.Equal(t, CashFlowLine{
		Year:          2025,
		Income:        M(60_000.0, "USD"),
		Expenses:      M(40_000.0, "USD"),
		Contributions: M(10_000.0, "USD"),
		Withdrawals:   M(0.0, "USD"),
		Appreciation:  M(2_000.0, "USD"),
		Net:           M(22_000.0, "USD"),
	}, r.Years[0])

	require.Equal(t, 0, r.Total.Year)
	require.True(t, r.Total.Income.Equal(M(122_000, "USD")))
	require.True(t, r.Total.Expenses.Equal(M(81_000, "USD")))
	require.True(t, r.Total.Net.Equal(M(42_500, "USD")))

	_, err = NewCashFlowReport(result, "")
	require.Error(t, err)
}

func TestNewLedgerReport(t *testing.T) {
	result := &SimulationResult{
		Ledger: Ledger{
			{Date: NewDate(2025, time.January, 1), Source: 0, Event: EventTriggered{Event: 0}},
			{Date: NewDate(2025, time.January, 1), Source: 0, Event: CashCredit{To: "checking", Amount: 1_000, Kind: FlowIncome}},
			{Date: NewDate(2025, time.April, 1), Source: NoEvent, Event: TimeAdvance{From: NewDate(2025, time.January, 1), To: NewDate(2025, time.April, 1), Days: 90}},
			{Date: NewDate(2026, time.February, 10), Source: 1, Event: CashDebit{From: "checking", Amount: 250, Kind: FlowExpense}},
		},
	}

	all := NewLedgerReport(result, 0, "USD")
	require.Len(t, all.Lines, 4)
	require.Equal(t, "eventTriggered", all.Lines[0].Kind)
	require.Equal(t, "event #0 fired", all.Lines[0].Detail)
	require.Equal(t, "income $1,000.00 to checking", all.Lines[1].Detail)
	require.Equal(t, "clock advanced 2025-01-01 to 2025-04-01 (90 days)", all.Lines[2].Detail)
	require.Equal(t, NoEvent, all.Lines[2].Source)

	one := NewLedgerReport(result, 2026, "USD")
	require.Len(t, one.Lines, 1)
	require.Equal(t, "expense $250.00 from checking", one.Lines[0].Detail)
	require.Equal(t, EventID(1), one.Lines[0].Source)
}

func TestDescribeEntryCoversEveryKind(t *testing.T) {
	lot := NewDate(2020, time.June, 1)
	entries := []struct {
		event StateEvent
		want  string
	}{
		{YearClosed{FromYear: 2025, ToYear: 2026}, "tax year 2025 closed"},
		{AccountCreated{Account: Account{ID: "hsa", Kind: &Bank{}}}, "account hsa created"},
		{AccountDeleted{Account: "hsa"}, "account hsa deleted"},
		{CashAppreciation{Account: "savings", Previous: 1_000, New: 1_010, Rate: 0.01, Days: 90},
			"cash in savings grew $1,000.00 to $1,010.00 over 90 days"},
		{LiabilityInterest{Account: "mortgage", Previous: 1_000, New: 1_015, Rate: 0.06, Days: 90},
			"debt of mortgage accrued $1,000.00 to $1,015.00 over 90 days"},
		{BalanceAdjusted{Account: "loan", Previous: 500, New: 0, Delta: -500},
			"balance of loan adjusted $500.00 to $0.00"},
		{AssetPurchased{Account: "broker", Asset: "spy", Units: 2.5, CostBasis: 1_250, Price: 500},
			"bought 2.5 spy in broker for $1,250.00"},
		{AssetSold{Account: "broker", Asset: "spy", LotDate: lot, Units: 2, CostBasis: 800, Proceeds: 1_100},
			"sold 2 spy from lot 2020-06-01 in broker for $1,100.00"},
		{IncomeTaxed{Gross: 10_000, Federal: 1_000, State: 500},
			"income tax on $10,000.00: federal $1,000.00, state $500.00"},
		{ShortTermGainsTaxed{Gain: 300, Federal: 66, State: 15},
			"short-term gains tax on $300.00: federal $66.00, state $15.00"},
		{LongTermGainsTaxed{Gain: 400, Federal: 60, State: 20},
			"long-term gains tax on $400.00: federal $60.00, state $20.00"},
		{EarlyWithdrawalPenalty{Gross: 1_000, Penalty: 100, Rate: 0.10},
			"early withdrawal penalty $100.00 on $1,000.00"},
		{TaxFreeWithdrawal{Gross: 2_000}, "tax-free withdrawal of $2,000.00"},
		{EventPaused{Event: 3}, "event #3 paused"},
		{EventResumed{Event: 3}, "event #3 resumed"},
		{EventTerminated{Event: 3}, "event #3 terminated"},
		{RmdWithdrawal{Account: "ira", Age: 75, PriorYearBalance: 24_600, Divisor: 24.6, Required: 1_000, Actual: 850},
			"required distribution from ira at age 75: $1,000.00 of $24,600.00 required, $850.00 withdrawn"},
	}
	for _, tc := range entries {
		require.Equal(t, tc.want, describeEntry(tc.event, "USD"), "kind %s", tc.event.kind())
	}
}
