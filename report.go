package foresight

import (
	"fmt"
	"math"
)

// The report structs condense a SimulationResult into display-ready values:
// Money and Percent instead of raw float64, one struct per rendered view.
// They hold no behavior beyond construction; the renderer package turns them
// into markdown.

// SummaryReport is the at-a-glance view of one run: where the plan started,
// where it ended, how fast it grew, and what it cost in taxes.
type SummaryReport struct {
	Currency string
	Start    Date
	End      Date

	StartingNetWorth  Money
	FinalNetWorth     Money
	RealFinalNetWorth Money // deflated to start-date purchasing power
	TotalGrowth       Percent
	AnnualizedGrowth  Percent

	Accounts []AccountLine
	Taxes    []TaxLine

	TotalTax       Money
	TotalPenalties Money

	Warnings []SimulationWarning
}

// AccountLine is one account's closing value and its share of the final net
// worth. Liability shares are negative.
type AccountLine struct {
	Account AccountID
	Kind    string
	Value   Money
	Share   Percent
}

// TaxLine is one year of the run's tax bill.
type TaxLine struct {
	Year           int
	OrdinaryIncome Money
	CapitalGains   Money
	FederalTax     Money
	StateTax       Money
	TotalTax       Money
	Penalties      Money
}

// NewSummaryReport condenses a result into a summary in the given reporting
// currency.
func NewSummaryReport(result *SimulationResult, currency string) (*SummaryReport, error) {
	if currency == "" {
		return nil, fmt.Errorf("reporting currency is not set")
	}
	if len(result.WealthSnapshots) == 0 {
		return nil, fmt.Errorf("result holds no wealth snapshots to summarize")
	}
	first := result.WealthSnapshots[0]
	last := result.WealthSnapshots[len(result.WealthSnapshots)-1]
	startNW := first.TotalValue()
	finalNW := last.TotalValue()

	r := &SummaryReport{
		Currency:         currency,
		Start:            first.Date,
		End:              last.Date,
		StartingNetWorth: M(startNW, currency),
		FinalNetWorth:    M(finalNW, currency),
	}

	deflator := 1.0
	if n := len(result.CumulativeInflation); n > 0 {
		deflator = result.CumulativeInflation[n-1]
	}
	r.RealFinalNetWorth = M(finalNW/deflator, currency)

	// Growth ratios only make sense from a positive base.
	if startNW > 0 && finalNW > 0 {
		r.TotalGrowth = Percent(finalNW/startNW - 1)
		if years := float64(DaysBetween(first.Date, last.Date)) / 365.25; years > 0 {
			r.AnnualizedGrowth = Percent(math.Pow(finalNW/startNW, 1/years) - 1)
		}
	}

	for _, snap := range last.Accounts {
		line := AccountLine{
			Account: snap.Account,
			Kind:    snap.Kind,
			Value:   M(snap.Value, currency),
		}
		if finalNW != 0 {
			line.Share = Percent(snap.Value / finalNW)
		}
		r.Accounts = append(r.Accounts, line)
	}

	var tax, penalties float64
	for _, t := range result.YearlyTaxes {
		r.Taxes = append(r.Taxes, TaxLine{
			Year:           t.Year,
			OrdinaryIncome: M(t.OrdinaryIncome, currency),
			CapitalGains:   M(t.CapitalGains, currency),
			FederalTax:     M(t.FederalTax, currency),
			StateTax:       M(t.StateTax, currency),
			TotalTax:       M(t.TotalTax(), currency),
			Penalties:      M(t.EarlyWithdrawalPenalties, currency),
		})
		tax += t.TotalTax()
		penalties += t.EarlyWithdrawalPenalties
	}
	r.TotalTax = M(tax, currency)
	r.TotalPenalties = M(penalties, currency)
	r.Warnings = result.Warnings
	return r, nil
}

// CashFlowReport is the per-year cash movement of a run plus a totals line.
type CashFlowReport struct {
	Currency string
	Years    []CashFlowLine
	Total    CashFlowLine
}

// CashFlowLine is one calendar year of flows. Year is zero on the totals
// line.
type CashFlowLine struct {
	Year          int
	Income        Money
	Expenses      Money
	Contributions Money
	Withdrawals   Money
	Appreciation  Money
	Net           Money
}

// NewCashFlowReport tabulates the result's yearly cash flows.
func NewCashFlowReport(result *SimulationResult, currency string) (*CashFlowReport, error) {
	if currency == "" {
		return nil, fmt.Errorf("reporting currency is not set")
	}
	r := &CashFlowReport{Currency: currency}
	var total YearlyCashFlow
	for _, y := range result.YearlyCashFlows {
		r.Years = append(r.Years, CashFlowLine{
			Year:          y.Year,
			Income:        M(y.Income, currency),
			Expenses:      M(y.Expenses, currency),
			Contributions: M(y.Contributions, currency),
			Withdrawals:   M(y.Withdrawals, currency),
			Appreciation:  M(y.Appreciation, currency),
			Net:           M(y.Net(), currency),
		})
		total.Income += y.Income
		total.Expenses += y.Expenses
		total.Contributions += y.Contributions
		total.Withdrawals += y.Withdrawals
		total.Appreciation += y.Appreciation
	}
	r.Total = CashFlowLine{
		Income:        M(total.Income, currency),
		Expenses:      M(total.Expenses, currency),
		Contributions: M(total.Contributions, currency),
		Withdrawals:   M(total.Withdrawals, currency),
		Appreciation:  M(total.Appreciation, currency),
		Net:           M(total.Net(), currency),
	}
	return r, nil
}

// LedgerReport is the run's ledger flattened into printable lines.
type LedgerReport struct {
	Currency string
	Year     int // zero selects every year
	Lines    []LedgerLine
}

// LedgerLine is one ledger entry with its description pre-rendered, so
// consumers outside this package need no knowledge of the entry types.
type LedgerLine struct {
	Date   Date
	Source EventID
	Kind   string
	Detail string
}

// NewLedgerReport flattens the result's ledger, keeping only the given year
// when year is non-zero.
func NewLedgerReport(result *SimulationResult, year int, currency string) *LedgerReport {
	r := &LedgerReport{Currency: currency, Year: year}
	for _, entry := range result.Ledger {
		if year != 0 && entry.Date.Year() != year {
			continue
		}
		r.Lines = append(r.Lines, LedgerLine{
			Date:   entry.Date,
			Source: entry.Source,
			Kind:   entry.Event.kind(),
			Detail: describeEntry(entry.Event, currency),
		})
	}
	return r
}

// describeEntry renders a one-line description of a state event.
func describeEntry(ev StateEvent, currency string) string {
	display := func(v float64) Money { return M(v, currency) }
	switch e := ev.(type) {
	case TimeAdvance:
		return fmt.Sprintf("clock advanced %s to %s (%d days)", e.From, e.To, e.Days)
	case YearClosed:
		return fmt.Sprintf("tax year %d closed", e.FromYear)
	case AccountCreated:
		return fmt.Sprintf("account %s created", e.Account.ID)
	case AccountDeleted:
		return fmt.Sprintf("account %s deleted", e.Account)
	case CashCredit:
		return fmt.Sprintf("%s %s to %s", e.Kind, display(e.Amount), e.To)
	case CashDebit:
		return fmt.Sprintf("%s %s from %s", e.Kind, display(e.Amount), e.From)
	case CashAppreciation:
		return fmt.Sprintf("cash in %s grew %s to %s over %d days", e.Account, display(e.Previous), display(e.New), e.Days)
	case LiabilityInterest:
		return fmt.Sprintf("debt of %s accrued %s to %s over %d days", e.Account, display(e.Previous), display(e.New), e.Days)
	case BalanceAdjusted:
		return fmt.Sprintf("balance of %s adjusted %s to %s", e.Account, display(e.Previous), display(e.New))
	case AssetPurchased:
		return fmt.Sprintf("bought %g %s in %s for %s", e.Units, e.Asset, e.Account, display(e.CostBasis))
	case AssetSold:
		return fmt.Sprintf("sold %g %s from lot %s in %s for %s", e.Units, e.Asset, e.LotDate, e.Account, display(e.Proceeds))
	case IncomeTaxed:
		return fmt.Sprintf("income tax on %s: federal %s, state %s", display(e.Gross), display(e.Federal), display(e.State))
	case ShortTermGainsTaxed:
		return fmt.Sprintf("short-term gains tax on %s: federal %s, state %s", display(e.Gain), display(e.Federal), display(e.State))
	case LongTermGainsTaxed:
		return fmt.Sprintf("long-term gains tax on %s: federal %s, state %s", display(e.Gain), display(e.Federal), display(e.State))
	case EarlyWithdrawalPenalty:
		return fmt.Sprintf("early withdrawal penalty %s on %s", display(e.Penalty), display(e.Gross))
	case TaxFreeWithdrawal:
		return fmt.Sprintf("tax-free withdrawal of %s", display(e.Gross))
	case EventTriggered:
		return fmt.Sprintf("event %s fired", e.Event)
	case EventPaused:
		return fmt.Sprintf("event %s paused", e.Event)
	case EventResumed:
		return fmt.Sprintf("event %s resumed", e.Event)
	case EventTerminated:
		return fmt.Sprintf("event %s terminated", e.Event)
	case RmdWithdrawal:
		return fmt.Sprintf("required distribution from %s at age %d: %s of %s required, %s withdrawn",
			e.Account, e.Age, display(e.Required), display(e.PriorYearBalance), display(e.Actual))
	}
	return ""
}
