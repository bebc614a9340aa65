package foresight

import (
	"fmt"
	"time"
)

// WarningKind classifies non-fatal problems encountered during a run.
type WarningKind int

const (
	// WarnIterationLimit means one date kept firing events until the
	// same-date ceiling, usually a balance trigger that can never settle.
	WarnIterationLimit WarningKind = iota
	// WarnCascadeDepth means chained TriggerEvent effects exceeded the
	// cascade budget and the remainder was dropped.
	WarnCascadeDepth
	// WarnEffectError means an effect failed to evaluate or apply and was
	// skipped.
	WarnEffectError
)

func (k WarningKind) String() string {
	switch k {
	case WarnIterationLimit:
		return "iterationLimit"
	case WarnCascadeDepth:
		return "cascadeDepth"
	case WarnEffectError:
		return "effectError"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind as its string form.
func (k WarningKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// SimulationWarning is a non-fatal problem the run worked around. The
// simulation never aborts for these; inspect them to judge the result.
type SimulationWarning struct {
	Date    Date
	Event   EventID // NoEvent when not tied to one event
	Message string
	Kind    WarningKind
}

// String renders the warning as a dated one-liner for reports.
func (w SimulationWarning) String() string {
	if w.Event.IsEvent() {
		return fmt.Sprintf("%s %s: %s", w.Date, w.Event, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Date, w.Message)
}

// MarshalJSON emits the warning with the event omitted when absent.
func (w SimulationWarning) MarshalJSON() ([]byte, error) {
	var obj jsonObjectWriter
	obj.Append("date", w.Date)
	obj.Append("kind", w.Kind)
	if w.Event.IsEvent() {
		obj.Append("event", int(w.Event))
	}
	obj.Append("message", w.Message)
	return obj.MarshalJSON()
}

// YearlyCashFlow aggregates one calendar year of cash movement, derived
// from the ledger. Internal reallocations (purchases, transfers) cancel out
// and are excluded.
type YearlyCashFlow struct {
	Year          int     `json:"year"`
	Income        float64 `json:"income"`
	Expenses      float64 `json:"expenses"`
	Contributions float64 `json:"contributions"`
	Withdrawals   float64 `json:"withdrawals"`
	Appreciation  float64 `json:"appreciation"`
}

// Net is the year's external cash flow plus growth: income minus expenses
// plus appreciation. Withdrawals and contributions move money between the
// plan's own pockets, so they do not enter the net.
func (y YearlyCashFlow) Net() float64 {
	return y.Income - y.Expenses + y.Appreciation
}

// buildYearlyCashFlows folds the ledger into per-year summaries. Entries are
// chronological, so the year range comes from the first and last entry.
func buildYearlyCashFlows(ledger Ledger) []YearlyCashFlow {
	if len(ledger) == 0 {
		return nil
	}
	minYear := ledger[0].Date.Year()
	maxYear := ledger[len(ledger)-1].Date.Year()

	yearly := make([]YearlyCashFlow, maxYear-minYear+1)
	for i := range yearly {
		yearly[i].Year = minYear + i
	}

	for _, entry := range ledger {
		y := &yearly[entry.Date.Year()-minYear]
		switch ev := entry.Event.(type) {
		case CashCredit:
			switch ev.Kind {
			case FlowIncome:
				y.Income += ev.Amount
			case FlowLiquidationProceeds, FlowRmdWithdrawal:
				y.Withdrawals += ev.Amount
			}
		case CashDebit:
			switch ev.Kind {
			case FlowExpense:
				y.Expenses += ev.Amount
			case FlowContribution:
				y.Contributions += ev.Amount
			}
		case CashAppreciation:
			y.Appreciation += ev.New - ev.Previous
		}
	}
	return yearly
}

// SimulationResult is everything one run produced: dated wealth snapshots,
// per-year tax and cash-flow summaries, the full ledger, warnings, and the
// inflation factors to deflate nominal values with. It marshals to
// deterministic JSON.
type SimulationResult struct {
	WealthSnapshots []WealthSnapshot    `json:"wealthSnapshots"`
	YearlyTaxes     []TaxSummary        `json:"yearlyTaxes,omitempty"`
	YearlyCashFlows []YearlyCashFlow    `json:"yearlyCashFlows,omitempty"`
	Ledger          Ledger              `json:"ledger,omitempty"`
	Warnings        []SimulationWarning `json:"warnings,omitempty"`

	// CumulativeInflation has one factor per simulated year, leading with
	// 1.0; divide a year's nominal value by its factor for start-date
	// dollars.
	CumulativeInflation []float64 `json:"cumulativeInflation"`
}

// FinalNetWorth is the total value of the last snapshot.
func (r *SimulationResult) FinalNetWorth() float64 {
	if len(r.WealthSnapshots) == 0 {
		return 0
	}
	return r.WealthSnapshots[len(r.WealthSnapshots)-1].TotalValue()
}

// FinalAccountBalance is one account's value in the last snapshot.
func (r *SimulationResult) FinalAccountBalance(id AccountID) (float64, bool) {
	if len(r.WealthSnapshots) == 0 {
		return 0, false
	}
	return r.WealthSnapshots[len(r.WealthSnapshots)-1].Value(id)
}

// FinalAssetBalance is one position's value in the last snapshot.
func (r *SimulationResult) FinalAssetBalance(account AccountID, asset AssetID) (float64, bool) {
	if len(r.WealthSnapshots) == 0 {
		return 0, false
	}
	for _, snap := range r.WealthSnapshots[len(r.WealthSnapshots)-1].Accounts {
		if snap.Account != account {
			continue
		}
		v, ok := snap.Assets[asset]
		return v, ok
	}
	return 0, false
}

// NetWorthPoint is a dated net-worth sample.
type NetWorthPoint struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// YearlyNetWorth extracts the December 31 snapshots as net-worth points.
func (r *SimulationResult) YearlyNetWorth() []NetWorthPoint {
	var points []NetWorthPoint
	for _, snap := range r.WealthSnapshots {
		if snap.Date.Month() != time.December || snap.Date.Day() != 31 {
			continue
		}
		points = append(points, NetWorthPoint{Date: snap.Date, Value: snap.TotalValue()})
	}
	return points
}

// EventTriggered reports whether the event fired at least once.
func (r *SimulationResult) EventTriggered(id EventID) bool {
	return r.Ledger.WasTriggered(id)
}

// EventTriggerDate is the date the event first fired.
func (r *SimulationResult) EventTriggerDate(id EventID) (Date, bool) {
	return r.Ledger.TriggerDate(id)
}
