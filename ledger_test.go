package foresight

import (
	"testing"
	"time"
)

func testLedger() Ledger {
	d := func(day int) Date { return NewDate(2025, time.March, day) }
	return Ledger{
		{Date: d(1), Source: NoEvent, Event: TimeAdvance{From: d(1), To: d(2), Days: 1}},
		{Date: d(2), Source: 0, Event: EventTriggered{Event: 0}},
		{Date: d(2), Source: 0, Event: CashCredit{To: "checking", Amount: 5000, Kind: FlowIncome}},
		{Date: d(2), Source: 0, Event: IncomeTaxed{Gross: 5000, Federal: 500, State: 250}},
		{Date: d(3), Source: 1, Event: EventTriggered{Event: 1}},
		{Date: d(3), Source: 1, Event: CashDebit{From: "checking", Amount: 1200, Kind: FlowExpense}},
		{Date: d(4), Source: NoEvent, Event: CashAppreciation{Account: "savings", Previous: 1000, New: 1010, Rate: 0.04, Days: 90}},
		{Date: d(5), Source: 2, Event: AssetSold{Account: "brokerage", Asset: "index", LotDate: d(1), Units: 2, CostBasis: 100, Proceeds: 220, LongTermGain: 120}},
	}
}

func count[T any](seq func(func(T) bool)) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

func TestLedgerEntries(t *testing.T) {
	l := testLedger()

	n := 0
	for i, e := range l.Entries() {
		if l[i].Event != e.Event {
			t.Errorf("entry %d yielded out of order", i)
		}
		n++
	}
	if n != len(l) {
		t.Errorf("Entries() yielded %d entries, want %d", n, len(l))
	}

	n = 0
	for range l.Entries(ByFlowKind(FlowExpense)) {
		n++
	}
	if n != 1 {
		t.Errorf("Entries(ByFlowKind(FlowExpense)) yielded %d entries, want 1", n)
	}
}

func TestLedgerQueries(t *testing.T) {
	l := testLedger()

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"cash flows", count(l.CashFlows()), 3},
		{"for checking", count(l.ForAccount("checking")), 2},
		{"for event 1", count(l.ForEvent(1)), 2},
		{"taxes", count(l.Taxes()), 1},
		{"sales", count(l.Sales()), 1},
		{"purchases", count(l.Purchases()), 0},
		{"triggers", count(l.Triggers()), 2},
		{"distributions", count(l.Distributions()), 0},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("%s: got %d entries, want %d", tc.name, tc.got, tc.want)
		}
	}
}

func TestLedgerTriggerDate(t *testing.T) {
	l := testLedger()

	if !l.WasTriggered(0) {
		t.Errorf("WasTriggered(0) = false, want true")
	}
	if l.WasTriggered(5) {
		t.Errorf("WasTriggered(5) = true, want false")
	}

	on, ok := l.TriggerDate(1)
	if !ok || on.String() != "2025-03-03" {
		t.Errorf("TriggerDate(1) = (%s, %v), want (2025-03-03, true)", on, ok)
	}
}
