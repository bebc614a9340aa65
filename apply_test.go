package foresight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func checkingCash(s *SimulationState) float64 {
	return s.accounts["checking"].Kind.(*Bank).Cash.Value
}

func TestApplyCashCreditAndDebit(t *testing.T) {
	s := testState(t)

	require.NoError(t, applyEvalEvent(s, evalCashCredit{to: "checking", amount: 1_000, kind: FlowIncome}, 0))
	require.InDelta(t, 6_000, checkingCash(s), 0.001)

	require.NoError(t, applyEvalEvent(s, evalCashDebit{from: "checking", amount: 2_000, kind: FlowExpense}, 0))
	require.InDelta(t, 4_000, checkingCash(s), 0.001)

	// Debits overdraw rather than fail.
	require.NoError(t, applyEvalEvent(s, evalCashDebit{from: "checking", amount: 10_000, kind: FlowExpense}, 0))
	require.InDelta(t, -6_000, checkingCash(s), 0.001)

	require.Len(t, s.ledger, 3)
	credit := s.ledger[0].Event.(CashCredit)
	require.Equal(t, AccountID("checking"), credit.To)
	require.Equal(t, FlowIncome, credit.Kind)
	require.Equal(t, EventID(0), s.ledger[0].Source)

	require.ErrorIs(t, applyEvalEvent(s, evalCashCredit{to: "ghost", amount: 1}, 0), ErrAccountNotFound)
	require.ErrorIs(t, applyEvalEvent(s, evalCashCredit{to: "mortgage", amount: 1}, 0), ErrNotCashAccount)
}

func TestApplyTaxAccumulation(t *testing.T) {
	s := testState(t)

	require.NoError(t, applyEvalEvent(s, evalIncomeTax{gross: 10_000, federal: 1_000, state: 500}, 0))
	require.NoError(t, applyEvalEvent(s, evalShortTermTax{gain: 100, federal: 10, state: 5}, 0))
	require.NoError(t, applyEvalEvent(s, evalLongTermTax{gain: 400, federal: 60, state: 20}, 0))
	require.NoError(t, applyEvalEvent(s, evalPenaltyTax{gross: 2_000, penalty: 200, rate: 0.10}, 0))
	require.NoError(t, applyEvalEvent(s, evalTaxFree{gross: 3_000}, 0))

	require.InDelta(t, 10_000, s.ytdTax.OrdinaryIncome, 0.001)
	require.InDelta(t, 500, s.ytdTax.CapitalGains, 0.001)
	require.InDelta(t, 1_070, s.ytdTax.FederalTax, 0.001)
	require.InDelta(t, 525, s.ytdTax.StateTax, 0.001)
	require.InDelta(t, 200, s.ytdTax.EarlyWithdrawalPenalties, 0.001)
	require.InDelta(t, 3_000, s.ytdTax.TaxFreeWithdrawals, 0.001)

	var taxEntries int
	for range s.ledger.Taxes() {
		taxEntries++
	}
	require.Equal(t, 5, taxEntries)
}

func TestApplyContributionAndFlow(t *testing.T) {
	limited := Event{ID: 0, Trigger: Manual{}, Limits: &FlowLimits{Limit: 5_000, Period: LimitYearly}}
	s := testState(t, limited)

	require.NoError(t, applyEvalEvent(s, evalContribution{account: "401k", amount: 4_000}, 0))
	room, err := s.ContributionRoom("401k")
	require.NoError(t, err)
	require.InDelta(t, 2_000, room, 0.001)

	e, ok := s.event(0)
	require.True(t, ok)
	require.NoError(t, applyEvalEvent(s, evalFlow{amount: 2_000}, 0))
	require.InDelta(t, 3_000, s.flowRoom(e), 0.001)
}

func TestApplyAddLot(t *testing.T) {
	s := testState(t)

	err := applyEvalEvent(s, evalAddLot{
		to:        AssetCoord{Account: "broker", Asset: "spy"},
		units:     50,
		costBasis: 60,
	}, 0)
	require.NoError(t, err)

	broker := s.accounts["broker"].Kind.(*Investment)
	require.Len(t, broker.Lots, 3)
	lot := broker.Lots[2]
	require.Equal(t, s.current, lot.PurchaseDate)
	require.InDelta(t, 50, lot.Units, 0.001)
	require.InDelta(t, 60, lot.CostBasis, 0.001)

	purchased := s.ledger[0].Event.(AssetPurchased)
	require.InDelta(t, 1.2, purchased.Price, 0.001)

	require.ErrorIs(t, applyEvalEvent(s, evalAddLot{to: AssetCoord{Account: "checking", Asset: "spy"}}, 0), ErrNotInvestment)
}

func TestApplySubtractLot(t *testing.T) {
	s := testState(t)
	oldLot := NewDate(2024, time.January, 1)

	err := applyEvalEvent(s, evalSubtractLot{
		from:      AssetCoord{Account: "broker", Asset: "spy"},
		lotDate:   oldLot,
		units:     40,
		costBasis: 32,
		proceeds:  40,
		longGain:  8,
	}, 0)
	require.NoError(t, err)

	broker := s.accounts["broker"].Kind.(*Investment)
	require.Len(t, broker.Lots, 2)
	require.InDelta(t, 60, broker.Lots[0].Units, 0.001)
	require.InDelta(t, 48, broker.Lots[0].CostBasis, 0.001)

	// Consuming the rest removes the lot.
	err = applyEvalEvent(s, evalSubtractLot{
		from:      AssetCoord{Account: "broker", Asset: "spy"},
		lotDate:   oldLot,
		units:     60,
		costBasis: 48,
		proceeds:  60,
		longGain:  12,
	}, 0)
	require.NoError(t, err)
	require.Len(t, broker.Lots, 1)
	require.Equal(t, NewDate(2025, time.March, 1), broker.Lots[0].PurchaseDate)

	var sales int
	for range s.ledger.Sales() {
		sales++
	}
	require.Equal(t, 2, sales)
}

func TestApplyAdjustBalance(t *testing.T) {
	s := testState(t)

	// Paying a liability down, then past zero: the principal clamps.
	require.NoError(t, applyEvalEvent(s, evalAdjustBalance{account: "mortgage", delta: -30_000}, 0))
	mortgage := s.accounts["mortgage"].Kind.(*Liability)
	require.InDelta(t, 70_000, mortgage.Principal, 0.001)

	require.NoError(t, applyEvalEvent(s, evalAdjustBalance{account: "mortgage", delta: -200_000}, 0))
	require.InDelta(t, 0, mortgage.Principal, 0.001)

	adjusted := s.ledger[1].Event.(BalanceAdjusted)
	require.InDelta(t, 70_000, adjusted.Previous, 0.001)
	require.InDelta(t, 0, adjusted.New, 0.001)
	require.InDelta(t, -200_000, adjusted.Delta, 0.001)

	// Cash balances adjust without a floor.
	require.NoError(t, applyEvalEvent(s, evalAdjustBalance{account: "checking", delta: -10_000}, 0))
	require.InDelta(t, -5_000, checkingCash(s), 0.001)

	require.ErrorIs(t, applyEvalEvent(s, evalAdjustBalance{account: "ghost", delta: 1}, 0), ErrAccountNotFound)
}

func TestApplyAccountLifecycle(t *testing.T) {
	s := testState(t)

	savings := Account{ID: "savings", Kind: &Bank{Cash: Cash{Value: 100, Profile: "flat"}}}
	require.NoError(t, applyEvalEvent(s, evalCreateAccount{account: savings}, 0))
	require.Contains(t, s.accounts, AccountID("savings"))

	// The state owns a clone; mutating the original must not leak in.
	savings.Kind.(*Bank).Cash.Value = 999
	require.InDelta(t, 100, s.accounts["savings"].Kind.(*Bank).Cash.Value, 0.001)

	require.NoError(t, applyEvalEvent(s, evalDeleteAccount{account: "savings"}, 0))
	require.NotContains(t, s.accounts, AccountID("savings"))

	require.IsType(t, AccountCreated{}, s.ledger[0].Event)
	require.IsType(t, AccountDeleted{}, s.ledger[1].Event)
}

func TestApplyScheduleControls(t *testing.T) {
	s := testState(t, Event{ID: 0, Trigger: Repeating{Interval: Monthly}})
	s.startRepeating(0, NewDate(2025, time.July, 1))

	require.NoError(t, applyEvalEvent(s, evalPauseEvent{event: 0}, NoEvent))
	require.Equal(t, repeatPaused, s.repeatStatus(0))
	_, due := s.nextDueDate(0)
	require.False(t, due)

	require.NoError(t, applyEvalEvent(s, evalResumeEvent{event: 0}, NoEvent))
	require.Equal(t, repeatActive, s.repeatStatus(0))
	next, due := s.nextDueDate(0)
	require.True(t, due)
	require.Equal(t, s.current, next)

	require.NoError(t, applyEvalEvent(s, evalTerminateEvent{event: 0}, NoEvent))
	require.True(t, s.isTerminated(0))
	require.Equal(t, repeatNotStarted, s.repeatStatus(0))
}

func TestProcessEventsFiresDueEvent(t *testing.T) {
	s := testState(t, Event{
		ID:      0,
		Trigger: DateTrigger{On: NewDate(2025, time.June, 15)},
		Effects: []Effect{Income{To: "checking", Amount: Fixed(1_000), Type: TaxFreeIncome}},
		Once:    true,
	})

	triggered := processEvents(s)
	require.Equal(t, []EventID{0}, triggered)
	require.InDelta(t, 6_000, checkingCash(s), 0.001)

	// The trigger entry is attributed to the event itself.
	entry := s.ledger[0]
	require.Equal(t, EventTriggered{Event: 0}, entry.Event)
	require.Equal(t, EventID(0), entry.Source)

	// A once event stays quiet on reprocessing.
	require.Empty(t, processEvents(s))
	require.InDelta(t, 6_000, checkingCash(s), 0.001)
}

func TestProcessEventsCascade(t *testing.T) {
	s := testState(t,
		Event{
			ID:      0,
			Trigger: DateTrigger{On: NewDate(2025, time.June, 15)},
			Effects: []Effect{TriggerEvent{Event: 1}},
			Once:    true,
		},
		Event{
			ID:      1,
			Trigger: Manual{},
			Effects: []Effect{Income{To: "checking", Amount: Fixed(500), Type: TaxFreeIncome}},
			Once:    true,
		},
	)

	triggered := processEvents(s)
	require.Equal(t, []EventID{0, 1}, triggered)
	require.InDelta(t, 5_500, checkingCash(s), 0.001)

	// A chained firing has no source of its own.
	for _, entry := range s.ledger {
		if fired, ok := entry.Event.(EventTriggered); ok && fired.Event == 1 {
			require.Equal(t, NoEvent, entry.Source)
		}
	}
}

func TestProcessEventsCascadeOnceGuard(t *testing.T) {
	s := testState(t,
		Event{
			ID:      0,
			Trigger: DateTrigger{On: NewDate(2025, time.June, 15)},
			Effects: []Effect{TriggerEvent{Event: 1}, TriggerEvent{Event: 1}},
			Once:    true,
		},
		Event{
			ID:      1,
			Trigger: Manual{},
			Effects: []Effect{Income{To: "checking", Amount: Fixed(500), Type: TaxFreeIncome}},
			Once:    true,
		},
	)

	triggered := processEvents(s)
	require.Equal(t, []EventID{0, 1}, triggered)
	require.InDelta(t, 5_500, checkingCash(s), 0.001)
}

func TestProcessEventsCascadeDepthLimit(t *testing.T) {
	// Event 1 re-queues itself forever; the drain caps the rounds, warns,
	// and drops the leftovers.
	s := testState(t,
		Event{
			ID:      0,
			Trigger: DateTrigger{On: NewDate(2025, time.June, 15)},
			Effects: []Effect{TriggerEvent{Event: 1}},
			Once:    true,
		},
		Event{
			ID:      1,
			Trigger: Manual{},
			Effects: []Effect{TriggerEvent{Event: 1}},
		},
	)

	triggered := processEvents(s)
	require.Len(t, triggered, 1+maxCascadeDepth)
	require.Empty(t, s.pending)
	require.Len(t, s.warnings, 1)
	require.Equal(t, WarnCascadeDepth, s.warnings[0].Kind)
}

func TestProcessEventsCascadeSkipsTerminated(t *testing.T) {
	s := testState(t,
		Event{
			ID:      0,
			Trigger: DateTrigger{On: NewDate(2025, time.June, 15)},
			Effects: []Effect{TriggerEvent{Event: 1}},
			Once:    true,
		},
		Event{
			ID:      1,
			Trigger: Manual{},
			Effects: []Effect{Income{To: "checking", Amount: Fixed(500), Type: TaxFreeIncome}},
		},
	)
	s.terminate(1)

	triggered := processEvents(s)
	require.Equal(t, []EventID{0}, triggered)
	require.InDelta(t, 5_000, checkingCash(s), 0.001)
}

func TestProcessEventsRepeatingSchedule(t *testing.T) {
	s := testState(t, Event{
		ID:      0,
		Trigger: Repeating{Interval: Monthly},
		Effects: []Effect{Income{To: "checking", Amount: Fixed(100), Type: TaxFreeIncome}},
	})

	// First pass arms the schedule and fires immediately.
	require.Equal(t, []EventID{0}, processEvents(s))
	require.InDelta(t, 5_100, checkingCash(s), 0.001)
	next, ok := s.nextDueDate(0)
	require.True(t, ok)
	require.Equal(t, NewDate(2025, time.July, 15), next)

	// Same date again: nothing due.
	require.Empty(t, processEvents(s))
	require.InDelta(t, 5_100, checkingCash(s), 0.001)

	// Jump past the due date: one more firing, schedule advances from the
	// due date.
	s.current = NewDate(2025, time.July, 20)
	require.Equal(t, []EventID{0}, processEvents(s))
	require.InDelta(t, 5_200, checkingCash(s), 0.001)
	next, _ = s.nextDueDate(0)
	require.Equal(t, NewDate(2025, time.August, 15), next)
}

func TestProcessEventsEffectErrorsWarn(t *testing.T) {
	s := testState(t,
		// Fails at evaluation: the source balance of a missing account.
		Event{
			ID:      0,
			Trigger: DateTrigger{On: NewDate(2025, time.June, 15)},
			Effects: []Effect{Expense{From: "ghost", Amount: SourceBalance}},
			Once:    true,
		},
		// Fails at application: a fixed debit against a missing account.
		Event{
			ID:      1,
			Trigger: DateTrigger{On: NewDate(2025, time.June, 15)},
			Effects: []Effect{Expense{From: "ghost", Amount: Fixed(100)}},
			Once:    true,
		},
	)

	triggered := processEvents(s)
	require.Equal(t, []EventID{0, 1}, triggered)
	require.Len(t, s.warnings, 2)
	for _, w := range s.warnings {
		require.Equal(t, WarnEffectError, w.Kind)
	}
	// No cash moved anywhere.
	require.InDelta(t, 5_000, checkingCash(s), 0.001)
}
