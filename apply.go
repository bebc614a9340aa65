package foresight

import "fmt"

// maxCascadeDepth bounds chains of TriggerEvent effects on one date. Each
// round drains the whole pending queue; ten rounds of fan-out is far beyond
// any sane plan.
const maxCascadeDepth = 10

// applyEvalEvent executes one evaluated state change and records it in the
// ledger, attributed to the plan event that caused it. Evaluation validated
// the interesting cases already; errors here mean the world changed between
// the two phases (an account deleted by an earlier change of the same
// effect) and the change is skipped with a warning by the caller.
func applyEvalEvent(s *SimulationState, ev evalEvent, source EventID) error {
	switch v := ev.(type) {
	case evalRecord:
		s.record(LedgerEntry{Date: s.current, Source: source, Event: v.event})

	case evalCreateAccount:
		clone := v.account.Clone()
		s.accounts[clone.ID] = &clone
		s.record(LedgerEntry{Date: s.current, Source: source, Event: AccountCreated{Account: clone}})

	case evalDeleteAccount:
		delete(s.accounts, v.account)
		s.record(LedgerEntry{Date: s.current, Source: source, Event: AccountDeleted{Account: v.account}})

	case evalCashCredit:
		if err := s.adjustCash(v.to, v.amount); err != nil {
			return err
		}
		s.record(LedgerEntry{Date: s.current, Source: source, Event: CashCredit{To: v.to, Amount: v.amount, Kind: v.kind}})

	case evalCashDebit:
		// Debits may overdraw; negative cash is implicit borrowing the plan
		// author can see in the snapshots.
		if err := s.adjustCash(v.from, -v.amount); err != nil {
			return err
		}
		s.record(LedgerEntry{Date: s.current, Source: source, Event: CashDebit{From: v.from, Amount: v.amount, Kind: v.kind}})

	case evalContribution:
		if _, err := s.recordContribution(v.account, v.amount); err != nil {
			return err
		}

	case evalFlow:
		s.recordFlow(source, v.amount)

	case evalIncomeTax:
		s.ytdTax.OrdinaryIncome += v.gross
		s.ytdTax.FederalTax += v.federal
		s.ytdTax.StateTax += v.state
		s.record(LedgerEntry{Date: s.current, Source: source, Event: IncomeTaxed{Gross: v.gross, Federal: v.federal, State: v.state}})

	case evalShortTermTax:
		s.ytdTax.CapitalGains += v.gain
		s.ytdTax.FederalTax += v.federal
		s.ytdTax.StateTax += v.state
		s.record(LedgerEntry{Date: s.current, Source: source, Event: ShortTermGainsTaxed{Gain: v.gain, Federal: v.federal, State: v.state}})

	case evalLongTermTax:
		s.ytdTax.CapitalGains += v.gain
		s.ytdTax.FederalTax += v.federal
		s.ytdTax.StateTax += v.state
		s.record(LedgerEntry{Date: s.current, Source: source, Event: LongTermGainsTaxed{Gain: v.gain, Federal: v.federal, State: v.state}})

	case evalPenaltyTax:
		s.ytdTax.EarlyWithdrawalPenalties += v.penalty
		s.record(LedgerEntry{Date: s.current, Source: source, Event: EarlyWithdrawalPenalty{Gross: v.gross, Penalty: v.penalty, Rate: v.rate}})

	case evalTaxFree:
		s.ytdTax.TaxFreeWithdrawals += v.gross
		s.record(LedgerEntry{Date: s.current, Source: source, Event: TaxFreeWithdrawal{Gross: v.gross}})

	case evalAddLot:
		inv, err := s.investment(v.to.Account)
		if err != nil {
			return err
		}
		var price float64
		if v.units > 0 {
			price = v.costBasis / v.units
		}
		inv.Lots = append(inv.Lots, AssetLot{
			Asset:        v.to.Asset,
			PurchaseDate: s.current,
			Units:        v.units,
			CostBasis:    v.costBasis,
		})
		s.record(LedgerEntry{Date: s.current, Source: source, Event: AssetPurchased{
			Account:   v.to.Account,
			Asset:     v.to.Asset,
			Units:     v.units,
			CostBasis: v.costBasis,
			Price:     price,
		}})

	case evalSubtractLot:
		inv, err := s.investment(v.from.Account)
		if err != nil {
			return err
		}
		for i := range inv.Lots {
			lot := &inv.Lots[i]
			if lot.Asset != v.from.Asset || lot.PurchaseDate != v.lotDate {
				continue
			}
			lot.Units -= v.units
			lot.CostBasis -= v.costBasis
			if lot.Units <= 0.001 {
				// Depleted; drop the remnant so it never resurfaces.
				inv.Lots = append(inv.Lots[:i], inv.Lots[i+1:]...)
			}
			break
		}
		s.record(LedgerEntry{Date: s.current, Source: source, Event: AssetSold{
			Account:       v.from.Account,
			Asset:         v.from.Asset,
			LotDate:       v.lotDate,
			Units:         v.units,
			CostBasis:     v.costBasis,
			Proceeds:      v.proceeds,
			ShortTermGain: v.shortGain,
			LongTermGain:  v.longGain,
		}})

	case evalAdjustBalance:
		return applyBalanceAdjustment(s, v, source)

	case evalTriggerEvent:
		// Queued, not fired inline; the trigger entry is recorded when the
		// target actually fires.
		s.pending = append(s.pending, v.event)

	case evalPauseEvent:
		s.pauseRepeating(v.event)
		s.record(LedgerEntry{Date: s.current, Source: source, Event: EventPaused{Event: v.event}})

	case evalResumeEvent:
		// Re-arm due today; a resumed schedule fires on the spot and picks
		// up its cadence from there.
		s.resumeRepeating(v.event, s.current)
		s.record(LedgerEntry{Date: s.current, Source: source, Event: EventResumed{Event: v.event}})

	case evalTerminateEvent:
		s.terminate(v.event)
		s.stopRepeating(v.event)
		s.record(LedgerEntry{Date: s.current, Source: source, Event: EventTerminated{Event: v.event}})

	default:
		return fmt.Errorf("unknown state change %T", ev)
	}
	return nil
}

// adjustCash moves an account's cash balance by delta, negative for debits.
func (s *SimulationState) adjustCash(id AccountID, delta float64) error {
	a, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("account %q: %w", id, ErrAccountNotFound)
	}
	switch k := a.Kind.(type) {
	case *Bank:
		k.Cash.Value += delta
	case *Investment:
		k.Cash.Value += delta
	default:
		return fmt.Errorf("account %q: %w", id, ErrNotCashAccount)
	}
	return nil
}

// investment resolves an account that must be an investment.
func (s *SimulationState) investment(id AccountID) (*Investment, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", id, ErrAccountNotFound)
	}
	inv, ok := a.Kind.(*Investment)
	if !ok {
		return nil, fmt.Errorf("account %q: %w", id, ErrNotInvestment)
	}
	return inv, nil
}

// applyBalanceAdjustment moves an account's balance directly. Liability
// principal and property value clamp at zero; cash balances may go negative.
func applyBalanceAdjustment(s *SimulationState, v evalAdjustBalance, source EventID) error {
	a, ok := s.accounts[v.account]
	if !ok {
		return fmt.Errorf("account %q: %w", v.account, ErrAccountNotFound)
	}

	var previous, now float64
	switch k := a.Kind.(type) {
	case *Bank:
		previous = k.Cash.Value
		k.Cash.Value += v.delta
		now = k.Cash.Value
	case *Investment:
		previous = k.Cash.Value
		k.Cash.Value += v.delta
		now = k.Cash.Value
	case *Liability:
		previous = k.Principal
		k.Principal = max(0, k.Principal+v.delta)
		now = k.Principal
	case *Property:
		previous = k.Value
		k.Value = max(0, k.Value+v.delta)
		now = k.Value
	}
	s.record(LedgerEntry{Date: s.current, Source: source, Event: BalanceAdjusted{
		Account:  v.account,
		Previous: previous,
		New:      now,
		Delta:    v.delta,
	}})
	return nil
}

// processEvents evaluates every event's trigger against the current date and
// fires the ones that are due, then drains any TriggerEvent chains. It
// returns the ids that fired; the caller keeps re-processing the same date
// until nothing fires, since one event's effects can satisfy another's
// trigger.
func processEvents(s *SimulationState) []EventID {
	var triggered []EventID

	// Events scan in id order, so two runs of the same plan fire ties
	// identically.
	for _, e := range s.events {
		if e == nil {
			continue
		}
		// A once event stays quiet after its first firing. Repeating events
		// manage their own schedule instead.
		if e.Once && s.isTriggered(e.ID) && !e.IsRepeating() {
			continue
		}

		out, err := evaluateTrigger(e.ID, e.Trigger, s)
		if err != nil {
			// A trigger referencing something missing cannot be decided;
			// leave the event for a later date.
			continue
		}
		switch out.result {
		case startRepeating:
			s.startRepeating(e.ID, out.next)
		case repeatDue:
			s.scheduleNext(e.ID, out.next)
		case stopRepeating:
			s.stopRepeating(e.ID)
		}
		if !out.fires() {
			continue
		}

		s.setTriggered(e.ID, s.current)
		s.record(LedgerEntry{Date: s.current, Source: e.ID, Event: EventTriggered{Event: e.ID}})
		triggered = append(triggered, e.ID)
		applyEffects(s, e)
	}

	// TriggerEvent effects queue their targets; fire them now, breadth
	// first, letting each round queue the next.
	for depth := 0; len(s.pending) > 0 && depth < maxCascadeDepth; depth++ {
		batch := s.pending
		s.pending = nil
		for _, id := range batch {
			e, ok := s.event(id)
			if !ok || s.isTerminated(id) {
				continue
			}
			if e.Once && s.isTriggered(id) {
				continue
			}
			s.setTriggered(id, s.current)
			s.record(LedgerEntry{Date: s.current, Source: NoEvent, Event: EventTriggered{Event: id}})
			triggered = append(triggered, id)
			applyEffects(s, e)
		}
	}
	if len(s.pending) > 0 {
		s.warn(NoEvent, WarnCascadeDepth,
			fmt.Sprintf("event cascade still queuing after %d rounds, dropping %d pending triggers", maxCascadeDepth, len(s.pending)))
		s.pending = nil
	}
	return triggered
}

// applyEffects evaluates and applies a fired event's effects in declared
// order. A failing effect is skipped with a warning; the remaining effects
// still run, because a dangling account reference in one effect should not
// silence a whole paycheck.
func applyEffects(s *SimulationState, e *Event) {
	for _, effect := range e.Effects {
		events, err := evaluateEffect(e, effect, s)
		if err != nil {
			s.warn(e.ID, WarnEffectError, fmt.Sprintf("effect %T: %v", effect, err))
			continue
		}
		for _, ev := range events {
			if err := applyEvalEvent(s, ev, e.ID); err != nil {
				s.warn(e.ID, WarnEffectError, fmt.Sprintf("applying %T: %v", ev, err))
			}
		}
	}
}
