package foresight

import "iter"

// Ledger is the append-only record of everything that happened during a run,
// in chronological order. Entries on the same date keep the order they were
// applied in.
type Ledger []LedgerEntry

// Entries returns an iterator over the ledger in original order. When
// filters are given, an entry is yielded if any of them accepts it.
func (l Ledger) Entries(filters ...func(LedgerEntry) bool) iter.Seq2[int, LedgerEntry] {
	return func(yield func(int, LedgerEntry) bool) {
		for i, e := range l {
			if !accepted(e, filters) {
				continue
			}
			if !yield(i, e) {
				return
			}
		}
	}
}

func accepted(e LedgerEntry, filters []func(LedgerEntry) bool) bool {
	if len(filters) == 0 {
		return true
	}
	for _, filter := range filters {
		if filter(e) {
			return true
		}
	}
	return false
}

// ByAccount accepts entries touching the given account.
func ByAccount(id AccountID) func(LedgerEntry) bool {
	return func(e LedgerEntry) bool {
		account, ok := EventAccount(e.Event)
		return ok && account == id
	}
}

// ByFlowKind accepts cash credits and debits of the given kind.
func ByFlowKind(k CashFlowKind) func(LedgerEntry) bool {
	return func(e LedgerEntry) bool {
		switch ev := e.Event.(type) {
		case CashCredit:
			return ev.Kind == k
		case CashDebit:
			return ev.Kind == k
		}
		return false
	}
}

// ForAccount returns an iterator over the entries touching an account.
func (l Ledger) ForAccount(id AccountID) iter.Seq[LedgerEntry] {
	return l.filtered(ByAccount(id))
}

// ForEvent returns an iterator over the entries a plan event caused.
func (l Ledger) ForEvent(id EventID) iter.Seq[LedgerEntry] {
	return l.filtered(func(e LedgerEntry) bool { return e.Source == id })
}

// CashFlows returns an iterator over cash movements: credits, debits and
// interest earned.
func (l Ledger) CashFlows() iter.Seq[LedgerEntry] {
	return l.filtered(func(e LedgerEntry) bool {
		switch e.Event.(type) {
		case CashCredit, CashDebit, CashAppreciation:
			return true
		}
		return false
	})
}

// Taxes returns an iterator over tax entries, penalties included.
func (l Ledger) Taxes() iter.Seq[LedgerEntry] {
	return l.filtered(func(e LedgerEntry) bool {
		switch e.Event.(type) {
		case IncomeTaxed, ShortTermGainsTaxed, LongTermGainsTaxed,
			EarlyWithdrawalPenalty, TaxFreeWithdrawal:
			return true
		}
		return false
	})
}

// Sales returns an iterator over per-lot asset sale entries.
func (l Ledger) Sales() iter.Seq[LedgerEntry] {
	return l.filtered(func(e LedgerEntry) bool {
		_, ok := e.Event.(AssetSold)
		return ok
	})
}

// Purchases returns an iterator over asset purchase entries.
func (l Ledger) Purchases() iter.Seq[LedgerEntry] {
	return l.filtered(func(e LedgerEntry) bool {
		_, ok := e.Event.(AssetPurchased)
		return ok
	})
}

// Triggers returns an iterator over plan event firings.
func (l Ledger) Triggers() iter.Seq[LedgerEntry] {
	return l.filtered(func(e LedgerEntry) bool {
		_, ok := e.Event.(EventTriggered)
		return ok
	})
}

// Distributions returns an iterator over required minimum distribution
// entries.
func (l Ledger) Distributions() iter.Seq[LedgerEntry] {
	return l.filtered(func(e LedgerEntry) bool {
		_, ok := e.Event.(RmdWithdrawal)
		return ok
	})
}

func (l Ledger) filtered(filter func(LedgerEntry) bool) iter.Seq[LedgerEntry] {
	return func(yield func(LedgerEntry) bool) {
		for _, e := range l {
			if !filter(e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// WasTriggered reports whether a plan event fired at least once.
func (l Ledger) WasTriggered(id EventID) bool {
	_, ok := l.TriggerDate(id)
	return ok
}

// TriggerDate returns the date a plan event first fired.
func (l Ledger) TriggerDate(id EventID) (Date, bool) {
	for _, e := range l {
		if t, ok := e.Event.(EventTriggered); ok && t.Event == id {
			return e.Date, true
		}
	}
	return Date{}, false
}
