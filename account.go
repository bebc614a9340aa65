package foresight

import (
	"fmt"
	"sort"
)

// TaxStatus governs how liquidation proceeds from an investment account are
// taxed.
type TaxStatus string

const (
	// Taxable is a regular brokerage: realized capital gains are taxed.
	Taxable TaxStatus = "taxable"
	// TaxDeferred is a 401k or traditional IRA: withdrawals are taxed as
	// ordinary income on the whole gross amount.
	TaxDeferred TaxStatus = "tax-deferred"
	// TaxFree is a Roth account: withdrawals are not taxed.
	TaxFree TaxStatus = "tax-free"
)

// ContributionLimit caps how much can flow into an investment account per
// period (Monthly or Yearly). Incoming contributions beyond the remaining
// room are clamped, not rejected.
type ContributionLimit struct {
	Amount float64
	Period RepeatInterval
}

// Cash is a cash balance bound to the return profile it compounds with.
type Cash struct {
	Value   float64
	Profile ProfileID
}

// AssetLot is a single purchase lot, the unit of cost-basis tracking.
// Units and CostBasis are never negative and only decrease as the lot is
// consumed by sales.
type AssetLot struct {
	Asset        AssetID
	PurchaseDate Date
	Units        float64
	CostBasis    float64
}

// unitBasis returns the per-unit cost basis of the lot.
func (l AssetLot) unitBasis() float64 {
	if l.Units <= 0 {
		return 0
	}
	return l.CostBasis / l.Units
}

// AccountKind is the closed set of account flavors.
type AccountKind interface{ accountKind() }

// Bank is a liquid cash account (checking, savings, HYSA).
type Bank struct {
	Cash Cash
}

// Investment is a brokerage-style container: a cash sub-balance plus asset
// lots, under one tax treatment.
type Investment struct {
	TaxStatus TaxStatus
	Cash      Cash
	Lots      []AssetLot
	Limit     *ContributionLimit
}

// Property is a fixed asset (real estate, vehicle). Its value follows the
// market when the asset is priced there, and stays static otherwise.
type Property struct {
	Asset AssetID
	Value float64
}

// Liability is money owed (mortgage, loan). Principal is stored positive and
// counts negative toward net worth; Rate accrues interest over time.
type Liability struct {
	Principal float64
	Rate      float64
}

func (*Bank) accountKind()       {}
func (*Investment) accountKind() {}
func (*Property) accountKind()   {}
func (*Liability) accountKind()  {}

// Account is a container for value with a specific flavor. The ID is the
// plan-author-chosen name and must be unique within a simulation.
type Account struct {
	ID   AccountID
	Kind AccountKind
}

// TotalValue computes the account's worth at current prices. Liabilities
// contribute their principal negated; unknown asset prices count as zero.
func (a *Account) TotalValue(m *Market, start, current Date) float64 {
	switch k := a.Kind.(type) {
	case *Bank:
		// cash is compounded incrementally during the run, just return it.
		return k.Cash.Value
	case *Investment:
		var assets float64
		for _, lot := range k.Lots {
			price, ok := m.AssetValue(start, current, lot.Asset)
			if !ok {
				price = 0
			}
			assets += lot.Units * price
		}
		return k.Cash.Value + assets
	case *Property:
		if v, ok := m.AssetValue(start, current, k.Asset); ok {
			return v
		}
		return k.Value
	case *Liability:
		return -k.Principal
	}
	return 0
}

// CashBalance returns the spendable cash of the account. Property and
// liability accounts hold none.
func (a *Account) CashBalance() (float64, bool) {
	switch k := a.Kind.(type) {
	case *Bank:
		return k.Cash.Value, true
	case *Investment:
		return k.Cash.Value, true
	}
	return 0, false
}

// IsLiquid reports whether the account can be debited directly.
func (a *Account) IsLiquid() bool {
	switch a.Kind.(type) {
	case *Bank, *Investment:
		return true
	}
	return false
}

// Validate checks the account definition for structural problems.
func (a *Account) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("account without an id")
	}
	if a.Kind == nil {
		return fmt.Errorf("account %q has no kind", a.ID)
	}
	if inv, ok := a.Kind.(*Investment); ok {
		for _, lot := range inv.Lots {
			if lot.Units < 0 || lot.CostBasis < 0 {
				return fmt.Errorf("account %q lot %q has negative units or basis", a.ID, lot.Asset)
			}
		}
		if inv.Limit != nil {
			if inv.Limit.Amount < 0 {
				return fmt.Errorf("account %q has a negative contribution limit", a.ID)
			}
			if inv.Limit.Period != Monthly && inv.Limit.Period != Yearly {
				return fmt.Errorf("account %q contribution limit period must be monthly or yearly", a.ID)
			}
		}
	}
	return nil
}

// Clone returns an independent deep copy. The simulation mutates account
// state in place, so it always works on clones of the configured accounts.
func (a Account) Clone() Account {
	switch k := a.Kind.(type) {
	case *Bank:
		c := *k
		a.Kind = &c
	case *Investment:
		c := *k
		c.Lots = make([]AssetLot, len(k.Lots))
		copy(c.Lots, k.Lots)
		if k.Limit != nil {
			limit := *k.Limit
			c.Limit = &limit
		}
		a.Kind = &c
	case *Property:
		c := *k
		a.Kind = &c
	case *Liability:
		c := *k
		a.Kind = &c
	}
	return a
}

// Snapshot captures the account's value at a point in time.
func (a *Account) Snapshot(m *Market, start, current Date) AccountSnapshot {
	s := AccountSnapshot{Account: a.ID}
	switch k := a.Kind.(type) {
	case *Bank:
		s.Kind = "bank"
		s.Cash = k.Cash.Value
		s.Value = k.Cash.Value
	case *Investment:
		s.Kind = "investment"
		s.Cash = k.Cash.Value
		s.Assets = make(map[AssetID]float64)
		for _, lot := range k.Lots {
			price, ok := m.AssetValue(start, current, lot.Asset)
			if !ok {
				price = 0
			}
			s.Assets[lot.Asset] += lot.Units * price
		}
		s.Value = s.Cash
		for _, v := range s.Assets {
			s.Value += v
		}
	case *Property:
		s.Kind = "property"
		if v, ok := m.AssetValue(start, current, k.Asset); ok {
			s.Value = v
		} else {
			s.Value = k.Value
		}
	case *Liability:
		s.Kind = "liability"
		s.Value = -k.Principal
	}
	return s
}

// AccountSnapshot is a point-in-time record of one account's worth.
// Liability values are negative.
type AccountSnapshot struct {
	Account AccountID           `json:"account"`
	Kind    string              `json:"kind"`
	Cash    float64             `json:"cash,omitempty"`
	Assets  map[AssetID]float64 `json:"assets,omitempty"`
	Value   float64             `json:"value"`
}

// WealthSnapshot is the state of every account on a given date, sorted by
// account ID so runs encode identically.
type WealthSnapshot struct {
	Date     Date              `json:"date"`
	Accounts []AccountSnapshot `json:"accounts"`
}

// TotalValue sums the snapshot's account values (liabilities negative).
func (w WealthSnapshot) TotalValue() float64 {
	var total float64
	for _, a := range w.Accounts {
		total += a.Value
	}
	return total
}

// Value returns the snapshot value for one account.
func (w WealthSnapshot) Value(id AccountID) (float64, bool) {
	for _, a := range w.Accounts {
		if a.Account == id {
			return a.Value, true
		}
	}
	return 0, false
}

// sortSnapshots orders account snapshots by ID.
func sortSnapshots(accounts []AccountSnapshot) {
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Account < accounts[j].Account })
}
