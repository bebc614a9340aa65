package foresight

import "fmt"

// StateEvent is a single, atomic mutation of simulation state. The ledger is
// the chronological sequence of these facts: replaying them reproduces the
// run, querying them explains it.
//
// The set of implementations in this file is the complete vocabulary of
// state changes.
type StateEvent interface {
	// kind returns the type tag used in the JSON encoding.
	kind() string
}

// LedgerEntry records one state change with its context: when it happened
// and which plan event caused it (NoEvent for changes the engine itself
// initiated, like time advancement and compounding).
type LedgerEntry struct {
	Date   Date
	Source EventID
	Event  StateEvent
}

// --- Time ---

// TimeAdvance moves the simulation clock forward to the next checkpoint.
type TimeAdvance struct {
	From Date
	To   Date
	Days int
}

func (TimeAdvance) kind() string { return "timeAdvance" }

// YearClosed archives the tax year ending at FromYear December 31.
type YearClosed struct {
	FromYear int
	ToYear   int
}

func (YearClosed) kind() string { return "yearClosed" }

// --- Accounts ---

// AccountCreated adds a new account to the portfolio.
type AccountCreated struct {
	Account Account
}

func (AccountCreated) kind() string { return "accountCreated" }

// AccountDeleted removes an account from the portfolio.
type AccountDeleted struct {
	Account AccountID
}

func (AccountDeleted) kind() string { return "accountDeleted" }

// --- Cash ---

// CashCredit increases an account's cash balance.
type CashCredit struct {
	To     AccountID
	Amount float64
	Kind   CashFlowKind
}

func (CashCredit) kind() string { return "cashCredit" }

// CashDebit decreases an account's cash balance.
type CashDebit struct {
	From   AccountID
	Amount float64
	Kind   CashFlowKind
}

func (CashDebit) kind() string { return "cashDebit" }

// CashAppreciation records interest earned by a positive cash balance
// between two checkpoints.
type CashAppreciation struct {
	Account  AccountID
	Previous float64
	New      float64
	Rate     float64
	Days     int
}

func (CashAppreciation) kind() string { return "cashAppreciation" }

// LiabilityInterest records interest accrued on a loan principal between
// two checkpoints.
type LiabilityInterest struct {
	Account  AccountID
	Previous float64
	New      float64
	Rate     float64
	Days     int
}

func (LiabilityInterest) kind() string { return "liabilityInterest" }

// BalanceAdjusted records a direct balance change outside the usual cash
// flows, like a loan write-down or a manual correction.
type BalanceAdjusted struct {
	Account  AccountID
	Previous float64
	New      float64
	Delta    float64
}

func (BalanceAdjusted) kind() string { return "balanceAdjusted" }

// --- Assets ---

// AssetPurchased adds a new lot of an asset to an investment account.
type AssetPurchased struct {
	Account   AccountID
	Asset     AssetID
	Units     float64
	CostBasis float64
	Price     float64
}

func (AssetPurchased) kind() string { return "assetPurchased" }

// AssetSold removes units from one lot of an asset, one entry per lot the
// sale consumed.
type AssetSold struct {
	Account       AccountID
	Asset         AssetID
	LotDate       Date
	Units         float64
	CostBasis     float64
	Proceeds      float64
	ShortTermGain float64
	LongTermGain  float64
}

func (AssetSold) kind() string { return "assetSold" }

// --- Taxes ---

// IncomeTaxed records tax owed on ordinary income.
type IncomeTaxed struct {
	Gross   float64
	Federal float64
	State   float64
}

func (IncomeTaxed) kind() string { return "incomeTaxed" }

// ShortTermGainsTaxed records tax owed on gains from lots held under a year.
type ShortTermGainsTaxed struct {
	Gain    float64
	Federal float64
	State   float64
}

func (ShortTermGainsTaxed) kind() string { return "shortTermGainsTaxed" }

// LongTermGainsTaxed records tax owed on gains from lots held a year or more.
type LongTermGainsTaxed struct {
	Gain    float64
	Federal float64
	State   float64
}

func (LongTermGainsTaxed) kind() string { return "longTermGainsTaxed" }

// EarlyWithdrawalPenalty records the penalty levied on a tax-deferred
// withdrawal taken below age 59½.
type EarlyWithdrawalPenalty struct {
	Gross   float64
	Penalty float64
	Rate    float64
}

func (EarlyWithdrawalPenalty) kind() string { return "earlyWithdrawalPenalty" }

// TaxFreeWithdrawal records the gross taken out of a tax-free account, which
// owes nothing but still counts toward the year's summary.
type TaxFreeWithdrawal struct {
	Gross float64
}

func (TaxFreeWithdrawal) kind() string { return "taxFreeWithdrawal" }

// --- Plan Events ---

// EventTriggered marks a plan event firing.
type EventTriggered struct {
	Event EventID
}

func (EventTriggered) kind() string { return "eventTriggered" }

// EventPaused marks a repeating event being paused.
type EventPaused struct {
	Event EventID
}

func (EventPaused) kind() string { return "eventPaused" }

// EventResumed marks a paused event being re-armed.
type EventResumed struct {
	Event EventID
}

func (EventResumed) kind() string { return "eventResumed" }

// EventTerminated marks an event being permanently disabled.
type EventTerminated struct {
	Event EventID
}

func (EventTerminated) kind() string { return "eventTerminated" }

// --- Distributions ---

// RmdWithdrawal records a required minimum distribution: how it was sized
// and what was actually withdrawn.
type RmdWithdrawal struct {
	Account          AccountID
	Age              int
	PriorYearBalance float64
	Divisor          float64
	Required         float64
	Actual           float64
}

func (RmdWithdrawal) kind() string { return "rmdWithdrawal" }

// EventAccount returns the account a state event touches, if any.
func EventAccount(ev StateEvent) (AccountID, bool) {
	switch e := ev.(type) {
	case AccountCreated:
		return e.Account.ID, true
	case AccountDeleted:
		return e.Account, true
	case CashCredit:
		return e.To, true
	case CashDebit:
		return e.From, true
	case CashAppreciation:
		return e.Account, true
	case LiabilityInterest:
		return e.Account, true
	case BalanceAdjusted:
		return e.Account, true
	case AssetPurchased:
		return e.Account, true
	case AssetSold:
		return e.Account, true
	case RmdWithdrawal:
		return e.Account, true
	}
	return "", false
}

// ManagedEvent returns the plan event an activation entry refers to, if any.
func ManagedEvent(ev StateEvent) (EventID, bool) {
	switch e := ev.(type) {
	case EventTriggered:
		return e.Event, true
	case EventPaused:
		return e.Event, true
	case EventResumed:
		return e.Event, true
	case EventTerminated:
		return e.Event, true
	}
	return NoEvent, false
}

// CashFlowKind classifies why cash moved. The yearly cash-flow summaries
// group credits and debits by it.
type CashFlowKind int

const (
	FlowIncome CashFlowKind = iota
	FlowExpense
	FlowContribution
	FlowInvestmentPurchase
	FlowTransfer
	FlowLiquidationProceeds
	FlowRmdWithdrawal
)

func (k CashFlowKind) String() string {
	switch k {
	case FlowIncome:
		return "income"
	case FlowExpense:
		return "expense"
	case FlowContribution:
		return "contribution"
	case FlowInvestmentPurchase:
		return "investmentPurchase"
	case FlowTransfer:
		return "transfer"
	case FlowLiquidationProceeds:
		return "liquidationProceeds"
	case FlowRmdWithdrawal:
		return "rmdWithdrawal"
	}
	return fmt.Sprintf("CashFlowKind(%d)", int(k))
}

// ParseCashFlowKind converts a string back into a CashFlowKind.
func ParseCashFlowKind(s string) (CashFlowKind, error) {
	for k := FlowIncome; k <= FlowRmdWithdrawal; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown cash flow kind %q", s)
}

func (k CashFlowKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}
