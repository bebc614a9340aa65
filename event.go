package foresight

import "fmt"

// RepeatInterval is how often a repeating trigger fires, and doubles as the
// window of a contribution limit.
type RepeatInterval int

const (
	Never RepeatInterval = iota
	Weekly
	BiWeekly
	Monthly
	Quarterly
	Yearly
)

func (r RepeatInterval) String() string {
	switch r {
	case Never:
		return "never"
	case Weekly:
		return "weekly"
	case BiWeekly:
		return "biweekly"
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	default:
		return "unknown"
	}
}

// Next returns the due date one interval after d. Month and year steps clamp
// the day, so a Jan 31 monthly schedule lands on Feb 28/29 then Mar 31.
func (r RepeatInterval) Next(d Date) Date {
	switch r {
	case Weekly:
		return d.AddDays(7)
	case BiWeekly:
		return d.AddDays(14)
	case Monthly:
		return d.AddMonths(1)
	case Quarterly:
		return d.AddMonths(3)
	case Yearly:
		return d.AddYears(1)
	}
	return d
}

// LimitPeriod is how a cumulative flow limit resets.
type LimitPeriod int

const (
	// LimitYearly resets the accumulator every calendar year.
	LimitYearly LimitPeriod = iota
	// LimitLifetime never resets.
	LimitLifetime
)

// FlowLimits caps the cumulative amount an event may move (IRS-style
// contribution ceilings expressed on the event rather than the account).
type FlowLimits struct {
	Limit  float64
	Period LimitPeriod
}

// CostBasisMethod defines the method for selecting which lots a sale consumes,
// which drives the realized cost basis and gains.
type CostBasisMethod int

const (
	// FIFO (First-In, First-Out) sells the oldest lots first.
	FIFO CostBasisMethod = iota
	// LIFO (Last-In, First-Out) sells the newest lots first.
	LIFO
	// HighestCost sells the most expensive lots first (minimizes realized gains).
	HighestCost
	// LowestCost sells the cheapest lots first (realizes gains early).
	LowestCost
	// AverageCost blends all lots into a single per-unit basis (mutual funds).
	AverageCost
)

func (m CostBasisMethod) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case HighestCost:
		return "highest-cost"
	case LowestCost:
		return "lowest-cost"
	case AverageCost:
		return "average"
	default:
		return "unknown"
	}
}

// ParseCostBasisMethod parses a string into a CostBasisMethod.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch s {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	case "highest-cost":
		return HighestCost, nil
	case "lowest-cost":
		return LowestCost, nil
	case "average":
		return AverageCost, nil
	default:
		return 0, fmt.Errorf("unknown cost basis method: %q", s)
	}
}

// AmountMode says whether a transfer amount is before or after taxes.
type AmountMode int

const (
	// Net is the amount actually received after taxes; the gross is
	// back-calculated. This is the zero value.
	Net AmountMode = iota
	// Gross is the amount before taxes; taxes are deducted from it.
	Gross
)

func (m AmountMode) String() string {
	if m == Gross {
		return "gross"
	}
	return "net"
}

// IncomeType says whether an income deposit is subject to income tax.
type IncomeType int

const (
	TaxableIncome IncomeType = iota
	TaxFreeIncome
)

// WithdrawalOrder is a pre-defined priority for picking accounts to
// liquidate from.
type WithdrawalOrder int

const (
	// TaxEfficientEarly drains taxable accounts first, then tax-deferred,
	// then tax-free. The default.
	TaxEfficientEarly WithdrawalOrder = iota
	// TaxDeferredFirst fills low tax brackets with deferred withdrawals.
	TaxDeferredFirst
	// TaxFreeFirst is rarely optimal but available.
	TaxFreeFirst
	// ProRata withdraws from all accounts proportionally to their value.
	ProRata
	// PenaltyAware keeps tax-deferred accounts last while below the early
	// withdrawal age, then behaves like TaxEfficientEarly.
	PenaltyAware
)

// WithdrawalSources selects where a Sweep takes its money from.
// A nil value means Strategy{Order: TaxEfficientEarly}.
type WithdrawalSources interface{ withdrawalSources() }

// SingleAsset liquidates one specific position.
type SingleAsset AssetCoord

// SingleAccount liquidates within one account only.
type SingleAccount AccountID

// Custom lists positions in explicit priority order.
type Custom []AssetCoord

// Strategy selects all non-excluded investment accounts in a pre-defined
// order.
type Strategy struct {
	Order   WithdrawalOrder
	Exclude []AccountID
}

func (SingleAsset) withdrawalSources()   {}
func (SingleAccount) withdrawalSources() {}
func (Custom) withdrawalSources()        {}
func (Strategy) withdrawalSources()      {}

// TriggerOffset shifts a date by whole days, months and years. Month and
// year steps clamp the day to the end of the target month.
type TriggerOffset struct {
	Days   int
	Months int
	Years  int
}

// AddTo applies the offset to a date, years then months then days.
func (o TriggerOffset) AddTo(d Date) Date {
	if o.Years != 0 {
		d = d.AddYears(o.Years)
	}
	if o.Months != 0 {
		d = d.AddMonths(o.Months)
	}
	if o.Days != 0 {
		d = d.AddDays(o.Days)
	}
	return d
}

// Threshold is a one-sided balance condition, built with AtLeast or AtMost.
type Threshold struct {
	op    thresholdOp
	value float64
}

type thresholdOp int

const (
	atLeast thresholdOp = iota
	atMost
)

// AtLeast is true for balances greater than or equal to v.
func AtLeast(v float64) Threshold { return Threshold{op: atLeast, value: v} }

// AtMost is true for balances less than or equal to v.
func AtMost(v float64) Threshold { return Threshold{op: atMost, value: v} }

// Value returns the threshold's boundary value.
func (t Threshold) Value() float64 { return t.value }

// Evaluate reports whether the balance satisfies the threshold.
func (t Threshold) Evaluate(balance float64) bool {
	if t.op == atMost {
		return balance <= t.value
	}
	return balance >= t.value
}

func (t Threshold) String() string {
	if t.op == atMost {
		return fmt.Sprintf("<= %.2f", t.value)
	}
	return fmt.Sprintf(">= %.2f", t.value)
}

// Trigger is the closed set of conditions that can fire an event. Conditions
// are levels, not edges: each one holds for as long as it is satisfied, and
// an event without Once fires at every evaluation while its trigger holds.
type Trigger interface{ trigger() }

// DateTrigger holds from its date onward. The clock lands on the date
// exactly, so the first firing happens on the day itself.
type DateTrigger struct {
	On Date
}

// AgeTrigger holds from the moment the person reaches the given age. Months
// defaults to zero: AgeTrigger{Years: 65} holds from the 65th birthday.
type AgeTrigger struct {
	Years  int
	Months int
}

// RelativeToEvent holds from a fixed offset after another event's trigger
// date. It stays false until the referenced event has fired.
type RelativeToEvent struct {
	Event  EventID
	Offset TriggerOffset
}

// AccountBalance holds while an account's total value satisfies the
// threshold.
type AccountBalance struct {
	Account   AccountID
	Threshold Threshold
}

// AssetBalance holds while one position's value satisfies the threshold.
type AssetBalance struct {
	Coord     AssetCoord
	Threshold Threshold
}

// NetWorth holds while total net worth satisfies the threshold.
type NetWorth struct {
	Threshold Threshold
}

// And is true when every child is true. An empty And is vacuously true.
type And []Trigger

// Or is true when any child is true. An empty Or is vacuously false.
type Or []Trigger

// Repeating fires on a schedule. Start (optional) arms the schedule the
// first time it evaluates true; End (optional) disarms it permanently.
type Repeating struct {
	Interval RepeatInterval
	Start    Trigger
	End      Trigger
}

// Manual never fires on its own; only a TriggerEvent effect can fire it.
type Manual struct{}

func (DateTrigger) trigger()     {}
func (AgeTrigger) trigger()      {}
func (RelativeToEvent) trigger() {}
func (AccountBalance) trigger()  {}
func (AssetBalance) trigger()    {}
func (NetWorth) trigger()        {}
func (And) trigger()             {}
func (Or) trigger()              {}
func (Repeating) trigger()       {}
func (Manual) trigger()          {}

// TransferAmount is an arithmetic expression resolved against the simulation
// state at the moment an effect applies. Build trees with the constructors
// below: Min(Fixed(1000), SourceBalance) moves at most $1000.
type TransferAmount interface{ transferAmount() }

type fixedAmount float64
type sourceBalanceAmount struct{}
type zeroTargetAmount struct{}
type targetToAmount float64
type assetBalanceAmount AssetCoord
type accountTotalAmount AccountID
type accountCashAmount AccountID

type binaryAmount struct {
	op   amountOp
	l, r TransferAmount
}

type amountOp int

const (
	amountMin amountOp = iota
	amountMax
	amountAdd
	amountSub
	amountMul
)

func (fixedAmount) transferAmount()         {}
func (sourceBalanceAmount) transferAmount() {}
func (zeroTargetAmount) transferAmount()    {}
func (targetToAmount) transferAmount()      {}
func (assetBalanceAmount) transferAmount()  {}
func (accountTotalAmount) transferAmount()  {}
func (accountCashAmount) transferAmount()   {}
func (binaryAmount) transferAmount()        {}

// Fixed is a fixed dollar amount.
func Fixed(v float64) TransferAmount { return fixedAmount(v) }

// SourceBalance resolves to the entire balance of the transfer's source.
var SourceBalance TransferAmount = sourceBalanceAmount{}

// ZeroTargetBalance resolves to the amount that brings the target to zero
// (pays off a liability).
var ZeroTargetBalance TransferAmount = zeroTargetAmount{}

// TargetToBalance resolves to the top-up that brings the target to v, never
// negative.
func TargetToBalance(v float64) TransferAmount { return targetToAmount(v) }

// BalanceOfAsset references the current value of one position.
func BalanceOfAsset(c AssetCoord) TransferAmount { return assetBalanceAmount(c) }

// BalanceOfAccount references an account's total value.
func BalanceOfAccount(id AccountID) TransferAmount { return accountTotalAmount(id) }

// CashOfAccount references an account's cash sub-balance.
func CashOfAccount(id AccountID) TransferAmount { return accountCashAmount(id) }

// Min resolves to the smaller of two amounts.
func Min(l, r TransferAmount) TransferAmount { return binaryAmount{amountMin, l, r} }

// Max resolves to the larger of two amounts.
func Max(l, r TransferAmount) TransferAmount { return binaryAmount{amountMax, l, r} }

// Add resolves to l + r.
func Add(l, r TransferAmount) TransferAmount { return binaryAmount{amountAdd, l, r} }

// Sub resolves to l - r.
func Sub(l, r TransferAmount) TransferAmount { return binaryAmount{amountSub, l, r} }

// Mul resolves to l * r.
func Mul(l, r TransferAmount) TransferAmount { return binaryAmount{amountMul, l, r} }

// UpTo moves the lesser of a fixed amount and the available source balance.
func UpTo(amount float64) TransferAmount { return Min(Fixed(amount), SourceBalance) }

// ExcessAbove moves everything above a reserve kept in the source.
func ExcessAbove(reserve float64) TransferAmount {
	return Max(Fixed(0), Sub(SourceBalance, Fixed(reserve)))
}

// Effect is the closed set of actions an event applies when it fires.
// Effects run in declared order.
type Effect interface{ effect() }

// Income deposits money from outside the plan.
type Income struct {
	To     AccountID
	Amount TransferAmount
	Mode   AmountMode // Gross salary vs take-home pay
	Type   IncomeType
}

// Expense pays money out of the plan.
type Expense struct {
	From   AccountID
	Amount TransferAmount
}

// AssetPurchase buys an asset with cash. Source and destination may be
// different accounts; a cross-account purchase into a limited account counts
// against its contribution room.
type AssetPurchase struct {
	From   AccountID
	To     AssetCoord
	Amount TransferAmount
}

// AssetSale liquidates assets into the same account's cash balance.
// An empty Asset liquidates across all assets in the account. Net proceeds
// stay put; combine with CashTransfer to move them.
type AssetSale struct {
	From   AccountID
	Asset  AssetID // empty = any asset in the account
	Amount TransferAmount
	Mode   AmountMode
	Method CostBasisMethod
}

// Sweep liquidates from the selected sources and transfers the net proceeds
// to another account in one step (the shape of an RMD or a rebalance).
type Sweep struct {
	Sources WithdrawalSources // nil = tax-efficient strategy over all accounts
	To      AccountID
	Amount  TransferAmount
	Mode    AmountMode
	Method  CostBasisMethod
	Type    IncomeType
}

// CashTransfer moves cash between two accounts. When the destination is a
// liability the transfer pays down its principal.
type CashTransfer struct {
	From   AccountID
	To     AccountID
	Amount TransferAmount
}

// AdjustBalance changes an account's balance directly: positive adds cash or
// debt, negative removes it. Liability and property balances clamp at zero.
type AdjustBalance struct {
	Account AccountID
	Amount  TransferAmount
}

// CreateAccount adds a new account mid-simulation.
type CreateAccount struct {
	Account Account
}

// DeleteAccount removes an account and everything in it.
type DeleteAccount struct {
	Account AccountID
}

// TriggerEvent enqueues another event to fire on the same date. The target
// fires after the current event's effects complete, never inline.
type TriggerEvent struct {
	Event EventID
}

// PauseEvent suspends a repeating event and clears its next due date.
type PauseEvent struct {
	Event EventID
}

// ResumeEvent re-arms a paused repeating event starting today.
type ResumeEvent struct {
	Event EventID
}

// TerminateEvent disables an event permanently.
type TerminateEvent struct {
	Event EventID
}

// ApplyRmd sweeps the required minimum distribution out of every eligible
// tax-deferred account into the destination account.
type ApplyRmd struct {
	To     AccountID
	Method CostBasisMethod
}

func (Income) effect()         {}
func (Expense) effect()        {}
func (AssetPurchase) effect()  {}
func (AssetSale) effect()      {}
func (Sweep) effect()          {}
func (CashTransfer) effect()   {}
func (AdjustBalance) effect()  {}
func (CreateAccount) effect()  {}
func (DeleteAccount) effect()  {}
func (TriggerEvent) effect()   {}
func (PauseEvent) effect()     {}
func (ResumeEvent) effect()    {}
func (TerminateEvent) effect() {}
func (ApplyRmd) effect()       {}

// Event pairs a trigger with the effects to apply when it fires. The ID is
// the event's index in the plan; all mutable scheduling state (next due
// date, triggered flag, pause state) lives in the simulation state, never
// here.
type Event struct {
	ID      EventID
	Name    string // optional label for reports
	Trigger Trigger
	Effects []Effect
	// Once limits the event to a single firing.
	Once bool
	// Limits caps the cumulative flow this event may move.
	Limits *FlowLimits
}

// Validate checks the event definition for structural problems.
func (e *Event) Validate() error {
	if e.ID < 0 {
		return fmt.Errorf("event %q has a negative id", e.Name)
	}
	if e.Trigger == nil {
		return fmt.Errorf("event %s has no trigger", e.ID)
	}
	return nil
}

// IsRepeating reports whether the event's trigger is a schedule.
func (e *Event) IsRepeating() bool {
	_, ok := e.Trigger.(Repeating)
	return ok
}
