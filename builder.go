package foresight

import (
	"errors"
	"fmt"
	"time"
)

// PlanBuilder assembles a SimulationConfig step by step: declare assets and
// accounts by name, attach positions, then describe the money movements as
// fluent event specs. Build resolves every name reference, assigns dense
// event ids in declaration order and validates the result.
//
//	config, err := NewPlan().
//		Start(2025, time.January, 1).
//		Years(30).
//		Born(1980, time.June, 15).
//		Asset(USTotalMarket("vti").Price(250)).
//		Account(BankAccount("checking").Cash(10_000)).
//		Account(Brokerage("broker").Cash(5_000)).
//		Position("broker", "vti", 200, 40_000).
//		Event(IncomeEvent("salary").To("checking").Amount(8_000).Monthly().UntilAge(65)).
//		Event(ExpenseEvent("rent").From("checking").Amount(2_500).Monthly()).
//		Build()
type PlanBuilder struct {
	config    SimulationConfig
	positions []pendingPosition
	events    []EventSpec
	eventIDs  map[string]EventID
	errs      []error
}

type pendingPosition struct {
	account   AccountID
	asset     AssetID
	units     float64
	costBasis float64
	purchased Date // zero = the plan's start date
}

// NewPlan starts an empty plan.
func NewPlan() *PlanBuilder {
	return &PlanBuilder{
		config: SimulationConfig{
			ReturnProfiles: make(map[ProfileID]ReturnProfile),
			AssetReturns:   make(map[AssetID]ProfileID),
			AssetPrices:    make(map[AssetID]float64),
		},
		eventIDs: make(map[string]EventID),
	}
}

// Start sets the first simulated day.
func (b *PlanBuilder) Start(year int, month time.Month, day int) *PlanBuilder {
	return b.StartOn(NewDate(year, month, day))
}

// StartOn sets the first simulated day from a Date.
func (b *PlanBuilder) StartOn(d Date) *PlanBuilder {
	b.config.StartDate = d
	return b
}

// Years sets how long to simulate.
func (b *PlanBuilder) Years(n int) *PlanBuilder {
	b.config.DurationYears = n
	return b
}

// Born sets the birth date anchoring age triggers and RMD schedules.
func (b *PlanBuilder) Born(year int, month time.Month, day int) *PlanBuilder {
	return b.BornOn(NewDate(year, month, day))
}

// BornOn sets the birth date from a Date.
func (b *PlanBuilder) BornOn(d Date) *PlanBuilder {
	b.config.BirthDate = d
	return b
}

// Inflation sets a fixed yearly inflation rate.
func (b *PlanBuilder) Inflation(rate float64) *PlanBuilder {
	return b.InflationProfile(FixedReturn(rate))
}

// InflationProfile sets the distribution inflation is sampled from.
func (b *PlanBuilder) InflationProfile(p ReturnProfile) *PlanBuilder {
	b.config.Inflation = p
	return b
}

// Taxes sets the bracket and rate configuration.
func (b *PlanBuilder) Taxes(tc TaxConfig) *PlanBuilder {
	b.config.TaxConfig = tc
	return b
}

// ReturnProfile registers a named profile that assets and cash balances can
// reference.
func (b *PlanBuilder) ReturnProfile(id ProfileID, p ReturnProfile) *PlanBuilder {
	b.config.ReturnProfiles[id] = p
	return b
}

// Asset registers an asset: its starting price and, when one is declared,
// the return profile that moves it.
func (b *PlanBuilder) Asset(spec AssetSpec) *PlanBuilder {
	b.config.AssetPrices[spec.id] = spec.price
	switch {
	case spec.profile != "":
		b.config.AssetReturns[spec.id] = spec.profile
	case spec.returns != nil:
		// Inline profile: registered under the asset's own name.
		p := ProfileID(spec.id)
		b.config.ReturnProfiles[p] = spec.returns
		b.config.AssetReturns[spec.id] = p
	}
	return b
}

// Account adds an account to the opening portfolio.
func (b *PlanBuilder) Account(spec AccountSpec) *PlanBuilder {
	b.config.Accounts = append(b.config.Accounts, spec.account.Clone())
	return b
}

// Bank adds a bank account holding the given cash.
func (b *PlanBuilder) Bank(id AccountID, cash float64) *PlanBuilder {
	return b.Account(BankAccount(id).Cash(cash))
}

// Position adds a holding to an investment account, dated at the plan's
// start.
func (b *PlanBuilder) Position(account AccountID, asset AssetID, units, costBasis float64) *PlanBuilder {
	b.positions = append(b.positions, pendingPosition{
		account: account, asset: asset, units: units, costBasis: costBasis,
	})
	return b
}

// PositionSince adds a holding purchased on a specific date, which is what
// decides short-term versus long-term treatment when it is sold.
func (b *PlanBuilder) PositionSince(account AccountID, asset AssetID, units, costBasis float64, purchased Date) *PlanBuilder {
	b.positions = append(b.positions, pendingPosition{
		account: account, asset: asset, units: units, costBasis: costBasis, purchased: purchased,
	})
	return b
}

// Event adds an event spec. Ids are assigned densely in declaration order,
// so the first event is id 0. Named events can be referenced by later specs
// through After and looked up with EventID.
func (b *PlanBuilder) Event(spec EventSpec) *PlanBuilder {
	id := EventID(len(b.events))
	if spec.name != "" {
		if _, dup := b.eventIDs[spec.name]; dup {
			b.errs = append(b.errs, fmt.Errorf("duplicate event name %q", spec.name))
		} else {
			b.eventIDs[spec.name] = id
		}
	}
	b.events = append(b.events, spec)
	return b
}

// MonthlyIncome adds a gross taxable income arriving every month.
func (b *PlanBuilder) MonthlyIncome(name string, to AccountID, amount float64) *PlanBuilder {
	return b.Event(IncomeEvent(name).To(to).Amount(amount).Gross().Monthly())
}

// MonthlyExpense adds an expense paid every month.
func (b *PlanBuilder) MonthlyExpense(name string, from AccountID, amount float64) *PlanBuilder {
	return b.Event(ExpenseEvent(name).From(from).Amount(amount).Monthly())
}

// EventID looks up the id assigned to a named event added so far. Control
// effects (TriggerEvent, PauseEvent, ...) take ids, so specs targeting an
// earlier event resolve it here.
func (b *PlanBuilder) EventID(name string) (EventID, bool) {
	id, ok := b.eventIDs[name]
	return id, ok
}

// Build resolves every pending reference and returns the validated config.
func (b *PlanBuilder) Build() (SimulationConfig, error) {
	if len(b.errs) > 0 {
		return SimulationConfig{}, errors.Join(b.errs...)
	}
	cfg := b.config.normalized()

	// Named profile references must exist before the market is built.
	for _, id := range sortedKeys(cfg.AssetReturns) {
		if _, ok := cfg.ReturnProfiles[cfg.AssetReturns[id]]; !ok {
			return SimulationConfig{}, fmt.Errorf("asset %q: %w: %q", id, ErrProfileNotFound, cfg.AssetReturns[id])
		}
	}

	// Positions attach to clones so the builder stays reusable after Build.
	accounts := make([]Account, len(cfg.Accounts))
	for i, a := range cfg.Accounts {
		accounts[i] = a.Clone()
		if inv, ok := accounts[i].Kind.(*Investment); ok {
			for j := range inv.Lots {
				if inv.Lots[j].PurchaseDate.IsZero() {
					inv.Lots[j].PurchaseDate = cfg.StartDate
				}
			}
		}
	}
	cfg.Accounts = accounts

	for _, pos := range b.positions {
		idx := -1
		for i := range cfg.Accounts {
			if cfg.Accounts[i].ID == pos.account {
				idx = i
				break
			}
		}
		if idx < 0 {
			return SimulationConfig{}, fmt.Errorf("position %s/%s: %w", pos.account, pos.asset, ErrAccountNotFound)
		}
		inv, ok := cfg.Accounts[idx].Kind.(*Investment)
		if !ok {
			return SimulationConfig{}, fmt.Errorf("position %s/%s: %w", pos.account, pos.asset, ErrNotInvestment)
		}
		purchased := pos.purchased
		if purchased.IsZero() {
			purchased = cfg.StartDate
		}
		inv.Lots = append(inv.Lots, AssetLot{
			Asset:        pos.asset,
			PurchaseDate: purchased,
			Units:        pos.units,
			CostBasis:    pos.costBasis,
		})
	}

	for i, spec := range b.events {
		event, err := spec.resolve(EventID(i), cfg.StartDate, b.eventIDs)
		if err != nil {
			return SimulationConfig{}, err
		}
		cfg.Events = append(cfg.Events, event)
	}

	if err := cfg.Validate(); err != nil {
		return SimulationConfig{}, err
	}
	return cfg, nil
}

// --- Asset specs ---

// AssetSpec declares an asset: a starting price and optionally the return
// profile that moves it. Assets without returns keep a static price.
type AssetSpec struct {
	id      AssetID
	price   float64
	profile ProfileID
	returns ReturnProfile
}

// NewAsset declares an asset starting at $1.00 with a static price.
func NewAsset(id AssetID) AssetSpec {
	return AssetSpec{id: id, price: 1}
}

// USTotalMarket is a broad US equity fund at its rough historical average.
func USTotalMarket(id AssetID) AssetSpec {
	return NewAsset(id).Returns(FixedReturn(0.10))
}

// InternationalStock is a developed-markets equity fund.
func InternationalStock(id AssetID) AssetSpec {
	return NewAsset(id).Returns(FixedReturn(0.08))
}

// TotalBond is a broad bond fund.
func TotalBond(id AssetID) AssetSpec {
	return NewAsset(id).Returns(FixedReturn(0.04))
}

// MoneyMarket is a cash-equivalent fund.
func MoneyMarket(id AssetID) AssetSpec {
	return NewAsset(id).Returns(FixedReturn(0.04))
}

// Price sets the starting price per unit.
func (a AssetSpec) Price(p float64) AssetSpec {
	a.price = p
	return a
}

// Returns binds the asset to an inline return profile.
func (a AssetSpec) Returns(p ReturnProfile) AssetSpec {
	a.returns = p
	return a
}

// Profile binds the asset to a named profile registered on the plan.
func (a AssetSpec) Profile(id ProfileID) AssetSpec {
	a.profile = id
	return a
}

// --- Account specs ---

// AccountSpec declares one account of the opening portfolio.
type AccountSpec struct {
	account Account
}

// BankAccount is a checking or savings account.
func BankAccount(id AccountID) AccountSpec {
	return AccountSpec{account: Account{ID: id, Kind: &Bank{}}}
}

// Brokerage is a taxable investment account.
func Brokerage(id AccountID) AccountSpec {
	return investmentSpec(id, Taxable)
}

// Traditional401k is a tax-deferred workplace retirement account.
func Traditional401k(id AccountID) AccountSpec {
	return investmentSpec(id, TaxDeferred)
}

// TraditionalIRA is a tax-deferred individual retirement account.
func TraditionalIRA(id AccountID) AccountSpec {
	return investmentSpec(id, TaxDeferred)
}

// Roth401k is a tax-free workplace retirement account.
func Roth401k(id AccountID) AccountSpec {
	return investmentSpec(id, TaxFree)
}

// RothIRA is a tax-free individual retirement account.
func RothIRA(id AccountID) AccountSpec {
	return investmentSpec(id, TaxFree)
}

// HSA is a health savings account, modelled tax-free.
func HSA(id AccountID) AccountSpec {
	return investmentSpec(id, TaxFree)
}

func investmentSpec(id AccountID, status TaxStatus) AccountSpec {
	return AccountSpec{account: Account{ID: id, Kind: &Investment{TaxStatus: status}}}
}

// PropertyAccount is a real-estate holding carried at the asset's value.
func PropertyAccount(id AccountID, asset AssetID, value float64) AccountSpec {
	return AccountSpec{account: Account{ID: id, Kind: &Property{Asset: asset, Value: value}}}
}

// Mortgage is a loan liability accruing at the given yearly rate.
func Mortgage(id AccountID, principal, rate float64) AccountSpec {
	return Loan(id, principal, rate)
}

// StudentLoan is a loan liability accruing at the given yearly rate.
func StudentLoan(id AccountID, principal, rate float64) AccountSpec {
	return Loan(id, principal, rate)
}

// Loan is a generic liability accruing at the given yearly rate.
func Loan(id AccountID, principal, rate float64) AccountSpec {
	return AccountSpec{account: Account{ID: id, Kind: &Liability{Principal: principal, Rate: rate}}}
}

// Cash sets the cash balance of a bank or investment account.
func (a AccountSpec) Cash(amount float64) AccountSpec {
	switch k := a.account.Kind.(type) {
	case *Bank:
		k.Cash.Value = amount
	case *Investment:
		k.Cash.Value = amount
	}
	return a
}

// CashProfile binds the account's cash to a named return profile, so idle
// cash earns interest.
func (a AccountSpec) CashProfile(id ProfileID) AccountSpec {
	switch k := a.account.Kind.(type) {
	case *Bank:
		k.Cash.Profile = id
	case *Investment:
		k.Cash.Profile = id
	}
	return a
}

// Holding adds a position dated at the plan's start.
func (a AccountSpec) Holding(asset AssetID, units, costBasis float64) AccountSpec {
	return a.HoldingSince(asset, units, costBasis, Date{})
}

// HoldingSince adds a position purchased on a specific date.
func (a AccountSpec) HoldingSince(asset AssetID, units, costBasis float64, purchased Date) AccountSpec {
	if inv, ok := a.account.Kind.(*Investment); ok {
		inv.Lots = append(inv.Lots, AssetLot{
			Asset:        asset,
			PurchaseDate: purchased,
			Units:        units,
			CostBasis:    costBasis,
		})
	}
	return a
}

// Limit caps contributions into an investment account per period.
func (a AccountSpec) Limit(amount float64, period RepeatInterval) AccountSpec {
	if inv, ok := a.account.Kind.(*Investment); ok {
		inv.Limit = &ContributionLimit{Amount: amount, Period: period}
	}
	return a
}

// --- Event specs ---

type eventKind int

const (
	kindCustom eventKind = iota
	kindIncome
	kindExpense
	kindPurchase
	kindWithdrawal
)

// EventSpec declares one event fluently: what kind of money movement, how
// much, and when. An unspecified trigger fires once at the plan's start;
// adding an interval turns any spec into a schedule.
type EventSpec struct {
	name   string
	kind   eventKind
	once   bool
	limits *FlowLimits

	to      AccountID
	from    AccountID
	coord   AssetCoord
	amount  TransferAmount
	mode    AmountMode
	income  IncomeType
	method  CostBasisMethod
	sources WithdrawalSources

	trigger  Trigger
	interval RepeatInterval
	start    Trigger
	end      Trigger
	after    string
	offset   TriggerOffset

	effects []Effect
}

// IncomeEvent declares money arriving from outside the plan, gross and
// taxable unless changed.
func IncomeEvent(name string) EventSpec {
	return EventSpec{name: name, kind: kindIncome, amount: Fixed(0), mode: Gross}
}

// ExpenseEvent declares money leaving the plan.
func ExpenseEvent(name string) EventSpec {
	return EventSpec{name: name, kind: kindExpense, amount: Fixed(0)}
}

// PurchaseEvent declares buying an asset with cash.
func PurchaseEvent(name string) EventSpec {
	return EventSpec{name: name, kind: kindPurchase, amount: Fixed(0)}
}

// WithdrawalEvent declares liquidating holdings and moving the proceeds to
// a destination account. Defaults: net amount, FIFO lots, tax-efficient
// source order over all accounts.
func WithdrawalEvent(name string) EventSpec {
	return EventSpec{name: name, kind: kindWithdrawal, amount: Fixed(0), mode: Net}
}

// CustomEvent declares an event from raw effects. Control effects take
// event ids, which the builder assigns in declaration order (see EventID).
func CustomEvent(name string, effects ...Effect) EventSpec {
	return EventSpec{name: name, kind: kindCustom, effects: effects}
}

// To sets the destination account for income and withdrawals.
func (e EventSpec) To(id AccountID) EventSpec {
	e.to = id
	return e
}

// From sets the source account for expenses and purchases.
func (e EventSpec) From(id AccountID) EventSpec {
	e.from = id
	return e
}

// Buy sets the purchased asset, landing in the source account.
func (e EventSpec) Buy(asset AssetID) EventSpec {
	e.coord = AssetCoord{Asset: asset}
	return e
}

// Into sets the purchased asset and the account it lands in, which may
// differ from the cash source (a payroll 401k purchase).
func (e EventSpec) Into(account AccountID, asset AssetID) EventSpec {
	e.coord = AssetCoord{Account: account, Asset: asset}
	return e
}

// Amount sets a fixed dollar amount.
func (e EventSpec) Amount(v float64) EventSpec {
	e.amount = Fixed(v)
	return e
}

// AmountOf sets a computed transfer amount.
func (e EventSpec) AmountOf(a TransferAmount) EventSpec {
	e.amount = a
	return e
}

// FullBalance moves whatever the source holds.
func (e EventSpec) FullBalance() EventSpec {
	e.amount = SourceBalance
	return e
}

// Gross marks the amount as before taxes.
func (e EventSpec) Gross() EventSpec {
	e.mode = Gross
	return e
}

// Net marks the amount as after taxes.
func (e EventSpec) Net() EventSpec {
	e.mode = Net
	return e
}

// TaxFree marks income as untaxed (gifts, Roth-style receipts).
func (e EventSpec) TaxFree() EventSpec {
	e.income = TaxFreeIncome
	return e
}

// Taxable marks income as ordinary taxable income.
func (e EventSpec) Taxable() EventSpec {
	e.income = TaxableIncome
	return e
}

// Lots sets which lots a withdrawal consumes first.
func (e EventSpec) Lots(m CostBasisMethod) EventSpec {
	e.method = m
	return e
}

// FromAccounts drains the named accounts in the given order.
func (e EventSpec) FromAccounts(ids ...AccountID) EventSpec {
	coords := make(Custom, len(ids))
	for i, id := range ids {
		coords[i] = AssetCoord{Account: id}
	}
	e.sources = coords
	return e
}

// FromAccount drains a single account only.
func (e EventSpec) FromAccount(id AccountID) EventSpec {
	e.sources = SingleAccount(id)
	return e
}

// OfAsset drains one specific position only.
func (e EventSpec) OfAsset(account AccountID, asset AssetID) EventSpec {
	e.sources = SingleAsset(AssetCoord{Account: account, Asset: asset})
	return e
}

// Strategy picks source accounts by a predefined priority.
func (e EventSpec) Strategy(order WithdrawalOrder) EventSpec {
	e.sources = Strategy{Order: order}
	return e
}

// Excluding removes accounts from a strategy's reach.
func (e EventSpec) Excluding(ids ...AccountID) EventSpec {
	s, ok := e.sources.(Strategy)
	if !ok {
		s = Strategy{}
	}
	s.Exclude = append(s.Exclude, ids...)
	e.sources = s
	return e
}

// On fires on a specific date.
func (e EventSpec) On(year int, month time.Month, day int) EventSpec {
	return e.OnDate(NewDate(year, month, day))
}

// OnDate fires on a specific date.
func (e EventSpec) OnDate(d Date) EventSpec {
	e.trigger = DateTrigger{On: d}
	return e
}

// AtAge fires on the birthday reaching the given age.
func (e EventSpec) AtAge(years int) EventSpec {
	e.trigger = AgeTrigger{Years: years}
	return e
}

// AtAgeMonths fires at the given age in years and months.
func (e EventSpec) AtAgeMonths(years, months int) EventSpec {
	e.trigger = AgeTrigger{Years: years, Months: months}
	return e
}

// After fires a fixed offset after the named event triggers. The name is
// resolved when the plan is built, so it may reference a later spec.
func (e EventSpec) After(name string, offset TriggerOffset) EventSpec {
	e.after = name
	e.offset = offset
	return e
}

// When fires on an explicit trigger, for anything the shorthand methods do
// not cover.
func (e EventSpec) When(t Trigger) EventSpec {
	e.trigger = t
	return e
}

// Once limits the event to a single firing.
func (e EventSpec) Once() EventSpec {
	e.once = true
	return e
}

// Weekly repeats the event every week.
func (e EventSpec) Weekly() EventSpec { return e.every(Weekly) }

// BiWeekly repeats the event every two weeks.
func (e EventSpec) BiWeekly() EventSpec { return e.every(BiWeekly) }

// Monthly repeats the event every month.
func (e EventSpec) Monthly() EventSpec { return e.every(Monthly) }

// Quarterly repeats the event every three months.
func (e EventSpec) Quarterly() EventSpec { return e.every(Quarterly) }

// Yearly repeats the event every year.
func (e EventSpec) Yearly() EventSpec { return e.every(Yearly) }

func (e EventSpec) every(interval RepeatInterval) EventSpec {
	e.interval = interval
	return e
}

// StartingOn delays the schedule until a date.
func (e EventSpec) StartingOn(d Date) EventSpec {
	return e.StartingWhen(DateTrigger{On: d})
}

// StartingAtAge delays the schedule until an age.
func (e EventSpec) StartingAtAge(years int) EventSpec {
	return e.StartingWhen(AgeTrigger{Years: years})
}

// StartingWhen delays the schedule until a condition holds.
func (e EventSpec) StartingWhen(t Trigger) EventSpec {
	e.start = t
	return e
}

// UntilDate stops the schedule at a date.
func (e EventSpec) UntilDate(d Date) EventSpec {
	return e.UntilWhen(DateTrigger{On: d})
}

// UntilAge stops the schedule at an age.
func (e EventSpec) UntilAge(years int) EventSpec {
	return e.UntilWhen(AgeTrigger{Years: years})
}

// UntilWhen stops the schedule once a condition holds.
func (e EventSpec) UntilWhen(t Trigger) EventSpec {
	e.end = t
	return e
}

// CapYearly limits how much the event may move per calendar year.
func (e EventSpec) CapYearly(amount float64) EventSpec {
	e.limits = &FlowLimits{Limit: amount, Period: LimitYearly}
	return e
}

// CapLifetime limits how much the event may move over the whole run.
func (e EventSpec) CapLifetime(amount float64) EventSpec {
	e.limits = &FlowLimits{Limit: amount, Period: LimitLifetime}
	return e
}

// resolve turns the accumulated definition into a concrete event.
func (e EventSpec) resolve(id EventID, start Date, ids map[string]EventID) (Event, error) {
	if e.trigger == nil && e.after == "" && e.interval == Never {
		// No timing at all resolves to a single firing at the start.
		e.once = true
	}
	trigger, err := e.resolveTrigger(start, ids)
	if err != nil {
		return Event{}, err
	}
	effects, err := e.resolveEffects()
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:      id,
		Name:    e.name,
		Trigger: trigger,
		Effects: effects,
		Once:    e.once,
		Limits:  e.limits,
	}, nil
}

func (e EventSpec) resolveTrigger(start Date, ids map[string]EventID) (Trigger, error) {
	base := e.trigger
	if e.after != "" {
		ref, ok := ids[e.after]
		if !ok {
			return nil, fmt.Errorf("event %q: after %q: %w", e.name, e.after, ErrEventNotFound)
		}
		base = RelativeToEvent{Event: ref, Offset: e.offset}
	}
	if e.interval == Never {
		if e.start != nil || e.end != nil {
			return nil, fmt.Errorf("event %q has schedule bounds but no repeat interval", e.name)
		}
		if base == nil {
			// No timing at all: fire once at the plan's start.
			base = DateTrigger{On: start}
		}
		return base, nil
	}
	cond := e.start
	if cond == nil {
		// A dated spec turned into a schedule starts on that date.
		cond = base
	}
	return Repeating{Interval: e.interval, Start: cond, End: e.end}, nil
}

func (e EventSpec) resolveEffects() ([]Effect, error) {
	switch e.kind {
	case kindIncome:
		if e.to == "" {
			return nil, fmt.Errorf("income event %q has no destination account", e.name)
		}
		return []Effect{Income{To: e.to, Amount: e.amount, Mode: e.mode, Type: e.income}}, nil
	case kindExpense:
		if e.from == "" {
			return nil, fmt.Errorf("expense event %q has no source account", e.name)
		}
		return []Effect{Expense{From: e.from, Amount: e.amount}}, nil
	case kindPurchase:
		if e.from == "" {
			return nil, fmt.Errorf("purchase event %q has no source account", e.name)
		}
		if e.coord.Asset == "" {
			return nil, fmt.Errorf("purchase event %q has no asset", e.name)
		}
		coord := e.coord
		if coord.Account == "" {
			coord.Account = e.from
		}
		return []Effect{AssetPurchase{From: e.from, To: coord, Amount: e.amount}}, nil
	case kindWithdrawal:
		if e.to == "" {
			return nil, fmt.Errorf("withdrawal event %q has no destination account", e.name)
		}
		return []Effect{Sweep{
			Sources: e.sources,
			To:      e.to,
			Amount:  e.amount,
			Mode:    e.mode,
			Method:  e.method,
			Type:    e.income,
		}}, nil
	}
	return e.effects, nil
}
