package foresight

import (
	"fmt"
	"math"
	"sort"
)

// --- Evaluated state changes ---

// evalEvent is one proposed state change produced by evaluating an effect.
// Evaluation is pure: it reads the state and returns the changes to make;
// the applier executes them and writes the ledger. Keeping the two phases
// apart means a failed evaluation leaves no partial mutation behind.
type evalEvent interface{ evalEvent() }

type evalCreateAccount struct{ account Account }

type evalDeleteAccount struct{ account AccountID }

type evalCashCredit struct {
	to     AccountID
	amount float64
	kind   CashFlowKind
}

type evalCashDebit struct {
	from   AccountID
	amount float64
	kind   CashFlowKind
}

// evalContribution books an amount against the account's contribution limit.
type evalContribution struct {
	account AccountID
	amount  float64
}

// evalFlow books an amount against the owning event's flow limits.
type evalFlow struct{ amount float64 }

type evalIncomeTax struct{ gross, federal, state float64 }

type evalShortTermTax struct{ gain, federal, state float64 }

type evalLongTermTax struct{ gain, federal, state float64 }

type evalPenaltyTax struct{ gross, penalty, rate float64 }

type evalTaxFree struct{ gross float64 }

type evalAddLot struct {
	to        AssetCoord
	units     float64
	costBasis float64
}

type evalSubtractLot struct {
	from      AssetCoord
	lotDate   Date
	units     float64
	costBasis float64
	proceeds  float64
	shortGain float64
	longGain  float64
}

type evalAdjustBalance struct {
	account AccountID
	delta   float64
}

type evalTriggerEvent struct{ event EventID }

type evalPauseEvent struct{ event EventID }

type evalResumeEvent struct{ event EventID }

type evalTerminateEvent struct{ event EventID }

// evalRecord carries a ready-made ledger fact through the applier unchanged.
type evalRecord struct{ event StateEvent }

func (evalCreateAccount) evalEvent()  {}
func (evalDeleteAccount) evalEvent()  {}
func (evalCashCredit) evalEvent()     {}
func (evalCashDebit) evalEvent()      {}
func (evalContribution) evalEvent()   {}
func (evalFlow) evalEvent()           {}
func (evalIncomeTax) evalEvent()      {}
func (evalShortTermTax) evalEvent()   {}
func (evalLongTermTax) evalEvent()    {}
func (evalPenaltyTax) evalEvent()     {}
func (evalTaxFree) evalEvent()        {}
func (evalAddLot) evalEvent()         {}
func (evalSubtractLot) evalEvent()    {}
func (evalAdjustBalance) evalEvent()  {}
func (evalTriggerEvent) evalEvent()   {}
func (evalPauseEvent) evalEvent()     {}
func (evalResumeEvent) evalEvent()    {}
func (evalTerminateEvent) evalEvent() {}
func (evalRecord) evalEvent()         {}

// creditTotal sums the cash credited by a list of changes.
func creditTotal(events []evalEvent) float64 {
	var total float64
	for _, ev := range events {
		if credit, ok := ev.(evalCashCredit); ok {
			total += credit.amount
		}
	}
	return total
}

// --- Transfer amount resolution ---

// transferSide is the endpoint a transfer reads a balance from: the outside
// world, an account's cash, or one position.
type transferSide interface{ transferSide() }

type externalSide struct{}
type cashSide AccountID
type assetSide AssetCoord

// debtSide reads a liability's outstanding principal: the amount that
// zeroes the debt.
type debtSide AccountID

func (externalSide) transferSide() {}
func (cashSide) transferSide()     {}
func (assetSide) transferSide()    {}
func (debtSide) transferSide()     {}

func sideBalance(side transferSide, s *SimulationState) (float64, error) {
	switch v := side.(type) {
	case cashSide:
		return s.cashBalance(AccountID(v))
	case assetSide:
		return s.AssetBalance(AssetCoord(v))
	case debtSide:
		a, ok := s.accounts[AccountID(v)]
		if !ok {
			return 0, fmt.Errorf("account %q: %w", AccountID(v), ErrAccountNotFound)
		}
		l, ok := a.Kind.(*Liability)
		if !ok {
			return 0, fmt.Errorf("account %q: %w", AccountID(v), ErrNotCashAccount)
		}
		return l.Principal, nil
	}
	return 0, ErrExternalBalance
}

// evaluateAmount resolves a TransferAmount expression against live balances.
// SourceBalance, ZeroTargetBalance and TargetToBalance read the transfer's
// own endpoints; referencing the external side's balance is an error.
func evaluateAmount(a TransferAmount, from, to transferSide, s *SimulationState) (float64, error) {
	switch v := a.(type) {
	case fixedAmount:
		return float64(v), nil
	case sourceBalanceAmount:
		return sideBalance(from, s)
	case zeroTargetAmount:
		return sideBalance(to, s)
	case targetToAmount:
		current, err := sideBalance(to, s)
		if err != nil {
			return 0, err
		}
		return max(0, float64(v)-current), nil
	case assetBalanceAmount:
		return s.AssetBalance(AssetCoord(v))
	case accountTotalAmount:
		return s.AccountBalance(AccountID(v))
	case accountCashAmount:
		return s.cashBalance(AccountID(v))
	case binaryAmount:
		l, err := evaluateAmount(v.l, from, to, s)
		if err != nil {
			return 0, err
		}
		r, err := evaluateAmount(v.r, from, to, s)
		if err != nil {
			return 0, err
		}
		switch v.op {
		case amountMin:
			return min(l, r), nil
		case amountMax:
			return max(l, r), nil
		case amountAdd:
			return l + r, nil
		case amountSub:
			return l - r, nil
		case amountMul:
			return l * r, nil
		}
	}
	return 0, fmt.Errorf("unknown transfer amount %T", a)
}

// --- Trigger evaluation ---

// triggerResult classifies one trigger evaluation.
type triggerResult int

const (
	notTriggered triggerResult = iota
	triggered
	// startRepeating fires a repeating event for the first time and arms
	// its schedule.
	startRepeating
	// repeatDue fires an armed repeating event and advances its schedule.
	repeatDue
	// stopRepeating disarms a repeating schedule without firing.
	stopRepeating
)

// triggerOutcome is the result of one trigger evaluation, with the due date
// carried by the schedule transitions.
type triggerOutcome struct {
	result triggerResult
	next   Date
}

// fires reports whether the outcome fires the event now.
func (o triggerOutcome) fires() bool {
	return o.result == triggered || o.result == startRepeating || o.result == repeatDue
}

// evaluateTrigger decides whether an event's trigger fires today. The id is
// the owning event's: composite triggers recurse with the same id, so
// termination and schedule state always follow the event, never a
// sub-condition. Balance conditions propagate lookup errors; the scheduler
// skips the event for that date.
func evaluateTrigger(id EventID, tr Trigger, s *SimulationState) (triggerOutcome, error) {
	if s.isTerminated(id) {
		return triggerOutcome{}, nil
	}

	switch t := tr.(type) {
	case DateTrigger:
		if s.current.Compare(t.On) >= 0 {
			return triggerOutcome{result: triggered}, nil
		}
		return triggerOutcome{}, nil

	case AgeTrigger:
		years, months := s.CurrentAge()
		if years > t.Years || (years == t.Years && months >= t.Months) {
			return triggerOutcome{result: triggered}, nil
		}
		return triggerOutcome{}, nil

	case RelativeToEvent:
		on, ok := s.triggeredOn(t.Event)
		if !ok {
			return triggerOutcome{}, nil
		}
		if s.current.Compare(t.Offset.AddTo(on)) >= 0 {
			return triggerOutcome{result: triggered}, nil
		}
		return triggerOutcome{}, nil

	case AccountBalance:
		balance, err := s.AccountBalance(t.Account)
		if err != nil {
			return triggerOutcome{}, err
		}
		if t.Threshold.Evaluate(balance) {
			return triggerOutcome{result: triggered}, nil
		}
		return triggerOutcome{}, nil

	case AssetBalance:
		balance, err := s.AssetBalance(t.Coord)
		if err != nil {
			return triggerOutcome{}, err
		}
		if t.Threshold.Evaluate(balance) {
			return triggerOutcome{result: triggered}, nil
		}
		return triggerOutcome{}, nil

	case NetWorth:
		if t.Threshold.Evaluate(s.NetWorth()) {
			return triggerOutcome{result: triggered}, nil
		}
		return triggerOutcome{}, nil

	case And:
		all := true
		for _, child := range t {
			out, err := evaluateTrigger(id, child, s)
			if err != nil {
				return triggerOutcome{}, err
			}
			all = all && out.result == triggered
		}
		if all {
			return triggerOutcome{result: triggered}, nil
		}
		return triggerOutcome{}, nil

	case Or:
		any := false
		for _, child := range t {
			out, err := evaluateTrigger(id, child, s)
			if err != nil {
				return triggerOutcome{}, err
			}
			any = any || out.result == triggered
		}
		if any {
			return triggerOutcome{result: triggered}, nil
		}
		return triggerOutcome{}, nil

	case Repeating:
		// The end condition wins over everything, including the start.
		if t.End != nil {
			out, err := evaluateTrigger(id, t.End, s)
			if err != nil {
				return triggerOutcome{}, err
			}
			if out.result == triggered {
				return triggerOutcome{result: stopRepeating}, nil
			}
		}
		switch s.repeatStatus(id) {
		case repeatNotStarted:
			met := true
			if t.Start != nil {
				out, err := evaluateTrigger(id, t.Start, s)
				if err != nil {
					return triggerOutcome{}, err
				}
				met = out.result == triggered
			}
			if met {
				// First firing is immediate; the schedule picks up from
				// one interval out.
				return triggerOutcome{result: startRepeating, next: t.Interval.Next(s.current)}, nil
			}
			return triggerOutcome{}, nil
		case repeatPaused:
			return triggerOutcome{}, nil
		}
		due, ok := s.nextDueDate(id)
		if !ok || s.current.Before(due) {
			return triggerOutcome{}, nil
		}
		// Advance from the due date, not from today, so a late evaluation
		// does not drift the schedule.
		return triggerOutcome{result: repeatDue, next: t.Interval.Next(due)}, nil

	case Manual:
		return triggerOutcome{}, nil
	}
	return triggerOutcome{}, fmt.Errorf("unknown trigger %T", tr)
}

// --- Effect evaluation ---

// evaluateEffect resolves one effect of a firing event into the state
// changes it implies, without mutating anything. The owning event is passed
// along for its flow limits; composite effects (Sweep, ApplyRmd) recurse
// through here with the same owner.
func evaluateEffect(e *Event, effect Effect, s *SimulationState) ([]evalEvent, error) {
	switch v := effect.(type) {
	case CreateAccount:
		return []evalEvent{evalCreateAccount{account: v.Account}}, nil

	case DeleteAccount:
		return []evalEvent{evalDeleteAccount{account: v.Account}}, nil

	case Income:
		return evaluateIncome(e, v, s)

	case Expense:
		amount, err := evaluateAmount(v.Amount, cashSide(v.From), externalSide{}, s)
		if err != nil {
			return nil, err
		}
		if e.Limits == nil {
			return []evalEvent{evalCashDebit{from: v.From, amount: amount, kind: FlowExpense}}, nil
		}
		allowed := min(amount, s.flowRoom(e))
		if allowed < 0.01 {
			return nil, nil
		}
		return []evalEvent{
			evalCashDebit{from: v.From, amount: allowed, kind: FlowExpense},
			evalFlow{amount: allowed},
		}, nil

	case AssetPurchase:
		return evaluatePurchase(e, v, s)

	case AssetSale:
		return evaluateSale(e, v, s)

	case Sweep:
		return evaluateSweep(e, v, s)

	case CashTransfer:
		dest, ok := s.accounts[v.To]
		if !ok {
			return nil, fmt.Errorf("account %q: %w", v.To, ErrAccountNotFound)
		}
		// The destination is the transfer's target: a target-reading amount
		// against a liability sizes itself to the outstanding principal, so
		// a capped loan payment stops by itself at the last dollar.
		_, liability := dest.Kind.(*Liability)
		var target transferSide = cashSide(v.To)
		if liability {
			target = debtSide(v.To)
		}
		amount, err := evaluateAmount(v.Amount, cashSide(v.From), target, s)
		if err != nil {
			return nil, err
		}
		if e.Limits != nil {
			amount = min(amount, s.flowRoom(e))
		}
		if amount < 0.01 {
			return nil, nil
		}
		// Paying into a liability is a loan payment: the cash leaves the
		// plan as an expense and the principal shrinks.
		if liability {
			events := []evalEvent{
				evalCashDebit{from: v.From, amount: amount, kind: FlowExpense},
				evalAdjustBalance{account: v.To, delta: -amount},
			}
			if e.Limits != nil {
				events = append(events, evalFlow{amount: amount})
			}
			return events, nil
		}
		events := []evalEvent{
			evalCashDebit{from: v.From, amount: amount, kind: FlowTransfer},
			evalCashCredit{to: v.To, amount: amount, kind: FlowTransfer},
		}
		if e.Limits != nil {
			events = append(events, evalFlow{amount: amount})
		}
		return events, nil

	case AdjustBalance:
		delta, err := evaluateAmount(v.Amount, externalSide{}, externalSide{}, s)
		if err != nil {
			return nil, err
		}
		return []evalEvent{evalAdjustBalance{account: v.Account, delta: delta}}, nil

	case TriggerEvent:
		return []evalEvent{evalTriggerEvent{event: v.Event}}, nil

	case PauseEvent:
		return []evalEvent{evalPauseEvent{event: v.Event}}, nil

	case ResumeEvent:
		return []evalEvent{evalResumeEvent{event: v.Event}}, nil

	case TerminateEvent:
		return []evalEvent{evalTerminateEvent{event: v.Event}}, nil

	case ApplyRmd:
		return evaluateRmd(e, v, s)
	}
	return nil, fmt.Errorf("unknown effect %T", effect)
}

// evaluateIncome resolves an Income effect: clamp to the destination's
// contribution room and the event's flow room, then split the allowed amount
// into net cash and taxes owed.
func evaluateIncome(e *Event, in Income, s *SimulationState) ([]evalEvent, error) {
	amount, err := evaluateAmount(in.Amount, externalSide{}, cashSide(in.To), s)
	if err != nil {
		return nil, err
	}

	room, err := s.ContributionRoom(in.To)
	if err != nil {
		return nil, err
	}
	limited := !math.IsInf(room, 1)
	allowed := min(amount, room, s.flowRoom(e))
	if allowed < 0.01 {
		return nil, nil
	}

	var events []evalEvent
	if limited {
		events = append(events, evalContribution{account: in.To, amount: allowed})
	}
	if e.Limits != nil {
		events = append(events, evalFlow{amount: allowed})
	}

	if in.Type == TaxFreeIncome {
		return append(events, evalCashCredit{to: in.To, amount: allowed, kind: FlowIncome}), nil
	}

	ytd := s.ytdTax.OrdinaryIncome
	switch in.Mode {
	case Gross:
		federal := FederalMarginalTax(allowed, ytd, s.taxConfig.FederalBrackets)
		state := allowed * s.taxConfig.StateRate
		events = append(events,
			evalCashCredit{to: in.To, amount: allowed - federal - state, kind: FlowIncome},
			evalIncomeTax{gross: allowed, federal: federal, state: state},
		)
	default: // Net: back out the gross that leaves this much after taxes
		gross := GrossFromNet(allowed, ytd, s.taxConfig.FederalBrackets, s.taxConfig.StateRate)
		federal := FederalMarginalTax(gross, ytd, s.taxConfig.FederalBrackets)
		state := gross * s.taxConfig.StateRate
		events = append(events,
			evalCashCredit{to: in.To, amount: allowed, kind: FlowIncome},
			evalIncomeTax{gross: gross, federal: federal, state: state},
		)
	}
	return events, nil
}

// evaluatePurchase resolves an AssetPurchase: cash out, lot in. A purchase
// funded from another account is new money entering and counts against the
// destination's contribution room; reinvesting inside the account does not.
func evaluatePurchase(e *Event, p AssetPurchase, s *SimulationState) ([]evalEvent, error) {
	amount, err := evaluateAmount(p.Amount, cashSide(p.From), assetSide(p.To), s)
	if err != nil {
		return nil, err
	}

	crossAccount := p.From != p.To.Account
	limited := false
	allowed := amount
	if crossAccount {
		room, err := s.ContributionRoom(p.To.Account)
		if err != nil {
			return nil, err
		}
		limited = !math.IsInf(room, 1)
		allowed = min(amount, room)
	}
	if e.Limits != nil {
		allowed = min(allowed, s.flowRoom(e))
	}
	if allowed < 0.01 {
		return nil, nil
	}

	kind := FlowInvestmentPurchase
	if crossAccount {
		kind = FlowContribution
	}
	events := []evalEvent{evalCashDebit{from: p.From, amount: allowed, kind: kind}}
	if crossAccount && limited {
		events = append(events, evalContribution{account: p.To.Account, amount: allowed})
	}
	if e.Limits != nil {
		events = append(events, evalFlow{amount: allowed})
	}

	price, ok := s.currentPrice(p.To.Asset)
	if !ok || price <= 0 {
		return nil, fmt.Errorf("asset %q: %w", p.To.Asset, ErrAssetPriceNotFound)
	}
	return append(events, evalAddLot{to: p.To, units: allowed / price, costBasis: allowed}), nil
}

// evaluateSale resolves an AssetSale by liquidating positions until the
// target is met. An empty Asset walks every asset the account holds, in
// lexical order so identical runs sell identically.
func evaluateSale(e *Event, sale AssetSale, s *SimulationState) ([]evalEvent, error) {
	target, err := evaluateAmount(sale.Amount, externalSide{}, externalSide{}, s)
	if err != nil {
		return nil, err
	}
	if target <= 0 {
		return nil, nil
	}

	a, ok := s.accounts[sale.From]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", sale.From, ErrAccountNotFound)
	}
	investment, ok := a.Kind.(*Investment)
	if !ok {
		return nil, fmt.Errorf("account %q: %w", sale.From, ErrNotInvestment)
	}

	var assets []AssetID
	if sale.Asset != "" {
		assets = []AssetID{sale.Asset}
	} else {
		held := make(map[AssetID]bool)
		for _, lot := range investment.Lots {
			held[lot.Asset] = true
		}
		assets = sortedKeys(held)
	}

	remaining := target
	var events []evalEvent
	for _, asset := range assets {
		if remaining < 0.01 {
			break
		}
		price, ok := s.currentPrice(asset)
		if !ok || price <= 0 {
			continue
		}
		var units float64
		for _, lot := range investment.Lots {
			if lot.Asset == asset {
				units += lot.Units
			}
		}
		available := units * price
		if available < 0.01 {
			continue
		}

		takeGross := min(remaining, available)
		if sale.Mode == Net {
			takeGross = min(grossEstimate(investment, asset, price, remaining, s.taxConfig), available)
		}

		result, effects := liquidate(liquidation{
			investment: investment,
			coord:      AssetCoord{Account: sale.From, Asset: asset},
			to:         sale.From,
			amount:     takeGross,
			price:      price,
			method:     sale.Method,
			date:       s.current,
			tax:        s.taxConfig,
			ytdIncome:  s.ytdTax.OrdinaryIncome,
			penalty:    s.BelowEarlyWithdrawalAge(),
		})
		if sale.Mode == Net {
			remaining -= result.net
		} else {
			remaining -= result.gross
		}
		events = append(events, effects...)
	}
	return events, nil
}

// grossEstimate sizes the gross sale needed to net a target, assuming the
// position's average gain ratio and the flat rates. The floor on the
// retention keeps a heavily appreciated position from producing an absurd
// estimate; the caller caps the result at what the position holds.
func grossEstimate(investment *Investment, asset AssetID, price, net float64, cfg TaxConfig) float64 {
	var totalUnits, totalBasis float64
	for _, lot := range investment.Lots {
		if lot.Asset == asset {
			totalUnits += lot.Units
			totalBasis += lot.CostBasis
		}
	}
	avgCost := price
	if totalUnits > 0 {
		avgCost = totalBasis / totalUnits
	}
	gainRatio := max(0, (price-avgCost)/price)
	effective := gainRatio * (cfg.CapitalGainsRate + cfg.StateRate)
	return net / max(0.5, 1-effective)
}

// evaluateSweep liquidates across the selected source accounts in order and
// moves the combined proceeds to the destination.
func evaluateSweep(e *Event, sweep Sweep, s *SimulationState) ([]evalEvent, error) {
	sources := sweep.Sources
	if sources == nil {
		sources = Strategy{}
	}
	targets := sweepTargets(sources, s)

	remaining, err := evaluateAmount(sweep.Amount, externalSide{}, externalSide{}, s)
	if err != nil {
		return nil, err
	}

	var events []evalEvent
	var total float64

	if strat, ok := sources.(Strategy); ok && strat.Order == ProRata {
		// Split the target across accounts by value instead of draining
		// them in order. Shortfalls in one account are not re-allocated.
		// Strategy targets are always whole accounts.
		balances := make([]float64, len(targets))
		var sum float64
		for i, c := range targets {
			if b, err := s.AccountBalance(c.Account); err == nil && b > 0 {
				balances[i] = b
				sum += b
			}
		}
		for i, c := range targets {
			if sum <= 0 || balances[i] <= 0 {
				continue
			}
			share := remaining * balances[i] / sum
			if share < 0.01 {
				continue
			}
			part, err := evaluateEffect(e, AssetSale{From: c.Account, Amount: Fixed(share), Mode: sweep.Mode, Method: sweep.Method}, s)
			if err != nil {
				return nil, err
			}
			total += creditTotal(part)
			events = append(events, part...)
		}
	} else {
		for _, c := range targets {
			if remaining < 0.01 {
				break
			}
			part, err := evaluateEffect(e, AssetSale{From: c.Account, Asset: c.Asset, Amount: Fixed(remaining), Mode: sweep.Mode, Method: sweep.Method}, s)
			if err != nil {
				return nil, err
			}
			liquidated := creditTotal(part)
			total += liquidated
			remaining -= liquidated
			events = append(events, part...)
		}
	}

	// Proceeds landed in the source accounts' cash. If the destination is
	// not one of them, move everything over; if it is, the cash is already
	// home and stays split where it fell.
	if total > 0.01 {
		credited := make(map[AccountID]float64)
		for _, ev := range events {
			if credit, ok := ev.(evalCashCredit); ok {
				credited[credit.to] += credit.amount
			}
		}
		if _, direct := credited[sweep.To]; !direct && len(credited) > 0 {
			for _, id := range sortedKeys(credited) {
				events = append(events, evalCashDebit{from: id, amount: credited[id], kind: FlowTransfer})
			}
			events = append(events, evalCashCredit{to: sweep.To, amount: total, kind: FlowTransfer})
		}
	}
	return events, nil
}

// evaluateRmd sizes this year's required minimum distribution for every
// tax-deferred account from its prior Dec 31 balance and sweeps it out. Each
// withdrawal is preceded by its RmdWithdrawal marker so the ledger explains
// the divisor arithmetic next to the money movement.
func evaluateRmd(e *Event, rmd ApplyRmd, s *SimulationState) ([]evalEvent, error) {
	age, _ := s.CurrentAge()
	divisor, ok := UniformLifetime2024().Divisor(age)
	if !ok {
		return nil, nil
	}

	var events []evalEvent
	for _, id := range s.sortedAccountIDs() {
		inv, ok := s.accounts[id].Kind.(*Investment)
		if !ok || inv.TaxStatus != TaxDeferred {
			continue
		}
		prior, ok := s.priorYearEndBalance(id)
		if !ok {
			continue
		}
		required := prior / divisor

		part, err := evaluateEffect(e, Sweep{
			Sources: SingleAccount(id),
			To:      rmd.To,
			Amount:  Fixed(required),
			Mode:    Gross,
			Method:  rmd.Method,
		}, s)
		if err != nil {
			return nil, err
		}
		// The sweep credits the source with liquidation proceeds and then
		// the destination with the transfer, so count only what reached the
		// destination.
		var actual float64
		for _, ev := range part {
			if credit, ok := ev.(evalCashCredit); ok && credit.to == rmd.To {
				actual += credit.amount
			}
		}
		events = append(events, evalRecord{event: RmdWithdrawal{
			Account:          id,
			Age:              age,
			PriorYearBalance: prior,
			Divisor:          divisor,
			Required:         required,
			Actual:           actual,
		}})
		events = append(events, part...)
	}
	return events, nil
}

// --- Withdrawal source resolution ---

// sweepTargets resolves what a sweep draws from, in draw order. A target
// with an empty asset drains the whole account.
func sweepTargets(sources WithdrawalSources, s *SimulationState) []AssetCoord {
	switch v := sources.(type) {
	case SingleAsset:
		return []AssetCoord{AssetCoord(v)}
	case SingleAccount:
		return []AssetCoord{{Account: AccountID(v)}}
	case Custom:
		// Declared order is the priority order; duplicates collapse onto
		// their first mention.
		var coords []AssetCoord
		seen := make(map[AssetCoord]bool)
		for _, coord := range v {
			if !seen[coord] {
				seen[coord] = true
				coords = append(coords, coord)
			}
		}
		return coords
	case Strategy:
		return accountTargets(strategyAccounts(v, s))
	}
	return accountTargets(strategyAccounts(Strategy{}, s))
}

func accountTargets(ids []AccountID) []AssetCoord {
	coords := make([]AssetCoord, len(ids))
	for i, id := range ids {
		coords[i] = AssetCoord{Account: id}
	}
	return coords
}

// strategyAccounts returns the non-excluded investment accounts in the
// strategy's liquidation order: tax-status bands first, account ids within a
// band, so candidate resolution is reproducible.
func strategyAccounts(strat Strategy, s *SimulationState) []AccountID {
	excluded := make(map[AccountID]bool, len(strat.Exclude))
	for _, id := range strat.Exclude {
		excluded[id] = true
	}
	var ids []AccountID
	for _, id := range s.sortedAccountIDs() {
		if excluded[id] {
			continue
		}
		if _, ok := s.accounts[id].Kind.(*Investment); ok {
			ids = append(ids, id)
		}
	}
	below := s.BelowEarlyWithdrawalAge()
	sort.SliceStable(ids, func(i, j int) bool {
		bi := strat.Order.band(s.accounts[ids[i]].Kind.(*Investment).TaxStatus, below)
		bj := strat.Order.band(s.accounts[ids[j]].Kind.(*Investment).TaxStatus, below)
		return bi < bj
	})
	return ids
}

// band ranks a tax status under the withdrawal order, lower drains first.
// ProRata ranks everything equal; allocation happens in the sweep.
func (o WithdrawalOrder) band(status TaxStatus, belowPenaltyAge bool) int {
	switch o {
	case TaxDeferredFirst:
		switch status {
		case TaxDeferred:
			return 0
		case Taxable:
			return 1
		}
		return 2
	case TaxFreeFirst:
		switch status {
		case TaxFree:
			return 0
		case Taxable:
			return 1
		}
		return 2
	case ProRata:
		return 0
	case PenaltyAware:
		if belowPenaltyAge {
			// Tax-deferred last: its withdrawals carry the 10% penalty.
			switch status {
			case Taxable:
				return 0
			case TaxFree:
				return 1
			}
			return 2
		}
	}
	// TaxEfficientEarly, and PenaltyAware past the penalty age.
	switch status {
	case Taxable:
		return 0
	case TaxDeferred:
		return 1
	}
	return 2
}
