package foresight

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
)

// effectSeedOffset separates the effect RNG stream from market sampling, so
// stochastic effects never perturb the sampled market scenario of a seed.
const effectSeedOffset = 0x005EED0FF5E7

// repeatState is the lifecycle of a repeating event's schedule.
type repeatState int

const (
	// repeatNotStarted means the start condition has never been met.
	repeatNotStarted repeatState = iota
	repeatActive
	repeatPaused
)

// eventTrack is the mutable bookkeeping of one event. Event definitions stay
// immutable for the whole run; everything that changes lives here.
type eventTrack struct {
	triggeredOn Date // when the event last fired; zero = never
	nextDue     Date // next scheduled firing of a repeating event; zero = none
	repeat      repeatState
	terminated  bool

	// Cumulative flow under the event's FlowLimits.
	flowYTD      float64
	flowYear     int // calendar year flowYTD belongs to; zero = untouched
	flowLifetime float64
}

// SimulationState is the complete world of one run: the timeline, the
// accounts, the sampled market, per-event bookkeeping, tax and contribution
// accumulators, and the ledger. Everything a trigger or effect can observe
// or mutate is here.
type SimulationState struct {
	start   Date
	end     Date
	current Date
	birth   Date

	accounts map[AccountID]*Account
	market   *Market

	// Dense per-event storage indexed by EventID; nil slots are unused IDs.
	events  []*Event
	tracks  []eventTrack
	pending []EventID // queued by TriggerEvent effects, drained same-date

	// Dec 31 balances of tax-deferred accounts, keyed by year, for RMDs.
	yearEndBalances  map[int]map[AccountID]float64
	contributionsYTD map[AccountID]float64
	contributionsMTD map[AccountID]float64

	ytdTax    TaxSummary
	taxYears  []TaxSummary
	taxConfig TaxConfig

	snapshots []WealthSnapshot
	ledger    Ledger
	warnings  []SimulationWarning

	rng           *rand.Rand
	logger        *slog.Logger
	collectLedger bool
}

// newSimulationState builds the starting world for one run: the sampled
// market, cloned accounts, dense event bookkeeping and empty accumulators.
// Unknown profile references are construction errors; unknown account or
// asset references are not, they degrade to no-ops during the run.
func newSimulationState(config SimulationConfig, seed uint64) (*SimulationState, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	cfg := config.normalized()

	// Register every asset that has a return binding: lots and properties
	// held at start (a property starts at its own declared value), then
	// anything priced up front for purchase later. First registration wins.
	assets := make(map[AssetID]AssetPricing)
	register := func(id AssetID, price float64, profile ProfileID) {
		if _, seen := assets[id]; !seen {
			assets[id] = AssetPricing{Price: price, Profile: profile}
		}
	}
	startPrice := func(id AssetID) float64 {
		if p, ok := cfg.AssetPrices[id]; ok {
			return p
		}
		return 1.0
	}
	for i := range cfg.Accounts {
		switch k := cfg.Accounts[i].Kind.(type) {
		case *Investment:
			for _, lot := range k.Lots {
				if profile, bound := cfg.AssetReturns[lot.Asset]; bound {
					register(lot.Asset, startPrice(lot.Asset), profile)
				}
			}
		case *Property:
			if profile, bound := cfg.AssetReturns[k.Asset]; bound {
				register(k.Asset, k.Value, profile)
			}
		}
	}
	for _, id := range sortedKeys(cfg.AssetReturns) {
		register(id, startPrice(id), cfg.AssetReturns[id])
	}

	for _, id := range sortedKeys(assets) {
		if _, ok := cfg.ReturnProfiles[assets[id].Profile]; !ok {
			return nil, fmt.Errorf("asset %q: %w: %q", id, ErrProfileNotFound, assets[id].Profile)
		}
	}
	for i := range cfg.Accounts {
		a := &cfg.Accounts[i]
		var cash ProfileID
		switch k := a.Kind.(type) {
		case *Bank:
			cash = k.Cash.Profile
		case *Investment:
			cash = k.Cash.Profile
		}
		if cash != "" {
			if _, ok := cfg.ReturnProfiles[cash]; !ok {
				return nil, fmt.Errorf("account %q cash: %w: %q", a.ID, ErrProfileNotFound, cash)
			}
		}
	}

	market, err := NewMarket(seed, cfg.DurationYears, cfg.Inflation, cfg.ReturnProfiles, assets)
	if err != nil {
		return nil, err
	}

	accounts := make(map[AccountID]*Account, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		clone := a.Clone()
		accounts[a.ID] = &clone
	}

	maxID := EventID(-1)
	for i := range cfg.Events {
		if cfg.Events[i].ID > maxID {
			maxID = cfg.Events[i].ID
		}
	}
	events := make([]*Event, maxID+1)
	for i := range cfg.Events {
		e := cfg.Events[i]
		events[e.ID] = &e
	}

	return &SimulationState{
		start:   cfg.StartDate,
		end:     cfg.StartDate.AddYears(cfg.DurationYears),
		current: cfg.StartDate,
		birth:   cfg.BirthDate,

		accounts: accounts,
		market:   market,

		events: events,
		tracks: make([]eventTrack, len(events)),

		yearEndBalances:  make(map[int]map[AccountID]float64),
		contributionsYTD: make(map[AccountID]float64),
		contributionsMTD: make(map[AccountID]float64),

		ytdTax:    TaxSummary{Year: cfg.StartDate.Year()},
		taxConfig: cfg.TaxConfig,

		rng:           rand.New(rand.NewPCG(seed+effectSeedOffset, pcgStream)),
		logger:        slog.Default(),
		collectLedger: true,
	}, nil
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// sortedAccountIDs returns the account ids in lexical order. Every iteration
// over the account map goes through this, so runs are reproducible down to
// float rounding.
func (s *SimulationState) sortedAccountIDs() []AccountID {
	return sortedKeys(s.accounts)
}

// --- Read queries ---

// CurrentDate is the simulation clock.
func (s *SimulationState) CurrentDate() Date { return s.current }

// AccountBalance is the account's total worth at current market prices.
func (s *SimulationState) AccountBalance(id AccountID) (float64, error) {
	a, ok := s.accounts[id]
	if !ok {
		return 0, fmt.Errorf("account %q: %w", id, ErrAccountNotFound)
	}
	return a.TotalValue(s.market, s.start, s.current), nil
}

// cashBalance is the spendable cash of a bank or investment account.
func (s *SimulationState) cashBalance(id AccountID) (float64, error) {
	a, ok := s.accounts[id]
	if !ok {
		return 0, fmt.Errorf("account %q: %w", id, ErrAccountNotFound)
	}
	cash, ok := a.CashBalance()
	if !ok {
		return 0, fmt.Errorf("account %q: %w", id, ErrNotCashAccount)
	}
	return cash, nil
}

// AssetBalance is the current market value of one position.
func (s *SimulationState) AssetBalance(coord AssetCoord) (float64, error) {
	a, ok := s.accounts[coord.Account]
	if !ok {
		return 0, fmt.Errorf("account %q: %w", coord.Account, ErrAccountNotFound)
	}
	switch k := a.Kind.(type) {
	case *Investment:
		price, ok := s.market.AssetValue(s.start, s.current, coord.Asset)
		if !ok {
			price = 0
		}
		var units float64
		for _, lot := range k.Lots {
			if lot.Asset == coord.Asset {
				units += lot.Units
			}
		}
		return units * price, nil
	case *Property:
		if k.Asset != coord.Asset {
			return 0, fmt.Errorf("%s: %w", coord, ErrAssetNotFound)
		}
		if v, ok := s.market.AssetValue(s.start, s.current, k.Asset); ok {
			return v, nil
		}
		return k.Value, nil
	}
	return 0, fmt.Errorf("%s: %w", coord, ErrAssetNotFound)
}

// currentPrice is today's market price per unit of an asset.
func (s *SimulationState) currentPrice(id AssetID) (float64, bool) {
	return s.market.AssetValue(s.start, s.current, id)
}

// NetWorth sums every account's value, liabilities negative.
func (s *SimulationState) NetWorth() float64 {
	var total float64
	for _, id := range s.sortedAccountIDs() {
		total += s.accounts[id].TotalValue(s.market, s.start, s.current)
	}
	return total
}

// CurrentAge is the person's age in years and whole months today.
func (s *SimulationState) CurrentAge() (years, months int) {
	return Age(s.birth, s.current)
}

// BelowEarlyWithdrawalAge reports whether the person is under 59½ today.
func (s *SimulationState) BelowEarlyWithdrawalAge() bool {
	return BelowEarlyWithdrawalAge(s.birth, s.current)
}

// --- Event bookkeeping ---

// event resolves an event definition by ID.
func (s *SimulationState) event(id EventID) (*Event, bool) {
	if id < 0 || int(id) >= len(s.events) || s.events[id] == nil {
		return nil, false
	}
	return s.events[id], true
}

// track resolves the mutable bookkeeping of an event, nil for unknown IDs.
func (s *SimulationState) track(id EventID) *eventTrack {
	if id < 0 || int(id) >= len(s.tracks) {
		return nil
	}
	return &s.tracks[id]
}

func (s *SimulationState) isTriggered(id EventID) bool {
	t := s.track(id)
	return t != nil && !t.triggeredOn.IsZero()
}

// triggeredOn is the date the event last fired.
func (s *SimulationState) triggeredOn(id EventID) (Date, bool) {
	t := s.track(id)
	if t == nil || t.triggeredOn.IsZero() {
		return Date{}, false
	}
	return t.triggeredOn, true
}

func (s *SimulationState) setTriggered(id EventID, on Date) {
	if t := s.track(id); t != nil {
		t.triggeredOn = on
	}
}

func (s *SimulationState) isTerminated(id EventID) bool {
	t := s.track(id)
	return t != nil && t.terminated
}

func (s *SimulationState) terminate(id EventID) {
	if t := s.track(id); t != nil {
		t.terminated = true
	}
}

func (s *SimulationState) repeatStatus(id EventID) repeatState {
	t := s.track(id)
	if t == nil {
		return repeatNotStarted
	}
	return t.repeat
}

// startRepeating arms a repeating schedule with its first due date.
func (s *SimulationState) startRepeating(id EventID, next Date) {
	if t := s.track(id); t != nil {
		t.repeat = repeatActive
		t.nextDue = next
	}
}

// stopRepeating disarms the schedule completely. The event may re-arm later
// if its start condition holds while the end condition does not.
func (s *SimulationState) stopRepeating(id EventID) {
	if t := s.track(id); t != nil {
		t.repeat = repeatNotStarted
		t.nextDue = Date{}
	}
}

// pauseRepeating keeps the schedule armed but silent, clearing the due date.
func (s *SimulationState) pauseRepeating(id EventID) {
	if t := s.track(id); t != nil && t.repeat == repeatActive {
		t.repeat = repeatPaused
		t.nextDue = Date{}
	}
}

// resumeRepeating reactivates a paused schedule with a fresh due date.
func (s *SimulationState) resumeRepeating(id EventID, next Date) {
	if t := s.track(id); t != nil && t.repeat == repeatPaused {
		t.repeat = repeatActive
		t.nextDue = next
	}
}

func (s *SimulationState) nextDueDate(id EventID) (Date, bool) {
	t := s.track(id)
	if t == nil || t.nextDue.IsZero() {
		return Date{}, false
	}
	return t.nextDue, true
}

func (s *SimulationState) scheduleNext(id EventID, next Date) {
	if t := s.track(id); t != nil {
		t.nextDue = next
	}
}

// --- Flow limits ---

// flowRoom is how much the event may still move under its FlowLimits.
// Events without limits have infinite room.
func (s *SimulationState) flowRoom(e *Event) float64 {
	if e.Limits == nil {
		return math.Inf(1)
	}
	t := s.track(e.ID)
	if t == nil {
		return e.Limits.Limit
	}
	used := t.flowLifetime
	if e.Limits.Period == LimitYearly {
		used = t.flowYTD
		if t.flowYear != s.current.Year() {
			used = 0
		}
	}
	return max(0, e.Limits.Limit-used)
}

// recordFlow books a moved amount against the event's accumulators.
func (s *SimulationState) recordFlow(id EventID, amount float64) {
	t := s.track(id)
	if t == nil {
		return
	}
	if t.flowYear != s.current.Year() {
		t.flowYTD = 0
		t.flowYear = s.current.Year()
	}
	t.flowYTD += amount
	t.flowLifetime += amount
}

// --- Taxes and year boundaries ---

// finalizeYearTaxes archives the running summary if the year saw any
// taxable activity.
func (s *SimulationState) finalizeYearTaxes() {
	if s.ytdTax.hasActivity() {
		s.taxYears = append(s.taxYears, s.ytdTax)
	}
}

// maybeRolloverYear closes the tax year once the clock has crossed into a
// new one: the previous summary is archived, accumulators reset, and a
// YearClosed entry marks the boundary in the ledger.
func (s *SimulationState) maybeRolloverYear() {
	year := s.current.Year()
	if year == s.ytdTax.Year {
		return
	}
	from := s.ytdTax.Year
	s.finalizeYearTaxes()
	s.ytdTax = TaxSummary{Year: year}
	for i := range s.tracks {
		t := &s.tracks[i]
		if t.flowYear != 0 && t.flowYear != year {
			t.flowYTD = 0
			t.flowYear = year
		}
	}
	s.record(LedgerEntry{Date: s.current, Source: NoEvent, Event: YearClosed{FromYear: from, ToYear: year}})
}

// --- Contribution limits ---

// ContributionRoom reports how much more can flow into the account in the
// current limit period. Accounts without a limit have infinite room.
func (s *SimulationState) ContributionRoom(id AccountID) (float64, error) {
	a, ok := s.accounts[id]
	if !ok {
		return 0, fmt.Errorf("account %q: %w", id, ErrAccountNotFound)
	}
	inv, ok := a.Kind.(*Investment)
	if !ok || inv.Limit == nil {
		return math.Inf(1), nil
	}
	var contributed float64
	switch inv.Limit.Period {
	case Monthly:
		contributed = s.contributionsMTD[id]
	case Yearly:
		contributed = s.contributionsYTD[id]
	}
	return max(0, inv.Limit.Amount-contributed), nil
}

// recordContribution books a contribution against the account's limit and
// returns the amount that fit.
func (s *SimulationState) recordContribution(id AccountID, amount float64) (float64, error) {
	a, ok := s.accounts[id]
	if !ok {
		return 0, fmt.Errorf("account %q: %w", id, ErrAccountNotFound)
	}
	inv, ok := a.Kind.(*Investment)
	if !ok || inv.Limit == nil {
		return amount, nil
	}
	room, err := s.ContributionRoom(id)
	if err != nil {
		return 0, err
	}
	allowed := min(amount, room)
	switch inv.Limit.Period {
	case Monthly:
		s.contributionsMTD[id] += allowed
	case Yearly:
		s.contributionsYTD[id] += allowed
	}
	return allowed, nil
}

func (s *SimulationState) resetMonthlyContributions() {
	clear(s.contributionsMTD)
}

// --- RMD support ---

// priorYearEndBalance is the account's balance captured on Dec 31 of the
// previous year, the base of an RMD calculation.
func (s *SimulationState) priorYearEndBalance(id AccountID) (float64, bool) {
	balances, ok := s.yearEndBalances[s.current.Year()-1]
	if !ok {
		return 0, false
	}
	v, ok := balances[id]
	return v, ok
}

// captureYearEndBalances records every tax-deferred investment balance for
// next year's RMD math. Called when the clock lands on Dec 31.
func (s *SimulationState) captureYearEndBalances() {
	balances := make(map[AccountID]float64)
	for _, id := range s.sortedAccountIDs() {
		inv, ok := s.accounts[id].Kind.(*Investment)
		if !ok || inv.TaxStatus != TaxDeferred {
			continue
		}
		balances[id] = s.accounts[id].TotalValue(s.market, s.start, s.current)
	}
	s.yearEndBalances[s.current.Year()] = balances
}

// --- Output ---

// snapshotWealth appends a sorted per-account snapshot at the current date.
func (s *SimulationState) snapshotWealth() {
	snaps := make([]AccountSnapshot, 0, len(s.accounts))
	for _, id := range s.sortedAccountIDs() {
		snaps = append(snaps, s.accounts[id].Snapshot(s.market, s.start, s.current))
	}
	s.snapshots = append(s.snapshots, WealthSnapshot{Date: s.current, Accounts: snaps})
}

// record appends a ledger entry unless collection is disabled.
func (s *SimulationState) record(e LedgerEntry) {
	if !s.collectLedger {
		return
	}
	s.ledger = append(s.ledger, e)
}

// warn records a non-fatal problem on the result and logs it.
func (s *SimulationState) warn(id EventID, kind WarningKind, msg string) {
	s.warnings = append(s.warnings, SimulationWarning{
		Date:    s.current,
		Event:   id,
		Message: msg,
		Kind:    kind,
	})
	s.logger.Warn(msg, "date", s.current.String(), "event", int(id))
}
