package foresight

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// defaultMaxSameDateIterations bounds how many event rounds a single date
// may run before the run declares a livelock and moves the clock anyway.
const defaultMaxSameDateIterations = 1000

// Option tunes one simulation run without touching the plan itself.
type Option func(*runOptions)

type runOptions struct {
	logger        *slog.Logger
	maxIterations int
	collectLedger bool
}

// WithLogger routes the run's diagnostics through the given logger instead
// of slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) { o.logger = l }
}

// WithMaxSameDateIterations overrides the same-date event round ceiling,
// normally 1000. Values below one are ignored.
func WithMaxSameDateIterations(n int) Option {
	return func(o *runOptions) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithoutLedger skips ledger collection. Batch loops that only need final
// wealth run materially lighter without the entry stream; the result's
// Ledger and YearlyCashFlows come back empty.
func WithoutLedger() Option {
	return func(o *runOptions) { o.collectLedger = false }
}

// Simulate runs the plan once from its start date to its end date and
// returns wealth snapshots, yearly tax summaries and cash flows, the full
// ledger and any warnings the run worked around.
//
// The same config and seed always produce the same result, down to the
// ordering of ledger entries. Different seeds sample different market
// scenarios from the configured return profiles.
func Simulate(config SimulationConfig, seed uint64, opts ...Option) (*SimulationResult, error) {
	o := runOptions{maxIterations: defaultMaxSameDateIterations, collectLedger: true}
	for _, opt := range opts {
		opt(&o)
	}

	s, err := newSimulationState(config, seed)
	if err != nil {
		return nil, err
	}
	if o.logger != nil {
		s.logger = o.logger
	}
	s.collectLedger = o.collectLedger

	s.snapshotWealth()
	for s.current.Before(s.end) {
		// Fire everything due today, including whatever those firings make
		// due in turn, until the date settles.
		for round := 1; ; round++ {
			if round > o.maxIterations {
				s.warn(NoEvent, WarnIterationLimit,
					fmt.Sprintf("iteration limit (%d) reached, possible infinite loop", o.maxIterations))
				break
			}
			if len(processEvents(s)) == 0 {
				break
			}
		}
		advanceTime(s)
	}
	s.snapshotWealth()
	s.finalizeYearTaxes()

	return &SimulationResult{
		WealthSnapshots:     s.snapshots,
		YearlyTaxes:         s.taxYears,
		YearlyCashFlows:     buildYearlyCashFlows(s.ledger),
		Ledger:              s.ledger,
		Warnings:            s.warnings,
		CumulativeInflation: s.market.CumulativeInflationFactors(),
	}, nil
}

// advanceTime moves the clock to the next date where anything can happen
// and applies the time passing in between: cash interest, liability
// interest, the Dec 31 year-end capture and the year rollover.
func advanceTime(s *SimulationState) {
	checkpoint := s.end

	// Date-anchored triggers pull the checkpoint exactly onto their date.
	// Only top-level date and relative triggers are scanned; anything
	// nested inside And/Or is caught by the quarterly heartbeat instead.
	for _, e := range s.events {
		if e == nil || (e.Once && s.isTriggered(e.ID) && !e.IsRepeating()) {
			continue
		}
		switch t := e.Trigger.(type) {
		case DateTrigger:
			if t.On.After(s.current) && t.On.Before(checkpoint) {
				checkpoint = t.On
			}
		case RelativeToEvent:
			if on, ok := s.triggeredOn(t.Event); ok {
				if d := t.Offset.AddTo(on); d.After(s.current) && d.Before(checkpoint) {
					checkpoint = d
				}
			}
		}
	}
	// Armed repeating schedules land exactly on their due date.
	for i := range s.tracks {
		if due := s.tracks[i].nextDue; !due.IsZero() && due.After(s.current) && due.Before(checkpoint) {
			checkpoint = due
		}
	}
	// Heartbeat: balance, age and nested-date triggers get re-checked at
	// least quarterly even when nothing is scheduled.
	if heartbeat := s.current.AddMonths(3); heartbeat.Before(checkpoint) {
		checkpoint = heartbeat
	}
	// Land on Dec 31 so year-end balances exist for next year's RMDs.
	dec31 := NewDate(s.current.Year(), time.December, 31)
	if s.current.Before(dec31) && dec31.Before(checkpoint) {
		checkpoint = dec31
	}

	days := DaysBetween(s.current, checkpoint)
	if days > 0 {
		yearIndex := s.current.Year() - s.start.Year()
		for _, id := range s.sortedAccountIDs() {
			switch k := s.accounts[id].Kind.(type) {
			case *Bank:
				s.accrueCash(id, &k.Cash, yearIndex, days, checkpoint)
			case *Investment:
				s.accrueCash(id, &k.Cash, yearIndex, days, checkpoint)
			case *Liability:
				if k.Rate <= 0 {
					continue
				}
				previous := k.Principal
				k.Principal *= math.Pow(1+k.Rate, float64(days)/365)
				if math.Abs(k.Principal-previous) > 0.001 {
					s.record(LedgerEntry{Date: checkpoint, Source: NoEvent, Event: LiabilityInterest{
						Account:  id,
						Previous: previous,
						New:      k.Principal,
						Rate:     k.Rate,
						Days:     days,
					}})
				}
			}
		}
		s.record(LedgerEntry{Date: checkpoint, Source: NoEvent, Event: TimeAdvance{
			From: s.current,
			To:   checkpoint,
			Days: days,
		}})
	}

	previous := s.current
	s.current = checkpoint

	if checkpoint == dec31 {
		s.captureYearEndBalances()
		s.snapshotWealth()
	}
	if previous.Month() != checkpoint.Month() || previous.Year() != checkpoint.Year() {
		s.resetMonthlyContributions()
	}
	if previous.Year() != checkpoint.Year() {
		clear(s.contributionsYTD)
		s.maybeRolloverYear()
	}
}

// accrueCash compounds a positive cash balance over the elapsed days at the
// account's cash return profile. Balances without usable rate data are left
// untouched.
func (s *SimulationState) accrueCash(id AccountID, cash *Cash, yearIndex, days int, on Date) {
	if cash.Value <= 0 {
		return
	}
	mult, err := s.market.PeriodMultiplier(yearIndex, days, cash.Profile)
	if err != nil {
		return
	}
	previous := cash.Value
	cash.Value *= mult
	if math.Abs(cash.Value-previous) <= 0.001 {
		return
	}
	s.record(LedgerEntry{Date: on, Source: NoEvent, Event: CashAppreciation{
		Account:  id,
		Previous: previous,
		New:      cash.Value,
		Rate:     mult - 1,
		Days:     days,
	}})
}
