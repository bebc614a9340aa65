package foresight

import "fmt"

// SimulationConfig is the full description of one plan: the economic
// assumptions, the person, the starting accounts and the events that move
// money between them. The zero value is a valid empty plan over thirty years.
type SimulationConfig struct {
	// ReturnProfiles are the named distributions that cash balances and
	// asset prices can reference.
	ReturnProfiles map[ProfileID]ReturnProfile

	// Inflation drives purchasing-power adjustments. Nil means no inflation.
	Inflation ReturnProfile

	// AssetReturns binds each asset to the profile that moves its price.
	// Assets without a binding keep a static price.
	AssetReturns map[AssetID]ProfileID

	// AssetPrices is the starting price per unit. Unlisted assets start at
	// $1.00; property accounts always start at their own declared value.
	AssetPrices map[AssetID]float64

	// TaxConfig holds brackets and rates. The zero value taxes nothing;
	// use DefaultTaxConfig for the stock single-filer setup.
	TaxConfig TaxConfig

	// StartDate is the first simulated day. Zero means today.
	StartDate Date

	// BirthDate anchors age triggers, the early-withdrawal age and RMD
	// schedules. Zero means 1970-01-01.
	BirthDate Date

	// Accounts is the opening portfolio.
	Accounts []Account

	// DurationYears is how long to simulate. Zero means 30.
	DurationYears int

	// Events are the plan's rules. IDs must be unique; keeping them dense
	// from zero keeps the bookkeeping compact.
	Events []Event
}

// normalized returns a copy with the documented defaults filled in.
func (c SimulationConfig) normalized() SimulationConfig {
	if c.StartDate.IsZero() {
		c.StartDate = Today()
	}
	if c.BirthDate.IsZero() {
		c.BirthDate = MustParseDate("1970-01-01")
	}
	if c.DurationYears == 0 {
		c.DurationYears = 30
	}
	if c.Inflation == nil {
		c.Inflation = FixedReturn(0)
	}
	return c
}

// EndDate is the exclusive end of the simulated window.
func (c SimulationConfig) EndDate() Date {
	n := c.normalized()
	return n.StartDate.AddYears(n.DurationYears)
}

// InitialAge is the person's age in whole years on the start date.
func (c SimulationConfig) InitialAge() int {
	n := c.normalized()
	years, _ := Age(n.BirthDate, n.StartDate)
	return years
}

// Event finds an event by ID.
func (c SimulationConfig) Event(id EventID) (Event, bool) {
	for _, e := range c.Events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

// Validate checks the plan for structural problems: missing or duplicate
// identifiers and malformed accounts or events. Dangling references (an
// effect naming an account that never exists) are not errors; they degrade
// to no-ops during the run.
func (c SimulationConfig) Validate() error {
	seenAccounts := make(map[AccountID]bool, len(c.Accounts))
	for i := range c.Accounts {
		a := &c.Accounts[i]
		if err := a.Validate(); err != nil {
			return err
		}
		if seenAccounts[a.ID] {
			return fmt.Errorf("duplicate account id %q", a.ID)
		}
		seenAccounts[a.ID] = true
	}

	seenEvents := make(map[EventID]bool, len(c.Events))
	for i := range c.Events {
		e := &c.Events[i]
		if err := e.Validate(); err != nil {
			return err
		}
		if seenEvents[e.ID] {
			return fmt.Errorf("duplicate event id %s", e.ID)
		}
		seenEvents[e.ID] = true
	}
	return nil
}

// --- Plan variants ---
//
// Planning questions are usually "the same plan, but...": retire at 62
// instead of 65, or simulate to 95 instead of 85. The With helpers derive
// such variants without mutating the receiver, so one base plan can fan out
// into many runs.

// WithDurationYears returns a copy simulating the given number of years.
func (c SimulationConfig) WithDurationYears(years int) SimulationConfig {
	c.DurationYears = years
	return c
}

// WithEndAge returns a copy that simulates until the person reaches the
// given age. It reports false when the start or birth date is unset, since
// the span cannot be computed without them.
func (c SimulationConfig) WithEndAge(age int) (SimulationConfig, bool) {
	if c.StartDate.IsZero() || c.BirthDate.IsZero() {
		return c, false
	}
	return c.WithDurationYears(max(1, age-c.InitialAge())), true
}

// WithTriggerAge returns a copy where the given event fires at a different
// age, keeping the months component. It rewrites an AgeTrigger at the top of
// the event's trigger or one level inside an And/Or, and reports false when
// the event does not exist or carries no age trigger there.
func (c SimulationConfig) WithTriggerAge(id EventID, years int) (SimulationConfig, bool) {
	idx := -1
	for i := range c.Events {
		if c.Events[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return c, false
	}

	rewritten, ok := retargetAge(c.Events[idx].Trigger, years)
	if !ok {
		return c, false
	}

	events := make([]Event, len(c.Events))
	copy(events, c.Events)
	events[idx].Trigger = rewritten
	c.Events = events
	return c, true
}

// retargetAge rebuilds a trigger with the age replaced. Only a top-level
// AgeTrigger or a direct child of And/Or is rewritten.
func retargetAge(t Trigger, years int) (Trigger, bool) {
	switch t := t.(type) {
	case AgeTrigger:
		t.Years = years
		return t, true
	case And:
		if children, ok := retargetAgeChild(t, years); ok {
			return And(children), true
		}
	case Or:
		if children, ok := retargetAgeChild(t, years); ok {
			return Or(children), true
		}
	}
	return t, false
}

func retargetAgeChild(children []Trigger, years int) ([]Trigger, bool) {
	for i, child := range children {
		if age, ok := child.(AgeTrigger); ok {
			age.Years = years
			out := make([]Trigger, len(children))
			copy(out, children)
			out[i] = age
			return out, true
		}
	}
	return nil, false
}
