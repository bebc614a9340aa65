package foresight

import "testing"

func TestSimulationConfigDefaults(t *testing.T) {
	c := SimulationConfig{StartDate: MustParseDate("2025-01-01")}

	if got, want := c.EndDate(), MustParseDate("2055-01-01"); got != want {
		t.Errorf("EndDate() = %s, want %s (thirty-year default)", got, want)
	}

	c.DurationYears = 5
	if got, want := c.EndDate(), MustParseDate("2030-01-01"); got != want {
		t.Errorf("EndDate() = %s, want %s", got, want)
	}
}

func TestSimulationConfigInitialAge(t *testing.T) {
	tests := []struct {
		birth, start string
		want         int
	}{
		{"1960-06-15", "2025-01-01", 64}, // before the birthday
		{"1960-06-15", "2025-06-15", 65}, // on the birthday
		{"1960-06-15", "2025-12-01", 65}, // after the birthday
	}
	for _, tt := range tests {
		c := SimulationConfig{
			StartDate: MustParseDate(tt.start),
			BirthDate: MustParseDate(tt.birth),
		}
		if got := c.InitialAge(); got != tt.want {
			t.Errorf("InitialAge(birth %s, start %s) = %d, want %d", tt.birth, tt.start, got, tt.want)
		}
	}
}

func TestSimulationConfigEvent(t *testing.T) {
	c := SimulationConfig{Events: []Event{
		{ID: 0, Name: "salary", Trigger: Repeating{Interval: Monthly}},
		{ID: 1, Name: "retire", Trigger: AgeTrigger{Years: 65}},
	}}

	e, ok := c.Event(1)
	if !ok || e.Name != "retire" {
		t.Fatalf("Event(1) = %q, %v, want retire, true", e.Name, ok)
	}
	if _, ok := c.Event(7); ok {
		t.Errorf("Event(7) found, want missing")
	}
}

func TestSimulationConfigValidate(t *testing.T) {
	valid := SimulationConfig{
		Accounts: []Account{
			{ID: "checking", Kind: &Bank{Cash: Cash{Value: 1000}}},
			{ID: "ira", Kind: &Investment{TaxStatus: TaxDeferred}},
		},
		Events: []Event{
			{ID: 0, Trigger: DateTrigger{On: MustParseDate("2030-01-01")}},
			{ID: 1, Trigger: Manual{}},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	dupAccount := valid
	dupAccount.Accounts = []Account{
		{ID: "checking", Kind: &Bank{}},
		{ID: "checking", Kind: &Bank{}},
	}
	if err := dupAccount.Validate(); err == nil {
		t.Errorf("Validate() accepted duplicate account ids")
	}

	dupEvent := valid
	dupEvent.Events = []Event{
		{ID: 3, Trigger: Manual{}},
		{ID: 3, Trigger: Manual{}},
	}
	if err := dupEvent.Validate(); err == nil {
		t.Errorf("Validate() accepted duplicate event ids")
	}

	noTrigger := valid
	noTrigger.Events = []Event{{ID: 0}}
	if err := noTrigger.Validate(); err == nil {
		t.Errorf("Validate() accepted an event without a trigger")
	}
}

func TestWithEndAge(t *testing.T) {
	c := SimulationConfig{
		StartDate: MustParseDate("2025-01-01"),
		BirthDate: MustParseDate("1960-06-15"),
	}

	got, ok := c.WithEndAge(95)
	if !ok {
		t.Fatalf("WithEndAge(95) not applicable")
	}
	if got.DurationYears != 31 {
		t.Errorf("DurationYears = %d, want 31 (64 now, 95 target)", got.DurationYears)
	}

	// Already past the target age: clamp to one year rather than zero.
	got, ok = c.WithEndAge(60)
	if !ok || got.DurationYears != 1 {
		t.Errorf("WithEndAge(60) = %d years, %v, want 1, true", got.DurationYears, ok)
	}

	if _, ok := (SimulationConfig{}).WithEndAge(95); ok {
		t.Errorf("WithEndAge applicable without dates")
	}
}

func TestWithTriggerAge(t *testing.T) {
	c := SimulationConfig{Events: []Event{
		{ID: 0, Trigger: AgeTrigger{Years: 65, Months: 6}},
		{ID: 1, Trigger: And{DateTrigger{On: MustParseDate("2030-01-01")}, AgeTrigger{Years: 67}}},
		{ID: 2, Trigger: Manual{}},
	}}

	got, ok := c.WithTriggerAge(0, 62)
	if !ok {
		t.Fatalf("WithTriggerAge(0, 62) not applicable")
	}
	if age := got.Events[0].Trigger.(AgeTrigger); age.Years != 62 || age.Months != 6 {
		t.Errorf("rewritten trigger = %+v, want years 62 months 6", age)
	}
	// The receiver keeps its original trigger.
	if age := c.Events[0].Trigger.(AgeTrigger); age.Years != 65 {
		t.Errorf("receiver trigger mutated to %+v", age)
	}

	got, ok = c.WithTriggerAge(1, 64)
	if !ok {
		t.Fatalf("WithTriggerAge(1, 64) not applicable")
	}
	and := got.Events[1].Trigger.(And)
	if age := and[1].(AgeTrigger); age.Years != 64 {
		t.Errorf("nested age trigger = %+v, want years 64", age)
	}

	if _, ok := c.WithTriggerAge(2, 62); ok {
		t.Errorf("WithTriggerAge rewrote a manual trigger")
	}
	if _, ok := c.WithTriggerAge(9, 62); ok {
		t.Errorf("WithTriggerAge rewrote a missing event")
	}
}
