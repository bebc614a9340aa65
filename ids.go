package foresight

import "fmt"

// AccountID names an account in a plan ("checking", "401k"). IDs are
// free-form strings chosen by the plan author and must be unique within a
// simulation.
type AccountID string

// AssetID names a priced asset held in investment accounts ("SPY", "bonds").
type AssetID string

// ProfileID names a return profile in the market ("stocks", "inflation").
type ProfileID string

// EventID is the index of an event in the plan's event list. It doubles as
// the provenance tag on ledger entries.
type EventID int

// AssetCoord addresses one position: an asset held inside an account.
type AssetCoord struct {
	Account AccountID
	Asset   AssetID
}

func (c AssetCoord) String() string { return string(c.Account) + "/" + string(c.Asset) }

// NoEvent marks ledger entries produced by the scheduler itself (time
// advancement, year-end taxes) rather than by a plan event.
const NoEvent EventID = -1

func (id AccountID) String() string { return string(id) }
func (id AssetID) String() string   { return string(id) }
func (id ProfileID) String() string { return string(id) }

func (id EventID) String() string {
	if id == NoEvent {
		return "-"
	}
	return fmt.Sprintf("#%d", int(id))
}

// IsEvent reports whether the ID designates an actual plan event.
func (id EventID) IsEvent() bool { return id != NoEvent }
