package foresight

import (
	"encoding/json"
	"fmt"
	"io"
)

// The ledger and its entries marshal to type-tagged JSON with a stable field
// order, so two runs with the same inputs produce byte-identical exports.

// MarshalJSON writes the entry as {"date":…,"source":…,"type":…,fields…}.
// The source key is omitted for engine-initiated entries.
func (e LedgerEntry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", e.Date)
	if e.Source != NoEvent {
		w.Append("source", int(e.Source))
	}
	w.Append("type", e.Event.kind())
	appendEventFields(&w, e.Event)
	return w.MarshalJSON()
}

func appendEventFields(w *jsonObjectWriter, ev StateEvent) {
	switch e := ev.(type) {
	case TimeAdvance:
		w.Append("from", e.From)
		w.Append("to", e.To)
		w.Append("days", e.Days)
	case YearClosed:
		w.Append("fromYear", e.FromYear)
		w.Append("toYear", e.ToYear)
	case AccountCreated:
		w.Append("account", e.Account)
	case AccountDeleted:
		w.Append("account", e.Account)
	case CashCredit:
		w.Append("to", e.To)
		w.Append("amount", e.Amount)
		w.Append("kind", e.Kind)
	case CashDebit:
		w.Append("from", e.From)
		w.Append("amount", e.Amount)
		w.Append("kind", e.Kind)
	case CashAppreciation:
		w.Append("account", e.Account)
		w.Append("previous", e.Previous)
		w.Append("new", e.New)
		w.Append("rate", e.Rate)
		w.Append("days", e.Days)
	case LiabilityInterest:
		w.Append("account", e.Account)
		w.Append("previous", e.Previous)
		w.Append("new", e.New)
		w.Append("rate", e.Rate)
		w.Append("days", e.Days)
	case BalanceAdjusted:
		w.Append("account", e.Account)
		w.Append("previous", e.Previous)
		w.Append("new", e.New)
		w.Append("delta", e.Delta)
	case AssetPurchased:
		w.Append("account", e.Account)
		w.Append("asset", e.Asset)
		w.Append("units", e.Units)
		w.Append("costBasis", e.CostBasis)
		w.Append("price", e.Price)
	case AssetSold:
		w.Append("account", e.Account)
		w.Append("asset", e.Asset)
		w.Append("lotDate", e.LotDate)
		w.Append("units", e.Units)
		w.Append("costBasis", e.CostBasis)
		w.Append("proceeds", e.Proceeds)
		w.Append("shortTermGain", e.ShortTermGain)
		w.Append("longTermGain", e.LongTermGain)
	case IncomeTaxed:
		w.Append("gross", e.Gross)
		w.Append("federal", e.Federal)
		w.Append("state", e.State)
	case ShortTermGainsTaxed:
		w.Append("gain", e.Gain)
		w.Append("federal", e.Federal)
		w.Append("state", e.State)
	case LongTermGainsTaxed:
		w.Append("gain", e.Gain)
		w.Append("federal", e.Federal)
		w.Append("state", e.State)
	case EarlyWithdrawalPenalty:
		w.Append("gross", e.Gross)
		w.Append("penalty", e.Penalty)
		w.Append("rate", e.Rate)
	case TaxFreeWithdrawal:
		w.Append("gross", e.Gross)
	case EventTriggered:
		w.Append("event", int(e.Event))
	case EventPaused:
		w.Append("event", int(e.Event))
	case EventResumed:
		w.Append("event", int(e.Event))
	case EventTerminated:
		w.Append("event", int(e.Event))
	case RmdWithdrawal:
		w.Append("account", e.Account)
		w.Append("age", e.Age)
		w.Append("priorYearBalance", e.PriorYearBalance)
		w.Append("divisor", e.Divisor)
		w.Append("required", e.Required)
		w.Append("actual", e.Actual)
	}
}

// MarshalJSON writes the account with its kind tag and kind-specific fields.
func (a Account) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", a.ID)
	switch k := a.Kind.(type) {
	case *Bank:
		w.Append("kind", "bank")
		w.Append("cash", k.Cash)
	case *Investment:
		w.Append("kind", "investment")
		w.Append("taxStatus", k.TaxStatus)
		w.Append("cash", k.Cash)
		if len(k.Lots) > 0 {
			w.Append("lots", k.Lots)
		}
		if k.Limit != nil {
			w.Append("limit", k.Limit)
		}
	case *Property:
		w.Append("kind", "property")
		w.Append("asset", k.Asset)
		w.Append("value", k.Value)
	case *Liability:
		w.Append("kind", "liability")
		w.Append("principal", k.Principal)
		w.Append("rate", k.Rate)
	}
	return w.MarshalJSON()
}

func (c Cash) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("value", c.Value)
	w.Optional("profile", c.Profile)
	return w.MarshalJSON()
}

func (l AssetLot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("asset", l.Asset)
	w.Append("purchaseDate", l.PurchaseDate)
	w.Append("units", l.Units)
	w.Append("costBasis", l.CostBasis)
	return w.MarshalJSON()
}

func (c ContributionLimit) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("amount", c.Amount)
	w.Append("period", c.Period.String())
	return w.MarshalJSON()
}

// EncodeEntry writes one ledger entry to w as a single JSON line.
func EncodeEntry(w io.Writer, e LedgerEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode ledger entry: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write ledger entry: %w", err)
	}
	return nil
}

// EncodeLedger writes the whole ledger to w in JSONL format, one entry per
// line. The ledger is already chronological, so entries are written as is.
func EncodeLedger(w io.Writer, l Ledger) error {
	for _, e := range l {
		if err := EncodeEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}
