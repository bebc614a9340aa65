package foresight

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLedgerEntryJSON(t *testing.T) {
	tests := []struct {
		name  string
		entry LedgerEntry
		want  string
	}{
		{
			"time advance without source",
			LedgerEntry{
				Date:   NewDate(2025, time.March, 1),
				Source: NoEvent,
				Event:  TimeAdvance{From: NewDate(2025, time.March, 1), To: NewDate(2025, time.March, 2), Days: 1},
			},
			`{"date":"2025-03-01","type":"timeAdvance","from":"2025-03-01","to":"2025-03-02","days":1}`,
		},
		{
			"cash credit with source",
			LedgerEntry{
				Date:   NewDate(2025, time.March, 2),
				Source: 0,
				Event:  CashCredit{To: "checking", Amount: 5000, Kind: FlowIncome},
			},
			`{"date":"2025-03-02","source":0,"type":"cashCredit","to":"checking","amount":5000,"kind":"income"}`,
		},
		{
			"account created",
			LedgerEntry{
				Date:   NewDate(2025, time.January, 1),
				Source: NoEvent,
				Event: AccountCreated{Account: Account{
					ID:   "checking",
					Kind: &Bank{Cash: Cash{Value: 2500, Profile: "hysa"}},
				}},
			},
			`{"date":"2025-01-01","type":"accountCreated","account":{"id":"checking","kind":"bank","cash":{"value":2500,"profile":"hysa"}}}`,
		},
		{
			"asset sold",
			LedgerEntry{
				Date:   NewDate(2025, time.June, 1),
				Source: 2,
				Event: AssetSold{
					Account: "brokerage", Asset: "index",
					LotDate: NewDate(2024, time.January, 15),
					Units:   2, CostBasis: 100, Proceeds: 220, LongTermGain: 120,
				},
			},
			`{"date":"2025-06-01","source":2,"type":"assetSold","account":"brokerage","asset":"index","lotDate":"2024-01-15","units":2,"costBasis":100,"proceeds":220,"shortTermGain":0,"longTermGain":120}`,
		},
		{
			"early withdrawal penalty",
			LedgerEntry{
				Date:   NewDate(2025, time.June, 1),
				Source: 2,
				Event:  EarlyWithdrawalPenalty{Gross: 10000, Penalty: 1000, Rate: 0.1},
			},
			`{"date":"2025-06-01","source":2,"type":"earlyWithdrawalPenalty","gross":10000,"penalty":1000,"rate":0.1}`,
		},
		{
			"year closed",
			LedgerEntry{
				Date:   NewDate(2025, time.December, 31),
				Source: NoEvent,
				Event:  YearClosed{FromYear: 2025, ToYear: 2026},
			},
			`{"date":"2025-12-31","type":"yearClosed","fromYear":2025,"toYear":2026}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.entry)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if string(data) != tc.want {
				t.Errorf("Marshal() = %s, want %s", data, tc.want)
			}
		})
	}
}

func TestAccountJSON(t *testing.T) {
	limit := &ContributionLimit{Amount: 23500, Period: Yearly}
	account := Account{
		ID: "ira",
		Kind: &Investment{
			TaxStatus: TaxDeferred,
			Cash:      Cash{Value: 100},
			Lots: []AssetLot{
				{Asset: "index", PurchaseDate: NewDate(2024, time.January, 15), Units: 10, CostBasis: 1500},
			},
			Limit: limit,
		},
	}
	data, err := json.Marshal(account)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"id":"ira","kind":"investment","taxStatus":"tax-deferred","cash":{"value":100},` +
		`"lots":[{"asset":"index","purchaseDate":"2024-01-15","units":10,"costBasis":1500}],` +
		`"limit":{"amount":23500,"period":"yearly"}}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestEncodeLedger(t *testing.T) {
	l := testLedger()

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, l); err != nil {
		t.Fatalf("EncodeLedger() error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(l) {
		t.Fatalf("EncodeLedger() wrote %d lines, want %d", len(lines), len(l))
	}

	// Every line must be a self-describing JSON object.
	for i, line := range lines {
		var decoded struct {
			Date Date   `json:"date"`
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if decoded.Type == "" {
			t.Errorf("line %d has no type tag: %s", i, line)
		}
		if decoded.Date != l[i].Date {
			t.Errorf("line %d date = %s, want %s", i, decoded.Date, l[i].Date)
		}
	}
}
