package cmd

import (
	"time"

	"github.com/etnz/foresight"
)

// demoPlan builds the household plan behind the demo, ledger and query
// subcommands: a salaried worker born in 1985 who saves into tax-advantaged
// accounts, pays down a mortgage, and retires at 65. Returns are fixed so
// every run of the demo tells the same story.
func demoPlan(years int) (foresight.SimulationConfig, error) {
	b := foresight.NewPlan().
		Start(2025, time.January, 1).
		Born(1985, time.June, 15).
		Years(years).
		Inflation(0.025).
		Taxes(foresight.DefaultTaxConfig())

	b.Asset(foresight.USTotalMarket("vti"))
	b.Asset(foresight.TotalBond("bnd"))

	b.Bank("checking", 40_000)
	b.Account(foresight.Brokerage("brokerage").Holding("vti", 100, 35_000))
	b.Account(foresight.Traditional401k("401k").
		Holding("vti", 200, 60_000).
		Limit(23_500, foresight.Yearly))
	b.Account(foresight.RothIRA("roth").Limit(7_000, foresight.Yearly))
	b.Account(foresight.Mortgage("mortgage", 320_000, 0.045))

	b.Event(foresight.IncomeEvent("salary").
		To("checking").Amount(10_000).Monthly().UntilAge(65))
	b.Event(foresight.ExpenseEvent("living").
		From("checking").Amount(3_500).Monthly())
	b.Event(foresight.ExpenseEvent("college").
		From("checking").Amount(30_000).On(2043, time.September, 1).Once())

	// The payment stops by itself: once the principal reaches zero the
	// transfer resolves to nothing.
	b.Event(foresight.CustomEvent("mortgage payment",
		foresight.CashTransfer{
			From:   "checking",
			To:     "mortgage",
			Amount: foresight.Min(foresight.Fixed(2_100), foresight.ZeroTargetBalance),
		}).Monthly())

	b.Event(foresight.PurchaseEvent("401k contribution").
		From("checking").Into("401k", "vti").Amount(1_200).
		Monthly().UntilAge(65).CapYearly(23_500))
	b.Event(foresight.PurchaseEvent("roth contribution").
		From("checking").Into("roth", "vti").Amount(500).
		Monthly().UntilAge(65))
	b.Event(foresight.PurchaseEvent("brokerage dca").
		From("checking").Into("brokerage", "vti").Amount(300).
		Monthly().UntilAge(65))

	b.Event(foresight.WithdrawalEvent("retirement income").
		To("checking").Amount(6_500).Monthly().StartingAtAge(65))
	b.Event(foresight.CustomEvent("required distributions",
		foresight.ApplyRmd{To: "checking"}).Yearly().StartingAtAge(75))

	return b.Build()
}
