// Package foresight simulates a personal financial plan over decades. It is
// designed to be deterministic, auditable, and extensible: the same plan and
// seed always produce the same result, and every dollar movement is recorded
// with its provenance.
//
// The core functionalities include:
//   - Plan Building: A fluent builder assembling accounts, priced assets and
//     scheduled events into a validated, self-contained simulation config.
//   - Accounts: Bank cash, taxable and tax-advantaged investment containers
//     with dated asset lots, property, and interest-accruing liabilities.
//   - Events: Money movements driven by triggers (dates, ages, balances,
//     net worth, other events) with a transfer-amount algebra, repeating
//     schedules, caps and event-to-event control.
//   - Markets: Annual return draws per profile (fixed, normal, log-normal,
//     Student-t, regime-switching, historical bootstrap), replayed with daily
//     compounding from a single seed.
//   - Taxes: Progressive federal brackets, capital gains by holding period,
//     early-withdrawal penalties, contribution limits and required minimum
//     distributions, withheld as money moves and summarized per year.
//   - Results: Wealth snapshots, yearly tax and cash-flow summaries, and an
//     append-only ledger encodable as deterministic JSON.
//
// This package serves as the foundational logic for the `foresight`
// command-line tool, ensuring that all operations are consistent and
// reproducible.
package foresight
