package foresight

import "errors"

// Sentinel errors for referential failures. Call sites wrap them with
// fmt.Errorf("...: %w", err) context; callers test with errors.Is. Configs
// may reference stale ids, so queries return these instead of panicking.
var (
	// ErrAccountNotFound reports a reference to an account the state does
	// not hold.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAssetNotFound reports a position lookup for an asset the account
	// does not hold.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrAssetPriceNotFound reports an asset with no usable market price.
	ErrAssetPriceNotFound = errors.New("asset price not found")

	// ErrNotInvestment reports an asset operation against an account that
	// holds no lots.
	ErrNotInvestment = errors.New("not an investment account")

	// ErrNotCashAccount reports a cash operation against an account with no
	// cash balance.
	ErrNotCashAccount = errors.New("not a cash account")

	// ErrExternalBalance reports a TransferAmount that references the
	// balance of the external world, which has none.
	ErrExternalBalance = errors.New("external endpoint has no balance")

	// ErrEventNotFound reports a reference to an event name or id that was
	// never defined.
	ErrEventNotFound = errors.New("event not found")

	// ErrProfileNotFound reports a reference to a return profile the market
	// was not built with.
	ErrProfileNotFound = errors.New("return profile not found")

	// ErrRateDataExhausted reports a market lookup beyond the sampled
	// window.
	ErrRateDataExhausted = errors.New("rate data exhausted")
)
