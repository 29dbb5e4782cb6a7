package domain

import "errors"

var (
	// Validation errors. None of these touch the store.
	ErrValidation         = errors.New("validation failed")
	ErrInvalidAmount      = errors.New("amount must not be negative")
	ErrInexactConversion  = errors.New("gateway amount is not a whole number of minor units")
	ErrUnbalancedIntent   = errors.New("leg deltas of a balanced intent must sum to zero")
	ErrEmptyIntent        = errors.New("intent has no legs")
	ErrMissingCorrelation = errors.New("intent has no correlation id")
	ErrUnknownIntentKind  = errors.New("unknown intent kind")
	ErrInvalidOwnerKind   = errors.New("invalid wallet owner kind")
	ErrAmountOverflow     = errors.New("amount overflows the representable range")

	// Wallet errors
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletInactive      = errors.New("wallet is deactivated")
	ErrWalletExists        = errors.New("wallet already exists for owner")
	ErrInsufficientFunds   = errors.New("wallet balance would become negative")
	ErrVersionConflict     = errors.New("wallet version conflict")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Party resolution errors
	ErrOrderNotFound = errors.New("order not found")
	ErrPartyNotFound = errors.New("party not found")

	// Event errors
	ErrInvalidOrderState = errors.New("order is not completed")
	ErrUnsupportedEvent  = errors.New("unsupported event")
	ErrMalformedPayload  = errors.New("malformed payload")

	// Idempotency and store errors
	ErrConcurrentDuplicate = errors.New("intent with the same correlation id is in progress")
	ErrMarkerNotFound      = errors.New("idempotency marker not found")
	ErrRetryableStore      = errors.New("store contention, retry later")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrDuplicateRecord     = errors.New("transaction record already exists")
)

// ErrorClass tells callers whether a failure is worth retrying.
type ErrorClass string

const (
	ClassNone      ErrorClass = ""
	ClassRejected  ErrorClass = "rejected"
	ClassRetryable ErrorClass = "retryable"
	ClassFatal     ErrorClass = "fatal"
)

// Classify maps an error to the bounded set of caller-visible outcomes.
// Unknown errors are treated as retryable store failures.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrAmountOverflow),
		errors.Is(err, ErrInsufficientFunds):
		return ClassFatal
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInexactConversion),
		errors.Is(err, ErrUnbalancedIntent),
		errors.Is(err, ErrEmptyIntent),
		errors.Is(err, ErrMissingCorrelation),
		errors.Is(err, ErrUnknownIntentKind),
		errors.Is(err, ErrInvalidOwnerKind),
		errors.Is(err, ErrWalletNotFound),
		errors.Is(err, ErrWalletInactive),
		errors.Is(err, ErrWalletExists),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrPartyNotFound),
		errors.Is(err, ErrTransactionNotFound),
		errors.Is(err, ErrInvalidOrderState),
		errors.Is(err, ErrUnsupportedEvent),
		errors.Is(err, ErrMalformedPayload):
		return ClassRejected
	default:
		return ClassRetryable
	}
}

// Reason returns a short stable label for metrics and logs.
func Reason(err error) string {
	reasons := []struct {
		target error
		label  string
	}{
		{ErrUnsupportedEvent, "unsupported_event"},
		{ErrMalformedPayload, "malformed_payload"},
		{ErrInvalidOrderState, "invalid_order_state"},
		{ErrWalletNotFound, "not_found"},
		{ErrOrderNotFound, "not_found"},
		{ErrPartyNotFound, "not_found"},
		{ErrWalletInactive, "wallet_inactive"},
		{ErrInsufficientFunds, "insufficient_funds"},
		{ErrAmountOverflow, "amount_overflow"},
		{ErrConcurrentDuplicate, "concurrent_duplicate"},
		{ErrRetryableStore, "version_conflict"},
		{ErrVersionConflict, "version_conflict"},
		{ErrStoreUnavailable, "store_unavailable"},
	}
	for _, r := range reasons {
		if errors.Is(err, r.target) {
			return r.label
		}
	}
	if Classify(err) == ClassRejected {
		return "validation"
	}
	return "internal"
}
