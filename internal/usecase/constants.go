package usecase

import (
	"errors"
	"time"
)

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultMarkerLease is how long a pending marker blocks redelivery before
	// another invocation may reclaim it
	DefaultMarkerLease = 60 * time.Second

	// DefaultPartyCacheTTL is how long resolved party ids are cached
	DefaultPartyCacheTTL = 10 * time.Minute

	// DefaultPlatformOwnerID owns the platform fee wallet
	DefaultPlatformOwnerID = "tixeats"

	// OutcomeInexactAmount labels webhook events whose gateway amount
	// could not be converted exactly; alert on it.
	OutcomeInexactAmount = "inexact_amount"

	// DefaultSubunitDivisor converts gateway subunits to wallet minor units
	DefaultSubunitDivisor = 100
)

var (
	// ErrCacheMiss is returned by Cache.Get for absent keys.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInconsistentLedger is returned when wallet balances disagree with
	// the transaction log.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match transaction records")
)
