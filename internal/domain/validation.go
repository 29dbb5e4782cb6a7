package domain

import (
	"fmt"
	"strings"
)

// Validation constants
const (
	MaxOwnerIDLength = 128
	MaxPageSize      = 1000
	DefaultPageSize  = 50
)

// ValidateOwnerID checks an owner id supplied at onboarding.
func ValidateOwnerID(ownerID string) error {
	trimmed := strings.TrimSpace(ownerID)

	if trimmed == "" {
		return fmt.Errorf("%w: owner id cannot be empty", ErrValidation)
	}

	if trimmed != ownerID {
		return fmt.Errorf("%w: owner id has surrounding whitespace", ErrValidation)
	}

	if len(ownerID) > MaxOwnerIDLength {
		return fmt.Errorf("%w: owner id exceeds %d characters", ErrValidation, MaxOwnerIDLength)
	}

	return nil
}

// ValidateWalletRef checks an owner reference.
func ValidateWalletRef(ref WalletRef) error {
	if !ref.OwnerKind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidOwnerKind, ref.OwnerKind)
	}
	return ValidateOwnerID(ref.OwnerID)
}

// ValidatePagination clamps limit and offset.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
