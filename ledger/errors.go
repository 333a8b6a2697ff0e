/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers classify with errors.Is against the sentinels; structured
  errors carry enough context to re-prompt the user.

ERROR CATEGORIES:
  1. Redemption errors - business rule violations, no mutation happened
  2. Not-found errors - target officer or record is absent
  3. Store errors - persistence failures, surfaced verbatim
  4. Report errors - optional collaborator failures, never escalated

USAGE:
  if errors.Is(err, ledger.ErrInvalidRedemption) {
      // re-prompt, nothing was written
  }

SEE ALSO:
  - engine.go: produces these errors
  - api/handlers.go: maps them to HTTP status codes
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRedemption is returned when a redeem request asks for a
	// quantity outside (0, record.Amount] or targets a record that is not
	// AVAILABLE. The operation performs no mutation on this failure.
	ErrInvalidRedemption = errors.New("invalid redemption")

	// ErrInvalidGrant is returned when a grant request carries a quantity
	// that is not a positive multiple of half a day, an unknown service
	// type, or a missing service date.
	ErrInvalidGrant = errors.New("invalid grant")

	// ErrInvalidOfficer is returned when an officer payload carries an empty
	// name or an unknown rank.
	ErrInvalidOfficer = errors.New("invalid officer")

	// ErrOfficerNotFound is returned when a referenced officer doesn't exist.
	ErrOfficerNotFound = errors.New("officer not found")

	// ErrRecordNotFound is returned when a referenced leave record doesn't exist.
	ErrRecordNotFound = errors.New("leave record not found")

	// ErrStoreUnavailable is returned when the underlying persistence call
	// fails. The engine never retries; the hosting layer owns that policy.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrReportUnavailable is returned when the narrative-report collaborator
	// failed. Never escalated to a ledger failure.
	ErrReportUnavailable = errors.New("report service unavailable")

	// ErrReportNotConfigured is returned when the report collaborator has no
	// credentials configured. A degraded message, not a ledger failure.
	ErrReportNotConfigured = errors.New("report service not configured")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRedemptionError explains why a redeem request was rejected.
type InvalidRedemptionError struct {
	RecordID  RecordID
	Status    Status
	Available decimal.Decimal
	Requested decimal.Decimal
	Reason    string // "not_available", "quantity_out_of_range", "bad_quantization", "invalid_date"
}

func (e *InvalidRedemptionError) Error() string {
	return fmt.Sprintf("invalid redemption on %s (%s): requested %s of %s available",
		e.RecordID, e.Reason, e.Requested, e.Available)
}

func (e *InvalidRedemptionError) Unwrap() error {
	return ErrInvalidRedemption
}

// StoreError wraps a persistence failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return ErrStoreUnavailable
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRedemption) ||
		errors.Is(err, ErrInvalidGrant) ||
		errors.Is(err, ErrInvalidOfficer)
}

// IsNotFound returns true if the error indicates a missing officer or record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOfficerNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}

// IsReportDegraded returns true if the error is a best-effort report failure.
func IsReportDegraded(err error) bool {
	return errors.Is(err, ErrReportUnavailable) ||
		errors.Is(err, ErrReportNotConfigured)
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
