/*
errors.go - Centralized error types for the booking engine

PURPOSE:
  All engine error types in one place. Rejections are deterministic business
  rule outcomes surfaced verbatim to the caller; internal errors are I/O
  failures that are fatal to the request.

ERROR CATEGORIES:
  1. Rejection - admission rule violations and invalid cancellations
  2. Internal  - store load/persist failures

USAGE:
  result, err := engine.Admit(ctx, req, staffID)
  if rej, ok := booking.AsRejection(err); ok {
      // user-facing: rej.Category, rej.Message
  }
*/
package booking

import (
	"errors"
	"fmt"
)

// =============================================================================
// CATEGORIES - Which operation produced a rejection
// =============================================================================

type Category string

const (
	CategoryReservation  Category = "Reservation"
	CategoryCancellation Category = "Cancellation"
)

// =============================================================================
// REJECTION - Deterministic, user-facing refusal
// =============================================================================

// RejectionError carries the operation category and the exact human-readable
// reason. Rejections are never retried: given the same store snapshot the
// outcome is the same.
type RejectionError struct {
	Category Category
	Message  string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Category, e.Message)
}

// reject builds a RejectionError with a formatted message.
func reject(cat Category, format string, args ...any) *RejectionError {
	return &RejectionError{Category: cat, Message: fmt.Sprintf(format, args...)}
}

// AsRejection unwraps err into a RejectionError when it is one.
func AsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// =============================================================================
// SENTINELS
// =============================================================================

var (
	// ErrPersist wraps store persistence failures. The on-disk state stays
	// consistent with the previous request; the in-flight mutation is lost.
	ErrPersist = errors.New("store persist failed")
)

// IsInternal reports whether err is fatal to the request rather than a
// business rule outcome.
func IsInternal(err error) bool {
	if err == nil {
		return false
	}
	_, rejection := AsRejection(err)
	return !rejection
}
