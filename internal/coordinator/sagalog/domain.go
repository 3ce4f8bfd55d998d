// Package sagalog records every state transition of a checkout attempt.
//
// Rows are append-only. The latest row for an attempt is its current state,
// and ORPHANED rows point at orders that were created upstream but never
// paid, so they can be reconciled by hand or by the storefront.
package sagalog

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("sagalog: attempt not found")

type Status string

const (
	StatusStarted   Status = "STARTED"
	StatusStepDone  Status = "STEP_DONE"
	StatusCompleted Status = "COMPLETED"
	StatusDeclined  Status = "DECLINED"
	StatusFailed    Status = "FAILED"
	// StatusOrphaned marks an attempt that left an unpaid order behind.
	StatusOrphaned Status = "ORPHANED"
)

// Entry is a single row in the checkout_attempt_logs table.
type Entry struct {
	AttemptID string
	SessionID string
	Status    Status

	// State is the sequencer state reached (or failed in) by this transition.
	State string

	PaymentMethod   string
	OrderID         string
	PaymentIntentID string

	// ErrorMessages is a JSON array of failure details.
	ErrorMessages string

	TraceID string
	SpanID  string

	UpdatedAt time.Time
}
