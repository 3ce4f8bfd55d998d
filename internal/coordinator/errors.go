package coordinator

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalTransition    = errors.New("illegal state transition")
	ErrSubmissionInProgress = errors.New("a checkout submission is already in progress for this session")
	ErrEmptyCheckout        = errors.New("nothing to check out")
	ErrMissingPaymentMethod = errors.New("card payment requires a payment method id")
)

// StepError is a fatal failure of one sequencer step. Message is safe to
// show to the customer; Err keeps the cause for logs.
type StepError struct {
	Step    State
	Message string
	Err     error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Step, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Step, e.Message, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
