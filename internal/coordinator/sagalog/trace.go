package sagalog

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo returns the ids of the active span in ctx, or empty
// strings when there is none.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// Transition describes one row before trace ids and timestamp are stamped.
type Transition struct {
	AttemptID       string
	SessionID       string
	Status          Status
	State           string
	PaymentMethod   string
	OrderID         string
	PaymentIntentID string
	Errors          []string
}

// NewEntry stamps t with the trace info from ctx and the current time.
//
//	entry := sagalog.NewEntry(ctx, sagalog.Transition{AttemptID: id, Status: sagalog.StatusStepDone, State: "OrderCreated"})
//	_ = repo.Save(ctx, entry)
func NewEntry(ctx context.Context, t Transition) *Entry {
	ti := ExtractTraceInfo(ctx)

	errJSON := "[]"
	if len(t.Errors) > 0 {
		if b, err := json.Marshal(t.Errors); err == nil {
			errJSON = string(b)
		}
	}

	return &Entry{
		AttemptID:       t.AttemptID,
		SessionID:       t.SessionID,
		Status:          t.Status,
		State:           t.State,
		PaymentMethod:   t.PaymentMethod,
		OrderID:         t.OrderID,
		PaymentIntentID: t.PaymentIntentID,
		ErrorMessages:   errJSON,
		TraceID:         ti.TraceID,
		SpanID:          ti.SpanID,
		UpdatedAt:       time.Now().UTC(),
	}
}

// Errors decodes ErrorMessages. Empty and malformed values decode to nil.
func (e *Entry) Errors() []string {
	var errs []string
	if err := json.Unmarshal([]byte(e.ErrorMessages), &errs); err != nil || len(errs) == 0 {
		return nil
	}
	return errs
}
