package sagalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestNewEntry_WithoutSpan(t *testing.T) {
	entry := NewEntry(context.Background(), Transition{
		AttemptID: "att-1",
		Status:    StatusStarted,
		State:     "Validating",
	})

	assert.Equal(t, "att-1", entry.AttemptID)
	assert.Equal(t, "[]", entry.ErrorMessages)
	assert.Empty(t, entry.TraceID)
	assert.False(t, entry.UpdatedAt.IsZero())
	assert.Nil(t, entry.Errors())
}

func TestNewEntry_WithSpan(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	entry := NewEntry(ctx, Transition{
		AttemptID: "att-1",
		Status:    StatusOrphaned,
		Errors:    []string{"Your card was declined."},
	})

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry.TraceID)
	assert.Equal(t, "00f067aa0ba902b7", entry.SpanID)
	assert.Equal(t, []string{"Your card was declined."}, entry.Errors())
}

func TestEntry_Errors(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   []string
	}{
		{"empty list", "[]", nil},
		{"malformed", "not-json", nil},
		{"messages", `["Order creation failed","timeout"]`, []string{"Order creation failed", "timeout"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{ErrorMessages: tt.stored}
			assert.Equal(t, tt.want, e.Errors())
		})
	}
}
