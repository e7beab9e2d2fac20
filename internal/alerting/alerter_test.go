package alerting

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityInfo, "INFO"},
		{SeverityWarning, "WARNING"},
		{SeverityHigh, "HIGH"},
		{SeverityCritical, "CRITICAL"},
		{Severity(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.want {
			t.Errorf("%d.String() = %s, want %s", tt.severity, got, tt.want)
		}
	}
}

func TestFormatFields(t *testing.T) {
	got := FormatFields("band", "band-0@17880", "qty", 16)
	if !strings.Contains(got, "band: band-0@17880") || !strings.Contains(got, "qty: 16") {
		t.Errorf("FormatFields = %q", got)
	}

	if got := FormatFields(); got != "" {
		t.Errorf("empty fields = %q, want empty", got)
	}

	// Odd trailing value is dropped, not panicked on.
	if got := FormatFields("key"); got != "" {
		t.Errorf("dangling key = %q, want empty", got)
	}
}

func TestEventSeverity(t *testing.T) {
	if EventSeverity(EventRetryExhausted) != SeverityHigh {
		t.Error("retry exhausted should be high severity")
	}
	if EventSeverity(EventPartialFill) != SeverityWarning {
		t.Error("partial fill should be warning severity")
	}
	if EventSeverity(EventOrderFilled) != SeverityInfo {
		t.Error("order filled should be info severity")
	}
}

func TestMockAlerter(t *testing.T) {
	m := NewMockAlerter()
	ctx := context.Background()

	_ = m.Alert(ctx, SeverityInfo, "strategy started")
	_ = m.Alert(ctx, SeverityHigh, "retry budget exhausted", "remaining", 4)

	if m.Count() != 2 {
		t.Errorf("count = %d, want 2", m.Count())
	}
	if !m.HasAlertWithSeverity(SeverityHigh) {
		t.Error("expected high severity alert")
	}
	if !m.HasAlertContaining("exhausted") {
		t.Error("expected alert containing 'exhausted'")
	}
	if m.CountContaining("started") != 1 {
		t.Errorf("count containing 'started' = %d", m.CountContaining("started"))
	}
	if last := m.LastAlert(); last == nil || last.Severity != SeverityHigh {
		t.Errorf("last alert = %+v", last)
	}

	m.Clear()
	if m.Count() != 0 || m.LastAlert() != nil {
		t.Error("clear should drop all alerts")
	}
}

// failingAlerter always errors, for multi-channel fan-out tests.
type failingAlerter struct{}

func (failingAlerter) Name() string { return "failing" }
func (failingAlerter) Alert(context.Context, Severity, string, ...any) error {
	return errors.New("delivery failed")
}

func TestMultiAlerterFansOut(t *testing.T) {
	a := NewMockAlerter()
	b := NewMockAlerter()
	multi := NewMultiAlerter(nil, a, b)

	if err := multi.Alert(context.Background(), SeverityInfo, "hello"); err != nil {
		t.Fatalf("Alert: %v", err)
	}
	if a.Count() != 1 || b.Count() != 1 {
		t.Errorf("counts = %d/%d, want 1/1", a.Count(), b.Count())
	}
}

func TestMultiAlerterCollectsErrors(t *testing.T) {
	ok := NewMockAlerter()
	multi := NewMultiAlerter(nil, ok)
	multi.AddAlerter(failingAlerter{})

	err := multi.Alert(context.Background(), SeverityWarning, "partial fill")
	if err == nil {
		t.Fatal("expected joined error from failing channel")
	}
	// The healthy channel still received the alert.
	if ok.Count() != 1 {
		t.Errorf("healthy channel count = %d, want 1", ok.Count())
	}
}

func TestMultiAlerterEmpty(t *testing.T) {
	multi := NewMultiAlerter(nil)
	if err := multi.Alert(context.Background(), SeverityInfo, "noop"); err != nil {
		t.Errorf("empty multi alerter should be a no-op, got %v", err)
	}
}
