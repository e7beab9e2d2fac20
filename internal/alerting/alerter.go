// Package alerting delivers human-readable notifications for every strategy
// state transition. Delivery is fire-and-forget: a failed alert is logged and
// never fails the strategy.
package alerting

import (
	"context"
	"fmt"
)

// Severity represents the alert severity level.
type Severity int

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning is for warning messages.
	SeverityWarning
	// SeverityHigh is for high priority alerts.
	SeverityHigh
	// SeverityCritical is for alerts requiring immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Emoji returns an emoji for the severity level.
func (s Severity) Emoji() string {
	switch s {
	case SeverityInfo:
		return "ℹ️"
	case SeverityWarning:
		return "⚠️"
	case SeverityHigh:
		return "🔴"
	case SeverityCritical:
		return "🚨"
	default:
		return "❓"
	}
}

// Alerter defines the interface for sending alerts.
type Alerter interface {
	// Alert sends an alert with the given severity and message.
	Alert(ctx context.Context, severity Severity, message string, fields ...any) error
	// Name returns the name of the alerter.
	Name() string
}

// FormatFields converts variadic key/value fields to a formatted string.
func FormatFields(fields ...any) string {
	if len(fields) == 0 {
		return ""
	}

	result := ""
	for i := 0; i < len(fields)-1; i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		value := fields[i+1]
		if result != "" {
			result += "\n"
		}
		result += fmt.Sprintf("• %s: %v", key, value)
	}
	return result
}

// Event represents a pre-defined strategy event type.
type Event string

const (
	// EventStrategyStarted is sent when the wing strategy starts.
	EventStrategyStarted Event = "strategy_started"
	// EventStrategyCompleted is sent when every band has triggered.
	EventStrategyCompleted Event = "strategy_completed"
	// EventBandTriggered is sent when a band's trigger predicate first holds.
	EventBandTriggered Event = "band_triggered"
	// EventOrderFilled is sent when a combo order fills completely.
	EventOrderFilled Event = "order_filled"
	// EventPartialFill is sent when a combo order fills partially.
	EventPartialFill Event = "partial_fill"
	// EventRetryExhausted is sent when the retry budget runs out unfilled.
	EventRetryExhausted Event = "retry_exhausted"
	// EventMarketClosed is sent when the loop suspends for a closed session.
	EventMarketClosed Event = "market_closed"
)

// EventSeverity returns the default severity for an event.
func EventSeverity(event Event) Severity {
	switch event {
	case EventRetryExhausted:
		return SeverityHigh
	case EventPartialFill, EventMarketClosed:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
