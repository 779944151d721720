package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route and retain them differently.
type EventCategory string

const (
	// CategorySecurity covers events relevant to security monitoring:
	// denied authorization, code mismatches, throttled searches.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for operational visibility:
	// check-ins recorded, occurrences created, exhausted retry budgets.
	CategoryOperations EventCategory = "operations"
)

// Action names an audited action.
type Action string

const (
	ActionAuthorizationDenied   Action = "authorization_denied"
	ActionCheckoutCodeMismatch  Action = "checkout_code_mismatch"
	ActionSearchThrottled       Action = "search_throttled"
	ActionConcurrencyExhausted  Action = "concurrency_exhausted"
	ActionAttendanceRecorded    Action = "attendance_recorded"
	ActionAttendanceReplayed    Action = "attendance_replayed"
	ActionAttendanceCheckedOut  Action = "attendance_checked_out"
	ActionOccurrenceNotOccurred Action = "occurrence_marked_did_not_occur"
)

var actionCategories = map[Action]EventCategory{
	ActionAuthorizationDenied:  CategorySecurity,
	ActionCheckoutCodeMismatch: CategorySecurity,
	ActionSearchThrottled:      CategorySecurity,
}

// Category returns the EventCategory for this action.
// Unknown actions default to CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Severity levels for security events.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SecurityEvent is emitted from services to capture audited actions. It is
// transport-agnostic; sinks serialize it.
type SecurityEvent struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Category  EventCategory     `json:"category"`
	Action    Action            `json:"action"`
	Subject   string            `json:"subject,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	CallerID  string            `json:"caller_id,omitempty"`
	Device    string            `json:"device,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Severity  Severity          `json:"severity"`
	Details   map[string]string `json:"details,omitempty"`
}
