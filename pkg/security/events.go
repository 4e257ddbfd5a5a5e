package security

import "time"

// EventCategory groups audit events
type EventCategory string

const (
	CategoryAuthentication    EventCategory = "authentication"     // stored credentials sent to a host
	CategoryDataAccess        EventCategory = "data_access"        // drive mappings added or removed
	CategoryConfigChange      EventCategory = "config_change"      // share configuration edited or reloaded
	CategorySecurityViolation EventCategory = "security_violation" // values rejected before net use
)

// EventSeverity decides how an event is logged: info and warning go
// through V levels, error and critical through logger.Error.
type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityError    EventSeverity = "error"
	SeverityCritical EventSeverity = "critical"
)

// EventOutcome is how the audited action ended
type EventOutcome string

const (
	OutcomeSuccess EventOutcome = "success"
	OutcomeFailure EventOutcome = "failure"
	OutcomeDenied  EventOutcome = "denied" // refused before running
	OutcomeUnknown EventOutcome = "unknown"
)

// EventType identifies an audit event
type EventType string

const (
	EventCredentialUse EventType = "credential_use"
	EventProbeAttempt  EventType = "probe_attempt"
	EventProbeSuccess  EventType = "probe_success"
	EventProbeFailure  EventType = "probe_failure"

	EventMountRequest      EventType = "mount_request"
	EventMountSuccess      EventType = "mount_success"
	EventMountFailure      EventType = "mount_failure"
	EventUnmountRequest    EventType = "unmount_request"
	EventUnmountSuccess    EventType = "unmount_success"
	EventUnmountFailure    EventType = "unmount_failure"
	EventUnmountEverything EventType = "unmount_everything"

	EventConfigEdited   EventType = "config_edited"
	EventConfigReloaded EventType = "config_reloaded"
	EventConfigMissing  EventType = "config_missing"

	EventValidationFailure EventType = "validation_failure"
)

// SecurityEvent is one audit record. It never carries a password.
type SecurityEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	EventType EventType     `json:"event_type"`
	Category  EventCategory `json:"category"`
	Severity  EventSeverity `json:"severity"`
	Outcome   EventOutcome  `json:"outcome"`
	Message   string        `json:"message"`

	// Who and which config section
	Username string `json:"username,omitempty"`
	Section  string `json:"section,omitempty"`

	// What was touched
	TargetHost string `json:"target_host,omitempty"`
	Share      string `json:"share,omitempty"`
	Letter     string `json:"letter,omitempty"`
	ConfigPath string `json:"config_path,omitempty"`

	// OperationID matches the orchestrator log lines of the same operation
	OperationID string            `json:"operation_id,omitempty"`
	Operation   string            `json:"operation,omitempty"`
	Duration    time.Duration     `json:"duration_ms,omitempty"`
	Error       string            `json:"error,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
}

// NewSecurityEvent creates an event stamped with the current UTC time
func NewSecurityEvent(eventType EventType, category EventCategory, severity EventSeverity, message string) *SecurityEvent {
	return &SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Category:  category,
		Severity:  severity,
		Message:   message,
		Details:   make(map[string]string),
	}
}

func (e *SecurityEvent) WithOutcome(outcome EventOutcome) *SecurityEvent {
	e.Outcome = outcome
	return e
}

// WithIdentity sets the configured user and section
func (e *SecurityEvent) WithIdentity(username, section string) *SecurityEvent {
	e.Username = username
	e.Section = section
	return e
}

// WithTarget sets the remote share and the local letter
func (e *SecurityEvent) WithTarget(host, share, letter string) *SecurityEvent {
	e.TargetHost = host
	e.Share = share
	e.Letter = letter
	return e
}

// WithOperation links the event to an orchestrator operation
func (e *SecurityEvent) WithOperation(operationID, operation string, duration time.Duration) *SecurityEvent {
	e.OperationID = operationID
	e.Operation = operation
	e.Duration = duration
	return e
}

// WithError records err's message; nil leaves the event untouched
func (e *SecurityEvent) WithError(err error) *SecurityEvent {
	if err == nil {
		return e
	}
	e.Error = err.Error()
	return e
}

// WithDetail adds a free-form key, logged after the fixed keys in key order
func (e *SecurityEvent) WithDetail(key, value string) *SecurityEvent {
	if e.Details == nil {
		e.Details = map[string]string{key: value}
		return e
	}
	e.Details[key] = value
	return e
}
