package security

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"k8s.io/klog/v2"
)

// Logger writes audit events for credential use and configuration changes.
// Passwords are never part of an event.
type Logger struct {
	logger  klog.Logger
	metrics *SecurityMetrics
}

// NewLogger creates a security logger writing through logger
func NewLogger(logger klog.Logger) *Logger {
	return &Logger{
		logger:  klog.LoggerWithName(logger, "audit"),
		metrics: NewMetrics(),
	}
}

// severityVerbosity maps EventSeverity to the klog verbosity of info events.
// Error and critical events are always logged as errors.
var severityVerbosity = map[EventSeverity]int{
	SeverityInfo:    2,
	SeverityWarning: 1,
}

// LogEvent logs a security event with structured logging
func (l *Logger) LogEvent(event *SecurityEvent) {
	l.metrics.RecordEvent(event)

	kv := eventKeyValues(event)
	switch event.Severity {
	case SeverityError, SeverityCritical:
		var err error
		if event.Error != "" {
			err = errors.New(event.Error)
		}
		l.logger.Error(err, "[SECURITY] "+event.Message, kv...)
	default:
		level, ok := severityVerbosity[event.Severity]
		if !ok {
			level = severityVerbosity[SeverityInfo]
		}
		l.logger.V(level).Info("[SECURITY] "+event.Message, kv...)
	}

	// For critical events, also log as JSON for easy parsing
	if event.Severity == SeverityCritical {
		if jsonBytes, err := json.Marshal(event); err == nil {
			l.logger.Error(nil, "CRITICAL_SECURITY_EVENT", "event", string(jsonBytes))
		}
	}
}

// eventKeyValues flattens the populated event fields into klog key/value pairs
func eventKeyValues(event *SecurityEvent) []interface{} {
	kv := []interface{}{
		"category", event.Category,
		"type", event.EventType,
		"severity", event.Severity,
		"outcome", event.Outcome,
	}

	add := func(key, value string) {
		if value != "" {
			kv = append(kv, key, value)
		}
	}
	add("operationID", event.OperationID)
	add("operation", event.Operation)
	add("section", event.Section)
	add("username", event.Username)
	add("host", event.TargetHost)
	add("share", event.Share)
	add("letter", event.Letter)
	add("path", event.ConfigPath)
	if event.Duration > 0 {
		kv = append(kv, "durationMs", event.Duration.Milliseconds())
	}

	// Stable order for details
	keys := make([]string, 0, len(event.Details))
	for key := range event.Details {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		kv = append(kv, key, event.Details[key])
	}

	return kv
}

// OperationLogConfig defines the configuration for a logging operation
type OperationLogConfig struct {
	Operation   string
	Category    EventCategory
	SuccessType EventType
	FailureType EventType
	RequestType EventType
	SuccessSev  EventSeverity
	FailureSev  EventSeverity
	SuccessMsg  string
	FailureMsg  string
	RequestMsg  string
}

// operationConfigs defines the logging configuration for all operations
var operationConfigs = map[string]OperationLogConfig{
	"Mount":   {Operation: "mount", Category: CategoryDataAccess, SuccessType: EventMountSuccess, FailureType: EventMountFailure, RequestType: EventMountRequest, SuccessSev: SeverityInfo, FailureSev: SeverityError, SuccessMsg: "Drive mapped", FailureMsg: "Drive mapping failed", RequestMsg: "Drive mapping requested"},
	"Unmount": {Operation: "unmount", Category: CategoryDataAccess, SuccessType: EventUnmountSuccess, FailureType: EventUnmountFailure, RequestType: EventUnmountRequest, SuccessSev: SeverityInfo, FailureSev: SeverityWarning, SuccessMsg: "Drive unmapped", FailureMsg: "Drive unmapping failed", RequestMsg: "Drive unmapping requested"},
	"Probe":   {Operation: "probe", Category: CategoryAuthentication, SuccessType: EventProbeSuccess, FailureType: EventProbeFailure, RequestType: EventProbeAttempt, SuccessSev: SeverityInfo, FailureSev: SeverityWarning, SuccessMsg: "Share listing succeeded", FailureMsg: "Share listing failed", RequestMsg: "Share listing attempt"},
}

// EventField is a functional option for configuring SecurityEvent fields
type EventField func(*SecurityEvent)

// WithTarget sets the remote share and local letter
func WithTarget(host, share, letter string) EventField {
	return func(e *SecurityEvent) {
		e.TargetHost = host
		e.Share = share
		e.Letter = letter
	}
}

// WithIdentity sets the configured user and section
func WithIdentity(username, section string) EventField {
	return func(e *SecurityEvent) {
		e.Username = username
		e.Section = section
	}
}

// WithOperationID ties the event to the operation's log lines
func WithOperationID(id string) EventField {
	return func(e *SecurityEvent) {
		e.OperationID = id
	}
}

// WithDuration sets operation duration
func WithDuration(d time.Duration) EventField {
	return func(e *SecurityEvent) {
		e.Duration = d
	}
}

// WithError sets error information
func WithError(err error) EventField {
	return func(e *SecurityEvent) {
		if err != nil {
			e.Error = err.Error()
		}
	}
}

// LogOperation logs an operation using the table-driven configuration
func (l *Logger) LogOperation(config OperationLogConfig, outcome EventOutcome, fields ...EventField) {
	var eventType EventType
	var severity EventSeverity
	var message string

	switch outcome {
	case OutcomeSuccess:
		eventType = config.SuccessType
		severity = config.SuccessSev
		message = config.SuccessMsg
	case OutcomeFailure:
		eventType = config.FailureType
		severity = config.FailureSev
		message = config.FailureMsg
	default:
		eventType = config.RequestType
		severity = SeverityInfo
		message = config.RequestMsg
	}

	event := NewSecurityEvent(eventType, config.Category, severity, message)
	event.Operation = config.Operation
	event.Outcome = outcome

	for _, field := range fields {
		field(event)
	}

	l.LogEvent(event)
}

// LogCredentialUse records that a section's stored credentials were sent to a host
func (l *Logger) LogCredentialUse(operationID, section, username, host string) {
	event := NewSecurityEvent(
		EventCredentialUse,
		CategoryAuthentication,
		SeverityInfo,
		"Stored credentials sent to host",
	).WithIdentity(username, section).
		WithTarget(host, "", "").
		WithOperation(operationID, "mount", 0).
		WithOutcome(OutcomeUnknown)
	l.LogEvent(event)
}

// LogMount logs drive mapping events
func (l *Logger) LogMount(operationID, section, username, host, share, letter string, outcome EventOutcome, err error, duration time.Duration) {
	l.LogOperation(operationConfigs["Mount"], outcome,
		WithOperationID(operationID),
		WithIdentity(username, section),
		WithTarget(host, share, letter),
		WithDuration(duration),
		WithError(err))
}

// LogUnmount logs drive unmapping events
func (l *Logger) LogUnmount(operationID, letter string, outcome EventOutcome, err error, duration time.Duration) {
	l.LogOperation(operationConfigs["Unmount"], outcome,
		WithOperationID(operationID),
		WithTarget("", "", letter),
		WithDuration(duration),
		WithError(err))
}

// LogProbe logs SMB share listing attempts
func (l *Logger) LogProbe(section, username, host string, outcome EventOutcome, err error) {
	l.LogOperation(operationConfigs["Probe"], outcome,
		WithIdentity(username, section),
		WithTarget(host, "", ""),
		WithError(err))
}

// LogUnmountEverything logs removal of every network connection
func (l *Logger) LogUnmountEverything(operationID string, outcome EventOutcome, err error) {
	severity := SeverityWarning
	if outcome == OutcomeFailure {
		severity = SeverityError
	}
	event := NewSecurityEvent(
		EventUnmountEverything,
		CategoryDataAccess,
		severity,
		"All network connections dropped",
	).WithOperation(operationID, "unmount_everything", 0).
		WithOutcome(outcome).
		WithError(err)
	l.LogEvent(event)
}

// LogConfigEdited logs an interactive edit of the share configuration
func (l *Logger) LogConfigEdited(path string, changed bool, err error) {
	outcome := OutcomeSuccess
	severity := SeverityInfo
	if err != nil {
		outcome = OutcomeFailure
		severity = SeverityError
	}
	event := NewSecurityEvent(
		EventConfigEdited,
		CategoryConfigChange,
		severity,
		"Config file edited",
	).WithOutcome(outcome).
		WithError(err)
	event.ConfigPath = path
	if changed {
		event.WithDetail("changed", "true")
	} else {
		event.WithDetail("changed", "false")
	}
	l.LogEvent(event)
}

// LogConfigReloaded logs a reload triggered by a change on disk
func (l *Logger) LogConfigReloaded(path string, sections int, err error) {
	eventType := EventConfigReloaded
	outcome := OutcomeSuccess
	severity := SeverityInfo
	message := "Config file reloaded"
	if err != nil {
		eventType = EventConfigMissing
		outcome = OutcomeFailure
		severity = SeverityCritical
		message = "Config file could not be reloaded"
	}
	event := NewSecurityEvent(eventType, CategoryConfigChange, severity, message).
		WithOutcome(outcome).
		WithError(err)
	event.ConfigPath = path
	if err == nil {
		event.WithDetail("sections", strconv.Itoa(sections))
	}
	l.LogEvent(event)
}

// LogValidationFailure logs a configured value rejected before it reached net use
func (l *Logger) LogValidationFailure(section, parameter, reason string) {
	event := NewSecurityEvent(
		EventValidationFailure,
		CategorySecurityViolation,
		SeverityWarning,
		"Validation failure",
	).WithIdentity("", section).
		WithOutcome(OutcomeDenied).
		WithDetail("parameter", parameter).
		WithDetail("reason", reason)
	l.LogEvent(event)
}

// GetMetrics returns the event counters for this logger
func (l *Logger) GetMetrics() *SecurityMetrics {
	return l.metrics
}
