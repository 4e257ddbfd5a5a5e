package security

import (
	"fmt"
	"sync"
	"time"
)

// SecurityMetrics counts audit events by type and severity
type SecurityMetrics struct {
	mu sync.RWMutex

	// Credential metrics
	CredentialUses int64 `json:"credential_uses"`
	ProbeAttempts  int64 `json:"probe_attempts"`
	ProbeSuccesses int64 `json:"probe_successes"`
	ProbeFailures  int64 `json:"probe_failures"`

	// Drive mapping metrics
	MountRequests      int64 `json:"mount_requests"`
	MountSuccesses     int64 `json:"mount_successes"`
	MountFailures      int64 `json:"mount_failures"`
	UnmountRequests    int64 `json:"unmount_requests"`
	UnmountSuccesses   int64 `json:"unmount_successes"`
	UnmountFailures    int64 `json:"unmount_failures"`
	UnmountEverythings int64 `json:"unmount_everythings"`

	// Configuration metrics
	ConfigEdits   int64 `json:"config_edits"`
	ConfigReloads int64 `json:"config_reloads"`
	ConfigMissing int64 `json:"config_missing"`

	// Security violation metrics
	ValidationFailures int64 `json:"validation_failures"`

	// Severity counters
	InfoEvents     int64 `json:"info_events"`
	WarningEvents  int64 `json:"warning_events"`
	ErrorEvents    int64 `json:"error_events"`
	CriticalEvents int64 `json:"critical_events"`

	// Timing metrics
	LastMountOperation       time.Time     `json:"last_mount_operation"`
	LastSecurityViolation    time.Time     `json:"last_security_violation"`
	AverageOperationDuration time.Duration `json:"average_operation_duration_ms"`
	totalOperationTime       time.Duration
	totalOperations          int64
}

// NewMetrics returns zeroed counters
func NewMetrics() *SecurityMetrics {
	return &SecurityMetrics{}
}

// RecordEvent records a security event in metrics
func (m *SecurityMetrics) RecordEvent(event *SecurityEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Record by severity
	switch event.Severity {
	case SeverityInfo:
		m.InfoEvents++
	case SeverityWarning:
		m.WarningEvents++
	case SeverityError:
		m.ErrorEvents++
	case SeverityCritical:
		m.CriticalEvents++
	}

	// Record by event type
	switch event.EventType {
	case EventCredentialUse:
		m.CredentialUses++
	case EventProbeAttempt:
		m.ProbeAttempts++
	case EventProbeSuccess:
		m.ProbeSuccesses++
	case EventProbeFailure:
		m.ProbeFailures++

	case EventMountRequest:
		m.MountRequests++
		m.LastMountOperation = event.Timestamp
	case EventMountSuccess:
		m.MountSuccesses++
		m.recordOperationDuration(event.Duration)
	case EventMountFailure:
		m.MountFailures++
	case EventUnmountRequest:
		m.UnmountRequests++
		m.LastMountOperation = event.Timestamp
	case EventUnmountSuccess:
		m.UnmountSuccesses++
		m.recordOperationDuration(event.Duration)
	case EventUnmountFailure:
		m.UnmountFailures++
	case EventUnmountEverything:
		m.UnmountEverythings++
		m.LastMountOperation = event.Timestamp

	case EventConfigEdited:
		m.ConfigEdits++
	case EventConfigReloaded:
		m.ConfigReloads++
	case EventConfigMissing:
		m.ConfigMissing++

	case EventValidationFailure:
		m.ValidationFailures++
		m.LastSecurityViolation = event.Timestamp
	}
}

// recordOperationDuration records the duration of an operation for averaging
func (m *SecurityMetrics) recordOperationDuration(duration time.Duration) {
	if duration > 0 {
		m.totalOperationTime += duration
		m.totalOperations++
		m.AverageOperationDuration = m.totalOperationTime / time.Duration(m.totalOperations)
	}
}

// String returns a human-readable representation of the metrics
func (m *SecurityMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf("SecurityMetrics{"+
		"Credentials(uses=%d, probes=%d, probe_success=%d, probe_failures=%d), "+
		"Mount(requests=%d, success=%d, failures=%d), "+
		"Unmount(requests=%d, success=%d, failures=%d, everything=%d), "+
		"Config(edits=%d, reloads=%d, missing=%d), "+
		"Violations(validation=%d), "+
		"Severity(info=%d, warning=%d, error=%d, critical=%d), "+
		"AvgOpDuration=%dms}",
		m.CredentialUses, m.ProbeAttempts, m.ProbeSuccesses, m.ProbeFailures,
		m.MountRequests, m.MountSuccesses, m.MountFailures,
		m.UnmountRequests, m.UnmountSuccesses, m.UnmountFailures, m.UnmountEverythings,
		m.ConfigEdits, m.ConfigReloads, m.ConfigMissing,
		m.ValidationFailures,
		m.InfoEvents, m.WarningEvents, m.ErrorEvents, m.CriticalEvents,
		m.AverageOperationDuration.Milliseconds())
}

// Snapshot returns a copy of the current counters
func (m *SecurityMetrics) Snapshot() SecurityMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return SecurityMetrics{
		CredentialUses:           m.CredentialUses,
		ProbeAttempts:            m.ProbeAttempts,
		ProbeSuccesses:           m.ProbeSuccesses,
		ProbeFailures:            m.ProbeFailures,
		MountRequests:            m.MountRequests,
		MountSuccesses:           m.MountSuccesses,
		MountFailures:            m.MountFailures,
		UnmountRequests:          m.UnmountRequests,
		UnmountSuccesses:         m.UnmountSuccesses,
		UnmountFailures:          m.UnmountFailures,
		UnmountEverythings:       m.UnmountEverythings,
		ConfigEdits:              m.ConfigEdits,
		ConfigReloads:            m.ConfigReloads,
		ConfigMissing:            m.ConfigMissing,
		ValidationFailures:       m.ValidationFailures,
		InfoEvents:               m.InfoEvents,
		WarningEvents:            m.WarningEvents,
		ErrorEvents:              m.ErrorEvents,
		CriticalEvents:           m.CriticalEvents,
		LastMountOperation:       m.LastMountOperation,
		LastSecurityViolation:    m.LastSecurityViolation,
		AverageOperationDuration: m.AverageOperationDuration,
	}
}

// EventCounts returns the counters keyed by event type
func (m *SecurityMetrics) EventCounts() map[string]int64 {
	s := m.Snapshot()
	return map[string]int64{
		string(EventCredentialUse):     s.CredentialUses,
		string(EventProbeAttempt):      s.ProbeAttempts,
		string(EventProbeSuccess):      s.ProbeSuccesses,
		string(EventProbeFailure):      s.ProbeFailures,
		string(EventMountRequest):      s.MountRequests,
		string(EventMountSuccess):      s.MountSuccesses,
		string(EventMountFailure):      s.MountFailures,
		string(EventUnmountRequest):    s.UnmountRequests,
		string(EventUnmountSuccess):    s.UnmountSuccesses,
		string(EventUnmountFailure):    s.UnmountFailures,
		string(EventUnmountEverything): s.UnmountEverythings,
		string(EventConfigEdited):      s.ConfigEdits,
		string(EventConfigReloaded):    s.ConfigReloads,
		string(EventConfigMissing):     s.ConfigMissing,
		string(EventValidationFailure): s.ValidationFailures,
	}
}

// SeverityCounts returns the counters keyed by severity
func (m *SecurityMetrics) SeverityCounts() map[string]int64 {
	s := m.Snapshot()
	return map[string]int64{
		string(SeverityInfo):     s.InfoEvents,
		string(SeverityWarning):  s.WarningEvents,
		string(SeverityError):    s.ErrorEvents,
		string(SeverityCritical): s.CriticalEvents,
	}
}
