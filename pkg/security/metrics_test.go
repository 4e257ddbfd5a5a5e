package security

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSecurityMetrics_RecordEvent(t *testing.T) {
	tests := []struct {
		eventType EventType
		get       func(*SecurityMetrics) int64
	}{
		{EventCredentialUse, func(m *SecurityMetrics) int64 { return m.CredentialUses }},
		{EventProbeAttempt, func(m *SecurityMetrics) int64 { return m.ProbeAttempts }},
		{EventProbeSuccess, func(m *SecurityMetrics) int64 { return m.ProbeSuccesses }},
		{EventProbeFailure, func(m *SecurityMetrics) int64 { return m.ProbeFailures }},
		{EventMountRequest, func(m *SecurityMetrics) int64 { return m.MountRequests }},
		{EventMountSuccess, func(m *SecurityMetrics) int64 { return m.MountSuccesses }},
		{EventMountFailure, func(m *SecurityMetrics) int64 { return m.MountFailures }},
		{EventUnmountRequest, func(m *SecurityMetrics) int64 { return m.UnmountRequests }},
		{EventUnmountSuccess, func(m *SecurityMetrics) int64 { return m.UnmountSuccesses }},
		{EventUnmountFailure, func(m *SecurityMetrics) int64 { return m.UnmountFailures }},
		{EventUnmountEverything, func(m *SecurityMetrics) int64 { return m.UnmountEverythings }},
		{EventConfigEdited, func(m *SecurityMetrics) int64 { return m.ConfigEdits }},
		{EventConfigReloaded, func(m *SecurityMetrics) int64 { return m.ConfigReloads }},
		{EventConfigMissing, func(m *SecurityMetrics) int64 { return m.ConfigMissing }},
		{EventValidationFailure, func(m *SecurityMetrics) int64 { return m.ValidationFailures }},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			m := NewMetrics()
			m.RecordEvent(NewSecurityEvent(tt.eventType, CategoryDataAccess, SeverityInfo, "test"))

			snap := m.Snapshot()
			if got := tt.get(&snap); got != 1 {
				t.Errorf("expected counter 1, got %d", got)
			}
		})
	}
}

func TestSecurityMetrics_SeverityCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordEvent(NewSecurityEvent(EventMountRequest, CategoryDataAccess, SeverityInfo, "test"))
	m.RecordEvent(NewSecurityEvent(EventUnmountFailure, CategoryDataAccess, SeverityWarning, "test"))
	m.RecordEvent(NewSecurityEvent(EventMountFailure, CategoryDataAccess, SeverityError, "test"))
	m.RecordEvent(NewSecurityEvent(EventConfigMissing, CategoryConfigChange, SeverityCritical, "test"))

	snapshot := m.Snapshot()
	if snapshot.InfoEvents != 1 || snapshot.WarningEvents != 1 || snapshot.ErrorEvents != 1 || snapshot.CriticalEvents != 1 {
		t.Errorf("unexpected severity counters: %+v", snapshot.String())
	}
}

func TestSecurityMetrics_AverageOperationDuration(t *testing.T) {
	m := NewMetrics()

	m.RecordEvent(NewSecurityEvent(EventMountSuccess, CategoryDataAccess, SeverityInfo, "test").
		WithOperation("op-1", "mount", 100*time.Millisecond))
	m.RecordEvent(NewSecurityEvent(EventUnmountSuccess, CategoryDataAccess, SeverityInfo, "test").
		WithOperation("op-2", "unmount", 300*time.Millisecond))
	// Zero durations are not averaged
	m.RecordEvent(NewSecurityEvent(EventMountSuccess, CategoryDataAccess, SeverityInfo, "test"))

	if got := m.Snapshot().AverageOperationDuration; got != 200*time.Millisecond {
		t.Errorf("expected 200ms average, got %v", got)
	}
}

func TestSecurityMetrics_LastTimestamps(t *testing.T) {
	m := NewMetrics()

	mount := NewSecurityEvent(EventMountRequest, CategoryDataAccess, SeverityInfo, "test")
	violation := NewSecurityEvent(EventValidationFailure, CategorySecurityViolation, SeverityWarning, "test")
	m.RecordEvent(mount)
	m.RecordEvent(violation)

	snapshot := m.Snapshot()
	if !snapshot.LastMountOperation.Equal(mount.Timestamp) {
		t.Errorf("LastMountOperation not recorded")
	}
	if !snapshot.LastSecurityViolation.Equal(violation.Timestamp) {
		t.Errorf("LastSecurityViolation not recorded")
	}
}

func TestSecurityMetrics_String(t *testing.T) {
	m := NewMetrics()
	m.RecordEvent(NewSecurityEvent(EventMountSuccess, CategoryDataAccess, SeverityInfo, "test"))

	s := m.String()
	for _, want := range []string{"SecurityMetrics{", "Mount(requests=0, success=1, failures=0)", "Severity(info=1"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q: %s", want, s)
		}
	}
}

func TestSecurityMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordEvent(NewSecurityEvent(EventMountRequest, CategoryDataAccess, SeverityInfo, "test"))

	snapshot := m.Snapshot()
	m.RecordEvent(NewSecurityEvent(EventMountRequest, CategoryDataAccess, SeverityInfo, "test"))

	if snapshot.MountRequests != 1 {
		t.Errorf("snapshot changed after further events: %d", snapshot.MountRequests)
	}
	if m.Snapshot().MountRequests != 2 {
		t.Errorf("expected live counter 2, got %d", m.Snapshot().MountRequests)
	}
}

func TestSecurityMetrics_Concurrency(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordEvent(NewSecurityEvent(EventUnmountRequest, CategoryDataAccess, SeverityInfo, "test"))
			_ = m.String()
		}()
	}
	wg.Wait()

	if got := m.Snapshot().UnmountRequests; got != 50 {
		t.Errorf("expected 50 unmount requests, got %d", got)
	}
}

func TestSecurityMetrics_Counts(t *testing.T) {
	m := NewMetrics()
	m.RecordEvent(NewSecurityEvent(EventMountSuccess, CategoryDataAccess, SeverityInfo, "test"))
	m.RecordEvent(NewSecurityEvent(EventValidationFailure, CategorySecurityViolation, SeverityWarning, "test"))

	events := m.EventCounts()
	if events["mount_success"] != 1 || events["validation_failure"] != 1 {
		t.Errorf("unexpected event counts: %v", events)
	}
	if events["mount_failure"] != 0 {
		t.Errorf("expected no mount failures, got %d", events["mount_failure"])
	}
	if len(events) != 15 {
		t.Errorf("expected every event type to be reported, got %d", len(events))
	}

	severities := m.SeverityCounts()
	if severities["info"] != 1 || severities["warning"] != 1 || severities["critical"] != 0 {
		t.Errorf("unexpected severity counts: %v", severities)
	}
}
