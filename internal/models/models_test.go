package models

import (
	"encoding/json"
	"testing"
)

func TestAlertTitle(t *testing.T) {
	if got := AlertTitle(SeverityMedium, 117); got != "MEDIUM - Incident #117" {
		t.Errorf("unexpected title %q", got)
	}
}

func TestSeverityValid(t *testing.T) {
	for _, s := range Severities {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if Severity("critical").Valid() {
		t.Error("expected critical to be invalid")
	}
}

func TestResourceUtilization(t *testing.T) {
	tests := []struct {
		r       Resource
		inUse   int
		percent float64
	}{
		{Resource{Available: 3, Total: 5}, 2, 40},
		{Resource{Available: 0, Total: 2}, 2, 100},
		{Resource{Available: 4, Total: 4}, 0, 0},
		{Resource{}, 0, 0},
	}
	for _, tt := range tests {
		if tt.r.InUse() != tt.inUse {
			t.Errorf("%+v: expected in use %d, got %d", tt.r, tt.inUse, tt.r.InUse())
		}
		if tt.r.Utilization() != tt.percent {
			t.Errorf("%+v: expected %v%%, got %v", tt.r, tt.percent, tt.r.Utilization())
		}
	}
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventAlertCreated, 101, "", Alert{ID: 101, Severity: SeverityLow})
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", e)
	}

	var a Alert
	if err := json.Unmarshal(e.Payload, &a); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if a.Severity != SeverityLow {
		t.Errorf("expected low severity payload, got %s", a.Severity)
	}

	if other := NewEvent(EventAlertCreated, 101, "", nil); other.ID == e.ID || other.Payload != nil {
		t.Errorf("expected fresh id and empty payload, got %+v", other)
	}
}
