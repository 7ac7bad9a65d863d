package models

import (
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Severities lists every severity in draw order.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

type AlertStatus string

const (
	AlertStatusOpen       AlertStatus = "open"
	AlertStatusDispatched AlertStatus = "dispatched"
	AlertStatusResolved   AlertStatus = "resolved"
)

// Coordinates are synthetic map percentages, not geographic positions.
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Alert struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Location    string      `json:"location"`
	Coordinates Coordinates `json:"coordinates"`
	Time        string      `json:"time"`
	Severity    Severity    `json:"severity"`
	Status      AlertStatus `json:"status"`
	Description string      `json:"description"`
}

// AlertTitle builds the display title fixed at creation, e.g. "HIGH - Incident #101".
func AlertTitle(s Severity, id int) string {
	return fmt.Sprintf("%s - Incident #%d", strings.ToUpper(string(s)), id)
}

// CanDispatch reports whether the alert may still receive a unit.
func (a *Alert) CanDispatch() bool {
	return a.Status == AlertStatusOpen
}

func (a *Alert) IsResolved() bool {
	return a.Status == AlertStatusResolved
}
