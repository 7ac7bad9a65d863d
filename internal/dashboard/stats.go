package dashboard

import "github.com/mr1hm/go-rescue-command/internal/models"

// Stats summarizes registry and pool state for the status panel.
type Stats struct {
	Total          int                     `json:"total"`
	Open           int                     `json:"open"`
	Dispatched     int                     `json:"dispatched"`
	Resolved       int                     `json:"resolved"`
	BySeverity     map[models.Severity]int `json:"by_severity"`
	UnitsAvailable int                     `json:"units_available"`
	UnitsTotal     int                     `json:"units_total"`
}

func ComputeStats(alerts []models.Alert, resources []models.Resource) Stats {
	s := Stats{
		Total:      len(alerts),
		BySeverity: make(map[models.Severity]int, len(models.Severities)),
	}
	for _, sev := range models.Severities {
		s.BySeverity[sev] = 0
	}
	for _, a := range alerts {
		switch a.Status {
		case models.AlertStatusOpen:
			s.Open++
		case models.AlertStatusDispatched:
			s.Dispatched++
		case models.AlertStatusResolved:
			s.Resolved++
		}
		s.BySeverity[a.Severity]++
	}
	for _, r := range resources {
		s.UnitsAvailable += r.Available
		s.UnitsTotal += r.Total
	}
	return s
}
