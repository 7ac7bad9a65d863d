package dashboard

import (
	"fmt"
	"strings"

	"github.com/mr1hm/go-rescue-command/internal/models"
)

// Filter selects alerts by severity. FilterAll matches everything.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterHigh   Filter = Filter(models.SeverityHigh)
	FilterMedium Filter = Filter(models.SeverityMedium)
	FilterLow    Filter = Filter(models.SeverityLow)
)

// ParseFilter accepts "all" or a severity, case-insensitively. Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterHigh, FilterMedium, FilterLow:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
}

func (f Filter) Matches(a models.Alert) bool {
	return f == FilterAll || models.Severity(f) == a.Severity
}

// Visible returns the alerts matching filter in their original order.
// The input is never modified.
func Visible(alerts []models.Alert, filter Filter) []models.Alert {
	out := make([]models.Alert, 0, len(alerts))
	for _, a := range alerts {
		if filter.Matches(a) {
			out = append(out, a)
		}
	}
	return out
}
