package models

// Resource is a responder unit type tracked only as an available/total count.
type Resource struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Available int    `json:"available"`
	Total     int    `json:"total"`
}

// InUse is the number of units currently deployed.
func (r Resource) InUse() int {
	return r.Total - r.Available
}

// Utilization returns the deployed share of the unit as a percentage.
func (r Resource) Utilization() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.InUse()) / float64(r.Total) * 100
}

func (r Resource) HasCapacity() bool {
	return r.Available > 0
}

func (r Resource) UnderCapacity() bool {
	return r.Available < r.Total
}
