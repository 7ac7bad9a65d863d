package api

import "github.com/mr1hm/go-rescue-command/internal/models"

// FeatureCollection carries map pins. Coordinates are [x, y] percentages of
// the map canvas, not longitude/latitude.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string `json:"type"`
	Coordinates []int  `json:"coordinates"`
}

func toFeatureCollection(alerts []models.Alert, selectedID int) FeatureCollection {
	features := make([]Feature, 0, len(alerts))

	for _, a := range alerts {
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []int{a.Coordinates.X, a.Coordinates.Y},
			},
			Properties: map[string]any{
				"id":       a.ID,
				"title":    a.Title,
				"location": a.Location,
				"severity": a.Severity,
				"status":   a.Status,
				"time":     a.Time,
				"selected": a.ID == selectedID,
				// open high-severity pins pulse on the map
				"urgent": a.Severity == models.SeverityHigh && a.Status == models.AlertStatusOpen,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
