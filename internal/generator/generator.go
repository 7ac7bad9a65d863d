package generator

import (
	"math/rand/v2"
	"time"

	"github.com/mr1hm/go-rescue-command/internal/models"
)

// StartID is the counter value before the first generated alert.
const StartID = 100

// DefaultSeedCount is how many alerts are generated at startup.
const DefaultSeedCount = 4

const (
	minCoordinate  = 5
	coordinateSpan = 90 // 5..94 inclusive
)

var Locations = []string{
	"East Park Sector",
	"North Ridge Heights",
	"Riverbank Industrial",
	"Hillview Estates",
	"Downtown Core",
	"Westside Docks",
	"Central Station",
}

var Descriptions = []string{
	"Reported flooding and trapped civilians. Roads may be blocked.",
	"Structural damage reported after tremor. Potential gas leak.",
	"Power outage affecting critical infrastructure. Traffic signals down.",
	"Medical emergency reported, multiple injuries. Access difficult.",
	"Fire alarm triggered in residential block. Smoke visible.",
}

// Random is the source of uniform draws. *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
	Float64() float64
}

// NewRandom returns a PCG source. A zero seed picks a time based seed.
func NewRandom(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generator synthesizes incident records. It owns the id counter, so two
// generators never share ids with each other's state.
type Generator struct {
	rnd    Random
	now    func() time.Time
	lastID int
}

func New(rnd Random, now func() time.Time) *Generator {
	if rnd == nil {
		rnd = NewRandom(0)
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{
		rnd:    rnd,
		now:    now,
		lastID: StartID,
	}
}

// Generate produces the next open alert and advances the id counter.
func (g *Generator) Generate() models.Alert {
	sev := models.Severities[g.rnd.IntN(len(models.Severities))]
	g.lastID++
	id := g.lastID
	location := Locations[g.rnd.IntN(len(Locations))]
	x := minCoordinate + g.rnd.IntN(coordinateSpan)
	y := minCoordinate + g.rnd.IntN(coordinateSpan)

	return models.Alert{
		ID:          id,
		Title:       models.AlertTitle(sev, id),
		Location:    location,
		Coordinates: models.Coordinates{X: x, Y: y},
		Time:        g.now().Format("15:04"),
		Severity:    sev,
		Status:      models.AlertStatusOpen,
		Description: Descriptions[g.rnd.IntN(len(Descriptions))],
	}
}

// InitialAlerts generates n alerts in generation order.
func (g *Generator) InitialAlerts(n int) []models.Alert {
	alerts := make([]models.Alert, 0, n)
	for i := 0; i < n; i++ {
		alerts = append(alerts, g.Generate())
	}
	return alerts
}

// LastID returns the most recently issued id.
func (g *Generator) LastID() int {
	return g.lastID
}

// Advance moves the id counter to at least id so alerts loaded from
// elsewhere are never reissued. It never moves the counter backwards.
func (g *Generator) Advance(id int) {
	if id > g.lastID {
		g.lastID = id
	}
}

// InitialResources returns the fixed responder pool.
func InitialResources() []models.Resource {
	return []models.Resource{
		{ID: "r1", Name: "Rescue Team Alpha", Type: "Ground Unit", Available: 3, Total: 5},
		{ID: "r2", Name: "Ambulance Squad B", Type: "Medical", Available: 2, Total: 4},
		{ID: "r3", Name: "Helicopter Air-1", Type: "Airlift", Available: 1, Total: 2},
		{ID: "r4", Name: "Fire Brigade 404", Type: "Fire/Rescue", Available: 4, Total: 6},
	}
}
