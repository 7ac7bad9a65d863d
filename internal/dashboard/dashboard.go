package dashboard

import (
	"log/slog"
	"sync"

	"github.com/mr1hm/go-rescue-command/internal/generator"
	"github.com/mr1hm/go-rescue-command/internal/logging"
	"github.com/mr1hm/go-rescue-command/internal/models"
)

const (
	DefaultCapacity          = 20
	DefaultAlertProbability  = 0.3
	DefaultReturnProbability = 0.5

	// Disabled turns off a probability or the seed batch in Options, where
	// zero selects the default.
	Disabled = -1
)

// EventSink receives the events produced by a transition, after the
// dashboard lock has been released.
type EventSink interface {
	Publish(events ...*models.Event)
}

// Options configures a Dashboard. Zero fields take the package defaults:
// capacity 20, alert probability 0.3, return probability 0.5 and a seed
// batch of generator.DefaultSeedCount. Use Disabled for an explicit none.
type Options struct {
	Capacity          int
	AlertProbability  float64
	ReturnProbability float64
	SeedAlerts        int

	Generator *generator.Generator
	Random    generator.Random

	// Alerts replaces the generated seed batch when non-nil.
	Alerts []models.Alert
	// Resources replaces the fixed responder pool when non-nil.
	Resources []models.Resource

	Sink   EventSink
	Logger *slog.Logger
}

// Dashboard owns the incident registry, the resource pool, and the alert
// generator. Every transition holds mu for its whole duration.
type Dashboard struct {
	mu        sync.Mutex
	capacity  int
	alertP    float64
	returnP   float64
	gen       *generator.Generator
	rnd       generator.Random
	alerts    []models.Alert // newest first
	resources []models.Resource
	selected  int
	seq       uint64
	sink      EventSink
	log       *slog.Logger
}

func New(opts Options) *Dashboard {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	opts.AlertProbability = probability(opts.AlertProbability, DefaultAlertProbability)
	opts.ReturnProbability = probability(opts.ReturnProbability, DefaultReturnProbability)
	switch {
	case opts.SeedAlerts == 0:
		opts.SeedAlerts = generator.DefaultSeedCount
	case opts.SeedAlerts < 0:
		opts.SeedAlerts = 0
	}
	if opts.Random == nil {
		opts.Random = generator.NewRandom(0)
	}
	if opts.Generator == nil {
		opts.Generator = generator.New(opts.Random, nil)
	}
	if opts.Logger == nil {
		opts.Logger = logging.For("dashboard")
	}

	d := &Dashboard{
		capacity: opts.Capacity,
		alertP:   opts.AlertProbability,
		returnP:  opts.ReturnProbability,
		gen:      opts.Generator,
		rnd:      opts.Random,
		sink:     opts.Sink,
		log:      opts.Logger,
	}

	if opts.Alerts != nil {
		d.alerts = d.loadAlerts(opts.Alerts)
	} else {
		d.alerts = d.gen.InitialAlerts(opts.SeedAlerts)
	}
	if len(d.alerts) > d.capacity {
		d.alerts = d.alerts[:d.capacity]
	}

	if opts.Resources != nil {
		d.resources = append([]models.Resource(nil), opts.Resources...)
	} else {
		d.resources = generator.InitialResources()
	}

	return d
}

// probability maps zero to def and Disabled (any negative) to never.
func probability(p, def float64) float64 {
	switch {
	case p == 0:
		return def
	case p < 0:
		return 0
	}
	return p
}

// loadAlerts copies injected alerts, dropping repeated ids, and advances the
// generator past the highest id so ticks never reissue one.
func (d *Dashboard) loadAlerts(in []models.Alert) []models.Alert {
	seen := make(map[int]struct{}, len(in))
	out := make([]models.Alert, 0, len(in))
	for _, a := range in {
		if _, dup := seen[a.ID]; dup {
			d.log.Warn("duplicate alert id dropped", "alert_id", a.ID)
			continue
		}
		seen[a.ID] = struct{}{}
		d.gen.Advance(a.ID)
		out = append(out, a)
	}
	return out
}

// Dispatch assigns one unit from the first resource with spare capacity to
// an open alert. Unknown or non-open alerts are ignored.
func (d *Dashboard) Dispatch(alertID int) error {
	d.mu.Lock()
	idx := d.indexOf(alertID)
	if idx < 0 {
		d.mu.Unlock()
		d.log.Debug("dispatch ignored, alert not found", "alert_id", alertID)
		return nil
	}
	if !d.alerts[idx].CanDispatch() {
		status := d.alerts[idx].Status
		d.mu.Unlock()
		d.log.Debug("dispatch ignored, alert not open", "alert_id", alertID, "status", status)
		return nil
	}

	ri := -1
	for i := range d.resources {
		if d.resources[i].HasCapacity() {
			ri = i
			break
		}
	}
	if ri < 0 {
		events := d.sequence(models.NewEvent(models.EventDispatchRejected, alertID, "", nil))
		d.mu.Unlock()
		d.log.Warn("dispatch rejected, no resources available", "alert_id", alertID)
		d.emit(events...)
		return ErrResourceExhausted
	}

	d.resources[ri].Available--
	d.alerts[idx].Status = models.AlertStatusDispatched
	res := d.resources[ri]
	events := d.sequence(
		models.NewEvent(models.EventResourceConsumed, alertID, res.ID, res),
		models.NewEvent(models.EventAlertDispatched, alertID, res.ID, d.alerts[idx]),
	)
	d.mu.Unlock()

	d.log.Info("alert dispatched", "alert_id", alertID, "resource_id", res.ID, "available", res.Available)
	d.emit(events...)
	return nil
}

// Resolve closes an alert from any non-resolved status. With the configured
// return probability one unit goes back to the first under-capacity
// resource; which resource was consumed at dispatch is not tracked.
func (d *Dashboard) Resolve(alertID int) {
	d.mu.Lock()
	idx := d.indexOf(alertID)
	if idx < 0 {
		d.mu.Unlock()
		d.log.Debug("resolve ignored, alert not found", "alert_id", alertID)
		return
	}
	if d.alerts[idx].IsResolved() {
		d.mu.Unlock()
		d.log.Debug("resolve ignored, alert already resolved", "alert_id", alertID)
		return
	}

	d.alerts[idx].Status = models.AlertStatusResolved
	events := []*models.Event{models.NewEvent(models.EventAlertResolved, alertID, "", d.alerts[idx])}

	returned := ""
	if d.rnd.Float64() < d.returnP {
		for i := range d.resources {
			if d.resources[i].UnderCapacity() {
				d.resources[i].Available++
				returned = d.resources[i].ID
				events = append(events, models.NewEvent(models.EventResourceReturned, alertID, returned, d.resources[i]))
				break
			}
		}
	}
	d.sequence(events...)
	d.mu.Unlock()

	d.log.Info("alert resolved", "alert_id", alertID, "returned_resource", returned)
	d.emit(events...)
}

// Tick applies one ticker period: with the configured probability a new
// alert is generated and prepended, and the registry is trimmed to capacity.
func (d *Dashboard) Tick() (models.Alert, bool) {
	d.mu.Lock()
	if d.rnd.Float64() >= d.alertP {
		d.mu.Unlock()
		d.log.Debug("tick skipped")
		return models.Alert{}, false
	}

	alert := d.gen.Generate()
	next := make([]models.Alert, 0, len(d.alerts)+1)
	next = append(next, alert)
	next = append(next, d.alerts...)

	events := []*models.Event{models.NewEvent(models.EventAlertCreated, alert.ID, "", alert)}
	if len(next) > d.capacity {
		for _, evicted := range next[d.capacity:] {
			events = append(events, models.NewEvent(models.EventAlertEvicted, evicted.ID, "", nil))
			if evicted.ID == d.selected {
				d.selected = 0
			}
		}
		next = next[:d.capacity]
	}
	d.alerts = next
	d.sequence(events...)
	d.mu.Unlock()

	d.log.Info("alert generated", "alert_id", alert.ID, "severity", alert.Severity, "location", alert.Location)
	d.emit(events...)
	return alert, true
}

// Select focuses an alert. An unknown id clears the selection.
func (d *Dashboard) Select(alertID int) (models.Alert, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.indexOf(alertID)
	if idx < 0 {
		d.selected = 0
		return models.Alert{}, false
	}
	d.selected = alertID
	return d.alerts[idx], true
}

func (d *Dashboard) Selected() (models.Alert, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.indexOf(d.selected)
	if idx < 0 {
		return models.Alert{}, false
	}
	return d.alerts[idx], true
}

func (d *Dashboard) Alert(alertID int) (models.Alert, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.indexOf(alertID)
	if idx < 0 {
		return models.Alert{}, false
	}
	return d.alerts[idx], true
}

// Alerts returns a copy of the registry, newest first.
func (d *Dashboard) Alerts() []models.Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Alert(nil), d.alerts...)
}

// Resources returns a copy of the pool in insertion order.
func (d *Dashboard) Resources() []models.Resource {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Resource(nil), d.resources...)
}

func (d *Dashboard) Visible(filter Filter) []models.Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Visible(d.alerts, filter)
}

func (d *Dashboard) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ComputeStats(d.alerts, d.resources)
}

// Snapshot is the read-only render input handed to presentation code.
type Snapshot struct {
	Alerts     []models.Alert    `json:"alerts"`
	Resources  []models.Resource `json:"resources"`
	SelectedID int               `json:"selected_id,omitempty"`
}

func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		Alerts:     append([]models.Alert(nil), d.alerts...),
		Resources:  append([]models.Resource(nil), d.resources...),
		SelectedID: d.selected,
	}
}

func (d *Dashboard) indexOf(alertID int) int {
	if alertID == 0 {
		return -1
	}
	for i := range d.alerts {
		if d.alerts[i].ID == alertID {
			return i
		}
	}
	return -1
}

// sequence numbers events in transition order. Callers hold mu.
func (d *Dashboard) sequence(events ...*models.Event) []*models.Event {
	for _, e := range events {
		d.seq++
		e.Seq = d.seq
	}
	return events
}

func (d *Dashboard) emit(events ...*models.Event) {
	if d.sink == nil || len(events) == 0 {
		return
	}
	d.sink.Publish(events...)
}
