package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-rescue-command/internal/dashboard"
	"github.com/mr1hm/go-rescue-command/internal/models"
	"github.com/mr1hm/go-rescue-command/internal/repository"
	"github.com/mr1hm/go-rescue-command/internal/stream"
)

type Handler struct {
	dash        *dashboard.Dashboard
	repo        repository.EventRepository
	broadcaster *stream.Broadcaster
}

// NewHandler wires the routes. repo and broadcaster may be nil, which
// disables /api/report and /api/stream respectively.
func NewHandler(dash *dashboard.Dashboard, repo repository.EventRepository, broadcaster *stream.Broadcaster) *Handler {
	return &Handler{
		dash:        dash,
		repo:        repo,
		broadcaster: broadcaster,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/alerts", h.getAlerts)
	api.GET("/alerts/:id", h.getAlert)
	api.POST("/alerts/:id/dispatch", h.dispatch)
	api.POST("/alerts/:id/resolve", h.resolve)
	api.POST("/alerts/:id/select", h.selectAlert)
	api.GET("/resources", h.getResources)
	api.GET("/stats", h.getStats)
	api.GET("/map", h.getMap)
	api.GET("/report", h.getReport)
	api.GET("/stream", h.stream)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getAlerts(c *gin.Context) {
	filter, err := dashboard.ParseFilter(c.Query("severity"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alerts := h.dash.Visible(filter)
	c.JSON(http.StatusOK, gin.H{
		"filter": filter,
		"count":  len(alerts),
		"alerts": alerts,
	})
}

func (h *Handler) getAlert(c *gin.Context) {
	id, ok := alertID(c)
	if !ok {
		return
	}

	alert, found := h.dash.Alert(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.JSON(http.StatusOK, alert)
}

// dispatch and resolve ignore unknown ids and answer with the current snapshot.
func (h *Handler) dispatch(c *gin.Context) {
	id, ok := alertID(c)
	if !ok {
		return
	}

	if err := h.dash.Dispatch(id); err != nil {
		if errors.Is(err, dashboard.ErrResourceExhausted) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to dispatch"})
		return
	}
	c.JSON(http.StatusOK, h.dash.Snapshot())
}

func (h *Handler) resolve(c *gin.Context) {
	id, ok := alertID(c)
	if !ok {
		return
	}

	h.dash.Resolve(id)
	c.JSON(http.StatusOK, h.dash.Snapshot())
}

func (h *Handler) selectAlert(c *gin.Context) {
	id, ok := alertID(c)
	if !ok {
		return
	}

	alert, found := h.dash.Select(id)
	if !found {
		c.JSON(http.StatusOK, gin.H{"selected": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": alert})
}

type resourceView struct {
	models.Resource
	InUse       int     `json:"in_use"`
	Utilization float64 `json:"utilization"`
}

func (h *Handler) getResources(c *gin.Context) {
	resources := h.dash.Resources()
	views := make([]resourceView, 0, len(resources))
	for _, r := range resources {
		views = append(views, resourceView{
			Resource:    r,
			InUse:       r.InUse(),
			Utilization: r.Utilization(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"resources": views})
}

func (h *Handler) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.dash.Stats())
}

func (h *Handler) getMap(c *gin.Context) {
	selected := 0
	if a, ok := h.dash.Selected(); ok {
		selected = a.ID
	}
	c.JSON(http.StatusOK, toFeatureCollection(h.dash.Alerts(), selected))
}

func (h *Handler) getReport(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event journal disabled"})
		return
	}

	filter := repository.Filter{
		Limit: repository.DefaultLimit,
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= repository.MaxLimit {
			filter.Limit = lim
		}
	}
	if o := c.Query("offset"); o != "" {
		off, err := strconv.Atoi(o)
		if err != nil || off < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}
		filter.Offset = off
	}
	if since := c.Query("since"); since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since, expected RFC 3339"})
			return
		}
		filter.Since = &ts
	}
	if t := c.Query("type"); t != "" {
		et := models.EventType(t)
		filter.Type = &et
	}
	if a := c.Query("alert_id"); a != "" {
		if id, err := strconv.Atoi(a); err == nil {
			filter.AlertID = &id
		}
	}

	ctx := c.Request.Context()
	events, err := h.repo.List(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch events"})
		return
	}
	counts, err := h.repo.CountByType(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count events"})
		return
	}
	if events == nil {
		events = []models.Event{}
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":        h.dash.Stats(),
		"event_counts": counts,
		"events":       events,
	})
}

func alertID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return 0, false
	}
	return id, true
}
