package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/service"
	"github.com/jengzang/presence-backend-go/pkg/response"
)

// TrackingHandler handles HTTP requests for location pings, trails and geofence events
type TrackingHandler struct {
	trackingService *service.TrackingService
	trailService    *service.TrailService
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(trackingService *service.TrackingService, trailService *service.TrailService) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
		trailService:    trailService,
	}
}

// Ping handles POST /api/v1/tracking/ping
func (h *TrackingHandler) Ping(c *gin.Context) {
	var req models.PingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackingService.Ping(c.Request.Context(), userID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, result)
}

// GetTrails handles GET /api/v1/tracking/trails
func (h *TrackingHandler) GetTrails(c *gin.Context) {
	var query models.TrailQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	trails, err := h.trailService.GetTrails(c.Request.Context(), userID(c), query)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, trails)
}

// GetEvents handles GET /api/v1/tracking/events
func (h *TrackingHandler) GetEvents(c *gin.Context) {
	var query models.EventQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	events, err := h.trackingService.Events(c.Request.Context(), userID(c), query)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, events)
}
