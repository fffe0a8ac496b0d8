package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/service"
	"github.com/jengzang/presence-backend-go/pkg/response"
)

// GeofenceHandler handles HTTP requests for geofence regions
type GeofenceHandler struct {
	geofenceService *service.GeofenceService
}

// NewGeofenceHandler creates a new geofence handler
func NewGeofenceHandler(geofenceService *service.GeofenceService) *GeofenceHandler {
	return &GeofenceHandler{
		geofenceService: geofenceService,
	}
}

// List handles GET /api/v1/geofences
func (h *GeofenceHandler) List(c *gin.Context) {
	activeOnly, err := strconv.ParseBool(c.DefaultQuery("active", "false"))
	if err != nil {
		response.BadRequest(c, "Invalid active parameter")
		return
	}

	regions, err := h.geofenceService.List(c.Request.Context(), activeOnly)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, regions)
}

// Get handles GET /api/v1/geofences/:id
func (h *GeofenceHandler) Get(c *gin.Context) {
	region, err := h.geofenceService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, region)
}

// Create handles POST /api/v1/geofences
func (h *GeofenceHandler) Create(c *gin.Context) {
	var req models.GeofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	region, err := h.geofenceService.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, region)
}

// Update handles PUT /api/v1/geofences/:id
func (h *GeofenceHandler) Update(c *gin.Context) {
	var req models.GeofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	region, err := h.geofenceService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, region)
}

// Delete handles DELETE /api/v1/geofences/:id
func (h *GeofenceHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.geofenceService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{"id": id})
}
