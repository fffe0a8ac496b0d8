package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/presence-backend-go/internal/models"
	"github.com/jengzang/presence-backend-go/internal/service"
	"github.com/jengzang/presence-backend-go/pkg/response"
)

// AttendanceHandler handles HTTP requests for clock events and attendance records
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
	}
}

// ClockIn handles POST /api/v1/attendance/clock-in
func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	var req models.ClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	record, err := h.attendanceService.ClockIn(c.Request.Context(), userID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, record)
}

// ClockOut handles POST /api/v1/attendance/clock-out
func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	var req models.ClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	record, err := h.attendanceService.ClockOut(c.Request.Context(), userID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, record)
}

// Get handles GET /api/v1/attendance
func (h *AttendanceHandler) Get(c *gin.Context) {
	record, err := h.attendanceService.Get(c.Request.Context(), userID(c), c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, record)
}
