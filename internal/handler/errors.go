package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/presence-backend-go/internal/analysis/attendance"
	"github.com/jengzang/presence-backend-go/internal/logging"
	"github.com/jengzang/presence-backend-go/internal/middleware"
	"github.com/jengzang/presence-backend-go/internal/service"
	"github.com/jengzang/presence-backend-go/internal/validation"
	"github.com/jengzang/presence-backend-go/pkg/response"
)

// writeError maps service errors onto HTTP responses
func writeError(c *gin.Context, err error) {
	var rejected *service.LocationRejectedError

	switch {
	case validation.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrRegionNotFound):
		response.NotFound(c, err.Error())
	case errors.As(err, &rejected):
		response.UnprocessableEntity(c, err.Error(), rejected.Verdict)
	case attendance.IsConflict(err):
		response.Conflict(c, err.Error())
	default:
		_ = c.Error(err)
		log := logging.Component("http")
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		response.InternalError(c, "internal server error")
	}
}

// userID returns the authenticated user set by the auth middleware
func userID(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}
