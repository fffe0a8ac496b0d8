package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/presence-backend-go/internal/config"
	"github.com/jengzang/presence-backend-go/internal/handler"
	"github.com/jengzang/presence-backend-go/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// limiterCleanupInterval is how often idle per-IP limiters are dropped
const limiterCleanupInterval = 10 * time.Minute

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Tracking   *handler.TrackingHandler
	Geofence   *handler.GeofenceHandler
	Attendance *handler.AttendanceHandler
}

// SetupRouter 设置路由，ctx 结束时停止后台清理
func SetupRouter(ctx context.Context, cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Presence Backend API is running",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.AuthRequired(middleware.NewTokenIssuer(cfg.Auth.JWTSecret)))
	if !cfg.RateLimit.Disabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		api.Use(middleware.RateLimit(ctx, limiter, limiterCleanupInterval))
	}
	{
		// 定位与轨迹接口
		tracking := api.Group("/tracking")
		{
			tracking.POST("/ping", h.Tracking.Ping)
			tracking.GET("/trails", h.Tracking.GetTrails)
			tracking.GET("/events", h.Tracking.GetEvents)
		}

		// 地理围栏接口
		geofences := api.Group("/geofences")
		{
			geofences.GET("", h.Geofence.List)
			geofences.POST("", h.Geofence.Create)
			geofences.GET("/:id", h.Geofence.Get)
			geofences.PUT("/:id", h.Geofence.Update)
			geofences.DELETE("/:id", h.Geofence.Delete)
		}

		// 考勤接口
		attendance := api.Group("/attendance")
		{
			attendance.GET("", h.Attendance.Get)
			attendance.POST("/clock-in", h.Attendance.ClockIn)
			attendance.POST("/clock-out", h.Attendance.ClockOut)
		}
	}

	return r
}
