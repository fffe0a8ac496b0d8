package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/presence-backend-go/internal/api"
	"github.com/jengzang/presence-backend-go/internal/config"
	"github.com/jengzang/presence-backend-go/internal/database"
	"github.com/jengzang/presence-backend-go/internal/handler"
	"github.com/jengzang/presence-backend-go/internal/logging"
	"github.com/jengzang/presence-backend-go/internal/repository"
	"github.com/jengzang/presence-backend-go/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load config")
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: os.Stderr})
	gin.SetMode(cfg.Server.Mode)

	policy, err := cfg.AttendancePolicy()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build attendance policy")
	}

	// 初始化数据库
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	db, err := database.Open(ctx, database.Config{
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	samples := repository.NewSampleRepository(db)
	geofences := repository.NewGeofenceRepository(db)
	memberships := repository.NewMembershipRepository(db)
	records := repository.NewAttendanceRepository(db)

	trackingService := service.NewTrackingService(db, samples, geofences, memberships, service.TrackingConfig{
		Rules:         cfg.Location,
		Spoofing:      cfg.Spoofing,
		Confidence:    cfg.Confidence,
		HistorySize:   cfg.Tracking.HistorySize,
		HistoryWindow: cfg.Tracking.HistoryWindow,
		CellLevel:     cfg.Tracking.CellLevel,
	})
	trailService := service.NewTrailService(samples, cfg.Trail.MaxGap)
	geofenceService := service.NewGeofenceService(geofences)
	attendanceService := service.NewAttendanceService(db, records, geofences, policy, cfg.Location)

	// 初始化路由
	router := api.SetupRouter(ctx, cfg, api.Handlers{
		Tracking:   handler.NewTrackingHandler(trackingService, trailService),
		Geofence:   handler.NewGeofenceHandler(geofenceService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
	})

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router,
	}

	// 启动服务器
	go func() {
		logging.Info().Str("addr", cfg.Server.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("Shutting down server")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Server forced to shutdown")
	}
}
