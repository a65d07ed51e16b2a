package main

// @title Tourist Safety Microservice API
// @version 1.0.0
// @description Сервис безопасности туристов: принимает периодические GPS-пинги мобильных клиентов, вычисляет композитную оценку риска 0-100 из шести взвешенных факторов, решает, нужен ли алерт, и в реальном времени рассылает алерты на подключенные дашборды.
// @description
// @description Основные возможности:
// @description - Скоринг пинга по факторам: алерты поблизости, риск зоны, время суток, плотность людей, аномалия скорости, исторический риск
// @description - Управление геозонами (safe/risky/restricted) authority-процессом
// @description - WebSocket-канал алертов с broker-режимом для нескольких экземпляров
// @description - Поиск недавних алертов вокруг точки

// @contact.name API Support
// @contact.email support@safety-microservice.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/safety-microservice/docs"
	"github.com/safety-microservice/internal/broadcast"
	"github.com/safety-microservice/internal/config"
	httpDelivery "github.com/safety-microservice/internal/delivery/http"
	"github.com/safety-microservice/internal/delivery/http/handler"
	"github.com/safety-microservice/internal/pkg/logger"
	"github.com/safety-microservice/internal/repository/cache"
	"github.com/safety-microservice/internal/repository/postgres"
	redisRepo "github.com/safety-microservice/internal/repository/redis"
	"github.com/safety-microservice/internal/usecase"
	"github.com/safety-microservice/internal/worker"
	"github.com/safety-microservice/internal/worker/safety"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Tourist Safety Microservice")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}
	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize Repositories
	alertRepo := postgres.NewAlertRepository(db)
	zoneRepo := postgres.NewZoneRepository(db)
	pingRepo := postgres.NewPingRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	brokerRepo := redisRepo.NewBrokerRepository(redisClient.Client(), log)

	log.Info("Repositories initialized")

	// 7. Initialize broadcast layer
	instanceID := cfg.Worker.ConsumerName + "-" + uuid.NewString()

	hub := broadcast.NewHub(cfg.Broadcast.SendTimeout, cfg.Broadcast.IdleTimeout, log)

	var publisher *broadcast.Publisher
	if cfg.Broadcast.BrokerEnabled {
		publisher = broadcast.NewPublisher(hub, brokerRepo, instanceID, cfg.Broadcast.SendTimeout, log)
	} else {
		publisher = broadcast.NewPublisher(hub, nil, instanceID, cfg.Broadcast.SendTimeout, log)
	}

	// 8. Initialize Use Cases
	speedHistory := usecase.NewSpeedHistory()
	zoneIndex := usecase.NewZoneIndex(zoneRepo, cacheRepo, log, cfg.Cache.ZoneCacheTTL)
	engine := usecase.NewRiskEngine(alertRepo, pingRepo, zoneIndex, speedHistory, usecase.RiskParams{
		NearbyRadiusKm:     cfg.Risk.NearbyRadiusKm,
		NearbyWindowHours:  cfg.Risk.NearbyWindowHours,
		CrowdRadiusKm:      cfg.Risk.CrowdRadiusKm,
		CrowdWindowMinutes: cfg.Risk.CrowdWindowMinutes,
		HistoryRadiusKm:    cfg.Risk.HistoryRadiusKm,
		HistoryWindowDays:  cfg.Risk.HistoryWindowDays,
	}, log)
	policy := usecase.NewAlertPolicy()

	ingestUC := usecase.NewIngestUseCase(
		engine,
		policy,
		speedHistory,
		pingRepo,
		alertRepo,
		brokerRepo,
		publisher,
		cfg.Broadcast.AlertChannel,
		log,
	)

	zoneUC := usecase.NewZoneUseCase(zoneRepo, zoneIndex, log)
	alertUC := usecase.NewAlertUseCase(alertRepo, log)

	log.Info("Use cases initialized")

	// 9. Initialize HTTP Handlers
	locationHandler := handler.NewLocationHandler(ingestUC, log)
	zoneHandler := handler.NewZoneHandler(zoneUC, log)
	alertHandler := handler.NewAlertHandler(alertUC, log)
	wsHandler := handler.NewWSHandler(hub, cfg.Broadcast.AlertChannel, log)

	log.Info("HTTP handlers initialized")

	// 10. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		locationHandler,
		zoneHandler,
		alertHandler,
		wsHandler,
		db,
		redisClient,
	)

	log.Info("HTTP server initialized")

	// 11. Start hub reaper and workers
	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	go hub.Run(runCtx)

	manager := worker.NewManager(log)
	manager.Register(safety.NewZoneRefreshWorker(zoneIndex, cfg.Worker.ZoneCacheRefresh, log))
	if cfg.Broadcast.BrokerEnabled {
		manager.Register(safety.NewRelayWorker(brokerRepo, hub, cfg.Broadcast.AlertChannel, instanceID, log))
	}

	if err := manager.Start(runCtx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// 12. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
		zap.String("instance_id", instanceID),
	)

	// 13. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server first so no new pings arrive
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	// Stop workers and the hub reaper
	if err := manager.Stop(); err != nil {
		log.Error("Workers shutdown error", zap.Error(err))
	}
	runCancel()

	log.Info("Server stopped successfully")
}
