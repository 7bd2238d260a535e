package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/debate-tab/internal/config"
	"github.com/yourusername/debate-tab/internal/handler"
	"github.com/yourusername/debate-tab/internal/metrics"
	"github.com/yourusername/debate-tab/internal/middleware"
	pgRepo "github.com/yourusername/debate-tab/internal/repository/postgres"
	redisRepo "github.com/yourusername/debate-tab/internal/repository/redis"
	"github.com/yourusername/debate-tab/internal/service"
	"github.com/yourusername/debate-tab/pkg/auth"
	"github.com/yourusername/debate-tab/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}
	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), !isProduction)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db, database.DefaultMigrationsSource); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	// Инициализируем репозитории
	teamRepo := pgRepo.NewTeamRepo(db)
	roomRepo := pgRepo.NewRoomRepo(db)
	judgeRepo := pgRepo.NewJudgeRepo(db)
	roundRepo := pgRepo.NewRoundRepo(db)
	assignmentRepo := pgRepo.NewAssignmentRepo(db)
	scoreRepo := pgRepo.NewScoreRepo(db)
	resultRepo := pgRepo.NewResultRepo(db)
	txManager := pgRepo.NewTxManager(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}
	stageLock := redisRepo.NewStageLock(redisClient, cfg.Cache.StageLockTTL)

	// Инициализируем сервисы
	plan := cfg.Tournament
	bounds := service.ScoreBounds{
		TeamMin:       cfg.Scoring.TeamMin,
		TeamMax:       cfg.Scoring.TeamMax,
		IndividualMin: cfg.Scoring.IndividualMin,
		IndividualMax: cfg.Scoring.IndividualMax,
	}
	setupService := service.NewSetupService(teamRepo, roomRepo, judgeRepo, cacheRepo)
	roundService := service.NewRoundService(plan, roundRepo, assignmentRepo, scoreRepo, resultRepo, teamRepo, judgeRepo, txManager, cacheRepo, recorder)
	bracketService := service.NewBracketService(plan, roundRepo, assignmentRepo, scoreRepo, teamRepo, roomRepo, txManager, stageLock, cacheRepo, recorder)
	scoreService := service.NewScoreService(plan, bounds, assignmentRepo, scoreRepo, txManager, cacheRepo, recorder)
	tabulationService := service.NewTabulationService(plan, roundRepo, assignmentRepo, scoreRepo, teamRepo, cacheRepo, cfg.Cache.TabulationTTL, recorder)

	jwtService, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}
	authMiddleware := middleware.NewAuthMiddleware(jwtService, setupService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	// В production не доверяем прокси-заголовкам; при деплое за балансировщиком добавьте его IP
	trustedProxies := []string{"127.0.0.1", "::1"}
	if isProduction {
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		log.Printf("Warning: failed to set trusted proxies: %v", err)
	}

	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler.RegisterRoutes(router, handler.Handlers{
		Stage:      handler.NewStageHandler(bracketService, roundService),
		Score:      handler.NewScoreHandler(scoreService),
		Round:      handler.NewRoundHandler(roundService),
		Setup:      handler.NewSetupHandler(setupService),
		Tabulation: handler.NewTabulationHandler(tabulationService),
		Health:     handler.NewHealthHandler(db, redisClient),
		Metrics:    promhttp.HandlerFor(recorder.Registry(), promhttp.HandlerOpts{}),
	}, authMiddleware, rateLimiter, middleware.ScoreSubmissionRateLimitConfig(cfg.RateLimit.ScoreSubmissions, cfg.RateLimit.Window))

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Println("Server exited properly")
}
