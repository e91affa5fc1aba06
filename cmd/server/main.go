package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-ingest-service/internal/domain/repository"
	"flight-ingest-service/internal/infrastructure/config"
	"flight-ingest-service/internal/infrastructure/persistence"
	"flight-ingest-service/internal/infrastructure/router"
	"flight-ingest-service/internal/interface/api"
	"flight-ingest-service/internal/interface/inmem"
	gormRepo "flight-ingest-service/internal/interface/repository"
	"flight-ingest-service/internal/interface/ruleengine"
	"flight-ingest-service/internal/interface/spreadsheet"
	"flight-ingest-service/internal/usecase"
	"flight-ingest-service/pkg/logger"
	"flight-ingest-service/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

// stores groups the repositories behind one backend
type stores struct {
	ingestion  repository.IngestionRepository
	stats      repository.StatsRepository
	dimensions repository.DimensionRepository
	missing    repository.MissingDimensionRepository
	flights    repository.FlightCleanRepository
	engine     repository.RuleEngine
	runs       repository.ProcessingRunRepository
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Flight Ingest Service", "version", cfg.AppVersion, "backend", cfg.StoreBackend)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)

	var st stores
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn("Using in-memory store, data is lost on restart")
		store := inmem.NewStore()
		st = stores{
			ingestion:  store,
			stats:      store,
			dimensions: store,
			missing:    store,
			flights:    store,
			engine:     inmem.NewRuleEngine(store),
			runs:       store,
		}
	case config.BackendPostgres:
		log.Info("Connecting to PostgreSQL")
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresDSN, persistence.PoolConfig{
			MaxIdle:     cfg.DBMaxIdle,
			MaxOpen:     cfg.DBMaxOpen,
			MaxLifetime: time.Hour,
		})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		engine, err := ruleengine.NewProcedureEngine(gormDB, cfg.Ingestion.Procedures, log)
		if err != nil {
			log.Fatal("Invalid procedure configuration", "error", err)
		}
		st = stores{
			ingestion:  gormRepo.NewGormIngestionRepository(gormDB),
			stats:      gormRepo.NewGormStatsRepository(gormDB),
			dimensions: gormRepo.NewGormDimensionRepository(gormDB),
			missing:    gormRepo.NewGormMissingDimensionRepository(gormDB),
			flights:    gormRepo.NewGormFlightCleanRepository(gormDB),
			engine:     engine,
		}
	default:
		log.Fatal("Unknown store backend", "backend", cfg.StoreBackend)
	}

	// Processing run history goes to MongoDB when configured
	var mongoClient *mongo.Client
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		client, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		mongoClient = client
		st.runs = gormRepo.NewMongoProcessingRunRepository(db)
	}

	// Set up source routing
	sources, err := router.NewSourceRouterFromConfig(cfg.Ingestion, log)
	if err != nil {
		log.Fatal("Invalid source configuration", "error", err)
	}
	log.Info("Source priority", "sources", sources.SourceTypes())

	opener := spreadsheet.NewExcelOpener()
	writer := spreadsheet.NewExcelWriter()

	ingest := usecase.NewIngestProcessor(st.ingestion, sources, opener,
		usecase.NewSheetNormalizer(cfg.Ingestion, log), cfg.Ingestion.SpreadsheetExtensions, m, log)
	cleaning := usecase.NewCleaningOrchestrator(st.engine, st.stats, cfg.StageTimeout, m, log)
	missing := usecase.NewMissingDimensionService(st.missing, opener, writer, log)
	export := usecase.NewFlightExportService(st.flights, st.dimensions, writer, cfg.Ingestion.HomeCountry, log)
	processing := usecase.NewDataProcessingService(ingest, cleaning, missing, st.stats, st.runs, log)

	// Set up HTTP server
	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	api.NewHandler(processing, missing, export, cfg.MaxUploadBytes, cfg.AppVersion, log).
		RegisterRoutes(engine, cfg.APIPrefix)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port, "prefix", cfg.APIPrefix)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	log.Info("Flight Ingest Service stopped")
}
