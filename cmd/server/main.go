package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "munlink-backend/internal/api/grpc"
	httpapi "munlink-backend/internal/api/http"
	"munlink-backend/internal/cache"
	"munlink-backend/internal/config"
	"munlink-backend/internal/location"
	"munlink-backend/internal/logger"
	"munlink-backend/internal/metrics"
	"munlink-backend/internal/repository/postgres"
	"munlink-backend/internal/security"
	"munlink-backend/internal/service"
	"munlink-backend/internal/storage"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting MunLink Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "timezone", cfg.Location().String())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns,
		time.Duration(cfg.Database.ConnectTimeoutS)*time.Second)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	// Metrics
	var (
		m              *metrics.Metrics
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	// Cache
	var cacheStore cache.Store = cache.NewMemoryStore()
	if cfg.Redis.URL != "" {
		client, err := cache.DialRedis(ctx, cfg.Redis.URL, cfg.Redis.PoolSize)
		if err != nil {
			// lists still work without a shared cache
			logger.Warn("Redis unavailable, using in-memory cache", "error", err)
		} else {
			defer client.Close()
			cacheStore = cache.NewRedisStore(client, "munlink:")
			logger.Info("Using redis cache")
		}
	}
	listCache := cache.New(cacheStore, m)

	// Initialize Storage Service
	fileStore, mockStorage, err := storage.New(ctx, storage.Config{
		Type:     cfg.Storage.Type,
		MockDir:  cfg.Storage.UploadDir,
		BaseURL:  cfg.Storage.BaseURL,
		Bucket:   cfg.Storage.S3Bucket,
		Region:   cfg.Storage.S3Region,
		Endpoint: cfg.Storage.S3Endpoint,
	})
	if err != nil {
		logger.Error("Failed to initialize storage", "type", cfg.Storage.Type, "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	// Delivery channels
	emailSender, err := service.NewEmailSender(cfg.SMTP, cfg.Email)
	if err != nil {
		log.Fatalf("Failed to initialize email sender: %v", err)
	}
	pushSender, err := service.NewPushSender(ctx, cfg.Push)
	if err != nil {
		log.Fatalf("Failed to initialize push sender: %v", err)
	}

	// Location directory
	munis, err := store.ListMunicipalities(ctx)
	if err != nil {
		log.Fatalf("Failed to load municipalities: %v", err)
	}
	brgys, err := store.ListBarangays(ctx)
	if err != nil {
		log.Fatalf("Failed to load barangays: %v", err)
	}
	directory, err := location.NewDirectory(munis, brgys)
	if err != nil {
		log.Fatalf("Failed to build location directory: %v", err)
	}
	logger.Info("Location directory loaded", "municipalities", len(munis), "barangays", len(brgys))

	// Initialize Services
	loc := cfg.Location()
	noteSvc := service.NewNotificationService(store.NotificationRepository, store.UserRepository, emailSender, pushSender)
	statusSvc := service.NewSpecialStatusService(store.SpecialStatusRepository, store.UserRepository, fileStore, noteSvc, loc)
	programSvc := service.NewProgramService(store.ProgramRepository, listCache, cfg.Cache.ProgramsStaleTime())
	docTypeSvc := service.NewDocumentTypeService(store.DocumentTypeRepository, listCache, cfg.Cache.DocumentTypesStaleTime())
	docRequestSvc := service.NewDocumentRequestService(
		store.DocumentRequestRepository,
		store.DocumentTypeRepository,
		store.UserRepository,
		statusSvc,
		directory,
		fileStore,
		noteSvc,
		m,
		loc,
	)
	appSvc := service.NewApplicationService(
		store.ApplicationRepository,
		store.ProgramRepository,
		store.UserRepository,
		fileStore,
		noteSvc,
		m,
		loc,
	)

	// HTTP API
	router := httpapi.NewRouter(httpapi.Services{
		Programs:         programSvc,
		DocumentTypes:    docTypeSvc,
		DocumentRequests: docRequestSvc,
		Applications:     appSvc,
		SpecialStatuses:  statusSvc,
		Notifications:    noteSvc,
	}, httpapi.Options{
		Tokens:         security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer),
		Directory:      directory,
		Metrics:        m,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
		Health:         store.Ping,
		MockStorage:    mockStorage,
		Uploads: httpapi.UploadLimits{
			MaxBytes:     cfg.MaxUploadBytes(),
			AllowedTypes: cfg.Storage.AllowedTypes,
		},
	})
	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// gRPC health endpoint for load balancers
	if cfg.GRPC.Port > 0 {
		hc := api.NewHealthChecker(store.Ping, 0)
		grpcServer := api.NewServer(hc)
		lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
			log.Fatalf("Failed to listen: %v", err)
		}
		g.Go(func() error {
			hc.Run(gctx)
			return nil
		})
		g.Go(func() error {
			logger.Info("gRPC health server listening", "address", cfg.GetGRPCAddress())
			return grpcServer.Serve(lis)
		})
		g.Go(func() error {
			<-gctx.Done()
			grpcServer.GracefulStop()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		log.Fatalf("Server error: %v", err)
	}
	logger.Info("MunLink Backend stopped. Goodbye!")
}
