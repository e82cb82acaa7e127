package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"munlink-backend/internal/config"
	"munlink-backend/internal/jobs"
	"munlink-backend/internal/logger"
	"munlink-backend/internal/repository/postgres"
	"munlink-backend/internal/scheduler"
	"munlink-backend/internal/service"
	"munlink-backend/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit ('expire-special-statuses', 'remind-pending-uploads' or 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting MunLink Cronjob Runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns,
		time.Duration(cfg.Database.ConnectTimeoutS)*time.Second)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	emailSender, err := service.NewEmailSender(cfg.SMTP, cfg.Email)
	if err != nil {
		log.Fatalf("Failed to initialize email sender: %v", err)
	}
	pushSender, err := service.NewPushSender(ctx, cfg.Push)
	if err != nil {
		log.Fatalf("Failed to initialize push sender: %v", err)
	}
	// Expiry never uploads; storage is only needed to satisfy the service.
	fileStore, _, err := storage.New(ctx, storage.Config{
		Type:     cfg.Storage.Type,
		MockDir:  cfg.Storage.UploadDir,
		BaseURL:  cfg.Storage.BaseURL,
		Bucket:   cfg.Storage.S3Bucket,
		Region:   cfg.Storage.S3Region,
		Endpoint: cfg.Storage.S3Endpoint,
	})
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	noteSvc := service.NewNotificationService(store.NotificationRepository, store.UserRepository, emailSender, pushSender)
	statusSvc := service.NewSpecialStatusService(store.SpecialStatusRepository, store.UserRepository, fileStore, noteSvc, cfg.Location())

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, &jobs.Services{
		SpecialStatuses: statusSvc,
		Notifications:   noteSvc,
	}, cfg, nil)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := jobRunner.Run(*runOnce); err != nil {
			logger.Error("Job failed", "job", *runOnce, "error", err)
			fmt.Printf("Available jobs:\n")
			fmt.Printf("  - %s\n", jobs.JobExpireSpecialStatuses)
			fmt.Printf("  - %s\n", jobs.JobRemindPendingUploads)
			fmt.Printf("  - all\n")
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}
