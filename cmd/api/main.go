package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/danarta/loan-decision-service/internal/config"
	"github.com/danarta/loan-decision-service/internal/features"
	"github.com/danarta/loan-decision-service/internal/handler"
	"github.com/danarta/loan-decision-service/internal/health"
	"github.com/danarta/loan-decision-service/internal/insight"
	"github.com/danarta/loan-decision-service/internal/middleware"
	"github.com/danarta/loan-decision-service/internal/model"
	"github.com/danarta/loan-decision-service/internal/pipeline"
	"github.com/danarta/loan-decision-service/internal/policy"
	"github.com/danarta/loan-decision-service/internal/repository"
	"github.com/danarta/loan-decision-service/internal/service"
	"github.com/danarta/loan-decision-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Load the frozen model artifact, the aggregation tables, and the
	// insight policy. All three are fixed for the process lifetime.
	artifact, err := model.LoadArtifact(cfg.ModelPath)
	if err != nil {
		logger.Fatalf("Failed to load model artifact: %v", err)
	}
	logger.Infof("Model artifact loaded: version %s, schema %s", artifact.Version, artifact.SchemaVersion)

	repo := repository.NewRepository(db)
	tables, err := repo.LoadAggregationTables()
	if err != nil {
		logger.Fatalf("Failed to load aggregation tables: %v", err)
	}

	pol, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		logger.Fatalf("Failed to load policy: %v", err)
	}

	// Initialize layers
	pipe := pipeline.New(
		health.NewAnalyzer(),
		features.NewAssembler(tables),
		model.NewPredictor(artifact),
	)
	sim := insight.NewSimulator(pipe, pol)
	rootCause := insight.NewRootCauseSynthesizer(pol.RootCause)
	svc := service.NewService(repo, logger, cfg, pipe, sim, rootCause)
	h := handler.NewHandler(svc, logger)

	// Daily operations digest
	sender := email.NewSender(cfg, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.DigestSchedule, func() {
		if err := svc.SendDailyDigest(sender); err != nil {
			logger.Errorf("Digest failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule digest: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/api").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/assess", h.Assess).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
