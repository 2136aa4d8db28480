package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/medrex/clinical-api/internal/config"
	"github.com/medrex/clinical-api/internal/handler"
	assessmentHandler "github.com/medrex/clinical-api/internal/handler/assessment"
	authHandler "github.com/medrex/clinical-api/internal/handler/auth"
	diagnosticHandler "github.com/medrex/clinical-api/internal/handler/diagnostic"
	patientHandler "github.com/medrex/clinical-api/internal/handler/patient"
	"github.com/medrex/clinical-api/internal/middleware"
	"github.com/medrex/clinical-api/internal/repository/mongodb"
	"github.com/medrex/clinical-api/internal/router"
	analysisService "github.com/medrex/clinical-api/internal/service/analysis"
	assessmentService "github.com/medrex/clinical-api/internal/service/assessment"
	authService "github.com/medrex/clinical-api/internal/service/auth"
	diagnosticService "github.com/medrex/clinical-api/internal/service/diagnostic"
	"github.com/medrex/clinical-api/internal/service/expand"
	patientService "github.com/medrex/clinical-api/internal/service/patient"
	"github.com/medrex/clinical-api/pkg/auth"
	"github.com/medrex/clinical-api/pkg/blob"
	"github.com/medrex/clinical-api/pkg/logger"
)

func main() {
	log := logger.NewLogger(nil)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	// Initialize database
	db, err := mongodb.NewDB(cfg.Mongo)
	if err != nil {
		log.Fatal(err, "failed to connect to mongodb")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Client().Disconnect(ctx); err != nil {
			log.Error(err, "failed to disconnect from mongodb")
		}
	}()

	// Initialize repositories
	userRepo := mongodb.NewUserRepository(db)
	patientRepo := mongodb.NewPatientRepository(db)
	assessmentRepo := mongodb.NewAssessmentRepository(db)
	diagnosticRepo := mongodb.NewDiagnosticRepository(db)

	// Initialize blob storage for diagnostic files
	blobStore, err := blob.NewDiskStore(cfg.Upload.Dir)
	if err != nil {
		log.Fatal(err, "failed to initialize upload storage")
	}

	// Initialize services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	expander := expand.New(patientRepo, userRepo)
	authSvc := authService.NewService(userRepo, jwtSvc)
	patientSvc := patientService.NewService(patientRepo)
	assessmentSvc := assessmentService.NewService(assessmentRepo, patientRepo, expander)
	diagnosticSvc := diagnosticService.NewService(diagnosticRepo, patientRepo, blobStore, expander)
	analyzer := analysisService.NewMockAnalyzer()

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authSvc, cfg.JWT.CookieName)

	// Initialize handlers
	registry := prometheus.NewRegistry()
	h := handler.NewHandler(registry)
	authH := authHandler.NewHandler(authSvc, cfg.JWT.CookieName)
	patientH := patientHandler.NewHandler(patientSvc)
	assessmentH := assessmentHandler.NewHandler(assessmentSvc, analyzer)
	diagnosticH := diagnosticHandler.NewHandler(diagnosticSvc, analyzer)

	// Setup router
	r := router.NewRouter(
		authMiddleware,
		authH,
		patientH,
		assessmentH,
		diagnosticH,
		h,
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RPS,
			RateLimitBurst: cfg.RateLimit.Burst,
			RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "clinical_api",
			Registry:       registry,
		},
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Start server
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}
