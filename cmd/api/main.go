package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/agentiqhub/backend/docs"
	"github.com/agentiqhub/backend/internal/clients/anthropic"
	"github.com/agentiqhub/backend/internal/handlers"
	"github.com/agentiqhub/backend/internal/repositories"
	"github.com/agentiqhub/backend/internal/services"
	"github.com/agentiqhub/backend/libs/auth/middleware"
	"github.com/agentiqhub/backend/libs/auth/service"
	"github.com/agentiqhub/backend/libs/config"
	"github.com/agentiqhub/backend/libs/logger"
	loggerMiddleware "github.com/agentiqhub/backend/libs/logger/middleware"
	sharedMiddleware "github.com/agentiqhub/backend/libs/middlewares"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title AgentIQ Hub API
// @version 1.0
// @description API for course management, learning and AI content generation

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting AgentIQ Hub API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT token generator
	tokenGenerator := service.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// Initialize repositories
	courseRepo := repositories.NewCourseRepository(db)
	moduleRepo := repositories.NewModuleRepository(db)
	lessonRepo := repositories.NewLessonRepository(db)
	quizRepo := repositories.NewQuizRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	progressRepo := repositories.NewProgressRepository(db)
	accessRepo := repositories.NewAccessRepository(db)
	certRepo := repositories.NewCertificateRepository(db)

	// Initialize services
	assembler := services.NewCourseAssembler(moduleRepo, lessonRepo, quizRepo)
	authService := services.NewAuthService(profileRepo, tokenGenerator)
	catalogService := services.NewCatalogService(courseRepo, accessRepo, profileRepo, progressRepo, certRepo, assembler)
	playerService := services.NewPlayerService(courseRepo, moduleRepo, accessRepo, profileRepo, progressRepo, certRepo, assembler, logger.Logger)
	adminContentService := services.NewAdminContentService(courseRepo, moduleRepo, lessonRepo, quizRepo)
	adminUserService := services.NewAdminUserService(profileRepo, accessRepo, courseRepo)
	documentService := services.NewDocumentService()
	checkoutService := services.NewCheckoutService(
		courseRepo,
		profileRepo,
		accessRepo,
		cfg.Stripe.SecretKey,
		cfg.Stripe.WebhookSecret,
		cfg.SiteURL,
		logger.Logger,
	)
	anthropicClient := anthropic.New(cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL, cfg.Anthropic.Model, logger.Logger)
	aiService := services.NewAIService(anthropicClient)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger.Logger)
	courseHandler := handlers.NewCourseHandler(catalogService, logger.Logger)
	playerHandler := handlers.NewPlayerHandler(playerService, logger.Logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, logger.Logger)
	adminCourseHandler := handlers.NewAdminCourseHandler(adminContentService, logger.Logger)
	adminUserHandler := handlers.NewAdminUserHandler(adminUserService, logger.Logger)
	aiHandler := handlers.NewAIHandler(aiService, logger.Logger)
	documentHandler := handlers.NewDocumentHandler(documentService, logger.Logger)

	// Initialize auth middlewares
	authMiddleware := middleware.AuthMiddleware(tokenGenerator)
	adminMiddleware := middleware.AdminMiddleware(tokenGenerator)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(25 * 1024 * 1024)) // 25MB, document uploads included

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes: signup/login plus the payment provider webhook
		authHandler.RegisterRoutes(r, authMiddleware)
		checkoutHandler.RegisterWebhookRoutes(r)

		// Learner routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			courseHandler.RegisterRoutes(r)
			playerHandler.RegisterRoutes(r)
			checkoutHandler.RegisterRoutes(r)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminMiddleware)
			adminCourseHandler.RegisterRoutes(r)
			adminUserHandler.RegisterRoutes(r)
			aiHandler.RegisterRoutes(r)
			documentHandler.RegisterRoutes(r)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // AI generation responses can take a while
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "hub_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
