// @title           ContentFlow Backend API
// @version         1.0.0
// @description     Backend API for managing content projects: media asset uploads, asynchronous asset processing, and reusable prompt templates.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"

	"contentflow-backend/docs"
	"contentflow-backend/internal/blob"
	"contentflow-backend/internal/config"
	"contentflow-backend/internal/database"
	"contentflow-backend/internal/handlers"
	"contentflow-backend/internal/middleware"
	"contentflow-backend/internal/supabase"
	"contentflow-backend/internal/worker"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	// Run migrations
	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize migrator: %v", err)
	}
	if err := migrator.Run(); err != nil {
		migrator.Close()
		log.Fatalf("Migration failed: %v", err)
	}
	migrator.Close()
	log.Println("Migrations completed successfully")

	// Initialize Supabase clients
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	tokenIssuer := blob.NewTokenIssuer(cfg.UploadTokenSecret)

	// Initialize handlers
	projectsHandler := handlers.NewProjectsHandler(dbClient, storageClient)
	assetsHandler := handlers.NewAssetsHandler(dbClient, storageClient)
	jobsHandler := handlers.NewJobsHandler(dbClient)
	templatesHandler := handlers.NewTemplatesHandler(dbClient)
	promptsHandler := handlers.NewPromptsHandler(dbClient)
	uploadHandler := handlers.NewUploadHandler(cfg, tokenIssuer, dbClient, realtimeClient)

	// Background asset processor
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.WorkerEnabled {
		transcriber := worker.NewTranscribeClient(cfg.TranscribeAPIBaseURL, cfg.TranscribeAPIKey)
		processor := worker.NewProcessor(dbClient, storageClient, transcriber, realtimeClient,
			cfg.WorkerPollInterval, cfg.WorkerHeartbeatInterval, cfg.WorkerMaxAttempts)
		go processor.Run(ctx)
	}

	// Setup router
	router := gin.Default()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// Upload transport callback (no auth middleware; token generation
	// authenticates the user itself, completion is token-verified)
	router.POST("/api/upload", uploadHandler.HandleUpload)

	// API routes
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))

	// Project routes
	api.POST("/projects", projectsHandler.CreateProject)
	api.GET("/projects", projectsHandler.ListProjects)
	api.GET("/projects/:project_id", projectsHandler.GetProject)
	api.PATCH("/projects/:project_id", projectsHandler.UpdateProject)
	api.DELETE("/projects/:project_id", projectsHandler.DeleteProject)

	// Assets and processing jobs
	api.GET("/projects/:project_id/assets", assetsHandler.ListAssets)
	api.DELETE("/projects/:project_id/assets", assetsHandler.DeleteAsset)
	api.GET("/projects/:project_id/asset-processing-jobs", jobsHandler.ListProcessingJobs)

	// Templates
	api.POST("/templates", templatesHandler.CreateTemplate)
	api.GET("/templates", templatesHandler.ListTemplates)
	api.GET("/templates/:template_id", templatesHandler.GetTemplate)
	api.PATCH("/templates/:template_id", templatesHandler.UpdateTemplate)
	api.DELETE("/templates/:template_id", templatesHandler.DeleteTemplate)

	// Prompts
	api.POST("/projects/:project_id/prompts", promptsHandler.CreateProjectPrompt)
	api.GET("/projects/:project_id/prompts", promptsHandler.ListProjectPrompts)
	api.POST("/templates/:template_id/prompts", promptsHandler.CreateTemplatePrompt)
	api.GET("/templates/:template_id/prompts", promptsHandler.ListTemplatePrompts)
	api.PATCH("/prompts/:prompt_id", promptsHandler.UpdatePrompt)
	api.DELETE("/prompts/:prompt_id", promptsHandler.DeletePrompt)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server")
		srv.Shutdown(context.Background())
	}()

	log.Printf("Server starting on port %s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
