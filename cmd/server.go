package cmd

import (
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"musicren/config"
	"musicren/handlers"
	"musicren/middleware"
	"musicren/services"
	"musicren/websocket"
)

// StartWebServer starts the web server
func StartWebServer(port int) {
	// Set production mode if not specified
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize services
	hub := websocket.NewHub()
	go hub.Run()

	fileService := services.NewFileService()
	tagWriter := services.NewTagWriter()
	coverResolver := services.NewCoverResolver()
	lyricsResolver := services.NewLyricsResolver()
	recognizer := services.NewRecognizer(services.NewFingerprinter(), services.NewAcoustIDClient(config.GetAcoustIDKey()), coverResolver)
	enricher := services.NewFileEnricher(fileService, recognizer, coverResolver, lyricsResolver, tagWriter)
	coordinator := services.NewBatchCoordinator(enricher, 0)
	renamer := services.NewRenameEngine(fileService)

	jobQueue := services.NewJobQueue(2, fileService, coordinator, renamer, hub)
	jobQueue.Start()

	// Initialize handlers
	processHandler := handlers.NewProcessHandler(jobQueue, hub)
	fileHandler := handlers.NewFileHandler(fileService)
	renameHandler := handlers.NewRenameHandler(renamer)
	healthHandler := handlers.NewHealthHandler()
	settingsHandler := handlers.NewSettingsHandler()

	// Setup router
	r := gin.Default()

	// Apply middleware
	r.Use(middleware.CORS())
	r.Use(middleware.Logging())

	// Setup routes
	setupRoutes(r, processHandler, fileHandler, renameHandler, healthHandler, settingsHandler)

	// Start server
	portStr := strconv.Itoa(port)
	if serverPort := os.Getenv("SERVER_PORT"); serverPort != "" {
		portStr = serverPort
	}

	log.Printf("Musicren web server starting on port %s", portStr)
	if err := r.Run(":" + portStr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRoutes configures all the HTTP routes
func setupRoutes(r *gin.Engine, processHandler *handlers.ProcessHandler, fileHandler *handlers.FileHandler, renameHandler *handlers.RenameHandler, healthHandler *handlers.HealthHandler, settingsHandler *handlers.SettingsHandler) {
	// Health check endpoint
	r.GET("/health", healthHandler.HealthCheck)

	// API routes group
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/status", healthHandler.APIStatus)

		// Job Management Endpoints
		jobsGroup := apiGroup.Group("/jobs")
		{
			// Queue processing passes
			jobsGroup.POST("/enrich", processHandler.QueueEnrich)
			jobsGroup.POST("/covers", processHandler.QueueCovers)
			jobsGroup.POST("/rename", processHandler.QueueRename)

			// Manage jobs
			jobsGroup.GET("", processHandler.GetAllJobs)
			jobsGroup.GET("/:jobId", processHandler.GetJob)
			jobsGroup.DELETE("/:jobId", processHandler.CancelJob)
		}

		// WebSocket endpoints for real-time progress
		wsGroup := apiGroup.Group("/ws")
		{
			// WebSocket endpoint for specific job progress
			wsGroup.GET("/jobs/:jobId", processHandler.HandleWebSocketConnection)

			// WebSocket endpoint for all jobs progress
			wsGroup.GET("/jobs", processHandler.HandleWebSocketAllConnection)
		}

		// File discovery endpoint
		apiGroup.GET("/files", fileHandler.ListFiles)

		// Synchronous rename endpoints
		apiGroup.POST("/rename", renameHandler.RenameFiles)
		apiGroup.POST("/rename/undo", renameHandler.UndoRename)

		// Settings endpoints
		apiGroup.GET("/settings", settingsHandler.GetSettings)
		apiGroup.POST("/settings", settingsHandler.UpdateSettings)
	}
}
