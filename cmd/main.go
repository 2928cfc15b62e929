package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront-admin-service/internal/config"
	"storefront-admin-service/internal/gateway"
	"storefront-admin-service/internal/handlers"
	"storefront-admin-service/internal/importer"
	"storefront-admin-service/internal/middleware"
	"storefront-admin-service/internal/session"
	"storefront-admin-service/internal/storeapi"
)

// @title Storefront Admin API
// @version 1.0.0
// @description Admin backend for a storefront commerce dashboard: store connection management, product catalog operations and bulk CSV/XLSX import.

// @host localhost:8093
// @BasePath /api/v1

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client for session persistence
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (falling back to localhost)", err)
		redisOpts = &redis.Options{Addr: "localhost:6379"}
	}
	redisClient := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (sessions will not survive restarts)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Session store seeds itself from Redis; a missing or malformed
	// record just means starting disconnected.
	sessions := session.NewStore(session.NewRedisKV(redisClient), cfg.PersistKeyPairSecrets, logger)

	// Outbound request path to the storefront API
	gw := gateway.New(sessions, cfg.RequestTimeout, cfg.RateLimitRPS, logger)

	// Store API clients
	authClient := storeapi.NewAuthClient(gw, cfg.RequestTimeout, logger)
	productsClient := storeapi.NewProductsClient(gw, logger)
	taxonomyClient := storeapi.NewTaxonomyClient(gw, logger)
	mediaClient := storeapi.NewMediaClient(sessions, cfg.RequestTimeout, logger)

	// Import pipeline. A session change invalidates the credentials an
	// in-flight run is using, so it is cancelled.
	pipeline := importer.NewPipeline(productsClient, logger)
	sessions.Subscribe(func(_ *session.Session) {
		pipeline.Cancel()
	})

	// Handlers
	sessionHandler := handlers.NewSessionHandler(sessions, authClient, logger)
	productsHandler := handlers.NewProductsHandler(productsClient, logger)
	taxonomyHandler := handlers.NewTaxonomyHandler(taxonomyClient, logger)
	mediaHandler := handlers.NewMediaHandler(mediaClient, logger)
	importHandler := handlers.NewImportHandler(pipeline, cfg.DefaultBatchSize, cfg.MaxBatchSize, logger)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check endpoints
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)

	api := router.Group("/api/v1")
	{
		// Store connection lifecycle - reachable without a session
		store := api.Group("/store")
		{
			store.POST("/connect", sessionHandler.Connect)
			store.POST("/disconnect", sessionHandler.Disconnect)
			store.GET("/session", sessionHandler.Status)
			store.POST("/test", sessionHandler.TestConnection)
			store.PUT("/media-token", sessionHandler.SetMediaToken)
			store.DELETE("/media-token", sessionHandler.ClearMediaToken)
		}

		// Store-facing routes require an active session
		connected := api.Group("")
		connected.Use(middleware.RequireConnection(sessions))
		{
			products := connected.Group("/products")
			{
				products.GET("", productsHandler.GetProducts)
				products.GET("/:id", productsHandler.GetProduct)
				products.POST("", productsHandler.CreateProduct)
				products.PUT("/:id", productsHandler.UpdateProduct)
				products.DELETE("/:id", productsHandler.DeleteProduct)

				products.GET("/import/template", importHandler.GetImportTemplate)
				products.POST("/import/preview", importHandler.PreviewImport)
				products.POST("/import", importHandler.RunImport)
				products.GET("/import/status", importHandler.GetImportStatus)
				products.POST("/import/cancel", importHandler.CancelImport)
			}

			connected.GET("/categories", taxonomyHandler.GetCategories)
			connected.GET("/attributes", taxonomyHandler.GetAttributes)
			connected.GET("/attributes/:id/terms", taxonomyHandler.GetAttributeTerms)
			connected.GET("/brands", taxonomyHandler.GetBrands)

			connected.POST("/media", mediaHandler.UploadMedia)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Storefront admin service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down storefront-admin-service...")

	// Let an in-flight import settle its current batch before exit.
	if pipeline.Cancel() {
		pipeline.Wait()
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Storefront admin service stopped")
}
