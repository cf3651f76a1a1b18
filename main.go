// api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"stallpoint/api/analytics"
	"stallpoint/api/database"
	"stallpoint/api/handlers"
	"stallpoint/api/middleware"
	"stallpoint/api/store"
	"stallpoint/api/tasks"
)

func main() {
	// Load .env file at the very start. A missing file is fine; deployments
	// configure through real environment variables.
	_ = godotenv.Load()

	logger := newLogger()
	defer logger.Sync()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Relational database (users, products, favorites, admin logs, snapshots) ---
	dbClient, err := database.NewPostgresDB(logger)
	if err != nil {
		logger.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- Redis (login sessions) ---
	redisClient, err := database.NewRedisPool(logger)
	if err != nil {
		logger.Fatalf("Failed to initialize redis: %v", err)
	}
	defer redisClient.Close()

	// --- Visit event store ---
	visitStore, closeVisits, err := newVisitStore(logger)
	if err != nil {
		logger.Fatalf("Failed to initialize visit store: %v", err)
	}
	defer closeVisits()

	// --- Stores ---
	userStore := store.NewUserStore(dbClient.DB, logger)
	productStore := store.NewProductStore(dbClient.DB, logger)
	favoriteStore := store.NewFavoriteStore(dbClient.DB, logger)
	adminLogStore := store.NewAdminLogStore(dbClient.DB, logger)
	snapshotStore := store.NewSnapshotStore(dbClient.DB, logger)
	sessionStore := store.NewSessionStore(redisClient, 24*time.Hour, logger)

	// --- Analytics core ---
	analyticsService := analytics.NewService(visitStore, logger)

	// --- Handlers ---
	authHandlers := handlers.NewAuthHandlers(userStore, sessionStore, logger)
	productHandlers := handlers.NewProductHandlers(productStore, adminLogStore, logger)
	favoriteHandlers := handlers.NewFavoriteHandlers(favoriteStore, productStore, logger)
	adminHandlers := handlers.NewAdminHandlers(adminLogStore, logger)
	trackHandlers := handlers.NewTrackHandlers(analyticsService, logger)
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsService, snapshotStore, logger)

	// --- Background jobs ---
	snapshotJob := tasks.NewSnapshotJob(visitStore, snapshotStore, logger)
	scheduler, err := tasks.NewScheduler(snapshotJob, logger)
	if err != nil {
		logger.Fatalf("Failed to configure scheduler: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		// Authentication endpoints (no authentication required)
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		// User routes (require a valid JWT token)
		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(logger))
		{
			protected.GET("/profile", authHandlers.GetProfile)
			protected.PUT("/profile", authHandlers.UpdateProfile)

			protected.GET("/products", productHandlers.ListProducts)
			protected.POST("/products", productHandlers.CreateProduct)
			protected.GET("/products/:id", productHandlers.GetProduct)
			protected.PUT("/products/:id", productHandlers.UpdateProduct)
			protected.DELETE("/products/:id", productHandlers.DeleteProduct)

			protected.GET("/favorites", favoriteHandlers.ListFavorites)
			protected.POST("/favorites", favoriteHandlers.AddFavorite)
			protected.DELETE("/favorites/:productID", favoriteHandlers.RemoveFavorite)

			protected.POST("/track", trackHandlers.TrackVisit)
		}

		// Admin reporting routes (JWT or admin API key; no handler here
		// depends on a user identity)
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAccess(logger))
		{
			admin.GET("/logs", adminHandlers.ListLogs)

			stats := admin.Group("/stats")
			{
				stats.GET("/summary", analyticsHandlers.GetSummary)
				stats.GET("/popular-pages", analyticsHandlers.GetPopularPages)
				stats.GET("/visits", analyticsHandlers.GetVisitsByRange)
				stats.GET("/count", analyticsHandlers.GetVisitsCount)
				stats.GET("/count-by-page", analyticsHandlers.GetVisitsCountByPage)
				stats.GET("/snapshots", analyticsHandlers.GetSnapshots)
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Infof("API server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exiting.")
}

func newLogger() *zap.SugaredLogger {
	var base *zap.Logger
	var err error
	if os.Getenv("APP_ENV") == "development" {
		base, err = zap.NewDevelopment()
	} else {
		base, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return base.Sugar()
}

// newVisitStore selects the visit event backend: ClickHouse for
// deployments, a local SQLite file otherwise.
func newVisitStore(logger *zap.SugaredLogger) (analytics.EventSource, func(), error) {
	switch os.Getenv("VISITS_BACKEND") {
	case "clickhouse":
		chClient, err := database.NewClickHouseDB(logger)
		if err != nil {
			return nil, nil, err
		}
		return store.NewClickHouseVisitStore(chClient, logger), chClient.Close, nil
	default:
		path := os.Getenv("VISITS_DB_PATH")
		if path == "" {
			path = "visits.db"
		}
		sqliteStore, err := store.NewSQLiteVisitStore(path, logger)
		if err != nil {
			return nil, nil, err
		}
		return sqliteStore, func() {
			if err := sqliteStore.Close(); err != nil {
				logger.Errorf("Error closing visit store: %v", err)
			}
		}, nil
	}
}
