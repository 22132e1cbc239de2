package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/eventra/backend/internal/config"
	"github.com/eventra/backend/internal/database"
	mW "github.com/eventra/backend/internal/middleware"
	"github.com/eventra/backend/internal/services"
)

// @title Eventra Revenue Distribution API
// @version 1.0
// @description Admin API for the post-event ticket revenue distribution ledger
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")

	viper.BindEnv("distribution.admin_percentage", "DISTRIBUTION_ADMIN_PERCENTAGE")
	viper.BindEnv("distribution.sweep_interval", "DISTRIBUTION_SWEEP_INTERVAL")
	viper.BindEnv("distribution.stats_cache_ttl", "DISTRIBUTION_STATS_CACHE_TTL")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	distCfg, err := config.LoadDistributionConfig()
	if err != nil {
		log.Fatalf("Invalid distribution config: %v", err)
	}

	// Initialize services
	db := database.InitDatabase()
	defer db.Close()

	if err := database.EnsureLedgerSchema(db); err != nil {
		log.Fatalf("Failed to ensure ledger schema: %v", err)
	}

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	eventRepo := services.NewEventRepository(db)
	bookingRepo := services.NewBookingRepository(db)
	ledger := services.NewLedgerService(db)
	reporting := services.NewReportingService(ledger, redisClient, distCfg.StatsCacheTTL)
	engine := services.NewDistributionService(eventRepo, bookingRepo, ledger, distCfg, reporting)

	scheduler := services.NewSweepScheduler(engine, distCfg.SweepInterval)
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(mW.AuthMiddleware)

		// Distribution triggers
		r.Post("/distributions/trigger", engine.TriggerDistribution)
		r.Post("/distributions/events/{eventId}", engine.DistributeSpecificEvent)

		// Ledger reporting
		r.Get("/distributions", reporting.GetAllCompletedDistributions)
		r.Get("/distributions/revenue", reporting.GetDistributedRevenue)
		r.Get("/distributions/recent", reporting.GetRecentDistributedRevenue)
		r.Get("/distributions/stats", reporting.GetRevenueStats)
		r.Get("/distributions/range", reporting.GetRevenueByDateRange)
		r.Post("/distributions/batch", reporting.GetEventsByIds)
		r.Get("/distributions/events/{eventId}", reporting.GetEventDistribution)
		r.Get("/revenue/events/{eventId}", reporting.GetRevenueByEvent)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
