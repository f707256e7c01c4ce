package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/DavisKoreal/Emay/cmd"
	"github.com/DavisKoreal/Emay/internal/container"
	"github.com/DavisKoreal/Emay/internal/core/logger"
	"github.com/DavisKoreal/Emay/internal/database"
	"github.com/DavisKoreal/Emay/internal/integrations/googlesheets"
	"github.com/DavisKoreal/Emay/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load .env file, but don't overwrite system environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, falling back to system environment variables.")
	}

	cmd.Execute(ctx)
}

func main() {
	zapLogger := logger.NewLogger()
	defer zapLogger.Sync()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		zapLogger.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := database.NewPostgresConnection(dbURL)
	if err != nil {
		zapLogger.Fatal("Could not connect to the database: " + err.Error())
	}
	defer db.Close()

	if err := database.RunMigrations(db, "./migrations"); err != nil {
		zapLogger.Fatal("Could not run migrations: " + err.Error())
	}

	app := container.NewAppContainer(db)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.TimeoutMiddleware(30 * time.Second))

	app.LoginHandler.RegisterRoutes(router)
	app.ShopsHandler.RegisterRoutes(router)
	app.RecordsHandler.RegisterRoutes(router)

	// Spreadsheet export is optional; boot without it when no Google
	// credentials are configured.
	if sheetsService, err := googlesheets.NewSheetsService(context.Background()); err != nil {
		zapLogger.Warn("Google Sheets export disabled: " + err.Error())
	} else {
		exportService := googlesheets.NewExportService(sheetsService, app.RecordsRepository)
		googlesheets.NewExportHandler(exportService).RegisterRoutes(router)
	}

	if version := os.Getenv("APP_VERSION"); version != "" {
		middleware.SetVersion(version)
	}
	router.GET("/health", middleware.HealthCheckMiddleware())
	go watchStoreHealth(db)

	host := os.Getenv("APP_HOST")
	if host == "" {
		host = ":8080"
	}

	zapLogger.Info("Starting server on " + host)
	if err := router.Run(host); err != nil {
		zapLogger.Fatal("Server stopped: " + err.Error())
	}
}

// watchStoreHealth flips the health endpoint status when the database
// stops answering pings.
func watchStoreHealth(db *sql.DB) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := db.Ping(); err != nil {
			middleware.UpdateHealthStatus("degraded")
		} else {
			middleware.UpdateHealthStatus("ok")
		}
	}
}
