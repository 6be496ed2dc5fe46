package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"library-booking/cmd"
	"library-booking/internal/data/repository"
	"library-booking/internal/wire"
	"library-booking/pkg/cache"
	"library-booking/pkg/database"
	"library-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	utils.SetLocation(config.App.Location)

	// Initialize logger
	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using production defaults.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("timezone", config.App.Location.String()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}
	logger.Info("Database connected and schema applied")

	redisCache := cache.New(config.Redis, logger)
	defer redisCache.Close()

	repos := repository.NewRepository(db, logger)
	app := wire.Wiring(repos, redisCache, config, logger)

	if err := cmd.Run(ctx, app, config, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}
