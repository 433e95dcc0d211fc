package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webanalytics/config"
	"webanalytics/connection"
	"webanalytics/services"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	fb, err := connection.FBConnection(ctx, cfg.CredentialsFile)
	if err != nil {
		logger.Fatal("failed to initialize Firestore client", zap.Error(err))
	}
	defer fb.Close()

	ga, err := connection.GAConnection(ctx, cfg.CredentialsFile)
	if err != nil {
		logger.Fatal("failed to initialize analytics data service", zap.Error(err))
	}

	router := connection.NewRouter(cfg, fb, services.NewGAReportRunner(ga), logger)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
