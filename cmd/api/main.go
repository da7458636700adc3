package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/config"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/handlers"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/middleware"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/predict"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Artifacts are loaded once and shared read-only by all requests.
	// Missing or corrupt artifacts are fatal; there is no fallback model.
	predictor, err := predict.Load(cfg.Model)
	if err != nil {
		log.Fatalf("Failed to load model artifacts: %v", err)
	}
	info := predictor.Config()
	log.Printf("model loaded: %s trained %s, accuracy %.2f%%, %d features",
		info.Algorithm, info.TrainingDate, info.Accuracy*100, info.TotalFeatures)

	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		log.Printf("redis unavailable, caching disabled: %v", err)
	}

	history := services.NewDisabledHistoryService()
	if cfg.Database.Enabled {
		history, err = services.NewHistoryService(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to history database: %v", err)
		}
		log.Printf("prediction history enabled")
	}

	predictHandler := handlers.NewPredictHandler(predictor, cache, history,
		time.Duration(cfg.Model.CacheTTL)*time.Second)
	historyHandler := handlers.NewHistoryHandler(history, cache)
	healthHandler := handlers.NewHealthHandler(predictor)

	router := gin.Default()
	router.Use(middleware.SetupCORS(cfg.CORS))

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/predict", predictHandler.Predict)
	router.POST("/predict_day", predictHandler.PredictDay)
	router.POST("/predict_batch", predictHandler.PredictBatch)
	router.GET("/model/info", predictHandler.ModelInfo)
	router.GET("/predictions", historyHandler.GetPredictions)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
