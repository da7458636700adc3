package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/models"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/predict"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/services"
)

// PredictionChannel is the redis channel every served prediction is
// published to.
const PredictionChannel = "subway:predictions"

var (
	predictionsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subway_api_predictions_served_total",
		Help: "Total number of successful single predictions.",
	})
	predictionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subway_api_predictions_failed_total",
		Help: "Total number of rejected or failed predictions.",
	})
	dayForecastsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subway_api_day_forecasts_served_total",
		Help: "Total number of 24-hour forecasts served.",
	})
	predictDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "subway_api_predict_duration_seconds",
		Help:    "Duration of a single prediction call.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})
)

type PredictHandler struct {
	predictor *predict.Predictor
	cache     *services.CacheService
	history   *services.HistoryService
	cacheTTL  time.Duration
}

func NewPredictHandler(p *predict.Predictor, cache *services.CacheService, history *services.HistoryService, cacheTTL time.Duration) *PredictHandler {
	return &PredictHandler{predictor: p, cache: cache, history: history, cacheTTL: cacheTTL}
}

type dayForecastResponse struct {
	Success bool                      `json:"success"`
	Input   models.DayForecastRequest `json:"input"`
	Result  []models.HourlyPrediction `json:"result"`
}

// Predict handles POST /predict.
func (h *PredictHandler) Predict(c *gin.Context) {
	var req models.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		predictionsFailed.Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           err.Error(),
			"required_fields": []string{"Date", "Time", "Station", "Line", "Code", "Bound"},
		})
		return
	}

	start := time.Now()
	result, err := h.predictor.Predict(req)
	predictDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		predictionsFailed.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	predictionsServed.Inc()

	go h.recordPrediction(req, result)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"input":   req,
		"result":  result,
	})
}

// recordPrediction fans the served prediction out to redis and the history
// store, off the request path.
func (h *PredictHandler) recordPrediction(req models.PredictionRequest, result *models.PredictionResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := &models.PredictionLog{
		TS:               time.Now().UTC(),
		Station:          req.Station,
		Line:             req.Line,
		Code:             req.Code,
		Bound:            req.Bound,
		RequestedDate:    req.Date,
		RequestedTime:    req.Time,
		Prediction:       result.Prediction,
		DelayProbability: result.DelayProbability,
		ModelVersion:     h.predictor.ModelVersion(),
	}
	if err := h.cache.Publish(ctx, PredictionChannel, entry); err != nil {
		log.Printf("redis publish failed: %v", err)
	}
	if err := h.history.Log(ctx, entry); err != nil {
		log.Printf("history insert failed: %v", err)
	}
}

// PredictDay handles POST /predict_day. Responses are deterministic per
// (date, subject), so they cache well.
func (h *PredictHandler) PredictDay(c *gin.Context) {
	var req models.DayForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		predictionsFailed.Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           err.Error(),
			"required_fields": []string{"Date", "Station", "Line", "Code", "Bound"},
		})
		return
	}

	cacheKey := fmt.Sprintf("forecast:%s:%s:%s:%s:%s",
		req.Date, req.Station, req.Line, req.Code, req.Bound)
	var cached dayForecastResponse
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached.Result != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	result, err := h.predictor.PredictDay(req)
	if err != nil {
		predictionsFailed.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dayForecastsServed.Inc()

	resp := dayForecastResponse{Success: true, Input: req, Result: result}
	go h.cache.Set(context.Background(), cacheKey, resp, h.cacheTTL)

	c.JSON(http.StatusOK, resp)
}

// PredictBatch handles POST /predict_batch. Items fail individually; a
// malformed entry never aborts the rest.
func (h *PredictHandler) PredictBatch(c *gin.Context) {
	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Predictions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no predictions provided"})
		return
	}

	items := h.predictor.PredictBatch(req.Predictions)
	for _, item := range items {
		if item.Success {
			predictionsServed.Inc()
		} else {
			predictionsFailed.Inc()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   len(req.Predictions),
		"results": items,
	})
}

// ModelInfo handles GET /model/info.
func (h *PredictHandler) ModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.predictor.Config())
}
