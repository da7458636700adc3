package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/predict"
)

type HealthHandler struct {
	predictor *predict.Predictor
}

func NewHealthHandler(p *predict.Predictor) *HealthHandler {
	return &HealthHandler{predictor: p}
}

func (h *HealthHandler) Health(c *gin.Context) {
	status := "UP"
	code := http.StatusOK
	if h.predictor == nil {
		status = "DOWN"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":       status,
		"service":      "Subway Delay Prediction API",
		"model_loaded": h.predictor != nil,
	})
}
