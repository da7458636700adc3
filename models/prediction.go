package models

import "time"

// PredictionRequest is the payload for a single prediction. Station, Line,
// Code and Bound are matched verbatim against the trained rate tables; no
// normalization happens here.
type PredictionRequest struct {
	Date    string `json:"Date" binding:"required"`
	Time    string `json:"Time" binding:"required"`
	Station string `json:"Station" binding:"required"`
	Line    string `json:"Line" binding:"required"`
	Code    string `json:"Code" binding:"required"`
	Bound   string `json:"Bound" binding:"required"`
	// Optional; the predictor cannot recover the training-time station
	// category from the artifacts, so absent means "Other".
	StationCategory string `json:"Station_Category"`
}

// DayForecastRequest omits Time; the predictor sweeps all 24 hours.
// Subject fields default to the demo station when omitted.
type DayForecastRequest struct {
	Date    string `json:"Date" binding:"required"`
	Station string `json:"Station"`
	Line    string `json:"Line"`
	Code    string `json:"Code"`
	Bound   string `json:"Bound"`
}

type BatchRequest struct {
	Predictions []PredictionRequest `json:"predictions" binding:"required"`
}

type Confidence struct {
	NoDelay float64 `json:"no_delay"`
	Delay   float64 `json:"delay"`
}

type PredictionResult struct {
	Prediction         string     `json:"prediction"`
	DelayProbability   float64    `json:"delay_probability"`
	NoDelayProbability float64    `json:"no_delay_probability"`
	Confidence         Confidence `json:"confidence"`
}

// HourlyPrediction is one entry of a 24-hour day forecast. DelayProbability
// is a percentage here, matching the dashboard contract.
type HourlyPrediction struct {
	Hour             int     `json:"hour"`
	DelayProbability float64 `json:"delay_probability"`
	Prediction       string  `json:"prediction"`
	Time             string  `json:"time"`
}

// BatchItem carries the outcome for one input of a batch call. Index refers
// to the position in the submitted list.
type BatchItem struct {
	Index   int               `json:"index"`
	Success bool              `json:"success"`
	Result  *PredictionResult `json:"result,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// PredictionLog is a served prediction persisted for the history endpoint.
type PredictionLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TS               time.Time `gorm:"column:ts;index" json:"ts"`
	Station          string    `gorm:"column:station" json:"station"`
	Line             string    `gorm:"column:line" json:"line"`
	Code             string    `gorm:"column:code" json:"code"`
	Bound            string    `gorm:"column:bound" json:"bound"`
	RequestedDate    string    `gorm:"column:requested_date" json:"requested_date"`
	RequestedTime    string    `gorm:"column:requested_time" json:"requested_time"`
	Prediction       string    `gorm:"column:prediction" json:"prediction"`
	DelayProbability float64   `gorm:"column:delay_probability" json:"delay_probability"`
	ModelVersion     string    `gorm:"column:model_version" json:"model_version"`
}

func (PredictionLog) TableName() string { return "prediction_log" }
