// Package predict loads the persisted training artifacts and reproduces
// the training-time feature construction for new observations. A Predictor
// is immutable after Load and safe to share across concurrent requests.
package predict

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/config"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/features"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/gbt"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/models"
)

// Defaults for the day forecast when the request omits the subject.
const (
	DefaultStation = "BLOOR YONGE STATION"
	DefaultLine    = "BD"
	DefaultCode    = "MUSC"
	DefaultBound   = "W"
)

type Predictor struct {
	model  *gbt.Classifier
	rates  *features.RateTables
	config *models.ModelConfig
}

// Load reads the classifier, rate tables and config written by the last
// training run. Any failure here is fatal to the caller; there is no
// fallback model.
func Load(cfg config.ModelConfig) (*Predictor, error) {
	p := &Predictor{}

	if err := readJSON(cfg.ModelPath(), &p.model); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if err := readJSON(cfg.DelayRatesPath(), &p.rates); err != nil {
		return nil, fmt.Errorf("load delay rates: %w", err)
	}
	if err := readJSON(cfg.ConfigPath(), &p.config); err != nil {
		return nil, fmt.Errorf("load model config: %w", err)
	}

	return p, nil
}

func readJSON(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Config returns the metadata of the loaded model.
func (p *Predictor) Config() *models.ModelConfig {
	return p.config
}

// ModelVersion identifies the loaded artifacts in logs and history rows.
func (p *Predictor) ModelVersion() string {
	return fmt.Sprintf("%s@%s", p.config.Algorithm, p.config.TrainingDate)
}

// Predict scores one observation. Station, line, code and bound are matched
// verbatim against the rate tables; unseen values resolve to the 0.5
// default rate and are not an error. Malformed date or time strings are.
func (p *Predictor) Predict(req models.PredictionRequest) (*models.PredictionResult, error) {
	date, err := features.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	hour, err := features.ParseHour(req.Time)
	if err != nil {
		return nil, err
	}

	category := req.StationCategory
	if category == "" {
		category = features.OtherStation
	}

	row := features.Build(date, hour, req.Station, req.Line, req.Code, req.Bound, category, p.rates)

	proba := p.model.PredictProba(row.Numeric(), row.Categorical())
	label := "No Delay"
	if proba[1] >= 0.5 {
		label = "Delay"
	}

	return &models.PredictionResult{
		Prediction:         label,
		DelayProbability:   proba[1],
		NoDelayProbability: proba[0],
		Confidence: models.Confidence{
			NoDelay: proba[0],
			Delay:   proba[1],
		},
	}, nil
}

// PredictDay sweeps all 24 hours of a date at minute :00 for one subject,
// invoking the single-record path per hour. Probabilities are reported as
// percentages.
func (p *Predictor) PredictDay(req models.DayForecastRequest) ([]models.HourlyPrediction, error) {
	if req.Station == "" {
		req.Station = DefaultStation
	}
	if req.Line == "" {
		req.Line = DefaultLine
	}
	if req.Code == "" {
		req.Code = DefaultCode
	}
	if req.Bound == "" {
		req.Bound = DefaultBound
	}
	if _, err := features.ParseDate(req.Date); err != nil {
		return nil, err
	}

	out := make([]models.HourlyPrediction, 0, 24)
	for hour := 0; hour < 24; hour++ {
		hhmm := fmt.Sprintf("%02d:00", hour)
		result, err := p.Predict(models.PredictionRequest{
			Date:    req.Date,
			Time:    hhmm,
			Station: req.Station,
			Line:    req.Line,
			Code:    req.Code,
			Bound:   req.Bound,
		})
		if err != nil {
			return nil, fmt.Errorf("hour %d: %w", hour, err)
		}
		out = append(out, models.HourlyPrediction{
			Hour:             hour,
			DelayProbability: result.Confidence.Delay * 100,
			Prediction:       result.Prediction,
			Time:             hhmm,
		})
	}
	return out, nil
}

// PredictBatch applies the single-record path to each input independently.
// Failures are recorded per item; one malformed input never aborts the
// batch, and output order matches input order.
func (p *Predictor) PredictBatch(reqs []models.PredictionRequest) []models.BatchItem {
	items := make([]models.BatchItem, len(reqs))
	for i, req := range reqs {
		result, err := p.Predict(req)
		if err != nil {
			items[i] = models.BatchItem{Index: i, Success: false, Error: err.Error()}
			continue
		}
		items[i] = models.BatchItem{Index: i, Success: true, Result: result}
	}
	return items
}
