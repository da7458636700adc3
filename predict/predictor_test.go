package predict

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/config"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/gbt"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/models"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/training"
)

// trainFixture runs a small training pass into a temp dir and loads the
// artifacts back, exercising the same persistence path production uses.
func trainFixture(t *testing.T) (*Predictor, config.ModelConfig) {
	t.Helper()
	cfg := config.ModelConfig{Dir: t.TempDir()}

	stations := []string{"KIPLING STATION", "KENNEDY STATION", "FINCH STATION", "UNION STATION"}
	lines := []string{"YU", "BD"}
	codes := []string{"MUSC", "PUOPO", "SUDP"}
	bounds := []string{"N", "S", "E", "W"}
	start := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)

	records := make([]models.DelayRecord, 600)
	for i := range records {
		hour := i % 24
		records[i] = models.DelayRecord{
			Date:    start.AddDate(0, 0, i%14),
			Time:    fmt.Sprintf("%02d:%02d", hour, (i*7)%60),
			Station: stations[i%len(stations)],
			Line:    lines[i%len(lines)],
			Code:    codes[i%len(codes)],
			Bound:   bounds[i%len(bounds)],
		}
		if hour == 7 || hour == 8 || hour == 9 || hour == 17 || hour == 18 {
			records[i].MinDelay = 5
		}
	}

	params := gbt.Params{
		LearningRate:     0.3,
		MaxIter:          40,
		MaxLeafNodes:     8,
		MaxDepth:         4,
		MinSamplesLeaf:   5,
		L2Regularization: 1.0,
		MaxFeatures:      1.0,
		MaxBins:          32,
		Seed:             42,
	}
	if _, err := training.Run(records, cfg, params); err != nil {
		t.Fatalf("training fixture failed: %v", err)
	}

	p, err := Load(cfg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return p, cfg
}

func TestLoadFailsWithoutArtifacts(t *testing.T) {
	cfg := config.ModelConfig{Dir: t.TempDir()}
	if _, err := Load(cfg); err == nil {
		t.Error("expected error when artifact files are missing")
	}
}

func TestPredictSingle(t *testing.T) {
	p, _ := trainFixture(t)

	result, err := p.Predict(models.PredictionRequest{
		Date:    "2025-03-10",
		Time:    "08:15",
		Station: "KENNEDY STATION",
		Line:    "BD",
		Code:    "MUSC",
		Bound:   "W",
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Prediction != "Delay" && result.Prediction != "No Delay" {
		t.Errorf("unexpected label %q", result.Prediction)
	}
	if math.Abs(result.DelayProbability+result.NoDelayProbability-1) > 1e-9 {
		t.Errorf("probabilities sum to %v", result.DelayProbability+result.NoDelayProbability)
	}
	if result.Confidence.Delay != result.DelayProbability {
		t.Error("confidence map disagrees with flat probability")
	}
	// 08:15 is a rush-hour slot in the fixture; the model should flag it.
	if result.Prediction != "Delay" {
		t.Errorf("rush hour predicted %q, want Delay (p=%v)", result.Prediction, result.DelayProbability)
	}
}

func TestPredictOffPeakIsNoDelay(t *testing.T) {
	p, _ := trainFixture(t)

	result, err := p.Predict(models.PredictionRequest{
		Date:    "2025-03-10",
		Time:    "13:00",
		Station: "KENNEDY STATION",
		Line:    "BD",
		Code:    "MUSC",
		Bound:   "W",
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if result.Prediction != "No Delay" {
		t.Errorf("midday predicted %q, want No Delay (p=%v)", result.Prediction, result.DelayProbability)
	}
}

func TestPredictUnseenSubjectStillScores(t *testing.T) {
	p, _ := trainFixture(t)

	result, err := p.Predict(models.PredictionRequest{
		Date:    "2025-03-10",
		Time:    "08:00",
		Station: "NO SUCH STATION",
		Line:    "ZZ",
		Code:    "XXXX",
		Bound:   "Q",
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if result.DelayProbability < 0 || result.DelayProbability > 1 {
		t.Errorf("probability out of range: %v", result.DelayProbability)
	}
}

func TestPredictMalformedInputs(t *testing.T) {
	p, _ := trainFixture(t)

	base := models.PredictionRequest{
		Date: "2025-03-10", Time: "08:00",
		Station: "KENNEDY STATION", Line: "BD", Code: "MUSC", Bound: "W",
	}

	badDate := base
	badDate.Date = "10/03/2025"
	if _, err := p.Predict(badDate); err == nil {
		t.Error("expected error for unsupported date format")
	}

	badTime := base
	badTime.Time = "25:99"
	if _, err := p.Predict(badTime); err == nil {
		t.Error("expected error for invalid time")
	}
}

func TestPredictDay(t *testing.T) {
	p, _ := trainFixture(t)

	hours, err := p.PredictDay(models.DayForecastRequest{Date: "2025-03-10"})
	if err != nil {
		t.Fatalf("PredictDay failed: %v", err)
	}
	if len(hours) != 24 {
		t.Fatalf("forecast has %d entries, want 24", len(hours))
	}
	for i, h := range hours {
		if h.Hour != i {
			t.Errorf("entry %d has hour %d", i, h.Hour)
		}
		if want := fmt.Sprintf("%02d:00", i); h.Time != want {
			t.Errorf("entry %d has time %q, want %q", i, h.Time, want)
		}
		if h.DelayProbability < 0 || h.DelayProbability > 100 {
			t.Errorf("hour %d probability %v out of percent range", i, h.DelayProbability)
		}
	}

	// Rush hours should stand out against the middle of the night.
	if hours[8].DelayProbability <= hours[3].DelayProbability {
		t.Errorf("08:00 (%v%%) not above 03:00 (%v%%)",
			hours[8].DelayProbability, hours[3].DelayProbability)
	}
}

func TestPredictDayRejectsBadDate(t *testing.T) {
	p, _ := trainFixture(t)
	if _, err := p.PredictDay(models.DayForecastRequest{Date: "next tuesday"}); err != nil {
		return
	}
	t.Error("expected error for unparsable date")
}

func TestPredictBatch(t *testing.T) {
	p, _ := trainFixture(t)

	good := models.PredictionRequest{
		Date: "2025-03-10", Time: "08:00",
		Station: "KENNEDY STATION", Line: "BD", Code: "MUSC", Bound: "W",
	}
	bad := good
	bad.Time = "not a time"

	items := p.PredictBatch([]models.PredictionRequest{good, bad, good})
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i, item := range items {
		if item.Index != i {
			t.Errorf("item %d carries index %d", i, item.Index)
		}
	}
	if !items[0].Success || !items[2].Success {
		t.Error("valid inputs did not succeed")
	}
	if items[1].Success {
		t.Error("malformed input reported success")
	}
	if items[1].Error == "" {
		t.Error("failed item carries no error message")
	}
	if items[1].Result != nil {
		t.Error("failed item carries a result")
	}
}

func TestModelVersion(t *testing.T) {
	p, _ := trainFixture(t)
	cfg := p.Config()
	if cfg.Algorithm != "HistGradientBoosting" {
		t.Errorf("algorithm = %q", cfg.Algorithm)
	}
	want := cfg.Algorithm + "@" + cfg.TrainingDate
	if got := p.ModelVersion(); got != want {
		t.Errorf("ModelVersion() = %q, want %q", got, want)
	}
}
