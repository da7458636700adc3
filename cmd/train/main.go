package main

import (
	"log"
	"path/filepath"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/config"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/gbt"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/ingest"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/training"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	finalCSV := filepath.Join(cfg.Model.DataDir, "final", "final.csv")
	records, err := ingest.LoadFinal(finalCSV)
	if err != nil {
		log.Fatalf("Failed to load records: %v", err)
	}
	log.Printf("loaded %d records from %s", len(records), finalCSV)

	metrics, err := training.Run(records, cfg.Model, gbt.DefaultParams())
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	cm := metrics.ConfusionMatrix
	log.Printf("training complete: accuracy %.2f%% on %d test samples",
		metrics.Accuracy*100, metrics.TestSamples)
	log.Printf("confusion matrix: tn=%d fp=%d fn=%d tp=%d",
		cm.TrueNegatives, cm.FalsePositives, cm.FalseNegatives, cm.TruePositives)
}
