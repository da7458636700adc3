package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/config"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/ingest"
)

// Converts the yearly XLSX exports under data/raw to CSV and merges all
// years into data/final/final.csv. The newest year already ships as CSV in
// data/processed and is picked up by the merge.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	dataDir := cfg.Model.DataDir

	if err := os.MkdirAll(filepath.Join(dataDir, "processed"), 0o755); err != nil {
		log.Fatalf("Failed to create processed dir: %v", err)
	}

	for year := ingest.FirstXLSXYear; year <= ingest.LastXLSXYear; year++ {
		xlsxPath := filepath.Join(dataDir, "raw", fmt.Sprintf("%d.xlsx", year))
		csvPath := filepath.Join(dataDir, "processed", fmt.Sprintf("%d.csv", year))
		rows, err := ingest.ConvertYear(xlsxPath, csvPath)
		if err != nil {
			log.Fatalf("Failed to convert %d: %v", year, err)
		}
		log.Printf("saved %s (%d rows)", csvPath, rows)
	}

	total, err := ingest.MergeYears(dataDir, ingest.FirstXLSXYear, ingest.LastYear)
	if err != nil {
		log.Fatalf("Failed to merge years: %v", err)
	}
	log.Printf("merged %d total rows into %s", total, filepath.Join(dataDir, "final", "final.csv"))
}
