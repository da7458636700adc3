package ingest

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/features"
	"github.com/saajpatel/TTC-Subway-Delay-Predictor/models"
)

// LoadFinal reads the merged CSV into delay records. Rows with unparsable
// dates are dropped and counted; numeric fields that fail to parse become
// zero, matching the coercion the raw exports get.
func LoadFinal(path string) ([]models.DelayRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read %s: %w", path, df.Err)
	}

	col := make(map[string]int, len(df.Names()))
	for i, name := range df.Names() {
		col[name] = i
	}
	for _, required := range []string{"Date", "Time", "Station", "Code", "Min Delay", "Bound", "Line"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, required)
		}
	}

	records := df.Records()[1:] // drop header
	out := make([]models.DelayRecord, 0, len(records))
	dropped := 0

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	for _, row := range records {
		date, err := features.ParseDate(cell(row, "Date"))
		if err != nil {
			dropped++
			continue
		}
		minDelay, _ := strconv.ParseFloat(cell(row, "Min Delay"), 64)
		minGap, _ := strconv.ParseFloat(cell(row, "Min Gap"), 64)

		out = append(out, models.DelayRecord{
			Date:     date,
			Time:     cell(row, "Time"),
			Day:      cell(row, "Day"),
			Station:  cell(row, "Station"),
			Code:     cell(row, "Code"),
			MinDelay: minDelay,
			MinGap:   minGap,
			Bound:    cell(row, "Bound"),
			Line:     cell(row, "Line"),
			Vehicle:  cell(row, "Vehicle"),
		})
	}

	if dropped > 0 {
		log.Printf("dropped %d rows with unparsable dates from %s", dropped, path)
	}
	return out, nil
}
