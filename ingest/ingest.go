// Package ingest converts the yearly delay exports into the single CSV the
// training pipeline consumes. The 2018-2024 exports are XLSX; 2025 onward
// already ships as CSV.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

const (
	FirstXLSXYear = 2018
	LastXLSXYear  = 2024
	LastYear      = 2025
)

// ConvertYear rewrites one XLSX export as CSV. The first sheet is taken;
// the exports have exactly one.
func ConvertYear(xlsxPath, csvPath string) (int, error) {
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", xlsxPath, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return 0, fmt.Errorf("read sheet of %s: %w", xlsxPath, err)
	}
	if len(rows) < 2 {
		return 0, fmt.Errorf("%s: no data rows", xlsxPath)
	}

	// Ragged trailing cells are common in the exports; pad to the header.
	width := len(rows[0])
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row[:width]
	}

	df := dataframe.LoadRecords(rows,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return 0, fmt.Errorf("load %s: %w", xlsxPath, df.Err)
	}

	out, err := os.Create(csvPath)
	if err != nil {
		return 0, err
	}
	defer out.Close()
	if err := df.WriteCSV(out); err != nil {
		return 0, fmt.Errorf("write %s: %w", csvPath, err)
	}
	return df.Nrow(), nil
}

// MergeYears stacks the per-year CSVs under dataDir/processed into
// dataDir/final/final.csv. Column order follows the first year.
func MergeYears(dataDir string, firstYear, lastYear int) (int, error) {
	var merged dataframe.DataFrame
	for year := firstYear; year <= lastYear; year++ {
		path := filepath.Join(dataDir, "processed", fmt.Sprintf("%d.csv", year))
		f, err := os.Open(path)
		if err != nil {
			return 0, fmt.Errorf("open %s: %w", path, err)
		}
		df := dataframe.ReadCSV(f,
			dataframe.DetectTypes(false),
			dataframe.DefaultType(series.String),
		)
		f.Close()
		if df.Err != nil {
			return 0, fmt.Errorf("read %s: %w", path, df.Err)
		}

		if year == firstYear {
			merged = df
		} else {
			merged = merged.RBind(df)
			if merged.Err != nil {
				return 0, fmt.Errorf("merge %s: %w", path, merged.Err)
			}
		}
	}

	finalDir := filepath.Join(dataDir, "final")
	if err := os.MkdirAll(finalDir, 0o755); err != nil {
		return 0, err
	}
	out, err := os.Create(filepath.Join(finalDir, "final.csv"))
	if err != nil {
		return 0, err
	}
	defer out.Close()
	if err := merged.WriteCSV(out); err != nil {
		return 0, fmt.Errorf("write final.csv: %w", err)
	}
	return merged.Nrow(), nil
}
