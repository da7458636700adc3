package features

import (
	"math"
	"testing"
	"time"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/models"
)

func sampleRecords() []models.DelayRecord {
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }
	return []models.DelayRecord{
		// 2025-06-02 is a Monday.
		{Date: day(2), Time: "08:00", Station: "KENNEDY", Line: "BD", Code: "MUSC", Bound: "W", MinDelay: 4},
		{Date: day(2), Time: "08:30", Station: "KENNEDY", Line: "BD", Code: "PUOPO", Bound: "E", MinDelay: 0},
		{Date: day(3), Time: "17:00", Station: "FINCH", Line: "YU", Code: "MUSC", Bound: "S", MinDelay: 10},
		{Date: day(7), Time: "17:45", Station: "FINCH", Line: "YU", Code: "MUSC", Bound: "N", MinDelay: 0},
	}
}

func TestBuildRateTablesGroupMeans(t *testing.T) {
	rates := BuildRateTables(sampleRecords())

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"station KENNEDY", rates.StationRate("KENNEDY"), 0.5},
		{"station FINCH", rates.StationRate("FINCH"), 0.5},
		{"line BD", rates.LineRate("BD"), 0.5},
		{"line YU", rates.LineRate("YU"), 0.5},
		{"code MUSC", rates.CodeRate("MUSC"), 2.0 / 3.0},
		{"code PUOPO", rates.CodeRate("PUOPO"), 0.0},
		{"hour 8", rates.HourRate(8), 0.5},
		{"hour 17", rates.HourRate(17), 0.5},
		{"monday", rates.DayRate(0), 0.5},
		{"tuesday", rates.DayRate(1), 1.0},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-12 {
			t.Errorf("%s: rate = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestRateTablesUnseenKeysDefault(t *testing.T) {
	rates := BuildRateTables(sampleRecords())

	if got := rates.StationRate("NO SUCH STATION"); got != DefaultRate {
		t.Errorf("unseen station rate = %v, want %v", got, DefaultRate)
	}
	if got := rates.LineRate("ZZ"); got != DefaultRate {
		t.Errorf("unseen line rate = %v, want %v", got, DefaultRate)
	}
	if got := rates.CodeRate("XXXX"); got != DefaultRate {
		t.Errorf("unseen code rate = %v, want %v", got, DefaultRate)
	}
	if got := rates.HourRate(3); got != DefaultRate {
		t.Errorf("unseen hour rate = %v, want %v", got, DefaultRate)
	}

	// Lookups are case-sensitive and verbatim.
	if got := rates.StationRate("kennedy"); got != DefaultRate {
		t.Errorf("lower-cased station should miss, got %v", got)
	}
}

func TestRateTablesJSONKeys(t *testing.T) {
	rates := BuildRateTables(sampleRecords())

	// Hour and day keys are decimal strings, matching the persisted JSON.
	if _, ok := rates.Hour["8"]; !ok {
		t.Errorf("hour table keys = %v, want string key \"8\"", rates.Hour)
	}
	if _, ok := rates.Day["0"]; !ok {
		t.Errorf("day table keys = %v, want string key \"0\"", rates.Day)
	}
}
