// Package features derives the model's input columns from raw delay
// records. The same transform runs at training time over the full history
// and at inference time for a single request; the two must never drift,
// since the classifier identifies columns by position.
package features

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/models"
)

// NumericColumns is the fixed column order the classifier is fit on.
var NumericColumns = []string{
	"DayOfWeek", "Month", "Hour", "IsWeekend", "IsRushHour",
	"RushHour_Weekday", "Weekend_Morning", "Season",
	"Hour_sin", "Hour_cos", "DayOfWeek_sin", "DayOfWeek_cos",
	"Hour_DelayRate", "Day_DelayRate", "Station_DelayRate", "Line_DelayRate", "Code_DelayRate",
	"Time_Night", "Time_Morning", "Time_Midday", "Time_Evening", "Time_Late",
}

// CategoricalColumns are passed to the classifier as native categories, not
// numeric encodings.
var CategoricalColumns = []string{"Line", "Bound", "Station_Category"}

// TopStationCount bounds station cardinality; everything below the cutoff
// collapses into "Other".
const TopStationCount = 10

const OtherStation = "Other"

var rushHours = map[int]bool{7: true, 8: true, 9: true, 17: true, 18: true}

// Vector is one engineered feature row.
type Vector struct {
	DayOfWeek       int
	Month           int
	Hour            int
	IsWeekend       int
	IsRushHour      int
	RushHourWeekday int
	WeekendMorning  int
	Season          int

	HourSin      float64
	HourCos      float64
	DayOfWeekSin float64
	DayOfWeekCos float64

	HourDelayRate    float64
	DayDelayRate     float64
	StationDelayRate float64
	LineDelayRate    float64
	CodeDelayRate    float64

	TimeNight   int
	TimeMorning int
	TimeMidday  int
	TimeEvening int
	TimeLate    int

	Line            string
	Bound           string
	StationCategory string
}

// Numeric returns the row's numeric values in NumericColumns order.
func (v *Vector) Numeric() []float64 {
	return []float64{
		float64(v.DayOfWeek), float64(v.Month), float64(v.Hour),
		float64(v.IsWeekend), float64(v.IsRushHour),
		float64(v.RushHourWeekday), float64(v.WeekendMorning), float64(v.Season),
		v.HourSin, v.HourCos, v.DayOfWeekSin, v.DayOfWeekCos,
		v.HourDelayRate, v.DayDelayRate, v.StationDelayRate, v.LineDelayRate, v.CodeDelayRate,
		float64(v.TimeNight), float64(v.TimeMorning), float64(v.TimeMidday),
		float64(v.TimeEvening), float64(v.TimeLate),
	}
}

// Categorical returns the row's categorical values in CategoricalColumns order.
func (v *Vector) Categorical() []string {
	return []string{v.Line, v.Bound, v.StationCategory}
}

// DayOfWeek maps a date to the Monday=0..Sunday=6 convention the model was
// trained with.
func DayOfWeek(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// ParseHour extracts the hour from an "HH:MM" string.
func ParseHour(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", value, err)
	}
	return t.Hour(), nil
}

// ParseDate accepts a plain calendar date or a full timestamp.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// Season buckets months: winter 0, spring 1, summer 2, fall 3.
func Season(month int) int {
	switch {
	case month == 12 || month <= 2:
		return 0
	case month <= 5:
		return 1
	case month <= 8:
		return 2
	default:
		return 3
	}
}

// timeBin places an hour in one of five half-open buckets partitioning
// 0..23: Night [0,6], Morning (6,10], Midday (10,16], Evening (16,19],
// Late (19,24].
func timeBin(hour int) string {
	switch {
	case hour <= 6:
		return "Night"
	case hour <= 10:
		return "Morning"
	case hour <= 16:
		return "Midday"
	case hour <= 19:
		return "Evening"
	default:
		return "Late"
	}
}

// Build assembles the feature row for one observation, consulting the
// frozen rate tables for the five historical delay rates.
func Build(date time.Time, hour int, station, line, code, bound, stationCategory string, rates *RateTables) *Vector {
	dayOfWeek := DayOfWeek(date)
	month := int(date.Month())

	isWeekend := 0
	if dayOfWeek >= 5 {
		isWeekend = 1
	}
	isRushHour := 0
	if rushHours[hour] {
		isRushHour = 1
	}
	weekendMorning := 0
	if isWeekend == 1 && hour < 12 {
		weekendMorning = 1
	}

	v := &Vector{
		DayOfWeek:       dayOfWeek,
		Month:           month,
		Hour:            hour,
		IsWeekend:       isWeekend,
		IsRushHour:      isRushHour,
		RushHourWeekday: isRushHour * (1 - isWeekend),
		WeekendMorning:  weekendMorning,
		Season:          Season(month),

		HourSin:      math.Sin(2 * math.Pi * float64(hour) / 24),
		HourCos:      math.Cos(2 * math.Pi * float64(hour) / 24),
		DayOfWeekSin: math.Sin(2 * math.Pi * float64(dayOfWeek) / 7),
		DayOfWeekCos: math.Cos(2 * math.Pi * float64(dayOfWeek) / 7),

		HourDelayRate:    rates.HourRate(hour),
		DayDelayRate:     rates.DayRate(dayOfWeek),
		StationDelayRate: rates.StationRate(station),
		LineDelayRate:    rates.LineRate(line),
		CodeDelayRate:    rates.CodeRate(code),

		Line:            line,
		Bound:           bound,
		StationCategory: stationCategory,
	}

	switch timeBin(hour) {
	case "Night":
		v.TimeNight = 1
	case "Morning":
		v.TimeMorning = 1
	case "Midday":
		v.TimeMidday = 1
	case "Evening":
		v.TimeEvening = 1
	default:
		v.TimeLate = 1
	}

	return v
}

// TopStations returns the most frequent station names, the cutoff for the
// Station_Category collapse. Count ties break alphabetically so the set is
// deterministic between runs.
func TopStations(records []models.DelayRecord, n int) map[string]bool {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Station]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	if len(names) > n {
		names = names[:n]
	}
	top := make(map[string]bool, len(names))
	for _, name := range names {
		top[name] = true
	}
	return top
}

// StationCategory collapses stations outside the top set into OtherStation.
func StationCategory(station string, top map[string]bool) string {
	if top[station] {
		return station
	}
	return OtherStation
}

// Table is the engineered training set: one row per usable record, labels
// aligned by index.
type Table struct {
	Rows   []*Vector
	Labels []int
}

// BuildTable engineers the full historical record set. Rows whose time
// field does not parse are dropped, mirroring the coercion the raw exports
// get during cleaning. The rate tables are computed over the entire input,
// so each row's group rate includes the row itself.
func BuildTable(records []models.DelayRecord) (*Table, *RateTables) {
	rates := BuildRateTables(records)
	top := TopStations(records, TopStationCount)

	table := &Table{
		Rows:   make([]*Vector, 0, len(records)),
		Labels: make([]int, 0, len(records)),
	}
	for _, r := range records {
		hour, err := ParseHour(r.Time)
		if err != nil {
			continue
		}
		row := Build(r.Date, hour, r.Station, r.Line, r.Code, r.Bound,
			StationCategory(r.Station, top), rates)
		label := 0
		if r.HasDelay() {
			label = 1
		}
		table.Rows = append(table.Rows, row)
		table.Labels = append(table.Labels, label)
	}

	return table, rates
}
