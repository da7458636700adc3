package features

import (
	"strconv"

	"github.com/saajpatel/TTC-Subway-Delay-Predictor/models"
)

// DefaultRate is the prior used for any key the training data never saw.
// Unknown stations, lines and codes resolve to it silently.
const DefaultRate = 0.5

// RateTables holds the five historical delay-rate lookups built at training
// time. Hour and day-of-week keys are decimal strings so the JSON document
// round-trips unchanged. Frozen after training.
type RateTables struct {
	Hour    map[string]float64 `json:"hour"`
	Day     map[string]float64 `json:"day"`
	Station map[string]float64 `json:"station"`
	Line    map[string]float64 `json:"line"`
	Code    map[string]float64 `json:"code"`
}

// BuildRateTables computes group-wise mean delay occurrence over the whole
// record set. Records whose time field does not parse are skipped for the
// hour table only.
func BuildRateTables(records []models.DelayRecord) *RateTables {
	t := &RateTables{
		Hour:    make(map[string]float64),
		Day:     make(map[string]float64),
		Station: make(map[string]float64),
		Line:    make(map[string]float64),
		Code:    make(map[string]float64),
	}

	hourAgg := newRateAgg()
	dayAgg := newRateAgg()
	stationAgg := newRateAgg()
	lineAgg := newRateAgg()
	codeAgg := newRateAgg()

	for _, r := range records {
		delayed := r.HasDelay()

		if hour, err := ParseHour(r.Time); err == nil {
			hourAgg.add(strconv.Itoa(hour), delayed)
		}
		dayAgg.add(strconv.Itoa(DayOfWeek(r.Date)), delayed)
		stationAgg.add(r.Station, delayed)
		lineAgg.add(r.Line, delayed)
		codeAgg.add(r.Code, delayed)
	}

	t.Hour = hourAgg.means()
	t.Day = dayAgg.means()
	t.Station = stationAgg.means()
	t.Line = lineAgg.means()
	t.Code = codeAgg.means()

	return t
}

func (t *RateTables) HourRate(hour int) float64 {
	return lookup(t.Hour, strconv.Itoa(hour))
}

func (t *RateTables) DayRate(dayOfWeek int) float64 {
	return lookup(t.Day, strconv.Itoa(dayOfWeek))
}

func (t *RateTables) StationRate(station string) float64 {
	return lookup(t.Station, station)
}

func (t *RateTables) LineRate(line string) float64 {
	return lookup(t.Line, line)
}

func (t *RateTables) CodeRate(code string) float64 {
	return lookup(t.Code, code)
}

// lookup matches keys verbatim (case-sensitive); anything unseen resolves
// to DefaultRate.
func lookup(m map[string]float64, key string) float64 {
	if rate, ok := m[key]; ok {
		return rate
	}
	return DefaultRate
}

type rateAgg struct {
	delayed map[string]int
	total   map[string]int
}

func newRateAgg() *rateAgg {
	return &rateAgg{delayed: make(map[string]int), total: make(map[string]int)}
}

func (a *rateAgg) add(key string, delayed bool) {
	a.total[key]++
	if delayed {
		a.delayed[key]++
	}
}

func (a *rateAgg) means() map[string]float64 {
	out := make(map[string]float64, len(a.total))
	for key, n := range a.total {
		out[key] = float64(a.delayed[key]) / float64(n)
	}
	return out
}
