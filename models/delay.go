package models

import "time"

// DelayRecord is one historical incident row from the TTC delay exports.
// Records are immutable once ingested.
type DelayRecord struct {
	Date     time.Time
	Time     string // "HH:MM"
	Day      string
	Station  string
	Code     string
	MinDelay float64
	MinGap   float64
	Bound    string
	Line     string
	Vehicle  string
}

// HasDelay is the training label: any positive delay counts.
func (r DelayRecord) HasDelay() bool {
	return r.MinDelay > 0
}
