package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Preallocation types. TypeAssigned locks a person onto a shift for a day;
// every other type (vacation, leave, ...) blocks the person entirely.
const (
	TypeUnavailable = 0
	TypeRequested   = 1
	TypeAssigned    = 2
)

// Day references a schedule day either by index or by ISO date. Which one
// was supplied is resolved against the schedule start day at ingest time.
type Day struct {
	Index int
	Date  time.Time
}

// UnmarshalJSON accepts an integer day index or an ISO date string.
func (d *Day) UnmarshalJSON(data []byte) error {
	var idx int
	if err := json.Unmarshal(data, &idx); err == nil {
		d.Index = idx
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("day must be an index or an ISO date, got %s", string(data))
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid day %q: %w", s, err)
	}
	d.Date = t
	d.Index = -1
	return nil
}

// Resolve returns the day index relative to the schedule start day.
func (d Day) Resolve(startDay time.Time) int {
	if d.Date.IsZero() {
		return d.Index
	}
	return int(d.Date.Sub(startDay).Hours() / 24)
}

// ScheduleHeader holds the span of the schedule under audit
type ScheduleHeader struct {
	StartDay  string `json:"start_day"`
	NumOfDays int    `json:"num_of_days"`
}

// Person is one worker in the input document
type Person struct {
	ID                string  `json:"id"`
	ActivityRate      float64 `json:"activity_rate"`
	WorkTargetMinutes float64 `json:"work_target_minutes,omitempty"`
}

// Shift is one shift definition; labels carry tags like "night" or "off".
// EffectiveDuration is in minutes.
type Shift struct {
	ID                string   `json:"id"`
	DisplayName       string   `json:"display_name"`
	EffectiveDuration float64  `json:"effective_duration"`
	StartTime         string   `json:"start_time"`
	EndTime           string   `json:"end_time"`
	Labels            []string `json:"labels,omitempty"`
}

// Task is one person working one shift on one day
type Task struct {
	Person string `json:"person"`
	Shift  string `json:"shift"`
	Day    Day    `json:"day"`
}

// Coverage states how many people must work a shift on a day and who is
// eligible to do so
type Coverage struct {
	MinValue int      `json:"min_value"`
	MaxValue int      `json:"max_value"`
	Shift    string   `json:"shift"`
	Day      Day      `json:"day"`
	People   []string `json:"people"`
}

// Preallocation binds or blocks a person for a shift on a day
type Preallocation struct {
	Shift  string `json:"shift,omitempty"`
	Person string `json:"person"`
	Type   int    `json:"type"`
	Day    Day    `json:"day"`
}

// DayExclusion removes people from shifts on days; ingestion expands it to
// one exclusion row per person x shift x day combination
type DayExclusion struct {
	People []string `json:"people"`
	Shifts []string `json:"shifts"`
	Days   []Day    `json:"days"`
}

// ScheduleInput is the full input document for one audit run
type ScheduleInput struct {
	Schedule       ScheduleHeader  `json:"schedule"`
	People         []Person        `json:"people"`
	Shifts         []Shift         `json:"shifts"`
	Tasks          []Task          `json:"tasks"`
	Coverages      []Coverage      `json:"coverages,omitempty"`
	Preallocations []Preallocation `json:"preallocations,omitempty"`
	DayExclusions  []DayExclusion  `json:"day_exclusions,omitempty"`
}

// ShiftCapacity is the resolved capacity of one shift on one day
type ShiftCapacity struct {
	Shift     string   `json:"shift"`
	Day       int      `json:"day"`
	Need      int      `json:"need"`
	Available int      `json:"available"`
	People    []string `json:"people"`
}

// ScoreResult carries one hours/fairness score with its raw totals
type ScoreResult struct {
	TotalDelta  float64 `json:"total_delta"`
	TotalTarget float64 `json:"total_target,omitempty"`
	Score       float64 `json:"score"`
}

// PersonStats is the per-person derived block of an audit response
type PersonStats struct {
	ActivityRate   float64 `json:"activity_rate"`
	EffectiveHours float64 `json:"effective_hours"`
	TargetHours    float64 `json:"target_hours"`
	HolidayHours   float64 `json:"holiday_hours"`
	DebtHours      float64 `json:"debt_hours"`
	NightCount     int     `json:"night_count"`
	WeekendCount   int     `json:"weekend_count"`
}

// AuditResponse is the JSON shape of a full audit, used by the HTTP surface
type AuditResponse struct {
	Schedule         ScheduleHeader         `json:"schedule"`
	People           map[string]PersonStats `json:"people"`
	Capacities       []ShiftCapacity        `json:"capacities"`
	DayTotals        []int                  `json:"day_totals"`
	HoursScore       ScoreResult            `json:"hours_score"`
	HoursScoreTrim   ScoreResult            `json:"hours_score_without_extremes"`
	NightsScore      ScoreResult            `json:"nights_fairness"`
	NightsScoreTrim  ScoreResult            `json:"nights_fairness_without_extremes"`
	WeekendScore     ScoreResult            `json:"weekends_fairness"`
	WeekendScoreTrim ScoreResult            `json:"weekends_fairness_without_extremes"`
}
