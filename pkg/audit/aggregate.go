// Package audit computes per-person workload aggregates, per-(shift, day)
// coverage capacity and fairness statistics over an ingested schedule.
package audit

import (
	"fmt"
	"math"
	"time"

	"github.com/arnavshah/shift-audit-go/pkg/database"
	"gorm.io/gorm"
)

// StandardWeekMinutes is the full-time weekly work target used when a
// person carries no explicit work_target_minutes
const StandardWeekMinutes = 2400

const minutesPerHour = 60

// Aggregate computes the derived per-person fields (effective hours,
// holiday hours, night count, weekend count, target hours, debt hours) and
// writes them back onto the person rows. It runs exactly once per audit,
// before resolution. A person with no tasks keeps all-zero fields.
func Aggregate(db *gorm.DB) error {
	var schedule database.Schedule
	if err := db.First(&schedule).Error; err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	startDay, err := time.Parse("2006-01-02", schedule.StartDay)
	if err != nil {
		return fmt.Errorf("invalid schedule start_day %q: %w", schedule.StartDay, err)
	}

	nightRows, err := database.PersonNightCounts(db)
	if err != nil {
		return fmt.Errorf("night counts: %w", err)
	}
	weekendRows, err := database.PersonWeekendCounts(db)
	if err != nil {
		return fmt.Errorf("weekend counts: %w", err)
	}
	effectiveRows, err := database.PersonEffectiveMinutes(db)
	if err != nil {
		return fmt.Errorf("effective minutes: %w", err)
	}
	holidayRows, err := database.PersonHolidayMinutes(db)
	if err != nil {
		return fmt.Errorf("holiday minutes: %w", err)
	}

	nights := make(map[string]int, len(nightRows))
	for _, row := range nightRows {
		nights[row.PersonID] = row.Count
	}
	weekends := make(map[string]int, len(weekendRows))
	for _, row := range weekendRows {
		weekends[row.PersonID] = row.Count
	}
	effective := make(map[string]float64, len(effectiveRows))
	for _, row := range effectiveRows {
		effective[row.PersonID] = row.Minutes
	}
	holiday := make(map[string]float64, len(holidayRows))
	for _, row := range holidayRows {
		holiday[row.PersonID] = row.Minutes
	}

	weekdays := WeekdaysInSpan(startDay, schedule.NumOfDays)

	var people []database.Person
	if err := db.Find(&people).Error; err != nil {
		return fmt.Errorf("load people: %w", err)
	}

	for _, person := range people {
		weekMinutes := person.WorkTargetMinutes
		if weekMinutes == 0 {
			weekMinutes = StandardWeekMinutes
		}
		targetHours := float64(weekdays) * person.ActivityRate * weekMinutes / 5 / minutesPerHour
		effectiveHours := effective[person.ID] / minutesPerHour
		holidayHours := holiday[person.ID] / minutesPerHour

		updates := map[string]any{
			"night_count":     nights[person.ID],
			"weekend_count":   weekends[person.ID],
			"target_hours":    targetHours,
			"holiday_hours":   holidayHours,
			"effective_hours": effectiveHours,
			"debt_hours":      targetHours - effectiveHours - holidayHours,
		}
		if err := db.Model(&database.Person{}).Where("id = ?", person.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update person %s: %w", person.ID, err)
		}
	}
	return nil
}

// WeekdaysInSpan counts the Monday-Friday days of the schedule span
func WeekdaysInSpan(startDay time.Time, numDays int) int {
	count := 0
	for day := 0; day < numDays; day++ {
		weekday := startDay.AddDate(0, 0, day).Weekday()
		if weekday != time.Saturday && weekday != time.Sunday {
			count++
		}
	}
	return count
}

// PersonHoursPairs builds the (delta, target) pairs consumed by HoursScore
// from the aggregated person rows. Deltas are absolute.
func PersonHoursPairs(people []database.Person) []HoursPair {
	pairs := make([]HoursPair, 0, len(people))
	for _, p := range people {
		pairs = append(pairs, HoursPair{
			Delta:  math.Abs(p.EffectiveHours - p.TargetHours),
			Target: p.TargetHours,
		})
	}
	return pairs
}

// PersonNightValues extracts the per-person night counts for fairness
// scoring
func PersonNightValues(people []database.Person) []float64 {
	values := make([]float64, 0, len(people))
	for _, p := range people {
		values = append(values, float64(p.NightCount))
	}
	return values
}

// PersonWeekendValues extracts the per-person weekend counts for fairness
// scoring
func PersonWeekendValues(people []database.Person) []float64 {
	values := make([]float64, 0, len(people))
	for _, p := range people {
		values = append(values, float64(p.WeekendCount))
	}
	return values
}
