package database

import "gorm.io/gorm"

// PersonCount is one row of a per-person count aggregate
type PersonCount struct {
	PersonID string
	Count    int
}

// PersonMinutes is one row of a per-person summed-minutes aggregate
type PersonMinutes struct {
	PersonID string
	Minutes  float64
}

// PersonNightCounts counts night tasks per person by joining tasks to
// night-labelled shifts
func PersonNightCounts(db *gorm.DB) ([]PersonCount, error) {
	var rows []PersonCount
	err := db.Table("tasks").
		Select("tasks.person_id AS person_id, count(*) AS count").
		Joins("INNER JOIN shift_labels ON shift_labels.shift_id = tasks.shift_id").
		Where("shift_labels.label = ?", "night").
		Group("tasks.person_id").
		Scan(&rows).Error
	return rows, err
}

// PersonWeekendCounts counts weekend-labelled tasks per person
func PersonWeekendCounts(db *gorm.DB) ([]PersonCount, error) {
	var rows []PersonCount
	err := db.Table("tasks").
		Select("tasks.person_id AS person_id, count(*) AS count").
		Joins("INNER JOIN task_labels ON task_labels.task_id = tasks.id").
		Where("task_labels.label = ?", "weekend").
		Group("tasks.person_id").
		Scan(&rows).Error
	return rows, err
}

// PersonEffectiveMinutes sums worked shift minutes per person, skipping
// off/holiday pseudo-shifts
func PersonEffectiveMinutes(db *gorm.DB) ([]PersonMinutes, error) {
	var rows []PersonMinutes
	err := db.Table("tasks").
		Select("tasks.person_id AS person_id, sum(shifts.duration) AS minutes").
		Joins("INNER JOIN shifts ON shifts.id = tasks.shift_id").
		Where("tasks.shift_id NOT IN (?)",
			db.Table("shift_labels").Select("shift_id").Where("label IN ?", []string{"off", "holiday"})).
		Group("tasks.person_id").
		Scan(&rows).Error
	return rows, err
}

// PersonHolidayMinutes sums holiday shift minutes per person
func PersonHolidayMinutes(db *gorm.DB) ([]PersonMinutes, error) {
	var rows []PersonMinutes
	err := db.Table("tasks").
		Select("tasks.person_id AS person_id, sum(shifts.duration) AS minutes").
		Joins("INNER JOIN shifts ON shifts.id = tasks.shift_id").
		Joins("INNER JOIN shift_labels ON shift_labels.shift_id = tasks.shift_id").
		Where("shift_labels.label = ?", "holiday").
		Group("tasks.person_id").
		Scan(&rows).Error
	return rows, err
}

// PersonTasks returns the display glyph and day of every task of one
// person, for the schedule grid
func PersonTasks(db *gorm.DB, personID string) ([]struct {
	AsciiDisplay string
	Day          int
}, error) {
	var rows []struct {
		AsciiDisplay string
		Day          int
	}
	err := db.Table("tasks").
		Select("shifts.ascii_display AS ascii_display, tasks.day AS day").
		Joins("INNER JOIN shifts ON shifts.id = tasks.shift_id").
		Where("tasks.person_id = ?", personID).
		Order("tasks.day").
		Scan(&rows).Error
	return rows, err
}
