// Package ingest loads a JSON schedule description and stores it as
// normalized rows for the audit to query.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arnavshah/shift-audit-go/pkg/database"
	"github.com/arnavshah/shift-audit-go/pkg/models"
	"gorm.io/gorm"
)

// DBPathFor derives the output database path from the input file path by
// replacing its extension with .sqlite
func DBPathFor(inputPath string) string {
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	return filepath.Join(filepath.Dir(inputPath), strings.TrimSuffix(base, ext)+".sqlite")
}

// LoadFile reads and decodes the JSON input document
func LoadFile(path string) (*models.ScheduleInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	var input models.ScheduleInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return &input, nil
}

// Store validates the input document and writes it to the database as
// normalized rows. Weekend tasks are labelled here, night shifts get a
// "night" label when the end time wraps past midnight, and day exclusions
// are expanded to one row per person x shift x day.
func Store(db *gorm.DB, input *models.ScheduleInput) error {
	startDay, err := time.Parse("2006-01-02", input.Schedule.StartDay)
	if err != nil {
		return fmt.Errorf("invalid schedule start_day %q: %w", input.Schedule.StartDay, err)
	}
	if input.Schedule.NumOfDays < 0 {
		return fmt.Errorf("schedule num_of_days must be >= 0, got %d", input.Schedule.NumOfDays)
	}

	resolveDay := func(kind string, d models.Day) (int, error) {
		day := d.Resolve(startDay)
		if day < 0 || day >= input.Schedule.NumOfDays {
			return 0, fmt.Errorf("%s day %d outside schedule span [0, %d)", kind, day, input.Schedule.NumOfDays)
		}
		return day, nil
	}

	if err := db.Create(&database.Schedule{
		StartDay:  input.Schedule.StartDay,
		NumOfDays: input.Schedule.NumOfDays,
	}).Error; err != nil {
		return fmt.Errorf("store schedule: %w", err)
	}

	for _, p := range input.People {
		if p.ID == "" {
			return fmt.Errorf("person with empty id")
		}
		if p.ActivityRate < 0 {
			return fmt.Errorf("person %s: negative activity_rate", p.ID)
		}
		if err := db.Create(&database.Person{
			ID:                p.ID,
			ActivityRate:      p.ActivityRate,
			WorkTargetMinutes: p.WorkTargetMinutes,
		}).Error; err != nil {
			return fmt.Errorf("store person %s: %w", p.ID, err)
		}
	}

	for _, s := range input.Shifts {
		if s.ID == "" {
			return fmt.Errorf("shift with empty id")
		}
		if s.EffectiveDuration < 0 {
			return fmt.Errorf("shift %s: negative duration", s.ID)
		}
		if err := db.Create(&database.Shift{
			ID:          s.ID,
			DisplayName: s.DisplayName,
			Duration:    s.EffectiveDuration,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
		}).Error; err != nil {
			return fmt.Errorf("store shift %s: %w", s.ID, err)
		}

		labels := append([]string(nil), s.Labels...)
		if isNight(s) && !contains(labels, "night") {
			labels = append(labels, "night")
		}
		for _, label := range labels {
			if err := db.Create(&database.ShiftLabel{ShiftID: s.ID, Label: label}).Error; err != nil {
				return fmt.Errorf("store shift label %s/%s: %w", s.ID, label, err)
			}
		}
	}

	offShifts := pseudoShiftSet(input.Shifts)

	for i, t := range input.Tasks {
		day, err := resolveDay(fmt.Sprintf("task %d", i), t.Day)
		if err != nil {
			return err
		}
		task := database.Task{PersonID: t.Person, ShiftID: t.Shift, Day: day}
		if err := db.Create(&task).Error; err != nil {
			return fmt.Errorf("store task %d: %w", i, err)
		}
		weekday := startDay.AddDate(0, 0, day).Weekday()
		if (weekday == time.Saturday || weekday == time.Sunday) && !offShifts[t.Shift] {
			if err := db.Create(&database.TaskLabel{TaskID: task.ID, Label: "weekend"}).Error; err != nil {
				return fmt.Errorf("store task label %d: %w", i, err)
			}
		}
	}

	for i, c := range input.Coverages {
		day, err := resolveDay(fmt.Sprintf("coverage %d", i), c.Day)
		if err != nil {
			return err
		}
		if c.MinValue < 0 {
			return fmt.Errorf("coverage %d: negative min_value", i)
		}
		cov := database.Coverage{
			MinValue: c.MinValue,
			MaxValue: c.MaxValue,
			ShiftID:  c.Shift,
			Day:      day,
		}
		if err := db.Create(&cov).Error; err != nil {
			return fmt.Errorf("store coverage %d: %w", i, err)
		}
		for _, personID := range c.People {
			link := database.CoveragePerson{CoverageID: cov.ID, PersonID: personID}
			if err := db.Create(&link).Error; err != nil {
				return fmt.Errorf("store coverage person %d/%s: %w", i, personID, err)
			}
		}
	}

	for i, p := range input.Preallocations {
		day, err := resolveDay(fmt.Sprintf("preallocation %d", i), p.Day)
		if err != nil {
			return err
		}
		if err := db.Create(&database.Preallocation{
			ShiftID:  p.Shift,
			PersonID: p.Person,
			Type:     p.Type,
			Day:      day,
		}).Error; err != nil {
			return fmt.Errorf("store preallocation %d: %w", i, err)
		}
	}

	for i, ex := range input.DayExclusions {
		for _, d := range ex.Days {
			day, err := resolveDay(fmt.Sprintf("day_exclusion %d", i), d)
			if err != nil {
				return err
			}
			for _, shiftID := range ex.Shifts {
				for _, personID := range ex.People {
					if err := db.Create(&database.Exclusion{
						ShiftID:  shiftID,
						PersonID: personID,
						Day:      day,
					}).Error; err != nil {
						return fmt.Errorf("store exclusion %d: %w", i, err)
					}
				}
			}
		}
	}

	return nil
}

// isNight reports whether a shift wraps past midnight
func isNight(s models.Shift) bool {
	return s.StartTime != "" && s.EndTime != "" && s.EndTime < s.StartTime
}

// pseudoShiftSet returns the ids of off/holiday pseudo-shifts, which never
// count toward weekend totals
func pseudoShiftSet(shifts []models.Shift) map[string]bool {
	set := make(map[string]bool)
	for _, s := range shifts {
		for _, label := range s.Labels {
			if label == "off" || label == "holiday" {
				set[s.ID] = true
			}
		}
	}
	return set
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
