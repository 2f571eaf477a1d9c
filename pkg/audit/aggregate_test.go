package audit

import (
	"testing"
	"time"

	"github.com/arnavshah/shift-audit-go/pkg/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("could not open test database: %v", err)
	}
	err = db.AutoMigrate(
		&database.Schedule{}, &database.Person{}, &database.Shift{},
		&database.ShiftLabel{}, &database.Task{}, &database.TaskLabel{},
		&database.Coverage{}, &database.CoveragePerson{},
		&database.Preallocation{}, &database.Exclusion{},
	)
	if err != nil {
		t.Fatalf("could not migrate test database: %v", err)
	}
	return db
}

func TestAggregate(t *testing.T) {
	db := openTestDB(t)

	// 2026-01-05 is a Monday; a 7-day span has 5 weekdays
	db.Create(&database.Schedule{StartDay: "2026-01-05", NumOfDays: 7})
	db.Create(&database.Person{ID: "alice", ActivityRate: 1.0})
	db.Create(&database.Person{ID: "bob", ActivityRate: 0.5})
	db.Create(&database.Shift{ID: "DAY", Duration: 480, StartTime: "08:00", EndTime: "16:00"})
	db.Create(&database.Shift{ID: "NIGHT", Duration: 600, StartTime: "22:00", EndTime: "08:00"})
	db.Create(&database.ShiftLabel{ShiftID: "NIGHT", Label: "night"})

	// alice: two day shifts plus a night shift on Saturday (day 5)
	tasks := []database.Task{
		{PersonID: "alice", ShiftID: "DAY", Day: 0},
		{PersonID: "alice", ShiftID: "DAY", Day: 1},
		{PersonID: "alice", ShiftID: "NIGHT", Day: 5},
	}
	for i := range tasks {
		db.Create(&tasks[i])
	}
	db.Create(&database.TaskLabel{TaskID: tasks[2].ID, Label: "weekend"})

	if err := Aggregate(db); err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	var alice database.Person
	db.First(&alice, "id = ?", "alice")
	if alice.NightCount != 1 {
		t.Errorf("Expected alice night count 1, got %d", alice.NightCount)
	}
	if alice.WeekendCount != 1 {
		t.Errorf("Expected alice weekend count 1, got %d", alice.WeekendCount)
	}
	// 2x480 + 600 minutes = 26 hours
	if alice.EffectiveHours != 26 {
		t.Errorf("Expected alice effective hours 26, got %f", alice.EffectiveHours)
	}
	// 5 weekdays * 1.0 * 2400 / 5 / 60 = 40 hours
	if alice.TargetHours != 40 {
		t.Errorf("Expected alice target hours 40, got %f", alice.TargetHours)
	}
	if alice.DebtHours != 14 {
		t.Errorf("Expected alice debt hours 14, got %f", alice.DebtHours)
	}

	// a person with zero tasks keeps all-zero derived fields
	var bob database.Person
	db.First(&bob, "id = ?", "bob")
	if bob.NightCount != 0 || bob.WeekendCount != 0 || bob.EffectiveHours != 0 {
		t.Errorf("Expected bob to keep zero counters, got %+v", bob)
	}
	if bob.TargetHours != 20 {
		t.Errorf("Expected bob target hours 20, got %f", bob.TargetHours)
	}
}

func TestAggregateZeroActivityRate(t *testing.T) {
	db := openTestDB(t)
	db.Create(&database.Schedule{StartDay: "2026-01-05", NumOfDays: 7})
	db.Create(&database.Person{ID: "carol", ActivityRate: 0})

	if err := Aggregate(db); err != nil {
		t.Fatalf("Aggregate failed on zero activity rate: %v", err)
	}

	var carol database.Person
	db.First(&carol, "id = ?", "carol")
	if carol.TargetHours != 0 {
		t.Errorf("Expected zero target for zero activity rate, got %f", carol.TargetHours)
	}
}

func TestAggregateSkipsPseudoShiftHours(t *testing.T) {
	db := openTestDB(t)
	db.Create(&database.Schedule{StartDay: "2026-01-05", NumOfDays: 7})
	db.Create(&database.Person{ID: "dave", ActivityRate: 1.0})
	db.Create(&database.Shift{ID: "HOL", Duration: 480})
	db.Create(&database.ShiftLabel{ShiftID: "HOL", Label: "holiday"})
	db.Create(&database.Task{PersonID: "dave", ShiftID: "HOL", Day: 0})

	if err := Aggregate(db); err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	var dave database.Person
	db.First(&dave, "id = ?", "dave")
	if dave.EffectiveHours != 0 {
		t.Errorf("Expected holiday hours excluded from effective, got %f", dave.EffectiveHours)
	}
	if dave.HolidayHours != 8 {
		t.Errorf("Expected 8 holiday hours, got %f", dave.HolidayHours)
	}
}

func TestWeekdaysInSpan(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		numDays int
		want    int
	}{
		{0, 0},
		{5, 5},
		{7, 5},
		{14, 10},
		{6, 5},
	}
	for _, c := range cases {
		if got := WeekdaysInSpan(monday, c.numDays); got != c.want {
			t.Errorf("WeekdaysInSpan(monday, %d) = %d, want %d", c.numDays, got, c.want)
		}
	}

	saturday := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	if got := WeekdaysInSpan(saturday, 2); got != 0 {
		t.Errorf("Expected 0 weekdays over a weekend, got %d", got)
	}
}
