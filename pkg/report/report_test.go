package report

import (
	"strings"
	"testing"

	"github.com/arnavshah/shift-audit-go/pkg/audit"
	"github.com/arnavshah/shift-audit-go/pkg/database"
	"github.com/arnavshah/shift-audit-go/pkg/ingest"
	"github.com/arnavshah/shift-audit-go/pkg/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func renderTestSchedule(t *testing.T) string {
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

	input := &models.ScheduleInput{
		Schedule: models.ScheduleHeader{StartDay: "2026-01-05", NumOfDays: 3},
		People: []models.Person{
			{ID: "alice", ActivityRate: 1.0},
			{ID: "bob", ActivityRate: 1.0},
		},
		Shifts: []models.Shift{
			{ID: "DAY", EffectiveDuration: 480, StartTime: "08:00", EndTime: "16:00"},
		},
		Tasks: []models.Task{
			{Person: "alice", Shift: "DAY", Day: models.Day{Index: 0}},
		},
		Coverages: []models.Coverage{
			{MinValue: 1, Shift: "DAY", Day: models.Day{Index: 0}, People: []string{"alice", "bob"}},
		},
	}
	if err := ingest.Store(db, input); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	result, err := audit.Run(db)
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}

	var out strings.Builder
	if err := NewRenderer(db, &out).Draw(result); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	return out.String()
}

func TestDrawSections(t *testing.T) {
	out := renderTestSchedule(t)

	for _, fragment := range []string{
		"start day",
		"2026-01-05",
		"shift id",
		"person id",
		"capacity (available/need)",
		"metric",
		"hours",
		"nights fairness",
		"weekends fairness",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("Report missing %q:\n%s", fragment, out)
		}
	}

	// DAY shift: both eligible people free on day 0 against a need of 1
	if !strings.Contains(out, "2/1") {
		t.Errorf("Expected capacity cell 2/1 in report:\n%s", out)
	}

	// glyph assigned and rendered in the task grid
	if !strings.Contains(out, "alice 8/") {
		t.Errorf("Expected alice hour counters in report:\n%s", out)
	}
}

func TestDrawWritesGlyphsBack(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("could not open test database: %v", err)
	}
	if err := db.AutoMigrate(&database.Schedule{}, &database.Person{}, &database.Shift{},
		&database.ShiftLabel{}, &database.Task{}, &database.TaskLabel{},
		&database.Coverage{}, &database.CoveragePerson{},
		&database.Preallocation{}, &database.Exclusion{}); err != nil {
		t.Fatalf("could not migrate test database: %v", err)
	}

	db.Create(&database.Schedule{StartDay: "2026-01-05", NumOfDays: 1})
	db.Create(&database.Shift{ID: "DAY", Duration: 480})

	r := NewRenderer(db, &strings.Builder{})
	if err := r.drawShifts(); err != nil {
		t.Fatalf("drawShifts failed: %v", err)
	}

	var shift database.Shift
	db.First(&shift, "id = ?", "DAY")
	if shift.AsciiDisplay != "D" {
		t.Errorf("Expected glyph D written back to the shift row, got %q", shift.AsciiDisplay)
	}
}
